package netlogon

import "github.com/go-netlogon/netlogonctl/internal/crypto"

// genPassword encrypts a 16-byte old password into its replacement under
// the session key, two 8-byte halves each keyed by a 7-byte half of the
// session key (§4.7):
//
//	new[0:8]  = DES(key=session_key[0:7],  in=old[0:8])
//	new[8:16] = DES(key=session_key[7:14], in=old[8:16])
func genPassword(sessionKey SessionKey, old [16]byte) ([16]byte, error) {
	key := sessionKey.Slice()
	var padded [14]byte
	copy(padded[:], key)
	defer crypto.Zero(padded[:])

	var key1, key2 [7]byte
	copy(key1[:], padded[0:7])
	copy(key2[:], padded[7:14])

	var in1, in2 [8]byte
	copy(in1[:], old[0:8])
	copy(in2[:], old[8:16])

	half1, err := desBlock(key1, in1)
	if err != nil {
		return [16]byte{}, err
	}
	half2, err := desBlock(key2, in2)
	if err != nil {
		return [16]byte{}, err
	}

	var out [16]byte
	copy(out[0:8], half1[:])
	copy(out[8:16], half2[:])
	return out, nil
}

// ChangeMachinePassword rotates the trust account's password via
// ServerPasswordSet (§4.7). The new password is generated from the current
// one and the session key, and is persisted to identity only after both
// the RPC and the reply's credential chain validation succeed — any
// failure leaves the channel's stored password untouched (all-or-nothing,
// §8 property 6).
func (c *Channel) ChangeMachinePassword() error {
	c.mu.Lock()
	if !c.state.valid {
		c.mu.Unlock()
		return ErrChannelInvalid
	}
	sessionKey := c.state.sessionKey
	identity := c.state.identity
	transport := c.state.transport
	c.mu.Unlock()

	auth, err := c.setupAuthenticator(currentTimestamp())
	if err != nil {
		return err
	}

	var oldPassword [16]byte
	copy(oldPassword[:], identity.MachinePassword)
	defer crypto.Zero(oldPassword[:])

	newPassword, err := genPassword(sessionKey, oldPassword)
	if err != nil {
		return err
	}
	defer crypto.Zero(newPassword[:])

	req := marshalPasswordSet(identity.ServerUNC, identity.AccountName(), identity.NetBIOSHostname, auth, newPassword)
	stub, err := transport.Call(OpServerPasswordSet, req)
	if err != nil {
		c.mu.Lock()
		c.invalidate()
		c.mu.Unlock()
		return ErrTransportFailure
	}

	resp, err := unmarshalPasswordSetResponse(stub)
	if err != nil {
		c.mu.Lock()
		c.invalidate()
		c.mu.Unlock()
		return err
	}

	if !c.validateChain(auth.Timestamp, resp.returnAuthenticator.Credential) {
		return ErrCredentialMismatch
	}

	c.mu.Lock()
	newPasswordCopy := make([]byte, 16)
	copy(newPasswordCopy, newPassword[:])
	crypto.Zero(c.state.identity.MachinePassword)
	c.state.identity.MachinePassword = newPasswordCopy
	c.mu.Unlock()

	return nil
}
