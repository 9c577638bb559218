package netlogon

import (
	"errors"
	"sync"

	"github.com/go-netlogon/netlogonctl/internal/crypto"
)

// Channel is the authenticated secure channel a negotiated machine identity
// rides on. It is a single-writer resource (§5): every exported method
// internally serializes via mu so concurrent callers block rather than race
// the rolling credential seeds, but no method blocks waiting on another
// channel — state is never shared across channels.
type Channel struct {
	mu    sync.Mutex
	state channelState
}

// Valid reports whether the channel has completed negotiation and not since
// been invalidated by a credential mismatch or cancelled RPC.
func (c *Channel) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.valid
}

// invalidate marks the channel unusable; callers must renegotiate. Must be
// called with mu held.
func (c *Channel) invalidate() {
	c.state.valid = false
}

// Close tears down the channel, zeroizing the session key and the stored
// machine password (§3, §5) and marking the channel invalid. Unlike
// invalidate, which fires on a credential mismatch or a failed
// ServerPasswordSet call and leaves the secrets in place, Close is the
// caller's explicit signal that the secret material is no longer needed.
// It is safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	crypto.Zero(c.state.sessionKey.Bytes[:])
	c.state.sessionKey.Length = 0
	crypto.Zero(c.state.identity.MachinePassword)
	c.state.identity.MachinePassword = nil
	c.state.valid = false
	return nil
}

// setupAuthenticator advances the client's stored credential seed by
// timestamp and computes the Authenticator to attach to the next
// authenticated call (§4.6):
//
//  1. advance stored client seed (a0,a1) by timestamp, wrapping
//  2. credential = gen_credentials(session_key, advanced_seed, 0, retry=true)
//
// If the mitigation predicate rejects the result, a new timestamp is picked
// and the computation repeats (§4.6 step 3; §7: ErrMitigationRetry must
// never escape past the component that handles it) — bounded the same way
// sampleNonce bounds its own rejection-sampling loop.
func (c *Channel) setupAuthenticator(timestamp uint32) (Authenticator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.valid {
		return Authenticator{}, ErrChannelInvalid
	}

	for attempt := uint32(0); attempt < maxMitigationAttempts; attempt++ {
		ts := timestamp + attempt
		advanced := advanceSeed(c.state.clientStoredCredential, ts)

		cred, err := genCredentials(c.state.sessionKey, advanced, 0, true)
		if errors.Is(err, ErrMitigationRetry) {
			continue
		}
		if err != nil {
			return Authenticator{}, err
		}

		c.state.clientStoredCredential = Credential(advanced)
		return Authenticator{Credential: cred, Timestamp: ts}, nil
	}

	return Authenticator{}, ErrMitigationExceeded
}

// validateChain advances the stored server seed by the same timestamp used
// in setupAuthenticator, computes the expected server credential, and
// compares it against the credential the DC returned. A mismatch
// invalidates the channel (§4.6): once invalid, the caller must
// renegotiate.
func (c *Channel) validateChain(timestamp uint32, replyCredential Credential) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.valid {
		return false
	}

	advanced := advanceSeed(c.state.serverStoredCredential, timestamp)

	expected, err := genCredentials(c.state.sessionKey, advanced, 0, false)
	if err != nil {
		c.invalidate()
		return false
	}

	if expected != replyCredential {
		c.invalidate()
		return false
	}

	c.state.serverStoredCredential = Credential(advanced)
	return true
}

// advanceSeed adds timestamp into the low LE u32 of an 8-byte stored
// credential seed, wrapping, per §4.6. Both client and server seeds advance
// identically so the chain stays in lockstep call-for-call.
func advanceSeed(seed Credential, timestamp uint32) [8]byte {
	a0 := loadLE32(seed[0:4])
	a1 := loadLE32(seed[4:8])

	var out [8]byte
	storeLE32(out[0:4], a0+timestamp)
	storeLE32(out[4:8], a1)
	return out
}
