package netlogon

import "testing"

// TestNegotiateSuccess and TestNegotiateCredentialMismatch exercise golden
// vectors S5/S6 by having the fake transport derive the session key from
// the identity's password and the exact challenges exchanged, mirroring
// what the real DC would compute, then perturbing the server credential in
// the mismatch case.
func testNegotiate(t *testing.T, perturb bool) (*Channel, error) {
	t.Helper()
	identity := MachineIdentity{
		NetBIOSHostname: "WKSTA1",
		ServerUNC:       `\\DC1`,
		MachinePassword: []byte("Pw!"),
	}
	serverChallenge := Nonce{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17}

	var clientChallenge Nonce
	var sessionKey SessionKey
	haveSessionKey := false

	transport := &fakeTransport{}
	transport.callFunc = func(opnum uint16, stub []byte) ([]byte, error) {
		switch opnum {
		case OpServerReqChallenge:
			// client_challenge is the last 8 bytes of the
			// marshalReqChallenge stub.
			copy(clientChallenge[:], stub[len(stub)-8:])

			buf := make([]byte, 12)
			copy(buf[0:8], serverChallenge[:])
			storeLE32(buf[8:12], StatusSuccess)
			return buf, nil

		case OpServerAuthenticate2:
			if !haveSessionKey {
				k, err := skey128(append([]byte(nil), identity.MachinePassword...), clientChallenge, serverChallenge)
				if err != nil {
					t.Fatalf("skey128: %v", err)
				}
				sessionKey = k
				haveSessionKey = true
			}
			serverCred, err := genCredentials(sessionKey, serverChallenge, 0, false)
			if err != nil {
				t.Fatalf("genCredentials: %v", err)
			}
			if perturb {
				serverCred[0] ^= 0xff
			}

			buf := make([]byte, 16)
			copy(buf[0:8], serverCred[:])
			storeLE32(buf[8:12], uint32(DefaultFlags))
			storeLE32(buf[12:16], StatusSuccess)
			return buf, nil
		}
		t.Fatalf("unexpected opnum %d", opnum)
		return nil, nil
	}

	notified := false
	ch, err := Negotiate(transport, identity, func() { notified = true })
	if err == nil && !notified {
		t.Fatalf("seq-num notifier was not invoked on a successful negotiation")
	}
	return ch, err
}

// S5: negotiate success.
func TestNegotiateSuccess(t *testing.T) {
	ch, err := testNegotiate(t, false)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if !ch.Valid() {
		t.Fatalf("channel not valid after successful negotiation")
	}
}

// S6: negotiate failure — perturbed server_credential.
func TestNegotiateCredentialMismatch(t *testing.T) {
	_, err := testNegotiate(t, true)
	if err == nil {
		t.Fatalf("expected ErrCredentialMismatch, got nil")
	}
}
