package netlogon

import "testing"

// buildPasswordSetReply encodes a ServerPasswordSet reply stub: the return
// authenticator (12 bytes) followed by a 4-byte LE NTSTATUS, matching what
// unmarshalPasswordSetResponse expects.
func buildPasswordSetReply(auth Authenticator, status uint32) []byte {
	buf := make([]byte, 16)
	copy(buf[0:12], auth.Marshal())
	storeLE32(buf[12:16], status)
	return buf
}

func newTestChannelForPassword(t *testing.T, call func(opnum uint16, stub []byte) ([]byte, error)) (*Channel, *fakeTransport) {
	t.Helper()
	sk := SessionKey{Length: 16}
	copy(sk.Bytes[:], []byte("0123456789abcdef"))
	transport := &fakeTransport{callFunc: call}
	ch := &Channel{
		state: channelState{
			sessionKey:             sk,
			clientStoredCredential: Credential{1, 2, 3, 4, 5, 6, 7, 8},
			serverStoredCredential: Credential{8, 7, 6, 5, 4, 3, 2, 1},
			valid:                  true,
			identity: MachineIdentity{
				NetBIOSHostname: "WKSTA1",
				ServerUNC:       `\\DC1`,
				MachinePassword: []byte("0123456789abcdef"),
			},
			transport: transport,
		},
	}
	return ch, transport
}

// §8 property 6: if the ServerPasswordSet RPC succeeds but validate_chain
// fails, the stored machine password must remain byte-identical to its
// pre-call value.
func TestChangeMachinePasswordAllOrNothingOnChainMismatch(t *testing.T) {
	ch, _ := newTestChannelForPassword(t, func(opnum uint16, stub []byte) ([]byte, error) {
		if opnum != OpServerPasswordSet {
			t.Fatalf("unexpected opnum %d", opnum)
		}
		bogus := Authenticator{Credential: Credential{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, Timestamp: 0}
		return buildPasswordSetReply(bogus, StatusSuccess), nil
	})

	before := append([]byte(nil), ch.state.identity.MachinePassword...)

	err := ch.ChangeMachinePassword()
	if err == nil {
		t.Fatalf("expected error on chain validation mismatch, got nil")
	}

	if string(ch.state.identity.MachinePassword) != string(before) {
		t.Fatalf("machine password mutated despite chain validation failure")
	}
}

// Mirror failure: if the RPC itself fails, the stored password must also
// remain untouched.
func TestChangeMachinePasswordAllOrNothingOnRPCFailure(t *testing.T) {
	ch, _ := newTestChannelForPassword(t, func(opnum uint16, stub []byte) ([]byte, error) {
		return nil, ErrTransportFailure
	})

	before := append([]byte(nil), ch.state.identity.MachinePassword...)

	err := ch.ChangeMachinePassword()
	if err == nil {
		t.Fatalf("expected error on RPC failure, got nil")
	}
	if string(ch.state.identity.MachinePassword) != string(before) {
		t.Fatalf("machine password mutated despite RPC failure")
	}
	if ch.Valid() {
		t.Fatalf("channel should be invalidated after a transport failure")
	}
}

func TestChangeMachinePasswordSuccessPersists(t *testing.T) {
	ch, _ := newTestChannelForPassword(t, nil)
	sessionKeyForTest := ch.state.sessionKey

	ch.state.transport = &fakeTransport{callFunc: func(opnum uint16, stub []byte) ([]byte, error) {
		// Recover the timestamp ChangeMachinePassword chose internally by
		// reading the 12-byte authenticator off the tail of the stub
		// (pointer + strings + authenticator + new password, in that
		// order, per marshalPasswordSet).
		auth := stub[len(stub)-28 : len(stub)-16]
		ts := loadLE32(auth[8:12])

		advanced := advanceSeed(ch.state.serverStoredCredential, ts)
		expected, err := genCredentials(sessionKeyForTest, advanced, 0, false)
		if err != nil {
			t.Fatalf("genCredentials: %v", err)
		}
		return buildPasswordSetReply(Authenticator{Credential: expected, Timestamp: ts}, StatusSuccess), nil
	}}

	before := append([]byte(nil), ch.state.identity.MachinePassword...)

	if err := ch.ChangeMachinePassword(); err != nil {
		t.Fatalf("ChangeMachinePassword: %v", err)
	}

	if string(ch.state.identity.MachinePassword) == string(before) {
		t.Fatalf("machine password did not change on success")
	}
	if len(ch.state.identity.MachinePassword) != 16 {
		t.Fatalf("new machine password length = %d, want 16", len(ch.state.identity.MachinePassword))
	}
	if !ch.Valid() {
		t.Fatalf("channel invalidated despite a successful rotation")
	}
}
