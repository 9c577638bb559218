package netlogon

import (
	"errors"
	"testing"
)

func newTestChannel(t *testing.T) *Channel {
	t.Helper()
	sk := SessionKey{Length: 16}
	copy(sk.Bytes[:], []byte("0123456789abcdef"))
	return &Channel{
		state: channelState{
			sessionKey:             sk,
			clientStoredCredential: Credential{1, 2, 3, 4, 5, 6, 7, 8},
			serverStoredCredential: Credential{8, 7, 6, 5, 4, 3, 2, 1},
			valid:                  true,
		},
	}
}

// §8 property 5: chain monotonicity — the stored seed depends only on the
// initial seed plus the sequence of timestamps applied; reordering changes
// the outcome.
func TestChainMonotonicity(t *testing.T) {
	seed := Credential{1, 2, 3, 4, 5, 6, 7, 8}

	a := advanceSeed(seed, 100)
	a = Credential(advanceSeed(Credential(a), 200))

	b := advanceSeed(seed, 200)
	b = Credential(advanceSeed(Credential(b), 100))

	if a == b {
		t.Fatalf("advancing by [100,200] produced same result as [200,100]: %v", a)
	}
}

func TestSetupAuthenticatorAdvancesClientSeed(t *testing.T) {
	ch := newTestChannel(t)
	before := ch.state.clientStoredCredential

	auth, err := ch.setupAuthenticator(42)
	if err != nil {
		t.Fatalf("setupAuthenticator: %v", err)
	}
	if auth.Timestamp != 42 {
		t.Fatalf("Timestamp = %d, want 42", auth.Timestamp)
	}
	if ch.state.clientStoredCredential == before {
		t.Fatalf("clientStoredCredential did not advance")
	}
}

func TestValidateChainRejectsMismatchAndInvalidates(t *testing.T) {
	ch := newTestChannel(t)

	ok := ch.validateChain(42, Credential{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	if ok {
		t.Fatalf("validateChain accepted a bogus credential")
	}
	if ch.Valid() {
		t.Fatalf("channel still valid after a credential mismatch")
	}
}

func TestValidateChainAcceptsExpected(t *testing.T) {
	ch := newTestChannel(t)

	timestamp := uint32(42)
	advanced := advanceSeed(ch.state.serverStoredCredential, timestamp)
	expected, err := genCredentials(ch.state.sessionKey, advanced, 0, false)
	if err != nil {
		t.Fatalf("genCredentials: %v", err)
	}

	if !ch.validateChain(timestamp, expected) {
		t.Fatalf("validateChain rejected the expected credential")
	}
	if !ch.Valid() {
		t.Fatalf("channel invalidated on a matching credential")
	}
	if ch.state.serverStoredCredential != Credential(advanced) {
		t.Fatalf("serverStoredCredential did not advance to match")
	}
}

// §4.6 step 3 / §7: when genCredentials rejects a candidate under the
// mitigation predicate, setupAuthenticator must resample a new timestamp
// itself — ErrMitigationRetry must never reach the caller.
func TestSetupAuthenticatorRetriesOnMitigationRejection(t *testing.T) {
	ch := newTestChannel(t)

	var start uint32
	found := false
	for ts := uint32(0); ts < 1<<24; ts++ {
		advanced := advanceSeed(ch.state.clientStoredCredential, ts)
		if _, err := genCredentials(ch.state.sessionKey, advanced, 0, true); errors.Is(err, ErrMitigationRetry) {
			next := advanceSeed(ch.state.clientStoredCredential, ts+1)
			if _, err := genCredentials(ch.state.sessionKey, next, 0, true); err == nil {
				start = ts
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("could not find a timestamp that forces a mitigation retry")
	}

	auth, err := ch.setupAuthenticator(start)
	if err != nil {
		t.Fatalf("setupAuthenticator: %v", err)
	}
	if auth.Timestamp != start+1 {
		t.Fatalf("Timestamp = %d, want %d (the first timestamp to pass mitigation)", auth.Timestamp, start+1)
	}
}

// §3/§5: Close must zeroize both the session key and the stored machine
// password and leave the channel unusable.
func TestCloseZeroizesSecrets(t *testing.T) {
	ch := newTestChannel(t)
	password := []byte("supersecretpassword123!")
	ch.state.identity.MachinePassword = password

	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, b := range ch.state.sessionKey.Bytes {
		if b != 0 {
			t.Fatalf("sessionKey not zeroized: %v", ch.state.sessionKey.Bytes)
		}
	}
	for _, b := range password {
		if b != 0 {
			t.Fatalf("MachinePassword backing array not zeroized: %v", password)
		}
	}
	if ch.state.identity.MachinePassword != nil {
		t.Fatalf("MachinePassword not cleared: %v", ch.state.identity.MachinePassword)
	}
	if ch.Valid() {
		t.Fatalf("channel still valid after Close")
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
