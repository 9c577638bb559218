package netlogon

import "testing"

// §8 property 3: skey64/skey128 are pure functions of
// (password, client_challenge, server_challenge).
func TestSkey128Deterministic(t *testing.T) {
	password := []byte("Pw!")
	client := Nonce{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	server := Nonce{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17}

	k1, err := skey128(append([]byte(nil), password...), client, server)
	if err != nil {
		t.Fatalf("skey128: %v", err)
	}
	k2, err := skey128(append([]byte(nil), password...), client, server)
	if err != nil {
		t.Fatalf("skey128: %v", err)
	}
	if k1.Length != 16 || k2.Length != 16 {
		t.Fatalf("skey128 length = %d/%d, want 16", k1.Length, k2.Length)
	}
	if k1.Bytes != k2.Bytes {
		t.Fatalf("skey128 not deterministic")
	}

	other := Nonce{0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	k3, err := skey128(append([]byte(nil), password...), other, server)
	if err != nil {
		t.Fatalf("skey128: %v", err)
	}
	if k1.Bytes == k3.Bytes {
		t.Fatalf("skey128 ignored client_challenge")
	}
}

func TestSkey64Deterministic(t *testing.T) {
	password := []byte("Pw!")
	client := Nonce{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	server := Nonce{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17}

	k1, err := skey64(append([]byte(nil), password...), client, server)
	if err != nil {
		t.Fatalf("skey64: %v", err)
	}
	k2, err := skey64(append([]byte(nil), password...), client, server)
	if err != nil {
		t.Fatalf("skey64: %v", err)
	}
	if k1.Length != 8 || k2.Length != 8 {
		t.Fatalf("skey64 length = %d/%d, want 8", k1.Length, k2.Length)
	}
	if k1.Bytes != k2.Bytes {
		t.Fatalf("skey64 not deterministic")
	}
}

// deriveSessionKey must zeroize the password buffer it was handed on every
// exit path (§8 property 7, restricted to this one entry point).
func TestDeriveSessionKeyZeroizesPassword(t *testing.T) {
	password := []byte("secretpw")
	client := Nonce{0, 1, 2, 3, 4, 5, 6, 7}
	server := Nonce{8, 9, 10, 11, 12, 13, 14, 15}

	if _, err := deriveSessionKey(password, FlagStrongKey, client, server); err != nil {
		t.Fatalf("deriveSessionKey: %v", err)
	}
	for i, b := range password {
		if b != 0 {
			t.Fatalf("password[%d] = %#x, want 0 (not zeroized)", i, b)
		}
	}
}
