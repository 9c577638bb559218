package netlogon

import "testing"

// §8 property 1: mitigation predicate laws.
func TestPassesMitigation(t *testing.T) {
	cases := []struct {
		name string
		buf  [8]byte
		want bool
	}{
		{"all same", [8]byte{0, 0, 0, 0, 0, 0xff, 0xff, 0xff}, false},
		{"all distinct", [8]byte{0, 1, 2, 3, 4, 5, 6, 7}, true},
		// S4 golden vectors.
		{"S4 false", [8]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff}, false},
		{"S4 true", [8]byte{0x01, 0x02, 0x02, 0x02, 0x02, 0x00, 0x00, 0x00}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := passesMitigation(c.buf); got != c.want {
				t.Errorf("passesMitigation(%v) = %v, want %v", c.buf, got, c.want)
			}
		})
	}
}

// §8 property 2: sampled challenges always satisfy the predicate, and the
// rejection loop terminates.
func TestSampleNonceAlwaysPasses(t *testing.T) {
	for i := 0; i < 50; i++ {
		n, err := sampleNonce()
		if err != nil {
			t.Fatalf("sampleNonce: %v", err)
		}
		if !passesMitigation(n) {
			t.Fatalf("sampled nonce %v fails mitigation predicate", n)
		}
	}
}

// §8 property 4: the client's expected server credential must equal what
// genCredentials produces from the same session key and challenge the DC
// uses — i.e. genCredentials is the single pure function both sides share.
func TestGenCredentialsDeterministic(t *testing.T) {
	sk := SessionKey{Length: 16}
	copy(sk.Bytes[:], []byte("0123456789abcdef"))
	challenge := [8]byte{0, 1, 2, 3, 4, 5, 6, 7}

	c1, err := genCredentials(sk, challenge, 0, false)
	if err != nil {
		t.Fatalf("genCredentials: %v", err)
	}
	c2, err := genCredentials(sk, challenge, 0, false)
	if err != nil {
		t.Fatalf("genCredentials: %v", err)
	}
	if c1 != c2 {
		t.Fatalf("genCredentials not deterministic: %v != %v", c1, c2)
	}

	c3, err := genCredentials(sk, challenge, 1, false)
	if err != nil {
		t.Fatalf("genCredentials: %v", err)
	}
	if c1 == c3 {
		t.Fatalf("genCredentials ignored timestamp")
	}
}
