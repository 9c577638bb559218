package crypto

import "crypto/rand"

// Zero overwrites b with zeros in place. The netlogon derivations defer it
// on the password, NTLM-hash, session-key and DES-intermediate buffers they
// keep in named locals, so those are cleared on error paths as well as on
// success. Not every copy is cleared: the digest slices MD4Hash and HMACMD5
// return, DESBlock's expanded key and output slice, and the input and
// output halves genPassword copies out are left as they are. Zero is a
// plain loop of stores; nothing reads b back afterwards.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// RandomBytes fills b with cryptographically strong random data.
func RandomBytes(b []byte) error {
	if _, err := rand.Read(b); err != nil {
		return ErrCryptoFailure
	}
	return nil
}
