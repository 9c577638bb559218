// Package crypto provides cryptographic primitives for NTLM authentication.
package crypto

import (
	"crypto/hmac"
	"crypto/md5"

	"golang.org/x/crypto/md4"
)

// MD4Hash computes the MD4 hash of data
func MD4Hash(data []byte) []byte {
	h := md4.New()
	h.Write(data)
	return h.Sum(nil)
}

// HMACMD5 computes HMAC-MD5
func HMACMD5(key, data []byte) []byte {
	h := hmac.New(md5.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// MD5Hash computes the MD5 digest of the concatenation of chunks, avoiding
// an intermediate append when a caller already has the input split (e.g.
// the zero-pad || challenge || challenge triple skey128 hashes).
func MD5Hash(chunks ...[]byte) []byte {
	h := md5.New()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}
