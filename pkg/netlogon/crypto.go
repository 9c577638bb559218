package netlogon

import (
	"github.com/go-netlogon/netlogonctl/internal/crypto"
	"github.com/go-netlogon/netlogonctl/internal/encoding"
)

// This file is the crypto primitives façade (§4.1): fixed-contract wrappers
// around DES-ECB single-block, MD4, MD5, HMAC-MD5, the NTLM hash, and a
// CSPRNG. Every wrapper collapses an internal failure to ErrCryptoFailure —
// no other error shape escapes this file, matching the teacher's pattern of
// a single sentinel per failure domain (pkg/dcerpc/errors.go,
// pkg/smb/errors.go).

// desBlock expands a 7-byte key and encrypts a single 8-byte block.
func desBlock(key7 [7]byte, in [8]byte) ([8]byte, error) {
	out, err := crypto.DESBlock(key7[:], in[:])
	if err != nil {
		return [8]byte{}, ErrCryptoFailure
	}
	var result [8]byte
	copy(result[:], out)
	return result, nil
}

// ntlmHash returns MD4(UTF-16LE(password)) — the NT hash.
func ntlmHash(password []byte) [16]byte {
	utf16 := encoding.ToUTF16LE(string(password))
	sum := crypto.MD4Hash(utf16)
	var h [16]byte
	copy(h[:], sum)
	crypto.Zero(utf16)
	return h
}

// md5Hash hashes the concatenation of chunks.
func md5Hash(chunks ...[]byte) [16]byte {
	sum := crypto.MD5Hash(chunks...)
	var h [16]byte
	copy(h[:], sum)
	return h
}

// hmacMD5 computes HMAC-MD5(key, data).
func hmacMD5(key, data []byte) [16]byte {
	sum := crypto.HMACMD5(key, data)
	var h [16]byte
	copy(h[:], sum)
	return h
}

// randomBytes fills buf with cryptographically strong random data.
func randomBytes(buf []byte) error {
	if err := crypto.RandomBytes(buf); err != nil {
		return ErrCryptoFailure
	}
	return nil
}

// loadLE32 / storeLE32 are the explicit little-endian load/store helpers
// spec.md §9's redesign note calls for, replacing the original's raw
// pointer-cast reinterpretation of 8-byte buffers as u32 pairs.
func loadLE32(b []byte) uint32        { return encoding.LoadLE32(b) }
func storeLE32(b []byte, v uint32)    { encoding.StoreLE32(b, v) }
