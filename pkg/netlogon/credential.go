package netlogon

import "github.com/go-netlogon/netlogonctl/internal/crypto"

// maxMitigationAttempts bounds the rejection-sampling loop used to satisfy
// the DC mitigation predicate, per spec.md §7/§9: "bound the loop and
// surface a dedicated failure if the bound is exceeded."
const maxMitigationAttempts = 64

// passesMitigation implements the DC-mitigation predicate (§4.4): true iff
// among the first five bytes of buf, at least one value appears exactly
// once.
func passesMitigation(buf [8]byte) bool {
	for i := 0; i < 5; i++ {
		unique := true
		for j := 0; j < 5; j++ {
			if j == i {
				continue
			}
			if buf[j] == buf[i] {
				unique = false
				break
			}
		}
		if unique {
			return true
		}
	}
	return false
}

// sampleNonce produces a random Nonce satisfying passesMitigation, bounded
// by maxMitigationAttempts.
func sampleNonce() (Nonce, error) {
	var n Nonce
	for attempt := 0; attempt < maxMitigationAttempts; attempt++ {
		if err := randomBytes(n[:]); err != nil {
			return Nonce{}, err
		}
		if passesMitigation(n) {
			return n, nil
		}
	}
	return Nonce{}, ErrMitigationExceeded
}

// genCredentials computes an 8-byte credential from (session_key,
// challenge, timestamp) per §4.3:
//
//  1. (c0,c1) = LE u32 pair of challenge; S8 = LE((c0+timestamp, c1))
//  2. tmp = DES(key=session_key[0:7], in=S8)
//  3. credential = DES(key=session_key[7:14], in=tmp)
//
// When retry is true and the result fails the mitigation predicate,
// ErrMitigationRetry is returned; the caller resamples inputs (only
// setupAuthenticator passes retry=true; challenge generation filters its
// nonces with passesMitigation directly in sampleNonce).
func genCredentials(sessionKey SessionKey, challenge [8]byte, timestamp uint32, retry bool) (Credential, error) {
	c0 := loadLE32(challenge[0:4])
	c1 := loadLE32(challenge[4:8])

	var s8 [8]byte
	storeLE32(s8[0:4], c0+timestamp)
	storeLE32(s8[4:8], c1)
	defer crypto.Zero(s8[:])

	key := sessionKey.Slice()
	// The 7+7 byte slicing is defined over a 16-byte key; an 8-byte
	// (skey64) key is zero-padded to the same 14 bytes of key material
	// the strong-key path consumes, per spec.md §4.3.
	var padded [14]byte
	copy(padded[:], key)
	defer crypto.Zero(padded[:])

	var key1 [7]byte
	copy(key1[:], padded[0:7])

	tmp, err := desBlock(key1, s8)
	if err != nil {
		return Credential{}, err
	}
	defer crypto.Zero(tmp[:])

	var key2 [7]byte
	copy(key2[:], padded[7:14])

	cred, err := desBlock(key2, tmp)
	if err != nil {
		return Credential{}, err
	}

	if retry && !passesMitigation(cred) {
		return Credential{}, ErrMitigationRetry
	}

	return Credential(cred), nil
}
