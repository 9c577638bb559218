package netlogon

import "github.com/go-netlogon/netlogonctl/internal/crypto"

// skey128 derives the 16-byte "strong key" session key (§4.2), used when
// STRONG_KEY is negotiated.
//
//  1. H = ntlm_hash(machine_password)
//  2. digest = MD5(zeros(4) || client_challenge || server_challenge)
//  3. session_key = HMAC_MD5(key=H, data=digest)
func skey128(machinePassword []byte, clientChallenge, serverChallenge Nonce) (SessionKey, error) {
	h := ntlmHash(machinePassword)
	defer crypto.Zero(h[:])

	var zeros [4]byte
	digest := md5Hash(zeros[:], clientChallenge[:], serverChallenge[:])

	sum := hmacMD5(h[:], digest[:])

	var out SessionKey
	copy(out.Bytes[:], sum[:])
	out.Length = 16
	return out, nil
}

// skey64 derives the legacy 8-byte session key (§4.2), used when
// STRONG_KEY is not negotiated.
//
//  1. H = ntlm_hash(machine_password) (first 16 bytes)
//  2. sum0 = c0+s0, sum1 = c1+s1 (wrapping LE u32 addition) -> S
//  3. tmp = DES(key=H[0:7], in=S)
//  4. session_key = DES(key=H[9:16], in=tmp)
//
// The second DES stage deliberately keys from byte offset 9, not 8 — a
// legacy anomaly reproduced exactly per spec.md §9.
func skey64(machinePassword []byte, clientChallenge, serverChallenge Nonce) (SessionKey, error) {
	h := ntlmHash(machinePassword)
	defer crypto.Zero(h[:])

	c0 := loadLE32(clientChallenge[0:4])
	c1 := loadLE32(clientChallenge[4:8])
	s0 := loadLE32(serverChallenge[0:4])
	s1 := loadLE32(serverChallenge[4:8])

	var s [8]byte
	storeLE32(s[0:4], c0+s0)
	storeLE32(s[4:8], c1+s1)
	defer crypto.Zero(s[:])

	var key1 [7]byte
	copy(key1[:], h[0:7])

	var in1 [8]byte
	copy(in1[:], s[:])
	tmp, err := desBlock(key1, in1)
	if err != nil {
		return SessionKey{}, err
	}
	defer crypto.Zero(tmp[:])

	var key2 [7]byte
	copy(key2[:], h[9:16])

	sessionKey, err := desBlock(key2, tmp)
	if err != nil {
		return SessionKey{}, err
	}

	var out SessionKey
	copy(out.Bytes[0:8], sessionKey[:])
	out.Length = 8
	return out, nil
}

// deriveSessionKey picks skey128 or skey64 based on whether STRONG_KEY is
// among proposedFlags, zeroizing the password buffer on every exit path.
func deriveSessionKey(machinePassword []byte, proposedFlags NegotiatedFlags, clientChallenge, serverChallenge Nonce) (SessionKey, error) {
	defer crypto.Zero(machinePassword)

	if proposedFlags&FlagStrongKey != 0 {
		return skey128(machinePassword, clientChallenge, serverChallenge)
	}
	return skey64(machinePassword, clientChallenge, serverChallenge)
}
