package crypto

import "crypto/des"

// expandDESKey expands a 7-byte key to an 8-byte DES key by inserting a
// parity bit after every 7 bits, the standard Netlogon/SAM key-splitting
// trick (grounded on the SAM hash deobfuscation the teacher codebase already
// performed this same expansion for).
func expandDESKey(key7 []byte) []byte {
	if len(key7) != 7 {
		return make([]byte, 8)
	}

	key8 := make([]byte, 8)
	key8[0] = key7[0] >> 1
	key8[1] = ((key7[0] & 0x01) << 6) | (key7[1] >> 2)
	key8[2] = ((key7[1] & 0x03) << 5) | (key7[2] >> 3)
	key8[3] = ((key7[2] & 0x07) << 4) | (key7[3] >> 4)
	key8[4] = ((key7[3] & 0x0F) << 3) | (key7[4] >> 5)
	key8[5] = ((key7[4] & 0x1F) << 2) | (key7[5] >> 6)
	key8[6] = ((key7[5] & 0x3F) << 1) | (key7[6] >> 7)
	key8[7] = key7[6] & 0x7F

	for i := 0; i < 8; i++ {
		key8[i] = (key8[i] << 1) & 0xFE
	}

	return key8
}

// DESBlock expands key7 to a DES key and encrypts a single 8-byte block
// ECB-style. This is the sole primitive Netlogon's session-key and
// credential derivations build on.
func DESBlock(key7, in []byte) ([]byte, error) {
	if len(key7) != 7 {
		return nil, ErrCryptoFailure
	}
	if len(in) != 8 {
		return nil, ErrCryptoFailure
	}

	key8 := expandDESKey(key7)
	block, err := des.NewCipher(key8)
	if err != nil {
		return nil, ErrCryptoFailure
	}

	out := make([]byte, 8)
	block.Encrypt(out, in)
	return out, nil
}
