// Package netlogon implements the client side of the Netlogon (NRPC)
// secure-channel negotiation and credential-chain engine: the
// ServerReqChallenge/ServerAuthenticate2 handshake, the skey64/skey128
// session-key derivations, the rolling credential chain every subsequent
// authenticated call rides on, and ServerPasswordSet trust-account password
// rotation.
//
// The package never dials an RPC transport itself; callers supply a
// Transport (see transport.go), typically pkg/netrpc's DCE/RPC-over-named-
// pipe implementation.
package netlogon

import (
	"github.com/go-netlogon/netlogonctl/internal/crypto"
)

// NegotiatedFlags is the NRPC negotiate_flags bitfield. Only the bits this
// core cares about are named; the rest of the 32-bit space is preserved
// verbatim as returned by the DC.
type NegotiatedFlags uint32

const (
	FlagBase       NegotiatedFlags = 0x00000001
	FlagStrongKey  NegotiatedFlags = 0x40000000
	FlagSecureRPC  NegotiatedFlags = 0x00004000
	DefaultFlags                  = FlagBase | FlagStrongKey | FlagSecureRPC
)

// Nonce is an 8-byte random or challenge value.
type Nonce [8]byte

// Credential is an 8-byte derived value proving possession of the session
// key, sent by either side of the channel.
type Credential [8]byte

// SessionKey holds either an 8-byte (skey64) or 16-byte (skey128) session
// key. Only the first Length bytes of Bytes are meaningful.
type SessionKey struct {
	Bytes  [16]byte
	Length int
}

// Bytes16 returns the full 16-byte backing array, valid only when
// Length == 16.
func (k *SessionKey) Bytes16() []byte {
	return k.Bytes[:16]
}

// Bytes8 returns the first 8 bytes, valid for either key length (skey64
// keys only ever populate these).
func (k *SessionKey) Bytes8() []byte {
	return k.Bytes[:8]
}

// Slice returns exactly Length bytes of key material.
func (k *SessionKey) Slice() []byte {
	return k.Bytes[:k.Length]
}

// Zero clears the key in place.
func (k *SessionKey) Zero() {
	crypto.Zero(k.Bytes[:])
	k.Length = 0
}

// Authenticator is the {credential, timestamp} pair attached to every
// authenticated NRPC call.
type Authenticator struct {
	Credential Credential
	Timestamp  uint32
}

// Marshal produces the 12-byte wire form: credential || LE u32 timestamp.
func (a Authenticator) Marshal() []byte {
	buf := make([]byte, 12)
	copy(buf[0:8], a.Credential[:])
	storeLE32(buf[8:12], a.Timestamp)
	return buf
}

// UnmarshalAuthenticator parses the 12-byte wire form.
func UnmarshalAuthenticator(buf []byte) (Authenticator, error) {
	if len(buf) != 12 {
		return Authenticator{}, ErrTransportFailure
	}
	var a Authenticator
	copy(a.Credential[:], buf[0:8])
	a.Timestamp = loadLE32(buf[8:12])
	return a, nil
}

// MachineIdentity is the local trust-account identity the channel
// authenticates as.
type MachineIdentity struct {
	NetBIOSHostname string
	NBDomain        string
	FQDNDomain      string
	ServerUNC       string
	// MachinePassword is kept by the channel for ChangeMachinePassword:
	// Negotiate derives the session key from a scratch copy (which is
	// zeroized), and Channel.Close zeroizes this buffer.
	MachinePassword []byte
}

// AccountName is the trust-account name the DC expects:
// NetBIOSHostname + "$".
func (m *MachineIdentity) AccountName() string {
	return m.NetBIOSHostname + "$"
}

// channelState is the mutable state behind an opaque *Channel. Callers never
// see these fields directly — see chain.go's Channel for the exported
// surface.
type channelState struct {
	sessionKey            SessionKey
	clientStoredCredential Credential
	serverStoredCredential Credential
	negoFlags              NegotiatedFlags
	valid                  bool
	identity               MachineIdentity
	transport              Transport
}
