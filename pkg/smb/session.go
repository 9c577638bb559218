package smb

import (
	"context"
	"encoding/asn1"
	"errors"
	"fmt"

	"github.com/go-netlogon/netlogonctl/pkg/auth"
	"github.com/go-netlogon/netlogonctl/pkg/smb/types"
)

// Session represents an authenticated SMB session.
//
// Netlogon's secure channel is established inside the RPC payload carried
// over this session, not at the SMB layer, so this session only needs to
// get an IPC$ tree opened: anonymous bind or a plain NTLM session setup.
// SMB message signing and SMB3 encryption are both out of scope here.
type Session struct {
	transport       *Transport
	sessionID       uint64
	messageID       uint64
	dialect         types.Dialect
	maxTransactSize uint32
	maxReadSize     uint32
	maxWriteSize    uint32

	isAuthenticated bool
	isGuest         bool
}

// NewSession creates a new session from a negotiation result
func NewSession(transport *Transport, negResult *NegotiateResult) *Session {
	return &Session{
		transport:       transport,
		dialect:         negResult.Dialect,
		maxTransactSize: negResult.MaxTransactSize,
		maxReadSize:     negResult.MaxReadSize,
		maxWriteSize:    negResult.MaxWriteSize,
		messageID:       1, // Negotiate used MessageID 0
	}
}

// Authenticate performs anonymous or NTLM session setup
func (s *Session) Authenticate(ctx context.Context, creds auth.Credentials, negResult *NegotiateResult) error {
	return s.authenticateNTLM(ctx, creds, negResult)
}

// authenticateNTLM performs NTLM (or anonymous) session setup
func (s *Session) authenticateNTLM(ctx context.Context, creds auth.Credentials, negResult *NegotiateResult) error {
	// Step 1: Send Type 1 (NEGOTIATE) message
	type1 := auth.NewNegotiateMessage()
	type1Bytes := type1.Marshal()

	securityBuffer := wrapNTLMSSP(type1Bytes, true)

	req := types.NewSessionSetupRequest(securityBuffer)
	header := types.NewHeader(types.CommandSessionSetup, s.nextMessageID())

	resp, err := s.sendRecv(header, req.Marshal())
	if err != nil {
		return fmt.Errorf("session setup (type1) failed: %w", err)
	}

	var respHeader types.Header
	if err := respHeader.Unmarshal(resp[:types.SMB2HeaderSize]); err != nil {
		return fmt.Errorf("failed to parse response header: %w", err)
	}

	if respHeader.Status != types.StatusMoreProcessingReq {
		return StatusToError(respHeader.Status)
	}

	s.sessionID = respHeader.SessionID

	var setupResp types.SessionSetupResponse
	if err := setupResp.Unmarshal(resp[types.SMB2HeaderSize:]); err != nil {
		return fmt.Errorf("failed to parse session setup response: %w", err)
	}

	type2Bytes := unwrapNTLMSSP(setupResp.SecurityBuffer)
	if type2Bytes == nil {
		return errors.New("failed to extract NTLMSSP challenge")
	}

	challenge, err := auth.ParseChallengeMessage(type2Bytes)
	if err != nil {
		return fmt.Errorf("failed to parse challenge: %w", err)
	}

	// Step 2: Build and send Type 3 (AUTHENTICATE) message
	var authOpts auth.AuthenticateOptions
	authOpts.Domain = creds.Domain()
	authOpts.Username = creds.Username()
	authOpts.Workstation = "WORKSTATION"

	switch c := creds.(type) {
	case *auth.PasswordCredentials:
		authOpts.Password = c.Password()
	case *auth.HashCredentials:
		authOpts.NTLMv2Hash = auth.NTLMv2Hash(c.NTHash(), c.Username(), c.Domain())
	case *auth.AnonymousCredentials:
		authOpts.Username = ""
		authOpts.Domain = ""
	}

	type3 := auth.NewAuthenticateMessage(challenge, authOpts)
	type3Bytes := type3.Marshal()

	securityBuffer = wrapNTLMSSP(type3Bytes, false)

	req2 := types.NewSessionSetupRequest(securityBuffer)
	header2 := types.NewHeader(types.CommandSessionSetup, s.nextMessageID())
	header2.SessionID = s.sessionID

	resp2, err := s.sendRecv(header2, req2.Marshal())
	if err != nil {
		return fmt.Errorf("session setup (type3) failed: %w", err)
	}

	var respHeader2 types.Header
	if err := respHeader2.Unmarshal(resp2[:types.SMB2HeaderSize]); err != nil {
		return fmt.Errorf("failed to parse response header: %w", err)
	}

	if !respHeader2.Status.IsSuccess() {
		return StatusToError(respHeader2.Status)
	}

	var setupResp2 types.SessionSetupResponse
	if err := setupResp2.Unmarshal(resp2[types.SMB2HeaderSize:]); err != nil {
		return fmt.Errorf("failed to parse session setup response: %w", err)
	}

	s.isAuthenticated = true
	s.isGuest = setupResp2.IsGuest()

	return nil
}

// sendRecv sends a request and receives the response
func (s *Session) sendRecv(header *types.Header, payload []byte) ([]byte, error) {
	msg := append(header.Marshal(), payload...)

	if err := s.transport.Send(msg); err != nil {
		return nil, err
	}

	return s.recvResponse()
}

// recvResponse receives a response, handling STATUS_PENDING for async operations
func (s *Session) recvResponse() ([]byte, error) {
	for {
		resp, err := s.transport.Recv()
		if err != nil {
			return nil, err
		}

		if len(resp) >= types.SMB2HeaderSize {
			var respHeader types.Header
			if err := respHeader.Unmarshal(resp[:types.SMB2HeaderSize]); err == nil {
				if respHeader.Status == types.StatusPending {
					continue
				}
			}
		}

		return resp, nil
	}
}

// nextMessageID returns the next message ID
func (s *Session) nextMessageID() uint64 {
	id := s.messageID
	s.messageID++
	return id
}

// SessionID returns the session ID
func (s *Session) SessionID() uint64 {
	return s.sessionID
}

// IsAuthenticated returns true if authenticated
func (s *Session) IsAuthenticated() bool {
	return s.isAuthenticated
}

// IsGuest returns true if this is a guest session
func (s *Session) IsGuest() bool {
	return s.isGuest
}

// Dialect returns the negotiated dialect
func (s *Session) Dialect() types.Dialect {
	return s.dialect
}

// MaxTransactSize returns the max transaction size
func (s *Session) MaxTransactSize() uint32 {
	return s.maxTransactSize
}

// MaxReadSize returns the max read size
func (s *Session) MaxReadSize() uint32 {
	return s.maxReadSize
}

// MaxWriteSize returns the max write size
func (s *Session) MaxWriteSize() uint32 {
	return s.maxWriteSize
}

// Close marks the session as no longer authenticated. No LOGOFF request is
// sent; the server drops the session when the transport is closed.
func (s *Session) Close() error {
	if !s.isAuthenticated {
		return nil
	}

	s.isAuthenticated = false
	return nil
}

// SPNEGO OIDs
var (
	oidSPNEGO  = []byte{0x06, 0x06, 0x2b, 0x06, 0x01, 0x05, 0x05, 0x02}                         // 1.3.6.1.5.5.2
	oidNTLMSSP = []byte{0x06, 0x0a, 0x2b, 0x06, 0x01, 0x04, 0x01, 0x82, 0x37, 0x02, 0x02, 0x0a} // 1.3.6.1.4.1.311.2.2.10
)

// wrapNTLMSSP wraps NTLMSSP message in SPNEGO
func wrapNTLMSSP(ntlmssp []byte, isNegotiate bool) []byte {
	if isNegotiate {
		return wrapSPNEGOInit(ntlmssp)
	}
	return wrapSPNEGOResponse(ntlmssp)
}

// wrapSPNEGOInit creates a NegTokenInit for the first NTLMSSP message
// Using proper ASN.1 DER encoding per RFC 4178
func wrapSPNEGOInit(ntlmssp []byte) []byte {
	spnegoOID := asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 2}
	ntlmsspOID := asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 2, 2, 10}

	type negTokenInit struct {
		MechTypes []asn1.ObjectIdentifier `asn1:"explicit,tag:0"`
		MechToken []byte                  `asn1:"explicit,tag:2"`
	}

	negInit := negTokenInit{
		MechTypes: []asn1.ObjectIdentifier{ntlmsspOID},
		MechToken: ntlmssp,
	}
	negInitBytes, err := asn1.Marshal(negInit)
	if err != nil {
		return ntlmssp
	}

	negToken := asn1.RawValue{
		Class:      asn1.ClassContextSpecific,
		Tag:        0,
		IsCompound: true,
		Bytes:      negInitBytes,
	}
	negTokenBytes, err := asn1.Marshal(negToken)
	if err != nil {
		return ntlmssp
	}

	oidBytes, err := asn1.Marshal(spnegoOID)
	if err != nil {
		return ntlmssp
	}

	content := append(oidBytes, negTokenBytes...)
	gssToken := asn1.RawValue{
		Class:      asn1.ClassApplication,
		Tag:        0,
		IsCompound: true,
		Bytes:      content,
	}
	result, err := asn1.Marshal(gssToken)
	if err != nil {
		return ntlmssp
	}

	return result
}

// wrapSPNEGOResponse creates a NegTokenResp for subsequent NTLMSSP messages
func wrapSPNEGOResponse(ntlmssp []byte) []byte {
	type negTokenResp struct {
		NegState      asn1.Enumerated `asn1:"optional,explicit,tag:0"`
		ResponseToken []byte          `asn1:"optional,explicit,tag:2"`
	}

	resp := negTokenResp{
		NegState:      1, // accept-incomplete
		ResponseToken: ntlmssp,
	}

	respBytes, err := asn1.Marshal(resp)
	if err != nil {
		return ntlmssp
	}

	wrapped := asn1.RawValue{
		Class:      asn1.ClassContextSpecific,
		Tag:        1,
		IsCompound: true,
		Bytes:      respBytes,
	}

	result, err := asn1.Marshal(wrapped)
	if err != nil {
		return ntlmssp
	}

	return result
}

// asn1Length encodes length in ASN.1 DER format
func asn1Length(n int) []byte {
	if n < 128 {
		return []byte{byte(n)}
	}
	if n < 256 {
		return []byte{0x81, byte(n)}
	}
	return []byte{0x82, byte(n >> 8), byte(n)}
}

// unwrapNTLMSSP extracts NTLMSSP from SPNEGO or raw format
func unwrapNTLMSSP(data []byte) []byte {
	sig := []byte{'N', 'T', 'L', 'M', 'S', 'S', 'P', 0}
	for i := 0; i <= len(data)-8; i++ {
		match := true
		for j := 0; j < 8; j++ {
			if data[i+j] != sig[j] {
				match = false
				break
			}
		}
		if match {
			return data[i:]
		}
	}
	return nil
}
