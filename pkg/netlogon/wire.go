package netlogon

import (
	"github.com/go-netlogon/netlogonctl/pkg/dcerpc"
)

// Secure channel type for a workstation trust account, per MS-NRPC.
const secureChannelTypeWksta uint16 = 2

// marshalReqChallenge builds the ServerReqChallenge stub data (§6):
// server_name, computer_name, client_challenge.
func marshalReqChallenge(serverUNC, hostname string, clientChallenge Nonce) []byte {
	w := dcerpc.NewNDRWriter()
	w.WritePointer()
	w.WriteUnicodeString(serverUNC)
	w.WriteUnicodeString(hostname)
	w.WriteBytes(clientChallenge[:])
	return w.Bytes()
}

// unmarshalReqChallengeResponse parses the server_challenge and trailing
// NTSTATUS from a ServerReqChallenge response.
func unmarshalReqChallengeResponse(stub []byte) (Nonce, error) {
	r := dcerpc.NewNDRReader(stub)
	raw, err := r.ReadBytes(8)
	if err != nil {
		return Nonce{}, ErrTransportFailure
	}
	status, err := r.ReadUint32()
	if err != nil {
		return Nonce{}, ErrTransportFailure
	}
	if err := newRemoteStatus("ServerReqChallenge", status); err != nil {
		return Nonce{}, err
	}
	var out Nonce
	copy(out[:], raw)
	return out, nil
}

// marshalAuthenticate2 builds the ServerAuthenticate2 stub data (§6):
// server_name, account_name, secure_channel_type, computer_name,
// client_credential, proposed negotiate_flags.
func marshalAuthenticate2(serverUNC, accountName, hostname string, clientCredential Credential, proposedFlags NegotiatedFlags) []byte {
	w := dcerpc.NewNDRWriter()
	w.WritePointer()
	w.WriteUnicodeString(serverUNC)
	w.WriteUnicodeString(accountName)
	w.WriteUint16(secureChannelTypeWksta)
	w.WriteUnicodeString(hostname)
	w.WriteBytes(clientCredential[:])
	w.WriteUint32(uint32(proposedFlags))
	return w.Bytes()
}

// authenticate2Response is the parsed ServerAuthenticate2 reply.
type authenticate2Response struct {
	serverCredential Credential
	negotiatedFlags  NegotiatedFlags
}

func unmarshalAuthenticate2Response(stub []byte) (authenticate2Response, error) {
	r := dcerpc.NewNDRReader(stub)
	raw, err := r.ReadBytes(8)
	if err != nil {
		return authenticate2Response{}, ErrTransportFailure
	}
	flags, err := r.ReadUint32()
	if err != nil {
		return authenticate2Response{}, ErrTransportFailure
	}
	status, err := r.ReadUint32()
	if err != nil {
		return authenticate2Response{}, ErrTransportFailure
	}
	if err := newRemoteStatus("ServerAuthenticate2", status); err != nil {
		return authenticate2Response{}, err
	}
	var resp authenticate2Response
	copy(resp.serverCredential[:], raw)
	resp.negotiatedFlags = NegotiatedFlags(flags)
	return resp, nil
}

// marshalPasswordSet builds the ServerPasswordSet stub data (§6):
// server_name, account_name, secure_channel_type, computer_name,
// authenticator, owf new password.
func marshalPasswordSet(serverUNC, accountName, hostname string, auth Authenticator, newPassword [16]byte) []byte {
	w := dcerpc.NewNDRWriter()
	w.WritePointer()
	w.WriteUnicodeString(serverUNC)
	w.WriteUnicodeString(accountName)
	w.WriteUint16(secureChannelTypeWksta)
	w.WriteUnicodeString(hostname)
	w.WriteBytes(auth.Marshal())
	w.WriteBytes(newPassword[:])
	return w.Bytes()
}

// passwordSetResponse is the parsed ServerPasswordSet reply.
type passwordSetResponse struct {
	returnAuthenticator Authenticator
}

func unmarshalPasswordSetResponse(stub []byte) (passwordSetResponse, error) {
	r := dcerpc.NewNDRReader(stub)
	authBuf, err := r.ReadBytes(12)
	if err != nil {
		return passwordSetResponse{}, ErrTransportFailure
	}
	status, err := r.ReadUint32()
	if err != nil {
		return passwordSetResponse{}, ErrTransportFailure
	}
	if err := newRemoteStatus("ServerPasswordSet", status); err != nil {
		return passwordSetResponse{}, err
	}
	auth, err := UnmarshalAuthenticator(authBuf)
	if err != nil {
		return passwordSetResponse{}, err
	}
	return passwordSetResponse{returnAuthenticator: auth}, nil
}
