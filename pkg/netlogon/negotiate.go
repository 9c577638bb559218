package netlogon

// Negotiate drives a channel through Idle -> Bound -> Challenged ->
// Authenticated (§4.5), returning a *Channel ready for authenticated calls
// on success. Any failure along the way leaves the transport closed and
// returns an error; there is no partial-negotiation channel to retry from —
// callers call Negotiate again.
//
// notify, if non-nil, is invoked exactly once, immediately after the
// channel transitions to Authenticated (§6: kpasswd sequence-number
// notification).
func Negotiate(transport Transport, identity MachineIdentity, notify SeqNumNotifier) (*Channel, error) {
	if err := transport.Bind(); err != nil {
		transport.Close()
		return nil, ErrTransportFailure
	}

	clientChallenge, err := sampleNonce()
	if err != nil {
		transport.Close()
		return nil, err
	}

	serverChallenge, err := serverReqChallenge(transport, identity.ServerUNC, identity.NetBIOSHostname, clientChallenge)
	if err != nil {
		transport.Close()
		return nil, err
	}

	policy := Policy()
	proposedFlags := DefaultFlags
	if !policy.UseSecureRPC {
		proposedFlags &^= FlagSecureRPC
	}

	// deriveSessionKey zeroizes the password buffer it's handed; hand it a
	// scratch copy so identity.MachinePassword survives for the channel's
	// later ChangeMachinePassword calls.
	passwordScratch := append([]byte(nil), identity.MachinePassword...)
	sessionKey, err := deriveSessionKey(passwordScratch, proposedFlags, clientChallenge, serverChallenge)
	if err != nil {
		transport.Close()
		return nil, err
	}

	clientCredential, err := genCredentials(sessionKey, clientChallenge, 0, false)
	if err != nil {
		sessionKey.Zero()
		transport.Close()
		return nil, err
	}

	expectedServerCredential, err := genCredentials(sessionKey, serverChallenge, 0, false)
	if err != nil {
		sessionKey.Zero()
		transport.Close()
		return nil, err
	}

	resp, err := serverAuthenticate2(transport, identity.ServerUNC, identity.AccountName(), identity.NetBIOSHostname, clientCredential, proposedFlags)
	if err != nil {
		sessionKey.Zero()
		transport.Close()
		return nil, err
	}

	if policy.VerifyRPCResponses && resp.serverCredential != expectedServerCredential {
		sessionKey.Zero()
		transport.Close()
		return nil, ErrCredentialMismatch
	}

	ch := &Channel{
		state: channelState{
			sessionKey:             sessionKey,
			clientStoredCredential: clientCredential,
			serverStoredCredential: resp.serverCredential,
			negoFlags:              resp.negotiatedFlags,
			valid:                  true,
			identity:               identity,
			transport:              transport,
		},
	}

	if notify != nil {
		notify()
	}

	return ch, nil
}

// serverReqChallenge issues ServerReqChallenge and returns the server's
// challenge. RPC or status failure collapses to an error; the negotiation
// caller is expected to treat any error here as fatal (Closed).
func serverReqChallenge(transport Transport, serverUNC, hostname string, clientChallenge Nonce) (Nonce, error) {
	req := marshalReqChallenge(serverUNC, hostname, clientChallenge)
	stub, err := transport.Call(OpServerReqChallenge, req)
	if err != nil {
		return Nonce{}, ErrTransportFailure
	}
	return unmarshalReqChallengeResponse(stub)
}

// serverAuthenticate2 issues ServerAuthenticate2 and returns the parsed
// reply.
func serverAuthenticate2(transport Transport, serverUNC, accountName, hostname string, clientCredential Credential, proposedFlags NegotiatedFlags) (authenticate2Response, error) {
	req := marshalAuthenticate2(serverUNC, accountName, hostname, clientCredential, proposedFlags)
	stub, err := transport.Call(OpServerAuthenticate2, req)
	if err != nil {
		return authenticate2Response{}, ErrTransportFailure
	}
	return unmarshalAuthenticate2Response(stub)
}
