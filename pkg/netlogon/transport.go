package netlogon

// Transport is the RPC surface this package consumes (§6): bind the NRPC
// interface on whatever pipe the caller dialed, issue opnum calls, and tear
// down. pkg/netrpc supplies the concrete implementation wiring
// pkg/dcerpc + pkg/pipe + pkg/smb; tests supply a fake.
type Transport interface {
	// Bind opens the RPC interface with anonymous credentials. Secure-RPC
	// message protection is never used for negotiation itself (§4.5).
	Bind() error

	// Call issues opnum with the given NDR-marshaled stub data and returns
	// the response stub data, or an error if the call did not complete.
	// Callers in this package map any such error to ErrTransportFailure; a
	// RemoteStatus comes from decoding a non-success status in the reply.
	Call(opnum uint16, stubData []byte) ([]byte, error)

	// Close releases the bound handle.
	Close() error
}

// Opnums this package drives, per §6.
const (
	OpServerReqChallenge  uint16 = 4
	OpServerAuthenticate2 uint16 = 15
	OpServerPasswordSet   uint16 = 6
)

// SeqNumNotifier is invoked exactly once per successful negotiation (§6),
// notifying the kpasswd subsystem (or any caller-supplied hook) that the
// Netlogon sequence number has advanced.
type SeqNumNotifier func()
