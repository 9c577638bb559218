// Package netrpc implements pkg/netlogon's Transport over a real DCE/RPC
// connection: dial IPC$, open \PIPE\NETLOGON, bind the NRPC interface, and
// relay opnum calls through pkg/dcerpc's request/response framing.
package netrpc

import (
	"context"
	"fmt"

	"github.com/go-netlogon/netlogonctl/pkg/auth"
	"github.com/go-netlogon/netlogonctl/pkg/dcerpc"
	"github.com/go-netlogon/netlogonctl/pkg/pipe"
	"github.com/go-netlogon/netlogonctl/pkg/smb"
)

// NRPCPipeName is the named pipe \PIPE\NETLOGON rides on.
const NRPCPipeName = "netlogon"

// Transport dials a DC over SMB2 and speaks DCE/RPC to \PIPE\NETLOGON,
// implementing netlogon.Transport. It owns the SMB client end-to-end:
// Close tears down the pipe, tree, session, and connection together.
type Transport struct {
	ctx    context.Context
	client *smb.Client
	tree   *smb.Tree
	pipe   *pipe.Pipe
	rpc    *dcerpc.Client
}

// Dial connects to host:port over SMB2, connects IPC$ anonymously, and
// returns a Transport ready for Bind. Negotiation itself never uses
// credentials beyond an anonymous session, per §4.5: Netlogon's own
// handshake is the authentication.
func Dial(ctx context.Context, host string, port int) (*Transport, error) {
	client := smb.NewClient()
	if err := client.Connect(ctx, host, port); err != nil {
		return nil, fmt.Errorf("netrpc: connect: %w", err)
	}

	if err := client.Authenticate(ctx, auth.NewAnonymousCredentials()); err != nil {
		client.Close()
		return nil, fmt.Errorf("netrpc: anonymous session setup: %w", err)
	}

	tree, err := client.GetIPCTree(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("netrpc: IPC$ tree connect: %w", err)
	}

	p, err := pipe.Open(tree, NRPCPipeName)
	if err != nil {
		client.TreeDisconnect(ctx, tree)
		client.Close()
		return nil, fmt.Errorf("netrpc: open \\PIPE\\%s: %w", NRPCPipeName, err)
	}

	return &Transport{
		ctx:    ctx,
		client: client,
		tree:   tree,
		pipe:   p,
		rpc:    dcerpc.NewClient(p),
	}, nil
}

// Bind binds the NRPC interface over the already-open pipe.
func (t *Transport) Bind() error {
	if err := t.rpc.Bind(dcerpc.NRPC_UUID, 1); err != nil {
		return fmt.Errorf("netrpc: bind NRPC: %w", err)
	}
	return nil
}

// Call issues opnum with stubData and returns the response stub data.
func (t *Transport) Call(opnum uint16, stubData []byte) ([]byte, error) {
	resp, err := t.rpc.Call(opnum, stubData)
	if err != nil {
		return nil, fmt.Errorf("netrpc: call opnum %d: %w", opnum, err)
	}
	return resp, nil
}

// Close tears down the pipe, tree, and SMB connection.
func (t *Transport) Close() error {
	if t.pipe != nil {
		t.pipe.Close()
	}
	if t.tree != nil {
		t.client.TreeDisconnect(t.ctx, t.tree)
	}
	return t.client.Close()
}
