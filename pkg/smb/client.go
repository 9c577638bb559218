// Package smb provides SMB2 protocol plumbing for an anonymous IPC$ session.
//
// Netlogon only ever rides over \PIPE\NETLOGON inside an IPC$ tree on an
// anonymous (NULL) session — a Netlogon secure channel carries its own
// authentication inside the RPC payload, so this package's job stops at
// dialect negotiation, session setup, and tree/pipe plumbing:
//   - Connection establishment with dialect negotiation
//   - Anonymous (and, where a caller supplies credentials, NTLM) session setup
//   - IPC$ tree connection
//   - Named pipe create/read/write/close (pkg/netrpc's framing for dcerpc)
//
// Basic usage:
//
//	client := smb.NewClient()
//	if err := client.Connect(ctx, "dc01.example.com", 445); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Authenticate(ctx, auth.NewAnonymousCredentials()); err != nil {
//	    log.Fatal(err)
//	}
//
//	tree, err := client.GetIPCTree(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
package smb

import (
	"context"
	"fmt"
	"time"

	"github.com/go-netlogon/netlogonctl/pkg/auth"
	"github.com/go-netlogon/netlogonctl/pkg/smb/types"
)

// Client represents an SMB2 client restricted to anonymous/NTLM IPC$ sessions.
type Client struct {
	config    ClientConfig
	transport *Transport
	session   *Session
	negResult *NegotiateResult
	ipcTree   *Tree // never assigned; GetIPCTree connects a new tree per call
}

// ClientConfig configures client behavior
type ClientConfig struct {
	Timeout          time.Duration
	PreferredDialect types.Dialect
	RequireSigning   bool
	MaxCredits       uint16
	Socks5URL        string // SOCKS5 proxy URL (e.g., "socks5://127.0.0.1:1080")
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:          30 * time.Second,
		PreferredDialect: types.DialectSMB3_0_2,
		MaxCredits:       128,
	}
}

// NewClient creates a new SMB client with default configuration
func NewClient() *Client {
	return NewClientWithConfig(DefaultClientConfig())
}

// NewClientWithConfig creates a new SMB client with custom configuration
func NewClientWithConfig(config ClientConfig) *Client {
	return &Client{
		config: config,
	}
}

// Connect establishes a connection to an SMB server
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	transport, err := DialWithConfig(ctx, host, port, TransportConfig{
		Timeout:   c.config.Timeout,
		Socks5URL: c.config.Socks5URL,
	})
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	c.transport = transport

	negotiator := NewNegotiator(transport)
	negResult, err := negotiator.Negotiate(ctx)
	if err != nil {
		c.transport.Close()
		c.transport = nil
		return fmt.Errorf("negotiation failed: %w", err)
	}
	c.negResult = negResult

	return nil
}

// Authenticate performs anonymous or NTLM session setup
func (c *Client) Authenticate(ctx context.Context, creds auth.Credentials) error {
	if c.transport == nil || c.negResult == nil {
		return ErrNotConnected
	}

	c.session = NewSession(c.transport, c.negResult)

	if err := c.session.Authenticate(ctx, creds, c.negResult); err != nil {
		return err
	}

	return nil
}

// TreeConnect connects to a share
func (c *Client) TreeConnect(ctx context.Context, shareName string) (*Tree, error) {
	if c.session == nil || !c.session.IsAuthenticated() {
		return nil, ErrNotConnected
	}

	return c.session.TreeConnect(ctx, shareName)
}

// TreeDisconnect disconnects from a share
func (c *Client) TreeDisconnect(ctx context.Context, tree *Tree) error {
	if c.session == nil {
		return nil
	}

	if tree == c.ipcTree {
		return nil
	}

	return c.session.TreeDisconnect(ctx, tree)
}

// GetIPCTree returns an IPC$ tree connection for RPC operations.
// Each call creates a new tree to avoid state corruption when reused across
// pipe operations.
func (c *Client) GetIPCTree(ctx context.Context) (*Tree, error) {
	if c.session == nil || !c.session.IsAuthenticated() {
		return nil, ErrNotConnected
	}

	tree, err := c.session.TreeConnect(ctx, "IPC$")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IPC$: %w", err)
	}

	return tree, nil
}

// Close closes the client connection
func (c *Client) Close() error {
	if c.ipcTree != nil && c.session != nil {
		c.session.TreeDisconnect(context.Background(), c.ipcTree)
		c.ipcTree = nil
	}

	if c.session != nil {
		c.session.Close()
		c.session = nil
	}

	if c.transport != nil {
		err := c.transport.Close()
		c.transport = nil
		return err
	}

	return nil
}

// Session returns the current session
func (c *Client) Session() *Session {
	return c.session
}

// NegotiateResult returns the negotiation result
func (c *Client) NegotiateResult() *NegotiateResult {
	return c.negResult
}

// IsConnected returns true if connected and authenticated
func (c *Client) IsConnected() bool {
	return c.session != nil && c.session.IsAuthenticated()
}

// Dialect returns the negotiated dialect
func (c *Client) Dialect() types.Dialect {
	if c.negResult != nil {
		return c.negResult.Dialect
	}
	return 0
}

// DialectName returns the negotiated dialect as a string
func (c *Client) DialectName() string {
	return DialectName(c.Dialect())
}
