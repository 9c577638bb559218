// Package pipe provides named pipe operations over SMB, the transport
// \PIPE\NETLOGON rides on for every Netlogon RPC.
package pipe

import (
	"fmt"

	"github.com/go-netlogon/netlogonctl/pkg/smb"
	"github.com/go-netlogon/netlogonctl/pkg/smb/types"
)

// Pipe represents a named pipe connection
type Pipe struct {
	file *smb.File
	tree *smb.Tree
	name string
}

// Open opens a named pipe on the IPC$ share using standard pipe options
func Open(tree *smb.Tree, pipeName string) (*Pipe, error) {
	if !tree.IsPipe() {
		return nil, fmt.Errorf("tree is not an IPC$ share")
	}

	access := types.FileReadData | types.FileWriteData |
		types.FileReadEA | types.FileReadAttributes |
		types.ReadControl | types.Synchronize

	file, err := tree.OpenPipe(pipeName, access)
	if err != nil {
		return nil, fmt.Errorf("failed to open pipe %s: %w", pipeName, err)
	}

	return &Pipe{
		file: file,
		tree: tree,
		name: pipeName,
	}, nil
}

// Read reads data from the pipe.
// Named pipes always read at offset 0, not a tracked file offset.
func (p *Pipe) Read(buf []byte) (int, error) {
	return p.file.ReadAt(buf, 0)
}

// Write writes data to the pipe.
// Named pipes always write at offset 0, not a tracked file offset.
func (p *Pipe) Write(data []byte) (int, error) {
	return p.file.WriteAt(data, 0)
}

// Transact performs a write followed by a read, the pattern every DCE/RPC
// call over a named pipe follows.
func (p *Pipe) Transact(request []byte) ([]byte, error) {
	if _, err := p.Write(request); err != nil {
		return nil, fmt.Errorf("transact write failed: %w", err)
	}

	response := make([]byte, 65536)
	n, err := p.Read(response)
	if err != nil {
		return nil, fmt.Errorf("transact read failed: %w", err)
	}

	return response[:n], nil
}

// Close closes the pipe
func (p *Pipe) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// Name returns the pipe name
func (p *Pipe) Name() string {
	return p.name
}

// Tree returns the parent tree
func (p *Pipe) Tree() *smb.Tree {
	return p.tree
}
