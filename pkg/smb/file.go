package smb

import (
	"fmt"
	"io"

	"github.com/go-netlogon/netlogonctl/internal/encoding"
	"github.com/go-netlogon/netlogonctl/pkg/smb/types"
)

// File represents an open named pipe handle.
//
// Netlogon only ever opens \PIPE\NETLOGON for read/write, so this is
// trimmed down from the teacher's general file/directory handle to what a
// DCE/RPC named-pipe transport needs.
type File struct {
	tree   *Tree
	fileID types.FileID
	name   string
	size   uint64
	offset int64
}

// OpenPipe opens a named pipe on the IPC$ share
func (t *Tree) OpenPipe(pipeName string, access types.AccessMask) (*File, error) {
	pathBytes := encoding.ToUTF16LE(pipeName)

	req := types.NewCreatePipeRequest(pathBytes, access)

	header := types.NewHeader(types.CommandCreate, t.session.nextMessageID())
	header.SessionID = t.session.sessionID
	header.TreeID = t.treeID

	resp, err := t.session.sendRecv(header, req.Marshal())
	if err != nil {
		return nil, fmt.Errorf("create failed: %w", err)
	}

	var respHeader types.Header
	if err := respHeader.Unmarshal(resp[:types.SMB2HeaderSize]); err != nil {
		return nil, fmt.Errorf("failed to parse response header: %w", err)
	}

	if !respHeader.Status.IsSuccess() {
		return nil, StatusToError(respHeader.Status)
	}

	var createResp types.CreateResponse
	if err := createResp.Unmarshal(resp[types.SMB2HeaderSize:]); err != nil {
		return nil, fmt.Errorf("failed to parse create response: %w", err)
	}

	return &File{
		tree:   t,
		fileID: createResp.FileID,
		name:   pipeName,
		size:   createResp.EndOfFile,
	}, nil
}

// Read reads data from the pipe
func (f *File) Read(p []byte) (n int, err error) {
	n, err = f.ReadAt(p, f.offset)
	if err == nil {
		f.offset += int64(n)
	}
	return n, err
}

// ReadAt reads data at a specific offset
func (f *File) ReadAt(p []byte, off int64) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	maxRead := f.tree.session.maxReadSize
	if maxRead == 0 {
		maxRead = 65536
	}

	readLen := uint32(len(p))
	if readLen > maxRead {
		readLen = maxRead
	}

	req := types.NewReadRequest(f.fileID, uint64(off), readLen)

	header := types.NewHeader(types.CommandRead, f.tree.session.nextMessageID())
	header.SessionID = f.tree.session.sessionID
	header.TreeID = f.tree.treeID

	resp, err := f.tree.session.sendRecv(header, req.Marshal())
	if err != nil {
		return 0, fmt.Errorf("read failed: %w", err)
	}

	var respHeader types.Header
	if err := respHeader.Unmarshal(resp[:types.SMB2HeaderSize]); err != nil {
		return 0, fmt.Errorf("failed to parse response header: %w", err)
	}

	if respHeader.Status == types.StatusEndOfFile {
		return 0, io.EOF
	}
	if !respHeader.Status.IsSuccess() {
		return 0, StatusToError(respHeader.Status)
	}

	var readResp types.ReadResponse
	if err := readResp.Unmarshal(resp[types.SMB2HeaderSize:]); err != nil {
		return 0, fmt.Errorf("failed to parse read response: %w", err)
	}

	n = copy(p, readResp.Data)
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}

	return n, nil
}

// Write writes data to the pipe
func (f *File) Write(p []byte) (n int, err error) {
	n, err = f.WriteAt(p, f.offset)
	if err == nil {
		f.offset += int64(n)
	}
	return n, err
}

// WriteAt writes data at a specific offset
func (f *File) WriteAt(p []byte, off int64) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	maxWrite := f.tree.session.maxWriteSize
	if maxWrite == 0 {
		maxWrite = 65536
	}

	totalWritten := 0
	for len(p) > 0 {
		writeLen := len(p)
		if uint32(writeLen) > maxWrite {
			writeLen = int(maxWrite)
		}

		req := types.NewWriteRequest(f.fileID, uint64(off), p[:writeLen])

		header := types.NewHeader(types.CommandWrite, f.tree.session.nextMessageID())
		header.SessionID = f.tree.session.sessionID
		header.TreeID = f.tree.treeID

		resp, err := f.tree.session.sendRecv(header, req.Marshal())
		if err != nil {
			return totalWritten, fmt.Errorf("write failed: %w", err)
		}

		var respHeader types.Header
		if err := respHeader.Unmarshal(resp[:types.SMB2HeaderSize]); err != nil {
			return totalWritten, fmt.Errorf("failed to parse response header: %w", err)
		}

		if !respHeader.Status.IsSuccess() {
			return totalWritten, StatusToError(respHeader.Status)
		}

		var writeResp types.WriteResponse
		if err := writeResp.Unmarshal(resp[types.SMB2HeaderSize:]); err != nil {
			return totalWritten, fmt.Errorf("failed to parse write response: %w", err)
		}

		totalWritten += int(writeResp.Count)
		off += int64(writeResp.Count)
		p = p[writeResp.Count:]
	}

	return totalWritten, nil
}

// Close closes the pipe handle
func (f *File) Close() error {
	if f.fileID.IsZero() {
		return nil
	}

	req := types.NewCloseRequest(f.fileID)

	header := types.NewHeader(types.CommandClose, f.tree.session.nextMessageID())
	header.SessionID = f.tree.session.sessionID
	header.TreeID = f.tree.treeID

	resp, err := f.tree.session.sendRecv(header, req.Marshal())
	if err != nil {
		return fmt.Errorf("close failed: %w", err)
	}

	var respHeader types.Header
	if err := respHeader.Unmarshal(resp[:types.SMB2HeaderSize]); err != nil {
		return fmt.Errorf("failed to parse response header: %w", err)
	}

	if !respHeader.Status.IsSuccess() {
		return StatusToError(respHeader.Status)
	}

	f.fileID = types.FileID{}

	return nil
}

// Name returns the pipe name
func (f *File) Name() string {
	return f.name
}

// FileID returns the SMB file ID
func (f *File) FileID() types.FileID {
	return f.fileID
}
