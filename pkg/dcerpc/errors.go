package dcerpc

import "errors"

// Common errors
var (
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrBindFailed     = errors.New("bind failed")
	ErrNotBound       = errors.New("not bound to interface")
)
