package netlogon

import "sync/atomic"

// Bits accepted by InitGlobalPolicy, per §6.
const (
	PolicyDisableSecureRPC     uint32 = 1 << 0
	PolicyDisableVerifyReplies uint32 = 1 << 1
	PolicyDisableLogonEx       uint32 = 1 << 2
)

// GlobalPolicy is process-wide, read-mostly, and initialized once (§5):
// callers read it without locking, and InitGlobalPolicy is expected to run
// once at process start before any Negotiate call.
type GlobalPolicy struct {
	UseSecureRPC        bool
	UseLogonEx          bool
	VerifyRPCResponses  bool
}

var globalPolicy atomic.Pointer[GlobalPolicy]

func init() {
	InitGlobalPolicy(0)
}

// InitGlobalPolicy sets the process-wide policy from a bitfield: bit 0
// disables secure RPC, bit 1 disables RPC response verification, bit 2
// disables SamLogonEx (§6).
func InitGlobalPolicy(flags uint32) {
	p := &GlobalPolicy{
		UseSecureRPC:       flags&PolicyDisableSecureRPC == 0,
		UseLogonEx:         flags&PolicyDisableLogonEx == 0,
		VerifyRPCResponses: flags&PolicyDisableVerifyReplies == 0,
	}
	globalPolicy.Store(p)
}

// Policy returns the current process-wide policy.
func Policy() GlobalPolicy {
	return *globalPolicy.Load()
}
