package netlogon

import "time"

// currentTimestamp returns the 32-bit free-running counter value used as
// the authenticator timestamp (§4.6). Wraps naturally every ~136 years;
// the protocol only requires it strictly advance within a channel's
// lifetime, not any particular epoch.
func currentTimestamp() uint32 {
	return uint32(time.Now().Unix())
}
