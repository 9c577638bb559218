package crypto

import "errors"

// ErrCryptoFailure is the single sentinel every primitive in this package
// collapses an internal failure to, matching spec's "no error returns other
// than a single CryptoFailure signal propagated upward" contract.
var ErrCryptoFailure = errors.New("crypto primitive failure")
