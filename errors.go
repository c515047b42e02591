package cdg

import "errors"

// Sentinel errors shared across the module. Wrapped errors can be tested
// with errors.Is.
var (
	// ErrConfiguration marks fatal pre-flight configuration problems.
	// Composition never starts when one is raised.
	ErrConfiguration = errors.New("cdg: invalid configuration")

	// ErrResource marks a missing optional resource (font file,
	// background image). Callers recover by falling back to a default and
	// logging a warning.
	ErrResource = errors.New("cdg: resource unavailable")
)
