// FILE: ziplog/src/internal/core/errors.go
package core

import "errors"

// Error kinds. Call sites wrap them with fmt.Errorf("%w: ...: %w", kind, cause)
// so both the kind and the cause stay matchable with errors.Is.
var (
	// ErrInvalidArgument marks programmer misuse: unknown level, unrepresentable argument
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConnection marks a rendezvous endpoint that cannot be reached or kept
	ErrConnection = errors.New("connection error")
	// ErrConfiguration marks a rendezvous or sink location that cannot be determined
	ErrConfiguration = errors.New("configuration error")
	// ErrStorage marks a sink directory or file that cannot be created or written
	ErrStorage = errors.New("storage error")
	// ErrParse marks a malformed wire line
	ErrParse = errors.New("parse error")
	// ErrClosed is returned by submitters once closing has started
	ErrClosed = errors.New("closed")
	// ErrAmbiguousErrors reports that more than one error argument was passed and all but the first were ignored
	ErrAmbiguousErrors = errors.New("multiple error arguments, only the first is logged")
)
