package markdown

import "github.com/pkg/errors"

// Parse failure and parse timeout are the two caller-visible error kinds
// and are distinguishable via errors.Is; every other failure in this
// package is a programmer error and is reported as a panic.
var (
	// ErrParseFailure indicates the input did not match the document
	// grammar at all. Parse returns it wrapped with context via
	// errors.Wrap so callers keep a stack trace.
	ErrParseFailure = errors.New("markdown: parse failure")

	// ErrTimeout indicates the parsing deadline was exceeded.
	ErrTimeout = errors.New("markdown: parse timeout")
)

// timeoutSignal is panicked by the deadline check at the hot recursion
// points (inline entry, link label, image alt) and recovered at the top
// of Parse.
type timeoutSignal struct{}

// parseFailureSignal is panicked by the nesting guard when block or inline
// descent exceeds maxNesting, and recovered at the top of Parse, which
// reports it as ErrParseFailure.
type parseFailureSignal struct{ reason string }
