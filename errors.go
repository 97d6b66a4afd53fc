package bitspacket

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedStream reports that the children of a total-bits operator
	// did not consume exactly the declared number of bits.
	ErrTruncatedStream = errors.New("bitspacket: truncated stream")

	// ErrOverflow reports a value that does not fit in 64 bits.
	ErrOverflow = errors.New("bitspacket: value overflows uint64")

	// ErrUnexpectedEnd is returned in strict mode when a read runs past the buffer.
	ErrUnexpectedEnd = errors.New("bitspacket: unexpected end of buffer")

	// ErrDepthExceeded reports nesting deeper than Options.MaxDepth.
	ErrDepthExceeded = errors.New("bitspacket: packet nesting too deep")

	ErrWidth = errors.New("bitspacket: read width out of range")

	ErrArity       = errors.New("bitspacket: comparison needs exactly two operands")
	ErrNoOperands  = errors.New("bitspacket: operator has no operands")
	ErrUnknownType = errors.New("bitspacket: unknown packet type")
)

// DecodeError records the bit offset at which decoding failed.
// It unwraps to one of the sentinel errors above.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed at bit %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
