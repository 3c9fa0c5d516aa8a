package propbin

import (
	"errors"
	"fmt"
)

// ErrMalformed classifies every decode failure caused by the input
// bytes: magic mismatch, unsupported version marker, truncation,
// out-of-range Option count, unrecognized type tag. Match with
// errors.Is. I/O failures from the underlying reader are propagated
// unchanged and do not match.
var ErrMalformed = errors.New("malformed bin data")

// FormatError is the concrete malformed-input error, carrying the
// byte offset where the cursor stopped making sense. Once the cursor
// is desynchronized there is no resynchronization point in a
// length-prefixed format, so the stream position after one of these
// is undefined.
type FormatError struct {
	Off int64
	Msg string
	Err error
}

func formatErrf(off int64, err error, format string, args ...any) error {
	return &FormatError{off, fmt.Sprintf(format, args...), err}
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrMalformed
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bin data at offset %d: %s: %v", e.Off, e.Msg, e.Err)
	}
	return fmt.Sprintf("bin data at offset %d: %s", e.Off, e.Msg)
}
