package bmff

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (possibly wrapped) by Decode and Encode.
var (
	// ErrUnexpectedEnd means the input was exhausted before a required
	// field could be read.
	ErrUnexpectedEnd = errors.New("bmff: unexpected end of input")

	// ErrConstMismatch means a constant-valued field did not match its
	// expected value (e.g. a box type tag that disagreed with the schema
	// that was about to parse it).
	ErrConstMismatch = errors.New("bmff: constant mismatch")

	// ErrLengthOverrun means a sub-parser consumed more bytes than the
	// enclosing box's length prefix allowed.
	ErrLengthOverrun = errors.New("bmff: length overrun")

	// ErrLengthUnderrun means a box's size field is smaller than its own
	// 8-byte size+type header. Typed box bodies are not checked for bytes
	// left over after their last field.
	ErrLengthUnderrun = errors.New("bmff: length underrun")

	// ErrBoxNotFound is returned by First when no box of the requested
	// type exists in the subtree.
	ErrBoxNotFound = errors.New("bmff: box not found")

	// ErrInvalidUTF8 means a string field failed UTF-8 validation.
	ErrInvalidUTF8 = errors.New("bmff: invalid utf-8")

	// ErrUnsupportedLength64 means the box used the extended 64-bit size
	// framing (size field == 1, real size in the following 8 bytes),
	// which this decoder does not support.
	ErrUnsupportedLength64 = errors.New("bmff: 64-bit extended box length not supported")
)

// parseError annotates an error with the path of schema names traversed,
// for diagnostics. It wraps the underlying sentinel so errors.Is still
// matches against ErrUnexpectedEnd etc.
type parseError struct {
	path string
	err  error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("bmff: %s: %v", e.path, e.err)
}

func (e *parseError) Unwrap() error { return e.err }

// wrapPath prefixes err with a box-type name for diagnostics. If err is
// already a *parseError, the name is prepended to its existing path.
func wrapPath(name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *parseError
	if errors.As(err, &pe) {
		return &parseError{path: name + "/" + pe.path, err: pe.err}
	}
	return &parseError{path: name, err: err}
}
