package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure surfaced by the command layer.
type Kind int

const (
	Validation      Kind = iota + 1 // caller input failed a local invariant
	AuthRequired                    // no authenticated session
	BackendRejected                 // storage backend refused or failed
	Parse                           // malformed structured payload
	Timeout                         // bounded wait expired
	NotFound                        // referenced record does not exist
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case AuthRequired:
		return "auth_required"
	case BackendRejected:
		return "backend_rejected"
	case Parse:
		return "parse"
	case Timeout:
		return "timeout"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a typed failure. Op names the command that failed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error without a cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap builds an Error around cause. It returns nil for a nil cause.
func Wrap(kind Kind, op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
