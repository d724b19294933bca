package store

import (
	"fmt"

	"github.com/fystack/wt-reader/pkg/engine"
)

// Kind classifies failures at the store boundary.
type Kind int

const (
	KindOpen Kind = iota + 1
	KindSession
	KindCursorOpen
	KindCursor
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindSession:
		return "session"
	case KindCursorOpen:
		return "cursor open"
	case KindCursor:
		return "cursor"
	case KindInvalidState:
		return "invalid cursor state"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Error struct {
	Kind Kind
	Op   string
	// Target is the store path for KindOpen, the cursor URI otherwise.
	Target string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Target == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrOpen         = &Error{Kind: KindOpen}
	ErrSession      = &Error{Kind: KindSession}
	ErrCursorOpen   = &Error{Kind: KindCursorOpen}
	ErrCursor       = &Error{Kind: KindCursor}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrNoSuchTable  = engine.ErrNoSuchTable
)

func newError(kind Kind, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Err: err}
}
