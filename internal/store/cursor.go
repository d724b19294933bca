package store

import (
	"errors"
	"fmt"

	"github.com/fystack/wt-reader/pkg/engine"
)

// Position is where a cursor stands in its sequence.
type Position int

const (
	BeforeFirst Position = iota
	OnRecord
	Exhausted
	Failed
	Closed
)

func (p Position) String() string {
	switch p {
	case BeforeFirst:
		return "before-first"
	case OnRecord:
		return "on-record"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// Result of a successful Advance.
type Result int

const (
	NotFound Result = iota
	Found
)

func (r Result) String() string {
	if r == Found {
		return "found"
	}
	return "not found"
}

// Cursor is a forward-only iterator over one namespace. Exhausted, Failed
// and Closed are terminal: open a new cursor to iterate again.
type Cursor struct {
	session *Session
	cur     engine.Cursor
	uri     string
	pos     Position
	err     error
}

func (c *Cursor) URI() string { return c.uri }

func (c *Cursor) Position() Position { return c.pos }

// Err returns the error that moved the cursor to Failed.
func (c *Cursor) Err() error { return c.err }

// Advance moves to the next record in ascending key order. End of sequence
// is (NotFound, nil); any other engine failure is a KindCursor error and
// leaves the cursor Failed.
func (c *Cursor) Advance() (Result, error) {
	switch c.pos {
	case Exhausted:
		return NotFound, nil
	case Failed, Closed:
		return NotFound, c.stateError("next")
	}
	if c.cur == nil {
		return NotFound, c.stateError("next")
	}

	err := c.cur.Next()
	switch {
	case err == nil:
		c.pos = OnRecord
		return Found, nil
	case errors.Is(err, engine.ErrNotFound):
		c.pos = Exhausted
		return NotFound, nil
	default:
		c.pos = Failed
		c.err = newError(KindCursor, "next", c.uri, err)
		return NotFound, c.err
	}
}

func (c *Cursor) stateError(op string) error {
	if c.cur == nil && c.pos != Closed {
		return newError(KindInvalidState, op, c.uri, errors.New("cursor is not open"))
	}
	return newError(KindInvalidState, op, c.uri, fmt.Errorf("cursor is %s", c.pos))
}

// Key returns the current record's key. Valid only after Advance returned Found.
func (c *Cursor) Key() ([]byte, error) {
	if c.pos != OnRecord || c.cur == nil {
		return nil, c.stateError("get_key")
	}
	k, err := c.cur.Key()
	if err != nil {
		return nil, c.fail("get_key", err)
	}
	return k, nil
}

// Value returns the current record's value, undecoded.
func (c *Cursor) Value() ([]byte, error) {
	if c.pos != OnRecord || c.cur == nil {
		return nil, c.stateError("get_value")
	}
	v, err := c.cur.Value()
	if err != nil {
		return nil, c.fail("get_value", err)
	}
	return v, nil
}

func (c *Cursor) fail(op string, err error) error {
	c.pos = Failed
	c.err = newError(KindCursor, op, c.uri, err)
	return c.err
}

// Close releases the engine cursor. It is idempotent and a no-op on nil or
// never-opened cursors.
func (c *Cursor) Close() error {
	if c == nil || c.pos == Closed {
		return nil
	}
	c.pos = Closed
	if c.cur == nil {
		return nil
	}
	err := c.cur.Close()
	c.cur = nil
	if c.session != nil {
		delete(c.session.cursors, c)
	}
	if err != nil {
		return newError(KindCursor, "close", c.uri, err)
	}
	return nil
}
