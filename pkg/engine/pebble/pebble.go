// Package pebble reads Pebble stores laid out per package layout.
package pebble

import (
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/layout"
)

type Driver struct{}

func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "pebble" }

// quietLogger drops pebble's informational output; fatal errors still abort.
type quietLogger struct{}

func (quietLogger) Infof(string, ...interface{})  {}
func (quietLogger) Errorf(string, ...interface{}) {}
func (quietLogger) Fatalf(format string, args ...interface{}) {
	pebble.DefaultLogger.Fatalf(format, args...)
}

func (*Driver) Open(path string, opts engine.Options) (engine.Conn, error) {
	if opts.Create || !opts.ReadOnly {
		return nil, engine.Errorf(engine.CodeUnsupported, "open", path, errors.New("only read-only access is supported"))
	}
	db, err := pebble.Open(path, &pebble.Options{
		ReadOnly:         true,
		ErrorIfNotExists: true,
		Logger:           quietLogger{},
	})
	if err != nil {
		return nil, engine.Errorf(engine.OpenCode(err), "open", path, err)
	}
	return &conn{db: db}, nil
}

type conn struct {
	mu     sync.Mutex
	db     *pebble.DB
	closed bool
}

func (c *conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *conn) OpenSession() (engine.Session, error) {
	if c.isClosed() {
		return nil, engine.Errorf(engine.CodeClosed, "open_session", "", nil)
	}
	return &session{conn: c}, nil
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.db.Close(); err != nil {
		return engine.Errorf(engine.CodeIO, "close", "", err)
	}
	return nil
}

type session struct {
	conn   *conn
	closed bool
}

func (s *session) has(key []byte) (bool, error) {
	_, closer, err := s.conn.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (s *session) OpenCursor(uri string) (engine.Cursor, error) {
	if s.closed || s.conn.isClosed() {
		return nil, engine.Errorf(engine.CodeClosed, "open_cursor", uri, nil)
	}
	ok, err := layout.Known(uri, s.has)
	if err != nil {
		return nil, engine.Errorf(engine.CodeIO, "open_cursor", uri, err)
	}
	if !ok {
		return nil, engine.Errorf(engine.CodeNoSuchTable, "open_cursor", uri, nil)
	}

	prefix := layout.Prefix(uri)
	it, err := s.conn.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: layout.UpperBound(prefix),
	})
	if err != nil {
		return nil, engine.Errorf(engine.CodeIO, "open_cursor", uri, err)
	}
	return &cursor{uri: uri, prefix: prefix, it: it}, nil
}

func (s *session) Close() error {
	s.closed = true
	return nil
}

type cursor struct {
	uri     string
	prefix  []byte
	it      *pebble.Iterator
	started bool
	done    bool
	closed  bool
}

func (c *cursor) Next() error {
	if c.closed {
		return engine.Errorf(engine.CodeClosed, "next", c.uri, nil)
	}
	if c.done {
		return engine.NotFound(c.uri)
	}
	var valid bool
	if !c.started {
		valid = c.it.First()
		c.started = true
	} else {
		valid = c.it.Next()
	}
	if !valid {
		c.done = true
		if err := c.it.Error(); err != nil {
			return engine.Errorf(engine.CodeIO, "next", c.uri, err)
		}
		return engine.NotFound(c.uri)
	}
	return nil
}

func (c *cursor) positioned(op string) error {
	if c.closed {
		return engine.Errorf(engine.CodeClosed, op, c.uri, nil)
	}
	if !c.started || c.done {
		return engine.Errorf(engine.CodeInvalidArgument, op, c.uri, errors.New("cursor not positioned"))
	}
	return nil
}

func (c *cursor) Key() ([]byte, error) {
	if err := c.positioned("get_key"); err != nil {
		return nil, err
	}
	return layout.Strip(c.prefix, c.it.Key()), nil
}

func (c *cursor) Value() ([]byte, error) {
	if err := c.positioned("get_value"); err != nil {
		return nil, err
	}
	v, err := c.it.ValueAndErr()
	if err != nil {
		return nil, engine.Errorf(engine.CodeIO, "get_value", c.uri, err)
	}
	return append([]byte{}, v...), nil
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.it.Close(); err != nil {
		return engine.Errorf(engine.CodeIO, "close", c.uri, err)
	}
	return nil
}
