// Package bolt reads bbolt files holding one bucket per table URI plus a
// "metadata:" bucket with the catalog.
package bolt

import (
	"bytes"
	"errors"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fystack/wt-reader/pkg/engine"
)

const DefaultLockTimeout = time.Second

type Driver struct {
	// LockTimeout bounds the wait for a writer's file lock.
	LockTimeout time.Duration
}

func New() *Driver { return &Driver{LockTimeout: DefaultLockTimeout} }

func (*Driver) Name() string { return "bolt" }

func (d *Driver) Open(path string, opts engine.Options) (engine.Conn, error) {
	if opts.Create || !opts.ReadOnly {
		return nil, engine.Errorf(engine.CodeUnsupported, "open", path, errors.New("only read-only access is supported"))
	}
	timeout := d.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	db, err := bolt.Open(path, 0o400, &bolt.Options{ReadOnly: true, Timeout: timeout})
	if err != nil {
		code := engine.OpenCode(err)
		if errors.Is(err, bolt.ErrTimeout) {
			code = engine.CodeBusy
		}
		return nil, engine.Errorf(code, "open", path, err)
	}
	return &conn{db: db}, nil
}

type conn struct {
	mu     sync.Mutex
	db     *bolt.DB
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

func (s *session) OpenCursor(uri string) (engine.Cursor, error) {
	if s.closed || s.conn.isClosed() {
		return nil, engine.Errorf(engine.CodeClosed, "open_cursor", uri, nil)
	}
	tx, err := s.conn.db.Begin(false)
	if err != nil {
		return nil, engine.Errorf(engine.CodeIO, "open_cursor", uri, err)
	}
	b := tx.Bucket([]byte(uri))
	if b == nil {
		_ = tx.Rollback()
		return nil, engine.Errorf(engine.CodeNoSuchTable, "open_cursor", uri, nil)
	}
	return &cursor{uri: uri, tx: tx, c: b.Cursor()}, nil
}

func (s *session) Close() error {
	s.closed = true
	return nil
}

type cursor struct {
	uri     string
	tx      *bolt.Tx
	c       *bolt.Cursor
	key     []byte
	value   []byte
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
	if !c.started {
		c.key, c.value = c.c.First()
		c.started = true
	} else {
		c.key, c.value = c.c.Next()
	}
	if c.key == nil {
		c.done = true
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

// Key and Value copy out of the mmap, which is unmapped when the
// transaction ends.
func (c *cursor) Key() ([]byte, error) {
	if err := c.positioned("get_key"); err != nil {
		return nil, err
	}
	return bytes.Clone(c.key), nil
}

func (c *cursor) Value() ([]byte, error) {
	if err := c.positioned("get_value"); err != nil {
		return nil, err
	}
	return append([]byte{}, c.value...), nil
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.tx.Rollback(); err != nil {
		return engine.Errorf(engine.CodeIO, "close", c.uri, err)
	}
	return nil
}
