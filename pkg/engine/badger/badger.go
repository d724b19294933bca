// Package badger reads stores written by BadgerDB using the flat keyspace of
// package layout.
package badger

import (
	"bytes"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/layout"
)

type Driver struct{}

func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "badger" }

func (*Driver) Open(path string, opts engine.Options) (engine.Conn, error) {
	if opts.Create || !opts.ReadOnly {
		return nil, engine.Errorf(engine.CodeUnsupported, "open", path, errors.New("only read-only access is supported"))
	}
	bopts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithReadOnly(true)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, engine.Errorf(engine.OpenCode(err), "open", path, err)
	}
	return &conn{db: db}, nil
}

type conn struct {
	mu     sync.Mutex
	db     *badger.DB
	closed bool
}

func (c *conn) OpenSession() (engine.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
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
	if s.closed {
		return nil, engine.Errorf(engine.CodeClosed, "open_cursor", uri, nil)
	}
	s.conn.mu.Lock()
	closed := s.conn.closed
	s.conn.mu.Unlock()
	if closed {
		return nil, engine.Errorf(engine.CodeClosed, "open_cursor", uri, nil)
	}

	txn := s.conn.db.NewTransaction(false)
	ok, err := layout.Known(uri, func(key []byte) (bool, error) {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		txn.Discard()
		return nil, engine.Errorf(engine.CodeIO, "open_cursor", uri, err)
	}
	if !ok {
		txn.Discard()
		return nil, engine.Errorf(engine.CodeNoSuchTable, "open_cursor", uri, nil)
	}

	prefix := layout.Prefix(uri)
	iopts := badger.DefaultIteratorOptions
	iopts.Prefix = prefix
	return &cursor{
		uri:    uri,
		prefix: prefix,
		txn:    txn,
		it:     txn.NewIterator(iopts),
	}, nil
}

func (s *session) Close() error {
	s.closed = true
	return nil
}

type cursor struct {
	uri     string
	prefix  []byte
	txn     *badger.Txn
	it      *badger.Iterator
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
		c.it.Seek(c.prefix)
		c.started = true
	} else {
		c.it.Next()
	}
	if !c.it.ValidForPrefix(c.prefix) {
		c.done = true
		return engine.NotFound(c.uri)
	}
	return nil
}

func (c *cursor) item(op string) (*badger.Item, error) {
	if c.closed {
		return nil, engine.Errorf(engine.CodeClosed, op, c.uri, nil)
	}
	if !c.started || c.done {
		return nil, engine.Errorf(engine.CodeInvalidArgument, op, c.uri, errors.New("cursor not positioned"))
	}
	return c.it.Item(), nil
}

func (c *cursor) Key() ([]byte, error) {
	item, err := c.item("get_key")
	if err != nil {
		return nil, err
	}
	return layout.Strip(c.prefix, item.Key()), nil
}

func (c *cursor) Value() ([]byte, error) {
	item, err := c.item("get_value")
	if err != nil {
		return nil, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, engine.Errorf(engine.CodeIO, "get_value", c.uri, err)
	}
	if v == nil {
		v = []byte{}
	}
	return bytes.Clone(v), nil
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.it.Close()
	c.txn.Discard()
	return nil
}
