// Package memory serves a YAML fixture as an in-memory, read-only store.
package memory

import (
	"bytes"
	"errors"
	"sync"

	"github.com/zhangyunhao116/skipmap"

	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/fixture"
)

type orderedMap = skipmap.FuncMap[[]byte, []byte]

func newOrderedMap() *orderedMap {
	return skipmap.NewFunc[[]byte, []byte](func(a, b []byte) bool {
		return bytes.Compare(a, b) < 0
	})
}

type Driver struct{}

func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "memory" }

// Open loads the fixture file at path. The file is only read.
func (*Driver) Open(path string, opts engine.Options) (engine.Conn, error) {
	if opts.Create || !opts.ReadOnly {
		return nil, engine.Errorf(engine.CodeUnsupported, "open", path, errors.New("memory store is read-only"))
	}
	f, err := fixture.Load(path)
	if err != nil {
		return nil, engine.Errorf(engine.CodeInvalidStore, "open", path, err)
	}
	return FromFixture(f), nil
}

// FromFixture builds an open connection over f without touching disk.
func FromFixture(f *fixture.Fixture) engine.Conn {
	c := &conn{
		meta:   newOrderedMap(),
		tables: make(map[string]*orderedMap, len(f.Tables)),
	}
	for _, e := range f.Entries() {
		c.meta.Store([]byte(e.URI), []byte(e.Config))
	}
	for _, t := range f.Tables {
		m := newOrderedMap()
		for _, kv := range t.KVs() {
			m.Store(kv.Key, kv.Value)
		}
		c.tables[engine.TableURI(t.Name)] = m
	}
	return c
}

type conn struct {
	mu     sync.Mutex
	closed bool
	meta   *orderedMap
	tables map[string]*orderedMap
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
	c.closed = true
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
	m := s.conn.meta
	if uri != engine.MetadataURI {
		var ok bool
		if m, ok = s.conn.tables[uri]; !ok {
			return nil, engine.Errorf(engine.CodeNoSuchTable, "open_cursor", uri, nil)
		}
	}
	cur := &cursor{uri: uri, pos: -1}
	m.Range(func(k, v []byte) bool {
		cur.items = append(cur.items, fixture.KV{Key: k, Value: v})
		return true
	})
	return cur, nil
}

func (s *session) Close() error {
	s.closed = true
	return nil
}

// cursor iterates a snapshot taken when it was opened.
type cursor struct {
	uri    string
	items  []fixture.KV
	pos    int
	closed bool
}

func (c *cursor) Next() error {
	if c.closed {
		return engine.Errorf(engine.CodeClosed, "next", c.uri, nil)
	}
	if c.pos < len(c.items) {
		c.pos++
	}
	if c.pos >= len(c.items) {
		return engine.NotFound(c.uri)
	}
	return nil
}

func (c *cursor) current(op string) (fixture.KV, error) {
	if c.closed {
		return fixture.KV{}, engine.Errorf(engine.CodeClosed, op, c.uri, nil)
	}
	if c.pos < 0 || c.pos >= len(c.items) {
		return fixture.KV{}, engine.Errorf(engine.CodeInvalidArgument, op, c.uri, errors.New("cursor not positioned"))
	}
	return c.items[c.pos], nil
}

func (c *cursor) Key() ([]byte, error) {
	kv, err := c.current("get_key")
	return bytes.Clone(kv.Key), err
}

func (c *cursor) Value() ([]byte, error) {
	kv, err := c.current("get_value")
	return bytes.Clone(kv.Value), err
}

func (c *cursor) Close() error {
	c.closed = true
	c.items = nil
	return nil
}
