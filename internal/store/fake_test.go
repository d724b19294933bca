package store

import (
	"errors"

	"github.com/fystack/wt-reader/pkg/engine"
)

// fakeDriver serves scripted records and failures.
type fakeDriver struct {
	openErrs   []error // returned by successive Open calls before succeeding
	opens      int
	sessionErr error
	records    [][2]string
	failAt     int // Next fails with CodeIO on this call (1-based), 0 = never
	keyErr     error
	conn       *fakeConn
}

func (d *fakeDriver) Name() string { return "fake" }

func (d *fakeDriver) Open(string, engine.Options) (engine.Conn, error) {
	d.opens++
	if d.opens <= len(d.openErrs) {
		return nil, d.openErrs[d.opens-1]
	}
	d.conn = &fakeConn{d: d}
	return d.conn, nil
}

type fakeConn struct {
	d      *fakeDriver
	closed int
	events []string
}

func (c *fakeConn) OpenSession() (engine.Session, error) {
	if c.d.sessionErr != nil {
		return nil, c.d.sessionErr
	}
	return &fakeSession{c: c}, nil
}

func (c *fakeConn) Close() error {
	c.closed++
	c.events = append(c.events, "conn")
	return nil
}

type fakeSession struct {
	c *fakeConn
}

func (s *fakeSession) OpenCursor(uri string) (engine.Cursor, error) {
	if uri == engine.TableURI("missing") {
		return nil, engine.Errorf(engine.CodeNoSuchTable, "open_cursor", uri, nil)
	}
	return &fakeCursor{s: s, uri: uri, pos: -1}, nil
}

func (s *fakeSession) Close() error {
	s.c.events = append(s.c.events, "session")
	return nil
}

type fakeCursor struct {
	s     *fakeSession
	uri   string
	pos   int
	calls int
}

func (c *fakeCursor) Next() error {
	c.calls++
	if c.s.c.d.failAt == c.calls {
		return engine.Errorf(engine.CodeIO, "next", c.uri, errors.New("read error"))
	}
	c.pos++
	if c.pos >= len(c.s.c.d.records) {
		return engine.NotFound(c.uri)
	}
	return nil
}

func (c *fakeCursor) Key() ([]byte, error) {
	if c.s.c.d.keyErr != nil {
		return nil, c.s.c.d.keyErr
	}
	return []byte(c.s.c.d.records[c.pos][0]), nil
}

func (c *fakeCursor) Value() ([]byte, error) {
	return []byte(c.s.c.d.records[c.pos][1]), nil
}

func (c *fakeCursor) Close() error {
	c.s.c.events = append(c.s.c.events, "cursor")
	return nil
}
