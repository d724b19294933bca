package reader

import (
	"errors"

	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/fixture"
	"github.com/fystack/wt-reader/pkg/engine/memory"
)

// faultDriver serves a fixture whose table cursors fail with an I/O error
// once failAfter records have been returned.
type faultDriver struct {
	f         *fixture.Fixture
	failAfter int
	closed    int
}

func (d *faultDriver) Name() string { return "fault" }

func (d *faultDriver) Open(string, engine.Options) (engine.Conn, error) {
	return &faultConn{Conn: memory.FromFixture(d.f), d: d}, nil
}

type faultConn struct {
	engine.Conn
	d *faultDriver
}

func (c *faultConn) OpenSession() (engine.Session, error) {
	s, err := c.Conn.OpenSession()
	if err != nil {
		return nil, err
	}
	return &faultSession{Session: s, d: c.d}, nil
}

type faultSession struct {
	engine.Session
	d *faultDriver
}

func (s *faultSession) OpenCursor(uri string) (engine.Cursor, error) {
	c, err := s.Session.OpenCursor(uri)
	if err != nil {
		return nil, err
	}
	return &faultCursor{Cursor: c, d: s.d}, nil
}

type faultCursor struct {
	engine.Cursor
	d    *faultDriver
	seen int
}

func (c *faultCursor) Next() error {
	if c.seen >= c.d.failAfter {
		return engine.Errorf(engine.CodeIO, "next", "", errors.New("checksum mismatch"))
	}
	c.seen++
	return c.Cursor.Next()
}

func (c *faultCursor) Close() error {
	c.d.closed++
	return c.Cursor.Close()
}
