package catalog

import (
	"errors"

	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/fixture"
	"github.com/fystack/wt-reader/pkg/engine/memory"
)

// faultDriver serves a fixture whose metadata cursor fails once failAfter
// entries have been returned.
type faultDriver struct {
	f         *fixture.Fixture
	failAfter int
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
	if err != nil || uri != engine.MetadataURI {
		return c, err
	}
	return &faultCursor{Cursor: c, failAfter: s.d.failAfter}, nil
}

type faultCursor struct {
	engine.Cursor
	failAfter int
	seen      int
}

func (c *faultCursor) Next() error {
	if c.seen >= c.failAfter {
		return engine.Errorf(engine.CodeIO, "next", engine.MetadataURI, errors.New("boom"))
	}
	c.seen++
	return c.Cursor.Next()
}
