package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fystack/wt-reader/pkg/engine"
)

type Session struct {
	handle  *Handle
	sess    engine.Session
	state   state
	cursors map[*Cursor]struct{}
	log     *slog.Logger
}

func (s *Session) IsOpen() bool {
	return s != nil && s.state == stateOpen && s.handle.IsOpen()
}

// OpenCursor opens a forward cursor on uri. A missing table fails with an
// error matching both ErrCursorOpen and ErrNoSuchTable.
func (s *Session) OpenCursor(uri string) (*Cursor, error) {
	if !s.IsOpen() {
		return nil, newError(KindCursorOpen, "open_cursor", uri, errors.New("session is not open"))
	}
	ec, err := s.sess.OpenCursor(uri)
	if err != nil {
		return nil, newError(KindCursorOpen, "open_cursor", uri, err)
	}
	c := &Cursor{session: s, cur: ec, uri: uri, pos: BeforeFirst}
	s.cursors[c] = struct{}{}
	s.log.Debug("Cursor opened", "uri", uri)
	return c, nil
}

// OpenTable opens a cursor on the data table called name.
func (s *Session) OpenTable(name string) (*Cursor, error) {
	if name == "" {
		return nil, newError(KindCursorOpen, "open_cursor", engine.TablePrefix, fmt.Errorf("empty table name: %w", engine.ErrNoSuchTable))
	}
	return s.OpenCursor(engine.TableURI(name))
}

// OpenMetadata opens a cursor on the catalog of every object in the store.
func (s *Session) OpenMetadata() (*Cursor, error) {
	return s.OpenCursor(engine.MetadataURI)
}

// Close closes any cursor still open, then the session. Repeated calls and
// calls on a nil session are no-ops.
func (s *Session) Close() error {
	if s == nil || s.state != stateOpen {
		return nil
	}
	var errs []error
	for c := range s.cursors {
		s.log.Warn("Closing cursor left open", "uri", c.uri)
		errs = append(errs, c.Close())
	}
	s.state = stateClosed
	if err := s.sess.Close(); err != nil {
		errs = append(errs, err)
	}
	s.sess = nil
	delete(s.handle.sessions, s)
	return errors.Join(errs...)
}
