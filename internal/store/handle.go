// Package store wraps an engine connection with explicit lifecycles:
// Handle owns the connection, Sessions borrow the Handle and Cursors borrow
// a Session. Children still open when their parent closes are closed first.
// None of these types are safe for concurrent use.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fystack/wt-reader/internal/logger"
	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/retry"
)

type state int

const (
	stateUnopened state = iota
	stateOpen
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateClosed:
		return "closed"
	default:
		return "unopened"
	}
}

type openConfig struct {
	engineOpts    engine.Options
	retryAttempts int
	retryInterval time.Duration
	log           *slog.Logger
}

type Option func(*openConfig)

func WithLogger(l *slog.Logger) Option {
	return func(c *openConfig) { c.log = l }
}

// WithErrorPrefix sets the prefix the engine puts on its own messages.
func WithErrorPrefix(p string) Option {
	return func(c *openConfig) { c.engineOpts.ErrorPrefix = p }
}

// WithRetry retries opening while the store is locked by another process.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(c *openConfig) {
		c.retryAttempts = attempts
		c.retryInterval = interval
	}
}

type Handle struct {
	path     string
	driver   string
	conn     engine.Conn
	state    state
	sessions map[*Session]struct{}
	log      *slog.Logger
}

// Open opens the store at path read-only without creating anything.
func Open(d engine.Driver, path string, opts ...Option) (*Handle, error) {
	cfg := openConfig{engineOpts: engine.DefaultOptions(), retryAttempts: 1}
	for _, o := range opts {
		o(&cfg)
	}
	// never create, never write, whatever the options say
	cfg.engineOpts.Create = false
	cfg.engineOpts.ReadOnly = true
	log := logger.OrDiscard(cfg.log).With("engine", d.Name(), "path", path)

	if _, err := os.Stat(path); err != nil {
		return nil, newError(KindOpen, "stat", path, err)
	}

	var conn engine.Conn
	err := retry.Constant(func() error {
		c, err := d.Open(path, cfg.engineOpts)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, retry.Config{
		Attempts:  cfg.retryAttempts,
		Interval:  cfg.retryInterval,
		Retryable: func(err error) bool { return errors.Is(err, engine.ErrBusy) },
		OnRetry: func(err error, next time.Duration) {
			log.Warn("Store is busy, retrying", "err", err, "next", next)
		},
	})
	if err != nil {
		return nil, newError(KindOpen, "open", path, err)
	}

	log.Debug("Store opened", "readonly", cfg.engineOpts.ReadOnly)
	return &Handle{
		path:     path,
		driver:   d.Name(),
		conn:     conn,
		state:    stateOpen,
		sessions: make(map[*Session]struct{}),
		log:      log,
	}, nil
}

func (h *Handle) Path() string { return h.path }

func (h *Handle) IsOpen() bool { return h != nil && h.state == stateOpen }

func (h *Handle) OpenSession() (*Session, error) {
	if !h.IsOpen() {
		st := stateUnopened
		if h != nil {
			st = h.state
		}
		return nil, newError(KindSession, "open_session", "", fmt.Errorf("handle is %s", st))
	}
	es, err := h.conn.OpenSession()
	if err != nil {
		return nil, newError(KindSession, "open_session", h.path, err)
	}
	s := &Session{
		handle:  h,
		sess:    es,
		state:   stateOpen,
		cursors: make(map[*Cursor]struct{}),
		log:     h.log,
	}
	h.sessions[s] = struct{}{}
	return s, nil
}

// Close releases the connection. It is a no-op on a nil, unopened or
// already closed handle.
func (h *Handle) Close() error {
	if h == nil || h.state != stateOpen {
		return nil
	}
	var errs []error
	for s := range h.sessions {
		h.log.Warn("Closing session left open")
		errs = append(errs, s.Close())
	}
	h.state = stateClosed
	if err := h.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	h.conn = nil
	h.log.Debug("Store closed")
	return errors.Join(errs...)
}
