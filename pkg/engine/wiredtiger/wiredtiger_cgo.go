//go:build wiredtiger && cgo

package wiredtiger

/*
#cgo linux CFLAGS: -I/usr/local/include
#cgo linux LDFLAGS: -L/usr/local/lib -Wl,-rpath,/usr/local/lib -lwiredtiger
#cgo darwin CFLAGS: -I/usr/local/include
#cgo darwin LDFLAGS: -L/usr/local/lib -Wl,-rpath,/usr/local/lib -lwiredtiger
#include <stdlib.h>
#include <wiredtiger.h>

static int wtr_open(const char *home, const char *config, WT_CONNECTION **out) {
	return wiredtiger_open(home, NULL, config, out);
}

static int wtr_conn_close(WT_CONNECTION *conn) {
	return conn->close(conn, NULL);
}

static int wtr_open_session(WT_CONNECTION *conn, WT_SESSION **out) {
	return conn->open_session(conn, NULL, NULL, out);
}

static int wtr_session_close(WT_SESSION *s) {
	return s->close(s, NULL);
}

static int wtr_open_cursor(WT_SESSION *s, const char *uri, WT_CURSOR **out) {
	return s->open_cursor(s, uri, NULL, "raw", out);
}

static int wtr_cursor_next(WT_CURSOR *c) {
	return c->next(c);
}

static int wtr_cursor_key(WT_CURSOR *c, WT_ITEM *item) {
	return c->get_key(c, item);
}

static int wtr_cursor_value(WT_CURSOR *c, WT_ITEM *item) {
	return c->get_value(c, item);
}

static int wtr_cursor_close(WT_CURSOR *c) {
	return c->close(c);
}
*/
import "C"

import (
	"bytes"
	"errors"
	"sync"
	"syscall"
	"unsafe"

	"github.com/fystack/wt-reader/pkg/engine"
)

const Available = true

// wtError carries a raw WiredTiger return code.
type wtError struct {
	ret C.int
}

func (e wtError) Error() string {
	return C.GoString(C.wiredtiger_strerror(e.ret))
}

func codeFor(op string, ret C.int) engine.Code {
	switch {
	case ret == C.WT_NOTFOUND:
		return engine.CodeNotFound
	case ret == C.int(syscall.EBUSY):
		return engine.CodeBusy
	case ret == C.int(syscall.ENOENT) && op == "open_cursor":
		return engine.CodeNoSuchTable
	case ret == C.int(syscall.ENOENT), ret == C.WT_ERROR, ret == C.WT_TRY_SALVAGE:
		if op == "open" {
			return engine.CodeInvalidStore
		}
		return engine.CodeIO
	case ret == C.int(syscall.EINVAL):
		return engine.CodeInvalidArgument
	default:
		if op == "open" {
			return engine.CodeInvalidStore
		}
		return engine.CodeIO
	}
}

func check(op, uri string, ret C.int) error {
	if ret == 0 {
		return nil
	}
	return engine.Errorf(codeFor(op, ret), op, uri, wtError{ret: ret})
}

func (*Driver) Open(path string, opts engine.Options) (engine.Conn, error) {
	chome := C.CString(path)
	cconf := C.CString(Config(opts))
	defer C.free(unsafe.Pointer(chome))
	defer C.free(unsafe.Pointer(cconf))

	var c *C.WT_CONNECTION
	if err := check("open", path, C.wtr_open(chome, cconf, &c)); err != nil {
		return nil, err
	}
	return &conn{c: c}, nil
}

type conn struct {
	mu sync.Mutex
	c  *C.WT_CONNECTION
}

func (c *conn) OpenSession() (engine.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.c == nil {
		return nil, engine.Errorf(engine.CodeClosed, "open_session", "", nil)
	}
	var s *C.WT_SESSION
	if err := check("open_session", "", C.wtr_open_session(c.c, &s)); err != nil {
		return nil, err
	}
	return &session{s: s}, nil
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.c == nil {
		return nil
	}
	ret := C.wtr_conn_close(c.c)
	c.c = nil
	return check("close", "", ret)
}

type session struct {
	s *C.WT_SESSION
}

func (s *session) OpenCursor(uri string) (engine.Cursor, error) {
	if s.s == nil {
		return nil, engine.Errorf(engine.CodeClosed, "open_cursor", uri, nil)
	}
	curi := C.CString(uri)
	defer C.free(unsafe.Pointer(curi))

	var cur *C.WT_CURSOR
	if err := check("open_cursor", uri, C.wtr_open_cursor(s.s, curi, &cur)); err != nil {
		return nil, err
	}
	return &cursor{uri: uri, c: cur, metadata: uri == engine.MetadataURI}, nil
}

func (s *session) Close() error {
	if s.s == nil {
		return nil
	}
	ret := C.wtr_session_close(s.s)
	s.s = nil
	return check("close", "", ret)
}

type cursor struct {
	uri        string
	c          *C.WT_CURSOR
	metadata   bool
	positioned bool
}

func (c *cursor) Next() error {
	if c.c == nil {
		return engine.Errorf(engine.CodeClosed, "next", c.uri, nil)
	}
	err := check("next", c.uri, C.wtr_cursor_next(c.c))
	c.positioned = err == nil
	return err
}

func (c *cursor) item(op string, get func(*C.WT_CURSOR, *C.WT_ITEM) C.int) ([]byte, error) {
	if c.c == nil {
		return nil, engine.Errorf(engine.CodeClosed, op, c.uri, nil)
	}
	if !c.positioned {
		return nil, engine.Errorf(engine.CodeInvalidArgument, op, c.uri, errors.New("cursor not positioned"))
	}
	var item C.WT_ITEM
	if err := check(op, c.uri, get(c.c, &item)); err != nil {
		return nil, err
	}
	b := C.GoBytes(item.data, C.int(item.size))
	if c.metadata {
		// metadata keys and values are NUL-terminated strings in raw mode
		b = bytes.TrimSuffix(b, []byte{0})
	}
	return b, nil
}

func (c *cursor) Key() ([]byte, error) {
	return c.item("get_key", func(cur *C.WT_CURSOR, it *C.WT_ITEM) C.int { return C.wtr_cursor_key(cur, it) })
}

func (c *cursor) Value() ([]byte, error) {
	return c.item("get_value", func(cur *C.WT_CURSOR, it *C.WT_ITEM) C.int { return C.wtr_cursor_value(cur, it) })
}

func (c *cursor) Close() error {
	if c.c == nil {
		return nil
	}
	ret := C.wtr_cursor_close(c.c)
	c.c = nil
	c.positioned = false
	return check("close", c.uri, ret)
}
