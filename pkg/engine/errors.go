package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Code is the closed set of outcomes a backend may report.
type Code int

const (
	CodeUnknown Code = iota
	CodeNotFound
	CodeNoSuchTable
	CodeBusy
	CodeInvalidStore
	CodeIO
	CodeInvalidArgument
	CodeClosed
	CodeUnsupported
)

var codeNames = map[Code]string{
	CodeUnknown:         "unknown",
	CodeNotFound:        "not found",
	CodeNoSuchTable:     "no such table",
	CodeBusy:            "busy",
	CodeInvalidStore:    "invalid store",
	CodeIO:              "i/o error",
	CodeInvalidArgument: "invalid argument",
	CodeClosed:          "closed",
	CodeUnsupported:     "unsupported",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is returned by every backend operation that fails.
type Error struct {
	Code Code
	Op   string
	URI  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Code.String()
	if e.URI != "" {
		msg = e.Op + " " + e.URI + ": " + e.Code.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same Code, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Code == e.Code
}

var (
	ErrNotFound     = &Error{Code: CodeNotFound}
	ErrNoSuchTable  = &Error{Code: CodeNoSuchTable}
	ErrBusy         = &Error{Code: CodeBusy}
	ErrInvalidStore = &Error{Code: CodeInvalidStore}
	ErrClosed       = &Error{Code: CodeClosed}
	ErrUnsupported  = &Error{Code: CodeUnsupported}
)

// Errorf builds an *Error for op on uri.
func Errorf(code Code, op, uri string, err error) *Error {
	return &Error{Code: code, Op: op, URI: uri, Err: err}
}

// NotFound is the end-of-sequence signal returned by Cursor.Next.
func NotFound(uri string) *Error {
	return &Error{Code: CodeNotFound, Op: "next", URI: uri}
}

// CodeOf reports the Code carried by err, CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// OpenCode classifies an error returned while opening a backend: lock
// contention is CodeBusy, anything else means the path is not a usable store.
func OpenCode(err error) Code {
	switch {
	case errors.Is(err, syscall.EWOULDBLOCK), errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.EBUSY):
		return CodeBusy
	case errors.Is(err, fs.ErrPermission):
		return CodeIO
	default:
		return CodeInvalidStore
	}
}
