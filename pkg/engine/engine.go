// Package engine defines the boundary between wt-reader and the embedded
// ordered key/value store it inspects. Backends live in subpackages and are
// always opened read-only.
package engine

import "strings"

const (
	// MetadataURI names the engine-maintained catalog of every object in the store.
	MetadataURI = "metadata:"
	// TablePrefix is the kind prefix of data table URIs.
	TablePrefix = "table:"
)

type Options struct {
	Create      bool
	ReadOnly    bool
	ErrorPrefix string
}

// DefaultOptions matches how the diagnostic tool opens a store: never create,
// never write.
func DefaultOptions() Options {
	return Options{
		Create:      false,
		ReadOnly:    true,
		ErrorPrefix: "wt-reader: ",
	}
}

// Driver opens a store rooted at path.
type Driver interface {
	Name() string
	Open(path string, opts Options) (Conn, error)
}

type Conn interface {
	OpenSession() (Session, error)
	Close() error
}

type Session interface {
	// OpenCursor opens a forward cursor on uri, either TableURI(name) or MetadataURI.
	OpenCursor(uri string) (Cursor, error)
	Close() error
}

// Cursor walks one namespace in ascending key order. Next returns an error
// with CodeNotFound once the namespace is exhausted. Key and Value return
// buffers owned by the caller.
type Cursor interface {
	Next() error
	Key() ([]byte, error)
	Value() ([]byte, error)
	Close() error
}

// TableURI returns the URI of the data table called name.
func TableURI(name string) string {
	return TablePrefix + name
}

// ParseURI splits uri into its kind ("table", "file", "metadata", ...) and
// the remainder after the first colon.
func ParseURI(uri string) (kind, name string, ok bool) {
	kind, name, ok = strings.Cut(uri, ":")
	if !ok || kind == "" {
		return "", "", false
	}
	return kind, name, true
}
