// Package layout maps the table/metadata namespaces onto a single flat
// keyspace, for backends (badger, pebble) that have no native notion of
// tables.
//
//	m\x00<uri>              -> config string of the object named uri
//	d\x00<table uri>\x00<k> -> value of record k
//
// Table names must not contain NUL, which would make record keys of two
// tables collide. Known refuses such names.
package layout

import (
	"bytes"
	"strings"

	"github.com/fystack/wt-reader/pkg/engine"
)

const sep = 0x00

var (
	metaPrefix = []byte{'m', sep}
	dataPrefix = []byte{'d', sep}
)

// MetaKey is the key holding the metadata entry for uri.
func MetaKey(uri string) []byte {
	return append(bytes.Clone(metaPrefix), uri...)
}

// DataKey is the key holding record key of the table at uri.
func DataKey(uri string, key []byte) []byte {
	return append(DataPrefix(uri), key...)
}

// DataPrefix is the prefix shared by every record of the table at uri.
func DataPrefix(uri string) []byte {
	p := make([]byte, 0, len(dataPrefix)+len(uri)+1)
	p = append(p, dataPrefix...)
	p = append(p, uri...)
	return append(p, sep)
}

// Prefix returns the prefix a cursor on uri iterates over.
func Prefix(uri string) []byte {
	if uri == engine.MetadataURI {
		return bytes.Clone(metaPrefix)
	}
	return DataPrefix(uri)
}

// UpperBound returns the smallest key greater than every key starting with
// prefix, or nil when no such key exists.
func UpperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Strip removes prefix from key, returning a copy.
func Strip(prefix, key []byte) []byte {
	return bytes.Clone(bytes.TrimPrefix(key, prefix))
}

// Known reports whether a table cursor may be opened on uri: the metadata
// namespace always exists, tables must have a metadata entry.
func Known(uri string, hasMeta func(key []byte) (bool, error)) (bool, error) {
	if uri == engine.MetadataURI {
		return true, nil
	}
	kind, name, ok := engine.ParseURI(uri)
	if !ok || kind != "table" || name == "" || strings.IndexByte(name, sep) >= 0 {
		return false, nil
	}
	return hasMeta(MetaKey(uri))
}
