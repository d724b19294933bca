// Package catalog lists user tables from the store's metadata namespace.
package catalog

import (
	"log/slog"
	"strings"

	"github.com/fystack/wt-reader/internal/logger"
	"github.com/fystack/wt-reader/internal/store"
	"github.com/fystack/wt-reader/pkg/engine"
)

const (
	// IndexPrefix marks MongoDB index tables.
	IndexPrefix = engine.TablePrefix + "index-"
	// SizeStorer is the table MongoDB uses to track collection sizes.
	SizeStorer = engine.TablePrefix + "sizeStorer"
)

// IsUserTable reports whether a metadata URI names a user table.
func IsUserTable(uri string) bool {
	return strings.HasPrefix(uri, engine.TablePrefix) &&
		!strings.HasPrefix(uri, IndexPrefix) &&
		uri != SizeStorer
}

// Scan walks the metadata namespace and returns user table names in its
// native key order. On error the names collected so far are returned with it.
func Scan(sess *store.Session) ([]string, error) {
	c, err := sess.OpenMetadata()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	tables := make([]string, 0)
	for {
		res, err := c.Advance()
		if err != nil {
			return tables, err
		}
		if res == store.NotFound {
			return tables, nil
		}
		key, err := c.Key()
		if err != nil {
			return tables, err
		}
		if uri := string(key); IsUserTable(uri) {
			tables = append(tables, strings.TrimPrefix(uri, engine.TablePrefix))
		}
	}
}

// ListTables is Scan with best-effort reporting: any failure is logged and
// an empty list returned, discarding partial results.
func ListTables(sess *store.Session, log *slog.Logger) []string {
	tables, err := Scan(sess)
	if err != nil {
		logger.OrDiscard(log).Error("List tables failed", "op", "list_tables", "uri", engine.MetadataURI, "err", err)
		return []string{}
	}
	return tables
}

// SplitNamespace splits a MongoDB "db.collection" identifier at the first
// dot. Names without a dot come back as the collection part.
func SplitNamespace(name string) (db, coll string) {
	db, coll, ok := strings.Cut(name, ".")
	if !ok {
		return "", name
	}
	return db, coll
}
