// Package reader materialises raw records from one table.
package reader

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/fystack/wt-reader/internal/logger"
	"github.com/fystack/wt-reader/internal/store"
	"github.com/fystack/wt-reader/pkg/engine"
)

// Limit caps the number of records read. Values <= 0 mean NoLimit: the
// whole table is read.
type Limit int

const NoLimit Limit = 0

func (l Limit) Unlimited() bool { return l <= 0 }

func (l Limit) String() string {
	if l.Unlimited() {
		return "none"
	}
	return strconv.Itoa(int(l))
}

// ParseLimit parses a command line limit. Zero and negative values are
// accepted and mean NoLimit; anything that is not an integer is rejected.
func ParseLimit(s string) (Limit, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return NoLimit, fmt.Errorf("invalid limit %q: must be an integer", s)
	}
	if n <= 0 {
		return NoLimit, nil
	}
	return Limit(n), nil
}

// Record is one raw key/value pair. Value is left exactly as stored.
type Record struct {
	Key   []byte
	Value []byte
}

// Scan reads up to limit records of table in native key order. The cursor is
// closed on every path; on error the records read so far are returned with it.
func Scan(sess *store.Session, table string, limit Limit) ([]Record, error) {
	c, err := sess.OpenTable(table)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	records := make([]Record, 0)
	for limit.Unlimited() || len(records) < int(limit) {
		res, err := c.Advance()
		if err != nil {
			return records, err
		}
		if res == store.NotFound {
			break
		}
		key, err := c.Key()
		if err != nil {
			return records, err
		}
		value, err := c.Value()
		if err != nil {
			return records, err
		}
		records = append(records, Record{Key: key, Value: value})
	}
	return records, nil
}

// ReadTable is Scan with best-effort reporting: any failure is logged with
// the table identifier and an empty slice returned, discarding partial results.
func ReadTable(sess *store.Session, table string, limit Limit, log *slog.Logger) []Record {
	records, err := Scan(sess, table, limit)
	if err != nil {
		logger.OrDiscard(log).Error("Read table failed",
			"op", "read_table",
			"table", table,
			"uri", engine.TableURI(table),
			"limit", limit.String(),
			"read", len(records),
			"err", err,
		)
		return []Record{}
	}
	return records
}
