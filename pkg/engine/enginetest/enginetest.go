// Package enginetest is a conformance suite shared by every backend.
package enginetest

import (
	"bytes"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/fixture"
)

// Seeder writes f into a fresh store using the backend's native library and
// returns the path to open it from. The store must be closed on return.
type Seeder func(t *testing.T, f *fixture.Fixture) string

// Store is the fixture every backend is checked against: three user tables,
// an index table, the size-tracking table and a couple of non-table entries.
func Store() *fixture.Fixture {
	return &fixture.Fixture{
		Tables: []fixture.Table{
			{
				Name:   "db.a",
				Config: "key_format=q,value_format=u",
				Records: []fixture.Record{
					{Key: "k3", Value: "three"},
					{Key: "k1", Value: "one"},
					{Key: "k5", Value: "five"},
					{Key: "k2", Value: "two"},
					{Key: "k4", Value: "four"},
				},
			},
			{
				Name: "db.b",
				Records: []fixture.Record{
					{KeyHex: "ff01", ValueHex: "00"},
					{KeyHex: "0001", ValueHex: "0102"},
				},
			},
			{Name: "db.empty"},
			{Name: "index-db.a_1", Records: []fixture.Record{{Key: "i", Value: "x"}}},
			{Name: "sizeStorer", Records: []fixture.Record{{Key: "s", Value: "y"}}},
		},
		Metadata: []fixture.Entry{
			{URI: "file:db.a.wt", Config: "allocation_size=4KB"},
			{URI: "colgroup:db.a", Config: "source=file:db.a.wt"},
		},
	}
}

func Run(t *testing.T, d engine.Driver, seed Seeder) {
	f := Store()
	path := seed(t, f)

	open := func(t *testing.T) engine.Conn {
		conn, err := d.Open(path, engine.DefaultOptions())
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}
	session := func(t *testing.T) engine.Session {
		s, err := open(t).OpenSession()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("metadata lists every object in order", func(t *testing.T) {
		s := session(t)
		got := drain(t, s, engine.MetadataURI)

		want := f.Entries()
		require.Len(t, got, len(want))
		for i, e := range want {
			assert.Equal(t, e.URI, string(got[i].Key))
			assert.Equal(t, e.Config, string(got[i].Value))
		}
	})

	t.Run("table iterates in ascending key order", func(t *testing.T) {
		s := session(t)
		for _, tbl := range f.Tables {
			got := drain(t, s, engine.TableURI(tbl.Name))
			want := tbl.KVs()
			sort.Slice(want, func(i, j int) bool { return bytes.Compare(want[i].Key, want[j].Key) < 0 })
			require.Len(t, got, len(want), tbl.Name)
			for i := range want {
				assert.Equal(t, want[i].Key, got[i].Key, tbl.Name)
				assert.Equal(t, string(want[i].Value), string(got[i].Value), tbl.Name)
			}
		}
	})

	t.Run("missing table", func(t *testing.T) {
		s := session(t)
		_, err := s.OpenCursor(engine.TableURI("db.missing"))
		require.Error(t, err)
		assert.Equal(t, engine.CodeNoSuchTable, engine.CodeOf(err))
		assert.ErrorIs(t, err, engine.ErrNoSuchTable)
	})

	t.Run("key before next", func(t *testing.T) {
		s := session(t)
		c, err := s.OpenCursor(engine.TableURI("db.a"))
		require.NoError(t, err)
		defer c.Close()
		_, err = c.Key()
		assert.Error(t, err)
		_, err = c.Value()
		assert.Error(t, err)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		conn, err := d.Open(path, engine.DefaultOptions())
		require.NoError(t, err)
		s, err := conn.OpenSession()
		require.NoError(t, err)
		c, err := s.OpenCursor(engine.MetadataURI)
		require.NoError(t, err)

		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
		assert.NoError(t, s.Close())
		assert.NoError(t, s.Close())
		assert.NoError(t, conn.Close())
		assert.NoError(t, conn.Close())

		_, err = conn.OpenSession()
		assert.Equal(t, engine.CodeClosed, engine.CodeOf(err))
	})

	t.Run("reopen after close", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			conn, err := d.Open(path, engine.DefaultOptions())
			require.NoError(t, err)
			require.NoError(t, conn.Close())
		}
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := d.Open(filepath.Join(t.TempDir(), "nope"), engine.DefaultOptions())
		assert.Error(t, err)
	})
}

func drain(t *testing.T, s engine.Session, uri string) []fixture.KV {
	t.Helper()
	c, err := s.OpenCursor(uri)
	require.NoError(t, err, uri)
	defer c.Close()

	var out []fixture.KV
	for i := 0; ; i++ {
		require.Less(t, i, 1000, "cursor on %s did not terminate", uri)
		err := c.Next()
		if engine.CodeOf(err) == engine.CodeNotFound {
			return out
		}
		require.NoError(t, err, uri)
		k, err := c.Key()
		require.NoError(t, err)
		v, err := c.Value()
		require.NoError(t, err)
		out = append(out, fixture.KV{Key: k, Value: v})
	}
}
