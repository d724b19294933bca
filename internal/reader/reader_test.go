package reader

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fystack/wt-reader/internal/store"
	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/fixture"
	"github.com/fystack/wt-reader/pkg/engine/memory"
)

func fiveRecords() *fixture.Fixture {
	return &fixture.Fixture{Tables: []fixture.Table{{
		Name: "db.a",
		Records: []fixture.Record{
			{Key: "4", Value: "d"},
			{Key: "2", Value: "b"},
			{Key: "5", Value: "e"},
			{Key: "1", Value: "a"},
			{Key: "3", Value: "c"},
		},
	}}}
}

func openFixture(t *testing.T, f *fixture.Fixture) *store.Session {
	t.Helper()
	data, err := yaml.Marshal(f)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	h, err := store.Open(memory.New(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	sess, err := h.OpenSession()
	require.NoError(t, err)
	return sess
}

func keys(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, string(r.Key))
	}
	return out
}

func TestReadTable_Limit(t *testing.T) {
	sess := openFixture(t, fiveRecords())

	got := ReadTable(sess, "db.a", 3, nil)
	assert.Equal(t, []string{"1", "2", "3"}, keys(got))
	assert.Equal(t, []byte("a"), got[0].Value)

	assert.Len(t, ReadTable(sess, "db.a", 5, nil), 5)
	assert.Len(t, ReadTable(sess, "db.a", 50, nil), 5)
	assert.Len(t, ReadTable(sess, "db.a", 1, nil), 1)
}

func TestReadTable_NoLimit(t *testing.T) {
	sess := openFixture(t, fiveRecords())

	for _, l := range []Limit{NoLimit, -1} {
		got := ReadTable(sess, "db.a", l, nil)
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, keys(got))
	}
}

func TestReadTable_Empty(t *testing.T) {
	sess := openFixture(t, &fixture.Fixture{Tables: []fixture.Table{{Name: "db.empty"}}})
	got := ReadTable(sess, "db.empty", NoLimit, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadTable_MissingTableLogs(t *testing.T) {
	sess := openFixture(t, fiveRecords())

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	got := ReadTable(sess, "db.nope", NoLimit, log)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "Read table failed")
	assert.Contains(t, buf.String(), "table=db.nope")

	_, err := Scan(sess, "db.nope", NoLimit)
	assert.ErrorIs(t, err, store.ErrNoSuchTable)

	// the session is still usable afterwards
	assert.Len(t, ReadTable(sess, "db.a", NoLimit, log), 5)
}

func TestScan_ErrorMidRead(t *testing.T) {
	d := &faultDriver{f: fiveRecords(), failAfter: 2}
	h, err := store.Open(d, t.TempDir())
	require.NoError(t, err)
	defer h.Close()
	sess, err := h.OpenSession()
	require.NoError(t, err)

	partial, err := Scan(sess, "db.a", NoLimit)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrCursor)
	assert.NotErrorIs(t, err, engine.ErrNotFound)
	assert.Equal(t, []string{"1", "2"}, keys(partial))
	assert.Equal(t, 1, d.closed)

	var buf bytes.Buffer
	got := ReadTable(sess, "db.a", NoLimit, slog.New(slog.NewTextHandler(&buf, nil)))
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "read=2")
	assert.Equal(t, 2, d.closed)
}

func TestScan_LimitStopsBeforeFault(t *testing.T) {
	d := &faultDriver{f: fiveRecords(), failAfter: 2}
	h, err := store.Open(d, t.TempDir())
	require.NoError(t, err)
	defer h.Close()
	sess, err := h.OpenSession()
	require.NoError(t, err)

	got, err := Scan(sess, "db.a", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, keys(got))
}

func TestParseLimit(t *testing.T) {
	l, err := ParseLimit("3")
	require.NoError(t, err)
	assert.Equal(t, Limit(3), l)

	for _, s := range []string{"0", "-4"} {
		l, err = ParseLimit(s)
		require.NoError(t, err)
		assert.True(t, l.Unlimited())
	}

	_, err = ParseLimit("ten")
	assert.Error(t, err)
	_, err = ParseLimit("")
	assert.Error(t, err)
}

func TestLimitString(t *testing.T) {
	assert.Equal(t, "none", NoLimit.String())
	assert.Equal(t, "7", Limit(7).String())
}
