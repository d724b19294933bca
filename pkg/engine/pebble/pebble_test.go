package pebble

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/enginetest"
	"github.com/fystack/wt-reader/pkg/engine/fixture"
	"github.com/fystack/wt-reader/pkg/engine/layout"
)

func seed(t *testing.T, f *fixture.Fixture) string {
	dir := t.TempDir()
	db, err := pebble.Open(dir, &pebble.Options{Logger: quietLogger{}})
	require.NoError(t, err)

	b := db.NewBatch()
	for _, e := range f.Entries() {
		require.NoError(t, b.Set(layout.MetaKey(e.URI), []byte(e.Config), nil))
	}
	for _, tbl := range f.Tables {
		uri := engine.TableURI(tbl.Name)
		for _, kv := range tbl.KVs() {
			require.NoError(t, b.Set(layout.DataKey(uri, kv.Key), kv.Value, nil))
		}
	}
	require.NoError(t, b.Commit(pebble.Sync))
	require.NoError(t, db.Close())
	return dir
}

func TestConformance(t *testing.T) {
	enginetest.Run(t, New(), seed)
}

func TestOpenRejectsWritableOptions(t *testing.T) {
	_, err := New().Open(t.TempDir(), engine.Options{ReadOnly: false})
	assert.Equal(t, engine.CodeUnsupported, engine.CodeOf(err))
}
