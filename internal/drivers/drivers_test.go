package drivers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fystack/wt-reader/internal/config"
	"github.com/fystack/wt-reader/pkg/common/enum"
	"github.com/fystack/wt-reader/pkg/engine/bolt"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	for _, e := range enum.EngineTypes {
		cfg.Engine = e
		d, err := NewFromConfig(cfg)
		require.NoError(t, err, e)
		assert.Equal(t, string(e), d.Name())
	}
}

func TestNewFromConfigPassesLockTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Engine = enum.EngineBolt
	cfg.Open.LockTimeout = 3 * time.Second

	d, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d.(*bolt.Driver).LockTimeout)
}

func TestNewFromConfigUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Engine = "rocksdb"
	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}
