// Package drivers builds the engine driver selected by configuration.
package drivers

import (
	"fmt"

	"github.com/fystack/wt-reader/internal/config"
	"github.com/fystack/wt-reader/pkg/common/enum"
	"github.com/fystack/wt-reader/pkg/engine"
	"github.com/fystack/wt-reader/pkg/engine/badger"
	"github.com/fystack/wt-reader/pkg/engine/bolt"
	"github.com/fystack/wt-reader/pkg/engine/memory"
	"github.com/fystack/wt-reader/pkg/engine/pebble"
	"github.com/fystack/wt-reader/pkg/engine/wiredtiger"
)

// NewFromConfig returns the driver for cfg.Engine.
func NewFromConfig(cfg config.Config) (engine.Driver, error) {
	switch cfg.Engine {
	case enum.EngineWiredTiger:
		return wiredtiger.New(), nil
	case enum.EngineBadger:
		return badger.New(), nil
	case enum.EnginePebble:
		return pebble.New(), nil
	case enum.EngineBolt:
		return &bolt.Driver{LockTimeout: cfg.Open.LockTimeout}, nil
	case enum.EngineMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported engine type: %s", cfg.Engine)
	}
}
