//go:build !(wiredtiger && cgo)

package wiredtiger

import (
	"errors"

	"github.com/fystack/wt-reader/pkg/engine"
)

// Available reports whether the cgo binding was compiled in.
const Available = false

func (*Driver) Open(path string, _ engine.Options) (engine.Conn, error) {
	return nil, engine.Errorf(engine.CodeUnsupported, "open", path,
		errors.New("built without WiredTiger support, rebuild with -tags wiredtiger"))
}
