// Package wiredtiger binds libwiredtiger through cgo. The binding is only
// compiled with cgo and the "wiredtiger" build tag:
//
//	go build -tags wiredtiger ./cmd/wt-reader
//
// Other builds get a driver whose Open reports engine.CodeUnsupported.
package wiredtiger

import (
	"fmt"
	"strings"

	"github.com/fystack/wt-reader/pkg/engine"
)

type Driver struct{}

func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "wiredtiger" }

// Config renders opts as a wiredtiger_open configuration string.
func Config(opts engine.Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "create=%t,readonly=%t", opts.Create, opts.ReadOnly)
	if opts.ErrorPrefix != "" {
		fmt.Fprintf(&b, ",error_prefix=\"%s\"", strings.ReplaceAll(opts.ErrorPrefix, `"`, `'`))
	}
	return b.String()
}
