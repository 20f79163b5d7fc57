// Package builtin assembles the registry of frontends shipped with hdlast.
package builtin

import (
	"github.com/mvp-joe/hdlast/internal/frontend"
	"github.com/mvp-joe/hdlast/internal/frontend/verilog"
	"github.com/mvp-joe/hdlast/internal/frontend/vhdl"
)

// NewRegistry returns a registry holding the VHDL and Verilog frontends.
func NewRegistry() *frontend.Registry {
	r := frontend.NewRegistry()
	for _, f := range []frontend.Frontend{vhdl.New(), verilog.New()} {
		// Languages are distinct, so registration cannot fail.
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}
