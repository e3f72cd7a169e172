// Package engines assembles the standard script engines.
package engines

import (
	"github.com/bmc/javautil-sub002/scripting"
	"github.com/bmc/javautil-sub002/scripting/ecmascript"
	"github.com/bmc/javautil-sub002/scripting/noop"
	"github.com/bmc/javautil-sub002/scripting/scriggo"
)

// Standard returns a Registry with the ecmascript, scriggo and noop
// engines.
func Standard() *scripting.Registry {
	r := scripting.NewRegistry()

	r.Register(ecmascript.NewEngine(), "js", "javascript", "ecmascript-5.1", "goja", ".js")

	r.Register(scriggo.NewEngine(), append([]string{"template"}, scriggo.Extensions...)...)

	r.Register(noop.NewEngine())

	return r
}

// NewUnified makes a scripting.Unified over the Standard engines.
func NewUnified() *scripting.Unified {
	return scripting.NewUnified(Standard())
}
