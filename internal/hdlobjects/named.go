// Package hdlobjects holds the AST node model produced by the HDL frontends:
// design file contexts, entities, architectures and the component instances
// they own, plus their export into jsonvalue trees.
//
// Nodes are plain data. They are built by a single writer (the parser) and
// may be shared read-only afterwards; nothing here locks.
package hdlobjects

import "github.com/mvp-joe/hdlast/internal/jsonvalue"

// Named is the identifier carried by every declared design element.
// The name is fixed at construction. An empty name marks an anonymous
// construct; rejecting it is left to callers.
type Named struct {
	name string
}

// NewNamed returns a Named with the given identifier.
func NewNamed(name string) Named {
	return Named{name: name}
}

// Name returns the identifier.
func (n Named) Name() string {
	return n.name
}

// serializeInto writes the "name" field. It is always the first field a
// node contributes.
func (n Named) serializeInto(obj *jsonvalue.Object) {
	obj.Set("name", jsonvalue.String(n.name))
}
