package hdlobjects

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

// Context holds every design unit parsed from one source file, in source
// order.
type Context struct {
	Path     string
	Language string

	Entities      []*Entity
	Architectures []*Arch
}

// NewContext returns an empty context for path.
func NewContext(path, language string) *Context {
	return &Context{Path: path, Language: language}
}

// AddEntity appends e.
func (c *Context) AddEntity(e *Entity) error {
	if e == nil {
		return fmt.Errorf("%w: nil entity", ErrInvalidArgument)
	}
	c.Entities = append(c.Entities, e)
	return nil
}

// AddArchitecture appends a. The same architecture cannot be added twice.
func (c *Context) AddArchitecture(a *Arch) error {
	if a == nil {
		return fmt.Errorf("%w: nil architecture", ErrInvalidArgument)
	}
	if slices.Contains(c.Architectures, a) {
		return fmt.Errorf("%w: architecture %q already in context", ErrInvalidArgument, a.Name())
	}
	c.Architectures = append(c.Architectures, a)
	return nil
}

// Entity looks up an entity by name, ignoring case.
func (c *Context) Entity(name string) (*Entity, bool) {
	for _, e := range c.Entities {
		if strings.EqualFold(e.Name(), name) {
			return e, true
		}
	}
	return nil, false
}

// ArchitecturesOf returns the architectures implementing entity, ignoring
// case.
func (c *Context) ArchitecturesOf(entity string) []*Arch {
	var out []*Arch
	for _, a := range c.Architectures {
		if strings.EqualFold(a.EntityName(), entity) {
			out = append(out, a)
		}
	}
	return out
}

// SerializeOptions controls Context serialization.
type SerializeOptions struct {
	// SortInstances orders each architecture's instances by name.
	SortInstances bool
}

// Serialize exports the context with instances in declaration order.
func (c *Context) Serialize() (jsonvalue.Value, error) {
	return c.SerializeWith(SerializeOptions{})
}

// SerializeWith exports the context as
// {"path", "language", "entities", "architectures"}.
func (c *Context) SerializeWith(opts SerializeOptions) (jsonvalue.Value, error) {
	entities, err := serializeList("entities", c.Entities)
	if err != nil {
		return jsonvalue.Null(), err
	}

	archs := make([]jsonvalue.Value, 0, len(c.Architectures))
	for i, a := range c.Architectures {
		var v jsonvalue.Value
		if opts.SortInstances {
			v, err = a.SerializeSorted()
		} else {
			v, err = a.Serialize()
		}
		if err != nil {
			return jsonvalue.Null(), fmt.Errorf("architectures[%d]: %w", i, err)
		}
		archs = append(archs, v)
	}

	return jsonvalue.ObjectOf(
		jsonvalue.F("path", jsonvalue.String(c.Path)),
		jsonvalue.F("language", jsonvalue.String(c.Language)),
		jsonvalue.F("entities", entities),
		jsonvalue.F("architectures", jsonvalue.Array(archs...)),
	), nil
}

// InstanceCount returns the number of component instances across all
// architectures.
func (c *Context) InstanceCount() int {
	n := 0
	for _, a := range c.Architectures {
		n += a.Len()
	}
	return n
}
