package hdlobjects

import (
	"strings"

	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

// Direction is a port mode.
type Direction string

const (
	DirIn      Direction = "in"
	DirOut     Direction = "out"
	DirInout   Direction = "inout"
	DirBuffer  Direction = "buffer"
	DirLinkage Direction = "linkage"
	DirRef     Direction = "ref"
)

// Port is one declared port of an entity or module. Type is source text.
// Direction is empty for a non-ANSI Verilog port never declared in the body.
type Port struct {
	Name      string
	Direction Direction
	Type      string
}

// Generic is one declared generic (VHDL) or parameter (Verilog). Default is
// source text and empty when absent.
type Generic struct {
	Name    string
	Type    string
	Default string
}

// Entity is the interface of a design unit: a VHDL entity or the header of
// a Verilog module.
type Entity struct {
	Named

	Generics []Generic
	Ports    []Port
	Pos      Position
}

// NewEntity returns an entity with no generics or ports.
func NewEntity(name string) *Entity {
	return &Entity{Named: NewNamed(name)}
}

// Port returns the port called name. An exact match wins; otherwise the
// first port equal under case folding is returned.
func (e *Entity) Port(name string) (Port, bool) {
	for _, p := range e.Ports {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range e.Ports {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Port{}, false
}

// Serialize exports the entity. It never fails.
func (e *Entity) Serialize() (jsonvalue.Value, error) {
	generics := make([]jsonvalue.Value, 0, len(e.Generics))
	for _, g := range e.Generics {
		generics = append(generics, jsonvalue.ObjectOf(
			jsonvalue.F("name", jsonvalue.String(g.Name)),
			jsonvalue.F("type", jsonvalue.StringOrNull(g.Type)),
			jsonvalue.F("default", jsonvalue.StringOrNull(g.Default)),
		))
	}
	ports := make([]jsonvalue.Value, 0, len(e.Ports))
	for _, p := range e.Ports {
		ports = append(ports, jsonvalue.ObjectOf(
			jsonvalue.F("name", jsonvalue.String(p.Name)),
			jsonvalue.F("direction", jsonvalue.StringOrNull(string(p.Direction))),
			jsonvalue.F("type", jsonvalue.StringOrNull(p.Type)),
		))
	}

	obj := jsonvalue.NewObject()
	e.Named.serializeInto(obj)
	obj.Set("generics", jsonvalue.Array(generics...))
	obj.Set("ports", jsonvalue.Array(ports...))
	if !e.Pos.IsZero() {
		obj.Set("position", e.Pos.value())
	}
	return obj.Value(), nil
}
