package hdlobjects

import (
	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

// InstanceKind records how an instantiation names its unit.
type InstanceKind string

const (
	// InstanceComponent is a VHDL component instantiation, or a bare
	// "label : name" statement.
	InstanceComponent InstanceKind = "component"
	// InstanceEntity is a direct VHDL "entity lib.name(arch)" instantiation.
	InstanceEntity InstanceKind = "entity"
	// InstanceConfiguration instantiates a VHDL configuration.
	InstanceConfiguration InstanceKind = "configuration"
	// InstanceModule is a Verilog module instantiation.
	InstanceModule InstanceKind = "module"
)

// CompInstance is one instantiation of a sub-design inside an architecture.
//
// EntityName is a by-name reference and is never resolved here. Library and
// ArchName are only set for direct entity instantiations.
type CompInstance struct {
	Named

	EntityName string
	Kind       InstanceKind
	Library    string
	ArchName   string
	GenericMap []Association
	PortMap    []Association
	Pos        Position

	owner *Arch
}

// NewCompInstance returns an unowned instance of entityName labelled name.
func NewCompInstance(name, entityName string) *CompInstance {
	return &CompInstance{
		Named:      NewNamed(name),
		EntityName: entityName,
	}
}

// Owner returns the architecture that owns the instance, or nil.
func (c *CompInstance) Owner() *Arch {
	return c.owner
}

// Serialize exports the instance. Field order is name, entityName, then the
// optional kind/library/architecture, genericMap, portMap and position.
func (c *CompInstance) Serialize() (jsonvalue.Value, error) {
	generics, err := serializeList("genericMap", c.GenericMap)
	if err != nil {
		return jsonvalue.Null(), err
	}
	ports, err := serializeList("portMap", c.PortMap)
	if err != nil {
		return jsonvalue.Null(), err
	}

	obj := jsonvalue.NewObject()
	c.Named.serializeInto(obj)
	obj.Set("entityName", jsonvalue.StringOrNull(c.EntityName))
	if c.Kind != "" {
		obj.Set("kind", jsonvalue.String(string(c.Kind)))
	}
	if c.Library != "" {
		obj.Set("library", jsonvalue.String(c.Library))
	}
	if c.ArchName != "" {
		obj.Set("architecture", jsonvalue.String(c.ArchName))
	}
	obj.Set("genericMap", generics)
	obj.Set("portMap", ports)
	if !c.Pos.IsZero() {
		obj.Set("position", c.Pos.value())
	}
	return obj.Value(), nil
}
