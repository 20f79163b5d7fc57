package hdlobjects

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

// Arch is one architecture body bound by name to the entity it implements.
// It owns its component instances; an instance belongs to at most one Arch
// at a time.
type Arch struct {
	Named

	entityName string
	instances  []*CompInstance

	Pos Position
}

// NewArch returns an architecture with no component instances. entityName
// is kept as opaque text and may be empty.
func NewArch(name, entityName string) *Arch {
	return &Arch{
		Named:      NewNamed(name),
		entityName: entityName,
	}
}

// EntityName returns the name of the implemented entity.
func (a *Arch) EntityName() string {
	return a.entityName
}

// ComponentInstances returns the owned instances in declaration order. The
// returned slice is a copy.
func (a *Arch) ComponentInstances() []*CompInstance {
	return slices.Clone(a.instances)
}

// Len returns the number of owned instances.
func (a *Arch) Len() int {
	return len(a.instances)
}

// AddComponentInstance appends inst and takes ownership of it. A nil
// instance, or one already owned by any architecture, is rejected with
// ErrInvalidArgument and the collection is left unchanged.
func (a *Arch) AddComponentInstance(inst *CompInstance) error {
	if inst == nil {
		return fmt.Errorf("%w: nil component instance", ErrInvalidArgument)
	}
	if inst.owner != nil {
		return fmt.Errorf("%w: component instance %q already owned by architecture %q",
			ErrInvalidArgument, inst.Name(), inst.owner.Name())
	}
	inst.owner = a
	a.instances = append(a.instances, inst)
	return nil
}

// DetachComponentInstance removes inst from the architecture and releases
// ownership so it can be attached elsewhere. The order of the remaining
// instances is kept.
func (a *Arch) DetachComponentInstance(inst *CompInstance) error {
	if inst == nil {
		return fmt.Errorf("%w: nil component instance", ErrInvalidArgument)
	}
	if inst.owner != a {
		return fmt.Errorf("%w: component instance %q is not owned by architecture %q",
			ErrInvalidArgument, inst.Name(), a.Name())
	}
	i := slices.Index(a.instances, inst)
	a.instances = slices.Delete(a.instances, i, i+1)
	inst.owner = nil
	return nil
}

// Serialize exports the architecture as
// {"name", "entityName", "componentInstances"[, "position"]}.
// Instances appear in declaration order. If any instance fails, the error
// is returned and no value is produced.
func (a *Arch) Serialize() (jsonvalue.Value, error) {
	return a.serialize(a.instances)
}

// SerializeSorted is like Serialize but lists instances ordered by name.
// Instances with equal names keep their declaration order. The architecture
// itself is not modified.
func (a *Arch) SerializeSorted() (jsonvalue.Value, error) {
	sorted := slices.Clone(a.instances)
	slices.SortStableFunc(sorted, func(x, y *CompInstance) int {
		return cmp.Compare(x.Name(), y.Name())
	})
	return a.serialize(sorted)
}

func (a *Arch) serialize(instances []*CompInstance) (jsonvalue.Value, error) {
	children, err := serializeList("componentInstances", instances)
	if err != nil {
		return jsonvalue.Null(), fmt.Errorf("architecture %q: %w", a.Name(), err)
	}

	obj := jsonvalue.NewObject()
	a.Named.serializeInto(obj)
	obj.Set("entityName", jsonvalue.StringOrNull(a.entityName))
	obj.Set("componentInstances", children)
	if !a.Pos.IsZero() {
		obj.Set("position", a.Pos.value())
	}
	return obj.Value(), nil
}
