package graph

import (
	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

// Serialize exports the hierarchy as
// {tops, units, unresolved, cycles, order, tree}. order is null when the
// hierarchy has cycles.
func (h *Hierarchy) Serialize() (jsonvalue.Value, error) {
	tops, err := h.Tops()
	if err != nil {
		return jsonvalue.Null(), err
	}
	cycles, err := h.Cycles()
	if err != nil {
		return jsonvalue.Null(), err
	}

	order := jsonvalue.Null()
	if len(cycles) == 0 {
		names, err := h.Order()
		if err != nil {
			return jsonvalue.Null(), err
		}
		order = jsonvalue.Strings(names)
	}

	units := make([]jsonvalue.Value, 0, len(h.units))
	for _, u := range h.Units() {
		arch := jsonvalue.Null()
		if u.Arch != nil {
			arch = jsonvalue.String(u.Arch.Name())
		}
		children, err := h.Children(u.Name)
		if err != nil {
			return jsonvalue.Null(), err
		}
		units = append(units, jsonvalue.ObjectOf(
			jsonvalue.F("name", jsonvalue.String(u.Name)),
			jsonvalue.F("file", jsonvalue.StringOrNull(u.File)),
			jsonvalue.F("language", jsonvalue.StringOrNull(u.Language)),
			jsonvalue.F("architecture", arch),
			jsonvalue.F("declared", jsonvalue.Bool(u.Entity != nil)),
			jsonvalue.F("children", jsonvalue.Strings(children)),
		))
	}

	unresolved := make([]jsonvalue.Value, 0, len(h.unresolved))
	for _, r := range h.unresolved {
		unresolved = append(unresolved, jsonvalue.ObjectOf(
			jsonvalue.F("file", jsonvalue.StringOrNull(r.File)),
			jsonvalue.F("architecture", jsonvalue.String(r.Architecture)),
			jsonvalue.F("instance", jsonvalue.String(r.Instance)),
			jsonvalue.F("entityName", jsonvalue.StringOrNull(r.EntityName)),
		))
	}

	cycleValues := make([]jsonvalue.Value, 0, len(cycles))
	for _, c := range cycles {
		cycleValues = append(cycleValues, jsonvalue.Strings(c))
	}

	trees := make([]jsonvalue.Value, 0, len(tops))
	for _, top := range tops {
		trees = append(trees, h.Tree(top))
	}

	return jsonvalue.ObjectOf(
		jsonvalue.F("tops", jsonvalue.Strings(tops)),
		jsonvalue.F("units", jsonvalue.Array(units...)),
		jsonvalue.F("unresolved", jsonvalue.Array(unresolved...)),
		jsonvalue.F("cycles", jsonvalue.Array(cycleValues...)),
		jsonvalue.F("order", order),
		jsonvalue.F("tree", jsonvalue.Array(trees...)),
	), nil
}

// Tree expands the instantiation tree below the named unit. Instances are in
// declaration order. A unit already on the current path is emitted with
// "recursive": true and not expanded again.
func (h *Hierarchy) Tree(name string) jsonvalue.Value {
	u, ok := h.Unit(name)
	if !ok {
		return jsonvalue.Null()
	}
	return h.tree(u, map[string]bool{})
}

func (h *Hierarchy) tree(u *Unit, onPath map[string]bool) jsonvalue.Value {
	obj := jsonvalue.NewObject()
	obj.Set("entity", jsonvalue.String(u.Name))
	if u.Arch == nil {
		obj.Set("architecture", jsonvalue.Null())
		obj.Set("instances", jsonvalue.Array())
		return obj.Value()
	}
	obj.Set("architecture", jsonvalue.String(u.Arch.Name()))

	onPath[u.Key] = true
	defer delete(onPath, u.Key)

	var instances []jsonvalue.Value
	for _, inst := range u.Arch.ComponentInstances() {
		child := jsonvalue.NewObject()
		child.Set("name", jsonvalue.String(inst.Name()))
		child.Set("entityName", jsonvalue.StringOrNull(inst.EntityName))

		target, ok := h.units[unitKey(inst.EntityName)]
		switch {
		case !ok:
			child.Set("unresolved", jsonvalue.Bool(true))
		case onPath[target.Key]:
			child.Set("recursive", jsonvalue.Bool(true))
		default:
			child.Set("unit", h.tree(target, onPath))
		}
		instances = append(instances, child.Value())
	}
	obj.Set("instances", jsonvalue.Array(instances...))
	return obj.Value()
}
