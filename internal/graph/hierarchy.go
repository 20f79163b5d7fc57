// Package graph resolves component instantiations across design files into
// a design hierarchy.
package graph

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

// Unit is one design unit in the hierarchy: an entity and the architecture
// chosen to implement it.
type Unit struct {
	Key      string
	Name     string
	File     string
	Language string
	Entity   *hdlobjects.Entity
	Arch     *hdlobjects.Arch
}

// Unresolved is an instantiation whose entity is not defined in any of the
// contexts.
type Unresolved struct {
	File         string
	Architecture string
	Instance     string
	EntityName   string
}

// Hierarchy is the resolved instantiation graph.
type Hierarchy struct {
	g          graph.Graph[string, *Unit]
	units      map[string]*Unit
	unresolved []Unresolved
}

func unitKey(name string) string {
	return strings.ToLower(name)
}

// Build resolves every architecture's instances by entity name. Names match
// case-insensitively. When an entity has several architectures the last one
// seen wins.
func Build(contexts []*hdlobjects.Context) (*Hierarchy, error) {
	h := &Hierarchy{
		g:     graph.New(func(u *Unit) string { return u.Key }, graph.Directed()),
		units: make(map[string]*Unit),
	}

	unit := func(c *hdlobjects.Context, name string) (*Unit, error) {
		key := unitKey(name)
		if u, ok := h.units[key]; ok {
			return u, nil
		}
		u := &Unit{Key: key, Name: name, File: c.Path, Language: c.Language}
		if err := h.g.AddVertex(u); err != nil {
			return nil, fmt.Errorf("failed to add unit %s: %w", name, err)
		}
		h.units[key] = u
		return u, nil
	}

	for _, c := range contexts {
		if c == nil {
			continue
		}
		for _, e := range c.Entities {
			u, err := unit(c, e.Name())
			if err != nil {
				return nil, err
			}
			if u.Entity == nil {
				u.Entity = e
			}
		}
		for _, a := range c.Architectures {
			u, err := unit(c, a.EntityName())
			if err != nil {
				return nil, err
			}
			u.Arch = a
		}
	}

	for _, key := range h.keys() {
		u := h.units[key]
		if u.Arch == nil {
			continue
		}
		for _, inst := range u.Arch.ComponentInstances() {
			target := unitKey(inst.EntityName)
			if _, ok := h.units[target]; !ok {
				h.unresolved = append(h.unresolved, Unresolved{
					File:         u.File,
					Architecture: u.Arch.Name(),
					Instance:     inst.Name(),
					EntityName:   inst.EntityName,
				})
				continue
			}
			err := h.g.AddEdge(u.Key, target)
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to link %s to %s: %w", u.Name, inst.EntityName, err)
			}
		}
	}

	return h, nil
}

func (h *Hierarchy) keys() []string {
	keys := make([]string, 0, len(h.units))
	for k := range h.units {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unit returns the unit for an entity name.
func (h *Hierarchy) Unit(name string) (*Unit, bool) {
	u, ok := h.units[unitKey(name)]
	return u, ok
}

// Units returns every unit ordered by key.
func (h *Hierarchy) Units() []*Unit {
	out := make([]*Unit, 0, len(h.units))
	for _, k := range h.keys() {
		out = append(out, h.units[k])
	}
	return out
}

// Unresolved returns instantiations of unknown entities in unit order.
func (h *Hierarchy) Unresolved() []Unresolved {
	return slices.Clone(h.unresolved)
}

// Tops returns the names of units no other unit instantiates, sorted.
func (h *Hierarchy) Tops() ([]string, error) {
	preds, err := h.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	var tops []string
	for _, k := range h.keys() {
		if len(preds[k]) == 0 {
			tops = append(tops, h.units[k].Name)
		}
	}
	return tops, nil
}

// Children returns the units directly instantiated by name, sorted.
func (h *Hierarchy) Children(name string) ([]string, error) {
	adj, err := h.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	var out []string
	for k := range adj[unitKey(name)] {
		out = append(out, h.units[k].Name)
	}
	sort.Strings(out)
	return out, nil
}

// Cycles returns groups of units that instantiate each other, including a
// unit that instantiates itself. Members and groups are sorted.
func (h *Hierarchy) Cycles() ([][]string, error) {
	sccs, err := graph.StronglyConnectedComponents(h.g)
	if err != nil {
		return nil, err
	}
	adj, err := h.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	var cycles [][]string
	for _, scc := range sccs {
		if len(scc) == 1 {
			if _, self := adj[scc[0]][scc[0]]; !self {
				continue
			}
		}
		names := make([]string, 0, len(scc))
		for _, k := range scc {
			names = append(names, h.units[k].Name)
		}
		sort.Strings(names)
		cycles = append(cycles, names)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}

// Order returns unit names with every unit after the units it instantiates.
// It fails when the hierarchy has a cycle.
func (h *Hierarchy) Order() ([]string, error) {
	cycles, err := h.Cycles()
	if err != nil {
		return nil, err
	}
	if len(cycles) > 0 {
		return nil, fmt.Errorf("hierarchy has %d cycle(s), first: %s", len(cycles), strings.Join(cycles[0], " -> "))
	}
	keys, err := graph.StableTopologicalSort(h.g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, err
	}
	slices.Reverse(keys)
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, h.units[k].Name)
	}
	return names, nil
}
