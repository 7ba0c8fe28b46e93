package defs

import (
	"fmt"

	"github.com/benbjohnson/immutable"
)

var emptyList = immutable.NewList()

// Graph is a persistent arena of definitions indexed by ID. Updates return a
// new Graph sharing structure with the old one.
type Graph struct {
	l *immutable.List
}

// NewGraph returns an empty graph
func NewGraph() Graph { return Graph{emptyList} }

func (g Graph) list() *immutable.List {
	if g.l == nil {
		return emptyList
	}
	return g.l
}

// Len returns the number of definitions
func (g Graph) Len() int { return g.list().Len() }

// Get returns the definition with id, or nil
func (g Graph) Get(id ID) Definition {
	i := int(id) - 1
	if i < 0 || i >= g.Len() {
		return nil
	}
	return g.list().Get(i).(Definition)
}

// MustGet returns the definition with id or an error wrapping the reason
// it is missing. A missing definition is a broken checker invariant.
func (g Graph) MustGet(id ID) (Definition, error) {
	d := g.Get(id)
	if d == nil {
		return nil, fmt.Errorf("definition %d not in graph of %d", id, g.Len())
	}
	return d, nil
}

// With returns a graph in which d replaces the definition with the same ID
func (g Graph) With(d Definition) Graph {
	i := int(d.Base().ID) - 1
	if i < 0 || i >= g.Len() {
		panic(fmt.Sprintf("defs: With(%d) outside graph of %d", i+1, g.Len()))
	}
	return Graph{g.list().Set(i, d)}
}

// Add appends d, assigning its ID, and returns the new graph and the ID
func (g Graph) Add(d Definition) (Graph, ID) {
	id := ID(g.Len() + 1)
	d.Base().ID = id
	return Graph{g.list().Append(d)}, id
}

// Range calls f for every definition in ID order until f returns false
func (g Graph) Range(f func(Definition) bool) {
	itr := g.list().Iterator()
	for !itr.Done() {
		_, v := itr.Next()
		if !f(v.(Definition)) {
			return
		}
	}
}

// All returns every definition in ID order
func (g Graph) All() []Definition {
	out := make([]Definition, 0, g.Len())
	g.Range(func(d Definition) bool {
		out = append(out, d)
		return true
	})
	return out
}

// InModule returns the top-level definitions of module, in declaration order
func (g Graph) InModule(module string) []Definition {
	var out []Definition
	g.Range(func(d Definition) bool {
		c := d.Base()
		if c.Module == module {
			if _, local := d.(*LocalDefinition); !local {
				out = append(out, d)
			}
		}
		return true
	})
	return out
}

// DerivedOf returns the derived definition of parent with role, or nil
func (g Graph) DerivedOf(parent ID, role Role) Definition {
	p := g.Get(parent)
	if p == nil {
		return nil
	}
	for _, id := range p.Base().Derived {
		if d := g.Get(id); d != nil && d.Base().Role == role {
			return d
		}
	}
	return nil
}

// Builder accumulates definitions before a graph is frozen
type Builder struct {
	b    *immutable.ListBuilder
	defs []Definition
}

// NewBuilder returns a builder that extends g
func NewBuilder(g Graph) *Builder {
	return &Builder{b: immutable.NewListBuilder(g.list()), defs: g.All()}
}

// Add appends d, assigning its ID
func (b *Builder) Add(d Definition) ID {
	id := ID(b.b.Len() + 1)
	d.Base().ID = id
	b.b.Append(d)
	b.defs = append(b.defs, d)
	return id
}

// Set replaces the definition with d's ID
func (b *Builder) Set(d Definition) {
	i := int(d.Base().ID) - 1
	b.b.Set(i, d)
	b.defs[i] = d
}

// Get returns the definition with id, or nil
func (b *Builder) Get(id ID) Definition {
	i := int(id) - 1
	if i < 0 || i >= len(b.defs) {
		return nil
	}
	return b.defs[i]
}

// Len returns the number of definitions added so far
func (b *Builder) Len() int { return b.b.Len() }

// Graph freezes the builder. The builder must not be used afterwards.
func (b *Builder) Graph() Graph { return Graph{b.b.List()} }

// Marks records which definitions have been referenced. It is the only
// state written in place during checking; each entry is only ever set.
type Marks struct {
	used map[ID]bool
}

// NewMarks returns an empty mark set
func NewMarks() *Marks { return &Marks{used: make(map[ID]bool)} }

// Use marks id as referenced
func (m *Marks) Use(id ID) { m.used[id] = true }

// Used reports whether id has been referenced
func (m *Marks) Used(id ID) bool { return m.used[id] }
