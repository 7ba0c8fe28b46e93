package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
)

// ancestors returns every superclass of m, nearest first. Unknown
// superclasses and cycles are reported by linkClass.
func (c *Checker) ancestors(m *ModuleInfo) []string {
	var out []string
	seen := map[string]bool{m.Name: true}
	queue := append([]string(nil), m.Supertypes...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		sup := c.byName[name]
		if sup == nil || !sup.IsClass {
			continue
		}
		out = append(out, name)
		queue = append(queue, sup.Supertypes...)
	}
	return out
}

// inheritsFrom reports whether class name reaches target through its supertypes
func (c *Checker) inheritsFrom(name, target string) bool {
	m := c.byName[name]
	if m == nil {
		return false
	}
	seen := map[string]bool{}
	var walk func(*ModuleInfo) bool
	walk = func(m *ModuleInfo) bool {
		for _, s := range m.Supertypes {
			if s == target {
				return true
			}
			if seen[s] {
				continue
			}
			seen[s] = true
			if sup := c.byName[s]; sup != nil && walk(sup) {
				return true
			}
		}
		return false
	}
	return walk(m)
}

// linkClass binds inherited members and the public members of every other
// class, which are reached as C`name
func (c *Checker) linkClass(m *ModuleInfo) {
	for _, s := range m.Supertypes {
		sup := c.byName[s]
		switch {
		case sup == nil || !sup.IsClass:
			c.errorf(m.class, diagnostic.CodeInheritance, "class '%s' inherits from unknown class '%s'", m.Name, s)
		case s == m.Name || c.inheritsFrom(s, m.Name):
			c.errorf(m.class, diagnostic.CodeInheritance, "class '%s' inherits from itself", m.Name)
		}
	}
	if c.inheritsFrom(m.Name, m.Name) {
		// a cycle: do not inherit anything, or lookups would loop
		return
	}

	for _, anc := range c.ancestors(m) {
		sup := c.byName[anc]
		for _, id := range sup.Defs {
			d := c.graph.Get(id)
			if d.Base().Access.Visibility == ast.Private {
				continue
			}
			c.inherit(m, sup, d)
			for _, did := range d.Base().Derived {
				c.inherit(m, sup, c.graph.Get(did))
			}
		}
	}

	for _, other := range c.modules {
		if other == m || !other.IsClass {
			continue
		}
		for _, id := range other.Defs {
			d := c.graph.Get(id)
			vis := d.Base().Access.Visibility
			if vis == ast.Public || (vis == ast.Protected && c.inheritsFrom(m.Name, other.Name)) {
				m.Globals = m.Globals.WithQualified(other.Name, d.Base().Name, id)
			}
		}
	}
}

// inherit makes an ancestor's member visible in m unless m redefines the
// name. Operations and functions overload across the hierarchy.
func (c *Checker) inherit(m, from *ModuleInfo, d defs.Definition) {
	name := d.Base().Name
	id := d.Base().ID
	m.Globals = m.Globals.WithQualified(from.Name, name, id)

	switch d.(type) {
	case *defs.TypeDefinition:
		if len(m.Globals.Types(name)) == 0 {
			m.Globals = m.Globals.WithType(name, id)
		}
		return
	case *defs.ThreadDefinition:
		return
	}

	existing := m.Globals.Names(name)
	if len(existing) == 0 {
		m.Globals = m.Globals.WithName(name, id)
		return
	}
	if !overloadable(d) {
		return
	}
	for _, eid := range existing {
		if !overloadable(c.graph.Get(eid)) {
			return
		}
	}
	// overriding definitions with the same signature are filtered out by
	// overload resolution, which prefers the nearest class
	m.Globals = m.Globals.WithName(name, id)
}
