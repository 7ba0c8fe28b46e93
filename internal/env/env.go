// Package env is the name-resolution environment used during checking: an
// immutable chain of links, innermost first. Extending an environment never
// changes the environment it extends.
package env

import (
	"github.com/benbjohnson/immutable"

	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/types"
)

// Source gives the root link access to the current top-level definitions.
// The checker passes its working graph, so a definition updated earlier in a
// sweep is seen by later lookups.
type Source interface {
	Get(id defs.ID) defs.Definition
}

// Outcome explains why a lookup failed
type Outcome int

const (
	Found Outcome = iota
	NotFound
	// HiddenByStatic: the name is instance state but the lookup is inside a static member
	HiddenByStatic
	// HiddenByScope: the name exists but the scope filter excludes it
	HiddenByScope
)

// Globals is the set of top-level names visible in one module or class
type Globals struct {
	Module string
	// names and types map a name to a []defs.ID; qualified maps "M`x" likewise
	names     *immutable.SortedMap
	types     *immutable.SortedMap
	qualified *immutable.SortedMap
}

// NewGlobals returns an empty global name table for module
func NewGlobals(module string) *Globals {
	return &Globals{
		Module:    module,
		names:     immutable.NewSortedMap(nil),
		types:     immutable.NewSortedMap(nil),
		qualified: immutable.NewSortedMap(nil),
	}
}

func addID(m *immutable.SortedMap, key string, id defs.ID) *immutable.SortedMap {
	var ids []defs.ID
	if v, ok := m.Get(key); ok {
		ids = append(ids, v.([]defs.ID)...)
	}
	for _, existing := range ids {
		if existing == id {
			return m
		}
	}
	return m.Set(key, append(ids, id))
}

func getIDs(m *immutable.SortedMap, key string) []defs.ID {
	if v, ok := m.Get(key); ok {
		return v.([]defs.ID)
	}
	return nil
}

// WithName returns a copy of g in which name also denotes id
func (g *Globals) WithName(name string, id defs.ID) *Globals {
	c := *g
	c.names = addID(g.names, name, id)
	return &c
}

// WithType returns a copy of g in which type name denotes id
func (g *Globals) WithType(name string, id defs.ID) *Globals {
	c := *g
	c.types = addID(g.types, name, id)
	return &c
}

// WithQualified returns a copy of g in which module`name denotes id
func (g *Globals) WithQualified(module, name string, id defs.ID) *Globals {
	c := *g
	c.qualified = addID(g.qualified, module+"`"+name, id)
	return &c
}

// Names returns the IDs bound to name
func (g *Globals) Names(name string) []defs.ID { return getIDs(g.names, name) }

// Types returns the IDs of the types called name
func (g *Globals) Types(name string) []defs.ID { return getIDs(g.types, name) }

// Qualified returns the IDs bound to module`name
func (g *Globals) Qualified(module, name string) []defs.ID {
	return getIDs(g.qualified, module+"`"+name)
}

// RangeNames calls f for each global name in sorted order
func (g *Globals) RangeNames(f func(name string, ids []defs.ID)) {
	itr := g.names.Iterator()
	for !itr.Done() {
		k, v := itr.Next()
		f(k.(string), v.([]defs.ID))
	}
}

// Env is one link of the chain
type Env struct {
	parent *Env

	// root links only
	src     Source
	globals *Globals

	locals     *immutable.SortedMap // name -> defs.Definition
	typeParams *immutable.SortedMap // name -> *types.Parameter

	static     bool
	functional bool
	enclosing  defs.ID
	state      defs.ID
}

// NewRoot returns the outermost link for a module or class
func NewRoot(src Source, g *Globals) *Env {
	return &Env{src: src, globals: g}
}

func (e *Env) child() *Env {
	return &Env{parent: e}
}

// Extend returns a link that binds ds on top of e
func (e *Env) Extend(ds ...defs.Definition) *Env {
	c := e.child()
	m := immutable.NewSortedMap(nil)
	for _, d := range ds {
		m = m.Set(d.Base().Name, d)
	}
	c.locals = m
	return c
}

// WithTypeParams returns a link binding each name to a type parameter
func (e *Env) WithTypeParams(names []string) *Env {
	c := e.child()
	m := immutable.NewSortedMap(nil)
	for _, n := range names {
		m = m.Set(n, &types.Parameter{Name: n})
	}
	c.typeParams = m
	return c
}

// Static returns a link inside which instance state and self are hidden
func (e *Env) Static() *Env {
	c := e.child()
	c.static = true
	return c
}

// Functional returns a link inside which state is read-only and operations
// may not be called
func (e *Env) Functional() *Env {
	c := e.child()
	c.functional = true
	return c
}

// Enclosing returns a link recording the definition being checked
func (e *Env) Enclosing(id defs.ID) *Env {
	c := e.child()
	c.enclosing = id
	return c
}

// WithState returns a link recording the state definition in force
func (e *Env) WithState(id defs.ID) *Env {
	c := e.child()
	c.state = id
	return c
}

func (e *Env) root() *Env {
	for e.parent != nil {
		e = e.parent
	}
	return e
}

// Module returns the module or class name of the root link
func (e *Env) Module() string {
	if g := e.root().globals; g != nil {
		return g.Module
	}
	return ""
}

// Globals returns the root link's name table
func (e *Env) Globals() *Globals { return e.root().globals }

// IsStatic reports whether any enclosing link is static
func (e *Env) IsStatic() bool {
	for l := e; l != nil; l = l.parent {
		if l.static {
			return true
		}
	}
	return false
}

// IsFunctional reports whether any enclosing link is functional
func (e *Env) IsFunctional() bool {
	for l := e; l != nil; l = l.parent {
		if l.functional {
			return true
		}
	}
	return false
}

// EnclosingDefinition returns the innermost definition being checked
func (e *Env) EnclosingDefinition() defs.Definition {
	for l := e; l != nil; l = l.parent {
		if l.enclosing != defs.NoID {
			return e.root().get(l.enclosing)
		}
	}
	return nil
}

// FindStateDefinition returns the state definition in force, if any
func (e *Env) FindStateDefinition() defs.Definition {
	for l := e; l != nil; l = l.parent {
		if l.state != defs.NoID {
			return e.root().get(l.state)
		}
	}
	return nil
}

// TypeParameter returns the type parameter called name, if one is in scope
func (e *Env) TypeParameter(name string) (*types.Parameter, bool) {
	for l := e; l != nil; l = l.parent {
		if l.typeParams == nil {
			continue
		}
		if v, ok := l.typeParams.Get(name); ok {
			return v.(*types.Parameter), true
		}
	}
	return nil, false
}

func (e *Env) get(id defs.ID) defs.Definition {
	r := e.root()
	if r.src == nil {
		return nil
	}
	return r.src.Get(id)
}

// follow resolves imported and renamed definitions to their targets
func (e *Env) follow(d defs.Definition) defs.Definition {
	for i := 0; i < 16 && d != nil; i++ {
		switch imp := d.(type) {
		case *defs.ImportedDefinition:
			d = e.get(imp.Target)
		case *defs.RenamedDefinition:
			d = e.get(imp.Target)
		default:
			return d
		}
	}
	return d
}

// visible applies the scope filter and the static rule to d
func visible(d defs.Definition, scope defs.Scope, static bool) Outcome {
	s := d.Base().Scope
	if s == 0 {
		s = defs.ScopeGlobal
	}
	if s&scope == 0 {
		return HiddenByScope
	}
	if static && s&(defs.ScopeState|defs.ScopeOldState) != 0 && !d.Base().Access.Static {
		return HiddenByStatic
	}
	return Found
}

// FindName resolves name innermost first. A closer binding shadows an outer
// one even when the scope filter then hides it.
func (e *Env) FindName(name string, scope defs.Scope) (defs.Definition, Outcome) {
	static := false
	for l := e; l != nil; l = l.parent {
		if l.static {
			static = true
		}
		if l.locals != nil {
			if v, ok := l.locals.Get(name); ok {
				d := v.(defs.Definition)
				return d, visible(d, scope, static)
			}
		}
		if l.parent == nil && l.globals != nil {
			ids := l.globals.Names(name)
			if len(ids) == 0 {
				return nil, NotFound
			}
			d := e.follow(l.get(ids[0]))
			if d == nil {
				return nil, NotFound
			}
			return d, visible(d, scope, static)
		}
	}
	return nil, NotFound
}

// FindQualified resolves module`name through the root's qualified table.
// A name of the current module may always be qualified with its own module.
func (e *Env) FindQualified(module, name string) (defs.Definition, Outcome) {
	r := e.root()
	if r.globals == nil {
		return nil, NotFound
	}
	if module == r.globals.Module {
		return e.FindName(name, defs.ScopeNamesAndState)
	}
	ids := r.globals.Qualified(module, name)
	if len(ids) == 0 {
		return nil, NotFound
	}
	d := e.follow(r.get(ids[0]))
	if d == nil {
		return nil, NotFound
	}
	return d, Found
}

// FindMatches returns every global definition of name, for overload resolution
func (e *Env) FindMatches(name string) []defs.Definition {
	for l := e; l != nil; l = l.parent {
		if l.locals != nil {
			if v, ok := l.locals.Get(name); ok {
				return []defs.Definition{v.(defs.Definition)}
			}
		}
	}
	r := e.root()
	if r.globals == nil {
		return nil
	}
	var out []defs.Definition
	for _, id := range r.globals.Names(name) {
		if d := e.follow(r.get(id)); d != nil {
			out = append(out, d)
		}
	}
	return out
}

// FindType resolves a type name. An empty module means the current one.
func (e *Env) FindType(name, module string) defs.Definition {
	r := e.root()
	if r.globals == nil {
		return nil
	}
	var ids []defs.ID
	if module == "" || module == r.globals.Module {
		ids = r.globals.Types(name)
	} else {
		ids = r.globals.Qualified(module, name)
	}
	for _, id := range ids {
		switch d := e.follow(r.get(id)).(type) {
		case *defs.TypeDefinition, *defs.StateDefinition:
			return d
		}
	}
	return nil
}
