package checker

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// ModuleInfo describes one module or class after registration
type ModuleInfo struct {
	Name       string
	File       string
	IsClass    bool
	Supertypes []string
	// Defs holds the top-level definitions in declaration order. Derived
	// definitions are reached through their parent's Derived list.
	Defs    []defs.ID
	State   defs.ID
	Globals *env.Globals

	module *ast.Module
	class  *ast.Class
}

// Result holds everything later stages need from checking
type Result struct {
	Graph       defs.Graph
	Diagnostics *diagnostic.Diagnostics
	// ExprTypes is the checked type of every expression
	ExprTypes map[ast.Expression]types.Type
	// TypeRefs is the resolved type of every type annotation met in a body
	TypeRefs map[ast.TypeRef]types.Type
	// Refs maps variables, calls and constructors to the definition they resolved to
	Refs map[ast.Node]defs.Definition
	// Shadowing marks case patterns that bind a name already in scope
	Shadowing map[ast.Pattern]bool
	// Targets is the type of every assignment target
	Targets map[ast.Designator]types.Type
	// Locals lists the pattern-bound names of each top-level definition
	Locals   map[defs.ID][]*defs.LocalDefinition
	Modules  []*ModuleInfo
	Calls    *defs.CallGraph
	Marks    *defs.Marks
	Settings config.Settings
}

// Module returns the module or class called name
func (r *Result) Module(name string) *ModuleInfo {
	for _, m := range r.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Lookup returns the top-level definition called name in module, if any
func (r *Result) Lookup(module, name string) defs.Definition {
	m := r.Module(module)
	if m == nil {
		return nil
	}
	for _, id := range m.Globals.Names(name) {
		d := r.Graph.Get(id)
		if d != nil && d.Base().Module == module {
			return d
		}
	}
	return nil
}

// Checker performs semantic analysis of a specification
type Checker struct {
	cfg  config.Settings
	log  *slog.Logger
	diag *diagnostic.Diagnostics

	graph   defs.Graph
	marks   *defs.Marks
	calls   *defs.CallGraph
	modules []*ModuleInfo
	byName  map[string]*ModuleInfo

	exprTypes map[ast.Expression]types.Type
	typeRefs  map[ast.TypeRef]types.Type
	refs      map[ast.Node]defs.Definition
	shadowing map[ast.Pattern]bool
	targets   map[ast.Designator]types.Type
	locals    map[defs.ID][]*defs.LocalDefinition

	// shells holds the Named/Record value of each type definition while
	// type references are being resolved
	shells map[defs.ID]types.Type

	pendingImports []importCheck

	// Per-definition state
	module  *ModuleInfo
	current defs.Definition
	scope   defs.Scope
	pending bool
	// internal is the first broken checker invariant; it aborts the run
	internal error
}

// New returns a checker for the given settings. A nil logger discards.
func New(cfg config.Settings, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Checker{
		cfg:       cfg,
		log:       log,
		diag:      diagnostic.New(),
		graph:     defs.NewGraph(),
		marks:     defs.NewMarks(),
		calls:     defs.NewCallGraph(),
		byName:    make(map[string]*ModuleInfo),
		exprTypes: make(map[ast.Expression]types.Type),
		typeRefs:  make(map[ast.TypeRef]types.Type),
		refs:      make(map[ast.Node]defs.Definition),
		shadowing: make(map[ast.Pattern]bool),
		targets:   make(map[ast.Designator]types.Type),
		locals:    make(map[defs.ID][]*defs.LocalDefinition),
		shells:    make(map[defs.ID]types.Type),
	}
}

// Check type checks spec with a discarding logger
func Check(spec *ast.Specification, cfg config.Settings) (*Result, error) {
	return New(cfg, nil).Run(context.Background(), spec)
}

// Get implements env.Source over the working graph
func (c *Checker) Get(id defs.ID) defs.Definition { return c.graph.Get(id) }

// Run checks spec. Checked errors are reported through the result's
// diagnostics; a returned error means a checker invariant was violated and
// the result must not be used.
func (c *Checker) Run(ctx context.Context, spec *ast.Specification) (*Result, error) {
	stages := []struct {
		name string
		run  func()
	}{
		{"register", func() { c.register(spec) }},
		{"implicit definitions", c.implicitDefinitions},
		{"link", c.link},
		{"resolve types", c.resolveTypes},
		{"resolve signatures", c.resolveSignatures},
		{"sweep", c.sweep},
		{"recursion", c.checkRecursion},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.log.Debug("stage", "name", st.name, "definitions", c.graph.Len())
		st.run()
		if c.internal != nil {
			return nil, c.internal
		}
	}
	return &Result{
		Graph:       c.graph,
		Diagnostics: c.diag,
		ExprTypes:   c.exprTypes,
		TypeRefs:    c.typeRefs,
		Refs:        c.refs,
		Shadowing:   c.shadowing,
		Targets:     c.targets,
		Locals:      c.locals,
		Modules:     c.modules,
		Calls:       c.calls,
		Marks:       c.marks,
		Settings:    c.cfg,
	}, nil
}

// internalf records a broken invariant. Only the first one is kept.
func (c *Checker) internalf(format string, args ...interface{}) {
	if c.internal == nil {
		c.internal = fmt.Errorf("%w: %s", diagnostic.ErrInternal, fmt.Sprintf(format, args...))
	}
}

// enter makes m the current module for diagnostics and lookups
func (c *Checker) enter(m *ModuleInfo) {
	c.module = m
	c.diag.SetFile(m.File)
}

// rootEnv returns the outermost environment of the current module
func (c *Checker) rootEnv() *env.Env {
	return env.NewRoot(c, c.module.Globals)
}

func (c *Checker) errorf(node ast.Node, code diagnostic.Code, format string, args ...interface{}) {
	line, col := 0, 0
	if node != nil {
		line, col = node.Pos()
	}
	c.diag.Errorf(code, line, col, format, args...)
}

func (c *Checker) warnf(node ast.Node, code diagnostic.Code, format string, args ...interface{}) {
	if !c.cfg.Warnings {
		return
	}
	line, col := 0, 0
	if node != nil {
		line, col = node.Pos()
	}
	if c.cfg.Strict {
		c.diag.Errorf(code, line, col, format, args...)
		return
	}
	c.diag.Warningf(code, line, col, format, args...)
}

// errorAt reports against a definition's own location
func (c *Checker) errorAt(d defs.Definition, code diagnostic.Code, format string, args ...interface{}) {
	loc := d.Base().Loc
	c.diag.ErrorfInFile(code, loc.File, loc.Line, loc.Column, format, args...)
}

func (c *Checker) storeExprType(expr ast.Expression, t types.Type) types.Type {
	if t == nil {
		t = types.UnknownType
	}
	c.exprTypes[expr] = t
	return t
}

// update replaces a definition in the working graph
func (c *Checker) update(d defs.Definition) {
	c.graph = c.graph.With(d)
}

// moduleOf returns the module that owns d
func (c *Checker) moduleOf(d defs.Definition) *ModuleInfo {
	return c.byName[d.Base().Module]
}

// sweep runs the TYPES, VALUES and DEFS passes in declaration order, then
// retries deferred definitions in FINAL until a round makes no progress.
func (c *Checker) sweep() {
	for _, pass := range []defs.Pass{defs.PassTypes, defs.PassValues, defs.PassDefs} {
		for _, m := range c.modules {
			c.enter(m)
			for _, id := range m.Defs {
				d := c.graph.Get(id)
				if d.Base().Pass != pass || d.Base().Status.Done() {
					continue
				}
				c.checkDefinition(id)
				if c.internal != nil {
					return
				}
			}
		}
	}

	for round := 1; ; round++ {
		progress := false
		remaining := 0
		for _, m := range c.modules {
			c.enter(m)
			for _, id := range m.Defs {
				if c.graph.Get(id).Base().Status != defs.Deferred {
					continue
				}
				if c.checkDefinition(id) {
					progress = true
				} else {
					remaining++
				}
				if c.internal != nil {
					return
				}
			}
		}
		c.log.Debug("final pass round", "round", round, "remaining", remaining)
		if !progress || remaining == 0 {
			break
		}
	}

	for _, m := range c.modules {
		c.enter(m)
		for _, id := range m.Defs {
			d := c.graph.Get(id)
			if d.Base().Status != defs.Deferred {
				continue
			}
			c.errorAt(d, diagnostic.CodeUnresolved, "cannot resolve %s '%s'", defs.Kind(d), d.Base().Name)
			c.setStatus(d, defs.Unresolvable)
			for _, did := range d.Base().Derived {
				c.setStatus(c.graph.Get(did), defs.Unresolvable)
			}
		}
	}
}

func (c *Checker) setStatus(d defs.Definition, s defs.Status) {
	u := defs.Clone(d)
	u.Base().Status = s
	if s == defs.Unresolvable && u.Base().Type == nil {
		u.Base().Type = types.UnknownType
	}
	c.update(u)
}

// checkDefinition checks one top-level definition and its derived
// definitions. It returns false when the definition was deferred.
func (c *Checker) checkDefinition(id defs.ID) bool {
	d := c.graph.Get(id)
	mark := c.diag.Mark()
	errs := c.diag.ErrorCount()

	saved := c.current
	c.current = d
	c.scope = defs.ScopeNames
	c.pending = false
	c.locals[id] = nil
	updated := c.check(d)
	c.current = saved

	if c.pending {
		// A forward reference to a value whose type is not known yet: drop
		// this attempt's messages and try again once other passes settle.
		c.diag.Truncate(mark)
		u := defs.Clone(d)
		u.Base().Status = defs.Deferred
		u.Base().Pass = defs.PassFinal
		c.update(u)
		c.pending = false
		c.log.Debug("deferred", "definition", d.Base().Name, "module", d.Base().Module)
		return false
	}

	status := defs.CheckedOK
	if c.diag.ErrorCount() > errs {
		status = defs.CheckedWithErrors
	}
	updated.Base().Status = status
	c.update(updated)
	return true
}

// check dispatches on the definition kind and returns the updated copy
func (c *Checker) check(d defs.Definition) defs.Definition {
	switch d := d.(type) {
	case *defs.TypeDefinition:
		return c.checkTypeDefinition(d)
	case *defs.ValueDefinition:
		return c.checkValueDefinition(d)
	case *defs.StateDefinition:
		return c.checkStateDefinition(d)
	case *defs.ExplicitFunctionDefinition:
		return c.checkExplicitFunction(d)
	case *defs.ImplicitFunctionDefinition:
		return c.checkImplicitFunction(d)
	case *defs.ExplicitOperationDefinition:
		return c.checkExplicitOperation(d)
	case *defs.ImplicitOperationDefinition:
		return c.checkImplicitOperation(d)
	case *defs.InstanceVariableDefinition:
		return c.checkInstanceVariable(d)
	case *defs.ThreadDefinition:
		return c.checkThread(d)
	case *defs.LocalDefinition, *defs.ImportedDefinition, *defs.RenamedDefinition, *defs.MultiBindListDefinition:
		return defs.Clone(d)
	}
	c.internalf("no checker for %T", d)
	return d
}

// checkDerived checks the derived definition of parent with the given role,
// if there is one, and stores its status.
func (c *Checker) checkDerived(parent defs.Definition, role defs.Role) {
	for _, id := range parent.Base().Derived {
		d := c.graph.Get(id)
		if d == nil {
			c.internalf("%s '%s' lists missing derived definition %d", defs.Kind(parent), parent.Base().Name, id)
			return
		}
		if d.Base().Role != role {
			continue
		}
		fn, ok := d.(*defs.ExplicitFunctionDefinition)
		if !ok {
			c.internalf("derived definition %s is a %T", d.Base().Name, d)
			return
		}
		errs := c.diag.ErrorCount()
		saved := c.current
		c.current = fn
		u := c.checkExplicitFunction(fn)
		c.current = saved
		u.Base().Status = defs.CheckedOK
		if c.diag.ErrorCount() > errs {
			u.Base().Status = defs.CheckedWithErrors
		}
		c.update(u)
	}
}

// derived returns parent's derived definition with role, or nil
func (c *Checker) derived(parent defs.Definition, role defs.Role) *defs.ExplicitFunctionDefinition {
	for _, id := range parent.Base().Derived {
		if d, ok := c.graph.Get(id).(*defs.ExplicitFunctionDefinition); ok && d.Role == role {
			return d
		}
	}
	return nil
}

// checkRecursion warns about recursive functions that have no measure and
// records the Recursive flag on every member of a recursive group.
func (c *Checker) checkRecursion() {
	rec := c.calls.Recursive()
	for _, m := range c.modules {
		c.enter(m)
		for _, id := range m.Defs {
			fn, ok := c.graph.Get(id).(*defs.ExplicitFunctionDefinition)
			if !ok {
				continue
			}
			if _, recursive := rec[id]; !recursive {
				continue
			}
			u := defs.Clone(fn).(*defs.ExplicitFunctionDefinition)
			u.Recursive = true
			c.update(u)
			if fn.Measure == nil && fn.Node != nil {
				c.warnf(fn.Node, diagnostic.CodeNoMeasure, "recursive function '%s' has no measure", fn.Name)
			}
		}
	}
}
