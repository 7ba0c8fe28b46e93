package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// add appends d to the working graph and returns its ID
func (c *Checker) add(d defs.Definition) defs.ID {
	var id defs.ID
	c.graph, id = c.graph.Add(d)
	return id
}

// register turns the tree into definitions, one module or class at a time
func (c *Checker) register(spec *ast.Specification) {
	hasClasses := c.cfg.Dialect.HasClasses()
	for _, m := range spec.Modules {
		if hasClasses {
			c.diag.ErrorfInFile(diagnostic.CodeDialect, m.File, m.Line, m.Column,
				"module '%s' is not allowed in %s; use classes", m.Name, c.cfg.Dialect)
			continue
		}
		if info := c.newModule(m.Name, m.File, m.Line, m.Column); info != nil {
			info.module = m
			c.registerDefinitions(info, m.Defs)
		}
	}
	for _, cl := range spec.Classes {
		if !hasClasses {
			c.diag.ErrorfInFile(diagnostic.CodeDialect, cl.File, cl.Line, cl.Column,
				"class '%s' is not allowed in %s", cl.Name, c.cfg.Dialect)
			continue
		}
		if info := c.newModule(cl.Name, cl.File, cl.Line, cl.Column); info != nil {
			info.IsClass = true
			info.class = cl
			info.Supertypes = cl.Supertypes
			c.registerDefinitions(info, cl.Defs)
		}
	}
}

func (c *Checker) newModule(name, file string, line, col int) *ModuleInfo {
	if _, dup := c.byName[name]; dup {
		c.diag.ErrorfInFile(diagnostic.CodeDuplicate, file, line, col, "duplicate module or class '%s'", name)
		return nil
	}
	info := &ModuleInfo{Name: name, File: file, Globals: env.NewGlobals(name)}
	c.modules = append(c.modules, info)
	c.byName[name] = info
	return info
}

func (c *Checker) registerDefinitions(info *ModuleInfo, nodes []ast.Definition) {
	c.enter(info)
	for _, n := range nodes {
		switch n := n.(type) {
		case *ast.TypeDef:
			d := &defs.TypeDefinition{Common: c.common(info, n.Name, n, n.Access, defs.PassTypes), Node: n}
			c.addType(info, d, n)

		case *ast.StateDef:
			if info.State != defs.NoID {
				c.errorf(n, diagnostic.CodeSecondState, "module '%s' already has a state definition", info.Name)
				continue
			}
			d := &defs.StateDefinition{Common: c.common(info, n.Name, n, ast.Access{}, defs.PassTypes), Node: n}
			id := c.addType(info, d, n)
			info.State = id
			for _, f := range n.Fields {
				fd := &defs.LocalDefinition{Common: c.common(info, f.Tag, f, ast.Access{}, defs.PassTypes)}
				fd.Scope = defs.ScopeState
				fd.Parent = id
				c.addName(info, fd, f, false)
			}

		case *ast.ValueDef:
			names := ast.PatternNames(n.Pattern)
			name := ""
			if len(names) > 0 {
				name = names[0]
			}
			access := n.Access
			if info.IsClass {
				// class values are implicitly static
				access.Static = true
			}
			d := &defs.ValueDefinition{Common: c.common(info, name, n, access, defs.PassValues), Node: n}
			id := c.add(d)
			info.Defs = append(info.Defs, id)
			for _, nm := range names {
				if c.checkDuplicate(info, nm, d, n) {
					info.Globals = info.Globals.WithName(nm, id)
				}
			}

		case *ast.ExplicitFunctionDef:
			d := &defs.ExplicitFunctionDefinition{
				Common:     c.common(info, n.Name, n, n.Access, defs.PassDefs),
				Node:       n,
				TypeParams: n.TypeParams,
				Params:     n.Params,
				Body:       n.Body,
				Pre:        n.Pre,
				Post:       n.Post,
				Measure:    n.Measure,
			}
			c.addName(info, d, n, true)

		case *ast.ImplicitFunctionDef:
			d := &defs.ImplicitFunctionDefinition{
				Common:     c.common(info, n.Name, n, n.Access, defs.PassDefs),
				Node:       n,
				TypeParams: n.TypeParams,
			}
			c.addName(info, d, n, true)

		case *ast.ExplicitOperationDef:
			d := &defs.ExplicitOperationDefinition{
				Common:      c.common(info, n.Name, n, n.Access, defs.PassDefs),
				Node:        n,
				Constructor: info.IsClass && n.Name == info.Name,
			}
			c.addName(info, d, n, true)

		case *ast.ImplicitOperationDef:
			d := &defs.ImplicitOperationDefinition{
				Common:      c.common(info, n.Name, n, n.Access, defs.PassDefs),
				Node:        n,
				Constructor: info.IsClass && n.Name == info.Name,
			}
			c.addName(info, d, n, true)

		case *ast.InstanceVariableDef:
			if !info.IsClass {
				c.errorf(n, diagnostic.CodeDialect, "instance variables are only allowed in classes")
				continue
			}
			d := &defs.InstanceVariableDefinition{Common: c.common(info, n.Name, n, n.Access, defs.PassValues), Node: n}
			d.Scope = defs.ScopeState
			c.addName(info, d, n, true)

		case *ast.ThreadDef:
			if !info.IsClass {
				c.errorf(n, diagnostic.CodeDialect, "threads are only allowed in classes")
				continue
			}
			if c.hasThread(info) {
				c.errorf(n, diagnostic.CodeDuplicate, "class '%s' already has a thread", info.Name)
				continue
			}
			d := &defs.ThreadDefinition{Common: c.common(info, "thread", n, ast.Access{}, defs.PassDefs), Node: n}
			info.Defs = append(info.Defs, c.add(d))

		default:
			c.internalf("cannot register %T", n)
		}
	}
	c.log.Debug("registered", "module", info.Name, "definitions", len(info.Defs))
}

func (c *Checker) common(info *ModuleInfo, name string, n ast.Node, access ast.Access, pass defs.Pass) defs.Common {
	return defs.Common{
		Name:   name,
		Module: info.Name,
		Loc:    defs.LocOf(info.File, n),
		Access: access,
		Pass:   pass,
		Scope:  defs.ScopeGlobal,
	}
}

// addType adds a type or state definition and binds its type name
func (c *Checker) addType(info *ModuleInfo, d defs.Definition, n ast.Node) defs.ID {
	id := c.add(d)
	info.Defs = append(info.Defs, id)
	name := d.Base().Name
	if len(info.Globals.Types(name)) > 0 {
		c.errorf(n, diagnostic.CodeDuplicate, "duplicate type '%s'", name)
		return id
	}
	info.Globals = info.Globals.WithType(name, id)
	return id
}

// addName adds d and binds its name; top says whether d is a top-level
// definition the sweeps must visit
func (c *Checker) addName(info *ModuleInfo, d defs.Definition, n ast.Node, top bool) defs.ID {
	id := c.add(d)
	if top {
		info.Defs = append(info.Defs, id)
	}
	if c.checkDuplicate(info, d.Base().Name, d, n) {
		info.Globals = info.Globals.WithName(d.Base().Name, id)
	}
	return id
}

// checkDuplicate reports a clash with an existing global of the same name.
// Functions and operations may overload each other in classes; identical
// signatures are caught once types are resolved.
func (c *Checker) checkDuplicate(info *ModuleInfo, name string, d defs.Definition, n ast.Node) bool {
	ids := info.Globals.Names(name)
	if len(ids) == 0 {
		return true
	}
	if info.IsClass && overloadable(d) {
		for _, id := range ids {
			if !overloadable(c.graph.Get(id)) {
				c.errorf(n, diagnostic.CodeDuplicate, "duplicate definition of '%s'", name)
				return false
			}
		}
		return true
	}
	c.errorf(n, diagnostic.CodeDuplicate, "duplicate definition of '%s'", name)
	return false
}

func overloadable(d defs.Definition) bool {
	return defs.IsFunction(d) || defs.IsOperation(d)
}

func (c *Checker) hasThread(info *ModuleInfo) bool {
	for _, id := range info.Defs {
		if _, ok := c.graph.Get(id).(*defs.ThreadDefinition); ok {
			return true
		}
	}
	return false
}

// classType returns the object type of the class called name
func (c *Checker) classType(name string) *types.Class {
	info := c.byName[name]
	if info == nil || !info.IsClass {
		return nil
	}
	return &types.Class{Name: name, Ancestors: c.ancestors(info)}
}
