package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/types"
)

// link binds imported names in flat modules, or inherited and cross-class
// names in classes
func (c *Checker) link() {
	for _, m := range c.modules {
		c.enter(m)
		if m.IsClass {
			c.linkClass(m)
			continue
		}
		c.checkExports(m)
		for _, imp := range m.module.Imports {
			c.linkImport(m, imp)
		}
	}
}

// exported reports whether module m exports name as kind
func (c *Checker) exported(m *ModuleInfo, kind ast.ImportKind, name string) bool {
	ex := m.module.Exports
	if ex == nil || ex.All {
		return true
	}
	for _, item := range ex.Items {
		if item.Name == name && item.Kind == kind {
			return true
		}
	}
	return false
}

// topLevel returns m's own definition of name as kind, or nil
func (c *Checker) topLevel(m *ModuleInfo, kind ast.ImportKind, name string) defs.Definition {
	if kind == ast.ImportType {
		if ids := m.Globals.Types(name); len(ids) > 0 {
			return c.graph.Get(ids[0])
		}
		return nil
	}
	for _, id := range m.Globals.Names(name) {
		d := c.graph.Get(id)
		if d.Base().Module != m.Name || d.Base().Role != defs.RoleNone {
			continue
		}
		if kindOf(d) == kind {
			return d
		}
	}
	return nil
}

func kindOf(d defs.Definition) ast.ImportKind {
	switch {
	case defs.IsFunction(d):
		return ast.ImportFunction
	case defs.IsOperation(d):
		return ast.ImportOperation
	}
	switch d.(type) {
	case *defs.TypeDefinition, *defs.StateDefinition:
		return ast.ImportType
	}
	return ast.ImportValue
}

func (c *Checker) checkExports(m *ModuleInfo) {
	ex := m.module.Exports
	if ex == nil || ex.All {
		return
	}
	for _, item := range ex.Items {
		if c.topLevel(m, item.Kind, item.Name) == nil {
			c.errorf(item, diagnostic.CodeImport, "exported %s '%s' is not defined in module '%s'", item.Kind, item.Name, m.Name)
		}
	}
}

func (c *Checker) linkImport(m *ModuleInfo, imp *ast.ImportFrom) {
	from := c.byName[imp.Module]
	switch {
	case from == nil:
		c.errorf(imp, diagnostic.CodeImport, "no module called '%s'", imp.Module)
		return
	case from == m:
		c.errorf(imp, diagnostic.CodeImport, "module '%s' imports from itself", m.Name)
		return
	case from.IsClass:
		c.errorf(imp, diagnostic.CodeImport, "'%s' is a class, not a module", imp.Module)
		return
	}

	if imp.All {
		for _, kind := range []ast.ImportKind{ast.ImportType, ast.ImportValue, ast.ImportFunction, ast.ImportOperation} {
			for _, id := range from.Defs {
				d := c.graph.Get(id)
				if kindOf(d) != kind || d.Base().Name == "" || !c.exported(from, kind, d.Base().Name) {
					continue
				}
				c.bindImport(m, from, kind, d, d.Base().Name, "", imp)
			}
		}
		return
	}

	for _, item := range imp.Items {
		target := c.topLevel(from, item.Kind, item.Name)
		if target == nil {
			c.errorf(item, diagnostic.CodeImport, "module '%s' does not define %s '%s'", from.Name, item.Kind, item.Name)
			continue
		}
		if !c.exported(from, item.Kind, item.Name) {
			c.errorf(item, diagnostic.CodeImport, "%s '%s' is not exported by module '%s'", item.Kind, item.Name, from.Name)
			continue
		}
		id := c.bindImport(m, from, item.Kind, target, item.Name, item.Renamed, item)
		if item.Type != nil {
			c.pendingImports = append(c.pendingImports, importCheck{module: m, item: item, id: id})
		}
	}
}

// bindImport makes target visible in m as from`name, and also under its new
// name when renamed
func (c *Checker) bindImport(m *ModuleInfo, from *ModuleInfo, kind ast.ImportKind, target defs.Definition, name, renamed string, at ast.Node) defs.ID {
	common := defs.Common{
		Name:   name,
		Module: m.Name,
		Loc:    defs.LocOf(m.File, at),
		Scope:  target.Base().Scope,
		Status: defs.CheckedOK,
		Pass:   defs.PassTypes,
	}
	var d defs.Definition
	if renamed != "" {
		common.Name = renamed
		d = &defs.RenamedDefinition{Common: common, From: from.Name, Original: name, Target: target.Base().ID}
	} else {
		d = &defs.ImportedDefinition{Common: common, From: from.Name, Target: target.Base().ID}
	}
	id := c.add(d)

	if kind == ast.ImportType {
		m.Globals = m.Globals.WithQualified(from.Name, name, id)
		if renamed != "" {
			if len(m.Globals.Types(renamed)) > 0 {
				c.errorf(at, diagnostic.CodeDuplicate, "import '%s' clashes with type '%s'", renamed, renamed)
			} else {
				m.Globals = m.Globals.WithType(renamed, id)
			}
		}
		return id
	}

	m.Globals = m.Globals.WithQualified(from.Name, name, id)
	if renamed != "" {
		if len(m.Globals.Names(renamed)) > 0 {
			c.errorf(at, diagnostic.CodeDuplicate, "import '%s' clashes with definition '%s'", renamed, renamed)
		} else {
			m.Globals = m.Globals.WithName(renamed, id)
		}
	}
	// derived helpers travel with their parent so pre_f can be called as M`pre_f
	for _, did := range target.Base().Derived {
		dd := c.graph.Get(did)
		m.Globals = m.Globals.WithQualified(from.Name, dd.Base().Name, did)
	}
	return id
}

// importCheck is an import whose declared type is compared with the
// exported definition once signatures are known
type importCheck struct {
	module *ModuleInfo
	item   *ast.ImportItem
	id     defs.ID
}

func (c *Checker) checkImportTypes() {
	for _, ic := range c.pendingImports {
		c.enter(ic.module)
		var target defs.Definition
		switch d := c.graph.Get(ic.id).(type) {
		case *defs.ImportedDefinition:
			target = c.graph.Get(d.Target)
		case *defs.RenamedDefinition:
			target = c.graph.Get(d.Target)
		}
		if target == nil {
			continue
		}
		declared := c.resolveType(ic.item.Type, c.rootEnv())
		actual := target.Base().Type
		if types.IsUnknown(actual) || types.IsUnknown(declared) {
			continue
		}
		if ic.item.Kind == ast.ImportType {
			actual = types.Unfold(actual)
			declared = types.Unfold(declared)
		}
		if !types.Compatible(declared, actual) {
			c.errorf(ic.item, diagnostic.CodeImport, "import '%s' declared as %s but module '%s' defines it as %s",
				ic.item.Name, declared, target.Base().Module, actual)
		}
	}
}
