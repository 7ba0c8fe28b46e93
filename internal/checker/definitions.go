package checker

import (
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/types"
)

func (c *Checker) checkTypeDefinition(d *defs.TypeDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.TypeDefinition)
	for _, role := range []defs.Role{defs.RoleInv, defs.RoleEq, defs.RoleOrd, defs.RoleMin, defs.RoleMax} {
		c.checkDerived(u, role)
	}
	return u
}

func (c *Checker) checkStateDefinition(d *defs.StateDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.StateDefinition)
	c.checkDerived(u, defs.RoleInv)
	c.checkDerived(u, defs.RoleInit)
	return u
}

// checkValueDefinition checks "p : T = e". Values are checked in a
// functional, static context: they cannot see state or call operations.
func (c *Checker) checkValueDefinition(d *defs.ValueDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.ValueDefinition)
	n := d.Node
	e := c.rootEnv().Enclosing(d.ID).Functional()
	if c.module.IsClass {
		e = e.Static()
	}

	t := c.checkExpr(n.Value, e)
	if c.pending {
		return u
	}
	bound := t
	if n.Type != nil {
		declared := d.Type
		if declared == nil {
			declared = c.resolveType(n.Type, e)
		}
		if !types.Compatible(t, declared) {
			c.errorf(n.Value, diagnostic.CodeTypeMismatch, "value %s is declared as %s but has type %s", nameOrPattern(d), declared, t)
		}
		bound = declared
	}
	u.Type = bound

	locals := c.bindPattern(n.Pattern, bound, e)
	u.Bindings = u.Bindings[:0]
	for _, l := range locals {
		u.Bindings = append(u.Bindings, defs.Binding{Name: l.Base().Name, Type: l.Base().Type})
	}
	return u
}

func nameOrPattern(d *defs.ValueDefinition) string {
	if d.Name != "" {
		return "'" + d.Name + "'"
	}
	return "pattern"
}

func (c *Checker) checkInstanceVariable(d *defs.InstanceVariableDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.InstanceVariableDefinition)
	if d.Node.Init == nil {
		return u
	}
	e := c.rootEnv().Enclosing(d.ID)
	if d.Access.Static {
		e = e.Static()
	}
	var t types.Type
	c.withScope(defs.ScopeNamesAndState, func() {
		t = c.checkExpr(d.Node.Init, e)
	})
	if !types.Compatible(t, d.Type) {
		c.errorf(d.Node.Init, diagnostic.CodeTypeMismatch, "instance variable '%s' is %s but is initialised with %s", d.Name, d.Type, t)
	}
	return u
}

func (c *Checker) checkThread(d *defs.ThreadDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.ThreadDefinition)
	e := c.rootEnv().Enclosing(d.ID)
	sc := &stmtContext{env: e, result: types.VoidType, op: "thread"}
	c.withScope(defs.ScopeNamesAndState, func() {
		c.checkStmt(d.Node.Body, sc)
	})
	return u
}
