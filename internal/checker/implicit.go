package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
)

// resultName is the name a postcondition uses for an explicit definition's result
const resultName = "RESULT"

// implicitDefinitions synthesizes the helper functions every clause implies:
// pre_/post_/measure_ for functions and operations, inv_/eq_/ord_/min_/max_
// for types and inv_/init_ for state. Their types are filled in when
// signatures are resolved.
func (c *Checker) implicitDefinitions() {
	for _, m := range c.modules {
		c.enter(m)
		for _, id := range m.Defs {
			switch d := c.graph.Get(id).(type) {
			case *defs.TypeDefinition:
				c.typeHelpers(m, d)
			case *defs.StateDefinition:
				c.stateHelpers(m, d)
			case *defs.ExplicitFunctionDefinition:
				c.explicitFunctionHelpers(m, d)
			case *defs.ImplicitFunctionDefinition:
				c.implicitFunctionHelpers(m, d)
			case *defs.ExplicitOperationDefinition:
				c.operationHelpers(m, d, d.Node.Params, nil, d.Node.Pre, d.Node.Post, d.Node.Type != nil && d.Node.Type.Result != nil)
			case *defs.ImplicitOperationDefinition:
				var params []ast.Pattern
				for _, p := range d.Node.Params {
					params = append(params, p.Pattern)
				}
				c.operationHelpers(m, d, params, d.Node.Result, d.Node.Pre, d.Node.Post, d.Node.Result != nil)
			}
		}
	}
}

// derive adds a helper owned by parent and binds its name in the module
func (c *Checker) derive(m *ModuleInfo, parent defs.Definition, role defs.Role, at ast.Node, params [][]ast.Pattern, body ast.Expression) *defs.ExplicitFunctionDefinition {
	pb := parent.Base()
	d := &defs.ExplicitFunctionDefinition{
		Common: defs.Common{
			Name:   role.Prefix() + pb.Name,
			Module: pb.Module,
			Loc:    defs.LocOf(m.File, at),
			Access: pb.Access,
			Pass:   pb.Pass,
			Parent: pb.ID,
			Role:   role,
			Scope:  defs.ScopeGlobal,
		},
		TypeParams: typeParamsOf(parent),
		Params:     params,
		Body:       body,
	}
	id := c.add(d)

	p := defs.Clone(c.graph.Get(pb.ID))
	p.Base().Derived = append(p.Base().Derived, id)
	c.update(p)

	m.Globals = m.Globals.WithName(d.Name, id)
	return d
}

func typeParamsOf(d defs.Definition) []string {
	switch d := d.(type) {
	case *defs.ExplicitFunctionDefinition:
		return d.TypeParams
	case *defs.ImplicitFunctionDefinition:
		return d.TypeParams
	}
	return nil
}

func (c *Checker) typeHelpers(m *ModuleInfo, d *defs.TypeDefinition) {
	n := d.Node
	if n.Inv != nil {
		c.derive(m, d, defs.RoleInv, n.Inv, [][]ast.Pattern{{n.Inv.Pattern}}, n.Inv.Expr)
	}
	if n.Eq != nil {
		if c.cfg.Release == config.Classic {
			c.errorf(n.Eq, diagnostic.CodeDialect, "eq clauses need release vdm10")
		}
		c.derive(m, d, defs.RoleEq, n.Eq, [][]ast.Pattern{{n.Eq.Left, n.Eq.Right}}, n.Eq.Expr)
	}
	if n.Ord != nil {
		if c.cfg.Release == config.Classic {
			c.errorf(n.Ord, diagnostic.CodeDialect, "ord clauses need release vdm10")
		}
		c.derive(m, d, defs.RoleOrd, n.Ord, [][]ast.Pattern{{n.Ord.Left, n.Ord.Right}}, n.Ord.Expr)

		// min_T(a, b) == if ord_T(a, b) then a else b, and max_T the other way
		ord := ast.Var(defs.RoleOrd.Prefix() + n.Name)
		a, b := ast.Var("a"), ast.Var("b")
		params := [][]ast.Pattern{ast.PIds("a", "b")}
		c.derive(m, d, defs.RoleMin, n.Ord, params, &ast.IfExpr{Cond: ast.Call(ord, a, b), Then: a, Else: b})
		c.derive(m, d, defs.RoleMax, n.Ord, params, &ast.IfExpr{Cond: ast.Call(ord, a, b), Then: b, Else: a})
	}
}

// stateHelpers accepts inv and init in either order since the tree keeps
// them apart.
func (c *Checker) stateHelpers(m *ModuleInfo, d *defs.StateDefinition) {
	n := d.Node
	if n.Inv != nil {
		c.derive(m, d, defs.RoleInv, n.Inv, [][]ast.Pattern{{n.Inv.Pattern}}, n.Inv.Expr)
	}
	if n.Init != nil {
		c.derive(m, d, defs.RoleInit, n.Init, [][]ast.Pattern{{n.Init.Pattern}}, n.Init.Expr)
	}
}

// withResult appends RESULT-style patterns to the last parameter list
func withResult(params [][]ast.Pattern, results ...ast.Pattern) [][]ast.Pattern {
	out := make([][]ast.Pattern, len(params))
	copy(out, params)
	if len(out) == 0 {
		return [][]ast.Pattern{results}
	}
	last := append(append([]ast.Pattern(nil), out[len(out)-1]...), results...)
	out[len(out)-1] = last
	return out
}

func flatten(params [][]ast.Pattern) []ast.Pattern {
	var out []ast.Pattern
	for _, ps := range params {
		out = append(out, ps...)
	}
	return out
}

func (c *Checker) explicitFunctionHelpers(m *ModuleInfo, d *defs.ExplicitFunctionDefinition) {
	if d.Pre != nil {
		c.derive(m, d, defs.RolePre, d.Pre, d.Params, d.Pre)
	}
	if d.Post != nil {
		c.derive(m, d, defs.RolePost, d.Post, withResult(d.Params, ast.PId(resultName)), d.Post)
	}
	if d.Measure == nil {
		return
	}

	// A bare name is either a parameter, giving an expression measure, or
	// the name of a measure function.
	if v, ok := d.Measure.(*ast.Variable); ok && v.Module == "" && !bindsName(d.Params, v.Name) {
		u := defs.Clone(c.graph.Get(d.ID)).(*defs.ExplicitFunctionDefinition)
		u.MeasureName = v.Name
		c.update(u)
		return
	}
	if c.cfg.Release == config.Classic {
		c.errorf(d.Measure, diagnostic.CodeDialect, "measure expressions need release vdm10")
	}
	c.derive(m, d, defs.RoleMeasure, d.Measure, [][]ast.Pattern{flatten(d.Params)}, d.Measure)
}

func bindsName(params [][]ast.Pattern, name string) bool {
	for _, p := range flatten(params) {
		for _, n := range ast.PatternNames(p) {
			if n == name {
				return true
			}
		}
	}
	return false
}

func (c *Checker) implicitFunctionHelpers(m *ModuleInfo, d *defs.ImplicitFunctionDefinition) {
	n := d.Node
	var params []ast.Pattern
	for _, p := range n.Params {
		params = append(params, p.Pattern)
	}
	if n.Pre != nil {
		c.derive(m, d, defs.RolePre, n.Pre, [][]ast.Pattern{params}, n.Pre)
	}
	if n.Post != nil {
		var results []ast.Pattern
		for _, r := range n.Result {
			results = append(results, &ast.IdentifierPattern{Name: r.Name, Line: r.Line, Column: r.Column})
		}
		c.derive(m, d, defs.RolePost, n.Post, withResult([][]ast.Pattern{params}, results...), n.Post)
	}
}

func (c *Checker) operationHelpers(m *ModuleInfo, d defs.Definition, params []ast.Pattern, result *ast.NameTypePair, pre, post ast.Expression, hasResult bool) {
	if pre != nil {
		c.derive(m, d, defs.RolePre, pre, [][]ast.Pattern{params}, pre)
	}
	if post != nil {
		ps := append([]ast.Pattern(nil), params...)
		if hasResult {
			name := resultName
			if result != nil {
				name = result.Name
			}
			ps = append(ps, ast.PId(name))
		}
		c.derive(m, d, defs.RolePost, post, [][]ast.Pattern{ps}, post)
	}
}
