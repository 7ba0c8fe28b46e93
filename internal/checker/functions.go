package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// functionEnv is the environment a function, or a helper of one, is checked
// in. Helpers of operations see the state; postconditions also see the
// state as it was before the call.
func (c *Checker) functionEnv(d defs.Definition) (*env.Env, defs.Scope) {
	e := c.rootEnv().Enclosing(d.Base().ID)
	scope := defs.ScopeNames

	parent := d
	if p := d.Base().Parent; p != defs.NoID {
		parent = c.graph.Get(p)
	}
	if defs.IsOperation(parent) {
		if c.module.State != defs.NoID {
			e = e.WithState(c.module.State)
		}
		scope = defs.ScopeNamesAndState
		if d.Base().Role == defs.RolePost {
			scope = defs.ScopeNamesAndAnyState
		}
	}
	if c.module.IsClass && parent.Base().Access.Static {
		e = e.Static()
	}
	e = e.Functional()
	if tps := typeParamsOf(d); len(tps) > 0 {
		e = e.WithTypeParams(tps)
	}
	return e, scope
}

// withScope runs f with the lookup scope set to s
func (c *Checker) withScope(s defs.Scope, f func()) {
	saved := c.scope
	c.scope = s
	f()
	c.scope = saved
}

// checkExplicitFunction checks a user function or a synthesized helper:
// parameters, precondition, body, postcondition, then measure
func (c *Checker) checkExplicitFunction(d *defs.ExplicitFunctionDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.ExplicitFunctionDefinition)
	fn, ok := d.Type.(*types.Function)
	if !ok {
		return u
	}

	if d.Role == defs.RoleNone {
		depth := curriedDepth(fn)
		switch {
		case len(d.Params) < depth:
			c.errorAt(d, diagnostic.CodeCurriedPatterns, "too few parameter patterns for '%s': the signature takes %d parameter lists, got %d", d.Name, depth, len(d.Params))
			return u
		case len(d.Params) > depth:
			c.errorAt(d, diagnostic.CodeCurriedPatterns, "too many parameter patterns for '%s': the signature takes %d parameter lists, got %d", d.Name, depth, len(d.Params))
			return u
		}
	}
	lists, result := levels(fn, len(d.Params))
	if len(lists) != len(d.Params) {
		return u
	}

	e, scope := c.functionEnv(d)
	for i, ps := range d.Params {
		if len(ps) != len(lists[i]) {
			c.errorAt(d, diagnostic.CodeCurriedPatterns, "parameter list %d of '%s' has %d patterns, the signature expects %d", i+1, d.Name, len(ps), len(lists[i]))
			return u
		}
		c.checkBinders(ps)
		var locals []defs.Definition
		for j, p := range ps {
			locals = append(locals, c.bindPattern(p, lists[i][j], e)...)
		}
		e = e.Extend(locals...)
	}

	if d.Role == defs.RoleNone {
		c.checkDerived(u, defs.RolePre)
	}

	var bodyType types.Type = types.UnknownType
	c.withScope(scope, func() {
		bodyType = c.checkExpr(d.Body, e)
	})
	switch d.Role {
	case defs.RoleNone:
		if !isAbstractBody(d.Body) && !types.Compatible(bodyType, result) {
			c.errorf(d.Body, diagnostic.CodeTypeMismatch, "function '%s' returns %s, expected %s", d.Name, bodyType, result)
		}
	case defs.RoleMeasure:
		u.Type = &types.Function{Params: fn.Params, Result: bodyType, TypeParams: fn.TypeParams}
	default:
		if !types.Compatible(bodyType, result) {
			c.errorf(d.Body, diagnostic.CodeTypeMismatch, "%s clause of '%s' must be %s, got %s", roleClause(d.Role), c.parentName(d), result, bodyType)
		}
	}

	if d.Role == defs.RoleNone {
		c.checkDerived(u, defs.RolePost)
		c.checkMeasure(u, fn)
	}
	return u
}

func roleClause(r defs.Role) string {
	switch r {
	case defs.RolePre:
		return "pre"
	case defs.RolePost:
		return "post"
	case defs.RoleInv:
		return "inv"
	case defs.RoleEq:
		return "eq"
	case defs.RoleOrd:
		return "ord"
	case defs.RoleInit:
		return "init"
	case defs.RoleMin, defs.RoleMax:
		return "ord"
	}
	return "measure"
}

func (c *Checker) parentName(d defs.Definition) string {
	if p := c.graph.Get(d.Base().Parent); p != nil {
		return p.Base().Name
	}
	return d.Base().Name
}

func isAbstractBody(e ast.Expression) bool {
	switch e.(type) {
	case *ast.SubclassRespExpr, *ast.NotYetSpecExpr:
		return true
	}
	return false
}

// checkMeasure validates a function's termination measure. The measure is
// either a synthesized measure_ helper or the name of another function.
func (c *Checker) checkMeasure(d *defs.ExplicitFunctionDefinition, fn *types.Function) {
	if d.Measure == nil {
		return
	}
	lists, _ := levels(fn, len(d.Params))
	var params []types.Type
	for _, l := range lists {
		params = append(params, l...)
	}

	if d.MeasureName == "" {
		c.checkDerived(d, defs.RoleMeasure)
		m := c.derived(d, defs.RoleMeasure)
		if m == nil {
			c.internalf("function '%s' has a measure expression but no measure helper", d.Name)
			return
		}
		if mf, ok := m.Type.(*types.Function); ok && !natMeasure(mf.Result) {
			c.errorf(d.Measure, diagnostic.CodeMeasure, "measure of '%s' must be nat or a tuple of nat, got %s", d.Name, mf.Result)
		}
		return
	}

	if d.MeasureName == d.Name {
		c.errorf(d.Measure, diagnostic.CodeMeasure, "function '%s' cannot be its own measure", d.Name)
		return
	}
	md, out := c.rootEnv().FindName(d.MeasureName, defs.ScopeNames)
	if out != env.Found {
		c.errorf(d.Measure, diagnostic.CodeMeasure, "measure '%s' of '%s' is not defined", d.MeasureName, d.Name)
		return
	}
	c.marks.Use(md.Base().ID)
	c.refs[d.Measure] = md
	mf, ok := md.Base().Type.(*types.Function)
	if !ok || !defs.IsFunction(md) {
		c.errorf(d.Measure, diagnostic.CodeMeasure, "measure '%s' of '%s' is not a function", d.MeasureName, d.Name)
		return
	}
	if len(mf.TypeParams) > 0 && len(fn.TypeParams) == 0 {
		c.errorf(d.Measure, diagnostic.CodeMeasure, "measure '%s' is polymorphic but '%s' is not", d.MeasureName, d.Name)
		return
	}
	mlists, mresult := levels(mf, curriedDepth(mf))
	var mparams []types.Type
	for _, l := range mlists {
		mparams = append(mparams, l...)
	}
	if !compatibleLists(mparams, params) {
		c.errorf(d.Measure, diagnostic.CodeMeasure, "measure '%s' takes (%s) but '%s' takes (%s)", d.MeasureName, typeList(mparams), d.Name, typeList(params))
		return
	}
	if !natMeasure(mresult) {
		c.errorf(d.Measure, diagnostic.CodeMeasure, "measure '%s' must return nat or a tuple of nat, got %s", d.MeasureName, mresult)
	}
}

// natMeasure reports whether t is nat, nat1, or a tuple of them
func natMeasure(t types.Type) bool {
	if types.IsUnknown(t) {
		return true
	}
	switch u := types.Unfold(t).(type) {
	case *types.Basic:
		return u.Kind == types.Nat || u.Kind == types.Nat1
	case *types.Product:
		for _, el := range u.Elems {
			b, ok := types.Unfold(el).(*types.Basic)
			if !ok || (b.Kind != types.Nat && b.Kind != types.Nat1) {
				return false
			}
		}
		return true
	}
	return false
}

func compatibleLists(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !types.Compatible(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (c *Checker) checkImplicitFunction(d *defs.ImplicitFunctionDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.ImplicitFunctionDefinition)
	n := d.Node
	fn, ok := d.Type.(*types.Function)
	if !ok {
		return u
	}

	e, scope := c.functionEnv(d)
	var ps []ast.Pattern
	var locals []defs.Definition
	for i, p := range n.Params {
		ps = append(ps, p.Pattern)
		locals = append(locals, c.bindPattern(p.Pattern, fn.Params[i], e)...)
	}
	c.checkBinders(ps)
	e = e.Extend(locals...)

	seen := map[string]bool{}
	for _, r := range n.Result {
		if seen[r.Name] || bindsName([][]ast.Pattern{ps}, r.Name) {
			c.errorf(r, diagnostic.CodeDuplicateBinder, "duplicate result identifier '%s'", r.Name)
		}
		seen[r.Name] = true
	}

	c.checkDerived(u, defs.RolePre)
	if n.Body != nil {
		var bodyType types.Type
		c.withScope(scope, func() {
			bodyType = c.checkExpr(n.Body, e)
		})
		if !isAbstractBody(n.Body) && !types.Compatible(bodyType, fn.Result) {
			c.errorf(n.Body, diagnostic.CodeTypeMismatch, "function '%s' returns %s, expected %s", d.Name, bodyType, fn.Result)
		}
	}
	if n.Post == nil {
		c.errorAt(d, diagnostic.CodeClause, "implicit function '%s' has no postcondition", d.Name)
	} else {
		c.checkDerived(u, defs.RolePost)
	}
	return u
}
