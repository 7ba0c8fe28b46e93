package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// stmtContext carries what statement checking needs beyond expressions
type stmtContext struct {
	env    *env.Env
	result types.Type // declared result of the enclosing operation
	pure   bool
	op     string
}

func (sc *stmtContext) with(e *env.Env) *stmtContext {
	c := *sc
	c.env = e
	return &c
}

// checkStmt checks a statement and returns the type of the values it may
// return: Void when it completes without returning.
func (c *Checker) checkStmt(s ast.Statement, sc *stmtContext) types.Type {
	e := sc.env
	switch s := s.(type) {
	case *ast.AssignStmt:
		c.checkAssign(s, sc)
		return types.VoidType

	case *ast.AtomicStmt:
		if len(s.Assigns) < 2 {
			c.errorf(s, diagnostic.CodeClause, "atomic needs at least two assignments")
		}
		for _, a := range s.Assigns {
			c.checkAssign(a, sc)
		}
		return types.VoidType

	case *ast.BlockStmt:
		inner := e
		for _, dcl := range s.Dcls {
			t := c.resolveType(dcl.Type, inner)
			if dcl.Init != nil {
				it := c.checkExpr(dcl.Init, inner)
				if !types.Compatible(it, t) {
					c.errorf(dcl.Init, diagnostic.CodeTypeMismatch, "'%s' is declared as %s but initialised with %s", dcl.Name, t, it)
				}
			}
			l := c.local(dcl.Name, dcl, t)
			l.Assignable = true
			inner = inner.Extend(l)
		}
		isc := sc.with(inner)
		var result []types.Type
		for i, st := range s.Stmts {
			t := c.checkStmt(st, isc)
			if i < len(s.Stmts)-1 {
				t = dropVoid(t)
			}
			if t != nil {
				result = append(result, t)
			}
		}
		if len(result) == 0 {
			return types.VoidType
		}
		return types.NewUnion(result...)

	case *ast.CallStmt:
		return c.checkCall(s, s.Module, s.Name, s.Args, sc)

	case *ast.ObjectCallStmt:
		return c.checkObjectCall(s, sc)

	case *ast.ReturnStmt:
		_, void := sc.result.(*types.Void)
		if s.Value == nil {
			if !void && !types.IsUnknown(sc.result) {
				c.errorf(s, diagnostic.CodeReturn, "operation '%s' must return a value of type %s", sc.op, sc.result)
			}
			return types.VoidType
		}
		t := c.checkExpr(s.Value, e)
		if void {
			c.errorf(s, diagnostic.CodeReturn, "operation '%s' does not return a value", sc.op)
			return types.UnknownType
		}
		if !types.Compatible(t, sc.result) {
			c.errorf(s.Value, diagnostic.CodeTypeMismatch, "operation '%s' returns %s, expected %s", sc.op, t, sc.result)
		}
		return t

	case *ast.IfStmt:
		c.checkCondition(s.Cond, e)
		parts := []types.Type{c.checkStmt(s.Then, sc)}
		for _, ei := range s.ElseIfs {
			c.checkCondition(ei.Cond, e)
			parts = append(parts, c.checkStmt(ei.Then, sc))
		}
		if s.Else != nil {
			parts = append(parts, c.checkStmt(s.Else, sc))
		} else {
			parts = append(parts, types.VoidType)
		}
		return types.NewUnion(parts...)

	case *ast.CasesStmt:
		subject := c.checkExpr(s.Subject, e)
		var parts []types.Type
		catchAll := false
		for _, alt := range s.Alts {
			if catchAll {
				c.warnf(alt, diagnostic.CodeCasesUnreachable, "cases alternative can never be reached")
			}
			var locals []defs.Definition
			for _, p := range alt.Patterns {
				c.noteShadowing(p, e)
				locals = append(locals, c.bindPattern(p, subject, e)...)
				catchAll = catchAll || isCatchAll(p)
			}
			parts = append(parts, c.checkStmt(alt.Body, sc.with(e.Extend(locals...))))
		}
		if s.Others != nil {
			parts = append(parts, c.checkStmt(s.Others, sc))
		} else if !catchAll {
			parts = append(parts, types.VoidType)
		}
		return types.NewUnion(parts...)

	case *ast.LetStmt:
		inner := c.checkLetDefs(s.Defs, e)
		return c.checkStmt(s.Body, sc.with(inner))

	case *ast.LetBeStStmt:
		locals := c.checkMultipleBind(s.Bind, e)
		inner := e.Extend(locals...)
		if s.SuchThat != nil {
			c.checkCondition(s.SuchThat, inner)
		}
		return c.checkStmt(s.Body, sc.with(inner))

	case *ast.WhileStmt:
		c.checkCondition(s.Cond, e)
		return types.NewUnion(c.checkStmt(s.Body, sc), types.VoidType)

	case *ast.ForIndexStmt:
		var ts []types.Type
		for _, x := range []ast.Expression{s.From, s.To, s.By} {
			if x == nil {
				continue
			}
			t := c.checkExpr(x, e)
			if _, cov := types.Narrow(t, types.QNumeric); cov == types.None {
				c.errorf(x, diagnostic.CodeQualifier, "for loop bound must be numeric, got %s", t)
			}
			ts = append(ts, t)
		}
		var vt types.Type = types.IntType
		if len(ts) > 0 {
			vt = types.WidestNumeric(ts[0], ts[len(ts)-1])
		}
		l := c.local(s.Var, s, vt)
		return types.NewUnion(c.checkStmt(s.Body, sc.with(e.Extend(l))), types.VoidType)

	case *ast.ForSetStmt:
		st := c.checkExpr(s.Set, e)
		elem, ok := types.SetOf(st)
		if !ok {
			c.errorf(s.Set, diagnostic.CodeQualifier, "for all needs a set, got %s", st)
		}
		locals := c.bindPattern(s.Pattern, elem, e)
		return types.NewUnion(c.checkStmt(s.Body, sc.with(e.Extend(locals...))), types.VoidType)

	case *ast.ForSeqStmt:
		st := c.checkExpr(s.Seq, e)
		elem, ok := types.SeqOf(st)
		if !ok {
			c.errorf(s.Seq, diagnostic.CodeQualifier, "for loop needs a sequence, got %s", st)
		}
		locals := c.bindPattern(s.Pattern, elem, e)
		return types.NewUnion(c.checkStmt(s.Body, sc.with(e.Extend(locals...))), types.VoidType)

	case *ast.ExitStmt:
		if s.Value != nil {
			c.checkExpr(s.Value, e)
		}
		return types.VoidType

	case *ast.SkipStmt, *ast.ErrorStmt, *ast.NotYetSpecStmt, *ast.SubclassRespStmt:
		return types.VoidType
	}
	c.internalf("no checker for statement %T", s)
	return types.UnknownType
}

// dropVoid removes the "completes normally" part of a statement type
func dropVoid(t types.Type) types.Type {
	var keep []types.Type
	for _, m := range types.Members(t) {
		if _, void := m.(*types.Void); !void {
			keep = append(keep, m)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	return types.NewUnion(keep...)
}

// checkAssign checks a designator := expression
func (c *Checker) checkAssign(s *ast.AssignStmt, sc *stmtContext) {
	target, root := c.checkDesignator(s.Target, sc)
	vt := c.checkExpr(s.Value, sc.env)
	if root == nil {
		return
	}
	c.refs[s] = root
	if !types.Compatible(vt, target) {
		c.errorf(s.Value, diagnostic.CodeTypeMismatch, "cannot assign %s to '%s' of type %s", vt, designatorName(s.Target), target)
	}
}

func designatorName(d ast.Designator) string {
	switch d := d.(type) {
	case *ast.NameDesignator:
		return d.Name
	case *ast.FieldDesignator:
		return designatorName(d.Object) + "." + d.Field
	case *ast.IndexDesignator:
		return designatorName(d.Object) + "(...)"
	}
	return "?"
}

// checkDesignator returns the type of an assignment target and the
// definition of the variable it assigns into, or nil after an error
func (c *Checker) checkDesignator(d ast.Designator, sc *stmtContext) (types.Type, defs.Definition) {
	t, root := c.designator(d, sc)
	if root != nil {
		c.targets[d] = t
	}
	return t, root
}

func (c *Checker) designator(d ast.Designator, sc *stmtContext) (types.Type, defs.Definition) {
	switch d := d.(type) {
	case *ast.NameDesignator:
		def, out := sc.env.FindName(d.Name, defs.ScopeNamesAndState)
		switch out {
		case env.NotFound:
			c.errorf(d, diagnostic.CodeUnknownName, "unknown name '%s'", d.Name)
			return types.UnknownType, nil
		case env.HiddenByStatic:
			c.errorf(d, diagnostic.CodeStaticContext, "'%s' is instance state and cannot be assigned in a static context", d.Name)
			return types.UnknownType, nil
		}
		c.marks.Use(def.Base().ID)
		if l, ok := def.(*defs.LocalDefinition); ok && l.Assignable {
			return def.Base().Type, def
		}
		if def.Base().Scope != defs.ScopeState {
			c.errorf(d, diagnostic.CodeStateAccess, "'%s' is not a state variable and cannot be assigned", d.Name)
			return types.UnknownType, nil
		}
		if sc.pure {
			c.errorf(d, diagnostic.CodeOperationAccess, "pure operation '%s' cannot assign state '%s'", sc.op, d.Name)
		}
		return def.Base().Type, def

	case *ast.FieldDesignator:
		ot, root := c.checkDesignator(d.Object, sc)
		if root == nil {
			return types.UnknownType, nil
		}
		if types.IsUnknown(ot) {
			return types.UnknownType, root
		}
		var fts []types.Type
		for _, r := range types.RecordOf(ot) {
			if f, ok := r.Field(d.Field); ok {
				fts = append(fts, f.Type)
			}
		}
		if len(fts) == 0 {
			c.errorf(d, diagnostic.CodeField, "%s has no field '%s'", ot, d.Field)
			return types.UnknownType, nil
		}
		return types.NewUnion(fts...), root

	case *ast.IndexDesignator:
		ot, root := c.checkDesignator(d.Object, sc)
		it := c.checkExpr(d.Index, sc.env)
		if root == nil {
			return types.UnknownType, nil
		}
		if types.IsUnknown(ot) {
			return types.UnknownType, root
		}
		if dom, rng, ok := types.MapOf(ot); ok {
			if !types.Compatible(it, dom) {
				c.errorf(d.Index, diagnostic.CodeTypeMismatch, "map key %s does not match domain %s", it, dom)
			}
			return rng, root
		}
		if elem, ok := types.SeqOf(ot); ok {
			if !types.IsNumeric(it) {
				c.errorf(d.Index, diagnostic.CodeQualifier, "sequence index must be numeric, got %s", it)
			}
			return elem, root
		}
		c.errorf(d, diagnostic.CodeQualifier, "only maps and sequences can be updated by index, not %s", ot)
		return types.UnknownType, nil
	}
	c.internalf("unknown designator %T", d)
	return types.UnknownType, nil
}

// checkCall checks op(args) or M`op(args) as a statement
func (c *Checker) checkCall(s ast.Node, module, name string, args []ast.Expression, sc *stmtContext) types.Type {
	argTypes := c.checkArgs(args, sc.env)
	var candidates []defs.Definition
	if module != "" {
		if d, out := sc.env.FindQualified(module, name); out == env.Found {
			candidates = []defs.Definition{d}
		}
	} else {
		candidates = sc.env.FindMatches(name)
	}
	if len(candidates) == 0 {
		c.errorf(s, diagnostic.CodeUnknownName, "unknown operation '%s'", name)
		return types.VoidType
	}
	d := c.resolveOverload(s, name, candidates, argTypes)
	if d == nil {
		return types.VoidType
	}
	c.refs[s] = d
	c.useDefinition(d)

	switch t := d.Base().Type.(type) {
	case *types.Operation:
		c.checkOperationCall(s, name, d, t, sc.env, sc.pure, sc.op)
		c.checkArgTypes(s, name, t.Params, argTypes)
	default:
		if !types.IsUnknown(t) {
			c.errorf(s, diagnostic.CodeQualifier, "'%s' is not an operation", name)
		}
	}
	return types.VoidType
}

// checkObjectCall checks obj.op(args)
func (c *Checker) checkObjectCall(s *ast.ObjectCallStmt, sc *stmtContext) types.Type {
	ot := c.checkExpr(s.Object, sc.env)
	argTypes := c.checkArgs(s.Args, sc.env)
	if types.IsUnknown(ot) {
		return types.VoidType
	}
	ct, ok := types.ClassOf(ot)
	if !ok {
		c.errorf(s.Object, diagnostic.CodeQualifier, "'%s' is called on %s, which is not an object", s.Name, ot)
		return types.VoidType
	}
	candidates := c.classMembers(ct.Name, s.Name)
	if len(candidates) == 0 {
		c.errorf(s, diagnostic.CodeUnknownName, "class '%s' has no public operation '%s'", ct.Name, s.Name)
		return types.VoidType
	}
	d := c.resolveOverload(s, s.Name, candidates, argTypes)
	if d == nil {
		return types.VoidType
	}
	c.refs[s] = d
	c.useDefinition(d)
	if op, ok := d.Base().Type.(*types.Operation); ok {
		c.checkOperationCall(s, s.Name, d, op, sc.env, sc.pure, sc.op)
		c.checkArgTypes(s, s.Name, op.Params, argTypes)
	}
	return types.VoidType
}

// classMembers returns the definitions called name that class cls makes
// visible from the current class
func (c *Checker) classMembers(cls, name string) []defs.Definition {
	m := c.byName[cls]
	if m == nil {
		return nil
	}
	var out []defs.Definition
	for _, id := range m.Globals.Names(name) {
		d := c.graph.Get(id)
		if d == nil {
			continue
		}
		vis := d.Base().Access.Visibility
		owner := d.Base().Module
		switch {
		case owner == c.module.Name:
		case vis == ast.Public:
		case vis == ast.Protected && c.inheritsFrom(c.module.Name, owner):
		default:
			continue
		}
		out = append(out, d)
	}
	return out
}

// checkOperationCall applies the rules on where an operation may be called from
func (c *Checker) checkOperationCall(at ast.Node, name string, d defs.Definition, op *types.Operation, e *env.Env, pure bool, caller string) {
	if e.IsFunctional() && !op.Pure {
		c.errorf(at, diagnostic.CodeOperationAccess, "operation '%s' cannot be called from a functional context", name)
		return
	}
	if pure && !op.Pure {
		c.errorf(at, diagnostic.CodeOperationAccess, "pure operation '%s' cannot call non-pure operation '%s'", caller, name)
	}
	if e.IsStatic() && !d.Base().Access.Static && d.Base().Module == c.module.Name && c.module.IsClass {
		c.errorf(at, diagnostic.CodeStaticContext, "instance operation '%s' cannot be called from a static context", name)
	}
}

// checkLetDefs checks let definitions in order, each seeing the previous ones
func (c *Checker) checkLetDefs(vds []*ast.ValueDef, e *env.Env) *env.Env {
	for _, vd := range vds {
		t := c.checkExpr(vd.Value, e)
		bound := t
		if vd.Type != nil {
			declared := c.resolveType(vd.Type, e)
			if !types.Compatible(t, declared) {
				c.errorf(vd.Value, diagnostic.CodeTypeMismatch, "let definition declared as %s has type %s", declared, t)
			}
			bound = declared
		}
		e = e.Extend(c.bindPattern(vd.Pattern, bound, e)...)
	}
	return e
}
