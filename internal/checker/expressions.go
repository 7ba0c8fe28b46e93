package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// checkExpr checks an expression and records its type
func (c *Checker) checkExpr(expr ast.Expression, e *env.Env) types.Type {
	return c.storeExprType(expr, c.exprType(expr, e))
}

func (c *Checker) exprType(expr ast.Expression, e *env.Env) types.Type {
	switch x := expr.(type) {
	case *ast.BoolLit:
		return types.BoolType
	case *ast.IntLit:
		switch {
		case x.Value > 0:
			return types.Nat1Type
		case x.Value == 0:
			return types.NatType
		}
		return types.IntType
	case *ast.RealLit:
		return types.RealType
	case *ast.CharLit:
		return types.CharType
	case *ast.QuoteLit:
		return &types.Quote{Value: x.Value}
	case *ast.TextLit:
		return &types.Seq{Elem: types.CharType, NonEmpty: x.Value != ""}
	case *ast.NilLit:
		return types.NilType

	case *ast.Variable:
		return c.checkVariable(x, e)

	case *ast.OldName:
		if !c.scope.Has(defs.ScopeOldState) {
			c.errorf(x, diagnostic.CodeStateAccess, "old value '%s~' can only be used in an operation postcondition", x.Name)
			return types.UnknownType
		}
		d, out := e.FindName(x.Name, defs.ScopeNamesAndState)
		if out != env.Found || d.Base().Scope != defs.ScopeState {
			c.errorf(x, diagnostic.CodeStateAccess, "'%s~' does not name a state variable", x.Name)
			return types.UnknownType
		}
		c.refs[x] = d
		c.useDefinition(d)
		return d.Base().Type

	case *ast.SelfExpr:
		if !c.module.IsClass {
			c.errorf(x, diagnostic.CodeStaticContext, "self can only be used in a class")
			return types.UnknownType
		}
		if e.IsStatic() {
			c.errorf(x, diagnostic.CodeStaticContext, "self cannot be used in a static context")
			return types.UnknownType
		}
		return c.classType(c.module.Name)

	case *ast.UnaryExpr:
		return c.checkUnary(x, e)
	case *ast.BinaryExpr:
		return c.checkBinary(x, e)
	case *ast.ApplyExpr:
		return c.checkApply(x, e)
	case *ast.FieldExpr:
		return c.checkField(x, e)

	case *ast.TupleSelectExpr:
		t := c.checkExpr(x.Tuple, e)
		if types.IsUnknown(t) {
			return types.UnknownType
		}
		prod, ok := types.ProductOf(t, 0)
		if !ok {
			c.errorf(x, diagnostic.CodeQualifier, "tuple selection needs a tuple, got %s", t)
			return types.UnknownType
		}
		if x.Index < 1 || x.Index > len(prod.Elems) {
			c.errorf(x, diagnostic.CodeField, "tuple %s has no element #%d", t, x.Index)
			return types.UnknownType
		}
		return prod.Elems[x.Index-1]

	case *ast.IfExpr:
		c.checkCondition(x.Cond, e)
		parts := []types.Type{c.checkExpr(x.Then, e)}
		for _, ei := range x.ElseIfs {
			c.checkCondition(ei.Cond, e)
			parts = append(parts, c.checkExpr(ei.Then, e))
		}
		parts = append(parts, c.checkExpr(x.Else, e))
		return types.NewUnion(parts...)

	case *ast.CasesExpr:
		return c.checkCases(x, e)

	case *ast.LetExpr:
		return c.checkExpr(x.Body, c.checkLetDefs(x.Defs, e))

	case *ast.LetBeStExpr:
		inner := e.Extend(c.checkMultipleBind(x.Bind, e)...)
		if x.SuchThat != nil {
			c.checkCondition(x.SuchThat, inner)
		}
		return c.checkExpr(x.Body, inner)

	case *ast.QuantifiedExpr:
		inner := c.checkBinds(x.Binds, e)
		c.checkCondition(x.Pred, inner)
		return types.BoolType

	case *ast.Exists1Expr:
		_, locals := c.checkBind(x.Bind, e)
		c.checkCondition(x.Pred, e.Extend(locals...))
		return types.BoolType

	case *ast.IotaExpr:
		elem, locals := c.checkBind(x.Bind, e)
		c.checkCondition(x.Pred, e.Extend(locals...))
		return elem

	case *ast.SetEnumExpr:
		if len(x.Elems) == 0 {
			return &types.Set{Elem: types.UnknownType}
		}
		return &types.Set{Elem: c.unionOf(x.Elems, e), NonEmpty: true}

	case *ast.SeqEnumExpr:
		if len(x.Elems) == 0 {
			return &types.Seq{Elem: types.UnknownType}
		}
		return &types.Seq{Elem: c.unionOf(x.Elems, e), NonEmpty: true}

	case *ast.MapEnumExpr:
		if len(x.Maplets) == 0 {
			return &types.Map{Dom: types.UnknownType, Rng: types.UnknownType}
		}
		var doms, rngs []types.Type
		for _, ml := range x.Maplets {
			doms = append(doms, c.checkExpr(ml.Key, e))
			rngs = append(rngs, c.checkExpr(ml.Value, e))
		}
		return &types.Map{Dom: types.NewUnion(doms...), Rng: types.NewUnion(rngs...)}

	case *ast.SetCompExpr:
		inner := c.checkBinds(x.Binds, e)
		if x.Pred != nil {
			c.checkCondition(x.Pred, inner)
		}
		return &types.Set{Elem: c.checkExpr(x.Elem, inner)}

	case *ast.SeqCompExpr:
		elem, locals := c.checkBind(x.Bind, e)
		if _, isSet := x.Bind.(*ast.SetBind); isSet && !types.IsNumeric(elem) {
			c.errorf(x.Bind, diagnostic.CodeQualifier, "sequence comprehension over a set needs numeric elements, got %s", elem)
		}
		inner := e.Extend(locals...)
		if x.Pred != nil {
			c.checkCondition(x.Pred, inner)
		}
		return &types.Seq{Elem: c.checkExpr(x.Elem, inner)}

	case *ast.MapCompExpr:
		inner := c.checkBinds(x.Binds, e)
		if x.Pred != nil {
			c.checkCondition(x.Pred, inner)
		}
		dom := c.checkExpr(x.Maplet.Key, inner)
		rng := c.checkExpr(x.Maplet.Value, inner)
		return &types.Map{Dom: dom, Rng: rng}

	case *ast.SetRangeExpr:
		lo := c.checkNumeric(x.Low, e, "set range bound")
		hi := c.checkNumeric(x.High, e, "set range bound")
		return &types.Set{Elem: types.WidestNumeric(lo, hi)}

	case *ast.SubseqExpr:
		st := c.checkExpr(x.Seq, e)
		c.checkNumeric(x.From, e, "subsequence bound")
		c.checkNumeric(x.To, e, "subsequence bound")
		elem, ok := types.SeqOf(st)
		if !ok {
			c.errorf(x.Seq, diagnostic.CodeQualifier, "subsequence needs a sequence, got %s", st)
		}
		return &types.Seq{Elem: elem}

	case *ast.TupleExpr:
		if len(x.Elems) < 2 {
			c.errorf(x, diagnostic.CodeArity, "a tuple needs at least two elements")
		}
		elems := make([]types.Type, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = c.checkExpr(el, e)
		}
		return &types.Product{Elems: elems}

	case *ast.RecordExpr:
		return c.checkRecordExpr(x, e)

	case *ast.MuExpr:
		rt := c.checkExpr(x.Record, e)
		recs := types.RecordOf(rt)
		if len(recs) == 0 {
			for _, m := range x.Mods {
				c.checkExpr(m.Value, e)
			}
			if !types.IsUnknown(rt) {
				c.errorf(x.Record, diagnostic.CodeQualifier, "mu needs a record, got %s", rt)
			}
			return types.UnknownType
		}
		for _, m := range x.Mods {
			vt := c.checkExpr(m.Value, e)
			var fts []types.Type
			for _, r := range recs {
				if f, ok := r.Field(m.Tag); ok {
					fts = append(fts, f.Type)
				}
			}
			if len(fts) == 0 {
				c.errorf(m, diagnostic.CodeField, "%s has no field '%s'", rt, m.Tag)
				continue
			}
			if ft := types.NewUnion(fts...); !types.Compatible(vt, ft) {
				c.errorf(m.Value, diagnostic.CodeTypeMismatch, "field '%s' is %s, cannot be set to %s", m.Tag, ft, vt)
			}
		}
		return rt

	case *ast.IsExpr:
		c.resolveType(x.Type, e)
		c.checkExpr(x.Arg, e)
		return types.BoolType

	case *ast.NarrowExpr:
		at := c.checkExpr(x.Arg, e)
		t := c.resolveType(x.Type, e)
		if !types.Compatible(at, t) {
			c.errorf(x, diagnostic.CodeTypeMismatch, "%s cannot be narrowed to %s", at, t)
		}
		return t

	case *ast.LambdaExpr:
		var params []types.Type
		var locals []defs.Definition
		var ps []ast.Pattern
		for _, tb := range x.Params {
			t := c.resolveType(tb.Type, e)
			params = append(params, t)
			ps = append(ps, tb.Pattern)
			locals = append(locals, c.bindPattern(tb.Pattern, t, e)...)
		}
		c.checkBinders(ps)
		body := c.checkExpr(x.Body, e.Extend(locals...))
		return &types.Function{Params: params, Result: body}

	case *ast.FuncInstExpr:
		return c.checkFuncInst(x, e)

	case *ast.NewExpr:
		return c.checkNew(x, e)

	case *ast.SubclassRespExpr, *ast.NotYetSpecExpr, *ast.UndefinedExpr:
		return types.UnknownType
	}
	c.internalf("no checker for expression %T", expr)
	return types.UnknownType
}

// checkVariable resolves a name. A reference to a value whose type is not
// known yet marks the current definition as pending.
func (c *Checker) checkVariable(v *ast.Variable, e *env.Env) types.Type {
	var d defs.Definition
	var out env.Outcome
	if v.Module != "" {
		d, out = e.FindQualified(v.Module, v.Name)
	} else {
		d, out = e.FindName(v.Name, c.scope)
	}
	switch out {
	case env.NotFound:
		if v.Module != "" {
			c.errorf(v, diagnostic.CodeUnknownName, "unknown name '%s`%s'", v.Module, v.Name)
		} else {
			c.errorf(v, diagnostic.CodeUnknownName, "unknown name '%s'", v.Name)
		}
		return types.UnknownType
	case env.HiddenByStatic:
		c.errorf(v, diagnostic.CodeStaticContext, "'%s' is instance state and cannot be used in a static context", v.Name)
		return types.UnknownType
	case env.HiddenByScope:
		c.errorf(v, diagnostic.CodeStateAccess, "state '%s' cannot be accessed here", v.Name)
		return types.UnknownType
	}
	c.refs[v] = d
	c.useDefinition(d)

	t := defs.TypeOfName(d, v.Name)
	if _, ok := d.(*defs.ValueDefinition); ok && !d.Base().Status.Done() && types.IsUnknown(t) {
		c.pending = true
		return types.UnknownType
	}
	if defs.IsOperation(d) && e.IsFunctional() && !c.isPure(d) {
		c.errorf(v, diagnostic.CodeOperationAccess, "operation '%s' cannot be used in a functional context", v.Name)
	}
	c.addCallEdge(d)
	return t
}

func (c *Checker) isPure(d defs.Definition) bool {
	op, ok := d.Base().Type.(*types.Operation)
	return ok && op.Pure
}

// addCallEdge records a call from the function being checked to d
func (c *Checker) addCallEdge(d defs.Definition) {
	if c.current == nil || c.current.Base().Role != defs.RoleNone || !defs.IsFunction(c.current) {
		return
	}
	if !defs.IsFunction(d) || d.Base().Role != defs.RoleNone {
		return
	}
	c.calls.AddEdge(c.current.Base().ID, d.Base().ID)
}

func (c *Checker) useDefinition(d defs.Definition) {
	c.marks.Use(d.Base().ID)
}

// checkCondition checks an expression that must be boolean
func (c *Checker) checkCondition(x ast.Expression, e *env.Env) {
	t := c.checkExpr(x, e)
	if _, cov := types.Narrow(t, types.QBool); cov == types.None {
		c.errorf(x, diagnostic.CodeTypeMismatch, "expected a bool expression, got %s", t)
	}
}

// checkNumeric checks an expression that must be numeric and returns its type
func (c *Checker) checkNumeric(x ast.Expression, e *env.Env, what string) types.Type {
	t := c.checkExpr(x, e)
	if _, cov := types.Narrow(t, types.QNumeric); cov == types.None {
		c.errorf(x, diagnostic.CodeQualifier, "%s must be numeric, got %s", what, t)
		return types.UnknownType
	}
	return t
}

func (c *Checker) unionOf(xs []ast.Expression, e *env.Env) types.Type {
	ts := make([]types.Type, len(xs))
	for i, x := range xs {
		ts[i] = c.checkExpr(x, e)
	}
	return types.NewUnion(ts...)
}

func (c *Checker) checkArgs(args []ast.Expression, e *env.Env) []types.Type {
	ts := make([]types.Type, len(args))
	for i, a := range args {
		ts[i] = c.checkExpr(a, e)
	}
	return ts
}

// checkBinds checks a list of multiple binds; later binds see earlier ones
func (c *Checker) checkBinds(binds []ast.MultipleBind, e *env.Env) *env.Env {
	var locals []defs.Definition
	for _, b := range binds {
		locals = append(locals, c.checkMultipleBind(b, e)...)
	}
	return e.Extend(locals...)
}

func (c *Checker) checkCases(x *ast.CasesExpr, e *env.Env) types.Type {
	subject := c.checkExpr(x.Subject, e)
	var parts []types.Type
	catchAll := false
	for _, alt := range x.Alts {
		if catchAll {
			c.warnf(alt, diagnostic.CodeCasesUnreachable, "cases alternative can never be reached")
		}
		var locals []defs.Definition
		for _, p := range alt.Patterns {
			c.noteShadowing(p, e)
			locals = append(locals, c.bindPattern(p, subject, e)...)
			catchAll = catchAll || isCatchAll(p)
		}
		parts = append(parts, c.checkExpr(alt.Result, e.Extend(locals...)))
	}
	if x.Others != nil {
		if catchAll {
			c.warnf(x.Others, diagnostic.CodeCasesUnreachable, "others can never be reached")
		}
		parts = append(parts, c.checkExpr(x.Others, e))
	}
	return types.NewUnion(parts...)
}

// checkArgTypes compares actual argument types with the parameters
func (c *Checker) checkArgTypes(at ast.Node, name string, params, args []types.Type) {
	if len(params) != len(args) {
		c.errorf(at, diagnostic.CodeArity, "'%s' expects %d arguments, got %d", name, len(params), len(args))
		return
	}
	for i := range params {
		if !types.Compatible(args[i], params[i]) {
			c.errorf(at, diagnostic.CodeTypeMismatch, "argument %d of '%s' is %s, expected %s", i+1, name, args[i], params[i])
		}
	}
}

// resolveOverload picks the candidate whose parameters accept args.
// Candidates with identical signatures are inherited overrides; the
// first, from the nearest class, wins.
func (c *Checker) resolveOverload(at ast.Node, name string, candidates []defs.Definition, args []types.Type) defs.Definition {
	if len(candidates) == 1 {
		return candidates[0]
	}
	var distinct []defs.Definition
	var sigs [][]types.Type
outer:
	for _, d := range candidates {
		ps, ok := paramTypes(d.Base().Type)
		if !ok {
			continue
		}
		for _, s := range sigs {
			if sameTypes(s, ps) {
				continue outer
			}
		}
		distinct = append(distinct, d)
		sigs = append(sigs, ps)
	}

	var fits, exact []defs.Definition
	for i, d := range distinct {
		if !compatibleLists(args, sigs[i]) {
			continue
		}
		fits = append(fits, d)
		if subtypeLists(args, sigs[i]) {
			exact = append(exact, d)
		}
	}
	switch {
	case len(fits) == 1:
		return fits[0]
	case len(exact) == 1:
		return exact[0]
	case len(fits) == 0:
		c.errorf(at, diagnostic.CodeOverload, "no overload of '%s' accepts (%s)", name, typeList(args))
	default:
		c.errorf(at, diagnostic.CodeOverload, "ambiguous call of '%s' with (%s)", name, typeList(args))
	}
	return nil
}

func subtypeLists(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !types.IsSubtype(a[i], b[i]) {
			return false
		}
	}
	return true
}

// checkApply checks f(args), m(k) and s(i)
func (c *Checker) checkApply(x *ast.ApplyExpr, e *env.Env) types.Type {
	argTypes := c.checkArgs(x.Args, e)

	var ft types.Type
	name := ast.Print(x.Fn)
	if v, ok := x.Fn.(*ast.Variable); ok && v.Module == "" {
		if candidates := e.FindMatches(v.Name); len(candidates) > 1 {
			d := c.resolveOverload(x, v.Name, candidates, argTypes)
			if d == nil {
				c.storeExprType(x.Fn, types.UnknownType)
				return types.UnknownType
			}
			c.refs[v] = d
			c.useDefinition(d)
			c.addCallEdge(d)
			if defs.IsOperation(d) && e.IsFunctional() && !c.isPure(d) {
				c.errorf(v, diagnostic.CodeOperationAccess, "operation '%s' cannot be used in a functional context", v.Name)
			}
			ft = c.storeExprType(x.Fn, d.Base().Type)
		}
	}
	if ft == nil {
		ft = c.checkExpr(x.Fn, e)
	}
	if types.IsUnknown(ft) {
		return types.UnknownType
	}

	if f, ok := types.FunctionOf(ft); ok {
		if len(f.TypeParams) > 0 {
			c.errorf(x, diagnostic.CodeQualifier, "polymorphic function %s must be instantiated before it is applied", name)
			return types.UnknownType
		}
		c.checkArgTypes(x, name, f.Params, argTypes)
		return f.Result
	}
	if op, ok := types.OperationOf(ft); ok {
		if d := c.refs[x.Fn]; d != nil && !e.IsFunctional() {
			c.checkOperationCall(x, name, d, op, e, c.currentPure(), c.currentName())
		}
		c.checkArgTypes(x, name, op.Params, argTypes)
		if _, void := op.Result.(*types.Void); void {
			c.errorf(x, diagnostic.CodeReturn, "operation %s returns no value and cannot be used in an expression", name)
			return types.UnknownType
		}
		return op.Result
	}
	if dom, rng, ok := types.MapOf(ft); ok {
		if len(argTypes) != 1 {
			c.errorf(x, diagnostic.CodeArity, "map application takes one argument, got %d", len(argTypes))
			return rng
		}
		if !types.Compatible(argTypes[0], dom) {
			c.errorf(x.Args[0], diagnostic.CodeTypeMismatch, "map key %s does not match domain %s", argTypes[0], dom)
		}
		return rng
	}
	if elem, ok := types.SeqOf(ft); ok {
		if len(argTypes) != 1 {
			c.errorf(x, diagnostic.CodeArity, "sequence application takes one argument, got %d", len(argTypes))
			return elem
		}
		if _, cov := types.Narrow(argTypes[0], types.QNumeric); cov == types.None {
			c.errorf(x.Args[0], diagnostic.CodeQualifier, "sequence index must be numeric, got %s", argTypes[0])
		}
		return elem
	}
	c.errorf(x.Fn, diagnostic.CodeQualifier, "%s of type %s cannot be applied", name, ft)
	return types.UnknownType
}

// currentPure reports whether the definition being checked is a pure operation
func (c *Checker) currentPure() bool {
	if c.current == nil {
		return false
	}
	return c.isPure(c.current)
}

func (c *Checker) currentName() string {
	if c.current == nil {
		return ""
	}
	return c.current.Base().Name
}

// checkField checks r.f on records and obj.f on objects
func (c *Checker) checkField(x *ast.FieldExpr, e *env.Env) types.Type {
	ot := c.checkExpr(x.Object, e)
	if types.IsUnknown(ot) {
		return types.UnknownType
	}
	if ct, ok := types.ClassOf(ot); ok {
		members := c.classMembers(ct.Name, x.Field)
		if len(members) == 0 {
			c.errorf(x, diagnostic.CodeField, "class '%s' has no visible member '%s'", ct.Name, x.Field)
			return types.UnknownType
		}
		d := members[0]
		c.refs[x] = d
		c.useDefinition(d)
		return defs.TypeOfName(d, x.Field)
	}
	var fts []types.Type
	for _, r := range types.RecordOf(ot) {
		if f, ok := r.Field(x.Field); ok {
			fts = append(fts, f.Type)
		}
	}
	if len(fts) == 0 {
		c.errorf(x, diagnostic.CodeField, "%s has no field '%s'", ot, x.Field)
		return types.UnknownType
	}
	return types.NewUnion(fts...)
}

// checkRecordExpr checks mk_T(args)
func (c *Checker) checkRecordExpr(x *ast.RecordExpr, e *env.Env) types.Type {
	argTypes := c.checkArgs(x.Args, e)
	d := e.FindType(x.Type, x.Module)
	if d == nil {
		c.errorf(x, diagnostic.CodeUnknownType, "unknown record type '%s'", x.Type)
		return types.UnknownType
	}
	c.refs[x] = d
	c.useDefinition(d)
	rec, ok := types.Unfold(d.Base().Type).(*types.Record)
	if !ok {
		c.errorf(x, diagnostic.CodeQualifier, "'%s' is not a record type", x.Type)
		return types.UnknownType
	}
	if len(argTypes) != len(rec.Fields) {
		c.errorf(x, diagnostic.CodeArity, "mk_%s takes %d fields, got %d", x.Type, len(rec.Fields), len(argTypes))
		return d.Base().Type
	}
	for i, f := range rec.Fields {
		if !types.Compatible(argTypes[i], f.Type) {
			c.errorf(x.Args[i], diagnostic.CodeTypeMismatch, "field '%s' of mk_%s is %s, got %s", f.Tag, x.Type, f.Type, argTypes[i])
		}
	}
	return d.Base().Type
}

// checkFuncInst checks f[T1, ...] against the type parameters of f
func (c *Checker) checkFuncInst(x *ast.FuncInstExpr, e *env.Env) types.Type {
	ft := c.checkExpr(x.Fn, e)
	actual := make([]types.Type, len(x.Types))
	for i, tr := range x.Types {
		actual[i] = c.resolveType(tr, e)
	}
	if types.IsUnknown(ft) {
		return types.UnknownType
	}
	f, ok := types.FunctionOf(ft)
	if !ok || len(f.TypeParams) == 0 {
		c.errorf(x, diagnostic.CodeQualifier, "%s is not a polymorphic function", ast.Print(x.Fn))
		return types.UnknownType
	}
	if len(actual) != len(f.TypeParams) {
		c.errorf(x, diagnostic.CodeArity, "%s takes %d type parameters, got %d", ast.Print(x.Fn), len(f.TypeParams), len(actual))
		return types.UnknownType
	}
	bind := make(map[string]types.Type, len(actual))
	for i, name := range f.TypeParams {
		bind[name] = actual[i]
	}
	return types.Substitute(f, bind)
}

// checkNew checks new C(args) against the constructors of C
func (c *Checker) checkNew(x *ast.NewExpr, e *env.Env) types.Type {
	argTypes := c.checkArgs(x.Args, e)
	ct := c.classType(x.Class)
	if ct == nil {
		c.errorf(x, diagnostic.CodeUnknownType, "unknown class '%s'", x.Class)
		return types.UnknownType
	}
	if e.IsFunctional() {
		c.errorf(x, diagnostic.CodeOperationAccess, "objects cannot be created in a functional context")
	}
	var ctors []defs.Definition
	for _, d := range c.classMembers(x.Class, x.Class) {
		if isConstructor(d) && d.Base().Module == x.Class {
			ctors = append(ctors, d)
		}
	}
	if len(ctors) == 0 {
		if len(argTypes) > 0 {
			c.errorf(x, diagnostic.CodeArity, "class '%s' has no constructor taking %d arguments", x.Class, len(argTypes))
		}
		return ct
	}
	d := c.resolveOverload(x, x.Class, ctors, argTypes)
	if d == nil {
		return ct
	}
	c.refs[x] = d
	c.useDefinition(d)
	if op, ok := d.Base().Type.(*types.Operation); ok {
		c.checkArgTypes(x, x.Class, op.Params, argTypes)
	}
	return ct
}
