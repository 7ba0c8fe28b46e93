package pog

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/types"
)

// typeOf returns the checked type of x, narrowed by any is_ guard in force
func (g *Generator) typeOf(x ast.Expression) types.Type {
	if v, ok := x.(*ast.Variable); ok && v.Module == "" {
		if t, ok := g.ctx.noted(v.Name); ok {
			return t
		}
	}
	if t, ok := g.res.ExprTypes[x]; ok && t != nil {
		return t
	}
	return types.UnknownType
}

// qualify raises a subtype obligation when only part of x's type has the
// capability the operator needs
func (g *Generator) qualify(x ast.Expression, q types.Qualifier) {
	narrowed, cov := types.Narrow(g.typeOf(x), q)
	if cov == types.Partial {
		g.emit(Subtype, x, isType(x, narrowed))
	}
}

// subtype raises is_(x, want) unless x's type is already within want
func (g *Generator) subtype(x ast.Expression, want types.Type) {
	if x == nil {
		return
	}
	have := g.typeOf(x)
	if types.IsUnknown(have) || types.IsUnknown(want) || hasParameter(want) {
		return
	}
	if _, void := want.(*types.Void); void {
		return
	}
	if types.IsSubtype(have, want) {
		return
	}
	g.emit(Subtype, x, isType(x, want))
}

func (g *Generator) subtypes(args []ast.Expression, params []types.Type) {
	for i, a := range args {
		if i < len(params) {
			g.subtype(a, params[i])
		}
	}
}

// guarded runs visit with cond assumed true, or false for NotImplies
func (g *Generator) guarded(kind HypothesisKind, cond ast.Expression, visit func()) {
	g.push(Hypothesis{Kind: kind, Expr: cond})
	n := 1
	if kind == Implies {
		n += g.noteTypes(cond)
	}
	visit()
	g.pop(n)
}

// noteTypes pushes a NotedType frame for each is_ test on a variable that
// cond establishes
func (g *Generator) noteTypes(cond ast.Expression) int {
	switch c := cond.(type) {
	case *ast.IsExpr:
		v, ok := c.Arg.(*ast.Variable)
		if !ok || v.Module != "" {
			return 0
		}
		t, ok := g.res.TypeRefs[c.Type]
		if !ok || types.IsUnknown(t) {
			return 0
		}
		g.push(Hypothesis{Kind: NotedType, Name: v.Name, Type: t})
		return 1
	case *ast.BinaryExpr:
		if c.Op == ast.AND {
			return g.noteTypes(c.Left) + g.noteTypes(c.Right)
		}
	}
	return 0
}

func (g *Generator) exprs(xs []ast.Expression) {
	for _, x := range xs {
		g.expr(x)
	}
}

func (g *Generator) expr(x ast.Expression) {
	switch x := x.(type) {
	case nil:
	case *ast.UnaryExpr:
		g.expr(x.Operand)
		g.unary(x)
	case *ast.BinaryExpr:
		g.binary(x)
	case *ast.ApplyExpr:
		g.apply(x)
	case *ast.FieldExpr:
		g.expr(x.Object)
		g.field(x)
	case *ast.TupleSelectExpr:
		g.expr(x.Tuple)
		g.tupleSelect(x)
	case *ast.IfExpr:
		g.ifExpr(x)
	case *ast.CasesExpr:
		arms := make([]caseArm, len(x.Alts))
		for i, alt := range x.Alts {
			result := alt.Result
			arms[i] = caseArm{patterns: alt.Patterns, visit: func() { g.expr(result) }}
		}
		var others func()
		if x.Others != nil {
			others = func() { g.expr(x.Others) }
		}
		g.cases(x, x.Subject, arms, others)
	case *ast.LetExpr:
		n := g.letDefs(x.Defs)
		g.expr(x.Body)
		g.pop(n)
	case *ast.LetBeStExpr:
		g.letBeSt(x, x.Bind, x.SuchThat, func() { g.expr(x.Body) })
	case *ast.QuantifiedExpr:
		g.quantified(x.Binds, x.Pred)
	case *ast.Exists1Expr:
		g.quantified([]ast.MultipleBind{multiBind(x.Bind)}, x.Pred)
	case *ast.IotaExpr:
		binds := []ast.MultipleBind{multiBind(x.Bind)}
		g.quantified(binds, x.Pred)
		g.emit(UniqueExistence, x, &ast.Exists1Expr{Bind: x.Bind, Pred: x.Pred})
	case *ast.SetEnumExpr:
		g.exprs(x.Elems)
	case *ast.SeqEnumExpr:
		g.exprs(x.Elems)
	case *ast.MapEnumExpr:
		for _, m := range x.Maplets {
			g.expr(m.Key)
			g.expr(m.Value)
		}
		g.mapEnum(x)
	case *ast.SetCompExpr:
		g.setComp(x)
	case *ast.SeqCompExpr:
		g.seqComp(x)
	case *ast.MapCompExpr:
		g.mapComp(x)
	case *ast.SetRangeExpr:
		g.expr(x.Low)
		g.expr(x.High)
		g.qualify(x.Low, types.QNumeric)
		g.qualify(x.High, types.QNumeric)
	case *ast.SubseqExpr:
		g.expr(x.Seq)
		g.expr(x.From)
		g.expr(x.To)
		g.qualify(x.Seq, types.QSeq)
		g.qualify(x.From, types.QNumeric)
		g.qualify(x.To, types.QNumeric)
	case *ast.TupleExpr:
		g.exprs(x.Elems)
	case *ast.RecordExpr:
		g.exprs(x.Args)
		g.record(x)
	case *ast.MuExpr:
		g.expr(x.Record)
		for _, m := range x.Mods {
			g.expr(m.Value)
		}
		g.mu(x)
	case *ast.IsExpr:
		g.expr(x.Arg)
	case *ast.NarrowExpr:
		g.expr(x.Arg)
		g.subtype(x.Arg, g.res.TypeRefs[x.Type])
	case *ast.LambdaExpr:
		binds := make([]ast.MultipleBind, len(x.Params))
		for i, p := range x.Params {
			binds[i] = ast.TBind(p.Type, p.Pattern)
		}
		g.push(Hypothesis{Kind: Forall, Binds: binds})
		g.expr(x.Body)
		g.pop(1)
	case *ast.FuncInstExpr:
		g.expr(x.Fn)
	case *ast.NewExpr:
		g.exprs(x.Args)
		g.newExpr(x)
	}
}

// multiBind widens a single bind
func multiBind(b ast.Bind) ast.MultipleBind {
	switch b := b.(type) {
	case *ast.SetBind:
		return &ast.MultiSetBind{Patterns: []ast.Pattern{b.Pattern}, Set: b.Set, Line: b.Line, Column: b.Column}
	case *ast.SeqBind:
		return &ast.MultiSeqBind{Patterns: []ast.Pattern{b.Pattern}, Seq: b.Seq, Line: b.Line, Column: b.Column}
	case *ast.TypeBind:
		return &ast.MultiTypeBind{Patterns: []ast.Pattern{b.Pattern}, Type: b.Type, Line: b.Line, Column: b.Column}
	}
	return nil
}

func (g *Generator) unary(x *ast.UnaryExpr) {
	operand := x.Operand
	switch x.Op {
	case ast.MINUS, ast.PLUS, ast.ABS, ast.FLOOR:
		g.qualify(operand, types.QNumeric)
	case ast.NOT:
		g.qualify(operand, types.QBool)
	case ast.CARD, ast.POWER, ast.DUNION, ast.DINTER:
		g.qualify(operand, types.QSet)
	case ast.HD, ast.TL:
		g.qualify(operand, types.QSeq)
		t := g.typeOf(operand)
		if !types.IsUnknown(t) && !types.IsNonEmptySeq(t) {
			g.emit(NonEmptySeq, x, ast.Bin(operand, ast.NEQ, &ast.SeqEnumExpr{}))
		}
	case ast.LEN, ast.ELEMS, ast.INDS, ast.REVERSE, ast.CONC:
		g.qualify(operand, types.QSeq)
	case ast.DOM, ast.RNG:
		g.qualify(operand, types.QMap)
	case ast.MERGE:
		g.qualify(operand, types.QSet)
		g.emit(MapSetCompatible, x, compatibleMaps(operand))
	case ast.INVERSE:
		g.qualify(operand, types.QMap)
		if !injective(g.typeOf(operand)) {
			dom, rng, _ := types.MapOf(g.typeOf(operand))
			g.emit(MapInjectivity, x, ast.Is(operand, &ast.MapTypeRef{Dom: typeRef(dom), Rng: typeRef(rng), Injective: true}))
		}
	}
}

// injective reports whether every map member of t is an inmap
func injective(t types.Type) bool {
	if types.IsUnknown(t) {
		return true
	}
	for _, m := range types.Members(t) {
		if mt, ok := types.Unfold(m).(*types.Map); ok && !mt.Injective {
			return false
		}
	}
	return true
}

func (g *Generator) binary(x *ast.BinaryExpr) {
	g.expr(x.Left)
	switch x.Op {
	case ast.AND, ast.IMPLIES:
		g.qualify(x.Left, types.QBool)
		g.guarded(Implies, x.Left, func() { g.expr(x.Right) })
		g.qualify(x.Right, types.QBool)
		return
	case ast.OR:
		g.qualify(x.Left, types.QBool)
		g.guarded(NotImplies, x.Left, func() { g.expr(x.Right) })
		g.qualify(x.Right, types.QBool)
		return
	}
	g.expr(x.Right)

	both := func(q types.Qualifier) {
		g.qualify(x.Left, q)
		g.qualify(x.Right, q)
	}
	switch x.Op {
	case ast.PLUS, ast.MINUS, ast.TIMES:
		both(types.QNumeric)
	case ast.DIVIDE, ast.DIV, ast.REM, ast.MOD:
		both(types.QNumeric)
		g.nonZero(x, x.Right)
	case ast.LT, ast.LEQ, ast.GT, ast.GEQ:
		g.ordered(x)
	case ast.EQUIV:
		both(types.QBool)
	case ast.INSET, ast.NOTINSET:
		g.qualify(x.Right, types.QSet)
	case ast.UNION, ast.INTER, ast.SETDIFF, ast.SUBSET, ast.PSUBSET:
		both(types.QSet)
	case ast.CONCAT:
		both(types.QSeq)
	case ast.MUNION:
		both(types.QMap)
		g.emit(MapCompatible, x, compatiblePair(x.Left, x.Right))
	case ast.PLUSPLUS:
		g.override(x)
	case ast.DOMRESTO, ast.DOMRESBY:
		g.qualify(x.Left, types.QSet)
		g.qualify(x.Right, types.QMap)
	case ast.RNGRESTO, ast.RNGRESBY:
		g.qualify(x.Left, types.QMap)
		g.qualify(x.Right, types.QSet)
	case ast.COMP:
		g.compose(x)
	case ast.STARSTAR:
		g.iterate(x)
	}
}

// ordered raises is_ for a comparison operand with members the other side
// cannot be ordered against. A numeric operand is held to the widest
// numeric type of the two sides.
func (g *Generator) ordered(x *ast.BinaryExpr) {
	l, r, lc, rc := types.NarrowOrdered(g.typeOf(x.Left), g.typeOf(x.Right))
	if lc == types.Partial {
		g.emit(Subtype, x.Left, isType(x.Left, orderedAs(l, r)))
	}
	if rc == types.Partial {
		g.emit(Subtype, x.Right, isType(x.Right, orderedAs(r, l)))
	}
}

func orderedAs(t, other types.Type) types.Type {
	if types.IsNumeric(t) {
		return types.WidestNumeric(t, other)
	}
	return t
}

// nonZero raises "d <> 0" for a divisor whose type admits zero
func (g *Generator) nonZero(at ast.Node, d ast.Expression) {
	t := g.typeOf(d)
	if types.IsUnknown(t) || types.ExcludesZero(t) {
		return
	}
	g.emit(NonZero, at, ast.Bin(d, ast.NEQ, ast.Int(0)))
}

// override handles ++, which is map override or sequence modification
func (g *Generator) override(x *ast.BinaryExpr) {
	lt := g.typeOf(x.Left)
	if _, isSeq := types.SeqOf(lt); isSeq && !types.IsUnknown(lt) {
		if _, _, isMap := types.MapOf(lt); !isMap {
			g.qualify(x.Left, types.QSeq)
			g.qualify(x.Right, types.QMap)
			cond := ast.Bin(ast.Un(ast.DOM, x.Right), ast.SUBSET, ast.Un(ast.INDS, x.Left))
			g.emit(SeqModification, x, cond)
			return
		}
	}
	g.qualify(x.Left, types.QMap)
	g.qualify(x.Right, types.QMap)
}

func (g *Generator) compose(x *ast.BinaryExpr) {
	lt, rt := g.typeOf(x.Left), g.typeOf(x.Right)
	if _, _, ok := types.MapOf(lt); ok && !types.IsUnknown(lt) {
		if _, _, ok := types.MapOf(rt); ok {
			g.emit(MapCompose, x, ast.Bin(ast.Un(ast.RNG, x.Right), ast.SUBSET, ast.Un(ast.DOM, x.Left)))
		}
		return
	}
	rf, ok := types.FunctionOf(rt)
	if !ok || len(rf.Params) != 1 {
		return
	}
	lpre := g.preOf(x.Left)
	if lpre == nil {
		return
	}
	arg := ast.Var("arg")
	cond := ast.Expression(ast.Call(lpre, ast.Call(x.Right, arg)))
	if rpre := g.preOf(x.Right); rpre != nil {
		cond = ast.Implies(ast.Call(rpre, arg), cond)
	}
	binds := []ast.MultipleBind{ast.TBind(typeRef(rf.Params[0]), ast.PId("arg"))}
	g.emit(FunctionCompose, x, ast.ForallExpr(binds, cond))
}

// preOf returns the precondition helper of the function x names, if any
func (g *Generator) preOf(x ast.Expression) ast.Expression {
	v, ok := x.(*ast.Variable)
	if !ok {
		return nil
	}
	d := g.resolve(g.res.Refs[v])
	if d == nil {
		return nil
	}
	pre := g.res.Graph.DerivedOf(d.Base().ID, defs.RolePre)
	if pre == nil {
		return nil
	}
	return g.nameOf(pre)
}

func (g *Generator) iterate(x *ast.BinaryExpr) {
	g.qualify(x.Right, types.QNumeric)
	lt := g.typeOf(x.Left)
	if types.IsUnknown(lt) {
		return
	}
	if _, _, ok := types.MapOf(lt); !ok {
		return
	}
	cond := ast.Or(
		ast.Bin(x.Right, ast.EQ, ast.Int(0)),
		ast.Bin(x.Right, ast.EQ, ast.Int(1)),
		ast.Bin(ast.Un(ast.RNG, x.Left), ast.SUBSET, ast.Un(ast.DOM, x.Left)),
	)
	g.emit(MapIteration, x, cond)
}

// compatiblePair states that two maps agree where their domains overlap
func compatiblePair(m1, m2 ast.Expression) ast.Expression {
	binds := []ast.MultipleBind{
		ast.SBind(ast.Un(ast.DOM, m1), ast.PId("d1")),
		ast.SBind(ast.Un(ast.DOM, m2), ast.PId("d2")),
	}
	return ast.ForallExpr(binds, ast.Implies(
		ast.Bin(ast.Var("d1"), ast.EQ, ast.Var("d2")),
		ast.Bin(ast.Call(m1, ast.Var("d1")), ast.EQ, ast.Call(m2, ast.Var("d2"))),
	))
}

// compatibleMaps states that every two maps of a collection are compatible
func compatibleMaps(maps ast.Expression) ast.Expression {
	binds := []ast.MultipleBind{ast.SBind(maps, ast.PIds("m1", "m2")...)}
	return ast.ForallExpr(binds, compatiblePair(ast.Var("m1"), ast.Var("m2")))
}

func (g *Generator) mapEnum(x *ast.MapEnumExpr) {
	if len(x.Maplets) < 2 {
		return
	}
	keys := map[string]bool{}
	distinct := true
	for _, m := range x.Maplets {
		k, ok := literalKey(m.Key)
		if !ok || keys[k] {
			distinct = false
			break
		}
		keys[k] = true
	}
	if distinct {
		return
	}
	singles := make([]ast.Expression, len(x.Maplets))
	for i, m := range x.Maplets {
		singles[i] = &ast.MapEnumExpr{Maplets: []*ast.Maplet{m}}
	}
	g.emit(MapSeqCompatible, x, compatibleMaps(&ast.SetEnumExpr{Elems: singles}))
}

func (g *Generator) apply(x *ast.ApplyExpr) {
	g.expr(x.Fn)
	g.exprs(x.Args)
	ft := g.typeOf(x.Fn)
	if types.IsUnknown(ft) {
		return
	}
	if f, ok := types.FunctionOf(ft); ok {
		g.qualify(x.Fn, types.QFunction)
		g.subtypes(x.Args, f.Params)
		g.functionApply(x)
		return
	}
	if op, ok := types.OperationOf(ft); ok {
		g.subtypes(x.Args, op.Params)
		root, lists := applyChain(x)
		if d := g.callee(root); d != nil && len(lists) == 1 {
			g.precondition(OperationCall, x, d, root, lists[0]...)
		}
		return
	}
	if len(x.Args) != 1 {
		return
	}
	arg := x.Args[0]
	if dom, _, ok := types.MapOf(ft); ok {
		g.qualify(x.Fn, types.QMap)
		g.subtype(arg, dom)
		g.emit(MapApply, x, ast.Bin(arg, ast.INSET, ast.Un(ast.DOM, x.Fn)))
		return
	}
	if _, ok := types.SeqOf(ft); ok {
		g.qualify(x.Fn, types.QSeq)
		g.emit(SeqApply, x, ast.Bin(arg, ast.INSET, ast.Un(ast.INDS, x.Fn)))
	}
}

// applyChain unwinds f(a)(b) into f and its argument lists, outermost first
func applyChain(x *ast.ApplyExpr) (ast.Expression, [][]ast.Expression) {
	var lists [][]ast.Expression
	var e ast.Expression = x
	for {
		a, ok := e.(*ast.ApplyExpr)
		if !ok {
			break
		}
		lists = append([][]ast.Expression{a.Args}, lists...)
		e = a.Fn
	}
	if fi, ok := e.(*ast.FuncInstExpr); ok {
		e = fi.Fn
	}
	return e, lists
}

// callee returns the function or operation definition a call root names
func (g *Generator) callee(root ast.Expression) defs.Definition {
	switch r := root.(type) {
	case *ast.Variable:
		return g.resolve(g.res.Refs[r])
	case *ast.FieldExpr:
		return g.resolve(g.res.Refs[r])
	}
	return nil
}

// depth returns how many argument lists make a full application of d
func depth(d defs.Definition) int {
	if f, ok := d.(*defs.ExplicitFunctionDefinition); ok {
		return len(f.Params)
	}
	return 1
}

func (g *Generator) functionApply(x *ast.ApplyExpr) {
	root, lists := applyChain(x)
	d := g.callee(root)
	if d == nil || !defs.IsFunction(d) || len(lists) != depth(d) {
		return
	}
	g.precondition(FunctionApply, x, d, root, flattenArgs(lists)...)
	g.recursion(x, d, lists)
}

func flattenArgs(lists [][]ast.Expression) []ast.Expression {
	var out []ast.Expression
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// precondition raises pre_f(args) when the callee has a precondition
func (g *Generator) precondition(kind Kind, at ast.Node, d defs.Definition, root ast.Expression, args ...ast.Expression) {
	pre := g.res.Graph.DerivedOf(d.Base().ID, defs.RolePre)
	if pre == nil {
		return
	}
	var fn ast.Expression = g.nameOf(pre)
	if f, ok := root.(*ast.FieldExpr); ok {
		fn = ast.Select(f.Object, pre.Base().Name)
	}
	g.emit(kind, at, ast.Call(fn, args...))
}

func (g *Generator) field(x *ast.FieldExpr) {
	t := g.typeOf(x.Object)
	if types.IsUnknown(t) {
		return
	}
	if _, ok := types.ClassOf(t); ok {
		return
	}
	var with []types.Type
	for _, r := range types.RecordOf(t) {
		if _, ok := r.Field(x.Field); ok {
			with = append(with, r)
		}
	}
	if len(with) > 0 && len(with) < len(types.Members(t)) {
		g.emit(Subtype, x, isType(x.Object, types.NewUnion(with...)))
	}
}

func (g *Generator) tupleSelect(x *ast.TupleSelectExpr) {
	t := g.typeOf(x.Tuple)
	if types.IsUnknown(t) {
		return
	}
	var with []types.Type
	members := types.Members(t)
	for _, m := range members {
		if p, ok := types.Unfold(m).(*types.Product); ok && x.Index <= len(p.Elems) {
			with = append(with, p)
		}
	}
	if len(with) > 0 && len(with) < len(members) {
		g.emit(TupleSelection, x, isType(x.Tuple, types.NewUnion(with...)))
	}
}

func (g *Generator) ifExpr(x *ast.IfExpr) {
	g.expr(x.Cond)
	g.qualify(x.Cond, types.QBool)
	g.guarded(Implies, x.Cond, func() { g.expr(x.Then) })
	g.push(Hypothesis{Kind: NotImplies, Expr: x.Cond})
	n := 1
	for _, ei := range x.ElseIfs {
		ei := ei
		g.expr(ei.Cond)
		g.qualify(ei.Cond, types.QBool)
		g.guarded(Implies, ei.Cond, func() { g.expr(ei.Then) })
		g.push(Hypothesis{Kind: NotImplies, Expr: ei.Cond})
		n++
	}
	g.expr(x.Else)
	g.pop(n)
}

// letDefs walks let definitions, leaving one frame per definition pushed
func (g *Generator) letDefs(vds []*ast.ValueDef) int {
	for _, vd := range vds {
		g.expr(vd.Value)
		g.valueBinding(vd)
		g.push(Hypothesis{Kind: LetDefinition, Pattern: vd.Pattern, Expr: vd.Value})
	}
	return len(vds)
}

// bindSources walks the set and sequence expressions of binds
func (g *Generator) bindSources(binds []ast.MultipleBind) {
	for _, b := range binds {
		switch b := b.(type) {
		case *ast.MultiSetBind:
			g.expr(b.Set)
			g.qualify(b.Set, types.QSet)
		case *ast.MultiSeqBind:
			g.expr(b.Seq)
			g.qualify(b.Seq, types.QSeq)
		}
	}
}

// finiteTypes raises a finiteness obligation for type binds over a type parameter
func (g *Generator) finiteTypes(binds []ast.MultipleBind) {
	for _, b := range binds {
		tb, ok := b.(*ast.MultiTypeBind)
		if !ok {
			continue
		}
		t := g.res.TypeRefs[tb.Type]
		if t == nil || !hasParameter(t) {
			continue
		}
		cond := ast.ExistsExpr(
			[]ast.MultipleBind{ast.TBind(ast.SetTy(tb.Type), ast.PId("s"))},
			ast.ForallExpr([]ast.MultipleBind{ast.TBind(tb.Type, ast.PId("x"))}, ast.Bin(ast.Var("x"), ast.INSET, ast.Var("s"))),
		)
		g.emit(FiniteType, tb, cond)
	}
}

// infinite reports whether some type bind ranges over an infinite type
func (g *Generator) infinite(binds []ast.MultipleBind) bool {
	for _, b := range binds {
		if tb, ok := b.(*ast.MultiTypeBind); ok {
			if t := g.res.TypeRefs[tb.Type]; t != nil && !types.IsFinite(t) {
				return true
			}
		}
	}
	return false
}

func (g *Generator) quantified(binds []ast.MultipleBind, pred ast.Expression) {
	g.bindSources(binds)
	g.finiteTypes(binds)
	g.push(Hypothesis{Kind: Forall, Binds: binds})
	g.expr(pred)
	g.pop(1)
}

func (g *Generator) letBeSt(at ast.Node, bind ast.MultipleBind, suchThat ast.Expression, body func()) {
	binds := []ast.MultipleBind{bind}
	g.bindSources(binds)
	g.finiteTypes(binds)
	if suchThat != nil {
		g.push(Hypothesis{Kind: Forall, Binds: binds})
		g.expr(suchThat)
		g.pop(1)
		g.emit(LetBeExists, at, ast.ExistsExpr(binds, suchThat))
		g.push(Hypothesis{Kind: ForallPredicate, Binds: binds, Expr: suchThat})
	} else {
		if _, typed := bind.(*ast.MultiTypeBind); !typed {
			g.emit(LetBeExists, at, ast.ExistsExpr(binds, ast.Bool(true)))
		}
		g.push(Hypothesis{Kind: Forall, Binds: binds})
	}
	body()
	g.pop(1)
}

// comprehension walks pred and then visit with the binds in force
func (g *Generator) comprehension(binds []ast.MultipleBind, pred ast.Expression, visit func()) {
	g.bindSources(binds)
	g.push(Hypothesis{Kind: Forall, Binds: binds})
	g.expr(pred)
	g.pop(1)
	if pred != nil {
		g.push(Hypothesis{Kind: ForallPredicate, Binds: binds, Expr: pred})
	} else {
		g.push(Hypothesis{Kind: Forall, Binds: binds})
	}
	visit()
	g.pop(1)
}

// enumerable states that the values a comprehension produces fit in a
// finite map indexed by nat
func enumerable(binds []ast.MultipleBind, pred, elem ast.Expression, elemType ast.TypeRef) ast.Expression {
	found := ast.ExistsExpr(
		[]ast.MultipleBind{ast.SBind(ast.Un(ast.DOM, ast.Var("finmap")), ast.PId("idx"))},
		ast.Bin(ast.Call(ast.Var("finmap"), ast.Var("idx")), ast.EQ, elem),
	)
	var body ast.Expression = found
	if pred != nil {
		body = ast.Implies(pred, found)
	}
	return ast.ExistsExpr(
		[]ast.MultipleBind{ast.TBind(ast.MapTy(ast.Ty("nat"), elemType), ast.PId("finmap"))},
		ast.ForallExpr(binds, body),
	)
}

func (g *Generator) setComp(x *ast.SetCompExpr) {
	if g.infinite(x.Binds) {
		elem, _ := types.SetOf(g.typeOf(x))
		g.emit(FiniteSet, x, enumerable(x.Binds, x.Pred, x.Elem, typeRef(elem)))
	}
	g.comprehension(x.Binds, x.Pred, func() { g.expr(x.Elem) })
}

func (g *Generator) seqComp(x *ast.SeqCompExpr) {
	binds := []ast.MultipleBind{multiBind(x.Bind)}
	g.comprehension(binds, x.Pred, func() { g.expr(x.Elem) })
}

func (g *Generator) mapComp(x *ast.MapCompExpr) {
	m := x.Maplet
	if g.infinite(x.Binds) {
		dom, rng, _ := types.MapOf(g.typeOf(x))
		elem := &ast.ProductTypeRef{Elems: []ast.TypeRef{typeRef(dom), typeRef(rng)}}
		g.emit(FiniteMap, x, enumerable(x.Binds, x.Pred, ast.Tuple(m.Key, m.Value), elem))
	}
	singles := &ast.SetCompExpr{
		Elem:  &ast.MapEnumExpr{Maplets: []*ast.Maplet{m}},
		Binds: x.Binds,
		Pred:  x.Pred,
	}
	g.emit(MapSetCompatible, x, compatibleMaps(singles))
	g.comprehension(x.Binds, x.Pred, func() {
		g.expr(m.Key)
		g.expr(m.Value)
	})
}

// recordType returns the record a constructor builds and the type definition it names
func (g *Generator) recordType(x *ast.RecordExpr) (*types.Record, *defs.TypeDefinition) {
	td, ok := g.resolve(g.res.Refs[x]).(*defs.TypeDefinition)
	if !ok {
		return nil, nil
	}
	r, ok := types.Unfold(td.Type).(*types.Record)
	if !ok {
		return nil, nil
	}
	return r, td
}

func (g *Generator) record(x *ast.RecordExpr) {
	r, td := g.recordType(x)
	if r == nil || len(r.Fields) != len(x.Args) {
		return
	}
	for i, f := range r.Fields {
		g.subtype(x.Args[i], f.Type)
	}
	if types.HasInvariant(td.Type) {
		if inv := g.res.Graph.DerivedOf(td.ID, defs.RoleInv); inv != nil {
			g.emit(TypeInvariant, x, ast.Call(g.nameOf(inv), x))
		}
	}
}

func (g *Generator) mu(x *ast.MuExpr) {
	recs := types.RecordOf(g.typeOf(x.Record))
	g.qualify(x.Record, types.QRecord)
	for _, m := range x.Mods {
		var fts []types.Type
		for _, r := range recs {
			if f, ok := r.Field(m.Tag); ok {
				fts = append(fts, f.Type)
			}
		}
		if len(fts) > 0 {
			g.subtype(m.Value, types.NewUnion(fts...))
		}
	}
	for _, r := range recs {
		if !r.HasInv {
			continue
		}
		name := "inv_" + r.Name
		var fn ast.Expression = ast.Var(name)
		if r.Module != "" && r.Module != g.module.Name {
			fn = ast.QVar(r.Module, name)
		}
		g.emit(TypeInvariant, x, ast.Call(fn, x))
	}
}

func (g *Generator) newExpr(x *ast.NewExpr) {
	d := g.resolve(g.res.Refs[x])
	if d == nil {
		return
	}
	if op, ok := d.Base().Type.(*types.Operation); ok {
		g.subtypes(x.Args, op.Params)
	}
	pre := g.res.Graph.DerivedOf(d.Base().ID, defs.RolePre)
	if pre != nil {
		g.emit(OperationCall, x, ast.Call(ast.QVar(x.Class, pre.Base().Name), x.Args...))
	}
}
