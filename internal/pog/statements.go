package pog

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/types"
)

func (g *Generator) stmts(ss []ast.Statement) {
	for _, s := range ss {
		g.stmt(s)
	}
}

func (g *Generator) stmt(s ast.Statement) {
	switch s := s.(type) {
	case nil:
	case *ast.AssignStmt:
		g.assign(s)
		g.stateInvariant(s, s)
	case *ast.AtomicStmt:
		for _, a := range s.Assigns {
			g.assign(a)
		}
		for _, a := range s.Assigns {
			if g.assignsState(a) {
				g.stateInvariant(s, a)
				break
			}
		}
	case *ast.BlockStmt:
		for _, dcl := range s.Dcls {
			if dcl.Init == nil {
				continue
			}
			g.expr(dcl.Init)
			g.subtype(dcl.Init, g.res.TypeRefs[dcl.Type])
		}
		g.stmts(s.Stmts)
	case *ast.CallStmt:
		g.exprs(s.Args)
		g.call(s, nil, s.Args)
	case *ast.ObjectCallStmt:
		g.expr(s.Object)
		g.exprs(s.Args)
		g.call(s, s.Object, s.Args)
	case *ast.ReturnStmt:
		if s.Value != nil {
			g.expr(s.Value)
			g.subtype(s.Value, g.result)
		}
	case *ast.IfStmt:
		g.ifStmt(s)
	case *ast.CasesStmt:
		arms := make([]caseArm, len(s.Alts))
		for i, alt := range s.Alts {
			body := alt.Body
			arms[i] = caseArm{patterns: alt.Patterns, visit: func() { g.stmt(body) }}
		}
		var others func()
		if s.Others != nil {
			others = func() { g.stmt(s.Others) }
		}
		g.cases(s, s.Subject, arms, others)
	case *ast.LetStmt:
		n := g.letDefs(s.Defs)
		g.stmt(s.Body)
		g.pop(n)
	case *ast.LetBeStStmt:
		g.letBeSt(s, s.Bind, s.SuchThat, func() { g.stmt(s.Body) })
	case *ast.WhileStmt:
		g.expr(s.Cond)
		g.qualify(s.Cond, types.QBool)
		g.guarded(Implies, s.Cond, func() { g.stmt(s.Body) })
	case *ast.ForIndexStmt:
		g.expr(s.From)
		g.expr(s.To)
		g.qualify(s.From, types.QNumeric)
		g.qualify(s.To, types.QNumeric)
		if s.By != nil {
			g.expr(s.By)
			g.nonZero(s.By, s.By)
		}
		rng := &ast.SetRangeExpr{Low: s.From, High: s.To}
		g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.SBind(rng, ast.PId(s.Var))}})
		g.stmt(s.Body)
		g.pop(1)
	case *ast.ForSetStmt:
		g.expr(s.Set)
		g.qualify(s.Set, types.QSet)
		g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.SBind(s.Set, s.Pattern)}})
		g.stmt(s.Body)
		g.pop(1)
	case *ast.ForSeqStmt:
		g.expr(s.Seq)
		g.qualify(s.Seq, types.QSeq)
		bind := &ast.MultiSeqBind{Patterns: []ast.Pattern{s.Pattern}, Seq: s.Seq}
		g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{bind}})
		g.stmt(s.Body)
		g.pop(1)
	case *ast.ExitStmt:
		g.expr(s.Value)
	}
}

func (g *Generator) ifStmt(s *ast.IfStmt) {
	g.expr(s.Cond)
	g.qualify(s.Cond, types.QBool)
	g.guarded(Implies, s.Cond, func() { g.stmt(s.Then) })
	g.push(Hypothesis{Kind: NotImplies, Expr: s.Cond})
	n := 1
	for _, ei := range s.ElseIfs {
		ei := ei
		g.expr(ei.Cond)
		g.qualify(ei.Cond, types.QBool)
		g.guarded(Implies, ei.Cond, func() { g.stmt(ei.Then) })
		g.push(Hypothesis{Kind: NotImplies, Expr: ei.Cond})
		n++
	}
	g.stmt(s.Else)
	g.pop(n)
}

// designatorExpr returns the value an assignment target denotes before the
// assignment
func designatorExpr(d ast.Designator) ast.Expression {
	switch d := d.(type) {
	case *ast.NameDesignator:
		return &ast.Variable{Name: d.Name, Line: d.Line, Column: d.Column}
	case *ast.FieldDesignator:
		return ast.Select(designatorExpr(d.Object), d.Field)
	case *ast.IndexDesignator:
		return ast.Call(designatorExpr(d.Object), d.Index)
	}
	return ast.Var("?")
}

func (g *Generator) assign(a *ast.AssignStmt) {
	g.designator(a.Target)
	g.expr(a.Value)
	if t, ok := g.res.Targets[a.Target]; ok {
		g.subtype(a.Value, t)
	}
}

// designator walks index expressions and raises a sequence update obligation
// for each indexed sequence
func (g *Generator) designator(d ast.Designator) {
	switch d := d.(type) {
	case *ast.FieldDesignator:
		g.designator(d.Object)
	case *ast.IndexDesignator:
		g.designator(d.Object)
		g.expr(d.Index)
		ot := g.res.Targets[d.Object]
		if types.IsUnknown(ot) {
			return
		}
		if _, _, isMap := types.MapOf(ot); isMap {
			return
		}
		if _, isSeq := types.SeqOf(ot); isSeq {
			g.emit(SeqApply, d, ast.Bin(d.Index, ast.INSET, ast.Un(ast.INDS, designatorExpr(d.Object))))
		}
	}
}

// assignsState reports whether a writes into the module state
func (g *Generator) assignsState(a *ast.AssignStmt) bool {
	root := g.res.Refs[a]
	if root == nil {
		return false
	}
	b := root.Base()
	return b.Scope.Has(defs.ScopeState) && b.Parent == g.module.State && g.module.State != defs.NoID
}

// stateInvariant raises inv_S(mk_S(...)) after an assignment into the state
func (g *Generator) stateInvariant(at ast.Node, a *ast.AssignStmt) {
	if g.stateInv == nil || !g.assignsState(a) {
		return
	}
	sd, ok := g.res.Graph.Get(g.module.State).(*defs.StateDefinition)
	if !ok || sd.Node == nil {
		return
	}
	fields := make([]ast.Expression, len(sd.Node.Fields))
	for i, f := range sd.Node.Fields {
		fields[i] = ast.Var(f.Tag)
	}
	state := &ast.RecordExpr{Type: sd.Name, Args: fields}
	g.emit(StateInvariant, at, ast.Call(ast.Var(g.stateInv.Base().Name), state))
}

// call handles an operation call statement
func (g *Generator) call(at ast.Node, object ast.Expression, args []ast.Expression) {
	d := g.resolve(g.res.Refs[at])
	if d == nil {
		return
	}
	switch t := d.Base().Type.(type) {
	case *types.Operation:
		g.subtypes(args, t.Params)
	case *types.Function:
		g.subtypes(args, t.Params)
	}
	pre := g.res.Graph.DerivedOf(d.Base().ID, defs.RolePre)
	if pre == nil {
		return
	}
	var fn ast.Expression = g.nameOf(pre)
	if object != nil {
		fn = ast.Select(object, pre.Base().Name)
	}
	kind := OperationCall
	if defs.IsFunction(d) {
		kind = FunctionApply
	}
	g.emit(kind, at, ast.Call(fn, args...))
}

// caseArm is one pattern list of a cases expression or statement and the
// visit of its result
type caseArm struct {
	patterns []ast.Pattern
	visit    func()
}

// cases walks each alternative once per pattern, assuming the pattern
// matched and that every earlier pattern did not
func (g *Generator) cases(at ast.Node, subject ast.Expression, arms []caseArm, others func()) {
	g.expr(subject)
	st := g.typeOf(subject)

	shadowed := false
	for _, arm := range arms {
		for _, p := range arm.patterns {
			if g.res.Shadowing[p] {
				shadowed = true
			}
		}
	}
	if shadowed {
		g.unchecked++
		defer func() { g.unchecked-- }()
	}

	if others == nil && !exhaustive(st, arms) {
		var alts []ast.Expression
		for _, arm := range arms {
			for _, p := range arm.patterns {
				alts = append(alts, matches(p, subject, st))
			}
		}
		if len(alts) > 0 {
			g.emit(CasesExhaustive, at, ast.Or(alts...))
		}
	}

	n := 0
	for _, arm := range arms {
		for _, p := range arm.patterns {
			if ep, ok := p.(*ast.ExprPattern); ok {
				g.expr(ep.Expr)
			}
			g.push(Hypothesis{Kind: CaseSelected, Pattern: p, Expr: subject})
			arm.visit()
			g.pop(1)
			g.push(Hypothesis{Kind: CaseExcluded, Pattern: p, Expr: subject, Subject: st})
			n++
		}
	}
	if others != nil {
		others()
	}
	g.pop(n)
}

// matches states that subject matches p
func matches(p ast.Pattern, subject ast.Expression, st types.Type) ast.Expression {
	if v, ok := patternValue(p); ok {
		return ast.Bin(v, ast.EQ, subject)
	}
	return ast.ExistsExpr(
		[]ast.MultipleBind{ast.TBind(typeRef(st), p)},
		ast.Bin(patternExpr(p), ast.EQ, subject),
	)
}

// exhaustive reports whether the patterns plainly cover every value of st:
// some pattern matches anything, or st is a finite enumeration whose every
// value appears as a literal pattern
func exhaustive(st types.Type, arms []caseArm) bool {
	covered := map[string]bool{}
	for _, arm := range arms {
		for _, p := range arm.patterns {
			if isCatchAll(p) {
				return true
			}
			var lit ast.Expression
			switch p := p.(type) {
			case *ast.LiteralPattern:
				lit = p.Lit
			case *ast.ExprPattern:
				lit = p.Expr
			}
			if k, ok := literalKey(lit); ok {
				covered[k] = true
			}
		}
	}
	values, ok := finiteValues(st)
	if !ok {
		return false
	}
	for _, v := range values {
		if !covered[v] {
			return false
		}
	}
	return true
}
