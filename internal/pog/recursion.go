package pog

import (
	"fmt"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/types"
)

// recursion raises a termination obligation for a call from the current
// function into its own recursive group: the callee's measure at the call's
// arguments must be below the caller's measure at its parameters. Every
// call site is checked; emit drops a site whose obligation text repeats an
// earlier one.
func (g *Generator) recursion(at ast.Node, callee defs.Definition, args [][]ast.Expression) {
	cur, ok := g.def.(*defs.ExplicitFunctionDefinition)
	if !ok || len(g.group) == 0 {
		return
	}
	if !inGroup(g.group, callee.Base().ID) {
		return
	}

	params := flatten(cur.Params)
	here := make([]ast.Expression, len(params))
	for i, p := range params {
		here[i] = patternExpr(p)
	}
	left, width, lok := g.measureCall(callee, flattenArgs(args))
	right, _, rok := g.measureCall(cur, here)

	o := g.emit(RecursiveFunction, at, lexLess(left, right, width))
	if o != nil && !(lok && rok) {
		o.Unchecked = true
	}
}

func inGroup(group []defs.ID, id defs.ID) bool {
	for _, m := range group {
		if m == id {
			return true
		}
	}
	return false
}

// measureCall applies d's measure to args and returns the call, the number
// of components of the measure's result, and whether d has a measure at all
func (g *Generator) measureCall(d defs.Definition, args []ast.Expression) (ast.Expression, int, bool) {
	fallback := ast.Call(ast.Var(defs.RoleMeasure.Prefix()+d.Base().Name), args...)
	f, ok := d.(*defs.ExplicitFunctionDefinition)
	if !ok || f.Measure == nil {
		return fallback, 1, false
	}
	var m defs.Definition
	if f.MeasureName != "" {
		m = g.resolve(g.res.Refs[f.Measure])
	} else {
		m = g.res.Graph.DerivedOf(f.ID, defs.RoleMeasure)
	}
	if m == nil {
		return fallback, 1, false
	}
	fn, ok := m.Base().Type.(*types.Function)
	if !ok {
		return fallback, 1, false
	}
	var call ast.Expression = g.nameOf(m)
	rest := args
	var result types.Type = fn
	for {
		ft, ok := result.(*types.Function)
		if !ok {
			break
		}
		n := len(ft.Params)
		if n > len(rest) {
			n = len(rest)
		}
		call = ast.Call(call, rest[:n]...)
		rest = rest[n:]
		result = ft.Result
		if len(rest) == 0 {
			break
		}
	}
	width := 1
	if p, ok := types.Unfold(result).(*types.Product); ok {
		width = len(p.Elems)
	}
	return call, width, true
}

// lexLess states a < b, comparing tuples of width n lexicographically
func lexLess(a, b ast.Expression, n int) ast.Expression {
	if n <= 1 {
		return ast.Bin(a, ast.LT, b)
	}
	ms := make([]string, n)
	ns := make([]string, n)
	for i := range ms {
		ms[i] = fmt.Sprintf("m%d", i+1)
		ns[i] = fmt.Sprintf("n%d", i+1)
	}
	var alts []ast.Expression
	for i := 0; i < n; i++ {
		var conj []ast.Expression
		for j := 0; j < i; j++ {
			conj = append(conj, ast.Bin(ast.Var(ms[j]), ast.EQ, ast.Var(ns[j])))
		}
		conj = append(conj, ast.Bin(ast.Var(ms[i]), ast.LT, ast.Var(ns[i])))
		alts = append(alts, ast.And(conj...))
	}
	return &ast.LetExpr{
		Defs: []*ast.ValueDef{
			{Pattern: &ast.TuplePattern{Elems: ast.PIds(ms...)}, Value: a},
			{Pattern: &ast.TuplePattern{Elems: ast.PIds(ns...)}, Value: b},
		},
		Body: ast.Or(alts...),
	}
}
