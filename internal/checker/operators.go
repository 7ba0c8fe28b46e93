package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// operand narrows t to the members with capability q. A type with no such
// member is an error; a partial match is left for a proof obligation.
func (c *Checker) operand(x ast.Expression, t types.Type, q types.Qualifier, op ast.Op) (types.Type, bool) {
	n, cov := types.Narrow(t, q)
	if cov == types.None {
		c.errorf(x, diagnostic.CodeQualifier, "'%s' expects a %s operand, got %s", op, q, t)
		return types.UnknownType, false
	}
	return n, true
}

func (c *Checker) checkUnary(x *ast.UnaryExpr, e *env.Env) types.Type {
	t := c.checkExpr(x.Operand, e)
	switch x.Op {
	case ast.PLUS:
		n, _ := c.operand(x.Operand, t, types.QNumeric, x.Op)
		return n
	case ast.MINUS:
		n, ok := c.operand(x.Operand, t, types.QNumeric, x.Op)
		if !ok {
			return n
		}
		if k, _ := types.NumericKind(n); k == types.Nat || k == types.Nat1 {
			return types.IntType
		}
		return n
	case ast.ABS:
		n, ok := c.operand(x.Operand, t, types.QNumeric, x.Op)
		if !ok {
			return n
		}
		switch k, _ := types.NumericKind(n); k {
		case types.Nat1:
			return types.Nat1Type
		case types.Nat, types.Int:
			return types.NatType
		default:
			return types.BasicOf(k)
		}
	case ast.FLOOR:
		n, ok := c.operand(x.Operand, t, types.QNumeric, x.Op)
		if !ok {
			return n
		}
		switch k, _ := types.NumericKind(n); k {
		case types.Nat1, types.Nat:
			return types.BasicOf(k)
		}
		return types.IntType
	case ast.NOT:
		c.operand(x.Operand, t, types.QBool, x.Op)
		return types.BoolType

	case ast.CARD:
		c.operand(x.Operand, t, types.QSet, x.Op)
		return types.NatType
	case ast.POWER:
		if _, ok := c.operand(x.Operand, t, types.QSet, x.Op); !ok {
			return types.UnknownType
		}
		elem, _ := types.SetOf(t)
		return &types.Set{Elem: &types.Set{Elem: elem}, NonEmpty: true}
	case ast.DUNION, ast.DINTER:
		if _, ok := c.operand(x.Operand, t, types.QSet, x.Op); !ok {
			return types.UnknownType
		}
		elem, _ := types.SetOf(t)
		inner, ok := types.SetOf(elem)
		if !ok {
			c.errorf(x.Operand, diagnostic.CodeQualifier, "'%s' expects a set of sets, got %s", x.Op, t)
			return types.UnknownType
		}
		return &types.Set{Elem: inner}

	case ast.HD:
		if _, ok := c.operand(x.Operand, t, types.QSeq, x.Op); !ok {
			return types.UnknownType
		}
		elem, _ := types.SeqOf(t)
		return elem
	case ast.TL, ast.REVERSE:
		if _, ok := c.operand(x.Operand, t, types.QSeq, x.Op); !ok {
			return types.UnknownType
		}
		elem, _ := types.SeqOf(t)
		if x.Op == ast.REVERSE {
			return &types.Seq{Elem: elem, NonEmpty: types.IsNonEmptySeq(t)}
		}
		return &types.Seq{Elem: elem}
	case ast.LEN:
		c.operand(x.Operand, t, types.QSeq, x.Op)
		return types.NatType
	case ast.ELEMS:
		if _, ok := c.operand(x.Operand, t, types.QSeq, x.Op); !ok {
			return types.UnknownType
		}
		elem, _ := types.SeqOf(t)
		return &types.Set{Elem: elem, NonEmpty: types.IsNonEmptySeq(t)}
	case ast.INDS:
		c.operand(x.Operand, t, types.QSeq, x.Op)
		return &types.Set{Elem: types.Nat1Type, NonEmpty: types.IsNonEmptySeq(t)}
	case ast.CONC:
		if _, ok := c.operand(x.Operand, t, types.QSeq, x.Op); !ok {
			return types.UnknownType
		}
		elem, _ := types.SeqOf(t)
		inner, ok := types.SeqOf(elem)
		if !ok {
			c.errorf(x.Operand, diagnostic.CodeQualifier, "'conc' expects a sequence of sequences, got %s", t)
			return types.UnknownType
		}
		return &types.Seq{Elem: inner}

	case ast.DOM, ast.RNG:
		if _, ok := c.operand(x.Operand, t, types.QMap, x.Op); !ok {
			return types.UnknownType
		}
		dom, rng, _ := types.MapOf(t)
		if x.Op == ast.DOM {
			return &types.Set{Elem: dom}
		}
		return &types.Set{Elem: rng}
	case ast.MERGE:
		if _, ok := c.operand(x.Operand, t, types.QSet, x.Op); !ok {
			return types.UnknownType
		}
		elem, _ := types.SetOf(t)
		dom, rng, ok := types.MapOf(elem)
		if !ok {
			c.errorf(x.Operand, diagnostic.CodeQualifier, "'merge' expects a set of maps, got %s", t)
			return types.UnknownType
		}
		return &types.Map{Dom: dom, Rng: rng}
	case ast.INVERSE:
		if _, ok := c.operand(x.Operand, t, types.QMap, x.Op); !ok {
			return types.UnknownType
		}
		dom, rng, _ := types.MapOf(t)
		return &types.Map{Dom: rng, Rng: dom, Injective: true}
	}
	c.internalf("unknown unary operator %s", x.Op)
	return types.UnknownType
}

func (c *Checker) checkBinary(x *ast.BinaryExpr, e *env.Env) types.Type {
	l := c.checkExpr(x.Left, e)
	r := c.checkExpr(x.Right, e)

	both := func(q types.Qualifier) (types.Type, types.Type, bool) {
		ln, lok := c.operand(x.Left, l, q, x.Op)
		rn, rok := c.operand(x.Right, r, q, x.Op)
		return ln, rn, lok && rok
	}

	switch x.Op {
	case ast.PLUS, ast.TIMES:
		ln, rn, ok := both(types.QNumeric)
		if !ok {
			return types.UnknownType
		}
		return types.WidestNumeric(ln, rn)
	case ast.MINUS:
		ln, rn, ok := both(types.QNumeric)
		if !ok {
			return types.UnknownType
		}
		w := types.WidestNumeric(ln, rn)
		if k, _ := types.NumericKind(w); k == types.Nat || k == types.Nat1 {
			return types.IntType
		}
		return w
	case ast.DIVIDE:
		both(types.QNumeric)
		return types.RealType
	case ast.DIV, ast.REM, ast.MOD:
		ln, rn, ok := both(types.QNumeric)
		if !ok {
			return types.UnknownType
		}
		if natural(ln) && natural(rn) {
			return types.NatType
		}
		return types.IntType
	case ast.STARSTAR:
		return c.checkIterate(x, l, r)

	case ast.AND, ast.OR, ast.IMPLIES, ast.EQUIV:
		both(types.QBool)
		return types.BoolType

	case ast.EQ, ast.NEQ:
		if !types.Compatible(l, r) {
			c.errorf(x, diagnostic.CodeTypeMismatch, "'%s' compares unrelated types %s and %s", x.Op, l, r)
		}
		return types.BoolType
	case ast.LT, ast.LEQ, ast.GT, ast.GEQ:
		if ln, rn, ok := both(types.QOrdered); ok {
			if _, _, lc, _ := types.NarrowOrdered(ln, rn); lc == types.None {
				c.errorf(x, diagnostic.CodeTypeMismatch, "'%s' cannot order %s against %s", x.Op, l, r)
			}
		}
		return types.BoolType

	case ast.INSET, ast.NOTINSET:
		if _, ok := c.operand(x.Right, r, types.QSet, x.Op); ok {
			if elem, _ := types.SetOf(r); !types.Compatible(l, elem) {
				c.errorf(x.Left, diagnostic.CodeTypeMismatch, "%s can never be in a set of %s", l, elem)
			}
		}
		return types.BoolType
	case ast.UNION, ast.INTER, ast.SETDIFF:
		if _, _, ok := both(types.QSet); !ok {
			return types.UnknownType
		}
		le, _ := types.SetOf(l)
		re, _ := types.SetOf(r)
		if x.Op == ast.UNION {
			return &types.Set{Elem: types.NewUnion(le, re)}
		}
		if !types.Compatible(le, re) {
			c.errorf(x, diagnostic.CodeTypeMismatch, "'%s' of unrelated sets %s and %s", x.Op, l, r)
		}
		return &types.Set{Elem: le}
	case ast.SUBSET, ast.PSUBSET:
		both(types.QSet)
		return types.BoolType

	case ast.CONCAT:
		if _, _, ok := both(types.QSeq); !ok {
			return types.UnknownType
		}
		le, _ := types.SeqOf(l)
		re, _ := types.SeqOf(r)
		return &types.Seq{Elem: types.NewUnion(le, re), NonEmpty: types.IsNonEmptySeq(l) || types.IsNonEmptySeq(r)}

	case ast.MUNION:
		if _, _, ok := both(types.QMap); !ok {
			return types.UnknownType
		}
		return mapUnion(l, r)
	case ast.PLUSPLUS:
		if elem, ok := types.SeqOf(l); ok && !types.IsUnknown(l) {
			dom, rng, isMap := types.MapOf(r)
			if !isMap {
				c.errorf(x.Right, diagnostic.CodeQualifier, "sequence modification needs a map, got %s", r)
				return l
			}
			if _, cov := types.Narrow(dom, types.QNumeric); cov == types.None {
				c.errorf(x.Right, diagnostic.CodeQualifier, "sequence modification keys must be numeric, got %s", dom)
			}
			return &types.Seq{Elem: types.NewUnion(elem, rng), NonEmpty: types.IsNonEmptySeq(l)}
		}
		if _, _, ok := both(types.QMap); !ok {
			return types.UnknownType
		}
		return mapUnion(l, r)
	case ast.DOMRESTO, ast.DOMRESBY:
		c.operand(x.Left, l, types.QSet, x.Op)
		if _, ok := c.operand(x.Right, r, types.QMap, x.Op); !ok {
			return types.UnknownType
		}
		dom, rng, _ := types.MapOf(r)
		return &types.Map{Dom: dom, Rng: rng}
	case ast.RNGRESTO, ast.RNGRESBY:
		c.operand(x.Right, r, types.QSet, x.Op)
		if _, ok := c.operand(x.Left, l, types.QMap, x.Op); !ok {
			return types.UnknownType
		}
		dom, rng, _ := types.MapOf(l)
		return &types.Map{Dom: dom, Rng: rng}

	case ast.COMP:
		return c.checkCompose(x, l, r)
	}
	c.internalf("unknown binary operator %s", x.Op)
	return types.UnknownType
}

func natural(t types.Type) bool {
	k, ok := types.NumericKind(t)
	return ok && (k == types.Nat || k == types.Nat1)
}

func mapUnion(l, r types.Type) types.Type {
	ld, lr, _ := types.MapOf(l)
	rd, rr, _ := types.MapOf(r)
	return &types.Map{Dom: types.NewUnion(ld, rd), Rng: types.NewUnion(lr, rr)}
}

// checkIterate checks x ** n on numbers, maps and functions
func (c *Checker) checkIterate(x *ast.BinaryExpr, l, r types.Type) types.Type {
	if types.IsUnknown(l) {
		return types.UnknownType
	}
	if _, cov := types.Narrow(r, types.QNumeric); cov == types.None {
		c.errorf(x.Right, diagnostic.CodeQualifier, "'**' expects a numeric right operand, got %s", r)
	}
	switch {
	case types.IsNumeric(l):
		return types.RealType
	case types.Matches(l, types.QMap):
		dom, rng, _ := types.MapOf(l)
		return &types.Map{Dom: dom, Rng: rng}
	case types.Matches(l, types.QFunction):
		return l
	}
	c.errorf(x.Left, diagnostic.CodeQualifier, "'**' applies to numbers, maps and functions, not %s", l)
	return types.UnknownType
}

// checkCompose checks f comp g on maps and functions
func (c *Checker) checkCompose(x *ast.BinaryExpr, l, r types.Type) types.Type {
	if types.IsUnknown(l) || types.IsUnknown(r) {
		return types.UnknownType
	}
	if ld, lr, ok := types.MapOf(l); ok {
		rd, rr, rok := types.MapOf(r)
		if !rok {
			c.errorf(x.Right, diagnostic.CodeQualifier, "map composition needs two maps, got %s", r)
			return types.UnknownType
		}
		if !types.Compatible(rr, ld) {
			c.errorf(x, diagnostic.CodeTypeMismatch, "range %s of the right map does not match domain %s", rr, ld)
		}
		return &types.Map{Dom: rd, Rng: lr}
	}
	lf, lok := types.FunctionOf(l)
	rf, rok := types.FunctionOf(r)
	if !lok || !rok {
		c.errorf(x, diagnostic.CodeQualifier, "'comp' applies to two maps or two functions, not %s and %s", l, r)
		return types.UnknownType
	}
	if len(lf.Params) != 1 {
		c.errorf(x.Left, diagnostic.CodeArity, "the left function of 'comp' must take one parameter")
	} else if !types.Compatible(rf.Result, lf.Params[0]) {
		c.errorf(x, diagnostic.CodeTypeMismatch, "result %s of the right function does not match parameter %s", rf.Result, lf.Params[0])
	}
	return &types.Function{Params: rf.Params, Result: lf.Result, Total: lf.Total && rf.Total}
}
