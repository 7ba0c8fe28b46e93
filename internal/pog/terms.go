package pog

import (
	"fmt"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/types"
)

// Helpers that turn checked pieces back into expressions for conditions.

// patternExpr returns the value a pattern denotes, with its identifiers as
// variables. An ignore pattern becomes a fresh name.
func patternExpr(p ast.Pattern) ast.Expression {
	n := 0
	return patternTerm(p, &n)
}

func patternTerm(p ast.Pattern, fresh *int) ast.Expression {
	switch p := p.(type) {
	case *ast.IdentifierPattern:
		return ast.Var(p.Name)
	case *ast.IgnorePattern:
		*fresh++
		return ast.Var(fmt.Sprintf("any%d", *fresh))
	case *ast.LiteralPattern:
		return p.Lit
	case *ast.ExprPattern:
		return p.Expr
	case *ast.TuplePattern:
		return ast.Tuple(patternTerms(p.Elems, fresh)...)
	case *ast.RecordPattern:
		return &ast.RecordExpr{Type: p.Type, Args: patternTerms(p.Fields, fresh)}
	case *ast.SetEnumPattern:
		return &ast.SetEnumExpr{Elems: patternTerms(p.Elems, fresh)}
	case *ast.SeqEnumPattern:
		return &ast.SeqEnumExpr{Elems: patternTerms(p.Elems, fresh)}
	case *ast.UnionPattern:
		return ast.Bin(patternTerm(p.Left, fresh), ast.UNION, patternTerm(p.Right, fresh))
	case *ast.ConcatPattern:
		return ast.Bin(patternTerm(p.Left, fresh), ast.CONCAT, patternTerm(p.Right, fresh))
	}
	return ast.Var("?")
}

func patternTerms(ps []ast.Pattern, fresh *int) []ast.Expression {
	out := make([]ast.Expression, len(ps))
	for i, p := range ps {
		out[i] = patternTerm(p, fresh)
	}
	return out
}

// patternValue returns the value of a pattern that binds nothing and
// contains no ignore pattern, so it can be compared with =
func patternValue(p ast.Pattern) (ast.Expression, bool) {
	if p == nil || len(ast.PatternNames(p)) > 0 || hasIgnore(p) {
		return nil, false
	}
	return patternExpr(p), true
}

func hasIgnore(p ast.Pattern) bool {
	switch p := p.(type) {
	case *ast.IgnorePattern:
		return true
	case *ast.TuplePattern:
		return anyIgnore(p.Elems)
	case *ast.RecordPattern:
		return anyIgnore(p.Fields)
	case *ast.SetEnumPattern:
		return anyIgnore(p.Elems)
	case *ast.SeqEnumPattern:
		return anyIgnore(p.Elems)
	case *ast.UnionPattern:
		return hasIgnore(p.Left) || hasIgnore(p.Right)
	case *ast.ConcatPattern:
		return hasIgnore(p.Left) || hasIgnore(p.Right)
	}
	return false
}

func anyIgnore(ps []ast.Pattern) bool {
	for _, p := range ps {
		if hasIgnore(p) {
			return true
		}
	}
	return false
}

// isCatchAll reports whether p matches every value
func isCatchAll(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.IdentifierPattern, *ast.IgnorePattern:
		return true
	}
	return false
}

// typeRef renders a resolved type back as a type annotation
func typeRef(t types.Type) ast.TypeRef {
	switch t := t.(type) {
	case *types.Basic:
		return &ast.BasicTypeRef{Name: t.Kind.String()}
	case *types.Quote:
		return &ast.QuoteTypeRef{Value: t.Value}
	case *types.Set:
		return &ast.SetTypeRef{Elem: typeRef(t.Elem), NonEmpty: t.NonEmpty}
	case *types.Seq:
		return &ast.SeqTypeRef{Elem: typeRef(t.Elem), NonEmpty: t.NonEmpty}
	case *types.Map:
		return &ast.MapTypeRef{Dom: typeRef(t.Dom), Rng: typeRef(t.Rng), Injective: t.Injective}
	case *types.Product:
		return &ast.ProductTypeRef{Elems: typeRefs(t.Elems)}
	case *types.Union:
		return &ast.UnionTypeRef{Members: typeRefs(t.Members)}
	case *types.Optional:
		return &ast.OptionalTypeRef{Elem: typeRef(t.Elem)}
	case *types.Record:
		return &ast.NamedTypeRef{Name: t.Name}
	case *types.Named:
		return &ast.NamedTypeRef{Name: t.Name}
	case *types.Class:
		return &ast.NamedTypeRef{Name: t.Name}
	case *types.Function:
		return &ast.FunctionTypeRef{Params: typeRefs(t.Params), Result: typeRef(t.Result), Total: t.Total}
	case *types.Operation:
		var result ast.TypeRef
		if _, void := t.Result.(*types.Void); !void {
			result = typeRef(t.Result)
		}
		return &ast.OperationTypeRef{Params: typeRefs(t.Params), Result: result}
	case *types.Parameter:
		return &ast.ParamTypeRef{Name: t.Name}
	case *types.Nil:
		return &ast.NamedTypeRef{Name: "nil"}
	}
	return &ast.NamedTypeRef{Name: "?"}
}

func typeRefs(ts []types.Type) []ast.TypeRef {
	out := make([]ast.TypeRef, len(ts))
	for i, t := range ts {
		out[i] = typeRef(t)
	}
	return out
}

// isType returns is_(x, t)
func isType(x ast.Expression, t types.Type) ast.Expression {
	return ast.Is(x, typeRef(t))
}

// hasParameter reports whether t mentions a type parameter
func hasParameter(t types.Type) bool {
	switch t := t.(type) {
	case *types.Parameter:
		return true
	case *types.Set:
		return hasParameter(t.Elem)
	case *types.Seq:
		return hasParameter(t.Elem)
	case *types.Map:
		return hasParameter(t.Dom) || hasParameter(t.Rng)
	case *types.Optional:
		return hasParameter(t.Elem)
	case *types.Product:
		for _, e := range t.Elems {
			if hasParameter(e) {
				return true
			}
		}
	case *types.Union:
		for _, m := range t.Members {
			if hasParameter(m) {
				return true
			}
		}
	}
	return false
}

// literalKey returns a printable key for literal expressions, used to tell
// whether map enumeration keys are distinct
func literalKey(x ast.Expression) (string, bool) {
	switch x.(type) {
	case *ast.BoolLit, *ast.IntLit, *ast.RealLit, *ast.CharLit, *ast.QuoteLit, *ast.TextLit, *ast.NilLit:
		return ast.Print(x), true
	}
	return "", false
}

// finiteValues returns every value of t when t is a finite union of quotes,
// booleans and nil
func finiteValues(t types.Type) ([]string, bool) {
	var out []string
	for _, m := range types.Members(t) {
		switch m := types.Unfold(m).(type) {
		case *types.Quote:
			out = append(out, "<"+m.Value+">")
		case *types.Nil:
			out = append(out, "nil")
		case *types.Basic:
			if m.Kind != types.Bool {
				return nil, false
			}
			out = append(out, "true", "false")
		default:
			return nil, false
		}
	}
	return out, len(out) > 0
}
