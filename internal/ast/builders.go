package ast

// Helper constructors for building trees without a parser. Nodes built here
// carry no position; the obligation generator uses them for conditions and
// tests use them for fixtures.

var basicTypeNames = map[string]bool{
	"bool": true, "nat1": true, "nat": true, "int": true,
	"rat": true, "real": true, "char": true, "token": true,
}

// IsBasicTypeName reports whether name spells a basic type
func IsBasicTypeName(name string) bool { return basicTypeNames[name] }

// Var returns a reference to name
func Var(name string) *Variable { return &Variable{Name: name} }

// QVar returns a module-qualified reference M`name
func QVar(module, name string) *Variable { return &Variable{Module: module, Name: name} }

// Int returns an integer literal
func Int(v int64) *IntLit { return &IntLit{Value: v} }

// Bool returns a boolean literal
func Bool(v bool) *BoolLit { return &BoolLit{Value: v} }

// Quote returns a quote literal <v>
func Quote(v string) *QuoteLit { return &QuoteLit{Value: v} }

// Bin returns l op r
func Bin(l Expression, op Op, r Expression) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: l, Right: r}
}

// Un returns op e
func Un(op Op, e Expression) *UnaryExpr { return &UnaryExpr{Op: op, Operand: e} }

// Not returns not e
func Not(e Expression) *UnaryExpr { return Un(NOT, e) }

// And folds es with "and"; it returns true for an empty list
func And(es ...Expression) Expression {
	if len(es) == 0 {
		return Bool(true)
	}
	out := es[0]
	for _, e := range es[1:] {
		out = Bin(out, AND, e)
	}
	return out
}

// Or folds es with "or"; it returns false for an empty list
func Or(es ...Expression) Expression {
	if len(es) == 0 {
		return Bool(false)
	}
	out := es[0]
	for _, e := range es[1:] {
		out = Bin(out, OR, e)
	}
	return out
}

// Implies returns a => b
func Implies(a, b Expression) *BinaryExpr { return Bin(a, IMPLIES, b) }

// Call returns fn(args)
func Call(fn Expression, args ...Expression) *ApplyExpr {
	return &ApplyExpr{Fn: fn, Args: args}
}

// Select returns e.f
func Select(e Expression, f string) *FieldExpr { return &FieldExpr{Object: e, Field: f} }

// Tuple returns mk_(es)
func Tuple(es ...Expression) *TupleExpr { return &TupleExpr{Elems: es} }

// Is returns is_(e, t)
func Is(e Expression, t TypeRef) *IsExpr { return &IsExpr{Type: t, Arg: e} }

// ForallExpr returns forall binds & pred
func ForallExpr(binds []MultipleBind, pred Expression) *QuantifiedExpr {
	return &QuantifiedExpr{Quantifier: Forall, Binds: binds, Pred: pred}
}

// ExistsExpr returns exists binds & pred
func ExistsExpr(binds []MultipleBind, pred Expression) *QuantifiedExpr {
	return &QuantifiedExpr{Quantifier: Exists, Binds: binds, Pred: pred}
}

// PId returns an identifier pattern
func PId(name string) *IdentifierPattern { return &IdentifierPattern{Name: name} }

// PIds returns one identifier pattern per name
func PIds(names ...string) []Pattern {
	out := make([]Pattern, len(names))
	for i, n := range names {
		out[i] = PId(n)
	}
	return out
}

// TBind returns p1, p2 : t
func TBind(t TypeRef, ps ...Pattern) *MultiTypeBind {
	return &MultiTypeBind{Patterns: ps, Type: t}
}

// SBind returns p1, p2 in set s
func SBind(s Expression, ps ...Pattern) *MultiSetBind {
	return &MultiSetBind{Patterns: ps, Set: s}
}

// Ty returns a basic type reference for basic names and a named one otherwise
func Ty(name string) TypeRef {
	if basicTypeNames[name] {
		return &BasicTypeRef{Name: name}
	}
	return &NamedTypeRef{Name: name}
}

// SetTy returns set of elem
func SetTy(elem TypeRef) *SetTypeRef { return &SetTypeRef{Elem: elem} }

// SeqTy returns seq of elem
func SeqTy(elem TypeRef) *SeqTypeRef { return &SeqTypeRef{Elem: elem} }

// MapTy returns map dom to rng
func MapTy(dom, rng TypeRef) *MapTypeRef { return &MapTypeRef{Dom: dom, Rng: rng} }

// UnionTy returns t1 | t2 | ...
func UnionTy(ts ...TypeRef) *UnionTypeRef { return &UnionTypeRef{Members: ts} }

// FnTy returns params -> result, a partial function type
func FnTy(result TypeRef, params ...TypeRef) *FunctionTypeRef {
	return &FunctionTypeRef{Params: params, Result: result}
}

// TotalFnTy returns params +> result
func TotalFnTy(result TypeRef, params ...TypeRef) *FunctionTypeRef {
	return &FunctionTypeRef{Params: params, Result: result, Total: true}
}
