package pog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/checker"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/types"
)

func module(name string, ds ...ast.Definition) *ast.Module {
	return &ast.Module{Name: name, File: name + ".vdmsl", Defs: ds}
}

func fn(name string, params []ast.TypeRef, result ast.TypeRef, ps []ast.Pattern, body ast.Expression) *ast.ExplicitFunctionDef {
	return &ast.ExplicitFunctionDef{
		Name:   name,
		Type:   ast.FnTy(result, params...),
		Params: [][]ast.Pattern{ps},
		Body:   body,
		Access: ast.Access{Visibility: ast.Public},
	}
}

func nat() ast.TypeRef { return ast.Ty("nat") }

func generate(t *testing.T, cfg config.Settings, mods ...*ast.Module) *List {
	t.Helper()
	r, err := checker.Check(&ast.Specification{Modules: mods}, cfg)
	if err != nil {
		t.Fatalf("internal checker error: %v", err)
	}
	if r.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", r.Diagnostics.Format(""))
	}
	list, err := Generate(r, cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return list
}

func expectCount(t *testing.T, list *List, k Kind, want int) []*Obligation {
	t.Helper()
	got := list.OfKind(k)
	if len(got) != want {
		t.Fatalf("got %d %s obligations, want %d:\n%s", len(got), k, want, list)
	}
	return got
}

// countdown is f(n) == if n = 0 then 0 else f(n - 1)
func countdown(measure ast.Expression) *ast.ExplicitFunctionDef {
	f := fn("countdown", []ast.TypeRef{nat()}, nat(), ast.PIds("n"), &ast.IfExpr{
		Cond: ast.Bin(ast.Var("n"), ast.EQ, ast.Int(0)),
		Then: ast.Int(0),
		Else: ast.Call(ast.Var("countdown"), ast.Bin(ast.Var("n"), ast.MINUS, ast.Int(1))),
	})
	f.Measure = measure
	return f
}

func TestDivisionByZero(t *testing.T) {
	tests := []struct {
		name    string
		divisor string
		want    int
	}{
		{"nat1 divisor", "nat1", 0},
		{"int divisor", "int", 1},
		{"nat divisor", "nat", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := ast.Bin(ast.Int(10), ast.DIV, ast.Var("x"))
			f := fn("f", []ast.TypeRef{ast.Ty(tt.divisor)}, ast.Ty("int"), ast.PIds("x"), body)
			list := generate(t, config.Default(), module("M", f))
			got := expectCount(t, list, NonZero, tt.want)
			if tt.want == 1 && ast.Print(got[0].Condition) != "x <> 0" {
				t.Errorf("condition = %q, want x <> 0", ast.Print(got[0].Condition))
			}
		})
	}
}

func TestNonZeroOnDifference(t *testing.T) {
	body := ast.Bin(ast.Var("x"), ast.DIV, ast.Bin(ast.Var("x"), ast.MINUS, ast.Var("x")))
	f := fn("f", []ast.TypeRef{nat()}, ast.Ty("int"), ast.PIds("x"), body)
	list := generate(t, config.Default(), module("M", f))

	got := expectCount(t, list, NonZero, 1)
	if got[0].Definition != "M`f" {
		t.Errorf("definition = %q, want M`f", got[0].Definition)
	}
	if got[0].Source != body {
		t.Errorf("obligation should be raised by the division")
	}
	if !strings.HasPrefix(got[0].Text, "forall x") {
		t.Errorf("text should start with the parameter binding:\n%s", got[0].Text)
	}
	if got[0].Number != 1 {
		t.Errorf("number = %d, want 1", got[0].Number)
	}
}

func TestImplicitFunctionWithBody(t *testing.T) {
	g := &ast.ImplicitFunctionDef{
		Name:   "g",
		Params: []*ast.PatternTypePair{{Pattern: ast.PId("x"), Type: nat()}},
		Result: []*ast.NameTypePair{{Name: "r", Type: nat()}},
		Body:   ast.Bin(ast.Var("x"), ast.PLUS, ast.Int(1)),
		Post:   ast.Bin(ast.Var("r"), ast.GT, ast.Var("x")),
	}
	list := generate(t, config.Default(), module("M", g))
	if list.Len() != 0 {
		t.Fatalf("expected no obligations, got:\n%s", list)
	}
}

func TestImplicitFunctionSatisfiability(t *testing.T) {
	g := &ast.ImplicitFunctionDef{
		Name:   "g",
		Params: []*ast.PatternTypePair{{Pattern: ast.PId("x"), Type: nat()}},
		Result: []*ast.NameTypePair{{Name: "r", Type: nat()}},
		Post:   ast.Bin(ast.Var("r"), ast.GT, ast.Var("x")),
	}
	list := generate(t, config.Default(), module("M", g))
	got := expectCount(t, list, FunctionSatisfiability, 1)
	if !strings.HasPrefix(ast.Print(got[0].Condition), "exists r") {
		t.Errorf("condition = %q", ast.Print(got[0].Condition))
	}
}

func TestUnionUsedAsSet(t *testing.T) {
	union := ast.UnionTy(ast.Ty("int"), ast.SetTy(ast.Ty("int")))
	f := fn("f", []ast.TypeRef{union}, nat(), ast.PIds("x"), ast.Un(ast.CARD, ast.Var("x")))
	list := generate(t, config.Default(), module("M", f))
	got := expectCount(t, list, Subtype, 1)
	if !strings.HasPrefix(ast.Print(got[0].Condition), "is_(x") {
		t.Errorf("condition = %q", ast.Print(got[0].Condition))
	}

	f = fn("f", []ast.TypeRef{ast.SetTy(ast.Ty("int"))}, nat(), ast.PIds("x"), ast.Un(ast.CARD, ast.Var("x")))
	list = generate(t, config.Default(), module("M", f))
	expectCount(t, list, Subtype, 0)
}

func TestIsGuardNarrows(t *testing.T) {
	union := ast.UnionTy(ast.Ty("int"), ast.SetTy(ast.Ty("int")))
	body := &ast.IfExpr{
		Cond: ast.Is(ast.Var("x"), ast.SetTy(ast.Ty("int"))),
		Then: ast.Un(ast.CARD, ast.Var("x")),
		Else: ast.Int(0),
	}
	f := fn("f", []ast.TypeRef{union}, nat(), ast.PIds("x"), body)
	list := generate(t, config.Default(), module("M", f))
	expectCount(t, list, Subtype, 0)
}

func tagModule(alts ...*ast.CaseAlt) *ast.Module {
	tag := &ast.TypeDef{
		Name: "Tag",
		Type: ast.UnionTy(&ast.QuoteTypeRef{Value: "A"}, &ast.QuoteTypeRef{Value: "B"}),
	}
	f := fn("f", []ast.TypeRef{ast.Ty("Tag")}, nat(), ast.PIds("t"), &ast.CasesExpr{
		Subject: ast.Var("t"),
		Alts:    alts,
	})
	return module("M", tag, f)
}

func quoteAlt(q string, result int64) *ast.CaseAlt {
	return &ast.CaseAlt{
		Patterns: []ast.Pattern{&ast.LiteralPattern{Lit: ast.Quote(q)}},
		Result:   ast.Int(result),
	}
}

func TestCasesExhaustive(t *testing.T) {
	list := generate(t, config.Default(), tagModule(quoteAlt("A", 1), quoteAlt("B", 2)))
	expectCount(t, list, CasesExhaustive, 0)

	list = generate(t, config.Default(), tagModule(quoteAlt("A", 1)))
	got := expectCount(t, list, CasesExhaustive, 1)
	if ast.Print(got[0].Condition) != "<A> = t" {
		t.Errorf("condition = %q, want <A> = t", ast.Print(got[0].Condition))
	}
}

func TestCaseContext(t *testing.T) {
	alt := &ast.CaseAlt{
		Patterns: []ast.Pattern{&ast.LiteralPattern{Lit: ast.Quote("B")}},
		Result:   ast.Bin(ast.Int(1), ast.DIV, ast.Var("n")),
	}
	tag := &ast.TypeDef{
		Name: "Tag",
		Type: ast.UnionTy(&ast.QuoteTypeRef{Value: "A"}, &ast.QuoteTypeRef{Value: "B"}),
	}
	f := &ast.ExplicitFunctionDef{
		Name:   "f",
		Type:   ast.FnTy(nat(), ast.Ty("Tag"), nat()),
		Params: [][]ast.Pattern{ast.PIds("t", "n")},
		Body: &ast.CasesExpr{
			Subject: ast.Var("t"),
			Alts:    []*ast.CaseAlt{quoteAlt("A", 0), alt},
		},
	}
	list := generate(t, config.Default(), module("M", tag, f))
	got := expectCount(t, list, NonZero, 1)
	text := got[0].Text
	if !strings.Contains(text, "not <A> = t =>") || !strings.Contains(text, "<B> = t =>") {
		t.Errorf("division should be under both case hypotheses:\n%s", text)
	}
}

func TestRecursionWithMeasure(t *testing.T) {
	list := generate(t, config.Default(), module("M", countdown(ast.Var("n"))))
	got := expectCount(t, list, RecursiveFunction, 1)
	if got[0].Unchecked {
		t.Errorf("a measured recursion should be checked")
	}
	want := "measure_countdown(n - 1) < measure_countdown(n)"
	if s := ast.Print(got[0].Condition); s != want {
		t.Errorf("condition = %q, want %q", s, want)
	}
	if !strings.Contains(got[0].Text, "not n = 0 =>") {
		t.Errorf("recursive call should be under the else branch:\n%s", got[0].Text)
	}
}

func TestRecursionWithoutMeasure(t *testing.T) {
	list := generate(t, config.Default(), module("M", countdown(nil)))
	got := expectCount(t, list, RecursiveFunction, 1)
	if !got[0].Unchecked {
		t.Errorf("recursion without a measure should be unchecked")
	}

	cfg := config.Default()
	cfg.Obligations.IncludeUnchecked = false
	list = generate(t, cfg, module("M", countdown(nil)))
	expectCount(t, list, RecursiveFunction, 0)
}

func TestMapApply(t *testing.T) {
	m := ast.MapTy(nat(), nat())
	f := fn("f", []ast.TypeRef{m, nat()}, nat(), ast.PIds("m", "k"), ast.Call(ast.Var("m"), ast.Var("k")))
	list := generate(t, config.Default(), module("M", f))
	got := expectCount(t, list, MapApply, 1)
	if s := ast.Print(got[0].Condition); s != "k in set dom m" {
		t.Errorf("condition = %q", s)
	}
}

func TestHeadOfSequence(t *testing.T) {
	f := fn("f", []ast.TypeRef{ast.SeqTy(nat())}, nat(), ast.PIds("s"), ast.Un(ast.HD, ast.Var("s")))
	list := generate(t, config.Default(), module("M", f))
	expectCount(t, list, NonEmptySeq, 1)

	seq1 := &ast.SeqTypeRef{Elem: nat(), NonEmpty: true}
	f = fn("f", []ast.TypeRef{seq1}, nat(), ast.PIds("s"), ast.Un(ast.HD, ast.Var("s")))
	list = generate(t, config.Default(), module("M", f))
	expectCount(t, list, NonEmptySeq, 0)
}

func TestFunctionPrecondition(t *testing.T) {
	half := fn("half", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), ast.Bin(ast.Var("x"), ast.DIV, ast.Int(2)))
	half.Pre = ast.Bin(ast.Var("x"), ast.GT, ast.Int(0))
	user := fn("user", []ast.TypeRef{nat()}, nat(), ast.PIds("y"), ast.Call(ast.Var("half"), ast.Var("y")))
	list := generate(t, config.Default(), module("M", half, user))

	got := expectCount(t, list, FunctionApply, 1)
	if s := ast.Print(got[0].Condition); s != "pre_half(y)" {
		t.Errorf("condition = %q, want pre_half(y)", s)
	}
	expectCount(t, list, TotalFunction, 0)
}

func TestTotalFunction(t *testing.T) {
	tests := []struct {
		name  string
		typ   *ast.FunctionTypeRef
		want  int
		arrow string
	}{
		{"partial arrow", ast.FnTy(nat(), nat()), 0, "(nat -> nat)"},
		{"total arrow", ast.TotalFnTy(nat(), nat()), 1, "(nat +> nat)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ast.Print(tt.typ); got != tt.arrow {
				t.Fatalf("type prints as %q, want %q", got, tt.arrow)
			}
			half := fn("half", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), ast.Bin(ast.Var("x"), ast.DIV, ast.Int(2)))
			half.Type = tt.typ
			half.Pre = ast.Bin(ast.Var("x"), ast.GT, ast.Int(0))
			list := generate(t, config.Default(), module("M", half))
			got := expectCount(t, list, TotalFunction, tt.want)
			if tt.want == 0 {
				return
			}
			cond := ast.Print(got[0].Condition)
			if !strings.HasPrefix(cond, "forall x:nat") || !strings.HasSuffix(cond, "x > 0") {
				t.Errorf("condition = %q, want the precondition over every nat", cond)
			}
		})
	}
}

func TestStateInvariant(t *testing.T) {
	state := &ast.StateDef{
		Name:   "S",
		Fields: []*ast.Field{{Tag: "x", Type: nat()}},
		Inv: &ast.InvClause{
			Pattern: &ast.RecordPattern{Type: "S", Fields: ast.PIds("x")},
			Expr:    ast.Bin(ast.Var("x"), ast.LT, ast.Int(10)),
		},
		Init: &ast.InvClause{
			Pattern: ast.PId("s"),
			Expr:    ast.Bin(ast.Var("s"), ast.EQ, &ast.RecordExpr{Type: "S", Args: []ast.Expression{ast.Int(0)}}),
		},
	}
	op := &ast.ExplicitOperationDef{
		Name: "bump",
		Type: &ast.OperationTypeRef{},
		Body: &ast.AssignStmt{
			Target: &ast.NameDesignator{Name: "x"},
			Value:  ast.Bin(ast.Var("x"), ast.PLUS, ast.Int(1)),
		},
		Access: ast.Access{Visibility: ast.Public},
	}
	list := generate(t, config.Default(), module("M", state, op))

	got := expectCount(t, list, StateInvariant, 1)
	if s := ast.Print(got[0].Condition); s != "inv_S(mk_S(x))" {
		t.Errorf("condition = %q, want inv_S(mk_S(x))", s)
	}
	expectCount(t, list, StateInit, 1)
}

func TestKindFilter(t *testing.T) {
	body := ast.Bin(ast.Var("x"), ast.DIV, ast.Bin(ast.Var("x"), ast.MINUS, ast.Var("x")))
	f := fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), body)

	list := generate(t, config.Default(), module("M", f))
	if len(list.OfKind(Subtype)) == 0 {
		t.Fatalf("an int body in a nat function should need a subtype obligation:\n%s", list)
	}

	cfg := config.Default()
	cfg.Obligations.Kinds = []string{NonZero.String()}
	list = generate(t, cfg, module("M", f))
	for _, o := range list.Obligations {
		if o.Kind != NonZero {
			t.Errorf("filtered run produced a %s obligation", o.Kind)
		}
	}
	expectCount(t, list, NonZero, 1)
}

func TestDeterministic(t *testing.T) {
	spec := func() *ast.Module {
		body := ast.Bin(ast.Var("x"), ast.DIV, ast.Bin(ast.Var("x"), ast.MINUS, ast.Var("x")))
		return module("M",
			fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), body),
			countdown(ast.Var("n")),
		)
	}
	first := generate(t, config.Default(), spec())
	second := generate(t, config.Default(), spec())
	if first.Len() == 0 {
		t.Fatalf("expected obligations")
	}
	opts := cmpopts.IgnoreFields(Obligation{}, "Source", "Context", "Condition")
	if diff := cmp.Diff(first.Obligations, second.Obligations, opts); diff != "" {
		t.Errorf("regenerating changed the obligations (-first +second):\n%s", diff)
	}
}

func TestContextBalanced(t *testing.T) {
	list := generate(t, config.Default(), tagModule(quoteAlt("A", 1)), module("N", countdown(ast.Var("n"))))
	if list.Pushes == 0 {
		t.Fatalf("expected context frames to be pushed")
	}
	if list.Pushes != list.Pops {
		t.Errorf("pushes = %d, pops = %d", list.Pushes, list.Pops)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("termination"); err == nil {
		t.Errorf("expected an error for an unknown kind")
	}
}

func TestObligationString(t *testing.T) {
	o := &Obligation{Number: 3, Kind: NonZero, Definition: "M`f", Text: "x <> 0", Unchecked: true}
	o.Location.Line, o.Location.Column = 4, 9
	want := "Proof Obligation 3: (M`f) non-zero obligation @ 4:9 [unchecked]\nx <> 0"
	if got := o.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// definitionObligations returns the obligations of kind k raised in definition name
func definitionObligations(list *List, name string, k Kind) []*Obligation {
	var out []*Obligation
	for _, o := range list.OfKind(k) {
		if o.Definition == name {
			out = append(out, o)
		}
	}
	return out
}

func conditions(obs []*Obligation) []string {
	out := make([]string, len(obs))
	for i, o := range obs {
		out[i] = ast.Print(o.Condition)
	}
	return out
}

// bounded is "P :: x : nat  inv mk_P(x) == x < 10"
func bounded() *ast.TypeDef {
	return &ast.TypeDef{
		Name: "P",
		Type: &ast.RecordTypeRef{Fields: []*ast.Field{{Tag: "x", Type: nat()}}},
		Inv: &ast.InvClause{
			Pattern: &ast.RecordPattern{Type: "P", Fields: ast.PIds("x")},
			Expr:    ast.Bin(ast.Var("x"), ast.LT, ast.Int(10)),
		},
	}
}

// ordered is "R :: v : nat  ord p < q == p.v < q.v"
func ordered() *ast.TypeDef {
	return &ast.TypeDef{
		Name: "R",
		Type: &ast.RecordTypeRef{Fields: []*ast.Field{{Tag: "v", Type: nat()}}},
		Ord: &ast.RelClause{
			Left:  ast.PId("p"),
			Right: ast.PId("q"),
			Expr:  ast.Bin(ast.Select(ast.Var("p"), "v"), ast.LT, ast.Select(ast.Var("q"), "v")),
		},
	}
}

func TestObligationsByKind(t *testing.T) {
	natMap := func() ast.TypeRef { return ast.MapTy(nat(), nat()) }
	tests := []struct {
		name   string
		defs   func() []ast.Definition
		kind   Kind
		want   []string
		prefix string
	}{
		{
			name: "record constructor field",
			defs: func() []ast.Definition {
				f := fn("f", []ast.TypeRef{ast.Ty("int")}, ast.Ty("P"), ast.PIds("y"), &ast.RecordExpr{Type: "P", Args: []ast.Expression{ast.Var("y")}})
				return []ast.Definition{bounded(), f}
			},
			kind: Subtype,
			want: []string{"is_(y, nat)"},
		},
		{
			name: "record constructor invariant",
			defs: func() []ast.Definition {
				f := fn("f", []ast.TypeRef{nat()}, ast.Ty("P"), ast.PIds("y"), &ast.RecordExpr{Type: "P", Args: []ast.Expression{ast.Var("y")}})
				return []ast.Definition{bounded(), f}
			},
			kind: TypeInvariant,
			want: []string{"inv_P(mk_P(y))"},
		},
		{
			name: "mu field",
			defs: func() []ast.Definition {
				body := &ast.MuExpr{Record: ast.Var("p"), Mods: []*ast.RecordModifier{{Tag: "x", Value: ast.Var("y")}}}
				f := fn("f", []ast.TypeRef{ast.Ty("P"), ast.Ty("int")}, ast.Ty("P"), ast.PIds("p", "y"), body)
				return []ast.Definition{bounded(), f}
			},
			kind: Subtype,
			want: []string{"is_(y, nat)"},
		},
		{
			name: "mu invariant",
			defs: func() []ast.Definition {
				body := &ast.MuExpr{Record: ast.Var("p"), Mods: []*ast.RecordModifier{{Tag: "x", Value: ast.Var("y")}}}
				f := fn("f", []ast.TypeRef{ast.Ty("P"), nat()}, ast.Ty("P"), ast.PIds("p", "y"), body)
				return []ast.Definition{bounded(), f}
			},
			kind: TypeInvariant,
			want: []string{"inv_P(mu(p, x |-> y))"},
		},
		{
			name: "inverse of a map",
			defs: func() []ast.Definition {
				return []ast.Definition{fn("f", []ast.TypeRef{natMap()}, natMap(), ast.PIds("m"), ast.Un(ast.INVERSE, ast.Var("m")))}
			},
			kind: MapInjectivity,
			want: []string{"is_(m, inmap nat to nat)"},
		},
		{
			name: "inverse of an inmap",
			defs: func() []ast.Definition {
				in := &ast.MapTypeRef{Dom: nat(), Rng: nat(), Injective: true}
				return []ast.Definition{fn("f", []ast.TypeRef{in}, natMap(), ast.PIds("m"), ast.Un(ast.INVERSE, ast.Var("m")))}
			},
			kind: MapInjectivity,
		},
		{
			name: "map composition",
			defs: func() []ast.Definition {
				body := ast.Bin(ast.Var("m1"), ast.COMP, ast.Var("m2"))
				return []ast.Definition{fn("f", []ast.TypeRef{natMap(), natMap()}, natMap(), ast.PIds("m1", "m2"), body)}
			},
			kind: MapCompose,
			want: []string{"rng m2 subset dom m1"},
		},
		{
			name: "map union",
			defs: func() []ast.Definition {
				body := ast.Bin(ast.Var("m1"), ast.MUNION, ast.Var("m2"))
				return []ast.Definition{fn("f", []ast.TypeRef{natMap(), natMap()}, natMap(), ast.PIds("m1", "m2"), body)}
			},
			kind:   MapCompatible,
			prefix: "forall d1 in set dom m1, d2 in set dom m2",
		},
		{
			name: "merge",
			defs: func() []ast.Definition {
				return []ast.Definition{fn("f", []ast.TypeRef{ast.SetTy(natMap())}, natMap(), ast.PIds("ms"), ast.Un(ast.MERGE, ast.Var("ms")))}
			},
			kind:   MapSetCompatible,
			prefix: "forall m1, m2 in set ms",
		},
		{
			name: "narrow_ to a subtype",
			defs: func() []ast.Definition {
				body := &ast.NarrowExpr{Arg: ast.Var("x"), Type: nat()}
				return []ast.Definition{fn("f", []ast.TypeRef{ast.Ty("int")}, nat(), ast.PIds("x"), body)}
			},
			kind: Subtype,
			want: []string{"is_(x, nat)"},
		},
		{
			name: "narrow_ to a supertype",
			defs: func() []ast.Definition {
				body := &ast.NarrowExpr{Arg: ast.Var("x"), Type: ast.Ty("int")}
				return []ast.Definition{fn("f", []ast.TypeRef{nat()}, ast.Ty("int"), ast.PIds("x"), body)}
			},
			kind: Subtype,
		},
		{
			name: "sequence apply",
			defs: func() []ast.Definition {
				body := ast.Call(ast.Var("s"), ast.Var("i"))
				return []ast.Definition{fn("f", []ast.TypeRef{ast.SeqTy(nat()), ast.Ty("nat1")}, nat(), ast.PIds("s", "i"), body)}
			},
			kind: SeqApply,
			want: []string{"i in set inds s"},
		},
		{
			name: "type bind over a type parameter",
			defs: func() []ast.Definition {
				param := func() ast.TypeRef { return &ast.ParamTypeRef{Name: "T"} }
				body := ast.ForallExpr([]ast.MultipleBind{ast.TBind(param(), ast.PId("x"))}, ast.Bin(ast.Var("x"), ast.INSET, ast.Var("s")))
				f := fn("f", []ast.TypeRef{ast.SetTy(param())}, ast.Ty("bool"), ast.PIds("s"), body)
				f.TypeParams = []string{"T"}
				return []ast.Definition{f}
			},
			kind:   FiniteType,
			prefix: "exists s:set of @T & forall x:@T & x in set s",
		},
		{
			name: "type bind over nat",
			defs: func() []ast.Definition {
				body := ast.ForallExpr([]ast.MultipleBind{ast.TBind(nat(), ast.PId("x"))}, ast.Bin(ast.Var("x"), ast.INSET, ast.Var("s")))
				return []ast.Definition{fn("f", []ast.TypeRef{ast.SetTy(nat())}, ast.Ty("bool"), ast.PIds("s"), body)}
			},
			kind: FiniteType,
		},
		{
			name: "ordering a record or number against a number",
			defs: func() []ast.Definition {
				body := ast.Bin(ast.Var("x"), ast.LT, ast.Var("y"))
				f := fn("f", []ast.TypeRef{ast.UnionTy(nat(), ast.Ty("R")), nat()}, ast.Ty("bool"), ast.PIds("x", "y"), body)
				return []ast.Definition{ordered(), f}
			},
			kind: Subtype,
			want: []string{"is_(x, nat)"},
		},
		{
			name: "ordering a number against a wider record or number",
			defs: func() []ast.Definition {
				body := ast.Bin(ast.Var("x"), ast.LT, ast.Var("y"))
				f := fn("f", []ast.TypeRef{ast.Ty("int"), ast.UnionTy(nat(), ast.Ty("R"))}, ast.Ty("bool"), ast.PIds("x", "y"), body)
				return []ast.Definition{ordered(), f}
			},
			kind: Subtype,
			want: []string{"is_(y, int)"},
		},
		{
			name: "ordering two records",
			defs: func() []ast.Definition {
				body := ast.Bin(ast.Var("x"), ast.LT, ast.Var("y"))
				f := fn("f", []ast.TypeRef{ast.Ty("R"), ast.Ty("R")}, ast.Ty("bool"), ast.PIds("x", "y"), body)
				return []ast.Definition{ordered(), f}
			},
			kind: Subtype,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := generate(t, config.Default(), module("M", tt.defs()...))
			got := conditions(definitionObligations(list, "M`f", tt.kind))
			if tt.prefix != "" {
				if len(got) != 1 || !strings.HasPrefix(got[0], tt.prefix) {
					t.Errorf("got %q, want one %s obligation starting %q:\n%s", got, tt.kind, tt.prefix, list)
				}
				return
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("%s obligations (-want +got):\n%s", tt.kind, diff)
			}
		})
	}
}

func TestElseIfChain(t *testing.T) {
	body := &ast.IfExpr{
		Cond:    ast.Bin(ast.Var("x"), ast.EQ, ast.Int(0)),
		Then:    ast.Int(0),
		ElseIfs: []*ast.ElseIf{{Cond: ast.Bin(ast.Var("x"), ast.LT, ast.Int(5)), Then: ast.Bin(ast.Int(10), ast.DIV, ast.Var("x"))}},
		Else:    ast.Bin(ast.Int(20), ast.DIV, ast.Var("x")),
	}
	f := fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), body)
	list := generate(t, config.Default(), module("M", f))
	got := expectCount(t, list, NonZero, 2)

	want := [][]string{
		{"not x = 0 =>", "x < 5 =>", "x <> 0"},
		{"not x = 0 =>", "not x < 5 =>", "x <> 0"},
	}
	for i, o := range got {
		lines := strings.Split(o.Text, "\n")
		for j := range lines {
			lines[j] = strings.TrimSpace(lines[j])
		}
		if len(lines) < 1 || !strings.HasPrefix(lines[0], "forall x") {
			t.Fatalf("obligation %d should start with the parameter binding:\n%s", i, o.Text)
		}
		if diff := cmp.Diff(want[i], lines[1:]); diff != "" {
			t.Errorf("obligation %d context (-want +got):\n%s", i, diff)
		}
	}
}

// climb is f(n) == if n = 0 then 0 elseif n = 1 then f(n - 1) else f(n + 1) measure n
func climb() *ast.ExplicitFunctionDef {
	f := fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("n"), &ast.IfExpr{
		Cond: ast.Bin(ast.Var("n"), ast.EQ, ast.Int(0)),
		Then: ast.Int(0),
		ElseIfs: []*ast.ElseIf{{
			Cond: ast.Bin(ast.Var("n"), ast.EQ, ast.Int(1)),
			Then: ast.Call(ast.Var("f"), ast.Bin(ast.Var("n"), ast.MINUS, ast.Int(1))),
		}},
		Else: ast.Call(ast.Var("f"), ast.Bin(ast.Var("n"), ast.PLUS, ast.Int(1))),
	})
	f.Measure = ast.Var("n")
	return f
}

func TestRecursionEveryCallSite(t *testing.T) {
	list := generate(t, config.Default(), module("M", climb()))
	got := expectCount(t, list, RecursiveFunction, 2)
	want := []string{"measure_f(n - 1) < measure_f(n)", "measure_f(n + 1) < measure_f(n)"}
	if diff := cmp.Diff(want, conditions(got)); diff != "" {
		t.Errorf("recursive obligations (-want +got):\n%s", diff)
	}
	if !strings.Contains(got[1].Text, "not n = 1 =>") {
		t.Errorf("the else call should follow the failed elseif guard:\n%s", got[1].Text)
	}
}

func TestRecursionEquivalentCallSites(t *testing.T) {
	f := countdown(ast.Var("n"))
	call := func() ast.Expression {
		return ast.Call(ast.Var("countdown"), ast.Bin(ast.Var("n"), ast.MINUS, ast.Int(1)))
	}
	f.Body.(*ast.IfExpr).Else = ast.Bin(call(), ast.PLUS, call())
	list := generate(t, config.Default(), module("M", f))
	expectCount(t, list, RecursiveFunction, 1)
}

func TestCasesShadowingIsUnchecked(t *testing.T) {
	alt := &ast.CaseAlt{
		Patterns: []ast.Pattern{ast.PId("y")},
		Result:   ast.Bin(ast.Int(10), ast.DIV, ast.Var("y")),
	}
	cases := &ast.CasesExpr{Subject: ast.Var("x"), Alts: []*ast.CaseAlt{alt}}
	body := ast.Bin(cases, ast.PLUS, ast.Bin(ast.Int(10), ast.DIV, ast.Var("x")))
	f := fn("f", []ast.TypeRef{nat(), nat()}, nat(), ast.PIds("x", "y"), body)
	list := generate(t, config.Default(), module("M", f))

	got := expectCount(t, list, NonZero, 2)
	unchecked := map[string]bool{}
	for _, o := range got {
		unchecked[ast.Print(o.Condition)] = o.Unchecked
	}
	want := map[string]bool{"y <> 0": true, "x <> 0": false}
	if diff := cmp.Diff(want, unchecked); diff != "" {
		t.Errorf("unchecked marks (-want +got):\n%s", diff)
	}
}

func TestNotedTypeSurvivesGuards(t *testing.T) {
	s := newContextStack()
	s.push(Hypothesis{Kind: NotedType, Name: "x", Type: types.NatType})
	s.push(Hypothesis{Kind: Implies, Expr: ast.ForallExpr([]ast.MultipleBind{ast.TBind(nat(), ast.PId("x"))}, ast.Bool(true))})
	if _, ok := s.noted("x"); !ok {
		t.Error("a guard does not rebind x")
	}
	s.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.TBind(nat(), ast.PId("x"))}})
	if _, ok := s.noted("x"); ok {
		t.Error("a forall frame rebinds x")
	}
	s.pop(1)
	s.push(Hypothesis{Kind: LetDefinition, Pattern: ast.PId("x"), Expr: ast.Int(1)})
	if _, ok := s.noted("x"); ok {
		t.Error("a let frame rebinds x")
	}
}
