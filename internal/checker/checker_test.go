package checker

import (
	"context"
	"strings"
	"testing"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/types"
)

func module(name string, ds ...ast.Definition) *ast.Module {
	return &ast.Module{Name: name, File: name + ".vdmsl", Defs: ds}
}

func class(name string, supers []string, ds ...ast.Definition) *ast.Class {
	return &ast.Class{Name: name, File: name + ".vdmpp", Supertypes: supers, Defs: ds}
}

func checkSL(t *testing.T, mods ...*ast.Module) *Result {
	t.Helper()
	r, err := Check(&ast.Specification{Modules: mods}, config.Default())
	if err != nil {
		t.Fatalf("internal error: %v", err)
	}
	return r
}

func checkPP(t *testing.T, cfg config.Settings, classes ...*ast.Class) *Result {
	t.Helper()
	r, err := Check(&ast.Specification{Classes: classes}, cfg.WithDialect(config.PP))
	if err != nil {
		t.Fatalf("internal error: %v", err)
	}
	return r
}

func expectClean(t *testing.T, r *Result) {
	t.Helper()
	if r.Diagnostics.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", r.Diagnostics.Format(""))
	}
}

func expectCode(t *testing.T, r *Result, code diagnostic.Code, fragment string) {
	t.Helper()
	for _, d := range r.Diagnostics.WithCode(code) {
		if strings.Contains(d.Message, fragment) {
			return
		}
	}
	t.Fatalf("expected %s containing %q, got:\n%s", code, fragment, r.Diagnostics.Format(""))
}

// fn builds "name: params -> result; name(ps) == body"
func fn(name string, params []ast.TypeRef, result ast.TypeRef, ps []ast.Pattern, body ast.Expression) *ast.ExplicitFunctionDef {
	return &ast.ExplicitFunctionDef{
		Name:   name,
		Type:   ast.FnTy(result, params...),
		Params: [][]ast.Pattern{ps},
		Body:   body,
		Access: ast.Access{Visibility: ast.Public},
	}
}

func value(name string, typ ast.TypeRef, v ast.Expression) *ast.ValueDef {
	return &ast.ValueDef{Pattern: ast.PId(name), Type: typ, Value: v}
}

func nat() ast.TypeRef { return ast.Ty("nat") }

// countdown is f(n) == if n = 0 then 0 else f(n - 1)
func countdown(name string) *ast.ExplicitFunctionDef {
	return fn(name, []ast.TypeRef{nat()}, nat(), ast.PIds("n"), &ast.IfExpr{
		Cond: ast.Bin(ast.Var("n"), ast.EQ, ast.Int(0)),
		Then: ast.Int(0),
		Else: ast.Call(ast.Var(name), ast.Bin(ast.Var("n"), ast.MINUS, ast.Int(1))),
	})
}

func TestCleanFunction(t *testing.T) {
	body := ast.Bin(ast.Var("x"), ast.PLUS, ast.Int(1))
	f := fn("inc", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), body)
	r := checkSL(t, module("M", f))
	expectClean(t, r)

	d := r.Lookup("M", "inc")
	if d == nil || d.Base().Status != defs.CheckedOK {
		t.Fatalf("inc should be checked ok, got %v", d)
	}
	if got := r.ExprTypes[body]; !types.Equal(got, types.NatType) {
		t.Errorf("body type = %s, want nat", got)
	}
}

func TestCurriedPatternCount(t *testing.T) {
	f := &ast.ExplicitFunctionDef{
		Name:   "add",
		Type:   ast.FnTy(ast.FnTy(nat(), nat()), nat()),
		Params: [][]ast.Pattern{ast.PIds("a")},
		Body:   ast.Var("a"),
	}
	r := checkSL(t, module("M", f))
	expectCode(t, r, diagnostic.CodeCurriedPatterns, "too few parameter patterns for 'add'")

	f = &ast.ExplicitFunctionDef{
		Name:   "add",
		Type:   ast.FnTy(nat(), nat()),
		Params: [][]ast.Pattern{ast.PIds("a"), ast.PIds("b")},
		Body:   ast.Var("a"),
	}
	r = checkSL(t, module("M", f))
	expectCode(t, r, diagnostic.CodeCurriedPatterns, "too many parameter patterns")
}

func TestCurriedFunction(t *testing.T) {
	f := &ast.ExplicitFunctionDef{
		Name:   "add",
		Type:   ast.FnTy(ast.FnTy(nat(), nat()), nat()),
		Params: [][]ast.Pattern{ast.PIds("a"), ast.PIds("b")},
		Body:   ast.Bin(ast.Var("a"), ast.PLUS, ast.Var("b")),
	}
	expectClean(t, checkSL(t, module("M", f)))
}

func TestSelfMeasure(t *testing.T) {
	f := countdown("f")
	f.Measure = ast.Var("f")
	r := checkSL(t, module("M", f))
	expectCode(t, r, diagnostic.CodeMeasure, "cannot be its own measure")
}

func TestNamedMeasure(t *testing.T) {
	f := countdown("f")
	f.Measure = ast.Var("m")
	m := fn("m", []ast.TypeRef{nat()}, nat(), ast.PIds("n"), ast.Var("n"))
	r := checkSL(t, module("M", f, m))
	expectClean(t, r)

	d := r.Lookup("M", "f").(*defs.ExplicitFunctionDefinition)
	if !d.Recursive {
		t.Error("f should be marked recursive")
	}
	if d.MeasureName != "m" {
		t.Errorf("measure name = %q, want m", d.MeasureName)
	}
}

func TestMeasureMustBeNat(t *testing.T) {
	f := countdown("f")
	f.Measure = ast.Var("m")
	m := fn("m", []ast.TypeRef{nat()}, ast.Ty("int"), ast.PIds("n"), ast.Un(ast.MINUS, ast.Var("n")))
	r := checkSL(t, module("M", f, m))
	expectCode(t, r, diagnostic.CodeMeasure, "must return nat")
}

func TestMeasureExpression(t *testing.T) {
	f := countdown("f")
	f.Measure = ast.Var("n")
	r := checkSL(t, module("M", f))
	expectClean(t, r)

	d := r.Lookup("M", "f")
	if r.Graph.DerivedOf(d.Base().ID, defs.RoleMeasure) == nil {
		t.Fatal("expected a measure_f helper")
	}
}

func TestRecursionWithoutMeasureWarns(t *testing.T) {
	r := checkSL(t, module("M", countdown("f")))
	expectClean(t, r)
	if len(r.Diagnostics.WithCode(diagnostic.CodeNoMeasure)) != 1 {
		t.Fatalf("expected one missing-measure warning, got:\n%s", r.Diagnostics.Format(""))
	}
}

func TestMutualRecursion(t *testing.T) {
	isEven := fn("even", []ast.TypeRef{nat()}, ast.Ty("bool"), ast.PIds("n"), &ast.IfExpr{
		Cond: ast.Bin(ast.Var("n"), ast.EQ, ast.Int(0)),
		Then: ast.Bool(true),
		Else: ast.Call(ast.Var("odd"), ast.Bin(ast.Var("n"), ast.MINUS, ast.Int(1))),
	})
	isOdd := fn("odd", []ast.TypeRef{nat()}, ast.Ty("bool"), ast.PIds("n"), &ast.IfExpr{
		Cond: ast.Bin(ast.Var("n"), ast.EQ, ast.Int(0)),
		Then: ast.Bool(false),
		Else: ast.Call(ast.Var("even"), ast.Bin(ast.Var("n"), ast.MINUS, ast.Int(1))),
	})
	r := checkSL(t, module("M", isEven, isOdd))
	even := r.Lookup("M", "even")
	odd := r.Lookup("M", "odd")
	if !r.Calls.HasEdge(even.Base().ID, odd.Base().ID) || !r.Calls.HasEdge(odd.Base().ID, even.Base().ID) {
		t.Fatal("expected call edges both ways")
	}
	group := r.Calls.Recursive()[even.Base().ID]
	if len(group) != 2 {
		t.Errorf("recursive group = %v, want both functions", group)
	}
}

func TestSecondState(t *testing.T) {
	s1 := &ast.StateDef{Name: "S", Fields: []*ast.Field{{Tag: "x", Type: nat()}}}
	s2 := &ast.StateDef{Name: "T", Fields: []*ast.Field{{Tag: "y", Type: nat()}}}
	r := checkSL(t, module("M", s1, s2))
	expectCode(t, r, diagnostic.CodeSecondState, "already has a state definition")
}

func TestDuplicateValue(t *testing.T) {
	r := checkSL(t, module("M", value("x", nil, ast.Int(1)), value("x", nil, ast.Int(2))))
	if len(r.Diagnostics.WithCode(diagnostic.CodeDuplicate)) == 0 {
		t.Fatalf("expected a duplicate error, got:\n%s", r.Diagnostics.Format(""))
	}
}

func TestForwardValueReference(t *testing.T) {
	a := value("a", nil, ast.Bin(ast.Var("b"), ast.PLUS, ast.Int(1)))
	b := value("b", nil, ast.Int(2))
	r := checkSL(t, module("M", a, b))
	expectClean(t, r)

	d := r.Lookup("M", "a")
	if d.Base().Status != defs.CheckedOK {
		t.Fatalf("a status = %s, want checked-ok", d.Base().Status)
	}
	if !types.Equal(d.Base().Type, types.Nat1Type) {
		t.Errorf("a type = %s, want nat1", d.Base().Type)
	}
}

func TestCyclicValuesAreUnresolvable(t *testing.T) {
	a := value("a", nil, ast.Var("b"))
	b := value("b", nil, ast.Var("a"))
	r := checkSL(t, module("M", a, b))
	if n := len(r.Diagnostics.WithCode(diagnostic.CodeUnresolved)); n != 2 {
		t.Fatalf("expected 2 unresolved errors, got %d:\n%s", n, r.Diagnostics.Format(""))
	}
	if s := r.Lookup("M", "a").Base().Status; s != defs.Unresolvable {
		t.Errorf("a status = %s, want unresolvable", s)
	}
}

func TestDeclaredValueTypeBreaksCycle(t *testing.T) {
	a := value("a", nat(), ast.Bin(ast.Var("b"), ast.PLUS, ast.Int(1)))
	b := value("b", nil, ast.Int(2))
	expectClean(t, checkSL(t, module("M", a, b)))
}

func TestUnknownType(t *testing.T) {
	r := checkSL(t, module("M", value("x", ast.Ty("Foo"), ast.Int(1))))
	expectCode(t, r, diagnostic.CodeUnknownType, "Foo")
}

func TestRecursiveType(t *testing.T) {
	td := &ast.TypeDef{Name: "T", Type: ast.Ty("T")}
	r := checkSL(t, module("M", td))
	if len(r.Diagnostics.WithCode(diagnostic.CodeRecursiveType)) == 0 {
		t.Fatalf("expected a recursive type error, got:\n%s", r.Diagnostics.Format(""))
	}
}

func TestTypeHelpers(t *testing.T) {
	td := &ast.TypeDef{
		Name: "Even",
		Type: nat(),
		Inv: &ast.InvClause{
			Pattern: ast.PId("n"),
			Expr:    ast.Bin(ast.Bin(ast.Var("n"), ast.MOD, ast.Int(2)), ast.EQ, ast.Int(0)),
		},
	}
	r := checkSL(t, module("M", td))
	expectClean(t, r)
	inv := r.Lookup("M", "inv_Even")
	if inv == nil {
		t.Fatal("expected inv_Even")
	}
	f, ok := inv.Base().Type.(*types.Function)
	if !ok || !types.Equal(f.Result, types.BoolType) || len(f.Params) != 1 || !types.Equal(f.Params[0], types.NatType) {
		t.Errorf("inv_Even type = %s, want nat +> bool", inv.Base().Type)
	}
	if ok && !f.Total {
		t.Error("inv_Even should be total")
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

func TestOrderingComparison(t *testing.T) {
	tests := []struct {
		name  string
		x, y  ast.TypeRef
		clean bool
	}{
		{"two records", ast.Ty("R"), ast.Ty("R"), true},
		{"two numbers", nat(), ast.Ty("real"), true},
		{"record or number against number", ast.UnionTy(nat(), ast.Ty("R")), nat(), true},
		{"record against number", ast.Ty("R"), nat(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fn("f", []ast.TypeRef{tt.x, tt.y}, ast.Ty("bool"), ast.PIds("x", "y"), ast.Bin(ast.Var("x"), ast.LT, ast.Var("y")))
			r := checkSL(t, module("M", ordered(), f))
			if tt.clean {
				expectClean(t, r)
				return
			}
			expectCode(t, r, diagnostic.CodeTypeMismatch, "cannot order")
		})
	}
}

func TestFunctionArrowsResolve(t *testing.T) {
	partial := fn("half", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), ast.Bin(ast.Var("x"), ast.DIV, ast.Int(2)))
	total := fn("double", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), ast.Bin(ast.Var("x"), ast.TIMES, ast.Int(2)))
	total.Type = ast.TotalFnTy(nat(), nat())
	r := checkSL(t, module("M", partial, total))
	expectClean(t, r)

	tests := []struct {
		name  string
		total bool
	}{
		{"half", false},
		{"double", true},
	}
	for _, tt := range tests {
		f, ok := r.Lookup("M", tt.name).Base().Type.(*types.Function)
		if !ok {
			t.Fatalf("%s has no function type", tt.name)
		}
		if f.Total != tt.total {
			t.Errorf("%s: Total = %v, want %v", tt.name, f.Total, tt.total)
		}
	}
}

func TestFunctionCannotReadState(t *testing.T) {
	s := &ast.StateDef{Name: "S", Fields: []*ast.Field{{Tag: "count", Type: nat()}}}
	f := fn("peek", nil, nat(), nil, ast.Var("count"))
	r := checkSL(t, module("M", s, f))
	expectCode(t, r, diagnostic.CodeStateAccess, "'count'")
}

func TestOperationReadsAndWritesState(t *testing.T) {
	s := &ast.StateDef{Name: "S", Fields: []*ast.Field{{Tag: "count", Type: nat()}}}
	op := &ast.ExplicitOperationDef{
		Name: "bump",
		Type: &ast.OperationTypeRef{Result: nat()},
		Body: &ast.BlockStmt{Stmts: []ast.Statement{
			&ast.AssignStmt{Target: &ast.NameDesignator{Name: "count"}, Value: ast.Bin(ast.Var("count"), ast.PLUS, ast.Int(1))},
			&ast.ReturnStmt{Value: ast.Var("count")},
		}},
		Post: ast.Bin(ast.Var("count"), ast.EQ, ast.Bin(&ast.OldName{Name: "count"}, ast.PLUS, ast.Int(1))),
	}
	expectClean(t, checkSL(t, module("M", s, op)))
}

func TestOldNameOutsidePostcondition(t *testing.T) {
	s := &ast.StateDef{Name: "S", Fields: []*ast.Field{{Tag: "count", Type: nat()}}}
	op := &ast.ExplicitOperationDef{
		Name: "get",
		Type: &ast.OperationTypeRef{Result: nat()},
		Body: &ast.ReturnStmt{Value: &ast.OldName{Name: "count"}},
	}
	r := checkSL(t, module("M", s, op))
	expectCode(t, r, diagnostic.CodeStateAccess, "postcondition")
}

func TestMissingReturn(t *testing.T) {
	op := &ast.ExplicitOperationDef{
		Name: "get",
		Type: &ast.OperationTypeRef{Result: nat()},
		Body: &ast.SkipStmt{},
	}
	r := checkSL(t, module("M", op))
	expectCode(t, r, diagnostic.CodeReturn, "must return a value")
}

func TestAssignToValue(t *testing.T) {
	op := &ast.ExplicitOperationDef{
		Name: "set",
		Type: &ast.OperationTypeRef{},
		Body: &ast.AssignStmt{Target: &ast.NameDesignator{Name: "x"}, Value: ast.Int(3)},
	}
	r := checkSL(t, module("M", value("x", nil, ast.Int(1)), op))
	expectCode(t, r, diagnostic.CodeStateAccess, "cannot be assigned")
}

func TestOperationCallFromFunction(t *testing.T) {
	op := &ast.ExplicitOperationDef{
		Name: "get",
		Type: &ast.OperationTypeRef{Result: nat()},
		Body: &ast.ReturnStmt{Value: ast.Int(1)},
	}
	f := fn("f", nil, nat(), nil, ast.Call(ast.Var("get")))
	r := checkSL(t, module("M", op, f))
	expectCode(t, r, diagnostic.CodeOperationAccess, "functional context")
}

func TestPureOperationRules(t *testing.T) {
	noResult := &ast.ExplicitOperationDef{
		Name:   "p",
		Type:   &ast.OperationTypeRef{},
		Body:   &ast.SkipStmt{},
		Access: ast.Access{Pure: true},
	}
	r := checkSL(t, module("M", noResult))
	expectCode(t, r, diagnostic.CodeOperationAccess, "pure operation 'p' must return a value")

	s := &ast.StateDef{Name: "S", Fields: []*ast.Field{{Tag: "count", Type: nat()}}}
	writer := &ast.ExplicitOperationDef{
		Name: "w",
		Type: &ast.OperationTypeRef{Result: nat()},
		Body: &ast.BlockStmt{Stmts: []ast.Statement{
			&ast.AssignStmt{Target: &ast.NameDesignator{Name: "count"}, Value: ast.Int(0)},
			&ast.ReturnStmt{Value: ast.Var("count")},
		}},
		Access: ast.Access{Pure: true},
	}
	r = checkSL(t, module("M", s, writer))
	expectCode(t, r, diagnostic.CodeOperationAccess, "cannot assign state")

	classic := config.Default().WithRelease(config.Classic)
	res, err := Check(&ast.Specification{Modules: []*ast.Module{module("M", writer)}}, classic)
	if err != nil {
		t.Fatal(err)
	}
	expectCode(t, res, diagnostic.CodeDialect, "vdm10")
}

func TestAsyncNeedsRealTime(t *testing.T) {
	op := &ast.ExplicitOperationDef{
		Name:   "go",
		Type:   &ast.OperationTypeRef{},
		Body:   &ast.SkipStmt{},
		Access: ast.Access{Visibility: ast.Public, Async: true},
	}
	r := checkPP(t, config.Default(), class("A", nil, op))
	expectCode(t, r, diagnostic.CodeDialect, "async")

	rt, err := Check(&ast.Specification{Classes: []*ast.Class{class("A", nil, op)}}, config.Default().WithDialect(config.RT))
	if err != nil {
		t.Fatal(err)
	}
	expectClean(t, rt)
}

func TestIdenticalOverloads(t *testing.T) {
	f1 := fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), ast.Var("x"))
	f2 := fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("y"), ast.Var("y"))
	r := checkPP(t, config.Default(), class("A", nil, f1, f2))
	expectCode(t, r, diagnostic.CodeOverload, "already defined")
}

func TestOverloadResolution(t *testing.T) {
	fNat := fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), ast.Var("x"))
	fBool := fn("f", []ast.TypeRef{ast.Ty("bool")}, ast.Ty("bool"), ast.PIds("b"), ast.Not(ast.Var("b")))
	call := ast.Call(ast.Var("f"), ast.Bool(true))
	g := fn("g", nil, ast.Ty("bool"), nil, call)
	r := checkPP(t, config.Default(), class("A", nil, fNat, fBool, g))
	expectClean(t, r)
	if got := r.ExprTypes[call]; !types.Equal(got, types.BoolType) {
		t.Errorf("f(true) type = %s, want bool", got)
	}

	bad := fn("h", nil, nat(), nil, ast.Call(ast.Var("f"), &ast.CharLit{Value: 'c'}))
	r = checkPP(t, config.Default(), class("A", nil, fNat, fBool, bad))
	expectCode(t, r, diagnostic.CodeOverload, "no overload of 'f'")
}

func TestInheritance(t *testing.T) {
	base := class("Base", nil, fn("twice", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), ast.Bin(ast.Var("x"), ast.TIMES, ast.Int(2))))
	derived := class("Derived", []string{"Base"}, fn("four", []ast.TypeRef{nat()}, nat(), ast.PIds("x"),
		ast.Call(ast.Var("twice"), ast.Call(ast.Var("twice"), ast.Var("x")))))
	expectClean(t, checkPP(t, config.Default(), base, derived))

	cyclic := checkPP(t, config.Default(), class("A", []string{"B"}), class("B", []string{"A"}))
	expectCode(t, cyclic, diagnostic.CodeInheritance, "inherits from itself")
}

func TestImportErrors(t *testing.T) {
	a := module("A", value("x", nil, ast.Int(1)))
	a.Exports = &ast.Exports{Items: []*ast.ExportItem{}}
	b := module("B")
	b.Imports = []*ast.ImportFrom{
		{Module: "A", Items: []*ast.ImportItem{{Kind: ast.ImportValue, Name: "x"}}},
		{Module: "C", All: true},
	}
	r := checkSL(t, a, b)
	expectCode(t, r, diagnostic.CodeImport, "not exported")
	expectCode(t, r, diagnostic.CodeImport, "no module called 'C'")
}

func TestImportedValue(t *testing.T) {
	a := module("A", value("x", nil, ast.Int(1)))
	use := ast.QVar("A", "x")
	b := module("B", value("y", nil, ast.Bin(use, ast.PLUS, ast.Var("z"))))
	b.Imports = []*ast.ImportFrom{{Module: "A", Items: []*ast.ImportItem{{Kind: ast.ImportValue, Name: "x", Renamed: "z"}}}}
	r := checkSL(t, a, b)
	expectClean(t, r)
	if r.Refs[use] == nil || r.Refs[use].Base().Module != "A" {
		t.Errorf("A`x should resolve to the definition in A, got %v", r.Refs[use])
	}
}

func TestDialectMismatch(t *testing.T) {
	r, err := Check(&ast.Specification{Classes: []*ast.Class{class("A", nil)}}, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	expectCode(t, r, diagnostic.CodeDialect, "not allowed")
}

func TestDuplicateBinder(t *testing.T) {
	f := fn("f", []ast.TypeRef{nat(), nat()}, nat(), ast.PIds("x", "x"), ast.Var("x"))
	r := checkSL(t, module("M", f))
	expectCode(t, r, diagnostic.CodeDuplicateBinder, "'x'")
}

func TestImplicitFunctionNeedsPost(t *testing.T) {
	f := &ast.ImplicitFunctionDef{
		Name:   "sqrt",
		Params: []*ast.PatternTypePair{{Pattern: ast.PId("x"), Type: nat()}},
		Result: []*ast.NameTypePair{{Name: "r", Type: nat()}},
	}
	r := checkSL(t, module("M", f))
	expectCode(t, r, diagnostic.CodeClause, "no postcondition")

	f.Post = ast.Bin(ast.Bin(ast.Var("r"), ast.TIMES, ast.Var("r")), ast.LEQ, ast.Var("x"))
	expectClean(t, checkSL(t, module("M", f)))
}

func TestLocalsAreRecorded(t *testing.T) {
	body := &ast.LetExpr{
		Defs: []*ast.ValueDef{value("y", nil, ast.Bin(ast.Var("x"), ast.PLUS, ast.Int(1)))},
		Body: ast.Var("y"),
	}
	f := fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), body)
	r := checkSL(t, module("M", f))
	expectClean(t, r)

	var names []string
	for _, l := range r.Locals[r.Lookup("M", "f").Base().ID] {
		names = append(names, l.Name)
	}
	if strings.Join(names, ",") != "x,y" {
		t.Errorf("locals = %v, want [x y]", names)
	}
}

func TestCasesShadowing(t *testing.T) {
	pat := ast.PId("x")
	body := &ast.CasesExpr{
		Subject: ast.Var("x"),
		Alts:    []*ast.CaseAlt{{Patterns: []ast.Pattern{pat}, Result: ast.Var("x")}},
	}
	f := fn("f", []ast.TypeRef{nat()}, nat(), ast.PIds("x"), body)
	r := checkSL(t, module("M", f))
	if !r.Shadowing[pat] {
		t.Error("expected the case pattern to be marked as shadowing")
	}
	if len(r.Diagnostics.WithCode(diagnostic.CodeShadow)) != 1 {
		t.Errorf("expected one shadow warning, got:\n%s", r.Diagnostics.Format(""))
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(config.Default(), nil).Run(ctx, &ast.Specification{}); err == nil {
		t.Fatal("expected a cancelled run to fail")
	}
}
