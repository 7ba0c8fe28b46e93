package astio

import (
	"strings"
	"testing"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/checker"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
)

const incModule = `dialect: vdmsl
modules:
  - name: M
    defs:
      - kind: function
        name: inc
        type: {kind: fn, params: [nat], result: nat}
        params: [[x]]
        body: {kind: binary, op: "+", left: x, right: 1}
      - kind: value
        pattern: limit
        type: nat1
        value: 10
`

func parse(t *testing.T, src string) (*Document, *diagnostic.Diagnostics) {
	t.Helper()
	doc, diag, err := Parse([]byte(src), "test.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc, diag
}

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, diag := parse(t, src)
	if diag.HasErrors() {
		t.Fatalf("unexpected input errors:\n%s", diag.Format("test.yaml"))
	}
	return doc
}

func TestDecodeFunction(t *testing.T) {
	doc := mustParse(t, incModule)
	if doc.Dialect != "vdmsl" {
		t.Errorf("Dialect = %q, want vdmsl", doc.Dialect)
	}
	if len(doc.Spec.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(doc.Spec.Modules))
	}
	m := doc.Spec.Modules[0]
	if m.Name != "M" || m.File != "test.yaml" {
		t.Errorf("module = %s in %s", m.Name, m.File)
	}
	if len(m.Defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(m.Defs))
	}

	f, ok := m.Defs[0].(*ast.ExplicitFunctionDef)
	if !ok {
		t.Fatalf("expected an explicit function, got %T", m.Defs[0])
	}
	if f.Name != "inc" {
		t.Errorf("Name = %q", f.Name)
	}
	if got := ast.Print(f.Body); got != "x + 1" {
		t.Errorf("Body = %q, want %q", got, "x + 1")
	}
	if len(f.Params) != 1 || len(f.Params[0]) != 1 {
		t.Fatalf("Params = %v", f.Params)
	}
	if got := ast.Print(f.Type.Result); got != "nat" {
		t.Errorf("Result type = %q", got)
	}

	v, ok := m.Defs[1].(*ast.ValueDef)
	if !ok {
		t.Fatalf("expected a value definition, got %T", m.Defs[1])
	}
	if got := ast.Print(v.Type); got != "nat1" {
		t.Errorf("value type = %q", got)
	}
}

func TestDecodedTreeChecks(t *testing.T) {
	doc := mustParse(t, incModule)
	res, err := checker.Check(doc.Spec, config.Default())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Diagnostics.HasErrors() {
		t.Errorf("decoded tree has checked errors:\n%s", res.Diagnostics.Format("test.yaml"))
	}
}

// valueOf decodes src as the value of a single value definition
func valueOf(t *testing.T, src string) ast.Expression {
	t.Helper()
	doc := mustParse(t, "modules:\n  - name: M\n    defs:\n      - {kind: value, pattern: v, value: "+src+"}\n")
	return doc.Spec.Modules[0].Defs[0].(*ast.ValueDef).Value
}

func TestScalarExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
		node interface{}
	}{
		{"42", "42", &ast.IntLit{}},
		{"1.5", "1.5", &ast.RealLit{}},
		{"true", "true", &ast.BoolLit{}},
		{"nil", "nil", &ast.NilLit{}},
		{"<RED>", "<RED>", &ast.QuoteLit{}},
		{"self", "self", &ast.SelfExpr{}},
		{"count~", "count~", &ast.OldName{}},
		{"Lib`max", "Lib`max", &ast.Variable{}},
		{"total", "total", &ast.Variable{}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := valueOf(t, tt.src)
			if got := ast.Print(e); got != tt.want {
				t.Errorf("Print = %q, want %q", got, tt.want)
			}
			if gotT, wantT := exprKind(e), exprKind(tt.node); gotT != wantT {
				t.Errorf("node = %s, want %s", gotT, wantT)
			}
		})
	}
}

func exprKind(v interface{}) string {
	switch v.(type) {
	case *ast.IntLit:
		return "IntLit"
	case *ast.RealLit:
		return "RealLit"
	case *ast.BoolLit:
		return "BoolLit"
	case *ast.NilLit:
		return "NilLit"
	case *ast.QuoteLit:
		return "QuoteLit"
	case *ast.SelfExpr:
		return "SelfExpr"
	case *ast.OldName:
		return "OldName"
	case *ast.Variable:
		return "Variable"
	}
	return "other"
}

func TestQualifiedVariable(t *testing.T) {
	v, ok := valueOf(t, "Lib`max").(*ast.Variable)
	if !ok {
		t.Fatal("expected a variable")
	}
	if v.Module != "Lib" || v.Name != "max" {
		t.Errorf("got module %q name %q", v.Module, v.Name)
	}
}

func TestScalarTypes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"nat", "*ast.BasicTypeRef"},
		{"'@T'", "*ast.ParamTypeRef"},
		{"<A>", "*ast.QuoteTypeRef"},
		{"Lib`Id", "*ast.NamedTypeRef"},
		{"Point", "*ast.NamedTypeRef"},
		{"{kind: set1, of: nat}", "*ast.SetTypeRef"},
		{"{kind: inmap, dom: nat, rng: char}", "*ast.MapTypeRef"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			doc := mustParse(t, "modules:\n  - name: M\n    defs:\n      - {kind: type, name: T, type: "+tt.src+"}\n")
			td := doc.Spec.Modules[0].Defs[0].(*ast.TypeDef)
			if got := typeRefName(td.Type); got != tt.want {
				t.Errorf("type = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeRefName(t ast.TypeRef) string {
	switch t.(type) {
	case *ast.BasicTypeRef:
		return "*ast.BasicTypeRef"
	case *ast.ParamTypeRef:
		return "*ast.ParamTypeRef"
	case *ast.QuoteTypeRef:
		return "*ast.QuoteTypeRef"
	case *ast.NamedTypeRef:
		return "*ast.NamedTypeRef"
	case *ast.SetTypeRef:
		return "*ast.SetTypeRef"
	case *ast.MapTypeRef:
		return "*ast.MapTypeRef"
	}
	return "other"
}

func TestNonEmptyAndInjectiveFlags(t *testing.T) {
	doc := mustParse(t, `modules:
  - name: M
    defs:
      - {kind: type, name: S, type: {kind: set1, of: nat}}
      - {kind: type, name: I, type: {kind: inmap, dom: nat, rng: char}}
`)
	defs := doc.Spec.Modules[0].Defs
	if s := defs[0].(*ast.TypeDef).Type.(*ast.SetTypeRef); !s.NonEmpty {
		t.Error("set1 should be non-empty")
	}
	if m := defs[1].(*ast.TypeDef).Type.(*ast.MapTypeRef); !m.Injective {
		t.Error("inmap should be injective")
	}
}

func TestRecordTypeFromFields(t *testing.T) {
	doc := mustParse(t, `modules:
  - name: M
    defs:
      - kind: type
        name: Point
        fields:
          - {tag: x, type: int}
          - {tag: y, type: int, abstract: true}
        inv: {pattern: {kind: record, type: Point, fields: [a, b]}, expr: {kind: binary, op: "<=", left: a, right: b}}
`)
	td := doc.Spec.Modules[0].Defs[0].(*ast.TypeDef)
	rec, ok := td.Type.(*ast.RecordTypeRef)
	if !ok {
		t.Fatalf("expected a record type, got %T", td.Type)
	}
	if len(rec.Fields) != 2 || rec.Fields[0].Tag != "x" || !rec.Fields[1].EqAbstract {
		t.Errorf("fields decoded wrongly: %+v", rec.Fields)
	}
	if td.Inv == nil {
		t.Fatal("expected an invariant clause")
	}
	if got := ast.Print(td.Inv.Pattern); got != "mk_Point(a, b)" {
		t.Errorf("inv pattern = %q", got)
	}
}

func TestOperationBody(t *testing.T) {
	doc := mustParse(t, `modules:
  - name: M
    defs:
      - kind: state
        name: S
        fields: [{tag: xs, type: {kind: seq, of: nat}}]
      - kind: operation
        name: set
        type: {params: [nat, nat]}
        params: [i, v]
        body:
          - kind: assign
            target: {object: xs, index: i}
            value: v
          - skip
`)
	op, ok := doc.Spec.Modules[0].Defs[1].(*ast.ExplicitOperationDef)
	if !ok {
		t.Fatalf("expected an explicit operation, got %T", doc.Spec.Modules[0].Defs[1])
	}
	if op.Type == nil || len(op.Type.Params) != 2 || op.Type.Result != nil {
		t.Errorf("operation type decoded wrongly: %+v", op.Type)
	}
	block, ok := op.Body.(*ast.BlockStmt)
	if !ok || len(block.Stmts) != 2 {
		t.Fatalf("expected a block of two statements, got %T", op.Body)
	}
	assign, ok := block.Stmts[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected an assignment, got %T", block.Stmts[0])
	}
	idx, ok := assign.Target.(*ast.IndexDesignator)
	if !ok {
		t.Fatalf("expected an index designator, got %T", assign.Target)
	}
	if name, ok := idx.Object.(*ast.NameDesignator); !ok || name.Name != "xs" {
		t.Errorf("designator object = %#v", idx.Object)
	}
	if _, ok := block.Stmts[1].(*ast.SkipStmt); !ok {
		t.Errorf("expected skip, got %T", block.Stmts[1])
	}
}

func TestCurriedParameters(t *testing.T) {
	doc := mustParse(t, `modules:
  - name: M
    defs:
      - kind: function
        name: add
        type: {params: [nat], result: {kind: fn, params: [nat], result: nat}}
        params: [[a], [b]]
        body: {kind: binary, op: "+", left: a, right: b}
      - kind: function
        name: zero
        type: {params: [], result: nat}
        params: []
        body: 0
`)
	add := doc.Spec.Modules[0].Defs[0].(*ast.ExplicitFunctionDef)
	if len(add.Params) != 2 {
		t.Errorf("add has %d parameter groups, want 2", len(add.Params))
	}
	zero := doc.Spec.Modules[0].Defs[1].(*ast.ExplicitFunctionDef)
	if len(zero.Params) != 1 || len(zero.Params[0]) != 0 {
		t.Errorf("zero should have one empty parameter group, got %v", zero.Params)
	}
}

func TestFunctionArrows(t *testing.T) {
	doc := mustParse(t, `modules:
  - name: M
    defs:
      - kind: function
        name: half
        type: {kind: fn, params: [nat], result: nat}
        params: [[x]]
        body: {kind: binary, op: div, left: x, right: 2}
      - kind: function
        name: double
        type: {kind: fn, params: [nat], result: nat, total: true}
        params: [[x]]
        body: {kind: binary, op: "*", left: x, right: 2}
`)
	tests := []struct {
		def   int
		total bool
		want  string
	}{
		{0, false, "(nat -> nat)"},
		{1, true, "(nat +> nat)"},
	}
	for _, tt := range tests {
		f := doc.Spec.Modules[0].Defs[tt.def].(*ast.ExplicitFunctionDef)
		if f.Type.Total != tt.total {
			t.Errorf("%s: Total = %v, want %v", f.Name, f.Type.Total, tt.total)
		}
		if got := ast.Print(f.Type); got != tt.want {
			t.Errorf("%s: type prints as %q, want %q", f.Name, got, tt.want)
		}
	}
}

func TestPositions(t *testing.T) {
	doc := mustParse(t, `modules:
  - name: M
    defs:
      - kind: value
        pattern: x
        value: {kind: int, value: 1, line: 40, col: 3}
`)
	v := doc.Spec.Modules[0].Defs[0].(*ast.ValueDef)
	if line, col := v.Pattern.Pos(); line != 5 || col != 18 {
		t.Errorf("pattern position = %d:%d, want 5:18", line, col)
	}
	if line, col := v.Value.Pos(); line != 40 || col != 3 {
		t.Errorf("explicit position = %d:%d, want 40:3", line, col)
	}
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		def  string
		want string
	}{
		{"unknown key", "{kind: value, pattern: v, value: 1, colour: red}", `unknown key "colour"`},
		{"unknown kind", "{kind: axiom, name: a}", `unknown definition kind "axiom"`},
		{"unknown operator", "{kind: value, pattern: v, value: {kind: binary, op: '%', left: 1, right: 2}}", `unknown operator "%"`},
		{"bad visibility", "{kind: value, pattern: v, value: 1, access: global}", `unknown visibility "global"`},
		{"missing type", "{kind: function, name: f, params: [x], body: x}", `function "f" has no type`},
		{"bad bind", "{kind: value, pattern: v, value: {kind: forall, binds: [{patterns: [x]}], pred: true}}", "bind needs one of set, type or seq"},
		{"word for an integer", "{kind: value, pattern: v, value: {kind: int, value: twelve}}", `bad integer "twelve"`},
		{"word for a real", "{kind: value, pattern: v, value: {kind: real, value: half}}", `bad real "half"`},
		{"word for a boolean", "{kind: value, pattern: v, value: {kind: bool, value: maybe}}", `value: expected a boolean, got "maybe"`},
		{"word for an arrow flag", "{kind: function, name: f, type: {kind: fn, params: [nat], result: nat, total: maybe}, params: [[x]], body: x}", `total: expected a boolean, got "maybe"`},
		{"word for a tuple index", "{kind: value, pattern: v, value: {kind: tuple_select, tuple: t, index: first}}", `index: expected an integer, got "first"`},
		{"word for a line", "{kind: value, pattern: v, value: 1, line: ten}", `line: expected an integer, got "ten"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diag := parse(t, "modules:\n  - name: M\n    defs:\n      - "+tt.def+"\n")
			found := false
			for _, d := range diag.WithCode(diagnostic.CodeInput) {
				if strings.Contains(d.Message, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %q, got:\n%s", tt.want, diag.Format("test.yaml"))
			}
		})
	}
}

func TestSyntaxErrorIsAnError(t *testing.T) {
	if _, _, err := Parse([]byte("modules: [unclosed"), "bad.yaml"); err == nil {
		t.Error("expected a YAML syntax error")
	}
}

func TestEmptyDocument(t *testing.T) {
	doc, diag := parse(t, "")
	if diag.HasErrors() {
		t.Errorf("empty document should decode cleanly: %s", diag.Format("test.yaml"))
	}
	if len(doc.Spec.Modules) != 0 || len(doc.Spec.Classes) != 0 {
		t.Error("empty document should hold no modules")
	}
}

func TestClasses(t *testing.T) {
	doc := mustParse(t, `dialect: vdmpp
classes:
  - name: Account
    defs:
      - {kind: instance_variable, name: balance, type: int, init: 0, access: private}
      - kind: operation
        name: Account
        type: {kind: op, params: [], result: Account}
        params: []
        body: skip
        access: {visibility: public}
  - name: Savings
    supertypes: [Account]
`)
	if len(doc.Spec.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(doc.Spec.Classes))
	}
	if got := doc.Spec.Classes[1].Supertypes; len(got) != 1 || got[0] != "Account" {
		t.Errorf("Supertypes = %v", got)
	}
	op := doc.Spec.Classes[0].Defs[1].(*ast.ExplicitOperationDef)
	if op.Access.Visibility != ast.Public {
		t.Errorf("visibility = %s, want public", op.Access.Visibility)
	}
}
