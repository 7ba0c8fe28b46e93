package compiler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/pog"
)

func spec(ds ...ast.Definition) *ast.Specification {
	mod := &ast.Module{Name: "M", File: "M.yaml", Defs: ds}
	return &ast.Specification{Modules: []*ast.Module{mod}}
}

// divide is "f: int * int -> int  f(x, y) == x div y"
func divide() *ast.ExplicitFunctionDef {
	return &ast.ExplicitFunctionDef{
		Name:   "f",
		Type:   ast.FnTy(ast.Ty("int"), ast.Ty("int"), ast.Ty("int")),
		Params: [][]ast.Pattern{ast.PIds("x", "y")},
		Body:   ast.Bin(ast.Var("x"), ast.DIV, ast.Var("y")),
	}
}

func defaults() Options {
	return Options{Settings: config.Default()}
}

func hasCode(d *diagnostic.Diagnostics, code diagnostic.Code) bool {
	return len(d.WithCode(code)) > 0
}

func TestCompileValidSpec(t *testing.T) {
	res, err := Compile(context.Background(), spec(divide()), defaults())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("Expected no errors, got:\n%s", res.Diagnostics.Format("M.yaml"))
	}
	if res.Obligations == nil {
		t.Fatal("Expected obligations for a spec that checks")
	}
	if n := len(res.Obligations.OfKind(pog.NonZero)); n != 1 {
		t.Errorf("Expected 1 non-zero obligation, got %d:\n%s", n, res.Obligations)
	}
	if res.Check.Lookup("M", "f") == nil {
		t.Error("Expected 'f' in the checked result")
	}
}

func TestCompileCheckErrorSkipsObligations(t *testing.T) {
	f := divide()
	f.Body = ast.Bin(ast.Var("x"), ast.DIV, ast.Var("z"))
	res, err := Compile(context.Background(), spec(f), defaults())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !res.HasErrors() {
		t.Fatal("Expected an error for an unknown name")
	}
	if !hasCode(res.Diagnostics, diagnostic.CodeUnknownName) {
		t.Errorf("Expected %s, got:\n%s", diagnostic.CodeUnknownName, res.Diagnostics.Format("M.yaml"))
	}
	if res.Obligations != nil {
		t.Errorf("Expected no obligations after checked errors, got %d", res.Obligations.Len())
	}
}

func TestCompileObligationsDisabled(t *testing.T) {
	opts := defaults()
	opts.Settings.Obligations.Enabled = false
	res, err := Compile(context.Background(), spec(divide()), opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Obligations != nil {
		t.Errorf("Expected nil obligations when generation is disabled")
	}
}

func TestCheckMergesLintWarnings(t *testing.T) {
	f := divide()
	f.Body = ast.Var("x")
	res, err := Check(context.Background(), spec(f), defaults())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("Expected no errors, got:\n%s", res.Diagnostics.Format("M.yaml"))
	}
	if !hasCode(res.Diagnostics, diagnostic.CodeUnused) {
		t.Errorf("Expected an unused parameter warning, got:\n%s", res.Diagnostics.Format("M.yaml"))
	}
	if res.Obligations != nil {
		t.Error("Check should not generate obligations")
	}
}

func TestCheckWithoutWarnings(t *testing.T) {
	f := divide()
	f.Body = ast.Var("x")
	opts := defaults()
	opts.Settings.Warnings = false
	res, err := Check(context.Background(), spec(f), opts)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Diagnostics.WarningCount() != 0 {
		t.Errorf("Expected no warnings, got:\n%s", res.Diagnostics.Format("M.yaml"))
	}
}

func TestLintReturnsWarningsOnly(t *testing.T) {
	f := divide()
	f.Body = ast.Var("y")
	opts := defaults()
	opts.Settings.Lint.Enabled = false
	diag, err := Lint(context.Background(), spec(f), opts)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if diag.ErrorCount() != 0 {
		t.Errorf("Expected no errors, got:\n%s", diag.Format("M.yaml"))
	}
	found := false
	for _, d := range diag.All() {
		if strings.Contains(d.Message, "'x' in 'f' is never used") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected the unused 'x' warning, got:\n%s", diag.Format("M.yaml"))
	}
}

func TestLintReturnsCheckedErrors(t *testing.T) {
	f := divide()
	f.Body = ast.Var("z")
	diag, err := Lint(context.Background(), spec(f), defaults())
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if !diag.HasErrors() {
		t.Error("Expected the checked error to be returned")
	}
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, spec(divide()), defaults())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
