package linter

import (
	"strings"
	"testing"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/checker"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
)

func checkAndLint(t *testing.T, lint config.LintSettings, ds ...ast.Definition) []string {
	t.Helper()
	mod := &ast.Module{Name: "M", File: "M.vdmsl", Defs: ds}
	res, err := checker.Check(&ast.Specification{Modules: []*ast.Module{mod}}, config.Default())
	if err != nil {
		t.Fatalf("internal error: %v", err)
	}
	if res.Diagnostics.HasErrors() {
		t.Fatalf("Checker errors: %s", res.Diagnostics.Format("test"))
	}

	diag := Lint(res, lint)
	var warnings []string
	for _, d := range diag.All() {
		if d.Severity != diagnostic.Warning {
			t.Errorf("lint produced a non-warning: %s", d.Message)
		}
		warnings = append(warnings, d.Message)
	}
	return warnings
}

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func allRules() config.LintSettings {
	return config.LintSettings{Enabled: true, Unused: true, MissingPre: true, Naming: true, TrivialGuard: true}
}

func function(name string, ps []ast.Pattern, body ast.Expression) *ast.ExplicitFunctionDef {
	return &ast.ExplicitFunctionDef{
		Name:   name,
		Type:   ast.FnTy(ast.Ty("nat"), ast.Ty("nat")),
		Params: [][]ast.Pattern{ps},
		Body:   body,
	}
}

// --- Unused locals ---

func TestUnusedParameter(t *testing.T) {
	f := function("f", ast.PIds("x"), ast.Int(0))
	warnings := checkAndLint(t, allRules(), f)
	if !containsWarning(warnings, "'x' in 'f' is never used") {
		t.Errorf("Expected unused parameter warning, got: %v", warnings)
	}
}

func TestUsedParameterNoWarning(t *testing.T) {
	f := function("f", ast.PIds("x"), ast.Var("x"))
	warnings := checkAndLint(t, allRules(), f)
	if containsWarning(warnings, "never used") {
		t.Errorf("Did not expect unused warning, got: %v", warnings)
	}
}

func TestParameterUsedOnlyInPre(t *testing.T) {
	f := function("f", ast.PIds("x"), ast.Int(0))
	f.Pre = ast.Bin(ast.Var("x"), ast.GT, ast.Int(0))
	warnings := checkAndLint(t, allRules(), f)
	if containsWarning(warnings, "never used") {
		t.Errorf("A name read by the precondition is used, got: %v", warnings)
	}
}

func TestUnusedLet(t *testing.T) {
	body := &ast.LetExpr{
		Defs: []*ast.ValueDef{{Pattern: ast.PId("y"), Value: ast.Int(1)}},
		Body: ast.Var("x"),
	}
	f := function("f", ast.PIds("x"), body)
	warnings := checkAndLint(t, allRules(), f)
	if !containsWarning(warnings, "'y' in 'f' is never used") {
		t.Errorf("Expected unused let warning, got: %v", warnings)
	}
}

// --- Missing precondition ---

func TestPartialFunctionWithoutPre(t *testing.T) {
	f := function("f", ast.PIds("x"), ast.Var("x"))
	warnings := checkAndLint(t, allRules(), f)
	if !containsWarning(warnings, "partial function 'f' has no precondition") {
		t.Errorf("Expected missing precondition warning, got: %v", warnings)
	}

	f.Pre = ast.Bin(ast.Var("x"), ast.GT, ast.Int(0))
	warnings = checkAndLint(t, allRules(), f)
	if containsWarning(warnings, "no precondition") {
		t.Errorf("Did not expect missing precondition warning, got: %v", warnings)
	}
}

func TestTotalFunctionNeedsNoPre(t *testing.T) {
	f := function("f", ast.PIds("x"), ast.Var("x"))
	f.Type = ast.TotalFnTy(ast.Ty("nat"), ast.Ty("nat"))
	warnings := checkAndLint(t, allRules(), f)
	if containsWarning(warnings, "no precondition") {
		t.Errorf("A +> function is total and needs no precondition, got: %v", warnings)
	}
}

func TestTrivialPrecondition(t *testing.T) {
	tests := []struct {
		pre  ast.Expression
		want string
	}{
		{ast.Bool(true), "precondition of 'f' is always true"},
		{ast.Bool(false), "precondition of 'f' is always false"},
	}
	for _, tt := range tests {
		f := function("f", ast.PIds("x"), ast.Var("x"))
		f.Pre = tt.pre
		warnings := checkAndLint(t, allRules(), f)
		if !containsWarning(warnings, tt.want) {
			t.Errorf("Expected %q, got: %v", tt.want, warnings)
		}
	}

	f := function("f", ast.PIds("x"), ast.Var("x"))
	f.Pre = ast.Bin(ast.Var("x"), ast.GT, ast.Int(0))
	if warnings := checkAndLint(t, allRules(), f); containsWarning(warnings, "always") {
		t.Errorf("A real precondition is not trivial, got: %v", warnings)
	}
}

// --- Naming ---

func TestNaming(t *testing.T) {
	tests := []struct {
		name string
		def  ast.Definition
		want string
	}{
		{"lower-case type", &ast.TypeDef{Name: "count", Type: ast.Ty("nat")}, "type 'count' should start with a capital letter"},
		{"capitalised function", function("Inc", ast.PIds("x"), ast.Var("x")), "function 'Inc' should start with a lower-case letter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := checkAndLint(t, allRules(), tt.def)
			if !containsWarning(warnings, tt.want) {
				t.Errorf("Expected %q, got: %v", tt.want, warnings)
			}
		})
	}
}

func TestRulesCanBeDisabled(t *testing.T) {
	f := function("F", ast.PIds("x"), ast.Int(0))

	if w := checkAndLint(t, config.LintSettings{}, f); len(w) != 0 {
		t.Errorf("Disabled linter should be silent, got: %v", w)
	}
	if w := checkAndLint(t, config.LintSettings{Enabled: true}, f); len(w) != 0 {
		t.Errorf("No rules enabled should be silent, got: %v", w)
	}
}
