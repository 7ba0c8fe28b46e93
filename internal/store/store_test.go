package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/checker"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/pog"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "obligations.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// divide builds "f: int * int -> int  f(x, y) == x div y", which raises one
// non-zero obligation
func divide(t *testing.T) (*pog.List, *diagnostic.Diagnostics) {
	t.Helper()
	f := &ast.ExplicitFunctionDef{
		Name:   "f",
		Type:   ast.FnTy(ast.Ty("int"), ast.Ty("int"), ast.Ty("int")),
		Params: [][]ast.Pattern{ast.PIds("x", "y")},
		Body:   ast.Bin(ast.Var("x"), ast.DIV, ast.Var("y")),
	}
	mod := &ast.Module{Name: "M", File: "M.vdmsl", Defs: []ast.Definition{f}}
	res, err := checker.Check(&ast.Specification{Modules: []*ast.Module{mod}}, config.Default())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	list, err := pog.Generate(res, config.Default())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return list, res.Diagnostics
}

func TestSaveAndReadBack(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	list, diags := divide(t)
	if list.Len() == 0 {
		t.Fatal("expected at least one obligation")
	}

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := s.Save(ctx, Run{Source: "M.yaml", Dialect: "vdmsl", Created: created}, list, diags)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows, err := s.Obligations(ctx, id, "")
	if err != nil {
		t.Fatalf("Obligations: %v", err)
	}
	var want []Row
	for _, o := range list.Obligations {
		want = append(want, Row{
			Number:     o.Number,
			ID:         o.ID,
			Kind:       o.Kind,
			Definition: o.Definition,
			File:       o.Location.File,
			Line:       o.Location.Line,
			Column:     o.Location.Column,
			Text:       o.Text,
			Unchecked:  o.Unchecked,
		})
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("stored obligations differ (-want +got):\n%s", diff)
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != id || runs[0].Obligations != list.Len() || !runs[0].Run.Created.Equal(created) {
		t.Errorf("run info = %+v", runs[0])
	}
}

func TestFilterByKind(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	list, diags := divide(t)
	id, err := s.Save(ctx, Run{Source: "M.yaml", Dialect: "vdmsl"}, list, diags)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows, err := s.Obligations(ctx, id, pog.NonZero.String())
	if err != nil {
		t.Fatalf("Obligations: %v", err)
	}
	if len(rows) != len(list.OfKind(pog.NonZero)) {
		t.Errorf("got %d non-zero rows, want %d", len(rows), len(list.OfKind(pog.NonZero)))
	}
	rows, err = s.Obligations(ctx, id, pog.MapApply.String())
	if err != nil {
		t.Fatalf("Obligations: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no map apply rows, got %d", len(rows))
	}
}

func TestDiagnosticsStored(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	diags := diagnostic.New()
	diags.SetFile("M.vdmsl")
	diags.Errorf(diagnostic.CodeUnknownName, 3, 7, "name 'z' is not in scope")
	diags.Warningf(diagnostic.CodeUnused, 4, 1, "'y' in 'f' is never used")

	id, err := s.Save(ctx, Run{Source: "M.yaml", Dialect: "vdmsl"}, nil, diags)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, tt := range []struct {
		sev  diagnostic.Severity
		want int
	}{
		{diagnostic.Error, 1},
		{diagnostic.Warning, 1},
		{diagnostic.Info, 0},
	} {
		n, err := s.DiagnosticCount(ctx, id, tt.sev)
		if err != nil {
			t.Fatalf("DiagnosticCount: %v", err)
		}
		if n != tt.want {
			t.Errorf("%s count = %d, want %d", tt.sev, n, tt.want)
		}
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	list, diags := divide(t)
	id, err := s.Save(ctx, Run{Source: "M.yaml", Dialect: "vdmsl"}, list, diags)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows, err := s.Obligations(ctx, id, "")
	if err != nil {
		t.Fatalf("Obligations: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("obligations survived their run: %d", len(rows))
	}
	if err := s.Delete(ctx, id); err == nil {
		t.Error("deleting a missing run should fail")
	}
}

func TestRunsAreNumberedIndependently(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	list, diags := divide(t)
	first, err := s.Save(ctx, Run{Source: "a.yaml", Dialect: "vdmsl"}, list, diags)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Save(ctx, Run{Source: "b.yaml", Dialect: "vdmsl"}, list, diags)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first == second {
		t.Fatal("runs should get distinct IDs")
	}
	a, _ := s.Obligations(ctx, first, "")
	b, _ := s.Obligations(ctx, second, "")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("the same list stored twice should read back the same (-first +second):\n%s", diff)
	}
}
