package defs

import (
	"testing"

	"github.com/lhaig/vdmcheck/internal/types"
)

func TestGraphWithIsPersistent(t *testing.T) {
	g := NewGraph()
	g, id := g.Add(&ValueDefinition{Common: Common{Name: "a"}})
	if id != 1 {
		t.Fatalf("first ID = %d, want 1", id)
	}

	updated := Clone(g.Get(id)).(*ValueDefinition)
	updated.Type = types.NatType
	updated.Status = CheckedOK
	g2 := g.With(updated)

	if g.Get(id).Base().Status != Pending {
		t.Error("With modified the original graph")
	}
	if g2.Get(id).Base().Type != types.NatType {
		t.Error("With did not apply the update")
	}
}

func TestBuilderAndDerived(t *testing.T) {
	b := NewBuilder(NewGraph())
	f := &ExplicitFunctionDefinition{Common: Common{Name: "f"}}
	fid := b.Add(f)
	pre := &ExplicitFunctionDefinition{Common: Common{Name: "pre_f", Role: RolePre, Parent: fid}}
	preID := b.Add(pre)

	f2 := Clone(b.Get(fid)).(*ExplicitFunctionDefinition)
	f2.Derived = append(f2.Derived, preID)
	b.Set(f2)
	g := b.Graph()

	if g.Len() != 2 {
		t.Fatalf("graph length = %d, want 2", g.Len())
	}
	d := g.DerivedOf(fid, RolePre)
	if d == nil || d.Base().Name != "pre_f" {
		t.Fatalf("DerivedOf(f, pre) = %v", d)
	}
	if g.DerivedOf(fid, RolePost) != nil {
		t.Error("expected no post_ derived definition")
	}
	if _, err := g.MustGet(9); err == nil {
		t.Error("expected MustGet of a missing ID to fail")
	}
}

func TestInModuleSkipsLocals(t *testing.T) {
	b := NewBuilder(NewGraph())
	b.Add(&TypeDefinition{Common: Common{Name: "T", Module: "A"}})
	b.Add(&LocalDefinition{Common: Common{Name: "x", Module: "A"}})
	b.Add(&ValueDefinition{Common: Common{Name: "v", Module: "B"}})
	g := b.Graph()

	got := g.InModule("A")
	if len(got) != 1 || got[0].Base().Name != "T" {
		t.Errorf("InModule(A) = %v", got)
	}
}

func TestTypeOfName(t *testing.T) {
	v := &ValueDefinition{Bindings: []Binding{{"a", types.NatType}, {"b", types.BoolType}}}
	if TypeOfName(v, "b") != types.BoolType {
		t.Error("expected bool for b")
	}
	l := &LocalDefinition{Common: Common{Name: "x"}}
	if !types.IsUnknown(TypeOfName(l, "x")) {
		t.Error("untyped local should read as unknown")
	}
}

func TestCallGraphRecursive(t *testing.T) {
	g := NewCallGraph()
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)
	g.AddEdge(3, 3)
	g.AddEdge(4, 1)

	rec := g.Recursive()
	if got := rec[1]; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("group of 1 = %v, want [1 2]", got)
	}
	if got := rec[3]; len(got) != 1 {
		t.Errorf("self-recursive 3 = %v", got)
	}
	if _, ok := rec[4]; ok {
		t.Error("4 is not recursive")
	}
}
