package env

import (
	"testing"

	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/types"
)

func fixture() (defs.Graph, *Globals) {
	b := defs.NewBuilder(defs.NewGraph())
	x := &defs.ValueDefinition{Common: defs.Common{Name: "x", Module: "M", Scope: defs.ScopeGlobal, Type: types.NatType}}
	xid := b.Add(x)
	s := &defs.LocalDefinition{Common: defs.Common{Name: "count", Module: "M", Scope: defs.ScopeState, Type: types.IntType}}
	sid := b.Add(s)
	tdef := &defs.TypeDefinition{Common: defs.Common{Name: "T", Module: "M", Type: types.BoolType}}
	tid := b.Add(tdef)
	other := &defs.ValueDefinition{Common: defs.Common{Name: "y", Module: "N", Scope: defs.ScopeGlobal, Type: types.BoolType}}
	oid := b.Add(other)
	imp := &defs.RenamedDefinition{Common: defs.Common{Name: "yy", Module: "M", Scope: defs.ScopeGlobal}, From: "N", Original: "y", Target: oid}
	iid := b.Add(imp)

	g := NewGlobals("M").
		WithName("x", xid).
		WithName("count", sid).
		WithType("T", tid).
		WithName("yy", iid).
		WithQualified("N", "y", iid)
	return b.Graph(), g
}

func TestShadowing(t *testing.T) {
	g, globals := fixture()
	root := NewRoot(g, globals)

	local := &defs.LocalDefinition{Common: defs.Common{Name: "x", Scope: defs.ScopeLocal, Type: types.BoolType}}
	inner := root.Extend(local)

	d, out := inner.FindName("x", defs.ScopeNames)
	if out != Found || d != local {
		t.Fatalf("expected local x to shadow global, got %v (%v)", d, out)
	}
	d, out = root.FindName("x", defs.ScopeNames)
	if out != Found || d.Base().Type != types.NatType {
		t.Fatalf("expected global x from root, got %v (%v)", d, out)
	}
	if _, out := root.FindName("nope", defs.ScopeNames); out != NotFound {
		t.Errorf("expected NotFound, got %v", out)
	}
}

func TestScopeFilterHidesState(t *testing.T) {
	g, globals := fixture()
	root := NewRoot(g, globals)

	if _, out := root.FindName("count", defs.ScopeNames); out != HiddenByScope {
		t.Errorf("state should be hidden from a names-only lookup, got %v", out)
	}
	if _, out := root.FindName("count", defs.ScopeNamesAndState); out != Found {
		t.Errorf("state should be visible with NamesAndState, got %v", out)
	}
}

func TestStaticHidesInstanceState(t *testing.T) {
	g, globals := fixture()
	e := NewRoot(g, globals).Static().Extend()
	if !e.IsStatic() {
		t.Fatal("expected static context to propagate")
	}
	if _, out := e.FindName("count", defs.ScopeNamesAndState); out != HiddenByStatic {
		t.Errorf("expected HiddenByStatic, got %v", out)
	}
}

func TestImportsFollowTargets(t *testing.T) {
	g, globals := fixture()
	root := NewRoot(g, globals)

	d, out := root.FindName("yy", defs.ScopeNames)
	if out != Found || d.Base().Name != "y" {
		t.Fatalf("renamed import should resolve to y, got %v", d)
	}
	d, out = root.FindQualified("N", "y")
	if out != Found || d.Base().Module != "N" {
		t.Fatalf("qualified lookup failed: %v %v", d, out)
	}
	if _, out := root.FindQualified("Q", "y"); out != NotFound {
		t.Error("expected unimported module lookup to fail")
	}
}

func TestTypeParametersAndFlags(t *testing.T) {
	g, globals := fixture()
	e := NewRoot(g, globals).WithTypeParams([]string{"T"}).Functional().Enclosing(1)

	p, ok := e.TypeParameter("T")
	if !ok || p.Name != "T" {
		t.Fatal("expected type parameter T")
	}
	if _, ok := e.TypeParameter("U"); ok {
		t.Error("unexpected type parameter U")
	}
	if !e.IsFunctional() {
		t.Error("expected functional flag")
	}
	if d := e.EnclosingDefinition(); d == nil || d.Base().Name != "x" {
		t.Errorf("EnclosingDefinition = %v", d)
	}
	if e.FindType("T", "") == nil {
		t.Error("expected type T")
	}
	if e.Module() != "M" {
		t.Errorf("Module() = %q", e.Module())
	}
}
