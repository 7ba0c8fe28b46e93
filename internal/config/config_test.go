package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	s, err := Parse([]byte(`
dialect: vdmpp
release: classic
lint:
  naming: true
obligations:
  kinds: [non-zero, subtype]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Dialect != PP {
		t.Errorf("dialect = %s, want vdmpp", s.Dialect)
	}
	if s.Release != Classic {
		t.Errorf("release = %s, want classic", s.Release)
	}
	if !s.Lint.Naming || !s.Lint.Unused {
		t.Errorf("lint settings not merged with defaults: %+v", s.Lint)
	}
	if !s.WantsKind("non-zero") || s.WantsKind("cases exhaustive") {
		t.Errorf("kind filter not applied: %v", s.Obligations.Kinds)
	}
}

func TestParseEmptyIsDefault(t *testing.T) {
	s, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Dialect != SL || s.Release != VDM10 || !s.Warnings {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("dialekt: vdmsl\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestParseRejectsBadDialect(t *testing.T) {
	_, err := Parse([]byte("dialect: cobol\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown dialect") {
		t.Fatalf("expected unknown dialect error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	_, err := Parse([]byte("warnings: false\n"))
	if err == nil {
		t.Fatal("expected lint without warnings to be rejected")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vdmcheck.yaml")
	if err := os.WriteFile(path, []byte("dialect: rt\nstrict: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Dialect != RT || !s.Strict {
		t.Errorf("unexpected settings: %+v", s)
	}
	if !s.Dialect.HasClasses() {
		t.Error("vdmrt should be class based")
	}
}

func TestWithDialectCopies(t *testing.T) {
	base := Default()
	pp := base.WithDialect(PP)
	if base.Dialect != SL {
		t.Error("WithDialect modified the receiver")
	}
	if pp.Dialect != PP {
		t.Error("WithDialect did not apply")
	}
}
