package diagnostic

import (
	"strings"
	"testing"
)

func TestDuplicateOccurrenceReportedOnce(t *testing.T) {
	d := New()
	d.Errorf(CodeTypeMismatch, 3, 4, "expected %s, got %s", "nat", "bool")
	d.Errorf(CodeTypeMismatch, 3, 4, "expected %s, got %s", "nat", "bool")
	d.Errorf(CodeTypeMismatch, 5, 1, "expected %s, got %s", "nat", "bool")

	if d.ErrorCount() != 2 {
		t.Fatalf("expected 2 errors, got %d", d.ErrorCount())
	}
}

func TestTruncate(t *testing.T) {
	d := New()
	d.Errorf(CodeUnknownName, 1, 1, "unknown name 'a'")
	mark := d.Mark()
	d.Errorf(CodeUnknownName, 2, 1, "unknown name 'b'")
	d.Warningf(CodeUnused, 2, 5, "unused")
	if len(d.Since(mark)) != 2 {
		t.Fatalf("expected 2 diagnostics since mark, got %d", len(d.Since(mark)))
	}
	d.Truncate(mark)
	if d.Count() != 1 {
		t.Fatalf("expected 1 diagnostic after truncate, got %d", d.Count())
	}

	// A truncated occurrence can be reported again.
	d.Errorf(CodeUnknownName, 2, 1, "unknown name 'b'")
	if d.Count() != 2 {
		t.Errorf("expected re-reported diagnostic to be kept, got %d", d.Count())
	}
}

func TestFormat(t *testing.T) {
	d := New()
	d.SetFile("bank.vdmsl")
	d.Warningf(CodeUnused, 9, 2, "unused local definition 'z'")
	d.ErrorWithHint(CodeUnknownName, 3, 10, "unknown name 'x'", "did you mean 'y'?")

	out := d.Format("ignored.vdmsl")
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if lines[0] != "error[E1001 bank.vdmsl:3:10]: unknown name 'x'" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "  hint: did you mean 'y'?" {
		t.Errorf("unexpected hint line: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "warning[W2001 bank.vdmsl:9:2]") {
		t.Errorf("unexpected warning line: %q", lines[2])
	}
}

func TestWithCode(t *testing.T) {
	d := New()
	d.Errorf(CodeMeasure, 1, 1, "a")
	d.Errorf(CodeArity, 2, 1, "b")
	d.Errorf(CodeMeasure, 3, 1, "c")
	if got := len(d.WithCode(CodeMeasure)); got != 2 {
		t.Errorf("expected 2 measure diagnostics, got %d", got)
	}
}
