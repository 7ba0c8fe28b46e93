package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInternal marks a violated invariant of the checker itself. It aborts
// analysis of the current unit instead of producing unsound output.
var ErrInternal = errors.New("internal checker error")

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single checked error, warning, or info message
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Line     int
	Column   int
	File     string // optional file path (for multi-file compilation)
	Hint     string // optional suggestion
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
	seen  map[string]bool
	file  string
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
		seen:  make(map[string]bool),
	}
}

// SetFile sets the file attached to subsequently added diagnostics
func (d *Diagnostics) SetFile(file string) {
	d.file = file
}

// add records item unless an identical one was already reported at the same
// position. Derived definitions re-check their parent's clauses, so the same
// occurrence can be reached twice.
func (d *Diagnostics) add(item Diagnostic) {
	if item.File == "" {
		item.File = d.file
	}
	key := fmt.Sprintf("%s:%d:%d:%s:%s", item.File, item.Line, item.Column, item.Code, item.Message)
	if d.seen[key] {
		return
	}
	d.seen[key] = true
	d.items = append(d.items, item)
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(code Code, line, col int, format string, args ...interface{}) {
	d.add(Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(code Code, line, col int, format string, args ...interface{}) {
	d.add(Diagnostic{
		Severity: Warning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Infof adds an info diagnostic with formatted message
func (d *Diagnostics) Infof(code Code, line, col int, format string, args ...interface{}) {
	d.add(Diagnostic{
		Severity: Info,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// ErrorWithHint adds an error diagnostic with an optional hint
func (d *Diagnostics) ErrorWithHint(code Code, line, col int, msg, hint string) {
	d.add(Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  msg,
		Line:     line,
		Column:   col,
		Hint:     hint,
	})
}

// WarningWithHint adds a warning diagnostic with an optional hint
func (d *Diagnostics) WarningWithHint(code Code, line, col int, msg, hint string) {
	d.add(Diagnostic{
		Severity: Warning,
		Code:     code,
		Message:  msg,
		Line:     line,
		Column:   col,
		Hint:     hint,
	})
}

// ErrorfInFile adds an error diagnostic with file path and formatted message
func (d *Diagnostics) ErrorfInFile(code Code, file string, line, col int, format string, args ...interface{}) {
	d.add(Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
		File:     file,
	})
}

// Mark returns a position that Truncate can roll back to
func (d *Diagnostics) Mark() int {
	return len(d.items)
}

// Truncate discards every diagnostic added after mark. The checker uses it
// to drop the messages of a definition that is deferred to a later pass.
func (d *Diagnostics) Truncate(mark int) {
	if mark < 0 || mark >= len(d.items) {
		return
	}
	for _, item := range d.items[mark:] {
		delete(d.seen, fmt.Sprintf("%s:%d:%d:%s:%s", item.File, item.Line, item.Column, item.Code, item.Message))
	}
	d.items = d.items[:mark]
}

// Since returns the diagnostics added after mark
func (d *Diagnostics) Since(mark int) []Diagnostic {
	if mark < 0 || mark >= len(d.items) {
		return nil
	}
	return d.items[mark:]
}

// Append adds every diagnostic from other
func (d *Diagnostics) Append(other *Diagnostics) {
	for _, item := range other.items {
		d.add(item)
	}
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// WithCode returns the diagnostics carrying code
func (d *Diagnostics) WithCode(code Code) []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Code == code {
			out = append(out, item)
		}
	}
	return out
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Sorted returns all diagnostics ordered by file and position. Ties keep
// the order in which they were reported.
func (d *Diagnostics) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Warning {
			count++
		}
	}
	return count
}

// Format returns human-readable error messages
// Output format:
//
//	error[E1005 spec.vdmsl:3:10]: expected nat, got bool
//	  hint: did you mean 'y'?
//	warning[W2001 spec.vdmsl:5:1]: unused local definition 'z'
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.Sorted() {
		// Use item.File if set, otherwise use the filename parameter
		fileToUse := filename
		if item.File != "" {
			fileToUse = item.File
		}

		builder.WriteString(fmt.Sprintf("%s[%s %s:%d:%d]: %s",
			item.Severity.String(),
			item.Code,
			fileToUse,
			item.Line,
			item.Column,
			item.Message,
		))

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n  hint: %s", item.Hint))
		}

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = make([]Diagnostic, 0)
	d.seen = make(map[string]bool)
}
