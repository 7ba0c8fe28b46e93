package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/astio"
	"github.com/lhaig/vdmcheck/internal/checker"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/linter"
	"github.com/lhaig/vdmcheck/internal/pog"
)

// Options configures one pipeline run
type Options struct {
	Settings config.Settings
	// Logger receives stage transitions at debug level; nil discards
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Result holds the output of a pipeline run
type Result struct {
	// Check is nil when the input could not be decoded
	Check *checker.Result
	// Diagnostics holds input errors, checked errors and lint warnings
	Diagnostics *diagnostic.Diagnostics
	// Obligations is nil when generation was disabled or skipped because
	// the specification has checked errors
	Obligations *pog.List
}

// HasErrors reports whether the run produced any error diagnostic
func (r *Result) HasErrors() bool {
	return r.Diagnostics != nil && r.Diagnostics.HasErrors()
}

// Compile runs the full pipeline: check -> lint -> pog.
// Obligations are only generated for a specification without checked errors.
func Compile(ctx context.Context, spec *ast.Specification, opts Options) (*Result, error) {
	res, err := Check(ctx, spec, opts)
	if err != nil {
		return nil, err
	}
	if !opts.Settings.Obligations.Enabled || res.HasErrors() {
		return res, nil
	}

	log := opts.logger()
	list, err := pog.New(opts.Settings, log).Run(ctx, res.Check)
	if err != nil {
		return nil, fmt.Errorf("generate obligations: %w", err)
	}
	log.Debug("obligations generated", "count", list.Len())
	res.Obligations = list
	return res, nil
}

// Check runs check + lint only (no obligations).
func Check(ctx context.Context, spec *ast.Specification, opts Options) (*Result, error) {
	log := opts.logger()
	checked, err := checker.New(opts.Settings, log).Run(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}
	res := &Result{Check: checked, Diagnostics: diagnostic.New()}
	res.Diagnostics.Append(checked.Diagnostics)
	log.Debug("checked", "modules", len(checked.Modules), "errors", checked.Diagnostics.ErrorCount())

	if opts.Settings.Lint.Enabled && opts.Settings.Warnings {
		res.Diagnostics.Append(linter.Lint(checked, opts.Settings.Lint))
	}
	return res, nil
}

// Lint runs check and returns only the lint warnings. Checked errors are
// returned instead when the specification does not check.
func Lint(ctx context.Context, spec *ast.Specification, opts Options) (*diagnostic.Diagnostics, error) {
	checked, err := checker.New(opts.Settings, opts.logger()).Run(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}
	if checked.Diagnostics.HasErrors() {
		return checked.Diagnostics, nil
	}
	lint := opts.Settings.Lint
	lint.Enabled = true
	return linter.Lint(checked, lint), nil
}

// loadProject decodes the entry file and everything it reaches. A dialect
// named by the entry file applies unless opts already chose a non-default one.
func loadProject(entryPath string, opts *Options) (*ast.Specification, *diagnostic.Diagnostics, error) {
	reg, err := NewModuleRegistry(entryPath)
	if err != nil {
		return nil, nil, err
	}
	diag, err := reg.DiscoverDependencies()
	if err != nil {
		return nil, diag, err
	}
	if d := reg.Dialect(); d != "" && opts.Settings.Dialect == config.SL {
		dialect, err := config.ParseDialect(d)
		if err != nil {
			diag.ErrorfInFile(diagnostic.CodeInput, reg.entryPath, 1, 1, "%s", err)
		} else {
			opts.Settings = opts.Settings.WithDialect(dialect)
		}
	}
	spec, err := reg.Specification()
	if err != nil {
		return nil, diag, err
	}
	return spec, diag, nil
}

// CompileProject runs the multi-file pipeline: discover -> check -> lint -> pog.
// entryPath is the path to the entry file (e.g., "models/bank.yaml").
func CompileProject(ctx context.Context, entryPath string, opts Options) (*Result, error) {
	spec, diag, err := loadProject(entryPath, &opts)
	if err != nil {
		return nil, err
	}
	if diag.HasErrors() {
		return &Result{Diagnostics: diag}, nil
	}
	res, err := Compile(ctx, spec, opts)
	if err != nil {
		return nil, err
	}
	diag.Append(res.Diagnostics)
	res.Diagnostics = diag
	return res, nil
}

// CheckProject runs the multi-file pipeline up to lint (no obligations).
func CheckProject(ctx context.Context, entryPath string, opts Options) (*Result, error) {
	spec, diag, err := loadProject(entryPath, &opts)
	if err != nil {
		return nil, err
	}
	if diag.HasErrors() {
		return &Result{Diagnostics: diag}, nil
	}
	res, err := Check(ctx, spec, opts)
	if err != nil {
		return nil, err
	}
	diag.Append(res.Diagnostics)
	res.Diagnostics = diag
	return res, nil
}

// LintProject runs the multi-file pipeline and returns lint warnings only.
func LintProject(ctx context.Context, entryPath string, opts Options) (*diagnostic.Diagnostics, error) {
	spec, diag, err := loadProject(entryPath, &opts)
	if err != nil {
		return nil, err
	}
	if diag.HasErrors() {
		return diag, nil
	}
	lint, err := Lint(ctx, spec, opts)
	if err != nil {
		return nil, err
	}
	diag.Append(lint)
	return diag, nil
}

// ParseFile decodes a single input file without following its imports
func ParseFile(path string) (*ast.Specification, *diagnostic.Diagnostics, error) {
	doc, diag, err := astio.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return doc.Spec, diag, nil
}
