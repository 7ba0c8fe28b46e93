package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/lhaig/vdmcheck/internal/compiler"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/pog"
	"github.com/lhaig/vdmcheck/internal/store"
)

const usage = `vdmcheck - type checker and proof obligation generator for VDM models

Usage:
  vdmcheck check [options] <model.yaml>...    Type-check and lint
  vdmcheck pog [options] <model.yaml>...      Type-check and list proof obligations
  vdmcheck lint [options] <model.yaml>...     Run lint checks only
  vdmcheck export --db <file> [options] <model.yaml>
                                              Store obligations and diagnostics in SQLite
  vdmcheck runs --db <file>                   List runs stored in a database

Options:
  --config <file>     Read settings from a YAML file (default: vdmcheck.yaml if present)
  --dialect <d>       vdmsl, vdmpp or vdmrt (default: the model file's dialect, else vdmsl)
  --kind <k>          Only report obligations of this kind; may be repeated
  --strict            Treat strict-mode warnings as errors
  --no-warnings       Suppress warnings and lint
  --db <file>         Database used by export and runs
  -v                  Log pipeline stages to stderr

Multi-file support:
  A module imported with "from N", or a class inheriting from N, is loaded
  from N.yaml next to the entry file when no loaded file defines it.

Examples:
  vdmcheck check bank.yaml                   Check bank.yaml and what it imports
  vdmcheck pog --kind "non-zero" bank.yaml   Show division obligations only
  vdmcheck export --db pos.db bank.yaml      Record the run for discharge tooling
`

// defaultConfig is read when --config is not given and the file exists
const defaultConfig = "vdmcheck.yaml"

type options struct {
	configPath string
	dialect    string
	kinds      []string
	strict     bool
	noWarnings bool
	dbPath     string
	verbose    bool
	files      []string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "check", "pog", "lint", "export", "runs":
		opts := parseArgs(os.Args[2:])
		os.Exit(run(command, opts))
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func parseArgs(args []string) options {
	var opts options
	value := func(i *int, name string) string {
		if *i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "Error: %s needs a value\n", name)
			os.Exit(1)
		}
		*i++
		return args[*i]
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--config":
			opts.configPath = value(&i, arg)
		case "--dialect":
			opts.dialect = value(&i, arg)
		case "--kind":
			opts.kinds = append(opts.kinds, value(&i, arg))
		case "--db":
			opts.dbPath = value(&i, arg)
		case "--strict":
			opts.strict = true
		case "--no-warnings":
			opts.noWarnings = true
		case "-v", "--verbose":
			opts.verbose = true
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				os.Exit(1)
			}
			opts.files = append(opts.files, arg)
		}
	}
	return opts
}

// settings builds the run settings: defaults, then the config file, then flags
func (o options) settings() (config.Settings, error) {
	s := config.Default()
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfig); err == nil {
			path = defaultConfig
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return s, err
		}
		s = loaded
	}
	if o.dialect != "" {
		d, err := config.ParseDialect(o.dialect)
		if err != nil {
			return s, err
		}
		s = s.WithDialect(d)
	}
	for _, k := range o.kinds {
		if _, err := pog.ParseKind(k); err != nil {
			return s, err
		}
	}
	if len(o.kinds) > 0 {
		s.Obligations.Kinds = o.kinds
	}
	if o.strict {
		s.Strict = true
	}
	if o.noWarnings {
		s.Warnings = false
		s.Lint.Enabled = false
	}
	return s, s.Validate()
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func run(command string, opts options) int {
	log := newLogger(opts.verbose)
	out, errOut := newPrinter(os.Stdout), newPrinter(os.Stderr)

	if command == "runs" {
		return listRuns(opts)
	}
	if len(opts.files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		return 1
	}

	settings, err := opts.settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	copts := compiler.Options{Settings: settings, Logger: log}

	switch command {
	case "export":
		return export(opts, copts)
	case "lint":
		return lintAll(opts.files, copts, out)
	}

	results, err := analyseAll(command, opts.files, copts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	status := 0
	for i, res := range results {
		file := opts.files[i]
		if res.HasErrors() {
			status = 1
			fmt.Fprintln(os.Stderr, errOut.colour(res.Diagnostics.Format(file)))
			continue
		}
		if res.Diagnostics.Count() > 0 {
			fmt.Fprintln(os.Stdout, out.colour(res.Diagnostics.Format(file)))
		}
		if command == "pog" && res.Obligations != nil {
			printObligations(file, res.Obligations)
			continue
		}
		fmt.Printf("%s: no errors found.\n", file)
	}
	return status
}

// analyseAll runs each entry file as its own project, in parallel, and
// returns results in argument order
func analyseAll(command string, files []string, opts compiler.Options) ([]*compiler.Result, error) {
	results := make([]*compiler.Result, len(files))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			var res *compiler.Result
			var err error
			if command == "pog" {
				res, err = compiler.CompileProject(ctx, file, opts)
			} else {
				res, err = compiler.CheckProject(ctx, file, opts)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printObligations(file string, list *pog.List) {
	if list.Len() == 0 {
		fmt.Printf("%s: no proof obligations.\n", file)
		return
	}
	fmt.Println(list.String())
	fmt.Println()
	fmt.Printf("%s: %d proof obligation(s).\n", file, list.Len())
}

func lintAll(files []string, opts compiler.Options, out printer) int {
	status := 0
	for _, file := range files {
		diag, err := compiler.LintProject(context.Background(), file, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
		if diag.HasErrors() {
			status = 1
			fmt.Fprintln(os.Stderr, newPrinter(os.Stderr).colour(diag.Format(file)))
			continue
		}
		if diag.Count() == 0 {
			fmt.Printf("%s: no lint warnings.\n", file)
			continue
		}
		fmt.Println(out.colour(diag.Format(file)))
		fmt.Println()
		fmt.Printf("%s: %d warning(s) found.\n", file, diag.Count())
	}
	return status
}

func export(opts options, copts compiler.Options) int {
	if opts.dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: export needs --db <file>")
		return 1
	}
	if len(opts.files) != 1 {
		fmt.Fprintln(os.Stderr, "Error: export takes exactly one model file")
		return 1
	}
	file := opts.files[0]
	ctx := context.Background()

	res, err := compiler.CompileProject(ctx, file, copts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	db, err := store.Open(ctx, opts.dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer db.Close()

	// the entry file may have chosen the dialect
	dialect := copts.Settings.Dialect
	if res.Check != nil {
		dialect = res.Check.Settings.Dialect
	}
	source, _ := filepath.Abs(file)
	id, err := db.Save(ctx, store.Run{
		Source:  source,
		Dialect: dialect.String(),
		Created: time.Now(),
	}, res.Obligations, res.Diagnostics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	n := 0
	if res.Obligations != nil {
		n = res.Obligations.Len()
	}
	fmt.Printf("Stored run %d: %d obligation(s), %d error(s), %d warning(s)\n",
		id, n, res.Diagnostics.ErrorCount(), res.Diagnostics.WarningCount())
	if res.HasErrors() {
		return 1
	}
	return 0
}

func listRuns(opts options) int {
	if opts.dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: runs needs --db <file>")
		return 1
	}
	ctx := context.Background()
	db, err := store.Open(ctx, opts.dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer db.Close()

	runs, err := db.Runs(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Println("No runs stored.")
		return 0
	}
	for _, r := range runs {
		errs, err := db.DiagnosticCount(ctx, r.ID, diagnostic.Error)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
		fmt.Printf("%4d  %s  %-6s  %4d obligation(s)  %d error(s)  %s\n",
			r.ID, r.Run.Created.Local().Format(time.DateTime), r.Run.Dialect, r.Obligations, errs, r.Run.Source)
	}
	return 0
}

// printer colours diagnostic severities when writing to a terminal
type printer struct {
	enabled bool
}

func newPrinter(f *os.File) printer {
	if os.Getenv("NO_COLOR") != "" {
		return printer{}
	}
	fd := f.Fd()
	return printer{enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

const (
	red    = "\x1b[31m"
	yellow = "\x1b[33m"
	cyan   = "\x1b[36m"
	reset  = "\x1b[0m"
)

func (p printer) colour(text string) string {
	if !p.enabled {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, sev := range []struct{ prefix, code string }{
			{"error[", red},
			{"warning[", yellow},
			{"info[", cyan},
		} {
			if strings.HasPrefix(line, sev.prefix) {
				name := strings.TrimSuffix(sev.prefix, "[")
				lines[i] = sev.code + name + reset + line[len(name):]
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}
