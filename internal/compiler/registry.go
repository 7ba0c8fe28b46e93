package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/astio"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
)

// inputExtensions are tried, in order, when a module name is resolved to a file
var inputExtensions = []string{".yaml", ".yml"}

// ModuleRegistry manages decoded input files and the modules they define.
// It discovers every file reachable from an entry file using BFS: a module
// imported with "from N", or a class inheriting from N, that no loaded file
// defines is looked up as N.yaml next to the entry file.
type ModuleRegistry struct {
	files        map[string]*astio.Document // absolute file path -> decoded file
	dependencies map[string][]string        // absolute file path -> files it needs
	defines      map[string]string          // module or class name -> defining file
	entryPath    string                     // absolute path to the entry point file
	projectRoot  string                     // directory containing the entry file
}

// NewModuleRegistry creates a new registry rooted at the given entry file.
// The entryPath is resolved to an absolute path, and projectRoot is set to
// the directory containing the entry file.
func NewModuleRegistry(entryPath string) (*ModuleRegistry, error) {
	absPath, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entry path: %w", err)
	}

	return &ModuleRegistry{
		files:        make(map[string]*astio.Document),
		dependencies: make(map[string][]string),
		defines:      make(map[string]string),
		entryPath:    absPath,
		projectRoot:  filepath.Dir(absPath),
	}, nil
}

// DiscoverDependencies performs BFS from the entry file, decoding each
// discovered file and collecting the module names it refers to. Returns
// diagnostics for malformed input (with file paths set) and an error for
// fatal issues like an unreadable entry file or a YAML syntax error.
func (r *ModuleRegistry) DiscoverDependencies() (*diagnostic.Diagnostics, error) {
	diag := diagnostic.New()
	queue := []string{r.entryPath}
	visited := make(map[string]bool)
	// names already looked up on disk and not found
	missing := make(map[string]bool)

	for len(queue) > 0 {
		filePath := queue[0]
		queue = queue[1:]

		if visited[filePath] {
			continue
		}
		visited[filePath] = true

		doc, fileDiag, err := astio.Load(filePath)
		if err != nil {
			return diag, err
		}
		diag.Append(fileDiag)
		r.files[filePath] = doc
		r.register(filePath, doc, diag)

		var deps []string
		for _, name := range references(doc.Spec) {
			if def, ok := r.defines[name]; ok {
				if def != filePath {
					deps = append(deps, def)
				}
				continue
			}
			if missing[name] {
				continue
			}
			resolved := r.resolveModulePath(name)
			if resolved == "" {
				// Left to the checker, which reports the unknown name in context
				missing[name] = true
				continue
			}
			deps = append(deps, resolved)
			if !visited[resolved] {
				queue = append(queue, resolved)
			}
		}
		r.dependencies[filePath] = dedupe(deps)
	}

	return diag, nil
}

// register records the modules and classes a file defines. A name defined by
// two files is an error in the second one.
func (r *ModuleRegistry) register(filePath string, doc *astio.Document, diag *diagnostic.Diagnostics) {
	add := func(name string, line, col int) {
		if prev, ok := r.defines[name]; ok && prev != filePath {
			diag.ErrorfInFile(diagnostic.CodeDuplicate, filePath, line, col,
				"'%s' is already defined in %s", name, filepath.Base(prev))
			return
		}
		r.defines[name] = filePath
	}
	for _, m := range doc.Spec.Modules {
		add(m.Name, m.Line, m.Column)
	}
	for _, c := range doc.Spec.Classes {
		add(c.Name, c.Line, c.Column)
	}
}

// references lists the module and class names a specification depends on.
// Instance variable types count too, since a class usually holds objects of
// other classes.
func references(spec *ast.Specification) []string {
	var out []string
	for _, m := range spec.Modules {
		for _, imp := range m.Imports {
			out = append(out, imp.Module)
		}
	}
	for _, c := range spec.Classes {
		out = append(out, c.Supertypes...)
		for _, d := range c.Defs {
			if iv, ok := d.(*ast.InstanceVariableDef); ok {
				if n, ok := iv.Type.(*ast.NamedTypeRef); ok && n.Module == "" {
					out = append(out, n.Name)
				}
			}
		}
	}
	return out
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Order returns files in dependency order (dependencies first, entry file
// last). Modules may import each other, so a cycle is not an error: the walk
// just does not revisit a file it has already entered.
func (r *ModuleRegistry) Order() []string {
	var sorted []string
	entered := make(map[string]bool)

	var visit func(path string)
	visit = func(path string) {
		if entered[path] {
			return
		}
		entered[path] = true
		for _, dep := range r.dependencies[path] {
			visit(dep)
		}
		sorted = append(sorted, path)
	}

	// Start from the entry path to ensure deterministic ordering
	visit(r.entryPath)

	// Files not reachable from the entry cannot occur after discovery, but a
	// sorted sweep keeps the output stable if they do
	var rest []string
	for path := range r.files {
		if !entered[path] {
			rest = append(rest, path)
		}
	}
	sort.Strings(rest)
	for _, path := range rest {
		visit(path)
	}
	return sorted
}

// Specification merges every discovered file, in dependency order, into one
// specification. Mixing flat modules and classes is an error.
func (r *ModuleRegistry) Specification() (*ast.Specification, error) {
	spec := &ast.Specification{}
	for _, path := range r.Order() {
		doc := r.files[path]
		if doc == nil {
			continue
		}
		spec.Modules = append(spec.Modules, doc.Spec.Modules...)
		spec.Classes = append(spec.Classes, doc.Spec.Classes...)
	}
	if len(spec.Modules) > 0 && len(spec.Classes) > 0 {
		return nil, fmt.Errorf("project mixes modules and classes")
	}
	return spec, nil
}

// Dialect returns the dialect named by the entry file, if any
func (r *ModuleRegistry) Dialect() string {
	if doc := r.files[r.entryPath]; doc != nil {
		return doc.Dialect
	}
	return ""
}

// GetFile returns the decoded document for a given absolute file path,
// or nil if the path has not been discovered.
func (r *ModuleRegistry) GetFile(path string) *astio.Document {
	return r.files[path]
}

// AllFiles returns all decoded files keyed by their absolute file paths.
func (r *ModuleRegistry) AllFiles() map[string]*astio.Document {
	return r.files
}

// DefiningFile returns the file that defines the named module or class
func (r *ModuleRegistry) DefiningFile(name string) (string, bool) {
	path, ok := r.defines[name]
	return path, ok
}

// resolveModulePath finds the file for a module name relative to the project
// root. For example, "Bank" resolves to "/project/root/Bank.yaml".
func (r *ModuleRegistry) resolveModulePath(name string) string {
	for _, ext := range inputExtensions {
		path := filepath.Clean(filepath.Join(r.projectRoot, name+ext))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
