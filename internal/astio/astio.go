// Package astio decodes the parser's output tree from YAML.
//
// Parsing concrete VDM syntax happens outside this repository; the parser
// hands over its tree as a YAML document:
//
//	dialect: vdmsl
//	modules:
//	  - name: M
//	    defs:
//	      - kind: function
//	        name: inc
//	        type: {kind: fn, params: [nat], result: nat}
//	        params: [[x]]
//	        body: {kind: binary, op: "+", left: x, right: 1}
//
// Every node is a mapping with a "kind" key, except where a plain scalar is
// unambiguous: a scalar type is a basic or named type ("@T" is a type
// parameter, "<Q>" a quote), a scalar expression is a literal or a variable
// ("M`x" is qualified, "x~" an old name), and a scalar pattern is an
// identifier ("-" is the ignore pattern). Positions come from "line" and
// "col" keys when present, otherwise from the YAML node itself. A function
// type is partial ("->") unless it carries "total: true" ("+>").
package astio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"gopkg.in/yaml.v3"
)

// Document is one decoded input file
type Document struct {
	// Dialect is the dialect named by the file, empty if it names none.
	Dialect string
	Spec    *ast.Specification
}

// Load reads and decodes the file at path
func Load(path string) (*Document, *diagnostic.Diagnostics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("astio: open %s: %w", path, err)
	}
	defer f.Close()
	doc, diag, err := Decode(f, path)
	if err != nil {
		return nil, nil, fmt.Errorf("astio: %s: %w", path, err)
	}
	return doc, diag, nil
}

// Parse decodes a document held in memory
func Parse(data []byte, file string) (*Document, *diagnostic.Diagnostics, error) {
	return Decode(bytes.NewReader(data), file)
}

// Decode reads one YAML document from r. A YAML syntax error is returned as
// an error; a well-formed document that does not describe a valid tree yields
// input diagnostics and a partial tree.
func Decode(r io.Reader, file string) (*Document, *diagnostic.Diagnostics, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	d := &decoder{file: file, diags: diagnostic.New()}
	d.diags.SetFile(file)
	doc := &Document{Spec: &ast.Specification{}}
	if root.Kind == 0 {
		return doc, d.diags, nil
	}
	n := &root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	o := d.object(n)
	if o == nil {
		return doc, d.diags, nil
	}
	doc.Dialect = o.str("dialect")
	for _, m := range o.list("modules") {
		if mod := d.module(m); mod != nil {
			doc.Spec.Modules = append(doc.Spec.Modules, mod)
		}
	}
	for _, c := range o.list("classes") {
		if cls := d.class(c); cls != nil {
			doc.Spec.Classes = append(doc.Spec.Classes, cls)
		}
	}
	d.finish(o)
	return doc, d.diags, nil
}

// decoder turns YAML nodes into tree nodes, reporting malformed input as
// diagnostics and carrying on with whatever it could decode
type decoder struct {
	file  string
	diags *diagnostic.Diagnostics
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...interface{}) {
	line, col := 0, 0
	if n != nil {
		line, col = n.Line, n.Column
	}
	d.diags.Errorf(diagnostic.CodeInput, line, col, format, args...)
}

// object is a mapping node with its keys indexed. Keys read through its
// accessors are marked so that finish can report the rest as unknown.
// Scalars that do not decode are reported through d.
type object struct {
	d      *decoder
	node   *yaml.Node
	fields map[string]*yaml.Node
	used   map[string]bool

	// position, once worked out
	placed    bool
	line, col int
}

// object indexes a mapping node; any other node is an error
func (d *decoder) object(n *yaml.Node) *object {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		d.errorf(n, "expected a mapping")
		return nil
	}
	o := &object{
		d:      d,
		node:   n,
		fields: make(map[string]*yaml.Node, len(n.Content)/2),
		used:   map[string]bool{"line": true, "col": true},
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if _, dup := o.fields[key.Value]; dup {
			d.errorf(key, "duplicate key %q", key.Value)
			continue
		}
		o.fields[key.Value] = n.Content[i+1]
	}
	return o
}

// finish reports the keys of o that nothing read
func (d *decoder) finish(o *object) {
	var unknown []string
	for k := range o.fields {
		if !o.used[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		d.errorf(o.fields[k], "unknown key %q", k)
	}
}

// resolve follows aliases
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func (o *object) get(key string) *yaml.Node {
	o.used[key] = true
	n := resolve(o.fields[key])
	if n != nil && n.ShortTag() == "!!null" {
		return nil
	}
	return n
}

func (o *object) has(key string) bool {
	return o.get(key) != nil
}

func (o *object) str(key string) string {
	if n := o.get(key); n != nil && n.Kind == yaml.ScalarNode {
		return n.Value
	}
	return ""
}

func (o *object) bool(key string) bool {
	var b bool
	if n := o.get(key); n != nil {
		if err := n.Decode(&b); err != nil {
			o.d.errorf(n, "%s: expected a boolean, got %q", key, n.Value)
		}
	}
	return b
}

func (o *object) int(key string) int {
	var i int
	if n := o.get(key); n != nil {
		if err := n.Decode(&i); err != nil {
			o.d.errorf(n, "%s: expected an integer, got %q", key, n.Value)
		}
	}
	return i
}

// list returns the items of a sequence; a single non-sequence value is
// treated as a one-element list
func (o *object) list(key string) []*yaml.Node {
	n := o.get(key)
	if n == nil {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return []*yaml.Node{n}
	}
	items := make([]*yaml.Node, 0, len(n.Content))
	for _, c := range n.Content {
		items = append(items, resolve(c))
	}
	return items
}

func (o *object) strings(key string) []string {
	var out []string
	for _, n := range o.list(key) {
		if n.Kind == scalar {
			out = append(out, n.Value)
		}
	}
	return out
}

const scalar = yaml.ScalarNode

// pos returns the position of o: explicit line/col keys win over the
// position of the YAML mapping
func (o *object) pos() (int, int) {
	if o.placed {
		return o.line, o.col
	}
	line, col := o.node.Line, o.node.Column
	if n := resolve(o.fields["line"]); n != nil {
		if err := n.Decode(&line); err != nil {
			o.d.errorf(n, "line: expected an integer, got %q", n.Value)
		}
		col = 0
	}
	if n := resolve(o.fields["col"]); n != nil {
		if err := n.Decode(&col); err != nil {
			o.d.errorf(n, "col: expected an integer, got %q", n.Value)
		}
	}
	o.placed, o.line, o.col = true, line, col
	return line, col
}

// kind returns the "kind" key
func (o *object) kind() string {
	return o.str("kind")
}

func (d *decoder) module(n *yaml.Node) *ast.Module {
	o := d.object(n)
	if o == nil {
		return nil
	}
	m := &ast.Module{Name: o.str("name"), File: o.str("file")}
	m.Line, m.Column = o.pos()
	if m.File == "" {
		m.File = d.file
	}
	if m.Name == "" {
		m.Name = "DEFAULT"
	}
	for _, imp := range o.list("imports") {
		if i := d.importFrom(imp); i != nil {
			m.Imports = append(m.Imports, i)
		}
	}
	if n := o.get("exports"); n != nil {
		m.Exports = d.exports(n)
	}
	m.Defs = d.definitions(o.list("defs"))
	d.finish(o)
	return m
}

func (d *decoder) class(n *yaml.Node) *ast.Class {
	o := d.object(n)
	if o == nil {
		return nil
	}
	c := &ast.Class{Name: o.str("name"), File: o.str("file"), Supertypes: o.strings("supertypes")}
	c.Line, c.Column = o.pos()
	if c.File == "" {
		c.File = d.file
	}
	if c.Name == "" {
		d.errorf(o.node, "class has no name")
	}
	c.Defs = d.definitions(o.list("defs"))
	d.finish(o)
	return c
}

var importKinds = map[string]ast.ImportKind{
	"types":      ast.ImportType,
	"type":       ast.ImportType,
	"values":     ast.ImportValue,
	"value":      ast.ImportValue,
	"functions":  ast.ImportFunction,
	"function":   ast.ImportFunction,
	"operations": ast.ImportOperation,
	"operation":  ast.ImportOperation,
}

func (d *decoder) importKind(o *object) ast.ImportKind {
	k, ok := importKinds[o.kind()]
	if !ok {
		d.errorf(o.node, "unknown import kind %q", o.kind())
	}
	return k
}

func (d *decoder) importFrom(n *yaml.Node) *ast.ImportFrom {
	o := d.object(n)
	if o == nil {
		return nil
	}
	imp := &ast.ImportFrom{Module: o.str("from"), All: o.bool("all")}
	imp.Line, imp.Column = o.pos()
	if imp.Module == "" {
		d.errorf(o.node, "import has no \"from\" module")
	}
	for _, in := range o.list("items") {
		it := d.object(in)
		if it == nil {
			continue
		}
		item := &ast.ImportItem{
			Kind:    d.importKind(it),
			Name:    it.str("name"),
			Renamed: it.str("renamed"),
		}
		item.Line, item.Column = it.pos()
		if t := it.get("type"); t != nil {
			item.Type = d.typeRef(t)
		}
		imp.Items = append(imp.Items, item)
		d.finish(it)
	}
	d.finish(o)
	return imp
}

func (d *decoder) exports(n *yaml.Node) *ast.Exports {
	if n.Kind == scalar {
		if n.Value != "all" {
			d.errorf(n, "exports must be \"all\" or a mapping")
		}
		return &ast.Exports{All: true, Line: n.Line, Column: n.Column}
	}
	o := d.object(n)
	if o == nil {
		return nil
	}
	ex := &ast.Exports{All: o.bool("all")}
	ex.Line, ex.Column = o.pos()
	for _, in := range o.list("items") {
		it := d.object(in)
		if it == nil {
			continue
		}
		item := &ast.ExportItem{
			Kind:   d.importKind(it),
			Name:   it.str("name"),
			Struct: it.bool("struct"),
		}
		item.Line, item.Column = it.pos()
		if t := it.get("type"); t != nil {
			item.Type = d.typeRef(t)
		}
		ex.Items = append(ex.Items, item)
		d.finish(it)
	}
	d.finish(o)
	return ex
}
