package astio

import (
	"strings"

	"github.com/lhaig/vdmcheck/internal/ast"
	"gopkg.in/yaml.v3"
)

func (d *decoder) typeRefs(ns []*yaml.Node) []ast.TypeRef {
	out := make([]ast.TypeRef, 0, len(ns))
	for _, n := range ns {
		if t := d.typeRef(n); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// scalarType decodes the shorthand forms nat, T, M`T, @T and <Q>
func scalarType(n *yaml.Node) ast.TypeRef {
	v := n.Value
	switch {
	case ast.IsBasicTypeName(v):
		return &ast.BasicTypeRef{Name: v, Line: n.Line, Column: n.Column}
	case strings.HasPrefix(v, "@"):
		return &ast.ParamTypeRef{Name: v[1:], Line: n.Line, Column: n.Column}
	case isQuote(v):
		return &ast.QuoteTypeRef{Value: v[1 : len(v)-1], Line: n.Line, Column: n.Column}
	}
	mod, name := qualified(v)
	return &ast.NamedTypeRef{Module: mod, Name: name, Line: n.Line, Column: n.Column}
}

func isQuote(v string) bool {
	return len(v) > 2 && v[0] == '<' && v[len(v)-1] == '>'
}

// qualified splits M`x into its module and name
func qualified(v string) (string, string) {
	if i := strings.IndexByte(v, '`'); i > 0 {
		return v[:i], v[i+1:]
	}
	return "", v
}

func (d *decoder) typeRef(n *yaml.Node) ast.TypeRef {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind == scalar {
		if n.Value == "" {
			d.errorf(n, "empty type")
			return nil
		}
		return scalarType(n)
	}
	o := d.object(n)
	if o == nil {
		return nil
	}
	line, col := o.pos()
	var t ast.TypeRef
	switch k := o.kind(); k {
	case "basic":
		name := o.str("name")
		if !ast.IsBasicTypeName(name) {
			d.errorf(o.node, "%q is not a basic type", name)
		}
		t = &ast.BasicTypeRef{Name: name, Line: line, Column: col}
	case "named":
		t = &ast.NamedTypeRef{Module: o.str("module"), Name: o.str("name"), Line: line, Column: col}
	case "quote":
		t = &ast.QuoteTypeRef{Value: o.str("value"), Line: line, Column: col}
	case "set", "set1":
		t = &ast.SetTypeRef{Elem: d.typeRef(o.get("of")), NonEmpty: k == "set1" || o.bool("nonempty"), Line: line, Column: col}
	case "seq", "seq1":
		t = &ast.SeqTypeRef{Elem: d.typeRef(o.get("of")), NonEmpty: k == "seq1" || o.bool("nonempty"), Line: line, Column: col}
	case "map", "inmap":
		t = &ast.MapTypeRef{
			Dom:       d.typeRef(o.get("dom")),
			Rng:       d.typeRef(o.get("rng")),
			Injective: k == "inmap" || o.bool("injective"),
			Line:      line,
			Column:    col,
		}
	case "product":
		t = &ast.ProductTypeRef{Elems: d.typeRefs(o.list("elems")), Line: line, Column: col}
	case "union":
		t = &ast.UnionTypeRef{Members: d.typeRefs(o.list("members")), Line: line, Column: col}
	case "optional":
		t = &ast.OptionalTypeRef{Elem: d.typeRef(o.get("of")), Line: line, Column: col}
	case "record":
		t = &ast.RecordTypeRef{Fields: d.fields(o.list("fields")), Line: line, Column: col}
	case "fn":
		t = d.fnType(o)
	case "op":
		t = d.opType(o)
	case "param":
		t = &ast.ParamTypeRef{Name: o.str("name"), Line: line, Column: col}
	default:
		d.errorf(o.node, "unknown type kind %q", k)
	}
	d.finish(o)
	return t
}

func (d *decoder) fnType(o *object) *ast.FunctionTypeRef {
	line, col := o.pos()
	return &ast.FunctionTypeRef{
		Params: d.typeRefs(o.list("params")),
		Result: d.typeRef(o.get("result")),
		Total:  o.bool("total"),
		Line:   line,
		Column: col,
	}
}

func (d *decoder) opType(o *object) *ast.OperationTypeRef {
	line, col := o.pos()
	return &ast.OperationTypeRef{
		Params: d.typeRefs(o.list("params")),
		Result: d.typeRef(o.get("result")),
		Line:   line,
		Column: col,
	}
}

// fields decodes record or state fields
func (d *decoder) fields(ns []*yaml.Node) []*ast.Field {
	var out []*ast.Field
	for _, n := range ns {
		o := d.object(n)
		if o == nil {
			continue
		}
		f := &ast.Field{Tag: o.str("tag"), Type: d.typeRef(o.get("type")), EqAbstract: o.bool("abstract")}
		f.Line, f.Column = o.pos()
		if f.Type == nil {
			d.errorf(o.node, "field %q has no type", f.Tag)
		}
		out = append(out, f)
		d.finish(o)
	}
	return out
}
