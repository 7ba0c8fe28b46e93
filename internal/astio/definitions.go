package astio

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"gopkg.in/yaml.v3"
)

var visibilities = map[string]ast.Visibility{
	"private":   ast.Private,
	"protected": ast.Protected,
	"public":    ast.Public,
}

// access decodes "public" or {visibility: public, static: true, ...}
func (d *decoder) access(n *yaml.Node) ast.Access {
	n = resolve(n)
	if n == nil {
		return ast.Access{}
	}
	if n.Kind == scalar {
		v, ok := visibilities[n.Value]
		if !ok {
			d.errorf(n, "unknown visibility %q", n.Value)
		}
		return ast.Access{Visibility: v}
	}
	o := d.object(n)
	if o == nil {
		return ast.Access{}
	}
	a := ast.Access{Static: o.bool("static"), Async: o.bool("async"), Pure: o.bool("pure")}
	if s := o.str("visibility"); s != "" {
		v, ok := visibilities[s]
		if !ok {
			d.errorf(o.node, "unknown visibility %q", s)
		}
		a.Visibility = v
	}
	d.finish(o)
	return a
}

func (d *decoder) definitions(ns []*yaml.Node) []ast.Definition {
	var out []ast.Definition
	for _, n := range ns {
		if def := d.definition(n); def != nil {
			out = append(out, def)
		}
	}
	return out
}

func (d *decoder) definition(n *yaml.Node) ast.Definition {
	o := d.object(n)
	if o == nil {
		return nil
	}
	line, col := o.pos()
	var def ast.Definition
	switch k := o.kind(); k {
	case "type":
		td := &ast.TypeDef{
			Name:   o.str("name"),
			Type:   d.typeRef(o.get("type")),
			Inv:    d.invClause(o.get("inv")),
			Eq:     d.relClause(o.get("eq")),
			Ord:    d.relClause(o.get("ord")),
			Access: d.access(o.get("access")),
			Line:   line,
			Column: col,
		}
		if fs := o.list("fields"); fs != nil {
			td.Type = &ast.RecordTypeRef{Fields: d.fields(fs), Line: line, Column: col}
		}
		if td.Type == nil {
			d.errorf(o.node, "type %q has no definition", td.Name)
		}
		def = td
	case "value":
		def = d.valueDef(o)
	case "state":
		def = &ast.StateDef{
			Name:   o.str("name"),
			Fields: d.fields(o.list("fields")),
			Inv:    d.invClause(o.get("inv")),
			Init:   d.invClause(o.get("init")),
			Line:   line,
			Column: col,
		}
	case "function":
		def = d.explicitFunction(o)
	case "implicit_function":
		def = &ast.ImplicitFunctionDef{
			Name:       o.str("name"),
			TypeParams: o.strings("type_params"),
			Params:     d.patternTypePairs(o.list("params")),
			Result:     d.nameTypePairs(o.list("result")),
			Body:       d.expr(o.get("body")),
			Pre:        d.expr(o.get("pre")),
			Post:       d.expr(o.get("post")),
			Measure:    d.expr(o.get("measure")),
			Access:     d.access(o.get("access")),
			Line:       line,
			Column:     col,
		}
	case "operation":
		def = d.explicitOperation(o)
	case "implicit_operation":
		op := &ast.ImplicitOperationDef{
			Name:      o.str("name"),
			Params:    d.patternTypePairs(o.list("params")),
			Externals: d.externals(o.list("ext")),
			Body:      d.stmt(o.get("body")),
			Pre:       d.expr(o.get("pre")),
			Post:      d.expr(o.get("post")),
			Access:    d.access(o.get("access")),
			Line:      line,
			Column:    col,
		}
		if rs := d.nameTypePairs(o.list("result")); len(rs) > 0 {
			op.Result = rs[0]
			if len(rs) > 1 {
				d.errorf(o.node, "an operation has at most one result")
			}
		}
		def = op
	case "instance_variable":
		def = &ast.InstanceVariableDef{
			Name:   o.str("name"),
			Type:   d.typeRef(o.get("type")),
			Init:   d.expr(o.get("init")),
			Access: d.access(o.get("access")),
			Line:   line,
			Column: col,
		}
	case "thread":
		def = &ast.ThreadDef{Body: d.stmt(o.get("body")), Line: line, Column: col}
	default:
		d.errorf(o.node, "unknown definition kind %q", k)
	}
	d.finish(o)
	return def
}

func (d *decoder) explicitFunction(o *object) *ast.ExplicitFunctionDef {
	f := &ast.ExplicitFunctionDef{
		Name:       o.str("name"),
		TypeParams: o.strings("type_params"),
		Body:       d.expr(o.get("body")),
		Pre:        d.expr(o.get("pre")),
		Post:       d.expr(o.get("post")),
		Measure:    d.expr(o.get("measure")),
		Access:     d.access(o.get("access")),
	}
	f.Line, f.Column = o.pos()
	if tn := o.get("type"); tn != nil {
		if to := d.object(tn); to != nil {
			if k := to.kind(); k != "" && k != "fn" {
				d.errorf(to.node, "function %q needs a function type", f.Name)
			}
			f.Type = d.fnType(to)
			d.finish(to)
		}
	} else {
		d.errorf(o.node, "function %q has no type", f.Name)
	}
	// params is a list of curried pattern lists; a flat list is one group
	for _, pn := range o.list("params") {
		if pn.Kind == yaml.SequenceNode {
			f.Params = append(f.Params, d.patterns(pn.Content))
			continue
		}
		if len(f.Params) == 0 {
			f.Params = append(f.Params, nil)
		}
		if p := d.pattern(pn); p != nil {
			f.Params[len(f.Params)-1] = append(f.Params[len(f.Params)-1], p)
		}
	}
	if o.has("params") && len(f.Params) == 0 {
		f.Params = [][]ast.Pattern{{}}
	}
	return f
}

func (d *decoder) explicitOperation(o *object) *ast.ExplicitOperationDef {
	op := &ast.ExplicitOperationDef{
		Name:   o.str("name"),
		Params: d.patterns(o.list("params")),
		Body:   d.stmt(o.get("body")),
		Pre:    d.expr(o.get("pre")),
		Post:   d.expr(o.get("post")),
		Access: d.access(o.get("access")),
	}
	op.Line, op.Column = o.pos()
	if tn := o.get("type"); tn != nil {
		if to := d.object(tn); to != nil {
			if k := to.kind(); k != "" && k != "op" {
				d.errorf(to.node, "operation %q needs an operation type", op.Name)
			}
			op.Type = d.opType(to)
			d.finish(to)
		}
	} else {
		op.Type = &ast.OperationTypeRef{Line: op.Line, Column: op.Column}
	}
	return op
}

func (d *decoder) invClause(n *yaml.Node) *ast.InvClause {
	if resolve(n) == nil {
		return nil
	}
	o := d.object(n)
	if o == nil {
		return nil
	}
	c := &ast.InvClause{Pattern: d.pattern(o.get("pattern")), Expr: d.expr(o.get("expr"))}
	c.Line, c.Column = o.pos()
	if c.Pattern == nil || c.Expr == nil {
		d.errorf(o.node, "clause needs a pattern and an expression")
	}
	d.finish(o)
	return c
}

func (d *decoder) relClause(n *yaml.Node) *ast.RelClause {
	if resolve(n) == nil {
		return nil
	}
	o := d.object(n)
	if o == nil {
		return nil
	}
	c := &ast.RelClause{
		Left:  d.pattern(o.get("left")),
		Right: d.pattern(o.get("right")),
		Expr:  d.expr(o.get("expr")),
	}
	c.Line, c.Column = o.pos()
	if c.Left == nil || c.Right == nil || c.Expr == nil {
		d.errorf(o.node, "clause needs two patterns and an expression")
	}
	d.finish(o)
	return c
}

func (d *decoder) patternTypePairs(ns []*yaml.Node) []*ast.PatternTypePair {
	var out []*ast.PatternTypePair
	for _, n := range ns {
		o := d.object(n)
		if o == nil {
			continue
		}
		p := &ast.PatternTypePair{Pattern: d.pattern(o.get("pattern")), Type: d.typeRef(o.get("type"))}
		p.Line, p.Column = o.pos()
		out = append(out, p)
		d.finish(o)
	}
	return out
}

func (d *decoder) nameTypePairs(ns []*yaml.Node) []*ast.NameTypePair {
	var out []*ast.NameTypePair
	for _, n := range ns {
		o := d.object(n)
		if o == nil {
			continue
		}
		p := &ast.NameTypePair{Name: o.str("name"), Type: d.typeRef(o.get("type"))}
		p.Line, p.Column = o.pos()
		out = append(out, p)
		d.finish(o)
	}
	return out
}

func (d *decoder) externals(ns []*yaml.Node) []*ast.ExternalClause {
	var out []*ast.ExternalClause
	for _, n := range ns {
		o := d.object(n)
		if o == nil {
			continue
		}
		c := &ast.ExternalClause{Names: o.strings("names"), Type: d.typeRef(o.get("type"))}
		c.Line, c.Column = o.pos()
		switch m := o.str("mode"); m {
		case "rd":
			c.Mode = ast.ExtRead
		case "wr":
			c.Mode = ast.ExtWrite
		default:
			d.errorf(o.node, "ext mode must be rd or wr, got %q", m)
		}
		out = append(out, c)
		d.finish(o)
	}
	return out
}
