package astio

import (
	"strings"
	"unicode/utf8"

	"github.com/lhaig/vdmcheck/internal/ast"
	"gopkg.in/yaml.v3"
)

func (d *decoder) exprs(ns []*yaml.Node) []ast.Expression {
	out := make([]ast.Expression, 0, len(ns))
	for _, n := range ns {
		if e := d.expr(n); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// scalarExpr decodes literals and names written as plain scalars
func (d *decoder) scalarExpr(n *yaml.Node) ast.Expression {
	line, col := n.Line, n.Column
	switch n.ShortTag() {
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			d.errorf(n, "bad integer %q", n.Value)
		}
		return &ast.IntLit{Value: v, Line: line, Column: col}
	case "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			d.errorf(n, "bad real %q", n.Value)
		}
		return &ast.RealLit{Value: v, Line: line, Column: col}
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			d.errorf(n, "bad boolean %q", n.Value)
		}
		return &ast.BoolLit{Value: v, Line: line, Column: col}
	case "!!null":
		return &ast.NilLit{Line: line, Column: col}
	}
	v := n.Value
	switch {
	case v == "":
		d.errorf(n, "empty expression")
		return nil
	case v == "self":
		return &ast.SelfExpr{Line: line, Column: col}
	case v == "nil":
		return &ast.NilLit{Line: line, Column: col}
	case isQuote(v):
		return &ast.QuoteLit{Value: v[1 : len(v)-1], Line: line, Column: col}
	case strings.HasSuffix(v, "~"):
		return &ast.OldName{Name: strings.TrimSuffix(v, "~"), Line: line, Column: col}
	}
	mod, name := qualified(v)
	return &ast.Variable{Module: mod, Name: name, Line: line, Column: col}
}

func (d *decoder) op(o *object, unary bool) ast.Op {
	s := o.str("op")
	op, ok := ast.LookupOp(s)
	if !ok || (unary && !op.IsUnary()) {
		d.errorf(o.node, "unknown operator %q", s)
	}
	return op
}

func (d *decoder) expr(n *yaml.Node) ast.Expression {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind == scalar {
		return d.scalarExpr(n)
	}
	o := d.object(n)
	if o == nil {
		return nil
	}
	line, col := o.pos()
	var e ast.Expression
	switch k := o.kind(); k {
	case "bool":
		e = &ast.BoolLit{Value: o.bool("value"), Line: line, Column: col}
	case "int":
		var v int64
		if vn := o.get("value"); vn != nil {
			if err := vn.Decode(&v); err != nil {
				d.errorf(vn, "bad integer %q", vn.Value)
			}
		}
		e = &ast.IntLit{Value: v, Line: line, Column: col}
	case "real":
		var v float64
		if vn := o.get("value"); vn != nil {
			if err := vn.Decode(&v); err != nil {
				d.errorf(vn, "bad real %q", vn.Value)
			}
		}
		e = &ast.RealLit{Value: v, Line: line, Column: col}
	case "char":
		s := o.str("value")
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) {
			d.errorf(o.node, "char literal must hold exactly one character, got %q", s)
		}
		e = &ast.CharLit{Value: r, Line: line, Column: col}
	case "quote":
		e = &ast.QuoteLit{Value: o.str("value"), Line: line, Column: col}
	case "text":
		e = &ast.TextLit{Value: o.str("value"), Line: line, Column: col}
	case "nil":
		e = &ast.NilLit{Line: line, Column: col}
	case "var":
		e = &ast.Variable{Module: o.str("module"), Name: o.str("name"), Line: line, Column: col}
	case "old":
		e = &ast.OldName{Name: o.str("name"), Line: line, Column: col}
	case "self":
		e = &ast.SelfExpr{Line: line, Column: col}
	case "unary":
		e = &ast.UnaryExpr{Op: d.op(o, true), Operand: d.expr(o.get("operand")), Line: line, Column: col}
	case "binary":
		e = &ast.BinaryExpr{Op: d.op(o, false), Left: d.expr(o.get("left")), Right: d.expr(o.get("right")), Line: line, Column: col}
	case "apply":
		e = &ast.ApplyExpr{Fn: d.expr(o.get("fn")), Args: d.exprs(o.list("args")), Line: line, Column: col}
	case "field":
		e = &ast.FieldExpr{Object: d.expr(o.get("object")), Field: o.str("field"), Line: line, Column: col}
	case "tuple_select":
		e = &ast.TupleSelectExpr{Tuple: d.expr(o.get("tuple")), Index: o.int("index"), Line: line, Column: col}
	case "if":
		ie := &ast.IfExpr{Cond: d.expr(o.get("cond")), Then: d.expr(o.get("then")), Else: d.expr(o.get("else")), Line: line, Column: col}
		for _, en := range o.list("elseifs") {
			eo := d.object(en)
			if eo == nil {
				continue
			}
			ei := &ast.ElseIf{Cond: d.expr(eo.get("cond")), Then: d.expr(eo.get("then"))}
			ei.Line, ei.Column = eo.pos()
			ie.ElseIfs = append(ie.ElseIfs, ei)
			d.finish(eo)
		}
		e = ie
	case "cases":
		ce := &ast.CasesExpr{Subject: d.expr(o.get("subject")), Others: d.expr(o.get("others")), Line: line, Column: col}
		for _, an := range o.list("alts") {
			ao := d.object(an)
			if ao == nil {
				continue
			}
			alt := &ast.CaseAlt{Patterns: d.patterns(ao.list("patterns")), Result: d.expr(ao.get("result"))}
			alt.Line, alt.Column = ao.pos()
			ce.Alts = append(ce.Alts, alt)
			d.finish(ao)
		}
		e = ce
	case "let":
		e = &ast.LetExpr{Defs: d.localValues(o.list("defs")), Body: d.expr(o.get("body")), Line: line, Column: col}
	case "let_be":
		e = &ast.LetBeStExpr{Bind: d.multiBind(o.get("bind")), SuchThat: d.expr(o.get("st")), Body: d.expr(o.get("body")), Line: line, Column: col}
	case "forall", "exists":
		q := ast.Forall
		if k == "exists" {
			q = ast.Exists
		}
		e = &ast.QuantifiedExpr{Quantifier: q, Binds: d.multiBinds(o.list("binds")), Pred: d.expr(o.get("pred")), Line: line, Column: col}
	case "exists1":
		e = &ast.Exists1Expr{Bind: d.bind(o.get("bind")), Pred: d.expr(o.get("pred")), Line: line, Column: col}
	case "iota":
		e = &ast.IotaExpr{Bind: d.bind(o.get("bind")), Pred: d.expr(o.get("pred")), Line: line, Column: col}
	case "set":
		e = &ast.SetEnumExpr{Elems: d.exprs(o.list("elems")), Line: line, Column: col}
	case "seq":
		e = &ast.SeqEnumExpr{Elems: d.exprs(o.list("elems")), Line: line, Column: col}
	case "map":
		me := &ast.MapEnumExpr{Line: line, Column: col}
		for _, mn := range o.list("maplets") {
			if m := d.maplet(mn); m != nil {
				me.Maplets = append(me.Maplets, m)
			}
		}
		e = me
	case "set_comp":
		e = &ast.SetCompExpr{Elem: d.expr(o.get("elem")), Binds: d.multiBinds(o.list("binds")), Pred: d.expr(o.get("pred")), Line: line, Column: col}
	case "seq_comp":
		e = &ast.SeqCompExpr{Elem: d.expr(o.get("elem")), Bind: d.bind(o.get("bind")), Pred: d.expr(o.get("pred")), Line: line, Column: col}
	case "map_comp":
		m := &ast.Maplet{Key: d.expr(o.get("key")), Value: d.expr(o.get("value")), Line: line, Column: col}
		e = &ast.MapCompExpr{Maplet: m, Binds: d.multiBinds(o.list("binds")), Pred: d.expr(o.get("pred")), Line: line, Column: col}
	case "set_range":
		e = &ast.SetRangeExpr{Low: d.expr(o.get("low")), High: d.expr(o.get("high")), Line: line, Column: col}
	case "subseq":
		e = &ast.SubseqExpr{Seq: d.expr(o.get("seq")), From: d.expr(o.get("from")), To: d.expr(o.get("to")), Line: line, Column: col}
	case "tuple":
		e = &ast.TupleExpr{Elems: d.exprs(o.list("elems")), Line: line, Column: col}
	case "record":
		e = &ast.RecordExpr{Module: o.str("module"), Type: o.str("type"), Args: d.exprs(o.list("args")), Line: line, Column: col}
	case "mu":
		mu := &ast.MuExpr{Record: d.expr(o.get("record")), Line: line, Column: col}
		for _, mn := range o.list("mods") {
			mo := d.object(mn)
			if mo == nil {
				continue
			}
			m := &ast.RecordModifier{Tag: mo.str("tag"), Value: d.expr(mo.get("value"))}
			m.Line, m.Column = mo.pos()
			mu.Mods = append(mu.Mods, m)
			d.finish(mo)
		}
		e = mu
	case "is":
		e = &ast.IsExpr{Type: d.typeRef(o.get("type")), Arg: d.expr(o.get("arg")), Line: line, Column: col}
	case "narrow":
		e = &ast.NarrowExpr{Arg: d.expr(o.get("arg")), Type: d.typeRef(o.get("type")), Line: line, Column: col}
	case "lambda":
		le := &ast.LambdaExpr{Body: d.expr(o.get("body")), Line: line, Column: col}
		for _, pn := range o.list("params") {
			if tb, ok := d.bind(pn).(*ast.TypeBind); ok {
				le.Params = append(le.Params, tb)
			} else {
				d.errorf(pn, "lambda parameters must be type binds")
			}
		}
		e = le
	case "inst":
		e = &ast.FuncInstExpr{Fn: d.expr(o.get("fn")), Types: d.typeRefs(o.list("types")), Line: line, Column: col}
	case "new":
		e = &ast.NewExpr{Class: o.str("class"), Args: d.exprs(o.list("args")), Line: line, Column: col}
	case "subclass_resp":
		e = &ast.SubclassRespExpr{Line: line, Column: col}
	case "not_yet_spec":
		e = &ast.NotYetSpecExpr{Line: line, Column: col}
	case "undefined":
		e = &ast.UndefinedExpr{Line: line, Column: col}
	default:
		d.errorf(o.node, "unknown expression kind %q", k)
	}
	d.finish(o)
	return e
}

func (d *decoder) maplet(n *yaml.Node) *ast.Maplet {
	o := d.object(n)
	if o == nil {
		return nil
	}
	m := &ast.Maplet{Key: d.expr(o.get("key")), Value: d.expr(o.get("value"))}
	m.Line, m.Column = o.pos()
	d.finish(o)
	return m
}

// localValues decodes the definitions of a let
func (d *decoder) localValues(ns []*yaml.Node) []*ast.ValueDef {
	var out []*ast.ValueDef
	for _, n := range ns {
		o := d.object(n)
		if o == nil {
			continue
		}
		out = append(out, d.valueDef(o))
		d.finish(o)
	}
	return out
}

func (d *decoder) valueDef(o *object) *ast.ValueDef {
	v := &ast.ValueDef{
		Pattern: d.pattern(o.get("pattern")),
		Value:   d.expr(o.get("value")),
		Access:  d.access(o.get("access")),
	}
	v.Line, v.Column = o.pos()
	if t := o.get("type"); t != nil {
		v.Type = d.typeRef(t)
	}
	if v.Pattern == nil || v.Value == nil {
		d.errorf(o.node, "value definition needs a pattern and a value")
	}
	return v
}

// --- Patterns ---

func (d *decoder) patterns(ns []*yaml.Node) []ast.Pattern {
	out := make([]ast.Pattern, 0, len(ns))
	for _, n := range ns {
		if p := d.pattern(n); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (d *decoder) pattern(n *yaml.Node) ast.Pattern {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind == scalar {
		switch {
		case n.Value == "-":
			return &ast.IgnorePattern{Line: n.Line, Column: n.Column}
		case n.ShortTag() != "!!str" || isQuote(n.Value):
			return &ast.LiteralPattern{Lit: d.scalarExpr(n), Line: n.Line, Column: n.Column}
		}
		return &ast.IdentifierPattern{Name: n.Value, Line: n.Line, Column: n.Column}
	}
	o := d.object(n)
	if o == nil {
		return nil
	}
	line, col := o.pos()
	var p ast.Pattern
	switch k := o.kind(); k {
	case "id":
		p = &ast.IdentifierPattern{Name: o.str("name"), Line: line, Column: col}
	case "ignore":
		p = &ast.IgnorePattern{Line: line, Column: col}
	case "literal":
		p = &ast.LiteralPattern{Lit: d.expr(o.get("value")), Line: line, Column: col}
	case "expr":
		p = &ast.ExprPattern{Expr: d.expr(o.get("expr")), Line: line, Column: col}
	case "tuple":
		p = &ast.TuplePattern{Elems: d.patterns(o.list("elems")), Line: line, Column: col}
	case "record":
		p = &ast.RecordPattern{Type: o.str("type"), Fields: d.patterns(o.list("fields")), Line: line, Column: col}
	case "set":
		p = &ast.SetEnumPattern{Elems: d.patterns(o.list("elems")), Line: line, Column: col}
	case "seq":
		p = &ast.SeqEnumPattern{Elems: d.patterns(o.list("elems")), Line: line, Column: col}
	case "union":
		p = &ast.UnionPattern{Left: d.pattern(o.get("left")), Right: d.pattern(o.get("right")), Line: line, Column: col}
	case "concat":
		p = &ast.ConcatPattern{Left: d.pattern(o.get("left")), Right: d.pattern(o.get("right")), Line: line, Column: col}
	default:
		d.errorf(o.node, "unknown pattern kind %q", k)
	}
	d.finish(o)
	return p
}

// --- Binds ---

// bind decodes {pattern: p, set: e}, {pattern: p, type: T} or
// {pattern: p, seq: e}
func (d *decoder) bind(n *yaml.Node) ast.Bind {
	o := d.object(n)
	if o == nil {
		return nil
	}
	line, col := o.pos()
	p := d.pattern(o.get("pattern"))
	var b ast.Bind
	switch {
	case o.has("set"):
		b = &ast.SetBind{Pattern: p, Set: d.expr(o.get("set")), Line: line, Column: col}
	case o.has("type"):
		b = &ast.TypeBind{Pattern: p, Type: d.typeRef(o.get("type")), Line: line, Column: col}
	case o.has("seq"):
		b = &ast.SeqBind{Pattern: p, Seq: d.expr(o.get("seq")), Line: line, Column: col}
	default:
		d.errorf(o.node, "bind needs one of set, type or seq")
	}
	d.finish(o)
	return b
}

func (d *decoder) multiBinds(ns []*yaml.Node) []ast.MultipleBind {
	var out []ast.MultipleBind
	for _, n := range ns {
		if b := d.multiBind(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// multiBind decodes {patterns: [p, q], set: e} and its type and seq forms.
// A single "pattern" key is accepted in place of "patterns".
func (d *decoder) multiBind(n *yaml.Node) ast.MultipleBind {
	o := d.object(n)
	if o == nil {
		return nil
	}
	line, col := o.pos()
	ps := d.patterns(o.list("patterns"))
	if p := d.pattern(o.get("pattern")); p != nil {
		ps = append(ps, p)
	}
	if len(ps) == 0 {
		d.errorf(o.node, "bind has no patterns")
	}
	var b ast.MultipleBind
	switch {
	case o.has("set"):
		b = &ast.MultiSetBind{Patterns: ps, Set: d.expr(o.get("set")), Line: line, Column: col}
	case o.has("type"):
		b = &ast.MultiTypeBind{Patterns: ps, Type: d.typeRef(o.get("type")), Line: line, Column: col}
	case o.has("seq"):
		b = &ast.MultiSeqBind{Patterns: ps, Seq: d.expr(o.get("seq")), Line: line, Column: col}
	default:
		d.errorf(o.node, "bind needs one of set, type or seq")
	}
	d.finish(o)
	return b
}
