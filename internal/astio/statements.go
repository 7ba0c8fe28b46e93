package astio

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"gopkg.in/yaml.v3"
)

func (d *decoder) stmts(ns []*yaml.Node) []ast.Statement {
	out := make([]ast.Statement, 0, len(ns))
	for _, n := range ns {
		if s := d.stmt(n); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (d *decoder) stmt(n *yaml.Node) ast.Statement {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind == scalar {
		switch n.Value {
		case "skip":
			return &ast.SkipStmt{Line: n.Line, Column: n.Column}
		case "error":
			return &ast.ErrorStmt{Line: n.Line, Column: n.Column}
		case "not_yet_spec":
			return &ast.NotYetSpecStmt{Line: n.Line, Column: n.Column}
		case "subclass_resp":
			return &ast.SubclassRespStmt{Line: n.Line, Column: n.Column}
		}
		d.errorf(n, "unknown statement %q", n.Value)
		return nil
	}
	if n.Kind == yaml.SequenceNode {
		return &ast.BlockStmt{Stmts: d.stmts(n.Content), Line: n.Line, Column: n.Column}
	}
	o := d.object(n)
	if o == nil {
		return nil
	}
	line, col := o.pos()
	var s ast.Statement
	switch k := o.kind(); k {
	case "assign":
		s = d.assign(o)
	case "atomic":
		as := &ast.AtomicStmt{Line: line, Column: col}
		for _, an := range o.list("assigns") {
			ao := d.object(an)
			if ao == nil {
				continue
			}
			as.Assigns = append(as.Assigns, d.assign(ao))
			d.finish(ao)
		}
		s = as
	case "block":
		b := &ast.BlockStmt{Stmts: d.stmts(o.list("stmts")), Line: line, Column: col}
		for _, dn := range o.list("dcls") {
			do := d.object(dn)
			if do == nil {
				continue
			}
			dcl := &ast.DclStmt{Name: do.str("name"), Type: d.typeRef(do.get("type")), Init: d.expr(do.get("init"))}
			dcl.Line, dcl.Column = do.pos()
			b.Dcls = append(b.Dcls, dcl)
			d.finish(do)
		}
		s = b
	case "call":
		s = &ast.CallStmt{Module: o.str("module"), Name: o.str("name"), Args: d.exprs(o.list("args")), Line: line, Column: col}
	case "object_call":
		s = &ast.ObjectCallStmt{Object: d.expr(o.get("object")), Name: o.str("name"), Args: d.exprs(o.list("args")), Line: line, Column: col}
	case "return":
		s = &ast.ReturnStmt{Value: d.expr(o.get("value")), Line: line, Column: col}
	case "if":
		is := &ast.IfStmt{Cond: d.expr(o.get("cond")), Then: d.stmt(o.get("then")), Else: d.stmt(o.get("else")), Line: line, Column: col}
		for _, en := range o.list("elseifs") {
			eo := d.object(en)
			if eo == nil {
				continue
			}
			ei := &ast.ElseIfStmt{Cond: d.expr(eo.get("cond")), Then: d.stmt(eo.get("then"))}
			ei.Line, ei.Column = eo.pos()
			is.ElseIfs = append(is.ElseIfs, ei)
			d.finish(eo)
		}
		s = is
	case "cases":
		cs := &ast.CasesStmt{Subject: d.expr(o.get("subject")), Others: d.stmt(o.get("others")), Line: line, Column: col}
		for _, an := range o.list("alts") {
			ao := d.object(an)
			if ao == nil {
				continue
			}
			alt := &ast.CaseStmtAlt{Patterns: d.patterns(ao.list("patterns")), Body: d.stmt(ao.get("body"))}
			alt.Line, alt.Column = ao.pos()
			cs.Alts = append(cs.Alts, alt)
			d.finish(ao)
		}
		s = cs
	case "let":
		s = &ast.LetStmt{Defs: d.localValues(o.list("defs")), Body: d.stmt(o.get("body")), Line: line, Column: col}
	case "let_be":
		s = &ast.LetBeStStmt{Bind: d.multiBind(o.get("bind")), SuchThat: d.expr(o.get("st")), Body: d.stmt(o.get("body")), Line: line, Column: col}
	case "while":
		s = &ast.WhileStmt{Cond: d.expr(o.get("cond")), Body: d.stmt(o.get("body")), Line: line, Column: col}
	case "for_index":
		s = &ast.ForIndexStmt{
			Var:    o.str("var"),
			From:   d.expr(o.get("from")),
			To:     d.expr(o.get("to")),
			By:     d.expr(o.get("by")),
			Body:   d.stmt(o.get("body")),
			Line:   line,
			Column: col,
		}
	case "for_set":
		s = &ast.ForSetStmt{Pattern: d.pattern(o.get("pattern")), Set: d.expr(o.get("set")), Body: d.stmt(o.get("body")), Line: line, Column: col}
	case "for_seq":
		s = &ast.ForSeqStmt{
			Pattern: d.pattern(o.get("pattern")),
			Seq:     d.expr(o.get("seq")),
			Reverse: o.bool("reverse"),
			Body:    d.stmt(o.get("body")),
			Line:    line,
			Column:  col,
		}
	case "skip":
		s = &ast.SkipStmt{Line: line, Column: col}
	case "error":
		s = &ast.ErrorStmt{Line: line, Column: col}
	case "exit":
		s = &ast.ExitStmt{Value: d.expr(o.get("value")), Line: line, Column: col}
	case "not_yet_spec":
		s = &ast.NotYetSpecStmt{Line: line, Column: col}
	case "subclass_resp":
		s = &ast.SubclassRespStmt{Line: line, Column: col}
	default:
		d.errorf(o.node, "unknown statement kind %q", k)
	}
	d.finish(o)
	return s
}

func (d *decoder) assign(o *object) *ast.AssignStmt {
	a := &ast.AssignStmt{Target: d.designator(o.get("target")), Value: d.expr(o.get("value"))}
	a.Line, a.Column = o.pos()
	if a.Target == nil || a.Value == nil {
		d.errorf(o.node, "assignment needs a target and a value")
	}
	return a
}

// designator decodes x, {object: d, field: f} or {object: d, index: e}
func (d *decoder) designator(n *yaml.Node) ast.Designator {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind == scalar {
		return &ast.NameDesignator{Name: n.Value, Line: n.Line, Column: n.Column}
	}
	o := d.object(n)
	if o == nil {
		return nil
	}
	line, col := o.pos()
	var des ast.Designator
	switch {
	case o.has("field"):
		des = &ast.FieldDesignator{Object: d.designator(o.get("object")), Field: o.str("field"), Line: line, Column: col}
	case o.has("index"):
		des = &ast.IndexDesignator{Object: d.designator(o.get("object")), Index: d.expr(o.get("index")), Line: line, Column: col}
	case o.has("name"):
		des = &ast.NameDesignator{Name: o.str("name"), Line: line, Column: col}
	default:
		d.errorf(o.node, "designator needs a name, a field or an index")
	}
	d.finish(o)
	return des
}
