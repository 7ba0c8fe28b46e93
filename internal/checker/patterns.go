package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// local returns a new local definition for a name bound by a pattern
func (c *Checker) local(name string, at ast.Node, t types.Type) *defs.LocalDefinition {
	l := &defs.LocalDefinition{Common: defs.Common{
		Name:   name,
		Module: c.module.Name,
		Loc:    defs.LocOf(c.module.File, at),
		Scope:  defs.ScopeLocal,
		Status: defs.CheckedOK,
		Pass:   defs.PassDefs,
		Type:   t,
	}}
	if c.current != nil && c.current.Base().Role == defs.RoleNone {
		id := c.current.Base().ID
		c.locals[id] = append(c.locals[id], l)
	}
	return l
}

// bindPattern checks that p can match a value of type t and returns the
// locals it binds
func (c *Checker) bindPattern(p ast.Pattern, t types.Type, e *env.Env) []defs.Definition {
	var out []defs.Definition
	c.bindInto(p, t, e, &out)
	return out
}

func (c *Checker) bindInto(p ast.Pattern, t types.Type, e *env.Env, out *[]defs.Definition) {
	if t == nil {
		t = types.UnknownType
	}
	switch p := p.(type) {
	case *ast.IdentifierPattern:
		*out = append(*out, c.local(p.Name, p, t))

	case *ast.IgnorePattern:

	case *ast.LiteralPattern:
		lt := c.checkExpr(p.Lit, e)
		if !types.Compatible(lt, t) {
			c.errorf(p, diagnostic.CodePattern, "pattern %s cannot match a value of type %s", ast.Print(p.Lit), t)
		}

	case *ast.ExprPattern:
		xt := c.checkExpr(p.Expr, e)
		if !types.Compatible(xt, t) {
			c.errorf(p, diagnostic.CodePattern, "pattern (%s) cannot match a value of type %s", ast.Print(p.Expr), t)
		}

	case *ast.TuplePattern:
		if types.IsUnknown(t) {
			c.bindAllUnknown(p.Elems, e, out)
			return
		}
		prod, ok := types.ProductOf(t, len(p.Elems))
		if !ok {
			c.errorf(p, diagnostic.CodePattern, "tuple pattern of %d elements cannot match %s", len(p.Elems), t)
			c.bindAllUnknown(p.Elems, e, out)
			return
		}
		for i, el := range p.Elems {
			c.bindInto(el, prod.Elems[i], e, out)
		}

	case *ast.RecordPattern:
		var rec *types.Record
		if d := e.FindType(p.Type, ""); d != nil {
			c.marks.Use(d.Base().ID)
			rec, _ = types.Unfold(d.Base().Type).(*types.Record)
		}
		if rec == nil {
			c.errorf(p, diagnostic.CodeUnknownType, "unknown record type '%s'", p.Type)
			c.bindAllUnknown(p.Fields, e, out)
			return
		}
		if !types.IsUnknown(t) && !types.Compatible(rec, t) {
			c.errorf(p, diagnostic.CodePattern, "mk_%s pattern cannot match a value of type %s", p.Type, t)
		}
		if len(p.Fields) != len(rec.Fields) {
			c.errorf(p, diagnostic.CodePattern, "mk_%s pattern has %d fields, the record has %d", p.Type, len(p.Fields), len(rec.Fields))
			c.bindAllUnknown(p.Fields, e, out)
			return
		}
		for i, f := range p.Fields {
			c.bindInto(f, rec.Fields[i].Type, e, out)
		}

	case *ast.SetEnumPattern:
		elem, ok := types.SetOf(t)
		if !ok {
			c.errorf(p, diagnostic.CodePattern, "set pattern cannot match a value of type %s", t)
		}
		for _, el := range p.Elems {
			c.bindInto(el, elem, e, out)
		}

	case *ast.SeqEnumPattern:
		elem, ok := types.SeqOf(t)
		if !ok {
			c.errorf(p, diagnostic.CodePattern, "sequence pattern cannot match a value of type %s", t)
		}
		for _, el := range p.Elems {
			c.bindInto(el, elem, e, out)
		}

	case *ast.UnionPattern:
		if _, ok := types.SetOf(t); !ok {
			c.errorf(p, diagnostic.CodePattern, "union pattern cannot match a value of type %s", t)
			t = types.UnknownType
		}
		c.bindInto(p.Left, t, e, out)
		c.bindInto(p.Right, t, e, out)

	case *ast.ConcatPattern:
		if _, ok := types.SeqOf(t); !ok {
			c.errorf(p, diagnostic.CodePattern, "concatenation pattern cannot match a value of type %s", t)
			t = types.UnknownType
		}
		c.bindInto(p.Left, t, e, out)
		c.bindInto(p.Right, t, e, out)

	default:
		c.internalf("cannot bind pattern %T", p)
	}
}

func (c *Checker) bindAllUnknown(ps []ast.Pattern, e *env.Env, out *[]defs.Definition) {
	for _, p := range ps {
		c.bindInto(p, types.UnknownType, e, out)
	}
}

// checkBinders reports a name bound twice within one parameter list
func (c *Checker) checkBinders(ps []ast.Pattern) {
	seen := map[string]bool{}
	for _, p := range ps {
		for _, name := range ast.PatternNames(p) {
			if seen[name] {
				c.errorf(p, diagnostic.CodeDuplicateBinder, "duplicate pattern identifier '%s'", name)
			}
			seen[name] = true
		}
	}
}

// isCatchAll reports whether p matches every value
func isCatchAll(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.IdentifierPattern, *ast.IgnorePattern:
		return true
	}
	return false
}

// noteShadowing records a cases pattern that binds a name already visible,
// so the obligations under it cannot be evaluated as written
func (c *Checker) noteShadowing(p ast.Pattern, e *env.Env) {
	for _, name := range ast.PatternNames(p) {
		if _, out := e.FindName(name, defs.ScopeNamesAndAnyState); out != env.NotFound {
			c.shadowing[p] = true
			c.warnf(p, diagnostic.CodeShadow, "pattern identifier '%s' hides an outer definition", name)
		}
	}
}

// checkMultipleBind checks a multiple bind and returns the locals of all its patterns
func (c *Checker) checkMultipleBind(b ast.MultipleBind, e *env.Env) []defs.Definition {
	var elem types.Type
	switch b := b.(type) {
	case *ast.MultiSetBind:
		st := c.checkExpr(b.Set, e)
		var ok bool
		if elem, ok = types.SetOf(st); !ok {
			c.errorf(b, diagnostic.CodeQualifier, "set bind needs a set, got %s", st)
		}
	case *ast.MultiTypeBind:
		elem = c.resolveType(b.Type, e)
	case *ast.MultiSeqBind:
		st := c.checkExpr(b.Seq, e)
		var ok bool
		if elem, ok = types.SeqOf(st); !ok {
			c.errorf(b, diagnostic.CodeQualifier, "sequence bind needs a sequence, got %s", st)
		}
	default:
		c.internalf("unknown bind %T", b)
		return nil
	}
	var out []defs.Definition
	for _, p := range ast.BindPatterns(b) {
		c.bindInto(p, elem, e, &out)
	}
	return out
}

// checkBind checks a single bind and returns its element type and locals
func (c *Checker) checkBind(b ast.Bind, e *env.Env) (types.Type, []defs.Definition) {
	var elem types.Type
	var p ast.Pattern
	switch b := b.(type) {
	case *ast.SetBind:
		st := c.checkExpr(b.Set, e)
		var ok bool
		if elem, ok = types.SetOf(st); !ok {
			c.errorf(b, diagnostic.CodeQualifier, "set bind needs a set, got %s", st)
		}
		p = b.Pattern
	case *ast.TypeBind:
		elem = c.resolveType(b.Type, e)
		p = b.Pattern
	case *ast.SeqBind:
		st := c.checkExpr(b.Seq, e)
		var ok bool
		if elem, ok = types.SeqOf(st); !ok {
			c.errorf(b, diagnostic.CodeQualifier, "sequence bind needs a sequence, got %s", st)
		}
		p = b.Pattern
	default:
		c.internalf("unknown bind %T", b)
		return types.UnknownType, nil
	}
	return elem, c.bindPattern(p, elem, e)
}
