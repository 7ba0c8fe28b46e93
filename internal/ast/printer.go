package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders an expression, pattern, bind or type reference as VDM text.
// Obligation conditions are printed through this function, so the output
// must be stable for a given tree.
func Print(node Node) string {
	var sb strings.Builder
	p := &printer{sb: &sb}
	p.node(node)
	return sb.String()
}

type printer struct {
	sb *strings.Builder
}

func (p *printer) write(s string) { p.sb.WriteString(s) }

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case nil:
		return
	case Expression:
		p.expr(n, 0)
	case Pattern:
		p.pattern(n)
	case Bind:
		p.bind(n)
	case MultipleBind:
		p.multiBind(n)
	case TypeRef:
		p.typeRef(n)
	default:
		p.write(fmt.Sprintf("<%T>", n))
	}
}

func (p *printer) exprs(es []Expression, sep string) {
	for i, e := range es {
		if i > 0 {
			p.write(sep)
		}
		p.expr(e, 0)
	}
}

// expr prints e, wrapping it in parentheses when its own precedence is lower
// than the surrounding context's.
func (p *printer) expr(e Expression, ctx int) {
	switch n := e.(type) {
	case *BoolLit:
		p.write(strconv.FormatBool(n.Value))
	case *IntLit:
		p.write(strconv.FormatInt(n.Value, 10))
	case *RealLit:
		p.write(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *CharLit:
		p.write("'" + string(n.Value) + "'")
	case *QuoteLit:
		p.write("<" + n.Value + ">")
	case *TextLit:
		p.write(strconv.Quote(n.Value))
	case *NilLit:
		p.write("nil")
	case *Variable:
		if n.Module != "" {
			p.write(n.Module + "`")
		}
		p.write(n.Name)
	case *OldName:
		p.write(n.Name + "~")
	case *SelfExpr:
		p.write("self")

	case *UnaryExpr:
		prec := NOT.precedence()
		if n.Op != NOT {
			prec = 10
		}
		open := prec < ctx
		if open {
			p.write("(")
		}
		switch n.Op {
		case MINUS, PLUS:
			p.write(n.Op.String())
		default:
			p.write(n.Op.String() + " ")
		}
		p.expr(n.Operand, prec+1)
		if open {
			p.write(")")
		}

	case *BinaryExpr:
		prec := n.Op.precedence()
		open := prec < ctx
		if open {
			p.write("(")
		}
		// Right-associative operators bind the left operand tighter.
		left, right := prec, prec+1
		if n.Op == IMPLIES || n.Op == STARSTAR {
			left, right = prec+1, prec
		}
		p.expr(n.Left, left)
		p.write(" " + n.Op.String() + " ")
		p.expr(n.Right, right)
		if open {
			p.write(")")
		}

	case *ApplyExpr:
		p.expr(n.Fn, 12)
		p.write("(")
		p.exprs(n.Args, ", ")
		p.write(")")
	case *FieldExpr:
		p.expr(n.Object, 12)
		p.write("." + n.Field)
	case *TupleSelectExpr:
		p.expr(n.Tuple, 12)
		p.write(fmt.Sprintf(".#%d", n.Index))

	case *IfExpr:
		p.open(ctx)
		p.write("if ")
		p.expr(n.Cond, 0)
		p.write(" then ")
		p.expr(n.Then, 0)
		for _, ei := range n.ElseIfs {
			p.write(" elseif ")
			p.expr(ei.Cond, 0)
			p.write(" then ")
			p.expr(ei.Then, 0)
		}
		p.write(" else ")
		p.expr(n.Else, 0)
		p.close(ctx)

	case *CasesExpr:
		p.write("cases ")
		p.expr(n.Subject, 0)
		p.write(":")
		for i, alt := range n.Alts {
			if i > 0 {
				p.write(",")
			}
			p.write(" ")
			p.patterns(alt.Patterns)
			p.write(" -> ")
			p.expr(alt.Result, 0)
		}
		if n.Others != nil {
			if len(n.Alts) > 0 {
				p.write(",")
			}
			p.write(" others -> ")
			p.expr(n.Others, 0)
		}
		p.write(" end")

	case *LetExpr:
		p.open(ctx)
		p.write("let ")
		for i, d := range n.Defs {
			if i > 0 {
				p.write(", ")
			}
			p.pattern(d.Pattern)
			if d.Type != nil {
				p.write(":")
				p.typeRef(d.Type)
			}
			p.write(" = ")
			p.expr(d.Value, 0)
		}
		p.write(" in ")
		p.expr(n.Body, 0)
		p.close(ctx)

	case *LetBeStExpr:
		p.open(ctx)
		p.write("let ")
		p.multiBind(n.Bind)
		if n.SuchThat != nil {
			p.write(" be st ")
			p.expr(n.SuchThat, 0)
		}
		p.write(" in ")
		p.expr(n.Body, 0)
		p.close(ctx)

	case *QuantifiedExpr:
		p.open(ctx)
		if n.Quantifier == Forall {
			p.write("forall ")
		} else {
			p.write("exists ")
		}
		p.multiBinds(n.Binds)
		p.write(" & ")
		p.expr(n.Pred, 0)
		p.close(ctx)
	case *Exists1Expr:
		p.open(ctx)
		p.write("exists1 ")
		p.bind(n.Bind)
		p.write(" & ")
		p.expr(n.Pred, 0)
		p.close(ctx)
	case *IotaExpr:
		p.open(ctx)
		p.write("iota ")
		p.bind(n.Bind)
		p.write(" & ")
		p.expr(n.Pred, 0)
		p.close(ctx)

	case *SetEnumExpr:
		p.write("{")
		p.exprs(n.Elems, ", ")
		p.write("}")
	case *SeqEnumExpr:
		p.write("[")
		p.exprs(n.Elems, ", ")
		p.write("]")
	case *MapEnumExpr:
		if len(n.Maplets) == 0 {
			p.write("{|->}")
			return
		}
		p.write("{")
		for i, m := range n.Maplets {
			if i > 0 {
				p.write(", ")
			}
			p.maplet(m)
		}
		p.write("}")
	case *SetCompExpr:
		p.write("{")
		p.expr(n.Elem, 0)
		p.write(" | ")
		p.multiBinds(n.Binds)
		if n.Pred != nil {
			p.write(" & ")
			p.expr(n.Pred, 0)
		}
		p.write("}")
	case *SeqCompExpr:
		p.write("[")
		p.expr(n.Elem, 0)
		p.write(" | ")
		p.bind(n.Bind)
		if n.Pred != nil {
			p.write(" & ")
			p.expr(n.Pred, 0)
		}
		p.write("]")
	case *MapCompExpr:
		p.write("{")
		p.maplet(n.Maplet)
		p.write(" | ")
		p.multiBinds(n.Binds)
		if n.Pred != nil {
			p.write(" & ")
			p.expr(n.Pred, 0)
		}
		p.write("}")
	case *SetRangeExpr:
		p.write("{")
		p.expr(n.Low, 0)
		p.write(", ..., ")
		p.expr(n.High, 0)
		p.write("}")
	case *SubseqExpr:
		p.expr(n.Seq, 12)
		p.write("(")
		p.expr(n.From, 0)
		p.write(", ..., ")
		p.expr(n.To, 0)
		p.write(")")

	case *TupleExpr:
		p.write("mk_(")
		p.exprs(n.Elems, ", ")
		p.write(")")
	case *RecordExpr:
		p.write("mk_")
		if n.Module != "" {
			p.write(n.Module + "`")
		}
		p.write(n.Type + "(")
		p.exprs(n.Args, ", ")
		p.write(")")
	case *MuExpr:
		p.write("mu(")
		p.expr(n.Record, 0)
		for _, m := range n.Mods {
			p.write(", " + m.Tag + " |-> ")
			p.expr(m.Value, 0)
		}
		p.write(")")
	case *IsExpr:
		p.write("is_(")
		p.expr(n.Arg, 0)
		p.write(", ")
		p.typeRef(n.Type)
		p.write(")")
	case *NarrowExpr:
		p.write("narrow_(")
		p.expr(n.Arg, 0)
		p.write(", ")
		p.typeRef(n.Type)
		p.write(")")
	case *LambdaExpr:
		p.open(ctx)
		p.write("lambda ")
		for i, b := range n.Params {
			if i > 0 {
				p.write(", ")
			}
			p.bind(b)
		}
		p.write(" & ")
		p.expr(n.Body, 0)
		p.close(ctx)
	case *FuncInstExpr:
		p.expr(n.Fn, 12)
		p.write("[")
		for i, t := range n.Types {
			if i > 0 {
				p.write(", ")
			}
			p.typeRef(t)
		}
		p.write("]")
	case *NewExpr:
		p.write("new " + n.Class + "(")
		p.exprs(n.Args, ", ")
		p.write(")")
	case *SubclassRespExpr:
		p.write("is subclass responsibility")
	case *NotYetSpecExpr:
		p.write("is not yet specified")
	case *UndefinedExpr:
		p.write("undefined")
	default:
		p.write(fmt.Sprintf("<%T>", n))
	}
}

// open and close parenthesize binder-style expressions that extend as far
// right as possible whenever they appear inside an operator.
func (p *printer) open(ctx int) {
	if ctx > 0 {
		p.write("(")
	}
}

func (p *printer) close(ctx int) {
	if ctx > 0 {
		p.write(")")
	}
}

func (p *printer) maplet(m *Maplet) {
	p.expr(m.Key, 0)
	p.write(" |-> ")
	p.expr(m.Value, 0)
}

func (p *printer) patterns(ps []Pattern) {
	for i, pat := range ps {
		if i > 0 {
			p.write(", ")
		}
		p.pattern(pat)
	}
}

func (p *printer) pattern(pat Pattern) {
	switch n := pat.(type) {
	case *IdentifierPattern:
		p.write(n.Name)
	case *IgnorePattern:
		p.write("-")
	case *LiteralPattern:
		p.expr(n.Lit, 0)
	case *ExprPattern:
		p.write("(")
		p.expr(n.Expr, 0)
		p.write(")")
	case *TuplePattern:
		p.write("mk_(")
		p.patterns(n.Elems)
		p.write(")")
	case *RecordPattern:
		p.write("mk_" + n.Type + "(")
		p.patterns(n.Fields)
		p.write(")")
	case *SetEnumPattern:
		p.write("{")
		p.patterns(n.Elems)
		p.write("}")
	case *SeqEnumPattern:
		p.write("[")
		p.patterns(n.Elems)
		p.write("]")
	case *UnionPattern:
		p.pattern(n.Left)
		p.write(" union ")
		p.pattern(n.Right)
	case *ConcatPattern:
		p.pattern(n.Left)
		p.write(" ^ ")
		p.pattern(n.Right)
	default:
		p.write(fmt.Sprintf("<%T>", n))
	}
}

func (p *printer) bind(b Bind) {
	switch n := b.(type) {
	case *SetBind:
		p.pattern(n.Pattern)
		p.write(" in set ")
		p.expr(n.Set, 0)
	case *TypeBind:
		p.pattern(n.Pattern)
		p.write(":")
		p.typeRef(n.Type)
	case *SeqBind:
		p.pattern(n.Pattern)
		p.write(" in seq ")
		p.expr(n.Seq, 0)
	}
}

func (p *printer) multiBinds(bs []MultipleBind) {
	for i, b := range bs {
		if i > 0 {
			p.write(", ")
		}
		p.multiBind(b)
	}
}

func (p *printer) multiBind(b MultipleBind) {
	switch n := b.(type) {
	case *MultiSetBind:
		p.patterns(n.Patterns)
		p.write(" in set ")
		p.expr(n.Set, 0)
	case *MultiTypeBind:
		p.patterns(n.Patterns)
		p.write(":")
		p.typeRef(n.Type)
	case *MultiSeqBind:
		p.patterns(n.Patterns)
		p.write(" in seq ")
		p.expr(n.Seq, 0)
	}
}

func (p *printer) typeRefs(ts []TypeRef, sep string) {
	for i, t := range ts {
		if i > 0 {
			p.write(sep)
		}
		p.typeRef(t)
	}
}

func (p *printer) typeRef(t TypeRef) {
	switch n := t.(type) {
	case nil:
		p.write("()")
	case *BasicTypeRef:
		p.write(n.Name)
	case *NamedTypeRef:
		if n.Module != "" {
			p.write(n.Module + "`")
		}
		p.write(n.Name)
	case *QuoteTypeRef:
		p.write("<" + n.Value + ">")
	case *SetTypeRef:
		if n.NonEmpty {
			p.write("set1 of ")
		} else {
			p.write("set of ")
		}
		p.typeRef(n.Elem)
	case *SeqTypeRef:
		if n.NonEmpty {
			p.write("seq1 of ")
		} else {
			p.write("seq of ")
		}
		p.typeRef(n.Elem)
	case *MapTypeRef:
		if n.Injective {
			p.write("inmap ")
		} else {
			p.write("map ")
		}
		p.typeRef(n.Dom)
		p.write(" to ")
		p.typeRef(n.Rng)
	case *ProductTypeRef:
		p.write("(")
		p.typeRefs(n.Elems, " * ")
		p.write(")")
	case *UnionTypeRef:
		p.write("(")
		p.typeRefs(n.Members, " | ")
		p.write(")")
	case *OptionalTypeRef:
		p.write("[")
		p.typeRef(n.Elem)
		p.write("]")
	case *RecordTypeRef:
		p.write("compose of")
		for _, f := range n.Fields {
			p.write(" " + f.Tag + ":")
			p.typeRef(f.Type)
		}
		p.write(" end")
	case *FunctionTypeRef:
		p.write("(")
		if len(n.Params) == 0 {
			p.write("()")
		}
		p.typeRefs(n.Params, " * ")
		if n.Total {
			p.write(" +> ")
		} else {
			p.write(" -> ")
		}
		p.typeRef(n.Result)
		p.write(")")
	case *OperationTypeRef:
		p.write("(")
		if len(n.Params) == 0 {
			p.write("()")
		}
		p.typeRefs(n.Params, " * ")
		p.write(" ==> ")
		p.typeRef(n.Result)
		p.write(")")
	case *ParamTypeRef:
		p.write("@" + n.Name)
	default:
		p.write(fmt.Sprintf("<%T>", n))
	}
}
