package linter

import (
	"unicode"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/checker"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/types"
)

// Linter performs style and best-practice checks on a checked specification.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	res  *checker.Result
	cfg  config.LintSettings
	diag *diagnostic.Diagnostics
}

// Lint runs the enabled lint rules over res and returns their diagnostics
func Lint(res *checker.Result, cfg config.LintSettings) *diagnostic.Diagnostics {
	l := &Linter{
		res:  res,
		cfg:  cfg,
		diag: diagnostic.New(),
	}
	if !cfg.Enabled {
		return l.diag
	}
	for _, m := range res.Modules {
		l.diag.SetFile(m.File)
		for _, id := range m.Defs {
			d := res.Graph.Get(id)
			if d == nil || d.Base().Status == defs.Unresolvable {
				continue
			}
			l.lintDefinition(d)
		}
	}
	return l.diag
}

func (l *Linter) lintDefinition(d defs.Definition) {
	b := d.Base()
	switch d := d.(type) {
	case *defs.TypeDefinition:
		l.checkTypeNaming(b.Name, b.Loc)
	case *defs.StateDefinition:
		l.checkTypeNaming(b.Name, b.Loc)
	case *defs.ExplicitFunctionDefinition:
		if d.Node == nil {
			return
		}
		l.checkMissingPre(d)
		l.checkTrivialPre(b.Name, d.Pre)
		l.checkFunctionNaming("function", b.Name, b.Loc)
		used := usedNames()
		used.exprs(d.Body, d.Pre, d.Post, d.Measure)
		l.checkUnusedLocals(b, used)
	case *defs.ImplicitFunctionDefinition:
		if d.Node == nil {
			return
		}
		l.checkTrivialPre(b.Name, d.Node.Pre)
		l.checkFunctionNaming("function", b.Name, b.Loc)
		used := usedNames()
		used.exprs(d.Node.Body, d.Node.Pre, d.Node.Post, d.Node.Measure)
		l.checkUnusedLocals(b, used)
	case *defs.ExplicitOperationDefinition:
		if d.Node == nil {
			return
		}
		if !d.Constructor {
			l.checkFunctionNaming("operation", b.Name, b.Loc)
		}
		l.checkTrivialPre(b.Name, d.Node.Pre)
		used := usedNames()
		used.exprs(d.Node.Pre, d.Node.Post)
		used.stmt(d.Node.Body)
		l.checkUnusedLocals(b, used)
	case *defs.ImplicitOperationDefinition:
		if d.Node == nil {
			return
		}
		if !d.Constructor {
			l.checkFunctionNaming("operation", b.Name, b.Loc)
		}
		l.checkTrivialPre(b.Name, d.Node.Pre)
		used := usedNames()
		used.exprs(d.Node.Pre, d.Node.Post)
		used.stmt(d.Node.Body)
		l.checkUnusedLocals(b, used)
	}
}

// checkMissingPre warns about a partial function with no precondition
func (l *Linter) checkMissingPre(d *defs.ExplicitFunctionDefinition) {
	if !l.cfg.MissingPre || d.Pre != nil {
		return
	}
	if fn, ok := d.Type.(*types.Function); ok && !fn.Total {
		l.diag.Warningf(diagnostic.CodeNoPre, d.Loc.Line, d.Loc.Column,
			"partial function '%s' has no precondition", d.Name)
	}
}

// checkTrivialPre warns about a precondition that is a boolean literal:
// "pre true" guards nothing and "pre false" makes the definition uncallable
func (l *Linter) checkTrivialPre(name string, pre ast.Expression) {
	if !l.cfg.TrivialGuard || pre == nil {
		return
	}
	if lit, ok := pre.(*ast.BoolLit); ok {
		line, col := lit.Pos()
		l.diag.Warningf(diagnostic.CodeTrivialGuard, line, col,
			"precondition of '%s' is always %t", name, lit.Value)
	}
}

// checkUnusedLocals warns about parameters and let-bound names that are never read
func (l *Linter) checkUnusedLocals(owner *defs.Common, used nameSet) {
	if !l.cfg.Unused {
		return
	}
	seen := make(map[string]bool)
	for _, local := range l.res.Locals[owner.ID] {
		if seen[local.Name] {
			continue
		}
		seen[local.Name] = true
		if !used[local.Name] {
			l.diag.Warningf(diagnostic.CodeUnused, local.Loc.Line, local.Loc.Column,
				"'%s' in '%s' is never used", local.Name, owner.Name)
		}
	}
}

// checkTypeNaming warns if a type name does not start with a capital
func (l *Linter) checkTypeNaming(name string, loc defs.Location) {
	if l.cfg.Naming && !startsUpper(name) {
		l.diag.Warningf(diagnostic.CodeNaming, loc.Line, loc.Column,
			"type '%s' should start with a capital letter", name)
	}
}

// checkFunctionNaming warns if a function or operation name starts with a capital
func (l *Linter) checkFunctionNaming(kind, name string, loc defs.Location) {
	if l.cfg.Naming && startsUpper(name) {
		l.diag.Warningf(diagnostic.CodeNaming, loc.Line, loc.Column,
			"%s '%s' should start with a lower-case letter", kind, name)
	}
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// --- Name collection helpers ---

// nameSet collects every name that is read in a definition's clauses. A
// pattern binding the same name deeper down does not hide the outer read;
// the rule only needs to know the name occurs.
type nameSet map[string]bool

func usedNames() nameSet { return make(nameSet) }

func (u nameSet) exprs(es ...ast.Expression) {
	for _, e := range es {
		u.expr(e)
	}
}

func (u nameSet) list(es []ast.Expression) {
	for _, e := range es {
		u.expr(e)
	}
}

func (u nameSet) expr(expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
	case *ast.Variable:
		if e.Module == "" {
			u[e.Name] = true
		}
	case *ast.OldName:
		u[e.Name] = true
	case *ast.UnaryExpr:
		u.expr(e.Operand)
	case *ast.BinaryExpr:
		u.exprs(e.Left, e.Right)
	case *ast.ApplyExpr:
		u.expr(e.Fn)
		u.list(e.Args)
	case *ast.FieldExpr:
		u.expr(e.Object)
	case *ast.TupleSelectExpr:
		u.expr(e.Tuple)
	case *ast.IfExpr:
		u.exprs(e.Cond, e.Then, e.Else)
		for _, ei := range e.ElseIfs {
			u.exprs(ei.Cond, ei.Then)
		}
	case *ast.CasesExpr:
		u.exprs(e.Subject, e.Others)
		for _, alt := range e.Alts {
			u.patterns(alt.Patterns)
			u.expr(alt.Result)
		}
	case *ast.LetExpr:
		u.valueDefs(e.Defs)
		u.expr(e.Body)
	case *ast.LetBeStExpr:
		u.multiBinds([]ast.MultipleBind{e.Bind})
		u.exprs(e.SuchThat, e.Body)
	case *ast.QuantifiedExpr:
		u.multiBinds(e.Binds)
		u.expr(e.Pred)
	case *ast.Exists1Expr:
		u.bind(e.Bind)
		u.expr(e.Pred)
	case *ast.IotaExpr:
		u.bind(e.Bind)
		u.expr(e.Pred)
	case *ast.SetEnumExpr:
		u.list(e.Elems)
	case *ast.SeqEnumExpr:
		u.list(e.Elems)
	case *ast.MapEnumExpr:
		for _, m := range e.Maplets {
			u.exprs(m.Key, m.Value)
		}
	case *ast.SetCompExpr:
		u.multiBinds(e.Binds)
		u.exprs(e.Elem, e.Pred)
	case *ast.SeqCompExpr:
		u.bind(e.Bind)
		u.exprs(e.Elem, e.Pred)
	case *ast.MapCompExpr:
		u.multiBinds(e.Binds)
		u.exprs(e.Maplet.Key, e.Maplet.Value, e.Pred)
	case *ast.SetRangeExpr:
		u.exprs(e.Low, e.High)
	case *ast.SubseqExpr:
		u.exprs(e.Seq, e.From, e.To)
	case *ast.TupleExpr:
		u.list(e.Elems)
	case *ast.RecordExpr:
		u.list(e.Args)
	case *ast.MuExpr:
		u.expr(e.Record)
		for _, m := range e.Mods {
			u.expr(m.Value)
		}
	case *ast.IsExpr:
		u.expr(e.Arg)
	case *ast.NarrowExpr:
		u.expr(e.Arg)
	case *ast.LambdaExpr:
		u.expr(e.Body)
	case *ast.FuncInstExpr:
		u.expr(e.Fn)
	case *ast.NewExpr:
		u.list(e.Args)
	}
}

// patterns collects names read by expression patterns
func (u nameSet) patterns(ps []ast.Pattern) {
	for _, p := range ps {
		u.pattern(p)
	}
}

func (u nameSet) pattern(p ast.Pattern) {
	switch p := p.(type) {
	case *ast.ExprPattern:
		u.expr(p.Expr)
	case *ast.TuplePattern:
		u.patterns(p.Elems)
	case *ast.RecordPattern:
		u.patterns(p.Fields)
	case *ast.SetEnumPattern:
		u.patterns(p.Elems)
	case *ast.SeqEnumPattern:
		u.patterns(p.Elems)
	case *ast.UnionPattern:
		u.patterns([]ast.Pattern{p.Left, p.Right})
	case *ast.ConcatPattern:
		u.patterns([]ast.Pattern{p.Left, p.Right})
	}
}

func (u nameSet) bind(b ast.Bind) {
	switch b := b.(type) {
	case *ast.SetBind:
		u.expr(b.Set)
	case *ast.SeqBind:
		u.expr(b.Seq)
	}
}

func (u nameSet) multiBinds(bs []ast.MultipleBind) {
	for _, b := range bs {
		switch b := b.(type) {
		case *ast.MultiSetBind:
			u.expr(b.Set)
		case *ast.MultiSeqBind:
			u.expr(b.Seq)
		}
	}
}

func (u nameSet) valueDefs(vds []*ast.ValueDef) {
	for _, vd := range vds {
		u.pattern(vd.Pattern)
		u.expr(vd.Value)
	}
}

func (u nameSet) stmts(ss []ast.Statement) {
	for _, s := range ss {
		u.stmt(s)
	}
}

func (u nameSet) stmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case nil:
	case *ast.AssignStmt:
		// The target is a write, but an index into it is a read
		u.designator(s.Target)
		u.expr(s.Value)
	case *ast.AtomicStmt:
		for _, a := range s.Assigns {
			u.stmt(a)
		}
	case *ast.BlockStmt:
		for _, d := range s.Dcls {
			u.expr(d.Init)
		}
		u.stmts(s.Stmts)
	case *ast.CallStmt:
		u.list(s.Args)
	case *ast.ObjectCallStmt:
		u.expr(s.Object)
		u.list(s.Args)
	case *ast.ReturnStmt:
		u.expr(s.Value)
	case *ast.IfStmt:
		u.expr(s.Cond)
		u.stmt(s.Then)
		for _, ei := range s.ElseIfs {
			u.expr(ei.Cond)
			u.stmt(ei.Then)
		}
		u.stmt(s.Else)
	case *ast.CasesStmt:
		u.expr(s.Subject)
		for _, alt := range s.Alts {
			u.patterns(alt.Patterns)
			u.stmt(alt.Body)
		}
		u.stmt(s.Others)
	case *ast.LetStmt:
		u.valueDefs(s.Defs)
		u.stmt(s.Body)
	case *ast.LetBeStStmt:
		u.multiBinds([]ast.MultipleBind{s.Bind})
		u.expr(s.SuchThat)
		u.stmt(s.Body)
	case *ast.WhileStmt:
		u.expr(s.Cond)
		u.stmt(s.Body)
	case *ast.ForIndexStmt:
		u.exprs(s.From, s.To, s.By)
		u.stmt(s.Body)
	case *ast.ForSetStmt:
		u.expr(s.Set)
		u.stmt(s.Body)
	case *ast.ForSeqStmt:
		u.expr(s.Seq)
		u.stmt(s.Body)
	case *ast.ExitStmt:
		u.expr(s.Value)
	}
}

func (u nameSet) designator(d ast.Designator) {
	switch d := d.(type) {
	case *ast.FieldDesignator:
		u.designator(d.Object)
	case *ast.IndexDesignator:
		u.designator(d.Object)
		u.expr(d.Index)
	}
}
