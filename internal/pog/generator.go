package pog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/checker"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/types"
)

// Generator turns a checked specification into proof obligations
type Generator struct {
	cfg config.Settings
	log *slog.Logger

	res  *checker.Result
	ctx  *contextStack
	out  []*Obligation
	seen map[uuid.UUID]bool
	rec  map[defs.ID][]defs.ID

	// Per-definition state
	module    *checker.ModuleInfo
	def       defs.Definition
	name      string
	group     []defs.ID
	result    types.Type
	stateInv  defs.Definition
	unchecked int
}

// New returns a generator for the given settings. A nil logger discards.
func New(cfg config.Settings, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{cfg: cfg, log: log}
}

// Generate produces the obligations of res with a discarding logger
func Generate(res *checker.Result, cfg config.Settings) (*List, error) {
	return New(cfg, nil).Run(context.Background(), res)
}

// Run walks every top-level definition of res in declaration order. A
// returned error means the generator's own bookkeeping went wrong.
func (g *Generator) Run(ctx context.Context, res *checker.Result) (*List, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: no checked specification", diagnostic.ErrInternal)
	}
	g.res = res
	g.ctx = newContextStack()
	g.out = nil
	g.seen = make(map[uuid.UUID]bool)
	g.rec = res.Calls.Recursive()

	for _, m := range res.Modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.module = m
		g.stateInv = nil
		if m.State != defs.NoID {
			g.stateInv = res.Graph.DerivedOf(m.State, defs.RoleInv)
		}
		for _, id := range m.Defs {
			d := res.Graph.Get(id)
			if d == nil || d.Base().Status == defs.Unresolvable {
				continue
			}
			g.definition(d)
			if n := g.ctx.depth(); n != 0 {
				return nil, fmt.Errorf("%w: %d context frames left after %s", diagnostic.ErrInternal, n, g.name)
			}
		}
		g.log.Debug("obligations", "module", m.Name, "total", len(g.out))
	}

	list := &List{Pushes: g.ctx.pushes, Pops: g.ctx.pops}
	if list.Pushes != list.Pops {
		return nil, fmt.Errorf("%w: %d context pushes but %d pops", diagnostic.ErrInternal, list.Pushes, list.Pops)
	}
	for _, o := range g.out {
		if o.Unchecked && !g.cfg.Obligations.IncludeUnchecked {
			continue
		}
		o.Number = len(list.Obligations) + 1
		list.Obligations = append(list.Obligations, o)
	}
	return list, nil
}

func (g *Generator) definition(d defs.Definition) {
	b := d.Base()
	g.def = d
	g.name = b.Module + "`" + b.Name
	g.group = g.rec[b.ID]
	g.result = nil

	switch d := d.(type) {
	case *defs.TypeDefinition:
		g.typeDefinition(d)
	case *defs.StateDefinition:
		g.stateDefinition(d)
	case *defs.ValueDefinition:
		g.valueDefinition(d)
	case *defs.ExplicitFunctionDefinition:
		g.explicitFunction(d)
	case *defs.ImplicitFunctionDefinition:
		g.implicitFunction(d)
	case *defs.ExplicitOperationDefinition:
		g.explicitOperation(d)
	case *defs.ImplicitOperationDefinition:
		g.implicitOperation(d)
	case *defs.InstanceVariableDefinition:
		if d.Node != nil && d.Node.Init != nil {
			g.expr(d.Node.Init)
			g.subtype(d.Node.Init, d.Type)
		}
	case *defs.ThreadDefinition:
		if d.Node != nil {
			g.stmt(d.Node.Body)
		}
	}
}

// emit records an obligation raised at node under the current context. It
// returns nil when the kind is filtered out or an identical obligation exists.
func (g *Generator) emit(kind Kind, at ast.Node, cond ast.Expression) *Obligation {
	if !g.cfg.WantsKind(kind.String()) {
		return nil
	}
	loc := g.locate(at)
	hyps := g.ctx.snapshot()
	text := fold(hyps, cond)
	id := newID(g.name, kind, loc, text)
	if g.seen[id] {
		return nil
	}
	g.seen[id] = true
	o := &Obligation{
		ID:           id,
		Kind:         kind,
		Location:     loc,
		Definition:   g.name,
		DefinitionID: g.def.Base().ID,
		Context:      hyps,
		Condition:    cond,
		Text:         text,
		Unchecked:    g.unchecked > 0,
		Source:       at,
	}
	g.out = append(g.out, o)
	return o
}

func (g *Generator) locate(n ast.Node) defs.Location {
	loc := defs.LocOf(g.module.File, n)
	if loc.Line == 0 {
		return g.def.Base().Loc
	}
	return loc
}

func (g *Generator) push(h Hypothesis) { g.ctx.push(h) }
func (g *Generator) pop(n int)         { g.ctx.pop(n) }

// params pushes one forall frame binding every parameter pattern to its
// type, and returns the number of frames pushed
func (g *Generator) params(patterns []ast.Pattern, ts []types.Type) int {
	if len(patterns) == 0 {
		return 0
	}
	binds := make([]ast.MultipleBind, len(patterns))
	for i, p := range patterns {
		var t types.Type = types.UnknownType
		if i < len(ts) {
			t = ts[i]
		}
		binds[i] = ast.TBind(typeRef(t), p)
	}
	g.push(Hypothesis{Kind: Forall, Binds: binds})
	return 1
}

// assume pushes an implication frame for a precondition, if there is one
func (g *Generator) assume(pre ast.Expression) int {
	if pre == nil {
		return 0
	}
	g.push(Hypothesis{Kind: Implies, Expr: pre})
	return 1
}

// levels splits a curried function type into its parameter lists
func levels(fn *types.Function, n int) ([][]types.Type, types.Type) {
	var lists [][]types.Type
	var result types.Type = fn
	for i := 0; i < n; i++ {
		f, ok := result.(*types.Function)
		if !ok {
			break
		}
		lists = append(lists, f.Params)
		result = f.Result
	}
	return lists, result
}

func flatten(ps [][]ast.Pattern) []ast.Pattern {
	var out []ast.Pattern
	for _, l := range ps {
		out = append(out, l...)
	}
	return out
}

func flattenTypes(ts [][]types.Type) []types.Type {
	var out []types.Type
	for _, l := range ts {
		out = append(out, l...)
	}
	return out
}

func (g *Generator) typeDefinition(d *defs.TypeDefinition) {
	n := d.Node
	if n == nil {
		return
	}
	self := typeRef(d.Type)
	if n.Inv != nil {
		g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.TBind(self, n.Inv.Pattern)}})
		g.expr(n.Inv.Expr)
		g.pop(1)
	}
	for _, rel := range []*ast.RelClause{n.Eq, n.Ord} {
		if rel == nil {
			continue
		}
		g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.TBind(self, rel.Left, rel.Right)}})
		g.expr(rel.Expr)
		g.pop(1)
	}
}

func (g *Generator) stateDefinition(d *defs.StateDefinition) {
	n := d.Node
	if n == nil {
		return
	}
	self := ast.Ty(d.Name)
	if n.Inv != nil {
		g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.TBind(self, n.Inv.Pattern)}})
		g.expr(n.Inv.Expr)
		g.pop(1)
	}
	if n.Init == nil {
		return
	}
	g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.TBind(self, n.Init.Pattern)}})
	g.expr(n.Init.Expr)
	g.pop(1)
	if inv := g.res.Graph.DerivedOf(d.ID, defs.RoleInv); inv != nil {
		cond := ast.ForallExpr(
			[]ast.MultipleBind{ast.TBind(self, n.Init.Pattern)},
			ast.Implies(n.Init.Expr, ast.Call(ast.Var(inv.Base().Name), patternExpr(n.Init.Pattern))),
		)
		g.emit(StateInit, n.Init, cond)
	}
}

func (g *Generator) valueDefinition(d *defs.ValueDefinition) {
	n := d.Node
	if n == nil || n.Value == nil {
		return
	}
	if d.Name == "" {
		g.name = d.Module + "`value"
	}
	g.expr(n.Value)
	g.valueBinding(n)
}

// valueBinding covers "p : T = e": e must have type T, and p must match e
func (g *Generator) valueBinding(n *ast.ValueDef) {
	var declared types.Type
	if n.Type != nil {
		declared = g.res.TypeRefs[n.Type]
		g.subtype(n.Value, declared)
	}
	if isCatchAll(n.Pattern) {
		return
	}
	t := n.Type
	if t == nil {
		t = typeRef(g.typeOf(n.Value))
	}
	cond := ast.ExistsExpr(
		[]ast.MultipleBind{ast.TBind(t, n.Pattern)},
		ast.Bin(patternExpr(n.Pattern), ast.EQ, n.Value),
	)
	g.emit(ValueBinding, n, cond)
}

func (g *Generator) explicitFunction(d *defs.ExplicitFunctionDefinition) {
	if d.Role != defs.RoleNone || d.Node == nil {
		return
	}
	fn, ok := d.Type.(*types.Function)
	if !ok {
		return
	}
	lists, result := levels(fn, len(d.Params))
	pushed := g.params(flatten(d.Params), flattenTypes(lists))

	g.expr(d.Pre)
	if d.Measure != nil && d.MeasureName == "" {
		g.expr(d.Measure)
	}
	pushed += g.assume(d.Pre)

	if d.Body != nil {
		g.expr(d.Body)
		g.subtype(d.Body, result)
	}
	if d.Post != nil {
		g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.TBind(typeRef(result), ast.PId("RESULT"))}})
		g.expr(d.Post)
		g.pop(1)
	}
	g.pop(pushed)

	if fn.Total && d.Pre != nil {
		g.totalFunction(d, lists)
	}
}

// totalFunction states that a function declared total is defined on every
// argument, so its precondition must always hold
func (g *Generator) totalFunction(d *defs.ExplicitFunctionDefinition, lists [][]types.Type) {
	params := flatten(d.Params)
	ts := flattenTypes(lists)
	if len(params) == 0 {
		g.emit(TotalFunction, d.Node, d.Pre)
		return
	}
	binds := make([]ast.MultipleBind, len(params))
	for i, p := range params {
		var t types.Type = types.UnknownType
		if i < len(ts) {
			t = ts[i]
		}
		binds[i] = ast.TBind(typeRef(t), p)
	}
	g.emit(TotalFunction, d.Node, ast.ForallExpr(binds, d.Pre))
}

// pairs splits implicit parameters into patterns and their resolved types
func pairs(ps []*ast.PatternTypePair, ts []types.Type) ([]ast.Pattern, []types.Type) {
	patterns := make([]ast.Pattern, len(ps))
	for i, p := range ps {
		patterns[i] = p.Pattern
	}
	return patterns, ts
}

// results binds the named results of an implicit definition
func results(rs []*ast.NameTypePair) []ast.MultipleBind {
	binds := make([]ast.MultipleBind, len(rs))
	for i, r := range rs {
		binds[i] = ast.TBind(r.Type, ast.PId(r.Name))
	}
	return binds
}

func (g *Generator) implicitFunction(d *defs.ImplicitFunctionDefinition) {
	n := d.Node
	if n == nil {
		return
	}
	fn, ok := d.Type.(*types.Function)
	if !ok {
		return
	}
	patterns, ts := pairs(n.Params, fn.Params)
	pushed := g.params(patterns, ts)
	g.expr(n.Pre)
	pushed += g.assume(n.Pre)

	if n.Body != nil {
		g.expr(n.Body)
		g.subtype(n.Body, fn.Result)
	}
	if n.Post != nil {
		binds := results(n.Result)
		if n.Body == nil && len(binds) > 0 {
			g.emit(FunctionSatisfiability, n, ast.ExistsExpr(binds, n.Post))
		}
		if len(binds) > 0 {
			g.push(Hypothesis{Kind: Forall, Binds: binds})
			g.expr(n.Post)
			g.pop(1)
		} else {
			g.expr(n.Post)
		}
	}
	g.pop(pushed)
}

func (g *Generator) explicitOperation(d *defs.ExplicitOperationDefinition) {
	n := d.Node
	if n == nil {
		return
	}
	op, ok := d.Type.(*types.Operation)
	if !ok {
		return
	}
	g.result = op.Result
	pushed := g.params(n.Params, op.Params)
	g.expr(n.Pre)
	pushed += g.assume(n.Pre)
	if n.Body != nil {
		g.stmt(n.Body)
	}
	g.operationPost(n.Post, op.Result, "RESULT")
	g.pop(pushed)
}

func (g *Generator) implicitOperation(d *defs.ImplicitOperationDefinition) {
	n := d.Node
	if n == nil {
		return
	}
	op, ok := d.Type.(*types.Operation)
	if !ok {
		return
	}
	g.result = op.Result
	patterns, ts := pairs(n.Params, op.Params)
	pushed := g.params(patterns, ts)
	g.expr(n.Pre)
	pushed += g.assume(n.Pre)
	if n.Body != nil {
		g.stmt(n.Body)
	} else if n.Post != nil {
		cond := n.Post
		if n.Result != nil {
			cond = ast.ExistsExpr(results([]*ast.NameTypePair{n.Result}), n.Post)
		}
		g.emit(OperationSatisfiability, n, cond)
	}
	name := "RESULT"
	if n.Result != nil {
		name = n.Result.Name
	}
	g.operationPost(n.Post, op.Result, name)
	g.pop(pushed)
}

// operationPost walks a postcondition with the result bound
func (g *Generator) operationPost(post ast.Expression, result types.Type, name string) {
	if post == nil {
		return
	}
	if _, void := result.(*types.Void); void || result == nil {
		g.expr(post)
		return
	}
	g.push(Hypothesis{Kind: Forall, Binds: []ast.MultipleBind{ast.TBind(typeRef(result), ast.PId(name))}})
	g.expr(post)
	g.pop(1)
}

// resolve follows imports and renamings to the definition they stand for,
// and returns its latest version from the graph
func (g *Generator) resolve(d defs.Definition) defs.Definition {
	for i := 0; i < 16 && d != nil; i++ {
		switch t := d.(type) {
		case *defs.ImportedDefinition:
			d = g.res.Graph.Get(t.Target)
		case *defs.RenamedDefinition:
			d = g.res.Graph.Get(t.Target)
		default:
			if latest := g.res.Graph.Get(d.Base().ID); latest != nil {
				return latest
			}
			return d
		}
	}
	return d
}

// nameOf returns a variable naming d from the current module
func (g *Generator) nameOf(d defs.Definition) *ast.Variable {
	b := d.Base()
	if b.Module != "" && b.Module != g.module.Name {
		return ast.QVar(b.Module, b.Name)
	}
	return ast.Var(b.Name)
}
