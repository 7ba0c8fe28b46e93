package pog

import (
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/types"
)

// HypothesisKind says what a context frame assumes
type HypothesisKind int

const (
	// Forall: the bound variables range over their binds
	Forall HypothesisKind = iota
	// ForallPredicate: the bound variables also satisfy a predicate
	ForallPredicate
	// Implies: a guard holds
	Implies
	// NotImplies: a guard does not hold
	NotImplies
	// CaseSelected: the cases subject matched a pattern
	CaseSelected
	// CaseExcluded: the cases subject did not match a pattern
	CaseExcluded
	// LetDefinition: a pattern is bound to a value
	LetDefinition
	// NotedType: a guard established a variable's type
	NotedType
)

var hypothesisNames = [...]string{
	"forall", "forall-predicate", "implies", "not-implies",
	"case-selected", "case-excluded", "let", "noted-type",
}

func (k HypothesisKind) String() string {
	if int(k) < len(hypothesisNames) {
		return hypothesisNames[k]
	}
	return "?"
}

// Hypothesis is one frame of the context stack
type Hypothesis struct {
	Kind HypothesisKind
	// Binds are the variables introduced by Forall and ForallPredicate
	Binds []ast.MultipleBind
	// Expr is the guard, predicate, let value or cases subject
	Expr ast.Expression
	// Pattern is the case or let pattern
	Pattern ast.Pattern
	// Subject is the type of the cases subject, for an excluded pattern
	Subject types.Type
	// Name and Type are the variable and type of a NotedType frame
	Name string
	Type types.Type
}

// Text returns the frame as a prefix of the folded obligation text. A
// NotedType frame contributes nothing.
func (h Hypothesis) Text() string {
	switch h.Kind {
	case Forall:
		return "forall " + printBinds(h.Binds) + " &"
	case ForallPredicate:
		return "forall " + printBinds(h.Binds) + " & " + ast.Print(h.Expr) + " =>"
	case Implies:
		return ast.Print(h.Expr) + " =>"
	case NotImplies:
		return ast.Print(ast.Not(h.Expr)) + " =>"
	case CaseSelected:
		if pe, ok := patternValue(h.Pattern); ok {
			return ast.Print(ast.Bin(pe, ast.EQ, h.Expr)) + " =>"
		}
		return "let " + ast.Print(h.Pattern) + " = " + ast.Print(h.Expr) + " in"
	case CaseExcluded:
		if pe, ok := patternValue(h.Pattern); ok {
			return ast.Print(ast.Not(ast.Bin(pe, ast.EQ, h.Expr))) + " =>"
		}
		match := &ast.QuantifiedExpr{
			Quantifier: ast.Exists,
			Binds:      []ast.MultipleBind{ast.TBind(typeRef(h.Subject), h.Pattern)},
			Pred:       ast.Bin(patternExpr(h.Pattern), ast.EQ, h.Expr),
		}
		return ast.Print(ast.Not(match)) + " =>"
	case LetDefinition:
		return "let " + ast.Print(h.Pattern) + " = " + ast.Print(h.Expr) + " in"
	}
	return ""
}

// binds reports whether the frame introduces name
func (h Hypothesis) binds(name string) bool {
	switch h.Kind {
	case Forall, ForallPredicate:
		for _, b := range h.Binds {
			for _, p := range ast.BindPatterns(b) {
				for _, n := range ast.PatternNames(p) {
					if n == name {
						return true
					}
				}
			}
		}
	case CaseSelected, LetDefinition:
		for _, n := range ast.PatternNames(h.Pattern) {
			if n == name {
				return true
			}
		}
	}
	return false
}

func printBinds(bs []ast.MultipleBind) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = ast.Print(b)
	}
	return strings.Join(parts, ", ")
}

// contextStack is the strictly nested stack of hypotheses. Every push made
// while visiting a subtree is popped before the visit returns.
type contextStack struct {
	frames *arraystack.Stack
	pushes int
	pops   int
}

func newContextStack() *contextStack {
	return &contextStack{frames: arraystack.New()}
}

func (s *contextStack) push(h Hypothesis) {
	s.frames.Push(h)
	s.pushes++
}

// pop removes the top n frames
func (s *contextStack) pop(n int) {
	for i := 0; i < n; i++ {
		if _, ok := s.frames.Pop(); ok {
			s.pops++
		}
	}
}

func (s *contextStack) depth() int { return s.frames.Size() }

// snapshot returns the frames outermost first
func (s *contextStack) snapshot() []Hypothesis {
	vals := s.frames.Values() // top first
	out := make([]Hypothesis, len(vals))
	for i, v := range vals {
		out[len(vals)-1-i] = v.(Hypothesis)
	}
	return out
}

// noted returns the type a guard established for name, unless a closer
// frame rebinds the name. Only Forall, ForallPredicate, CaseSelected and
// LetDefinition frames rebind; an Implies guard never binds a name, so a
// quantifier inside a guard does not hide a noted type.
func (s *contextStack) noted(name string) (types.Type, bool) {
	for _, v := range s.frames.Values() {
		h := v.(Hypothesis)
		if h.Kind == NotedType && h.Name == name {
			return h.Type, true
		}
		if h.binds(name) {
			return nil, false
		}
	}
	return nil, false
}

// fold renders a condition under the given hypotheses, one frame per line
func fold(ctx []Hypothesis, cond ast.Expression) string {
	var sb strings.Builder
	indent := ""
	for _, h := range ctx {
		t := h.Text()
		if t == "" {
			continue
		}
		sb.WriteString(indent + t + "\n")
		indent += "  "
	}
	sb.WriteString(indent + ast.Print(cond))
	return sb.String()
}
