// Package pog generates proof obligations from a checked specification.
//
// The generator walks every definition's clauses, bodies and statements with
// a stack of hypotheses. Each obligation records the hypotheses in force
// where it arose, so the condition only has to hold on that branch.
package pog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
)

// Kind classifies an obligation. Discharge tooling filters on it.
type Kind int

const (
	MapApply Kind = iota
	SeqApply
	FunctionApply
	OperationCall
	Subtype
	NonZero
	NonEmptySeq
	CasesExhaustive
	FiniteSet
	FiniteType
	FiniteMap
	RecursiveFunction
	TypeInvariant
	StateInvariant
	MapInjectivity
	MapCompose
	FunctionCompose
	MapIteration
	MapCompatible
	MapSeqCompatible
	MapSetCompatible
	SeqModification
	ValueBinding
	LetBeExists
	UniqueExistence
	TotalFunction
	FunctionSatisfiability
	OperationSatisfiability
	TupleSelection
	StateInit
)

var kindNames = [...]string{
	"map apply",
	"sequence apply",
	"function apply",
	"operation call",
	"subtype",
	"non-zero",
	"non-empty sequence",
	"cases exhaustive",
	"finite set",
	"finite type",
	"finite map",
	"recursive function",
	"type invariant",
	"state invariant",
	"map injectivity",
	"map compose",
	"function compose",
	"map iteration",
	"map compatible",
	"map sequence compatible",
	"map set compatible",
	"sequence modification",
	"value binding",
	"let be st existence",
	"unique existence",
	"total function",
	"function satisfiability",
	"operation satisfiability",
	"tuple selection",
	"state init",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the kind spelled s
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown obligation kind %q", s)
}

// Kinds returns every kind in declaration order
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// idSpace is the namespace for obligation IDs. An ID is a hash of the
// obligation's content, so regenerating an unchanged graph yields the same IDs.
var idSpace = uuid.MustParse("6f1c52e4-3b0a-5d7e-9a41-2c8e0b7d5f13")

// Obligation is one generated verification condition
type Obligation struct {
	ID     uuid.UUID
	Number int
	Kind   Kind
	// Location is where the construct that needs the obligation appears
	Location defs.Location
	// Definition is the qualified name of the definition it comes from
	Definition   string
	DefinitionID defs.ID
	Context      []Hypothesis
	Condition    ast.Expression
	// Text is the condition with its context folded in
	Text string
	// Unchecked marks obligations that cannot be evaluated as written,
	// because a pattern hides a name the condition refers to
	Unchecked bool
	// Source is the expression or statement that raised the obligation
	Source ast.Node
}

func newID(def string, kind Kind, loc defs.Location, text string) uuid.UUID {
	key := fmt.Sprintf("%s\x00%s\x00%s:%d:%d\x00%s", def, kind, loc.File, loc.Line, loc.Column, text)
	return uuid.NewSHA1(idSpace, []byte(key))
}

// String renders the obligation the way the CLI prints it
func (o *Obligation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Proof Obligation %d: (%s) %s obligation", o.Number, o.Definition, o.Kind)
	if o.Location.Line > 0 {
		fmt.Fprintf(&sb, " @ %d:%d", o.Location.Line, o.Location.Column)
	}
	if o.Unchecked {
		sb.WriteString(" [unchecked]")
	}
	sb.WriteString("\n")
	sb.WriteString(o.Text)
	return sb.String()
}

// List is the ordered result of one generation run
type List struct {
	Obligations []*Obligation
	// Pushes and Pops count context frames; a finished run has them equal
	Pushes int
	Pops   int
}

// Len returns the number of obligations
func (l *List) Len() int { return len(l.Obligations) }

// OfKind returns the obligations of kind k in order
func (l *List) OfKind(k Kind) []*Obligation {
	var out []*Obligation
	for _, o := range l.Obligations {
		if o.Kind == k {
			out = append(out, o)
		}
	}
	return out
}

// For returns the obligations raised by the named definition ("M`f")
func (l *List) For(definition string) []*Obligation {
	var out []*Obligation
	for _, o := range l.Obligations {
		if o.Definition == definition {
			out = append(out, o)
		}
	}
	return out
}

// String renders every obligation separated by blank lines
func (l *List) String() string {
	parts := make([]string, len(l.Obligations))
	for i, o := range l.Obligations {
		parts[i] = o.String()
	}
	return strings.Join(parts, "\n\n")
}
