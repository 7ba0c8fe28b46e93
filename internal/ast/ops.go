package ast

import "fmt"

// Op represents a unary or binary operator
type Op int

const (
	ILLEGAL Op = iota

	// Arithmetic
	PLUS     // +
	MINUS    // -
	TIMES    // *
	DIVIDE   // /
	DIV      // div
	REM      // rem
	MOD      // mod
	STARSTAR // ** (power, map/function iteration)
	ABS      // abs
	FLOOR    // floor

	// Logic
	AND     // and
	OR      // or
	IMPLIES // =>
	EQUIV   // <=>
	NOT     // not

	// Relations
	EQ  // =
	NEQ // <>
	LT  // <
	LEQ // <=
	GT  // >
	GEQ // >=

	// Sets
	INSET    // in set
	NOTINSET // not in set
	UNION    // union
	INTER    // inter
	SETDIFF  // \
	SUBSET   // subset
	PSUBSET  // psubset
	CARD     // card
	POWER    // power
	DUNION   // dunion
	DINTER   // dinter

	// Sequences
	CONCAT  // ^
	HD      // hd
	TL      // tl
	LEN     // len
	ELEMS   // elems
	INDS    // inds
	CONC    // conc
	REVERSE // reverse

	// Maps
	MUNION   // munion
	PLUSPLUS // ++
	DOMRESTO // <:
	DOMRESBY // <-:
	RNGRESTO // :>
	RNGRESBY // :->
	DOM      // dom
	RNG      // rng
	MERGE    // merge
	INVERSE  // inverse

	COMP // comp
)

var opNames = map[Op]string{
	ILLEGAL:  "ILLEGAL",
	PLUS:     "+",
	MINUS:    "-",
	TIMES:    "*",
	DIVIDE:   "/",
	DIV:      "div",
	REM:      "rem",
	MOD:      "mod",
	STARSTAR: "**",
	ABS:      "abs",
	FLOOR:    "floor",
	AND:      "and",
	OR:       "or",
	IMPLIES:  "=>",
	EQUIV:    "<=>",
	NOT:      "not",
	EQ:       "=",
	NEQ:      "<>",
	LT:       "<",
	LEQ:      "<=",
	GT:       ">",
	GEQ:      ">=",
	INSET:    "in set",
	NOTINSET: "not in set",
	UNION:    "union",
	INTER:    "inter",
	SETDIFF:  "\\",
	SUBSET:   "subset",
	PSUBSET:  "psubset",
	CARD:     "card",
	POWER:    "power",
	DUNION:   "dunion",
	DINTER:   "dinter",
	CONCAT:   "^",
	HD:       "hd",
	TL:       "tl",
	LEN:      "len",
	ELEMS:    "elems",
	INDS:     "inds",
	CONC:     "conc",
	REVERSE:  "reverse",
	MUNION:   "munion",
	PLUSPLUS: "++",
	DOMRESTO: "<:",
	DOMRESBY: "<-:",
	RNGRESTO: ":>",
	RNGRESBY: ":->",
	DOM:      "dom",
	RNG:      "rng",
	MERGE:    "merge",
	INVERSE:  "inverse",
	COMP:     "comp",
}

// String returns the concrete spelling of the operator
func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// LookupOp returns the operator spelled s
func LookupOp(s string) (Op, bool) {
	for op, name := range opNames {
		if name == s && op != ILLEGAL {
			return op, true
		}
	}
	return ILLEGAL, false
}

// IsUnary reports whether the operator is a prefix operator.
// MINUS and PLUS are both unary and binary; callers disambiguate by node type.
func (o Op) IsUnary() bool {
	switch o {
	case PLUS, MINUS, ABS, FLOOR, NOT, CARD, POWER, DUNION, DINTER,
		HD, TL, LEN, ELEMS, INDS, CONC, REVERSE, DOM, RNG, MERGE, INVERSE:
		return true
	}
	return false
}

// precedence is used by the printer to decide where parentheses are needed
func (o Op) precedence() int {
	switch o {
	case EQUIV:
		return 1
	case IMPLIES:
		return 2
	case OR:
		return 3
	case AND:
		return 4
	case NOT:
		return 5
	case EQ, NEQ, LT, LEQ, GT, GEQ, INSET, NOTINSET, SUBSET, PSUBSET:
		return 6
	case PLUS, MINUS, UNION, SETDIFF, MUNION, PLUSPLUS, CONCAT:
		return 7
	case TIMES, DIVIDE, DIV, REM, MOD, INTER:
		return 8
	case DOMRESTO, DOMRESBY, RNGRESTO, RNGRESBY:
		return 9
	case COMP, STARSTAR:
		return 11
	default:
		return 10
	}
}
