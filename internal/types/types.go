// Package types is the resolved type model shared by the checker and the
// obligation generator.
package types

import (
	"strings"
)

// Type is a resolved type. The variant set is closed.
type Type interface {
	String() string
	typeNode()
}

// BasicKind enumerates the basic types
type BasicKind int

const (
	Bool BasicKind = iota
	Nat1
	Nat
	Int
	Rat
	Real
	Char
	Token
)

var basicNames = [...]string{"bool", "nat1", "nat", "int", "rat", "real", "char", "token"}

func (k BasicKind) String() string {
	if int(k) < len(basicNames) {
		return basicNames[k]
	}
	return "?"
}

// BasicKindByName maps a surface name to its kind
func BasicKindByName(name string) (BasicKind, bool) {
	for i, n := range basicNames {
		if n == name {
			return BasicKind(i), true
		}
	}
	return 0, false
}

// IsNumeric reports whether the kind is one of nat1, nat, int, rat, real
func (k BasicKind) IsNumeric() bool { return k >= Nat1 && k <= Real }

// numericRank orders the numeric kinds so that a lower rank is a subtype of a higher one
func (k BasicKind) numericRank() int { return int(k - Nat1) }

type (
	Basic struct{ Kind BasicKind }

	Quote struct{ Value string }

	Set struct {
		Elem     Type
		NonEmpty bool
	}

	Seq struct {
		Elem     Type
		NonEmpty bool
	}

	Map struct {
		Dom, Rng  Type
		Injective bool
	}

	Product struct{ Elems []Type }

	// Union members are flattened and de-duplicated; build with NewUnion.
	Union struct{ Members []Type }

	Optional struct{ Elem Type }

	Nil struct{}

	Field struct {
		Tag        string
		Type       Type
		EqAbstract bool
	}

	// Record is a "::" type; records compare nominally.
	Record struct {
		Module string
		Name   string
		Fields []Field
		HasInv bool
		HasEq  bool
		HasOrd bool
	}

	// Named is a "T = ..." type. Of may refer back to the Named value itself
	// through a productive constructor, so traversals must not unfold blindly.
	Named struct {
		Module string
		Name   string
		Of     Type
		HasInv bool
		HasEq  bool
		HasOrd bool
	}

	Function struct {
		Params     []Type
		Result     Type
		Total      bool
		TypeParams []string
	}

	Operation struct {
		Params []Type
		Result Type
		Pure   bool
	}

	// Parameter is a type variable @T inside a polymorphic definition
	Parameter struct{ Name string }

	// Unresolved is a reference not yet bound to a definition
	Unresolved struct {
		Module string
		Name   string
	}

	Class struct {
		Name      string
		Ancestors []string
	}

	// Unknown is the type of anything that failed to check. It is compatible
	// with everything so that one error does not cascade.
	Unknown struct{}

	// Void is the result type of operations that return no value
	Void struct{}
)

func (*Basic) typeNode()      {}
func (*Quote) typeNode()      {}
func (*Set) typeNode()        {}
func (*Seq) typeNode()        {}
func (*Map) typeNode()        {}
func (*Product) typeNode()    {}
func (*Union) typeNode()      {}
func (*Optional) typeNode()   {}
func (*Nil) typeNode()        {}
func (*Record) typeNode()     {}
func (*Named) typeNode()      {}
func (*Function) typeNode()   {}
func (*Operation) typeNode()  {}
func (*Parameter) typeNode()  {}
func (*Unresolved) typeNode() {}
func (*Class) typeNode()      {}
func (*Unknown) typeNode()    {}
func (*Void) typeNode()       {}

// Shared singletons for the common leaf types
var (
	BoolType    = &Basic{Kind: Bool}
	Nat1Type    = &Basic{Kind: Nat1}
	NatType     = &Basic{Kind: Nat}
	IntType     = &Basic{Kind: Int}
	RatType     = &Basic{Kind: Rat}
	RealType    = &Basic{Kind: Real}
	CharType    = &Basic{Kind: Char}
	TokenType   = &Basic{Kind: Token}
	NilType     = &Nil{}
	UnknownType = &Unknown{}
	VoidType    = &Void{}
)

// BasicOf returns the shared basic type for kind
func BasicOf(k BasicKind) *Basic {
	switch k {
	case Bool:
		return BoolType
	case Nat1:
		return Nat1Type
	case Nat:
		return NatType
	case Int:
		return IntType
	case Rat:
		return RatType
	case Real:
		return RealType
	case Char:
		return CharType
	default:
		return TokenType
	}
}

func (t *Basic) String() string { return t.Kind.String() }
func (t *Quote) String() string { return "<" + t.Value + ">" }

func (t *Set) String() string {
	if t.NonEmpty {
		return "set1 of " + wrap(t.Elem)
	}
	return "set of " + wrap(t.Elem)
}

func (t *Seq) String() string {
	if t.NonEmpty {
		return "seq1 of " + wrap(t.Elem)
	}
	return "seq of " + wrap(t.Elem)
}

func (t *Map) String() string {
	kw := "map "
	if t.Injective {
		kw = "inmap "
	}
	return kw + wrap(t.Dom) + " to " + wrap(t.Rng)
}

func (t *Product) String() string { return "(" + join(t.Elems, " * ") + ")" }
func (t *Union) String() string   { return "(" + join(t.Members, " | ") + ")" }
func (t *Optional) String() string {
	return "[" + t.Elem.String() + "]"
}
func (t *Nil) String() string    { return "nil" }
func (t *Record) String() string { return t.Name }
func (t *Named) String() string  { return t.Name }

func (t *Function) String() string {
	arrow := " -> "
	if t.Total {
		arrow = " +> "
	}
	params := "()"
	if len(t.Params) > 0 {
		params = join(t.Params, " * ")
	}
	return "(" + params + arrow + t.Result.String() + ")"
}

func (t *Operation) String() string {
	params := "()"
	if len(t.Params) > 0 {
		params = join(t.Params, " * ")
	}
	return "(" + params + " ==> " + t.Result.String() + ")"
}

func (t *Parameter) String() string  { return "@" + t.Name }
func (t *Unresolved) String() string { return "?" + t.Name }
func (t *Class) String() string      { return t.Name }
func (t *Unknown) String() string    { return "?" }
func (t *Void) String() string       { return "()" }

func join(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func wrap(t Type) string {
	switch t.(type) {
	case *Map, *Set, *Seq:
		return "(" + t.String() + ")"
	}
	return t.String()
}

// Field returns the field called tag
func (t *Record) Field(tag string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return Field{}, false
}

// NewUnion builds a union from ts, flattening nested unions and dropping
// duplicates while keeping first-seen order. A single member is returned as is.
func NewUnion(ts ...Type) Type {
	var members []Type
	var add func(Type)
	add = func(t Type) {
		if u, ok := t.(*Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		for _, m := range members {
			if Equal(m, t) {
				return
			}
		}
		members = append(members, t)
	}
	for _, t := range ts {
		add(t)
	}
	switch len(members) {
	case 0:
		return UnknownType
	case 1:
		return members[0]
	}
	return &Union{Members: members}
}

// Unfold strips Named layers, returning the first non-Named type
func Unfold(t Type) Type {
	for i := 0; i < 64; i++ {
		n, ok := t.(*Named)
		if !ok || n.Of == nil {
			return t
		}
		t = n.Of
	}
	return UnknownType
}

// Members returns the alternatives a value of t may take: unions are
// flattened, named types unfolded, and an optional contributes nil.
func Members(t Type) []Type {
	var out []Type
	seen := map[*Named]bool{}
	var walk func(Type)
	walk = func(t Type) {
		switch t := t.(type) {
		case *Union:
			for _, m := range t.Members {
				walk(m)
			}
		case *Optional:
			walk(t.Elem)
			out = append(out, NilType)
		case *Named:
			if seen[t] || t.Of == nil {
				out = append(out, t)
				return
			}
			seen[t] = true
			// A named type with an invariant stays whole when it is not a union,
			// so its invariant is not lost.
			if t.HasInv {
				if _, isUnion := Unfold(t).(*Union); !isUnion {
					out = append(out, t)
					return
				}
			}
			walk(t.Of)
		default:
			out = append(out, t)
		}
	}
	walk(t)
	return out
}

// IsUnknown reports whether t carries no information
func IsUnknown(t Type) bool {
	switch t.(type) {
	case nil, *Unknown, *Unresolved:
		return true
	}
	return false
}
