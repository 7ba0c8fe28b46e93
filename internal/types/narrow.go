package types

// Qualifier is a capability an operator requires of its operand
type Qualifier int

const (
	QNumeric Qualifier = iota
	QSet
	QSeq
	QMap
	QRecord
	QProduct
	QFunction
	QBool
	QChar
	QOrdered
	QClass
)

var qualifierNames = [...]string{
	"numeric", "set", "seq", "map", "record", "product", "function",
	"bool", "char", "ordered", "object",
}

func (q Qualifier) String() string {
	if int(q) < len(qualifierNames) {
		return qualifierNames[q]
	}
	return "?"
}

// Coverage says how much of a type satisfies a qualifier
type Coverage int

const (
	// None: no member qualifies; using the value is a checked error.
	None Coverage = iota
	// Partial: some members qualify; a subtype obligation is needed.
	Partial
	// Full: every member qualifies; nothing to prove.
	Full
)

func (c Coverage) String() string {
	switch c {
	case Full:
		return "full"
	case Partial:
		return "partial"
	default:
		return "none"
	}
}

// Matches reports whether a single (non-union) type has capability q
func Matches(t Type, q Qualifier) bool {
	if IsUnknown(t) {
		return true
	}
	if _, ok := t.(*Parameter); ok {
		return true
	}
	n, isNamed := t.(*Named)
	u := Unfold(t)
	if q == QOrdered && isNamed && n.HasOrd {
		return true
	}
	switch u := u.(type) {
	case *Basic:
		switch q {
		case QNumeric, QOrdered:
			return u.Kind.IsNumeric()
		case QBool:
			return u.Kind == Bool
		case QChar:
			return u.Kind == Char
		}
	case *Set:
		return q == QSet
	case *Seq:
		return q == QSeq
	case *Map:
		return q == QMap
	case *Record:
		return q == QRecord || (q == QOrdered && u.HasOrd)
	case *Product:
		return q == QProduct
	case *Function:
		return q == QFunction
	case *Class:
		return q == QClass
	case *Union, *Optional:
		for _, m := range Members(u) {
			if !Matches(m, q) {
				return false
			}
		}
		return true
	}
	return false
}

// Narrow returns the part of t that satisfies q and how much of t that is.
// With Full coverage the returned type is t itself; with None it is Unknown.
func Narrow(t Type, q Qualifier) (Type, Coverage) {
	if IsUnknown(t) {
		return t, Full
	}
	members := Members(t)
	var matched []Type
	for _, m := range members {
		if Matches(m, q) {
			matched = append(matched, m)
		}
	}
	switch {
	case len(matched) == len(members):
		return t, Full
	case len(matched) == 0:
		return UnknownType, None
	}
	return NewUnion(matched...), Partial
}

// NarrowOrdered narrows the two operands of an ordering comparison
// together. Each side keeps the members that can be ordered against some
// member of the other side, and its coverage says how much of it that is.
// Both coverages are None when no pair of members compares.
func NarrowOrdered(a, b Type) (na, nb Type, ca, cb Coverage) {
	if IsUnknown(a) || IsUnknown(b) {
		return a, b, Full, Full
	}
	// Members unfolds a named type, losing its ord clause
	if n, ok := a.(*Named); ok && n.HasOrd && Equal(a, b) {
		return a, b, Full, Full
	}
	keep := func(side, other []Type) []Type {
		var out []Type
		for _, x := range side {
			for _, y := range other {
				if orderedPair(x, y) {
					out = append(out, x)
					break
				}
			}
		}
		return out
	}
	am, bm := Members(a), Members(b)
	ka, kb := keep(am, bm), keep(bm, am)
	if len(ka) == 0 || len(kb) == 0 {
		return UnknownType, UnknownType, None, None
	}
	na, ca = a, Full
	if len(ka) < len(am) {
		na, ca = NewUnion(ka...), Partial
	}
	nb, cb = b, Full
	if len(kb) < len(bm) {
		nb, cb = NewUnion(kb...), Partial
	}
	return na, nb, ca, cb
}

// orderedPair reports whether single types a and b can be compared with <:
// two numbers, or two values of the same type with an ordering
func orderedPair(a, b Type) bool {
	if !Matches(a, QOrdered) || !Matches(b, QOrdered) {
		return false
	}
	if IsUnknown(a) || IsUnknown(b) {
		return true
	}
	_, ap := a.(*Parameter)
	_, bp := b.(*Parameter)
	if ap || bp {
		return true
	}
	an, aNum := Unfold(a).(*Basic)
	bn, bNum := Unfold(b).(*Basic)
	if aNum && bNum && an.Kind.IsNumeric() && bn.Kind.IsNumeric() {
		return true
	}
	return Equal(a, b)
}

// IsFinite reports whether t has finitely many values, so that a type bind
// over it can be enumerated.
func IsFinite(t Type) bool {
	return finite(t, map[*Named]bool{})
}

func finite(t Type, seen map[*Named]bool) bool {
	switch t := t.(type) {
	case *Basic:
		return t.Kind == Bool || t.Kind == Char
	case *Quote, *Nil, *Unknown, *Void:
		return true
	case *Set:
		return finite(t.Elem, seen)
	case *Seq:
		return false
	case *Map:
		return finite(t.Dom, seen) && finite(t.Rng, seen)
	case *Product:
		for _, e := range t.Elems {
			if !finite(e, seen) {
				return false
			}
		}
		return true
	case *Union:
		for _, m := range t.Members {
			if !finite(m, seen) {
				return false
			}
		}
		return true
	case *Optional:
		return finite(t.Elem, seen)
	case *Record:
		for _, f := range t.Fields {
			if !finite(f.Type, seen) {
				return false
			}
		}
		return true
	case *Named:
		if seen[t] || t.Of == nil {
			return false
		}
		seen[t] = true
		return finite(t.Of, seen)
	}
	// functions, operations, parameters, classes, tokens
	return false
}

// IsNumeric reports whether every member of t is numeric
func IsNumeric(t Type) bool {
	_, cov := Narrow(t, QNumeric)
	return cov == Full
}

// NumericKind returns the widest numeric kind among t's members
func NumericKind(t Type) (BasicKind, bool) {
	found := false
	var widest BasicKind
	for _, m := range Members(t) {
		if b, ok := Unfold(m).(*Basic); ok && b.Kind.IsNumeric() {
			if !found || b.Kind.numericRank() > widest.numericRank() {
				widest = b.Kind
			}
			found = true
		}
	}
	return widest, found
}

// WidestNumeric returns the narrowest basic numeric type that contains every
// numeric member of a and b. Non-numeric members are ignored.
func WidestNumeric(a, b Type) Type {
	ka, okA := NumericKind(a)
	kb, okB := NumericKind(b)
	switch {
	case okA && okB:
		if ka.numericRank() >= kb.numericRank() {
			return BasicOf(ka)
		}
		return BasicOf(kb)
	case okA:
		return BasicOf(ka)
	case okB:
		return BasicOf(kb)
	}
	return RealType
}

// ExcludesZero reports whether no value of t can be zero
func ExcludesZero(t Type) bool {
	for _, m := range Members(t) {
		b, ok := Unfold(m).(*Basic)
		if !ok || b.Kind != Nat1 {
			return false
		}
	}
	return true
}

// SetOf returns the element type of the set members of t
func SetOf(t Type) (Type, bool) {
	var elems []Type
	for _, m := range Members(t) {
		if IsUnknown(m) {
			return UnknownType, true
		}
		if s, ok := Unfold(m).(*Set); ok {
			elems = append(elems, s.Elem)
		}
	}
	if len(elems) == 0 {
		return UnknownType, false
	}
	return NewUnion(elems...), true
}

// SeqOf returns the element type of the sequence members of t
func SeqOf(t Type) (Type, bool) {
	var elems []Type
	for _, m := range Members(t) {
		if IsUnknown(m) {
			return UnknownType, true
		}
		if s, ok := Unfold(m).(*Seq); ok {
			elems = append(elems, s.Elem)
		}
	}
	if len(elems) == 0 {
		return UnknownType, false
	}
	return NewUnion(elems...), true
}

// IsNonEmptySeq reports whether every member of t is a seq1
func IsNonEmptySeq(t Type) bool {
	for _, m := range Members(t) {
		s, ok := Unfold(m).(*Seq)
		if !ok || !s.NonEmpty {
			return false
		}
	}
	return true
}

// MapOf returns the domain and range of the map members of t
func MapOf(t Type) (dom, rng Type, ok bool) {
	var doms, rngs []Type
	for _, m := range Members(t) {
		if IsUnknown(m) {
			return UnknownType, UnknownType, true
		}
		if mt, isMap := Unfold(m).(*Map); isMap {
			doms = append(doms, mt.Dom)
			rngs = append(rngs, mt.Rng)
		}
	}
	if len(doms) == 0 {
		return UnknownType, UnknownType, false
	}
	return NewUnion(doms...), NewUnion(rngs...), true
}

// ProductOf returns the product members of t with exactly n elements
func ProductOf(t Type, n int) (*Product, bool) {
	var found []*Product
	for _, m := range Members(t) {
		if p, ok := Unfold(m).(*Product); ok && (n <= 0 || len(p.Elems) == n) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return nil, false
	case 1:
		return found[0], true
	}
	// Merge same-arity products elementwise.
	elems := make([]Type, len(found[0].Elems))
	for i := range elems {
		var col []Type
		for _, p := range found {
			if i < len(p.Elems) {
				col = append(col, p.Elems[i])
			}
		}
		elems[i] = NewUnion(col...)
	}
	return &Product{Elems: elems}, true
}

// FunctionOf returns the single function member of t
func FunctionOf(t Type) (*Function, bool) {
	for _, m := range Members(t) {
		if f, ok := Unfold(m).(*Function); ok {
			return f, true
		}
	}
	return nil, false
}

// OperationOf returns the single operation member of t
func OperationOf(t Type) (*Operation, bool) {
	for _, m := range Members(t) {
		if o, ok := Unfold(m).(*Operation); ok {
			return o, true
		}
	}
	return nil, false
}

// RecordOf returns the record members of t
func RecordOf(t Type) []*Record {
	var out []*Record
	for _, m := range Members(t) {
		if r, ok := Unfold(m).(*Record); ok {
			out = append(out, r)
		}
	}
	return out
}

// ClassOf returns the class member of t
func ClassOf(t Type) (*Class, bool) {
	for _, m := range Members(t) {
		if c, ok := Unfold(m).(*Class); ok {
			return c, true
		}
	}
	return nil, false
}

// HasInvariant reports whether t, or a named type it unfolds through, carries an invariant
func HasInvariant(t Type) bool {
	for i := 0; i < 64; i++ {
		switch n := t.(type) {
		case *Named:
			if n.HasInv {
				return true
			}
			t = n.Of
		case *Record:
			return n.HasInv
		default:
			return false
		}
	}
	return false
}
