package types

// Equal reports structural equality. Records, named types and classes
// compare by name; unions compare as member sets.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case *Basic:
		b, ok := b.(*Basic)
		return ok && a.Kind == b.Kind
	case *Quote:
		b, ok := b.(*Quote)
		return ok && a.Value == b.Value
	case *Set:
		b, ok := b.(*Set)
		return ok && a.NonEmpty == b.NonEmpty && Equal(a.Elem, b.Elem)
	case *Seq:
		b, ok := b.(*Seq)
		return ok && a.NonEmpty == b.NonEmpty && Equal(a.Elem, b.Elem)
	case *Map:
		b, ok := b.(*Map)
		return ok && a.Injective == b.Injective && Equal(a.Dom, b.Dom) && Equal(a.Rng, b.Rng)
	case *Product:
		b, ok := b.(*Product)
		return ok && equalLists(a.Elems, b.Elems)
	case *Union:
		b, ok := b.(*Union)
		if !ok || len(a.Members) != len(b.Members) {
			return false
		}
		for _, m := range a.Members {
			if !containsEqual(b.Members, m) {
				return false
			}
		}
		return true
	case *Optional:
		b, ok := b.(*Optional)
		return ok && Equal(a.Elem, b.Elem)
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Record:
		b, ok := b.(*Record)
		return ok && a.Module == b.Module && a.Name == b.Name
	case *Named:
		b, ok := b.(*Named)
		return ok && a.Module == b.Module && a.Name == b.Name
	case *Function:
		b, ok := b.(*Function)
		return ok && a.Total == b.Total && equalLists(a.Params, b.Params) && Equal(a.Result, b.Result)
	case *Operation:
		b, ok := b.(*Operation)
		return ok && equalLists(a.Params, b.Params) && Equal(a.Result, b.Result)
	case *Parameter:
		b, ok := b.(*Parameter)
		return ok && a.Name == b.Name
	case *Unresolved:
		b, ok := b.(*Unresolved)
		return ok && a.Module == b.Module && a.Name == b.Name
	case *Class:
		b, ok := b.(*Class)
		return ok && a.Name == b.Name
	case *Unknown:
		_, ok := b.(*Unknown)
		return ok
	case *Void:
		_, ok := b.(*Void)
		return ok
	}
	return false
}

func equalLists(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func containsEqual(ts []Type, t Type) bool {
	for _, m := range ts {
		if Equal(m, t) {
			return true
		}
	}
	return false
}

// pair is an assumption used to terminate comparisons of recursive types
type pair struct{ a, b *Named }

type comparator struct {
	assumed map[pair]bool
}

func newComparator() *comparator { return &comparator{assumed: map[pair]bool{}} }

// IsSubtype reports whether every value of a is a value of b, so that a
// value of a can be used where b is expected without a run-time check.
func IsSubtype(a, b Type) bool { return newComparator().subtype(a, b) }

func (c *comparator) subtype(a, b Type) bool {
	if IsUnknown(a) || IsUnknown(b) {
		return true
	}
	if Equal(a, b) {
		return true
	}

	// Named types: a named value satisfies its own invariant, so a may be
	// unfolded freely; b may only be unfolded when it has no invariant.
	an, aNamed := a.(*Named)
	bn, bNamed := b.(*Named)
	if aNamed && bNamed {
		p := pair{an, bn}
		if c.assumed[p] {
			return true
		}
		c.assumed[p] = true
	}
	if bNamed {
		if bn.HasInv || bn.Of == nil {
			if aNamed && an.Of != nil {
				return c.subtype(an.Of, b)
			}
			return false
		}
		return c.subtype(a, bn.Of)
	}
	if aNamed {
		if an.Of == nil {
			return false
		}
		return c.subtype(an.Of, b)
	}

	if au, ok := a.(*Union); ok {
		for _, m := range au.Members {
			if !c.subtype(m, b) {
				return false
			}
		}
		return true
	}
	if ao, ok := a.(*Optional); ok {
		if bo, ok := b.(*Optional); ok {
			return c.subtype(ao.Elem, bo.Elem)
		}
		return c.subtype(ao.Elem, b) && c.subtype(NilType, b)
	}

	switch b := b.(type) {
	case *Union:
		for _, m := range b.Members {
			if c.subtype(a, m) {
				return true
			}
		}
		return false
	case *Optional:
		if _, ok := a.(*Nil); ok {
			return true
		}
		return c.subtype(a, b.Elem)
	case *Parameter:
		_, ok := a.(*Parameter)
		return ok && Equal(a, b)
	}

	switch a := a.(type) {
	case *Basic:
		b, ok := b.(*Basic)
		if !ok {
			return false
		}
		if a.Kind.IsNumeric() && b.Kind.IsNumeric() {
			return a.Kind.numericRank() <= b.Kind.numericRank()
		}
		return a.Kind == b.Kind
	case *Quote:
		return false
	case *Set:
		b, ok := b.(*Set)
		if !ok || (b.NonEmpty && !a.NonEmpty) {
			return false
		}
		return c.subtype(a.Elem, b.Elem)
	case *Seq:
		b, ok := b.(*Seq)
		if !ok || (b.NonEmpty && !a.NonEmpty) {
			return false
		}
		return c.subtype(a.Elem, b.Elem)
	case *Map:
		b, ok := b.(*Map)
		if !ok || (b.Injective && !a.Injective) {
			return false
		}
		return c.subtype(a.Dom, b.Dom) && c.subtype(a.Rng, b.Rng)
	case *Product:
		b, ok := b.(*Product)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !c.subtype(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *Function:
		b, ok := b.(*Function)
		if !ok || len(a.Params) != len(b.Params) || (!a.Total && b.Total) {
			return false
		}
		for i := range a.Params {
			if !c.compatible(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return c.subtype(a.Result, b.Result)
	case *Operation:
		b, ok := b.(*Operation)
		if !ok || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !c.compatible(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return c.subtype(a.Result, b.Result)
	case *Class:
		b, ok := b.(*Class)
		if !ok {
			return false
		}
		for _, anc := range a.Ancestors {
			if anc == b.Name {
				return true
			}
		}
		return false
	case *Parameter:
		return false
	}
	return false
}

// Compatible reports whether a and b share at least some values, i.e. a
// value of one may be assignable to the other subject to a run-time check.
// It is the test used for declared-versus-actual type checks.
func Compatible(a, b Type) bool { return newComparator().compatible(a, b) }

func (c *comparator) compatible(a, b Type) bool {
	if IsUnknown(a) || IsUnknown(b) {
		return true
	}
	if _, ok := a.(*Parameter); ok {
		return true
	}
	if _, ok := b.(*Parameter); ok {
		return true
	}
	if Equal(a, b) {
		return true
	}

	an, aNamed := a.(*Named)
	bn, bNamed := b.(*Named)
	if aNamed && bNamed {
		p := pair{an, bn}
		if c.assumed[p] {
			return true
		}
		c.assumed[p] = true
	}
	if aNamed {
		if an.Of == nil {
			return false
		}
		return c.compatible(an.Of, b)
	}
	if bNamed {
		if bn.Of == nil {
			return false
		}
		return c.compatible(a, bn.Of)
	}

	if au, ok := a.(*Union); ok {
		for _, m := range au.Members {
			if c.compatible(m, b) {
				return true
			}
		}
		return false
	}
	if bu, ok := b.(*Union); ok {
		for _, m := range bu.Members {
			if c.compatible(a, m) {
				return true
			}
		}
		return false
	}
	if ao, ok := a.(*Optional); ok {
		if _, ok := b.(*Nil); ok {
			return true
		}
		if bo, ok := b.(*Optional); ok {
			return c.compatible(ao.Elem, bo.Elem)
		}
		return c.compatible(ao.Elem, b)
	}
	if bo, ok := b.(*Optional); ok {
		if _, ok := a.(*Nil); ok {
			return true
		}
		return c.compatible(a, bo.Elem)
	}

	switch a := a.(type) {
	case *Basic:
		b, ok := b.(*Basic)
		if !ok {
			return false
		}
		if a.Kind.IsNumeric() && b.Kind.IsNumeric() {
			return true
		}
		return a.Kind == b.Kind
	case *Quote:
		return false
	case *Set:
		b, ok := b.(*Set)
		return ok && c.compatible(a.Elem, b.Elem)
	case *Seq:
		b, ok := b.(*Seq)
		return ok && c.compatible(a.Elem, b.Elem)
	case *Map:
		b, ok := b.(*Map)
		return ok && c.compatible(a.Dom, b.Dom) && c.compatible(a.Rng, b.Rng)
	case *Product:
		b, ok := b.(*Product)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !c.compatible(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *Function:
		b, ok := b.(*Function)
		if !ok || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !c.compatible(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return c.compatible(a.Result, b.Result)
	case *Operation:
		b, ok := b.(*Operation)
		if !ok || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !c.compatible(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return c.compatible(a.Result, b.Result)
	case *Class:
		b, ok := b.(*Class)
		if !ok {
			return false
		}
		return c.subtype(a, b) || c.subtype(b, a)
	case *Nil, *Record, *Void:
		return false
	}
	return false
}
