package types

// Substitute replaces type parameters in t by the types bound to their
// names. Named and record types are returned unchanged since they cannot
// mention a parameter.
func Substitute(t Type, bind map[string]Type) Type {
	if len(bind) == 0 {
		return t
	}
	switch t := t.(type) {
	case *Parameter:
		if b, ok := bind[t.Name]; ok {
			return b
		}
		return t
	case *Set:
		return &Set{Elem: Substitute(t.Elem, bind), NonEmpty: t.NonEmpty}
	case *Seq:
		return &Seq{Elem: Substitute(t.Elem, bind), NonEmpty: t.NonEmpty}
	case *Map:
		return &Map{Dom: Substitute(t.Dom, bind), Rng: Substitute(t.Rng, bind), Injective: t.Injective}
	case *Product:
		return &Product{Elems: substituteAll(t.Elems, bind)}
	case *Union:
		return NewUnion(substituteAll(t.Members, bind)...)
	case *Optional:
		return &Optional{Elem: Substitute(t.Elem, bind)}
	case *Function:
		return &Function{
			Params: substituteAll(t.Params, bind),
			Result: Substitute(t.Result, bind),
			Total:  t.Total,
		}
	case *Operation:
		return &Operation{Params: substituteAll(t.Params, bind), Result: Substitute(t.Result, bind), Pure: t.Pure}
	}
	return t
}

func substituteAll(ts []Type, bind map[string]Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Substitute(t, bind)
	}
	return out
}
