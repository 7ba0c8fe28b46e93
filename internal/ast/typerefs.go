package ast

// TypeRef is a surface-syntax type annotation, unresolved until checking
type TypeRef interface {
	Node
	typeRefNode()
}

// BasicTypeRef represents bool, nat1, nat, int, rat, real, char or token
type BasicTypeRef struct {
	Name   string
	Line   int
	Column int
}

// NamedTypeRef refers to a type definition, optionally module-qualified
type NamedTypeRef struct {
	Module string
	Name   string
	Line   int
	Column int
}

// QuoteTypeRef represents <QUOTE>
type QuoteTypeRef struct {
	Value  string
	Line   int
	Column int
}

// SetTypeRef represents "set of T" or "set1 of T"
type SetTypeRef struct {
	Elem     TypeRef
	NonEmpty bool
	Line     int
	Column   int
}

// SeqTypeRef represents "seq of T" or "seq1 of T"
type SeqTypeRef struct {
	Elem     TypeRef
	NonEmpty bool
	Line     int
	Column   int
}

// MapTypeRef represents "map D to R" or "inmap D to R"
type MapTypeRef struct {
	Dom       TypeRef
	Rng       TypeRef
	Injective bool
	Line      int
	Column    int
}

// ProductTypeRef represents "T1 * T2 * ..."
type ProductTypeRef struct {
	Elems  []TypeRef
	Line   int
	Column int
}

// UnionTypeRef represents "T1 | T2 | ..."
type UnionTypeRef struct {
	Members []TypeRef
	Line    int
	Column  int
}

// OptionalTypeRef represents "[T]"
type OptionalTypeRef struct {
	Elem   TypeRef
	Line   int
	Column int
}

// RecordTypeRef is the right-hand side of "T :: f1 : T1 ..."
type RecordTypeRef struct {
	Fields []*Field
	Line   int
	Column int
}

// FunctionTypeRef represents the partial "A * B -> R" or the total "A +> R"
type FunctionTypeRef struct {
	Params []TypeRef
	Result TypeRef
	Total  bool
	Line   int
	Column int
}

// OperationTypeRef represents "A ==> R"
type OperationTypeRef struct {
	Params []TypeRef
	Result TypeRef // nil for "()"
	Line   int
	Column int
}

// ParamTypeRef is a use of a type parameter: @T
type ParamTypeRef struct {
	Name   string
	Line   int
	Column int
}

func (t *BasicTypeRef) Pos() (int, int)     { return t.Line, t.Column }
func (t *NamedTypeRef) Pos() (int, int)     { return t.Line, t.Column }
func (t *QuoteTypeRef) Pos() (int, int)     { return t.Line, t.Column }
func (t *SetTypeRef) Pos() (int, int)       { return t.Line, t.Column }
func (t *SeqTypeRef) Pos() (int, int)       { return t.Line, t.Column }
func (t *MapTypeRef) Pos() (int, int)       { return t.Line, t.Column }
func (t *ProductTypeRef) Pos() (int, int)   { return t.Line, t.Column }
func (t *UnionTypeRef) Pos() (int, int)     { return t.Line, t.Column }
func (t *OptionalTypeRef) Pos() (int, int)  { return t.Line, t.Column }
func (t *RecordTypeRef) Pos() (int, int)    { return t.Line, t.Column }
func (t *FunctionTypeRef) Pos() (int, int)  { return t.Line, t.Column }
func (t *OperationTypeRef) Pos() (int, int) { return t.Line, t.Column }
func (t *ParamTypeRef) Pos() (int, int)     { return t.Line, t.Column }

func (t *BasicTypeRef) typeRefNode()     {}
func (t *NamedTypeRef) typeRefNode()     {}
func (t *QuoteTypeRef) typeRefNode()     {}
func (t *SetTypeRef) typeRefNode()       {}
func (t *SeqTypeRef) typeRefNode()       {}
func (t *MapTypeRef) typeRefNode()       {}
func (t *ProductTypeRef) typeRefNode()   {}
func (t *UnionTypeRef) typeRefNode()     {}
func (t *OptionalTypeRef) typeRefNode()  {}
func (t *RecordTypeRef) typeRefNode()    {}
func (t *FunctionTypeRef) typeRefNode()  {}
func (t *OperationTypeRef) typeRefNode() {}
func (t *ParamTypeRef) typeRefNode()     {}
