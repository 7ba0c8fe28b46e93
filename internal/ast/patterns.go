package ast

// Pattern nodes appear in parameters, let definitions, cases and binds
type Pattern interface {
	Node
	patternNode()
}

// IdentifierPattern binds a name
type IdentifierPattern struct {
	Name   string
	Line   int
	Column int
}

// IgnorePattern is "-"
type IgnorePattern struct {
	Line   int
	Column int
}

// LiteralPattern matches a literal value; Lit is one of the literal expressions
type LiteralPattern struct {
	Lit    Expression
	Line   int
	Column int
}

// ExprPattern matches the value of (e)
type ExprPattern struct {
	Expr   Expression
	Line   int
	Column int
}

// TuplePattern represents mk_(p1, p2)
type TuplePattern struct {
	Elems  []Pattern
	Line   int
	Column int
}

// RecordPattern represents mk_T(p1, ...)
type RecordPattern struct {
	Type   string
	Fields []Pattern
	Line   int
	Column int
}

// SetEnumPattern represents {p1, p2}
type SetEnumPattern struct {
	Elems  []Pattern
	Line   int
	Column int
}

// SeqEnumPattern represents [p1, p2]
type SeqEnumPattern struct {
	Elems  []Pattern
	Line   int
	Column int
}

// UnionPattern represents p1 union p2
type UnionPattern struct {
	Left   Pattern
	Right  Pattern
	Line   int
	Column int
}

// ConcatPattern represents p1 ^ p2
type ConcatPattern struct {
	Left   Pattern
	Right  Pattern
	Line   int
	Column int
}

func (p *IdentifierPattern) Pos() (int, int) { return p.Line, p.Column }
func (p *IgnorePattern) Pos() (int, int)     { return p.Line, p.Column }
func (p *LiteralPattern) Pos() (int, int)    { return p.Line, p.Column }
func (p *ExprPattern) Pos() (int, int)       { return p.Line, p.Column }
func (p *TuplePattern) Pos() (int, int)      { return p.Line, p.Column }
func (p *RecordPattern) Pos() (int, int)     { return p.Line, p.Column }
func (p *SetEnumPattern) Pos() (int, int)    { return p.Line, p.Column }
func (p *SeqEnumPattern) Pos() (int, int)    { return p.Line, p.Column }
func (p *UnionPattern) Pos() (int, int)      { return p.Line, p.Column }
func (p *ConcatPattern) Pos() (int, int)     { return p.Line, p.Column }

func (p *IdentifierPattern) patternNode() {}
func (p *IgnorePattern) patternNode()     {}
func (p *LiteralPattern) patternNode()    {}
func (p *ExprPattern) patternNode()       {}
func (p *TuplePattern) patternNode()      {}
func (p *RecordPattern) patternNode()     {}
func (p *SetEnumPattern) patternNode()    {}
func (p *SeqEnumPattern) patternNode()    {}
func (p *UnionPattern) patternNode()      {}
func (p *ConcatPattern) patternNode()     {}

// Bind binds a single pattern: p in set s, p : T, p in seq s
type Bind interface {
	Node
	bindNode()
}

// SetBind represents p in set s
type SetBind struct {
	Pattern Pattern
	Set     Expression
	Line    int
	Column  int
}

// TypeBind represents p : T
type TypeBind struct {
	Pattern Pattern
	Type    TypeRef
	Line    int
	Column  int
}

// SeqBind represents p in seq s
type SeqBind struct {
	Pattern Pattern
	Seq     Expression
	Line    int
	Column  int
}

func (b *SetBind) Pos() (int, int)  { return b.Line, b.Column }
func (b *TypeBind) Pos() (int, int) { return b.Line, b.Column }
func (b *SeqBind) Pos() (int, int)  { return b.Line, b.Column }

func (b *SetBind) bindNode()  {}
func (b *TypeBind) bindNode() {}
func (b *SeqBind) bindNode()  {}

// MultipleBind binds several patterns to the same source
type MultipleBind interface {
	Node
	multiBindNode()
}

// MultiSetBind represents p1, p2 in set s
type MultiSetBind struct {
	Patterns []Pattern
	Set      Expression
	Line     int
	Column   int
}

// MultiTypeBind represents p1, p2 : T
type MultiTypeBind struct {
	Patterns []Pattern
	Type     TypeRef
	Line     int
	Column   int
}

// MultiSeqBind represents p1, p2 in seq s
type MultiSeqBind struct {
	Patterns []Pattern
	Seq      Expression
	Line     int
	Column   int
}

func (b *MultiSetBind) Pos() (int, int)  { return b.Line, b.Column }
func (b *MultiTypeBind) Pos() (int, int) { return b.Line, b.Column }
func (b *MultiSeqBind) Pos() (int, int)  { return b.Line, b.Column }

func (b *MultiSetBind) multiBindNode()  {}
func (b *MultiTypeBind) multiBindNode() {}
func (b *MultiSeqBind) multiBindNode()  {}

// BindPatterns returns the patterns a multiple bind introduces
func BindPatterns(b MultipleBind) []Pattern {
	switch b := b.(type) {
	case *MultiSetBind:
		return b.Patterns
	case *MultiTypeBind:
		return b.Patterns
	case *MultiSeqBind:
		return b.Patterns
	}
	return nil
}

// PatternNames returns the identifiers bound by a pattern, in order
func PatternNames(p Pattern) []string {
	var names []string
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch p := p.(type) {
		case *IdentifierPattern:
			names = append(names, p.Name)
		case *TuplePattern:
			for _, e := range p.Elems {
				walk(e)
			}
		case *RecordPattern:
			for _, f := range p.Fields {
				walk(f)
			}
		case *SetEnumPattern:
			for _, e := range p.Elems {
				walk(e)
			}
		case *SeqEnumPattern:
			for _, e := range p.Elems {
				walk(e)
			}
		case *UnionPattern:
			walk(p.Left)
			walk(p.Right)
		case *ConcatPattern:
			walk(p.Left)
			walk(p.Right)
		}
	}
	walk(p)
	return names
}
