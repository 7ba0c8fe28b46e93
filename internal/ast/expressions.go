package ast

// Expression nodes
type Expression interface {
	Node
	exprNode()
}

// BoolLit represents true or false
type BoolLit struct {
	Value  bool
	Line   int
	Column int
}

// IntLit represents an integer literal
type IntLit struct {
	Value  int64
	Line   int
	Column int
}

// RealLit represents a real literal
type RealLit struct {
	Value  float64
	Line   int
	Column int
}

// CharLit represents 'c'
type CharLit struct {
	Value  rune
	Line   int
	Column int
}

// QuoteLit represents <QUOTE>
type QuoteLit struct {
	Value  string
	Line   int
	Column int
}

// TextLit represents "text", a seq of char
type TextLit struct {
	Value  string
	Line   int
	Column int
}

// NilLit represents nil
type NilLit struct {
	Line   int
	Column int
}

// Variable is a name reference, optionally qualified as M`x
type Variable struct {
	Module string
	Name   string
	Line   int
	Column int
}

// OldName represents x~ in an operation postcondition
type OldName struct {
	Name   string
	Line   int
	Column int
}

// SelfExpr represents self
type SelfExpr struct {
	Line   int
	Column int
}

// UnaryExpr represents a prefix operator application
type UnaryExpr struct {
	Op      Op
	Operand Expression
	Line    int
	Column  int
}

// BinaryExpr represents an infix operator application
type BinaryExpr struct {
	Op     Op
	Left   Expression
	Right  Expression
	Line   int
	Column int
}

// ApplyExpr represents f(args), m(k) or s(i)
type ApplyExpr struct {
	Fn     Expression
	Args   []Expression
	Line   int
	Column int
}

// FieldExpr represents r.f
type FieldExpr struct {
	Object Expression
	Field  string
	Line   int
	Column int
}

// TupleSelectExpr represents t.#n (1-based)
type TupleSelectExpr struct {
	Tuple  Expression
	Index  int
	Line   int
	Column int
}

// ElseIf is one "elseif c then e" arm
type ElseIf struct {
	Cond   Expression
	Then   Expression
	Line   int
	Column int
}

// IfExpr represents if c then e1 elseif ... else e2
type IfExpr struct {
	Cond    Expression
	Then    Expression
	ElseIfs []*ElseIf
	Else    Expression
	Line    int
	Column  int
}

// CaseAlt is one "p1, p2 -> e" alternative
type CaseAlt struct {
	Patterns []Pattern
	Result   Expression
	Line     int
	Column   int
}

// CasesExpr represents cases e: alts, others -> e end
type CasesExpr struct {
	Subject Expression
	Alts    []*CaseAlt
	Others  Expression // nil if absent
	Line    int
	Column  int
}

// LetExpr represents let p = e, ... in body
type LetExpr struct {
	Defs   []*ValueDef
	Body   Expression
	Line   int
	Column int
}

// LetBeStExpr represents let b be st p in body
type LetBeStExpr struct {
	Bind     MultipleBind
	SuchThat Expression // optional
	Body     Expression
	Line     int
	Column   int
}

// Quantifier distinguishes forall from exists
type Quantifier int

const (
	Forall Quantifier = iota
	Exists
)

// QuantifiedExpr represents forall/exists binds & pred
type QuantifiedExpr struct {
	Quantifier Quantifier
	Binds      []MultipleBind
	Pred       Expression
	Line       int
	Column     int
}

// Exists1Expr represents exists1 b & pred
type Exists1Expr struct {
	Bind   Bind
	Pred   Expression
	Line   int
	Column int
}

// IotaExpr represents iota b & pred
type IotaExpr struct {
	Bind   Bind
	Pred   Expression
	Line   int
	Column int
}

// SetEnumExpr represents {e1, e2}
type SetEnumExpr struct {
	Elems  []Expression
	Line   int
	Column int
}

// SeqEnumExpr represents [e1, e2]
type SeqEnumExpr struct {
	Elems  []Expression
	Line   int
	Column int
}

// Maplet is k |-> v
type Maplet struct {
	Key    Expression
	Value  Expression
	Line   int
	Column int
}

// MapEnumExpr represents {k |-> v, ...}
type MapEnumExpr struct {
	Maplets []*Maplet
	Line    int
	Column  int
}

// SetCompExpr represents {e | binds & pred}
type SetCompExpr struct {
	Elem   Expression
	Binds  []MultipleBind
	Pred   Expression // optional
	Line   int
	Column int
}

// SeqCompExpr represents [e | b & pred] with a set or seq bind
type SeqCompExpr struct {
	Elem   Expression
	Bind   Bind
	Pred   Expression
	Line   int
	Column int
}

// MapCompExpr represents {k |-> v | binds & pred}
type MapCompExpr struct {
	Maplet *Maplet
	Binds  []MultipleBind
	Pred   Expression
	Line   int
	Column int
}

// SetRangeExpr represents {lo, ..., hi}
type SetRangeExpr struct {
	Low    Expression
	High   Expression
	Line   int
	Column int
}

// SubseqExpr represents s(from, ..., to)
type SubseqExpr struct {
	Seq    Expression
	From   Expression
	To     Expression
	Line   int
	Column int
}

// TupleExpr represents mk_(e1, e2, ...)
type TupleExpr struct {
	Elems  []Expression
	Line   int
	Column int
}

// RecordExpr represents mk_T(e1, ...)
type RecordExpr struct {
	Module string
	Type   string
	Args   []Expression
	Line   int
	Column int
}

// RecordModifier is one "tag |-> e" of a mu expression
type RecordModifier struct {
	Tag    string
	Value  Expression
	Line   int
	Column int
}

// MuExpr represents mu(r, tag |-> e, ...)
type MuExpr struct {
	Record Expression
	Mods   []*RecordModifier
	Line   int
	Column int
}

// IsExpr represents is_T(e) or is_(e, T)
type IsExpr struct {
	Type   TypeRef
	Arg    Expression
	Line   int
	Column int
}

// NarrowExpr represents narrow_(e, T)
type NarrowExpr struct {
	Arg    Expression
	Type   TypeRef
	Line   int
	Column int
}

// LambdaExpr represents lambda p1:T1, p2:T2 & body
type LambdaExpr struct {
	Params []*TypeBind
	Body   Expression
	Line   int
	Column int
}

// FuncInstExpr represents f[T1, T2]
type FuncInstExpr struct {
	Fn     Expression
	Types  []TypeRef
	Line   int
	Column int
}

// NewExpr represents new C(args)
type NewExpr struct {
	Class  string
	Args   []Expression
	Line   int
	Column int
}

// SubclassRespExpr represents is subclass responsibility
type SubclassRespExpr struct {
	Line   int
	Column int
}

// NotYetSpecExpr represents is not yet specified
type NotYetSpecExpr struct {
	Line   int
	Column int
}

// UndefinedExpr represents undefined
type UndefinedExpr struct {
	Line   int
	Column int
}

func (e *BoolLit) Pos() (int, int)          { return e.Line, e.Column }
func (e *IntLit) Pos() (int, int)           { return e.Line, e.Column }
func (e *RealLit) Pos() (int, int)          { return e.Line, e.Column }
func (e *CharLit) Pos() (int, int)          { return e.Line, e.Column }
func (e *QuoteLit) Pos() (int, int)         { return e.Line, e.Column }
func (e *TextLit) Pos() (int, int)          { return e.Line, e.Column }
func (e *NilLit) Pos() (int, int)           { return e.Line, e.Column }
func (e *Variable) Pos() (int, int)         { return e.Line, e.Column }
func (e *OldName) Pos() (int, int)          { return e.Line, e.Column }
func (e *SelfExpr) Pos() (int, int)         { return e.Line, e.Column }
func (e *UnaryExpr) Pos() (int, int)        { return e.Line, e.Column }
func (e *BinaryExpr) Pos() (int, int)       { return e.Line, e.Column }
func (e *ApplyExpr) Pos() (int, int)        { return e.Line, e.Column }
func (e *FieldExpr) Pos() (int, int)        { return e.Line, e.Column }
func (e *TupleSelectExpr) Pos() (int, int)  { return e.Line, e.Column }
func (e *ElseIf) Pos() (int, int)           { return e.Line, e.Column }
func (e *IfExpr) Pos() (int, int)           { return e.Line, e.Column }
func (e *CaseAlt) Pos() (int, int)          { return e.Line, e.Column }
func (e *CasesExpr) Pos() (int, int)        { return e.Line, e.Column }
func (e *LetExpr) Pos() (int, int)          { return e.Line, e.Column }
func (e *LetBeStExpr) Pos() (int, int)      { return e.Line, e.Column }
func (e *QuantifiedExpr) Pos() (int, int)   { return e.Line, e.Column }
func (e *Exists1Expr) Pos() (int, int)      { return e.Line, e.Column }
func (e *IotaExpr) Pos() (int, int)         { return e.Line, e.Column }
func (e *SetEnumExpr) Pos() (int, int)      { return e.Line, e.Column }
func (e *SeqEnumExpr) Pos() (int, int)      { return e.Line, e.Column }
func (e *Maplet) Pos() (int, int)           { return e.Line, e.Column }
func (e *MapEnumExpr) Pos() (int, int)      { return e.Line, e.Column }
func (e *SetCompExpr) Pos() (int, int)      { return e.Line, e.Column }
func (e *SeqCompExpr) Pos() (int, int)      { return e.Line, e.Column }
func (e *MapCompExpr) Pos() (int, int)      { return e.Line, e.Column }
func (e *SetRangeExpr) Pos() (int, int)     { return e.Line, e.Column }
func (e *SubseqExpr) Pos() (int, int)       { return e.Line, e.Column }
func (e *TupleExpr) Pos() (int, int)        { return e.Line, e.Column }
func (e *RecordExpr) Pos() (int, int)       { return e.Line, e.Column }
func (e *RecordModifier) Pos() (int, int)   { return e.Line, e.Column }
func (e *MuExpr) Pos() (int, int)           { return e.Line, e.Column }
func (e *IsExpr) Pos() (int, int)           { return e.Line, e.Column }
func (e *NarrowExpr) Pos() (int, int)       { return e.Line, e.Column }
func (e *LambdaExpr) Pos() (int, int)       { return e.Line, e.Column }
func (e *FuncInstExpr) Pos() (int, int)     { return e.Line, e.Column }
func (e *NewExpr) Pos() (int, int)          { return e.Line, e.Column }
func (e *SubclassRespExpr) Pos() (int, int) { return e.Line, e.Column }
func (e *NotYetSpecExpr) Pos() (int, int)   { return e.Line, e.Column }
func (e *UndefinedExpr) Pos() (int, int)    { return e.Line, e.Column }

func (e *BoolLit) exprNode()          {}
func (e *IntLit) exprNode()           {}
func (e *RealLit) exprNode()          {}
func (e *CharLit) exprNode()          {}
func (e *QuoteLit) exprNode()         {}
func (e *TextLit) exprNode()          {}
func (e *NilLit) exprNode()           {}
func (e *Variable) exprNode()         {}
func (e *OldName) exprNode()          {}
func (e *SelfExpr) exprNode()         {}
func (e *UnaryExpr) exprNode()        {}
func (e *BinaryExpr) exprNode()       {}
func (e *ApplyExpr) exprNode()        {}
func (e *FieldExpr) exprNode()        {}
func (e *TupleSelectExpr) exprNode()  {}
func (e *IfExpr) exprNode()           {}
func (e *CasesExpr) exprNode()        {}
func (e *LetExpr) exprNode()          {}
func (e *LetBeStExpr) exprNode()      {}
func (e *QuantifiedExpr) exprNode()   {}
func (e *Exists1Expr) exprNode()      {}
func (e *IotaExpr) exprNode()         {}
func (e *SetEnumExpr) exprNode()      {}
func (e *SeqEnumExpr) exprNode()      {}
func (e *MapEnumExpr) exprNode()      {}
func (e *SetCompExpr) exprNode()      {}
func (e *SeqCompExpr) exprNode()      {}
func (e *MapCompExpr) exprNode()      {}
func (e *SetRangeExpr) exprNode()     {}
func (e *SubseqExpr) exprNode()       {}
func (e *TupleExpr) exprNode()        {}
func (e *RecordExpr) exprNode()       {}
func (e *MuExpr) exprNode()           {}
func (e *IsExpr) exprNode()           {}
func (e *NarrowExpr) exprNode()       {}
func (e *LambdaExpr) exprNode()       {}
func (e *FuncInstExpr) exprNode()     {}
func (e *NewExpr) exprNode()          {}
func (e *SubclassRespExpr) exprNode() {}
func (e *NotYetSpecExpr) exprNode()   {}
func (e *UndefinedExpr) exprNode()    {}
