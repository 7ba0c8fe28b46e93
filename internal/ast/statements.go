package ast

// Statement nodes
type Statement interface {
	Node
	stmtNode()
}

// Designator is the target of an assignment
type Designator interface {
	Node
	designatorNode()
}

// NameDesignator assigns a state variable or local: x := e
type NameDesignator struct {
	Name   string
	Line   int
	Column int
}

// FieldDesignator assigns a record field: d.f := e
type FieldDesignator struct {
	Object Designator
	Field  string
	Line   int
	Column int
}

// IndexDesignator assigns a map or sequence element: d(k) := e
type IndexDesignator struct {
	Object Designator
	Index  Expression
	Line   int
	Column int
}

// AssignStmt represents d := e
type AssignStmt struct {
	Target Designator
	Value  Expression
	Line   int
	Column int
}

// AtomicStmt represents atomic (a1; a2; ...)
type AtomicStmt struct {
	Assigns []*AssignStmt
	Line    int
	Column  int
}

// DclStmt represents "dcl x : T := e" inside a block
type DclStmt struct {
	Name   string
	Type   TypeRef
	Init   Expression // optional
	Line   int
	Column int
}

// BlockStmt represents (dcl ...; s1; s2)
type BlockStmt struct {
	Dcls   []*DclStmt
	Stmts  []Statement
	Line   int
	Column int
}

// CallStmt represents op(args) or M`op(args)
type CallStmt struct {
	Module string
	Name   string
	Args   []Expression
	Line   int
	Column int
}

// ObjectCallStmt represents obj.op(args)
type ObjectCallStmt struct {
	Object Expression
	Name   string
	Args   []Expression
	Line   int
	Column int
}

// ReturnStmt represents return [e]
type ReturnStmt struct {
	Value  Expression // nil for a bare return
	Line   int
	Column int
}

// ElseIfStmt is one "elseif c then s" arm
type ElseIfStmt struct {
	Cond   Expression
	Then   Statement
	Line   int
	Column int
}

// IfStmt represents if c then s elseif ... else s
type IfStmt struct {
	Cond    Expression
	Then    Statement
	ElseIfs []*ElseIfStmt
	Else    Statement
	Line    int
	Column  int
}

// CaseStmtAlt is one "p1, p2 -> s" alternative
type CaseStmtAlt struct {
	Patterns []Pattern
	Body     Statement
	Line     int
	Column   int
}

// CasesStmt represents cases e: alts, others -> s end
type CasesStmt struct {
	Subject Expression
	Alts    []*CaseStmtAlt
	Others  Statement
	Line    int
	Column  int
}

// LetStmt represents let p = e in s
type LetStmt struct {
	Defs   []*ValueDef
	Body   Statement
	Line   int
	Column int
}

// LetBeStStmt represents let b be st e in s
type LetBeStStmt struct {
	Bind     MultipleBind
	SuchThat Expression
	Body     Statement
	Line     int
	Column   int
}

// WhileStmt represents while c do s
type WhileStmt struct {
	Cond   Expression
	Body   Statement
	Line   int
	Column int
}

// ForIndexStmt represents for i = a to b by c do s
type ForIndexStmt struct {
	Var    string
	From   Expression
	To     Expression
	By     Expression // optional
	Body   Statement
	Line   int
	Column int
}

// ForSetStmt represents for all p in set s do st
type ForSetStmt struct {
	Pattern Pattern
	Set     Expression
	Body    Statement
	Line    int
	Column  int
}

// ForSeqStmt represents for p in [reverse] s do st
type ForSeqStmt struct {
	Pattern Pattern
	Seq     Expression
	Reverse bool
	Body    Statement
	Line    int
	Column  int
}

// SkipStmt represents skip
type SkipStmt struct {
	Line   int
	Column int
}

// ErrorStmt represents error
type ErrorStmt struct {
	Line   int
	Column int
}

// ExitStmt represents exit [e]
type ExitStmt struct {
	Value  Expression
	Line   int
	Column int
}

// NotYetSpecStmt represents is not yet specified
type NotYetSpecStmt struct {
	Line   int
	Column int
}

// SubclassRespStmt represents is subclass responsibility
type SubclassRespStmt struct {
	Line   int
	Column int
}

func (d *NameDesignator) Pos() (int, int)   { return d.Line, d.Column }
func (d *FieldDesignator) Pos() (int, int)  { return d.Line, d.Column }
func (d *IndexDesignator) Pos() (int, int)  { return d.Line, d.Column }
func (s *AssignStmt) Pos() (int, int)       { return s.Line, s.Column }
func (s *AtomicStmt) Pos() (int, int)       { return s.Line, s.Column }
func (s *DclStmt) Pos() (int, int)          { return s.Line, s.Column }
func (s *BlockStmt) Pos() (int, int)        { return s.Line, s.Column }
func (s *CallStmt) Pos() (int, int)         { return s.Line, s.Column }
func (s *ObjectCallStmt) Pos() (int, int)   { return s.Line, s.Column }
func (s *ReturnStmt) Pos() (int, int)       { return s.Line, s.Column }
func (s *ElseIfStmt) Pos() (int, int)       { return s.Line, s.Column }
func (s *IfStmt) Pos() (int, int)           { return s.Line, s.Column }
func (s *CaseStmtAlt) Pos() (int, int)      { return s.Line, s.Column }
func (s *CasesStmt) Pos() (int, int)        { return s.Line, s.Column }
func (s *LetStmt) Pos() (int, int)          { return s.Line, s.Column }
func (s *LetBeStStmt) Pos() (int, int)      { return s.Line, s.Column }
func (s *WhileStmt) Pos() (int, int)        { return s.Line, s.Column }
func (s *ForIndexStmt) Pos() (int, int)     { return s.Line, s.Column }
func (s *ForSetStmt) Pos() (int, int)       { return s.Line, s.Column }
func (s *ForSeqStmt) Pos() (int, int)       { return s.Line, s.Column }
func (s *SkipStmt) Pos() (int, int)         { return s.Line, s.Column }
func (s *ErrorStmt) Pos() (int, int)        { return s.Line, s.Column }
func (s *ExitStmt) Pos() (int, int)         { return s.Line, s.Column }
func (s *NotYetSpecStmt) Pos() (int, int)   { return s.Line, s.Column }
func (s *SubclassRespStmt) Pos() (int, int) { return s.Line, s.Column }

func (d *NameDesignator) designatorNode()  {}
func (d *FieldDesignator) designatorNode() {}
func (d *IndexDesignator) designatorNode() {}

func (s *AssignStmt) stmtNode()       {}
func (s *AtomicStmt) stmtNode()       {}
func (s *BlockStmt) stmtNode()        {}
func (s *CallStmt) stmtNode()         {}
func (s *ObjectCallStmt) stmtNode()   {}
func (s *ReturnStmt) stmtNode()       {}
func (s *IfStmt) stmtNode()           {}
func (s *CasesStmt) stmtNode()        {}
func (s *LetStmt) stmtNode()          {}
func (s *LetBeStStmt) stmtNode()      {}
func (s *WhileStmt) stmtNode()        {}
func (s *ForIndexStmt) stmtNode()     {}
func (s *ForSetStmt) stmtNode()       {}
func (s *ForSeqStmt) stmtNode()       {}
func (s *SkipStmt) stmtNode()         {}
func (s *ErrorStmt) stmtNode()        {}
func (s *ExitStmt) stmtNode()         {}
func (s *NotYetSpecStmt) stmtNode()   {}
func (s *SubclassRespStmt) stmtNode() {}
