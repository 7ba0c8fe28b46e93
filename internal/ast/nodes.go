package ast

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Definition nodes
type Definition interface {
	Node
	defNode()
}

// Specification is the parser's output for one compilation unit: either a
// set of flat modules or a set of classes, depending on the dialect.
type Specification struct {
	Modules []*Module
	Classes []*Class
}

// Module represents a VDM-SL module (or the implicit DEFAULT module)
type Module struct {
	Name    string
	File    string
	Imports []*ImportFrom
	Exports *Exports // nil means "exports all" for a flat specification
	Defs    []Definition
	Line    int
	Column  int
}

func (m *Module) Pos() (int, int) { return m.Line, m.Column }

// ImportKind distinguishes what an import or export item names
type ImportKind int

const (
	ImportType ImportKind = iota
	ImportValue
	ImportFunction
	ImportOperation
)

// String returns the keyword used for the import kind
func (k ImportKind) String() string {
	switch k {
	case ImportType:
		return "types"
	case ImportValue:
		return "values"
	case ImportFunction:
		return "functions"
	case ImportOperation:
		return "operations"
	default:
		return "unknown"
	}
}

// ImportFrom represents "from M imports ..."
type ImportFrom struct {
	Module string
	All    bool
	Items  []*ImportItem
	Line   int
	Column int
}

func (i *ImportFrom) Pos() (int, int) { return i.Line, i.Column }

// ImportItem represents a single imported name, optionally renamed
type ImportItem struct {
	Kind    ImportKind
	Name    string
	Renamed string  // empty if not renamed
	Type    TypeRef // optional declared type
	Line    int
	Column  int
}

func (i *ImportItem) Pos() (int, int) { return i.Line, i.Column }

// Exports represents a module's export section
type Exports struct {
	All    bool
	Items  []*ExportItem
	Line   int
	Column int
}

func (e *Exports) Pos() (int, int) { return e.Line, e.Column }

// ExportItem represents one exported name
type ExportItem struct {
	Kind   ImportKind
	Name   string
	Struct bool // "types struct T" exports the record structure
	Type   TypeRef
	Line   int
	Column int
}

func (e *ExportItem) Pos() (int, int) { return e.Line, e.Column }

// Class represents a VDM++ / VDM-RT class
type Class struct {
	Name       string
	File       string
	Supertypes []string
	Defs       []Definition
	Line       int
	Column     int
}

func (c *Class) Pos() (int, int) { return c.Line, c.Column }

// Visibility is the access level of a definition
type Visibility int

const (
	Private Visibility = iota
	Protected
	Public
)

// String returns the keyword for the visibility
func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Protected:
		return "protected"
	case Public:
		return "public"
	default:
		return "unknown"
	}
}

// Access is the access specifier attached to a definition
type Access struct {
	Visibility Visibility
	Static     bool
	Async      bool
	Pure       bool
}

// TypeDef represents "T = type" or "T :: fields" with optional inv/eq/ord clauses
type TypeDef struct {
	Name   string
	Type   TypeRef // *RecordTypeRef for "::" definitions
	Inv    *InvClause
	Eq     *RelClause
	Ord    *RelClause
	Access Access
	Line   int
	Column int
}

func (t *TypeDef) Pos() (int, int) { return t.Line, t.Column }
func (t *TypeDef) defNode()        {}

// InvClause represents "inv p == e" (and "init p == e" for state)
type InvClause struct {
	Pattern Pattern
	Expr    Expression
	Line    int
	Column  int
}

func (i *InvClause) Pos() (int, int) { return i.Line, i.Column }

// RelClause represents "eq p1 = p2 == e" or "ord p1 < p2 == e"
type RelClause struct {
	Left   Pattern
	Right  Pattern
	Expr   Expression
	Line   int
	Column int
}

func (r *RelClause) Pos() (int, int) { return r.Line, r.Column }

// ValueDef represents "p : T = e"
type ValueDef struct {
	Pattern Pattern
	Type    TypeRef // optional
	Value   Expression
	Access  Access
	Line    int
	Column  int
}

func (v *ValueDef) Pos() (int, int) { return v.Line, v.Column }
func (v *ValueDef) defNode()        {}

// Field is a record or state field
type Field struct {
	Tag        string
	Type       TypeRef
	EqAbstract bool // declared with ":-"
	Line       int
	Column     int
}

func (f *Field) Pos() (int, int) { return f.Line, f.Column }

// StateDef represents a module state definition
type StateDef struct {
	Name   string
	Fields []*Field
	Inv    *InvClause
	Init   *InvClause
	Line   int
	Column int
}

func (s *StateDef) Pos() (int, int) { return s.Line, s.Column }
func (s *StateDef) defNode()        {}

// ExplicitFunctionDef represents "f: T1 -> T2 -> R  f(a)(b) == body"
type ExplicitFunctionDef struct {
	Name       string
	TypeParams []string
	Type       *FunctionTypeRef
	Params     [][]Pattern // one pattern list per curried application
	Body       Expression
	Pre        Expression
	Post       Expression
	Measure    Expression // a function name or (VDM10) an expression
	Access     Access
	Line       int
	Column     int
}

func (f *ExplicitFunctionDef) Pos() (int, int) { return f.Line, f.Column }
func (f *ExplicitFunctionDef) defNode()        {}

// PatternTypePair is a parameter of an implicit function or operation
type PatternTypePair struct {
	Pattern Pattern
	Type    TypeRef
	Line    int
	Column  int
}

func (p *PatternTypePair) Pos() (int, int) { return p.Line, p.Column }

// NameTypePair is a named result of an implicit definition
type NameTypePair struct {
	Name   string
	Type   TypeRef
	Line   int
	Column int
}

func (n *NameTypePair) Pos() (int, int) { return n.Line, n.Column }

// ImplicitFunctionDef represents "f(a:A) r:R pre ... post ..." with an optional body
type ImplicitFunctionDef struct {
	Name       string
	TypeParams []string
	Params     []*PatternTypePair
	Result     []*NameTypePair
	Body       Expression
	Pre        Expression
	Post       Expression
	Measure    Expression
	Access     Access
	Line       int
	Column     int
}

func (f *ImplicitFunctionDef) Pos() (int, int) { return f.Line, f.Column }
func (f *ImplicitFunctionDef) defNode()        {}

// ExplicitOperationDef represents "op: A ==> R  op(a) == stmt"
type ExplicitOperationDef struct {
	Name   string
	Type   *OperationTypeRef
	Params []Pattern
	Body   Statement
	Pre    Expression
	Post   Expression
	Access Access
	Line   int
	Column int
}

func (o *ExplicitOperationDef) Pos() (int, int) { return o.Line, o.Column }
func (o *ExplicitOperationDef) defNode()        {}

// ExtMode is the access mode of an ext clause
type ExtMode int

const (
	ExtRead ExtMode = iota
	ExtWrite
)

// ExternalClause represents "ext rd x : T" or "ext wr x"
type ExternalClause struct {
	Mode   ExtMode
	Names  []string
	Type   TypeRef // optional
	Line   int
	Column int
}

func (e *ExternalClause) Pos() (int, int) { return e.Line, e.Column }

// ImplicitOperationDef represents an operation specified by pre/post with an optional body
type ImplicitOperationDef struct {
	Name      string
	Params    []*PatternTypePair
	Result    *NameTypePair // optional
	Externals []*ExternalClause
	Body      Statement
	Pre       Expression
	Post      Expression
	Access    Access
	Line      int
	Column    int
}

func (o *ImplicitOperationDef) Pos() (int, int) { return o.Line, o.Column }
func (o *ImplicitOperationDef) defNode()        {}

// InstanceVariableDef represents a class instance variable
type InstanceVariableDef struct {
	Name   string
	Type   TypeRef
	Init   Expression // optional
	Access Access
	Line   int
	Column int
}

func (i *InstanceVariableDef) Pos() (int, int) { return i.Line, i.Column }
func (i *InstanceVariableDef) defNode()        {}

// ThreadDef represents a class thread
type ThreadDef struct {
	Body   Statement
	Line   int
	Column int
}

func (t *ThreadDef) Pos() (int, int) { return t.Line, t.Column }
func (t *ThreadDef) defNode()        {}
