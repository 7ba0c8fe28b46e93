// Package defs holds the checked definitions and the staged definition graph.
//
// Definitions refer to each other by ID, never by pointer: a derived
// definition (pre_f, inv_T, ...) stores its parent's ID and the parent lists
// its derived IDs. Every checker pass returns a new Graph; the definitions
// held by an older graph are never modified.
package defs

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/types"
)

// ID identifies a definition within one graph lineage. The zero ID is "none".
type ID int

const NoID ID = 0

// Pass is the lifecycle tag; passes are totally ordered
type Pass int

const (
	PassTypes Pass = iota
	PassValues
	PassDefs
	PassFinal
)

func (p Pass) String() string {
	switch p {
	case PassTypes:
		return "TYPES"
	case PassValues:
		return "VALUES"
	case PassDefs:
		return "DEFS"
	case PassFinal:
		return "FINAL"
	default:
		return "?"
	}
}

// Status is where a definition stands in checking
type Status int

const (
	Pending Status = iota
	Deferred
	CheckedOK
	CheckedWithErrors
	Unresolvable
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Deferred:
		return "deferred"
	case CheckedOK:
		return "checked-ok"
	case CheckedWithErrors:
		return "checked-with-errors"
	case Unresolvable:
		return "unresolvable"
	default:
		return "?"
	}
}

// Done reports whether the status is terminal
func (s Status) Done() bool { return s >= CheckedOK }

// Role names the job of a derived definition
type Role int

const (
	RoleNone Role = iota
	RolePre
	RolePost
	RoleMeasure
	RoleInv
	RoleEq
	RoleOrd
	RoleMin
	RoleMax
	RoleInit
)

// Prefix returns the name prefix of a derived definition with this role
func (r Role) Prefix() string {
	switch r {
	case RolePre:
		return "pre_"
	case RolePost:
		return "post_"
	case RoleMeasure:
		return "measure_"
	case RoleInv:
		return "inv_"
	case RoleEq:
		return "eq_"
	case RoleOrd:
		return "ord_"
	case RoleMin:
		return "min_"
	case RoleMax:
		return "max_"
	case RoleInit:
		return "init_"
	default:
		return ""
	}
}

// Scope is a bit set filtering which kinds of names a lookup may see
type Scope int

const (
	ScopeLocal Scope = 1 << iota
	ScopeGlobal
	ScopeState
	ScopeOldState

	ScopeNames            = ScopeLocal | ScopeGlobal
	ScopeNamesAndState    = ScopeNames | ScopeState
	ScopeNamesAndAnyState = ScopeNamesAndState | ScopeOldState
)

// Has reports whether every bit of other is in s
func (s Scope) Has(other Scope) bool { return s&other == other }

// Location is a source position
type Location struct {
	File   string
	Line   int
	Column int
}

// LocOf returns the location of n in file
func LocOf(file string, n ast.Node) Location {
	if n == nil {
		return Location{File: file}
	}
	line, col := n.Pos()
	return Location{File: file, Line: line, Column: col}
}

// Common is the part every definition shares
type Common struct {
	ID      ID
	Name    string
	Module  string // enclosing module or class
	Loc     Location
	Access  ast.Access
	Pass    Pass
	Status  Status
	Parent  ID
	Derived []ID
	Role    Role
	Scope   Scope // the kind of name this definition introduces
	Type    types.Type
}

// Definition is a checked definition. The variant set is closed.
type Definition interface {
	Base() *Common
	defNode()
}

// TypeDefinition is "T = ..." or "T :: ..."; Type is the *types.Named or *types.Record
type TypeDefinition struct {
	Common
	Node *ast.TypeDef
}

// ValueDefinition is a top-level "p : T = e". A pattern may bind several
// names; Bindings holds the type of each.
type ValueDefinition struct {
	Common
	Node     *ast.ValueDef
	Bindings []Binding
}

// Binding is one name bound by a pattern
type Binding struct {
	Name string
	Type types.Type
}

// StateDefinition is a module's state; Type is the state *types.Record
type StateDefinition struct {
	Common
	Node *ast.StateDef
}

// ExplicitFunctionDefinition covers user functions and every synthesized
// helper (pre_, post_, inv_, ...). Synthesized helpers have a nil Node and a
// non-zero Role.
type ExplicitFunctionDefinition struct {
	Common
	Node       *ast.ExplicitFunctionDef
	TypeParams []string
	Params     [][]ast.Pattern
	Body       ast.Expression
	Pre        ast.Expression
	Post       ast.Expression
	Measure    ast.Expression
	// MeasureName is set when the measure names another function
	MeasureName string
	// Recursive is set once the body is found to call the definition itself
	Recursive bool
}

// ImplicitFunctionDefinition is a function given by pre/post, optionally with a body
type ImplicitFunctionDefinition struct {
	Common
	Node       *ast.ImplicitFunctionDef
	TypeParams []string
}

// ExplicitOperationDefinition is an operation with a statement body
type ExplicitOperationDefinition struct {
	Common
	Node *ast.ExplicitOperationDef
	// Constructor is set for an operation named after its class
	Constructor bool
}

// ImplicitOperationDefinition is an operation given by pre/post
type ImplicitOperationDefinition struct {
	Common
	Node        *ast.ImplicitOperationDef
	Constructor bool
}

// InstanceVariableDefinition is a class instance variable
type InstanceVariableDefinition struct {
	Common
	Node *ast.InstanceVariableDef
}

// ThreadDefinition is a class thread
type ThreadDefinition struct {
	Common
	Node *ast.ThreadDef
}

// LocalDefinition is a parameter, let-bound name, or field of the state
// record seen as a variable.
type LocalDefinition struct {
	Common
	// Assignable marks dcl'd block variables, the only locals a statement may assign
	Assignable bool
}

// ImportedDefinition makes Target visible in another module under its own name
type ImportedDefinition struct {
	Common
	From   string
	Target ID
}

// RenamedDefinition makes Target visible under a new name
type RenamedDefinition struct {
	Common
	From     string
	Original string
	Target   ID
}

// MultiBindListDefinition holds the names introduced by a quantifier or
// comprehension's multiple binds.
type MultiBindListDefinition struct {
	Common
	Binds  []ast.MultipleBind
	Locals []*LocalDefinition
}

func (d *TypeDefinition) Base() *Common              { return &d.Common }
func (d *ValueDefinition) Base() *Common             { return &d.Common }
func (d *StateDefinition) Base() *Common             { return &d.Common }
func (d *ExplicitFunctionDefinition) Base() *Common  { return &d.Common }
func (d *ImplicitFunctionDefinition) Base() *Common  { return &d.Common }
func (d *ExplicitOperationDefinition) Base() *Common { return &d.Common }
func (d *ImplicitOperationDefinition) Base() *Common { return &d.Common }
func (d *InstanceVariableDefinition) Base() *Common  { return &d.Common }
func (d *ThreadDefinition) Base() *Common            { return &d.Common }
func (d *LocalDefinition) Base() *Common             { return &d.Common }
func (d *ImportedDefinition) Base() *Common          { return &d.Common }
func (d *RenamedDefinition) Base() *Common           { return &d.Common }
func (d *MultiBindListDefinition) Base() *Common     { return &d.Common }

func (d *TypeDefinition) defNode()              {}
func (d *ValueDefinition) defNode()             {}
func (d *StateDefinition) defNode()             {}
func (d *ExplicitFunctionDefinition) defNode()  {}
func (d *ImplicitFunctionDefinition) defNode()  {}
func (d *ExplicitOperationDefinition) defNode() {}
func (d *ImplicitOperationDefinition) defNode() {}
func (d *InstanceVariableDefinition) defNode()  {}
func (d *ThreadDefinition) defNode()            {}
func (d *LocalDefinition) defNode()             {}
func (d *ImportedDefinition) defNode()          {}
func (d *RenamedDefinition) defNode()           {}
func (d *MultiBindListDefinition) defNode()     {}

// Clone returns a shallow copy of d, so a pass can produce an updated
// definition without touching the one held by the previous graph.
func Clone(d Definition) Definition {
	switch d := d.(type) {
	case *TypeDefinition:
		c := *d
		c.Derived = append([]ID(nil), d.Derived...)
		return &c
	case *ValueDefinition:
		c := *d
		c.Derived = append([]ID(nil), d.Derived...)
		c.Bindings = append([]Binding(nil), d.Bindings...)
		return &c
	case *StateDefinition:
		c := *d
		c.Derived = append([]ID(nil), d.Derived...)
		return &c
	case *ExplicitFunctionDefinition:
		c := *d
		c.Derived = append([]ID(nil), d.Derived...)
		return &c
	case *ImplicitFunctionDefinition:
		c := *d
		c.Derived = append([]ID(nil), d.Derived...)
		return &c
	case *ExplicitOperationDefinition:
		c := *d
		c.Derived = append([]ID(nil), d.Derived...)
		return &c
	case *ImplicitOperationDefinition:
		c := *d
		c.Derived = append([]ID(nil), d.Derived...)
		return &c
	case *InstanceVariableDefinition:
		c := *d
		return &c
	case *ThreadDefinition:
		c := *d
		return &c
	case *LocalDefinition:
		c := *d
		return &c
	case *ImportedDefinition:
		c := *d
		return &c
	case *RenamedDefinition:
		c := *d
		return &c
	case *MultiBindListDefinition:
		c := *d
		return &c
	}
	return d
}

// TypeOfName returns the type d gives to name. Value definitions bind
// several names; every other definition binds its own name.
func TypeOfName(d Definition, name string) types.Type {
	if v, ok := d.(*ValueDefinition); ok {
		for _, b := range v.Bindings {
			if b.Name == name {
				return b.Type
			}
		}
	}
	t := d.Base().Type
	if t == nil {
		return types.UnknownType
	}
	return t
}

// IsFunction reports whether d is a function of either form
func IsFunction(d Definition) bool {
	switch d.(type) {
	case *ExplicitFunctionDefinition, *ImplicitFunctionDefinition:
		return true
	}
	return false
}

// IsOperation reports whether d is an operation of either form
func IsOperation(d Definition) bool {
	switch d.(type) {
	case *ExplicitOperationDefinition, *ImplicitOperationDefinition:
		return true
	}
	return false
}

// Kind returns a short description of d used in messages
func Kind(d Definition) string {
	switch d := d.(type) {
	case *TypeDefinition:
		return "type"
	case *ValueDefinition:
		return "value"
	case *StateDefinition:
		return "state"
	case *ExplicitFunctionDefinition:
		if d.Role != RoleNone {
			return "derived function"
		}
		return "function"
	case *ImplicitFunctionDefinition:
		return "function"
	case *ExplicitOperationDefinition, *ImplicitOperationDefinition:
		return "operation"
	case *InstanceVariableDefinition:
		return "instance variable"
	case *ThreadDefinition:
		return "thread"
	case *LocalDefinition:
		return "local"
	case *ImportedDefinition:
		return "import"
	case *RenamedDefinition:
		return "renamed import"
	case *MultiBindListDefinition:
		return "bind"
	}
	return "definition"
}
