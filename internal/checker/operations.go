package checker

import (
	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/config"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// operationEnv is the environment an operation body is checked in
func (c *Checker) operationEnv(d defs.Definition) *env.Env {
	e := c.rootEnv().Enclosing(d.Base().ID)
	if c.module.State != defs.NoID {
		e = e.WithState(c.module.State)
	}
	if d.Base().Access.Static {
		e = e.Static()
	}
	return e
}

// checkOperationAccess applies the constructor, async, pure and abstract
// rules shared by both operation forms
func (c *Checker) checkOperationAccess(d defs.Definition, op *types.Operation, constructor, abstract bool) {
	name := d.Base().Name
	access := d.Base().Access
	_, void := op.Result.(*types.Void)

	if constructor {
		if !void {
			if ct, ok := op.Result.(*types.Class); !ok || ct.Name != c.module.Name {
				c.errorAt(d, diagnostic.CodeOperationAccess, "constructor '%s' must return %s, not %s", name, c.module.Name, op.Result)
			}
		}
		if access.Static {
			c.errorAt(d, diagnostic.CodeOperationAccess, "constructor '%s' cannot be static", name)
		}
		if access.Async {
			c.errorAt(d, diagnostic.CodeOperationAccess, "constructor '%s' cannot be async", name)
		}
		if access.Pure {
			c.errorAt(d, diagnostic.CodeOperationAccess, "constructor '%s' cannot be pure", name)
		}
	}
	if access.Async {
		if c.cfg.Dialect != config.RT {
			c.errorAt(d, diagnostic.CodeDialect, "async operations are only allowed in %s", config.RT)
		}
		if !void {
			c.errorAt(d, diagnostic.CodeOperationAccess, "async operation '%s' cannot return a value", name)
		}
	}
	if access.Pure {
		if c.cfg.Release == config.Classic {
			c.errorAt(d, diagnostic.CodeDialect, "pure operations need release vdm10")
		}
		if void && !constructor {
			c.errorAt(d, diagnostic.CodeOperationAccess, "pure operation '%s' must return a value", name)
		}
	}
	if access.Pure && access.Async {
		c.errorAt(d, diagnostic.CodeOperationAccess, "operation '%s' cannot be both pure and async", name)
	}
	if abstract && c.module.IsClass && access.Visibility < ast.Protected {
		c.errorAt(d, diagnostic.CodeVisibility, "abstract operation '%s' must be at least protected", name)
	}
}

func isAbstractStmt(s ast.Statement) bool {
	_, ok := s.(*ast.SubclassRespStmt)
	return ok
}

func (c *Checker) checkExplicitOperation(d *defs.ExplicitOperationDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.ExplicitOperationDefinition)
	op, ok := d.Type.(*types.Operation)
	if !ok {
		return u
	}
	n := d.Node
	c.checkOperationAccess(d, op, d.Constructor, isAbstractStmt(n.Body))

	if len(n.Params) != len(op.Params) {
		c.errorAt(d, diagnostic.CodeArity, "operation '%s' has %d parameter patterns, the signature expects %d", d.Name, len(n.Params), len(op.Params))
		return u
	}
	e := c.operationEnv(d)
	c.checkBinders(n.Params)
	var locals []defs.Definition
	for i, p := range n.Params {
		locals = append(locals, c.bindPattern(p, op.Params[i], e)...)
	}
	e = e.Extend(locals...)

	c.checkDerived(u, defs.RolePre)
	c.checkOperationBody(d, n.Body, op, e)
	c.checkDerived(u, defs.RolePost)
	return u
}

func (c *Checker) checkImplicitOperation(d *defs.ImplicitOperationDefinition) defs.Definition {
	u := defs.Clone(d).(*defs.ImplicitOperationDefinition)
	op, ok := d.Type.(*types.Operation)
	if !ok {
		return u
	}
	n := d.Node
	c.checkOperationAccess(d, op, d.Constructor, n.Body != nil && isAbstractStmt(n.Body))

	e := c.operationEnv(d)
	var ps []ast.Pattern
	var locals []defs.Definition
	for i, p := range n.Params {
		ps = append(ps, p.Pattern)
		locals = append(locals, c.bindPattern(p.Pattern, op.Params[i], e)...)
	}
	c.checkBinders(ps)
	if n.Result != nil && bindsName([][]ast.Pattern{ps}, n.Result.Name) {
		c.errorf(n.Result, diagnostic.CodeDuplicateBinder, "duplicate result identifier '%s'", n.Result.Name)
	}
	e = e.Extend(locals...)

	for _, ext := range n.Externals {
		c.checkExternal(ext, e)
	}

	c.checkDerived(u, defs.RolePre)
	if n.Body != nil {
		c.checkOperationBody(d, n.Body, op, e)
	}
	if n.Post == nil {
		c.errorAt(d, diagnostic.CodeClause, "implicit operation '%s' has no postcondition", d.Name)
	} else {
		c.checkDerived(u, defs.RolePost)
	}
	return u
}

// checkExternal checks that every name of an ext clause is a state variable
func (c *Checker) checkExternal(ext *ast.ExternalClause, e *env.Env) {
	var declared types.Type
	if ext.Type != nil {
		declared = c.resolveType(ext.Type, e)
	}
	for _, name := range ext.Names {
		d, out := e.FindName(name, defs.ScopeNamesAndState)
		if out != env.Found || d.Base().Scope != defs.ScopeState {
			c.errorf(ext, diagnostic.CodeStateAccess, "'%s' in ext clause is not a state variable", name)
			continue
		}
		c.marks.Use(d.Base().ID)
		if declared != nil && !types.Compatible(declared, d.Base().Type) {
			c.errorf(ext, diagnostic.CodeTypeMismatch, "ext clause declares '%s' as %s, the state has %s", name, declared, d.Base().Type)
		}
	}
}

// checkOperationBody checks the statement body against the declared result
func (c *Checker) checkOperationBody(d defs.Definition, body ast.Statement, op *types.Operation, e *env.Env) {
	sc := &stmtContext{env: e, result: op.Result, pure: op.Pure, op: d.Base().Name}
	var t types.Type
	c.withScope(defs.ScopeNamesAndState, func() {
		t = c.checkStmt(body, sc)
	})
	if _, void := op.Result.(*types.Void); void {
		return
	}
	if isAbstractStmt(body) || returnsOrExits(body) || isConstructor(d) {
		return
	}
	if !returns(t) {
		c.errorf(body, diagnostic.CodeReturn, "operation '%s' must return a value of type %s", d.Base().Name, op.Result)
	}
}

func isConstructor(d defs.Definition) bool {
	switch d := d.(type) {
	case *defs.ExplicitOperationDefinition:
		return d.Constructor
	case *defs.ImplicitOperationDefinition:
		return d.Constructor
	}
	return false
}

// returns reports whether a statement type includes a returned value
func returns(t types.Type) bool {
	for _, m := range types.Members(t) {
		if _, void := m.(*types.Void); !void {
			return true
		}
	}
	return false
}

// returnsOrExits reports statements that never complete normally
func returnsOrExits(s ast.Statement) bool {
	switch s := s.(type) {
	case *ast.ExitStmt, *ast.ErrorStmt, *ast.NotYetSpecStmt:
		return true
	case *ast.BlockStmt:
		return len(s.Stmts) > 0 && returnsOrExits(s.Stmts[len(s.Stmts)-1])
	}
	return false
}
