package checker

import (
	"strings"

	"github.com/lhaig/vdmcheck/internal/ast"
	"github.com/lhaig/vdmcheck/internal/defs"
	"github.com/lhaig/vdmcheck/internal/diagnostic"
	"github.com/lhaig/vdmcheck/internal/env"
	"github.com/lhaig/vdmcheck/internal/types"
)

// resolveType turns a type annotation into a Type. Unknown names are
// reported and become Unknown.
func (c *Checker) resolveType(ref ast.TypeRef, e *env.Env) types.Type {
	if ref == nil {
		return types.UnknownType
	}
	t := c.resolveTypeRef(ref, e)
	c.typeRefs[ref] = t
	return t
}

func (c *Checker) resolveTypeRef(ref ast.TypeRef, e *env.Env) types.Type {
	switch r := ref.(type) {
	case *ast.BasicTypeRef:
		k, ok := types.BasicKindByName(r.Name)
		if !ok {
			c.errorf(r, diagnostic.CodeUnknownType, "unknown basic type '%s'", r.Name)
			return types.UnknownType
		}
		return types.BasicOf(k)

	case *ast.NamedTypeRef:
		return c.resolveNamedType(r, e)

	case *ast.QuoteTypeRef:
		return &types.Quote{Value: r.Value}

	case *ast.SetTypeRef:
		return &types.Set{Elem: c.resolveType(r.Elem, e), NonEmpty: r.NonEmpty}

	case *ast.SeqTypeRef:
		return &types.Seq{Elem: c.resolveType(r.Elem, e), NonEmpty: r.NonEmpty}

	case *ast.MapTypeRef:
		return &types.Map{Dom: c.resolveType(r.Dom, e), Rng: c.resolveType(r.Rng, e), Injective: r.Injective}

	case *ast.ProductTypeRef:
		elems := make([]types.Type, len(r.Elems))
		for i, el := range r.Elems {
			elems[i] = c.resolveType(el, e)
		}
		return &types.Product{Elems: elems}

	case *ast.UnionTypeRef:
		members := make([]types.Type, len(r.Members))
		for i, m := range r.Members {
			members[i] = c.resolveType(m, e)
		}
		return types.NewUnion(members...)

	case *ast.OptionalTypeRef:
		return &types.Optional{Elem: c.resolveType(r.Elem, e)}

	case *ast.RecordTypeRef:
		// an anonymous record outside a type definition
		return &types.Record{Module: e.Module(), Fields: c.resolveFields(r.Fields, e)}

	case *ast.FunctionTypeRef:
		params := make([]types.Type, len(r.Params))
		for i, p := range r.Params {
			params[i] = c.resolveType(p, e)
		}
		return &types.Function{Params: params, Result: c.resolveType(r.Result, e), Total: r.Total}

	case *ast.OperationTypeRef:
		params := make([]types.Type, len(r.Params))
		for i, p := range r.Params {
			params[i] = c.resolveType(p, e)
		}
		var result types.Type = types.VoidType
		if r.Result != nil {
			result = c.resolveType(r.Result, e)
		}
		return &types.Operation{Params: params, Result: result}

	case *ast.ParamTypeRef:
		if p, ok := e.TypeParameter(r.Name); ok {
			return p
		}
		c.errorf(r, diagnostic.CodeUnknownType, "unknown type parameter '@%s'", r.Name)
		return types.UnknownType
	}
	c.internalf("cannot resolve type reference %T", ref)
	return types.UnknownType
}

func (c *Checker) resolveNamedType(r *ast.NamedTypeRef, e *env.Env) types.Type {
	if d := e.FindType(r.Name, r.Module); d != nil {
		c.marks.Use(d.Base().ID)
		if t, ok := c.shells[d.Base().ID]; ok {
			return t
		}
		if t := d.Base().Type; t != nil {
			return t
		}
		return types.UnknownType
	}
	// a class name denotes the type of its objects
	if r.Module == "" {
		if ct := c.classType(r.Name); ct != nil {
			return ct
		}
	}
	name := r.Name
	if r.Module != "" {
		name = r.Module + "`" + r.Name
	}
	c.errorf(r, diagnostic.CodeUnknownType, "unknown type '%s'", name)
	return types.UnknownType
}

func (c *Checker) resolveFields(fields []*ast.Field, e *env.Env) []types.Field {
	out := make([]types.Field, 0, len(fields))
	seen := map[string]bool{}
	for _, f := range fields {
		if f.Tag != "" && seen[f.Tag] {
			c.errorf(f, diagnostic.CodeDuplicate, "duplicate field '%s'", f.Tag)
		}
		seen[f.Tag] = true
		out = append(out, types.Field{Tag: f.Tag, Type: c.resolveType(f.Type, e), EqAbstract: f.EqAbstract})
	}
	return out
}

// resolveTypes gives every type and state definition its type. Shells for
// all modules are created first so that mutually recursive and imported
// types resolve to the same value.
func (c *Checker) resolveTypes() {
	for _, m := range c.modules {
		for _, id := range m.Defs {
			switch d := c.graph.Get(id).(type) {
			case *defs.TypeDefinition:
				n := d.Node
				var shell types.Type
				if _, isRecord := n.Type.(*ast.RecordTypeRef); isRecord {
					shell = &types.Record{Module: m.Name, Name: n.Name, HasInv: n.Inv != nil, HasEq: n.Eq != nil, HasOrd: n.Ord != nil}
				} else {
					shell = &types.Named{Module: m.Name, Name: n.Name, HasInv: n.Inv != nil, HasEq: n.Eq != nil, HasOrd: n.Ord != nil}
				}
				c.shells[id] = shell
			case *defs.StateDefinition:
				c.shells[id] = &types.Record{Module: m.Name, Name: d.Name, HasInv: d.Node.Inv != nil}
			}
		}
	}

	for _, m := range c.modules {
		c.enter(m)
		e := c.rootEnv()
		for _, id := range m.Defs {
			switch d := c.graph.Get(id).(type) {
			case *defs.TypeDefinition:
				switch shell := c.shells[id].(type) {
				case *types.Record:
					shell.Fields = c.resolveFields(d.Node.Type.(*ast.RecordTypeRef).Fields, e)
				case *types.Named:
					shell.Of = c.resolveType(d.Node.Type, e)
				}
			case *defs.StateDefinition:
				shell := c.shells[id].(*types.Record)
				shell.Fields = c.resolveFields(d.Node.Fields, e)
			}
		}
	}

	for _, m := range c.modules {
		c.enter(m)
		for _, id := range m.Defs {
			d := c.graph.Get(id)
			shell, ok := c.shells[id]
			if !ok {
				continue
			}
			if n, isNamed := shell.(*types.Named); isNamed && !productive(n) {
				c.errorAt(d, diagnostic.CodeRecursiveType, "type '%s' is defined in terms of itself", n.Name)
				n.Of = types.UnknownType
			}
			u := defs.Clone(d)
			u.Base().Type = shell
			c.update(u)
			c.typeHelperTypes(u, shell)
		}
	}

	// state fields read as variables of their field type
	for _, m := range c.modules {
		if m.State == defs.NoID {
			continue
		}
		rec := c.shells[m.State].(*types.Record)
		for _, f := range rec.Fields {
			for _, id := range m.Globals.Names(f.Tag) {
				if l, ok := c.graph.Get(id).(*defs.LocalDefinition); ok && l.Parent == m.State {
					u := defs.Clone(l)
					u.Base().Type = f.Type
					u.Base().Status = defs.CheckedOK
					c.update(u)
				}
			}
		}
	}
}

// productive reports whether every path from n back to itself passes
// through a constructor that can stop the recursion (a set, sequence, map,
// optional, record or function). T = T, T = T | nat and T = T * nat are not.
func productive(n *types.Named) bool {
	seen := map[*types.Named]bool{}
	var reaches func(t types.Type) bool
	reaches = func(t types.Type) bool {
		switch t := t.(type) {
		case *types.Named:
			if t == n {
				return true
			}
			if seen[t] {
				return false
			}
			seen[t] = true
			return reaches(t.Of)
		case *types.Union:
			for _, m := range t.Members {
				if reaches(m) {
					return true
				}
			}
		case *types.Product:
			for _, el := range t.Elems {
				if reaches(el) {
					return true
				}
			}
		}
		return false
	}
	return !reaches(n.Of)
}

// typeHelperTypes sets the signatures of inv_/eq_/ord_/min_/max_/init_
func (c *Checker) typeHelperTypes(parent defs.Definition, t types.Type) {
	rep := t
	if n, ok := t.(*types.Named); ok {
		// the invariant sees the representation, not yet the invariant-carrying type
		rep = n.Of
	}
	for _, id := range parent.Base().Derived {
		d := defs.Clone(c.graph.Get(id))
		// derived clause functions are total
		switch d.Base().Role {
		case defs.RoleInv, defs.RoleInit:
			d.Base().Type = &types.Function{Params: []types.Type{rep}, Result: types.BoolType, Total: true}
		case defs.RoleEq, defs.RoleOrd:
			d.Base().Type = &types.Function{Params: []types.Type{t, t}, Result: types.BoolType, Total: true}
		case defs.RoleMin, defs.RoleMax:
			d.Base().Type = &types.Function{Params: []types.Type{t, t}, Result: t, Total: true}
		}
		c.update(d)
	}
}

// resolveSignatures gives functions, operations, instance variables and
// typed values their declared types, then checks overloads and visibility
func (c *Checker) resolveSignatures() {
	for _, m := range c.modules {
		c.enter(m)
		root := c.rootEnv()
		for _, id := range m.Defs {
			d := defs.Clone(c.graph.Get(id))
			switch d := d.(type) {
			case *defs.ValueDefinition:
				if d.Node.Type != nil {
					d.Type = c.resolveType(d.Node.Type, root)
					if p, ok := d.Node.Pattern.(*ast.IdentifierPattern); ok {
						d.Bindings = []defs.Binding{{Name: p.Name, Type: d.Type}}
					}
				}
			case *defs.ExplicitFunctionDefinition:
				c.explicitSignature(d, root.WithTypeParams(d.TypeParams))
			case *defs.ImplicitFunctionDefinition:
				c.implicitSignature(d, root.WithTypeParams(d.TypeParams))
			case *defs.ExplicitOperationDefinition:
				c.explicitOperationSignature(d, root)
			case *defs.ImplicitOperationDefinition:
				c.implicitOperationSignature(d, root)
			case *defs.InstanceVariableDefinition:
				d.Type = c.resolveType(d.Node.Type, root)
			default:
				continue
			}
			c.update(d)
			c.helperSignatures(d)
		}
		if m.IsClass {
			c.checkOverloads(m)
			c.checkVisibility(m)
		}
	}
	c.checkImportTypes()
}

// levels splits a curried function type into its parameter lists, stopping
// after n lists. The second result is what the n-th application returns.
func levels(fn *types.Function, n int) ([][]types.Type, types.Type) {
	var out [][]types.Type
	var t types.Type = fn
	for len(out) < n {
		f, ok := t.(*types.Function)
		if !ok {
			break
		}
		out = append(out, f.Params)
		t = f.Result
	}
	return out, t
}

// curry rebuilds a function type from parameter lists and a final result
func curry(params [][]types.Type, result types.Type, typeParams []string) types.Type {
	if len(params) == 0 {
		return result
	}
	t := result
	for i := len(params) - 1; i >= 0; i-- {
		t = &types.Function{Params: params[i], Result: t}
	}
	t.(*types.Function).TypeParams = typeParams
	return t
}

func (c *Checker) explicitSignature(d *defs.ExplicitFunctionDefinition, e *env.Env) {
	if d.Node == nil || d.Node.Type == nil {
		c.errorAt(d, diagnostic.CodeClause, "function '%s' has no signature", d.Name)
		d.Type = types.UnknownType
		return
	}
	t := c.resolveType(d.Node.Type, e)
	fn, ok := t.(*types.Function)
	if !ok {
		d.Type = types.UnknownType
		return
	}
	fn.TypeParams = d.TypeParams
	d.Type = fn
}

func (c *Checker) implicitSignature(d *defs.ImplicitFunctionDefinition, e *env.Env) {
	n := d.Node
	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = c.resolveType(p.Type, e)
	}
	d.Type = &types.Function{Params: params, Result: c.resultsType(n.Result, e), TypeParams: d.TypeParams}
}

// resultsType is the type of an implicit definition's result list: the
// single result's type or the product of all of them
func (c *Checker) resultsType(results []*ast.NameTypePair, e *env.Env) types.Type {
	switch len(results) {
	case 0:
		return types.VoidType
	case 1:
		return c.resolveType(results[0].Type, e)
	}
	elems := make([]types.Type, len(results))
	for i, r := range results {
		elems[i] = c.resolveType(r.Type, e)
	}
	return &types.Product{Elems: elems}
}

func (c *Checker) explicitOperationSignature(d *defs.ExplicitOperationDefinition, e *env.Env) {
	if d.Node.Type == nil {
		c.errorAt(d, diagnostic.CodeClause, "operation '%s' has no signature", d.Name)
		d.Type = types.UnknownType
		return
	}
	op, ok := c.resolveType(d.Node.Type, e).(*types.Operation)
	if !ok {
		d.Type = types.UnknownType
		return
	}
	op.Pure = d.Access.Pure
	d.Type = op
}

func (c *Checker) implicitOperationSignature(d *defs.ImplicitOperationDefinition, e *env.Env) {
	n := d.Node
	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = c.resolveType(p.Type, e)
	}
	var result types.Type = types.VoidType
	if n.Result != nil {
		result = c.resolveType(n.Result.Type, e)
	}
	d.Type = &types.Operation{Params: params, Result: result, Pure: d.Access.Pure}
}

// helperSignatures sets the types of a function's or operation's pre_,
// post_ and measure_ helpers from the parent's signature
func (c *Checker) helperSignatures(parent defs.Definition) {
	if len(parent.Base().Derived) == 0 {
		return
	}
	var lists [][]types.Type
	var result types.Type
	var typeParams []string
	switch p := parent.(type) {
	case *defs.ExplicitFunctionDefinition:
		fn, ok := p.Type.(*types.Function)
		if !ok {
			c.unknownHelpers(parent)
			return
		}
		lists, result = levels(fn, len(p.Params))
		if len(lists) != len(p.Params) || curriedDepth(fn) != len(p.Params) {
			// the arity error is reported when the function is checked
			c.unknownHelpers(parent)
			return
		}
		typeParams = p.TypeParams
	case *defs.ImplicitFunctionDefinition:
		fn, ok := p.Type.(*types.Function)
		if !ok {
			c.unknownHelpers(parent)
			return
		}
		lists, result = [][]types.Type{fn.Params}, fn.Result
		if n := len(p.Node.Result); n > 1 {
			// post_f takes each named result separately
			prod := fn.Result.(*types.Product)
			lists = [][]types.Type{append(append([]types.Type(nil), fn.Params...), prod.Elems...)}
			result = nil
		}
		typeParams = p.TypeParams
	case *defs.ExplicitOperationDefinition, *defs.ImplicitOperationDefinition:
		op, ok := p.Base().Type.(*types.Operation)
		if !ok {
			c.unknownHelpers(parent)
			return
		}
		lists, result = [][]types.Type{op.Params}, op.Result
		if _, void := op.Result.(*types.Void); void {
			result = nil
		}
	default:
		return
	}

	for _, id := range parent.Base().Derived {
		d := defs.Clone(c.graph.Get(id))
		switch d.Base().Role {
		case defs.RolePre:
			d.Base().Type = curry(lists, types.BoolType, typeParams)
		case defs.RolePost:
			post := lists
			if result != nil {
				post = make([][]types.Type, len(lists))
				copy(post, lists)
				last := len(post) - 1
				post[last] = append(append([]types.Type(nil), post[last]...), result)
			}
			d.Base().Type = curry(post, types.BoolType, typeParams)
		case defs.RoleMeasure:
			var flat []types.Type
			for _, l := range lists {
				flat = append(flat, l...)
			}
			d.Base().Type = &types.Function{Params: flat, Result: types.UnknownType, TypeParams: typeParams}
		}
		c.update(d)
	}
}

func (c *Checker) unknownHelpers(parent defs.Definition) {
	for _, id := range parent.Base().Derived {
		d := defs.Clone(c.graph.Get(id))
		d.Base().Type = types.UnknownType
		c.update(d)
	}
}

// curriedDepth counts the parameter lists of a curried function type
func curriedDepth(fn *types.Function) int {
	n := 0
	var t types.Type = fn
	for {
		f, ok := t.(*types.Function)
		if !ok {
			return n
		}
		n++
		t = f.Result
	}
}

// paramTypes returns the parameter types of a function or operation
func paramTypes(t types.Type) ([]types.Type, bool) {
	switch t := t.(type) {
	case *types.Function:
		return t.Params, true
	case *types.Operation:
		return t.Params, true
	}
	return nil, false
}

// checkOverloads reports overloads in one class whose parameter types are identical
func (c *Checker) checkOverloads(m *ModuleInfo) {
	byName := map[string][]defs.Definition{}
	var order []string
	for _, id := range m.Defs {
		d := c.graph.Get(id)
		if !overloadable(d) {
			continue
		}
		if _, ok := byName[d.Base().Name]; !ok {
			order = append(order, d.Base().Name)
		}
		byName[d.Base().Name] = append(byName[d.Base().Name], d)
	}
	for _, name := range order {
		ds := byName[name]
		for i := 1; i < len(ds); i++ {
			pi, ok := paramTypes(ds[i].Base().Type)
			if !ok {
				continue
			}
			for j := 0; j < i; j++ {
				pj, ok := paramTypes(ds[j].Base().Type)
				if ok && sameTypes(pi, pj) {
					c.errorAt(ds[i], diagnostic.CodeOverload, "'%s' is already defined with parameters (%s)", name, typeList(pi))
					break
				}
			}
		}
	}
}

func sameTypes(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !types.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func typeList(ts []types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// checkVisibility reports members whose signature uses a type of the same
// class that is less visible than the member itself
func (c *Checker) checkVisibility(m *ModuleInfo) {
	for _, id := range m.Defs {
		d := c.graph.Get(id)
		switch d.(type) {
		case *defs.TypeDefinition, *defs.ThreadDefinition:
			continue
		}
		vis := d.Base().Access.Visibility
		for _, name := range namedTypesIn(d.Base().Type) {
			ids := m.Globals.Types(name)
			if len(ids) == 0 {
				continue
			}
			td := c.graph.Get(ids[0])
			if td.Base().Module != m.Name {
				continue
			}
			if tv := td.Base().Access.Visibility; tv < vis {
				c.errorAt(d, diagnostic.CodeVisibility, "%s %s '%s' uses %s type '%s'", vis, defs.Kind(d), d.Base().Name, tv, name)
			}
		}
	}
}

// namedTypesIn lists the names of the named and record types t mentions,
// without unfolding them
func namedTypesIn(t types.Type) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(types.Type)
	walk = func(t types.Type) {
		switch t := t.(type) {
		case *types.Named:
			if !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t.Name)
			}
		case *types.Record:
			if t.Name != "" && !seen[t.Name] {
				seen[t.Name] = true
				out = append(out, t.Name)
			}
		case *types.Set:
			walk(t.Elem)
		case *types.Seq:
			walk(t.Elem)
		case *types.Map:
			walk(t.Dom)
			walk(t.Rng)
		case *types.Product:
			for _, el := range t.Elems {
				walk(el)
			}
		case *types.Union:
			for _, m := range t.Members {
				walk(m)
			}
		case *types.Optional:
			walk(t.Elem)
		case *types.Function:
			for _, p := range t.Params {
				walk(p)
			}
			walk(t.Result)
		case *types.Operation:
			for _, p := range t.Params {
				walk(p)
			}
			walk(t.Result)
		}
	}
	walk(t)
	return out
}
