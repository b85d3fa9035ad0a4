package sema

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/types"
)

// checkBlock checks a `{ stmt* expr? }` block (spec §4.5 "Block"): each
// statement in turn, then the tail expression (if present) against
// expected. A tail whose type does not unify with expected is
// reported (a noret tail is accepted anywhere). A tail-less block is
// always unit; if expected is some other type, the Subtype check below
// reports the mismatch.
func (c *Checker) checkBlock(b *ast.BlockExpr, expected *types.Type) *types.Type {
	c.scope.push()
	defer c.scope.pop()

	var lets []*ast.LetStmt
	var bindings []*Binding
	for _, stmt := range b.Stmts {
		switch st := stmt.(type) {
		case *ast.LetStmt:
			bind := c.checkLet(st)
			lets = append(lets, st)
			bindings = append(bindings, bind)
		case *ast.ItemStmt:
			c.checkLocalItem(st.Item)
		case *ast.ExprStmt:
			c.checkExpr(st.Expr, nil)
		}
	}

	var result *types.Type
	if b.Tail != nil {
		result = c.checkExpr(b.Tail, expected)
		if expected != nil && result != nil && result.Kind() != types.NoRet && !c.table.Unify(result, expected) {
			c.diags.Errorf(b.Tail.Loc(), "expected block to yield %s, got %s", expected, result)
		}
	} else {
		result = c.table.Unit()
		if expected != nil && !c.table.Subtype(result, expected) {
			c.diags.Errorf(b.Loc(), "expected block to yield %s, got ()", expected)
		}
	}
	b.SetType(result)

	for i, st := range lets {
		bind := bindings[i]
		if st.Mut && !bind.Used {
			st.Unused = true
			c.diags.Warnf(st.Loc(), "mutable local %q is never used", st.Name)
		}
	}
	return result
}

// checkLocalItem checks a nested item declared as a block statement
// (currently only nested fn declarations are meaningful here; other
// item kinds are fully resolved at parse time, same as at module
// scope).
func (c *Checker) checkLocalItem(item ast.Item) {
	if fn, ok := item.(*ast.FnDecl); ok {
		fn.FnType = c.fnDeclType(fn)
		c.fns[fn.Name()] = fn
		c.checkFn(fn)
	}
}

// checkLet checks `let mut? NAME (":" type)? ("=" init)? ";"` (spec
// §3.3 "let-statement"): the initializer (if any) is checked against
// the explicit annotation when present, otherwise its own inferred
// type becomes the local's type.
func (c *Checker) checkLet(st *ast.LetStmt) *Binding {
	var typ *types.Type
	if st.Init != nil {
		typ = c.checkExpr(st.Init, st.Annotated)
		if st.Annotated != nil {
			if typ != nil && typ.Kind() != types.NoRet && !c.table.Unify(typ, st.Annotated) {
				c.diags.Errorf(st.Loc(), "let binding %q: expected %s, got %s", st.Name, st.Annotated, typ)
			}
			typ = st.Annotated
		}
	} else if st.Annotated != nil {
		typ = st.Annotated
	} else {
		c.diags.Errorf(st.Loc(), "let binding %q needs either a type annotation or an initializer", st.Name)
		typ = c.table.ErrorType()
	}
	st.InferredTyp = typ
	bind := &Binding{Name: st.Name, Mut: st.Mut, Type: typ, Handle: st.Handle}
	c.scope.bind(bind)
	return bind
}
