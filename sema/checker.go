package sema

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/diag"
	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// Checker is the top-level type-semantics engine (spec §4.4 "engine
// contract"): single-threaded, synchronous, stacked scope state, and a
// finite impl work queue for polymorphic impl method bodies (spec §5
// "Concurrency").
type Checker struct {
	table *types.Table
	diags *diag.Sink
	opts  Options

	scope scope

	// fns carries every top-level fn declaration by name, so a call to
	// a not-yet-checked forward-declared function still resolves to
	// its signature (collectFns builds every FnType before any body is
	// checked).
	fns map[symbol.ID]*ast.FnDecl

	// returnType is the declared return type of the function whose body
	// is currently being checked. checkFn saves and restores it around
	// each body; the body's tail is checked against fn.ReturnType
	// directly, so no check reads this field.
	returnType *types.Type

	// implItems maps a registered impl back to the ast.ImplItem that
	// declared it, so the impl work queue (spec §4.4, §5) can check its
	// method bodies. implQueue/queuedImpls/checkedImpls drive the
	// collect-impls-then-drain-to-fixpoint pipeline: checkedImpls marks
	// an impl whose methods have already been checked; queuedImpls
	// marks one already waiting in implQueue, so re-discovering it via
	// bound verification or method dispatch (spec §5's re-entrancy from
	// bound verification back into impl checking) doesn't duplicate it.
	implItems    map[*types.Impl]*ast.ImplItem
	implQueue    []*types.Impl
	queuedImpls  map[*types.Impl]bool
	checkedImpls map[*types.Impl]bool
}

// New creates a Checker bound to table and diags.
func New(table *types.Table, diags *diag.Sink, opts Options) *Checker {
	return &Checker{
		table:        table,
		diags:        diags,
		opts:         opts,
		fns:          make(map[symbol.ID]*ast.FnDecl),
		implItems:    make(map[*types.Impl]*ast.ImplItem),
		queuedImpls:  make(map[*types.Impl]bool),
		checkedImpls: make(map[*types.Impl]bool),
	}
}

// CheckModule checks every item of mod, returning true iff no error
// diagnostic was recorded (spec §4.4: "Failure is accumulated in a
// boolean result, never thrown").
//
// Checking proceeds in three stages (spec §4.4 "module checking"): the
// first pass collects every top-level fn's signature (so mutually
// recursive / forward-referencing calls resolve); the second collects
// every impl in the module and drains an impl work queue to a fixpoint
// (spec §4.4, §5), since one impl's method bodies may reference
// another impl that itself needs checking before the first can
// resolve a bound against it; the third checks the module's remaining
// (non-impl) items — fn bodies and static initializers — in
// declaration order. Traits, structs, and impl *signatures* are
// already fully registered in the type table by the time the parser
// hands sema a Module (spec §3.3: items are registered as parsed), so
// this checker's job is exclusively to check expressions, not to
// collect declarations.
func (c *Checker) CheckModule(mod *ast.Module) (ok bool) {
	defer c.diags.Recover(token.Location{})
	c.collectFns(mod.Items)
	c.collectImpls(mod.Items)
	c.checkCycles()

	c.scope.push()
	defer c.scope.pop()

	c.drainImplQueue()

	for _, item := range mod.Items {
		c.checkItem(item)
	}
	return !c.diags.HasErrors()
}

// collectImpls walks mod's items (recursing into nested ModDecls, the
// same traversal collectFns uses) registering every impl's
// types.Impl -> ast.ImplItem link and seeding the impl work queue with
// it (spec §4.4 "collect impls").
func (c *Checker) collectImpls(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.ImplItem:
			if it.Resolved != nil {
				c.implItems[it.Resolved] = it
				c.enqueueImpl(it.Resolved)
			}
		case *ast.ModDecl:
			c.collectImpls(it.Items)
		}
	}
}

// enqueueImpl adds impl to the work queue unless it is already
// checked or already waiting (spec §5: re-entrant discovery of the
// same impl from multiple call sites must not check it twice).
func (c *Checker) enqueueImpl(impl *types.Impl) {
	if impl == nil || c.checkedImpls[impl] || c.queuedImpls[impl] {
		return
	}
	c.queuedImpls[impl] = true
	c.implQueue = append(c.implQueue, impl)
}

// drainImplQueue checks every queued impl's method bodies to a
// fixpoint (spec §4.4 "drain an impl queue to a fixpoint"): checking
// one impl's methods may, via bound verification (verifyBounds calling
// c.implements) or method dispatch (tryMethodCall calling
// c.findMethod), resolve against another impl not yet checked — spec
// §5's explicit re-entrancy from bound verification back into impl
// checking. Both of those call c.enqueueImpl on whatever impl they
// resolve, so the loop keeps draining until no new impl is discovered.
func (c *Checker) drainImplQueue() {
	round := 0
	for len(c.implQueue) > 0 {
		round++
		diag.Tracef(token.Location{}, "check_impls: entering fixpoint round %d (%d queued)", round, len(c.implQueue))
		impl := c.implQueue[0]
		c.implQueue = c.implQueue[1:]
		if c.checkedImpls[impl] {
			continue
		}
		c.checkedImpls[impl] = true
		it, ok := c.implItems[impl]
		if !ok {
			continue
		}
		for _, m := range it.Methods {
			c.checkFn(m)
		}
	}
	diag.Infof(token.Location{}, "check_impls: drained impl queue after %d round(s)", round)
}

// implements is a Checker-bound wrapper around Table.Implements that
// enqueues the matched impl for checking (spec §5 re-entrancy), so
// that a bound verified against an impl whose methods haven't run yet
// still gets them checked before CheckModule returns.
func (c *Checker) implements(trait, target *types.Type) (*types.Impl, map[*types.Type]*types.Type, bool) {
	impl, subst, ok := c.table.Implements(trait, target)
	if ok {
		c.enqueueImpl(impl)
	}
	return impl, subst, ok
}

// findMethod is a Checker-bound wrapper around Table.FindMethod that
// enqueues the owning impl for checking (spec §5 re-entrancy), the
// same way implements does for bound verification.
func (c *Checker) findMethod(target *types.Type, name symbol.ID) (*types.Impl, *types.Method, map[*types.Type]*types.Type, bool) {
	impl, method, subst, ok := c.table.FindMethod(target, name)
	if ok {
		c.enqueueImpl(impl)
	}
	return impl, method, subst, ok
}

func (c *Checker) collectFns(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FnDecl:
			c.fns[it.Name()] = it
			it.FnType = c.fnDeclType(it)
		case *ast.ImplItem:
			for _, m := range it.Methods {
				m.FnType = c.fnDeclType(m)
			}
		case *ast.ModDecl:
			c.collectFns(it.Items)
		}
	}
}

// fnDeclType builds (without checking the body) the polymorphic Fn
// type a declaration's own TypeParams describe, reusing the same
// construction methodFromFnDecl uses for trait/impl method signatures
// (spec §4.1 "Function head").
func (c *Checker) fnDeclType(fn *ast.FnDecl) *types.Type {
	argTypes := make([]*types.Type, len(fn.Params))
	for i, p := range fn.Params {
		argTypes[i] = p.Type
	}
	bound := make([]types.BoundVar, len(fn.TypeParams))
	for i, tp := range fn.TypeParams {
		bound[i] = types.BoundVar{Var: tp.Var, Bounds: tp.Bounds}
	}
	return c.table.Fn(bound, argTypes)
}

func (c *Checker) checkItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.FnDecl:
		c.checkFn(it)
	case *ast.StaticDecl:
		c.checkStatic(it)
	case *ast.ModDecl:
		for _, sub := range it.Items {
			c.checkItem(sub)
		}
	case *ast.ImplItem:
		// Already checked by drainImplQueue as part of the impl work
		// queue (spec §4.4); nothing left to do here.
	case *ast.StructItem, *ast.EnumDecl, *ast.TypeAliasDecl, *ast.TraitItem:
		// Fully resolved at parse time; nothing left to check.
	}
}

// checkFn checks one function body against its declared return type,
// binding its parameters (including the synthesized continuation
// parameter) in a fresh scope frame (spec §4.4 "check(node)").
func (c *Checker) checkFn(fn *ast.FnDecl) {
	if fn.Body == nil {
		return // extern or otherwise bodyless: no body to check.
	}
	c.scope.push()
	defer c.scope.pop()
	for _, p := range fn.Params {
		c.scope.bind(&Binding{Name: p.Name, Mut: p.Mut, Type: p.Type, Handle: p.Handle})
	}
	prevReturn := c.returnType
	c.returnType = fn.ReturnType
	c.checkBlock(fn.Body, fn.ReturnType)
	c.returnType = prevReturn
}

func (c *Checker) checkStatic(s *ast.StaticDecl) {
	if s.Init == nil {
		return
	}
	c.checkExpr(s.Init, s.Type)
	c.scope.bind(&Binding{Name: s.Name(), Mut: s.Mut, Type: s.Type})
}
