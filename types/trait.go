package types

import (
	"fmt"

	"github.com/rill-lang/rillc/symbol"
)

// TraitDecl is a nominal trait declaration: a self type variable, zero
// or more additional type parameters, a set of super-trait bounds on
// self, and a set of method signatures (spec §3.3 "trait item", §4.6
// "bound resolution").
type TraitDecl struct {
	Name   symbol.ID
	Self   *Type // Kind()==TypeVar
	Params []*Type

	// Supers lists the super-trait bounds declared directly on Self
	// (spec: "self-bounds/super-traits"). Each is a TraitApp whose
	// Self() is this trait's Self variable.
	Supers []*Type

	methods map[symbol.ID]*Method
	// methodOrder preserves declaration order for deterministic
	// diagnostics and iteration.
	methodOrder []symbol.ID
}

// Method is one trait (or impl) method signature.
type Method struct {
	Name   symbol.ID
	Fn     *Type // Kind()==Fn, bound over the trait's Self and Params plus the method's own type params.
	Bound  []BoundVar
	Elems  []*Type // argument types, Self-relative (first arg is the receiver by convention).
	Result *Type
}

// NewTrait declares a new trait. It reports an error (rather than
// panicking — this is a user-reachable condition, spec §7) if supers
// contains the same trait twice; duplicate super-trait registration is
// explicitly called out as invalid (spec §3.3 invariant).
func NewTrait(name symbol.ID, self *Type, params []*Type, supers []*Type) (*TraitDecl, error) {
	seen := make(map[*TraitDecl]bool, len(supers))
	for _, s := range supers {
		if s.Kind() != TraitApp {
			return nil, fmt.Errorf("types: super-trait bound on %s is not a trait application", name)
		}
		if seen[s.Trait()] {
			return nil, fmt.Errorf("types: trait %s declares super-trait %s more than once", name, s.Trait().Name)
		}
		seen[s.Trait()] = true
	}
	return &TraitDecl{
		Name:    name,
		Self:    self,
		Params:  params,
		Supers:  supers,
		methods: make(map[symbol.ID]*Method),
	}, nil
}

// AddMethod registers a method signature on a trait. It reports an
// error if the trait (or one of its super-traits, transitively)
// already declares a method of that name.
func (d *TraitDecl) AddMethod(m *Method) error {
	if _, _, ok := d.FindMethod(m.Name); ok {
		return fmt.Errorf("types: trait %s already declares (or inherits) method %s", d.Name, m.Name)
	}
	d.methods[m.Name] = m
	d.methodOrder = append(d.methodOrder, m.Name)
	return nil
}

// FindMethod searches d, then transitively through its super-traits,
// for a method named name (spec §4.6: "method lookup transits
// super-trait bounds"). It returns the owning trait alongside the
// method so callers can report where an ambiguous/duplicate signature
// came from.
func (d *TraitDecl) FindMethod(name symbol.ID) (*TraitDecl, *Method, bool) {
	if m, ok := d.methods[name]; ok {
		return d, m, true
	}
	for _, super := range d.Supers {
		if owner, m, ok := super.Trait().FindMethod(name); ok {
			return owner, m, true
		}
	}
	return nil, nil, false
}

// Methods returns d's directly-declared methods in declaration order
// (it does not include inherited super-trait methods; use FindMethod
// for lookup that transits them).
func (d *TraitDecl) Methods() []*Method {
	out := make([]*Method, len(d.methodOrder))
	for i, n := range d.methodOrder {
		out[i] = d.methods[n]
	}
	return out
}

// allSupers returns the transitive closure of d's super-trait bounds,
// each bound's Self left exactly as declared (relative to d.Self).
func (d *TraitDecl) allSupers() []*Type {
	var out []*Type
	seen := map[*TraitDecl]bool{}
	var walk func(*TraitDecl)
	walk = func(td *TraitDecl) {
		for _, s := range td.Supers {
			if seen[s.Trait()] {
				continue
			}
			seen[s.Trait()] = true
			out = append(out, s)
			walk(s.Trait())
		}
	}
	walk(d)
	return out
}

// Impl is a concrete implementation of a trait application for a
// target type (spec §3.3 "impl item"). Bound lists the impl's own
// polymorphic type parameters, if any (an impl may itself be generic
// over a type variable its target mentions).
type Impl struct {
	Bound  []BoundVar
	Trait  *Type // Kind()==TraitApp
	Target *Type

	methods map[symbol.ID]*Method
}

// AddImpl registers impl in the table's impl store. It does not check
// for overlapping/duplicate impls, and sema does not diagnose them
// either: Implements and FindMethod use the first registered impl
// that matches.
func (t *Table) AddImpl(impl *Impl) {
	t.impls = append(t.impls, impl)
}

// Impls returns every registered impl, in registration order.
func (t *Table) Impls() []*Impl {
	out := make([]*Impl, len(t.impls))
	copy(out, t.impls)
	return out
}

// Implements searches the impl store for an impl of trait for target,
// attempting to Unify target (and, if present, trait's own arguments)
// against each candidate impl's target (instantiating the impl's own
// Bound with fresh unknowns first, spec §4.6 "bound resolution"). It
// returns the matching impl and the substitution that made it match.
func (t *Table) Implements(trait *Type, target *Type) (*Impl, map[*Type]*Type, bool) {
	target = t.Find(target)
	for _, impl := range t.impls {
		if impl.Trait == nil {
			continue // an inherent impl implements no trait
		}
		subst := t.FreshSubst(impl.Bound)
		implTarget := t.Substitute(impl.Target, subst)
		implTrait := t.Substitute(impl.Trait, subst)
		if !t.Unify(implTarget, target) {
			continue
		}
		if !t.Unify(implTrait, trait) {
			continue
		}
		return impl, subst, true
	}
	return nil, nil, false
}

// RegisterTrait adds decl to the table's trait namespace, reporting an
// error if a trait of that name is already registered.
func (t *Table) RegisterTrait(decl *TraitDecl) error {
	if _, ok := t.traits[decl.Name]; ok {
		return fmt.Errorf("types: trait %s already declared", decl.Name)
	}
	t.traits[decl.Name] = decl
	return nil
}

// LookupTrait returns the registered trait named name, if any.
func (t *Table) LookupTrait(name symbol.ID) (*TraitDecl, bool) {
	d, ok := t.traits[name]
	return d, ok
}

// Traits returns every registered trait declaration, in no particular
// order; callers that need determinism (e.g. diagnostics) should sort
// by Name themselves.
func (t *Table) Traits() []*TraitDecl {
	out := make([]*TraitDecl, 0, len(t.traits))
	for _, d := range t.traits {
		out = append(out, d)
	}
	return out
}

// FindMethod resolves a method call against target's type: it first
// asks every registered impl whose target unifies with target for a
// direct method of that name, then (for impls implementing a trait)
// transits the trait's super-trait methods via TraitDecl.FindMethod
// (spec §4.6: "method dispatch searches impls, then inherited trait
// defaults"). It returns the resolved Method, the impl providing it,
// and the substitution used to match target.
func (t *Table) FindMethod(target *Type, name symbol.ID) (*Impl, *Method, map[*Type]*Type, bool) {
	target = t.Find(target)
	for _, impl := range t.impls {
		subst := t.FreshSubst(impl.Bound)
		implTarget := t.Substitute(impl.Target, subst)
		if !t.Unify(implTarget, target) {
			continue
		}
		if m, ok := impl.methods[name]; ok {
			return impl, m, subst, true
		}
		if impl.Trait != nil {
			if _, m, ok := impl.Trait.Trait().FindMethod(name); ok {
				return impl, m, subst, true
			}
		}
	}
	return nil, nil, nil, false
}

// AddMethod registers a method directly on impl (as opposed to one
// inherited from its trait).
func (impl *Impl) AddMethod(m *Method) {
	if impl.methods == nil {
		impl.methods = make(map[symbol.ID]*Method)
	}
	impl.methods[m.Name] = m
}

// RegisterStruct adds decl to the table's struct-abs namespace,
// reporting an error if a struct of that name is already registered.
func (t *Table) RegisterStruct(decl *StructDecl) error {
	if _, ok := t.structs[decl.Name]; ok {
		return fmt.Errorf("types: struct %s already declared", decl.Name)
	}
	t.structs[decl.Name] = decl
	return nil
}

// LookupStruct returns the registered struct declaration named name,
// if any.
func (t *Table) LookupStruct(name symbol.ID) (*StructDecl, bool) {
	d, ok := t.structs[name]
	return d, ok
}

// Structs returns every registered struct declaration, in no
// particular order; callers that need determinism (e.g. diagnostics)
// should sort by Name themselves.
func (t *Table) Structs() []*StructDecl {
	out := make([]*StructDecl, 0, len(t.structs))
	for _, d := range t.structs {
		out = append(out, d)
	}
	return out
}
