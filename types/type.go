package types

import (
	"fmt"
	"strings"

	"github.com/rill-lang/rillc/symbol"
)

// Type is an interned, hash-consed type representative. Two closed
// types are structurally equal iff they are the same *Type (spec §3.2:
// "Types are interned: two types are structurally equal iff they are
// the same representative"). Unknown types (inference variables) carry
// their own identity until unified, after which they become aliases of
// their unifying representative (see Table.Find).
type Type struct {
	kind Kind

	// Pointer
	ptrKind   PointerKind
	addrSpace int
	elem      *Type // Pointer referent / array element / simd element.

	// DefiniteArray
	length uint64

	// Tuple elements / Fn argument types (last Fn arg is, by
	// convention, the continuation — see FnDecl in ast/item.go).
	elems []*Type

	// Fn bound type variables and their trait-bound sets (spec §3.2:
	// "may carry bound type variables with trait-bound sets").
	bound []BoundVar

	// StructAbs
	decl *StructDecl

	// StructApp / TraitApp type arguments; for StructApp these apply to
	// abs, for TraitApp these are the trait's type parameters applied
	// after self.
	abs  *Type // StructApp: the struct-abs template.
	args []*Type

	// TypeVar
	varSym   symbol.ID
	varOwner interface{} // opaque binding entity (e.g. *ast.FnDecl); compared by identity only.

	// TraitApp
	trait *TraitDecl
	self  *Type

	// Unknown: union-find parent. nil means this Unknown is its own
	// representative (not yet unified with anything).
	resolved *Type

	// digest is a murmur3 structural digest used only to bucket this
	// type's hash-cons entry inside Table; it is not part of the
	// equality contract (pointer identity is), mirroring the teacher's
	// use of murmur3 to pick a shard/bucket rather than to decide
	// equality outright (gql/parallel_reduce_table.go).
	digest uint64
}

// Kind returns the type's variant tag.
func (t *Type) Kind() Kind { return t.kind }

// Elem returns the referent type of a Pointer, the element type of a
// DefiniteArray/IndefiniteArray/Simd. It panics on any other kind.
func (t *Type) Elem() *Type {
	switch t.kind {
	case Pointer, DefiniteArray, IndefiniteArray, Simd:
		return t.elem
	}
	panic(fmt.Sprintf("types: Elem called on %v", t.kind))
}

// PointerKind returns the pointer kind (Owned/Borrowed). Panics unless
// Kind()==Pointer.
func (t *Type) PointerKind() PointerKind {
	if t.kind != Pointer {
		panic("types: PointerKind called on non-pointer")
	}
	return t.ptrKind
}

// AddrSpace returns the pointer's address-space tag. Panics unless
// Kind()==Pointer.
func (t *Type) AddrSpace() int {
	if t.kind != Pointer {
		panic("types: AddrSpace called on non-pointer")
	}
	return t.addrSpace
}

// Length returns a DefiniteArray's length. Panics otherwise.
func (t *Type) Length() uint64 {
	if t.kind != DefiniteArray {
		panic("types: Length called on non-array")
	}
	return t.length
}

// Lanes returns a Simd type's lane count. Panics otherwise.
func (t *Type) Lanes() int {
	if t.kind != Simd {
		panic("types: Lanes called on non-simd")
	}
	return int(t.length)
}

// Elems returns a Tuple's element types, or a Fn's argument types (the
// last of which is the continuation parameter by convention). Panics
// on any other kind.
func (t *Type) Elems() []*Type {
	switch t.kind {
	case Tuple, Fn:
		return t.elems
	}
	panic(fmt.Sprintf("types: Elems called on %v", t.kind))
}

// Bound returns a Fn type's bound type variables and their trait-bound
// sets. Empty for a monomorphic Fn.
func (t *Type) Bound() []BoundVar {
	if t.kind != Fn {
		panic("types: Bound called on non-fn")
	}
	return t.bound
}

// StructDecl returns a StructAbs's backing declaration.
func (t *Type) StructDecl() *StructDecl {
	if t.kind != StructAbs {
		panic("types: StructDecl called on non-struct-abs")
	}
	return t.decl
}

// Abs returns a StructApp's struct-abs template.
func (t *Type) Abs() *Type {
	if t.kind != StructApp {
		panic("types: Abs called on non-struct-app")
	}
	return t.abs
}

// Args returns a StructApp's or TraitApp's type arguments (for
// TraitApp, the arguments after Self).
func (t *Type) Args() []*Type {
	switch t.kind {
	case StructApp, TraitApp:
		return t.args
	}
	panic(fmt.Sprintf("types: Args called on %v", t.kind))
}

// VarSym returns a TypeVar's binding symbol.
func (t *Type) VarSym() symbol.ID {
	if t.kind != TypeVar {
		panic("types: VarSym called on non-type-var")
	}
	return t.varSym
}

// VarOwner returns the opaque entity a TypeVar is bound by (a
// declaration pointer), compared only by identity.
func (t *Type) VarOwner() interface{} {
	if t.kind != TypeVar {
		panic("types: VarOwner called on non-type-var")
	}
	return t.varOwner
}

// Trait returns a TraitApp's trait declaration.
func (t *Type) Trait() *TraitDecl {
	if t.kind != TraitApp {
		panic("types: Trait called on non-trait-app")
	}
	return t.trait
}

// Self returns a TraitApp's self type (its first argument, spec §3.2).
func (t *Type) Self() *Type {
	if t.kind != TraitApp {
		panic("types: Self called on non-trait-app")
	}
	return t.self
}

// BoundVar is a type variable together with the set of trait-app
// bounds it must satisfy (spec §3.2, §4.6).
type BoundVar struct {
	Var    *Type // Kind()==TypeVar
	Bounds []*Type
}

// StructDecl is the nominal declaration a StructAbs type is bound to.
// It carries the struct's name, its bound type variables (whose count
// is the arity a StructApp must match, spec §3.2 invariant: "A
// struct-app's argument count equals its struct-abs's type-variable
// count"), and its fields, which sema's field-access and struct-literal
// checks read.
type StructDecl struct {
	Name     symbol.ID
	TypeVars []*Type // each Kind()==TypeVar
	Fields   []StructField
}

// StructField is a single field of a struct declaration.
type StructField struct {
	Name symbol.ID
	Type *Type
}

// FieldIndex returns the index of the named field, or -1.
func (d *StructDecl) FieldIndex(name symbol.ID) int {
	for i, f := range d.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// IsClosed reports whether t has no free type variables and no
// unresolved Unknown anywhere in its structure (spec §3.2 invariant).
// TraitApp/StructAbs/Fn bound-variable *declarations* are themselves
// TypeVars and do not, by themselves, make the declaring Fn/trait
// "open" — only a *reference* to an unbound TypeVar inside the body
// does. This function is conservative: a TypeVar is always considered
// non-closed, since by construction it is only reachable from within
// the scope that binds it (a polymorphic Fn/TraitApp), and callers
// (sema) only ask IsClosed of already-instantiated types.
func IsClosed(t *Type) bool {
	seen := map[*Type]bool{}
	var walk func(*Type) bool
	walk = func(t *Type) bool {
		if seen[t] {
			return true
		}
		seen[t] = true
		switch t.kind {
		case Unknown, TypeVar:
			return false
		case Pointer, DefiniteArray, IndefiniteArray, Simd:
			return walk(t.elem)
		case Tuple:
			for _, e := range t.elems {
				if !walk(e) {
					return false
				}
			}
			return true
		case Fn:
			for _, e := range t.elems {
				if !walk(e) {
					return false
				}
			}
			return true
		case StructApp:
			for _, a := range t.args {
				if !walk(a) {
					return false
				}
			}
			return true
		case TraitApp:
			if !walk(t.self) {
				return false
			}
			for _, a := range t.args {
				if !walk(a) {
					return false
				}
			}
			return true
		default:
			return true
		}
	}
	return walk(t)
}

// String renders a human-readable type expression, used in diagnostics
// and tests (mirroring ASTNode.String() in the teacher's ast.go, which
// similarly exists "only for logging").
func (t *Type) String() string {
	switch t.kind {
	case Pointer:
		return t.ptrKind.String() + t.elem.String()
	case DefiniteArray:
		return fmt.Sprintf("[%s * %d]", t.elem, t.length)
	case IndefiniteArray:
		return fmt.Sprintf("[%s]", t.elem)
	case Tuple:
		parts := make([]string, len(t.elems))
		for i, e := range t.elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Simd:
		return fmt.Sprintf("simd<%s, %d>", t.elem, t.length)
	case Fn:
		parts := make([]string, len(t.elems))
		for i, e := range t.elems {
			parts[i] = e.String()
		}
		prefix := ""
		if len(t.bound) > 0 {
			var bp []string
			for _, b := range t.bound {
				bp = append(bp, b.Var.String())
			}
			prefix = "[" + strings.Join(bp, ", ") + "]"
		}
		return fmt.Sprintf("fn%s(%s)", prefix, strings.Join(parts, ", "))
	case StructAbs:
		return t.decl.Name.String()
	case StructApp:
		if len(t.args) == 0 {
			return t.abs.String()
		}
		parts := make([]string, len(t.args))
		for i, a := range t.args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", t.abs.String(), strings.Join(parts, ", "))
	case TypeVar:
		return t.varSym.String()
	case TraitApp:
		parts := make([]string, 0, 1+len(t.args))
		parts = append(parts, t.self.String())
		for _, a := range t.args {
			parts = append(parts, a.String())
		}
		return fmt.Sprintf("%s<%s>", t.trait.Name, strings.Join(parts, ", "))
	case Unknown:
		return fmt.Sprintf("?%p", t)
	default:
		return t.kind.String()
	}
}
