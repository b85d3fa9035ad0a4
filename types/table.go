package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spaolacci/murmur3"

	"github.com/rill-lang/rillc/symbol"
)

// Table is the authoritative type interner and unifier (spec §3.2
// "Interning", §3.4 "Unification"). All *Type values a checker works
// with are produced through a Table so that structural equality
// reduces to pointer equality.
//
// Interning buckets closed (non-Unknown) types by a murmur3 digest of
// their canonical string signature, the same shard-selection idiom the
// teacher uses to spread table rows across workers in
// gql/parallel_reduce_table.go — repurposed here from sharding for
// parallelism to bucketing for hash-consing, since this table has a
// single writer (spec §5) and needs no sharding at all.
type Table struct {
	mu      sync.Mutex
	buckets map[uint64][]*Type

	// singletons for the zero-argument kinds, so repeated calls to
	// e.g. Primitive(Bool) return the identical *Type.
	primitives map[Kind]*Type
	unit       *Type
	errorType  *Type
	noret      *Type

	traits  map[symbol.ID]*TraitDecl
	impls   []*Impl
	structs map[symbol.ID]*StructDecl
}

// NewTable creates an empty, ready-to-use Table.
func NewTable() *Table {
	t := &Table{
		buckets:    make(map[uint64][]*Type),
		primitives: make(map[Kind]*Type, len(primitiveKinds)),
		traits:     make(map[symbol.ID]*TraitDecl),
		structs:    make(map[symbol.ID]*StructDecl),
	}
	for _, k := range primitiveKinds {
		t.primitives[k] = &Type{kind: k}
	}
	t.unit = &Type{kind: Unit}
	t.errorType = &Type{kind: Error}
	t.noret = &Type{kind: NoRet}
	return t
}

const murmurSeed = 0x5a3c9f17

func digest(sig string) uint64 {
	return uint64(murmur3.Sum32WithSeed([]byte(sig), murmurSeed))
}

// intern finds or creates the representative for a closed type with
// canonical signature sig, building the rest of the *Type with build
// only on a true miss.
func (t *Table) intern(sig string, build func() *Type) *Type {
	d := digest(sig)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, cand := range t.buckets[d] {
		if cand.digest == d && cand.sig() == sig {
			return cand
		}
	}
	nt := build()
	nt.digest = d
	t.buckets[d] = append(t.buckets[d], nt)
	return nt
}

// sig computes the canonical structural signature used as the
// hash-cons key. Unknown types are never interned themselves (each is
// a fresh identity), but a composite may contain one; its signature
// names that Unknown by identity, so composites over distinct Unknowns
// are never merged.
func (t *Type) sig() string {
	switch t.kind {
	case Unknown:
		return fmt.Sprintf("unknown(%p)", t)
	case Pointer:
		return fmt.Sprintf("ptr(%d,%d,%s)", t.ptrKind, t.addrSpace, t.elem.sig())
	case DefiniteArray:
		return fmt.Sprintf("arr(%d,%s)", t.length, t.elem.sig())
	case IndefiniteArray:
		return fmt.Sprintf("slice(%s)", t.elem.sig())
	case Tuple:
		return "tuple(" + sigJoin(t.elems) + ")"
	case Simd:
		return fmt.Sprintf("simd(%d,%s)", t.length, t.elem.sig())
	case Fn:
		var b strings.Builder
		b.WriteString("fn[")
		for i, bv := range t.bound {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%p:%s", bv.Var, sigJoin(bv.Bounds))
		}
		b.WriteString("](")
		b.WriteString(sigJoin(t.elems))
		b.WriteByte(')')
		return b.String()
	case StructAbs:
		return fmt.Sprintf("structabs(%s)", t.decl.Name)
	case StructApp:
		return fmt.Sprintf("structapp(%s,%s)", t.abs.sig(), sigJoin(t.args))
	case TypeVar:
		return fmt.Sprintf("typevar(%s,%p)", t.varSym, t.varOwner)
	case TraitApp:
		return fmt.Sprintf("traitapp(%s,%s,%s)", t.trait.Name, t.self.sig(), sigJoin(t.args))
	default:
		return t.kind.String()
	}
}

func sigJoin(ts []*Type) string {
	parts := make([]string, len(ts))
	for i, e := range ts {
		parts[i] = e.sig()
	}
	return strings.Join(parts, ",")
}

// Primitive returns the singleton for a primitive Kind. It panics if k
// is not one of the primitive kinds.
func (t *Table) Primitive(k Kind) *Type {
	p, ok := t.primitives[k]
	if !ok {
		panic(fmt.Sprintf("types: %v is not a primitive kind", k))
	}
	return p
}

// Unit, ErrorType, and NoRet return the table's singletons for the
// corresponding zero-argument Kinds (spec §3.2).
func (t *Table) Unit() *Type      { return t.unit }
func (t *Table) ErrorType() *Type { return t.errorType }
func (t *Table) NoRet() *Type     { return t.noret }

// NewUnknown creates a fresh Unknown type variable, never interned:
// each call returns a distinct identity, resolved later by Unify
// (spec §3.4 "fresh unknowns").
func (t *Table) NewUnknown() *Type {
	return &Type{kind: Unknown}
}

// Pointer interns an owned/borrowed pointer to elem in addrSpace.
func (t *Table) Pointer(kind PointerKind, addrSpace int, elem *Type) *Type {
	elem = t.Find(elem)
	sig := fmt.Sprintf("ptr(%d,%d,%s)", kind, addrSpace, elem.sig())
	return t.intern(sig, func() *Type {
		return &Type{kind: Pointer, ptrKind: kind, addrSpace: addrSpace, elem: elem}
	})
}

// DefiniteArray interns a length-n array of elem.
func (t *Table) DefiniteArray(elem *Type, n uint64) *Type {
	elem = t.Find(elem)
	sig := fmt.Sprintf("arr(%d,%s)", n, elem.sig())
	return t.intern(sig, func() *Type {
		return &Type{kind: DefiniteArray, elem: elem, length: n}
	})
}

// IndefiniteArray interns an unsized-array-of-elem type.
func (t *Table) IndefiniteArray(elem *Type) *Type {
	elem = t.Find(elem)
	sig := fmt.Sprintf("slice(%s)", elem.sig())
	return t.intern(sig, func() *Type {
		return &Type{kind: IndefiniteArray, elem: elem}
	})
}

// Tuple interns a tuple of elems. A zero-element tuple is distinct
// from Unit (spec §3.2 draws that distinction explicitly).
func (t *Table) Tuple(elems ...*Type) *Type {
	elems = t.findAll(elems)
	sig := "tuple(" + sigJoin(elems) + ")"
	return t.intern(sig, func() *Type {
		return &Type{kind: Tuple, elems: elems}
	})
}

// Simd interns a SIMD vector of n lanes of elem, which must be a
// primitive type.
func (t *Table) Simd(elem *Type, n int) *Type {
	elem = t.Find(elem)
	sig := fmt.Sprintf("simd(%d,%s)", n, elem.sig())
	return t.intern(sig, func() *Type {
		return &Type{kind: Simd, elem: elem, length: uint64(n)}
	})
}

// Fn interns a function type over bound type variables bound, argument
// types args (the trailing element being, by convention, the
// continuation parameter for CPS-style calls).
func (t *Table) Fn(bound []BoundVar, args []*Type) *Type {
	args = t.findAll(args)
	// bound variables are identity-keyed (not structurally interned
	// across distinct declarations), so two syntactically identical but
	// distinct polymorphic fn decls get distinct Fn types, matching
	// "distinct declarations never share a representative" (spec §3.2).
	nt := &Type{kind: Fn, bound: bound, elems: args}
	sig := nt.sig()
	d := digest(sig)
	t.mu.Lock()
	defer t.mu.Unlock()
	nt.digest = d
	t.buckets[d] = append(t.buckets[d], nt)
	return nt
}

// StructAbs interns the nominal struct-abs type for decl. Repeated
// calls with the same decl pointer return the same representative.
func (t *Table) StructAbs(decl *StructDecl) *Type {
	sig := fmt.Sprintf("structabs(%s)", decl.Name)
	return t.intern(sig, func() *Type {
		return &Type{kind: StructAbs, decl: decl}
	})
}

// StructApp interns abs applied to args. len(args) must equal
// len(abs.StructDecl().TypeVars); callers (sema) are responsible for
// diagnosing an arity mismatch before calling this.
func (t *Table) StructApp(abs *Type, args []*Type) *Type {
	abs = t.Find(abs)
	args = t.findAll(args)
	sig := fmt.Sprintf("structapp(%s,%s)", abs.sig(), sigJoin(args))
	return t.intern(sig, func() *Type {
		return &Type{kind: StructApp, abs: abs, args: args}
	})
}

// TypeVar interns the type variable named sym and bound by owner
// (compared by identity, typically a declaration pointer). The same
// (sym, owner) pair always yields the same representative.
func (t *Table) TypeVar(sym symbol.ID, owner interface{}) *Type {
	sig := fmt.Sprintf("typevar(%s,%p)", sym, owner)
	return t.intern(sig, func() *Type {
		return &Type{kind: TypeVar, varSym: sym, varOwner: owner}
	})
}

// TraitApp interns trait applied to self and args.
func (t *Table) TraitApp(trait *TraitDecl, self *Type, args []*Type) *Type {
	self = t.Find(self)
	args = t.findAll(args)
	sig := fmt.Sprintf("traitapp(%s,%s,%s)", trait.Name, self.sig(), sigJoin(args))
	return t.intern(sig, func() *Type {
		return &Type{kind: TraitApp, trait: trait, self: self, args: args}
	})
}

func (t *Table) findAll(ts []*Type) []*Type {
	out := make([]*Type, len(ts))
	for i, e := range ts {
		out[i] = t.Find(e)
	}
	return out
}

// Find returns t's current union-find representative, following and
// compressing the Unknown resolution chain (spec §3.4: "path
// compression on lookup"). Non-Unknown types are their own
// representative and are returned unchanged.
func (t *Table) Find(typ *Type) *Type {
	if typ == nil || typ.kind != Unknown {
		return typ
	}
	root := typ
	for root.resolved != nil {
		root = root.resolved
	}
	for typ.kind == Unknown && typ.resolved != nil {
		next := typ.resolved
		if next != root {
			typ.resolved = root
		}
		typ = next
	}
	return root
}

// Unify attempts to make a and b structurally identical, resolving any
// Unknowns encountered along the way, and reports success (spec §3.4).
// Unify may partially commit on failure-in-the-middle of a composite
// match: Unknowns resolved before the failing element stay resolved.
// Callers that need atomicity would have to snapshot and restore via a
// resolution log, which this checker does not currently keep, since a failed Unify only ever occurs at a call site that is
// about to report an error and abandon the expression anyway.
func (t *Table) Unify(a, b *Type) bool {
	a, b = t.Find(a), t.Find(b)
	if a == b {
		return true
	}
	if a.kind == Unknown {
		a.resolved = b
		return true
	}
	if b.kind == Unknown {
		b.resolved = a
		return true
	}
	if a.kind == Error || b.kind == Error {
		return true
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Bool, I8, I16, I32, I64, U8, U16, U32, U64, F32, F64, Unit, NoRet:
		return true
	case Pointer:
		return a.ptrKind == b.ptrKind && a.addrSpace == b.addrSpace && t.Unify(a.elem, b.elem)
	case DefiniteArray:
		return a.length == b.length && t.Unify(a.elem, b.elem)
	case IndefiniteArray, Simd:
		if a.kind == Simd && a.length != b.length {
			return false
		}
		return t.Unify(a.elem, b.elem)
	case Tuple:
		return t.unifyAll(a.elems, b.elems)
	case Fn:
		if len(a.bound) != len(b.bound) {
			return false
		}
		return t.unifyAll(a.elems, b.elems)
	case StructAbs:
		return a.decl == b.decl
	case StructApp:
		return t.Unify(a.abs, b.abs) && t.unifyAll(a.args, b.args)
	case TypeVar:
		return a.varSym == b.varSym && a.varOwner == b.varOwner
	case TraitApp:
		return a.trait == b.trait && t.Unify(a.self, b.self) && t.unifyAll(a.args, b.args)
	}
	return false
}

func (t *Table) unifyAll(as, bs []*Type) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !t.Unify(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// Infer is Unify restricted to the direction sema's partial
// type-argument inference needs (spec §4.4 step 2): unify an
// explicitly-Unknown slot against a concrete type without requiring
// the caller to know which side is which.
func (t *Table) Infer(unknown, concrete *Type) bool {
	return t.Unify(unknown, concrete)
}

// Instantiate replaces every bound type variable of a polymorphic type
// (collected from bound) with the corresponding entry of args via
// Substitute (spec §4.4 step 3: "instantiate the fn type").
func (t *Table) Instantiate(bound []BoundVar, body []*Type, args []*Type) []*Type {
	subst := make(map[*Type]*Type, len(bound))
	for i, bv := range bound {
		subst[bv.Var] = args[i]
	}
	out := make([]*Type, len(body))
	for i, b := range body {
		out[i] = t.Substitute(b, subst)
	}
	return out
}

// FreshSubst builds a substitution mapping each of bound's variables to
// a freshly allocated Unknown, for use by Substitute, implementing
// spec §4.4 step 1 ("fill remaining type parameters with fresh
// unknowns").
func (t *Table) FreshSubst(bound []BoundVar) map[*Type]*Type {
	subst := make(map[*Type]*Type, len(bound))
	for _, bv := range bound {
		subst[bv.Var] = t.NewUnknown()
	}
	return subst
}

// Substitute replaces every TypeVar in typ found in subst with its
// mapped replacement, interning the result as needed. Pointer, array
// and simd types with no substituted element are returned unchanged;
// tuple, struct-app and trait-app types are always rebuilt (interning
// yields the same representative when nothing changed), and a Fn type
// is always rebuilt as a new Fn.
func (t *Table) Substitute(typ *Type, subst map[*Type]*Type) *Type {
	if typ == nil {
		return nil
	}
	switch typ.kind {
	case TypeVar:
		if r, ok := subst[typ]; ok {
			return r
		}
		return typ
	case Pointer:
		e := t.Substitute(typ.elem, subst)
		if e == typ.elem {
			return typ
		}
		return t.Pointer(typ.ptrKind, typ.addrSpace, e)
	case DefiniteArray:
		e := t.Substitute(typ.elem, subst)
		if e == typ.elem {
			return typ
		}
		return t.DefiniteArray(e, typ.length)
	case IndefiniteArray:
		e := t.Substitute(typ.elem, subst)
		if e == typ.elem {
			return typ
		}
		return t.IndefiniteArray(e)
	case Simd:
		e := t.Substitute(typ.elem, subst)
		if e == typ.elem {
			return typ
		}
		return t.Simd(e, int(typ.length))
	case Tuple:
		es := t.substituteAll(typ.elems, subst)
		return t.Tuple(es...)
	case Fn:
		es := t.substituteAll(typ.elems, subst)
		return t.Fn(typ.bound, es)
	case StructApp:
		abs := t.Substitute(typ.abs, subst)
		args := t.substituteAll(typ.args, subst)
		return t.StructApp(abs, args)
	case TraitApp:
		self := t.Substitute(typ.self, subst)
		args := t.substituteAll(typ.args, subst)
		return t.TraitApp(typ.trait, self, args)
	default:
		return typ
	}
}

func (t *Table) substituteAll(ts []*Type, subst map[*Type]*Type) []*Type {
	out := make([]*Type, len(ts))
	for i, e := range ts {
		out[i] = t.Substitute(e, subst)
	}
	return out
}

// SpecializeMap substitutes the Bounds lists of bound through subst,
// used by sema after Instantiate to know which trait-app bounds the
// fresh arguments must satisfy (spec §4.4 step 6 "verify bounds").
func (t *Table) SpecializeMap(bound []BoundVar, subst map[*Type]*Type) []BoundVar {
	out := make([]BoundVar, len(bound))
	for i, bv := range bound {
		bounds := make([]*Type, len(bv.Bounds))
		for j, b := range bv.Bounds {
			bounds[j] = t.Substitute(b, subst)
		}
		out[i] = BoundVar{Var: subst[bv.Var], Bounds: bounds}
	}
	return out
}

// Subtype reports whether a value of type found may be used where
// expected is required: the two are the same type, either is the error
// type, or an Unknown on either side unifies with the other. It
// performs no integer widening (an unsuffixed integer literal takes its
// kind from the expected type in sema's literalType instead). It does
// not itself mark needs_cast;
// callers compare found != expected after a true result to decide
// that.
func (t *Table) Subtype(found, expected *Type) bool {
	found, expected = t.Find(found), t.Find(expected)
	if found == expected {
		return true
	}
	if found.kind == Error || expected.kind == Error {
		return true
	}
	if found.kind == Unknown || expected.kind == Unknown {
		return t.Unify(found, expected)
	}
	return false
}

// IsInt, IsSignedInt, IsUnsignedInt, and IsFloat classify a Kind by
// OR-over-negations rather than by a bitmask (original_source's
// typeproperties.cpp never ANDs a composite predicate together with
// its own negation; it tests each disjunct independently), so a kind
// that happens to satisfy none of the disjuncts cannot be
// misclassified by an overlapping bit.
func IsInt(k Kind) bool {
	return signedIntKinds[k] || unsignedIntKinds[k]
}

func IsSignedInt(k Kind) bool { return signedIntKinds[k] }

func IsUnsignedInt(k Kind) bool { return unsignedIntKinds[k] }

func IsFloat(k Kind) bool { return floatKinds[k] }

// IsNumeric reports whether k is an integer or float kind.
func IsNumeric(k Kind) bool {
	return IsInt(k) || IsFloat(k)
}

// IsClosedTable is a Table-bound convenience wrapper for IsClosed that
// first resolves any Unknown via Find, so a fully-unified-but-not-yet-
// path-compressed Unknown chain is still reported correctly.
func (t *Table) IsClosedTable(typ *Type) bool {
	return IsClosed(t.Find(typ))
}
