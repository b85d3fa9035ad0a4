package ast

import (
	"fmt"
	"strings"

	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// Item is a top-level (or nested-module) declaration: module, function,
// foreign-fn block, enum, struct, type alias, static, trait, or impl
// (spec §3.3: "Items: module declarations, function declarations,
// foreign-fn blocks (with an ABI string), enum/struct/type
// declarations, static items, trait declarations, impl blocks.").
type Item interface {
	Loc() token.Location
	Name() symbol.ID
	String() string
}

type itemBase struct {
	loc  token.Location
	name symbol.ID
}

func (b *itemBase) Loc() token.Location { return b.loc }
func (b *itemBase) Name() symbol.ID     { return b.name }

// Visibility is the optional `pub`/`priv` prefix every item may carry
// (spec §4.1 "Item dispatch").
type Visibility int

const (
	Default Visibility = iota
	Pub
	Priv
)

// Module is the ordered sequence of items parsed from one source file
// (spec §3.3: "Top-level is a module contents").
type Module struct {
	Filename string
	Items    []Item
}

// FieldDecl is one field of a struct or enum-variant declaration.
type FieldDecl struct {
	Name symbol.ID
	Type *types.Type
}

// TypeParam is one declared type parameter together with its trait
// bounds, shared by FnDecl, StructItem, EnumDecl, TraitItem, and
// ImplItem (spec §3.2 "may carry bound type variables with
// trait-bound sets").
type TypeParam struct {
	Var    *types.Type // Kind()==TypeVar
	Bounds []*types.Type
}

// FnDecl is a function declaration (spec §3.3, §4.1 "Function head").
// Params always ends with the synthesized continuation parameter
// (named "return") appended during parsing per spec §4.1: its type is
// `fn() -> ()` when the written return type is void, else `fn(T) ->
// ()`. ReturnType records the user-written return type (void if
// omitted) purely for diagnostics/printing; FnType is the interned
// fn-type sema assigns once checked.
type FnDecl struct {
	itemBase
	Vis        Visibility
	Extern     bool
	ABI        string // set only when Extern; spec §6 "C", "device", "thorin".
	TypeParams []TypeParam
	Params     []*Param
	ReturnType *types.Type
	Body       *BlockExpr // nil for extern and other `;`-terminated (bodyless) declarations.
	FnType     *types.Type
}

// NewFnDecl creates an FnDecl. params must already include the
// synthesized continuation parameter as its last element.
func NewFnDecl(loc token.Location, name symbol.ID, vis Visibility, typeParams []TypeParam, params []*Param, retType *types.Type, body *BlockExpr) *FnDecl {
	return &FnDecl{itemBase: itemBase{loc, name}, Vis: vis, TypeParams: typeParams, Params: params, ReturnType: retType, Body: body}
}

// ContinuationParam returns the synthesized trailing "return" param.
func (d *FnDecl) ContinuationParam() *Param {
	if len(d.Params) == 0 {
		return nil
	}
	return d.Params[len(d.Params)-1]
}

func (d *FnDecl) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.Name.String()
	}
	return fmt.Sprintf("fn %s(%s)", d.Name(), strings.Join(parts, ", "))
}

// StructItem is a struct declaration (spec §3.3). Named StructItem
// (not StructDecl) to avoid colliding with types.StructDecl, the
// interned type-table side of the same declaration; Resolved links the
// two once sema registers the struct-abs type.
type StructItem struct {
	itemBase
	Vis        Visibility
	TypeParams []TypeParam
	Fields     []FieldDecl
	Resolved   *types.StructDecl
}

// NewStructItem creates a StructItem.
func NewStructItem(loc token.Location, name symbol.ID, vis Visibility, typeParams []TypeParam, fields []FieldDecl) *StructItem {
	return &StructItem{itemBase: itemBase{loc, name}, Vis: vis, TypeParams: typeParams, Fields: fields}
}

func (d *StructItem) String() string { return fmt.Sprintf("struct %s", d.Name()) }

// EnumVariant is one variant of an enum declaration.
type EnumVariant struct {
	Name   symbol.ID
	Fields []FieldDecl
}

// EnumDecl is an enum declaration (spec §3.3).
type EnumDecl struct {
	itemBase
	Vis        Visibility
	TypeParams []TypeParam
	Variants   []EnumVariant
}

// NewEnumDecl creates an EnumDecl.
func NewEnumDecl(loc token.Location, name symbol.ID, vis Visibility, typeParams []TypeParam, variants []EnumVariant) *EnumDecl {
	return &EnumDecl{itemBase: itemBase{loc, name}, Vis: vis, TypeParams: typeParams, Variants: variants}
}

func (d *EnumDecl) String() string { return fmt.Sprintf("enum %s", d.Name()) }

// TypeAliasDecl is a `type NAME = type;` declaration.
type TypeAliasDecl struct {
	itemBase
	Vis        Visibility
	TypeParams []TypeParam
	Aliased    *types.Type
}

// NewTypeAliasDecl creates a TypeAliasDecl.
func NewTypeAliasDecl(loc token.Location, name symbol.ID, vis Visibility, typeParams []TypeParam, aliased *types.Type) *TypeAliasDecl {
	return &TypeAliasDecl{itemBase: itemBase{loc, name}, Vis: vis, TypeParams: typeParams, Aliased: aliased}
}

func (d *TypeAliasDecl) String() string { return fmt.Sprintf("type %s", d.Name()) }

// StaticDecl is a `static mut? NAME (":" type)? "=" init ";"` item.
type StaticDecl struct {
	itemBase
	Vis  Visibility
	Mut  bool
	Type *types.Type
	Init Expr
}

// NewStaticDecl creates a StaticDecl.
func NewStaticDecl(loc token.Location, name symbol.ID, vis Visibility, mut bool, t *types.Type, init Expr) *StaticDecl {
	return &StaticDecl{itemBase: itemBase{loc, name}, Vis: vis, Mut: mut, Type: t, Init: init}
}

func (d *StaticDecl) String() string { return fmt.Sprintf("static %s", d.Name()) }

// TraitMethod is one method signature (and optional default body)
// declared inside a trait item.
type TraitMethod struct {
	Decl *FnDecl
}

// TraitItem is a trait declaration (spec §3.3, §4.3). SelfVar is the
// trait's self type variable; Resolved links to the types.TraitDecl
// sema registers from this item.
type TraitItem struct {
	itemBase
	Vis        Visibility
	SelfVar    *types.Type
	TypeParams []TypeParam
	Supers     []*types.Type // TraitApp bounds on SelfVar.
	Methods    []*TraitMethod
	Resolved   *types.TraitDecl
}

// NewTraitItem creates a TraitItem.
func NewTraitItem(loc token.Location, name symbol.ID, vis Visibility, self *types.Type, typeParams []TypeParam, supers []*types.Type, methods []*TraitMethod) *TraitItem {
	return &TraitItem{itemBase: itemBase{loc, name}, Vis: vis, SelfVar: self, TypeParams: typeParams, Supers: supers, Methods: methods}
}

func (d *TraitItem) String() string { return fmt.Sprintf("trait %s", d.Name()) }

// ImplItem is an impl block (spec §3.3, §4.3). Trait is nil for an
// inherent impl (methods attached directly to Target with no trait).
type ImplItem struct {
	loc        token.Location
	TypeParams []TypeParam
	Trait      *types.Type // TraitApp, or nil.
	Target     *types.Type
	Methods    []*FnDecl
	Resolved   *types.Impl
}

// NewImplItem creates an ImplItem.
func NewImplItem(loc token.Location, typeParams []TypeParam, trait *types.Type, target *types.Type, methods []*FnDecl) *ImplItem {
	return &ImplItem{loc: loc, TypeParams: typeParams, Trait: trait, Target: target, Methods: methods}
}

func (d *ImplItem) Loc() token.Location { return d.loc }

// Name returns the invalid symbol: impls have no name of their own.
func (d *ImplItem) Name() symbol.ID { return symbol.Invalid }

func (d *ImplItem) String() string {
	if d.Trait != nil {
		return fmt.Sprintf("impl %s for %s", d.Trait, d.Target)
	}
	return fmt.Sprintf("impl %s", d.Target)
}

// ModDecl is a nested `mod NAME { items* }` declaration.
type ModDecl struct {
	itemBase
	Vis   Visibility
	Items []Item
}

// NewModDecl creates a ModDecl.
func NewModDecl(loc token.Location, name symbol.ID, vis Visibility, items []Item) *ModDecl {
	return &ModDecl{itemBase: itemBase{loc, name}, Vis: vis, Items: items}
}

func (d *ModDecl) String() string { return fmt.Sprintf("mod %s", d.Name()) }
