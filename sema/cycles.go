package sema

import (
	"sort"

	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
	"v.io/x/lib/toposort"
)

// checkCycles topologically sorts the module's trait-supertrait graph
// and its struct-field-containment graph, diagnosing a cycle in
// either (spec §3.3 invariants: a trait may not transitively inherit
// from itself; a struct may not contain, without indirection, an
// instance of itself — that would require infinite size). Both graphs
// are built and sorted the same way a table's column dependency graph
// is (toposort.Sorter, nodes added lazily via AddEdge/AddNode), just
// over trait/struct declarations instead of column names.
func (c *Checker) checkCycles() {
	c.checkTraitCycles()
	c.checkStructCycles()
}

func (c *Checker) checkTraitCycles() {
	traits := c.table.Traits()
	sort.Slice(traits, func(i, j int) bool { return traits[i].Name.String() < traits[j].Name.String() })

	var sorter toposort.Sorter
	for _, td := range traits {
		sorter.AddNode(td)
		for _, super := range td.Supers {
			sorter.AddEdge(td, super.Trait())
		}
	}
	if _, ok := sorter.Sort(); !ok {
		for _, cycle := range sorter.Cycles() {
			c.diags.Errorf(token.Location{}, "cyclic trait inheritance: %s", traitCycleString(cycle))
		}
	}
}

func (c *Checker) checkStructCycles() {
	structs := c.table.Structs()
	sort.Slice(structs, func(i, j int) bool { return structs[i].Name.String() < structs[j].Name.String() })

	var sorter toposort.Sorter
	for _, decl := range structs {
		sorter.AddNode(decl)
		for _, dep := range directStructDeps(decl) {
			sorter.AddEdge(decl, dep)
		}
	}
	if _, ok := sorter.Sort(); !ok {
		for _, cycle := range sorter.Cycles() {
			c.diags.Errorf(token.Location{}, "struct has infinite size due to cyclic non-pointer field containment: %s", structCycleString(cycle))
		}
	}
}

// directStructDeps returns the struct declarations decl's fields
// contain directly (no pointer or indefinite-array indirection in
// between), recursing through tuples and definite arrays since both
// store their element(s) inline.
func directStructDeps(decl *types.StructDecl) []*types.StructDecl {
	var out []*types.StructDecl
	seen := map[*types.StructDecl]bool{}
	var walk func(*types.Type)
	walk = func(t *types.Type) {
		switch t.Kind() {
		case types.StructApp:
			d := t.Abs().StructDecl()
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		case types.Tuple:
			for _, e := range t.Elems() {
				walk(e)
			}
		case types.DefiniteArray:
			walk(t.Elem())
		}
	}
	for _, f := range decl.Fields {
		walk(f.Type)
	}
	return out
}

func traitCycleString(cycle []interface{}) string {
	s := ""
	for i, n := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += n.(*types.TraitDecl).Name.String()
	}
	return s
}

func structCycleString(cycle []interface{}) string {
	s := ""
	for i, n := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += n.(*types.StructDecl).Name.String()
	}
	return s
}
