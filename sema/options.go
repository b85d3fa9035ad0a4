package sema

// Options configures a Checker, mirroring parser.Options's role as a
// small value object a driver builds once per compilation (spec §6
// "nossa compile-mode flag").
type Options struct {
	// NoSSA marks every mutable local's address taken wherever it is
	// referenced. Without it, a path's address is marked taken only
	// when it is the operand of `&`; a mutable local referenced from a
	// nested closure is not detected or marked.
	NoSSA bool
}
