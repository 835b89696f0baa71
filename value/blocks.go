package value

// Cons is the two-reference block cons_pool hands out. Its address is
// what Ref.Addr returns for a TagCons reference.
type Cons struct {
	Car Ref
	Cdr Ref
}

// RedirectKind selects which of a symbol's slots the collector itself
// scans versus leaves to the legacy mark phase.
type RedirectKind uint8

const (
	// RedirectPlainVal: value holds the symbol's own binding; scan it.
	RedirectPlainVal RedirectKind = iota
	// RedirectVarAlias: value aliases another symbol; legacy mark phase
	// chases the alias, not us.
	RedirectVarAlias
	// RedirectBufferLocal: value is a per-buffer forwarding cell; legacy.
	RedirectBufferLocal
	// RedirectForwarded: value is a C-forwarded special variable; legacy.
	RedirectForwarded
)

// Symbol is the five-reference block symbol_pool hands out.
type Symbol struct {
	Name     Ref
	Value    Ref
	Function Ref
	Plist    Ref
	Package  Ref
	Redirect RedirectKind
}
