// Package ast holds the handful of data structures that are shared between
// the module graph (package graph) and the AST layer (package js_ast)
// without being specific to either one. Keeping them here avoids an import
// cycle between those two packages.
package ast

// Index32 stores a 32-bit index where the zero value is invalid. The module
// graph does not use it: modules and variables reference each other by
// pointer. Flipping the bits means the zero value of Index32 is "invalid"
// instead of "index 0", matching the teacher's convention.
type Index32 struct {
	flippedBits uint32
}

// InvalidIndex32 is the zero value of Index32, spelled out for readability
// at call sites that compare against it.
var InvalidIndex32 = Index32{}

func MakeIndex32(index uint32) Index32 {
	return Index32{flippedBits: ^index}
}

func (i Index32) IsValid() bool {
	return i.flippedBits != 0
}

func (i Index32) GetIndex() uint32 {
	return ^i.flippedBits
}

// ModuleSideEffects is the tri-state from spec.md §3: a module may be
// assumed impure (the default), known pure (removable if nothing uses it),
// or forced to survive wholesale regardless of usage.
type ModuleSideEffects uint8

const (
	// SideEffectsAssumed is the default: the module is conservatively assumed
	// to perform observable side effects just by executing.
	SideEffectsAssumed ModuleSideEffects = iota

	// SideEffectsNone marks a module pure: it is removed entirely if nothing
	// in the bundle observes any of its bindings.
	SideEffectsNone

	// SideEffectsNoTreeshake forces every statement in the module, and every
	// one of its dependencies, to be included regardless of usage.
	SideEffectsNoTreeshake
)

func (s ModuleSideEffects) IsTruthy() bool {
	return s == SideEffectsAssumed || s == SideEffectsNoTreeshake
}

// SyntheticNamedExportsKind distinguishes the three states a module's
// syntheticNamedExports option can take (spec.md §3): off, fallback to the
// default export, or fallback to a user-named export.
type SyntheticNamedExportsKind uint8

const (
	SyntheticNamedExportsOff SyntheticNamedExportsKind = iota
	SyntheticNamedExportsDefault
	SyntheticNamedExportsNamed
)

type SyntheticNamedExports struct {
	Kind SyntheticNamedExportsKind

	// Only meaningful when Kind == SyntheticNamedExportsNamed.
	FallbackExportName string
}

func (s SyntheticNamedExports) IsEnabled() bool {
	return s.Kind != SyntheticNamedExportsOff
}

// Equals reports whether a module's syntheticNamedExports setting equals a
// given export name, per the resolver's "synthetic precedence" tie-break in
// spec.md §4.4 step 5: a real re-exported binding of that exact name wins
// over the synthetic fallback.
func (s SyntheticNamedExports) Equals(name string) bool {
	switch s.Kind {
	case SyntheticNamedExportsDefault:
		return name == "default"
	case SyntheticNamedExportsNamed:
		return name == s.FallbackExportName
	default:
		return false
	}
}
