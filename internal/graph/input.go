package graph

import (
	"github.com/stealify-backports/rollup/internal/ast"
	"github.com/stealify-backports/rollup/internal/js_ast"
)

// ModuleInput is the external interface's input shape (spec.md §6): what the
// parser and resolver pipeline hand the core for one source file, before
// SetSource builds the module's descriptor tables from it.
type ModuleInput struct {
	ID   string
	Code string
	AST  *js_ast.Program

	// ResolvedIDs maps each raw specifier this module imports to what the
	// resolver decided it points at.
	ResolvedIDs map[string]ResolvedID

	ModuleSideEffects     ast.ModuleSideEffects
	SyntheticNamedExports ast.SyntheticNamedExports
	IsEntry               bool
}

// ResolvedID is one resolver decision: either an internal module id, or
// External=true with ID used as the external module's own id.
type ResolvedID struct {
	ID                    string
	External              bool
	ModuleSideEffects     ast.ModuleSideEffects
	SyntheticNamedExports ast.SyntheticNamedExports
}
