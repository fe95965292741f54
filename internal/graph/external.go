package graph

import "github.com/stealify-backports/rollup/internal/js_ast"

// ExternalModule stands in for a specifier the resolver never turned into an
// internal Module (spec.md §3, §6 "resolvedIds: ... { id, external, ... }").
// It hands out one ExternalVariable per distinct imported name, memoized so
// repeated imports of the same external binding share a single Variable.
type ExternalModule struct {
	ID string

	Namespace *js_ast.NamespaceVariable

	variables map[string]*js_ast.ExternalVariable

	// ReexportedFrom records every internal module that re-exports through
	// this external module, used by the renderer to decide whether an
	// external import needs to be emitted at all.
	ReexportedFrom []*Module
}

func NewExternalModule(id string) *ExternalModule {
	m := &ExternalModule{
		ID:        id,
		variables: make(map[string]*js_ast.ExternalVariable),
	}
	m.Namespace = js_ast.NewNamespaceVariable(m)
	return m
}

// GetVariableForExportName returns the memoized ExternalVariable for name,
// creating it on first request (spec.md §3 "External — a name (or `*`)
// imported from an external module").
func (m *ExternalModule) GetVariableForExportName(name string) *js_ast.ExternalVariable {
	if v, ok := m.variables[name]; ok {
		return v
	}
	v := js_ast.NewExternalVariable(name, m)
	m.variables[name] = v
	return v
}
