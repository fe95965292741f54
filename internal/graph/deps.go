package graph

import (
	"github.com/stealify-backports/rollup/internal/ast"
	"github.com/stealify-backports/rollup/internal/js_ast"
)

// GetDependenciesToBeIncluded computes, for this module, the set of
// dependencies that must survive in the output graph (spec.md §4.6, C6).
// Results are memoized: Link must have completed and the inclusion driver
// must have reached its fixpoint before this is called, since it reads
// IsIncluded()/HasEffects() on other modules.
func (m *Module) GetDependenciesToBeIncluded() []*Module {
	if m.dependenciesToBeIncluded != nil {
		return m.dependenciesToBeIncluded
	}

	if m.ModuleSideEffects == ast.SideEffectsNoTreeshake {
		result := make([]*Module, 0, len(m.Dependencies))
		for _, dep := range m.Dependencies {
			result = append(result, dep)
		}
		m.dependenciesToBeIncluded = result
		return result
	}

	necessary := make(map[*Module]bool)
	alwaysChecked := make(map[*Module]bool)

	for _, v := range m.collectDependencyVariables() {
		owner, ok := v.Owner().(*Module)
		if !ok || owner == nil {
			continue
		}
		for dep := range owner.SideEffectDependenciesByVariable[v] {
			alwaysChecked[dep] = true
		}
		if defining := collapseToDefiningModule(v); defining != nil {
			necessary[defining] = true
		}
	}

	resultSet := make(map[*Module]bool)
	handled := make(map[*Module]bool)
	var addNecessary func(dep *Module)
	addNecessary = func(dep *Module) {
		if handled[dep] {
			return
		}
		handled[dep] = true
		if necessary[dep] || ((dep.ModuleSideEffects.IsTruthy() || alwaysChecked[dep]) && dep.HasEffects()) {
			resultSet[dep] = true
			return
		}
		// Otherwise recurse into dep's own dependencies (spec.md §4.6): a
		// relay module with no effects of its own is dropped, but whatever it
		// transitively depends on must still be tested and surfaced.
		for _, next := range dep.Dependencies {
			addNecessary(next)
		}
	}

	all := make(map[*Module]bool)
	for _, dep := range m.Dependencies {
		all[dep] = true
	}
	for dep := range alwaysChecked {
		all[dep] = true
	}

	for dep := range all {
		addNecessary(dep)
	}
	for dep := range necessary {
		resultSet[dep] = true
	}

	result := make([]*Module, 0, len(resultSet))
	for dep := range resultSet {
		result = append(result, dep)
	}
	m.dependenciesToBeIncluded = result
	return result
}

// collectDependencyVariables seeds C6's variable set: this module's own
// imports, plus (when the module is an entry, has dynamic importers, or has
// an included namespace) every export and re-export it offers (spec.md §4.6
// "Seed dependencyVariables").
func (m *Module) collectDependencyVariables() []js_ast.Variable {
	var variables []js_ast.Variable
	for _, desc := range m.ImportDescriptions {
		if v, err := m.TraceVariable(desc.Local); err == nil && v != nil {
			variables = append(variables, v)
		}
	}

	needsFullSurface := m.IsEntry || len(m.includedDynamicImporters) > 0 || m.Namespace.IsIncluded()
	if needsFullSurface {
		for name := range m.Exports {
			if v, _, err := m.GetVariableForExportName(name, ResolveOptions{ImporterForSideEffects: m}); err == nil && v != nil {
				variables = append(variables, v)
			}
		}
		for name := range m.ReexportDescriptions {
			if v, _, err := m.GetVariableForExportName(name, ResolveOptions{ImporterForSideEffects: m}); err == nil && v != nil {
				variables = append(variables, v)
			}
		}
	}
	return variables
}

// collapseToDefiningModule collapses ExportDefault->original and
// SyntheticNamed->base aliasing to find the module that actually defines
// the variable's value (spec.md §4.6 "collapse through ... to obtain the
// defining module").
func collapseToDefiningModule(v js_ast.Variable) *Module {
	original := v.GetOriginalVariable()
	if s, ok := original.(*js_ast.SyntheticNamedExportVariable); ok {
		original = s.GetBaseVariable()
	}
	owner, _ := original.Owner().(*Module)
	return owner
}
