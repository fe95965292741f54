package graph

import (
	"fmt"
	"strings"

	"github.com/stealify-backports/rollup/internal/js_ast"
	"github.com/stealify-backports/rollup/internal/logger"
)

// ResolveOptions carries the optional parameters GetVariableForExportName
// takes (spec.md §4.4 signature). The zero value is the default top-level
// call a consumer outside the resolver makes.
type ResolveOptions struct {
	ImporterForSideEffects *Module
	IsExportAllSearch      bool
	OnlyExplicit           bool

	// SearchedNamesAndModules is the circular re-export / export-all-probe
	// memoization set (spec.md §4.4 "Circular re-export detection"). Callers
	// outside the resolver itself should leave this nil; GetVariableForExportName
	// allocates one on first entry and threads it through its own recursion.
	SearchedNamesAndModules map[searchKey]bool
}

type searchKey struct {
	name   string
	module *Module
}

type namespaceReexportResult struct {
	variable         js_ast.Variable
	indirectExternal bool
}

// GetVariableForExportName implements the cross-module resolver (spec.md
// §4.4, C4) in its exact documented precedence.
func (m *Module) GetVariableForExportName(name string, opts ResolveOptions) (variable js_ast.Variable, indirectExternal bool, err error) {
	if opts.SearchedNamesAndModules == nil {
		opts.SearchedNamesAndModules = make(map[searchKey]bool)
	}

	// Step 1: star sentinel.
	if strings.HasPrefix(name, "*") {
		if name == "*" {
			return m.Namespace, false, nil
		}
		externalID := name[1:]
		ext := m.graph.ExternalModulesByID[externalID]
		if ext == nil {
			return nil, false, nil
		}
		return ext.GetVariableForExportName("*"), true, nil
	}

	key := searchKey{name: name, module: m}
	if opts.SearchedNamesAndModules[key] {
		if opts.IsExportAllSearch {
			return nil, false, nil
		}
		return nil, false, logger.NewCoreError(&m.Source, logger.Loc{}, logger.MsgID_CircularReexport,
			fmt.Sprintf("circular reexport %q involving %q", name, m.ID))
	}
	opts.SearchedNamesAndModules[key] = true

	// Step 2: re-export.
	if desc, ok := m.ReexportDescriptions[name]; ok {
		var target js_ast.Variable
		var indirect bool
		if desc.Module != nil {
			target, indirect, err = desc.Module.GetVariableForExportName(desc.LocalName, ResolveOptions{
				ImporterForSideEffects:  opts.ImporterForSideEffects,
				SearchedNamesAndModules: opts.SearchedNamesAndModules,
			})
			if err != nil {
				return nil, false, err
			}
			if target == nil {
				return nil, false, logger.NewCoreError(&m.Source, desc.DeclPos, logger.MsgID_MissingExport,
					fmt.Sprintf("'%s' is not exported by '%s'", desc.LocalName, desc.Module.ID))
			}
		} else {
			target = desc.External.GetVariableForExportName(desc.LocalName)
			indirect = true
		}
		if opts.ImporterForSideEffects != nil {
			m.recordCycleAlternative(target, opts.ImporterForSideEffects)
		}
		return target, indirect, nil
	}

	// Step 3: direct export.
	if desc, ok := m.Exports[name]; ok {
		if desc.IsMissingShim {
			return m.getExportShimVariable(), false, nil
		}
		v, traceErr := m.TraceVariable(desc.LocalName)
		if traceErr != nil {
			return nil, false, traceErr
		}
		if opts.ImporterForSideEffects != nil && v != nil {
			if m.SideEffectDependenciesByVariable[v] == nil {
				m.SideEffectDependenciesByVariable[v] = make(map[*Module]bool)
			}
			m.SideEffectDependenciesByVariable[v][opts.ImporterForSideEffects] = true
			m.recordCycleAlternative(v, opts.ImporterForSideEffects)
		}
		return v, false, nil
	}

	// Step 4.
	if opts.OnlyExplicit {
		return nil, false, nil
	}

	// Step 5: export * probes.
	if name != "default" {
		if result := m.getVariableFromNamespaceReexports(name, opts); result != nil {
			return result.variable, result.indirectExternal, nil
		}
	}

	// Step 6: synthetic named export.
	if m.SyntheticNamedExports.IsEnabled() {
		v, synthErr := m.getSyntheticNamedExportVariable(name)
		if synthErr != nil {
			return nil, false, synthErr
		}
		return v, false, nil
	}

	// Step 7: shim.
	if !opts.IsExportAllSearch && m.graph.ShimMissingExports {
		m.Exports[name] = &ExportDescription{IsMissingShim: true}
		m.graph.Log.AddWarningWithCode(&m.Source, logger.Loc{}, logger.MsgID_ShimmedExport,
			fmt.Sprintf("Missing export %q has been shimmed in module %q", name, m.ID))
		return m.getExportShimVariable(), false, nil
	}

	return nil, false, nil
}

// recordCycleAlternative implements spec.md §4.4 step 2/3's "bias the
// bundle toward importing from the cyclic re-exporter" rule: when the
// variable's owning module shares a cycle token with the re-exporter, that
// re-exporter is recorded as an alternative source to prefer at render time.
func (m *Module) recordCycleAlternative(v js_ast.Variable, importer *Module) {
	if v == nil {
		return
	}
	owner, ok := v.Owner().(*Module)
	if !ok || owner == nil {
		return
	}
	for token := range owner.Cycles {
		if m.Cycles[token] {
			importer.AlternativeReexportModules[v] = m
			return
		}
	}
}

// getVariableFromNamespaceReexports implements spec.md §4.4 step 5: probe
// every export-all target in order, preferring internal matches, warning on
// ambiguity, falling back to external then synthetic.
func (m *Module) getVariableFromNamespaceReexports(name string, opts ResolveOptions) *namespaceReexportResult {
	if m.exportAllCache == nil {
		m.exportAllCache = make(map[string]*namespaceReexportResult)
	}
	if cached, ok := m.exportAllCache[name]; ok {
		return cached
	}

	var internalMatches []js_ast.Variable
	var internalOwners []*Module
	var externalMatches []js_ast.Variable
	var syntheticMatch js_ast.Variable

	for _, target := range m.ExportAllModules {
		if target.Module != nil {
			if target.Module.SyntheticNamedExports.Equals(name) {
				continue
			}
			v, indirect, err := target.Module.GetVariableForExportName(name, ResolveOptions{
				ImporterForSideEffects:  opts.ImporterForSideEffects,
				IsExportAllSearch:       true,
				SearchedNamesAndModules: opts.SearchedNamesAndModules,
			})
			if err != nil || v == nil {
				continue
			}
			if indirect {
				externalMatches = append(externalMatches, v)
				continue
			}
			if _, isSynthetic := v.(*js_ast.SyntheticNamedExportVariable); isSynthetic {
				if syntheticMatch == nil {
					syntheticMatch = v
				}
				continue
			}
			internalMatches = append(internalMatches, v)
			if owner, ok := v.Owner().(*Module); ok {
				internalOwners = append(internalOwners, owner)
			}
		} else {
			v := target.External.GetVariableForExportName(name)
			externalMatches = append(externalMatches, v)
		}
	}

	var result *namespaceReexportResult
	switch {
	case len(internalMatches) > 0:
		distinctOwners := make(map[*Module]bool)
		for _, o := range internalOwners {
			distinctOwners[o] = true
		}
		if len(distinctOwners) > 1 {
			m.graph.Log.AddWarningWithCode(&m.Source, logger.Loc{}, logger.MsgID_NamespaceConflict,
				fmt.Sprintf("Conflicting namespaces: %q re-exports %q from multiple modules", m.ID, name))
			result = &namespaceReexportResult{variable: nil}
		} else {
			result = &namespaceReexportResult{variable: internalMatches[0]}
		}
	case len(externalMatches) > 0:
		if len(externalMatches) > 1 {
			m.graph.Log.AddWarningWithCode(&m.Source, logger.Loc{}, logger.MsgID_AmbiguousExternalNamespaces,
				fmt.Sprintf("Ambiguous external namespace resolution for %q in %q", name, m.ID))
		}
		result = &namespaceReexportResult{variable: externalMatches[0], indirectExternal: true}
	case syntheticMatch != nil:
		result = &namespaceReexportResult{variable: syntheticMatch}
	default:
		m.exportAllCache[name] = nil
		return nil
	}

	m.exportAllCache[name] = result
	return result
}

func (m *Module) getExportShimVariable() *js_ast.ExportShimVariable {
	if m.exportShimVariable == nil {
		m.exportShimVariable = js_ast.NewExportShimVariable(m)
	}
	return m.exportShimVariable
}

// getSyntheticNamedExportVariable is fatal, not advisory, when the fallback
// namespace export it needs doesn't exist: spec.md §7 lists "synthetic-exports
// without namespace" among the fatal error kinds, alongside missing-export and
// circular-reexport, not the advisory ones.
func (m *Module) getSyntheticNamedExportVariable(name string) (*js_ast.SyntheticNamedExportVariable, error) {
	var base js_ast.Variable
	if m.SyntheticNamedExports.Kind == 0 {
		return nil, nil
	}
	fallback := "default"
	if !m.SyntheticNamedExports.Equals("default") {
		fallback = m.syntheticFallbackName()
	}
	base, _, _ = m.GetVariableForExportName(fallback, ResolveOptions{OnlyExplicit: true})
	if base == nil {
		return nil, logger.NewCoreError(&m.Source, logger.Loc{}, logger.MsgID_SyntheticNamedExportsNeedNamespaceExport,
			fmt.Sprintf("Module %q uses synthetic named exports but does not provide the %q export to fall back to", m.ID, fallback))
	}
	return js_ast.NewSyntheticNamedExportVariable(name, m, base), nil
}

func (m *Module) syntheticFallbackName() string {
	return m.SyntheticNamedExports.FallbackExportName
}
