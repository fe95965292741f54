package graph

import (
	"fmt"

	"github.com/stealify-backports/rollup/internal/ast"
	"github.com/stealify-backports/rollup/internal/js_ast"
	"github.com/stealify-backports/rollup/internal/logger"
)

// Phase mirrors spec.md §6's `Graph.phase`. Link moves the graph to
// PhaseAnalyse; nothing in this package reads the phase back. The export-all
// memo (Module.exportAllCache) is filled from the first lookup on, including
// lookups made during Link, and GetAllExportNames is recomputed on each call.
type Phase uint8

const (
	PhaseLoad Phase = iota
	PhaseAnalyse
	PhaseGenerate
)

// Graph owns every Module and ExternalModule reachable from the entry
// points, and drives C4's cross-module resolution and C5's inclusion
// fixpoint loop over them (spec.md §6 "Graph").
type Graph struct {
	ModulesByID         map[string]*Module
	ExternalModulesByID map[string]*ExternalModule
	EntryModules        []*Module

	Phase Phase
	Log   logger.Log

	// ShimMissingExports mirrors Rollup's option of the same name: when set,
	// a name that resolves to nothing becomes a shimmed `undefined` binding
	// with an advisory warning instead of a fatal error (spec.md §4.4 step 7).
	ShimMissingExports bool

	execOrder      []*Module
	nextCycleToken int
}

func NewGraph(log logger.Log) *Graph {
	return &Graph{
		ModulesByID:         make(map[string]*Module),
		ExternalModulesByID: make(map[string]*ExternalModule),
		Log:                 log,
	}
}

// AddModule builds a Module from input, populates its descriptor tables, and
// registers it in the graph. Call Link once every module reachable from the
// entry points has been added.
func (g *Graph) AddModule(input ModuleInput) *Module {
	m := NewModule(g, input)
	m.Source = logger.Source{Index: uint32(len(g.ModulesByID)), KeyPath: logger.Path{Text: input.ID}, PrettyPath: input.ID, Contents: input.Code}
	g.ModulesByID[input.ID] = m
	m.SetSource()
	if m.IsEntry {
		g.EntryModules = append(g.EntryModules, m)
	}
	return m
}

func (g *Graph) getOrCreateExternal(id string) *ExternalModule {
	if ext, ok := g.ExternalModulesByID[id]; ok {
		return ext
	}
	ext := NewExternalModule(id)
	g.ExternalModulesByID[id] = ext
	return ext
}

// Link resolves every descriptor's Source specifier to a concrete Module or
// ExternalModule (spec.md §4.3 "linkImports"), assigns each module's
// execution index and cycle tokens (spec.md §3 "execIndex", "cycles"), and
// binds every identifier reference to the variable it resolves to.
func (g *Graph) Link() error {
	for _, m := range g.ModulesByID {
		if err := g.linkModuleImports(m); err != nil {
			return err
		}
	}

	visited := make(map[*Module]bool)
	onStack := make(map[*Module]bool)
	var stack []*Module
	var nextExecIndex uint32
	var visit func(m *Module)
	visit = func(m *Module) {
		if visited[m] {
			return
		}
		if onStack[m] {
			g.recordCycle(stack, m)
			return
		}
		onStack[m] = true
		stack = append(stack, m)
		for _, dep := range m.Dependencies {
			visit(dep)
		}
		stack = stack[:len(stack)-1]
		onStack[m] = false
		visited[m] = true
		m.ExecIndex = int(nextExecIndex)
		nextExecIndex++
		g.execOrder = append(g.execOrder, m)
	}
	for _, m := range g.sortedModuleIDs() {
		visit(g.ModulesByID[m])
	}

	for _, m := range g.ModulesByID {
		if err := m.BindReferences(); err != nil {
			return err
		}
	}

	for _, m := range g.ModulesByID {
		m.populateNamespaceMembers()
	}

	g.Phase = PhaseAnalyse
	return nil
}

func (g *Graph) sortedModuleIDs() []string {
	ids := make([]string, 0, len(g.ModulesByID))
	for id := range g.ModulesByID {
		ids = append(ids, id)
	}
	// Deterministic iteration order so cycle tokens and exec indices don't
	// vary between runs over the same input graph.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// recordCycle assigns a fresh cycle token to every module on the DFS stack
// from the repeated module onward (spec.md §3 "cycles: set of cycle-identity
// tokens ... cycles share the same set of tokens in every participant").
func (g *Graph) recordCycle(stack []*Module, repeated *Module) {
	start := -1
	for i, m := range stack {
		if m == repeated {
			start = i
			break
		}
	}
	if start == -1 {
		return
	}
	token := fmt.Sprintf("cycle#%d", g.nextCycleToken)
	g.nextCycleToken++
	for _, m := range stack[start:] {
		m.Cycles[token] = true
	}
}

func (g *Graph) linkModuleImports(m *Module) error {
	resolveOne := func(source string) (internal *Module, external *ExternalModule) {
		resolved, ok := m.ResolvedIDs[source]
		if !ok {
			return nil, nil
		}
		if resolved.External {
			return nil, g.getOrCreateExternal(resolved.ID)
		}
		return g.ModulesByID[resolved.ID], nil
	}

	// Every specifier this module imports from, including bare/side-effect-only
	// imports with no specifiers (`import './a'`), becomes a dependency edge —
	// those never get an ImportDescription entry, so without this pass `a`
	// would never reach m.Dependencies and could never surface out of
	// GetDependenciesToBeIncluded (spec.md §8 S2).
	for source := range m.Sources {
		internal, external := resolveOne(source)
		if internal != nil {
			m.Dependencies[internal.ID] = internal
		} else if external != nil {
			m.ExternalDependencies[external.ID] = external
		}
	}

	for _, desc := range m.ImportDescriptions {
		internal, external := resolveOne(desc.Source)
		desc.Module, desc.External = internal, external
		if internal != nil {
			m.Dependencies[internal.ID] = internal
		} else if external != nil {
			m.ExternalDependencies[external.ID] = external
		}
	}
	for _, desc := range m.ReexportDescriptions {
		internal, external := resolveOne(desc.Source)
		desc.Module, desc.External = internal, external
		if internal != nil {
			m.Dependencies[internal.ID] = internal
		} else if external != nil {
			m.ExternalDependencies[external.ID] = external
		}
	}

	var internalAll []exportAllTarget
	var externalAll []exportAllTarget
	for source := range m.ExportAllSources {
		internal, external := resolveOne(source)
		if internal != nil {
			internalAll = append(internalAll, exportAllTarget{Module: internal})
			m.Dependencies[internal.ID] = internal
		} else if external != nil {
			externalAll = append(externalAll, exportAllTarget{External: external})
			m.ExternalDependencies[external.ID] = external
		}
	}
	m.ExportAllModules = append(internalAll, externalAll...)

	for _, imp := range m.dynamicImports {
		internal, external := resolveOne(imp.Source)
		if internal != nil {
			imp.ResolvedModule = internal
			m.DynamicDependencies[internal.ID] = internal
		} else if external != nil {
			imp.ResolvedModule = external
			m.DynamicExternalDependencies[external.ID] = external
		}
	}

	return nil
}

// IncludeStatements runs the inclusion fixpoint loop (spec.md §4.5, C5).
func (g *Graph) IncludeStatements() error {
	for _, e := range g.EntryModules {
		g.markModuleAndImpureDependenciesAsExecuted(e)
		if e.ModuleSideEffects == ast.SideEffectsNoTreeshake {
			e.IncludeAllInBundle()
		} else {
			e.Include()
		}
		if err := e.IncludeAllExports(false); err != nil {
			return err
		}
		for name := range e.Exports {
			if v, _, _ := e.GetVariableForExportName(name, ResolveOptions{}); v != nil {
				g.includeVariable(v)
			}
		}
	}

	for {
		before := g.countIncluded()
		for _, m := range g.executionOrder() {
			if m.ModuleSideEffects == ast.SideEffectsNoTreeshake {
				m.IncludeAllInBundle()
				continue
			}
			ctx := js_ast.NewEffectsContext()
			if m.AST.ShouldBeIncluded(ctx) {
				m.AST.Include(js_ast.NewIncludeContext(), false)
			}
		}
		if err := g.includeDynamicImports(); err != nil {
			return err
		}
		if g.countIncluded() == before {
			break
		}
	}
	return nil
}

// executionOrder returns the DFS post-order Link computed (spec.md §3
// "execIndex"). Link starts a visit from every module, so after Link the
// order holds every module in the graph.
func (g *Graph) executionOrder() []*Module {
	if len(g.execOrder) == len(g.ModulesByID) {
		return g.execOrder
	}
	return g.execOrder
}

func (g *Graph) includeDynamicImports() error {
	for _, m := range g.ModulesByID {
		for _, imp := range m.dynamicImports {
			if !imp.IsIncluded() || m.dynamicImportsTriggered[imp] {
				continue
			}
			m.dynamicImportsTriggered[imp] = true
			target, ok := imp.ResolvedModule.(*Module)
			if !ok || target == nil {
				continue
			}
			g.markModuleAndImpureDependenciesAsExecuted(target)
			if err := target.IncludeAllExports(true); err != nil {
				return err
			}
			target.includedDynamicImporters = append(target.includedDynamicImporters, m)
		}
	}
	return nil
}

func (g *Graph) countIncluded() int {
	n := 0
	for _, m := range g.ModulesByID {
		if m.IsExecuted {
			n++
		}
		for _, stmt := range m.AST.Body {
			if stmt.Data.IsIncluded() {
				n++
			}
		}
	}
	return n
}

// includeVariable marks v included and, if it belongs to a module, marks
// that module (and any side-effect-owed modules reached through default-
// export or synthetic-export aliasing) executed (spec.md §4.5
// "includeVariable").
func (g *Graph) includeVariable(v js_ast.Variable) {
	v.Include()
	owner, ok := v.Owner().(*Module)
	if !ok || owner == nil {
		return
	}
	g.markModuleAndImpureDependenciesAsExecuted(owner)
	for _, dep := range g.sideEffectModulesFor(v) {
		g.markModuleAndImpureDependenciesAsExecuted(dep)
	}
}

func (g *Graph) sideEffectModulesFor(v js_ast.Variable) []*Module {
	var result []*Module
	seen := make(map[js_ast.Variable]bool)
	var walk func(v js_ast.Variable)
	walk = func(v js_ast.Variable) {
		if v == nil || seen[v] {
			return
		}
		seen[v] = true
		if owner, ok := v.Owner().(*Module); ok && owner != nil {
			for dep := range owner.SideEffectDependenciesByVariable[v] {
				result = append(result, dep)
			}
		}
		switch vv := v.(type) {
		case *js_ast.ExportDefaultVariable:
			if alias := vv.GetDirectOriginalVariable(); alias != nil {
				walk(alias)
			}
		case *js_ast.SyntheticNamedExportVariable:
			walk(vv.GetBaseVariable())
		}
	}
	walk(v)
	return result
}

// markModuleAndImpureDependenciesAsExecuted marks m executed and recurses
// into every dependency whose moduleSideEffects is truthy, matching
// spec.md §4.5.
func (g *Graph) markModuleAndImpureDependenciesAsExecuted(m *Module) {
	if m.IsExecuted {
		return
	}
	m.IsExecuted = true
	for _, dep := range m.Dependencies {
		if dep.ModuleSideEffects.IsTruthy() {
			g.markModuleAndImpureDependenciesAsExecuted(dep)
		}
	}
}
