package graph

import (
	"fmt"

	"github.com/stealify-backports/rollup/internal/ast"
	"github.com/stealify-backports/rollup/internal/js_ast"
	"github.com/stealify-backports/rollup/internal/logger"
)

// Module owns one source file's AST, its import/export descriptor tables,
// and the bookkeeping the resolver and inclusion driver need (spec.md §3,
// §4.3 — this is C3). It is built in two passes: SetSource populates the
// descriptor tables from the module's own top-level statements, then the
// owning Graph's Link pass resolves every descriptor's Source to a concrete
// Module or ExternalModule once the whole graph is known.
type Module struct {
	ID       string
	IsEntry  bool
	Source   logger.Source
	AST      *js_ast.Program

	ModuleSideEffects     ast.ModuleSideEffects
	SyntheticNamedExports ast.SyntheticNamedExports

	Sources     map[string]bool   // raw specifier strings this module imports from
	ResolvedIDs map[string]ResolvedID

	Dependencies                map[string]*Module
	DynamicDependencies         map[string]*Module
	ExternalDependencies        map[string]*ExternalModule
	DynamicExternalDependencies map[string]*ExternalModule

	ImportDescriptions   map[string]*ImportDescription   // local name -> desc
	ReexportDescriptions map[string]*ReexportDescription // exported name -> desc
	Exports              map[string]*ExportDescription   // exported name -> desc
	ExportAllSources     map[string]bool

	// ExportAllModules is populated by Link, internal modules first and
	// external ones appended after (spec.md §4.3 "linkImports... partitioning
	// exportAllSources into internal-first and external-appended").
	ExportAllModules []exportAllTarget

	// Cycles holds the set of cycle-identity tokens this module belongs to,
	// assigned by the graph's DFS execution-order pass (spec.md §3 "cycles").
	Cycles map[string]bool

	// SideEffectDependenciesByVariable maps a variable reached through this
	// module back to the set of modules whose execution is a precondition
	// for observing it (spec.md §3).
	SideEffectDependenciesByVariable map[js_ast.Variable]map[*Module]bool

	// AlternativeReexportModules re-points a re-export through the cycle
	// participant once a circular re-export chain is detected, biasing the
	// bundle toward importing from the cyclic re-exporter (spec.md §4.4 step 2).
	AlternativeReexportModules map[js_ast.Variable]*Module

	// ExecIndex is the depth-first post-order execution index assigned by
	// the graph; -1 until assigned (spec.md §3 "execIndex... Infinity until
	// assigned").
	ExecIndex int

	Namespace *js_ast.NamespaceVariable

	IsExecuted bool

	NeedsExportShim           bool
	UsesTopLevelAwait         bool
	ImportedFromNotTreeshaken bool

	exportShimVariable *js_ast.ExportShimVariable

	// scope holds every name bound by a top-level declaration in this
	// module (var/let/const/function/class), plus the key "default" bound
	// to the ExportDefaultVariable of an `export default` statement. Imported
	// names are deliberately not in scope: TraceVariable falls through to
	// ImportDescriptions so a shadowing local declaration always wins,
	// matching ordinary lexical scoping.
	scope map[string]js_ast.Variable

	dynamicImports          []*js_ast.EImportCall
	dynamicImportsTriggered map[*js_ast.EImportCall]bool

	graph *Graph

	includedDynamicImporters []*Module

	exportAllCache           map[string]*namespaceReexportResult
	dependenciesToBeIncluded []*Module
}

type exportAllTarget struct {
	Module   *Module
	External *ExternalModule
}

func NewModule(graph *Graph, input ModuleInput) *Module {
	m := &Module{
		ID:                    input.ID,
		IsEntry:               input.IsEntry,
		AST:                   input.AST,
		ModuleSideEffects:     input.ModuleSideEffects,
		SyntheticNamedExports: input.SyntheticNamedExports,
		ResolvedIDs:           input.ResolvedIDs,

		Sources:              make(map[string]bool),
		Dependencies:         make(map[string]*Module),
		DynamicDependencies:  make(map[string]*Module),
		ExternalDependencies: make(map[string]*ExternalModule),
		DynamicExternalDependencies: make(map[string]*ExternalModule),

		ImportDescriptions:   make(map[string]*ImportDescription),
		ReexportDescriptions: make(map[string]*ReexportDescription),
		Exports:              make(map[string]*ExportDescription),
		ExportAllSources:     make(map[string]bool),

		Cycles:                           make(map[string]bool),
		SideEffectDependenciesByVariable: make(map[js_ast.Variable]map[*Module]bool),
		AlternativeReexportModules:       make(map[js_ast.Variable]*Module),

		ExecIndex:               -1,
		scope:                   make(map[string]js_ast.Variable),
		dynamicImportsTriggered: make(map[*js_ast.EImportCall]bool),
		graph:                   graph,
	}
	m.Namespace = js_ast.NewNamespaceVariable(m)
	return m
}

// SetSource walks the module's top-level statements to populate every
// descriptor table (spec.md §4.3). It is the only place that inspects
// statement kinds directly; everything downstream works off the tables it
// builds here.
func (m *Module) SetSource() {
	for _, stmt := range m.AST.Body {
		switch s := stmt.Data.(type) {
		case *js_ast.SImport:
			m.Sources[s.Source] = true
			for _, spec := range s.Specs {
				m.ImportDescriptions[spec.Local] = &ImportDescription{Source: s.Source, Name: spec.Imported, Local: spec.Local, DeclPos: stmt.Loc}
			}

		case *js_ast.SExportAll:
			m.Sources[s.Source] = true
			if s.As != "" {
				m.ReexportDescriptions[s.As] = &ReexportDescription{Source: s.Source, LocalName: "*", DeclPos: stmt.Loc}
			} else {
				m.ExportAllSources[s.Source] = true
			}

		case *js_ast.SExportNamed:
			if s.Source != "" {
				m.Sources[s.Source] = true
				for _, spec := range s.Specs {
					m.ReexportDescriptions[spec.Exported] = &ReexportDescription{Source: s.Source, LocalName: spec.Local, DeclPos: stmt.Loc}
				}
			} else {
				for _, spec := range s.Specs {
					m.Exports[spec.Exported] = &ExportDescription{LocalName: spec.Local}
				}
			}

		case *js_ast.SExportDefault:
			name := "default"
			v := js_ast.NewExportDefaultVariable(name, m, &s.Value, nil)
			m.scope[name] = v
			desc := &ExportDescription{LocalName: name}
			if fn, ok := s.Value.Data.(*js_ast.EFunctionExpr); ok {
				desc.Identifier = fn.Name
			}
			m.Exports[name] = desc

		case *js_ast.SVarDecl:
			for _, d := range s.Declarators {
				d.Variable.SetOwner(m)
				m.scope[d.Variable.Name()] = d.Variable
			}

		case *js_ast.SFunctionDecl:
			s.Variable.SetOwner(m)
			m.scope[s.Variable.Name()] = s.Variable

		case *js_ast.SClassDecl:
			s.Variable.SetOwner(m)
			m.scope[s.Variable.Name()] = s.Variable
		}
	}

	// export var/let/const and export function/class Foo are recognized by
	// the parser wrapping the underlying declaration statement; since this
	// core receives a pre-parsed Program (spec.md §1 "out of scope: the
	// parser"), those direct exports are expected to already have arrived
	// as SExportNamed entries with Source=="" pointing at the same local
	// name SetSource just bound above, so no further pass is needed here.

	m.collectDynamicImports()
}

// collectDynamicImports finds `import(...)` calls reachable from the
// module's top-level statements without descending into nested function
// bodies, matching the "dynamic-import list" populated during the
// top-level walk (spec.md §4.3).
func (m *Module) collectDynamicImports() {
	var walkExpr func(e js_ast.Expr)
	walkExpr = func(e js_ast.Expr) {
		switch v := e.Data.(type) {
		case *js_ast.EImportCall:
			m.dynamicImports = append(m.dynamicImports, v)
		case *js_ast.ECall:
			if v.CalleeBase != nil {
				walkExpr(*v.CalleeBase)
			} else {
				walkExpr(v.Callee)
			}
			for _, a := range v.Args {
				walkExpr(a)
			}
		case *js_ast.EMember:
			walkExpr(v.Object)
		case *js_ast.EAssign:
			walkExpr(v.Target)
			walkExpr(v.Value)
		case *js_ast.ESequence:
			for _, sub := range v.Expressions {
				walkExpr(sub)
			}
		}
	}
	for _, stmt := range m.AST.Body {
		switch s := stmt.Data.(type) {
		case *js_ast.SExpr:
			walkExpr(s.Value)
		case *js_ast.SVarDecl:
			for _, d := range s.Declarators {
				if d.Init != nil {
					walkExpr(*d.Init)
				}
			}
		case *js_ast.SExportDefault:
			walkExpr(s.Value)
		}
	}
}

// TraceVariable resolves a bare name through lexical scope, then through
// this module's import table, delegating cross-module lookups to the
// resolver (spec.md §4.3). It returns nil, nil for a name this module
// neither declares nor imports (an unresolved global is not this core's
// concern).
func (m *Module) TraceVariable(name string) (js_ast.Variable, error) {
	if v, ok := m.scope[name]; ok {
		return v, nil
	}
	desc, ok := m.ImportDescriptions[name]
	if !ok {
		return nil, nil
	}
	if desc.Name == "*" {
		if desc.Module != nil {
			return desc.Module.Namespace, nil
		}
		return desc.External.Namespace, nil
	}
	if desc.Module != nil {
		v, _, err := desc.Module.GetVariableForExportName(desc.Name, ResolveOptions{ImporterForSideEffects: m})
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, logger.NewCoreError(&desc.Module.Source, desc.DeclPos, logger.MsgID_MissingExport,
				fmt.Sprintf("'%s' is not exported by '%s'", desc.Name, desc.Module.ID))
		}
		return v, nil
	}
	return desc.External.GetVariableForExportName(desc.Name), nil
}

// BindReferences attaches every EIdentifier in the module's AST to the
// Variable it resolves to (spec.md §4.3 "bindReferences"). Link calls it
// once import descriptors carry a resolved Module/External.
func (m *Module) BindReferences() error {
	var err error
	var walkExpr func(e *js_ast.Expr)
	var walkStmt func(s *js_ast.Stmt)

	walkExpr = func(e *js_ast.Expr) {
		if err != nil || e == nil {
			return
		}
		switch v := e.Data.(type) {
		case *js_ast.EIdentifier:
			variable, bindErr := m.TraceVariable(v.Name)
			if bindErr != nil {
				err = bindErr
				return
			}
			v.Variable = variable
		case *js_ast.ECall:
			if v.CalleeBase != nil {
				walkExpr(v.CalleeBase)
			} else {
				walkExpr(&v.Callee)
			}
			for i := range v.Args {
				walkExpr(&v.Args[i])
			}
		case *js_ast.EImportCall:
			// resolved against the module graph elsewhere, not a Variable.
		case *js_ast.EMember:
			walkExpr(&v.Object)
		case *js_ast.EAssign:
			walkExpr(&v.Target)
			walkExpr(&v.Value)
		case *js_ast.ESequence:
			for i := range v.Expressions {
				walkExpr(&v.Expressions[i])
			}
		case *js_ast.EFunctionExpr:
			for i := range v.Body {
				walkStmt(&v.Body[i])
			}
		}
	}

	walkStmt = func(s *js_ast.Stmt) {
		if err != nil || s == nil {
			return
		}
		switch v := s.Data.(type) {
		case *js_ast.SVarDecl:
			for _, d := range v.Declarators {
				if d.Init != nil {
					walkExpr(d.Init)
				}
			}
		case *js_ast.SExportDefault:
			walkExpr(&v.Value)
			if ident, ok := v.Value.Data.(*js_ast.EIdentifier); ok && ident.Variable != nil {
				if def, ok := m.scope["default"].(*js_ast.ExportDefaultVariable); ok {
					def.SetAlias(ident.Variable)
				}
			}
		case *js_ast.SExpr:
			walkExpr(&v.Value)
		case *js_ast.SBlock:
			for i := range v.Body {
				walkStmt(&v.Body[i])
			}
		case *js_ast.SIf:
			walkExpr(&v.Test)
			walkStmt(&v.Consequent)
			if v.Alternate != nil {
				walkStmt(v.Alternate)
			}
		case *js_ast.SReturn:
			if v.Value != nil {
				walkExpr(v.Value)
			}
		case *js_ast.SFunctionDecl:
			for i := range v.Body {
				walkStmt(&v.Body[i])
			}
		case *js_ast.SClassDecl:
			for i := range v.StaticInitializers {
				walkExpr(&v.StaticInitializers[i])
			}
		}
	}

	for i := range m.AST.Body {
		walkStmt(&m.AST.Body[i])
	}
	return err
}

// Include seeds inclusion at the program root (spec.md §4.3). It is the
// entry point the driver calls for every entry module on pass zero.
func (m *Module) Include() {
	ctx := js_ast.NewIncludeContext()
	m.AST.Include(ctx, false)
}

// IncludeAllInBundle forces every top-level statement included regardless
// of effects, used for modules with moduleSideEffects=="no-treeshake"
// (spec.md §3 invariant).
func (m *Module) IncludeAllInBundle() {
	ctx := js_ast.NewIncludeContext()
	m.AST.Include(ctx, true)
}

// IncludeAllExports ensures every exported variable is included, per
// spec.md §4.3: it deoptimizes each one's path (so a later read doesn't
// trust a now-stale literal cache) and, for externals, marks the external
// module as re-exported.
func (m *Module) IncludeAllExports(includeNamespaceMembers bool) error {
	effects := js_ast.NewEffectsContext()
	for name := range m.Exports {
		v, _, err := m.GetVariableForExportName(name, ResolveOptions{})
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		v.Include()
		v.DeoptimizePath(nil, effects)
		if ext, ok := v.Owner().(*ExternalModule); ok {
			ext.ReexportedFrom = append(ext.ReexportedFrom, m)
		}
	}
	for name := range m.ReexportDescriptions {
		v, _, err := m.GetVariableForExportName(name, ResolveOptions{})
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		v.Include()
		v.DeoptimizePath(nil, effects)
		if ext, ok := v.Owner().(*ExternalModule); ok {
			ext.ReexportedFrom = append(ext.ReexportedFrom, m)
		}
	}
	if includeNamespaceMembers {
		m.Namespace.IncludeAllMembers()
	} else {
		m.Namespace.Include()
	}
	return nil
}

// HasEffects reports whether this module must run for its side effects
// (spec.md §4.3): a no-treeshake module always does; otherwise it's true
// iff any included top-level statement reports effects.
func (m *Module) HasEffects() bool {
	if m.ModuleSideEffects == ast.SideEffectsNoTreeshake {
		return true
	}
	ctx := js_ast.NewEffectsContext()
	for _, stmt := range m.AST.Body {
		if stmt.Data.IsIncluded() && stmt.Data.HasEffects(ctx) {
			return true
		}
	}
	return false
}

// populateNamespaceMembers fills in this module's namespace object's merged
// member list once the export table is stable (spec.md §3, "merged-namespace
// list filled lazily"), so a forced IncludeAllMembers (dynamic import) or a
// path-qualified query against the namespace ("ns.foo") actually reaches the
// underlying exports instead of finding an empty list.
func (m *Module) populateNamespaceMembers() {
	names := m.GetAllExportNames()
	members := make([]js_ast.Variable, 0, len(names))
	for _, name := range names {
		if v, _, err := m.GetVariableForExportName(name, ResolveOptions{}); err == nil && v != nil {
			members = append(members, v)
		}
	}
	m.Namespace.SetMembers(members)
}

// GetAllExportNames returns every name this module's namespace exposes,
// combining direct exports, re-exports, and star re-export targets
// (spec.md §8 invariant 2, "entry preservation").
func (m *Module) GetAllExportNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range m.Exports {
		add(name)
	}
	for name := range m.ReexportDescriptions {
		add(name)
	}
	for _, target := range m.ExportAllModules {
		if target.Module != nil {
			for _, name := range target.Module.GetAllExportNames() {
				if name != "default" {
					add(name)
				}
			}
		}
	}
	return names
}
