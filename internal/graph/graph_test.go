package graph

import (
	"testing"

	"github.com/stealify-backports/rollup/internal/ast"
	"github.com/stealify-backports/rollup/internal/js_ast"
	"github.com/stealify-backports/rollup/internal/logger"
)

// --- test fixture builders ---------------------------------------------------
//
// These mirror the shape the external parser would hand the core (spec.md
// §1): plain *js_ast.Program literals, wired by hand instead of parsed.

func constStmt(name string, value float64) (js_ast.Stmt, *js_ast.LocalVariable) {
	v := js_ast.NewLocalVariable(name, nil, &js_ast.Expr{Data: &js_ast.ENumber{Value: value}})
	return js_ast.Stmt{Data: &js_ast.SVarDecl{
		Kind:        "const",
		Declarators: []*js_ast.Declarator{{Variable: v, Init: &js_ast.Expr{Data: &js_ast.ENumber{Value: value}}}},
	}}, v
}

func exportNamed(specs ...js_ast.ExportSpec) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SExportNamed{Specs: specs}}
}

func reexport(source string, specs ...js_ast.ExportSpec) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SExportNamed{Source: source, Specs: specs}}
}

func exportAll(source string) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SExportAll{Source: source}}
}

func importStmt(source string, specs ...js_ast.ImportSpec) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SImport{Source: source, Specs: specs}}
}

func consoleLogCall(argName string) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.ECall{
		Callee: js_ast.Expr{Data: &js_ast.EMember{
			Object:   js_ast.Expr{Data: &js_ast.EIdentifier{Name: "console"}},
			Property: "log",
		}},
		Args: []js_ast.Expr{{Data: &js_ast.EIdentifier{Name: argName}}},
	}}}}
}

func containsModule(modules []*Module, target *Module) bool {
	for _, m := range modules {
		if m == target {
			return true
		}
	}
	return false
}

// --- scenario S1: pure import --------------------------------------------------

func TestScenarioS1PureImport(t *testing.T) {
	g := NewGraph(logger.NewDeferLog())

	uStmt, uVar := constStmt("u", 1)
	vStmt, vVar := constStmt("v", 2)
	a := g.AddModule(ModuleInput{
		ID: "a",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			uStmt,
			exportNamed(js_ast.ExportSpec{Local: "u", Exported: "u"}),
			vStmt,
			exportNamed(js_ast.ExportSpec{Local: "v", Exported: "v"}),
		}},
	})

	b := g.AddModule(ModuleInput{
		ID: "b",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			importStmt("./a", js_ast.ImportSpec{Imported: "u", Local: "u"}),
			consoleLogCall("u"),
		}},
		IsEntry:     true,
		ResolvedIDs: map[string]ResolvedID{"./a": {ID: "a"}},
	})

	if err := g.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := g.IncludeStatements(); err != nil {
		t.Fatalf("IncludeStatements: %v", err)
	}

	if !uVar.IsIncluded() {
		t.Error("expected u included: b reads it")
	}
	if vVar.IsIncluded() {
		t.Error("expected v excluded: nothing reads it")
	}
	if !uStmt.Data.IsIncluded() {
		t.Error("expected u's declaration statement included")
	}
	if vStmt.Data.IsIncluded() {
		t.Error("expected v's declaration statement excluded")
	}

	if deps := b.GetDependenciesToBeIncluded(); !containsModule(deps, a) {
		t.Errorf("expected a among b's relevant dependencies, got %v", deps)
	}
}

// --- scenario S2: side-effect module ------------------------------------------

func TestScenarioS2SideEffectModuleForcesInclusion(t *testing.T) {
	g := NewGraph(logger.NewDeferLog())

	callStmt := consoleLogCall("hi")
	a := g.AddModule(ModuleInput{
		ID:  "a",
		AST: &js_ast.Program{Body: []js_ast.Stmt{callStmt}},
		// ModuleSideEffects left at its zero value (ast.SideEffectsAssumed):
		// nothing statically reads anything out of a, so it only survives
		// because it performs an observable effect (the unknown-global call).
	})

	g.AddModule(ModuleInput{
		ID: "b",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			importStmt("./a"),
		}},
		IsEntry:     true,
		ResolvedIDs: map[string]ResolvedID{"./a": {ID: "a"}},
	})

	if err := g.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := g.IncludeStatements(); err != nil {
		t.Fatalf("IncludeStatements: %v", err)
	}

	if !callStmt.Data.IsIncluded() {
		t.Error("expected a's call statement included: it has its own effects")
	}
	if !a.HasEffects() {
		t.Error("expected a.HasEffects() to hold because of the unknown-global call")
	}

	deps := g.ModulesByID["b"].GetDependenciesToBeIncluded()
	if !containsModule(deps, a) {
		t.Errorf("expected a in b's relevant dependencies via moduleSideEffects+hasEffects, got %v", deps)
	}
}

// --- scenario S3: re-export chain collapses to the defining module -----------

func TestScenarioS3ReexportChainCollapsesToDefiningModule(t *testing.T) {
	g := NewGraph(logger.NewDeferLog())

	xStmt, xVar := constStmt("x", 42)
	a := g.AddModule(ModuleInput{
		ID: "a",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			xStmt,
			exportNamed(js_ast.ExportSpec{Local: "x", Exported: "x"}),
		}},
	})

	b := g.AddModule(ModuleInput{
		ID: "b",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			reexport("./a", js_ast.ExportSpec{Local: "x", Exported: "x"}),
		}},
		ResolvedIDs: map[string]ResolvedID{"./a": {ID: "a"}},
	})

	c := g.AddModule(ModuleInput{
		ID: "c",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			importStmt("./b", js_ast.ImportSpec{Imported: "x", Local: "x"}),
			consoleLogCall("x"),
		}},
		IsEntry:     true,
		ResolvedIDs: map[string]ResolvedID{"./b": {ID: "b"}},
	})

	if err := g.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := g.IncludeStatements(); err != nil {
		t.Fatalf("IncludeStatements: %v", err)
	}

	if !xVar.IsIncluded() {
		t.Error("expected x included through the reexport chain")
	}

	deps := c.GetDependenciesToBeIncluded()
	if !containsModule(deps, a) {
		t.Errorf("expected a reachable from c's relevant dependencies (the variable's defining module), got %v", deps)
	}
	if containsModule(deps, b) {
		t.Errorf("expected the pass-through reexporter b to be collapsed out since it has no effects of its own, got %v", deps)
	}
}

// --- scenario S4: circular re-export is fatal ---------------------------------

func TestScenarioS4CircularReexportIsFatal(t *testing.T) {
	g := NewGraph(logger.NewDeferLog())

	g.AddModule(ModuleInput{
		ID: "a",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			reexport("./b", js_ast.ExportSpec{Local: "x", Exported: "x"}),
		}},
		ResolvedIDs: map[string]ResolvedID{"./b": {ID: "b"}},
	})

	g.AddModule(ModuleInput{
		ID: "b",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			reexport("./a", js_ast.ExportSpec{Local: "x", Exported: "x"}),
		}},
		ResolvedIDs: map[string]ResolvedID{"./a": {ID: "a"}},
	})

	g.AddModule(ModuleInput{
		ID: "c",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			importStmt("./a", js_ast.ImportSpec{Imported: "x", Local: "x"}),
			consoleLogCall("x"),
		}},
		IsEntry:     true,
		ResolvedIDs: map[string]ResolvedID{"./a": {ID: "a"}},
	})

	err := g.Link()
	if err == nil {
		t.Fatal("expected the circular reexport to be a fatal error")
	}
	coreErr, ok := err.(*logger.CoreError)
	if !ok {
		t.Fatalf("expected *logger.CoreError, got %T: %v", err, err)
	}
	if coreErr.Code != logger.MsgID_CircularReexport {
		t.Errorf("expected code %s, got %s", logger.MsgID_CircularReexport, coreErr.Code)
	}
}

// --- scenario S5: export-star conflict ----------------------------------------

func TestScenarioS5NamespaceConflictWarnsThenFailsOnUse(t *testing.T) {
	log := logger.NewDeferLog()
	g := NewGraph(log)

	_, aVVar := constStmt("v", 1)
	g.AddModule(ModuleInput{
		ID: "a",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			{Data: &js_ast.SVarDecl{Kind: "const", Declarators: []*js_ast.Declarator{{
				Variable: aVVar, Init: &js_ast.Expr{Data: &js_ast.ENumber{Value: 1}},
			}}}},
			exportNamed(js_ast.ExportSpec{Local: "v", Exported: "v"}),
		}},
	})

	_, bVVar := constStmt("v", 2)
	g.AddModule(ModuleInput{
		ID: "b",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			{Data: &js_ast.SVarDecl{Kind: "const", Declarators: []*js_ast.Declarator{{
				Variable: bVVar, Init: &js_ast.Expr{Data: &js_ast.ENumber{Value: 2}},
			}}}},
			exportNamed(js_ast.ExportSpec{Local: "v", Exported: "v"}),
		}},
	})

	g.AddModule(ModuleInput{
		ID: "c",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			exportAll("./a"),
			exportAll("./b"),
		}},
		ResolvedIDs: map[string]ResolvedID{"./a": {ID: "a"}, "./b": {ID: "b"}},
	})

	g.AddModule(ModuleInput{
		ID: "d",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			importStmt("./c", js_ast.ImportSpec{Imported: "v", Local: "v"}),
			consoleLogCall("v"),
		}},
		IsEntry:     true,
		ResolvedIDs: map[string]ResolvedID{"./c": {ID: "c"}},
	})

	err := g.Link()
	if err == nil {
		t.Fatal("expected resolving the ambiguous name by use to fail")
	}
	if coreErr, ok := err.(*logger.CoreError); !ok || coreErr.Code != logger.MsgID_MissingExport {
		t.Errorf("expected a %s error once the conflicting name is actually imported, got %v", logger.MsgID_MissingExport, err)
	}

	var sawConflict bool
	for _, msg := range log.Done() {
		if msg.Code == logger.MsgID_NamespaceConflict {
			sawConflict = true
		}
	}
	if !sawConflict {
		t.Error("expected a NAMESPACE_CONFLICT warning to have been logged")
	}
}

// --- scenario S6: dynamic import forces the full target namespace ------------

func TestScenarioS6DynamicImportForcesFullNamespace(t *testing.T) {
	g := NewGraph(logger.NewDeferLog())

	wStmt, wVar := constStmt("w", 7)
	a := g.AddModule(ModuleInput{
		ID: "a",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			wStmt,
			exportNamed(js_ast.ExportSpec{Local: "w", Exported: "w"}),
		}},
	})

	g.AddModule(ModuleInput{
		ID: "b",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			{Data: &js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.EImportCall{Source: "./a"}}}},
		}},
		IsEntry:     true,
		ResolvedIDs: map[string]ResolvedID{"./a": {ID: "a"}},
	})

	if err := g.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := g.IncludeStatements(); err != nil {
		t.Fatalf("IncludeStatements: %v", err)
	}

	if !wVar.IsIncluded() {
		t.Error("expected the dynamically-imported module's export included even though nothing statically reads it")
	}
	if !a.Namespace.IsIncluded() {
		t.Error("expected the dynamically-imported module's namespace object included")
	}
}

// --- no-treeshake containment --------------------------------------------------

func TestNoTreeshakeModuleKeepsEveryStatement(t *testing.T) {
	g := NewGraph(logger.NewDeferLog())

	unusedStmt, unusedVar := constStmt("unused", 5)
	g.AddModule(ModuleInput{
		ID:                "a",
		AST:               &js_ast.Program{Body: []js_ast.Stmt{unusedStmt}},
		IsEntry:           true,
		ModuleSideEffects: ast.SideEffectsNoTreeshake,
	})

	if err := g.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := g.IncludeStatements(); err != nil {
		t.Fatalf("IncludeStatements: %v", err)
	}

	if !unusedStmt.Data.IsIncluded() {
		t.Error("expected a no-treeshake module to keep every statement regardless of usage")
	}
	if !unusedVar.IsIncluded() {
		t.Error("expected the no-treeshake module's declarator variable included")
	}
}

// --- default-export aliasing ---------------------------------------------------

func TestExportDefaultAliasResolvesThroughImport(t *testing.T) {
	g := NewGraph(logger.NewDeferLog())

	fooStmt, fooVar := constStmt("foo", 9)
	g.AddModule(ModuleInput{
		ID: "a",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			fooStmt,
			{Data: &js_ast.SExportDefault{Value: js_ast.Expr{Data: &js_ast.EIdentifier{Name: "foo"}}}},
		}},
	})

	g.AddModule(ModuleInput{
		ID: "b",
		AST: &js_ast.Program{Body: []js_ast.Stmt{
			importStmt("./a", js_ast.ImportSpec{Imported: "default", Local: "foo"}),
			consoleLogCall("foo"),
		}},
		IsEntry:     true,
		ResolvedIDs: map[string]ResolvedID{"./a": {ID: "a"}},
	})

	if err := g.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := g.IncludeStatements(); err != nil {
		t.Fatalf("IncludeStatements: %v", err)
	}

	if !fooVar.IsIncluded() {
		t.Error("expected the default export's aliased original variable included")
	}
}
