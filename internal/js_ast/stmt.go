package js_ast

// Statement node kinds (spec.md §4.2's statement half of the node-trait
// contract). Import/export statements carry no runtime behavior of their own
// here — the descriptor tables that drive their resolution live on
// graph.Module (C3); these Stmt kinds are just the shape the parser hands
// back and the inclusion driver walks.

// --- SImport -----------------------------------------------------------------

// SImport is a static `import ... from "source"` declaration. It never has
// its own effects (a module's side effects are asked of the Module, not
// this statement) and including it is a no-op beyond the flag: the driver
// decides whether to pull in the source module separately (spec.md §4.5).
type SImport struct {
	baseStmt
	Source string
	Specs  []ImportSpec
}

// ImportSpec is one binding introduced by an import declaration.
// Imported is "default", "*", or the named export being imported; Local is
// the name it's bound to in this module (spec.md §4.3 "Add-import
// semantics": "record { module, name, source, start } under its local name").
type ImportSpec struct {
	Imported string
	Local    string
}

func (*SImport) isStmt() {}
func (*SImport) HasEffects(*EffectsContext) bool          { return false }
func (*SImport) ShouldBeIncluded(*EffectsContext) bool    { return false }
func (s *SImport) Include(ctx *IncludeContext, recursive bool) { s.included = true }

// --- SExportNamed ------------------------------------------------------------

// SExportNamed is `export { a, b as c }` (local re-export) or `export { a }
// from "source"` (a re-export pass-through, Source != ""). It has no effects
// of its own and ShouldBeIncluded always reports false, so the statement is
// only marked included by a recursive include (a no-treeshake module).
// Including an exported Variable does not mark this statement; the bindings
// are resolved through the owning module's descriptor tables instead.
type SExportNamed struct {
	baseStmt
	Source  string // "" for a local export, else the re-export source
	Specs   []ExportSpec
}

type ExportSpec struct {
	Local    string
	Exported string
}

func (*SExportNamed) isStmt() {}
func (*SExportNamed) HasEffects(*EffectsContext) bool       { return false }
func (*SExportNamed) ShouldBeIncluded(*EffectsContext) bool { return false }
func (s *SExportNamed) Include(ctx *IncludeContext, recursive bool) { s.included = true }

// --- SExportDefault ------------------------------------------------------------

// SExportDefault is `export default <expr or decl>`. Its effects and
// inclusion forward to the wrapped value, mirroring how
// ExportDefaultVariable forwards to its value Expr.
type SExportDefault struct {
	baseStmt
	Value Expr
}

func (*SExportDefault) isStmt() {}

func (s *SExportDefault) HasEffects(ctx *EffectsContext) bool {
	return s.Value.Data.HasEffects(ctx)
}

func (s *SExportDefault) ShouldBeIncluded(ctx *EffectsContext) bool {
	return s.Value.Data.HasEffects(ctx)
}

func (s *SExportDefault) Include(ctx *IncludeContext, recursive bool) {
	s.included = true
	s.Value.Data.Include(ctx, recursive)
}

// --- SExportAll ----------------------------------------------------------------

// SExportAll is `export * from "source"` (or `export * as ns from "source"`
// when As != ""). Resolved against the owning Module's exportAllSources
// table (spec.md §3); the statement itself carries no effects.
type SExportAll struct {
	baseStmt
	Source string
	As     string // "" unless this is a named `export * as ns`
}

func (*SExportAll) isStmt() {}
func (*SExportAll) HasEffects(*EffectsContext) bool          { return false }
func (*SExportAll) ShouldBeIncluded(*EffectsContext) bool    { return false }
func (s *SExportAll) Include(ctx *IncludeContext, recursive bool) { s.included = true }

// --- SVarDecl ------------------------------------------------------------------

// SVarDecl is a `var`/`let`/`const` declaration with one or more
// declarators. Per spec.md §4.1, marking any one Declarator's Variable
// included must bring this whole statement back on the next driver pass
// (it re-scans ShouldBeIncluded every fixpoint iteration), but only that
// declarator's own init expression is included — siblings stay out unless
// they're independently reachable.
type SVarDecl struct {
	baseStmt
	Kind        string // "var", "let", or "const"
	Declarators []*Declarator
}

func (*SVarDecl) isStmt() {}

func (s *SVarDecl) HasEffects(ctx *EffectsContext) bool {
	for _, d := range s.Declarators {
		if d.Init != nil && d.Init.Data.HasEffects(ctx) {
			return true
		}
	}
	return false
}

func (s *SVarDecl) ShouldBeIncluded(ctx *EffectsContext) bool {
	for _, d := range s.Declarators {
		if d.Variable.IsIncluded() {
			return true
		}
	}
	return s.HasEffects(ctx)
}

func (s *SVarDecl) Include(ctx *IncludeContext, recursive bool) {
	s.included = true
	for _, d := range s.Declarators {
		if recursive || d.Variable.IsIncluded() || (d.Init != nil && d.Init.Data.HasEffects(ctx.Effects())) {
			d.Included = true
			d.Variable.Include()
			if d.Init != nil {
				d.Init.Data.Include(ctx, recursive)
			}
		}
	}
}

// --- SFunctionDecl / SClassDecl --------------------------------------------------

// SFunctionDecl is a top-level `function name() {}` declaration. Like
// SVarDecl, its own inclusion follows its bound Variable.
type SFunctionDecl struct {
	baseStmt
	Variable *LocalVariable
	Params   []string
	Body     []Stmt
}

func (*SFunctionDecl) isStmt()                          {}
func (*SFunctionDecl) HasEffects(*EffectsContext) bool  { return false }
func (s *SFunctionDecl) ShouldBeIncluded(ctx *EffectsContext) bool {
	return s.Variable.IsIncluded()
}
func (s *SFunctionDecl) Include(ctx *IncludeContext, recursive bool) {
	s.included = true
	s.Variable.Include()
	if recursive {
		for _, stmt := range s.Body {
			stmt.Data.Include(ctx, recursive)
		}
	}
}

// SClassDecl is a top-level `class Name {}` declaration. A class's static
// initializers (static fields/blocks) can have effects; instance members
// can't just by being declared, so HasEffects only asks the static
// initializers.
type SClassDecl struct {
	baseStmt
	Variable           *LocalVariable
	StaticInitializers []Expr
}

func (*SClassDecl) isStmt() {}

func (s *SClassDecl) HasEffects(ctx *EffectsContext) bool {
	for _, init := range s.StaticInitializers {
		if init.Data.HasEffects(ctx) {
			return true
		}
	}
	return false
}

func (s *SClassDecl) ShouldBeIncluded(ctx *EffectsContext) bool {
	return s.Variable.IsIncluded() || s.HasEffects(ctx)
}

func (s *SClassDecl) Include(ctx *IncludeContext, recursive bool) {
	s.included = true
	s.Variable.Include()
	for _, init := range s.StaticInitializers {
		init.Data.Include(ctx, recursive)
	}
}

// --- SExpr -----------------------------------------------------------------------

// SExpr is an expression used as a statement (e.g. a bare call). It is
// included exactly when its expression reports effects (spec.md §4.2,
// "ExpressionStatement forwards shouldBeIncluded to its expression's
// hasEffects").
type SExpr struct {
	baseStmt
	Value Expr
}

func (*SExpr) isStmt() {}

func (s *SExpr) HasEffects(ctx *EffectsContext) bool {
	return s.Value.Data.HasEffects(ctx)
}

func (s *SExpr) ShouldBeIncluded(ctx *EffectsContext) bool {
	return s.Value.Data.HasEffects(ctx)
}

func (s *SExpr) Include(ctx *IncludeContext, recursive bool) {
	s.included = true
	s.Value.Data.Include(ctx, recursive)
}

// --- SBlock ------------------------------------------------------------------

// SBlock is a `{ ... }` block. It forwards effects/inclusion to its body,
// including only the child statements that themselves need to survive
// (spec.md §4.2, "a BlockStatement is included when any child statement
// is").
type SBlock struct {
	baseStmt
	Body []Stmt
}

func (*SBlock) isStmt() {}

func (s *SBlock) HasEffects(ctx *EffectsContext) bool {
	for _, stmt := range s.Body {
		if stmt.Data.HasEffects(ctx) {
			return true
		}
	}
	return false
}

func (s *SBlock) ShouldBeIncluded(ctx *EffectsContext) bool {
	for _, stmt := range s.Body {
		if stmt.Data.ShouldBeIncluded(ctx) {
			return true
		}
	}
	return false
}

func (s *SBlock) Include(ctx *IncludeContext, recursive bool) {
	s.included = true
	for _, stmt := range s.Body {
		if recursive || stmt.Data.ShouldBeIncluded(ctx.Effects()) {
			stmt.Data.Include(ctx, recursive)
		}
	}
}

// --- SIf -------------------------------------------------------------------------

// SIf is an `if (test) consequent else alternate`. Per spec.md §4.2, a
// statically-resolvable test prunes the dead branch entirely; otherwise
// both branches that have effects survive along with the test itself.
type SIf struct {
	baseStmt
	Test       Expr
	Consequent Stmt
	Alternate  *Stmt // nil if there's no else
}

func (*SIf) isStmt() {}

func (s *SIf) staticTest(ctx *EffectsContext) (value bool, ok bool) {
	v, ok := s.Test.Data.GetLiteralValueAtPath(nil, ctx)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (s *SIf) HasEffects(ctx *EffectsContext) bool {
	if s.Test.Data.HasEffects(ctx) {
		return true
	}
	if v, ok := s.staticTest(ctx); ok {
		if v {
			return s.Consequent.Data.HasEffects(ctx)
		}
		if s.Alternate != nil {
			return s.Alternate.Data.HasEffects(ctx)
		}
		return false
	}
	if s.Consequent.Data.HasEffects(ctx) {
		return true
	}
	return s.Alternate != nil && s.Alternate.Data.HasEffects(ctx)
}

func (s *SIf) ShouldBeIncluded(ctx *EffectsContext) bool {
	return s.HasEffects(ctx)
}

func (s *SIf) Include(ctx *IncludeContext, recursive bool) {
	s.included = true
	effects := ctx.Effects()
	if v, ok := s.staticTest(effects); ok && !recursive {
		s.Test.Data.Include(ctx, recursive)
		if v {
			s.Consequent.Data.Include(ctx, recursive)
		} else if s.Alternate != nil {
			s.Alternate.Data.Include(ctx, recursive)
		}
		return
	}
	s.Test.Data.Include(ctx, recursive)
	if recursive || s.Consequent.Data.ShouldBeIncluded(effects) {
		s.Consequent.Data.Include(ctx, recursive)
	}
	if s.Alternate != nil && (recursive || s.Alternate.Data.ShouldBeIncluded(effects)) {
		s.Alternate.Data.Include(ctx, recursive)
	}
}

// --- SReturn -----------------------------------------------------------------

type SReturn struct {
	baseStmt
	Value *Expr // nil for a bare `return;`
}

func (*SReturn) isStmt() {}

func (s *SReturn) HasEffects(ctx *EffectsContext) bool {
	return s.Value != nil && s.Value.Data.HasEffects(ctx)
}

func (s *SReturn) ShouldBeIncluded(ctx *EffectsContext) bool {
	return s.HasEffects(ctx)
}

func (s *SReturn) Include(ctx *IncludeContext, recursive bool) {
	s.included = true
	if s.Value != nil {
		s.Value.Data.Include(ctx, recursive)
	}
}

// --- SEmpty ------------------------------------------------------------------

type SEmpty struct {
	baseStmt
}

func (*SEmpty) isStmt()                                        {}
func (*SEmpty) HasEffects(*EffectsContext) bool                { return false }
func (*SEmpty) ShouldBeIncluded(*EffectsContext) bool          { return false }
func (s *SEmpty) Include(ctx *IncludeContext, recursive bool)  { s.included = true }
