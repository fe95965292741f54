package js_ast

// Expression node kinds. Each implements ExprData; most embed baseExpr for
// the Included flag and unknownPathBehavior for the path queries they don't
// have anything smarter to say about, the same shape the teacher's E* types
// take (marker method + struct literal, see internal/js_ast/js_ast.go in the
// teacher).

// --- Literals ----------------------------------------------------------------

type ENumber struct {
	baseExpr
	unknownPathBehaviorForLiterals
	Value float64
}

type EString struct {
	baseExpr
	unknownPathBehaviorForLiterals
	Value string
}

type EBoolean struct {
	baseExpr
	unknownPathBehaviorForLiterals
	Value bool
}

type ENull struct {
	baseExpr
	unknownPathBehaviorForLiterals
}

type EUndefined struct {
	baseExpr
	unknownPathBehaviorForLiterals
}

func (*ENumber) isExpr()    {}
func (*EString) isExpr()    {}
func (*EBoolean) isExpr()   {}
func (*ENull) isExpr()      {}
func (*EUndefined) isExpr() {}

// Evaluating a literal can never be observed.
func (*ENumber) HasEffects(*EffectsContext) bool    { return false }
func (*EString) HasEffects(*EffectsContext) bool    { return false }
func (*EBoolean) HasEffects(*EffectsContext) bool   { return false }
func (*ENull) HasEffects(*EffectsContext) bool      { return false }
func (*EUndefined) HasEffects(*EffectsContext) bool { return false }

func (e *ENumber) Include(ctx *IncludeContext, recursive bool)    { e.included = true }
func (e *EString) Include(ctx *IncludeContext, recursive bool)    { e.included = true }
func (e *EBoolean) Include(ctx *IncludeContext, recursive bool)   { e.included = true }
func (e *ENull) Include(ctx *IncludeContext, recursive bool)      { e.included = true }
func (e *EUndefined) Include(ctx *IncludeContext, recursive bool) { e.included = true }

// unknownPathBehaviorForLiterals reports the true literal value at the empty
// path (the literal's own value) and falls back to the conservative
// defaults for anything deeper — a number has no properties worth tracking
// here.
type unknownPathBehaviorForLiterals struct{}

func (unknownPathBehaviorForLiterals) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	return len(path) > 0
}
func (unknownPathBehaviorForLiterals) HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool {
	return true
}
func (unknownPathBehaviorForLiterals) HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool {
	return true
}
func (unknownPathBehaviorForLiterals) DeoptimizeAtPath(path []string, ctx *EffectsContext) {}

func (e *ENumber) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if len(path) == 0 {
		return e.Value, true
	}
	return nil, false
}
func (e *EString) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if len(path) == 0 {
		return e.Value, true
	}
	return nil, false
}
func (e *EBoolean) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if len(path) == 0 {
		return e.Value, true
	}
	return nil, false
}
func (e *ENull) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if len(path) == 0 {
		return nil, true
	}
	return nil, false
}
func (e *EUndefined) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if len(path) == 0 {
		return nil, true
	}
	return nil, false
}

// --- EIdentifier ---------------------------------------------------------------

// EIdentifier is a name reference. Variable is nil until the owning module's
// bindReferences() pass resolves it (spec.md §4.3).
type EIdentifier struct {
	baseExpr
	Name     string
	Variable Variable
}

func (*EIdentifier) isExpr() {}

func (e *EIdentifier) HasEffects(ctx *EffectsContext) bool {
	return false
}

func (e *EIdentifier) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	if e.Variable == nil {
		return len(path) > 0
	}
	return e.Variable.HasEffectsWhenAccessedAtPath(path, ctx)
}

func (e *EIdentifier) HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool {
	if e.Variable == nil {
		return true
	}
	return e.Variable.HasEffectsWhenAssignedAtPath(path, ctx)
}

func (e *EIdentifier) HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool {
	if e.Variable == nil {
		return true
	}
	return e.Variable.HasEffectsWhenCalledAtPath(path, args, ctx)
}

func (e *EIdentifier) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if e.Variable == nil {
		return nil, false
	}
	return e.Variable.GetLiteralValueAtPath(path, ctx)
}

func (e *EIdentifier) DeoptimizeAtPath(path []string, ctx *EffectsContext) {
	if e.Variable != nil {
		e.Variable.DeoptimizePath(path, ctx)
	}
}

func (e *EIdentifier) Include(ctx *IncludeContext, recursive bool) {
	e.included = true
	if e.Variable != nil {
		e.Variable.Include()
	}
}

// --- ECall -----------------------------------------------------------------

// ECall covers both ordinary calls and `new` (IsNew). Dynamic `import(...)`
// uses the distinct EImportCall kind below since it resolves against the
// module graph rather than a Variable.
type ECall struct {
	baseExpr
	unknownPathBehavior
	Callee Expr
	Args   []Expr
	IsNew  bool

	// CalleePath is the member-access path leading to the callee (e.g. for
	// `a.b.c()` this is ["b", "c"] off of identifier "a"), used to ask the
	// base variable whether a call at that path has effects (spec.md §4.2,
	// "Calls ask the callee's variable chain").
	CalleeBase *Expr
	CalleePath []string
}

func (*ECall) isExpr() {}

func (e *ECall) HasEffects(ctx *EffectsContext) bool {
	if e.CalleeBase != nil {
		if e.CalleeBase.Data.HasEffectsWhenCalledAtPath(e.CalleePath, e.Args, ctx) {
			return true
		}
	} else if e.Callee.Data.HasEffects(ctx) || e.Callee.Data.HasEffectsWhenCalledAtPath(nil, e.Args, ctx) {
		return true
	}
	for _, arg := range e.Args {
		if arg.Data.HasEffects(ctx) {
			return true
		}
	}
	return false
}

func (e *ECall) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	return nil, false
}

func (e *ECall) Include(ctx *IncludeContext, recursive bool) {
	e.included = true
	if e.CalleeBase != nil {
		e.CalleeBase.Data.Include(ctx, recursive)
	} else {
		e.Callee.Data.Include(ctx, recursive)
	}
	for _, arg := range e.Args {
		arg.Data.Include(ctx, recursive)
	}
}

// --- EImportCall (dynamic import) -------------------------------------------

// EImportCall is `import(source)`. It is resolved against the module graph,
// not a Variable — see spec.md §4.5 "Dynamic imports".
type EImportCall struct {
	baseExpr
	unknownPathBehavior
	Source         string
	ResolvedModule interface{} // *graph.Module or *graph.ExternalModule of the target, set at link time; nil if unresolved
}

func (*EImportCall) isExpr() {}

// A dynamic import always has effects: it's an observable side-effecting
// operation (kicking off a network/fs fetch) regardless of what, if
// anything, reads the result.
func (*EImportCall) HasEffects(*EffectsContext) bool { return true }

func (e *EImportCall) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	return nil, false
}

func (e *EImportCall) Include(ctx *IncludeContext, recursive bool) {
	e.included = true
}

// --- EMember -----------------------------------------------------------------

type EMember struct {
	baseExpr
	Object   Expr
	Property string
}

func (*EMember) isExpr() {}

func (e *EMember) HasEffects(ctx *EffectsContext) bool {
	return e.Object.Data.HasEffects(ctx) || e.Object.Data.HasEffectsWhenAccessedAtPath([]string{e.Property}, ctx)
}

func (e *EMember) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	return e.Object.Data.HasEffectsWhenAccessedAtPath(append([]string{e.Property}, path...), ctx)
}

func (e *EMember) HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool {
	return e.Object.Data.HasEffectsWhenAssignedAtPath(append([]string{e.Property}, path...), ctx)
}

func (e *EMember) HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool {
	return e.Object.Data.HasEffectsWhenCalledAtPath(append([]string{e.Property}, path...), args, ctx)
}

func (e *EMember) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	return e.Object.Data.GetLiteralValueAtPath(append([]string{e.Property}, path...), ctx)
}

func (e *EMember) DeoptimizeAtPath(path []string, ctx *EffectsContext) {
	e.Object.Data.DeoptimizeAtPath(append([]string{e.Property}, path...), ctx)
}

func (e *EMember) Include(ctx *IncludeContext, recursive bool) {
	e.included = true
	e.Object.Data.Include(ctx, recursive)
}

// --- EAssign -----------------------------------------------------------------

// EAssign is a plain `target = value` assignment. At the empty path (a bare
// identifier target) it flips the target variable's isReassigned; at deeper
// paths (member-expression targets) it deoptimizes that sub-path (spec.md
// §4.2 "Assignments").
type EAssign struct {
	baseExpr
	unknownPathBehavior
	Target Expr
	Value  Expr
}

func (*EAssign) isExpr() {}

func (e *EAssign) HasEffects(ctx *EffectsContext) bool {
	if e.Value.Data.HasEffects(ctx) {
		return true
	}
	if ident, ok := e.Target.Data.(*EIdentifier); ok {
		return ident.HasEffectsWhenAssignedAtPath(nil, ctx)
	}
	if member, ok := e.Target.Data.(*EMember); ok {
		return member.HasEffectsWhenAssignedAtPath(nil, ctx)
	}
	return true
}

func (e *EAssign) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	return nil, false
}

func (e *EAssign) Include(ctx *IncludeContext, recursive bool) {
	e.included = true
	e.Target.Data.Include(ctx, recursive)
	e.Value.Data.Include(ctx, recursive)
	if ident, ok := e.Target.Data.(*EIdentifier); ok && ident.Variable != nil {
		ident.Variable.DeoptimizePath(nil, ctx.Effects())
	}
	if member, ok := e.Target.Data.(*EMember); ok {
		member.DeoptimizeAtPath(nil, ctx.Effects())
	}
}

// --- ESequence ---------------------------------------------------------------

// ESequence is the comma operator. spec.md §4.2: "A SequenceExpression
// forwards value/effect queries to its last expression; inclusion includes
// the last expression unconditionally when the sequence is not used only
// for its side effects ... and includes earlier expressions only if they
// themselves report effects."
type ESequence struct {
	baseExpr
	Expressions []Expr

	// IsStatementLevel is true when this sequence is itself an expression
	// statement's entire value (i.e. used only for side effects), matching
	// the teacher's "parent is not a bare statement" check.
	IsStatementLevel bool
}

func (*ESequence) isExpr() {}

func (e *ESequence) last() Expr {
	return e.Expressions[len(e.Expressions)-1]
}

func (e *ESequence) HasEffects(ctx *EffectsContext) bool {
	for _, sub := range e.Expressions {
		if sub.Data.HasEffects(ctx) {
			return true
		}
	}
	return false
}

func (e *ESequence) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	return e.last().Data.HasEffectsWhenAccessedAtPath(path, ctx)
}
func (e *ESequence) HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool {
	return e.last().Data.HasEffectsWhenAssignedAtPath(path, ctx)
}
func (e *ESequence) HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool {
	return e.last().Data.HasEffectsWhenCalledAtPath(path, args, ctx)
}
func (e *ESequence) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	return e.last().Data.GetLiteralValueAtPath(path, ctx)
}
func (e *ESequence) DeoptimizeAtPath(path []string, ctx *EffectsContext) {
	e.last().Data.DeoptimizeAtPath(path, ctx)
}

func (e *ESequence) Include(ctx *IncludeContext, recursive bool) {
	e.included = true
	n := len(e.Expressions)
	for i, sub := range e.Expressions[:n-1] {
		if recursive || sub.Data.HasEffects(ctx.Effects()) {
			sub.Data.Include(ctx, recursive)
			e.Expressions[i].Data.SetIncluded(true)
		}
	}
	last := e.last()
	if recursive || !e.IsStatementLevel || last.Data.HasEffects(ctx.Effects()) {
		last.Data.Include(ctx, recursive)
	}
}

// --- EFunctionExpr / EArrow --------------------------------------------------

// EFunctionExpr models both function expressions and arrow functions.
// Constructing one is always pure; what happens when it's later called is
// unknown to this core (whole-program return-value tracing is out of
// scope — see spec.md §1 Non-goals), so HasEffectsWhenCalledAtPath is
// conservative via unknownPathBehavior.
type EFunctionExpr struct {
	baseExpr
	unknownPathBehavior
	Name   string
	Params []string
	Body   []Stmt
	IsArrow bool
}

func (*EFunctionExpr) isExpr() {}

func (*EFunctionExpr) HasEffects(*EffectsContext) bool { return false }

func (e *EFunctionExpr) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	return nil, false
}

func (e *EFunctionExpr) Include(ctx *IncludeContext, recursive bool) {
	e.included = true
	if recursive {
		for _, stmt := range e.Body {
			stmt.Data.Include(ctx, recursive)
		}
	}
}
