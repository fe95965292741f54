package js_ast

// Variable is the polymorphic-over-capability-set model from spec.md §3/§4.1
// (C1). Every variant implements the same capability set so external code —
// the resolver, the inclusion driver, the renderer — can hold a
// heterogeneous reference, the same way the teacher's js_ast.Symbol is one
// concrete type shared by every kind of binding (spec.md §9, "polymorphism
// over capability sets").
//
// Owner holds the declaring *graph.Module (the *graph.ExternalModule for an
// ExternalVariable) as an interface{}: graph.Module can't be named here without an import cycle
// (graph already imports js_ast for Program), so graph type-asserts it back
// when it needs to, e.g. to test whether two variables share a cycle token.
type Variable interface {
	Name() string
	IsIncluded() bool

	// Include marks the variable included. It is monotonic: calling it a
	// second time is a no-op (spec.md §3 invariants).
	Include()

	// DeoptimizePath marks the value at path unreliable for future literal
	// probing. An empty path marks the variable itself reassigned.
	DeoptimizePath(path []string, ctx *EffectsContext)

	GetLiteralValueAtPath(path []string, ctx *EffectsContext) (value interface{}, ok bool)
	HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool
	HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool
	HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool

	// GetOriginalVariable chains through aliasing (export default wrapping
	// another identifier) with a cycle guard. The default implementation
	// returns the variable itself.
	GetOriginalVariable() Variable

	Owner() interface{}
}

// Declarator is one `name = init` binding inside a var/let/const statement.
// Including its LocalVariable does not mark the declarator itself; the next
// driver pass finds the variable included and SVarDecl.Include marks it.
type Declarator struct {
	Variable *LocalVariable
	Init     *Expr // nil for declarators without an initializer
	Included bool
}

// --- LocalVariable ---------------------------------------------------------

type LocalVariable struct {
	baseExpr // reuses the Included bookkeeping; LocalVariable is not itself an Expr

	name         string
	owner        interface{}
	init         *Expr
	isReassigned bool

	// deoptCallbacks are invoked when DeoptimizePath is called at the empty
	// path, so expressions that cached a literal read through this variable
	// invalidate that cache (spec.md §4.1 "Deoptimization").
	deoptCallbacks []func()
}

func NewLocalVariable(name string, owner interface{}, init *Expr) *LocalVariable {
	return &LocalVariable{name: name, owner: owner, init: init}
}

func (v *LocalVariable) Name() string       { return v.name }
func (v *LocalVariable) Owner() interface{} { return v.owner }
func (v *LocalVariable) IsReassigned() bool { return v.isReassigned }

// SetOwner records the declaring module once it exists. The AST (and the
// Variables it closes over) is built before its owning Module is — module.go's
// SetSource calls this for every top-level declarator/function/class it binds
// into scope, the same ordering fix SetAlias applies for default-export
// aliasing.
func (v *LocalVariable) SetOwner(owner interface{}) { v.owner = owner }

func (v *LocalVariable) Include() {
	v.included = true
}

// OnInvalidate registers a cache-invalidation callback fired the next time
// this variable is deoptimized at the empty path.
func (v *LocalVariable) OnInvalidate(cb func()) {
	v.deoptCallbacks = append(v.deoptCallbacks, cb)
}

func (v *LocalVariable) DeoptimizePath(path []string, ctx *EffectsContext) {
	if len(path) == 0 {
		if v.isReassigned {
			return
		}
		v.isReassigned = true
		callbacks := v.deoptCallbacks
		v.deoptCallbacks = nil
		for _, cb := range callbacks {
			cb()
		}
		return
	}
	if v.init != nil {
		v.init.Data.DeoptimizeAtPath(path, ctx)
	}
}

func (v *LocalVariable) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if v.isReassigned || v.init == nil {
		return nil, false
	}
	if ctx.Paths.Enter(v, path) {
		return nil, false
	}
	return v.init.Data.GetLiteralValueAtPath(path, ctx)
}

func (v *LocalVariable) HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool {
	if v.isReassigned || v.init == nil {
		return true
	}
	if ctx.Paths.Enter(v, append(append([]string{}, path...), "()")) {
		return false
	}
	return v.init.Data.HasEffectsWhenCalledAtPath(path, args, ctx)
}

func (v *LocalVariable) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	if len(path) == 0 {
		return false
	}
	if v.isReassigned || v.init == nil {
		return true
	}
	if ctx.Paths.Enter(v, path) {
		return false
	}
	return v.init.Data.HasEffectsWhenAccessedAtPath(path, ctx)
}

func (v *LocalVariable) HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool {
	if v.isReassigned || v.init == nil {
		return true
	}
	return v.init.Data.HasEffectsWhenAssignedAtPath(path, ctx)
}

func (v *LocalVariable) GetOriginalVariable() Variable { return v }

// --- ExportDefaultVariable ---------------------------------------------------

// ExportDefaultVariable wraps an `export default <expr>` value. When the
// expression is a bare identifier referencing another local/imported
// variable, aliasTo is set so GetOriginalVariable can chain through it
// (spec.md §4.1, §8 scenario 7).
type ExportDefaultVariable struct {
	baseExpr
	name    string
	owner   interface{}
	value   *Expr
	aliasTo Variable // nil unless `export default someIdentifier`
}

func NewExportDefaultVariable(name string, owner interface{}, value *Expr, aliasTo Variable) *ExportDefaultVariable {
	return &ExportDefaultVariable{name: name, owner: owner, value: value, aliasTo: aliasTo}
}

// SetAlias records that this default export is a bare reference to another
// variable (`export default foo`), once that reference has been resolved by
// bindReferences. GetOriginalVariable chains through it.
func (v *ExportDefaultVariable) SetAlias(aliasTo Variable) {
	v.aliasTo = aliasTo
}

func (v *ExportDefaultVariable) Name() string       { return v.name }
func (v *ExportDefaultVariable) Owner() interface{} { return v.owner }
func (v *ExportDefaultVariable) Value() *Expr        { return v.value }

// Include cascades into the wrapped value's own Include, not just its flag —
// when the value is a bare identifier (`export default foo`) this is what
// actually marks the aliased variable included, the same way any other
// reference to `foo` would (spec.md §4.1, §8 scenario 7).
func (v *ExportDefaultVariable) Include() {
	v.included = true
	if v.value != nil {
		v.value.Data.Include(NewIncludeContext(), false)
	}
}

func (v *ExportDefaultVariable) DeoptimizePath(path []string, ctx *EffectsContext) {
	if v.value != nil {
		v.value.Data.DeoptimizeAtPath(path, ctx)
	}
}

func (v *ExportDefaultVariable) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if v.value == nil {
		return nil, false
	}
	return v.value.Data.GetLiteralValueAtPath(path, ctx)
}

func (v *ExportDefaultVariable) HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool {
	if v.value == nil {
		return true
	}
	return v.value.Data.HasEffectsWhenCalledAtPath(path, args, ctx)
}

func (v *ExportDefaultVariable) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	if len(path) == 0 || v.value == nil {
		return len(path) > 0
	}
	return v.value.Data.HasEffectsWhenAccessedAtPath(path, ctx)
}

func (v *ExportDefaultVariable) HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool {
	if v.value == nil {
		return true
	}
	return v.value.Data.HasEffectsWhenAssignedAtPath(path, ctx)
}

// GetDirectOriginalVariable returns only the immediate alias step, or nil if
// this default export doesn't simply re-export another binding.
func (v *ExportDefaultVariable) GetDirectOriginalVariable() Variable {
	return v.aliasTo
}

// GetOriginalVariable walks the chain of `export default foo` aliases with a
// cycle guard (spec.md §4.1).
func (v *ExportDefaultVariable) GetOriginalVariable() Variable {
	seen := map[Variable]bool{v: true}
	var current Variable = v
	for {
		def, ok := current.(*ExportDefaultVariable)
		if !ok || def.aliasTo == nil {
			return current
		}
		if seen[def.aliasTo] {
			return current
		}
		seen[def.aliasTo] = true
		current = def.aliasTo
	}
}

// --- NamespaceVariable -------------------------------------------------------

// NamespaceVariable represents a module's `* as ns` namespace object.
type NamespaceVariable struct {
	baseExpr
	owner  interface{}
	merged []Variable // lazily filled: every named export this namespace exposes
}

func NewNamespaceVariable(owner interface{}) *NamespaceVariable {
	return &NamespaceVariable{owner: owner}
}

func (v *NamespaceVariable) Name() string       { return "*" }
func (v *NamespaceVariable) Owner() interface{} { return v.owner }

// SetMembers installs the namespace's merged member list. Called lazily by
// the module once its export table is final (spec.md §3, "merged-namespace
// list filled lazily").
func (v *NamespaceVariable) SetMembers(members []Variable) { v.merged = members }
func (v *NamespaceVariable) Members() []Variable           { return v.merged }

func (v *NamespaceVariable) Include() {
	v.included = true
}

// IncludeAllMembers additionally includes every named export the namespace
// exposes — used for dynamic imports, which force the full namespace
// (spec.md §4.5).
func (v *NamespaceVariable) IncludeAllMembers() {
	v.included = true
	for _, m := range v.merged {
		m.Include()
	}
}

func (v *NamespaceVariable) DeoptimizePath(path []string, ctx *EffectsContext) {
	if len(path) == 0 {
		return
	}
	for _, m := range v.merged {
		if m.Name() == path[0] {
			m.DeoptimizePath(path[1:], ctx)
			return
		}
	}
}

func (v *NamespaceVariable) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}
	for _, m := range v.merged {
		if m.Name() == path[0] {
			return m.GetLiteralValueAtPath(path[1:], ctx)
		}
	}
	return nil, false
}

func (v *NamespaceVariable) HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool {
	if len(path) == 0 {
		return true
	}
	for _, m := range v.merged {
		if m.Name() == path[0] {
			return m.HasEffectsWhenCalledAtPath(path[1:], args, ctx)
		}
	}
	return true
}

func (v *NamespaceVariable) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	if len(path) == 0 {
		return false
	}
	for _, m := range v.merged {
		if m.Name() == path[0] {
			return m.HasEffectsWhenAccessedAtPath(path[1:], ctx)
		}
	}
	return false
}

func (v *NamespaceVariable) HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool {
	return true
}

func (v *NamespaceVariable) GetOriginalVariable() Variable { return v }

// --- ExternalVariable ---------------------------------------------------------

// ExternalVariable is a name (or "*") imported from a module the resolver
// never loaded. Owner holds the *graph.ExternalModule it belongs to.
type ExternalVariable struct {
	baseExpr
	name  string
	owner interface{}
}

func NewExternalVariable(name string, owner interface{}) *ExternalVariable {
	return &ExternalVariable{name: name, owner: owner}
}

func (v *ExternalVariable) Name() string       { return v.name }
func (v *ExternalVariable) Owner() interface{} { return v.owner }
func (v *ExternalVariable) Include()           { v.included = true }
func (v *ExternalVariable) DeoptimizePath([]string, *EffectsContext) {}
func (v *ExternalVariable) GetLiteralValueAtPath([]string, *EffectsContext) (interface{}, bool) {
	return nil, false
}
func (v *ExternalVariable) HasEffectsWhenCalledAtPath([]string, []Expr, *EffectsContext) bool {
	return true
}
func (v *ExternalVariable) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	return len(path) > 0
}
func (v *ExternalVariable) HasEffectsWhenAssignedAtPath([]string, *EffectsContext) bool { return true }
func (v *ExternalVariable) GetOriginalVariable() Variable                              { return v }

// --- SyntheticNamedExportVariable --------------------------------------------

// SyntheticNamedExportVariable stands in for a name that isn't statically
// present in the exporter, backed by a fallback namespace (spec.md §3, §4.4
// step 6).
type SyntheticNamedExportVariable struct {
	baseExpr
	name    string
	owner   interface{}
	base    Variable // the module's synthetic namespace (default export or named fallback)
}

func NewSyntheticNamedExportVariable(name string, owner interface{}, base Variable) *SyntheticNamedExportVariable {
	return &SyntheticNamedExportVariable{name: name, owner: owner, base: base}
}

func (v *SyntheticNamedExportVariable) Name() string       { return v.name }
func (v *SyntheticNamedExportVariable) Owner() interface{} { return v.owner }

func (v *SyntheticNamedExportVariable) Include() {
	v.included = true
	v.base.Include()
}

// GetBaseVariable returns the fallback namespace's base, chaining through
// another synthetic export if the fallback is itself synthetic.
func (v *SyntheticNamedExportVariable) GetBaseVariable() Variable {
	base := v.base
	for {
		if s, ok := base.(*SyntheticNamedExportVariable); ok {
			base = s.base
			continue
		}
		return base
	}
}

func (v *SyntheticNamedExportVariable) DeoptimizePath(path []string, ctx *EffectsContext) {
	v.base.DeoptimizePath(append([]string{v.name}, path...), ctx)
}

func (v *SyntheticNamedExportVariable) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	return v.base.GetLiteralValueAtPath(append([]string{v.name}, path...), ctx)
}

func (v *SyntheticNamedExportVariable) HasEffectsWhenCalledAtPath(path []string, args []Expr, ctx *EffectsContext) bool {
	return v.base.HasEffectsWhenCalledAtPath(append([]string{v.name}, path...), args, ctx)
}

func (v *SyntheticNamedExportVariable) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	return v.base.HasEffectsWhenAccessedAtPath(append([]string{v.name}, path...), ctx)
}

func (v *SyntheticNamedExportVariable) HasEffectsWhenAssignedAtPath(path []string, ctx *EffectsContext) bool {
	return v.base.HasEffectsWhenAssignedAtPath(append([]string{v.name}, path...), ctx)
}

func (v *SyntheticNamedExportVariable) GetOriginalVariable() Variable { return v }

// --- ExportShimVariable -------------------------------------------------------

// ExportShimVariable is the single missing-export placeholder per module
// (spec.md §3, §4.4 step 7).
type ExportShimVariable struct {
	baseExpr
	owner interface{}
}

func NewExportShimVariable(owner interface{}) *ExportShimVariable {
	return &ExportShimVariable{owner: owner}
}

func (v *ExportShimVariable) Name() string       { return "undefined" }
func (v *ExportShimVariable) Owner() interface{} { return v.owner }
func (v *ExportShimVariable) Include()           { v.included = true }
func (v *ExportShimVariable) DeoptimizePath([]string, *EffectsContext) {}
func (v *ExportShimVariable) GetLiteralValueAtPath(path []string, ctx *EffectsContext) (interface{}, bool) {
	if len(path) == 0 {
		return nil, true // statically known to be `undefined`
	}
	return nil, false
}
func (v *ExportShimVariable) HasEffectsWhenCalledAtPath([]string, []Expr, *EffectsContext) bool {
	return true
}
func (v *ExportShimVariable) HasEffectsWhenAccessedAtPath(path []string, ctx *EffectsContext) bool {
	return len(path) > 0
}
func (v *ExportShimVariable) HasEffectsWhenAssignedAtPath([]string, *EffectsContext) bool { return true }
func (v *ExportShimVariable) GetOriginalVariable() Variable                              { return v }
