package js_ast

import "testing"

func TestLiteralsHaveNoEffects(t *testing.T) {
	ctx := NewEffectsContext()
	for _, e := range []ExprData{&ENumber{Value: 1}, &EString{Value: "x"}, &EBoolean{Value: true}, &ENull{}, &EUndefined{}} {
		if e.HasEffects(ctx) {
			t.Errorf("%T: expected no effects", e)
		}
	}
}

func TestLocalVariableDeoptimizeMarksReassigned(t *testing.T) {
	v := NewLocalVariable("x", nil, &Expr{Data: &ENumber{Value: 1}})
	ctx := NewEffectsContext()

	value, ok := v.GetLiteralValueAtPath(nil, ctx)
	if !ok || value.(float64) != 1 {
		t.Fatalf("expected literal 1 before deopt, got %v %v", value, ok)
	}

	invalidated := false
	v.OnInvalidate(func() { invalidated = true })
	v.DeoptimizePath(nil, ctx)

	if !v.IsReassigned() {
		t.Fatal("expected isReassigned after empty-path deopt")
	}
	if !invalidated {
		t.Fatal("expected invalidation callback to fire")
	}
	if _, ok := v.GetLiteralValueAtPath(nil, NewEffectsContext()); ok {
		t.Fatal("expected no literal value after reassignment")
	}
}

func TestExportDefaultAliasChaining(t *testing.T) {
	foo := NewLocalVariable("foo", nil, nil)
	def := NewExportDefaultVariable("default", nil, &Expr{Data: &EIdentifier{Name: "foo", Variable: foo}}, foo)

	if def.GetOriginalVariable() != foo {
		t.Fatalf("expected GetOriginalVariable to chain to foo, got %v", def.GetOriginalVariable())
	}
	if def.GetDirectOriginalVariable() != foo {
		t.Fatal("expected direct alias to be foo")
	}
}

func TestExportDefaultAliasCycleGuard(t *testing.T) {
	a := &ExportDefaultVariable{name: "a"}
	b := &ExportDefaultVariable{name: "b"}
	a.aliasTo = b
	b.aliasTo = a

	// Must terminate instead of looping forever.
	result := a.GetOriginalVariable()
	if result != a && result != b {
		t.Fatalf("unexpected cycle result: %v", result)
	}
}

func TestNamespaceVariableIncludeAllMembers(t *testing.T) {
	ns := NewNamespaceVariable(nil)
	m1 := NewLocalVariable("a", nil, nil)
	m2 := NewLocalVariable("b", nil, nil)
	ns.SetMembers([]Variable{m1, m2})

	ns.IncludeAllMembers()

	if !ns.IsIncluded() || !m1.IsIncluded() || !m2.IsIncluded() {
		t.Fatal("expected namespace and all members included")
	}
}

func TestSyntheticNamedExportForwardsToBase(t *testing.T) {
	base := NewLocalVariable("ns", nil, &Expr{Data: &ENumber{Value: 1}})
	syn := NewSyntheticNamedExportVariable("missing", nil, base)

	if syn.GetBaseVariable() != base {
		t.Fatal("expected base variable to be the synthetic namespace")
	}
}

func TestVarDeclOnlyIncludesReachableDeclarator(t *testing.T) {
	used := NewLocalVariable("used", nil, &Expr{Data: &ENumber{Value: 1}})
	unused := NewLocalVariable("unused", nil, &Expr{Data: &ENumber{Value: 2}})
	used.Include()

	decl := &SVarDecl{
		Kind: "const",
		Declarators: []*Declarator{
			{Variable: used, Init: &Expr{Data: &ENumber{Value: 1}}},
			{Variable: unused, Init: &Expr{Data: &ENumber{Value: 2}}},
		},
	}

	ctx := NewIncludeContext()
	if !decl.ShouldBeIncluded(ctx.Effects()) {
		t.Fatal("expected statement to be included because one declarator's variable is included")
	}
	decl.Include(ctx, false)

	if !decl.Declarators[0].Included {
		t.Fatal("expected used declarator included")
	}
	if decl.Declarators[1].Included {
		t.Fatal("expected unused declarator to stay excluded")
	}
}

func TestSequenceExpressionStatementLevelDropsPureLeadingExprs(t *testing.T) {
	seq := &ESequence{
		Expressions:      []Expr{{Data: &ENumber{Value: 1}}, {Data: &ENumber{Value: 2}}},
		IsStatementLevel: true,
	}
	ctx := NewIncludeContext()
	seq.Include(ctx, false)

	if seq.Expressions[0].Data.IsIncluded() {
		t.Fatal("expected pure leading expression to stay excluded at statement level")
	}
	if seq.Expressions[1].Data.IsIncluded() {
		t.Fatal("expected pure trailing expression with no effects to stay excluded at statement level")
	}
}

func TestIfStatementPrunesDeadBranch(t *testing.T) {
	stmt := &SIf{
		Test:       Expr{Data: &EBoolean{Value: true}},
		Consequent: Stmt{Data: &SExpr{Value: Expr{Data: &ECall{Callee: Expr{Data: &EIdentifier{Name: "sideEffect"}}}}}},
		Alternate:  &Stmt{Data: &SExpr{Value: Expr{Data: &ECall{Callee: Expr{Data: &EIdentifier{Name: "other"}}}}}},
	}
	ctx := NewIncludeContext()
	stmt.Include(ctx, false)

	if !stmt.Consequent.Data.IsIncluded() {
		t.Fatal("expected statically-true branch included")
	}
	if stmt.Alternate.Data.IsIncluded() {
		t.Fatal("expected dead else branch excluded")
	}
}
