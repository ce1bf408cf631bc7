package gocalc

import "sync"

// IntegrationRule pairs an integrand pattern with its antiderivative.
//
// In Pattern and Result the symbol "x" stands for the integration variable.
// Any other symbol is a wildcard that binds a constant; repeated wildcards
// must bind the same value. When, if set, filters the bindings.
type IntegrationRule struct {
	Name    string
	Pattern Expr
	Result  Expr
	When    func(bindings map[string]float64) bool
}

// RuleTable is an ordered, read-only list of integration rules. The first
// matching rule wins.
type RuleTable struct {
	rules []IntegrationRule
}

var defaultRules = sync.OnceValue(newRuleTable)

// Rules returns the process-wide rule table, building it on first use.
func Rules() *RuleTable { return defaultRules() }

const patternVar = "x"

func newRuleTable() *RuleTable {
	x, n, a := S(patternVar), S("n"), S("a")
	sqrtOneMinusX2 := SqrtOf(SubOf(N(1), PowOf(x, N(2))))
	return &RuleTable{rules: []IntegrationRule{
		{Name: "reciprocal_power", Pattern: PowOf(x, N(-1)), Result: LnOf(x)},
		{Name: "reciprocal", Pattern: DivOf(N(1), x), Result: LnOf(x)},
		{Name: "power", Pattern: PowOf(x, n), Result: DivOf(PowOf(x, AddOf(n, N(1))), AddOf(n, N(1)))},
		{Name: "sin", Pattern: SinOf(x), Result: Neg(CosOf(x))},
		{Name: "cos", Pattern: CosOf(x), Result: SinOf(x)},
		{Name: "tan", Pattern: TanOf(x), Result: Neg(LnOf(CosOf(x)))},
		{Name: "exp", Pattern: ExpOf(x), Result: ExpOf(x)},
		{Name: "ln", Pattern: LnOf(x), Result: SubOf(MulOf(x, LnOf(x)), x)},
		{Name: "sinh", Pattern: SinhOf(x), Result: CoshOf(x)},
		{Name: "cosh", Pattern: CoshOf(x), Result: SinhOf(x)},
		{Name: "tanh", Pattern: TanhOf(x), Result: LnOf(CoshOf(x))},
		{Name: "arcsin", Pattern: ArcsinOf(x), Result: AddOf(MulOf(x, ArcsinOf(x)), sqrtOneMinusX2)},
		{Name: "arccos", Pattern: ArccosOf(x), Result: SubOf(MulOf(x, ArccosOf(x)), sqrtOneMinusX2)},
		{Name: "arctan", Pattern: ArctanOf(x), Result: SubOf(MulOf(x, ArctanOf(x)), DivOf(LnOf(AddOf(N(1), PowOf(x, N(2)))), N(2)))},
		{Name: "sin_linear", Pattern: SinOf(MulOf(a, x)), Result: MulOf(DivOf(N(-1), a), CosOf(MulOf(a, x))), When: nonZero("a")},
		{Name: "cos_linear", Pattern: CosOf(MulOf(a, x)), Result: MulOf(DivOf(N(1), a), SinOf(MulOf(a, x))), When: nonZero("a")},
		{Name: "exp_linear", Pattern: ExpOf(MulOf(a, x)), Result: MulOf(DivOf(N(1), a), ExpOf(MulOf(a, x))), When: nonZero("a")},
		{Name: "exponential", Pattern: PowOf(a, x), Result: DivOf(PowOf(a, x), LnOf(a)), When: func(b map[string]float64) bool {
			return b["a"] > 0 && b["a"] != 1
		}},
	}}
}

func nonZero(name string) func(map[string]float64) bool {
	return func(b map[string]float64) bool { return b[name] != 0 }
}

// Len returns the number of rules.
func (t *RuleTable) Len() int { return len(t.rules) }

// All returns a copy of the rules in match order.
func (t *RuleTable) All() []IntegrationRule {
	return append([]IntegrationRule(nil), t.rules...)
}

// Lookup returns the antiderivative of e from the first rule whose pattern
// matches. The result is instantiated but not simplified.
func (t *RuleTable) Lookup(e Expr, varName string) (Expr, bool) {
	res, _, ok := t.lookup(e, varName)
	return res, ok
}

func (t *RuleTable) lookup(e Expr, varName string) (Expr, string, bool) {
	for _, r := range t.rules {
		b := map[string]float64{}
		if !matchPattern(r.Pattern, e, varName, b) {
			continue
		}
		if r.When != nil && !r.When(b) {
			continue
		}
		if res, ok := instantiate(r.Result, varName, b); ok {
			return res, r.Name, true
		}
	}
	return nil, "", false
}

func matchPattern(p, e Expr, varName string, b map[string]float64) bool {
	switch pv := p.(type) {
	case *Sym:
		if pv.name == patternVar {
			s, ok := e.(*Sym)
			return ok && s.name == varName
		}
		n, ok := e.(*Num)
		if !ok {
			return false
		}
		if bound, seen := b[pv.name]; seen {
			return bound == n.val
		}
		b[pv.name] = n.val
		return true
	case *Num:
		return pv.Equal(e)
	case *Func:
		ef, ok := e.(*Func)
		return ok && ef.kind == pv.kind && matchPattern(pv.arg, ef.arg, varName, b)
	}
	if p.exprType() != e.exprType() {
		return false
	}
	pc, ec := Children(p), Children(e)
	for i := range pc {
		if !matchPattern(pc[i], ec[i], varName, b) {
			return false
		}
	}
	return true
}

// instantiate fills a result template. Arithmetic nodes whose operands are
// all constants are folded; a fold to NaN or infinity rejects the rule.
func instantiate(t Expr, varName string, b map[string]float64) (Expr, bool) {
	switch tv := t.(type) {
	case *Sym:
		if tv.name == patternVar {
			return S(varName), true
		}
		v, ok := b[tv.name]
		return N(v), ok
	case *Num:
		return tv, true
	}
	tc := Children(t)
	out := make([]Expr, len(tc))
	allNum := true
	for i, c := range tc {
		ic, ok := instantiate(c, varName, b)
		if !ok {
			return nil, false
		}
		if _, isNum := ic.(*Num); !isNum {
			allNum = false
		}
		out[i] = ic
	}
	e := withChildren(t, out)
	if allNum && isArithmetic(e) {
		v, ok := e.Eval()
		if !ok {
			return nil, false
		}
		return N(v), true
	}
	return e, true
}

func isArithmetic(e Expr) bool {
	switch e.(type) {
	case *Add, *Subtract, *Mul, *Div, *Pow:
		return true
	}
	return false
}
