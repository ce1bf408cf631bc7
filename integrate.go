package gocalc

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strconv"
)

// ============================================================
// Integration engine
// ============================================================
//
// Integrate tries, in order: the rule table, then the Direct, ByParts and
// Substitution strategies against the whole expression. Strategies recurse
// through IntegrateWithState with the same state, so depth and the visited
// stack are shared across siblings and nested attempts. Results are not
// simplified.

// Integrator holds integration settings. The zero value is not usable; build
// one with NewIntegrator.
type Integrator struct {
	maxDepth int
	logger   *slog.Logger
	rules    *RuleTable
}

// Option configures an Integrator.
type Option func(*Integrator)

// WithMaxDepth sets the recursion bound. Non-positive values keep
// DefaultMaxDepth; values above MaxAllowedDepth are clamped.
func WithMaxDepth(n int) Option {
	return func(in *Integrator) {
		if n > 0 {
			in.maxDepth = min(n, MaxAllowedDepth)
		}
	}
}

// WithLogger sets the logger used for debug traces of strategy attempts.
func WithLogger(l *slog.Logger) Option {
	return func(in *Integrator) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithRules replaces the process-wide rule table.
func WithRules(t *RuleTable) Option {
	return func(in *Integrator) { in.rules = t }
}

func NewIntegrator(opts ...Option) *Integrator {
	in := &Integrator{
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// MaxDepth returns the configured recursion bound.
func (in *Integrator) MaxDepth() int { return in.maxDepth }

// DefaultIntegrator is used by the package-level Integrate.
var DefaultIntegrator = NewIntegrator()

// Integrate returns an antiderivative of expr with respect to varName using
// DefaultIntegrator.
func Integrate(expr Expr, varName string) (Expr, error) {
	return DefaultIntegrator.Integrate(expr, varName)
}

// Integrate validates the input and integrates it with a fresh state.
func (in *Integrator) Integrate(expr Expr, varName string) (Expr, error) {
	if err := validateIntegrand(expr, varName); err != nil {
		return nil, err
	}
	return in.IntegrateWithState(expr, varName, NewIntegrationState(in.maxDepth))
}

var strategyOrder = [...]Method{Direct, ByParts, Substitution}

// IntegrateWithState is the recursive entry point used by the strategies.
func (in *Integrator) IntegrateWithState(expr Expr, varName string, st *IntegrationState) (Expr, error) {
	if st.ShouldPrune(expr) {
		in.trace("integration pruned", expr, st)
		return nil, newIntegrationError(CodeMaxDepthExceeded, st.Method())
	}
	if res, name, ok := in.table().lookup(expr, varName); ok {
		in.trace("integration rule matched", expr, st, slog.String("rule", name))
		return res, nil
	}

	depthHit := false
	for _, m := range strategyOrder {
		prev := st.Method()
		st.SetMethod(m)
		res, err := in.attempt(m, expr, varName, st)
		st.SetMethod(prev)
		if err == nil {
			in.trace("integration strategy succeeded", expr, st, slog.String("method", m.String()))
			return res, nil
		}
		in.trace("integration strategy failed", expr, st, slog.String("method", m.String()), slog.String("error", err.Error()))
		if IsMaxDepthError(err) {
			depthHit = true
		}
	}
	if depthHit {
		return nil, newIntegrationError(CodeMaxDepthExceeded, st.Method())
	}
	return nil, newIntegrationError(CodeNoMethodFound, st.Method())
}

func (in *Integrator) attempt(m Method, e Expr, v string, st *IntegrationState) (Expr, error) {
	switch m {
	case Direct:
		return in.direct(e, v, st)
	case ByParts:
		return in.byParts(e, v, st)
	case Substitution:
		return in.substitution(e, v, st)
	}
	return nil, newIntegrationError(CodeNotImplemented, m)
}

func (in *Integrator) table() *RuleTable {
	if in.rules != nil {
		return in.rules
	}
	return Rules()
}

func (in *Integrator) trace(msg string, e Expr, st *IntegrationState, attrs ...slog.Attr) {
	ctx := context.Background()
	if !in.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs = append(attrs, slog.String("expr", e.String()), slog.Int("depth", st.Depth()))
	in.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

func validateIntegrand(e Expr, varName string) error {
	if e == nil {
		return NewInvalidInputError("nil expression")
	}
	if !IsIdentifier(varName) {
		return NewInvalidInputError("variable name " + strconv.Quote(varName))
	}
	var bad *Num
	walk(e, func(n Expr) {
		if c, ok := n.(*Num); ok && bad == nil && (math.IsNaN(c.val) || math.IsInf(c.val, 0)) {
			bad = c
		}
	})
	if bad != nil {
		return NewUnsupportedOperationError("non-finite constant " + bad.String())
	}
	return nil
}

// IsIdentifier reports whether s can name a variable.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || isLetter(r) || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

// ============================================================
// Direct
// ============================================================

// direct handles closed forms that need only linear decomposition.
func (in *Integrator) direct(e Expr, v string, st *IntegrationState) (Expr, error) {
	if !Contains(e, v) {
		return MulOf(e, S(v)), nil
	}
	switch t := e.(type) {
	case *Sym:
		return DivOf(PowOf(t, N(2)), N(2)), nil
	case *Add:
		l, r, err := in.integratePair(t.l, t.r, v, st)
		if err != nil {
			return nil, err
		}
		return AddOf(l, r), nil
	case *Subtract:
		l, r, err := in.integratePair(t.l, t.r, v, st)
		if err != nil {
			return nil, err
		}
		return SubOf(l, r), nil
	case *Mul:
		if !Contains(t.l, v) {
			r, err := in.IntegrateWithState(t.r, v, st)
			if err != nil {
				return nil, err
			}
			return MulOf(t.l, r), nil
		}
		if !Contains(t.r, v) {
			l, err := in.IntegrateWithState(t.l, v, st)
			if err != nil {
				return nil, err
			}
			return MulOf(t.r, l), nil
		}
	case *Div:
		if !Contains(t.r, v) {
			l, err := in.IntegrateWithState(t.l, v, st)
			if err != nil {
				return nil, err
			}
			return DivOf(l, t.r), nil
		}
		// c/f as c * (1/f); 1/f itself is left to the table and substitution.
		if !Contains(t.l, v) && !isNumValue(t.l, 1) {
			r, err := in.IntegrateWithState(DivOf(N(1), t.r), v, st)
			if err != nil {
				return nil, err
			}
			return MulOf(t.l, r), nil
		}
	case *Root:
		if !Contains(t.degree, v) {
			return in.IntegrateWithState(PowOf(t.base, DivOf(N(1), t.degree).Simplify()), v, st)
		}
	}
	return nil, newIntegrationError(CodeNoMethodFound, Direct)
}

func (in *Integrator) integratePair(a, b Expr, v string, st *IntegrationState) (Expr, Expr, error) {
	l, err := in.IntegrateWithState(a, v, st)
	if err != nil {
		return nil, nil, err
	}
	r, err := in.IntegrateWithState(b, v, st)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// ============================================================
// By parts
// ============================================================

// difficulty scores how unpleasant a factor is to differentiate repeatedly.
// The lower-scored factor of a product becomes u.
func difficulty(e Expr) int {
	switch t := e.(type) {
	case *Num:
		return 1
	case *Sym:
		return 2
	case *Add, *Subtract:
		return 3
	case *Mul:
		return 4
	case *Div:
		return 5
	case *Pow:
		return 6
	case *Func:
		switch t.kind {
		case Sin, Cos, Exp:
			return 4
		case Tan:
			return 5
		case Ln:
			return 7
		}
	}
	return 10
}

// byParts applies ∫u dv = uv − ∫v du to a product.
func (in *Integrator) byParts(e Expr, v string, st *IntegrationState) (Expr, error) {
	m, ok := e.(*Mul)
	if !ok {
		return nil, newIntegrationError(CodeNoMethodFound, ByParts)
	}
	u, dv := m.l, m.r
	if difficulty(m.r) < difficulty(m.l) {
		u, dv = m.r, m.l
	}

	st.Push(e)
	defer st.Pop()

	du := u.Diff(v)
	vInt, err := in.IntegrateWithState(dv, v, st)
	if err != nil {
		return nil, err
	}
	w, err := in.IntegrateWithState(MulOf(vInt, du), v, st)
	if err != nil {
		return nil, err
	}
	return SubOf(MulOf(u, vInt), w), nil
}

// ============================================================
// Substitution
// ============================================================

// uSub describes ∫F(g(x))·c·g'(x) dx = c·∫F(u) du with u = g(x).
type uSub struct {
	inner Expr
	outer func(u Expr) Expr
	scale float64
	// divide is set for linear substitutions, where the result is divided by
	// the constant slope instead of multiplied by a factor.
	divide bool
}

var samplePoints = [...]float64{0.37, 0.61, 0.89, 1.23, 1.71}

// substitution handles two shapes: a function of a linear argument, and a
// product in which the remaining factors are a constant multiple of the
// derivative of a function's argument. Anything else is not implemented.
func (in *Integrator) substitution(e Expr, v string, st *IntegrationState) (Expr, error) {
	sub, ok := linearSubstitution(e, v)
	if !ok {
		sub, ok = derivativeSubstitution(e, v)
	}
	if !ok {
		return nil, newIntegrationError(CodeNotImplemented, Substitution)
	}

	st.Push(e)
	defer st.Pop()

	u := freshVar(e, v)
	res, err := in.IntegrateWithState(sub.outer(S(u)), u, st)
	if err != nil {
		return nil, err
	}
	res = res.Sub(u, sub.inner)
	switch {
	case sub.scale == 1:
		return res, nil
	case sub.divide:
		return DivOf(res, N(sub.scale)), nil
	}
	return MulOf(N(sub.scale), res), nil
}

// splitComposite returns g and F for e = F(g).
func splitComposite(e Expr, v string) (Expr, func(Expr) Expr, bool) {
	switch t := e.(type) {
	case *Func:
		return t.arg, func(u Expr) Expr { return FuncOf(t.kind, u) }, true
	case *Pow:
		if !Contains(t.exp, v) {
			return t.base, func(u Expr) Expr { return PowOf(u, t.exp) }, true
		}
		if !Contains(t.base, v) {
			return t.exp, func(u Expr) Expr { return PowOf(t.base, u) }, true
		}
	case *Root:
		if !Contains(t.degree, v) {
			return t.base, func(u Expr) Expr { return RootOf(u, t.degree) }, true
		}
	case *Div:
		if !Contains(t.l, v) {
			return t.r, func(u Expr) Expr {
				if isNumValue(t.l, 1) {
					return DivOf(t.l, u)
				}
				return MulOf(t.l, DivOf(N(1), u))
			}, true
		}
	}
	return nil, nil, false
}

func isVar(e Expr, v string) bool {
	s, ok := e.(*Sym)
	return ok && s.name == v
}

func linearSubstitution(e Expr, v string) (uSub, bool) {
	g, outer, ok := splitComposite(e, v)
	if !ok || isVar(g, v) || !Contains(g, v) {
		return uSub{}, false
	}
	slope, ok := g.Diff(v).Simplify().(*Num)
	if !ok || slope.val == 0 {
		return uSub{}, false
	}
	return uSub{inner: g, outer: outer, scale: slope.val, divide: true}, true
}

func derivativeSubstitution(e Expr, v string) (uSub, bool) {
	if _, ok := e.(*Mul); !ok {
		return uSub{}, false
	}
	factors := flattenMul(e)
	for i, f := range factors {
		g, outer, ok := splitComposite(f, v)
		if !ok || isVar(g, v) || !Contains(g, v) {
			continue
		}
		var rest Expr = N(1)
		for j, h := range factors {
			if j == i {
				continue
			}
			if isNumValue(rest, 1) {
				rest = h
			} else {
				rest = MulOf(rest, h)
			}
		}
		if c, ok := constantRatio(rest, g.Diff(v), v); ok {
			return uSub{inner: g, outer: outer, scale: c}, true
		}
	}
	return uSub{}, false
}

func flattenMul(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return append(flattenMul(m.l), flattenMul(m.r)...)
	}
	return []Expr{e}
}

// constantRatio reports whether h/dg takes the same value at every sample
// point, and returns it.
func constantRatio(h, dg Expr, v string) (float64, bool) {
	var c float64
	for i, x := range samplePoints {
		hv, ok := EvalAt(h, v, x)
		if !ok {
			return 0, false
		}
		dv, ok := EvalAt(dg, v, x)
		if !ok || math.Abs(dv) < 1e-12 {
			return 0, false
		}
		r := hv / dv
		if i == 0 {
			c = r
			continue
		}
		if math.Abs(r-c) > 1e-9*math.Max(1, math.Abs(c)) {
			return 0, false
		}
	}
	if c == 0 {
		return 0, false
	}
	if rc := math.Round(c); math.Abs(c-rc) < 1e-9 {
		c = rc
	}
	return c, true
}

func freshVar(e Expr, v string) string {
	used := FreeSymbols(e)
	used[v] = struct{}{}
	name := "u"
	for i := 1; ; i++ {
		if _, taken := used[name]; !taken {
			return name
		}
		name = "u" + strconv.Itoa(i)
	}
}
