package gocalc

import "math"

// ============================================================
// Numeric evaluation
// ============================================================

// Eval returns the value of a closed expression. It reports false when the
// tree still contains a free symbol or evaluates to NaN or an infinity.

func (n *Num) Eval() (float64, bool) { return finite(n.val) }
func (s *Sym) Eval() (float64, bool) { return 0, false }

func (a *Add) Eval() (float64, bool) {
	return evalBinary(a.l, a.r, func(x, y float64) float64 { return x + y })
}

func (s *Subtract) Eval() (float64, bool) {
	return evalBinary(s.l, s.r, func(x, y float64) float64 { return x - y })
}

func (m *Mul) Eval() (float64, bool) {
	return evalBinary(m.l, m.r, func(x, y float64) float64 { return x * y })
}

func (d *Div) Eval() (float64, bool) {
	return evalBinary(d.l, d.r, func(x, y float64) float64 { return x / y })
}

func (p *Pow) Eval() (float64, bool) { return evalBinary(p.base, p.exp, math.Pow) }

func (r *Root) Eval() (float64, bool) {
	return evalBinary(r.base, r.degree, func(b, n float64) float64 {
		// Odd integer roots of negative numbers are real.
		if b < 0 && n == math.Trunc(n) && math.Mod(n, 2) != 0 {
			return -math.Pow(-b, 1/n)
		}
		return math.Pow(b, 1/n)
	})
}

func (l *Log) Eval() (float64, bool) {
	return evalBinary(l.base, l.arg, func(b, x float64) float64 { return math.Log(x) / math.Log(b) })
}

func (f *Func) Eval() (float64, bool) {
	v, ok := f.arg.Eval()
	if !ok {
		return 0, false
	}
	return finite(funcImpls[f.kind](v))
}

var funcImpls = [...]func(float64) float64{
	Sin:    math.Sin,
	Cos:    math.Cos,
	Tan:    math.Tan,
	Arcsin: math.Asin,
	Arccos: math.Acos,
	Arctan: math.Atan,
	Exp:    math.Exp,
	Ln:     math.Log,
	Sinh:   math.Sinh,
	Cosh:   math.Cosh,
	Tanh:   math.Tanh,
}

func evalBinary(l, r Expr, op func(float64, float64) float64) (float64, bool) {
	x, ok := l.Eval()
	if !ok {
		return 0, false
	}
	y, ok := r.Eval()
	if !ok {
		return 0, false
	}
	return finite(op(x, y))
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v, false
	}
	return v, true
}

// EvalAt substitutes value for varName and evaluates the result.
func EvalAt(e Expr, varName string, value float64) (float64, bool) {
	return e.Sub(varName, N(value)).Eval()
}

// EvalEnv substitutes every binding in env and evaluates the result.
func EvalEnv(e Expr, env map[string]float64) (float64, bool) {
	for name, v := range env {
		e = e.Sub(name, N(v))
	}
	return e.Eval()
}

// ============================================================
// Substitution
// ============================================================

func (n *Num) Sub(string, Expr) Expr { return n }

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

func (a *Add) Sub(varName string, value Expr) Expr {
	return AddOf(a.l.Sub(varName, value), a.r.Sub(varName, value))
}

func (s *Subtract) Sub(varName string, value Expr) Expr {
	return SubOf(s.l.Sub(varName, value), s.r.Sub(varName, value))
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	return MulOf(m.l.Sub(varName, value), m.r.Sub(varName, value))
}

func (d *Div) Sub(varName string, value Expr) Expr {
	return DivOf(d.l.Sub(varName, value), d.r.Sub(varName, value))
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (r *Root) Sub(varName string, value Expr) Expr {
	return RootOf(r.base.Sub(varName, value), r.degree.Sub(varName, value))
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return FuncOf(f.kind, f.arg.Sub(varName, value))
}

func (l *Log) Sub(varName string, value Expr) Expr {
	return LogOf(l.base.Sub(varName, value), l.arg.Sub(varName, value))
}

// Sub replaces every occurrence of varName in expr with value.
func Sub(expr Expr, varName string, value Expr) Expr { return expr.Sub(varName, value) }

// ============================================================
// Free Symbols
// ============================================================

// FreeSymbols returns the set of variable names occurring in e.
func FreeSymbols(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	walk(e, func(n Expr) {
		if s, ok := n.(*Sym); ok {
			out[s.name] = struct{}{}
		}
	})
	return out
}

// Contains reports whether varName occurs anywhere in e.
func Contains(e Expr, varName string) bool {
	found := false
	walk(e, func(n Expr) {
		if s, ok := n.(*Sym); ok && s.name == varName {
			found = true
		}
	})
	return found
}

// Children returns the direct sub-expressions of e in order.
func Children(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return []Expr{v.l, v.r}
	case *Subtract:
		return []Expr{v.l, v.r}
	case *Mul:
		return []Expr{v.l, v.r}
	case *Div:
		return []Expr{v.l, v.r}
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Root:
		return []Expr{v.base, v.degree}
	case *Log:
		return []Expr{v.base, v.arg}
	case *Func:
		return []Expr{v.arg}
	}
	return nil
}

// withChildren rebuilds e with new children in Children order.
func withChildren(e Expr, cs []Expr) Expr {
	switch v := e.(type) {
	case *Add:
		return AddOf(cs[0], cs[1])
	case *Subtract:
		return SubOf(cs[0], cs[1])
	case *Mul:
		return MulOf(cs[0], cs[1])
	case *Div:
		return DivOf(cs[0], cs[1])
	case *Pow:
		return PowOf(cs[0], cs[1])
	case *Root:
		return RootOf(cs[0], cs[1])
	case *Log:
		return LogOf(cs[0], cs[1])
	case *Func:
		return FuncOf(v.kind, cs[0])
	}
	return e
}

func walk(e Expr, fn func(Expr)) {
	fn(e)
	for _, c := range Children(e) {
		walk(c, fn)
	}
}

// Size counts the nodes of e.
func Size(e Expr) int {
	n := 0
	walk(e, func(Expr) { n++ })
	return n
}
