package gocalc

import "math"

// ============================================================
// Simplification
// ============================================================
//
// Simplify is a single bottom-up pass: children are simplified first and
// then one rule fires at the parent. Constant folds that would produce NaN
// or an infinity are skipped and the node is kept symbolic.

func (n *Num) Simplify() Expr { return n }
func (s *Sym) Simplify() Expr { return s }

func (a *Add) Simplify() Expr {
	l, r := a.l.Simplify(), a.r.Simplify()
	switch {
	case isNumValue(l, 0):
		return r
	case isNumValue(r, 0):
		return l
	}
	if v, ok := foldNums(l, r, func(x, y float64) float64 { return x + y }); ok {
		return v
	}
	if sameSym(l, r) {
		return MulOf(N(2), l)
	}
	return AddOf(l, r)
}

func (s *Subtract) Simplify() Expr {
	l, r := s.l.Simplify(), s.r.Simplify()
	if isNumValue(r, 0) {
		return l
	}
	if v, ok := foldNums(l, r, func(x, y float64) float64 { return x - y }); ok {
		return v
	}
	if sameSym(l, r) {
		return N(0)
	}
	return SubOf(l, r)
}

func (m *Mul) Simplify() Expr {
	l, r := m.l.Simplify(), m.r.Simplify()
	switch {
	case isNumValue(l, 0), isNumValue(r, 0):
		return N(0)
	case isNumValue(l, 1):
		return r
	case isNumValue(r, 1):
		return l
	}
	if v, ok := foldNums(l, r, func(x, y float64) float64 { return x * y }); ok {
		return v
	}
	if sameSym(l, r) {
		return PowOf(l, N(2))
	}
	return MulOf(l, r)
}

func (d *Div) Simplify() Expr {
	l, r := d.l.Simplify(), d.r.Simplify()
	switch {
	case isNumValue(l, 0):
		return N(0)
	case isNumValue(r, 1):
		return l
	}
	if v, ok := foldNums(l, r, func(x, y float64) float64 { return x / y }); ok {
		return v
	}
	if sameSym(l, r) {
		return N(1)
	}
	return DivOf(l, r)
}

func (p *Pow) Simplify() Expr {
	base, exp := p.base.Simplify(), p.exp.Simplify()
	switch {
	case isNumValue(exp, 0):
		return N(1)
	case isNumValue(exp, 1):
		return base
	case isNumValue(base, 0):
		if n, ok := exp.(*Num); ok && n.val > 0 {
			return N(0)
		}
	case isNumValue(base, 1):
		return N(1)
	}
	if v, ok := foldNums(base, exp, math.Pow); ok {
		return v
	}
	return PowOf(base, exp)
}

// Root never survives simplification; it becomes base^(1/degree).
func (r *Root) Simplify() Expr {
	return PowOf(r.base.Simplify(), DivOf(N(1), r.degree.Simplify())).Simplify()
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		if v, ok := specialValue(f.kind, n.val); ok {
			return N(v)
		}
	}
	if inner, ok := arg.(*Func); ok {
		switch {
		case f.kind == Exp && inner.kind == Ln:
			return inner.arg
		case f.kind == Ln && inner.kind == Exp:
			return inner.arg
		}
	}
	return FuncOf(f.kind, arg)
}

func (l *Log) Simplify() Expr {
	base, arg := l.base.Simplify(), l.arg.Simplify()
	b, bok := base.(*Num)
	x, xok := arg.(*Num)
	if bok && xok && b.val > 0 && b.val != 1 {
		switch {
		case x.val == 1:
			return N(0)
		case x.val == b.val:
			return N(1)
		}
	}
	return LogOf(base, arg)
}

// specialValue folds a function at the exact arguments it has a known value
// for.
func specialValue(kind FuncKind, x float64) (float64, bool) {
	switch kind {
	case Sin, Tan, Sinh, Tanh:
		if x == 0 {
			return 0, true
		}
	case Cos, Cosh:
		if x == 0 {
			return 1, true
		}
	case Arcsin:
		switch x {
		case 0:
			return 0, true
		case 1:
			return math.Pi / 2, true
		case -1:
			return -math.Pi / 2, true
		}
	case Arccos:
		switch x {
		case 1:
			return 0, true
		case -1:
			return math.Pi, true
		case 0:
			return math.Pi / 2, true
		}
	case Arctan:
		switch x {
		case 0:
			return 0, true
		case 1:
			return math.Pi / 4, true
		case -1:
			return -math.Pi / 4, true
		}
	case Exp:
		switch x {
		case 0:
			return 1, true
		case 1:
			return math.E, true
		}
	case Ln:
		switch x {
		case 1:
			return 0, true
		case math.E:
			return 1, true
		}
	}
	return 0, false
}

func foldNums(l, r Expr, op func(float64, float64) float64) (Expr, bool) {
	a, ok := l.(*Num)
	if !ok {
		return nil, false
	}
	b, ok := r.(*Num)
	if !ok {
		return nil, false
	}
	v, ok := finite(op(a.val, b.val))
	if !ok {
		return nil, false
	}
	return N(v), true
}

func sameSym(l, r Expr) bool {
	a, ok := l.(*Sym)
	if !ok {
		return false
	}
	b, ok := r.(*Sym)
	return ok && a.name == b.name
}

// Simplify normalizes e under the algebraic identities above.
func Simplify(e Expr) Expr { return e.Simplify() }
