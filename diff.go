package gocalc

// ============================================================
// Differentiation
// ============================================================
//
// Diff never simplifies; callers run Simplify on the result.

func (n *Num) Diff(string) Expr { return N(0) }

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

func (a *Add) Diff(varName string) Expr {
	return AddOf(a.l.Diff(varName), a.r.Diff(varName))
}

func (s *Subtract) Diff(varName string) Expr {
	return SubOf(s.l.Diff(varName), s.r.Diff(varName))
}

// (fg)' = f'g + fg'
func (m *Mul) Diff(varName string) Expr {
	return AddOf(MulOf(m.l.Diff(varName), m.r), MulOf(m.l, m.r.Diff(varName)))
}

// (f/g)' = (f'g - fg')/g^2
func (d *Div) Diff(varName string) Expr {
	return DivOf(
		SubOf(MulOf(d.l.Diff(varName), d.r), MulOf(d.l, d.r.Diff(varName))),
		PowOf(d.r, N(2)),
	)
}

func (p *Pow) Diff(varName string) Expr {
	f, g := p.base, p.exp
	df := f.Diff(varName)
	if n, ok := g.(*Num); ok {
		return MulOf(MulOf(n, PowOf(f, N(n.val-1))), df)
	}
	expHasVar, baseHasVar := Contains(g, varName), Contains(f, varName)
	switch {
	case !expHasVar:
		// g·f^(g−1)·f'
		return MulOf(MulOf(g, PowOf(f, SubOf(g, N(1)))), df)
	case !baseHasVar:
		// f^g·ln(f)·g'
		return MulOf(MulOf(p, LnOf(f)), g.Diff(varName))
	}
	// f^g·(g'·ln f + g·f'/f)
	return MulOf(p, AddOf(
		MulOf(g.Diff(varName), LnOf(f)),
		DivOf(MulOf(g, df), f),
	))
}

func (r *Root) Diff(varName string) Expr {
	return PowOf(r.base, DivOf(N(1), r.degree)).Diff(varName)
}

func (f *Func) Diff(varName string) Expr {
	u := f.arg
	du := u.Diff(varName)
	var outer Expr
	switch f.kind {
	case Sin:
		outer = CosOf(u)
	case Cos:
		outer = Neg(SinOf(u))
	case Tan:
		outer = DivOf(N(1), PowOf(CosOf(u), N(2)))
	case Arcsin:
		outer = DivOf(N(1), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
	case Arccos:
		outer = Neg(DivOf(N(1), SqrtOf(SubOf(N(1), PowOf(u, N(2))))))
	case Arctan:
		outer = DivOf(N(1), AddOf(N(1), PowOf(u, N(2))))
	case Exp:
		outer = ExpOf(u)
	case Ln:
		return DivOf(du, u)
	case Sinh:
		outer = CoshOf(u)
	case Cosh:
		outer = SinhOf(u)
	case Tanh:
		outer = SubOf(N(1), PowOf(TanhOf(u), N(2)))
	default:
		return N(0)
	}
	return MulOf(outer, du)
}

func (l *Log) Diff(varName string) Expr {
	if Contains(l.base, varName) {
		return DivOf(LnOf(l.arg), LnOf(l.base)).Diff(varName)
	}
	// u'/(u·ln b)
	return DivOf(l.arg.Diff(varName), MulOf(l.arg, LnOf(l.base)))
}

// Diff returns d(expr)/d(varName), unsimplified.
func Diff(expr Expr, varName string) Expr { return expr.Diff(varName) }

// Diff2 returns the simplified second derivative.
func Diff2(expr Expr, varName string) Expr { return DiffN(expr, varName, 2) }

// DiffN returns the simplified n-th derivative.
func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = result.Diff(varName).Simplify()
	}
	return result
}
