package gocalc

import "strings"

// ============================================================
// LaTeX rendering
// ============================================================

var latexFuncNames = [...]string{
	Sin:    `\sin`,
	Cos:    `\cos`,
	Tan:    `\tan`,
	Arcsin: `\arcsin`,
	Arccos: `\arccos`,
	Arctan: `\arctan`,
	Exp:    `\exp`,
	Ln:     `\ln`,
	Sinh:   `\sinh`,
	Cosh:   `\cosh`,
	Tanh:   `\tanh`,
}

func (n *Num) LaTeX() string {
	s := formatFloat(n.val)
	if i := strings.IndexAny(s, "e"); i >= 0 {
		return s[:i] + `\times 10^{` + s[i+1:] + "}"
	}
	return s
}

func (s *Sym) LaTeX() string {
	if len(s.name) > 1 {
		return `\mathrm{` + s.name + "}"
	}
	return s.name
}

func (a *Add) LaTeX() string {
	if n, ok := a.r.(*Num); ok && n.val < 0 {
		return a.l.LaTeX() + " - " + N(-n.val).LaTeX()
	}
	return a.l.LaTeX() + " + " + a.r.LaTeX()
}

func (s *Subtract) LaTeX() string {
	return s.l.LaTeX() + " - " + latexWrapIf(s.r, isAdditive(s.r))
}

func (m *Mul) LaTeX() string {
	switch {
	case isNumValue(m.l, -1):
		return "-" + latexWrapIf(m.r, isAdditive(m.r))
	case isNumValue(m.l, 1):
		return m.r.LaTeX()
	case isNumValue(m.r, 1):
		return m.l.LaTeX()
	}
	sep := " "
	if _, ok := m.r.(*Num); ok {
		sep = ` \cdot `
	}
	return latexWrapIf(m.l, isAdditive(m.l)) + sep + latexWrapIf(m.r, isAdditive(m.r) || isNegativeNum(m.r))
}

func (d *Div) LaTeX() string {
	return `\frac{` + d.l.LaTeX() + "}{" + d.r.LaTeX() + "}"
}

func (p *Pow) LaTeX() string {
	return latexWrapIf(p.base, !isAtomic(p.base) || isFuncNode(p.base)) + "^{" + p.exp.LaTeX() + "}"
}

func (r *Root) LaTeX() string {
	if isNumValue(r.degree, 2) {
		return `\sqrt{` + r.base.LaTeX() + "}"
	}
	return `\sqrt[` + r.degree.LaTeX() + "]{" + r.base.LaTeX() + "}"
}

func (f *Func) LaTeX() string {
	if f.kind == Exp {
		return "e^{" + f.arg.LaTeX() + "}"
	}
	return latexFuncNames[f.kind] + `\left(` + f.arg.LaTeX() + `\right)`
}

func (l *Log) LaTeX() string {
	return `\log_{` + l.base.LaTeX() + `}\left(` + l.arg.LaTeX() + `\right)`
}

func isFuncNode(e Expr) bool {
	switch e.(type) {
	case *Func, *Log:
		return true
	}
	return false
}

func latexWrapIf(e Expr, paren bool) string {
	if paren {
		return `\left(` + e.LaTeX() + `\right)`
	}
	return e.LaTeX()
}

// LaTeX renders e as a LaTeX math fragment.
func LaTeX(e Expr) string { return e.LaTeX() }
