// Package gocalc provides a small symbolic calculus kernel for Go.
//
// Design goals:
//   - Immutable expression trees with structural equality
//   - Total differentiation and simplification
//   - Integration by rule table, direct decomposition, parts and substitution,
//     with an explicit recursion and cycle guard
//   - JSON, LaTeX and tool-call APIs for embedding in services and agents
package gocalc

import (
	"math"
	"strconv"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable expression tree node. Every transformation returns
// a new tree; children are never mutated after construction.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (float64, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: floating point constant
// ============================================================

type Num struct{ val float64 }

func N(v float64) *Num { return &Num{val: v} }

func (n *Num) Value() float64 { return n.val }
func (n *Num) IsZero() bool   { return n.val == 0 }
func (n *Num) IsOne() bool    { return n.val == 1 }
func (n *Num) IsNegOne() bool { return n.val == -1 }
func (n *Num) IsInteger() bool {
	return !math.IsInf(n.val, 0) && n.val == math.Trunc(n.val)
}
func (n *Num) IsNegative() bool { return n.val < 0 }

// Equal treats two NaN constants as equal so that structural equality stays
// reflexive.
func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	if !ok {
		return false
	}
	if math.IsNaN(n.val) && math.IsNaN(o.val) {
		return true
	}
	return n.val == o.val
}

func (n *Num) exprType() string { return "num" }
func (n *Num) String() string   { return formatFloat(n.val) }

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Name() string   { return s.name }
func (s *Sym) String() string { return s.name }
func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}
func (s *Sym) exprType() string { return "sym" }

// ============================================================
// Binary arithmetic: Add, Subtract, Mul, Div
// ============================================================

type binary struct{ l, r Expr }

func (b binary) Left() Expr  { return b.l }
func (b binary) Right() Expr { return b.r }

type Add struct{ binary }
type Subtract struct{ binary }
type Mul struct{ binary }
type Div struct{ binary }

func AddOf(l, r Expr) Expr { return &Add{binary{l, r}} }
func SubOf(l, r Expr) Expr { return &Subtract{binary{l, r}} }
func MulOf(l, r Expr) Expr { return &Mul{binary{l, r}} }
func DivOf(l, r Expr) Expr { return &Div{binary{l, r}} }

// Neg returns -1*e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

func (a *Add) exprType() string      { return "add" }
func (s *Subtract) exprType() string { return "sub" }
func (m *Mul) exprType() string      { return "mul" }
func (d *Div) exprType() string      { return "div" }

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && a.l.Equal(o.l) && a.r.Equal(o.r)
}

func (s *Subtract) Equal(other Expr) bool {
	o, ok := other.(*Subtract)
	return ok && s.l.Equal(o.l) && s.r.Equal(o.r)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && m.l.Equal(o.l) && m.r.Equal(o.r)
}

func (d *Div) Equal(other Expr) bool {
	o, ok := other.(*Div)
	return ok && d.l.Equal(o.l) && d.r.Equal(o.r)
}

func (a *Add) String() string {
	if n, ok := a.r.(*Num); ok && n.val < 0 {
		return a.l.String() + " - " + formatFloat(-n.val)
	}
	if m, ok := a.r.(*Mul); ok && isNumValue(m.l, -1) {
		return a.l.String() + " - " + wrapIf(m.r, isAdditive(m.r))
	}
	return a.l.String() + " + " + a.r.String()
}

func (s *Subtract) String() string {
	return s.l.String() + " - " + wrapIf(s.r, isAdditive(s.r))
}

func (m *Mul) String() string {
	switch {
	case isNumValue(m.l, -1):
		return "-" + wrapIf(m.r, isAdditive(m.r))
	case isNumValue(m.r, -1):
		return "-" + wrapIf(m.l, isAdditive(m.l))
	case isNumValue(m.l, 1):
		return m.r.String()
	case isNumValue(m.r, 1):
		return m.l.String()
	}
	return wrapIf(m.l, isAdditive(m.l)) + "*" + wrapIf(m.r, isAdditive(m.r) || isNegativeNum(m.r))
}

func (d *Div) String() string {
	return wrapIf(d.l, isAdditive(d.l)) + "/" +
		wrapIf(d.r, isAdditive(d.r) || isMultiplicative(d.r) || isNegativeNum(d.r))
}

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return &Pow{base: base, exp: exp} }

func (p *Pow) Base() Expr       { return p.base }
func (p *Pow) ExpExpr() Expr    { return p.exp }
func (p *Pow) exprType() string { return "pow" }
func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) String() string {
	return wrapIf(p.base, !isAtomic(p.base)) + "^" + wrapIf(p.exp, !isAtomic(p.exp))
}

// ============================================================
// Root: degree-th root of base
// ============================================================

type Root struct{ base, degree Expr }

func RootOf(base, degree Expr) Expr { return &Root{base: base, degree: degree} }

// SqrtOf returns the square root of arg as a Root node.
func SqrtOf(arg Expr) Expr { return RootOf(arg, N(2)) }

func (r *Root) Base() Expr       { return r.base }
func (r *Root) Degree() Expr     { return r.degree }
func (r *Root) exprType() string { return "root" }
func (r *Root) Equal(other Expr) bool {
	o, ok := other.(*Root)
	return ok && r.base.Equal(o.base) && r.degree.Equal(o.degree)
}
func (r *Root) String() string {
	return "√[" + r.degree.String() + "](" + r.base.String() + ")"
}

// ============================================================
// Func: unary transcendental functions
// ============================================================

// FuncKind names a unary transcendental function.
type FuncKind int

const (
	Sin FuncKind = iota
	Cos
	Tan
	Arcsin
	Arccos
	Arctan
	Exp
	Ln
	Sinh
	Cosh
	Tanh
)

var funcNames = [...]string{
	Sin:    "sin",
	Cos:    "cos",
	Tan:    "tan",
	Arcsin: "arcsin",
	Arccos: "arccos",
	Arctan: "arctan",
	Exp:    "exp",
	Ln:     "ln",
	Sinh:   "sinh",
	Cosh:   "cosh",
	Tanh:   "tanh",
}

func (k FuncKind) String() string {
	if k < 0 || int(k) >= len(funcNames) {
		return "func(" + strconv.Itoa(int(k)) + ")"
	}
	return funcNames[k]
}

// FuncKindByName resolves a function name such as "sin" or "arctan".
func FuncKindByName(name string) (FuncKind, bool) {
	for i, n := range funcNames {
		if n == name {
			return FuncKind(i), true
		}
	}
	return 0, false
}

type Func struct {
	kind FuncKind
	arg  Expr
}

func FuncOf(kind FuncKind, arg Expr) Expr { return &Func{kind: kind, arg: arg} }

func SinOf(arg Expr) Expr    { return FuncOf(Sin, arg) }
func CosOf(arg Expr) Expr    { return FuncOf(Cos, arg) }
func TanOf(arg Expr) Expr    { return FuncOf(Tan, arg) }
func ArcsinOf(arg Expr) Expr { return FuncOf(Arcsin, arg) }
func ArccosOf(arg Expr) Expr { return FuncOf(Arccos, arg) }
func ArctanOf(arg Expr) Expr { return FuncOf(Arctan, arg) }
func ExpOf(arg Expr) Expr    { return FuncOf(Exp, arg) }
func LnOf(arg Expr) Expr     { return FuncOf(Ln, arg) }
func SinhOf(arg Expr) Expr   { return FuncOf(Sinh, arg) }
func CoshOf(arg Expr) Expr   { return FuncOf(Cosh, arg) }
func TanhOf(arg Expr) Expr   { return FuncOf(Tanh, arg) }

func (f *Func) Kind() FuncKind   { return f.kind }
func (f *Func) Arg() Expr        { return f.arg }
func (f *Func) exprType() string { return "func" }
func (f *Func) String() string   { return f.kind.String() + "(" + f.arg.String() + ")" }
func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.kind == o.kind && f.arg.Equal(o.arg)
}

// ============================================================
// Log: logarithm with explicit base
// ============================================================

type Log struct{ base, arg Expr }

func LogOf(base, arg Expr) Expr { return &Log{base: base, arg: arg} }

func (l *Log) Base() Expr       { return l.base }
func (l *Log) Arg() Expr        { return l.arg }
func (l *Log) exprType() string { return "log" }
func (l *Log) String() string   { return "log(" + l.base.String() + ", " + l.arg.String() + ")" }
func (l *Log) Equal(other Expr) bool {
	o, ok := other.(*Log)
	return ok && l.base.Equal(o.base) && l.arg.Equal(o.arg)
}

// ============================================================
// Printing helpers
// ============================================================

func isNumValue(e Expr, v float64) bool {
	n, ok := e.(*Num)
	return ok && n.val == v
}

// shown returns the node that e prints as once multiplications by 1 are
// dropped.
func shown(e Expr) Expr {
	for {
		m, ok := e.(*Mul)
		switch {
		case !ok:
			return e
		case isNumValue(m.l, 1):
			e = m.r
		case isNumValue(m.r, 1):
			e = m.l
		default:
			return e
		}
	}
}

func isNegativeNum(e Expr) bool {
	n, ok := shown(e).(*Num)
	return ok && n.val < 0
}

func isAdditive(e Expr) bool {
	switch shown(e).(type) {
	case *Add, *Subtract:
		return true
	}
	return false
}

func isMultiplicative(e Expr) bool {
	switch shown(e).(type) {
	case *Mul, *Div:
		return true
	}
	return false
}

func isAtomic(e Expr) bool {
	switch v := shown(e).(type) {
	case *Num:
		return v.val >= 0
	case *Sym, *Func, *Log, *Root:
		return true
	}
	return false
}

func wrapIf(e Expr, paren bool) string {
	if paren {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// String renders e in infix notation.
func String(e Expr) string { return e.String() }
