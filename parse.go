package gocalc

import (
	"fmt"
	"math"
	"strconv"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ============================================================
// Parser
// ============================================================
//
// Grammar, lowest precedence first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ "^" unary ]
//	primary = number | "(" expr ")" | name [ "(" args ")" ]
//
// "^" is right-associative and binds tighter than unary minus, so -x^2 is
// -(x^2) and a^b^c is a^(b^c). The name e is Euler's number, except that
// e immediately followed by "^" is exp of the exponent.

// Parse reads an infix expression. Input is NFKC-normalized first so that
// full-width digits and operators are accepted.
func Parse(input string) (Expr, error) {
	p := &parser{src: []rune(norm.NFKC.String(input))}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("Unexpected character: '%c'", p.src[p.pos])
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
func MustParse(input string) Expr {
	e, err := Parse(input)
	if err != nil {
		panic("gocalc: " + err.Error())
	}
	return e
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) errorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

// peek returns the next non-space rune, or 0 at end of input.
func (p *parser) peek() rune {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(want rune) error {
	c := p.peek()
	if c == 0 {
		return p.errorf("Expected '%c', found end of input", want)
	}
	if c != want {
		return p.errorf("Expected '%c', found '%c'", want, c)
	}
	p.pos++
	return nil
}

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = AddOf(left, right)
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = SubOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = MulOf(left, right)
		case '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = DivOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.peek() {
	case '-':
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if n, ok := operand.(*Num); ok {
			return N(-n.val), nil
		}
		return Neg(operand), nil
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) parsePrimary() (Expr, error) {
	c := p.peek()
	switch {
	case c == 0:
		return nil, p.errorf("Unexpected end of input")
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case c == '(':
		p.pos++
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return e, nil
	case c == 'π':
		p.pos++
		return N(math.Pi), nil
	case isLetter(c):
		return p.parseName()
	}
	return nil, p.errorf("Unexpected character: '%c'", c)
}

func (p *parser) parseNumber() (Expr, error) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	lit := string(p.src[start:p.pos])
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("Invalid number: %s", lit)
	}
	return N(v), nil
}

func (p *parser) parseName() (Expr, error) {
	start := p.pos
	for p.pos < len(p.src) && (isLetter(p.src[p.pos]) || unicode.IsDigit(p.src[p.pos])) {
		p.pos++
	}
	name := string(p.src[start:p.pos])

	if kind, ok := FuncKindByName(name); ok {
		arg, err := p.parseArgs(1)
		if err != nil {
			return nil, err
		}
		return FuncOf(kind, arg[0]), nil
	}
	switch name {
	case "sqrt":
		arg, err := p.parseArgs(1)
		if err != nil {
			return nil, err
		}
		return SqrtOf(arg[0]), nil
	case "log":
		args, err := p.parseArgs(2)
		if err != nil {
			return nil, err
		}
		return LogOf(args[0], args[1]), nil
	case "root":
		args, err := p.parseArgs(2)
		if err != nil {
			return nil, err
		}
		return RootOf(args[0], args[1]), nil
	case "pi":
		return N(math.Pi), nil
	case "e":
		// No whitespace allowed between e and ^.
		if p.pos < len(p.src) && p.src[p.pos] == '^' {
			p.pos++
			exp, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return ExpOf(exp), nil
		}
		return N(math.E), nil
	}
	return S(name), nil
}

// parseArgs reads "(" expr {"," expr} ")" with exactly n arguments.
func (p *parser) parseArgs(n int) ([]Expr, error) {
	if p.peek() != '(' {
		return nil, p.errorf("Expected '(' after function name")
	}
	p.pos++
	args := make([]Expr, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := p.expect(','); err != nil {
				return nil, err
			}
		}
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return args, nil
}

func isLetter(r rune) bool { return r == '_' || unicode.IsLetter(r) && r != 'π' }
