package gocalc

import (
	"strings"
)

// Report records every stage of one Process run. String fields are empty
// for stages that were not reached.
type Report struct {
	Input            string `json:"input" yaml:"input"`
	Variable         string `json:"variable" yaml:"variable"`
	Parsed           string `json:"parsed,omitempty" yaml:"parsed,omitempty"`
	Simplified       string `json:"simplified,omitempty" yaml:"simplified,omitempty"`
	Derivative       string `json:"derivative,omitempty" yaml:"derivative,omitempty"`
	Integral         string `json:"integral,omitempty" yaml:"integral,omitempty"`
	ParseError       string `json:"parse_error,omitempty" yaml:"parse_error,omitempty"`
	IntegrationError string `json:"integration_error,omitempty" yaml:"integration_error,omitempty"`
	ErrorCode        string `json:"error_code,omitempty" yaml:"error_code,omitempty"`

	expr     Expr
	integral Expr
}

// Expr returns the simplified input expression, or nil after a parse error.
func (r *Report) Expr() Expr { return r.expr }

// IntegralExpr returns the simplified antiderivative, or nil when
// integration failed.
func (r *Report) IntegralExpr() Expr { return r.integral }

// OK reports whether every stage succeeded.
func (r *Report) OK() bool { return r.ParseError == "" && r.IntegrationError == "" }

// Process runs parse, simplify, differentiate, simplify, integrate and
// simplify on input. A nil integrator means DefaultIntegrator.
func Process(input, varName string, in *Integrator) *Report {
	if in == nil {
		in = DefaultIntegrator
	}
	r := &Report{Input: input, Variable: varName}
	parsed, err := Parse(input)
	if err != nil {
		r.ParseError = err.Error()
		return r
	}
	r.Parsed = parsed.String()

	simplified := parsed.Simplify()
	r.expr = simplified
	r.Simplified = simplified.String()
	r.Derivative = simplified.Diff(varName).Simplify().String()

	integral, err := in.Integrate(simplified, varName)
	if err != nil {
		r.IntegrationError = err.Error()
		if ie, ok := err.(*IntegrationError); ok {
			r.ErrorCode = string(ie.Code)
		}
		return r
	}
	r.integral = integral.Simplify()
	r.Integral = r.integral.String()
	return r
}

// Text renders the report in the line-oriented transcript format.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("Expression: " + r.Input + "\n")
	if r.ParseError != "" {
		b.WriteString("Parse error: " + r.ParseError + "\n")
		return b.String()
	}
	b.WriteString("Parsed: " + r.Parsed + "\n")
	b.WriteString("Simplified: " + r.Simplified + "\n")
	b.WriteString("Derivative: " + r.Derivative + "\n")
	if r.IntegrationError != "" {
		b.WriteString("Integration error: " + r.IntegrationError + "\n")
	} else {
		b.WriteString("Integral: " + r.Integral + "\n")
	}
	return b.String()
}
