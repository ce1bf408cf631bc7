package gocalc

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// MaxDiffOrder is the largest derivative order the diffn tool computes.
const MaxDiffOrder = 16

// ============================================================
// Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// HandleToolCall dispatches a tool request. Expressions are given either as
// a JSON tree in "expr" or as text in "input".
func HandleToolCall(req ToolRequest) ToolResponse {
	return DefaultIntegrator.HandleToolCall(req)
}

// HandleToolCall dispatches a tool request, integrating with in.
func (in *Integrator) HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func() (Expr, error) {
		if v, ok := req.Params["expr"]; ok {
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("invalid type for param expr")
			}
			return FromJSON(m)
		}
		if v, ok := req.Params["input"]; ok {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("param input must be a string")
			}
			return Parse(s)
		}
		return nil, fmt.Errorf("missing param: expr or input")
	}
	getVar := func() (string, error) {
		v, ok := req.Params["var"]
		if !ok {
			return "x", nil
		}
		s, ok := v.(string)
		if !ok || !IsIdentifier(s) {
			return "", fmt.Errorf("param var must be an identifier")
		}
		return s, nil
	}
	getInt := func(key string, def, lo, hi int) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return def, nil
		}
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		if f < float64(lo) || f > float64(hi) {
			return 0, fmt.Errorf("param %s must be between %d and %d", key, lo, hi)
		}
		return int(f), nil
	}
	getBindings := func() (map[string]float64, error) {
		v, ok := req.Params["at"]
		if !ok {
			return nil, fmt.Errorf("missing param: at")
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param at must be an object")
		}
		out := make(map[string]float64, len(raw))
		for k, x := range raw {
			f, ok := x.(float64)
			if !ok {
				return nil, fmt.Errorf("param at.%s must be a number", k)
			}
			out[k] = f
		}
		return out, nil
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: e.toJSON(), LaTeX: LaTeX(e), String: String(e)}
	}
	fail := func(err error) ToolResponse {
		resp := ToolResponse{Error: err.Error()}
		if ie, ok := err.(*IntegrationError); ok {
			resp.Code = string(ie.Code)
		}
		return resp
	}

	switch req.Tool {
	case "tool_spec":
		return ToolResponse{Result: toolSpec(), String: ToolSpec()}

	case "process":
		s, ok := req.Params["input"].(string)
		if !ok {
			return ToolResponse{Error: "param input must be a string"}
		}
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		rep := Process(s, v, in)
		return ToolResponse{Result: rep, String: rep.Text()}
	}

	e, err := getExpr()
	if err != nil {
		return fail(err)
	}

	switch req.Tool {
	case "parse":
		return respond(e)

	case "simplify":
		return respond(Simplify(e))

	case "to_latex":
		return ToolResponse{Result: LaTeX(e), LaTeX: LaTeX(e), String: String(e)}

	case "free_symbols":
		syms := FreeSymbols(e)
		names := make([]string, 0, len(syms))
		for s := range syms {
			names = append(names, s)
		}
		sort.Strings(names)
		return ToolResponse{Result: names}

	case "diff":
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		return respond(Diff(e, v).Simplify())

	case "diffn":
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		n, err := getInt("n", 1, 0, MaxDiffOrder)
		if err != nil {
			return fail(err)
		}
		return respond(DiffN(e, v, n))

	case "integrate":
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		depth, err := getInt("max_depth", in.maxDepth, 1, MaxAllowedDepth)
		if err != nil {
			return fail(err)
		}
		integrator := in
		if depth != in.maxDepth {
			integrator = NewIntegrator(WithMaxDepth(depth), WithLogger(in.logger), WithRules(in.rules))
		}
		res, err := integrator.Integrate(e, v)
		if err != nil {
			return fail(err)
		}
		return respond(res.Simplify())

	case "evaluate":
		env, err := getBindings()
		if err != nil {
			return fail(err)
		}
		val, ok := EvalEnv(e, env)
		if !ok {
			return ToolResponse{Error: "expression does not evaluate to a finite number"}
		}
		return ToolResponse{Result: val, String: formatFloat(val)}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// Tool schema
// ============================================================

func toolSpec() map[string]interface{} {
	exprProps := map[string]string{"expr": "object", "input": "string", "var": "string"}
	tools := []map[string]interface{}{
		ts("parse", "Parse infix text into an expression tree", []string{"input"}, map[string]string{"input": "string"}),
		ts("simplify", "Simplify an expression", []string{}, exprProps),
		ts("to_latex", "Convert to LaTeX", []string{}, exprProps),
		ts("free_symbols", "Return free symbol names", []string{}, exprProps),
		ts("diff", "First derivative, simplified", []string{}, exprProps),
		ts("diffn", "nth derivative. Optional n (int 0-16, default 1)", []string{}, with(exprProps, "n", "integer")),
		ts("integrate", "Symbolic antiderivative. Optional max_depth (int 1-16)", []string{}, with(exprProps, "max_depth", "integer")),
		ts("evaluate", "Numeric value. Requires at (object of var -> number)", []string{"at"}, with(exprProps, "at", "object")),
		ts("process", "Parse, simplify, differentiate and integrate text", []string{"input"}, map[string]string{"input": "string", "var": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	return map[string]interface{}{"tools": tools}
}

// ToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func ToolSpec() string {
	b, _ := json.MarshalIndent(toolSpec(), "", "  ")
	return string(b)
}

func with(props map[string]string, key, typ string) map[string]string {
	out := make(map[string]string, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	out[key] = typ
	return out
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
