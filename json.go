package gocalc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// JSON Serialization
// ============================================================

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": formatFloat(n.val)}
}

func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

func (a *Add) toJSON() map[string]interface{}      { return binaryJSON("add", a.binary) }
func (s *Subtract) toJSON() map[string]interface{} { return binaryJSON("sub", s.binary) }
func (m *Mul) toJSON() map[string]interface{}      { return binaryJSON("mul", m.binary) }
func (d *Div) toJSON() map[string]interface{}      { return binaryJSON("div", d.binary) }

func binaryJSON(typ string, b binary) map[string]interface{} {
	return map[string]interface{}{"type": typ, "left": b.l.toJSON(), "right": b.r.toJSON()}
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

func (r *Root) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "root", "base": r.base.toJSON(), "degree": r.degree.toJSON()}
}

func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.kind.String(), "arg": f.arg.toJSON()}
}

func (l *Log) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "log", "base": l.base.toJSON(), "arg": l.arg.toJSON()}
}

// ToJSONMap returns the JSON object form of e.
func ToJSONMap(e Expr) map[string]interface{} { return e.toJSON() }

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ParseJSON decodes a JSON document produced by ToJSON.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return FromJSON(m)
}

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}
	pair := func(a, b string) (Expr, Expr, error) {
		l, err := sub(a)
		if err != nil {
			return nil, nil, err
		}
		r, err := sub(b)
		if err != nil {
			return nil, nil, err
		}
		return l, r, nil
	}
	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		switch v := data["value"].(type) {
		case float64:
			return N(v), nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid num value: %s", v)
			}
			return N(f), nil
		case nil:
			return nil, fmt.Errorf("num: missing 'value'")
		}
		return nil, fmt.Errorf("num: 'value' must be a string or number")

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "add", "sub", "mul", "div":
		l, r, err := pair("left", "right")
		if err != nil {
			return nil, err
		}
		switch typ {
		case "add":
			return AddOf(l, r), nil
		case "sub":
			return SubOf(l, r), nil
		case "mul":
			return MulOf(l, r), nil
		}
		return DivOf(l, r), nil

	case "pow":
		base, exp, err := pair("base", "exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "root":
		base, degree, err := pair("base", "degree")
		if err != nil {
			return nil, err
		}
		return RootOf(base, degree), nil

	case "log":
		base, arg, err := pair("base", "arg")
		if err != nil {
			return nil, err
		}
		return LogOf(base, arg), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		kind, ok := FuncKindByName(name)
		if !ok {
			return nil, fmt.Errorf("func: unknown function %q", name)
		}
		arg, err := sub("arg")
		if err != nil {
			return nil, err
		}
		return FuncOf(kind, arg), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
