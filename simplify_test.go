package gocalc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gocalc "github.com/njchilds90/gocalc"
)

func simplified(t *testing.T, input string) gocalc.Expr {
	t.Helper()
	e, err := gocalc.Parse(input)
	require.NoError(t, err, input)
	return gocalc.Simplify(e)
}

func TestSimplify_Identities(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"x^2 + 2*x + 1", "x^2 + 2*x + 1"},
		{"1*x", "x"},
		{"x*1", "x"},
		{"x^0", "1"},
		{"x^1", "x"},
		{"0 + x", "x"},
		{"x + 0", "x"},
		{"x - 0", "x"},
		{"0*x", "0"},
		{"x*0", "0"},
		{"0/x", "0"},
		{"x/1", "x"},
		{"0^2", "0"},
		{"1^x", "1"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, simplified(t, c.in).String())
		})
	}
}

func TestSimplify_LikeLeaves(t *testing.T) {
	assert.Equal(t, "2*x", simplified(t, "x + x").String())
	assert.Equal(t, "x^2", simplified(t, "x*x").String())
	assert.Equal(t, "0", simplified(t, "x - x").String())
	assert.Equal(t, "1", simplified(t, "x/x").String())
	// Only two identical leaves fold; nothing is collected across the tree.
	assert.Equal(t, "x^2 + x^2", simplified(t, "x^2 + x^2").String())
	assert.Equal(t, "x + y", simplified(t, "x + y").String())
}

func TestSimplify_ConstantFolding(t *testing.T) {
	assert.Equal(t, "10", simplified(t, "2*3 + 4").String())
	assert.Equal(t, "8", simplified(t, "2^3").String())
	assert.Equal(t, "-1", simplified(t, "2 - 3").String())
	assert.Equal(t, "2.5", simplified(t, "5/2").String())
	assert.Equal(t, "x + 4 + 1", simplified(t, "x + 2*2 + 1").String(), "left-nested sums are not reassociated")
}

func TestSimplify_NeverFoldsToNonFinite(t *testing.T) {
	assert.Equal(t, "1/0", simplified(t, "1/0").String())
	assert.Equal(t, "(-1)^0.5", simplified(t, "(0 - 1)^0.5").String())
	assert.Equal(t, "0^(-1)", simplified(t, "0^(-1)").String())
}

func TestSimplify_RootBecomesPower(t *testing.T) {
	e := simplified(t, "sqrt(x)")
	p, ok := e.(*gocalc.Pow)
	require.True(t, ok, "got %T", e)
	assert.True(t, p.Base().Equal(x))
	assert.True(t, p.ExpExpr().Equal(gocalc.N(0.5)))

	assert.Equal(t, "4", simplified(t, "root(16, 2)").String())
}

func TestSimplify_FunctionSpecialValues(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"sin(0)", 0},
		{"cos(0)", 1},
		{"tan(0)", 0},
		{"arcsin(0)", 0},
		{"arcsin(1)", math.Pi / 2},
		{"arcsin(-1)", -math.Pi / 2},
		{"arccos(1)", 0},
		{"arccos(0)", math.Pi / 2},
		{"arccos(-1)", math.Pi},
		{"arctan(1)", math.Pi / 4},
		{"arctan(-1)", -math.Pi / 4},
		{"exp(0)", 1},
		{"exp(1)", math.E},
		{"ln(1)", 0},
		{"ln(e)", 1},
		{"sinh(0)", 0},
		{"cosh(0)", 1},
		{"tanh(0)", 0},
		{"log(2, 1)", 0},
		{"log(3, 3)", 1},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			n, ok := simplified(t, c.in).(*gocalc.Num)
			require.True(t, ok)
			assert.Equal(t, c.want, n.Value())
		})
	}
}

func TestSimplify_KeepsNonSpecialFunctionValues(t *testing.T) {
	assert.Equal(t, "sin(2)", simplified(t, "sin(2)").String())
	assert.Equal(t, "log(2, 8)", simplified(t, "log(2, 8)").String())
	assert.Equal(t, "log(x, 1)", simplified(t, "log(x, 1)").String())
	for _, in := range []string{"log(1, 1)", "log(0, 0)", "log(0, 1)", "log(-2, -2)"} {
		assert.Equal(t, in, simplified(t, in).String(), "invalid base must not fold")
	}
}

func TestSimplify_InversePairs(t *testing.T) {
	assert.Equal(t, "y", simplified(t, "exp(ln(y))").String())
	assert.Equal(t, "y + 1", simplified(t, "ln(exp(y + 1))").String())
	assert.Equal(t, "x", simplified(t, "e^(ln(x))").String())
}

func TestSimplify_IsBottomUp(t *testing.T) {
	assert.Equal(t, "sin(x)", simplified(t, "sin(0 + 1*x)").String())
	assert.Equal(t, "1", simplified(t, "cos(x - x)").String())
}

func TestSimplify_LeavesInputUntouched(t *testing.T) {
	in := gocalc.AddOf(gocalc.N(0), x)
	_ = gocalc.Simplify(in)
	assert.Equal(t, "0 + x", in.String())
}
