package gocalc_test

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	gocalc "github.com/njchilds90/gocalc"
)

// ============================================================
// Generators
// ============================================================

func leafGen() *rapid.Generator[gocalc.Expr] {
	return rapid.OneOf(
		rapid.Custom(func(t *rapid.T) gocalc.Expr {
			return gocalc.N(float64(rapid.IntRange(-3, 3).Draw(t, "int")))
		}),
		rapid.Custom(func(t *rapid.T) gocalc.Expr {
			return gocalc.N(rapid.SampledFrom([]float64{0.5, -0.5, 1.5, 2.25}).Draw(t, "frac"))
		}),
		rapid.Custom(func(t *rapid.T) gocalc.Expr {
			return gocalc.S(rapid.SampledFrom([]string{"x", "x", "y"}).Draw(t, "sym"))
		}),
	)
}

// exprGen draws any tree up to depth, including shapes that do not evaluate.
func exprGen(depth int) *rapid.Generator[gocalc.Expr] {
	if depth == 0 {
		return leafGen()
	}
	return rapid.Custom(func(t *rapid.T) gocalc.Expr {
		sub := exprGen(depth - 1)
		switch rapid.IntRange(0, 9).Draw(t, "node") {
		case 0:
			return gocalc.AddOf(sub.Draw(t, "l"), sub.Draw(t, "r"))
		case 1:
			return gocalc.SubOf(sub.Draw(t, "l"), sub.Draw(t, "r"))
		case 2:
			return gocalc.MulOf(sub.Draw(t, "l"), sub.Draw(t, "r"))
		case 3:
			return gocalc.DivOf(sub.Draw(t, "l"), sub.Draw(t, "r"))
		case 4:
			return gocalc.PowOf(sub.Draw(t, "base"), sub.Draw(t, "exp"))
		case 5:
			return gocalc.RootOf(sub.Draw(t, "base"), sub.Draw(t, "degree"))
		case 6:
			return gocalc.LogOf(sub.Draw(t, "base"), sub.Draw(t, "arg"))
		case 7:
			kind := gocalc.FuncKind(rapid.IntRange(int(gocalc.Sin), int(gocalc.Tanh)).Draw(t, "kind"))
			return gocalc.FuncOf(kind, sub.Draw(t, "arg"))
		}
		return leafGen().Draw(t, "leaf")
	})
}

// smoothGen draws trees in x that are finite and smooth on [0.5, 1.5].
func smoothGen(depth int) *rapid.Generator[gocalc.Expr] {
	if depth == 0 {
		return rapid.OneOf(
			rapid.Just[gocalc.Expr](gocalc.S("x")),
			rapid.Custom(func(t *rapid.T) gocalc.Expr {
				return gocalc.N(float64(rapid.IntRange(-2, 2).Draw(t, "c")))
			}),
		)
	}
	return rapid.Custom(func(t *rapid.T) gocalc.Expr {
		sub := smoothGen(depth - 1)
		switch rapid.IntRange(0, 6).Draw(t, "node") {
		case 0:
			return gocalc.AddOf(sub.Draw(t, "l"), sub.Draw(t, "r"))
		case 1:
			return gocalc.SubOf(sub.Draw(t, "l"), sub.Draw(t, "r"))
		case 2:
			return gocalc.MulOf(sub.Draw(t, "l"), sub.Draw(t, "r"))
		case 3:
			n := rapid.IntRange(2, 3).Draw(t, "n")
			return gocalc.PowOf(sub.Draw(t, "base"), gocalc.N(float64(n)))
		case 4:
			return gocalc.SinOf(sub.Draw(t, "arg"))
		case 5:
			return gocalc.CosOf(sub.Draw(t, "arg"))
		}
		return gocalc.ExpOf(smoothGen(0).Draw(t, "arg"))
	})
}

// primitiveSum draws c1*p1 ± c2*p2 ± ... over forms the rule table covers.
func primitiveSum() *rapid.Generator[gocalc.Expr] {
	x := gocalc.S("x")
	prim := rapid.Custom(func(t *rapid.T) gocalc.Expr {
		switch rapid.IntRange(0, 5).Draw(t, "prim") {
		case 0:
			return gocalc.N(float64(rapid.IntRange(1, 9).Draw(t, "k")))
		case 1:
			return x
		case 2:
			n := rapid.SampledFrom([]float64{-4, -3, -2, 0.5, 2, 3, 4, 5}).Draw(t, "n")
			return gocalc.PowOf(x, gocalc.N(n))
		case 3:
			return gocalc.SinOf(x)
		case 4:
			return gocalc.CosOf(x)
		}
		return gocalc.ExpOf(x)
	})
	return rapid.Custom(func(t *rapid.T) gocalc.Expr {
		k := rapid.IntRange(1, 4).Draw(t, "terms")
		var sum gocalc.Expr
		for i := 0; i < k; i++ {
			c := float64(rapid.IntRange(1, 5).Draw(t, "coeff"))
			term := gocalc.MulOf(gocalc.N(c), prim.Draw(t, "p"))
			switch {
			case sum == nil:
				sum = term
			case rapid.Bool().Draw(t, "minus"):
				sum = gocalc.SubOf(sum, term)
			default:
				sum = gocalc.AddOf(sum, term)
			}
		}
		return sum
	})
}

// ============================================================
// Properties
// ============================================================

func TestProperty_SimplifyIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := exprGen(3).Draw(t, "e")
		once := gocalc.Simplify(e)
		twice := gocalc.Simplify(once)
		if !once.Equal(twice) {
			t.Fatalf("simplify(%s) = %s, simplify again = %s", e, once, twice)
		}
	})
}

func TestProperty_SimplifyKeepsValue(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := smoothGen(3).Draw(t, "e")
		p := rapid.Float64Range(0.5, 1.5).Draw(t, "x")
		want, ok := gocalc.EvalAt(e, "x", p)
		if !ok {
			t.Skip("not finite")
		}
		got, ok := gocalc.EvalAt(gocalc.Simplify(e), "x", p)
		if !ok || math.Abs(want-got) > 1e-9*math.Max(1, math.Abs(want)) {
			t.Fatalf("%s at x=%v: want %v, got %v (%v)", e, p, want, got, ok)
		}
	})
}

func TestProperty_DiffIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := exprGen(3).Draw(t, "e")
		v := rapid.SampledFrom([]string{"x", "y", "z"}).Draw(t, "var")
		d := gocalc.Diff(e, v).Simplify()
		if d.String() == "" {
			t.Fatalf("empty derivative of %s", e)
		}
		if !gocalc.Contains(e, v) && !gocalc.Diff(e, v).Simplify().Equal(gocalc.N(0)) {
			t.Fatalf("d/d%s of %s = %s, want 0", v, e, d)
		}
	})
}

func TestProperty_DiffMatchesFiniteDifference(t *testing.T) {
	const h = 1e-5
	rapid.Check(t, func(t *rapid.T) {
		e := smoothGen(3).Draw(t, "e")
		p := rapid.Float64Range(0.5, 1.5).Draw(t, "x")
		hi, ok1 := gocalc.EvalAt(e, "x", p+h)
		lo, ok2 := gocalc.EvalAt(e, "x", p-h)
		got, ok3 := gocalc.EvalAt(gocalc.Diff(e, "x").Simplify(), "x", p)
		if !ok1 || !ok2 || !ok3 {
			t.Fatalf("%s does not evaluate near x=%v", e, p)
		}
		want := (hi - lo) / (2 * h)
		if math.Abs(want-got) > 1e-4*math.Max(1, math.Abs(want)) {
			t.Fatalf("d/dx %s at x=%v: finite difference %v, symbolic %v", e, p, want, got)
		}
	})
}

func TestProperty_IntegralDifferentiatesBack(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := primitiveSum().Draw(t, "e")
		res, err := gocalc.Integrate(e, "x")
		if err != nil {
			t.Fatalf("integrate %s: %v", e, err)
		}
		d := gocalc.Diff(res, "x").Simplify()
		for _, p := range []float64{0.4, 0.9, 1.7} {
			want, _ := gocalc.EvalAt(e, "x", p)
			got, ok := gocalc.EvalAt(d, "x", p)
			if !ok || math.Abs(want-got) > 1e-9*math.Max(1, math.Abs(want)) {
				t.Fatalf("d/dx %s at x=%v: want %v, got %v", res, p, want, got)
			}
		}
	})
}
