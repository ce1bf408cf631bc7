package gocalc

// DefaultMaxDepth bounds nested by-parts and substitution steps.
const DefaultMaxDepth = 5

// MaxAllowedDepth is the largest recursion bound accepted from callers. Work
// grows roughly sevenfold per level of nested by-parts steps.
const MaxAllowedDepth = 16

// Method identifies an integration strategy.
type Method int

const (
	Direct Method = iota
	ByParts
	Substitution
	TrigSubstitution
	RationalFunction
)

var methodNames = [...]string{
	Direct:           "direct",
	ByParts:          "by_parts",
	Substitution:     "substitution",
	TrigSubstitution: "trig_substitution",
	RationalFunction: "rational_function",
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return "unknown"
	}
	return methodNames[m]
}

// IntegrationState is the call-scoped record threaded through one top-level
// integration: recursion depth, the stack of expressions currently being
// expanded, and the active strategy. It must not be shared between calls.
type IntegrationState struct {
	depth    int
	maxDepth int
	visited  []Expr
	method   Method
}

// NewIntegrationState returns an empty state. A non-positive maxDepth falls
// back to DefaultMaxDepth.
func NewIntegrationState(maxDepth int) *IntegrationState {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &IntegrationState{maxDepth: maxDepth, method: Direct}
}

func (s *IntegrationState) Depth() int     { return s.depth }
func (s *IntegrationState) MaxDepth() int  { return s.maxDepth }
func (s *IntegrationState) Method() Method { return s.method }

// SetMethod records the active strategy.
func (s *IntegrationState) SetMethod(m Method) { s.method = m }

// Visited returns a copy of the in-progress expression stack, oldest first.
func (s *IntegrationState) Visited() []Expr {
	return append([]Expr(nil), s.visited...)
}

// ShouldPrune reports whether integrating e would exceed the depth bound or
// revisit an expression already being expanded.
func (s *IntegrationState) ShouldPrune(e Expr) bool {
	if s.depth >= s.maxDepth {
		return true
	}
	for _, v := range s.visited {
		if IsSimilar(v, e) {
			return true
		}
	}
	return false
}

// Push marks e as in progress and increments the depth.
func (s *IntegrationState) Push(e Expr) {
	s.visited = append(s.visited, e)
	s.depth++
}

// Pop undoes the most recent Push.
func (s *IntegrationState) Pop() {
	if n := len(s.visited); n > 0 {
		s.visited[n-1] = nil
		s.visited = s.visited[:n-1]
	}
	if s.depth > 0 {
		s.depth--
	}
}

// IsSimilar is the loop-breaking relation used by the cycle guard: structural
// equality extended with commutativity for Add and Mul. Subtract and unary
// functions compare children in order; every other shape mismatch is not
// similar.
func IsSimilar(a, b Expr) bool {
	if a.Equal(b) {
		return true
	}
	switch x := a.(type) {
	case *Add:
		y, ok := b.(*Add)
		return ok && similarPair(x.l, x.r, y.l, y.r)
	case *Mul:
		y, ok := b.(*Mul)
		return ok && similarPair(x.l, x.r, y.l, y.r)
	case *Subtract:
		y, ok := b.(*Subtract)
		return ok && IsSimilar(x.l, y.l) && IsSimilar(x.r, y.r)
	case *Func:
		y, ok := b.(*Func)
		return ok && x.kind == y.kind && IsSimilar(x.arg, y.arg)
	}
	return false
}

func similarPair(a1, b1, a2, b2 Expr) bool {
	return (IsSimilar(a1, a2) && IsSimilar(b1, b2)) ||
		(IsSimilar(a1, b2) && IsSimilar(b1, a2))
}
