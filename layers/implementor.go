package layers

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/costott/mandlebrot-sub000/numeric"
	"github.com/costott/mandlebrot-sub000/orbittrap"
)

// Shading3D lighting constants.
const (
	LightAngle = -45.0 // degrees
	LightH2    = 1.5
	MinLight   = 0.1
)

// Implementor accumulates one scalar per pixel while the engine iterates.
// Layers that need the same algorithm read the same implementor.
type Implementor interface {
	before(it Iteration)
	during(z numeric.Complex, i int)
	outSet(z numeric.Complex, i int)
	inSet(z numeric.Complex)
	clone() Implementor

	// Output is valid once the engine has finished with the pixel.
	Output() float64
}

// algorithm keys the shared implementors.
type algorithm int

const (
	smoothAlgorithm algorithm = iota
	lightAlgorithm
)

// smoothCount computes the fractional escape count.
type smoothCount struct {
	julia  bool
	output float64
}

func newSmoothCount() *smoothCount { return &smoothCount{} }

func (s *smoothCount) before(it Iteration) {
	s.julia = it.Julia != nil
	s.output = 0
}

func (s *smoothCount) during(numeric.Complex, int) {}

func (s *smoothCount) outSet(z numeric.Complex, i int) {
	s.output = smooth(z.AbsSquared(), i, s.julia)
}

func smooth(abs2 float64, i int, julia bool) float64 {
	logZmod := math.Log2(abs2) / 2
	if julia {
		return float64(i) - math.Log2(math.Max(1, logZmod))
	}
	return float64(i) + 1 - math.Log2(logZmod)
}

func (s *smoothCount) inSet(numeric.Complex) { s.output = 0 }
func (s *smoothCount) Output() float64       { return s.output }
func (s *smoothCount) clone() Implementor {
	c := *s
	return &c
}

// trapDistance tracks the closest approach of the orbit to a trap.
type trapDistance struct {
	trap    orbittrap.Trap
	min     float64
	closest numeric.Complex
	divisor float64
	maxIter float64
	output  float64
}

func newTrapDistance(t orbittrap.Trap) *trapDistance {
	return &trapDistance{trap: t, min: t.GreatestDistance2()}
}

func (t *trapDistance) before(it Iteration) {
	t.min = t.trap.GreatestDistance2()
	t.closest = numeric.Complex{}
	t.maxIter = float64(it.MaxIterations)
	t.divisor = math.Sqrt(t.min) / t.maxIter
	t.output = 0
}

func (t *trapDistance) during(z numeric.Complex, _ int) {
	if d := t.trap.Distance2(z); d < t.min {
		t.min = d
		t.closest = t.trap.Vector(z)
	}
}

func (t *trapDistance) outSet(numeric.Complex, int) { t.output = t.normalized() }
func (t *trapDistance) inSet(numeric.Complex)       { t.output = t.normalized() }

// normalized scales the analysed quantity into iteration units, in [0, maxIter].
func (t *trapDistance) normalized() float64 {
	if t.divisor <= 0 || math.IsNaN(t.min) {
		return 0
	}
	var q float64
	switch t.trap.Analysis() {
	case orbittrap.Real:
		q = math.Abs(t.closest.Re)
	case orbittrap.Imaginary:
		q = math.Abs(t.closest.Im)
	case orbittrap.Angle:
		q = math.Pi + t.closest.Arg()
	default:
		q = math.Sqrt(t.min)
	}
	v := q / t.divisor
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(t.maxIter, v))
}

func (t *trapDistance) Output() float64 { return t.output }
func (t *trapDistance) clone() Implementor {
	c := *t
	return &c
}

// light follows the derivative of the orbit to give the set a normal map.
type light struct {
	der    numeric.Complex
	dc     numeric.Complex
	dir    mgl64.Vec2
	output float64
}

func newLight() *light {
	a := mgl64.DegToRad(LightAngle)
	return &light{dir: mgl64.Vec2{math.Cos(a), math.Sin(a)}}
}

func (l *light) before(it Iteration) {
	l.der = numeric.NewComplex(1, 0)
	// a Julia orbit starts at the pixel, so c does not move with it
	if it.Julia != nil {
		l.dc = numeric.Complex{}
	} else {
		l.dc = numeric.NewComplex(1, 0)
	}
	l.output = 0
}

func (l *light) during(z numeric.Complex, _ int) {
	l.der = l.der.Mul(z.MulScalar(2)).Add(l.dc)
}

func (l *light) outSet(z numeric.Complex, _ int) { l.output = l.shade(z) }
func (l *light) inSet(z numeric.Complex)         { l.output = l.shade(z) }

func (l *light) shade(z numeric.Complex) float64 {
	u, err := z.Div(l.der)
	if err != nil {
		return MinLight
	}
	n := mgl64.Vec2{u.Re, u.Im}
	length := n.Len()
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return MinLight
	}
	t := n.Mul(1 / length).Dot(l.dir)
	t = (t + LightH2) / (1 + LightH2)
	if math.IsNaN(t) {
		return MinLight
	}
	return math.Max(MinLight, t)
}

func (l *light) Output() float64 { return l.output }
func (l *light) clone() Implementor {
	c := *l
	return &c
}

func cloneAll(imps []Implementor) []Implementor {
	out := make([]Implementor, len(imps))
	for i, im := range imps {
		out[i] = im.clone()
	}
	return out
}
