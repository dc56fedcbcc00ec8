// Package orbittrap measures how close an orbit point comes to a geometric trap.
package orbittrap

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/costott/mandlebrot-sub000/numeric"
)

var ErrUnknownAnalysis = errors.New("unknown orbit trap analysis")

// Bailout is the squared escape radius the normalization bounds are computed for.
const Bailout = 20.0

// Analysis selects which property of the orbit's closest approach a trap
// reports.
type Analysis int

const (
	// Distance is the closest distance to the trap.
	Distance Analysis = iota
	// Real is the real part of the vector from the trap to the closest point.
	Real
	// Imaginary is its imaginary part.
	Imaginary
	// Angle is its argument, shifted into [0, 2π].
	Angle
)

func (a Analysis) String() string {
	switch a {
	case Distance:
		return "distance"
	case Real:
		return "real"
	case Imaginary:
		return "imaginary"
	case Angle:
		return "angle"
	}
	return fmt.Sprintf("Analysis(%d)", int(a))
}

func ParseAnalysis(s string) (Analysis, error) {
	switch strings.ToLower(s) {
	case "distance", "":
		return Distance, nil
	case "real", "re":
		return Real, nil
	case "imaginary", "imag", "im":
		return Imaginary, nil
	case "angle", "arg":
		return Angle, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownAnalysis)
}

// Trap is one of Point, Cross or Circle.
type Trap interface {
	// Distance2 is the squared distance from z to the trap shape, never negative.
	Distance2(z numeric.Complex) float64
	// Vector points from the trap to z. Only Point traps have a direction;
	// the others report zero.
	Vector(z numeric.Complex) numeric.Complex
	// GreatestDistance2 bounds the distance worth normalizing against.
	GreatestDistance2() float64
	Analysis() Analysis
	// Centre of the trap.
	Centre() numeric.Complex
	String() string

	trap()
}

func label(shape string, a Analysis, args string) string {
	if a == Distance {
		return fmt.Sprintf("%s(%s)", shape, args)
	}
	return fmt.Sprintf("%s(%s, %v)", shape, args, a)
}

// Point traps the orbit around a single point.
type Point struct {
	centre   numeric.Complex
	analysis Analysis
	greatest float64
}

func NewPoint(centre numeric.Complex) Point {
	return Point{centre: centre}.WithAnalysis(Distance)
}

// WithAnalysis returns p reporting a. The greatest distance follows the
// analysed quantity.
func (p Point) WithAnalysis(a Analysis) Point {
	b := math.Sqrt(Bailout)
	var r float64
	switch a {
	case Real:
		r = b + math.Abs(p.centre.Re)
	case Imaginary:
		r = b + math.Abs(p.centre.Im)
	case Angle:
		r = 2 * math.Pi
	default:
		r = b + math.Sqrt(p.centre.AbsSquared())
	}
	p.analysis, p.greatest = a, r*r
	return p
}

func (p Point) Distance2(z numeric.Complex) float64 {
	return numeric.DistanceSquared(z, p.centre)
}

func (p Point) Vector(z numeric.Complex) numeric.Complex { return z.Sub(p.centre) }
func (p Point) GreatestDistance2() float64               { return p.greatest }
func (p Point) Analysis() Analysis                       { return p.analysis }
func (p Point) Centre() numeric.Complex                  { return p.centre }
func (p Point) String() string                           { return label("point", p.analysis, p.centre.String()) }
func (Point) trap()                                      {}

// Cross traps the orbit around a horizontal and a vertical arm through the centre.
// An arm length of 0 makes both arms unbounded lines.
type Cross struct {
	centre    numeric.Complex
	armLength float64
	analysis  Analysis
	greatest  float64
}

func NewCross(centre numeric.Complex, armLength float64) Cross {
	r := math.Sqrt(Bailout) + math.Sqrt(centre.AbsSquared())
	return Cross{centre: centre, armLength: math.Abs(armLength), greatest: r * r}
}

func (c Cross) Distance2(z numeric.Complex) float64 {
	dx := z.Re - c.centre.Re
	dy := z.Im - c.centre.Im
	dx2, dy2 := dx*dx, dy*dy

	if c.armLength == 0 || (math.Abs(dx) <= c.armLength && math.Abs(dy) <= c.armLength) {
		return math.Min(dx2, dy2)
	}

	// outside the arms: nearest arm tip
	if dx2 < dy2 {
		tip := numeric.NewComplex(c.centre.Re, c.centre.Im+math.Copysign(c.armLength, dy))
		return numeric.DistanceSquared(z, tip)
	}
	tip := numeric.NewComplex(c.centre.Re+math.Copysign(c.armLength, dx), c.centre.Im)
	return numeric.DistanceSquared(z, tip)
}

// WithAnalysis returns c reporting a.
func (c Cross) WithAnalysis(a Analysis) Cross {
	c.analysis = a
	return c
}

func (c Cross) Vector(numeric.Complex) numeric.Complex { return numeric.Complex{} }
func (c Cross) GreatestDistance2() float64             { return c.greatest }
func (c Cross) Analysis() Analysis                     { return c.analysis }
func (c Cross) Centre() numeric.Complex                { return c.centre }
func (c Cross) ArmLength() float64                     { return c.armLength }
func (c Cross) String() string {
	return label("cross", c.analysis, fmt.Sprintf("%v, arm %g", c.centre, c.armLength))
}
func (Cross) trap() {}

// Circle traps the orbit around the boundary of a circle.
type Circle struct {
	centre   numeric.Complex
	radius   float64
	analysis Analysis
	greatest float64
}

func NewCircle(centre numeric.Complex, radius float64) Circle {
	radius = math.Abs(radius)
	g := math.Max(math.Sqrt(Bailout)-(radius-math.Sqrt(centre.AbsSquared())), radius)
	return Circle{centre: centre, radius: radius, greatest: g * g}
}

// Distance2 is the squared distance to the circle's boundary, not its interior.
func (c Circle) Distance2(z numeric.Complex) float64 {
	d := math.Sqrt(numeric.DistanceSquared(z, c.centre)) - c.radius
	return d * d
}

// MinimumDistance2 is the smallest squared distance an escaping point can have.
func (c Circle) MinimumDistance2() float64 {
	d := math.Max(0, (c.radius-math.Sqrt(c.centre.AbsSquared()))-math.Sqrt(Bailout))
	return d * d
}

// WithAnalysis returns c reporting a.
func (c Circle) WithAnalysis(a Analysis) Circle {
	c.analysis = a
	return c
}

func (c Circle) Vector(numeric.Complex) numeric.Complex { return numeric.Complex{} }
func (c Circle) GreatestDistance2() float64             { return c.greatest }
func (c Circle) Analysis() Analysis                     { return c.analysis }
func (c Circle) Centre() numeric.Complex                { return c.centre }
func (c Circle) Radius() float64                        { return c.radius }
func (c Circle) String() string {
	return label("circle", c.analysis, fmt.Sprintf("%v, r %g", c.centre, c.radius))
}
func (Circle) trap() {}

var (
	_ Trap = Point{}
	_ Trap = Cross{}
	_ Trap = Circle{}
)
