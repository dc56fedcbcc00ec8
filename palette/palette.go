// Package palette maps normalized values and iteration counts to colours by
// piecewise-linear interpolation over a cyclic set of control points.
package palette

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// PaletteDepth is the number of iterations one full (100%) palette length
// covers under Repeated mapping.
const PaletteDepth = 500

// MinAddGap is the smallest gap, in percent, that AddPoint will split.
const MinAddGap = 10.0

var (
	ErrTooFewPoints     = errors.New("palette needs at least two control points")
	ErrDuplicatePercent = errors.New("control point percentages must be distinct")
	ErrPercentRange     = errors.New("percentage outside [0, 100]")
	ErrIndex            = errors.New("control point index out of range")
	ErrIncompatible     = errors.New("palettes have different shapes")
)

// Black is returned for points inside the set.
var Black = colorful.Color{}

// Mapping selects how iteration counts are spread over the palette.
type Mapping int

const (
	// Constant stretches the palette over the whole iteration range, so the
	// pattern density follows max iterations.
	Constant Mapping = iota
	// Repeated repeats the palette every fixed number of iterations.
	Repeated
)

func (m Mapping) String() string {
	switch m {
	case Constant:
		return "constant"
	case Repeated:
		return "repeated"
	}
	return fmt.Sprintf("Mapping(%d)", int(m))
}

func ParseMapping(s string) (Mapping, error) {
	switch s {
	case "constant", "Constant":
		return Constant, nil
	case "repeated", "Repeated", "":
		return Repeated, nil
	}
	return 0, fmt.Errorf("unknown mapping %q", s)
}

// ControlPoint anchors a colour at a percentage of the palette.
type ControlPoint struct {
	Colour  colorful.Color
	Percent float64
}

// Palette is safe for concurrent reads once Generate has been called; any
// mutation must happen between renders.
type Palette struct {
	points  []ControlPoint
	sorted  []ControlPoint
	mapping Mapping
	length  float64
	offset  float64

	cache    []colorful.Color
	cacheFor int
	revision uint64
}

// New validates the control points and derives the sorted, wrapped list.
// lengthPercent is the share of the range one repetition takes, offsetPercent
// shifts the palette cyclically; both are in [0, 100].
func New(points []ControlPoint, mapping Mapping, lengthPercent, offsetPercent float64) (*Palette, error) {
	if err := validatePoints(points); err != nil {
		return nil, err
	}
	if !inRange(lengthPercent) {
		return nil, fmt.Errorf("palette length %v: %w", lengthPercent, ErrPercentRange)
	}
	if !inRange(offsetPercent) {
		return nil, fmt.Errorf("palette offset %v: %w", offsetPercent, ErrPercentRange)
	}

	p := &Palette{
		points:   slices.Clone(points),
		mapping:  mapping,
		length:   lengthPercent,
		offset:   offsetPercent,
		cacheFor: -1,
	}
	p.resort()
	return p, nil
}

// NewEven spaces the colours evenly from 0% to 100%.
func NewEven(colours []colorful.Color, mapping Mapping, lengthPercent, offsetPercent float64) (*Palette, error) {
	if len(colours) < 2 {
		return nil, ErrTooFewPoints
	}
	step := 100 / float64(len(colours)-1)
	points := make([]ControlPoint, len(colours))
	for i, c := range colours {
		points[i] = ControlPoint{Colour: c, Percent: float64(i) * step}
	}
	points[len(points)-1].Percent = 100
	return New(points, mapping, lengthPercent, offsetPercent)
}

// Default is a black to white gradient.
func Default() *Palette {
	p, _ := New([]ControlPoint{
		{Colour: Black, Percent: 0},
		{Colour: colorful.Color{R: 1, G: 1, B: 1}, Percent: 100},
	}, Repeated, 100, 0)
	return p
}

func inRange(p float64) bool {
	return p >= 0 && p <= 100
}

func validatePoints(points []ControlPoint) error {
	if len(points) < 2 {
		return ErrTooFewPoints
	}
	seen := make(map[float64]struct{}, len(points))
	for _, pt := range points {
		if !inRange(pt.Percent) {
			return fmt.Errorf("control point %v: %w", pt.Percent, ErrPercentRange)
		}
		if _, ok := seen[pt.Percent]; ok {
			return fmt.Errorf("control point %v: %w", pt.Percent, ErrDuplicatePercent)
		}
		seen[pt.Percent] = struct{}{}
	}
	return nil
}

// resort rebuilds the sorted list, with the last point copied to percent-100
// in front and the first point copied to percent+100 at the back so lookups
// wrap around.
func (p *Palette) resort() {
	sorted := slices.Clone(p.points)
	slices.SortFunc(sorted, func(a, b ControlPoint) int {
		switch {
		case a.Percent < b.Percent:
			return -1
		case a.Percent > b.Percent:
			return 1
		}
		return 0
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	wrapped := make([]ControlPoint, 0, len(sorted)+2)
	wrapped = append(wrapped, ControlPoint{Colour: last.Colour, Percent: last.Percent - 100})
	wrapped = append(wrapped, sorted...)
	wrapped = append(wrapped, ControlPoint{Colour: first.Colour, Percent: first.Percent + 100})

	p.sorted = wrapped
	p.touch()
}

func (p *Palette) touch() {
	p.revision++
	p.cacheFor = -1
}

// Points returns a copy of the authored control points, in authoring order.
func (p *Palette) Points() []ControlPoint { return slices.Clone(p.points) }

// Sorted returns a copy of the sorted list including both wrap points.
func (p *Palette) Sorted() []ControlPoint { return slices.Clone(p.sorted) }

func (p *Palette) Mapping() Mapping { return p.mapping }
func (p *Palette) Length() float64  { return p.length }
func (p *Palette) Offset() float64  { return p.offset }

// Revision changes on every mutation.
func (p *Palette) Revision() uint64 { return p.revision }

// ColourAt interpolates the colour at percent ∈ [0, 1]. Values outside are
// wrapped, so ColourAt(0) and ColourAt(1) agree.
func (p *Palette) ColourAt(percent float64, applyOffset bool) colorful.Color {
	if applyOffset {
		percent += p.offset / 100
	}
	percent = wrap01(percent) * 100

	next := len(p.sorted) - 1
	for i, pt := range p.sorted {
		if pt.Percent > percent {
			next = i
			break
		}
	}
	if next == 0 {
		return p.sorted[0].Colour
	}

	prev, nxt := p.sorted[next-1], p.sorted[next]
	span := nxt.Percent - prev.Percent
	if span <= 0 {
		return nxt.Colour
	}
	return prev.Colour.BlendRgb(nxt.Colour, (percent-prev.Percent)/span)
}

func wrap01(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x - math.Floor(x)
}

// Generate materializes one colour per iteration count 0..=maxIterations.
// The cache is only rebuilt when maxIterations or the palette changed.
func (p *Palette) Generate(maxIterations int) {
	if maxIterations < 0 {
		maxIterations = 0
	}
	if p.cacheFor == maxIterations && len(p.cache) == maxIterations+1 {
		return
	}

	cache := make([]colorful.Color, maxIterations+1)
	for i := range cache {
		cache[i] = p.ColourAt(p.position(i, maxIterations), true)
	}
	p.cache = cache
	p.cacheFor = maxIterations
}

// position is where iteration i of maxIterations lands in [0, 1].
func (p *Palette) position(i, maxIterations int) float64 {
	if p.length == 0 {
		return 0
	}
	switch p.mapping {
	case Constant:
		if maxIterations == 0 {
			return 0
		}
		total := float64(i) / float64(maxIterations)
		frac := p.length / 100
		return math.Mod(total, frac) / frac
	default:
		period := p.length / 100 * PaletteDepth
		return math.Mod(float64(i), period) / period
	}
}

// Cache returns the materialized palette, or nil before Generate.
func (p *Palette) Cache() []colorful.Color {
	if p.cacheFor < 0 {
		return nil
	}
	return p.cache
}

// Lookup maps a (fractional) iteration value to a colour by blending the
// two neighbouring cache entries. 0 is the in-set sentinel and maps to black.
func (p *Palette) Lookup(value float64) colorful.Color {
	cache := p.Cache()
	if value == 0 || value < 0 || math.IsNaN(value) || len(cache) == 0 {
		return Black
	}
	last := len(cache) - 1
	if math.IsInf(value, 1) || value >= float64(last) {
		return cache[last]
	}

	lo := int(value)
	hi := min(lo+1, last)
	return cache[lo].BlendRgb(cache[hi], value-float64(lo))
}
