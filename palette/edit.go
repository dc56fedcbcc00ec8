package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// AddPointPercent finds where AddPoint would insert: the middle of the widest
// gap between neighbouring sorted points, preferring the candidate closest to
// 50% on ties. ok is false when no gap is wider than MinAddGap.
func (p *Palette) AddPointPercent() (percent float64, ok bool) {
	maxGap := 0.0
	for i := 0; i < len(p.sorted)-1; i++ {
		lo := clampPercent(p.sorted[i].Percent)
		hi := clampPercent(p.sorted[i+1].Percent)
		gap := hi - lo
		mid := lo + gap/2
		switch {
		case gap > maxGap:
			maxGap, percent = gap, mid
		case gap == maxGap && math.Abs(mid-50) < math.Abs(percent-50):
			percent = mid
		}
	}
	return percent, maxGap > MinAddGap
}

func clampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}

// AddPoint inserts a point, coloured as the palette already is there, in
// the widest gap. It reports whether a point was added.
func (p *Palette) AddPoint() bool {
	percent, ok := p.AddPointPercent()
	if !ok {
		return false
	}
	if p.hasPercent(percent, -1) {
		return false
	}
	colour := p.ColourAt(percent/100, false)
	p.points = append(p.points, ControlPoint{Colour: colour, Percent: percent})
	p.resort()
	return true
}

func (p *Palette) hasPercent(percent float64, skip int) bool {
	for i, pt := range p.points {
		if i != skip && pt.Percent == percent {
			return true
		}
	}
	return false
}

// DeletePoint removes the authored point at index; at least two always remain.
func (p *Palette) DeletePoint(index int) error {
	if index < 0 || index >= len(p.points) {
		return fmt.Errorf("delete point %d: %w", index, ErrIndex)
	}
	if len(p.points) <= 2 {
		return ErrTooFewPoints
	}
	p.points = append(p.points[:index], p.points[index+1:]...)
	p.resort()
	return nil
}

// ChangePointPercent moves the authored point at index, refusing collisions.
func (p *Palette) ChangePointPercent(index int, percent float64) error {
	if index < 0 || index >= len(p.points) {
		return fmt.Errorf("change point %d: %w", index, ErrIndex)
	}
	if !inRange(percent) {
		return fmt.Errorf("change point %d to %v: %w", index, percent, ErrPercentRange)
	}
	if p.hasPercent(percent, index) {
		return fmt.Errorf("change point %d to %v: %w", index, percent, ErrDuplicatePercent)
	}
	p.points[index].Percent = percent
	p.resort()
	return nil
}

// SetColour recolours the authored point at index.
func (p *Palette) SetColour(index int, c colorful.Color) error {
	if index < 0 || index >= len(p.points) {
		return fmt.Errorf("set colour %d: %w", index, ErrIndex)
	}
	p.points[index].Colour = c
	p.resort()
	return nil
}

// SetLength changes the palette length percent. It reports whether the value changed.
func (p *Palette) SetLength(percent float64) (bool, error) {
	if !inRange(percent) {
		return false, fmt.Errorf("palette length %v: %w", percent, ErrPercentRange)
	}
	if p.length == percent {
		return false, nil
	}
	p.length = percent
	p.touch()
	return true, nil
}

// SetOffset changes the offset percent. It reports whether the value changed.
func (p *Palette) SetOffset(percent float64) (bool, error) {
	if !inRange(percent) {
		return false, fmt.Errorf("palette offset %v: %w", percent, ErrPercentRange)
	}
	if p.offset == percent {
		return false, nil
	}
	p.offset = percent
	p.touch()
	return true, nil
}

func (p *Palette) SetMapping(m Mapping) {
	if p.mapping == m {
		return
	}
	p.mapping = m
	p.touch()
}

// Interpolate morphs a into b. Both must have the same number of control
// points; the result keeps a's mapping.
func Interpolate(a, b *Palette, t float64) (*Palette, error) {
	if len(a.points) != len(b.points) {
		return nil, fmt.Errorf("%d vs %d points: %w", len(a.points), len(b.points), ErrIncompatible)
	}
	as, bs := a.sorted[1:len(a.sorted)-1], b.sorted[1:len(b.sorted)-1]
	points := make([]ControlPoint, len(as))
	for i := range as {
		points[i] = ControlPoint{
			Colour:  as[i].Colour.BlendRgb(bs[i].Colour, t),
			Percent: lerp(as[i].Percent, bs[i].Percent, t),
		}
	}
	return New(points, a.mapping, lerp(a.length, b.length, t), lerp(a.offset, b.offset, t))
}

func lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

// Gradient samples the palette, without offset, at width evenly spaced positions.
func (p *Palette) Gradient(width int) []colorful.Color {
	if width <= 0 {
		return nil
	}
	if width == 1 {
		return []colorful.Color{p.ColourAt(0, false)}
	}
	out := make([]colorful.Color, width)
	for i := range out {
		// stop just short of 1 so the last sample is the end of the palette, not its wrap
		pos := math.Min(float64(i)/float64(width-1), math.Nextafter(1, 0))
		out[i] = p.ColourAt(pos, false)
	}
	return out
}
