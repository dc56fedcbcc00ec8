package layers

import (
	"fmt"

	"github.com/costott/mandlebrot-sub000/orbittrap"
)

// Kind is one of Colour, Shading, Shading3D, ColourOrbitTrap or ShadingOrbitTrap.
type Kind interface {
	// IsShading reports whether the kind darkens an existing colour rather
	// than producing one.
	IsShading() bool
	String() string

	kind()
}

// Colour maps the smooth escape count through the palette.
type Colour struct{}

// Shading darkens the colour so far by the palette's brightness at the smooth escape count.
type Shading struct{}

// Shading3D lights the colour so far as if the set were a height map.
type Shading3D struct{}

// ColourOrbitTrap maps the normalized trapped distance through the palette.
type ColourOrbitTrap struct{ Trap orbittrap.Trap }

// ShadingOrbitTrap darkens the colour so far by the trapped distance.
type ShadingOrbitTrap struct{ Trap orbittrap.Trap }

func (Colour) IsShading() bool           { return false }
func (Shading) IsShading() bool          { return true }
func (Shading3D) IsShading() bool        { return true }
func (ColourOrbitTrap) IsShading() bool  { return false }
func (ShadingOrbitTrap) IsShading() bool { return true }

func (Colour) String() string    { return "colour" }
func (Shading) String() string   { return "shading" }
func (Shading3D) String() string { return "shading3d" }
func (k ColourOrbitTrap) String() string {
	return fmt.Sprintf("colour orbit trap %v", k.Trap)
}
func (k ShadingOrbitTrap) String() string {
	return fmt.Sprintf("shading orbit trap %v", k.Trap)
}

func (Colour) kind()           {}
func (Shading) kind()          {}
func (Shading3D) kind()        {}
func (ColourOrbitTrap) kind()  {}
func (ShadingOrbitTrap) kind() {}

// trapOf returns the trap of an orbit trap kind.
func trapOf(k Kind) (orbittrap.Trap, bool) {
	switch k := k.(type) {
	case ColourOrbitTrap:
		return k.Trap, k.Trap != nil
	case ShadingOrbitTrap:
		return k.Trap, k.Trap != nil
	}
	return nil, false
}

// Range selects which points a layer is applied to.
type Range int

const (
	Both Range = iota
	InSet
	OutSet
)

// Applies reports whether a layer with this range colours a point.
func (r Range) Applies(inSet bool) bool {
	switch r {
	case InSet:
		return inSet
	case OutSet:
		return !inSet
	}
	return true
}

func (r Range) covered(inSet, outSet bool) bool {
	switch r {
	case InSet:
		return inSet
	case OutSet:
		return outSet
	}
	return inSet && outSet
}

func (r Range) String() string {
	switch r {
	case Both:
		return "both"
	case InSet:
		return "in set"
	case OutSet:
		return "out set"
	}
	return fmt.Sprintf("Range(%d)", int(r))
}

func ParseRange(s string) (Range, error) {
	switch s {
	case "both", "":
		return Both, nil
	case "in", "inset", "in set":
		return InSet, nil
	case "out", "outset", "out set":
		return OutSet, nil
	}
	return 0, fmt.Errorf("unknown layer range %q", s)
}
