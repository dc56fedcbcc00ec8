// Package layers runs the escape time engine for a pixel and folds an ordered
// stack of colouring layers into its final colour.
package layers

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/costott/mandlebrot-sub000/numeric"
	"github.com/costott/mandlebrot-sub000/palette"
)

var (
	ErrNoLayers         = errors.New("there must be at least one layer")
	ErrShadingFirst     = errors.New("the first layer can't be a shading layer")
	ErrUncoveredShading = errors.New("shading layer isn't covered by an earlier colour layer")
	ErrStrength         = errors.New("layer strength outside [0, 1]")
	ErrNoPalette        = errors.New("layer has no palette")
	ErrNoKind           = errors.New("layer has no kind")
	ErrIndex            = errors.New("layer index out of range")
)

// Layer is one stage of the colouring pipeline.
type Layer struct {
	Kind  Kind
	Range Range
	// Strength is how much of the colour so far this layer replaces.
	Strength float64
	// Palette is unused by Shading3D layers and may be nil for them.
	Palette *palette.Palette
}

// Layers is an ordered, validated layer stack together with the
// implementors its layers read from.
//
// Colouring pixels is safe from many goroutines once GeneratePalettes has
// run. Mutations must not overlap a render.
type Layers struct {
	layers       []Layer
	implementors []Implementor
	// index maps each layer to the implementor it reads.
	index    []int
	revision uint64
}

func New(ls []Layer) (*Layers, error) {
	l := &Layers{}
	if err := l.set(slices.Clone(ls)); err != nil {
		return nil, err
	}
	return l, nil
}

func validate(ls []Layer) error {
	if len(ls) == 0 {
		return ErrNoLayers
	}
	for i, layer := range ls {
		if layer.Kind == nil {
			return fmt.Errorf("layer %d: %w", i, ErrNoKind)
		}
		if layer.Strength < 0 || layer.Strength > 1 {
			return fmt.Errorf("layer %d strength %v: %w", i, layer.Strength, ErrStrength)
		}
		if _, ok := layer.Kind.(Shading3D); !ok && layer.Palette == nil {
			return fmt.Errorf("layer %d (%v): %w", i, layer.Kind, ErrNoPalette)
		}
		if k, ok := layer.Kind.(ColourOrbitTrap); ok && k.Trap == nil {
			return fmt.Errorf("layer %d: orbit trap layer without a trap", i)
		}
		if k, ok := layer.Kind.(ShadingOrbitTrap); ok && k.Trap == nil {
			return fmt.Errorf("layer %d: orbit trap layer without a trap", i)
		}
	}
	if ls[0].Kind.IsShading() {
		return fmt.Errorf("%v: %w", ls[0].Kind, ErrShadingFirst)
	}

	var colourIn, colourOut bool
	for i, layer := range ls {
		if layer.Kind.IsShading() {
			if !layer.Range.covered(colourIn, colourOut) {
				return fmt.Errorf("layer %d (%v, %v): %w", i, layer.Kind, layer.Range, ErrUncoveredShading)
			}
			continue
		}
		colourIn = colourIn || layer.Range.Applies(true)
		colourOut = colourOut || layer.Range.Applies(false)
	}
	return nil
}

// set validates ls and, only if it is valid, replaces the stack and rebuilds
// the implementors.
func (l *Layers) set(ls []Layer) error {
	if err := validate(ls); err != nil {
		return err
	}
	l.layers = ls
	l.implementors, l.index = buildImplementors(ls)
	l.revision++
	return nil
}

// buildImplementors creates one implementor per algorithm, shared by every
// layer that needs it, and one per orbit trap layer.
func buildImplementors(ls []Layer) ([]Implementor, []int) {
	var imps []Implementor
	index := make([]int, len(ls))
	shared := make(map[algorithm]int)

	sharedIndex := func(a algorithm, create func() Implementor) int {
		if i, ok := shared[a]; ok {
			return i
		}
		imps = append(imps, create())
		shared[a] = len(imps) - 1
		return len(imps) - 1
	}

	for i, layer := range ls {
		switch layer.Kind.(type) {
		case Colour, Shading:
			index[i] = sharedIndex(smoothAlgorithm, func() Implementor { return newSmoothCount() })
		case Shading3D:
			index[i] = sharedIndex(lightAlgorithm, func() Implementor { return newLight() })
		case ColourOrbitTrap, ShadingOrbitTrap:
			t, _ := trapOf(layer.Kind)
			imps = append(imps, newTrapDistance(t))
			index[i] = len(imps) - 1
		}
	}
	return imps, index
}

func (l *Layers) Len() int { return len(l.layers) }

// Layer returns a copy of the layer at i.
func (l *Layers) Layer(i int) Layer { return l.layers[i] }

// Layers returns a copy of the stack.
func (l *Layers) Layers() []Layer { return slices.Clone(l.layers) }

// Implementors is the number of distinct implementors the stack runs per pixel.
func (l *Layers) Implementors() int { return len(l.implementors) }

// ImplementorOf is the index of the implementor layer i reads.
func (l *Layers) ImplementorOf(i int) int { return l.index[i] }

// Revision changes whenever the stack is mutated. Palette edits are tracked
// by each palette's own revision.
func (l *Layers) Revision() uint64 { return l.revision }

func (l *Layers) checkIndex(i int) error {
	if i < 0 || i >= len(l.layers) {
		return fmt.Errorf("%d: %w", i, ErrIndex)
	}
	return nil
}

// Add appends a layer.
func (l *Layers) Add(layer Layer) error {
	return l.set(append(slices.Clone(l.layers), layer))
}

func (l *Layers) Delete(i int) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	return l.set(slices.Delete(slices.Clone(l.layers), i, i+1))
}

// Reorder moves the layer at from so that it ends up at index to.
func (l *Layers) Reorder(from, to int) error {
	if err := l.checkIndex(from); err != nil {
		return err
	}
	if err := l.checkIndex(to); err != nil {
		return err
	}
	ls := slices.Clone(l.layers)
	layer := ls[from]
	ls = slices.Delete(ls, from, from+1)
	ls = slices.Insert(ls, to, layer)
	return l.set(ls)
}

func (l *Layers) ChangeKind(i int, k Kind) error {
	return l.update(i, func(layer *Layer) { layer.Kind = k })
}

func (l *Layers) SetStrength(i int, strength float64) error {
	return l.update(i, func(layer *Layer) { layer.Strength = strength })
}

func (l *Layers) SetRange(i int, r Range) error {
	return l.update(i, func(layer *Layer) { layer.Range = r })
}

func (l *Layers) SetPalette(i int, p *palette.Palette) error {
	return l.update(i, func(layer *Layer) { layer.Palette = p })
}

func (l *Layers) update(i int, fn func(*Layer)) error {
	if err := l.checkIndex(i); err != nil {
		return err
	}
	ls := slices.Clone(l.layers)
	fn(&ls[i])
	return l.set(ls)
}

// GeneratePalettes materializes every layer palette for maxIterations. It
// must run before pixels are coloured.
func (l *Layers) GeneratePalettes(maxIterations int) {
	for _, layer := range l.layers {
		if layer.Palette != nil {
			layer.Palette.Generate(maxIterations)
		}
	}
}

// ColourPixel runs the engine for the plane point c at machine precision.
func (l *Layers) ColourPixel(c numeric.Complex, it Iteration) colorful.Color {
	imps := cloneAll(l.implementors)
	var inSet bool
	if it.Julia != nil {
		inSet = Run(c, *it.Julia, it, imps)
	} else {
		inSet = Run(c, c, it, imps)
	}
	return l.fold(imps, inSet)
}

// ColourPixelBig runs the engine for c at c's precision.
func (l *Layers) ColourPixelBig(c numeric.BigComplex, it Iteration) colorful.Color {
	imps := cloneAll(l.implementors)
	var inSet bool
	if it.Julia != nil {
		inSet = Run(c, it.Julia.Big(c.Prec()), it, imps)
	} else {
		inSet = Run(c, c, it, imps)
	}
	return l.fold(imps, inSet)
}

// fold blends the layers left to right. A point no layer applies to is black.
func (l *Layers) fold(imps []Implementor, inSet bool) colorful.Color {
	var acc colorful.Color
	have := false

	for i, layer := range l.layers {
		if !layer.Range.Applies(inSet) {
			continue
		}
		out := imps[l.index[i]].Output()

		var this colorful.Color
		switch layer.Kind.(type) {
		case Colour, ColourOrbitTrap:
			this = layer.Palette.Lookup(out)
		case Shading, ShadingOrbitTrap:
			if !have {
				continue
			}
			shade := layer.Palette.Lookup(out)
			this = acc.BlendRgb(palette.Black, 1-shade.R)
		case Shading3D:
			if !have {
				continue
			}
			this = lit(out, acc)
		}

		if have {
			acc = acc.BlendRgb(this, layer.Strength)
		} else {
			acc, have = this, true
		}
	}

	if !have {
		return palette.Black
	}
	return acc
}

// lit darkens c by the Shading3D brightness t. 0 means the point was never lit.
func lit(t float64, c colorful.Color) colorful.Color {
	if t == 0 {
		return palette.Black
	}
	return palette.Black.BlendRgb(c, t)
}
