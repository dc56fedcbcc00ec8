package mandel

import (
	"image"
	"math"

	"github.com/costott/mandlebrot-sub000/numeric"
)

// View is everything about a render that is not colouring: where in the
// plane, how far zoomed in, how large and how deep.
type View struct {
	Center numeric.BigComplex
	// PixelStep is the distance in the plane between neighbouring pixels.
	PixelStep     float64
	Width, Height int
	MaxIterations int
	// Bailout is the squared escape radius.
	Bailout float64
	// Julia switches to the Julia set of this constant.
	Julia *numeric.Complex
	// Precise forces arbitrary precision iteration at any zoom.
	Precise bool
}

func (v View) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.Width, v.Height)
}

// Equal reports whether two views would render the same pixels.
func (v View) Equal(o View) bool {
	if (v.Julia == nil) != (o.Julia == nil) {
		return false
	}
	if v.Julia != nil && *v.Julia != *o.Julia {
		return false
	}
	return v.Center.Equal(o.Center) &&
		v.PixelStep == o.PixelStep &&
		v.Width == o.Width && v.Height == o.Height &&
		v.MaxIterations == o.MaxIterations &&
		v.Bailout == o.Bailout &&
		v.Precise == o.Precise
}

// Zoom returns the view scaled by factor around its centre; factor > 1 zooms in.
func (v View) Zoom(factor float64) View {
	v.PixelStep /= factor
	return v
}

// Region within the Mandelbrot set
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// View fits the region into a w×h grid. The pixel step is chosen so the
// whole region is visible.
func (r Region) View(w, h, maxIterations int) View {
	step := math.Max((r.Xmax-r.Xmin)/float64(w), (r.Ymax-r.Ymin)/float64(h))
	return View{
		Center:        numeric.NewBigComplex((r.Xmin+r.Xmax)/2, (r.Ymin+r.Ymax)/2, 0),
		PixelStep:     step,
		Width:         w,
		Height:        h,
		MaxIterations: maxIterations,
		Bailout:       20,
	}
}

// Named regions of the plane
var (
	// Whole set
	FullSet = Region{
		Xmin: -2.5,
		Xmax: 1.0,
		Ymin: -1.25,
		Ymax: 1.25,
	}

	// Seahorse valley between the main cardioid and the period 2 bulb
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant valley at the cusp of the main cardioid
	ElephantValley = Region{
		Xmin: 0.25,
		Xmax: 0.35,
		Ymin: -0.05,
		Ymax: 0.05,
	}

	// Small copy of the set wrapped in spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Threefold spiral in seahorse valley
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Minibrot near the tip of the needle
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7590,
		Xmax: -1.7500,
		Ymin: -0.0045,
		Ymax: 0.0045,
	}
)

// Landmarks maps a name usable in configuration to its region.
var Landmarks = map[string]Region{
	"full":     FullSet,
	"seahorse": SeahorseValley,
	"elephant": ElephantValley,
	"spiral":   SpiralMinibrot,
	"triple":   TripleSpiral,
	"minibrot": MinibrotInMiniSpiral,
}
