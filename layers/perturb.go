package layers

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/costott/mandlebrot-sub000/numeric"
)

// ReferenceOrbit is the Mandelbrot orbit of a view's centre, iterated at the
// centre's precision and stored at machine precision. Pixels near the centre
// are iterated as machine precision offsets from it.
type ReferenceOrbit struct {
	// z[0] is 0 and z[1] the centre. The last entry may have escaped.
	z []numeric.Complex
}

// NewReferenceOrbit iterates centre until it escapes or it.MaxIterations
// steps have been taken.
func NewReferenceOrbit(centre numeric.BigComplex, it Iteration) *ReferenceOrbit {
	steps := max(1, it.MaxIterations)
	z := numeric.NewBigComplex(0, 0, centre.Prec())
	o := &ReferenceOrbit{z: make([]numeric.Complex, 1, steps+1)}
	for i := 0; i < steps; i++ {
		z = z.Square().Add(centre)
		o.z = append(o.z, z.Complex())
		if z.AbsSquared() > it.Bailout {
			break
		}
	}
	return o
}

// Len is the number of stored iterates, including the leading 0.
func (o *ReferenceOrbit) Len() int { return len(o.z) }

// RunPerturbed iterates the point centre+dc, where centre is the point o was
// built for, feeding the implementors exactly as Run does. The offset dz from
// the reference is kept at machine precision. Whenever the orbit comes closer
// to 0 than dz, or the reference runs out, dz is rebased onto the start of
// the reference.
func RunPerturbed(o *ReferenceOrbit, dc numeric.Complex, it Iteration, imps []Implementor) bool {
	for _, im := range imps {
		im.before(it)
	}

	last := len(o.z) - 1
	var dz numeric.Complex
	m := 0
	step := func() {
		// (Z+dz)² + C+dc - (Z² + C)
		dz = o.z[m].Mul(dz).MulScalar(2).Add(dz.Square()).Add(dc)
		m++
	}

	for i := 0; i < it.MaxIterations; i++ {
		step()
		z := o.z[m].Add(dz)

		if z.AbsSquared() > it.Bailout {
			for _, im := range imps {
				im.outSet(z, i)
			}
			return false
		}
		if z.AbsSquared() < dz.AbsSquared() || m == last {
			dz, m = z, 0
		}

		for _, im := range imps {
			im.during(z, i)
		}
	}

	step()
	z := o.z[m].Add(dz)
	for _, im := range imps {
		im.inSet(z)
	}
	return true
}

// ColourPixelPerturbed colours the pixel at offset dc from the centre o was
// built for. It does not support Julia mode.
func (l *Layers) ColourPixelPerturbed(o *ReferenceOrbit, dc numeric.Complex, it Iteration) colorful.Color {
	imps := cloneAll(l.implementors)
	inSet := RunPerturbed(o, dc, it, imps)
	return l.fold(imps, inSet)
}
