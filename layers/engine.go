package layers

import (
	"errors"
	"fmt"

	"github.com/costott/mandlebrot-sub000/numeric"
)

// DefaultBailout is the squared magnitude past which an orbit has escaped.
const DefaultBailout = 20.0

var (
	ErrBadIterations = errors.New("max iterations must be positive")
	ErrBadBailout    = errors.New("bailout must be greater than 1")
)

// Iteration holds the per render parameters of the escape time recurrence.
type Iteration struct {
	MaxIterations int
	Bailout       float64
	// Julia, when set, iterates z² + Julia starting from the pixel instead of
	// z² + pixel starting from the pixel.
	Julia *numeric.Complex
}

func (it Iteration) Validate() error {
	if it.MaxIterations < 1 {
		return fmt.Errorf("%d: %w", it.MaxIterations, ErrBadIterations)
	}
	// log2(log2(|z|²)/2) is only defined past 1
	if !(it.Bailout > 1) {
		return fmt.Errorf("%v: %w", it.Bailout, ErrBadBailout)
	}
	return nil
}

// Run iterates z ← z² + c from z0 and feeds every implementor. It reports
// whether the orbit stayed bounded for MaxIterations steps.
func Run[T numeric.Number[T]](z0, c T, it Iteration, imps []Implementor) bool {
	for _, im := range imps {
		im.before(it)
	}

	z := z0
	for i := 0; i < it.MaxIterations; i++ {
		if z.AbsSquared() > it.Bailout {
			if len(imps) > 0 {
				zc := z.Complex()
				for _, im := range imps {
					im.outSet(zc, i)
				}
			}
			return false
		}

		if len(imps) > 0 {
			zc := z.Complex()
			for _, im := range imps {
				im.during(zc, i)
			}
		}

		z = z.Square().Add(c)
	}

	zc := z.Complex()
	for _, im := range imps {
		im.inSet(zc)
	}
	return true
}

// SmoothIteration is the fractional escape count of c, or 0 when c stays bounded.
func SmoothIteration[T numeric.Number[T]](c T, maxIterations int, bailout float64) float64 {
	s := newSmoothCount()
	Run(c, c, Iteration{MaxIterations: maxIterations, Bailout: bailout}, []Implementor{s})
	return s.Output()
}
