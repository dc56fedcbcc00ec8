package numeric

import (
	"fmt"
	"math"
)

// Complex is a machine precision complex number.
type Complex struct {
	Re, Im float64
}

func NewComplex(re, im float64) Complex {
	return Complex{Re: re, Im: im}
}

func (c Complex) Add(o Complex) Complex {
	return Complex{c.Re + o.Re, c.Im + o.Im}
}

func (c Complex) Sub(o Complex) Complex {
	return Complex{c.Re - o.Re, c.Im - o.Im}
}

func (c Complex) Mul(o Complex) Complex {
	return Complex{
		Re: c.Re*o.Re - c.Im*o.Im,
		Im: c.Re*o.Im + c.Im*o.Re,
	}
}

func (c Complex) MulScalar(s float64) Complex {
	return Complex{c.Re * s, c.Im * s}
}

// Div multiplies by the conjugate of o and divides by |o|².
func (c Complex) Div(o Complex) (Complex, error) {
	d := o.AbsSquared()
	if d == 0 {
		return Complex{}, ErrDivisionByZero
	}
	n := c.Mul(o.Conjugate())
	return Complex{n.Re / d, n.Im / d}, nil
}

func (c Complex) DivScalar(s float64) (Complex, error) {
	if s == 0 {
		return Complex{}, ErrDivisionByZero
	}
	return Complex{c.Re / s, c.Im / s}, nil
}

func (c Complex) Square() Complex {
	return Complex{
		Re: c.Re*c.Re - c.Im*c.Im,
		Im: 2 * c.Re * c.Im,
	}
}

// Pow expands (re + im·i)^n binomially. The power of i attached to each term
// selects the bucket: 0 → +re, 1 → +im, 2 → -re, 3 → -im.
func (c Complex) Pow(n uint) Complex {
	var re, im float64
	for k := uint(0); k <= n; k++ {
		iPow := n - k
		coef := choose(n, k) * ipow(c.Im, iPow) * ipow(c.Re, k)
		switch iPow % 4 {
		case 0:
			re += coef
		case 1:
			im += coef
		case 2:
			re -= coef
		case 3:
			im -= coef
		}
	}
	return Complex{re, im}
}

func (c Complex) Conjugate() Complex {
	return Complex{c.Re, -c.Im}
}

func (c Complex) AbsSquared() float64 {
	return c.Re*c.Re + c.Im*c.Im
}

// Arg is the argument in [-π, π].
func (c Complex) Arg() float64 {
	return math.Atan2(c.Im, c.Re)
}

func (c Complex) Complex() Complex {
	return c
}

// Big converts c to arbitrary precision.
func (c Complex) Big(prec uint) BigComplex {
	return NewBigComplex(c.Re, c.Im, prec)
}

func (c Complex) String() string {
	return fmt.Sprintf("%g%+gi", c.Re, c.Im)
}
