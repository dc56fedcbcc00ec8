package numeric

import (
	"fmt"
	"math"
	"math/big"
)

// DefaultPrec is the significand precision, in bits, used for deep zoom coordinates.
const DefaultPrec = 128

// BigComplex is an arbitrary precision complex number. Every operation
// allocates its result; receivers and arguments are never modified, so a
// BigComplex can be shared between goroutines like a plain value.
type BigComplex struct {
	re, im *big.Float
	prec   uint
}

func newFloat(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetMode(big.ToNearestEven)
}

// NewBigComplex creates a BigComplex from machine floats. A prec of 0 selects DefaultPrec.
func NewBigComplex(re, im float64, prec uint) BigComplex {
	if prec == 0 {
		prec = DefaultPrec
	}
	return BigComplex{
		re:   newFloat(prec).SetFloat64(re),
		im:   newFloat(prec).SetFloat64(im),
		prec: prec,
	}
}

// ParseBigComplex reads the real and imaginary parts from decimal strings,
// keeping digits beyond machine precision.
func ParseBigComplex(re, im string, prec uint) (BigComplex, error) {
	if prec == 0 {
		prec = DefaultPrec
	}
	r, _, err := newFloat(prec).Parse(re, 10)
	if err != nil {
		return BigComplex{}, fmt.Errorf("parse real part %q: %w", re, err)
	}
	i, _, err := newFloat(prec).Parse(im, 10)
	if err != nil {
		return BigComplex{}, fmt.Errorf("parse imaginary part %q: %w", im, err)
	}
	return BigComplex{re: r, im: i, prec: prec}, nil
}

// Prec reports the precision in bits.
func (c BigComplex) Prec() uint {
	if c.prec == 0 {
		return DefaultPrec
	}
	return c.prec
}

func (c BigComplex) f() *big.Float {
	return newFloat(c.Prec())
}

func (c BigComplex) part(x *big.Float) *big.Float {
	if x == nil {
		return c.f()
	}
	return x
}

// Real returns a copy of the real part.
func (c BigComplex) Real() *big.Float {
	return c.f().Set(c.part(c.re))
}

// Imag returns a copy of the imaginary part.
func (c BigComplex) Imag() *big.Float {
	return c.f().Set(c.part(c.im))
}

func (c BigComplex) with(re, im *big.Float) BigComplex {
	return BigComplex{re: re, im: im, prec: c.Prec()}
}

func (c BigComplex) Add(o BigComplex) BigComplex {
	return c.with(
		c.f().Add(c.part(c.re), o.part(o.re)),
		c.f().Add(c.part(c.im), o.part(o.im)),
	)
}

func (c BigComplex) Sub(o BigComplex) BigComplex {
	return c.with(
		c.f().Sub(c.part(c.re), o.part(o.re)),
		c.f().Sub(c.part(c.im), o.part(o.im)),
	)
}

func (c BigComplex) Mul(o BigComplex) BigComplex {
	a, b := c.part(c.re), c.part(c.im)
	x, y := o.part(o.re), o.part(o.im)
	return c.with(
		c.f().Sub(c.f().Mul(a, x), c.f().Mul(b, y)),
		c.f().Add(c.f().Mul(a, y), c.f().Mul(b, x)),
	)
}

func (c BigComplex) MulScalar(s float64) BigComplex {
	bs := c.f().SetFloat64(s)
	return c.with(
		c.f().Mul(c.part(c.re), bs),
		c.f().Mul(c.part(c.im), bs),
	)
}

// Div multiplies by the conjugate of o and divides by |o|².
func (c BigComplex) Div(o BigComplex) (BigComplex, error) {
	x, y := o.part(o.re), o.part(o.im)
	d := c.f().Add(c.f().Mul(x, x), c.f().Mul(y, y))
	if d.Sign() == 0 {
		return NewBigComplex(0, 0, c.Prec()), ErrDivisionByZero
	}
	n := c.Mul(o.Conjugate())
	return c.with(
		c.f().Quo(n.re, d),
		c.f().Quo(n.im, d),
	), nil
}

func (c BigComplex) DivScalar(s float64) (BigComplex, error) {
	if s == 0 {
		return NewBigComplex(0, 0, c.Prec()), ErrDivisionByZero
	}
	bs := c.f().SetFloat64(s)
	return c.with(
		c.f().Quo(c.part(c.re), bs),
		c.f().Quo(c.part(c.im), bs),
	), nil
}

func (c BigComplex) Square() BigComplex {
	a, b := c.part(c.re), c.part(c.im)
	im := c.f().Mul(a, b)
	return c.with(
		c.f().Sub(c.f().Mul(a, a), c.f().Mul(b, b)),
		im.Add(im, im),
	)
}

// Pow expands (re + im·i)^n binomially, see Complex.Pow.
func (c BigComplex) Pow(n uint) BigComplex {
	re, im := c.f(), c.f()
	a, b := c.part(c.re), c.part(c.im)
	for k := uint(0); k <= n; k++ {
		iPow := n - k
		coef := c.f().SetInt(new(big.Int).Binomial(int64(n), int64(k)))
		coef.Mul(coef, c.bigPow(b, iPow))
		coef.Mul(coef, c.bigPow(a, k))
		switch iPow % 4 {
		case 0:
			re.Add(re, coef)
		case 1:
			im.Add(im, coef)
		case 2:
			re.Sub(re, coef)
		case 3:
			im.Sub(im, coef)
		}
	}
	return c.with(re, im)
}

func (c BigComplex) bigPow(x *big.Float, n uint) *big.Float {
	r := c.f().SetInt64(1)
	for i := uint(0); i < n; i++ {
		r.Mul(r, x)
	}
	return r
}

func (c BigComplex) Conjugate() BigComplex {
	return c.with(
		c.f().Set(c.part(c.re)),
		c.f().Neg(c.part(c.im)),
	)
}

// AbsSquared is computed at full precision and rounded once to float64.
func (c BigComplex) AbsSquared() float64 {
	a, b := c.part(c.re), c.part(c.im)
	s := c.f().Add(c.f().Mul(a, a), c.f().Mul(b, b))
	v, _ := s.Float64()
	return v
}

func (c BigComplex) Arg() float64 {
	re, _ := c.part(c.re).Float64()
	im, _ := c.part(c.im).Float64()
	return math.Atan2(im, re)
}

func (c BigComplex) Complex() Complex {
	re, _ := c.part(c.re).Float64()
	im, _ := c.part(c.im).Float64()
	return Complex{re, im}
}

// Equal reports whether both parts compare equal.
func (c BigComplex) Equal(o BigComplex) bool {
	return c.part(c.re).Cmp(o.part(o.re)) == 0 && c.part(c.im).Cmp(o.part(o.im)) == 0
}

// Text formats both parts as decimal strings with enough digits to round trip.
func (c BigComplex) Text() (re, im string) {
	return c.part(c.re).Text('g', -1), c.part(c.im).Text('g', -1)
}

func (c BigComplex) String() string {
	re, im := c.Text()
	if len(im) > 0 && im[0] != '-' {
		im = "+" + im
	}
	return re + im + "i"
}
