// Package numeric implements complex arithmetic at machine and arbitrary precision.
//
// Complex and BigComplex share one operation set, expressed by Number, so the
// iteration engine can be written once and run at either precision.
package numeric

import "errors"

// ErrDivisionByZero is returned when dividing by a zero magnitude divisor.
// The accompanying value is the zero sentinel, never a non-finite number.
var ErrDivisionByZero = errors.New("division by zero magnitude")

// Number is the algebraic contract shared by Complex and BigComplex.
type Number[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	MulScalar(float64) T
	Div(T) (T, error)
	DivScalar(float64) (T, error)
	Square() T
	Pow(n uint) T
	Conjugate() T
	AbsSquared() float64
	Arg() float64

	// Complex returns the value rounded to machine precision.
	Complex() Complex
}

var (
	_ Number[Complex]    = Complex{}
	_ Number[BigComplex] = BigComplex{}
)

// DistanceSquared is |a-b|².
func DistanceSquared[T Number[T]](a, b T) float64 {
	return a.Sub(b).AbsSquared()
}

// choose is the binomial coefficient C(n, k).
func choose(n, k uint) float64 {
	if k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1.0
	for i := uint(1); i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}

// ipow raises x to a non-negative integer power by repeated multiplication,
// keeping integer inputs exact.
func ipow(x float64, n uint) float64 {
	r := 1.0
	for i := uint(0); i < n; i++ {
		r *= x
	}
	return r
}
