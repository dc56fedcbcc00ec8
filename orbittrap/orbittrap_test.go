package orbittrap

import (
	"math"
	"strings"
	"testing"

	"github.com/costott/mandlebrot-sub000/numeric"
)

func c(re, im float64) numeric.Complex { return numeric.NewComplex(re, im) }

func TestDistance2(t *testing.T) {
	tests := []struct {
		name string
		trap Trap
		z    numeric.Complex
		want float64
	}{
		{"point at centre", NewPoint(c(0, 0)), c(0, 0), 0},
		{"point", NewPoint(c(1, 1)), c(4, 5), 25},
		{"cross on arm", NewCross(c(0, 0), 1), c(0.5, 0), 0},
		{"cross inside arms", NewCross(c(0, 0), 1), c(0.5, 0.2), 0.04},
		{"cross past tip", NewCross(c(0, 0), 1), c(3, 0.5), 4.25},
		{"unbounded cross", NewCross(c(0, 0), 0), c(3, 0.5), 0.25},
		{"circle on boundary", NewCircle(c(0, 0), 1), c(0, 1), 0},
		{"circle centre", NewCircle(c(0, 0), 2), c(0, 0), 4},
		{"circle outside", NewCircle(c(1, 0), 1), c(4, 0), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.trap.Distance2(tt.z)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%v.Distance2(%v) = %v, want %v", tt.trap, tt.z, got, tt.want)
			}
		})
	}
}

func TestDistance2NeverNegative(t *testing.T) {
	traps := []Trap{
		NewPoint(c(-0.5, 0.3)),
		NewCross(c(0.2, -0.1), 0.5),
		NewCross(c(0.2, -0.1), 0),
		NewCircle(c(0, 0), 1.5),
	}
	for _, tr := range traps {
		for x := -3.0; x <= 3; x += 0.25 {
			for y := -3.0; y <= 3; y += 0.25 {
				if d := tr.Distance2(c(x, y)); d < 0 || math.IsNaN(d) {
					t.Fatalf("%v.Distance2(%v, %v) = %v", tr, x, y, d)
				}
			}
		}
	}
}

func TestGreatestDistance2(t *testing.T) {
	b := math.Sqrt(Bailout)
	tests := []struct {
		name string
		trap Trap
		want float64
	}{
		{"point origin", NewPoint(c(0, 0)), Bailout},
		{"point", NewPoint(c(3, 4)), (b + 5) * (b + 5)},
		{"cross", NewCross(c(0, 0), 1), Bailout},
		{"circle small", NewCircle(c(0, 0), 1), (b - 1) * (b - 1)},
		{"circle huge", NewCircle(c(0, 0), 100), 100 * 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trap.GreatestDistance2(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCircleMinimumDistance2(t *testing.T) {
	if got := NewCircle(c(0, 0), 1).MinimumDistance2(); got != 0 {
		t.Errorf("small circle: got %v, want 0", got)
	}
	want := (10 - math.Sqrt(Bailout)) * (10 - math.Sqrt(Bailout))
	if got := NewCircle(c(0, 0), 10).MinimumDistance2(); math.Abs(got-want) > 1e-9 {
		t.Errorf("big circle: got %v, want %v", got, want)
	}
}

func TestAnalysisGreatestDistance2(t *testing.T) {
	b := math.Sqrt(Bailout)
	p := c(3, -4)
	tests := []struct {
		name string
		trap Trap
		want float64
	}{
		{"point distance", NewPoint(p), (b + 5) * (b + 5)},
		{"point real", NewPoint(p).WithAnalysis(Real), (b + 3) * (b + 3)},
		{"point imaginary", NewPoint(p).WithAnalysis(Imaginary), (b + 4) * (b + 4)},
		{"point angle", NewPoint(p).WithAnalysis(Angle), 4 * math.Pi * math.Pi},
		{"point back to distance", NewPoint(p).WithAnalysis(Angle).WithAnalysis(Distance), (b + 5) * (b + 5)},
		{"cross angle", NewCross(p, 1).WithAnalysis(Angle), (b + 5) * (b + 5)},
		{"circle real", NewCircle(c(0, 0), 1).WithAnalysis(Real), (b - 1) * (b - 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trap.GreatestDistance2(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVector(t *testing.T) {
	z := c(2.5, -1)
	if got := NewPoint(c(1, 1)).WithAnalysis(Real).Vector(z); got != c(1.5, -2) {
		t.Errorf("point vector = %v", got)
	}
	for _, tr := range []Trap{NewCross(c(1, 1), 1), NewCircle(c(1, 1), 1)} {
		if got := tr.Vector(z); got != (numeric.Complex{}) {
			t.Errorf("%v.Vector = %v, want 0", tr, got)
		}
	}
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		in   string
		want Analysis
	}{
		{"", Distance},
		{"distance", Distance},
		{"Real", Real},
		{"imag", Imaginary},
		{"angle", Angle},
	}
	for _, tt := range tests {
		got, err := ParseAnalysis(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseAnalysis(%q) = %v, %v", tt.in, got, err)
		}
		if tt.in != "" && got.String() != strings.ToLower(tt.in) && tt.in != "imag" {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}
	if _, err := ParseAnalysis("colour"); err == nil {
		t.Error("expected error")
	}
}
