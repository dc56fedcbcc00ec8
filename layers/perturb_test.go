package layers

import (
	"math"
	"testing"

	"github.com/costott/mandlebrot-sub000/numeric"
	"github.com/costott/mandlebrot-sub000/palette"
)

func TestReferenceOrbit(t *testing.T) {
	tests := []struct {
		name    string
		re, im  float64
		maxIter int
		length  int
	}{
		{"bounded", -0.5, 0, 50, 51},
		{"escapes", -1, 1, 50, 5},
		{"single step", 0, 0, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewReferenceOrbit(numeric.NewBigComplex(tt.re, tt.im, numeric.DefaultPrec), iters(tt.maxIter))
			if o.Len() != tt.length {
				t.Errorf("Len() = %d, want %d", o.Len(), tt.length)
			}
			if o.z[0] != (numeric.Complex{}) || o.z[1] != numeric.NewComplex(tt.re, tt.im) {
				t.Errorf("orbit starts %v, %v", o.z[0], o.z[1])
			}
		})
	}
}

// Perturbed escape counts must match iterating every pixel at full
// precision, including around a centre whose own orbit escapes early.
func TestRunPerturbedMatchesBig(t *testing.T) {
	tests := []struct {
		name    string
		re, im  string
		step    float64
		maxIter int
	}{
		{"shallow", "-0.5", "0", 0.05, 100},
		{"needle", "-1.25", "0.3", 0.002, 200},
		{"seahorse", "-0.7436438870", "0.1318259042", 1e-9, 2000},
		{"seahorse deeper", "-0.7436438870", "0.1318259042", 1e-12, 2000},
	}
	const n = 9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			centre, err := numeric.ParseBigComplex(tt.re, tt.im, 128)
			if err != nil {
				t.Fatal(err)
			}
			it := iters(tt.maxIter)
			o := NewReferenceOrbit(centre, it)

			escaped := 0
			for y := 0; y < n; y++ {
				for x := 0; x < n; x++ {
					dc := numeric.NewComplex(float64(x-n/2)*tt.step, -float64(y-n/2)*tt.step)

					want := newSmoothCount()
					wantIn := Run(centre.Add(dc.Big(128)), centre.Add(dc.Big(128)), it, []Implementor{want})
					got := newSmoothCount()
					gotIn := RunPerturbed(o, dc, it, []Implementor{got})

					if gotIn != wantIn {
						t.Fatalf("offset %v: in set %v, full precision says %v", dc, gotIn, wantIn)
					}
					if d := math.Abs(got.Output() - want.Output()); d > 1e-6 {
						t.Errorf("offset %v: smooth count %v, full precision %v", dc, got.Output(), want.Output())
					}
					if !wantIn {
						escaped++
					}
				}
			}
			if escaped == 0 {
				t.Error("no pixel escaped")
			}
		})
	}
}

func TestRunPerturbedCallsImplementors(t *testing.T) {
	centre := numeric.NewBigComplex(-0.5, 0, numeric.DefaultPrec)
	for _, dc := range []numeric.Complex{{}, numeric.NewComplex(-0.5, 1), numeric.NewComplex(5.5, 0)} {
		want, got := &recorder{}, &recorder{}
		it := iters(40)
		c := centre.Add(dc.Big(numeric.DefaultPrec))
		wantIn := Run(c, c, it, []Implementor{want})
		gotIn := RunPerturbed(NewReferenceOrbit(centre, it), dc, it, []Implementor{got})
		if gotIn != wantIn || *got != *want {
			t.Errorf("offset %v: perturbed %+v (%v), direct %+v (%v)", dc, *got, gotIn, *want, wantIn)
		}
	}
}

func TestColourPixelPerturbedMatches(t *testing.T) {
	l := mustNew(t,
		Layer{Kind: Colour{}, Range: OutSet, Strength: 1, Palette: palette.Default()},
		Layer{Kind: Shading3D{}, Range: OutSet, Strength: 0.5},
	)
	l.GeneratePalettes(200)
	centre := numeric.NewBigComplex(-0.75, 0.1, numeric.DefaultPrec)
	it := iters(200)
	o := NewReferenceOrbit(centre, it)

	for _, dc := range []numeric.Complex{numeric.NewComplex(0.01, 0), numeric.NewComplex(-0.003, 0.02)} {
		got := l.ColourPixelPerturbed(o, dc, it)
		want := l.ColourPixelBig(centre.Add(dc.Big(numeric.DefaultPrec)), it)
		if !got.AlmostEqualRgb(want) {
			t.Errorf("offset %v: perturbed %v, full precision %v", dc, got, want)
		}
	}
}
