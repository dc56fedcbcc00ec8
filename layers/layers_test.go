package layers

import (
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/costott/mandlebrot-sub000/numeric"
	"github.com/costott/mandlebrot-sub000/orbittrap"
	"github.com/costott/mandlebrot-sub000/palette"
)

var (
	white   = colorful.Color{R: 1, G: 1, B: 1}
	escapes = numeric.NewComplex(-1, 1)
	origin  = numeric.Complex{}
)

func solid(t *testing.T, c colorful.Color) *palette.Palette {
	t.Helper()
	p, err := palette.New([]palette.ControlPoint{{Colour: c, Percent: 0}, {Colour: c, Percent: 100}}, palette.Repeated, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustNew(t *testing.T, ls ...Layer) *Layers {
	t.Helper()
	l, err := New(ls)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestNewValidation(t *testing.T) {
	p := palette.Default()
	trap := orbittrap.NewPoint(origin)
	tests := []struct {
		name   string
		layers []Layer
		want   error
	}{
		{"empty", nil, ErrNoLayers},
		{"shading first", []Layer{{Kind: Shading{}, Strength: 1, Palette: p}}, ErrShadingFirst},
		{"shading3d first", []Layer{{Kind: Shading3D{}, Strength: 1}}, ErrShadingFirst},
		{"trap shading first", []Layer{{Kind: ShadingOrbitTrap{trap}, Strength: 1, Palette: p}}, ErrShadingFirst},
		{"uncovered", []Layer{
			{Kind: Colour{}, Range: InSet, Strength: 1, Palette: p},
			{Kind: Shading{}, Range: OutSet, Strength: 1, Palette: p},
		}, ErrUncoveredShading},
		{"half covered", []Layer{
			{Kind: Colour{}, Range: OutSet, Strength: 1, Palette: p},
			{Kind: Shading3D{}, Range: Both, Strength: 1},
		}, ErrUncoveredShading},
		{"strength", []Layer{{Kind: Colour{}, Strength: 1.5, Palette: p}}, ErrStrength},
		{"no palette", []Layer{{Kind: Colour{}, Strength: 1}}, ErrNoPalette},
		{"no kind", []Layer{{Strength: 1, Palette: p}}, ErrNoKind},
		{"valid", []Layer{
			{Kind: ColourOrbitTrap{trap}, Strength: 1, Palette: p},
			{Kind: Colour{}, Range: OutSet, Strength: 0.5, Palette: p},
			{Kind: Shading3D{}, Strength: 1},
			{Kind: Shading{}, Range: InSet, Strength: 0.2, Palette: p},
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.layers)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestImplementorsShared(t *testing.T) {
	p := palette.Default()
	l := mustNew(t,
		Layer{Kind: Colour{}, Strength: 1, Palette: p},
		Layer{Kind: Shading{}, Strength: 1, Palette: p},
		Layer{Kind: Shading3D{}, Strength: 1},
		Layer{Kind: Shading3D{}, Strength: 0.5},
		Layer{Kind: ColourOrbitTrap{orbittrap.NewPoint(origin)}, Strength: 1, Palette: p},
		Layer{Kind: ShadingOrbitTrap{orbittrap.NewPoint(origin)}, Strength: 1, Palette: p},
	)
	if got := l.Implementors(); got != 4 {
		t.Errorf("implementors = %d, want 4", got)
	}
	if l.ImplementorOf(0) != l.ImplementorOf(1) {
		t.Error("colour and shading should share an implementor")
	}
	if l.ImplementorOf(2) != l.ImplementorOf(3) {
		t.Error("shading3d layers should share an implementor")
	}
	if l.ImplementorOf(4) == l.ImplementorOf(5) {
		t.Error("every orbit trap layer needs its own implementor")
	}
}

func TestMutationsKeepStackValid(t *testing.T) {
	p := palette.Default()
	l := mustNew(t,
		Layer{Kind: Colour{}, Strength: 1, Palette: p},
		Layer{Kind: Shading{}, Strength: 1, Palette: p},
	)
	rev := l.Revision()

	if err := l.Delete(0); !errors.Is(err, ErrShadingFirst) {
		t.Errorf("Delete: err = %v, want ErrShadingFirst", err)
	}
	if err := l.Reorder(1, 0); !errors.Is(err, ErrShadingFirst) {
		t.Errorf("Reorder: err = %v, want ErrShadingFirst", err)
	}
	if err := l.ChangeKind(0, Shading3D{}); !errors.Is(err, ErrShadingFirst) {
		t.Errorf("ChangeKind: err = %v, want ErrShadingFirst", err)
	}
	if err := l.SetStrength(1, -0.1); !errors.Is(err, ErrStrength) {
		t.Errorf("SetStrength: err = %v, want ErrStrength", err)
	}
	if err := l.Delete(2); !errors.Is(err, ErrIndex) {
		t.Errorf("Delete(2): err = %v, want ErrIndex", err)
	}
	if l.Revision() != rev || l.Len() != 2 {
		t.Fatalf("rejected mutations changed the stack: rev %d -> %d, len %d", rev, l.Revision(), l.Len())
	}
	if _, ok := l.Layer(0).Kind.(Colour); !ok {
		t.Fatalf("layer 0 is %v", l.Layer(0).Kind)
	}

	if err := l.Add(Layer{Kind: ColourOrbitTrap{orbittrap.NewCircle(origin, 1)}, Strength: 0.5, Palette: p}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := l.Reorder(2, 0); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if _, ok := l.Layer(0).Kind.(ColourOrbitTrap); !ok {
		t.Errorf("layer 0 is %v after reorder", l.Layer(0).Kind)
	}
	if err := l.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if l.Len() != 2 || l.Implementors() != 2 {
		t.Errorf("len %d, implementors %d", l.Len(), l.Implementors())
	}
	if l.Revision() != rev+3 {
		t.Errorf("revision = %d, want %d", l.Revision(), rev+3)
	}
}

func TestColourPixelInSetIsBlack(t *testing.T) {
	l := mustNew(t, Layer{Kind: Colour{}, Strength: 1, Palette: solid(t, white)})
	l.GeneratePalettes(50)
	if got := l.ColourPixel(origin, iters(50)); got != palette.Black {
		t.Errorf("origin = %v, want black", got)
	}
}

func TestColourPixelColourLayer(t *testing.T) {
	p := palette.Default()
	l := mustNew(t, Layer{Kind: Colour{}, Strength: 0.3, Palette: p})
	l.GeneratePalettes(50)

	want := p.Lookup(SmoothIteration(escapes, 50, DefaultBailout))
	// the first layer takes its colour whatever its strength
	if got := l.ColourPixel(escapes, iters(50)); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestColourPixelBlending(t *testing.T) {
	red := colorful.Color{R: 1}
	l := mustNew(t,
		Layer{Kind: Colour{}, Strength: 1, Palette: solid(t, white)},
		Layer{Kind: Colour{}, Strength: 0.25, Palette: solid(t, red)},
	)
	l.GeneratePalettes(50)
	want := white.BlendRgb(red, 0.25)
	if got := l.ColourPixel(escapes, iters(50)); !got.AlmostEqualRgb(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestColourPixelShading(t *testing.T) {
	red := colorful.Color{R: 1}
	tests := []struct {
		name  string
		shade colorful.Color
		want  colorful.Color
	}{
		{"white leaves colour", white, red},
		{"black darkens by strength", palette.Black, colorful.Color{R: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mustNew(t,
				Layer{Kind: Colour{}, Strength: 1, Palette: solid(t, red)},
				Layer{Kind: Shading{}, Strength: 0.5, Palette: solid(t, tt.shade)},
			)
			l.GeneratePalettes(50)
			if got := l.ColourPixel(escapes, iters(50)); !got.AlmostEqualRgb(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColourPixelRange(t *testing.T) {
	l := mustNew(t, Layer{Kind: ColourOrbitTrap{orbittrap.NewPoint(numeric.NewComplex(2, 2))}, Range: InSet, Strength: 1, Palette: solid(t, white)})
	l.GeneratePalettes(50)

	if got := l.ColourPixel(escapes, iters(50)); got != palette.Black {
		t.Errorf("escaping point = %v, want black: no layer applies", got)
	}
	// the trap is far from the bounded orbit, so the trapped value is positive
	if got := l.ColourPixel(origin, iters(50)); got != white {
		t.Errorf("bounded point = %v, want white", got)
	}
}

func TestColourPixelShading3DStaysFinite(t *testing.T) {
	l := mustNew(t,
		Layer{Kind: Colour{}, Strength: 1, Palette: palette.Default()},
		Layer{Kind: Shading3D{}, Strength: 1},
	)
	l.GeneratePalettes(200)
	for _, c := range grid(21) {
		got := l.ColourPixel(c, iters(200))
		if math.IsNaN(got.R) || got.R < 0 || got.R > 1 {
			t.Fatalf("%v: colour %v", c, got)
		}
	}
}

func TestColourPixelBigMatches(t *testing.T) {
	l := mustNew(t,
		Layer{Kind: Colour{}, Strength: 1, Palette: palette.Default()},
		Layer{Kind: ColourOrbitTrap{orbittrap.NewCross(origin, 0)}, Strength: 0.5, Palette: palette.Default()},
	)
	l.GeneratePalettes(100)
	for _, c := range []numeric.Complex{escapes, origin, numeric.NewComplex(-0.5, 0.5), numeric.NewComplex(1, 1)} {
		a := l.ColourPixel(c, iters(100))
		b := l.ColourPixelBig(c.Big(numeric.DefaultPrec), iters(100))
		if !a.AlmostEqualRgb(b) {
			t.Errorf("%v: machine %v, big %v", c, a, b)
		}
	}
}

func TestColourPixelJulia(t *testing.T) {
	l := mustNew(t, Layer{Kind: Colour{}, Strength: 1, Palette: solid(t, white)})
	l.GeneratePalettes(50)
	julia := numeric.Complex{}
	iter := Iteration{MaxIterations: 50, Bailout: DefaultBailout, Julia: &julia}

	// 1.5, 2.25, 5.06: escapes at i=2 with a positive count
	if got := l.ColourPixel(numeric.NewComplex(1.5, 0), iter); got != white {
		t.Errorf("escaping point = %v, want white", got)
	}
	if got := l.ColourPixelBig(numeric.NewBigComplex(1.5, 0, 0), iter); got != white {
		t.Errorf("big escaping point = %v, want white", got)
	}
	if got := l.ColourPixel(numeric.NewComplex(0.5, 0.5), iter); got != palette.Black {
		t.Errorf("bounded point = %v, want black", got)
	}
}

func TestParseRange(t *testing.T) {
	for in, want := range map[string]Range{"both": Both, "in": InSet, "out set": OutSet, "": Both} {
		got, err := ParseRange(in)
		if err != nil || got != want {
			t.Errorf("ParseRange(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseRange("sideways"); err == nil {
		t.Error("expected error")
	}
}
