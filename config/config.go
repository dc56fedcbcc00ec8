// Package config reads a render description from YAML and turns it into the
// view, scheduler configuration and layer stack the renderer takes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	mandel "github.com/costott/mandlebrot-sub000"
	"github.com/costott/mandlebrot-sub000/layers"
	"github.com/costott/mandlebrot-sub000/numeric"
	"github.com/costott/mandlebrot-sub000/orbittrap"
	"github.com/costott/mandlebrot-sub000/palette"
	"github.com/costott/mandlebrot-sub000/render"
)

var (
	ErrNoCentre     = errors.New("view needs a landmark or a centre and pixel step")
	ErrUnknownKind  = errors.New("unknown layer kind")
	ErrUnknownShape = errors.New("unknown orbit trap shape")
)

// File is the YAML document.
type File struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Workers       int     `yaml:"workers"`
	Progress      bool    `yaml:"progress"`
	MaxIterations int     `yaml:"max_iterations"`
	Bailout       float64 `yaml:"bailout"`
	View          View    `yaml:"view"`
	Julia         *Point  `yaml:"julia,omitempty"`
	Layers        []Layer `yaml:"layers"`
	// Output is the file front ends write the frame to.
	Output string `yaml:"output"`
}

type View struct {
	// Landmark names one of mandel.Landmarks; Centre and PixelStep override it.
	Landmark  string  `yaml:"landmark,omitempty"`
	Centre    *Centre `yaml:"centre,omitempty"`
	PixelStep float64 `yaml:"pixel_step,omitempty"`
	// Zoom divides the pixel step.
	Zoom      float64 `yaml:"zoom,omitempty"`
	Precision uint    `yaml:"precision,omitempty"`
	Precise   bool    `yaml:"precise,omitempty"`
}

// Centre is kept as decimal strings so deep zoom coordinates survive parsing.
type Centre struct {
	Re string `yaml:"re"`
	Im string `yaml:"im"`
}

type Point struct {
	Re float64 `yaml:"re"`
	Im float64 `yaml:"im"`
}

func (p Point) complex() numeric.Complex { return numeric.NewComplex(p.Re, p.Im) }

type Layer struct {
	// Kind is colour, shading, shading3d, colour_orbit_trap or shading_orbit_trap.
	Kind     string   `yaml:"kind"`
	Range    string   `yaml:"range,omitempty"`
	Strength *float64 `yaml:"strength,omitempty"`
	Trap     *Trap    `yaml:"trap,omitempty"`
	Palette  *Palette `yaml:"palette,omitempty"`
}

type Trap struct {
	// Shape is point, cross or circle.
	Shape     string  `yaml:"shape"`
	Centre    Point   `yaml:"centre"`
	Radius    float64 `yaml:"radius,omitempty"`
	ArmLength float64 `yaml:"arm_length,omitempty"`
	// Analysis is distance, real, imaginary or angle.
	Analysis string `yaml:"analysis,omitempty"`
}

type Palette struct {
	Preset  string         `yaml:"preset,omitempty"`
	Colours []Colour       `yaml:"colours,omitempty"`
	Points  []ControlPoint `yaml:"points,omitempty"`
	Mapping string         `yaml:"mapping,omitempty"`
	Length  *float64       `yaml:"length,omitempty"`
	Offset  float64        `yaml:"offset,omitempty"`
}

type ControlPoint struct {
	Colour  Colour  `yaml:"colour"`
	Percent float64 `yaml:"percent"`
}

// Colour is written as "#rrggbb" in YAML.
type Colour struct{ colorful.Color }

func (c *Colour) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return fmt.Errorf("line %d: colour %q: %w", node.Line, s, err)
	}
	c.Color = col
	return nil
}

func (c Colour) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

// Default renders the whole set at 1920×1080 with one rainbow layer.
func Default() *File {
	return &File{
		Width:         1920,
		Height:        1080,
		Workers:       runtime.NumCPU(),
		MaxIterations: 500,
		Bailout:       layers.DefaultBailout,
		View:          View{Landmark: "full"},
		Layers: []Layer{{
			Kind:    "colour",
			Palette: &Palette{Preset: "rainbow"},
		}},
		Output: "mandel.png",
	}
}

// Load reads path over the defaults.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML document over the defaults. Unknown fields are errors.
func Parse(r io.Reader) (*File, error) {
	f := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return f, nil
}

// Marshal writes f back as YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Build validates the file and constructs the render inputs.
func (f *File) Build() (mandel.View, render.Config, *layers.Layers, error) {
	v, err := f.view()
	if err != nil {
		return mandel.View{}, render.Config{}, nil, err
	}
	cfg := render.Config{Workers: f.Workers, Progress: f.Progress}
	if err := cfg.Validate(); err != nil {
		return mandel.View{}, render.Config{}, nil, err
	}

	ls := make([]layers.Layer, len(f.Layers))
	for i, l := range f.Layers {
		if ls[i], err = l.build(); err != nil {
			return mandel.View{}, render.Config{}, nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	stack, err := layers.New(ls)
	if err != nil {
		return mandel.View{}, render.Config{}, nil, err
	}
	return v, cfg, stack, nil
}

func (f *File) view() (mandel.View, error) {
	var v mandel.View
	if f.View.Landmark != "" {
		r, ok := mandel.Landmarks[f.View.Landmark]
		if !ok {
			return v, fmt.Errorf("unknown landmark %q", f.View.Landmark)
		}
		v = r.View(f.Width, f.Height, f.MaxIterations)
	} else if f.View.Centre == nil || f.View.PixelStep == 0 {
		return v, ErrNoCentre
	}

	switch {
	case f.View.Centre != nil:
		c, err := numeric.ParseBigComplex(f.View.Centre.Re, f.View.Centre.Im, f.View.Precision)
		if err != nil {
			return v, fmt.Errorf("view centre: %w", err)
		}
		v.Center = c
	case f.View.Precision != 0:
		re, im := v.Center.Text()
		c, err := numeric.ParseBigComplex(re, im, f.View.Precision)
		if err != nil {
			return v, fmt.Errorf("view centre: %w", err)
		}
		v.Center = c
	}
	if f.View.PixelStep != 0 {
		v.PixelStep = f.View.PixelStep
	}
	if f.View.Zoom != 0 {
		v = v.Zoom(f.View.Zoom)
	}

	v.Width, v.Height = f.Width, f.Height
	v.MaxIterations = f.MaxIterations
	v.Bailout = f.Bailout
	v.Precise = f.View.Precise
	if f.Julia != nil {
		j := f.Julia.complex()
		v.Julia = &j
	}
	return v, nil
}

func (l Layer) build() (layers.Layer, error) {
	out := layers.Layer{Strength: 1}
	if l.Strength != nil {
		out.Strength = *l.Strength
	}

	r, err := layers.ParseRange(l.Range)
	if err != nil {
		return out, err
	}
	out.Range = r

	kind := strings.ToLower(l.Kind)
	switch kind {
	case "colour", "color":
		out.Kind = layers.Colour{}
	case "shading":
		out.Kind = layers.Shading{}
	case "shading3d", "shading_3d":
		out.Kind = layers.Shading3D{}
	case "colour_orbit_trap", "color_orbit_trap", "shading_orbit_trap":
		trap, err := l.Trap.build()
		if err != nil {
			return out, err
		}
		if strings.HasPrefix(kind, "shading") {
			out.Kind = layers.ShadingOrbitTrap{Trap: trap}
		} else {
			out.Kind = layers.ColourOrbitTrap{Trap: trap}
		}
	default:
		return out, fmt.Errorf("%q: %w", l.Kind, ErrUnknownKind)
	}

	if l.Palette != nil {
		if out.Palette, err = l.Palette.build(); err != nil {
			return out, err
		}
	} else if _, ok := out.Kind.(layers.Shading3D); !ok {
		out.Palette = palette.Default()
	}
	return out, nil
}

func (t *Trap) build() (orbittrap.Trap, error) {
	if t == nil {
		return orbittrap.NewPoint(numeric.Complex{}), nil
	}
	a, err := orbittrap.ParseAnalysis(t.Analysis)
	if err != nil {
		return nil, err
	}
	switch t.Shape {
	case "point", "":
		return orbittrap.NewPoint(t.Centre.complex()).WithAnalysis(a), nil
	case "cross":
		return orbittrap.NewCross(t.Centre.complex(), t.ArmLength).WithAnalysis(a), nil
	case "circle":
		return orbittrap.NewCircle(t.Centre.complex(), t.Radius).WithAnalysis(a), nil
	}
	return nil, fmt.Errorf("%q: %w", t.Shape, ErrUnknownShape)
}

func (p *Palette) build() (*palette.Palette, error) {
	mapping, err := palette.ParseMapping(p.Mapping)
	if err != nil {
		return nil, err
	}
	length := 100.0
	if p.Length != nil {
		length = *p.Length
	}

	switch {
	case len(p.Points) > 0:
		points := make([]palette.ControlPoint, len(p.Points))
		for i, pt := range p.Points {
			points[i] = palette.ControlPoint{Colour: pt.Colour.Color, Percent: pt.Percent}
		}
		return palette.New(points, mapping, length, p.Offset)
	case len(p.Colours) > 0:
		colours := make([]colorful.Color, len(p.Colours))
		for i, c := range p.Colours {
			colours[i] = c.Color
		}
		return palette.NewEven(colours, mapping, length, p.Offset)
	case p.Preset != "":
		return palette.Preset(p.Preset, mapping, length, p.Offset)
	}
	return nil, fmt.Errorf("palette needs a preset, colours or points")
}
