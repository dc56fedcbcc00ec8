package main

import (
	"errors"
	"fmt"

	mandel "github.com/costott/mandlebrot-sub000"
	"github.com/costott/mandlebrot-sub000/numeric"
	"github.com/costott/mandlebrot-sub000/render"
)

var errUnknownLandmark = errors.New("unknown landmark")

// viewRequest is what a display client sends to move around the set. Fields
// left out keep their current value; they apply in the order listed.
type viewRequest struct {
	// Landmark jumps to one of mandel.Landmarks, keeping the grid size and depth.
	Landmark string `json:"landmark,omitempty"`
	// Centre is in decimal so deep zoom coordinates survive the trip.
	Centre *struct {
		Re string `json:"re"`
		Im string `json:"im"`
	} `json:"centre,omitempty"`
	// Click recentres on a pixel of the current frame.
	Click *struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"click,omitempty"`
	PixelStep     float64 `json:"pixel_step,omitempty"`
	Zoom          float64 `json:"zoom,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
	Julia         *struct {
		Re float64 `json:"re"`
		Im float64 `json:"im"`
	} `json:"julia,omitempty"`
	Mandelbrot bool  `json:"mandelbrot,omitempty"`
	Precise    *bool `json:"precise,omitempty"`
}

func (r viewRequest) apply(v mandel.View) (mandel.View, error) {
	if r.Landmark != "" {
		region, ok := mandel.Landmarks[r.Landmark]
		if !ok {
			return v, fmt.Errorf("%q: %w", r.Landmark, errUnknownLandmark)
		}
		next := region.View(v.Width, v.Height, v.MaxIterations)
		next.Bailout, next.Julia, next.Precise = v.Bailout, v.Julia, v.Precise
		v = next
	}
	if r.Centre != nil {
		c, err := numeric.ParseBigComplex(r.Centre.Re, r.Centre.Im, v.Center.Prec())
		if err != nil {
			return v, fmt.Errorf("centre: %w", err)
		}
		v.Center = c
	}
	if r.Click != nil {
		// the clicked pixel is in the frame the client is looking at
		v.Center = render.PixelToPlaneBig(v, r.Click.X, r.Click.Y)
	}
	if r.PixelStep < 0 || r.Zoom < 0 || r.MaxIterations < 0 {
		return v, fmt.Errorf("pixel_step, zoom and max_iterations must be positive")
	}
	if r.PixelStep > 0 {
		v.PixelStep = r.PixelStep
	}
	if r.Zoom > 0 {
		v = v.Zoom(r.Zoom)
	}
	if r.MaxIterations > 0 {
		v.MaxIterations = r.MaxIterations
	}
	switch {
	case r.Mandelbrot:
		v.Julia = nil
	case r.Julia != nil:
		j := numeric.NewComplex(r.Julia.Re, r.Julia.Im)
		v.Julia = &j
	}
	if r.Precise != nil {
		v.Precise = *r.Precise
	}
	return v, nil
}
