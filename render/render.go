// Package render colours every pixel of a view in parallel.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	mandel "github.com/costott/mandlebrot-sub000"
	"github.com/costott/mandlebrot-sub000/layers"
	"github.com/costott/mandlebrot-sub000/numeric"
)

// PrecisionThreshold is the pixel step at or below which machine floats can
// no longer tell neighbouring pixels apart.
const PrecisionThreshold = 2e-16

var (
	ErrBadGrid       = errors.New("grid must be at least 1×1")
	ErrBadWorkers    = errors.New("workers must be positive")
	ErrBadStep       = errors.New("pixel step must be positive and finite")
	ErrBadIterations = layers.ErrBadIterations
	ErrBadBailout    = layers.ErrBadBailout
	ErrNoLayers      = layers.ErrNoLayers
)

type Config struct {
	Workers int
	// Progress logs each finished band.
	Progress bool
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%d: %w", c.Workers, ErrBadWorkers)
	}
	return nil
}

// Iteration extracts the escape time parameters of v.
func Iteration(v mandel.View) layers.Iteration {
	return layers.Iteration{MaxIterations: v.MaxIterations, Bailout: v.Bailout, Julia: v.Julia}
}

func validateView(v mandel.View) error {
	if v.Width < 1 || v.Height < 1 {
		return fmt.Errorf("%d×%d: %w", v.Width, v.Height, ErrBadGrid)
	}
	if !(v.PixelStep > 0) || math.IsInf(v.PixelStep, 0) {
		return fmt.Errorf("%v: %w", v.PixelStep, ErrBadStep)
	}
	return Iteration(v).Validate()
}

// Precise reports whether v has to iterate at arbitrary precision.
func Precise(v mandel.View) bool {
	return v.Precise || v.PixelStep <= PrecisionThreshold
}

// Render colours every pixel of v through l. The grid is split into
// cfg.Workers full-width row bands, each written by its own goroutine, so
// the result does not depend on the number of workers.
func Render(cfg Config, v mandel.View, l *layers.Layers) (*image.RGBA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateView(v); err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNoLayers
	}

	// palettes are read only from here on
	l.GeneratePalettes(v.MaxIterations)
	orbit := referenceOrbit(v)

	img := image.NewRGBA(v.Bounds())
	bands := splitRows(img.Bounds(), cfg.Workers)

	start := time.Now()
	var finishedRows atomic.Int64
	var wg sync.WaitGroup
	for i, band := range bands {
		i, band := i, band
		wg.Add(1)
		go func() {
			defer wg.Done()
			// each band owns a disjoint slice of img.Pix
			fill(img.SubImage(band).(*image.RGBA), v, l, orbit)

			if cfg.Progress {
				done := finishedRows.Add(int64(band.Dy()))
				log.Printf("band %d/%d rendered, finished: %f", i+1, len(bands), float64(done)/float64(v.Height))
			}
		}()
	}
	wg.Wait()

	if cfg.Progress {
		log.Printf("rendered %s in %s (%d workers, precise: %v)", img.Bounds().Size(), time.Since(start), cfg.Workers, Precise(v))
	}
	return img, nil
}

// referenceOrbit is the centre orbit perturbed pixels are iterated against,
// or nil when v renders without perturbation.
func referenceOrbit(v mandel.View) *layers.ReferenceOrbit {
	if !Precise(v) || v.Julia != nil {
		return nil
	}
	return layers.NewReferenceOrbit(v.Center, Iteration(v))
}

// fill colours every pixel of dst, whose bounds are in v's global pixel
// coordinates. orbit must be referenceOrbit(v).
func fill(dst *image.RGBA, v mandel.View, l *layers.Layers, orbit *layers.ReferenceOrbit) {
	it := Iteration(v)
	r := dst.Bounds()

	switch {
	case orbit != nil:
		for py := r.Min.Y; py < r.Max.Y; py++ {
			for px := r.Min.X; px < r.Max.X; px++ {
				dc := numeric.NewComplex(pixelOffset(v, px, py))
				dst.SetRGBA(px, py, toRGBA(l.ColourPixelPerturbed(orbit, dc, it)))
			}
		}
	case Precise(v):
		// Julia sets have no single reference orbit
		for py := r.Min.Y; py < r.Max.Y; py++ {
			for px := r.Min.X; px < r.Max.X; px++ {
				c := PixelToPlaneBig(v, px, py)
				dst.SetRGBA(px, py, toRGBA(l.ColourPixelBig(c, it)))
			}
		}
	default:
		center := v.Center.Complex()
		for py := r.Min.Y; py < r.Max.Y; py++ {
			for px := r.Min.X; px < r.Max.X; px++ {
				c := pixelToPlane(center, v, px, py)
				dst.SetRGBA(px, py, toRGBA(l.ColourPixel(c, it)))
			}
		}
	}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// splitRows splits r into n contiguous full-width bands whose heights differ
// by at most one. Fewer bands are returned when r has fewer than n rows.
func splitRows(r image.Rectangle, n int) []image.Rectangle {
	if n <= 0 {
		panic("band count must be positive")
	}

	h := r.Dy()
	n = min(n, h)
	bands := make([]image.Rectangle, 0, n)

	y := r.Min.Y
	for i := 0; i < n; i++ {
		bh := h / n
		if i < h%n {
			bh++
		}
		bands = append(bands, image.Rect(r.Min.X, y, r.Max.X, y+bh))
		y += bh
	}
	return bands
}

// splitRectNoClip splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func splitRectNoClip(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	var tiles []image.Rectangle
	for oy := r.Min.Y; oy < r.Max.Y; oy += tileH {
		th := min(tileH, r.Max.Y-oy)
		for ox := r.Min.X; ox < r.Max.X; ox += tileW {
			tw := min(tileW, r.Max.X-ox)
			tiles = append(tiles, image.Rect(ox, oy, ox+tw, oy+th))
		}
	}
	return tiles
}

// Tiles splits the view into tiles for a Renderer.
func Tiles(v mandel.View, tileW, tileH int) []image.Rectangle {
	return splitRectNoClip(v.Bounds(), tileW, tileH)
}

// pixelOffset is the plane offset of pixel (px, py) from the centre.
func pixelOffset(v mandel.View, px, py int) (dre, dim float64) {
	dre = (float64(px) - float64(v.Width)/2) * v.PixelStep
	dim = -(float64(py) - float64(v.Height)/2) * v.PixelStep
	return dre, dim
}

func pixelToPlane(center numeric.Complex, v mandel.View, px, py int) numeric.Complex {
	dre, dim := pixelOffset(v, px, py)
	return numeric.NewComplex(center.Re+dre, center.Im+dim)
}

// PixelToPlane maps a pixel to the plane at machine precision. The imaginary
// axis points up the image.
func PixelToPlane(v mandel.View, px, py int) numeric.Complex {
	return pixelToPlane(v.Center.Complex(), v, px, py)
}

// PixelToPlaneBig maps a pixel to the plane at the precision of v.Center.
func PixelToPlaneBig(v mandel.View, px, py int) numeric.BigComplex {
	dre, dim := pixelOffset(v, px, py)
	return v.Center.Add(numeric.NewBigComplex(dre, dim, v.Center.Prec()))
}

// PlaneToPixel is the inverse of PixelToPlane. ok is false when c falls
// outside the grid.
func PlaneToPixel(v mandel.View, c numeric.Complex) (px, py int, ok bool) {
	center := v.Center.Complex()
	x := (c.Re-center.Re)/v.PixelStep + float64(v.Width)/2
	y := -(c.Im-center.Im)/v.PixelStep + float64(v.Height)/2
	px, py = int(math.Round(x)), int(math.Round(y))
	ok = px >= 0 && px < v.Width && py >= 0 && py < v.Height
	return px, py, ok
}
