package main

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"log"
	"sync"
	"time"

	mandel "github.com/costott/mandlebrot-sub000"
	"github.com/costott/mandlebrot-sub000/layers"
	"github.com/costott/mandlebrot-sub000/render"
)

var errFrameFailed = errors.New("frame failed to render")

// frame is one render of one view. Tiles are drawn into img as workers
// finish them; done is closed once every tile is in.
type frame struct {
	seq  uint64
	view mandel.View
	img  *image.RGBA

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	totalPixels    int
	finishedPixels int
	unstarted      []image.Rectangle
	started        time.Time
}

// imgWorkScheduler keeps the current frame and renders it tile by tile on a
// fixed number of goroutines. Setting a new view abandons the frame in flight.
type imgWorkScheduler struct {
	workers  int
	tileSize int
	layers   *layers.Layers
	renderer mandel.Renderer
	detector render.Detector

	seq   uint64
	frame *frame
	m     sync.Mutex
}

func newImgWorkScheduler(workers, tileSize int, l *layers.Layers) *imgWorkScheduler {
	return &imgWorkScheduler{
		workers:  workers,
		tileSize: tileSize,
		layers:   l,
		renderer: &render.RendererImpl{Layers: l},
	}
}

// setView starts rendering v unless it would produce the frame already
// rendered or in flight. It reports whether a new frame was started.
func (iws *imgWorkScheduler) setView(v mandel.View) bool {
	iws.m.Lock()
	// deciding and replacing the frame must not interleave with another setView
	if !iws.detector.Changed(v, iws.layers) {
		iws.m.Unlock()
		return false
	}
	if iws.frame != nil {
		iws.frame.cancel()
	}
	iws.seq++
	ctx, cancel := context.WithCancel(context.Background())
	f := &frame{
		seq:         iws.seq,
		view:        v,
		img:         image.NewRGBA(v.Bounds()),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		totalPixels: v.Width * v.Height,
		unstarted:   render.Tiles(v, iws.tileSize, iws.tileSize),
		started:     time.Now(),
	}
	iws.frame = f
	iws.m.Unlock()

	log.Printf("frame %d: %d tiles of %s at %s", f.seq, len(f.unstarted), v.Bounds().Size(), v.Center)

	var wg sync.WaitGroup
	for i, n := 0, min(iws.workers, len(f.unstarted)); i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			iws.render(f)
		}()
	}
	go func() {
		wg.Wait()
		if f.ctx.Err() == nil {
			log.Printf("frame %d rendered in %s", f.seq, time.Since(f.started))
		}
		cancel()
	}()
	return true
}

func (iws *imgWorkScheduler) popTile(f *frame) (tile image.Rectangle, found bool) {
	iws.m.Lock()
	defer iws.m.Unlock()

	if f.ctx.Err() != nil || len(f.unstarted) == 0 {
		return image.Rectangle{}, false
	}
	tile = f.unstarted[0]
	f.unstarted = f.unstarted[1:]
	return tile, true
}

// renders unstarted tiles of f until none are left or f is abandoned
// can be called from multiple goroutines in parallel
func (iws *imgWorkScheduler) render(f *frame) {
	for {
		tile, found := iws.popTile(f)
		if !found {
			return
		}
		tileImg, err := iws.renderer.RenderTile(f.view, tile)
		if err != nil {
			log.Printf("frame %d: render of tile %s failed: %v", f.seq, tile, err)
			f.cancel()
			return
		}
		iws.tileFinished(f, tileImg)
	}
}

func (iws *imgWorkScheduler) tileFinished(f *frame, tileImg image.RGBA) {
	iws.m.Lock()
	defer iws.m.Unlock()

	draw.Draw(f.img, tileImg.Bounds(), &tileImg, tileImg.Bounds().Min, draw.Src)
	f.finishedPixels += tileImg.Rect.Dx() * tileImg.Rect.Dy()

	if f.finishedPixels == f.totalPixels {
		close(f.done)
	}
}

// view is the view of the current frame.
func (iws *imgWorkScheduler) view() mandel.View {
	iws.m.Lock()
	defer iws.m.Unlock()
	return iws.frame.view
}

// GetImage waits for the current frame to finish and returns a copy of it.
// If the view changes while waiting, it waits for the newer frame instead.
func (iws *imgWorkScheduler) GetImage(ctx context.Context) (image.RGBA, error) {
	img, _, err := iws.waitFrame(ctx)
	return img, err
}

func (iws *imgWorkScheduler) waitFrame(ctx context.Context) (image.RGBA, *frame, error) {
	for {
		iws.m.Lock()
		f := iws.frame
		iws.m.Unlock()

		select {
		case <-f.done:
			return iws.copyFrame(f), f, nil
		case <-f.ctx.Done():
			select {
			case <-f.done:
				return iws.copyFrame(f), f, nil
			default:
			}
			if iws.isCurrent(f) {
				return image.RGBA{}, f, errFrameFailed
			}
		case <-ctx.Done():
			return image.RGBA{}, nil, context.Cause(ctx)
		}
	}
}

func (iws *imgWorkScheduler) copyFrame(f *frame) image.RGBA {
	iws.m.Lock()
	defer iws.m.Unlock()
	img := *f.img
	img.Pix = append([]byte(nil), f.img.Pix...)
	return img
}

func (iws *imgWorkScheduler) isCurrent(f *frame) bool {
	iws.m.Lock()
	defer iws.m.Unlock()
	return iws.frame == f
}

var _ mandel.ImgProvider = (*imgWorkScheduler)(nil)
