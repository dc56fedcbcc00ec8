package render

import (
	"fmt"
	"image"
	"sync"

	mandel "github.com/costott/mandlebrot-sub000"
	"github.com/costott/mandlebrot-sub000/layers"
)

// RendererImpl renders tiles of a view through a fixed layer stack. It is
// safe for concurrent use as long as the layers are not mutated meanwhile.
type RendererImpl struct {
	Layers *layers.Layers
	// OnTileRender, if set, is called before each tile is rendered.
	OnTileRender func(tile image.Rectangle)

	// prepared and orbit change under the write lock, tiles fill under the
	// read lock only while prepared matches their view
	m        sync.RWMutex
	prepared *inputs
	orbit    *layers.ReferenceOrbit
}

func (imp *RendererImpl) RenderTile(v mandel.View, tile image.Rectangle) (image.RGBA, error) {
	if err := validateView(v); err != nil {
		return image.RGBA{}, err
	}
	if imp.Layers == nil {
		return image.RGBA{}, ErrNoLayers
	}
	clipped := tile.Intersect(v.Bounds())
	if clipped.Empty() {
		return image.RGBA{}, fmt.Errorf("tile %s outside %s: %w", tile, v.Bounds(), ErrBadGrid)
	}
	if imp.OnTileRender != nil {
		imp.OnTileRender(clipped)
	}

	// Image now has global coordinates (tile.Min .. tile.Max)
	img := image.NewRGBA(clipped)
	in := capture(v, imp.Layers)

	imp.m.RLock()
	if imp.prepared != nil && imp.prepared.equal(in) {
		fill(img, v, imp.Layers, imp.orbit)
		imp.m.RUnlock()
		return *img, nil
	}
	imp.m.RUnlock()

	// first tile at this view: regenerate and fill in the same critical section
	imp.m.Lock()
	defer imp.m.Unlock()
	if imp.prepared == nil || !imp.prepared.equal(in) {
		imp.Layers.GeneratePalettes(v.MaxIterations)
		imp.orbit = referenceOrbit(v)
		imp.prepared = in
	}
	fill(img, v, imp.Layers, imp.orbit)
	return *img, nil
}

var _ mandel.Renderer = (*RendererImpl)(nil)
