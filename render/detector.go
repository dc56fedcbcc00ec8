package render

import (
	"slices"
	"sync"

	mandel "github.com/costott/mandlebrot-sub000"
	"github.com/costott/mandlebrot-sub000/layers"
	"github.com/costott/mandlebrot-sub000/palette"
)

// Detector decides whether a new render is needed by comparing the render
// inputs with the ones it last saw.
type Detector struct {
	m    sync.Mutex
	last *inputs
}

type inputs struct {
	view     mandel.View
	layers   *layers.Layers
	revision uint64
	palettes []paletteRevision
}

type paletteRevision struct {
	p        *palette.Palette
	revision uint64
}

func capture(v mandel.View, l *layers.Layers) *inputs {
	in := &inputs{view: v, layers: l}
	if l == nil {
		return in
	}
	in.revision = l.Revision()
	for i := 0; i < l.Len(); i++ {
		p := l.Layer(i).Palette
		pr := paletteRevision{p: p}
		if p != nil {
			pr.revision = p.Revision()
		}
		in.palettes = append(in.palettes, pr)
	}
	return in
}

func (in *inputs) equal(o *inputs) bool {
	return in.view.Equal(o.view) &&
		in.layers == o.layers &&
		in.revision == o.revision &&
		slices.Equal(in.palettes, o.palettes)
}

// Changed reports whether v or l differ from the previous call, and
// remembers them for the next one. The first call always reports a change.
func (d *Detector) Changed(v mandel.View, l *layers.Layers) bool {
	d.m.Lock()
	defer d.m.Unlock()

	in := capture(v, l)
	if d.last != nil && d.last.equal(in) {
		return false
	}
	d.last = in
	return true
}

// Reset forces the next call to Changed to report a change.
func (d *Detector) Reset() {
	d.m.Lock()
	d.last = nil
	d.m.Unlock()
}
