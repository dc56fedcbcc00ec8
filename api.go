// Package mandel holds the render parameters shared by the renderer and its
// front ends, and the interfaces they talk through.
package mandel

import (
	"context"
	"image"
)

// ImgProvider hands out the latest fully rendered frame.
type ImgProvider interface {
	GetImage(ctx context.Context) (image.RGBA, error)
}

// Renderer renders one rectangle of the view. The returned image has the
// tile's global coordinates as its bounds.
type Renderer interface {
	RenderTile(v View, tile image.Rectangle) (image.RGBA, error)
}
