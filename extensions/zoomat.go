package extensions

import (
	"context"
	"math"

	"github.com/phanxgames/nodearea"
	"github.com/tanema/gween/ease"
)

// DefaultZoomAtScale leaves a margin around the fitted nodes.
const DefaultZoomAtScale = 0.9

// ZoomAtParams tunes ZoomAt. The zero value fits immediately with the
// default scale.
type ZoomAtParams struct {
	// Scale of the fitted box relative to the container. Zero means
	// DefaultZoomAtScale.
	Scale float64
	// Duration animates the transition over this many seconds.
	Duration float32
	// Ease shapes the animation. Nil means ease.InOutQuad.
	Ease ease.TweenFunc
}

// ZoomAt centers the container on the given nodes and zooms so they fit,
// never zooming in past 1. The change goes through the translate and zoom
// guards. It returns false if none of the ids has a view or a guard vetoed.
//
// ZoomAt blocks on the area's operation lock, so it must not be called
// from inside a pipe handling a translate or zoom signal.
func ZoomAt(ctx context.Context, plugin *nodearea.Plugin, ids []string, params *ZoomAtParams) (bool, error) {
	p := ZoomAtParams{Scale: DefaultZoomAtScale, Ease: ease.InOutQuad}
	if params != nil {
		if params.Scale > 0 {
			p.Scale = params.Scale
		}
		if params.Ease != nil {
			p.Ease = params.Ease
		}
		p.Duration = params.Duration
	}

	rects := nodeRects(plugin, ids)
	if len(rects) == 0 {
		return false, nil
	}
	box := boundingBox(rects)

	size := plugin.Container().BoundingClientRect()
	w, h := size.Width, size.Height
	kw, kh := w/box.Width, h/box.Height
	k := math.Min(math.Min(kh*p.Scale, kw*p.Scale), 1)

	x := w/2 - box.Center.X*k
	y := h/2 - box.Center.Y*k

	area := plugin.Area()
	if p.Duration > 0 {
		area.AnimateTo(nodearea.Transform{X: x, Y: y, K: k}, p.Duration, p.Ease)
		return true, nil
	}
	if ok, err := area.Translate(ctx, x, y); !ok || err != nil {
		return ok, err
	}
	return area.Zoom(ctx, k, 0, 0, nodearea.ZoomSourceNone)
}
