package extensions

import (
	"math"

	"github.com/phanxgames/nodearea"
)

// Sized is implemented by node payloads that know their own size. Such
// sizes take precedence over the view's element box.
type Sized interface {
	NodeSize() nodearea.Size
}

// Box is an axis-aligned bounding box in world coordinates.
type Box struct {
	Left, Top, Right, Bottom float64
	Width, Height            float64
	Center                   nodearea.Position
}

type nodeRect struct {
	position nodearea.Position
	size     nodearea.Size
}

// nodeRects returns the world rectangles of the node views among ids.
// Ids without a view are skipped.
func nodeRects(plugin *nodearea.Plugin, ids []string) []nodeRect {
	rects := make([]nodeRect, 0, len(ids))
	for _, id := range ids {
		view, ok := plugin.NodeView(id)
		if !ok {
			continue
		}
		size := view.Size()
		if payload, ok := plugin.NodePayload(id); ok {
			if s, ok := payload.(Sized); ok {
				size = s.NodeSize()
			}
		}
		rects = append(rects, nodeRect{position: view.Position(), size: size})
	}
	return rects
}

func boundingBox(rects []nodeRect) Box {
	left, top := math.Inf(1), math.Inf(1)
	right, bottom := math.Inf(-1), math.Inf(-1)
	for _, r := range rects {
		left = math.Min(left, r.position.X)
		top = math.Min(top, r.position.Y)
		right = math.Max(right, r.position.X+r.size.Width)
		bottom = math.Max(bottom, r.position.Y+r.size.Height)
	}
	return Box{
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
		Width:  math.Abs(right - left),
		Height: math.Abs(bottom - top),
		Center: nodearea.Position{X: (left + right) / 2, Y: (top + bottom) / 2},
	}
}

// BoundingBox returns the box enclosing the views of the given nodes. It
// returns false if none of the ids has a view.
func BoundingBox(plugin *nodearea.Plugin, ids []string) (Box, bool) {
	rects := nodeRects(plugin, ids)
	if len(rects) == 0 {
		return Box{}, false
	}
	return boundingBox(rects), true
}
