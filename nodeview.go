package nodearea

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// NodeTranslateParams describes a proposed node move.
type NodeTranslateParams struct {
	Position Position
	Previous Position
}

// NodeResizeParams describes a proposed node resize.
type NodeResizeParams struct {
	Size Size
}

// NodeViewEvents are the callbacks a NodeView raises. Every field is
// optional.
type NodeViewEvents struct {
	Picked      func(e *Event)
	Translated  Notify[NodeTranslateParams]
	Dragged     func(e *Event)
	ContextMenu func(e *Event)
	Resized     Notify[NodeResizeParams]
}

// NodeViewGuards are consulted before a node change is committed.
type NodeViewGuards struct {
	Translate Guard[NodeTranslateParams]
	Resize    Guard[NodeResizeParams]
}

// NodeView is the positioned element of one graph node inside the content
// holder. Dragging it moves the node in world coordinates.
type NodeView struct {
	element *Element
	sched   *Scheduler
	events  NodeViewEvents
	guards  NodeViewGuards

	sem *semaphore.Weighted

	mu       sync.RWMutex
	position Position

	drag   *Drag
	handle ListenerHandle
}

// NewNodeView creates a view at the world origin. getZoom supplies the
// area scale that pointer deltas are divided by while dragging.
func NewNodeView(window EventTarget, sched *Scheduler, getZoom func() float64, events NodeViewEvents, guards NodeViewGuards) *NodeView {
	v := &NodeView{
		element: NewElement("node"),
		sched:   sched,
		events:  events,
		guards:  guards,
		sem:     semaphore.NewWeighted(1),
	}
	v.handle = v.element.AddEventListener(EventContextMenu, func(e *Event) {
		if v.events.ContextMenu != nil {
			v.events.ContextMenu(e)
		}
	})
	v.drag = NewDrag()
	v.drag.Initialize(window, v.element,
		DragConfig{
			GetCurrentPosition: v.Position,
			GetZoom:            getZoom,
		},
		DragEvents{
			Start: func(e *Event) {
				if v.events.Picked != nil {
					v.events.Picked(e)
				}
			},
			Translate: func(x, y float64, _ *Event) {
				v.sched.Schedule("node.translate", func(ctx context.Context) error {
					_, err := v.Translate(ctx, x, y)
					return err
				})
			},
			Drag: func(e *Event) {
				if v.events.Dragged != nil {
					v.events.Dragged(e)
				}
			},
		},
	)
	return v
}

// Element returns the view's element.
func (v *NodeView) Element() *Element {
	return v.element
}

// Position returns the node's committed world position.
func (v *NodeView) Position() Position {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.position
}

// Size returns the node's layout box.
func (v *NodeView) Size() Size {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return Size{Width: v.element.Width, Height: v.element.Height}
}

// Dragging reports whether a drag session on the view is in progress.
func (v *NodeView) Dragging() bool {
	return v.drag.Active()
}

// Translate proposes moving the node to (x, y). It returns true if the
// position changed, false if the guard vetoed.
func (v *NodeView) Translate(ctx context.Context, x, y float64) (bool, error) {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer v.sem.Release(1)

	previous := v.Position()
	params := NodeTranslateParams{Position: Position{X: x, Y: y}, Previous: previous}
	if v.guards.Translate != nil {
		approved, ok, err := v.guards.Translate(ctx, params)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		params = approved
	}

	v.mu.Lock()
	v.position = params.Position
	v.mu.Unlock()
	v.element.SetTransform(params.Position.X, params.Position.Y, 1)

	if v.events.Translated != nil {
		err := v.events.Translated(ctx, NodeTranslateParams{Position: params.Position, Previous: previous})
		if err != nil {
			return true, err
		}
	}
	return true, nil
}

// Resize proposes a new box for the node. It returns true if the size
// changed, false if the guard vetoed.
func (v *NodeView) Resize(ctx context.Context, width, height float64) (bool, error) {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer v.sem.Release(1)

	params := NodeResizeParams{Size: Size{Width: width, Height: height}}
	if v.guards.Resize != nil {
		approved, ok, err := v.guards.Resize(ctx, params)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		params = approved
	}

	v.element.SetSize(params.Size.Width, params.Size.Height)

	if v.events.Resized != nil {
		if err := v.events.Resized(ctx, params); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Destroy removes the view's listeners.
func (v *NodeView) Destroy() {
	v.drag.Destroy()
	v.handle.Remove()
}
