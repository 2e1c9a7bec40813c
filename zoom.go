package nodearea

import (
	"math"
	"sync"
)

// ZoomSource identifies the gesture behind a zoom request.
type ZoomSource string

const (
	ZoomSourceNone     ZoomSource = ""
	ZoomSourceWheel    ZoomSource = "wheel"
	ZoomSourceTouch    ZoomSource = "touch"
	ZoomSourceDblClick ZoomSource = "dblclick"
)

// OnZoom receives a relative zoom step and the offset to apply alongside it.
// The new scale is K·(1+delta).
type OnZoom func(delta, ox, oy float64, source ZoomSource)

// DefaultZoomIntensity is the relative zoom step of one wheel notch.
const DefaultZoomIntensity = 0.1

type pinchSample struct {
	cx, cy, distance float64
}

type trackedPointer struct {
	id   int
	x, y float64
}

// Zoom recognizes wheel, double click and two-finger pinch gestures on a
// container and reports zoom steps relative to element's on-screen origin.
type Zoom struct {
	intensity float64

	container *Element
	element   *Element
	onzoom    OnZoom

	mu       sync.Mutex
	pointers []trackedPointer
	previous *pinchSample

	handles []ListenerHandle
}

// NewZoom creates a zoom recognizer. A non-positive intensity uses
// DefaultZoomIntensity.
func NewZoom(intensity float64) *Zoom {
	if intensity <= 0 {
		intensity = DefaultZoomIntensity
	}
	return &Zoom{intensity: intensity}
}

// Intensity returns the configured step per wheel notch.
func (z *Zoom) Intensity() float64 {
	return z.intensity
}

// Initialize attaches wheel, double click and pointer-down listeners to
// container and pointer tracking listeners to window.
func (z *Zoom) Initialize(window EventTarget, container, element *Element, onzoom OnZoom) {
	z.container = container
	z.element = element
	z.onzoom = onzoom
	z.handles = []ListenerHandle{
		container.AddEventListener(EventWheel, z.wheel),
		container.AddEventListener(EventPointerDown, z.down),
		container.AddEventListener(EventDoubleClick, z.dblclick),
		window.AddEventListener(EventPointerMove, z.move),
		window.AddEventListener(EventPointerUp, z.up),
		window.AddEventListener(EventPointerCancel, z.up),
		window.AddEventListener(EventContextMenu, z.contextmenu),
	}
}

func (z *Zoom) wheel(e *Event) {
	e.PreventDefault()

	r := z.element.BoundingClientRect()
	delta := -z.intensity
	if e.DeltaY < 0 {
		delta = z.intensity
	}
	ox := (r.X - e.ClientX) * delta
	oy := (r.Y - e.ClientY) * delta

	z.onzoom(delta, ox, oy, ZoomSourceWheel)
}

func (z *Zoom) dblclick(e *Event) {
	e.PreventDefault()

	r := z.element.BoundingClientRect()
	delta := 4 * z.intensity
	ox := (r.X - e.ClientX) * delta
	oy := (r.Y - e.ClientY) * delta

	z.onzoom(delta, ox, oy, ZoomSourceDblClick)
}

func (z *Zoom) down(e *Event) {
	z.mu.Lock()
	z.pointers = append(z.pointers, trackedPointer{id: e.PointerID, x: e.ClientX, y: e.ClientY})
	z.mu.Unlock()
}

func (z *Zoom) move(e *Event) {
	z.mu.Lock()
	for i := range z.pointers {
		if z.pointers[i].id == e.PointerID {
			z.pointers[i].x, z.pointers[i].y = e.ClientX, e.ClientY
		}
	}
	if len(z.pointers) < 2 {
		z.mu.Unlock()
		return
	}
	p1, p2 := z.pointers[0], z.pointers[1]
	cur := pinchSample{
		cx:       (p1.x + p2.x) / 2,
		cy:       (p1.y + p2.y) / 2,
		distance: math.Hypot(p1.x-p2.x, p1.y-p2.y),
	}
	prev := z.previous
	z.previous = &cur
	z.mu.Unlock()

	if prev == nil || prev.distance <= 0 {
		return
	}
	r := z.element.BoundingClientRect()
	delta := cur.distance/prev.distance - 1
	ox := (r.X-cur.cx)*delta - (prev.cx - cur.cx)
	oy := (r.Y-cur.cy)*delta - (prev.cy - cur.cy)

	z.onzoom(delta, ox, oy, ZoomSourceTouch)
}

func (z *Zoom) up(e *Event) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.previous = nil
	kept := z.pointers[:0]
	for _, p := range z.pointers {
		if p.id != e.PointerID {
			kept = append(kept, p)
		}
	}
	z.pointers = kept
}

func (z *Zoom) contextmenu(*Event) {
	z.mu.Lock()
	z.pointers = nil
	z.mu.Unlock()
}

// IsTranslating reports whether a multi-touch gesture is in progress, in
// which case single-pointer panning must be suppressed.
func (z *Zoom) IsTranslating() bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return len(z.pointers) >= 2
}

// Destroy removes every listener.
func (z *Zoom) Destroy() {
	removeAll(z.handles)
	z.handles = nil
	z.mu.Lock()
	z.pointers = nil
	z.previous = nil
	z.mu.Unlock()
}
