package nodearea

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw time.
type Color struct {
	R, G, B, A float64
}

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Position is a 2D point. Whether it is world-space (transform-relative) or
// container-relative depends on the API that produced it.
type Position struct {
	X, Y float64
}

// Size is the width and height of a box.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Position {
	return Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	left := math.Min(r.X, other.X)
	top := math.Min(r.Y, other.Y)
	right := math.Max(r.X+r.Width, other.X+other.Width)
	bottom := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Transform is the pan offset and uniform scale of the area content.
// A world point p appears at container position p*K + (X, Y). K must be > 0.
type Transform struct {
	X, Y float64
	K    float64
}

// identityAreaTransform is the transform of a freshly created area.
var identityAreaTransform = Transform{K: 1}

// ToContainer maps a world-space point to container coordinates.
func (t Transform) ToContainer(p Position) Position {
	return Position{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// ToWorld maps a container-relative point to world coordinates.
func (t Transform) ToWorld(p Position) Position {
	return Position{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// EventType identifies a kind of low-level input event delivered to
// element and window listeners.
type EventType uint8

const (
	EventPointerDown   EventType = iota // a pointer button is pressed or a touch begins
	EventPointerMove                    // the pointer moves, pressed or not
	EventPointerUp                      // a pointer button is released or a touch ends
	EventPointerCancel                  // the platform aborted a pointer sequence
	EventWheel                          // the wheel scrolled
	EventDoubleClick                    // two primary clicks in quick succession
	EventContextMenu                    // the secondary button requested a context menu
	EventResize                         // the window changed size
)

var eventTypeNames = [...]string{
	EventPointerDown:   "pointerdown",
	EventPointerMove:   "pointermove",
	EventPointerUp:     "pointerup",
	EventPointerCancel: "pointercancel",
	EventWheel:         "wheel",
	EventDoubleClick:   "dblclick",
	EventContextMenu:   "contextmenu",
	EventResize:        "resize",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// PointerType identifies the device behind a pointer event.
type PointerType uint8

const (
	PointerMouse PointerType = iota // mouse or trackpad
	PointerTouch                    // finger on a touch screen
	PointerPen                      // stylus
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
