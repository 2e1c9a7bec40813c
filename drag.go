package nodearea

import "sync"

// DragConfig supplies the dragged entity's state to a Drag.
type DragConfig struct {
	// GetCurrentPosition returns the entity position at drag start.
	GetCurrentPosition func() Position
	// GetZoom returns the divisor applied to pointer deltas. Area panning
	// uses 1; node dragging uses the area's K.
	GetZoom func() float64
	// Guard decides whether a pointer event may start or continue a drag.
	// Nil means DefaultDragGuard.
	Guard func(*Event) bool
}

// DragEvents receives the phases of a drag session.
type DragEvents struct {
	Start     func(e *Event)
	Translate func(x, y float64, e *Event)
	Drag      func(e *Event)
}

// DefaultDragGuard rejects mouse presses with any button other than the
// primary one.
func DefaultDragGuard(e *Event) bool {
	return !(e.PointerType == PointerMouse && e.Button != MouseButtonLeft)
}

type dragSession struct {
	pointerStart  Position
	startPosition Position
}

// Drag recognizes press-move-release sequences on an element and reports
// absolute entity positions computed from the pointer delta.
type Drag struct {
	mu      sync.Mutex
	config  DragConfig
	events  DragEvents
	session *dragSession

	pointer  *pointerListener
	downHand ListenerHandle
}

// NewDrag creates an uninitialized drag recognizer.
func NewDrag() *Drag {
	return &Drag{}
}

// Initialize attaches the recognizer to el. Window-level move and release
// listeners are attached to window only while a press is in progress.
func (d *Drag) Initialize(window EventTarget, el *Element, config DragConfig, events DragEvents) {
	if config.Guard == nil {
		config.Guard = DefaultDragGuard
	}
	if config.GetZoom == nil {
		config.GetZoom = func() float64 { return 1 }
	}
	d.config = config
	d.events = events
	d.pointer = newPointerListener(window, d.move, d.up)
	d.downHand = el.AddEventListener(EventPointerDown, func(e *Event) {
		d.pointer.attach()
		d.down(e)
	})
}

func (d *Drag) down(e *Event) {
	if !d.config.Guard(e) {
		return
	}
	e.StopPropagation()
	var start Position
	if d.config.GetCurrentPosition != nil {
		start = d.config.GetCurrentPosition()
	}
	d.mu.Lock()
	d.session = &dragSession{
		pointerStart:  Position{X: e.ClientX, Y: e.ClientY},
		startPosition: start,
	}
	d.mu.Unlock()

	if d.events.Start != nil {
		d.events.Start(e)
	}
}

func (d *Drag) move(e *Event) {
	d.mu.Lock()
	s := d.session
	d.mu.Unlock()
	if s == nil || !d.config.Guard(e) {
		return
	}
	e.PreventDefault()

	zoom := d.config.GetZoom()
	if zoom == 0 {
		zoom = 1
	}
	x := s.startPosition.X + (e.ClientX-s.pointerStart.X)/zoom
	y := s.startPosition.Y + (e.ClientY-s.pointerStart.Y)/zoom

	if d.events.Translate != nil {
		d.events.Translate(x, y, e)
	}
}

func (d *Drag) up(e *Event) {
	d.mu.Lock()
	s := d.session
	d.session = nil
	d.mu.Unlock()
	if s == nil {
		return
	}
	if d.events.Drag != nil {
		d.events.Drag(e)
	}
}

// Active reports whether a drag session is in progress.
func (d *Drag) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session != nil
}

// Destroy removes every listener and drops any session in progress.
func (d *Drag) Destroy() {
	d.downHand.Remove()
	if d.pointer != nil {
		d.pointer.detach()
	}
	d.mu.Lock()
	d.session = nil
	d.mu.Unlock()
}
