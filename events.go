package nodearea

import "sync"

// Event carries one low-level input event through the element tree.
// Coordinates are window-space ("client") pixels.
type Event struct {
	Type EventType
	// Target is the topmost element under the pointer, or nil when the
	// event hit no element (window-only delivery).
	Target *Element
	// CurrentTarget is the element whose listener is running; nil while
	// window listeners run.
	CurrentTarget *Element

	PointerID   int
	PointerType PointerType
	Button      MouseButton
	Modifiers   KeyModifiers

	ClientX, ClientY float64

	// Wheel fields (EventWheel). DeltaY < 0 scrolls up / away from the user.
	DeltaX, DeltaY float64

	// Resize fields (EventResize).
	Width, Height int

	stopped          bool
	defaultPrevented bool
}

// StopPropagation prevents the event from reaching ancestors of the current
// target and the window. Remaining listeners on the current target still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// PreventDefault marks the event as consumed by a recognizer.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Listener handles an event delivered to an element or the window.
type Listener func(*Event)

// EventTarget is anything listeners can be attached to: an [Element] or the
// [Host] window.
type EventTarget interface {
	AddEventListener(t EventType, fn Listener) ListenerHandle
}

// --- Listener registry ---

type registeredListener struct {
	id uint32
	fn Listener
}

type listenerRegistry struct {
	mu     sync.Mutex
	byType map[EventType][]registeredListener
	nextID uint32
}

func (r *listenerRegistry) add(t EventType, fn Listener) ListenerHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byType == nil {
		r.byType = make(map[EventType][]registeredListener)
	}
	r.nextID++
	id := r.nextID
	r.byType[t] = append(r.byType[t], registeredListener{id: id, fn: fn})
	return ListenerHandle{id: id, reg: r, event: t}
}

// remove unregisters a listener. The entry is removed from the slice to
// avoid nil iteration waste.
func (r *listenerRegistry) remove(t EventType, id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byType[t]
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = registeredListener{}
			r.byType[t] = s[:len(s)-1]
			return
		}
	}
}

// snapshot returns the listeners registered for t at call time. Listeners
// added or removed while the snapshot is being dispatched take effect on
// the next event.
func (r *listenerRegistry) snapshot(t EventType) []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byType[t]
	if len(s) == 0 {
		return nil
	}
	out := make([]Listener, len(s))
	for i := range s {
		out[i] = s[i].fn
	}
	return out
}

func (r *listenerRegistry) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byType[t])
}

func (r *listenerRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType = nil
}

// ListenerHandle allows removing a registered listener.
type ListenerHandle struct {
	id    uint32
	reg   *listenerRegistry
	event EventType
}

// Remove unregisters this listener so it no longer fires. Removing twice,
// or removing the zero handle, is a no-op.
func (h ListenerHandle) Remove() {
	if h.reg == nil {
		return
	}
	h.reg.remove(h.event, h.id)
}

// removeAll removes every handle in hs.
func removeAll(hs []ListenerHandle) {
	for _, h := range hs {
		h.Remove()
	}
}
