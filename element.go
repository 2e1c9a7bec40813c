package nodearea

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// treeMu guards every element's hierarchy and transform. Input dispatch and
// drawing take the read lock; tree edits and transform commits, which can
// come from the scheduler's worker goroutine, take the write lock.
var treeMu sync.RWMutex

// elementIDCounter is shared by all elements. Guarded by treeMu.
var elementIDCounter uint32

// Element is a retained rectangle in the host's element tree. It plays the
// role a DOM element plays for a browser-hosted editor: the area container,
// the transformed content holder, and every node or connection view are
// elements.
//
// An element's box starts at its layout offset (Left, Top) inside the
// parent and is then moved and scaled by its own transform,
// translate(x, y) scale(k) with the origin at the top-left corner.
type Element struct {
	// Identity
	ID   uint32
	Name string

	// Layout offset and box, in the parent's coordinate space.
	Left, Top     float64
	Width, Height float64

	// HitShape overrides the box for hit testing. Elements with neither a
	// hit shape nor a box are transparent to the pointer, but their
	// children are still hit-tested.
	HitShape HitShape

	// Color fills the box when its alpha is non-zero.
	Color Color
	// OnDraw, if set, is called during Host.Draw with the element's
	// composed window transform.
	OnDraw func(dst *ebiten.Image, geoM ebiten.GeoM)

	// UserData is free for renderers.
	UserData any

	parent   *Element
	children []*Element

	tx, ty, k float64

	listeners listenerRegistry
	disposed  bool
}

// NewElement creates a detached element with an identity transform.
func NewElement(name string) *Element {
	treeMu.Lock()
	elementIDCounter++
	id := elementIDCounter
	treeMu.Unlock()
	return &Element{ID: id, Name: name, k: 1}
}

// AddEventListener registers fn for events of type t delivered to e or
// bubbled up from its descendants.
func (e *Element) AddEventListener(t EventType, fn Listener) ListenerHandle {
	return e.listeners.add(t, fn)
}

// --- Transform ---

// SetTransform sets the element's translate(x, y) scale(k) transform.
func (e *Element) SetTransform(x, y, k float64) {
	treeMu.Lock()
	e.tx, e.ty, e.k = x, y, k
	treeMu.Unlock()
}

// Transform returns the element's current transform.
func (e *Element) Transform() (x, y, k float64) {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return e.tx, e.ty, e.k
}

// SetSize sets the element's layout box.
func (e *Element) SetSize(width, height float64) {
	treeMu.Lock()
	e.Width, e.Height = width, height
	treeMu.Unlock()
}

// WorldMatrix returns the composed affine matrix mapping the element's local
// coordinates to window coordinates.
func (e *Element) WorldMatrix() [6]float64 {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return e.worldMatrixLocked()
}

func (e *Element) worldMatrixLocked() [6]float64 {
	m := e.localMatrixLocked()
	for p := e.parent; p != nil; p = p.parent {
		m = multiplyAffine(p.localMatrixLocked(), m)
	}
	return m
}

func (e *Element) localMatrixLocked() [6]float64 {
	return localMatrix(e.Left, e.Top, e.tx, e.ty, e.k)
}

// BoundingClientRect returns the window-space rectangle covered by the
// element's box after all ancestor transforms.
func (e *Element) BoundingClientRect() Rect {
	treeMu.RLock()
	defer treeMu.RUnlock()
	m := e.worldMatrixLocked()
	x, y := transformPoint(m, 0, 0)
	return Rect{X: x, Y: y, Width: e.Width * m[0], Height: e.Height * m[3]}
}

// --- Tree manipulation ---

// Parent returns the element's parent, or nil if detached.
func (e *Element) Parent() *Element {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return e.parent
}

// Children returns a copy of the element's children in paint order
// (last is topmost).
func (e *Element) Children() []*Element {
	treeMu.RLock()
	defer treeMu.RUnlock()
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// FirstChild returns the bottommost child, or nil.
func (e *Element) FirstChild() *Element {
	treeMu.RLock()
	defer treeMu.RUnlock()
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// HasChild reports whether child is a direct child of e.
func (e *Element) HasChild(child *Element) bool {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return child != nil && child.parent == e
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	treeMu.RLock()
	defer treeMu.RUnlock()
	for p := other; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

// AppendChild makes child the topmost child of e. A child that already has
// a parent (including e) is moved.
// Panics if child is nil or an ancestor of e.
func (e *Element) AppendChild(child *Element) {
	if child == nil {
		panic("nodearea: cannot append nil child")
	}
	treeMu.Lock()
	defer treeMu.Unlock()
	e.insertLocked(child, len(e.children))
}

// InsertBefore moves child directly below next in paint order. A nil next
// appends. next must be a child of e; callers that cannot guarantee it use
// [Content.Reorder], which reports the violation as an error.
func (e *Element) InsertBefore(child, next *Element) {
	if child == nil {
		panic("nodearea: cannot insert nil child")
	}
	treeMu.Lock()
	defer treeMu.Unlock()
	if child == next {
		return
	}
	if next == nil {
		e.insertLocked(child, len(e.children))
		return
	}
	if next.parent != e {
		panic("nodearea: InsertBefore reference is not a child")
	}
	if child.parent != nil {
		child.parent.removeChildLocked(child)
	}
	e.insertLocked(child, indexOf(e.children, next))
}

func (e *Element) insertLocked(child *Element, index int) {
	for p := e; p != nil; p = p.parent {
		if p == child {
			panic("nodearea: inserting child would create a cycle")
		}
	}
	if child.parent != nil {
		if child.parent == e && index > indexOf(e.children, child) {
			index--
		}
		child.parent.removeChildLocked(child)
	}
	if index > len(e.children) {
		index = len(e.children)
	}
	child.parent = e
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
}

// RemoveChild detaches child from e. No-op if child is not a child of e.
func (e *Element) RemoveChild(child *Element) {
	treeMu.Lock()
	defer treeMu.Unlock()
	if child == nil || child.parent != e {
		return
	}
	e.removeChildLocked(child)
}

func (e *Element) removeChildLocked(child *Element) {
	i := indexOf(e.children, child)
	if i < 0 {
		return
	}
	copy(e.children[i:], e.children[i+1:])
	e.children[len(e.children)-1] = nil
	e.children = e.children[:len(e.children)-1]
	child.parent = nil
}

// RemoveChildren detaches every child of e.
func (e *Element) RemoveChildren() {
	treeMu.Lock()
	defer treeMu.Unlock()
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
}

// Dispose detaches e from its parent and drops all of its listeners.
func (e *Element) Dispose() {
	treeMu.Lock()
	if e.parent != nil {
		e.parent.removeChildLocked(e)
	}
	e.disposed = true
	treeMu.Unlock()
	e.listeners.clear()
}

// IsDisposed reports whether Dispose has been called.
func (e *Element) IsDisposed() bool {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return e.disposed
}

func indexOf(s []*Element, el *Element) int {
	for i, c := range s {
		if c == el {
			return i
		}
	}
	return -1
}

// --- Hit testing ---

// containsLocal tests whether (lx, ly) falls inside the element's hit region.
func (e *Element) containsLocal(lx, ly float64) bool {
	if e.HitShape != nil {
		return e.HitShape.Contains(lx, ly)
	}
	if e.Width <= 0 || e.Height <= 0 {
		return false
	}
	return lx >= 0 && lx <= e.Width && ly >= 0 && ly <= e.Height
}

// hitTestLocked finds the topmost element at window point (x, y) in the
// subtree rooted at e. parent is the composed matrix of e's parent.
func (e *Element) hitTestLocked(parent [6]float64, x, y float64) *Element {
	m := multiplyAffine(parent, e.localMatrixLocked())
	// Reverse painter order: topmost child first.
	for i := len(e.children) - 1; i >= 0; i-- {
		if hit := e.children[i].hitTestLocked(m, x, y); hit != nil {
			return hit
		}
	}
	lx, ly := transformPoint(invertAffine(m), x, y)
	if e.containsLocal(lx, ly) {
		return e
	}
	return nil
}

// propagationPath returns e and its ancestors, innermost first.
func (e *Element) propagationPath() []*Element {
	treeMu.RLock()
	defer treeMu.RUnlock()
	var path []*Element
	for p := e; p != nil; p = p.parent {
		path = append(path, p)
	}
	return path
}
