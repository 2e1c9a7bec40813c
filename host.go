package nodearea

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// --- Constants ---

const (
	maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

	doubleClickInterval = 500 * time.Millisecond
	doubleClickSlop     = 6.0 // pixels
)

// --- Per-pointer state ---

type pointerState struct {
	down   bool
	lastX  float64
	lastY  float64
	button MouseButton // button captured at press time
	ptype  PointerType
}

type clickRecord struct {
	at   time.Time
	x, y float64
}

// PointerInput describes one pointer sample fed into the host.
type PointerInput struct {
	ID        int
	Type      PointerType
	Button    MouseButton
	X, Y      float64
	Modifiers KeyModifiers
}

// Host owns the element tree, the window-level listeners and the input
// state, and implements [ebiten.Game]. Input entry points are meant to be
// called from a single goroutine (the game loop or a test).
type Host struct {
	root   *Element
	window listenerRegistry

	// ClearColor fills the screen before the tree is drawn when its alpha
	// is non-zero.
	ClearColor Color
	// ScreenshotDir receives Screenshot captures. Empty means
	// DefaultScreenshotDir.
	ScreenshotDir string
	// Logger reports screenshot output. Nil discards.
	Logger *log.Logger

	width, height int

	pointers     [maxPointers]pointerState
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	injectQueue  []queuedSample
	lastClick    *clickRecord
	now          func() time.Time
	script       *Script

	shotMu          sync.Mutex
	screenshotQueue []string

	tickMu     sync.Mutex
	tickers    []registeredTicker
	nextTicker uint32
}

// NewHost creates a host with a window of the given size. The root element
// covers the whole window.
func NewHost(width, height int) *Host {
	root := NewElement("root")
	root.Width, root.Height = float64(width), float64(height)
	return &Host{
		root:   root,
		width:  width,
		height: height,
		now:    time.Now,
	}
}

// Root returns the host's root element.
func (h *Host) Root() *Element {
	return h.root
}

// Size returns the current window size.
func (h *Host) Size() (width, height int) {
	return h.width, h.height
}

// AddEventListener registers a window-level listener. Window listeners see
// every event after it has bubbled through the element tree, unless
// propagation was stopped.
func (h *Host) AddEventListener(t EventType, fn Listener) ListenerHandle {
	return h.window.add(t, fn)
}

// --- Dispatch ---

// HitTest returns the topmost element at window point (x, y), or nil.
func (h *Host) HitTest(x, y float64) *Element {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return h.root.hitTestLocked(identityMatrix, x, y)
}

// Dispatch delivers e to its target and each ancestor, innermost first,
// then to the window. StopPropagation ends delivery after the current
// target's remaining listeners have run.
func (h *Host) Dispatch(e *Event) {
	if e.Target != nil {
		for _, el := range e.Target.propagationPath() {
			e.CurrentTarget = el
			for _, fn := range el.listeners.snapshot(e.Type) {
				fn(e)
			}
			if e.stopped {
				e.CurrentTarget = nil
				return
			}
		}
	}
	e.CurrentTarget = nil
	for _, fn := range h.window.snapshot(e.Type) {
		fn(e)
	}
}

func (h *Host) pointerEvent(t EventType, in PointerInput) *Event {
	e := &Event{
		Type:        t,
		PointerID:   in.ID,
		PointerType: in.Type,
		Button:      in.Button,
		Modifiers:   in.Modifiers,
		ClientX:     in.X,
		ClientY:     in.Y,
	}
	e.Target = h.HitTest(in.X, in.Y)
	h.Dispatch(e)
	return e
}

// PointerDown feeds a pointer press into the tree and returns the
// dispatched event.
func (h *Host) PointerDown(in PointerInput) *Event {
	if in.ID >= 0 && in.ID < maxPointers {
		h.pointers[in.ID] = pointerState{down: true, lastX: in.X, lastY: in.Y, button: in.Button, ptype: in.Type}
	}
	return h.pointerEvent(EventPointerDown, in)
}

// PointerMove feeds a pointer movement into the tree.
func (h *Host) PointerMove(in PointerInput) *Event {
	if in.ID >= 0 && in.ID < maxPointers {
		h.pointers[in.ID].lastX, h.pointers[in.ID].lastY = in.X, in.Y
	}
	return h.pointerEvent(EventPointerMove, in)
}

// PointerUp feeds a pointer release into the tree.
func (h *Host) PointerUp(in PointerInput) *Event {
	if in.ID >= 0 && in.ID < maxPointers {
		h.pointers[in.ID].down = false
	}
	return h.pointerEvent(EventPointerUp, in)
}

// PointerCancel aborts a pointer sequence.
func (h *Host) PointerCancel(in PointerInput) *Event {
	if in.ID >= 0 && in.ID < maxPointers {
		h.pointers[in.ID].down = false
	}
	return h.pointerEvent(EventPointerCancel, in)
}

// Wheel feeds a wheel scroll at (x, y). deltaY < 0 scrolls up.
func (h *Host) Wheel(x, y, deltaX, deltaY float64, mods KeyModifiers) *Event {
	e := &Event{
		Type:      EventWheel,
		Modifiers: mods,
		ClientX:   x,
		ClientY:   y,
		DeltaX:    deltaX,
		DeltaY:    deltaY,
	}
	e.Target = h.HitTest(x, y)
	h.Dispatch(e)
	return e
}

// DoubleClick feeds a primary-button double click at (x, y).
func (h *Host) DoubleClick(x, y float64, mods KeyModifiers) *Event {
	return h.pointerEvent(EventDoubleClick, PointerInput{X: x, Y: y, Modifiers: mods})
}

// ContextMenu feeds a context menu request at (x, y).
func (h *Host) ContextMenu(x, y float64, mods KeyModifiers) *Event {
	return h.pointerEvent(EventContextMenu, PointerInput{X: x, Y: y, Button: MouseButtonRight, Modifiers: mods})
}

// Resize records a new window size and notifies window listeners. The root
// element is resized to match.
func (h *Host) Resize(width, height int) *Event {
	h.width, h.height = width, height
	h.root.SetSize(float64(width), float64(height))
	e := &Event{Type: EventResize, Width: width, Height: height}
	h.Dispatch(e)
	return e
}

// --- Tickers ---

type registeredTicker struct {
	id uint32
	fn func(dt float32)
}

// TickerHandle allows removing a ticker added with AddTicker.
type TickerHandle struct {
	id   uint32
	host *Host
}

// Remove stops the ticker. Safe to call from inside the ticker itself.
func (t TickerHandle) Remove() {
	if t.host == nil {
		return
	}
	t.host.tickMu.Lock()
	defer t.host.tickMu.Unlock()
	s := t.host.tickers
	for i := range s {
		if s[i].id == t.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = registeredTicker{}
			t.host.tickers = s[:len(s)-1]
			return
		}
	}
}

// AddTicker registers fn to run once per Update with the frame duration in
// seconds.
func (h *Host) AddTicker(fn func(dt float32)) TickerHandle {
	h.tickMu.Lock()
	defer h.tickMu.Unlock()
	h.nextTicker++
	id := h.nextTicker
	h.tickers = append(h.tickers, registeredTicker{id: id, fn: fn})
	return TickerHandle{id: id, host: h}
}

// Advance runs every ticker with dt. Update calls it once per tick.
func (h *Host) Advance(dt float32) {
	h.tickMu.Lock()
	snap := make([]registeredTicker, len(h.tickers))
	copy(snap, h.tickers)
	h.tickMu.Unlock()
	for _, t := range snap {
		t.fn(dt)
	}
}

// --- Game loop ---

// Update polls Ebitengine input, dispatches the resulting events and
// advances tickers.
func (h *Host) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	mods := readModifiers()

	if h.script != nil {
		h.script.step(h)
	}
	if !h.processInjectedInput(mods) {
		h.processMousePointer(mods)
	}
	h.processTouchPointers(mods)
	h.processWheel(mods)

	h.Advance(dt)
	return nil
}

// Draw renders every element in paint order.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.ClearColor.A > 0 {
		screen.Fill(h.ClearColor.RGBA())
	}
	treeMu.RLock()
	h.drawElement(screen, h.root, identityMatrix)
	treeMu.RUnlock()
	h.flushScreenshots(screen)
}

func (h *Host) log() *log.Logger {
	if h.Logger == nil {
		return discardLogger()
	}
	return h.Logger
}

func (h *Host) drawElement(screen *ebiten.Image, el *Element, parent [6]float64) {
	m := multiplyAffine(parent, el.localMatrixLocked())
	if el.Color.A > 0 && el.Width > 0 && el.Height > 0 {
		vector.DrawFilledRect(screen,
			float32(m[4]), float32(m[5]),
			float32(el.Width*m[0]), float32(el.Height*m[3]),
			el.Color.RGBA(), true)
	}
	if el.OnDraw != nil {
		el.OnDraw(screen, geoMFromMatrix(m))
	}
	for _, c := range el.children {
		h.drawElement(screen, c, m)
	}
}

// geoMFromMatrix converts an [a, b, c, d, tx, ty] matrix into an ebiten.GeoM.
func geoMFromMatrix(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}

// Layout reports the window size as the logical screen size and raises a
// resize event when it changes.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.width || outsideHeight != h.height {
		h.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// Context, when set, closes the window once it is done.
	Context context.Context
}

// runGame ends the game loop when ctx is done.
type runGame struct {
	*Host
	ctx context.Context
}

func (g runGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	return g.Host.Update()
}

// Run opens a resizable window and runs host as the game. If cfg.Context
// ends the loop, its error is returned.
func Run(host *Host, cfg RunConfig) error {
	w, hgt := cfg.Width, cfg.Height
	if w <= 0 || hgt <= 0 {
		w, hgt = host.Size()
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(w, hgt)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Context == nil {
		return ebiten.RunGame(host)
	}
	if err := ebiten.RunGame(runGame{Host: host, ctx: cfg.Context}); err != nil {
		return err
	}
	return cfg.Context.Err()
}

// --- Input polling ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processMousePointer handles mouse input (pointer 0).
func (h *Host) processMousePointer(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	// If the pointer is already down, keep the button captured at press
	// time so it does not change mid-interaction.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case right:
			button = MouseButtonRight
		default:
			button = MouseButtonMiddle
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		h.ContextMenu(x, y, mods)
	}
	h.processPointer(0, PointerMouse, x, y, pressed, button, mods)
}

// processTouchPointers handles touch input (pointers 1-9).
func (h *Host) processTouchPointers(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(h.prevTouchIDs[:0])
	h.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := h.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		h.processPointer(slot, PointerTouch, float64(tx), float64(ty), true, MouseButtonLeft, mods)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if h.touchUsed[i] && !activeSlots[i] {
			ps := &h.pointers[i]
			if ps.down {
				h.processPointer(i, PointerTouch, ps.lastX, ps.lastY, false, MouseButtonLeft, mods)
			}
			h.touchUsed[i] = false
			h.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (h *Host) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if h.touchUsed[i] && h.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !h.touchUsed[i] {
			h.touchUsed[i] = true
			h.touchMap[i] = tid
			return i
		}
	}
	return -1
}

func (h *Host) processWheel(mods KeyModifiers) {
	wx, wy := ebiten.Wheel()
	if wx == 0 && wy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	// Ebitengine reports positive y for scrolling up; wheel events use the
	// opposite sign.
	h.Wheel(float64(mx), float64(my), -wx, -wy, mods)
}

// processPointer turns a polled pressed/position sample into down, move
// and up events for a single pointer.
func (h *Host) processPointer(id int, ptype PointerType, x, y float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &h.pointers[id]
	in := PointerInput{ID: id, Type: ptype, Button: button, X: x, Y: y, Modifiers: mods}

	switch {
	case pressed && !ps.down:
		h.PointerDown(in)
	case !pressed && ps.down:
		in.Button = ps.button
		h.PointerUp(in)
		if ptype == PointerMouse && in.Button == MouseButtonLeft {
			h.registerClick(x, y, mods)
		}
	case x != ps.lastX || y != ps.lastY:
		if ps.down {
			in.Button = ps.button
		}
		h.PointerMove(in)
	}
}

// registerClick synthesizes a double click from two primary clicks close in
// time and space.
func (h *Host) registerClick(x, y float64, mods KeyModifiers) {
	now := h.now()
	if prev := h.lastClick; prev != nil &&
		now.Sub(prev.at) <= doubleClickInterval &&
		math.Hypot(x-prev.x, y-prev.y) <= doubleClickSlop {
		h.lastClick = nil
		h.DoubleClick(x, y, mods)
		return
	}
	h.lastClick = &clickRecord{at: now, x: x, y: y}
}
