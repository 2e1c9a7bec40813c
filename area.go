package nodearea

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/sync/semaphore"
)

// TranslateParams describes a proposed area pan.
type TranslateParams struct {
	Previous Transform
	Position Position
}

// ZoomParams describes a proposed area zoom.
type ZoomParams struct {
	Previous Transform
	Zoom     float64
	Source   ZoomSource
}

// Guard may approve, rewrite or veto a proposed change. Returning ok=false
// vetoes it; the returned params are what gets committed otherwise.
type Guard[T any] func(ctx context.Context, params T) (approved T, ok bool, err error)

// Notify is awaited after a change has been committed.
type Notify[T any] func(ctx context.Context, params T) error

// AreaEvents are the callbacks an Area raises. Every field is optional.
type AreaEvents struct {
	Translated Notify[TranslateParams]
	Zoomed     Notify[ZoomParams]
	Reordered  Notify[*Element]

	PointerDown func(pos Position, e *Event)
	PointerMove func(pos Position, e *Event)
	PointerUp   func(pos Position, e *Event)
	Resized     func(e *Event)
}

// AreaGuards are consulted before a transform change is committed. A nil
// guard approves everything unchanged.
type AreaGuards struct {
	Translate Guard[TranslateParams]
	Zoom      Guard[ZoomParams]
}

// Area holds the pan/zoom transform of the content holder inside a
// container and turns drag and zoom gestures into guarded transform
// changes.
type Area struct {
	host      *Host
	container *Element
	content   *Content
	sched     *Scheduler
	logger    *log.Logger

	events AreaEvents
	guards AreaGuards

	// sem serializes Translate and Zoom so no half-applied transform is
	// ever observable.
	sem *semaphore.Weighted

	mu        sync.RWMutex
	transform Transform
	pointer   Position

	handlerMu sync.Mutex
	drag      *Drag
	zoom      *Zoom

	animMu sync.Mutex
	anim   *areaAnimation

	handles []ListenerHandle
}

// NewArea attaches a content holder to container and installs the default
// drag and zoom recognizers. Gesture-originated operations are queued on
// sched.
func NewArea(host *Host, container *Element, sched *Scheduler, events AreaEvents, guards AreaGuards, intensity float64) *Area {
	a := &Area{
		host:      host,
		container: container,
		sched:     sched,
		logger:    sched.logger,
		events:    events,
		guards:    guards,
		sem:       semaphore.NewWeighted(1),
		transform: identityAreaTransform,
	}
	a.content = newContent(func(ctx context.Context, el *Element) error {
		if a.events.Reordered != nil {
			return a.events.Reordered(ctx, el)
		}
		return nil
	})

	a.SetZoomHandler(NewZoom(intensity))
	a.SetDragHandler(NewDrag())

	a.handles = []ListenerHandle{
		container.AddEventListener(EventPointerDown, a.pointerdown),
		container.AddEventListener(EventPointerMove, a.pointermove),
		host.AddEventListener(EventPointerUp, a.pointerup),
		host.AddEventListener(EventResize, a.resize),
	}

	container.AppendChild(a.content.holder)
	a.update(identityAreaTransform)
	return a
}

// Content returns the area's content holder.
func (a *Area) Content() *Content {
	return a.content
}

// Container returns the element the area listens on.
func (a *Area) Container() *Element {
	return a.container
}

// Transform returns a copy of the current transform.
func (a *Area) Transform() Transform {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.transform
}

// Pointer returns the last pointer position in world coordinates.
func (a *Area) Pointer() Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pointer
}

func (a *Area) update(t Transform) {
	a.content.holder.SetTransform(t.X, t.Y, t.K)
}

// --- Recognizers ---

// SetDragHandler replaces the panning recognizer. Nil disables panning.
func (a *Area) SetDragHandler(d *Drag) {
	a.handlerMu.Lock()
	defer a.handlerMu.Unlock()
	if a.drag != nil {
		a.drag.Destroy()
	}
	a.drag = d
	if d == nil {
		return
	}
	d.Initialize(a.host, a.container,
		DragConfig{
			GetCurrentPosition: func() Position {
				t := a.Transform()
				return Position{X: t.X, Y: t.Y}
			},
			GetZoom: func() float64 { return 1 },
		},
		DragEvents{Translate: a.onTranslate},
	)
}

// SetZoomHandler replaces the zoom recognizer. Nil disables zooming.
func (a *Area) SetZoomHandler(z *Zoom) {
	a.handlerMu.Lock()
	defer a.handlerMu.Unlock()
	if a.zoom != nil {
		a.zoom.Destroy()
	}
	a.zoom = z
	if z == nil {
		return
	}
	z.Initialize(a.host, a.container, a.content.holder, a.onZoom)
}

func (a *Area) zoomHandler() *Zoom {
	a.handlerMu.Lock()
	defer a.handlerMu.Unlock()
	return a.zoom
}

func (a *Area) onTranslate(x, y float64, _ *Event) {
	// Translation is locked while a multi-touch zoom is in progress.
	if z := a.zoomHandler(); z != nil && z.IsTranslating() {
		return
	}
	a.sched.Schedule("area.translate", func(ctx context.Context) error {
		_, err := a.Translate(ctx, x, y)
		return err
	})
}

// onZoom queues a recognizer zoom. The offsets were measured against the
// holder as rendered at event time; a commit that lands before the operation
// runs moves the holder, so the offsets follow it scaled by delta.
func (a *Area) onZoom(delta, ox, oy float64, source ZoomSource) {
	seenX, seenY, _ := a.content.holder.Transform()
	a.sched.Schedule("area.zoom", func(ctx context.Context) error {
		t := a.Transform()
		ox += (t.X - seenX) * delta
		oy += (t.Y - seenY) * delta
		_, err := a.Zoom(ctx, t.K*(1+delta), ox, oy, source)
		return err
	})
}

// --- Pointer tracking ---

func (a *Area) setPointerFrom(e *Event) Position {
	p := a.content.PointerFrom(e)
	a.mu.Lock()
	k := a.transform.K
	a.pointer = Position{X: p.X / k, Y: p.Y / k}
	pos := a.pointer
	a.mu.Unlock()
	return pos
}

func (a *Area) pointerdown(e *Event) {
	pos := a.setPointerFrom(e)
	if a.events.PointerDown != nil {
		a.events.PointerDown(pos, e)
	}
}

func (a *Area) pointermove(e *Event) {
	pos := a.setPointerFrom(e)
	if a.events.PointerMove != nil {
		a.events.PointerMove(pos, e)
	}
}

func (a *Area) pointerup(e *Event) {
	pos := a.setPointerFrom(e)
	if a.events.PointerUp != nil {
		a.events.PointerUp(pos, e)
	}
}

func (a *Area) resize(e *Event) {
	if a.events.Resized != nil {
		a.events.Resized(e)
	}
}

// --- Guarded operations ---

// Translate proposes moving the content origin to (x, y). It returns true
// if the transform changed, false if the guard vetoed. A notification error
// is returned alongside true; the committed position is not rolled back.
func (a *Area) Translate(ctx context.Context, x, y float64) (bool, error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer a.sem.Release(1)

	params := TranslateParams{Previous: a.Transform(), Position: Position{X: x, Y: y}}
	if a.guards.Translate != nil {
		approved, ok, err := a.guards.Translate(ctx, params)
		if err != nil {
			return false, err
		}
		if !ok {
			a.logger.Debug("translate vetoed", "x", x, "y", y)
			return false, nil
		}
		params = approved
	}

	a.mu.Lock()
	a.transform.X = params.Position.X
	a.transform.Y = params.Position.Y
	t := a.transform
	a.mu.Unlock()
	a.update(t)

	if a.events.Translated != nil {
		if err := a.events.Translated(ctx, params); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Zoom proposes scale zoom, shifting the origin by (ox, oy) scaled by the
// fraction of the requested change the guard approved. With
// ox = (left-cx)·δ the point under (cx, cy) stays fixed. It returns true if
// the transform changed, false if the guard vetoed.
func (a *Area) Zoom(ctx context.Context, zoom, ox, oy float64, source ZoomSource) (bool, error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer a.sem.Release(1)

	prev := a.Transform()
	params := ZoomParams{Previous: prev, Zoom: zoom, Source: source}
	if a.guards.Zoom != nil {
		approved, ok, err := a.guards.Zoom(ctx, params)
		if err != nil {
			return false, err
		}
		if !ok {
			a.logger.Debug("zoom vetoed", "zoom", zoom, "source", string(source))
			return false, nil
		}
		params = approved
	}

	den := prev.K - zoom
	if den == 0 {
		den = 1
	}
	d := (prev.K - params.Zoom) / den

	a.mu.Lock()
	a.transform.K = params.Zoom
	if a.transform.K == 0 {
		a.transform.K = 1
	}
	a.transform.X += ox * d
	a.transform.Y += oy * d
	t := a.transform
	a.mu.Unlock()
	a.update(t)

	if a.events.Zoomed != nil {
		if err := a.events.Zoomed(ctx, params); err != nil {
			return true, err
		}
	}
	return true, nil
}

// --- Animation ---

type areaAnimation struct {
	x, y, k *gween.Tween
	ticker  TickerHandle
}

// AnimateTo tweens the transform to target over duration seconds. Each
// host tick queues one guarded translate followed by one guarded zoom
// about the content origin. A running animation is replaced.
func (a *Area) AnimateTo(target Transform, duration float32, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	from := a.Transform()
	anim := &areaAnimation{
		x: gween.New(float32(from.X), float32(target.X), duration, fn),
		y: gween.New(float32(from.Y), float32(target.Y), duration, fn),
		k: gween.New(float32(from.K), float32(target.K), duration, fn),
	}

	a.animMu.Lock()
	defer a.animMu.Unlock()
	if a.anim != nil {
		a.anim.ticker.Remove()
	}
	a.anim = anim
	anim.ticker = a.host.AddTicker(func(dt float32) {
		x, doneX := anim.x.Update(dt)
		y, doneY := anim.y.Update(dt)
		k, doneK := anim.k.Update(dt)
		a.sched.Schedule("area.animate", func(ctx context.Context) error {
			if _, err := a.Translate(ctx, float64(x), float64(y)); err != nil {
				return err
			}
			_, err := a.Zoom(ctx, float64(k), 0, 0, ZoomSourceNone)
			return err
		})
		if doneX && doneY && doneK {
			a.finishAnimation(anim)
		}
	})
}

func (a *Area) finishAnimation(anim *areaAnimation) {
	a.animMu.Lock()
	defer a.animMu.Unlock()
	anim.ticker.Remove()
	if a.anim == anim {
		a.anim = nil
	}
}

// Animating reports whether an AnimateTo transition is still running.
func (a *Area) Animating() bool {
	a.animMu.Lock()
	defer a.animMu.Unlock()
	return a.anim != nil
}

// StopAnimation halts a running AnimateTo. Steps already queued still run.
func (a *Area) StopAnimation() {
	a.animMu.Lock()
	defer a.animMu.Unlock()
	if a.anim != nil {
		a.anim.ticker.Remove()
		a.anim = nil
	}
}

// Destroy removes every listener and recognizer and empties the holder.
func (a *Area) Destroy() {
	removeAll(a.handles)
	a.handles = nil
	a.StopAnimation()
	a.SetDragHandler(nil)
	a.SetZoomHandler(nil)
	a.content.holder.RemoveChildren()
}
