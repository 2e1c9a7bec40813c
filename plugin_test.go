package nodearea

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

type signalRecorder struct {
	mu      sync.Mutex
	signals []Signal
}

func (r *signalRecorder) pipe(_ context.Context, s Signal) (Signal, error) {
	r.mu.Lock()
	r.signals = append(r.signals, s)
	r.mu.Unlock()
	return s, nil
}

func (r *signalRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.signals))
	for i, s := range r.signals {
		out[i] = s.SignalType()
	}
	return out
}

func (r *signalRecorder) reset() {
	r.mu.Lock()
	r.signals = nil
	r.mu.Unlock()
}

func (r *signalRecorder) last(typ string) Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.signals) - 1; i >= 0; i-- {
		if r.signals[i].SignalType() == typ {
			return r.signals[i]
		}
	}
	return nil
}

func newTestPlugin(t *testing.T, opts ...Option) (*Plugin, *signalRecorder) {
	t.Helper()
	h := NewHost(800, 600)
	container := NewElement("container")
	container.SetSize(800, 600)
	h.Root().AppendChild(container)

	opts = append([]Option{WithLogger(log.NewWithOptions(io.Discard, log.Options{}))}, opts...)
	p := NewPlugin(h, container, opts...)
	rec := &signalRecorder{}
	p.AddPipe(rec.pipe)
	t.Cleanup(p.Destroy)
	return p, rec
}

func flushPlugin(t *testing.T, p *Plugin) {
	t.Helper()
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestNewPlugin_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	p, _ := newTestPlugin(t, WithConfig(cfg), WithZoomIntensity(0.3), WithZoomIntensity(-1))

	if p.Config().ZoomIntensity != 0.3 {
		t.Errorf("ZoomIntensity = %v, want 0.3", p.Config().ZoomIntensity)
	}
	if p.Config().LogLevel != "debug" {
		t.Errorf("LogLevel = %q", p.Config().LogLevel)
	}
	if p.Host().Logger == nil {
		t.Error("host logger not defaulted to the plugin logger")
	}
	if p.Name() != "area" {
		t.Errorf("scope name = %q", p.Name())
	}
}

// --- Lifecycle ---

func TestPlugin_NodeLifecycle(t *testing.T) {
	p, rec := newTestPlugin(t)
	ctx := context.Background()

	if _, err := p.Emit(ctx, NodeCreatedSignal{ID: "n1", Payload: "payload"}); err != nil {
		t.Fatal(err)
	}
	view, ok := p.NodeView("n1")
	if !ok {
		t.Fatal("node view not created")
	}
	if !p.Area().Content().Holder().HasChild(view.Element()) {
		t.Error("node element not attached to the holder")
	}
	if !equalNames(rec.types(), []string{"render", "nodecreated"}) {
		t.Errorf("signals = %v", rec.types())
	}
	render := rec.last("render").(RenderSignal)
	if render.Kind != RenderNode || render.ID != "n1" || render.Payload != "payload" || render.Element != view.Element() {
		t.Errorf("render = %+v", render)
	}
	if payload, _ := p.NodePayload("n1"); payload != "payload" {
		t.Errorf("payload = %v", payload)
	}

	rec.reset()
	p.Emit(ctx, NodeRemovedSignal{ID: "n1"})
	if _, ok := p.NodeView("n1"); ok {
		t.Error("node view kept after removal")
	}
	if view.Element().Parent() != nil {
		t.Error("node element still attached")
	}
	if !equalNames(rec.types(), []string{"unmount", "noderemoved"}) {
		t.Errorf("signals = %v", rec.types())
	}
}

func TestPlugin_AddNodeViewIdempotent(t *testing.T) {
	p, rec := newTestPlugin(t)
	ctx := context.Background()

	v1, _ := p.AddNodeView(ctx, "n1", nil)
	v2, _ := p.AddNodeView(ctx, "n1", nil)
	if v1 != v2 {
		t.Error("second add created a new view")
	}
	if n := len(p.Area().Content().Holder().Children()); n != 1 {
		t.Errorf("holder children = %d, want 1", n)
	}
	if !equalNames(rec.types(), []string{"render"}) {
		t.Errorf("signals = %v", rec.types())
	}
	if err := p.RemoveNodeView(ctx, "unknown"); err != nil {
		t.Errorf("removing unknown node: %v", err)
	}
}

func TestPlugin_ConnectionLifecycle(t *testing.T) {
	p, rec := newTestPlugin(t)
	ctx := context.Background()

	p.Emit(ctx, NodeCreatedSignal{ID: "n1"})
	p.Emit(ctx, ConnectionCreatedSignal{ID: "c1", Payload: 42})
	conn, ok := p.ConnectionView("c1")
	if !ok {
		t.Fatal("connection view not created")
	}
	render := rec.last("render").(RenderSignal)
	if render.Kind != RenderConnection || render.ID != "c1" || render.Payload != 42 {
		t.Errorf("render = %+v", render)
	}

	p.Emit(ctx, ConnectionRemovedSignal{ID: "c1"})
	if _, ok := p.ConnectionView("c1"); ok {
		t.Error("connection view kept")
	}
	if conn.Element().Parent() != nil {
		t.Error("connection element still attached")
	}
	// Removing a connection leaves nodes alone.
	if _, ok := p.NodeView("n1"); !ok {
		t.Error("node removed along with the connection")
	}
}

func TestPlugin_NodeIDsSorted(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		p.AddNodeView(ctx, id, nil)
	}
	if got := p.NodeIDs(); !equalNames(got, []string{"a", "b", "c"}) {
		t.Errorf("NodeIDs = %v", got)
	}
}

func TestPlugin_Update(t *testing.T) {
	p, rec := newTestPlugin(t)
	ctx := context.Background()
	p.AddNodeView(ctx, "n1", "x")
	rec.reset()

	if ok, err := p.Update(ctx, RenderNode, "n1"); !ok || err != nil {
		t.Errorf("Update = %v, %v", ok, err)
	}
	if ok, _ := p.Update(ctx, RenderNode, "missing"); ok {
		t.Error("Update of a missing node reported true")
	}
	if ok, _ := p.Update(ctx, RenderConnection, "n1"); ok {
		t.Error("Update with the wrong kind reported true")
	}
	if !equalNames(rec.types(), []string{"render"}) {
		t.Errorf("signals = %v", rec.types())
	}
}

// --- Guards ---

func TestPlugin_TranslateSignals(t *testing.T) {
	p, rec := newTestPlugin(t)
	ctx := context.Background()

	if ok, err := p.Area().Translate(ctx, 10, 20); !ok || err != nil {
		t.Fatalf("Translate = %v, %v", ok, err)
	}
	if !equalNames(rec.types(), []string{"translate", "translated"}) {
		t.Errorf("signals = %v", rec.types())
	}
	got := rec.last("translated").(TranslatedSignal)
	if got.Position != (Position{X: 10, Y: 20}) || got.Previous != (Transform{K: 1}) {
		t.Errorf("translated = %+v", got)
	}
}

func TestPlugin_GuardPipeRewritesZoom(t *testing.T) {
	p, rec := newTestPlugin(t)
	p.AddPipe(func(_ context.Context, s Signal) (Signal, error) {
		if z, ok := s.(ZoomSignal); ok {
			z.Zoom = 0.5
			return z, nil
		}
		return s, nil
	})

	p.Area().Zoom(context.Background(), 3, 0, 0, ZoomSourceWheel)
	if k := p.Area().Transform().K; k != 0.5 {
		t.Errorf("K = %v, want 0.5", k)
	}
	zoomed := rec.last("zoomed").(ZoomedSignal)
	if zoomed.Zoom != 0.5 {
		t.Errorf("zoomed = %+v", zoomed)
	}
}

func TestPlugin_GuardPipeVetoes(t *testing.T) {
	p, rec := newTestPlugin(t)
	p.AddPipe(func(_ context.Context, s Signal) (Signal, error) {
		if _, ok := s.(TranslateSignal); ok {
			return nil, nil
		}
		return s, nil
	})

	ok, err := p.Area().Translate(context.Background(), 10, 10)
	if ok || err != nil {
		t.Errorf("Translate = %v, %v; want false, nil", ok, err)
	}
	if rec.last("translated") != nil {
		t.Error("vetoed translate was notified")
	}
}

func TestPlugin_GuardPipeError(t *testing.T) {
	p, _ := newTestPlugin(t)
	boom := errors.New("boom")
	p.AddPipe(func(_ context.Context, s Signal) (Signal, error) {
		if _, ok := s.(ZoomSignal); ok {
			return nil, boom
		}
		return s, nil
	})

	ok, err := p.Area().Zoom(context.Background(), 2, 0, 0, ZoomSourceNone)
	if ok || !errors.Is(err, boom) {
		t.Errorf("Zoom = %v, %v", ok, err)
	}
}

func TestPlugin_NodeTranslateGuard(t *testing.T) {
	p, rec := newTestPlugin(t)
	p.AddPipe(func(_ context.Context, s Signal) (Signal, error) {
		if nt, ok := s.(NodeTranslateSignal); ok {
			nt.Position.X = 100
			return nt, nil
		}
		return s, nil
	})
	ctx := context.Background()
	p.AddNodeView(ctx, "n1", nil)

	if ok, err := p.TranslateNode(ctx, "n1", Position{X: 5, Y: 6}); !ok || err != nil {
		t.Fatalf("TranslateNode = %v, %v", ok, err)
	}
	view, _ := p.NodeView("n1")
	if view.Position() != (Position{X: 100, Y: 6}) {
		t.Errorf("Position = %+v", view.Position())
	}
	translated := rec.last("nodetranslated").(NodeTranslatedSignal)
	if translated.ID != "n1" || translated.Position != (Position{X: 100, Y: 6}) {
		t.Errorf("nodetranslated = %+v", translated)
	}
	if ok, _ := p.TranslateNode(ctx, "missing", Position{}); ok {
		t.Error("TranslateNode on a missing id reported true")
	}
}

func TestPlugin_ResizeNode(t *testing.T) {
	p, rec := newTestPlugin(t)
	ctx := context.Background()
	p.AddNodeView(ctx, "n1", nil)

	if ok, err := p.Resize(ctx, "n1", 120, 80); !ok || err != nil {
		t.Fatalf("Resize = %v, %v", ok, err)
	}
	resized := rec.last("noderesized").(NodeResizedSignal)
	if resized.Size != (Size{Width: 120, Height: 80}) {
		t.Errorf("noderesized = %+v", resized)
	}
	if ok, _ := p.Resize(ctx, "missing", 1, 1); ok {
		t.Error("Resize on a missing id reported true")
	}
}

// --- Input ---

func TestPlugin_PointerSignals(t *testing.T) {
	p, rec := newTestPlugin(t)
	h := p.Host()

	h.PointerDown(PointerInput{X: 100, Y: 100})
	h.PointerMove(PointerInput{X: 150, Y: 120})
	h.PointerUp(PointerInput{X: 150, Y: 120})
	flushPlugin(t, p)

	types := rec.types()
	for _, want := range []string{"pointerdown", "pointermove", "pointerup", "translate", "translated"} {
		found := false
		for _, typ := range types {
			if typ == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing %q in %v", want, types)
		}
	}
	if tr := p.Area().Transform(); tr.X != 50 || tr.Y != 20 {
		t.Errorf("transform = %+v, want pan (50, 20)", tr)
	}
}

func TestPlugin_NodeDragSignals(t *testing.T) {
	p, rec := newTestPlugin(t)
	ctx := context.Background()
	view, _ := p.AddNodeView(ctx, "n1", nil)
	view.Element().SetSize(100, 50)
	rec.reset()

	h := p.Host()
	h.PointerDown(PointerInput{X: 10, Y: 10})
	h.PointerMove(PointerInput{X: 30, Y: 40})
	h.PointerUp(PointerInput{X: 30, Y: 40})
	flushPlugin(t, p)

	if rec.last("nodepicked") == nil || rec.last("nodedragged") == nil {
		t.Errorf("signals = %v", rec.types())
	}
	if view.Position() != (Position{X: 20, Y: 30}) {
		t.Errorf("Position = %+v", view.Position())
	}
	// Dragging a node must not pan the area.
	if tr := p.Area().Transform(); tr.X != 0 || tr.Y != 0 {
		t.Errorf("area panned to %+v", tr)
	}
}

func TestPlugin_ContextMenu(t *testing.T) {
	p, rec := newTestPlugin(t)
	ctx := context.Background()
	view, _ := p.AddNodeView(ctx, "n1", nil)
	view.Element().SetSize(100, 50)
	h := p.Host()

	h.ContextMenu(500, 500, 0)
	root := rec.last("contextmenu").(ContextMenuSignal)
	if root.Context != ContextRoot {
		t.Errorf("background context menu = %+v", root)
	}

	rec.reset()
	h.ContextMenu(10, 10, 0)
	var node *ContextMenuSignal
	for _, s := range rec.signals {
		if cm, ok := s.(ContextMenuSignal); ok && cm.Context == ContextNode {
			node = &cm
		}
	}
	if node == nil || node.ID != "n1" {
		t.Errorf("node context menu missing: %v", rec.types())
	}
}

func TestPlugin_ResizedSignal(t *testing.T) {
	p, rec := newTestPlugin(t)
	p.Host().Resize(1024, 768)
	if rec.last("resized") == nil {
		t.Errorf("signals = %v", rec.types())
	}
}

// --- Destroy ---

func TestPlugin_Destroy(t *testing.T) {
	p, _ := newTestPlugin(t)
	ctx := context.Background()
	p.AddNodeView(ctx, "n1", nil)
	p.AddConnectionView(ctx, "c1", nil)

	p.Destroy()
	p.Destroy()

	if _, err := p.AddNodeView(ctx, "n2", nil); !errors.Is(err, ErrDestroyed) {
		t.Errorf("AddNodeView after Destroy = %v", err)
	}
	if _, err := p.AddConnectionView(ctx, "c2", nil); !errors.Is(err, ErrDestroyed) {
		t.Errorf("AddConnectionView after Destroy = %v", err)
	}
	if len(p.NodeIDs()) != 0 {
		t.Error("nodes kept after Destroy")
	}
	if err := p.Flush(ctx); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Flush after Destroy = %v", err)
	}
	if n := len(p.Area().Content().Holder().Children()); n != 0 {
		t.Errorf("holder children = %d after Destroy", n)
	}
}
