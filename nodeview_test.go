package nodearea

import (
	"context"
	"sync"
	"testing"
)

type nodeViewFixture struct {
	host  *Host
	sched *Scheduler
	view  *NodeView
	zoom  float64
}

func newNodeViewFixture(t *testing.T, events NodeViewEvents, guards NodeViewGuards) *nodeViewFixture {
	t.Helper()
	f := &nodeViewFixture{host: NewHost(800, 600), sched: NewScheduler(nil), zoom: 1}
	f.view = NewNodeView(f.host, f.sched, func() float64 { return f.zoom }, events, guards)
	f.view.Element().SetSize(100, 50)
	f.host.Root().AppendChild(f.view.Element())
	t.Cleanup(func() {
		f.view.Destroy()
		f.sched.Close()
	})
	return f
}

func TestNodeView_Translate(t *testing.T) {
	var notified []NodeTranslateParams
	f := newNodeViewFixture(t, NodeViewEvents{
		Translated: func(_ context.Context, p NodeTranslateParams) error {
			notified = append(notified, p)
			return nil
		},
	}, NodeViewGuards{})

	ctx := context.Background()
	f.view.Translate(ctx, 10, 20)
	f.view.Translate(ctx, 30, 40)

	if f.view.Position() != (Position{X: 30, Y: 40}) {
		t.Errorf("Position = %+v", f.view.Position())
	}
	if x, y, k := f.view.Element().Transform(); x != 30 || y != 40 || k != 1 {
		t.Errorf("element transform = (%v, %v, %v)", x, y, k)
	}
	if len(notified) != 2 || notified[1].Previous != (Position{X: 10, Y: 20}) {
		t.Errorf("notified = %+v", notified)
	}
}

func TestNodeView_TranslateGuard(t *testing.T) {
	f := newNodeViewFixture(t, NodeViewEvents{}, NodeViewGuards{
		Translate: func(_ context.Context, p NodeTranslateParams) (NodeTranslateParams, bool, error) {
			if p.Position.X < 0 {
				return p, false, nil
			}
			p.Position.Y = 0
			return p, true, nil
		},
	})
	ctx := context.Background()

	if ok, _ := f.view.Translate(ctx, -5, 5); ok {
		t.Error("vetoed translate reported a change")
	}
	if ok, _ := f.view.Translate(ctx, 5, 5); !ok {
		t.Error("approved translate reported no change")
	}
	if f.view.Position() != (Position{X: 5, Y: 0}) {
		t.Errorf("Position = %+v, want (5, 0)", f.view.Position())
	}
}

func TestNodeView_Resize(t *testing.T) {
	var resized Size
	f := newNodeViewFixture(t, NodeViewEvents{
		Resized: func(_ context.Context, p NodeResizeParams) error {
			resized = p.Size
			return nil
		},
	}, NodeViewGuards{
		Resize: func(_ context.Context, p NodeResizeParams) (NodeResizeParams, bool, error) {
			p.Size.Width = max(p.Size.Width, 80)
			return p, true, nil
		},
	})

	if ok, err := f.view.Resize(context.Background(), 40, 30); !ok || err != nil {
		t.Fatalf("Resize = %v, %v", ok, err)
	}
	if got := f.view.Size(); got != (Size{Width: 80, Height: 30}) {
		t.Errorf("Size = %+v, want 80x30", got)
	}
	if resized != (Size{Width: 80, Height: 30}) {
		t.Errorf("notified size = %+v", resized)
	}
}

func TestNodeView_DragDividesByZoom(t *testing.T) {
	picked, dragged := 0, 0
	f := newNodeViewFixture(t, NodeViewEvents{
		Picked:  func(*Event) { picked++ },
		Dragged: func(*Event) { dragged++ },
	}, NodeViewGuards{})
	f.zoom = 2

	f.host.PointerDown(PointerInput{X: 10, Y: 10})
	if !f.view.Dragging() {
		t.Error("not dragging after press")
	}
	f.host.PointerMove(PointerInput{X: 50, Y: 30})
	f.host.PointerUp(PointerInput{X: 50, Y: 30})
	if err := f.sched.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	if f.view.Position() != (Position{X: 20, Y: 10}) {
		t.Errorf("Position = %+v, want (20, 10)", f.view.Position())
	}
	if picked != 1 || dragged != 1 {
		t.Errorf("picked=%d dragged=%d", picked, dragged)
	}
	if f.view.Dragging() {
		t.Error("still dragging after release")
	}
}

func TestNodeView_ContextMenu(t *testing.T) {
	menus := 0
	f := newNodeViewFixture(t, NodeViewEvents{
		ContextMenu: func(*Event) { menus++ },
	}, NodeViewGuards{})

	f.host.ContextMenu(10, 10, 0)
	f.host.ContextMenu(500, 500, 0)
	if menus != 1 {
		t.Errorf("menus = %d, want 1", menus)
	}
}

func TestNodeView_Destroy(t *testing.T) {
	picked := 0
	f := newNodeViewFixture(t, NodeViewEvents{
		Picked: func(*Event) { picked++ },
	}, NodeViewGuards{})

	f.view.Destroy()
	f.host.PointerDown(PointerInput{X: 10, Y: 10})
	if picked != 0 {
		t.Error("destroyed view still picks")
	}
}

func TestConnectionView_ContextMenu(t *testing.T) {
	h := NewHost(800, 600)
	menus := 0
	v := NewConnectionView(func(*Event) { menus++ })
	v.Element().HitShape = HitRect{Width: 100, Height: 10}
	h.Root().AppendChild(v.Element())

	h.ContextMenu(50, 5, 0)
	v.Destroy()
	h.ContextMenu(50, 5, 0)
	if menus != 1 {
		t.Errorf("menus = %d, want 1", menus)
	}
}

func TestNodeView_DragUsesStartSnapshotWhileCommitPending(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	var proposed []Position
	f := newNodeViewFixture(t, NodeViewEvents{}, NodeViewGuards{
		Translate: func(ctx context.Context, p NodeTranslateParams) (NodeTranslateParams, bool, error) {
			mu.Lock()
			proposed = append(proposed, p.Position)
			mu.Unlock()
			once.Do(func() {
				close(entered)
				select {
				case <-release:
				case <-ctx.Done():
				}
			})
			return p, true, nil
		},
	})
	f.zoom = 2

	f.host.PointerDown(PointerInput{X: 10, Y: 10})
	f.host.PointerMove(PointerInput{X: 30, Y: 20})
	<-entered
	// The first commit is still waiting on its guard.
	f.host.PointerMove(PointerInput{X: 50, Y: 40})
	f.host.PointerMove(PointerInput{X: 70, Y: 60})
	f.host.PointerUp(PointerInput{X: 70, Y: 60})
	close(release)
	if err := f.sched.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []Position{{X: 10, Y: 5}, {X: 20, Y: 15}, {X: 30, Y: 25}}
	mu.Lock()
	defer mu.Unlock()
	if len(proposed) != len(want) {
		t.Fatalf("proposed = %v, want %v", proposed, want)
	}
	for i := range want {
		if proposed[i] != want[i] {
			t.Errorf("proposal %d = %+v, want %+v", i, proposed[i], want[i])
		}
	}
	if f.view.Position() != want[2] {
		t.Errorf("Position = %+v, want %+v", f.view.Position(), want[2])
	}
}
