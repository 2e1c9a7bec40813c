package ecs

import (
	"context"
	"testing"

	"github.com/phanxgames/nodearea"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewBridge(t *testing.T) {
	world := donburi.NewWorld()
	if NewBridge(world) == nil {
		t.Fatal("NewBridge returned nil")
	}
}

func TestBridge_PublishesCommittedSignals(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewBridge(world)
	ctx := context.Background()

	var received []nodearea.Signal
	SignalEventType.Subscribe(world, func(w donburi.World, s nodearea.Signal) {
		received = append(received, s)
	})

	for _, s := range []nodearea.Signal{
		nodearea.TranslateSignal{Position: nodearea.Position{X: 1}},
		nodearea.TranslatedSignal{Position: nodearea.Position{X: 1}},
		nodearea.ZoomSignal{Zoom: 2},
		nodearea.ZoomedSignal{Zoom: 2},
	} {
		if out, err := bridge.Pipe(ctx, s); err != nil || out != s {
			t.Fatalf("Pipe(%T) = %v, %v; want passthrough", s, out, err)
		}
	}

	if n := bridge.Publish(); n != 2 {
		t.Fatalf("Publish = %d, want 2", n)
	}
	// Events are queued; process them.
	SignalEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if _, ok := received[0].(nodearea.TranslatedSignal); !ok {
		t.Errorf("event 0 = %T, want TranslatedSignal", received[0])
	}
	if z, ok := received[1].(nodearea.ZoomedSignal); !ok || z.Zoom != 2 {
		t.Errorf("event 1 = %+v", received[1])
	}
}

func TestBridge_MirrorsNodes(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewBridge(world)
	ctx := context.Background()

	bridge.Pipe(ctx, nodearea.NodeCreatedSignal{ID: "a", Payload: "payload"})
	bridge.Pipe(ctx, nodearea.NodeTranslatedSignal{ID: "a", Position: nodearea.Position{X: 10, Y: 20}})
	bridge.Publish()

	e, ok := bridge.Entity("a")
	if !ok || !world.Valid(e) {
		t.Fatal("node entity not created")
	}
	data := Node.Get(world.Entry(e))
	if data.ID != "a" || data.Payload != "payload" {
		t.Errorf("node data = %+v", data)
	}
	if data.Position.X != 10 || data.Position.Y != 20 {
		t.Errorf("position = %+v, want (10,20)", data.Position)
	}

	bridge.Pipe(ctx, nodearea.NodeRemovedSignal{ID: "a"})
	bridge.Publish()
	if world.Valid(e) {
		t.Error("node entity still valid after removal")
	}
	if _, ok := bridge.Entity("a"); ok {
		t.Error("entity mapping kept after removal")
	}
}

func TestBridge_DuplicateCreateKeepsEntity(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewBridge(world)
	ctx := context.Background()

	bridge.Pipe(ctx, nodearea.NodeCreatedSignal{ID: "a"})
	bridge.Publish()
	first, _ := bridge.Entity("a")

	bridge.Pipe(ctx, nodearea.NodeCreatedSignal{ID: "a"})
	bridge.Publish()
	second, _ := bridge.Entity("a")

	if first != second {
		t.Error("duplicate create replaced the entity")
	}
	if n := world.Len(); n != 1 {
		t.Errorf("world has %d entities, want 1", n)
	}
}

func TestBridge_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewBridge(world)

	var count1, count2 int
	SignalEventType.Subscribe(world, func(w donburi.World, s nodearea.Signal) {
		count1++
	})
	SignalEventType.Subscribe(world, func(w donburi.World, s nodearea.Signal) {
		count2++
	})

	bridge.Pipe(context.Background(), nodearea.NodePickedSignal{ID: "a"})
	bridge.Publish()
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestBridge_InstallPublishesOnTick(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewBridge(world)

	host := nodearea.NewHost(800, 600)
	container := nodearea.NewElement("container")
	container.SetSize(800, 600)
	host.Root().AppendChild(container)
	plugin := nodearea.NewPlugin(host, container, nodearea.WithLogger(nodearea.NewLogger(nil, 0)))
	defer plugin.Destroy()

	var got int
	SignalEventType.Subscribe(world, func(w donburi.World, s nodearea.Signal) {
		got++
	})
	bridge.Install(plugin)

	ctx := context.Background()
	if _, err := plugin.Emit(ctx, nodearea.NodeCreatedSignal{ID: "n1"}); err != nil {
		t.Fatal(err)
	}
	host.Advance(1.0 / 60)
	SignalEventType.ProcessEvents(world)

	// nodecreated and the render it caused.
	if got != 2 {
		t.Errorf("published %d signals, want 2", got)
	}
	if _, ok := bridge.Entity("n1"); !ok {
		t.Error("node entity missing")
	}
}
