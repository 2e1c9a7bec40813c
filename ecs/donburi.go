package ecs

import (
	"context"
	"sync"

	"github.com/phanxgames/nodearea"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SignalEventType is the Donburi event type committed area signals are
// published as. Subscribe to it in your ECS systems.
var SignalEventType = events.NewEventType[nodearea.Signal]()

// NodeData mirrors one node view.
type NodeData struct {
	ID       string
	Position nodearea.Position
	Payload  any
}

// Node is the component every mirrored node entity carries.
var Node = donburi.NewComponentType[NodeData]()

// Bridge mirrors an area plugin into a Donburi world. Pipes may run on any
// goroutine while a world may only be touched from the game loop, so
// signals are buffered until Publish.
type Bridge struct {
	world donburi.World

	mu      sync.Mutex
	pending []nodearea.Signal

	// entities is only touched by Publish.
	entities map[string]donburi.Entity
}

// NewBridge creates a bridge into world.
func NewBridge(world donburi.World) *Bridge {
	return &Bridge{
		world:    world,
		entities: make(map[string]donburi.Entity),
	}
}

// Install adds the bridge as a pipe on plugin and publishes buffered
// signals once per host tick.
func (b *Bridge) Install(plugin *nodearea.Plugin) nodearea.TickerHandle {
	plugin.AddPipe(b.Pipe)
	return plugin.Host().AddTicker(func(float32) {
		b.Publish()
	})
}

// Pipe buffers committed signals. Guard signals are proposals and are
// passed through untouched.
func (b *Bridge) Pipe(_ context.Context, s nodearea.Signal) (nodearea.Signal, error) {
	switch s.(type) {
	case nodearea.TranslateSignal, nodearea.ZoomSignal,
		nodearea.NodeTranslateSignal, nodearea.NodeResizeSignal:
		return s, nil
	}
	b.mu.Lock()
	b.pending = append(b.pending, s)
	b.mu.Unlock()
	return s, nil
}

// Publish applies buffered node lifecycle changes to the world's entities
// and publishes every buffered signal to SignalEventType, in arrival
// order. It returns the number of signals published. Call it from the
// game loop.
func (b *Bridge) Publish() int {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, s := range pending {
		b.apply(s)
		SignalEventType.Publish(b.world, s)
	}
	return len(pending)
}

func (b *Bridge) apply(s nodearea.Signal) {
	switch sig := s.(type) {
	case nodearea.NodeCreatedSignal:
		if _, ok := b.entities[sig.ID]; ok {
			return
		}
		e := b.world.Create(Node)
		Node.SetValue(b.world.Entry(e), NodeData{ID: sig.ID, Payload: sig.Payload})
		b.entities[sig.ID] = e
	case nodearea.NodeRemovedSignal:
		if e, ok := b.entities[sig.ID]; ok {
			if b.world.Valid(e) {
				b.world.Remove(e)
			}
			delete(b.entities, sig.ID)
		}
	case nodearea.NodeTranslatedSignal:
		if e, ok := b.entities[sig.ID]; ok && b.world.Valid(e) {
			Node.Get(b.world.Entry(e)).Position = sig.Position
		}
	}
}

// Entity returns the entity mirroring node id.
func (b *Bridge) Entity(id string) (donburi.Entity, bool) {
	e, ok := b.entities[id]
	return e, ok
}
