package nodearea

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

type nodeEntry struct {
	view    *NodeView
	payload any
}

type connectionEntry struct {
	view    *ConnectionView
	payload any
}

// Plugin is the area plugin: a Scope whose signals describe every
// viewport interaction, plus the Area, the views of every node and
// connection, and the scheduler that runs gesture-originated operations.
//
// Graph lifecycle signals (NodeCreatedSignal and friends) emitted into the
// plugin create and remove views before any other pipe sees them.
type Plugin struct {
	*Scope

	host      *Host
	container *Element
	area      *Area
	sched     *Scheduler
	logger    *log.Logger
	config    Config

	// ctx is used for signals emitted from the input goroutine.
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	nodes       map[string]*nodeEntry
	connections map[string]*connectionEntry
	destroyed   bool

	handle ListenerHandle
}

// NewPlugin attaches an area to container, which must be part of host's
// element tree and have a non-empty box.
func NewPlugin(host *Host, container *Element, opts ...Option) *Plugin {
	p := &Plugin{
		Scope:       NewScope("area"),
		host:        host,
		container:   container,
		config:      DefaultConfig(),
		nodes:       make(map[string]*nodeEntry),
		connections: make(map[string]*connectionEntry),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		level, err := ParseLogLevel(p.config.LogLevel)
		if err != nil {
			level = log.InfoLevel
		}
		p.logger = NewLogger(os.Stderr, level)
	}
	if host.Logger == nil {
		host.Logger = p.logger
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.sched = NewScheduler(p.logger)

	p.handle = container.AddEventListener(EventContextMenu, func(e *Event) {
		p.emitSync(ContextMenuSignal{Event: e, Context: ContextRoot})
	})
	p.AddPipe(p.lifecycle)

	p.area = NewArea(host, container, p.sched,
		AreaEvents{
			Translated: func(ctx context.Context, params TranslateParams) error {
				_, err := p.Emit(ctx, TranslatedSignal(params))
				return err
			},
			Zoomed: func(ctx context.Context, params ZoomParams) error {
				_, err := p.Emit(ctx, ZoomedSignal(params))
				return err
			},
			Reordered: func(ctx context.Context, el *Element) error {
				_, err := p.Emit(ctx, ReorderedSignal{Element: el})
				return err
			},
			PointerDown: func(pos Position, e *Event) {
				p.emitSync(PointerDownSignal{Position: pos, Event: e})
			},
			PointerMove: func(pos Position, e *Event) {
				p.emitSync(PointerMoveSignal{Position: pos, Event: e})
			},
			PointerUp: func(pos Position, e *Event) {
				p.emitSync(PointerUpSignal{Position: pos, Event: e})
			},
			Resized: func(e *Event) {
				p.emitSync(ResizedSignal{Event: e})
			},
		},
		AreaGuards{
			Translate: func(ctx context.Context, params TranslateParams) (TranslateParams, bool, error) {
				out, err := p.Emit(ctx, TranslateSignal(params))
				if err != nil || out == nil {
					return params, false, err
				}
				if s, ok := out.(TranslateSignal); ok {
					return TranslateParams(s), true, nil
				}
				return params, true, nil
			},
			Zoom: func(ctx context.Context, params ZoomParams) (ZoomParams, bool, error) {
				out, err := p.Emit(ctx, ZoomSignal(params))
				if err != nil || out == nil {
					return params, false, err
				}
				if s, ok := out.(ZoomSignal); ok {
					return ZoomParams(s), true, nil
				}
				return params, true, nil
			},
		},
		p.config.ZoomIntensity,
	)
	return p
}

// lifecycle maps graph signals to view bookkeeping.
func (p *Plugin) lifecycle(ctx context.Context, s Signal) (Signal, error) {
	var err error
	switch sig := s.(type) {
	case NodeCreatedSignal:
		_, err = p.AddNodeView(ctx, sig.ID, sig.Payload)
	case NodeRemovedSignal:
		err = p.RemoveNodeView(ctx, sig.ID)
	case ConnectionCreatedSignal:
		_, err = p.AddConnectionView(ctx, sig.ID, sig.Payload)
	case ConnectionRemovedSignal:
		err = p.RemoveConnectionView(ctx, sig.ID)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// emitSync emits from the input goroutine, where nobody can receive an
// error.
func (p *Plugin) emitSync(s Signal) {
	if _, err := p.Emit(p.ctx, s); err != nil {
		p.logger.Warn("signal pipe failed", "signal", s.SignalType(), "err", err)
	}
}

// --- Accessors ---

// Host returns the host the plugin was attached to.
func (p *Plugin) Host() *Host { return p.host }

// Container returns the element the area listens on.
func (p *Plugin) Container() *Element { return p.container }

// Area returns the transform state.
func (p *Plugin) Area() *Area { return p.area }

// Logger returns the plugin logger.
func (p *Plugin) Logger() *log.Logger { return p.logger }

// Config returns the plugin configuration.
func (p *Plugin) Config() Config { return p.config }

// Scheduler returns the queue gesture-originated operations run on.
// Extensions schedule follow-up operations on it instead of calling
// guarded operations from inside a pipe.
func (p *Plugin) Scheduler() *Scheduler { return p.sched }

// NodeView returns the view of node id.
func (p *Plugin) NodeView(id string) (*NodeView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.nodes[id]
	if !ok {
		return nil, false
	}
	return e.view, true
}

// NodePayload returns the payload node id was created with.
func (p *Plugin) NodePayload(id string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.nodes[id]
	if !ok {
		return nil, false
	}
	return e.payload, true
}

// NodeIDs returns the ids of every node view, sorted.
func (p *Plugin) NodeIDs() []string {
	p.mu.RLock()
	ids := make([]string, 0, len(p.nodes))
	for id := range p.nodes {
		ids = append(ids, id)
	}
	p.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// ConnectionView returns the view of connection id.
func (p *Plugin) ConnectionView(id string) (*ConnectionView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.connections[id]
	if !ok {
		return nil, false
	}
	return e.view, true
}

// --- Views ---

// AddNodeView creates the view of node id, attaches it on top of the
// content and emits a render signal. Adding an existing id returns the
// existing view.
func (p *Plugin) AddNodeView(ctx context.Context, id string, payload any) (*NodeView, error) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil, ErrDestroyed
	}
	if e, ok := p.nodes[id]; ok {
		p.mu.Unlock()
		return e.view, nil
	}
	view := NewNodeView(p.host, p.sched,
		func() float64 { return p.area.Transform().K },
		NodeViewEvents{
			Picked: func(*Event) {
				p.emitSync(NodePickedSignal{ID: id})
			},
			Translated: func(ctx context.Context, params NodeTranslateParams) error {
				_, err := p.Emit(ctx, NodeTranslatedSignal{ID: id, Position: params.Position, Previous: params.Previous})
				return err
			},
			Dragged: func(*Event) {
				p.emitSync(NodeDraggedSignal{ID: id, Payload: payload})
			},
			ContextMenu: func(e *Event) {
				p.emitSync(ContextMenuSignal{Event: e, Context: ContextNode, ID: id})
			},
			Resized: func(ctx context.Context, params NodeResizeParams) error {
				_, err := p.Emit(ctx, NodeResizedSignal{ID: id, Size: params.Size})
				return err
			},
		},
		NodeViewGuards{
			Translate: func(ctx context.Context, params NodeTranslateParams) (NodeTranslateParams, bool, error) {
				out, err := p.Emit(ctx, NodeTranslateSignal{ID: id, Position: params.Position, Previous: params.Previous})
				if err != nil || out == nil {
					return params, false, err
				}
				if s, ok := out.(NodeTranslateSignal); ok {
					params.Position = s.Position
				}
				return params, true, nil
			},
			Resize: func(ctx context.Context, params NodeResizeParams) (NodeResizeParams, bool, error) {
				out, err := p.Emit(ctx, NodeResizeSignal{ID: id, Size: params.Size})
				if err != nil || out == nil {
					return params, false, err
				}
				if s, ok := out.(NodeResizeSignal); ok {
					params.Size = s.Size
				}
				return params, true, nil
			},
		},
	)
	p.nodes[id] = &nodeEntry{view: view, payload: payload}
	p.mu.Unlock()

	p.area.content.Add(view.element)
	debugCheckChildCount(p.logger, p.area.content.holder)
	_, err := p.Emit(ctx, RenderSignal{Element: view.element, Kind: RenderNode, ID: id, Payload: payload})
	return view, err
}

// RemoveNodeView emits an unmount signal for node id and detaches its
// view. Unknown ids are ignored.
func (p *Plugin) RemoveNodeView(ctx context.Context, id string) error {
	p.mu.Lock()
	e, ok := p.nodes[id]
	if ok {
		delete(p.nodes, id)
	}
	p.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := p.Emit(ctx, UnmountSignal{Element: e.view.element})
	e.view.Destroy()
	p.area.content.Remove(e.view.element)
	return err
}

// AddConnectionView creates the view of connection id, attaches it on top
// of the content and emits a render signal. Adding an existing id returns
// the existing view.
func (p *Plugin) AddConnectionView(ctx context.Context, id string, payload any) (*ConnectionView, error) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil, ErrDestroyed
	}
	if e, ok := p.connections[id]; ok {
		p.mu.Unlock()
		return e.view, nil
	}
	view := NewConnectionView(func(e *Event) {
		p.emitSync(ContextMenuSignal{Event: e, Context: ContextConnection, ID: id})
	})
	p.connections[id] = &connectionEntry{view: view, payload: payload}
	p.mu.Unlock()

	p.area.content.Add(view.element)
	_, err := p.Emit(ctx, RenderSignal{Element: view.element, Kind: RenderConnection, ID: id, Payload: payload})
	return view, err
}

// RemoveConnectionView emits an unmount signal for connection id and
// detaches its view. Unknown ids are ignored.
func (p *Plugin) RemoveConnectionView(ctx context.Context, id string) error {
	p.mu.Lock()
	e, ok := p.connections[id]
	if ok {
		delete(p.connections, id)
	}
	p.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := p.Emit(ctx, UnmountSignal{Element: e.view.element})
	e.view.Destroy()
	p.area.content.Remove(e.view.element)
	return err
}

// Update re-emits the render signal of a node or connection. It returns
// false if there is no such view.
func (p *Plugin) Update(ctx context.Context, kind RenderKind, id string) (bool, error) {
	p.mu.RLock()
	var sig RenderSignal
	var found bool
	switch kind {
	case RenderNode:
		if e, ok := p.nodes[id]; ok {
			sig, found = RenderSignal{Element: e.view.element, Kind: kind, ID: id, Payload: e.payload}, true
		}
	case RenderConnection:
		if e, ok := p.connections[id]; ok {
			sig, found = RenderSignal{Element: e.view.element, Kind: kind, ID: id, Payload: e.payload}, true
		}
	}
	p.mu.RUnlock()
	if !found {
		return false, nil
	}
	_, err := p.Emit(ctx, sig)
	return true, err
}

// Resize proposes a new size for node id. Unknown ids return false.
func (p *Plugin) Resize(ctx context.Context, id string, width, height float64) (bool, error) {
	view, ok := p.NodeView(id)
	if !ok {
		return false, nil
	}
	return view.Resize(ctx, width, height)
}

// TranslateNode proposes a new position for node id. Unknown ids return
// false.
func (p *Plugin) TranslateNode(ctx context.Context, id string, pos Position) (bool, error) {
	view, ok := p.NodeView(id)
	if !ok {
		return false, nil
	}
	return view.Translate(ctx, pos.X, pos.Y)
}

// Flush waits until every gesture operation queued so far has run.
func (p *Plugin) Flush(ctx context.Context) error {
	return p.sched.Flush(ctx)
}

// Destroy tears down the area, every view and the scheduler. Further view
// additions fail with ErrDestroyed.
func (p *Plugin) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	nodes := p.nodes
	connections := p.connections
	p.nodes = make(map[string]*nodeEntry)
	p.connections = make(map[string]*connectionEntry)
	p.mu.Unlock()

	p.cancel()
	p.sched.Close()
	p.handle.Remove()
	for _, e := range nodes {
		e.view.Destroy()
	}
	for _, e := range connections {
		e.view.Destroy()
	}
	p.area.Destroy()
}
