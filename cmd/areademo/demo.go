package main

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/nodearea"
	"github.com/phanxgames/nodearea/extensions"
)

const (
	nodeWidth   = 160
	nodeHeight  = 80
	nodeSpacing = 220
	gridColumns = 4
)

var (
	backgroundColor = nodearea.Color{R: 0.12, G: 0.13, B: 0.16, A: 1}
	nodeColor       = nodearea.Color{R: 0.29, G: 0.44, B: 0.65, A: 1}
	selectedColor   = nodearea.Color{R: 0.95, G: 0.65, B: 0.2, A: 1}
	wireColor       = color.RGBA{R: 180, G: 190, B: 200, A: 255}
)

// demoNode is the payload of every demo node.
type demoNode struct {
	Label string
}

func (demoNode) NodeSize() nodearea.Size {
	return nodearea.Size{Width: nodeWidth, Height: nodeHeight}
}

// demoConnection links two demo nodes.
type demoConnection struct {
	Source, Target string
}

type demo struct {
	host      *nodearea.Host
	plugin    *nodearea.Plugin
	selection *extensions.SelectableNodes
	logger    *log.Logger
	zoomAt    extensions.ZoomAtParams

	// positions mirrors committed node positions for connection drawing,
	// which runs with the element tree locked.
	mu        sync.RWMutex
	positions map[string]nodearea.Position
}

func newDemo(width, height int, cfg nodearea.Config, logger *log.Logger) (*demo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	host := nodearea.NewHost(width, height)
	host.ClearColor = backgroundColor

	container := nodearea.NewElement("container")
	container.SetSize(float64(width), float64(height))
	host.Root().AppendChild(container)
	host.AddEventListener(nodearea.EventResize, func(*nodearea.Event) {
		w, h := host.Size()
		container.SetSize(float64(w), float64(h))
	})

	plugin := nodearea.NewPlugin(host, container,
		nodearea.WithLogger(logger),
		nodearea.WithConfig(cfg),
	)

	d := &demo{
		host:      host,
		plugin:    plugin,
		logger:    logger,
		positions: make(map[string]nodearea.Position),
		zoomAt: extensions.ZoomAtParams{
			Scale:    cfg.ZoomAt.Scale,
			Duration: float32(cfg.ZoomAt.Duration),
		},
	}

	if cfg.Restrict.Enabled {
		extensions.Restrictor(plugin, extensions.RestrictorFromConfig(cfg.Restrict))
	}
	if cfg.Snap.Enabled {
		extensions.SnapGrid(plugin, extensions.SnapParams{Size: cfg.Snap.Size, Static: !cfg.Snap.Dynamic})
	}
	extensions.SimpleNodesOrder(plugin)
	if cfg.Selection.Enabled {
		acc := extensions.Never
		if cfg.Selection.AccumulateOnCtrl {
			acc = extensions.AccumulateOnCtrl()
		}
		d.selection = extensions.NewSelectableNodes(plugin, extensions.NewSelector(), acc)
	}
	plugin.AddPipe(d.render)

	status, _ := nodearea.NewStatusWidget(host, d.status)
	host.Root().AppendChild(status)
	host.AddTicker(d.tick)
	return d, nil
}

// render draws nodes as filled boxes and connections as straight wires,
// then announces each finished element.
func (d *demo) render(ctx context.Context, s nodearea.Signal) (nodearea.Signal, error) {
	switch sig := s.(type) {
	case nodearea.RenderSignal:
		switch sig.Kind {
		case nodearea.RenderNode:
			d.renderNode(sig)
		case nodearea.RenderConnection:
			conn, ok := sig.Payload.(demoConnection)
			if !ok {
				return s, nil
			}
			d.renderConnection(sig.Element, conn)
		}
		rendered := nodearea.RenderedSignal{Element: sig.Element, Kind: sig.Kind, ID: sig.ID}
		if _, err := d.plugin.Emit(ctx, rendered); err != nil {
			return nil, err
		}
	case nodearea.NodeCreatedSignal:
		d.mu.Lock()
		if _, ok := d.positions[sig.ID]; !ok {
			d.positions[sig.ID] = nodearea.Position{}
		}
		d.mu.Unlock()
	case nodearea.NodeTranslatedSignal:
		d.mu.Lock()
		d.positions[sig.ID] = sig.Position
		d.mu.Unlock()
	case nodearea.NodeRemovedSignal:
		d.mu.Lock()
		delete(d.positions, sig.ID)
		d.mu.Unlock()
	case nodearea.ContextMenuSignal:
		d.logger.Debug("context menu", "context", sig.Context, "id", sig.ID)
	}
	return s, nil
}

func (d *demo) renderNode(sig nodearea.RenderSignal) {
	el := sig.Element
	el.SetSize(nodeWidth, nodeHeight)
	el.Color = nodeColor
	if d.selection != nil && d.selection.Selected(sig.ID) {
		el.Color = selectedColor
	}
	if n, ok := sig.Payload.(demoNode); ok {
		el.UserData = n.Label
	}
}

func (d *demo) renderConnection(el *nodearea.Element, conn demoConnection) {
	el.OnDraw = func(dst *ebiten.Image, geoM ebiten.GeoM) {
		d.mu.RLock()
		from, okFrom := d.positions[conn.Source]
		to, okTo := d.positions[conn.Target]
		d.mu.RUnlock()
		if !okFrom || !okTo {
			return
		}
		x0, y0 := geoM.Apply(from.X+nodeWidth, from.Y+nodeHeight/2)
		x1, y1 := geoM.Apply(to.X, to.Y+nodeHeight/2)
		vector.StrokeLine(dst, float32(x0), float32(y0), float32(x1), float32(y1), 2, wireColor, true)
	}
}

func (d *demo) status() string {
	t := d.plugin.Area().Transform()
	return fmt.Sprintf("x=%.0f y=%.0f k=%.2f\nnodes=%d (F to fit)", t.X, t.Y, t.K, len(d.plugin.NodeIDs()))
}

// tick fits the view to every node when F is pressed.
func (d *demo) tick(float32) {
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		d.fit()
	}
}

func (d *demo) fit() {
	ids := d.plugin.NodeIDs()
	params := d.zoomAt
	d.plugin.Scheduler().Schedule("demo.fit", func(ctx context.Context) error {
		_, err := extensions.ZoomAt(ctx, d.plugin, ids, &params)
		return err
	})
}

// populate creates n nodes laid out on a grid and chains them with
// connections.
func (d *demo) populate(ctx context.Context, n int) error {
	ids := make([]string, n)
	for i := range ids {
		id := uuid.NewString()
		ids[i] = id
		if _, err := d.plugin.Emit(ctx, nodearea.NodeCreatedSignal{
			ID:      id,
			Payload: demoNode{Label: fmt.Sprintf("Node %d", i+1)},
		}); err != nil {
			return fmt.Errorf("create node %d: %w", i+1, err)
		}
		pos := nodearea.Position{
			X: float64(i%gridColumns) * nodeSpacing,
			Y: float64(i/gridColumns) * nodeSpacing * 0.75,
		}
		if _, err := d.plugin.TranslateNode(ctx, id, pos); err != nil {
			return fmt.Errorf("place node %d: %w", i+1, err)
		}
	}
	for i := 1; i < n; i++ {
		if _, err := d.plugin.Emit(ctx, nodearea.ConnectionCreatedSignal{
			ID:      uuid.NewString(),
			Payload: demoConnection{Source: ids[i-1], Target: ids[i]},
		}); err != nil {
			return fmt.Errorf("connect %d: %w", i, err)
		}
	}
	if err := d.plugin.Flush(ctx); err != nil {
		return err
	}
	d.fit()
	return nil
}
