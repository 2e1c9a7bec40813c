package extensions

import (
	"context"
	"math"

	"github.com/phanxgames/nodearea"
)

// DefaultSnapSize is the grid pitch used when SnapParams.Size is zero.
const DefaultSnapSize = 16

// SnapParams configures SnapGrid. The zero value snaps to a 16 pixel grid
// while dragging.
type SnapParams struct {
	Size float64
	// Static snaps once when a drag ends instead of on every move.
	Static bool
}

// SnapGrid aligns node positions to a grid.
func SnapGrid(plugin *nodearea.Plugin, params SnapParams) {
	size := params.Size
	if size <= 0 {
		size = DefaultSnapSize
	}
	snap := func(v float64) float64 {
		return math.Round(v/size) * size
	}

	plugin.AddPipe(func(ctx context.Context, s nodearea.Signal) (nodearea.Signal, error) {
		switch sig := s.(type) {
		case nodearea.NodeTranslateSignal:
			if !params.Static {
				sig.Position = nodearea.Position{X: snap(sig.Position.X), Y: snap(sig.Position.Y)}
				return sig, nil
			}
		case nodearea.NodeDraggedSignal:
			if params.Static {
				view, ok := plugin.NodeView(sig.ID)
				if !ok {
					break
				}
				// Queued so it lands after every pending drag move.
				plugin.Scheduler().Schedule("snap.translate", func(ctx context.Context) error {
					pos := view.Position()
					_, err := view.Translate(ctx, snap(pos.X), snap(pos.Y))
					return err
				})
			}
		}
		return s, nil
	})
}
