package extensions

import (
	"context"

	"github.com/phanxgames/nodearea"
)

// SimpleNodesOrder raises a node above everything else when it is picked
// and keeps connections below nodes by moving each new connection to the
// bottom of the paint order.
func SimpleNodesOrder(plugin *nodearea.Plugin) {
	plugin.AddPipe(func(ctx context.Context, s nodearea.Signal) (nodearea.Signal, error) {
		content := plugin.Area().Content()
		switch sig := s.(type) {
		case nodearea.NodePickedSignal:
			if view, ok := plugin.NodeView(sig.ID); ok {
				if err := content.Reorder(ctx, view.Element(), nil); err != nil {
					return nil, err
				}
			}
		case nodearea.ConnectionCreatedSignal:
			if view, ok := plugin.ConnectionView(sig.ID); ok {
				first := content.Holder().FirstChild()
				if err := content.Reorder(ctx, view.Element(), first); err != nil {
					return nil, err
				}
			}
		}
		return s, nil
	})
}
