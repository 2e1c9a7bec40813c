// Package nodearea is the viewport and interaction layer of a visual node
// editor, built on [Ebitengine].
//
// It provides a pannable, zoomable surface that hosts node and connection
// views, lets the user drag nodes, and reports every interaction as a
// [Signal] flowing through a [Scope] pipeline where other components can
// observe, rewrite or veto it.
//
// # Quick start
//
// Create a [Host], give it a container element and attach a [Plugin]:
//
//	host := nodearea.NewHost(1024, 768)
//	container := nodearea.NewElement("container")
//	container.SetSize(1024, 768)
//	host.Root().AppendChild(container)
//
//	plugin := nodearea.NewPlugin(host, container)
//	defer plugin.Destroy()
//
//	plugin.Emit(ctx, nodearea.NodeCreatedSignal{ID: "a"})
//	nodearea.Run(host, nodearea.RunConfig{Title: "Editor"})
//
// # Element tree
//
// [Element] is a minimal retained tree: each element has a layout offset, a
// box, an optional [HitShape] and its own translate/scale transform. The
// [Host] hit-tests pointer input against the tree and dispatches [Event]
// values from the target up through its ancestors to the window listeners.
//
// # Area
//
// [Area] owns the transform {X, Y, K} applied to the content holder.
// Dragging the background pans, the wheel and double click zoom around the
// pointer, and two-finger pinch zooms around the touch midpoint. Every change
// passes a guard before it is applied and a notification afterwards.
// Changes are serialized: [Area.Translate] and [Area.Zoom] hold a
// per-area lock, and input handlers queue their work on a [Scheduler].
//
// # Signals
//
// The [Plugin] translates area and view callbacks into signals:
//
//   - guards: [TranslateSignal], [ZoomSignal], [NodeTranslateSignal], [NodeResizeSignal]
//   - notifications: [TranslatedSignal], [ZoomedSignal], [NodeTranslatedSignal], ...
//   - rendering: [RenderSignal], [UnmountSignal]
//
// A pipe that returns nil vetoes a guard. Returning a modified signal of the
// same type rewrites the proposal.
//
// # Configuration
//
// [Config] is loaded from TOML with [LoadConfig]. Logging goes through a
// charmbracelet [log.Logger]; see [NewLogger].
//
// [Ebitengine]: https://ebitengine.org
package nodearea
