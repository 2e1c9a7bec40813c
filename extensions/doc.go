// Package extensions adds optional behavior to a [nodearea.Plugin] by
// installing pipes on it.
//
//   - [ZoomAt] fits the view to a set of nodes.
//   - [BoundingBox] measures a set of nodes in world coordinates.
//   - [Restrictor] clamps the area zoom and origin.
//   - [SnapGrid] aligns node positions to a grid.
//   - [SimpleNodesOrder] raises picked nodes and keeps connections below nodes.
//   - [NewSelectableNodes] selects nodes and drags the selection together.
//
// Pipes run in the order they are installed, after the plugin's own view
// bookkeeping. Extensions never call the area's guarded operations from
// inside a pipe; follow-up changes are queued on the plugin's scheduler.
package extensions
