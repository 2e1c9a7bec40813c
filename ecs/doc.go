// Package ecs mirrors a nodearea plugin into a [Donburi] world.
//
// [Bridge] buffers every committed area signal (translated, zoomed, node
// lifecycle, context menu, ...) and, once per host tick, publishes them as
// [SignalEventType] events. Node views are mirrored as entities carrying the
// [Node] component, kept in sync with node moves.
//
// Usage:
//
//	bridge := ecs.NewBridge(world)
//	bridge.Install(plugin)
//	ecs.SignalEventType.Subscribe(world, onSignal)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
