package nodearea

// RenderKind says what a render signal's element displays.
type RenderKind string

const (
	RenderNode       RenderKind = "node"
	RenderConnection RenderKind = "connection"
)

// ContextKind says what a context menu was requested on.
type ContextKind string

const (
	ContextRoot       ContextKind = "root"
	ContextNode       ContextKind = "node"
	ContextConnection ContextKind = "connection"
)

// Pointer signals carry the pointer position in world coordinates.
type (
	PointerDownSignal struct {
		Position Position
		Event    *Event
	}
	PointerMoveSignal struct {
		Position Position
		Event    *Event
	}
	PointerUpSignal struct {
		Position Position
		Event    *Event
	}
)

func (PointerDownSignal) SignalType() string { return "pointerdown" }
func (PointerMoveSignal) SignalType() string { return "pointermove" }
func (PointerUpSignal) SignalType() string   { return "pointerup" }

// TranslateSignal is the guard for an area pan. Pipes may rewrite Position
// or drop the signal to veto.
type TranslateSignal TranslateParams

// TranslatedSignal follows a committed area pan.
type TranslatedSignal TranslateParams

// ZoomSignal is the guard for an area zoom. Pipes may rewrite Zoom or drop
// the signal to veto.
type ZoomSignal ZoomParams

// ZoomedSignal follows a committed area zoom.
type ZoomedSignal ZoomParams

func (TranslateSignal) SignalType() string  { return "translate" }
func (TranslatedSignal) SignalType() string { return "translated" }
func (ZoomSignal) SignalType() string       { return "zoom" }
func (ZoomedSignal) SignalType() string     { return "zoomed" }

// RenderSignal asks renderers to draw into Element. ID and Payload identify
// the graph entity.
type RenderSignal struct {
	Element *Element
	Kind    RenderKind
	ID      string
	Payload any
}

// RenderedSignal is raised by a renderer once Element has content.
type RenderedSignal struct {
	Element *Element
	Kind    RenderKind
	ID      string
}

// UnmountSignal tells renderers to release Element.
type UnmountSignal struct {
	Element *Element
}

func (RenderSignal) SignalType() string   { return "render" }
func (RenderedSignal) SignalType() string { return "rendered" }
func (UnmountSignal) SignalType() string  { return "unmount" }

// NodePickedSignal is raised when a drag starts on a node.
type NodePickedSignal struct {
	ID string
}

// NodeDraggedSignal is raised when a drag on a node ends.
type NodeDraggedSignal struct {
	ID      string
	Payload any
}

// NodeTranslateSignal is the guard for a node move.
type NodeTranslateSignal struct {
	ID       string
	Position Position
	Previous Position
}

// NodeTranslatedSignal follows a committed node move.
type NodeTranslatedSignal struct {
	ID       string
	Position Position
	Previous Position
}

// NodeResizeSignal is the guard for a node resize.
type NodeResizeSignal struct {
	ID   string
	Size Size
}

// NodeResizedSignal follows a committed node resize.
type NodeResizedSignal struct {
	ID   string
	Size Size
}

func (NodePickedSignal) SignalType() string     { return "nodepicked" }
func (NodeDraggedSignal) SignalType() string    { return "nodedragged" }
func (NodeTranslateSignal) SignalType() string  { return "nodetranslate" }
func (NodeTranslatedSignal) SignalType() string { return "nodetranslated" }
func (NodeResizeSignal) SignalType() string     { return "noderesize" }
func (NodeResizedSignal) SignalType() string    { return "noderesized" }

// ContextMenuSignal is raised for a context menu request on the container
// (Context root), a node or a connection. ID is empty for root.
type ContextMenuSignal struct {
	Event   *Event
	Context ContextKind
	ID      string
}

// ResizedSignal forwards a window resize.
type ResizedSignal struct {
	Event *Event
}

// ReorderedSignal follows a paint order change of Element.
type ReorderedSignal struct {
	Element *Element
}

func (ContextMenuSignal) SignalType() string { return "contextmenu" }
func (ResizedSignal) SignalType() string     { return "resized" }
func (ReorderedSignal) SignalType() string   { return "reordered" }

// Graph lifecycle signals are fed in by the host editor. The plugin creates
// and removes views in response before any other pipe sees them.
type (
	NodeCreatedSignal struct {
		ID      string
		Payload any
	}
	NodeRemovedSignal struct {
		ID string
	}
	ConnectionCreatedSignal struct {
		ID      string
		Payload any
	}
	ConnectionRemovedSignal struct {
		ID string
	}
)

func (NodeCreatedSignal) SignalType() string       { return "nodecreated" }
func (NodeRemovedSignal) SignalType() string       { return "noderemoved" }
func (ConnectionCreatedSignal) SignalType() string { return "connectioncreated" }
func (ConnectionRemovedSignal) SignalType() string { return "connectionremoved" }
