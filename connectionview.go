package nodearea

// ConnectionView is the element a connection renderer draws into. It sits
// at the holder origin so renderers can use world coordinates directly.
type ConnectionView struct {
	element *Element
	handle  ListenerHandle
}

// NewConnectionView creates a view that forwards context menu requests.
func NewConnectionView(contextmenu func(e *Event)) *ConnectionView {
	v := &ConnectionView{element: NewElement("connection")}
	v.handle = v.element.AddEventListener(EventContextMenu, func(e *Event) {
		if contextmenu != nil {
			contextmenu(e)
		}
	})
	return v
}

// Element returns the view's element.
func (v *ConnectionView) Element() *Element {
	return v.element
}

// Destroy removes the view's listener.
func (v *ConnectionView) Destroy() {
	v.handle.Remove()
}
