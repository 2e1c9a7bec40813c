package nodearea

// pointerListener attaches window-level move/up/cancel listeners for the
// lifetime of a press only. A second press before release does not
// register them again.
type pointerListener struct {
	window  EventTarget
	move    Listener
	up      Listener
	handles []ListenerHandle
}

func newPointerListener(window EventTarget, move, up Listener) *pointerListener {
	return &pointerListener{window: window, move: move, up: up}
}

func (p *pointerListener) attach() {
	if p.handles != nil {
		return
	}
	release := func(e *Event) {
		p.detach()
		p.up(e)
	}
	p.handles = []ListenerHandle{
		p.window.AddEventListener(EventPointerMove, p.move),
		p.window.AddEventListener(EventPointerUp, release),
		p.window.AddEventListener(EventPointerCancel, release),
	}
}

func (p *pointerListener) detach() {
	removeAll(p.handles)
	p.handles = nil
}

func (p *pointerListener) active() bool {
	return p.handles != nil
}
