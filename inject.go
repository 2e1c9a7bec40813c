package nodearea

// queuedSample is one scripted mouse state, replayed as pointer 0 in place
// of the real mouse for a single frame.
type queuedSample struct {
	x, y    float64
	pressed bool
}

func (h *Host) queueSample(x, y float64, pressed bool) {
	h.injectQueue = append(h.injectQueue, queuedSample{x: x, y: y, pressed: pressed})
}

// InjectPress queues a primary button press at window point (x, y).
func (h *Host) InjectPress(x, y float64) {
	h.queueSample(x, y, true)
}

// InjectMove queues a move with the primary button still held, so the
// area or a node view sees it as drag motion.
func (h *Host) InjectMove(x, y float64) {
	h.queueSample(x, y, true)
}

// InjectRelease queues the release that ends a gesture.
func (h *Host) InjectRelease(x, y float64) {
	h.queueSample(x, y, false)
}

// InjectDrag queues a press at the start point, frames-2 evenly spaced
// moves and a release at the end point. Fewer than two frames still
// produce a press and a release.
func (h *Host) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	frames = max(frames, 2)
	h.InjectPress(fromX, fromY)
	moves := frames - 2
	for i := 1; i <= moves; i++ {
		f := float64(i) / float64(moves+1)
		h.InjectMove(fromX+(toX-fromX)*f, fromY+(toY-fromY)*f)
	}
	h.InjectRelease(toX, toY)
}

// PendingInjected returns how many queued samples have not been replayed.
func (h *Host) PendingInjected() int {
	return len(h.injectQueue)
}

// processInjectedInput replays the oldest queued sample and reports whether
// there was one. Update skips the real mouse on frames that replay.
func (h *Host) processInjectedInput(mods KeyModifiers) bool {
	if len(h.injectQueue) == 0 {
		return false
	}
	s := h.injectQueue[0]
	h.injectQueue = h.injectQueue[1:]
	h.processPointer(0, PointerMouse, s.x, s.y, s.pressed, MouseButtonLeft, mods)
	return true
}

// StepInjected replays the whole queue at once, for driving a host without
// a game loop.
func (h *Host) StepInjected() {
	for h.processInjectedInput(0) {
	}
}
