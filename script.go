package nodearea

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// scriptStep is a single action of an input script.
type scriptStep struct {
	Action string  `toml:"action"`
	Label  string  `toml:"label"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	FromX  float64 `toml:"from_x"`
	FromY  float64 `toml:"from_y"`
	ToX    float64 `toml:"to_x"`
	ToY    float64 `toml:"to_y"`
	DeltaY float64 `toml:"delta_y"`
	Frames int     `toml:"frames"`
}

type scriptFile struct {
	Steps []scriptStep `toml:"steps"`
}

var scriptActions = map[string]bool{
	"click":      true,
	"drag":       true,
	"wheel":      true,
	"dblclick":   true,
	"wait":       true,
	"screenshot": true,
}

// Script replays recorded input against a Host, one step per frame, so
// interactions can be exercised without a person at the keyboard.
//
// Scripts are TOML:
//
//	[[steps]]
//	action = "drag"
//	from_x = 100
//	from_y = 100
//	to_x = 300
//	to_y = 200
//	frames = 10
//
//	[[steps]]
//	action = "screenshot"
//	label = "after-pan"
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// ParseScript parses a TOML input script.
func ParseScript(data []byte) (*Script, error) {
	var f scriptFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range f.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i+1, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// SetScript attaches a script. It advances from Update before input is
// polled each frame. Passing nil detaches the current script.
func (h *Host) SetScript(s *Script) {
	h.script = s
}

// Done reports whether every step has run.
func (s *Script) Done() bool {
	return s.done
}

// step advances the script by one frame.
func (s *Script) step(h *Host) {
	if s.done {
		return
	}
	// Injected samples drain one per frame; finish them first.
	if len(h.injectQueue) > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "click":
		h.InjectPress(st.X, st.Y)
		h.InjectRelease(st.X, st.Y)
	case "drag":
		h.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wheel":
		h.Wheel(st.X, st.Y, 0, st.DeltaY, 0)
	case "dblclick":
		h.DoubleClick(st.X, st.Y, 0)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1
		}
	case "screenshot":
		h.Screenshot(st.Label)
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && len(h.injectQueue) == 0 {
		s.done = true
	}
}
