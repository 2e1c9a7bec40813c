package extensions

import (
	"context"

	"github.com/phanxgames/nodearea"
)

// ScaleRange bounds the area zoom.
type ScaleRange struct {
	Min, Max float64
}

// TranslateRange bounds the area origin.
type TranslateRange struct {
	Left, Top, Right, Bottom float64
}

// Ranges used when a restrictor is enabled without explicit bounds.
var (
	DefaultScaleRange     = ScaleRange{Min: 0.1, Max: 1}
	DefaultTranslateRange = TranslateRange{Left: 0, Top: 0, Right: 1000, Bottom: 1000}
)

// RestrictorParams selects what to restrict. A nil function leaves that
// dimension free. The functions are evaluated on every signal so bounds
// may change over time.
type RestrictorParams struct {
	Scaling     func() ScaleRange
	Translation func() TranslateRange
}

// FixedScaling returns a Scaling function for a constant range.
func FixedScaling(r ScaleRange) func() ScaleRange {
	return func() ScaleRange { return r }
}

// FixedTranslation returns a Translation function for a constant range.
func FixedTranslation(r TranslateRange) func() TranslateRange {
	return func() TranslateRange { return r }
}

// RestrictorFromConfig builds params from the plugin's restrict section.
func RestrictorFromConfig(c nodearea.RestrictConfig) RestrictorParams {
	return RestrictorParams{
		Scaling: FixedScaling(ScaleRange{Min: c.MinZoom, Max: c.MaxZoom}),
		Translation: FixedTranslation(TranslateRange{
			Left: c.Left, Top: c.Top, Right: c.Right, Bottom: c.Bottom,
		}),
	}
}

func restrictZoom(zoom float64, r ScaleRange) float64 {
	switch {
	case zoom < r.Min:
		return r.Min
	case zoom > r.Max:
		return r.Max
	}
	return zoom
}

func restrictPosition(p nodearea.Position, r TranslateRange) nodearea.Position {
	if p.X < r.Left {
		p.X = r.Left
	}
	if p.X > r.Right {
		p.X = r.Right
	}
	if p.Y < r.Top {
		p.Y = r.Top
	}
	if p.Y > r.Bottom {
		p.Y = r.Bottom
	}
	return p
}

// Restrictor clamps the zoom of every zoom proposal and the origin of every
// translate proposal. Because zooming about a point also moves the origin,
// a clamping translate is queued after each committed zoom.
func Restrictor(plugin *nodearea.Plugin, params RestrictorParams) {
	plugin.AddPipe(func(ctx context.Context, s nodearea.Signal) (nodearea.Signal, error) {
		switch sig := s.(type) {
		case nodearea.ZoomSignal:
			if params.Scaling != nil {
				sig.Zoom = restrictZoom(sig.Zoom, params.Scaling())
				return sig, nil
			}
		case nodearea.TranslateSignal:
			if params.Translation != nil {
				sig.Position = restrictPosition(sig.Position, params.Translation())
				return sig, nil
			}
		case nodearea.ZoomedSignal:
			if params.Translation != nil {
				area := plugin.Area()
				plugin.Scheduler().Schedule("restrictor.translate", func(ctx context.Context) error {
					t := area.Transform()
					pos := restrictPosition(nodearea.Position{X: t.X, Y: t.Y}, params.Translation())
					if pos.X == t.X && pos.Y == t.Y {
						return nil
					}
					_, err := area.Translate(ctx, pos.X, pos.Y)
					return err
				})
			}
		}
		return s, nil
	})
}
