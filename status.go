package nodearea

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// statusRefresh is how often the status text is recomputed, in seconds.
const statusRefresh = 0.5

const (
	statusWidth  = 220
	statusHeight = 64
)

// NewStatusWidget creates an element showing FPS, TPS and the text returned
// by status. The text is refreshed from a host ticker about twice a second;
// append the element to the root after the container so it draws on top.
func NewStatusWidget(host *Host, status func() string) (*Element, TickerHandle) {
	el := NewElement("status")

	var (
		mu    sync.Mutex
		text  string
		since float32 = statusRefresh
	)
	handle := host.AddTicker(func(dt float32) {
		since += dt
		if since < statusRefresh {
			return
		}
		since = 0
		s := fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
		if status != nil {
			s += "\n" + status()
		}
		mu.Lock()
		text = s
		mu.Unlock()
	})

	el.OnDraw = func(dst *ebiten.Image, geoM ebiten.GeoM) {
		mu.Lock()
		s := text
		mu.Unlock()
		if s == "" {
			return
		}
		x, y := geoM.Apply(0, 0)
		vector.DrawFilledRect(dst, float32(x), float32(y), statusWidth, statusHeight, color.RGBA{A: 128}, false)
		ebitenutil.DebugPrintAt(dst, s, int(x)+4, int(y)+4)
	}
	return el, handle
}
