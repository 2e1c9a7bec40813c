package nodearea

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// NewLogger creates a logger prefixed with "nodearea" that writes to w and
// filters messages below level. Timestamps are formatted as "15:04:05.00".
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "nodearea",
	})
}

// ParseLogLevel maps a config string ("debug", "info", "warn", "error") to a
// log level. Empty selects info.
func ParseLogLevel(s string) (log.Level, error) {
	if strings.TrimSpace(s) == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(strings.ToLower(s))
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// debugMaxChildCount is the content size above which a warning is logged
// once per crossing.
const debugMaxChildCount = 1000

func debugCheckChildCount(logger *log.Logger, el *Element) {
	n := len(el.Children())
	if n == debugMaxChildCount+1 {
		logger.Warn("element has many children", "element", el.Name, "count", n, "threshold", debugMaxChildCount)
	}
}
