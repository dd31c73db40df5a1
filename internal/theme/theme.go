// Package theme resolves the initial dark-mode preference when no persisted
// value exists.
package theme

import (
	"os"
	"strconv"
	"strings"
)

// Detector resolves the environment's dark-scheme signal. Swappable so
// callers and tests can stub the probe.
type Detector func() (dark bool, ok bool)

// Detect is the default detector. It honors an explicit LISTCORE_DARK_MODE
// override, then falls back to the COLORFGBG convention some terminals
// export (background index 0-6 or 8 means a dark palette). When neither
// signal is present it reports ok=false and the caller defaults to light.
func Detect() (bool, bool) {
	if v := os.Getenv("LISTCORE_DARK_MODE"); v != "" {
		if dark, err := strconv.ParseBool(v); err == nil {
			return dark, true
		}
	}
	if v := os.Getenv("COLORFGBG"); v != "" {
		return darkFromColorFGBG(v), true
	}
	return false, false
}

func darkFromColorFGBG(v string) bool {
	parts := strings.Split(v, ";")
	bg := parts[len(parts)-1]
	n, err := strconv.Atoi(bg)
	if err != nil {
		return false
	}
	return n <= 6 || n == 8
}
