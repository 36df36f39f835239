package templates

import (
	"fmt"
	"time"
)

// ScoreStatus describes a hireability band and its display color.
type ScoreStatus struct {
	Description string
	Color       string
}

// GetScoreStatus returns the display band for a hireability score.
func GetScoreStatus(score int) ScoreStatus {
	switch {
	case score >= 80:
		return ScoreStatus{"Impressive", "#a6e22e"} // Lime Green
	case score >= 60:
		return ScoreStatus{"Promising", "#e6db74"} // Yellow
	case score >= 40:
		return ScoreStatus{"Uncertain", "#fd971f"} // Orange
	case score >= 20:
		return ScoreStatus{"Struggling", "#f92672"} // Pink/Red
	default:
		return ScoreStatus{"Doomed", "#75715e"} // Gray
	}
}

// Elapsed formats the mm:ss offset between the first log entry and a later
// timestamp, for the playback clock in the log view.
func Elapsed(first, at time.Time) string {
	diff := int(at.Sub(first).Seconds())
	if diff < 0 {
		diff = 0
	}
	return fmt.Sprintf("%02d:%02d", diff/60, diff%60)
}
