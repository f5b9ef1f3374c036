package progress

import (
	"fmt"
	"math"
)

// Unknown is the label used when a metric cannot be derived, typically
// because the server did not report a content length.
const Unknown = "Unknown"

const bytesPerMB = 1024 * 1024

// FormatSize renders a byte count as binary megabytes with one decimal.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return Unknown
	}
	return fmt.Sprintf("%.1f MB", float64(bytes)/bytesPerMB)
}

// FormatSpeed renders a transfer rate as binary megabytes per second.
func FormatSpeed(bytesPerSec float64) string {
	if bytesPerSec <= 0 || math.IsInf(bytesPerSec, 0) || math.IsNaN(bytesPerSec) {
		return Unknown
	}
	return fmt.Sprintf("%.1f MB/s", bytesPerSec/bytesPerMB)
}

// FormatETA renders a remaining-time estimate in whole seconds.
func FormatETA(seconds float64) string {
	if seconds <= 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return Unknown
	}
	return fmt.Sprintf("%ds", int(seconds))
}

// Percent computes a completion percentage, clamped to [0,100]. It returns 0
// when the total is unknown.
func Percent(downloaded, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(downloaded) / float64(total) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
