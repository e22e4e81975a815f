// Package units formats sizes and progress for log lines and toasts.
package units

import "fmt"

const (
	kb = 1024
	mb = kb * 1024
	gb = mb * 1024
	tb = gb * 1024
)

// HumanReadableSize renders a byte count, e.g. "1.50 KB" or "12 bytes".
func HumanReadableSize(bytes int64) string {
	switch {
	case bytes >= tb:
		return fmt.Sprintf("%.2f TB", float64(bytes)/tb)
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// ProgressPercentage reports how far through total the zero-based index is.
// A zero total yields 0; results are capped at 100.
func ProgressPercentage(index, total int) uint8 {
	if total <= 0 {
		return 0
	}
	pct := float64(index+1) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return uint8(pct)
}
