// Package derive computes display fields from raw records: call durations,
// ratios and transcript segments. Nothing here returns an error; bad input
// yields a safe default.
package derive

import (
	"fmt"
	"math"
)

// NotAvailable is rendered for values missing upstream.
const NotAvailable = "N/A"

// FormatDuration renders seconds as "M:SS". Minutes never roll over into
// hours: 3661 is "61:01".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// DurationLabel is FormatDuration for an optional duration.
func DurationLabel(seconds *int) string {
	if seconds == nil {
		return NotAvailable
	}
	return FormatDuration(*seconds)
}

// Percent returns part/whole as a percentage rounded to one decimal place,
// or 0 when whole is not positive.
func Percent(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(whole)) / 10
}

// ClampRating bounds a vendor rating to [0, 5]; NaN becomes 0.
func ClampRating(r float64) float64 {
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// NonNegative returns n, or 0 when n is negative.
func NonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
