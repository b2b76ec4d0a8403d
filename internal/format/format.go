package format

import (
	"fmt"
	"time"
)

// FormatVital formats an integer vital-sign reading (SpO2, heart rate).
// Negative values (no reading) return "---".
func FormatVital(v int) string {
	if v < 0 {
		return "---"
	}
	return fmt.Sprintf("%d", v)
}

// FormatSpO2 formats an SpO2 percentage. Negative values return "---".
func FormatSpO2(v int) string {
	if v < 0 {
		return "---"
	}
	return fmt.Sprintf("%d%%", v)
}

// FormatDistance formats a distance in kilometres: metres below 1 km,
// otherwise km with 2 decimal places. Negative values return "---".
func FormatDistance(km float64) string {
	if km < 0 {
		return "---"
	}
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.2f km", km)
}

// FormatAge formats how long ago a reading arrived: "12s", "4m", "2h5m",
// "1d3h". Negative values (no reading) return "---".
func FormatAge(d time.Duration) string {
	if d < 0 {
		return "---"
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) - h*60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	default:
		days := int(d.Hours()) / 24
		h := int(d.Hours()) - days*24
		if h == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd%dh", days, h)
	}
}

// FormatCoord formats a coordinate pair with 5 decimal places.
func FormatCoord(lat, lon float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lon)
}

// FormatDuration formats a poll interval as a compact string, e.g. "10s" or "2m".
func FormatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
