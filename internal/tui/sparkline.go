package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks is the 8-level block character set for sparklines.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline converts a slice of float64 values into a block sparkline
// string of exactly `width` characters, colored with the given lipgloss color.
//
// Rules:
//   - Empty values → width spaces
//   - All zeros → all '▁' (floor level)
//   - More values than width → last width values
//   - Fewer values than width → left-padded with spaces
func RenderSparkline(values []float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}

	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	maxVal := slices.Max(values)

	style := lipgloss.NewStyle().Foreground(color)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))

	for _, v := range values {
		var idx int
		if maxVal > 0 {
			idx = int(v / maxVal * 7)
		}
		if idx < 0 {
			idx = 0
		}
		if idx > 7 {
			idx = 7
		}
		sb.WriteRune(sparkBlocks[idx])
	}

	return style.Render(sb.String())
}

// Physiological display bands for vital sparklines. Readings are clamped to
// the band, so a SpO2 of 99 vs 100 is still visibly distinct while a sensor
// glitch reporting 0 just pins to the floor.
const (
	spo2BandFloor = 80
	spo2BandCeil  = 100
	hrBandFloor   = 40
	hrBandCeil    = 160
)

// RenderVitalSparkline draws values against a fixed floor..ceil band instead
// of scaling to the window maximum. Vitals move in a narrow range near the
// top of their scale; relative scaling would flatten a SpO2 drop from 99 to
// 91 into noise. Padding and truncation follow RenderSparkline.
func RenderVitalSparkline(values []float64, width int, floor, ceil float64, color lipgloss.Color) string {
	if width <= 0 || ceil <= floor {
		return ""
	}

	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	style := lipgloss.NewStyle().Foreground(color)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))

	for _, v := range values {
		idx := int((v - floor) / (ceil - floor) * 7)
		if idx < 0 {
			idx = 0
		}
		if idx > 7 {
			idx = 7
		}
		sb.WriteRune(sparkBlocks[idx])
	}

	return style.Render(sb.String())
}
