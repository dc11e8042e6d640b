package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minNodeWidth  = 8
	minNodeHeight = 3
	maxNodeWidth  = 40
)

// SizeEstimator derives a node's size from its content alone. It must be
// pure: the same text always yields the same size.
type SizeEstimator interface {
	Estimate(text string) Size
}

// GeometryProvider returns the current document-space bounding box of a node.
type GeometryProvider interface {
	Bounds(id string) (Rect, bool)
}

// CellEstimator measures text in terminal cells. Width is the widest line
// plus horizontal padding, height is the line count plus the two border rows.
type CellEstimator struct {
	MinWidth float64
	MaxWidth float64
	Padding  float64
}

func NewCellEstimator(maxWidth float64) CellEstimator {
	if maxWidth < minNodeWidth {
		maxWidth = maxNodeWidth
	}
	return CellEstimator{MinWidth: minNodeWidth, MaxWidth: maxWidth, Padding: 2}
}

func (e CellEstimator) Estimate(text string) Size {
	lines := strings.Split(text, "\n")
	widest := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > widest {
			widest = w
		}
	}
	width := clamp(float64(widest)+e.Padding, e.MinWidth, e.MaxWidth)
	height := float64(len(wrapText(text, int(width))) + 2)
	if height < minNodeHeight {
		height = minNodeHeight
	}
	return Size{Width: width, Height: height}
}

// wrapText hard-wraps lines to fit inside a box of the given outer width.
func wrapText(text string, width int) []string {
	inner := width - 2
	if inner < 1 {
		inner = 1
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for lipgloss.Width(string(runes)) > inner {
			cut := inner
			if cut > len(runes) {
				cut = len(runes)
			}
			out = append(out, string(runes[:cut]))
			runes = runes[cut:]
		}
		out = append(out, string(runes))
	}
	return out
}
