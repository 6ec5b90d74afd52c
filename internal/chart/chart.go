// Package chart lays out the expense-by-category bar chart for the terminal
// and for the web UI's inline SVG.
package chart

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"finance-tracker/internal/models"
)

// Palette cycles across bars in order.
var Palette = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA62B", "#A0D995"}

// valueLabelMin is the fraction of the tallest bar a bar must exceed before
// its value is printed inside it.
const valueLabelMin = 0.05

// Bar is one category in the chart.
type Bar struct {
	Label     string
	Value     models.Money
	Percent   float64
	Color     string
	Ratio     float64 // length relative to the largest bar, 0..1
	ShowValue bool    // value fits inside the bar
}

// Build converts breakdown rows, already sorted, into bars.
func Build(rows []models.CategoryShare) []Bar {
	var largest models.Money
	for _, r := range rows {
		if r.Total > largest {
			largest = r.Total
		}
	}

	bars := make([]Bar, 0, len(rows))
	for i, r := range rows {
		ratio := 0.0
		if largest > 0 {
			ratio = float64(r.Total) / float64(largest)
		}
		bars = append(bars, Bar{
			Label:     r.Category,
			Value:     r.Total,
			Percent:   r.Percent,
			Color:     Palette[i%len(Palette)],
			Ratio:     ratio,
			ShowValue: ratio > valueLabelMin,
		})
	}
	return bars
}

const textWidth = 40

// RenderText writes a horizontal bar chart suitable for a terminal.
func RenderText(w io.Writer, title string, bars []Bar, currency string) error {
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", utf8.RuneCountInString(title)) + "\n")
	if len(bars) == 0 {
		b.WriteString("No expenses recorded yet.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	labelWidth := 0
	for _, bar := range bars {
		if n := utf8.RuneCountInString(bar.Label); n > labelWidth {
			labelWidth = n
		}
	}

	for _, bar := range bars {
		n := int(bar.Ratio*textWidth + 0.5)
		if n == 0 && bar.Value > 0 {
			n = 1
		}
		pad := labelWidth - utf8.RuneCountInString(bar.Label)
		fmt.Fprintf(&b, "%s%s | %s%s %s%s (%.1f%%)\n",
			bar.Label, strings.Repeat(" ", pad),
			strings.Repeat("█", n), strings.Repeat(" ", textWidth-n),
			currency, bar.Value, bar.Percent)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// SVGBar is a bar positioned in SVG user units.
type SVGBar struct {
	Bar
	X, Y, Width, Height float64
	LabelX              float64
	PercentY            float64 // above the bar
	ValueY              float64 // inside the bar near its top
}

// SVG is a vertical bar chart ready for a template.
type SVG struct {
	Width, Height float64
	Baseline      float64
	Bars          []SVGBar
}

const (
	svgTop    = 24.0 // room for the percentage labels
	svgBottom = 28.0 // room for the category labels
	svgGap    = 0.25 // fraction of each slot left empty
)

// Layout positions bars within a width x height canvas.
func Layout(bars []Bar, width, height float64) SVG {
	out := SVG{Width: width, Height: height, Baseline: height - svgBottom}
	if len(bars) == 0 {
		return out
	}

	plot := out.Baseline - svgTop
	slot := width / float64(len(bars))
	barWidth := slot * (1 - svgGap)
	for i, bar := range bars {
		h := bar.Ratio * plot
		x := float64(i)*slot + (slot-barWidth)/2
		y := out.Baseline - h
		out.Bars = append(out.Bars, SVGBar{
			Bar:      bar,
			X:        x,
			Y:        y,
			Width:    barWidth,
			Height:   h,
			LabelX:   x + barWidth/2,
			PercentY: y - 6,
			ValueY:   y + 16,
		})
	}
	return out
}
