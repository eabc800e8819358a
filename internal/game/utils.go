package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	glyphWidth  = 6
	glyphHeight = 16
)

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// The debug font only covers ASCII.
var asciiPunctuation = strings.NewReplacer("’", "'", "‘", "'", "“", `"`, "”", `"`, "—", "-", "…", "...")

func printable(s string) string { return asciiPunctuation.Replace(s) }

// textWidth is the width of s in the debug font at the given scale.
func textWidth(s string, scale float64) float64 {
	return float64(len([]rune(printable(s)))) * glyphWidth * scale
}

type rect struct {
	x, y, w, h float64
}

func (r rect) contains(x, y int) bool {
	fx, fy := float64(x), float64(y)
	return fx >= r.x && fx <= r.x+r.w && fy >= r.y && fy <= r.y+r.h
}

// button tracks hover and press of a clickable rectangle.
type button struct {
	label   string
	bounds  rect
	hovered bool
	pressed bool
}

// update returns true when a click was released over the button.
func (b *button) update(in input) bool {
	b.hovered = b.bounds.contains(in.mouseX, in.mouseY)
	if b.hovered && in.mouseDown {
		b.pressed = true
	}
	clicked := false
	if in.mouseUp {
		clicked = b.pressed && b.hovered
		b.pressed = false
	}
	return clicked
}
