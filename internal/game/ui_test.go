package game

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iburimskiy/stillwave/internal/config"
)

func TestTextBuffer(t *testing.T) {
	b := textBuffer{limit: 5}
	assert.True(t, b.blank())
	b.append([]rune("héllo world"))
	assert.Equal(t, "héllo", b.String())
	b.backspace()
	b.newline()
	assert.Equal(t, "héll\n", b.String())
	b.reset()
	b.backspace()
	assert.Empty(t, b.String())
}

func TestButtonClick(t *testing.T) {
	b := button{bounds: rect{10, 10, 100, 40}}
	assert.False(t, b.update(input{mouseX: 20, mouseY: 20, mouseDown: true}))
	assert.True(t, b.pressed)
	assert.True(t, b.update(input{mouseX: 30, mouseY: 30, mouseUp: true}))

	b.update(input{mouseX: 20, mouseY: 20, mouseDown: true})
	assert.False(t, b.update(input{mouseX: 500, mouseY: 20, mouseUp: true}), "release outside cancels")
	assert.False(t, b.pressed)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:30", formatDuration(30*time.Second))
	assert.Equal(t, "02:05", formatDuration(125*time.Second))
	assert.Equal(t, "00:00", formatDuration(-time.Second))
}

func TestPrintableText(t *testing.T) {
	assert.Equal(t, "It's gone forever.", printable("It’s gone forever."))
	assert.Equal(t, 12.0, textWidth("ab", 1))
	assert.Equal(t, 24.0, textWidth("’a", 2))
}

func TestBodyRegionsCoverNarration(t *testing.T) {
	assert.Len(t, bodyRegions, 11)
	for _, step := range config.DefaultSteps() {
		for _, idx := range step.Highlights {
			assert.Less(t, idx, len(bodyRegions), step.Text)
		}
	}
	for _, r := range bodyRegions {
		assert.LessOrEqual(t, r.cy+r.ry, 100.0, r.name)
		assert.GreaterOrEqual(t, r.cy-r.ry, -100.0, r.name)
	}
}

func TestDisplayList(t *testing.T) {
	var d displayList
	d.FillCircle(1, 2, 3, color.NRGBA{A: 0})
	d.FillCircle(1, 2, 0, color.NRGBA{A: 255})
	d.FillCircle(1, 2, 3, color.NRGBA{R: 9, A: 200})
	assert.Len(t, d.circles, 1)
	d.Clear()
	assert.Empty(t, d.circles)
}
