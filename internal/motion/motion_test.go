package motion

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaseInOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, EaseInOutCubic(0))
	assert.Equal(t, 1.0, EaseInOutCubic(1))
	assert.InDelta(t, 0.5, EaseInOutCubic(0.5), 1e-12)
	assert.InDelta(t, 4*0.25*0.25*0.25, EaseInOutCubic(0.25), 1e-12)

	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := EaseInOutCubic(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev, "ease must be monotonic at step %d", i)
		prev = v
	}
}

func TestEaseOutPow(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutPow(0, 1.35))
	assert.Equal(t, 1.0, EaseOutPow(1, 1.35))
	assert.Equal(t, 1.0, EaseOutPow(3, 1.35), "input is clamped")
	assert.Greater(t, EaseOutPow(0.5, 1.35), 0.5)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.42, Clamp(0.1, 0.42, 1.08))
	assert.Equal(t, 1.08, Clamp(2, 0.42, 1.08))
	assert.Equal(t, 0.5, Clamp01(0.5))
	assert.Equal(t, 0.0, Clamp01(-3))
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#93BBED")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x93, G: 0xBB, B: 0xED, A: 255}, c)

	_, err = ParseHexColor("#abc")
	assert.Error(t, err)
	_, err = ParseHexColor("zzzzzz")
	assert.Error(t, err)
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(color.NRGBA{R: 1, G: 2, B: 3, A: 255}, 0.5)
	assert.Equal(t, uint8(128), c.A)
	assert.Equal(t, uint8(0), WithAlpha(c, -1).A)
}

func TestHSVToRGB(t *testing.T) {
	r, g, b := HSVToRGB(0, 1, 1)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
	r, g, b = HSVToRGB(480, 1, 1)
	assert.Equal(t, [3]uint8{0, 255, 0}, [3]uint8{r, g, b})
	r, g, b = HSVToRGB(-120, 1, 1)
	assert.Equal(t, [3]uint8{0, 0, 255}, [3]uint8{r, g, b})
}
