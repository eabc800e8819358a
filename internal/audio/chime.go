package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

// Chime is a soft bell: a sine with its fifth, fading out exponentially.
func Chime(sr beep.SampleRate, freq float64, length time.Duration) beep.Streamer {
	total := sr.N(length)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := min(len(samples), total-pos)
		for i := 0; i < n; i++ {
			t := float64(pos) / float64(sr)
			envelope := math.Exp(-4*float64(pos)/float64(total)) * math.Min(1, float64(pos)/float64(sr.N(10*time.Millisecond)+1))
			v := (math.Sin(2*math.Pi*freq*t) + 0.4*math.Sin(2*math.Pi*freq*1.5*t)) * 0.25 * envelope
			samples[i] = [2]float64{v, v}
			pos++
		}
		return n, true
	})
}
