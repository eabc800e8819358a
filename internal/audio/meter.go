package audio

import "math"

// Meter turns raw samples into smoothed per-band loudness. Each band is the
// RMS of its slice of the window, compressed with a 0.3 power so quiet
// ambience still moves the picture.
type Meter struct {
	bands     []float64
	smoothing float64
}

func NewMeter(bands int, smoothing float64) *Meter {
	return &Meter{bands: make([]float64, max(1, bands)), smoothing: smoothing}
}

// Update folds one window of samples into the bands.
func (m *Meter) Update(samples [][2]float64) {
	if len(samples) == 0 {
		return
	}
	n := len(m.bands)
	segment := max(1, len(samples)/n)
	for i := 0; i < n; i++ {
		start := i * segment
		if start >= len(samples) {
			break
		}
		end := min(start+segment, len(samples))

		var sumSquares float64
		for _, s := range samples[start:end] {
			mono := (s[0] + s[1]) * 0.5
			sumSquares += mono * mono
		}
		mag := math.Pow(math.Sqrt(sumSquares/float64(end-start)), 0.3)
		m.bands[i] = m.smoothing*m.bands[i] + (1-m.smoothing)*mag
	}
}

// Bands returns the current band values.
func (m *Meter) Bands() []float64 { return m.bands }

// Level is the mean of all bands.
func (m *Meter) Level() float64 {
	var sum float64
	for _, b := range m.bands {
		sum += b
	}
	return sum / float64(len(m.bands))
}

// Reset silences every band.
func (m *Meter) Reset() {
	for i := range m.bands {
		m.bands[i] = 0
	}
}
