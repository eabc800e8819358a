package breath

import (
	"math"
	"math/rand"

	"github.com/iburimskiy/stillwave/internal/motion"
)

// Vector3 is a point or direction in sphere space.
type Vector3 struct {
	X, Y, Z float64
}

// Particle is one dot of the breathing sphere. All fields are drawn once at
// creation; only the per-frame Dot derived from it changes.
type Particle struct {
	Position    Vector3 // unit-sphere direction
	ShellRadius float64 // 0.42..1.08, biased toward the shell

	Speed         float64
	PhaseOffset   float64
	JitterAmp     float64
	JitterFreq    float64
	JitterPhase   float64
	CurveStrength float64
	CurveAngle    float64
	BaseAlpha     float64
	SizeJitter    float64
}

// Tuning groups the aesthetic constants of the sphere.
type Tuning struct {
	ShellBias       float64 // probability of a near-shell particle
	Gamma           float64 // exponent applied to per-particle breath amount
	CenterFadeAt    float64 // breath amount at which the centre dot is gone
	PerspectiveSpan float64 // perspective distance in sphere radii
	RadiusFactor    float64 // sphere radius as a fraction of the stage side
}

// DefaultTuning returns the tuning the app ships with.
func DefaultTuning() Tuning {
	return Tuning{
		ShellBias:       0.82,
		Gamma:           0.82,
		CenterFadeAt:    0.7,
		PerspectiveSpan: 2.8,
		RadiusFactor:    0.45,
	}
}

// NewParticles samples count particles uniformly over the unit sphere with a
// shell-weighted radius distribution.
func NewParticles(rng *rand.Rand, count int, tuning Tuning) []Particle {
	if count < 0 {
		count = 0
	}
	particles := make([]Particle, 0, count)
	for i := 0; i < count; i++ {
		u := rng.Float64()
		v := rng.Float64()
		theta := 2 * math.Pi * u
		phi := math.Acos(2*v - 1)
		sinPhi := math.Sin(phi)
		pos := Vector3{
			X: math.Cos(theta) * sinPhi,
			Y: math.Cos(phi),
			Z: math.Sin(theta) * sinPhi,
		}

		var shell float64
		if rng.Float64() < tuning.ShellBias {
			shell = motion.Clamp(0.88+math.Pow(rng.Float64(), 2.8)*0.2, 0.82, 1.08)
		} else {
			shell = motion.Clamp(0.48+math.Pow(rng.Float64(), 1.5)*0.34, 0.42, 0.86)
		}
		curveAngle := rng.Float64() * math.Pi * 2

		particles = append(particles, Particle{
			Position:      pos,
			ShellRadius:   shell,
			Speed:         0.92 + rng.Float64()*0.18,
			PhaseOffset:   (rng.Float64() - 0.5) * 0.07,
			JitterAmp:     0.006 + rng.Float64()*0.012,
			JitterFreq:    0.6 + rng.Float64()*0.9,
			JitterPhase:   rng.Float64() * math.Pi * 2,
			CurveStrength: 0.03 + rng.Float64()*0.045,
			CurveAngle:    curveAngle,
			BaseAlpha:     0.62 + rng.Float64()*0.28,
			SizeJitter:    0.93 + rng.Float64()*0.14,
		})
	}
	return particles
}
