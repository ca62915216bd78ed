package physics

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Perturber nudges positions after forces are applied and before clamping.
// Implementations must leave pinned nodes alone.
type Perturber interface {
	Perturb(tick uint64, pos []Vec, pinned []bool)
}

// NoiseJitter periodically nudges a subset of nodes to keep a settled layout
// visibly alive. Both the subset and the displacement come from simplex noise,
// so a given seed always produces the same sequence.
type NoiseJitter struct {
	noise     opensimplex.Noise
	Interval  uint64  // fire on every Interval-th step
	Fraction  float64 // approximate share of nodes nudged per burst, 0..1
	Amplitude float64 // maximum displacement per axis
}

// NewNoiseJitter creates a jitter source
func NewNoiseJitter(seed int64, interval uint64, fraction, amplitude float64) *NoiseJitter {
	return &NoiseJitter{
		noise:     opensimplex.NewNormalized(seed),
		Interval:  interval,
		Fraction:  fraction,
		Amplitude: amplitude,
	}
}

// Perturb applies a burst when tick completes an interval
func (j *NoiseJitter) Perturb(tick uint64, pos []Vec, pinned []bool) {
	if j.Interval == 0 || (tick+1)%j.Interval != 0 || j.Fraction <= 0 {
		return
	}

	burst := float64((tick + 1) / j.Interval)
	for i := range pos {
		if pinned[i] {
			continue
		}
		seat := float64(i)*1.618 + 0.5
		if j.noise.Eval2(seat, burst*0.37) >= j.Fraction {
			continue
		}
		// Normalized noise is in [0,1); recenter to [-1,1)
		dx := j.noise.Eval2(seat+101.3, burst)*2 - 1
		dy := j.noise.Eval2(seat+211.7, burst)*2 - 1
		pos[i].X += dx * j.Amplitude
		pos[i].Y += dy * j.Amplitude
	}
}
