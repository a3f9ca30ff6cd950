package effects

import "math"

// DefaultCeiling is the limiter ceiling, just under full scale.
const DefaultCeiling = 0.98

// Limiter is a stereo-linked peak limiter. Both channels share one envelope
// so the image does not shift when one side is loud.
type Limiter struct {
	ceiling float32
	attack  float32
	release float32
	env     float32
}

func NewLimiter(sampleRate int, ceiling float32) *Limiter {
	sr := float64(sampleRate)
	return &Limiter{
		ceiling: clamp(ceiling, 0.01, 1),
		attack:  float32(1 - math.Exp(-1/(0.0005*sr))),
		release: float32(1 - math.Exp(-1/(0.120*sr))),
	}
}

func (lim *Limiter) Process(l, r float32) (float32, float32) {
	peak := max(abs32(l), abs32(r))
	if peak > lim.env {
		lim.env += lim.attack * (peak - lim.env)
	} else {
		lim.env += lim.release * (peak - lim.env)
	}
	g := float32(1)
	if lim.env > lim.ceiling {
		g = lim.ceiling / lim.env
	}
	l, r = l*g, r*g
	// The envelope lags a fast transient; hard clip what slips through.
	return clamp(l, -lim.ceiling, lim.ceiling), clamp(r, -lim.ceiling, lim.ceiling)
}

func (lim *Limiter) Reset() { lim.env = 0 }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
