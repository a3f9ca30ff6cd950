// Package lfo provides the low-frequency oscillators the synthesizers use
// for vibrato and tremolo.
package lfo

import "math"

// Shape selects the oscillator waveform.
type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Saw
)

// LFO is a free-running modulator. Its output fades in over Delay seconds
// after Reset so that vibrato starts on the held part of a note.
type LFO struct {
	shape  Shape
	depth  float64
	rateHz float64
	delay  float64

	phase   float64
	elapsed float64
}

// New returns an oscillator of the given shape. Depth is in whatever unit
// the caller modulates: semitones for vibrato, gain for tremolo.
func New(shape Shape, depth, rateHz, delaySec float64) LFO {
	if shape < Sine || shape > Saw {
		shape = Sine
	}
	return LFO{shape: shape, depth: depth, rateHz: rateHz, delay: math.Max(delaySec, 0)}
}

func (l *LFO) Active() bool { return l.depth != 0 && l.rateHz > 0 }

// Reset restarts the cycle and the onset delay.
func (l *LFO) Reset() {
	l.phase = 0
	l.elapsed = 0
}

// Sample advances one sample and returns a value in [-depth, depth].
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	var v float64
	switch l.shape {
	case Triangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case Square:
		v = 1
		if l.phase >= 0.5 {
			v = -1
		}
	case Saw:
		v = 1 - 2*l.phase
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.rateHz / sampleRate
	l.phase -= math.Floor(l.phase)

	gain := 1.0
	if l.delay > 0 {
		gain = math.Min(l.elapsed/l.delay, 1)
		l.elapsed += 1 / sampleRate
	}
	return v * l.depth * gain
}
