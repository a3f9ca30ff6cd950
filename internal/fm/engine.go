// Package fm is a two-operator FM synthesizer. Each General MIDI instrument
// family gets its own patch: a modulator ratio and index, an envelope for
// each operator, and optional delayed vibrato.
package fm

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/abcfm-go/internal/lfo"
)

const twoPi = math.Pi * 2

type Params struct {
	Voices       int
	MasterGain   float64
	VelocityAmp  float64
	LPFCutoff    float64 // Hz, 0 disables the output filter
	VibratoDepth float64 // semitones
	VibratoRate  float64 // Hz
	VibratoDelay float64 // seconds before vibrato reaches full depth
}

func DefaultParams() Params {
	return Params{
		Voices:       24,
		MasterGain:   0.35,
		VelocityAmp:  0.8,
		LPFCutoff:    12000,
		VibratoDepth: 0.12,
		VibratoRate:  5.5,
		VibratoDelay: 0.25,
	}
}

// patch describes one instrument family. Times are in seconds; a zero
// sustain makes the sound die away while the key is still held.
type patch struct {
	ratio    float64 // modulator frequency as a multiple of the carrier
	index    float64 // peak modulation index
	feedback float64 // modulator self-feedback
	car      envShape
	mod      envShape
	vibrato  bool
}

type envShape struct {
	attack, decay, sustain, release float64
}

// patches is indexed by program/8.
var patches = [16]patch{
	// piano
	{ratio: 1, index: 2.2, car: envShape{0.002, 1.2, 0, 0.3}, mod: envShape{0.002, 0.6, 0.2, 0.3}},
	// chromatic percussion
	{ratio: 3.5, index: 2.5, car: envShape{0.001, 0.9, 0, 0.4}, mod: envShape{0.001, 0.2, 0, 0.4}},
	// organ
	{ratio: 2, index: 1, feedback: 0.2, car: envShape{0.01, 0.1, 0.9, 0.08}, mod: envShape{0.01, 0.1, 0.9, 0.08}, vibrato: true},
	// guitar
	{ratio: 1, index: 2.8, car: envShape{0.001, 1.5, 0, 0.2}, mod: envShape{0.001, 0.3, 0.1, 0.2}},
	// bass
	{ratio: 1, index: 1.8, feedback: 0.3, car: envShape{0.002, 0.8, 0.3, 0.1}, mod: envShape{0.002, 0.2, 0.3, 0.1}},
	// strings
	{ratio: 1, index: 1.4, car: envShape{0.12, 0.3, 0.8, 0.35}, mod: envShape{0.2, 0.4, 0.7, 0.35}, vibrato: true},
	// ensemble
	{ratio: 1, index: 1.2, car: envShape{0.2, 0.3, 0.85, 0.5}, mod: envShape{0.25, 0.4, 0.7, 0.5}, vibrato: true},
	// brass
	{ratio: 1, index: 3.2, car: envShape{0.04, 0.2, 0.8, 0.15}, mod: envShape{0.06, 0.15, 0.6, 0.15}, vibrato: true},
	// reed
	{ratio: 2, index: 2, feedback: 0.15, car: envShape{0.03, 0.2, 0.85, 0.1}, mod: envShape{0.03, 0.2, 0.7, 0.1}, vibrato: true},
	// pipe
	{ratio: 1, index: 0.6, car: envShape{0.06, 0.2, 0.85, 0.12}, mod: envShape{0.08, 0.2, 0.5, 0.12}, vibrato: true},
	// synth lead
	{ratio: 1, index: 2.5, feedback: 0.5, car: envShape{0.005, 0.1, 0.9, 0.1}, mod: envShape{0.005, 0.1, 0.9, 0.1}},
	// synth pad
	{ratio: 0.5, index: 1.5, car: envShape{0.4, 0.5, 0.8, 0.8}, mod: envShape{0.6, 0.5, 0.6, 0.8}, vibrato: true},
	// synth effects
	{ratio: 1.41, index: 3, car: envShape{0.1, 1, 0.5, 1}, mod: envShape{0.3, 1, 0.3, 1}},
	// ethnic
	{ratio: 3, index: 2, car: envShape{0.002, 0.7, 0, 0.3}, mod: envShape{0.002, 0.3, 0.1, 0.3}},
	// percussive
	{ratio: 1.6, index: 3, car: envShape{0.001, 0.25, 0, 0.1}, mod: envShape{0.001, 0.05, 0, 0.1}},
	// sound effects
	{ratio: 7.1, index: 5, feedback: 0.8, car: envShape{0.01, 0.4, 0.2, 0.3}, mod: envShape{0.01, 0.4, 0.2, 0.3}},
}

func patchFor(program int) *patch {
	family := program / 8
	if family < 0 || family >= len(patches) {
		family = 0
	}
	return &patches[family]
}

type envStage int

const (
	envAttack envStage = iota
	envDecay
	envSustain
	envRelease
	envOff
)

type envelope struct {
	shape   envShape
	stage   envStage
	level   float64
	relStep float64
}

func (e *envelope) advance(sampleRate float64) {
	switch e.stage {
	case envAttack:
		e.level += step(1, e.shape.attack, sampleRate)
		if e.level >= 1 {
			e.level = 1
			e.stage = envDecay
		}
	case envDecay:
		e.level -= step(1-e.shape.sustain, e.shape.decay, sampleRate)
		if e.level <= e.shape.sustain {
			e.level = e.shape.sustain
			e.stage = envSustain
			if e.level <= 0 {
				e.stage = envOff
			}
		}
	case envRelease:
		e.level -= e.relStep
		if e.level <= 0.0001 {
			e.level = 0
			e.stage = envOff
		}
	}
}

func (e *envelope) release(sampleRate float64) {
	if e.stage == envOff || e.stage == envRelease {
		return
	}
	e.stage = envRelease
	e.relStep = step(e.level, e.shape.release, sampleRate)
}

// step is the per-sample change that covers span in sec seconds.
func step(span, sec, sampleRate float64) float64 {
	if sec <= 0 {
		return span
	}
	return span / (sec * sampleRate)
}

type voice struct {
	active   bool
	id       int
	velocity float64
	freq     float64
	carPhase float64
	modPhase float64
	fbPrev   float64
	car      envelope
	mod      envelope
	patch    *patch
	vibrato  lfo.LFO
}

type Engine struct {
	sampleRate float64
	params     Params
	voices     []voice
	nextID     int
	masterGain uint64
	lpfAlpha   float64
	lpf        float64
}

func New(sampleRate int, params Params) *Engine {
	if params.Voices <= 0 {
		params.Voices = 24
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		voices:     make([]voice, params.Voices),
		masterGain: math.Float64bits(params.MasterGain),
	}
	if params.LPFCutoff > 0 && params.LPFCutoff < float64(sampleRate)/2 {
		rc := 1 / (twoPi * params.LPFCutoff)
		dt := 1 / float64(sampleRate)
		e.lpfAlpha = dt / (rc + dt)
	}
	return e
}

// NoteOn starts key with the patch for the program's family and returns
// the voice id for NoteOff.
func (e *Engine) NoteOn(key, velocity, program int) int {
	slot := e.stealVoice()
	id := e.nextID
	e.nextID++
	p := patchFor(program)
	v := &e.voices[slot]
	*v = voice{
		active:   true,
		id:       id,
		velocity: clamp(float64(velocity)/127, 0, 1),
		freq:     midiToFreq(key),
		car:      envelope{shape: p.car},
		mod:      envelope{shape: p.mod},
		patch:    p,
	}
	if p.vibrato {
		v.vibrato = lfo.New(lfo.Sine, e.params.VibratoDepth, e.params.VibratoRate, e.params.VibratoDelay)
	}
	return id
}

func (e *Engine) NoteOff(id int) {
	for i := range e.voices {
		v := &e.voices[i]
		if v.active && v.id == id {
			v.car.release(e.sampleRate)
			v.mod.release(e.sampleRate)
		}
	}
}

func (e *Engine) RenderFrame() (float32, float32) {
	gain := e.masterGainValue()
	var mix float64
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active {
			continue
		}
		v.car.advance(e.sampleRate)
		v.mod.advance(e.sampleRate)
		if v.car.stage == envOff {
			v.active = false
			continue
		}
		mix += e.renderVoice(v) * gain * (0.2 + v.velocity*e.params.VelocityAmp)
	}
	if e.lpfAlpha > 0 {
		e.lpf += e.lpfAlpha * (mix - e.lpf)
		mix = e.lpf
	}
	out := float32(clamp(mix, -1, 1))
	return out, out
}

// renderVoice runs the modulator into the carrier and advances both phases.
func (e *Engine) renderVoice(v *voice) float64 {
	p := v.patch
	modOut := math.Sin(v.modPhase + v.fbPrev*p.feedback*math.Pi)
	v.fbPrev = modOut
	sig := math.Sin(v.carPhase+modOut*v.mod.level*p.index) * v.car.level

	freq := v.freq
	if v.vibrato.Active() {
		freq *= math.Pow(2, v.vibrato.Sample(e.sampleRate)/12)
	}
	v.carPhase = math.Mod(v.carPhase+twoPi*freq/e.sampleRate, twoPi)
	v.modPhase = math.Mod(v.modPhase+twoPi*freq*p.ratio/e.sampleRate, twoPi)
	return sig
}

// stealVoice returns a free slot, or the one with the quietest carrier.
func (e *Engine) stealVoice() int {
	quiet := 0
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
		if e.voices[i].car.level < e.voices[quiet].car.level {
			quiet = i
		}
	}
	return quiet
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

func (e *Engine) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}

func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}
