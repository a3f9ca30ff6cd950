// Package soundfont plays notes through a SoundFont (.sf2) using meltysynth.
package soundfont

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"

	meltysynth "github.com/sinshu/go-meltysynth/meltysynth"
)

const (
	midiChannels  = 16
	drumChannel   = 9
	programChange = 0xC0
)

// synthesizer is the subset of meltysynth.Synthesizer the engine drives.
type synthesizer interface {
	ProcessMidiMessage(channel int32, command int32, data1, data2 int32)
	NoteOn(channel, key, vel int32)
	NoteOff(channel, key int32)
	Render(left, right []float32)
}

type voiceKey struct {
	channel int32
	key     int32
}

// Engine adapts a meltysynth synthesizer to the sequencer's voice interface.
// Each General MIDI program is given its own channel the first time it is
// used. Channel 9 is left alone since General MIDI reserves it for drums.
type Engine struct {
	synth       synthesizer
	channels    map[int]int32
	nextChannel int32
	voices      map[int]voiceKey
	held        map[voiceKey]int
	nextID      int
	masterGain  uint64
	tailFrames  int
	tailLeft    int
	left, right []float32
}

// New loads a SoundFont from r.
func New(sampleRate int, r io.Reader) (*Engine, error) {
	sf, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("soundfont: %w", err)
	}
	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	synth, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return nil, fmt.Errorf("soundfont: %w", err)
	}
	return newEngine(synth, sampleRate), nil
}

// Open loads the SoundFont file at path.
func Open(path string, sampleRate int) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("soundfont: %w", err)
	}
	return New(sampleRate, bytes.NewReader(data))
}

func newEngine(synth synthesizer, sampleRate int) *Engine {
	return &Engine{
		synth:      synth,
		channels:   map[int]int32{},
		voices:     map[int]voiceKey{},
		held:       map[voiceKey]int{},
		masterGain: math.Float64bits(1),
		// SoundFont releases are longer than the chip envelopes.
		tailFrames: sampleRate,
		left:       make([]float32, 1),
		right:      make([]float32, 1),
	}
}

// channelFor returns the channel carrying program, assigning one on first
// use. When every melodic channel is taken the program shares channel 0.
func (e *Engine) channelFor(program int) int32 {
	if ch, ok := e.channels[program]; ok {
		return ch
	}
	if e.nextChannel == drumChannel {
		e.nextChannel++
	}
	if e.nextChannel >= midiChannels {
		return 0
	}
	ch := e.nextChannel
	e.nextChannel++
	e.channels[program] = ch
	e.synth.ProcessMidiMessage(ch, programChange, int32(program), 0)
	return ch
}

func (e *Engine) NoteOn(key int, velocity int, program int) int {
	vk := voiceKey{channel: e.channelFor(program), key: int32(key)}
	e.synth.NoteOn(vk.channel, vk.key, int32(velocity))
	e.held[vk]++
	id := e.nextID
	e.nextID++
	e.voices[id] = vk
	e.tailLeft = e.tailFrames
	return id
}

// NoteOff releases id. The key is only released in the synthesizer once
// every overlapping note on it has ended.
func (e *Engine) NoteOff(id int) {
	vk, ok := e.voices[id]
	if !ok {
		return
	}
	delete(e.voices, id)
	if e.held[vk]--; e.held[vk] > 0 {
		return
	}
	delete(e.held, vk)
	e.synth.NoteOff(vk.channel, vk.key)
}

func (e *Engine) RenderFrame() (float32, float32) {
	e.synth.Render(e.left, e.right)
	if len(e.held) == 0 && e.tailLeft > 0 {
		e.tailLeft--
	}
	g := float32(math.Float64frombits(atomic.LoadUint64(&e.masterGain)))
	return e.left[0] * g, e.right[0] * g
}

func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

// ActiveVoiceCount counts held keys. After the last key is released it
// reports one voice until the release tail has played out.
func (e *Engine) ActiveVoiceCount() int {
	if n := len(e.held); n > 0 {
		return n
	}
	if e.tailLeft > 0 {
		return 1
	}
	return 0
}
