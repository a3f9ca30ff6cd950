// Package effects holds the stereo post-processing applied to rendered
// tunes: an optional room reverb followed by a peak limiter.
package effects

import (
	"fmt"
	"sort"
)

// Effector processes one stereo frame.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain runs effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Add(e Effector) {
	if e != nil {
		c.effects = append(c.effects, e)
	}
}

func (c *Chain) Len() int { return len(c.effects) }

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

// Apply processes an interleaved stereo buffer in place.
func (c *Chain) Apply(buf []float32) {
	if len(c.effects) == 0 {
		return
	}
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = c.Process(buf[i], buf[i+1])
	}
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

// RoomDry disables the reverb.
const RoomDry = "dry"

type roomPreset struct {
	size, decay, wet float32
}

var roomPresets = map[string]roomPreset{
	RoomDry: {},
	"room":  {size: 0.35, decay: 0.60, wet: 0.18},
	"hall":  {size: 0.80, decay: 0.82, wet: 0.28},
}

// Rooms lists the accepted room names.
func Rooms() []string {
	names := make([]string, 0, len(roomPresets))
	for n := range roomPresets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidRoom reports whether name is a known room. The empty name is dry.
func ValidRoom(name string) bool {
	if name == "" {
		return true
	}
	_, ok := roomPresets[name]
	return ok
}

// Master builds the output chain for room: the room reverb, if any, then a
// limiter so the mix never clips.
func Master(sampleRate int, room string) (*Chain, error) {
	if room == "" {
		room = RoomDry
	}
	p, ok := roomPresets[room]
	if !ok {
		return nil, fmt.Errorf("effects: unknown room %q", room)
	}
	c := NewChain()
	if p.wet > 0 {
		c.Add(NewReverb(sampleRate, p.size, p.decay, p.wet))
	}
	c.Add(NewLimiter(sampleRate, DefaultCeiling))
	return c, nil
}
