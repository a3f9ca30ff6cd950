package music

import (
	"sort"
	"strings"
)

// DefaultVoice names the part of a piece that declares no voices.
const DefaultVoice = "Default"

// Voices is a whole piece: named voices that play at the same time.
type Voices struct {
	parts map[string]Voice
}

func NewVoices() Voices { return Voices{parts: map[string]Voice{}} }

// SingleVoice returns a piece holding v under DefaultVoice.
func SingleVoice(v Voice) Voices { return NewVoices().Change(DefaultVoice, v) }

func (vs Voices) Kind() Kind { return KindVoices }

// Names returns the voice names in sorted order.
func (vs Voices) Names() []string {
	names := make([]string, 0, len(vs.parts))
	for name := range vs.parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (vs Voices) Len() int { return len(vs.parts) }

func (vs Voices) Voice(name string) (Voice, bool) {
	v, ok := vs.parts[name]
	return v, ok
}

// Append adds v under name, concatenating onto any voice already there.
func (vs Voices) Append(name string, v Voice) Voices {
	out := vs.clone()
	if prev, ok := out.parts[name]; ok {
		v = prev.Append(v)
	}
	out.parts[name] = v
	return out
}

// Change replaces the voice stored under name.
func (vs Voices) Change(name string, v Voice) Voices {
	out := vs.clone()
	out.parts[name] = v
	return out
}

func (vs Voices) clone() Voices {
	out := Voices{parts: make(map[string]Voice, len(vs.parts)+1)}
	for k, v := range vs.parts {
		out.parts[k] = v
	}
	return out
}

// NumMeasures is the longest performed measure count of any voice.
func (vs Voices) NumMeasures() int {
	n := 0
	for _, v := range vs.parts {
		if c := v.NumMeasures(); c > n {
			n = c
		}
	}
	return n
}

// Duration is the longest voice, since voices sound together.
func (vs Voices) Duration() Beats {
	var d Beats
	for _, v := range vs.parts {
		d = MaxBeats(d, v.Duration())
	}
	return d
}

func (vs Voices) Rescale(scale Beats) Music {
	checkScale(scale)
	out := Voices{parts: make(map[string]Voice, len(vs.parts))}
	for name, v := range vs.parts {
		out.parts[name] = v.Rescale(scale).(Voice)
	}
	return out
}

// Play walks all voices measure by measure. Every voice's i-th measure
// starts at the same beat and the next index starts after the longest of
// them. A voice that runs out of measures simply stops contributing.
func (vs Voices) Play(sink Sink, at Beats) {
	names := vs.Names()
	total := vs.NumMeasures()
	for i := 0; i < total; i++ {
		var step Beats
		for _, name := range names {
			step = MaxBeats(step, vs.parts[name].PlayMeasure(sink, at, i))
		}
		at = at.Add(step)
	}
}

func (vs Voices) Equal(other Music) bool {
	o, ok := other.(Voices)
	if !ok || len(vs.parts) != len(o.parts) {
		return false
	}
	for name, v := range vs.parts {
		ov, ok := o.parts[name]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (vs Voices) String() string {
	var sb strings.Builder
	for i, name := range vs.Names() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("V:" + name + " " + vs.parts[name].String())
	}
	return sb.String()
}

func (Voices) sealed() {}
