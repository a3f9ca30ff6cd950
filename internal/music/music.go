// Package music is the immutable performance model: notes, rests, chords,
// tuplets, measures, voices and whole multi-voice pieces. Every value knows
// its exact duration in beats and can play itself into a Sink.
package music

import "fmt"

type Kind int

const (
	KindNote Kind = iota + 1
	KindRest
	KindChord
	KindTuplet
	KindMeasure
	KindVoice
	KindVoices
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindRest:
		return "rest"
	case KindChord:
		return "chord"
	case KindTuplet:
		return "tuplet"
	case KindMeasure:
		return "measure"
	case KindVoice:
		return "voice"
	case KindVoices:
		return "voices"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Music is implemented only by the variants in this package.
type Music interface {
	Kind() Kind
	// Duration is the exact length in beats.
	Duration() Beats
	// Rescale returns a copy whose duration is scale times the original.
	// It panics with a *ConfigurationError if scale is negative.
	Rescale(scale Beats) Music
	// Play emits every note starting at the given beat.
	Play(sink Sink, at Beats)
	Equal(other Music) bool
	String() string

	sealed()
}

func checkScale(scale Beats) {
	if scale.Sign() < 0 {
		panic(configErrorf("negative rescale factor %s", scale))
	}
}

func checkDuration(d Beats) {
	if d.Sign() < 0 {
		panic(configErrorf("negative duration %s", d))
	}
}

// Transpose returns m with every note shifted by semitones.
func Transpose(m Music, semitones int) Music {
	return mapNotes(m, func(n Note) Note {
		n.pitch = n.pitch.Transpose(semitones)
		return n
	})
}

// Orchestrate returns m with every note assigned to inst.
func Orchestrate(m Music, inst Instrument) Music {
	return mapNotes(m, func(n Note) Note {
		n.instrument = inst
		return n
	})
}

func mapNotes(m Music, fn func(Note) Note) Music {
	switch v := m.(type) {
	case Note:
		return fn(v)
	case Rest:
		return v
	case Chord:
		notes := make([]Note, len(v.notes))
		for i, n := range v.notes {
			notes[i] = fn(n)
		}
		return newChord(notes)
	case Tuplet:
		members := make([]Music, len(v.members))
		for i, el := range v.members {
			members[i] = mapNotes(el, fn)
		}
		return Tuplet{members: members, factor: v.factor}
	case Measure:
		elems := make([]Music, len(v.elems))
		for i, el := range v.elems {
			elems[i] = mapNotes(el, fn)
		}
		v.elems = elems
		return v
	case Voice:
		measures := make([]Measure, len(v.measures))
		for i, ms := range v.measures {
			measures[i] = mapNotes(ms, fn).(Measure)
		}
		return NewVoice(measures...)
	case Voices:
		out := Voices{parts: make(map[string]Voice, len(v.parts))}
		for name, part := range v.parts {
			out.parts[name] = mapNotes(part, fn).(Voice)
		}
		return out
	}
	panic(fmt.Sprintf("music: unknown variant %T", m))
}

func playSequence(elems []Music, sink Sink, at Beats) {
	for _, el := range elems {
		el.Play(sink, at)
		at = at.Add(el.Duration())
	}
}

func sumDurations(elems []Music) Beats {
	var total Beats
	for _, el := range elems {
		total = total.Add(el.Duration())
	}
	return total
}

func equalSequences(a, b []Music) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
