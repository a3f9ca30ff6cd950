package music

import (
	"sort"
	"strings"
)

// Chord is a set of notes that start together. Members are deduplicated by
// Note.Equal, which ignores enharmonic spelling.
type Chord struct {
	notes []Note // sorted, no duplicates
}

// NewChord returns a *ConfigurationError if notes is empty.
func NewChord(notes ...Note) (Chord, error) {
	if len(notes) == 0 {
		return Chord{}, configErrorf("chord needs at least one note")
	}
	return newChord(notes), nil
}

func newChord(notes []Note) Chord {
	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool { return noteLess(sorted[i], sorted[j]) })
	out := sorted[:0]
	for _, n := range sorted {
		if len(out) > 0 && out[len(out)-1].Equal(n) {
			continue
		}
		out = append(out, n)
	}
	return Chord{notes: out}
}

func noteLess(a, b Note) bool {
	if sa, sb := a.pitch.Semitone(), b.pitch.Semitone(); sa != sb {
		return sa < sb
	}
	if c := a.duration.Cmp(b.duration); c != 0 {
		return c < 0
	}
	return a.instrument < b.instrument
}

func (c Chord) Kind() Kind { return KindChord }

// Notes returns the members lowest first.
func (c Chord) Notes() []Note {
	out := make([]Note, len(c.notes))
	copy(out, c.notes)
	return out
}

func (c Chord) Duration() Beats {
	var d Beats
	for _, n := range c.notes {
		d = MaxBeats(d, n.duration)
	}
	return d
}

func (c Chord) Rescale(scale Beats) Music {
	checkScale(scale)
	notes := make([]Note, len(c.notes))
	for i, n := range c.notes {
		notes[i] = n.scaled(scale)
	}
	return newChord(notes)
}

func (c Chord) Play(sink Sink, at Beats) {
	for _, n := range c.notes {
		n.Play(sink, at)
	}
}

func (c Chord) Equal(other Music) bool {
	o, ok := other.(Chord)
	if !ok || len(c.notes) != len(o.notes) {
		return false
	}
	for i := range c.notes {
		if !c.notes[i].Equal(o.notes[i]) {
			return false
		}
	}
	return true
}

func (c Chord) String() string {
	parts := make([]string, len(c.notes))
	for i, n := range c.notes {
		parts[i] = n.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (Chord) sealed() {}
