package music

import "sort"

// Sink receives the notes of a piece as it plays.
type Sink interface {
	AddNote(pitch int, inst Instrument, start, duration Beats)
}

// Event is one scheduled note.
type Event struct {
	Pitch      int
	Instrument Instrument
	Start      Beats
	Duration   Beats
}

// End is the beat at which the note stops sounding.
func (e Event) End() Beats { return e.Start.Add(e.Duration) }

// EventList is a Sink that keeps every note in emission order.
type EventList []Event

func (l *EventList) AddNote(pitch int, inst Instrument, start, duration Beats) {
	*l = append(*l, Event{Pitch: pitch, Instrument: inst, Start: start, Duration: duration})
}

// Collect plays m from beat zero and returns its notes ordered by start
// beat. Notes starting together keep their emission order.
func Collect(m Music) []Event {
	var l EventList
	m.Play(&l, Beats{})
	sort.SliceStable(l, func(i, j int) bool { return l[i].Start.Less(l[j].Start) })
	return l
}
