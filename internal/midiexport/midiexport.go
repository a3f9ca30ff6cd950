// Package midiexport writes scheduled notes as a Standard MIDI File.
package midiexport

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/abcfm-go/internal/header"
	"github.com/cbegin/abcfm-go/internal/music"
)

// TicksPerQuarter is the file resolution.
const TicksPerQuarter = 960

// Velocity is used for every note-on.
const Velocity = 100

const drumChannel = 9

// ErrTooManyInstruments is returned when a tune needs more instruments than
// there are melodic MIDI channels.
var ErrTooManyInstruments = errors.New("midiexport: more than 15 instruments")

// Tune is what gets exported. Event times are in beats of Meter.Den.
type Tune struct {
	Title          string
	Meter          header.Meter
	BeatsPerMinute float64
	Events         []music.Event
	End            music.Beats
}

type timedMessage struct {
	tick uint32
	off  bool
	msg  smf.Message
}

// Encode builds a type 1 file: a conductor track followed by one track per
// instrument in program order.
func Encode(t Tune) (*smf.SMF, error) {
	if t.Meter.Den <= 0 || t.Meter.Num <= 0 {
		return nil, fmt.Errorf("midiexport: invalid meter %v", t.Meter)
	}
	perBeat := int64(TicksPerQuarter * 4 / t.Meter.Den)
	if perBeat <= 0 {
		return nil, fmt.Errorf("midiexport: meter %v is finer than the file resolution", t.Meter)
	}

	byProgram := map[music.Instrument][]music.Event{}
	for _, ev := range t.Events {
		byProgram[ev.Instrument] = append(byProgram[ev.Instrument], ev)
	}
	programs := make([]music.Instrument, 0, len(byProgram))
	for p := range byProgram {
		programs = append(programs, p)
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i] < programs[j] })
	if len(programs) > 15 {
		return nil, ErrTooManyInstruments
	}

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	end := uint32(t.End.Ticks(perBeat))
	for _, ev := range t.Events {
		if e := uint32(ev.End().Ticks(perBeat)); e > end {
			end = e
		}
	}
	if err := s.Add(conductorTrack(t, end)); err != nil {
		return nil, fmt.Errorf("midiexport: %w", err)
	}

	ch := uint8(0)
	for _, p := range programs {
		if ch == drumChannel {
			ch++
		}
		if err := s.Add(instrumentTrack(p, ch, byProgram[p], perBeat)); err != nil {
			return nil, fmt.Errorf("midiexport: %w", err)
		}
		ch++
	}
	return s, nil
}

// Write encodes t and writes it to w.
func Write(w io.Writer, t Tune) error {
	s, err := Encode(t)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("midiexport: writing file: %w", err)
	}
	return nil
}

// QuarterNoteBPM converts a rate in meter beats to quarter notes per minute.
func QuarterNoteBPM(bpm float64, m header.Meter) float64 {
	return bpm * 4 / float64(m.Den)
}

func conductorTrack(t Tune, end uint32) smf.Track {
	title := t.Title
	if title == "" {
		title = header.DefaultTitle
	}
	bpm := t.BeatsPerMinute
	if bpm <= 0 {
		bpm = header.DefaultBPM
	}
	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(title))})
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTempo(QuarterNoteBPM(bpm, t.Meter)))})
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTimeSig(uint8(t.Meter.Num), uint8(t.Meter.Den), 24, 8))})
	// EOT sits at the end of the tune so trailing rests survive.
	track = append(track, smf.Event{Delta: end, Message: smf.EOT})
	return track
}

func instrumentTrack(program music.Instrument, ch uint8, events []music.Event, perBeat int64) smf.Track {
	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(program.String()))})
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(midi.ProgramChange(ch, uint8(program)))})

	msgs := make([]timedMessage, 0, len(events)*2)
	for _, ev := range events {
		start := uint32(ev.Start.Ticks(perBeat))
		stop := uint32(ev.End().Ticks(perBeat))
		if stop <= start {
			continue
		}
		key := uint8(clampKey(ev.Pitch))
		msgs = append(msgs,
			timedMessage{tick: start, msg: smf.Message(midi.NoteOn(ch, key, Velocity))},
			timedMessage{tick: stop, off: true, msg: smf.Message(midi.NoteOff(ch, key))},
		)
	}
	// At equal times note-offs go first so a repeated key is not cut short.
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	var last uint32
	for _, m := range msgs {
		track = append(track, smf.Event{Delta: m.tick - last, Message: m.msg})
		last = m.tick
	}
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

func clampKey(k int) int {
	if k < 0 {
		return 0
	}
	if k > 127 {
		return 127
	}
	return k
}
