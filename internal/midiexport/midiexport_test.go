package midiexport

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/abcfm-go/internal/header"
	"github.com/cbegin/abcfm-go/internal/music"
)

type noteEvent struct {
	tick uint32
	on   bool
	key  uint8
}

func trackNotes(tr smf.Track) []noteEvent {
	var out []noteEvent
	var abs uint32
	for _, ev := range tr {
		abs += ev.Delta
		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteOn(&ch, &key, &vel):
			out = append(out, noteEvent{tick: abs, on: vel > 0, key: key})
		case ev.Message.GetNoteOff(&ch, &key, &vel):
			out = append(out, noteEvent{tick: abs, key: key})
		}
	}
	return out
}

func roundTrip(t *testing.T, tune Tune) *smf.SMF {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, tune); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	return s
}

func TestConductorTrack(t *testing.T) {
	s := roundTrip(t, Tune{
		Title:          "Scale",
		Meter:          header.Meter{Num: 6, Den: 8},
		BeatsPerMinute: 180,
		Events:         []music.Event{{Pitch: 60, Start: music.Whole(0), Duration: music.Whole(1)}},
		End:            music.Whole(6),
	})
	if tf, ok := s.TimeFormat.(smf.MetricTicks); !ok || tf != TicksPerQuarter {
		t.Fatalf("time format = %v", s.TimeFormat)
	}
	if len(s.Tracks) != 2 {
		t.Fatalf("expected conductor plus one instrument track, got %d", len(s.Tracks))
	}
	var name string
	var bpm float64
	var num, den uint8
	var end uint32
	for _, ev := range s.Tracks[0] {
		end += ev.Delta
		var cpt, dsq uint8
		switch {
		case ev.Message.GetMetaTrackName(&name):
		case ev.Message.GetMetaTempo(&bpm):
		case ev.Message.GetMetaTimeSig(&num, &den, &cpt, &dsq):
		}
	}
	if name != "Scale" {
		t.Fatalf("title = %q", name)
	}
	if math.Abs(bpm-90) > 0.01 {
		t.Fatalf("180 eighths per minute is 90 quarters, got %v", bpm)
	}
	if num != 6 || den != 8 {
		t.Fatalf("time signature = %d/%d", num, den)
	}
	// Six eighth-note beats is three quarters.
	if end != 3*TicksPerQuarter {
		t.Fatalf("conductor ends at %d", end)
	}
}

func TestNoteOffsPrecedeNoteOns(t *testing.T) {
	s := roundTrip(t, Tune{
		Meter:          header.Meter{Num: 4, Den: 4},
		BeatsPerMinute: 120,
		Events: []music.Event{
			{Pitch: 60, Start: music.Whole(0), Duration: music.Whole(1)},
			{Pitch: 60, Start: music.Whole(1), Duration: music.NewBeats(1, 3)},
			{Pitch: 64, Start: music.Whole(1), Duration: music.Whole(0)},
		},
	})
	got := trackNotes(s.Tracks[1])
	want := []noteEvent{
		{0, true, 60},
		{TicksPerQuarter, false, 60},
		{TicksPerQuarter, true, 60},
		{TicksPerQuarter + TicksPerQuarter/3, false, 60},
	}
	if len(got) != len(want) {
		t.Fatalf("notes = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("note %d = %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestOneTrackPerInstrument(t *testing.T) {
	var events []music.Event
	for p := 0; p < 11; p++ {
		events = append(events, music.Event{Pitch: 60, Instrument: music.Instrument(p), Start: music.Whole(0), Duration: music.Whole(1)})
	}
	s := roundTrip(t, Tune{Meter: header.Meter{Num: 4, Den: 4}, BeatsPerMinute: 120, Events: events})
	if len(s.Tracks) != 12 {
		t.Fatalf("tracks = %d", len(s.Tracks))
	}
	var ch, key, vel uint8
	for _, ev := range s.Tracks[10] {
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			break
		}
	}
	if ch != 10 {
		t.Fatalf("drum channel should be skipped, tenth instrument on %d", ch)
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := Encode(Tune{}); err == nil {
		t.Fatalf("expected an error for a zero meter")
	}
	var events []music.Event
	for p := 0; p < 16; p++ {
		events = append(events, music.Event{Pitch: 60, Instrument: music.Instrument(p), Duration: music.Whole(1)})
	}
	_, err := Encode(Tune{Meter: header.CommonTime, Events: events})
	if !errors.Is(err, ErrTooManyInstruments) {
		t.Fatalf("err = %v", err)
	}
}

func TestQuarterNoteBPM(t *testing.T) {
	for _, tc := range []struct {
		bpm  float64
		m    header.Meter
		want float64
	}{
		{100, header.Meter{Num: 4, Den: 4}, 100},
		{180, header.Meter{Num: 6, Den: 8}, 90},
		{60, header.Meter{Num: 2, Den: 2}, 120},
	} {
		if got := QuarterNoteBPM(tc.bpm, tc.m); got != tc.want {
			t.Fatalf("QuarterNoteBPM(%v, %v) = %v want %v", tc.bpm, tc.m, got, tc.want)
		}
	}
}
