package music

import (
	"errors"
	"testing"
)

func note(letter byte, dur Beats) Note {
	return NewNote(dur, NewPitch(letter), Piano)
}

func one() Beats { return Whole(1) }

func TestPitchSemitones(t *testing.T) {
	cases := []struct {
		p    Pitch
		want int
	}{
		{NewPitch('C'), 60},
		{NewPitch('A'), 69},
		{NewPitch('B'), 71},
		{NewPitch('C').OctaveUp(), 72},
		{NewPitch('B').Flat(), 70},
		{NewPitch('F').With(Sharp), 66},
		{NewPitch('E').With(DoubleFlat).OctaveDown(), 50},
	}
	for _, tc := range cases {
		if got := tc.p.Semitone(); got != tc.want {
			t.Fatalf("%s semitone = %d, want %d", tc.p, got, tc.want)
		}
	}
	if !NewPitch('C').Sharp().Equal(NewPitch('D').Flat()) {
		t.Fatalf("enharmonic pitches should be equal")
	}
	if got := NewPitch('B').Flat().OctaveDown().String(); got != "_B3" {
		t.Fatalf("pitch string = %q", got)
	}
}

func TestRescaleScalesDuration(t *testing.T) {
	c, err := NewChord(note('C', one()), note('E', NewBeats(1, 2)))
	if err != nil {
		t.Fatalf("chord: %v", err)
	}
	tup, err := NewTuplet(note('C', one()), note('D', one()), note('E', one()))
	if err != nil {
		t.Fatalf("tuplet: %v", err)
	}
	m := NewMeasure([]Music{note('G', one()), NewRest(NewBeats(1, 2)), c, tup}, 4, Markers{})
	v := NewVoice(m, NewMeasure([]Music{note('A', Whole(2))}, 4, Markers{EndRepeat: true}))
	values := []Music{note('C', NewBeats(3, 2)), NewRest(one()), c, tup, m, v, SingleVoice(v)}
	scales := []Beats{Whole(0), NewBeats(1, 3), one(), NewBeats(3, 2), Whole(4)}
	for _, val := range values {
		for _, s := range scales {
			got := val.Rescale(s).Duration()
			want := val.Duration().Mul(s)
			if got != want {
				t.Fatalf("%s rescaled by %s lasts %s, want %s", val.Kind(), s, got, want)
			}
		}
		if !val.Rescale(one()).Equal(val) {
			t.Fatalf("%s rescaled by 1 should equal itself", val.Kind())
		}
	}
}

func TestRescaleNegativePanics(t *testing.T) {
	defer func() {
		r := recover()
		var ce *ConfigurationError
		err, _ := r.(error)
		if !errors.As(err, &ce) {
			t.Fatalf("expected ConfigurationError panic, got %v", r)
		}
	}()
	note('C', one()).Rescale(Whole(-1))
}

func TestTupletDurations(t *testing.T) {
	d := NewBeats(1, 2)
	for _, n := range []int{2, 3, 4} {
		elems := make([]Music, n)
		for i := range elems {
			elems[i] = note('C', d)
		}
		tup, err := NewTuplet(elems...)
		if err != nil {
			t.Fatalf("tuplet %d: %v", n, err)
		}
		f, _ := TupletFactor(n)
		want := d.MulInt(int64(n)).Mul(f)
		if got := tup.Duration(); got != want {
			t.Fatalf("%d-tuplet lasts %s, want %s", n, got, want)
		}
		rescaled := tup.Rescale(Whole(2)).(Tuplet)
		if got := rescaled.Duration(); got != want.MulInt(2) {
			t.Fatalf("rescaled %d-tuplet lasts %s, want %s", n, got, want.MulInt(2))
		}
	}
}

func TestTupletRejectsBadMembers(t *testing.T) {
	var ce *ConfigurationError
	if _, err := NewTuplet(note('C', one())); !errors.As(err, &ce) {
		t.Fatalf("single-member tuplet should fail, got %v", err)
	}
	five := []Music{note('C', one()), note('C', one()), note('C', one()), note('C', one()), note('C', one())}
	if _, err := NewTuplet(five...); !errors.As(err, &ce) {
		t.Fatalf("five-member tuplet should fail, got %v", err)
	}
	if _, err := NewTuplet(note('C', one()), NewRest(one())); !errors.As(err, &ce) {
		t.Fatalf("tuplet with a rest should fail, got %v", err)
	}
	if _, err := NewTuplet(note('C', one()), note('D', Whole(2))); !errors.As(err, &ce) {
		t.Fatalf("unequal tuplet should fail, got %v", err)
	}
}

func TestChordSetSemantics(t *testing.T) {
	a, _ := NewChord(note('E', one()), note('C', one()), note('C', one()))
	b, _ := NewChord(note('C', one()), note('E', one()))
	if !a.Equal(b) {
		t.Fatalf("chords with the same notes should be equal: %s vs %s", a, b)
	}
	if len(a.Notes()) != 2 {
		t.Fatalf("duplicate note should collapse, got %d notes", len(a.Notes()))
	}
	long, _ := NewChord(note('C', one()), note('G', Whole(3)))
	if long.Duration() != Whole(3) {
		t.Fatalf("chord duration = %s, want 3", long.Duration())
	}
	if _, err := NewChord(); err == nil {
		t.Fatalf("empty chord should fail")
	}
}

func TestMeasurePlaysEndToEnd(t *testing.T) {
	c, _ := NewChord(note('C', one()), note('E', one()))
	m := NewMeasure([]Music{note('G', NewBeats(1, 2)), NewRest(NewBeats(1, 2)), c}, 4, Markers{})
	events := Collect(m)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Start != (Beats{}) || events[0].Pitch != 67 {
		t.Fatalf("first event = %+v", events[0])
	}
	for _, ev := range events[1:] {
		if ev.Start != one() {
			t.Fatalf("chord note should start at beat 1, got %s", ev.Start)
		}
	}
	if m.Duration() != Whole(2) {
		t.Fatalf("measure duration = %s", m.Duration())
	}
}

func TestMeasureRescaleNominal(t *testing.T) {
	m := NewMeasure(nil, 3, Markers{StartRepeat: true})
	r := m.Rescale(NewBeats(1, 2)).(Measure)
	if r.Nominal() != 1 {
		t.Fatalf("nominal = %d, want 1", r.Nominal())
	}
	if !r.Markers().StartRepeat {
		t.Fatalf("markers should survive rescale")
	}
}

func TestTransposeAndOrchestrate(t *testing.T) {
	c, _ := NewChord(note('C', one()), note('E', one()))
	tup, _ := NewTuplet(note('C', one()), note('D', one()))
	v := SingleVoice(NewVoice(NewMeasure([]Music{c, tup, NewRest(one())}, 4, Markers{})))
	up := Transpose(v, 12)
	for _, ev := range Collect(up) {
		if ev.Pitch < 72 {
			t.Fatalf("transposed pitch %d should be at least 72", ev.Pitch)
		}
	}
	if up.Duration() != v.Duration() {
		t.Fatalf("transpose changed the duration")
	}
	for _, ev := range Collect(Orchestrate(v, Violin)) {
		if ev.Instrument != Violin {
			t.Fatalf("instrument = %s, want violin", ev.Instrument)
		}
	}
}

func TestEnharmonicChordMembersCollapse(t *testing.T) {
	q := NewBeats(1, 4)
	sharpC := NewNote(q, NewPitch('C').Sharp(), Piano)
	flatD := NewNote(q, NewPitch('D').Flat(), Piano)
	c, err := NewChord(sharpC, flatD)
	if err != nil {
		t.Fatalf("NewChord: %v", err)
	}
	if n := len(c.Notes()); n != 1 {
		t.Fatalf("chord kept %d notes, want 1", n)
	}
	if !sharpC.Equal(flatD) {
		t.Fatalf("enharmonic notes should be equal")
	}
	d, _ := NewChord(flatD, NewNote(q, NewPitch('E'), Piano))
	e, _ := NewChord(NewNote(q, NewPitch('E'), Piano), sharpC)
	if !d.Equal(e) {
		t.Fatalf("chords differing only in spelling should be equal")
	}
}
