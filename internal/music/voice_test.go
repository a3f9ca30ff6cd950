package music

import "testing"

func bar(letter byte, mk Markers) Measure {
	return NewMeasure([]Music{note(letter, Whole(4))}, 4, mk)
}

func letters(measures []Measure) string {
	out := make([]byte, 0, len(measures))
	for _, m := range measures {
		out = append(out, m.elems[0].(Note).pitch.Letter)
	}
	return string(out)
}

func TestExpandRepeats(t *testing.T) {
	cases := []struct {
		name     string
		measures []Measure
		want     string
	}{
		{
			name:     "no markers",
			measures: []Measure{bar('A', Markers{}), bar('B', Markers{}), bar('C', Markers{})},
			want:     "ABC",
		},
		{
			name:     "simple repeat",
			measures: []Measure{bar('A', Markers{StartRepeat: true}), bar('B', Markers{EndRepeat: true})},
			want:     "ABAB",
		},
		{
			name: "first and second ending",
			measures: []Measure{
				bar('A', Markers{StartRepeat: true}),
				bar('B', Markers{EndRepeat: true, StartFirstEnding: true}),
				bar('C', Markers{StartSecondEnding: true}),
			},
			want: "ABAC",
		},
		{
			name:     "end repeat without start rewinds to beginning",
			measures: []Measure{bar('A', Markers{}), bar('B', Markers{}), bar('C', Markers{EndRepeat: true}), bar('D', Markers{})},
			want:     "ABCABCD",
		},
		{
			name: "later start marker supersedes beginning",
			measures: []Measure{
				bar('A', Markers{}),
				bar('B', Markers{StartRepeat: true}),
				bar('C', Markers{EndRepeat: true}),
			},
			want: "ABCBC",
		},
		{
			name: "major section resets rewind point",
			measures: []Measure{
				bar('A', Markers{EndMajorSection: true}),
				bar('B', Markers{}),
				bar('C', Markers{EndRepeat: true}),
			},
			want: "ABCBC",
		},
		{
			name: "multi-measure first ending",
			measures: []Measure{
				bar('A', Markers{StartRepeat: true}),
				bar('B', Markers{StartFirstEnding: true}),
				bar('C', Markers{EndRepeat: true}),
				bar('D', Markers{StartSecondEnding: true}),
				bar('E', Markers{}),
			},
			want: "ABCADE",
		},
		{
			name: "first ending with nothing after it",
			measures: []Measure{
				bar('A', Markers{StartRepeat: true}),
				bar('B', Markers{EndRepeat: true, StartFirstEnding: true}),
			},
			want: "ABA",
		},
		{
			name: "consecutive repeats without start markers",
			measures: []Measure{
				bar('A', Markers{}),
				bar('B', Markers{EndRepeat: true}),
				bar('C', Markers{}),
				bar('D', Markers{EndRepeat: true}),
			},
			want: "ABABCDCD",
		},
		{
			name: "later end repeat takes the first ending jump again",
			measures: []Measure{
				bar('A', Markers{}),
				bar('B', Markers{EndRepeat: true, StartFirstEnding: true}),
				bar('C', Markers{StartSecondEnding: true}),
				bar('D', Markers{EndRepeat: true}),
			},
			want: "ABACDA",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVoice(tc.measures...)
			if got := letters(v.Expanded()); got != tc.want {
				t.Fatalf("expanded = %s, want %s", got, tc.want)
			}
			if v.NumMeasures() != len(tc.want) {
				t.Fatalf("NumMeasures = %d, want %d", v.NumMeasures(), len(tc.want))
			}
			if want := Whole(int64(4 * len(tc.want))); v.Duration() != want {
				t.Fatalf("duration = %s, want %s", v.Duration(), want)
			}
		})
	}
}

func TestVoiceAppendKeepsWrittenOrder(t *testing.T) {
	a := NewVoice(bar('A', Markers{StartRepeat: true}))
	b := NewVoice(bar('B', Markers{EndRepeat: true}))
	joined := a.Append(b)
	if got := letters(joined.Measures()); got != "AB" {
		t.Fatalf("written = %s", got)
	}
	if got := letters(joined.Expanded()); got != "ABAB" {
		t.Fatalf("expanded = %s", got)
	}
	if len(a.Measures()) != 1 {
		t.Fatalf("append mutated the receiver")
	}
}

func TestVoicesLockStep(t *testing.T) {
	upper := NewVoice(
		NewMeasure([]Music{note('C', Whole(2))}, 4, Markers{}),
		NewMeasure([]Music{note('D', Whole(4))}, 4, Markers{}),
		NewMeasure([]Music{note('E', Whole(1))}, 4, Markers{}),
	)
	lower := NewVoice(
		NewMeasure([]Music{note('G', Whole(3))}, 4, Markers{}),
		NewMeasure([]Music{note('A', Whole(1))}, 4, Markers{}),
	)
	vs := NewVoices().Append("upper", upper).Append("lower", lower)
	starts := map[int]Beats{}
	for _, ev := range Collect(vs) {
		starts[ev.Pitch] = ev.Start
	}
	want := map[int]Beats{
		60: Whole(0), 67: Whole(0), // index 0, longest is 3
		62: Whole(3), 69: Whole(3), // index 1, longest is 4
		64: Whole(7), // index 2, only upper
	}
	for p, w := range want {
		if starts[p] != w {
			t.Fatalf("pitch %d starts at %s, want %s", p, starts[p], w)
		}
	}
	if vs.Duration() != upper.Duration() {
		t.Fatalf("voices duration = %s, want %s", vs.Duration(), upper.Duration())
	}
}

func TestVoicesAppendAndChange(t *testing.T) {
	vs := NewVoices().Append("v", NewVoice(bar('A', Markers{})))
	vs2 := vs.Append("v", NewVoice(bar('B', Markers{})))
	got, _ := vs2.Voice("v")
	if letters(got.Measures()) != "AB" {
		t.Fatalf("append should concatenate, got %s", letters(got.Measures()))
	}
	orig, _ := vs.Voice("v")
	if letters(orig.Measures()) != "A" {
		t.Fatalf("append mutated the receiver")
	}
	vs3 := vs2.Change("v", NewVoice(bar('C', Markers{})))
	got, _ = vs3.Voice("v")
	if letters(got.Measures()) != "C" {
		t.Fatalf("change should replace, got %s", letters(got.Measures()))
	}
	if names := SingleVoice(got).Names(); len(names) != 1 || names[0] != DefaultVoice {
		t.Fatalf("single voice names = %v", names)
	}
}

func TestMeasureStringShowsEveryMarker(t *testing.T) {
	q := NewBeats(1, 4)
	c := NewNote(q, NewPitch('C'), Piano)
	for _, tc := range []struct {
		mk   Markers
		want string
	}{
		{Markers{}, "| C4*1/4 |"},
		{Markers{StartRepeat: true, StartFirstEnding: true}, "|:[1 C4*1/4 |"},
		{Markers{StartSecondEnding: true, EndRepeat: true}, "[2 C4*1/4 :|"},
		{Markers{EndRepeat: true, EndMajorSection: true}, "| C4*1/4 :| ||"},
	} {
		if got := NewMeasure([]Music{c}, 4, tc.mk).String(); got != tc.want {
			t.Fatalf("%v: got %q want %q", tc.mk, got, tc.want)
		}
	}
}
