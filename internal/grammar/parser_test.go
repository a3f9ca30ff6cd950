package grammar

import (
	"errors"
	"strings"
	"testing"
)

const seedHeader = "X:1\nT:Scale\nM:4/4\nL:1/8\nQ:1/8=100\nK:C\n"

func mustParse(t *testing.T, text string) *Node {
	t.Helper()
	tree, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tree
}

func measures(t *testing.T, tree *Node) []*Node {
	t.Helper()
	var out []*Node
	for _, l := range tree.Child(KindMusic).ChildrenOf(KindLine) {
		out = append(out, l.ChildrenOf(KindMeasure)...)
	}
	return out
}

func TestParseHeaderFields(t *testing.T) {
	tree := mustParse(t, "X: 7\nT: Title here\nC: Someone\nV: upper clef=treble\nK: F#m\nA|")
	hdr := tree.Child(KindHeader)
	if hdr == nil {
		t.Fatalf("missing header node")
	}
	if got := hdr.Child(KindFieldNumber).Text; got != "7" {
		t.Fatalf("index text = %q", got)
	}
	if got := hdr.Child(KindFieldTitle).Text; got != "Title here" {
		t.Fatalf("title text = %q", got)
	}
	if got := hdr.Child(KindFieldVoice).Text; got != "upper" {
		t.Fatalf("voice name = %q", got)
	}
	key := hdr.Child(KindFieldKey)
	if key.Child(KindBaseNote).Text != "F" || key.Child(KindKeyAccidental).Text != "#" || key.Child(KindModeMinor) == nil {
		t.Fatalf("unexpected key tree %s", key)
	}
}

func TestParseKeyModes(t *testing.T) {
	cases := map[string]bool{"C": false, "Am": true, "Ebmaj": false, "Dmin": true, "G minor": true, "Bb": false}
	for k, minor := range cases {
		tree := mustParse(t, "X:1\nK:"+k+"\n")
		got := tree.Child(KindHeader).Child(KindFieldKey).Child(KindModeMinor) != nil
		if got != minor {
			t.Fatalf("%s: minor = %v", k, got)
		}
	}
}

func TestParseHeaderErrors(t *testing.T) {
	cases := []string{
		"",
		"T:No index\nK:C\n",
		"X:1\nT:No key\n",
		"X:one\nK:C\n",
		"X:1\nK:H\n",
		"X:1\nK:Cdorian\n",
		"X:1\nABC\nK:C\n",
	}
	for _, in := range cases {
		_, err := Parse(in)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%q: expected ParseError, got %v", in, err)
		}
		if !strings.HasPrefix(pe.Msg, "invalid") {
			t.Fatalf("%q: unexpected message %q", in, pe.Msg)
		}
	}
}

func TestUnknownHeaderFieldKept(t *testing.T) {
	tree := mustParse(t, "X:1\nR:reel\nK:C\n")
	other := tree.Child(KindHeader).Child(KindFieldOther)
	if other == nil || other.Text != "R:reel" {
		t.Fatalf("expected FieldOther node, got %s", tree.Child(KindHeader))
	}
}

func TestParseSeedMeasure(t *testing.T) {
	tree := mustParse(t, seedHeader+"G2 A2 B2 c2|\n")
	ms := measures(t, tree)
	if len(ms) != 1 {
		t.Fatalf("expected 1 measure, got %d", len(ms))
	}
	notes := ms[0].ChildrenOf(KindNote)
	if len(notes) != 4 {
		t.Fatalf("expected 4 notes, got %d", len(notes))
	}
	want := []string{"G", "A", "B", "c"}
	for i, n := range notes {
		if got := n.Child(KindPitch).Child(KindBaseNote).Text; got != want[i] {
			t.Fatalf("note %d letter = %q", i, got)
		}
		if got := n.Child(KindNoteLength).Text; got != "2" {
			t.Fatalf("note %d length = %q", i, got)
		}
	}
	if bar := ms[0].Child(KindBarline); bar == nil || bar.Text != "|" {
		t.Fatalf("expected plain barline, got %v", bar)
	}
}

func TestParsePitchParts(t *testing.T) {
	tree := mustParse(t, seedHeader+"^^c'', __B,3/2 =e/ z//\n")
	notes := measures(t, tree)[0].ChildrenOf(KindNote)
	if len(notes) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(notes))
	}
	p := notes[0].Child(KindPitch)
	if p.Child(KindAccidental).Text != "^^" || p.Child(KindOctave).Text != "''," {
		t.Fatalf("unexpected pitch %s", p)
	}
	if notes[1].Child(KindNoteLength).Text != "3/2" {
		t.Fatalf("unexpected length %s", notes[1])
	}
	if notes[2].Child(KindNoteLength).Text != "/" {
		t.Fatalf("unexpected length %s", notes[2])
	}
	if notes[3].Child(KindRest) == nil || notes[3].Child(KindNoteLength).Text != "//" {
		t.Fatalf("unexpected rest %s", notes[3])
	}
}

func TestParseBarlinesAndPrefixes(t *testing.T) {
	tree := mustParse(t, seedHeader+"|: A B :|[1 C D :|2 E F || G |] A [| B\n|: c |1 d :: e |2 f\n")
	type shape struct{ prefix, bar string }
	want := []shape{
		{"|:", ":|"},
		{"[1", ":|"},
		{"[2", "||"},
		{"", "|]"},
		{"", "[|"},
		{"", ""},
		{"|:", "|"},
		{"[1", ":|"},
		{"|:", "|"},
		{"[2", ""},
	}
	ms := measures(t, tree)
	if len(ms) != len(want) {
		t.Fatalf("expected %d measures, got %d: %s", len(want), len(ms), tree.Child(KindMusic))
	}
	for i, m := range ms {
		var got shape
		if p := m.Child(KindMeasurePrefix); p != nil {
			got.prefix = p.Text
		}
		if b := m.Child(KindBarline); b != nil {
			got.bar = b.Text
		}
		if got != want[i] {
			t.Fatalf("measure %d: got %+v want %+v", i, got, want[i])
		}
	}
}

func TestBarlineAfterEmptyMeasureUpgrades(t *testing.T) {
	tree := mustParse(t, seedHeader+"A B | :|\n")
	ms := measures(t, tree)
	if len(ms) != 1 || ms[0].Child(KindBarline).Text != ":|" {
		t.Fatalf("expected one end-repeat measure, got %s", tree.Child(KindMusic))
	}
}

func TestParseChordAndTuplet(t *testing.T) {
	tree := mustParse(t, seedHeader+"[D2f2a2] (3ABc (2[CE][DF]|\n")
	m := measures(t, tree)[0]
	chord := m.Child(KindChord)
	if chord == nil || len(chord.ChildrenOf(KindNote)) != 3 {
		t.Fatalf("unexpected chord %s", m)
	}
	tuplets := m.ChildrenOf(KindTuplet)
	if len(tuplets) != 2 {
		t.Fatalf("expected 2 tuplets, got %s", m)
	}
	if tuplets[0].Child(KindTupletSpec).Text != "3" || len(tuplets[0].ChildrenOf(KindNote)) != 3 {
		t.Fatalf("unexpected triplet %s", tuplets[0])
	}
	if len(tuplets[1].ChildrenOf(KindChord)) != 2 {
		t.Fatalf("unexpected duplet %s", tuplets[1])
	}
}

func TestParseVoices(t *testing.T) {
	tree := mustParse(t, "X:1\nV:1\nV:2\nK:C\nV:1\nABc|\nV:2 % lower\nCDE|\nV:1\ndef|\n")
	sections := tree.Child(KindMusic).ChildrenOf(KindVoiceSection)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	names := []string{"1", "2", "1"}
	for i, s := range sections {
		if s.Child(KindVoiceName).Text != names[i] {
			t.Fatalf("section %d name %q", i, s.Child(KindVoiceName).Text)
		}
		if len(s.ChildrenOf(KindLine)) != 1 {
			t.Fatalf("section %d has %d lines", i, len(s.ChildrenOf(KindLine)))
		}
	}
	if len(tree.Child(KindMusic).ChildrenOf(KindLine)) != 0 {
		t.Fatalf("expected no default lines")
	}
}

func TestCommentsAndBlankLines(t *testing.T) {
	tree := mustParse(t, "% leading\nX:1\n\nK:C % key\n% only a comment\n\nA B|\n")
	if n := len(measures(t, tree)); n != 1 {
		t.Fatalf("expected 1 measure, got %d", n)
	}
}

func TestParseMusicErrors(t *testing.T) {
	cases := []string{
		"A B H|",
		"[ABc",
		"[]",
		"[zA]",
		"(3AB",
		"(A",
		"^^^A",
		"A # B",
		"X:2",
	}
	for _, body := range cases {
		_, err := Parse(seedHeader + body + "\n")
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%q: expected ParseError, got %v", body, err)
		}
		if !strings.HasPrefix(pe.Msg, "invalid music") {
			t.Fatalf("%q: unexpected message %q", body, pe.Msg)
		}
		if pe.Pos < len(seedHeader) {
			t.Fatalf("%q: position %d is inside the header", body, pe.Pos)
		}
	}
}
