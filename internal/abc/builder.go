// Package abc builds a Song from ABC notation text: the header plus an
// immutable tree of measures grouped into voices.
package abc

import (
	"fmt"
	"strconv"

	"github.com/cbegin/abcfm-go/internal/grammar"
	"github.com/cbegin/abcfm-go/internal/header"
	"github.com/cbegin/abcfm-go/internal/music"
)

// Song is a parsed tune.
type Song struct {
	Header header.Header
	Music  music.Voices
}

func (s *Song) Duration() music.Beats { return s.Music.Duration() }

func (s *Song) String() string {
	return s.Header.String() + "\n" + s.Music.String()
}

// Parse scans and builds text. Errors are *grammar.ParseError for text of the
// wrong shape and *music.ConfigurationError for well-formed but impossible
// values.
func Parse(text string) (*Song, error) {
	tree, err := grammar.Parse(text)
	if err != nil {
		return nil, err
	}
	return Build(tree)
}

// maxTuneBeats bounds a tune's length so that tick conversion stays in
// int64 at any sequencer resolution up to 2^30 ticks per beat.
const maxTuneBeats = 1 << 32

// Build converts a KindTune tree. Note lengths whose exact sum does not fit
// the beat arithmetic are a *music.ConfigurationError.
func Build(tree *grammar.Node) (song *Song, err error) {
	defer func() {
		if err != nil {
			song = nil
		}
	}()
	defer music.RecoverOverflow(&err)
	song, err = build(tree)
	if err != nil {
		return nil, err
	}
	// Scheduling repeats these sums, so doing it once here is enough.
	if song.Duration().Cmp(music.Whole(maxTuneBeats)) > 0 {
		return nil, &music.ConfigurationError{Msg: fmt.Sprintf("tune longer than %d beats", int64(maxTuneBeats))}
	}
	music.Collect(song.Music)
	song.Header.BeatsPerMinute()
	return song, nil
}

func build(tree *grammar.Node) (*Song, error) {
	if tree == nil || tree.Kind != grammar.KindTune {
		return nil, &grammar.ParseError{Msg: "invalid tune"}
	}
	hn := tree.Child(grammar.KindHeader)
	if hn == nil {
		return nil, &grammar.ParseError{Msg: "invalid header"}
	}
	h, err := buildHeader(hn)
	if err != nil {
		return nil, err
	}
	keyAcc, err := header.Accidentals(h.Key)
	if err != nil {
		return nil, err
	}
	b := &builder{nominal: h.Meter.Num, unit: h.BeatsPerDefaultNote(), key: keyAcc}
	var voices music.Voices
	if mn := tree.Child(grammar.KindMusic); mn != nil {
		voices, err = b.buildMusic(mn)
		if err != nil {
			return nil, err
		}
	} else {
		voices = music.NewVoices()
	}
	return &Song{Header: h, Music: voices}, nil
}

type builder struct {
	nominal int
	unit    music.Beats
	key     map[byte]music.Accidental
}

func (b *builder) buildMusic(n *grammar.Node) (music.Voices, error) {
	voices := music.NewVoices()
	if lines := n.ChildrenOf(grammar.KindLine); len(lines) > 0 {
		v, err := b.buildLines(lines)
		if err != nil {
			return music.Voices{}, err
		}
		if len(v.Measures()) > 0 {
			voices = voices.Append(music.DefaultVoice, v)
		}
	}
	for _, s := range n.ChildrenOf(grammar.KindVoiceSection) {
		v, err := b.buildLines(s.ChildrenOf(grammar.KindLine))
		if err != nil {
			return music.Voices{}, err
		}
		voices = voices.Append(s.Child(grammar.KindVoiceName).Text, v)
	}
	return voices, nil
}

func (b *builder) buildLines(lines []*grammar.Node) (music.Voice, error) {
	var measures []music.Measure
	for _, l := range lines {
		for _, mn := range l.Children {
			if mn.Kind != grammar.KindMeasure {
				return music.Voice{}, invalidMusic(mn)
			}
			m, err := b.buildMeasure(mn)
			if err != nil {
				return music.Voice{}, err
			}
			measures = append(measures, m)
		}
	}
	return music.NewVoice(measures...), nil
}

func (b *builder) buildMeasure(n *grammar.Node) (music.Measure, error) {
	acc := make(map[byte]music.Accidental, len(b.key))
	for k, v := range b.key {
		acc[k] = v
	}
	var elems []music.Music
	var mk music.Markers
	for _, c := range n.Children {
		switch c.Kind {
		case grammar.KindMeasurePrefix:
			switch c.Text {
			case "|:":
				mk.StartRepeat = true
			case "[1":
				mk.StartFirstEnding = true
			case "[2":
				mk.StartSecondEnding = true
			default:
				return music.Measure{}, invalidMusic(c)
			}
		case grammar.KindBarline:
			switch c.Text {
			case ":|":
				mk.EndRepeat = true
			case "||", "[|", "|]":
				mk.EndMajorSection = true
			}
		default:
			el, err := b.buildElement(c, acc)
			if err != nil {
				return music.Measure{}, err
			}
			elems = append(elems, el)
		}
	}
	return music.NewMeasure(elems, b.nominal, mk), nil
}

func (b *builder) buildElement(n *grammar.Node, acc map[byte]music.Accidental) (music.Music, error) {
	switch n.Kind {
	case grammar.KindNote:
		return b.buildNote(n, acc)
	case grammar.KindChord:
		return b.buildChord(n, acc)
	case grammar.KindTuplet:
		return b.buildTuplet(n, acc)
	}
	return nil, invalidMusic(n)
}

func (b *builder) buildNote(n *grammar.Node, acc map[byte]music.Accidental) (music.Music, error) {
	rel, err := relativeLength(n.Child(grammar.KindNoteLength))
	if err != nil {
		return nil, err
	}
	d := b.unit.Mul(rel)
	if n.Child(grammar.KindRest) != nil {
		return music.NewRest(d), nil
	}
	pn := n.Child(grammar.KindPitch)
	if pn == nil {
		return nil, invalidMusic(n)
	}
	p, err := resolvePitch(pn, acc)
	if err != nil {
		return nil, err
	}
	return music.NewNote(d, p, music.Piano), nil
}

func (b *builder) buildChord(n *grammar.Node, acc map[byte]music.Accidental) (music.Music, error) {
	var notes []music.Note
	for _, c := range n.ChildrenOf(grammar.KindNote) {
		m, err := b.buildNote(c, acc)
		if err != nil {
			return nil, err
		}
		note, ok := m.(music.Note)
		if !ok {
			return nil, invalidMusic(c)
		}
		notes = append(notes, note)
	}
	chord, err := music.NewChord(notes...)
	if err != nil {
		return nil, err
	}
	rel, err := relativeLength(n.Child(grammar.KindNoteLength))
	if err != nil {
		return nil, err
	}
	return chord.Rescale(rel), nil
}

func (b *builder) buildTuplet(n *grammar.Node, acc map[byte]music.Accidental) (music.Music, error) {
	var elems []music.Music
	for _, c := range n.Children {
		if c.Kind == grammar.KindTupletSpec {
			continue
		}
		el, err := b.buildElement(c, acc)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	return music.NewTuplet(elems...)
}

var accidentalMarks = map[string]music.Accidental{
	"^":  music.Sharp,
	"^^": music.DoubleSharp,
	"_":  music.Flat,
	"__": music.DoubleFlat,
	"=":  music.Natural,
}

// resolvePitch applies case, then the explicit accidental (recording it in
// acc for the rest of the measure) or the carried one, then octave marks.
func resolvePitch(n *grammar.Node, acc map[byte]music.Accidental) (music.Pitch, error) {
	bn := n.Child(grammar.KindBaseNote)
	if bn == nil || len(bn.Text) != 1 {
		return music.Pitch{}, invalidMusic(n)
	}
	letter := bn.Text[0]
	lower := letter >= 'a' && letter <= 'z'
	if lower {
		letter -= 'a' - 'A'
	}
	if !music.IsLetter(letter) {
		return music.Pitch{}, invalidMusic(bn)
	}
	p := music.NewPitch(letter)
	if lower {
		p = p.OctaveUp()
	}
	if an := n.Child(grammar.KindAccidental); an != nil {
		a, ok := accidentalMarks[an.Text]
		if !ok {
			return music.Pitch{}, invalidMusic(an)
		}
		p = p.With(a)
		acc[letter] = a
	} else if a, ok := acc[letter]; ok {
		p = p.With(a)
	}
	if on := n.Child(grammar.KindOctave); on != nil {
		for i := 0; i < len(on.Text); i++ {
			switch on.Text[i] {
			case '\'':
				p = p.OctaveUp()
			case ',':
				p = p.OctaveDown()
			}
		}
	}
	return p, nil
}

// relativeLength reads num? /* den?. Missing parts are 1, and k slashes with
// no denominator mean 1/2^k.
func relativeLength(n *grammar.Node) (music.Beats, error) {
	if n == nil {
		return music.Whole(1), nil
	}
	s := n.Text
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	numText := s[:i]
	slashes := 0
	for i < len(s) && s[i] == '/' {
		slashes++
		i++
	}
	denText := s[i:]

	num, den := int64(1), int64(1)
	var err error
	if numText != "" {
		if num, err = strconv.ParseInt(numText, 10, 32); err != nil {
			return music.Beats{}, badLength(n)
		}
	}
	switch {
	case slashes > 16:
		return music.Beats{}, badLength(n)
	case denText != "":
		if den, err = strconv.ParseInt(denText, 10, 32); err != nil || den == 0 {
			return music.Beats{}, badLength(n)
		}
		den <<= uint(max(slashes-1, 0))
	case slashes > 0:
		den = 1 << uint(slashes)
	}
	return music.NewBeats(num, den), nil
}

func badLength(n *grammar.Node) error {
	return &grammar.ParseError{Pos: n.Pos, Msg: fmt.Sprintf("invalid music: note length %q", n.Text)}
}

func invalidMusic(n *grammar.Node) error {
	return &grammar.ParseError{Pos: n.Pos, Msg: fmt.Sprintf("invalid music: unexpected %s %q", n.Kind, n.Text)}
}
