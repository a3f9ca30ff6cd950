package music

import (
	"strconv"
	"strings"
)

type Accidental int

const (
	Natural Accidental = iota
	Sharp
	DoubleSharp
	Flat
	DoubleFlat
)

// Semitones is the offset the accidental applies to a natural pitch.
func (a Accidental) Semitones() int {
	switch a {
	case Sharp:
		return 1
	case DoubleSharp:
		return 2
	case Flat:
		return -1
	case DoubleFlat:
		return -2
	}
	return 0
}

// String renders the accidental in ABC notation.
func (a Accidental) String() string {
	switch a {
	case Sharp:
		return "^"
	case DoubleSharp:
		return "^^"
	case Flat:
		return "_"
	case DoubleFlat:
		return "__"
	}
	return "="
}

var letterSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// MiddleC is the MIDI key of an upper-case C with no octave marks.
const MiddleC = 60

// Pitch is a letter name with a semitone offset and an octave index.
// Octave 0 is the octave starting at middle C.
type Pitch struct {
	Letter byte
	Offset int
	Octave int
}

// NewPitch returns the natural pitch for an upper-case letter A-G in the
// middle-C octave. It panics for any other letter.
func NewPitch(letter byte) Pitch {
	if !IsLetter(letter) {
		panic("music: invalid pitch letter " + strconv.QuoteRune(rune(letter)))
	}
	return Pitch{Letter: letter}
}

// IsLetter reports whether b is an upper-case pitch letter.
func IsLetter(b byte) bool {
	_, ok := letterSemitones[b]
	return ok
}

// Semitone returns the MIDI key number.
func (p Pitch) Semitone() int {
	return MiddleC + letterSemitones[p.Letter] + p.Offset + 12*p.Octave
}

func (p Pitch) Transpose(semitones int) Pitch {
	p.Offset += semitones
	return p
}

func (p Pitch) Sharp() Pitch { return p.Transpose(1) }
func (p Pitch) Flat() Pitch  { return p.Transpose(-1) }

func (p Pitch) OctaveUp() Pitch {
	p.Octave++
	return p
}

func (p Pitch) OctaveDown() Pitch {
	p.Octave--
	return p
}

// With applies an accidental to the natural form of the pitch.
func (p Pitch) With(a Accidental) Pitch {
	p.Offset = a.Semitones()
	return p
}

// Equal compares sounding pitch, so ^C equals _D. Everything above pitch
// inherits this: notes, chords and measures that differ only in spelling
// are equal, and a chord keeps one of two enharmonic members. Playback
// sees only MIDI keys, where a spelling difference cannot be heard.
func (p Pitch) Equal(o Pitch) bool { return p.Semitone() == o.Semitone() }

// String renders the pitch as accidental marks, letter and scientific
// octave, e.g. "^F4" or "_B3".
func (p Pitch) String() string {
	var sb strings.Builder
	switch {
	case p.Offset > 0:
		sb.WriteString(strings.Repeat("^", p.Offset))
	case p.Offset < 0:
		sb.WriteString(strings.Repeat("_", -p.Offset))
	}
	sb.WriteByte(p.Letter)
	sb.WriteString(strconv.Itoa(p.Octave + 4))
	return sb.String()
}
