// Package grammar scans ABC notation text into a typed node tree. It checks
// shape only; meaning (durations, accidentals, repeats) is assigned later by
// the abc package.
package grammar

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindTune Kind = iota + 1
	KindHeader
	KindFieldNumber
	KindFieldTitle
	KindFieldComposer
	KindFieldLength
	KindFieldMeter
	KindFieldTempo
	KindFieldVoice
	KindFieldKey
	KindFieldOther
	KindKeyAccidental
	KindModeMinor

	KindMusic
	KindLine
	KindVoiceSection
	KindVoiceName
	KindMeasure
	KindMeasurePrefix
	KindBarline
	KindNote
	KindPitch
	KindAccidental
	KindBaseNote
	KindOctave
	KindRest
	KindNoteLength
	KindChord
	KindTuplet
	KindTupletSpec
)

var kindNames = map[Kind]string{
	KindTune:          "Tune",
	KindHeader:        "Header",
	KindFieldNumber:   "FieldNumber",
	KindFieldTitle:    "FieldTitle",
	KindFieldComposer: "FieldComposer",
	KindFieldLength:   "FieldLength",
	KindFieldMeter:    "FieldMeter",
	KindFieldTempo:    "FieldTempo",
	KindFieldVoice:    "FieldVoice",
	KindFieldKey:      "FieldKey",
	KindFieldOther:    "FieldOther",
	KindKeyAccidental: "KeyAccidental",
	KindModeMinor:     "ModeMinor",
	KindMusic:         "Music",
	KindLine:          "Line",
	KindVoiceSection:  "VoiceSection",
	KindVoiceName:     "VoiceName",
	KindMeasure:       "Measure",
	KindMeasurePrefix: "MeasurePrefix",
	KindBarline:       "Barline",
	KindNote:          "Note",
	KindPitch:         "Pitch",
	KindAccidental:    "Accidental",
	KindBaseNote:      "BaseNote",
	KindOctave:        "Octave",
	KindRest:          "Rest",
	KindNoteLength:    "NoteLength",
	KindChord:         "Chord",
	KindTuplet:        "Tuplet",
	KindTupletSpec:    "TupletSpec",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is one element of the parse tree. Text is the raw source span the
// node covers (trimmed for header fields) and Pos its byte offset.
type Node struct {
	Kind     Kind
	Text     string
	Pos      int
	Children []*Node
}

// Child returns the first child of the given kind, or nil.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

func (n *Node) ChildrenOf(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) add(children ...*Node) { n.Children = append(n.Children, children...) }

// String renders the subtree as an s-expression of kinds and leaf texts.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(n.Kind.String())
	if len(n.Children) == 0 && n.Text != "" {
		fmt.Fprintf(sb, " %q", n.Text)
	}
	for _, c := range n.Children {
		sb.WriteByte(' ')
		c.write(sb)
	}
	sb.WriteByte(')')
}
