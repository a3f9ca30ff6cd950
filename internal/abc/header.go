package abc

import (
	"errors"
	"strconv"

	"github.com/cbegin/abcfm-go/internal/grammar"
	"github.com/cbegin/abcfm-go/internal/header"
	"github.com/cbegin/abcfm-go/internal/music"
)

// buildHeader resolves header fields in two passes: the explicit fields
// first, then the derived default length and tempo.
func buildHeader(n *grammar.Node) (header.Header, error) {
	h := header.Header{
		Title:    header.DefaultTitle,
		Composer: header.DefaultComposer,
		Key:      header.CMajor,
		Meter:    header.CommonTime,
	}
	var lengthSet bool
	var tempoField *grammar.Node
	for _, f := range n.Children {
		switch f.Kind {
		case grammar.KindFieldNumber:
			idx, err := strconv.Atoi(f.Text)
			if err != nil {
				return header.Header{}, invalidHeader(f, err)
			}
			h.Index = idx
		case grammar.KindFieldTitle:
			if f.Text != "" {
				h.Title = f.Text
			}
		case grammar.KindFieldComposer:
			if f.Text != "" {
				h.Composer = f.Text
			}
		case grammar.KindFieldLength:
			l, err := header.ParseLength(f.Text)
			if err != nil {
				return header.Header{}, fieldError(f, err)
			}
			h.DefaultLength = l
			lengthSet = true
		case grammar.KindFieldMeter:
			m, err := header.ParseMeter(f.Text)
			if err != nil {
				return header.Header{}, fieldError(f, err)
			}
			h.Meter = m
		case grammar.KindFieldTempo:
			tempoField = f
		case grammar.KindFieldVoice:
			h.Voices = appendUnique(h.Voices, f.Text)
		case grammar.KindFieldKey:
			h.Key = keySignature(f)
		default:
			return header.Header{}, &grammar.ParseError{Pos: f.Pos, Msg: "invalid header"}
		}
	}

	if !lengthSet {
		h.DefaultLength = header.DefaultLengthFor(h.Meter)
	}
	h.Tempo = header.Tempo{BeatLength: h.DefaultLength, BPM: header.DefaultBPM}
	if tempoField != nil {
		t, err := header.ParseTempo(tempoField.Text, h.DefaultLength)
		if err != nil {
			return header.Header{}, fieldError(tempoField, err)
		}
		h.Tempo = t
	}
	if err := h.Validate(); err != nil {
		return header.Header{}, err
	}
	return h, nil
}

func keySignature(f *grammar.Node) header.KeySignature {
	k := header.KeySignature{Letter: f.Child(grammar.KindBaseNote).Text[0]}
	if a := f.Child(grammar.KindKeyAccidental); a != nil {
		switch a.Text {
		case "#":
			k.Acc = music.Sharp
		case "b":
			k.Acc = music.Flat
		}
	}
	k.Minor = f.Child(grammar.KindModeMinor) != nil
	return k
}

// fieldError turns a malformed value into a ParseError at the field and
// passes configuration errors through.
func fieldError(f *grammar.Node, err error) error {
	if errors.Is(err, header.ErrMalformed) {
		return invalidHeader(f, err)
	}
	return err
}

func invalidHeader(f *grammar.Node, err error) error {
	return &grammar.ParseError{Pos: f.Pos, Msg: "invalid header: " + err.Error()}
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}
