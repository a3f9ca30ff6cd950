// Package header models the ABC tune header: index, title, composer, key,
// meter, default note length, tempo and declared voices.
package header

import (
	"fmt"
	"strings"

	"github.com/cbegin/abcfm-go/internal/music"
)

const (
	DefaultTitle    = "Untitled"
	DefaultComposer = "Unknown"
)

type Header struct {
	Index         int
	Title         string
	Composer      string
	Key           KeySignature
	DefaultLength music.Beats
	Meter         Meter
	Tempo         Tempo
	Voices        []string
}

// Validate reports a *music.ConfigurationError for values no tune can have.
func (h Header) Validate() error {
	switch {
	case h.Index < 1:
		return &music.ConfigurationError{Msg: fmt.Sprintf("index number %d must be at least 1", h.Index)}
	case h.DefaultLength.Sign() <= 0:
		return &music.ConfigurationError{Msg: "default length must be positive"}
	case h.Meter.Num <= 0 || h.Meter.Den <= 0:
		return &music.ConfigurationError{Msg: "meter must be positive"}
	case h.Tempo.BPM <= 0 || h.Tempo.BeatLength.Sign() <= 0:
		return &music.ConfigurationError{Msg: "tempo must be positive"}
	}
	if _, err := Accidentals(h.Key); err != nil {
		return err
	}
	return nil
}

// DefaultLengthFor is 1/8 for meters of at least 3/4 and 1/16 below.
func DefaultLengthFor(m Meter) music.Beats {
	if m.Ratio().Less(music.NewBeats(3, 4)) {
		return music.NewBeats(1, 16)
	}
	return music.NewBeats(1, 8)
}

// BeatsPerDefaultNote converts relative note lengths into beats, where a
// beat is one meter denominator.
func (h Header) BeatsPerDefaultNote() music.Beats {
	return h.DefaultLength.MulInt(int64(h.Meter.Den))
}

// BeatsPerMinute is the tempo expressed in meter beats.
func (h Header) BeatsPerMinute() music.Beats {
	return h.Tempo.BeatLength.MulInt(int64(h.Tempo.BPM) * int64(h.Meter.Den))
}

func (h Header) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "X: %d\n", h.Index)
	fmt.Fprintf(&sb, "T: %s\n", h.Title)
	fmt.Fprintf(&sb, "C: %s\n", h.Composer)
	fmt.Fprintf(&sb, "Q: %s\n", h.Tempo)
	fmt.Fprintf(&sb, "M: %s\n", h.Meter)
	fmt.Fprintf(&sb, "L: %s\n", h.DefaultLength)
	fmt.Fprintf(&sb, "K: %s", h.Key)
	for _, v := range h.Voices {
		fmt.Fprintf(&sb, "\nV: %s", v)
	}
	return sb.String()
}
