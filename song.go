// Package abcfm parses ABC notation and plays, renders or exports the
// resulting tunes.
//
//	song, err := abcfm.Compile(text)
//	pl, err := abcfm.NewPlayer(48000)
//	err = pl.Play(song)
//	pl.Wait()
package abcfm

import (
	"github.com/cbegin/abcfm-go/internal/abc"
	"github.com/cbegin/abcfm-go/internal/grammar"
	"github.com/cbegin/abcfm-go/internal/music"
	intseq "github.com/cbegin/abcfm-go/internal/sequencer"
)

type (
	// Song is a parsed tune: its header and voices.
	Song = abc.Song
	// ParseError reports text that is not ABC of the supported shape.
	ParseError = grammar.ParseError
	// ConfigurationError reports well-formed text with impossible values.
	ConfigurationError = music.ConfigurationError
	// Instrument is a General MIDI program number.
	Instrument = music.Instrument
	// Event is one scheduled note.
	Event = music.Event
)

// Compile parses ABC text into a Song.
func Compile(abcText string) (*Song, error) {
	return abc.Parse(abcText)
}

// Arrange assigns programs to the named voices of song. Voices without an
// entry keep their instrument.
func Arrange(song *Song, programs map[string]Instrument) music.Voices {
	voices := song.Music
	for _, name := range voices.Names() {
		inst, ok := programs[name]
		if !ok {
			continue
		}
		v, _ := voices.Voice(name)
		voices = voices.Change(name, music.Orchestrate(v, inst).(music.Voice))
	}
	return voices
}

// Events returns the notes of song in start order.
func Events(song *Song, programs map[string]Instrument) []Event {
	return music.Collect(Arrange(song, programs))
}

func scoreFor(song *Song, programs map[string]Instrument) *intseq.Score {
	bpm := song.Header.BeatsPerMinute().Float64()
	return intseq.NewScore(Events(song, programs), song.Duration(), bpm)
}

// Seconds is how long one pass of song lasts at its header tempo.
func Seconds(song *Song) float64 {
	bpm := song.Header.BeatsPerMinute().Float64()
	if bpm <= 0 {
		return 0
	}
	return song.Duration().Float64() * 60 / bpm
}
