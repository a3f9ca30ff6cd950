package abcfm

import (
	"errors"
	"testing"
)

const duet = "X:1\nT:Duet\nL:1/4\nQ:1/4=120\nK:C\nV:hi\nc d e f|\nV:lo\nC4|\n"

func mustCompile(t *testing.T, text string) *Song {
	t.Helper()
	song, err := Compile(text)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return song
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("X:1\nK:H\nC\n")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	_, err = Compile("X:1\nM:4/0\nK:C\nC\n")
	var ce *ConfigurationError
	var pe2 *ParseError
	if !errors.As(err, &ce) && !errors.As(err, &pe2) {
		t.Fatalf("expected a typed error, got %v", err)
	}
}

func TestArrangeAssignsPrograms(t *testing.T) {
	song := mustCompile(t, duet)
	events := Events(song, map[string]Instrument{"lo": 32, "missing": 40})
	var lo, hi int
	for _, ev := range events {
		switch ev.Instrument {
		case 32:
			lo++
		case 0:
			hi++
		default:
			t.Fatalf("unexpected instrument %v", ev.Instrument)
		}
	}
	if lo != 1 || hi != 4 {
		t.Fatalf("lo=%d hi=%d", lo, hi)
	}
	// The song itself is unchanged.
	for _, ev := range Events(song, nil) {
		if ev.Instrument != 0 {
			t.Fatalf("Arrange mutated the song")
		}
	}
}

func TestScoreForUsesHeaderTempo(t *testing.T) {
	song := mustCompile(t, duet)
	score := scoreFor(song, nil)
	if score.BeatsPerMinute != 120 {
		t.Fatalf("bpm = %v", score.BeatsPerMinute)
	}
	if got := score.Seconds(); got != 2 {
		t.Fatalf("seconds = %v", got)
	}
	if len(score.Notes) != 5 {
		t.Fatalf("notes = %d", len(score.Notes))
	}
}

func TestSeconds(t *testing.T) {
	song := mustCompile(t, duet)
	if got := Seconds(song); got != 2 {
		t.Fatalf("Seconds = %v", got)
	}
}
