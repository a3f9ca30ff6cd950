package header

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbegin/abcfm-go/internal/music"
)

// DefaultBPM is the tempo of a tune with no Q: field.
const DefaultBPM = 100

// Tempo is BPM notes of BeatLength (a fraction of a whole note) per minute.
type Tempo struct {
	BeatLength music.Beats
	BPM        int
}

func NewTempo(beatLength music.Beats, bpm int) (Tempo, error) {
	if beatLength.Sign() <= 0 || bpm <= 0 {
		return Tempo{}, &music.ConfigurationError{Msg: fmt.Sprintf("tempo %s=%d must be positive", beatLength, bpm)}
	}
	return Tempo{BeatLength: beatLength, BPM: bpm}, nil
}

// ParseTempo reads "n/d=bpm". A bare "bpm" counts beats of unit.
func ParseTempo(text string, unit music.Beats) (Tempo, error) {
	s := strings.TrimSpace(text)
	lengthText, bpmText, ok := strings.Cut(s, "=")
	if !ok {
		bpmText = s
	}
	bpm, err := parseInt(bpmText)
	if err != nil {
		return Tempo{}, fmt.Errorf("tempo %q: %w", text, err)
	}
	length := unit
	if ok {
		num, den, err := parseFraction(strings.TrimSpace(lengthText))
		if err != nil {
			return Tempo{}, fmt.Errorf("tempo %q: %w", text, err)
		}
		if den <= 0 {
			return Tempo{}, &music.ConfigurationError{Msg: fmt.Sprintf("tempo beat %d/%d must be positive", num, den)}
		}
		length = music.NewBeats(int64(num), int64(den))
	}
	return NewTempo(length, bpm)
}

func (t Tempo) String() string { return t.BeatLength.String() + "=" + strconv.Itoa(t.BPM) }
