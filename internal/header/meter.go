package header

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cbegin/abcfm-go/internal/music"
)

// ErrMalformed is wrapped by every header value that fails to parse.
var ErrMalformed = errors.New("malformed header value")

type Meter struct {
	Num int
	Den int
}

var (
	CommonTime = Meter{Num: 4, Den: 4}
	CutTime    = Meter{Num: 2, Den: 2}
)

const fractionSep = "/"

// NewMeter returns a *music.ConfigurationError unless both parts are positive.
func NewMeter(num, den int) (Meter, error) {
	if num <= 0 || den <= 0 {
		return Meter{}, &music.ConfigurationError{Msg: fmt.Sprintf("meter %d/%d must be positive", num, den)}
	}
	return Meter{Num: num, Den: den}, nil
}

// ParseMeter reads "C", "C|" or "n/d".
func ParseMeter(text string) (Meter, error) {
	s := strings.TrimSpace(text)
	switch s {
	case "C":
		return CommonTime, nil
	case "C|":
		return CutTime, nil
	}
	num, den, err := parseFraction(s)
	if err != nil {
		return Meter{}, fmt.Errorf("meter %q: %w", text, err)
	}
	return NewMeter(num, den)
}

// Ratio is the meter as a fraction of a whole note, e.g. 3/4.
func (m Meter) Ratio() music.Beats { return music.NewBeats(int64(m.Num), int64(m.Den)) }

func (m Meter) String() string { return strconv.Itoa(m.Num) + "/" + strconv.Itoa(m.Den) }

// ParseLength reads a strict "n/d" note length fraction. A bare integer is
// accepted as n/1.
func ParseLength(text string) (music.Beats, error) {
	s := strings.TrimSpace(text)
	var num, den int
	var err error
	if strings.Contains(s, fractionSep) {
		num, den, err = parseFraction(s)
	} else {
		num, err = parseInt(s)
		den = 1
	}
	if err != nil {
		return music.Beats{}, fmt.Errorf("length %q: %w", text, err)
	}
	if num <= 0 || den <= 0 {
		return music.Beats{}, &music.ConfigurationError{Msg: fmt.Sprintf("default length %s must be positive", s)}
	}
	return music.NewBeats(int64(num), int64(den)), nil
}

func parseFraction(s string) (int, int, error) {
	numText, denText, ok := strings.Cut(s, fractionSep)
	if !ok {
		return 0, 0, ErrMalformed
	}
	num, err := parseInt(numText)
	if err != nil {
		return 0, 0, err
	}
	den, err := parseInt(denText)
	if err != nil {
		return 0, 0, err
	}
	return num, den, nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMalformed
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			if i == 0 && s[i] == '-' && len(s) > 1 {
				continue
			}
			return 0, ErrMalformed
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrMalformed
	}
	return n, nil
}
