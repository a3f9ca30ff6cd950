package music

import "strconv"

// Instrument is a General MIDI program number (0-127).
type Instrument uint8

const (
	Piano        Instrument = 0
	Harpsichord  Instrument = 6
	Glockenspiel Instrument = 9
	MusicBox     Instrument = 10
	Marimba      Instrument = 12
	Organ        Instrument = 19
	Accordion    Instrument = 21
	NylonGuitar  Instrument = 24
	AcousticBass Instrument = 32
	Violin       Instrument = 40
	Cello        Instrument = 42
	Strings      Instrument = 48
	Trumpet      Instrument = 56
	Clarinet     Instrument = 71
	Flute        Instrument = 73
	Goblins      Instrument = 101
)

var instrumentNames = map[Instrument]string{
	Piano:        "piano",
	Harpsichord:  "harpsichord",
	Glockenspiel: "glockenspiel",
	MusicBox:     "music box",
	Marimba:      "marimba",
	Organ:        "organ",
	Accordion:    "accordion",
	NylonGuitar:  "nylon guitar",
	AcousticBass: "acoustic bass",
	Violin:       "violin",
	Cello:        "cello",
	Strings:      "strings",
	Trumpet:      "trumpet",
	Clarinet:     "clarinet",
	Flute:        "flute",
	Goblins:      "goblins",
}

func (i Instrument) String() string {
	if name, ok := instrumentNames[i]; ok {
		return name
	}
	return "program " + strconv.Itoa(int(i))
}
