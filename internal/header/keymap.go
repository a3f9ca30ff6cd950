package header

import "github.com/cbegin/abcfm-go/internal/music"

// keyTable holds the accidentals implied by each of the 30 standard key
// signatures. Minor keys share their relative major's entry.
var keyTable = buildKeyTable()

func buildKeyTable() map[KeySignature]map[byte]music.Accidental {
	major := func(letter byte, acc music.Accidental) KeySignature {
		return KeySignature{Letter: letter, Acc: acc}
	}
	minor := func(letter byte, acc music.Accidental) KeySignature {
		return KeySignature{Letter: letter, Acc: acc, Minor: true}
	}
	table := map[KeySignature]map[byte]music.Accidental{}

	// Each step around the circle adds one accidental to the previous key.
	sharps := []struct {
		key    KeySignature
		rel    KeySignature
		letter byte
	}{
		{major('G', music.Natural), minor('E', music.Natural), 'F'},
		{major('D', music.Natural), minor('B', music.Natural), 'C'},
		{major('A', music.Natural), minor('F', music.Sharp), 'G'},
		{major('E', music.Natural), minor('C', music.Sharp), 'D'},
		{major('B', music.Natural), minor('G', music.Sharp), 'A'},
		{major('F', music.Sharp), minor('D', music.Sharp), 'E'},
		{major('C', music.Sharp), minor('A', music.Sharp), 'B'},
	}
	flats := []struct {
		key    KeySignature
		rel    KeySignature
		letter byte
	}{
		{major('F', music.Natural), minor('D', music.Natural), 'B'},
		{major('B', music.Flat), minor('G', music.Natural), 'E'},
		{major('E', music.Flat), minor('C', music.Natural), 'A'},
		{major('A', music.Flat), minor('F', music.Natural), 'D'},
		{major('D', music.Flat), minor('B', music.Flat), 'G'},
		{major('G', music.Flat), minor('E', music.Flat), 'C'},
		{major('C', music.Flat), minor('A', music.Flat), 'F'},
	}

	natural := map[byte]music.Accidental{}
	table[major('C', music.Natural)] = natural
	table[minor('A', music.Natural)] = natural

	prev := natural
	for _, step := range sharps {
		cur := copyAccidentals(prev)
		cur[step.letter] = music.Sharp
		table[step.key] = cur
		table[step.rel] = cur
		prev = cur
	}
	prev = natural
	for _, step := range flats {
		cur := copyAccidentals(prev)
		cur[step.letter] = music.Flat
		table[step.key] = cur
		table[step.rel] = cur
		prev = cur
	}
	return table
}

// Accidentals returns a fresh copy of the letter→accidental overrides
// implied by key. Letters absent from the map are natural. Unknown keys
// return a *music.ConfigurationError.
func Accidentals(key KeySignature) (map[byte]music.Accidental, error) {
	acc, ok := keyTable[key]
	if !ok {
		return nil, &music.ConfigurationError{Msg: "unsupported key signature " + key.String()}
	}
	return copyAccidentals(acc), nil
}

// Keys lists every supported key signature.
func Keys() []KeySignature {
	out := make([]KeySignature, 0, len(keyTable))
	for k := range keyTable {
		out = append(out, k)
	}
	return out
}

func copyAccidentals(src map[byte]music.Accidental) map[byte]music.Accidental {
	dst := make(map[byte]music.Accidental, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
