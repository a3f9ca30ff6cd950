package header

import (
	"strings"

	"github.com/cbegin/abcfm-go/internal/music"
)

// KeySignature names a key: tonic letter, tonic accidental and mode.
// Acc is one of Natural, Sharp or Flat.
type KeySignature struct {
	Letter byte
	Acc    music.Accidental
	Minor  bool
}

// CMajor is the key used when a tune declares none.
var CMajor = KeySignature{Letter: 'C'}

func (k KeySignature) String() string {
	var sb strings.Builder
	sb.WriteByte(k.Letter)
	switch k.Acc {
	case music.Sharp:
		sb.WriteByte('#')
	case music.Flat:
		sb.WriteByte('b')
	}
	if k.Minor {
		sb.WriteByte('m')
	}
	return sb.String()
}
