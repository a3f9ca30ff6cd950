package music

import (
	"strconv"
	"strings"
)

// Time-compression factor applied to each member, keyed by arity.
var tupletFactors = map[int]Beats{
	2: NewBeats(3, 2),
	3: NewBeats(2, 3),
	4: NewBeats(3, 4),
}

// TupletFactor returns the per-member compression for an arity of 2, 3 or 4.
func TupletFactor(arity int) (Beats, bool) {
	f, ok := tupletFactors[arity]
	return f, ok
}

// Tuplet is a duplet, triplet or quadruplet of notes or chords.
type Tuplet struct {
	members []Music // already compressed
	factor  Beats
}

// NewTuplet compresses 2 to 4 notes or chords of equal duration. It returns a
// *ConfigurationError for any other arity, for rests and for unequal members.
func NewTuplet(elems ...Music) (Tuplet, error) {
	factor, ok := TupletFactor(len(elems))
	if !ok {
		return Tuplet{}, configErrorf("tuplet of %d elements, want 2 to 4", len(elems))
	}
	members := make([]Music, len(elems))
	for i, el := range elems {
		switch el.Kind() {
		case KindNote, KindChord:
		default:
			return Tuplet{}, configErrorf("tuplet member %d is a %s, want note or chord", i, el.Kind())
		}
		if el.Duration() != elems[0].Duration() {
			return Tuplet{}, configErrorf("tuplet member %d lasts %s, want %s", i, el.Duration(), elems[0].Duration())
		}
		members[i] = el.Rescale(factor)
	}
	return Tuplet{members: members, factor: factor}, nil
}

func (t Tuplet) Kind() Kind    { return KindTuplet }
func (t Tuplet) Arity() int    { return len(t.members) }
func (t Tuplet) Factor() Beats { return t.factor }

// Members returns the compressed members.
func (t Tuplet) Members() []Music {
	out := make([]Music, len(t.members))
	copy(out, t.members)
	return out
}

func (t Tuplet) Duration() Beats { return sumDurations(t.members) }

// Rescale undoes the compression, scales, then compresses again.
func (t Tuplet) Rescale(scale Beats) Music {
	checkScale(scale)
	inv := t.factor.Inverse()
	members := make([]Music, len(t.members))
	for i, m := range t.members {
		members[i] = m.Rescale(inv).Rescale(scale).Rescale(t.factor)
	}
	return Tuplet{members: members, factor: t.factor}
}

func (t Tuplet) Play(sink Sink, at Beats) { playSequence(t.members, sink, at) }

func (t Tuplet) Equal(other Music) bool {
	o, ok := other.(Tuplet)
	return ok && equalSequences(t.members, o.members)
}

func (t Tuplet) String() string {
	var sb strings.Builder
	sb.WriteString("(" + strconv.Itoa(len(t.members)))
	for _, m := range t.members {
		sb.WriteByte(' ')
		sb.WriteString(m.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (Tuplet) sealed() {}
