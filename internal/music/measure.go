package music

import "strings"

// Markers are the repeat and section flags carried by a measure.
// They are independent; a measure may set more than one.
type Markers struct {
	StartRepeat       bool
	EndRepeat         bool
	StartFirstEnding  bool
	StartSecondEnding bool
	EndMajorSection   bool
}

func (mk Markers) String() string {
	var flags []string
	if mk.StartRepeat {
		flags = append(flags, "start-repeat")
	}
	if mk.StartFirstEnding {
		flags = append(flags, "first-ending")
	}
	if mk.StartSecondEnding {
		flags = append(flags, "second-ending")
	}
	if mk.EndRepeat {
		flags = append(flags, "end-repeat")
	}
	if mk.EndMajorSection {
		flags = append(flags, "end-section")
	}
	return strings.Join(flags, ",")
}

// Measure is a bar of music. Nominal is the meter's beat count and is not
// checked against the summed durations.
type Measure struct {
	elems   []Music
	nominal int
	markers Markers
}

func NewMeasure(elems []Music, nominal int, markers Markers) Measure {
	cp := make([]Music, len(elems))
	copy(cp, elems)
	return Measure{elems: cp, nominal: nominal, markers: markers}
}

func (m Measure) Kind() Kind       { return KindMeasure }
func (m Measure) Nominal() int     { return m.nominal }
func (m Measure) Markers() Markers { return m.markers }

func (m Measure) Elements() []Music {
	out := make([]Music, len(m.elems))
	copy(out, m.elems)
	return out
}

func (m Measure) Duration() Beats { return sumDurations(m.elems) }

func (m Measure) Rescale(scale Beats) Music { return m.scaled(scale) }

func (m Measure) scaled(scale Beats) Measure {
	checkScale(scale)
	elems := make([]Music, len(m.elems))
	for i, el := range m.elems {
		elems[i] = el.Rescale(scale)
	}
	n := Whole(int64(m.nominal)).Mul(scale)
	return Measure{elems: elems, nominal: int(n.Num() / n.Den()), markers: m.markers}
}

func (m Measure) Play(sink Sink, at Beats) { playSequence(m.elems, sink, at) }

func (m Measure) Equal(other Music) bool {
	o, ok := other.(Measure)
	return ok && m.nominal == o.nominal && m.markers == o.markers && equalSequences(m.elems, o.elems)
}

func (m Measure) String() string {
	var sb strings.Builder
	mk := m.markers
	if mk.StartRepeat {
		sb.WriteString("|:")
	}
	if mk.StartFirstEnding {
		sb.WriteString("[1")
	}
	if mk.StartSecondEnding {
		sb.WriteString("[2")
	}
	if sb.Len() == 0 {
		sb.WriteString("|")
	}
	for _, el := range m.elems {
		sb.WriteByte(' ')
		sb.WriteString(el.String())
	}
	if mk.EndRepeat {
		sb.WriteString(" :|")
	}
	if mk.EndMajorSection {
		sb.WriteString(" ||")
	}
	if !mk.EndRepeat && !mk.EndMajorSection {
		sb.WriteString(" |")
	}
	return sb.String()
}

func (Measure) sealed() {}
