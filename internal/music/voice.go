package music

import "strings"

// Voice is one performer's line. The repeat-expanded measure order is
// computed when the Voice is built and never changes afterwards.
type Voice struct {
	measures []Measure
	expanded []Measure
}

func NewVoice(measures ...Measure) Voice {
	cp := make([]Measure, len(measures))
	copy(cp, measures)
	return Voice{measures: cp, expanded: expand(cp)}
}

func (v Voice) Kind() Kind { return KindVoice }

// Measures returns the measures as written.
func (v Voice) Measures() []Measure {
	out := make([]Measure, len(v.measures))
	copy(out, v.measures)
	return out
}

// Expanded returns the measures in performance order.
func (v Voice) Expanded() []Measure {
	out := make([]Measure, len(v.expanded))
	copy(out, v.expanded)
	return out
}

// NumMeasures counts performed measures.
func (v Voice) NumMeasures() int { return len(v.expanded) }

// PlayMeasure plays the i-th performed measure at the given beat and
// returns its duration, or zero if the voice has no such measure.
func (v Voice) PlayMeasure(sink Sink, at Beats, i int) Beats {
	if i < 0 || i >= len(v.expanded) {
		return Beats{}
	}
	m := v.expanded[i]
	m.Play(sink, at)
	return m.Duration()
}

func (v Voice) Duration() Beats {
	var total Beats
	for _, m := range v.expanded {
		total = total.Add(m.Duration())
	}
	return total
}

func (v Voice) Rescale(scale Beats) Music {
	checkScale(scale)
	measures := make([]Measure, len(v.measures))
	for i, m := range v.measures {
		measures[i] = m.scaled(scale)
	}
	return NewVoice(measures...)
}

func (v Voice) Play(sink Sink, at Beats) {
	for _, m := range v.expanded {
		m.Play(sink, at)
		at = at.Add(m.Duration())
	}
}

// Append returns a voice with other's measures after v's.
func (v Voice) Append(other Voice) Voice {
	return v.AppendMeasures(other.measures...)
}

func (v Voice) AppendMeasures(measures ...Measure) Voice {
	all := make([]Measure, 0, len(v.measures)+len(measures))
	all = append(all, v.measures...)
	all = append(all, measures...)
	return NewVoice(all...)
}

// Equal compares the measures as written.
func (v Voice) Equal(other Music) bool {
	o, ok := other.(Voice)
	if !ok || len(v.measures) != len(o.measures) {
		return false
	}
	for i := range v.measures {
		if !v.measures[i].Equal(o.measures[i]) {
			return false
		}
	}
	return true
}

func (v Voice) String() string {
	parts := make([]string, len(v.measures))
	for i, m := range v.measures {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

func (Voice) sealed() {}
