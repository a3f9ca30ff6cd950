package music

type Note struct {
	duration   Beats
	pitch      Pitch
	instrument Instrument
}

// NewNote panics with a *ConfigurationError if duration is negative.
func NewNote(duration Beats, pitch Pitch, inst Instrument) Note {
	checkDuration(duration)
	return Note{duration: duration, pitch: pitch, instrument: inst}
}

func (n Note) Kind() Kind             { return KindNote }
func (n Note) Duration() Beats        { return n.duration }
func (n Note) Pitch() Pitch           { return n.pitch }
func (n Note) Instrument() Instrument { return n.instrument }

func (n Note) Rescale(scale Beats) Music { return n.scaled(scale) }

func (n Note) scaled(scale Beats) Note {
	checkScale(scale)
	n.duration = n.duration.Mul(scale)
	return n
}

func (n Note) Play(sink Sink, at Beats) {
	sink.AddNote(n.pitch.Semitone(), n.instrument, at, n.duration)
}

func (n Note) Equal(other Music) bool {
	o, ok := other.(Note)
	return ok && n.duration == o.duration && n.instrument == o.instrument && n.pitch.Equal(o.pitch)
}

func (n Note) String() string { return n.pitch.String() + "*" + n.duration.String() }

func (Note) sealed() {}

type Rest struct {
	duration Beats
}

// NewRest panics with a *ConfigurationError if duration is negative.
func NewRest(duration Beats) Rest {
	checkDuration(duration)
	return Rest{duration: duration}
}

func (r Rest) Kind() Kind      { return KindRest }
func (r Rest) Duration() Beats { return r.duration }

func (r Rest) Rescale(scale Beats) Music {
	checkScale(scale)
	return Rest{duration: r.duration.Mul(scale)}
}

func (r Rest) Play(Sink, Beats) {}

func (r Rest) Equal(other Music) bool {
	o, ok := other.(Rest)
	return ok && r.duration == o.duration
}

func (r Rest) String() string { return "z*" + r.duration.String() }

func (Rest) sealed() {}
