package sequencer

import (
	"sort"

	"github.com/cbegin/abcfm-go/internal/music"
)

// TicksPerBeat is fine enough that every length the abc builder produces,
// power-of-two fractions down to 1/64 and tuplet thirds, lands on a tick.
const TicksPerBeat = 64 * 27 * 125

// DefaultVelocity is used for notes whose velocity is not set.
const DefaultVelocity = 100

type VoiceEngine interface {
	// NoteOn starts key (a MIDI note number) with the given General MIDI
	// program and returns a voice id for NoteOff.
	NoteOn(key int, velocity int, program int) int
	NoteOff(id int)
	RenderFrame() (float32, float32)
	SetMasterGain(gain float64)
	// ActiveVoiceCount returns the number of voices still sounding (attack/decay/sustain/release).
	// Used to detect when playback has fully ended including release tails.
	ActiveVoiceCount() int
}

// EventKind identifies sequencer lifecycle events.
type EventKind int

const (
	EventLoopCompleted EventKind = iota
	EventPlaybackEnded
)

type Options struct {
	LoopWholeScore    bool
	OnEvent           func(EventKind)
	ReleaseTailFrames int // frames to render after the last voice goes silent (0 = half a second)
	MasterTranspose   int // master octave shift applied to all notes (in octaves, e.g. -2..+2)
}

// Note is one tick-timed note of a Score.
type Note struct {
	Tick     int64
	Length   int64
	Key      int
	Program  int
	Velocity int
}

// Score is the flattened, tick-timed form of a piece.
type Score struct {
	Notes          []Note // ordered by Tick
	BeatsPerMinute float64
	EndTick        int64
}

// NewScore converts scheduled events to ticks. Zero-length notes are
// dropped. end is the length of the piece in beats, so a trailing rest still
// delays the end of playback.
func NewScore(events []music.Event, end music.Beats, bpm float64) *Score {
	s := &Score{BeatsPerMinute: bpm, EndTick: end.Ticks(TicksPerBeat)}
	for _, ev := range events {
		n := Note{
			Tick:     ev.Start.Ticks(TicksPerBeat),
			Length:   ev.Duration.Ticks(TicksPerBeat),
			Key:      ev.Pitch,
			Program:  int(ev.Instrument),
			Velocity: DefaultVelocity,
		}
		if n.Length <= 0 {
			continue
		}
		s.Notes = append(s.Notes, n)
		if e := n.Tick + n.Length; e > s.EndTick {
			s.EndTick = e
		}
	}
	sort.SliceStable(s.Notes, func(i, j int) bool { return s.Notes[i].Tick < s.Notes[j].Tick })
	return s
}

// Seconds is the wall-clock length of the score.
func (s *Score) Seconds() float64 {
	if s.BeatsPerMinute <= 0 {
		return 0
	}
	return float64(s.EndTick) / TicksPerBeat * 60 / s.BeatsPerMinute
}

type Sequencer struct {
	score              *Score
	engine             VoiceEngine
	sampleRate         int
	ticksPerSamp       float64
	tickFrac           float64
	tickInt            int64
	cursor             int
	noteOffs           []noteOff
	loopWholeScore     bool
	onEvent            func(EventKind)
	playbackEndedFired bool
	commandExhausted   bool // score done + all note-offs; waiting for engine release
	releaseTailFrames  int  // countdown after last voice; fire when 0
	masterTranspose    int  // master octave shift in semitones
}

type noteOff struct {
	tick  int64
	voice int
	fired bool
}

func New(score *Score, engine VoiceEngine, sampleRate int) *Sequencer {
	return NewWithOptions(score, engine, sampleRate, Options{})
}

func NewWithOptions(score *Score, engine VoiceEngine, sampleRate int, opts Options) *Sequencer {
	tailFrames := opts.ReleaseTailFrames
	if tailFrames <= 0 {
		tailFrames = sampleRate / 2
	}
	s := &Sequencer{
		score:             score,
		engine:            engine,
		sampleRate:        sampleRate,
		loopWholeScore:    opts.LoopWholeScore,
		onEvent:           opts.OnEvent,
		releaseTailFrames: tailFrames,
		masterTranspose:   opts.MasterTranspose * 12,
	}
	bpm := score.BeatsPerMinute
	if bpm <= 0 {
		bpm = 120
	}
	s.ticksPerSamp = bpm * TicksPerBeat / (60 * float64(sampleRate))
	// Tick 0 is dispatched before the first frame renders.
	s.tickInt = -1
	return s
}

func (s *Sequencer) Process(dst []float32) {
	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		if nextTick := int64(s.tickFrac); nextTick > s.tickInt {
			s.dispatch(nextTick)
		}
		s.tickFrac += s.ticksPerSamp
		l, r := s.engine.RenderFrame()
		dst[f*2] = l
		dst[f*2+1] = r
		if s.commandExhausted && !s.playbackEndedFired && s.engine.ActiveVoiceCount() == 0 {
			if s.releaseTailFrames <= 0 {
				s.playbackEndedFired = true
				if s.onEvent != nil {
					s.onEvent(EventPlaybackEnded)
				}
			} else {
				s.releaseTailFrames--
			}
		}
	}
}

// dispatch fires every note-off and then every note-on due at or before
// tick. Offs go first so a key struck again on the same tick is not cut.
func (s *Sequencer) dispatch(tick int64) {
	s.tickInt = tick
	for i := range s.noteOffs {
		if !s.noteOffs[i].fired && s.noteOffs[i].tick <= tick {
			s.engine.NoteOff(s.noteOffs[i].voice)
			s.noteOffs[i].fired = true
		}
	}
	notes := s.score.Notes
	for s.cursor < len(notes) && notes[s.cursor].Tick <= tick {
		n := notes[s.cursor]
		id := s.engine.NoteOn(clampKey(n.Key+s.masterTranspose), n.Velocity, n.Program)
		s.noteOffs = append(s.noteOffs, noteOff{tick: n.Tick + n.Length, voice: id})
		s.cursor++
	}
	s.compactNoteOffs()
	if s.cursor < len(notes) || len(s.noteOffs) > 0 || tick < s.score.EndTick {
		return
	}
	if s.loopWholeScore && s.score.EndTick > 0 {
		if s.onEvent != nil {
			s.onEvent(EventLoopCompleted)
		}
		s.resetForWholeScoreLoop(tick - s.score.EndTick)
		return
	}
	s.commandExhausted = true
}

// resetForWholeScoreLoop rewinds to tick 0, carrying the overshoot past the
// end so loops stay in time.
func (s *Sequencer) resetForWholeScoreLoop(over int64) {
	s.cursor = 0
	s.noteOffs = s.noteOffs[:0]
	s.tickFrac = float64(over) + (s.tickFrac - float64(int64(s.tickFrac)))
	s.dispatch(over)
}

// SetLoop turns whole-score looping on or off. It takes effect the next
// time the score reaches its end, so calling it from an EventLoopCompleted
// callback lets the current pass play out.
func (s *Sequencer) SetLoop(enabled bool) { s.loopWholeScore = enabled }

// Tick is the score position most recently dispatched.
func (s *Sequencer) Tick() int64 {
	if s.tickInt < 0 {
		return 0
	}
	return s.tickInt
}

// Finished reports whether a non-looping score has ended, release tail
// included.
func (s *Sequencer) Finished() bool { return s.playbackEndedFired }

func (s *Sequencer) compactNoteOffs() {
	if len(s.noteOffs) == 0 {
		return
	}
	j := 0
	for i := range s.noteOffs {
		if !s.noteOffs[i].fired {
			s.noteOffs[j] = s.noteOffs[i]
			j++
		}
	}
	s.noteOffs = s.noteOffs[:j]
	// Insertion sort: the slice is nearly sorted since new entries are appended
	// with increasing ticks; this avoids sort.Slice overhead each tick.
	for i := 1; i < len(s.noteOffs); i++ {
		key := s.noteOffs[i]
		k := i - 1
		for k >= 0 && s.noteOffs[k].tick > key.tick {
			s.noteOffs[k+1] = s.noteOffs[k]
			k--
		}
		s.noteOffs[k+1] = key
	}
}

func clampKey(k int) int {
	if k < 0 {
		return 0
	}
	if k > 127 {
		return 127
	}
	return k
}
