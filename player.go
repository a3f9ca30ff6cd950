package abcfm

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	intaudio "github.com/cbegin/abcfm-go/internal/audio"
	intchip "github.com/cbegin/abcfm-go/internal/chiptune"
	"github.com/cbegin/abcfm-go/internal/config"
	intfx "github.com/cbegin/abcfm-go/internal/effects"
	intfm "github.com/cbegin/abcfm-go/internal/fm"
	intseq "github.com/cbegin/abcfm-go/internal/sequencer"
	intsf "github.com/cbegin/abcfm-go/internal/soundfont"
)

// PlaybackEvent is delivered on the channel returned by Watch.
type PlaybackEvent struct {
	Kind int // EventLoopCompleted or EventPlaybackEnded
	Loop int // completed loops so far, for EventLoopCompleted
}

const (
	EventLoopCompleted int = iota
	EventPlaybackEnded
)

// Engine selects the synthesizer.
type Engine string

const (
	// EngineTone is the built-in pulse/triangle/noise synthesizer.
	EngineTone Engine = config.EngineTone
	// EngineFM is the two-operator FM synthesizer.
	EngineFM Engine = config.EngineFM
	// EngineSoundFont plays through a .sf2 file given with WithSoundFont.
	EngineSoundFont Engine = config.EngineSoundFont
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	engine       Engine
	soundFont    string
	loopPlayback bool
	loops        int
	programs     map[string]Instrument
	room         string
	sampleTap    func([]float32)
	logger       *slog.Logger
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{engine: EngineTone, room: intfx.RoomDry}
}

func WithEngine(engine Engine) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.engine = engine
	}
}

// WithSoundFont selects EngineSoundFont with the .sf2 file at path.
func WithSoundFont(path string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.engine = EngineSoundFont
		cfg.soundFont = path
	}
}

// WithLoopPlayback restarts the tune each time it ends.
func WithLoopPlayback(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loopPlayback = enabled
	}
}

// WithLoops plays the tune n times in total and then lets it end. It
// overrides WithLoopPlayback.
func WithLoops(n int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loops = n
	}
}

// WithPrograms assigns General MIDI programs to voices by name.
func WithPrograms(programs map[string]Instrument) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.programs = programs
	}
}

// WithRoom adds a room reverb: "dry", "room" or "hall".
func WithRoom(room string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.room = room
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

func WithLogger(logger *slog.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.logger = logger
	}
}

type Player struct {
	mu           sync.Mutex
	sampleRate   int
	engineKind   Engine
	soundFont    []byte
	engine       intseq.VoiceEngine
	audio        *intaudio.Output
	baseGain     float64
	volume       float64
	transpose    int
	loopPlayback bool
	loops        int
	programs     map[string]Instrument
	room         string
	sampleTap    func([]float32)
	logger       *slog.Logger
	done         chan struct{}
	eventCh      chan PlaybackEvent
	eventChMu    sync.Mutex
}

// eventWrapper adapts a sequencer to the audio stream, applying the master
// effects and reporting when non-looping playback ends.
type eventWrapper struct {
	seq       *intseq.Sequencer
	finished  atomic.Bool
	loops     int
	effects   *intfx.Chain
	sampleTap func([]float32)
}

func (w *eventWrapper) Process(dst []float32) {
	w.seq.Process(dst)
	if w.effects != nil {
		w.effects.Apply(dst)
	}
	if w.sampleTap != nil {
		w.sampleTap(dst)
	}
}

func (w *eventWrapper) Finished() bool {
	return w.finished.Load()
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !intfx.ValidRoom(cfg.room) {
		return nil, fmt.Errorf("unknown room %q", cfg.room)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	var sf []byte
	if cfg.engine == EngineSoundFont {
		if cfg.soundFont == "" {
			return nil, errors.New("soundfont engine needs a soundfont file")
		}
		data, err := os.ReadFile(cfg.soundFont)
		if err != nil {
			return nil, fmt.Errorf("read soundfont: %w", err)
		}
		sf = data
	}
	engine, baseGain, err := newEngine(cfg.engine, sampleRate, sf)
	if err != nil {
		return nil, err
	}
	engine.SetMasterGain(baseGain)
	return &Player{
		sampleRate:   sampleRate,
		engineKind:   cfg.engine,
		soundFont:    sf,
		engine:       engine,
		baseGain:     baseGain,
		volume:       1,
		loopPlayback: cfg.loopPlayback,
		loops:        cfg.loops,
		programs:     cfg.programs,
		room:         cfg.room,
		sampleTap:    cfg.sampleTap,
		logger:       logger,
	}, nil
}

// newEngine builds a fresh synthesizer and returns its unity gain.
func newEngine(kind Engine, sampleRate int, soundFont []byte) (intseq.VoiceEngine, float64, error) {
	switch kind {
	case EngineTone, "":
		params := intchip.DefaultParams()
		return intchip.New(sampleRate, params), params.MasterGain, nil
	case EngineFM:
		params := intfm.DefaultParams()
		return intfm.New(sampleRate, params), params.MasterGain, nil
	case EngineSoundFont:
		e, err := intsf.New(sampleRate, bytes.NewReader(soundFont))
		if err != nil {
			return nil, 0, err
		}
		return e, 1, nil
	default:
		return nil, 0, fmt.Errorf("unknown engine %q", kind)
	}
}

// PlayABC compiles abcText and plays it.
func (p *Player) PlayABC(abcText string) error {
	song, err := Compile(abcText)
	if err != nil {
		return err
	}
	return p.Play(song)
}

// Play starts song, replacing whatever was playing. The previous playback
// keeps going if the new one cannot be set up.
func (p *Player) Play(song *Song) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	score := scoreFor(song, p.programs)
	done := make(chan struct{})
	wrapper := &eventWrapper{sampleTap: p.sampleTap}
	limit := p.loops
	looping := p.loopPlayback
	if limit > 0 {
		looping = limit > 1
	}
	onEvent := func(kind intseq.EventKind) {
		switch kind {
		case intseq.EventLoopCompleted:
			wrapper.loops++
			p.logger.Debug("loop completed", "title", song.Header.Title, "loop", wrapper.loops)
			p.sendEvent(PlaybackEvent{Kind: EventLoopCompleted, Loop: wrapper.loops})
			if limit > 0 && wrapper.loops >= limit-1 {
				wrapper.seq.SetLoop(false)
			}
		case intseq.EventPlaybackEnded:
			wrapper.finished.Store(true)
			p.logger.Info("playback ended", "title", song.Header.Title)
			p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
			p.signalDone(done)
		}
	}

	// A fresh engine per Play keeps voice state from leaking between songs.
	engine, baseGain, err := newEngine(p.engineKind, p.sampleRate, p.soundFont)
	if err != nil {
		return err
	}
	engine.SetMasterGain(baseGain * p.volume)
	chain, err := intfx.Master(p.sampleRate, p.room)
	if err != nil {
		return err
	}
	wrapper.effects = chain
	wrapper.seq = intseq.NewWithOptions(score, engine, p.sampleRate, intseq.Options{
		LoopWholeScore:  looping,
		OnEvent:         onEvent,
		MasterTranspose: p.transpose,
	})
	backend, err := intaudio.NewOutput(p.sampleRate, wrapper)
	if err != nil {
		return err
	}

	if p.audio != nil {
		_ = p.audio.Stop()
	}
	// Signal any existing Wait() that the previous playback was replaced
	if p.done != nil {
		close(p.done)
	}
	p.done = done
	p.engine = engine
	p.baseGain = baseGain
	p.audio = backend
	p.logger.Info("play",
		"title", song.Header.Title,
		"voices", song.Music.Names(),
		"bpm", score.BeatsPerMinute,
		"notes", len(score.Notes),
		"seconds", score.Seconds(),
		"loop", looping,
	)
	p.audio.Play()
	return nil
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// signalDone closes done if it still belongs to the current playback. A
// replaced or stopped playback has had its channel closed already.
func (p *Player) signalDone(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == done {
		p.done = nil
		close(done)
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	done := p.done
	p.done = nil
	p.mu.Unlock()
	p.logger.Debug("playback stopped")
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	if done != nil {
		close(done)
	}
	return err
}

// Wait blocks until the current playback ends. When loop playback is enabled,
// Wait blocks until Stop (use Watch to count loops instead).
// Wait returns immediately if nothing is playing.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events:
//   - EventLoopCompleted: a whole-tune loop finished (when looping)
//   - EventPlaybackEnded: playback finished or was stopped
//
// The channel is buffered (cap 8); receive in a goroutine to avoid blocking
// the audio thread. Only the most recent Watch() channel receives events.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	p.engine.SetMasterGain(p.baseGain * p.volume)
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetTranspose sets the octave shift applied to all notes from the next Play.
func (p *Player) SetTranspose(octaves int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transpose = octaves
}

func (p *Player) Transpose() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transpose
}

// PlaybackPosition returns the current output position of the audio driver
// in frames, i.e. what the listener hears right now. Returns 0 if not playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(p.sampleRate))
}
