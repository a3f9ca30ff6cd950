// Package audio streams rendered frames to the sound card through ebiten.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// bytesPerFrame is one interleaved stereo float32 frame.
const bytesPerFrame = 8

// Source fills dst with interleaved stereo frames.
type Source interface {
	Process(dst []float32)
}

// FiniteSource reports when it has nothing more to play. The stream ends
// with io.EOF once Finished returns true.
type FiniteSource interface {
	Source
	Finished() bool
}

// Stream adapts a Source to the io.Reader of little-endian float32 samples
// that ebiten's NewPlayerF32 expects.
type Stream struct {
	mu     sync.Mutex
	source Source
	buf    []float32
	closed bool
}

func NewStream(source Source) *Stream {
	return &Stream{source: source}
}

func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.EOF
	}
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	n := frames * 2
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	s.buf = s.buf[:n]
	s.source.Process(s.buf)
	for i, v := range s.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	if fs, ok := s.source.(FiniteSource); ok && fs.Finished() {
		return frames * bytesPerFrame, io.EOF
	}
	return frames * bytesPerFrame, nil
}

// Close makes later reads return io.EOF.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Output is one playing stream.
type Output struct {
	player *ebitaudio.Player
	stream *Stream
}

var (
	contextOnce sync.Once
	shared      *ebitaudio.Context
	contextRate int
)

// sharedContext returns the process-wide ebiten context. Ebiten permits only
// one, so every Output must use the same sample rate.
func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		shared = ebitaudio.NewContext(sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz, %d Hz requested", contextRate, sampleRate)
	}
	return shared, nil
}

// NewOutput prepares source for playback. Call Play to start it.
func NewOutput(sampleRate int, source Source) (*Output, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	stream := NewStream(source)
	pl, err := ctx.NewPlayerF32(stream)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	return &Output{player: pl, stream: stream}, nil
}

func (o *Output) Play()           { o.player.Play() }
func (o *Output) Pause()          { o.player.Pause() }
func (o *Output) IsPlaying() bool { return o.player.IsPlaying() }

// Position is how far playback has got, as heard rather than as rendered.
func (o *Output) Position() time.Duration {
	return o.player.Position()
}

func (o *Output) Stop() error {
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return o.stream.Close()
}
