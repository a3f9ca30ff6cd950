package abcfm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	intfx "github.com/cbegin/abcfm-go/internal/effects"
	"github.com/cbegin/abcfm-go/internal/midiexport"
	intseq "github.com/cbegin/abcfm-go/internal/sequencer"
)

// RenderOptions configures an offline render. The zero value renders with
// the tone engine, no reverb and no transpose.
type RenderOptions struct {
	Engine    Engine
	SoundFont []byte // .sf2 contents for EngineSoundFont
	Programs  map[string]Instrument
	Room      string
	Transpose int // octaves
	Loops     int // times to play the tune; 0 and 1 both mean once
}

// maxTailSeconds bounds how long a render waits for release tails.
const maxTailSeconds = 10

const renderBlock = 1024

// Render plays song into memory until the last voice has died away and
// returns interleaved stereo samples.
func Render(song *Song, sampleRate int, opts RenderOptions) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sampleRate must be positive")
	}
	r, err := newRenderer(song, sampleRate, opts)
	if err != nil {
		return nil, err
	}
	limit := int((r.score.Seconds()*float64(max(opts.Loops, 1)) + maxTailSeconds) * float64(sampleRate))
	var out []float32
	block := make([]float32, renderBlock*2)
	for frames := 0; frames < limit && !r.seq.Finished(); frames += renderBlock {
		r.process(block)
		out = append(out, block...)
	}
	return out, nil
}

// RenderSong renders song once with default options.
func RenderSong(song *Song, sampleRate int) ([]float32, error) {
	return Render(song, sampleRate, RenderOptions{})
}

// RenderSamples renders exactly seconds of song with the tone engine.
func RenderSamples(song *Song, sampleRate int, seconds float64) []float32 {
	r, err := newRenderer(song, sampleRate, RenderOptions{})
	if err != nil {
		// The default options always build.
		panic(err)
	}
	out := make([]float32, int(float64(sampleRate)*seconds)*2)
	r.process(out)
	return out
}

type renderer struct {
	score   *intseq.Score
	seq     *intseq.Sequencer
	effects *intfx.Chain
}

func newRenderer(song *Song, sampleRate int, opts RenderOptions) (*renderer, error) {
	engine, gain, err := newEngine(opts.Engine, sampleRate, opts.SoundFont)
	if err != nil {
		return nil, err
	}
	engine.SetMasterGain(gain)
	chain, err := intfx.Master(sampleRate, opts.Room)
	if err != nil {
		return nil, err
	}
	score := scoreFor(song, opts.Programs)
	r := &renderer{score: score, effects: chain}
	loopsLeft := opts.Loops - 1
	var seq *intseq.Sequencer
	seq = intseq.NewWithOptions(score, engine, sampleRate, intseq.Options{
		LoopWholeScore:  loopsLeft > 0,
		MasterTranspose: opts.Transpose,
		OnEvent: func(kind intseq.EventKind) {
			if kind != intseq.EventLoopCompleted {
				return
			}
			if loopsLeft--; loopsLeft <= 0 {
				seq.SetLoop(false)
			}
		},
	})
	r.seq = seq
	return r, nil
}

func (r *renderer) process(dst []float32) {
	r.seq.Process(dst)
	r.effects.Apply(dst)
}

// ExportMIDI writes song as a Standard MIDI File.
func ExportMIDI(song *Song, w io.Writer, programs map[string]Instrument) error {
	return midiexport.Write(w, midiexport.Tune{
		Title:          song.Header.Title,
		Meter:          song.Header.Meter,
		BeatsPerMinute: song.Header.BeatsPerMinute().Float64(),
		Events:         Events(song, programs),
		End:            song.Duration(),
	})
}

type wavHeader struct {
	Riff          [4]byte
	ChunkSize     uint32
	Wave          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// wavFormatFloat is WAVE_FORMAT_IEEE_FLOAT.
const wavFormatFloat = 3

// EncodeWAVFloat32LE wraps samples in a 32-bit float WAV file.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := uint32(len(samples) * 4)
	h := wavHeader{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		Format:        wavFormatFloat,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * 4),
		BlockAlign:    uint16(channels * 4),
		BitsPerSample: 32,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}
	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))
	// Writes to a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, h)
	raw := make([]byte, 4)
	for _, s := range samples {
		binary.LittleEndian.PutUint32(raw, math.Float32bits(s))
		buf.Write(raw)
	}
	return buf.Bytes()
}
