package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cbegin/abcfm-go/internal/config"
)

// synthFlags are the sound settings shared by play and render. Each one
// overrides the settings file only when given on the command line.
type synthFlags struct {
	engine     string
	soundFont  string
	room       string
	volume     float64
	octave     int
	loops      int
	sampleRate int
}

func (f *synthFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.engine, "engine", config.EngineTone, "synthesizer: tone, fm or soundfont")
	fs.StringVar(&f.soundFont, "soundfont", "", "path to a .sf2 file (selects the soundfont engine)")
	fs.StringVar(&f.room, "room", "dry", "reverb: dry, room or hall")
	fs.Float64Var(&f.volume, "volume", 1, "master volume (0-4)")
	fs.IntVar(&f.octave, "octave", 0, "transpose by octaves (-4 to 4)")
	fs.IntVar(&f.loops, "loops", 0, "number of times to play the tune")
	fs.IntVar(&f.sampleRate, "sample-rate", config.DefaultSampleRate, "output sample rate in Hz")
}

// resolve merges the changed flags over the loaded settings.
func (f *synthFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := *globalConfig
	fs := cmd.Flags()
	if fs.Changed("engine") {
		cfg.Engine = f.engine
	}
	if fs.Changed("soundfont") {
		cfg.SoundFont = f.soundFont
		if !fs.Changed("engine") {
			cfg.Engine = config.EngineSoundFont
		}
	}
	if fs.Changed("room") {
		cfg.Room = f.room
	}
	if fs.Changed("volume") {
		cfg.Volume = f.volume
	}
	if fs.Changed("octave") {
		cfg.Transpose = f.octave
	}
	if fs.Changed("loops") {
		cfg.Loops = f.loops
	}
	if fs.Changed("sample-rate") {
		cfg.SampleRate = f.sampleRate
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readSoundFont(cfg *config.Config) ([]byte, error) {
	if cfg.Engine != config.EngineSoundFont {
		return nil, nil
	}
	data, err := os.ReadFile(cfg.SoundFont)
	if err != nil {
		return nil, fmt.Errorf("read soundfont: %w", err)
	}
	return data, nil
}
