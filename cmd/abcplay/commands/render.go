package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/abcfm-go"
)

var (
	renderSynth   synthFlags
	renderOutput  string
	renderSeconds float64
)

var renderCmd = &cobra.Command{
	Use:   "render <file.abc>",
	Short: "Render a tune to a WAV file",
	Long: `Render a tune offline to a 32-bit float stereo WAV file. Without
--seconds the render runs until the last note has died away.

Examples:
  abcplay render tune.abc -o tune.wav
  abcplay render --room hall --loops 2 tune.abc -o tune.wav`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := renderSynth.resolve(cmd)
		if err != nil {
			return err
		}
		song, err := readSong(args[0])
		if err != nil {
			return err
		}
		sf, err := readSoundFont(cfg)
		if err != nil {
			return err
		}
		samples, err := abcfm.Render(song, cfg.SampleRate, abcfm.RenderOptions{
			Engine:    abcfm.Engine(cfg.Engine),
			SoundFont: sf,
			Programs:  cfg.Programs(),
			Room:      cfg.Room,
			Transpose: cfg.Transpose,
			Loops:     cfg.Loops,
		})
		if err != nil {
			return err
		}
		if renderSeconds > 0 {
			samples = fit(samples, int(renderSeconds*float64(cfg.SampleRate))*2)
		}
		scale(samples, float32(cfg.Volume))
		wav := abcfm.EncodeWAVFloat32LE(samples, cfg.SampleRate, 2)
		if err := os.WriteFile(renderOutput, wav, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		seconds := float64(len(samples)/2) / float64(cfg.SampleRate)
		logger.Info("rendered", "path", renderOutput, "seconds", seconds, "engine", cfg.Engine, "room", cfg.Room)
		fmt.Printf("Wrote %s (%.2fs)\n", renderOutput, seconds)
		return nil
	},
}

func init() {
	renderSynth.register(renderCmd.Flags())
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output .wav path")
	renderCmd.Flags().Float64Var(&renderSeconds, "seconds", 0, "cut or pad the render to this length")
	_ = renderCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(renderCmd)
}

// fit truncates samples to n or pads it with silence.
func fit(samples []float32, n int) []float32 {
	if len(samples) >= n {
		return samples[:n]
	}
	return append(samples, make([]float32, n-len(samples))...)
}

func scale(samples []float32, gain float32) {
	if gain == 1 {
		return
	}
	for i := range samples {
		samples[i] *= gain
	}
}
