package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cbegin/abcfm-go"
)

var (
	playSynth synthFlags
	playLoop  bool
)

var playCmd = &cobra.Command{
	Use:   "play <file.abc>",
	Short: "Play a tune through the audio device",
	Long: `Play a tune and wait for it to finish. Use "-" to read the tune from
standard input. Interrupt with Ctrl-C to stop.

Examples:
  abcplay play tune.abc
  abcplay play --loop tune.abc
  abcplay play --loops 2 --room hall --octave -1 tune.abc
  abcplay play --soundfont FluidR3.sf2 tune.abc`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playSynth.register(playCmd.Flags())
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "repeat until interrupted")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := playSynth.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("loop") {
		cfg.Loop = playLoop
	}
	song, err := readSong(args[0])
	if err != nil {
		return err
	}

	opts := []abcfm.PlayerOption{
		abcfm.WithEngine(abcfm.Engine(cfg.Engine)),
		abcfm.WithLoopPlayback(cfg.Loop),
		abcfm.WithLoops(cfg.Loops),
		abcfm.WithPrograms(cfg.Programs()),
		abcfm.WithRoom(cfg.Room),
		abcfm.WithLogger(logger),
	}
	if cfg.SoundFont != "" {
		opts = append(opts, abcfm.WithSoundFont(cfg.SoundFont))
	}
	pl, err := abcfm.NewPlayer(cfg.SampleRate, opts...)
	if err != nil {
		return err
	}
	pl.SetMasterVolume(cfg.Volume)
	pl.SetTranspose(cfg.Transpose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	events := pl.Watch()
	if err := pl.Play(song); err != nil {
		return err
	}
	fmt.Printf("Playing %q (%.1fs)\n", song.Header.Title, abcfm.Seconds(song))

	done := make(chan struct{})
	go func() {
		pl.Wait()
		close(done)
	}()
	for {
		select {
		case ev := <-events:
			if ev.Kind == abcfm.EventLoopCompleted {
				logger.Info("loop", "count", ev.Loop)
			}
		case <-ctx.Done():
			fmt.Println()
			return pl.Stop()
		case <-done:
			return nil
		}
	}
}
