package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/abcfm-go"
	"github.com/cbegin/abcfm-go/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded before each command runs.
	globalConfig *config.Config
	logger       = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "abcplay",
	Short: "Play and convert ABC notation tunes",
	Long: `abcplay - play, inspect and convert tunes written in ABC notation.

Settings are read from config.yaml in the OS config directory:
  macOS:   ~/Library/Application Support/abcfm/
  Linux:   ~/.config/abcfm/
  Windows: %AppData%/abcfm/

Command line flags override the file.

Examples:
  abcplay play tune.abc
  abcplay play --loops 3 --room hall tune.abc
  abcplay info --format yaml tune.abc
  abcplay export-midi tune.abc -o tune.mid
  abcplay render tune.abc -o tune.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		globalConfig = cfg
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default: the OS config directory)")
}

// readSong compiles the tune at path; "-" reads standard input.
func readSong(path string) (*abcfm.Song, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	song, err := abcfm.Compile(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return song, nil
}
