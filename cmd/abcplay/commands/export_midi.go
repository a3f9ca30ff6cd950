package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/abcfm-go"
)

var midiOutput string

var exportMIDICmd = &cobra.Command{
	Use:   "export-midi <file.abc>",
	Short: "Write a Standard MIDI File",
	Long: `Write a type 1 Standard MIDI File with a conductor track and one track
per instrument. Voice programs come from the settings file.

Example:
  abcplay export-midi tune.abc -o tune.mid`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := readSong(args[0])
		if err != nil {
			return err
		}
		f, err := os.Create(midiOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := abcfm.ExportMIDI(song, f, globalConfig.Programs()); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
		logger.Info("wrote midi", "path", midiOutput, "title", song.Header.Title)
		fmt.Printf("Wrote %s\n", midiOutput)
		return nil
	},
}

func init() {
	exportMIDICmd.Flags().StringVarP(&midiOutput, "output", "o", "", "output .mid path")
	_ = exportMIDICmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportMIDICmd)
}
