package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cbegin/abcfm-go"
)

var eventsCmd = &cobra.Command{
	Use:   "events <file.abc>",
	Short: "List the scheduled notes of a tune",
	Long: `List every note after repeats are expanded, in start order. Start and
duration are in meter beats.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := readSong(args[0])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PITCH\tSTART\tDURATION\tINSTRUMENT")
		for _, ev := range abcfm.Events(song, globalConfig.Programs()) {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ev.Pitch, ev.Start, ev.Duration, ev.Instrument)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
