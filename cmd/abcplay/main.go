// Command abcplay plays, inspects and converts ABC notation tunes.
//
// Usage:
//
//	abcplay [flags] <command> [args]
//
// Commands:
//
//	play         - Play a tune through the audio device
//	info         - Show the header, voices and length of a tune
//	events       - List the scheduled notes of a tune
//	export-midi  - Write a Standard MIDI File
//	render       - Render a tune to a WAV file
//	version      - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/cbegin/abcfm-go/cmd/abcplay/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
