package commands

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/cbegin/abcfm-go"
	"github.com/cbegin/abcfm-go/internal/music"
)

var infoFormat string

var infoCmd = &cobra.Command{
	Use:   "info <file.abc>",
	Short: "Show the header, voices and length of a tune",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := readSong(args[0])
		if err != nil {
			return err
		}
		info := describe(song)
		switch infoFormat {
		case "text":
			fmt.Println(song.Header.String())
			fmt.Printf("Beats/min: %g\n", info.BeatsPerMinute)
			fmt.Printf("Duration:  %s beats (%.2fs)\n", info.Beats, info.Seconds)
			for _, v := range info.Voices {
				fmt.Printf("Voice %-8s %d measures, %d notes\n", v.Name, v.Measures, v.Notes)
			}
			return nil
		case "yaml":
			out, err := yaml.Marshal(info)
			if err != nil {
				return fmt.Errorf("marshal: %w", err)
			}
			fmt.Print(string(out))
			return nil
		default:
			return fmt.Errorf("unknown format %q (want text or yaml)", infoFormat)
		}
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoFormat, "format", "text", "output format: text or yaml")
	rootCmd.AddCommand(infoCmd)
}

type tuneInfo struct {
	Index          int         `yaml:"index"`
	Title          string      `yaml:"title"`
	Composer       string      `yaml:"composer"`
	Key            string      `yaml:"key"`
	Meter          string      `yaml:"meter"`
	DefaultLength  string      `yaml:"default_length"`
	BeatsPerMinute float64     `yaml:"beats_per_minute"`
	Beats          string      `yaml:"beats"`
	Seconds        float64     `yaml:"seconds"`
	Voices         []voiceInfo `yaml:"voices"`
}

type voiceInfo struct {
	Name     string `yaml:"name"`
	Measures int    `yaml:"measures"`
	Notes    int    `yaml:"notes"`
}

func describe(song *abcfm.Song) tuneInfo {
	h := song.Header
	info := tuneInfo{
		Index:          h.Index,
		Title:          h.Title,
		Composer:       h.Composer,
		Key:            strings.TrimSpace(h.Key.String()),
		Meter:          h.Meter.String(),
		DefaultLength:  h.DefaultLength.String(),
		BeatsPerMinute: h.BeatsPerMinute().Float64(),
		Beats:          song.Duration().String(),
		Seconds:        abcfm.Seconds(song),
	}
	for _, name := range song.Music.Names() {
		v, _ := song.Music.Voice(name)
		info.Voices = append(info.Voices, voiceInfo{
			Name:     name,
			Measures: v.NumMeasures(),
			Notes:    len(music.Collect(v)),
		})
	}
	return info
}
