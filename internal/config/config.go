// Package config loads abcplay settings from YAML.
//
// The default file lives under os.UserConfigDir():
//
//	~/Library/Application Support/abcfm/config.yaml   (macOS)
//	~/.config/abcfm/config.yaml                       (Linux)
//	%AppData%/abcfm/config.yaml                       (Windows)
//
// A missing default file is not an error; the built-in defaults apply.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cbegin/abcfm-go/internal/effects"
	"github.com/cbegin/abcfm-go/internal/music"
)

const (
	appDir   = "abcfm"
	fileName = "config.yaml"
)

// Engine names.
const (
	EngineTone      = "tone"
	EngineFM        = "fm"
	EngineSoundFont = "soundfont"
)

const (
	DefaultSampleRate = 48000
	MaxTranspose      = 4
	MaxVolume         = 4
)

// Config is the decoded settings file.
type Config struct {
	SampleRate int              `yaml:"sample_rate"`
	Engine     string           `yaml:"engine"`
	SoundFont  string           `yaml:"soundfont,omitempty"`
	Loop       bool             `yaml:"loop"`
	Loops      int              `yaml:"loops,omitempty"`
	Volume     float64          `yaml:"volume"`
	Transpose  int              `yaml:"transpose,omitempty"`
	Room       string           `yaml:"room,omitempty"`
	Voices     map[string]Voice `yaml:"voices,omitempty"`
}

// Voice holds per-voice settings, keyed by the V: name.
type Voice struct {
	Program int `yaml:"program"`
}

func Default() *Config {
	return &Config{
		SampleRate: DefaultSampleRate,
		Engine:     EngineTone,
		Volume:     1,
		Room:       effects.RoomDry,
	}
}

// DefaultPath is the per-user settings file.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads path. An empty path reads DefaultPath and tolerates its absence.
func Load(path string) (*Config, error) {
	optional := false
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path, optional = p, true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample_rate %d out of range", c.SampleRate)
	}
	switch c.Engine {
	case EngineTone, EngineFM:
	case EngineSoundFont:
		if c.SoundFont == "" {
			return errors.New("engine soundfont needs a soundfont path")
		}
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	if c.Loops < 0 {
		return fmt.Errorf("loops %d must not be negative", c.Loops)
	}
	if c.Volume < 0 || c.Volume > MaxVolume {
		return fmt.Errorf("volume %g out of range [0, %d]", c.Volume, MaxVolume)
	}
	if c.Transpose < -MaxTranspose || c.Transpose > MaxTranspose {
		return fmt.Errorf("transpose %d out of range [-%d, %d]", c.Transpose, MaxTranspose, MaxTranspose)
	}
	if !effects.ValidRoom(c.Room) {
		return fmt.Errorf("unknown room %q (want one of %v)", c.Room, effects.Rooms())
	}
	names := make([]string, 0, len(c.Voices))
	for name := range c.Voices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if p := c.Voices[name].Program; p < 0 || p > 127 {
			return fmt.Errorf("voices.%s.program %d out of range [0, 127]", name, p)
		}
	}
	return nil
}

// Programs returns the configured instrument of each named voice.
func (c *Config) Programs() map[string]music.Instrument {
	if len(c.Voices) == 0 {
		return nil
	}
	out := make(map[string]music.Instrument, len(c.Voices))
	for name, v := range c.Voices {
		out[name] = music.Instrument(v.Program)
	}
	return out
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
