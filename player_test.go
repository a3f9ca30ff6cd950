package abcfm

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestPlayerMasterVolumeRuntimeAPI(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if got := pl.MasterVolume(); got != 1 {
		t.Fatalf("default master volume = %v, want 1", got)
	}
	pl.SetMasterVolume(0.35)
	if got := pl.MasterVolume(); got != 0.35 {
		t.Fatalf("master volume = %v, want 0.35", got)
	}
	pl.SetMasterVolume(-2)
	if got := pl.MasterVolume(); got != 0 {
		t.Fatalf("master volume should clamp to 0, got %v", got)
	}
}

func TestPlayerTranspose(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	pl.SetTranspose(-2)
	if got := pl.Transpose(); got != -2 {
		t.Fatalf("transpose = %d", got)
	}
}

func TestPlayerIdleControls(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	pl.Pause()
	pl.Resume()
	pl.Wait()
	if err := pl.Stop(); err != nil {
		t.Fatalf("Stop while idle: %v", err)
	}
	if pos := pl.PlaybackPosition(); pos != 0 {
		t.Fatalf("idle position = %d", pos)
	}
}

func TestNewPlayerRejectsBadOptions(t *testing.T) {
	cases := []struct {
		name string
		opts []PlayerOption
	}{
		{"unknown engine", []PlayerOption{WithEngine("opl")}},
		{"soundfont without file", []PlayerOption{WithEngine(EngineSoundFont)}},
		{"missing soundfont", []PlayerOption{WithSoundFont(filepath.Join(t.TempDir(), "none.sf2"))}},
		{"unknown room", []PlayerOption{WithRoom("cave")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPlayer(48000, tc.opts...); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if _, err := NewPlayer(0); err == nil {
		t.Fatalf("expected an error for a zero sample rate")
	}
}

func TestPlayABCReportsParseErrors(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	err = pl.PlayABC("T:no index\nK:C\nC\n")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestPlayerEngines(t *testing.T) {
	for _, engine := range []Engine{EngineTone, EngineFM} {
		pl, err := NewPlayer(44100, WithEngine(engine), WithLoops(2), WithRoom("room"))
		if err != nil {
			t.Fatalf("%s: %v", engine, err)
		}
		if pl.engineKind != engine {
			t.Fatalf("engine = %q want %q", pl.engineKind, engine)
		}
	}
}

func TestFailedPlayLeavesWaitUsable(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	pl.room = "cave" // skips NewPlayer's check so the effects chain fails
	if err := pl.Play(mustCompile(t, scale)); err == nil {
		t.Fatalf("expected unknown room error")
	}
	if pl.done != nil || pl.audio != nil {
		t.Fatalf("failed Play left playback state behind")
	}
	waited := make(chan struct{})
	go func() {
		pl.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatalf("Wait blocked after a failed Play")
	}
}

func TestSignalDoneIgnoresReplacedPlayback(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	current := make(chan struct{})
	stale := make(chan struct{})
	pl.done = current
	pl.signalDone(stale)
	if pl.done != current {
		t.Fatalf("stale playback ended the current one")
	}
	select {
	case <-stale:
		t.Fatalf("stale channel should be left to its owner")
	default:
	}
	pl.signalDone(current)
	if pl.done != nil {
		t.Fatalf("done not cleared")
	}
	select {
	case <-current:
	default:
		t.Fatalf("current channel not closed")
	}
}
