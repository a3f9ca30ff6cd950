package sequencer

import (
	"testing"

	"github.com/cbegin/abcfm-go/internal/chiptune"
	"github.com/cbegin/abcfm-go/internal/music"
)

func BenchmarkSequencerProcess(b *testing.B) {
	var events []music.Event
	for i, key := range []int{60, 62, 64, 65, 67, 69, 71, 72} {
		events = append(events, event(key, music.NewBeats(int64(i), 4), music.NewBeats(1, 4)))
	}
	score := NewScore(events, music.Whole(2), 150)
	buf := make([]float32, 2048*2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine := chiptune.New(48000, chiptune.DefaultParams())
		seq := New(score, engine, 48000)
		seq.Process(buf)
	}
}
