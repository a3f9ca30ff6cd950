package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

type rampSource struct {
	next     float32
	finished bool
}

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = s.next
		s.next += 0.25
	}
}

func (s *rampSource) Finished() bool { return s.finished }

func TestStreamEncodesFloat32LE(t *testing.T) {
	st := NewStream(&rampSource{})
	p := make([]byte, 2*bytesPerFrame+3)
	n, err := st.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 2*bytesPerFrame {
		t.Fatalf("read %d bytes, want whole frames only", n)
	}
	for i, want := range []float32{0, 0.25, 0.5, 0.75} {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:])); got != want {
			t.Fatalf("sample %d = %v want %v", i, got, want)
		}
	}
}

func TestStreamShortBuffer(t *testing.T) {
	st := NewStream(&rampSource{})
	if n, err := st.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
}

func TestStreamEndsWhenSourceFinishes(t *testing.T) {
	src := &rampSource{}
	st := NewStream(src)
	if _, err := st.Read(make([]byte, 64)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	src.finished = true
	n, err := st.Read(make([]byte, 64))
	if n != 64 || !errors.Is(err, io.EOF) {
		t.Fatalf("Read = %d, %v; want the last block and EOF", n, err)
	}
}

func TestStreamCloseReturnsEOF(t *testing.T) {
	st := NewStream(&rampSource{})
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n, err := st.Read(make([]byte, 64)); n != 0 || !errors.Is(err, io.EOF) {
		t.Fatalf("Read after Close = %d, %v", n, err)
	}
}
