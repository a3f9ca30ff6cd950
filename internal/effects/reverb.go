package effects

// Reverb is a Schroeder reverb: four parallel comb filters feeding two
// allpass stages per channel. The right bank is slightly longer than the
// left one to widen the tail.
type Reverb struct {
	left, right reverbBank
	wet         float32
}

type reverbBank struct {
	combs   [4]delayLine
	allpass [2]delayLine
}

type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

const stereoSpread = 23

var (
	combRatios    = [4]int{1000, 1117, 1271, 1437}
	allpassRatios = [2]int{347, 213}
)

// NewReverb builds a reverb. size (0..1) scales the delay lengths, decay
// (0..0.95) is the comb feedback and wet (0..1) the mix.
func NewReverb(sampleRate int, size, decay, wet float32) *Reverb {
	base := max(int(float32(sampleRate)*clamp(size, 0, 1)*0.05), 10)
	fb := clamp(decay, 0, 0.95)
	return &Reverb{
		left:  newReverbBank(base, 0, fb),
		right: newReverbBank(base, stereoSpread, fb),
		wet:   clamp(wet, 0, 1),
	}
}

func newReverbBank(base, spread int, fb float32) reverbBank {
	var b reverbBank
	for i, ratio := range combRatios {
		b.combs[i] = delayLine{buf: make([]float32, base*ratio/1000+spread), fb: fb}
	}
	for i, ratio := range allpassRatios {
		b.allpass[i] = delayLine{buf: make([]float32, max(base*ratio/1000+spread, 1)), fb: 0.5}
	}
	return b
}

func (r *Reverb) Process(l, rr float32) (float32, float32) {
	in := (l + rr) * 0.5
	wl := r.left.process(in)
	wr := r.right.process(in)
	dry := 1 - r.wet
	return l*dry + wl*r.wet, rr*dry + wr*r.wet
}

func (r *Reverb) Reset() {
	r.left.reset()
	r.right.reset()
}

func (b *reverbBank) process(in float32) float32 {
	var out float32
	for i := range b.combs {
		out += b.combs[i].comb(in)
	}
	out *= 0.25
	for i := range b.allpass {
		out = b.allpass[i].allpass(out)
	}
	return out
}

func (b *reverbBank) reset() {
	for i := range b.combs {
		b.combs[i].reset()
	}
	for i := range b.allpass {
		b.allpass[i].reset()
	}
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) allpass(in float32) float32 {
	delayed := d.buf[d.pos]
	d.buf[d.pos] = in + delayed*d.fb
	d.advance()
	return delayed - in
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
