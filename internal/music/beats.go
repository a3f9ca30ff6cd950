package music

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

// Beats is an exact rational beat count. The zero value is zero beats.
// Values are kept in lowest terms with a positive denominator so that ==
// compares amounts. Arithmetic whose exact result does not fit in int64
// panics with ErrBeatsOverflow; see RecoverOverflow.
type Beats struct {
	num int64
	den int64 // 0 only for the zero value
}

// NewBeats returns num/den in lowest terms. It panics if den is zero.
func NewBeats(num, den int64) Beats {
	if den == 0 {
		panic("music: zero denominator")
	}
	if num == 0 {
		return Beats{}
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs64(num), den)
	return Beats{num: num / g, den: den / g}
}

// Whole returns n beats.
func Whole(n int64) Beats { return NewBeats(n, 1) }

func (b Beats) Num() int64 { return b.num }

func (b Beats) Den() int64 {
	if b.den == 0 {
		return 1
	}
	return b.den
}

func (b Beats) Add(o Beats) Beats {
	if b.num == 0 {
		return o
	}
	if o.num == 0 {
		return b
	}
	g := gcd(b.den, o.den)
	num := addChecked(mulChecked(b.num, o.den/g), mulChecked(o.num, b.den/g))
	if num == 0 {
		return Beats{}
	}
	return NewBeats(num, mulChecked(b.den/g, o.den))
}

func (b Beats) Sub(o Beats) Beats { return b.Add(o.Neg()) }

func (b Beats) Neg() Beats { return Beats{num: -b.num, den: b.den} }

func (b Beats) Mul(o Beats) Beats {
	if b.num == 0 || o.num == 0 {
		return Beats{}
	}
	// cross-reduce first to keep intermediates small
	g1 := gcd(abs64(b.num), o.Den())
	g2 := gcd(abs64(o.num), b.Den())
	return NewBeats(mulChecked(b.num/g1, o.num/g2), mulChecked(b.Den()/g2, o.Den()/g1))
}

// Div panics when o is zero.
func (b Beats) Div(o Beats) Beats {
	if o.num == 0 {
		panic("music: division by zero beats")
	}
	return b.Mul(o.Inverse())
}

// Inverse returns 1/b. It panics when b is zero.
func (b Beats) Inverse() Beats {
	if b.num == 0 {
		panic("music: inverse of zero beats")
	}
	return NewBeats(b.Den(), b.num)
}

func (b Beats) MulInt(n int64) Beats { return b.Mul(Whole(n)) }

// Cmp returns -1, 0 or +1. It compares exactly and never overflows.
func (b Beats) Cmp(o Beats) int {
	sb, so := b.Sign(), o.Sign()
	if sb != so {
		if sb < so {
			return -1
		}
		return 1
	}
	lh, ll := bits.Mul64(uint64(abs64(b.num)), uint64(o.Den()))
	rh, rl := bits.Mul64(uint64(abs64(o.num)), uint64(b.Den()))
	if lh != rh {
		return cmpUint(lh, rh) * sb
	}
	return cmpUint(ll, rl) * sb
}

func (b Beats) Less(o Beats) bool { return b.Cmp(o) < 0 }
func (b Beats) IsZero() bool      { return b.num == 0 }

func (b Beats) Sign() int {
	switch {
	case b.num < 0:
		return -1
	case b.num > 0:
		return 1
	}
	return 0
}

func (b Beats) Float64() float64 { return float64(b.num) / float64(b.Den()) }

// Ticks converts b to an integer tick count at the given resolution,
// rounding half away from zero when the product is not integral. perBeat
// must be positive.
func (b Beats) Ticks(perBeat int64) int64 {
	d := b.Den()
	n := abs64(b.num)
	whole := mulChecked(n/d, perBeat)
	// (n%d)*perBeat/d in 128 bits; the high word is below d.
	hi, lo := bits.Mul64(uint64(n%d), uint64(perBeat))
	q, r := bits.Div64(hi, lo, uint64(d))
	if r >= uint64(d)-r {
		q++
	}
	t := addChecked(whole, int64(q))
	if b.num < 0 {
		return -t
	}
	return t
}

func (b Beats) String() string {
	if b.Den() == 1 {
		return strconv.FormatInt(b.num, 10)
	}
	return fmt.Sprintf("%d/%d", b.num, b.den)
}

// MaxBeats returns the larger of a and b.
func MaxBeats(a, b Beats) Beats {
	if a.Less(b) {
		return b
	}
	return a
}

// ErrBeatsOverflow is the panic value of beat arithmetic whose exact result
// leaves int64. Note lengths with many large, coprime denominators get
// there.
var ErrBeatsOverflow = configErrorf("note lengths too fine to count exactly")

// RecoverOverflow turns an ErrBeatsOverflow panic into *err. Other panics
// propagate. Call it deferred:
//
//	defer music.RecoverOverflow(&err)
func RecoverOverflow(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if r != ErrBeatsOverflow {
		panic(r)
	}
	*err = ErrBeatsOverflow
}

func mulChecked(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(abs64(a)), uint64(abs64(b)))
	if hi != 0 || lo > math.MaxInt64 {
		panic(ErrBeatsOverflow)
	}
	if (a < 0) != (b < 0) {
		return -int64(lo)
	}
	return int64(lo)
}

func addChecked(a, b int64) int64 {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		panic(ErrBeatsOverflow)
	}
	return s
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
