package sim

import "math"

// Mersenne-Twister parameters.
const (
	stateSize  = 624
	shiftSize  = 397
	upperMask  = 0x80000000
	lowerMask  = 0x7fffffff
	matrixA    = 0x9908b0df
	temperingB = 0x9d2c5680
	temperingC = 0xefc60000

	initMultiplier = 1812433253
	invMaxUint32   = 1.0 / float64(math.MaxUint32)
)

// largestBelowOne is the greatest float64 strictly less than 1.
var largestBelowOne = math.Nextafter(1, 0)

// Generator is a seeded 32-bit Mersenne-Twister variant.
//
// The state block is tempered in place when it is regenerated, so after the first
// 624 words the sequence diverges from textbook MT19937. The first block matches it
// exactly for the same seed.
//
// Thread-safety: NOT thread-safe. A Generator belongs to exactly one household and
// must never be shared between concurrently running stages.
type Generator struct {
	state  [stateSize]uint32
	cursor int
}

// NewGenerator creates a Generator seeded with seed.
// The cursor starts exhausted so the first draw regenerates the block.
func NewGenerator(seed uint32) *Generator {
	g := &Generator{}
	g.state[0] = seed
	for i := 1; i < stateSize; i++ {
		prev := g.state[i-1]
		g.state[i] = initMultiplier*(prev^(prev>>30)) + uint32(i)
	}
	g.cursor = stateSize
	return g
}

// Uint32 returns the next tempered 32-bit word.
// Every 624th call regenerates the whole block, so draws are not constant-time.
func (g *Generator) Uint32() uint32 {
	if g.cursor >= stateSize {
		g.regenerate()
	}
	w := g.state[g.cursor]
	g.cursor++
	return w
}

// NextUniform returns a draw in [0, 1).
// The word is scaled by 1/(2^32-1); the single word that would land on 1.0 is folded
// to the largest float64 below 1.
func (g *Generator) NextUniform() float64 {
	u := float64(g.Uint32()) * invMaxUint32
	if u >= 1 {
		return largestBelowOne
	}
	return u
}

// NextNormal returns a standard-normal deviate (mean 0, standard deviation 1).
//
// Ratio-of-uniforms method of Kinderman and Monahan with Leva's quadratic bounds
// (ACM TOMS 18, 1992). The loop runs about 1.37 times per result and the logarithm
// is only evaluated for roughly 1.2% of candidate points.
func (g *Generator) NextNormal() float64 {
	const (
		s  = 0.449871
		t  = -0.386595
		a  = 0.19600
		b  = 0.25472
		r1 = 0.27597
		r2 = 0.27846
	)
	for {
		// u in (0, 1] keeps log(u) finite.
		u := 1 - g.NextUniform()
		// v in [-0.5, 0.5) scaled by 1.7156 > sqrt(8/e).
		v := (g.NextUniform() - 0.5) * 1.7156

		x := u - s
		y := math.Abs(v) - t
		q := x*x + y*(a*y-b*x)

		if q < r1 {
			return v / u
		}
		if q > r2 {
			continue
		}
		if v*v <= -4*u*u*math.Log(u) {
			return v / u
		}
	}
}

// regenerate rebuilds all 624 words, tempers them in place and resets the cursor.
// The build-then-temper order must not change: reproducibility across runs depends on it.
func (g *Generator) regenerate() {
	mt := &g.state
	kk := 0
	for ; kk < stateSize-shiftSize; kk++ {
		y := (mt[kk] & upperMask) | (mt[kk+1] & lowerMask)
		mt[kk] = mt[kk+shiftSize] ^ (y >> 1) ^ mag01(y)
	}
	for ; kk < stateSize-1; kk++ {
		y := (mt[kk] & upperMask) | (mt[kk+1] & lowerMask)
		mt[kk] = mt[kk+shiftSize-stateSize] ^ (y >> 1) ^ mag01(y)
	}
	y := (mt[stateSize-1] & upperMask) | (mt[0] & lowerMask)
	mt[stateSize-1] = mt[shiftSize-1] ^ (y >> 1) ^ mag01(y)

	for i := range mt {
		w := mt[i]
		w ^= w >> 11
		w ^= (w << 7) & temperingB
		w ^= (w << 15) & temperingC
		w ^= w >> 18
		mt[i] = w
	}
	g.cursor = 0
}

func mag01(y uint32) uint32 {
	if y&1 != 0 {
		return matrixA
	}
	return 0
}
