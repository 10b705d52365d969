package generator

import (
	"math/rand"

	"github.com/google/uuid"
)

var alphabet = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// RandomStream is a per-worker deterministic pseudo-random source. Two
// streams constructed with the same seed produce identical value sequences,
// which is what makes a benchmark run reproducible. Different workers must
// use distinct seeds (global seed plus worker index) so their streams stay
// uncorrelated.
type RandomStream struct {
	seed int64
	rand *rand.Rand
}

func NewRandomStream(seed int64) *RandomStream {
	return &RandomStream{
		seed: seed,
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (self *RandomStream) Seed() int64 {
	return self.seed
}

// IntBetween returns a uniform int in [lo, hi], both ends inclusive.
func (self *RandomStream) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + self.rand.Intn(hi-lo+1)
}

// Int63Between returns a uniform int64 in [lo, hi], both ends inclusive.
func (self *RandomStream) Int63Between(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + self.rand.Int63n(hi-lo+1)
}

// FloatBetween returns a uniform float64 in [lo, hi).
func (self *RandomStream) FloatBetween(lo, hi float64) float64 {
	return lo + (hi-lo)*self.rand.Float64()
}

// StringWithLength returns a random letter string with a uniform length
// in [minLength, maxLength].
func (self *RandomStream) StringWithLength(minLength, maxLength int) string {
	length := self.IntBetween(minLength, maxLength)
	b := make([]byte, length)
	for i := 0; i < length; i++ {
		b[i] = alphabet[self.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// UUID returns a version-4-shaped identifier drawn from this stream. The
// stream itself is the entropy reader, so the ids are exactly as
// deterministic as every other value the stream hands out.
func (self *RandomStream) UUID() string {
	id, err := uuid.NewRandomFromReader(self.rand)
	if err != nil {
		// (*rand.Rand).Read never fails.
		panic(err)
	}
	return id.String()
}
