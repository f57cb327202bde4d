package history

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// Source supplies uniform randomness. *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// NewSource returns a seeded PCG generator.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeedFor derives a stable seed for an athlete on a calendar day, so repeated
// requests within a day see the same series.
func SeedFor(athleteID int, day time.Time) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(athleteID))
	y, m, d := day.UTC().Date()
	binary.BigEndian.PutUint64(buf[8:], uint64(y*10000+int(m)*100+d))
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
