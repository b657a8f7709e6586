package service

import (
	"math/rand"
	"sync"
	"time"
)

// MathRandSource implements domain.RandSource over math/rand. A single
// instance is shared by all requests, so access is serialized.
type MathRandSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandSource creates a time-seeded random source.
func NewRandSource() *MathRandSource {
	return &MathRandSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRandSource creates a random source with a fixed seed for
// deterministic shuffles in tests.
func NewSeededRandSource(seed int64) *MathRandSource {
	return &MathRandSource{rng: rand.New(rand.NewSource(seed))}
}

// Next returns a uniformly distributed int in [low, highExclusive).
func (s *MathRandSource) Next(low, highExclusive int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return low + s.rng.Intn(highExclusive-low)
}
