package jitter

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source yields values in [0, 1).
type Source interface {
	Float64() float64
}

type zero struct{}

func (zero) Float64() float64 { return 0 }

// Zero is a Source that always returns 0, making callers deterministic.
var Zero Source = zero{}

type seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded returns a goroutine-safe uniform Source. A zero seed picks one from the clock.
func NewSeeded(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &seeded{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Symmetric maps a Source draw onto [-amplitude, amplitude).
func Symmetric(src Source, amplitude float64) float64 {
	if src == nil || amplitude == 0 {
		return 0
	}
	return (src.Float64()*2 - 1) * amplitude
}
