// Package random provides the uniform generator consumed by obstacle
// generation and actor setup.
//
// Live play uses an unseeded source (seeded from crypto/rand); tests and
// reproducible runs use a seeded PCG source.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
)

// Source is a uniform float generator.
type Source interface {
	// Uniform returns a float in [min, max). It returns min when max <= min.
	Uniform(min, max float64) float64
}

// EmptyDomainError is returned by Choose when asked to pick from nothing.
// It indicates a configuration bug rather than a user error.
type EmptyDomainError struct {
	Domain string
}

func (e *EmptyDomainError) Error() string {
	if e.Domain == "" {
		return "random: choice domain is empty"
	}
	return fmt.Sprintf("random: %s domain is empty", e.Domain)
}

// Choose picks a uniformly selected element of set.
// The domain name is only used for the error message.
func Choose[T any](src Source, domain string, set []T) (T, error) {
	var zero T
	if len(set) == 0 {
		return zero, &EmptyDomainError{Domain: domain}
	}
	i := int(math.Floor(src.Uniform(0, float64(len(set)))))
	if i >= len(set) {
		i = len(set) - 1
	}
	if i < 0 {
		i = 0
	}
	return set[i], nil
}

// PCG is a deterministic Source backed by math/rand/v2's PCG generator.
type PCG struct {
	rng *rand.Rand
}

// NewSeeded returns a Source whose sequence depends only on seed.
func NewSeeded(seed int64) *PCG {
	s := uint64(seed)
	return &PCG{rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// NewUnseeded returns a Source seeded from crypto/rand.
func NewUnseeded() (*PCG, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeeded(seed), nil
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("random: read seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Uniform implements Source.
func (p *PCG) Uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	v := min + p.rng.Float64()*(max-min)
	// Rounding can land exactly on max for wide ranges.
	if v >= max {
		v = math.Nextafter(max, min)
	}
	return v
}

// Sequence is a Source that replays fixed fractions in order, cycling when
// exhausted. Each fraction f in [0, 1) maps to min + f*(max-min).
// Useful for pinning generator decisions in tests.
type Sequence struct {
	fractions []float64
	next      int
}

// NewSequence creates a Sequence over the given fractions.
func NewSequence(fractions ...float64) *Sequence {
	return &Sequence{fractions: fractions}
}

// Uniform implements Source.
func (s *Sequence) Uniform(min, max float64) float64 {
	if max <= min || len(s.fractions) == 0 {
		return min
	}
	f := s.fractions[s.next%len(s.fractions)]
	s.next++
	f = math.Max(0, math.Min(f, math.Nextafter(1, 0)))
	v := min + f*(max-min)
	if v >= max {
		v = math.Nextafter(max, min)
	}
	return v
}
