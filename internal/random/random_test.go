package random

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestSeededDeterminism(t *testing.T) {
	a := NewSeeded(12345)
	b := NewSeeded(12345)

	for i := 0; i < 100; i++ {
		va := a.Uniform(-3, 7)
		vb := b.Uniform(-3, 7)
		if va != vb {
			t.Fatalf("draw %d differs: %f vs %f", i, va, vb)
		}
	}
}

func TestUniformDegenerateRange(t *testing.T) {
	src := NewSeeded(1)
	if v := src.Uniform(5, 5); v != 5 {
		t.Errorf("Uniform(5, 5) = %f, expected 5", v)
	}
	if v := src.Uniform(5, 1); v != 5 {
		t.Errorf("Uniform(5, 1) = %f, expected min", v)
	}
}

// Property: Uniform always lands in the half-open interval.
func TestUniformBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		lo := rapid.Float64Range(-1e6, 1e6).Draw(rt, "lo")
		width := rapid.Float64Range(1e-6, 1e6).Draw(rt, "width")
		hi := lo + width

		v := NewSeeded(seed).Uniform(lo, hi)
		if v < lo || v >= hi {
			rt.Fatalf("Uniform(%f, %f) = %f out of range", lo, hi, v)
		}
	})
}

func TestChooseEmpty(t *testing.T) {
	_, err := Choose(NewSeeded(1), "color", []string{})

	var empty *EmptyDomainError
	if !errors.As(err, &empty) {
		t.Fatalf("Choose on empty set returned %v, expected EmptyDomainError", err)
	}
	if empty.Domain != "color" {
		t.Errorf("Domain = %q, expected \"color\"", empty.Domain)
	}
}

func TestChooseCoversSet(t *testing.T) {
	src := NewSeeded(7)
	set := []string{"red", "yellow", "green", "blue"}
	seen := make(map[string]int)

	for i := 0; i < 400; i++ {
		v, err := Choose(src, "color", set)
		if err != nil {
			t.Fatalf("Choose failed: %v", err)
		}
		seen[v]++
	}

	for _, c := range set {
		if seen[c] == 0 {
			t.Errorf("Choose never picked %q in 400 draws", c)
		}
	}
}

func TestSequence(t *testing.T) {
	seq := NewSequence(0, 0.5, 0.999999)

	if v := seq.Uniform(0, 10); v != 0 {
		t.Errorf("first draw = %f, expected 0", v)
	}
	if v := seq.Uniform(0, 10); v != 5 {
		t.Errorf("second draw = %f, expected 5", v)
	}
	if v := seq.Uniform(0, 10); v >= 10 {
		t.Errorf("third draw = %f, expected < 10", v)
	}
	// Cycles
	if v := seq.Uniform(0, 10); v != 0 {
		t.Errorf("fourth draw = %f, expected cycle back to 0", v)
	}

	got, err := Choose(NewSequence(0.5), "variant", []int{1, 2, 3, 4})
	if err != nil || got != 3 {
		t.Errorf("Choose with fraction 0.5 = %d, %v; expected 3", got, err)
	}
}
