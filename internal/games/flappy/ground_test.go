package flappy

import (
	"testing"

	"github.com/vovakirdan/ghostflap/internal/random"
)

func TestGroundVariationsStepByOne(t *testing.T) {
	g, err := NewGround(random.NewSeeded(7), 80, 4, 2, 4)
	if err != nil {
		t.Fatalf("NewGround() failed: %v", err)
	}
	for i := 0; i < 500; i++ {
		if err := g.Scroll(1.3, 80, false); err != nil {
			t.Fatalf("Scroll() failed: %v", err)
		}
		tiles := g.Tiles()
		if tiles[len(tiles)-1].X <= 80 {
			t.Fatalf("strip does not cover the screen: last tile at %v", tiles[len(tiles)-1].X)
		}
		for j := 1; j < len(tiles); j++ {
			d := tiles[j].Variation - tiles[j-1].Variation
			if d < -1 || d > 1 {
				t.Fatalf("tiles %d and %d differ by %d variations", j-1, j, d)
			}
			if tiles[j].Variation < 0 || tiles[j].Variation > 3 {
				t.Fatalf("variation %d out of range", tiles[j].Variation)
			}
		}
	}
}

func TestGroundSwitchesType(t *testing.T) {
	g, err := NewGround(random.NewSeeded(1), 20, 4, 2, 4)
	if err != nil {
		t.Fatalf("NewGround() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		g.Scroll(1, 20, false)
	}
	if g.TypeIndex() != 0 {
		t.Fatal("ground switched type without being asked")
	}
	for i := 0; i < 10; i++ {
		g.Scroll(1, 20, true)
	}
	if g.TypeIndex() != 1 {
		t.Fatal("ground did not switch type")
	}
	tiles := g.Tiles()
	if tiles[len(tiles)-1].Type != 1 {
		t.Error("new tiles should use the second type")
	}
}
