package worldgen

import (
	"math"
	"testing"
)

func TestNoiseFieldDeterministic(t *testing.T) {
	a := NewNoiseField(123)
	b := NewNoiseField(123)

	for i := 0; i < 50; i++ {
		x := float64(i) * 0.13
		y := float64(i) * 0.27
		if a.Eval2(x, y) != b.Eval2(x, y) {
			t.Fatalf("Eval2 diverged at (%v,%v)", x, y)
		}
	}
}

func TestEval2Bounded(t *testing.T) {
	nf := NewNoiseField(9)
	for i := 0; i < 200; i++ {
		x := float64(i) * 0.37
		y := float64(i) * 0.51
		v := nf.Eval2(x, y)
		if math.IsNaN(v) || v < -1.01 || v > 1.01 {
			t.Fatalf("Eval2(%v,%v) = %v out of expected range", x, y, v)
		}
	}
}

func TestOctavesNormalised(t *testing.T) {
	nf := NewNoiseField(5)
	cfg := DefaultOctaveConfig()

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := nf.Octaves(float64(x)/10, float64(y)/10, cfg)
			if v < 0 || v > 1 {
				t.Fatalf("Octaves(%d,%d) = %v outside [0,1]", x, y, v)
			}
		}
	}
}

func TestWarpedDeterministic(t *testing.T) {
	nf := NewNoiseField(99)
	cfg := DefaultDomainWarpConfig()

	a := nf.Warped(0.3, 0.6, cfg)
	b := nf.Warped(0.3, 0.6, cfg)
	if a != b {
		t.Fatalf("Warped is not pure: %v != %v", a, b)
	}
}
