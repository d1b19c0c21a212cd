package worldgen

import "testing"

func buildFlatIslandCells(width, height int, elevation float64) []float64 {
	cells := make([]float64, width*height)
	for i := range cells {
		cells[i] = elevation
	}
	return cells
}

func TestSampleSettlementsRespectsMinDistance(t *testing.T) {
	width, height := 64, 64
	cells := buildFlatIslandCells(width, height, 0.6)
	islandIDs, islandAreas, maxArea := LabelIslands(cells, width, height, CoastThreshold)

	cfg := DefaultSettlementConfig()
	cfg.BaseChance = 1.0 // highest base chance; acceptance still scales with suitability squared
	cfg.MaxSettlements = 50

	rng := NewMulberry32(1)
	settlements := SampleSettlements(cells, width, height, islandIDs, islandAreas, maxArea, cfg, rng)

	if len(settlements) == 0 {
		t.Fatal("expected at least one settlement on a flat suitable island")
	}

	for i := range settlements {
		for j := i + 1; j < len(settlements); j++ {
			d := dist(settlements[i].X, settlements[i].Y, settlements[j].X, settlements[j].Y)
			if d < cfg.MinDistance {
				t.Fatalf("settlements %d and %d are %v apart, want >= %v", i, j, d, cfg.MinDistance)
			}
		}
	}
}

func TestSampleSettlementsSuitabilityBounds(t *testing.T) {
	width, height := 64, 64
	cells := buildFlatIslandCells(width, height, 0.6)
	islandIDs, islandAreas, maxArea := LabelIslands(cells, width, height, CoastThreshold)

	cfg := DefaultSettlementConfig()
	cfg.BaseChance = 1.0
	cfg.MaxSettlements = 50

	rng := NewMulberry32(7)
	settlements := SampleSettlements(cells, width, height, islandIDs, islandAreas, maxArea, cfg, rng)

	for _, s := range settlements {
		if s.Elevation < cfg.CoastThreshold || s.Elevation >= cfg.FadeOutHeight {
			t.Fatalf("settlement elevation %v outside [%v, %v)", s.Elevation, cfg.CoastThreshold, cfg.FadeOutHeight)
		}
	}
}

func TestSampleSettlementsNoLandProducesNone(t *testing.T) {
	width, height := 32, 32
	cells := buildFlatIslandCells(width, height, 0.1) // all water
	islandIDs, islandAreas, maxArea := LabelIslands(cells, width, height, CoastThreshold)

	cfg := DefaultSettlementConfig()
	rng := NewMulberry32(1)
	settlements := SampleSettlements(cells, width, height, islandIDs, islandAreas, maxArea, cfg, rng)

	if len(settlements) != 0 {
		t.Fatalf("expected no settlements on an all-water map, got %d", len(settlements))
	}
}

func TestSampleSettlementsStopsAtMaxSettlements(t *testing.T) {
	width, height := 64, 64
	cells := buildFlatIslandCells(width, height, 0.6)
	islandIDs, islandAreas, maxArea := LabelIslands(cells, width, height, CoastThreshold)

	cfg := DefaultSettlementConfig()
	cfg.BaseChance = 1.0
	cfg.MinDistance = 1 // allow dense packing so the cap is the limiting factor
	cfg.MaxSettlements = 5

	rng := NewMulberry32(1)
	settlements := SampleSettlements(cells, width, height, islandIDs, islandAreas, maxArea, cfg, rng)

	if len(settlements) > cfg.MaxSettlements {
		t.Fatalf("expected at most %d settlements, got %d", cfg.MaxSettlements, len(settlements))
	}
}

func TestSampleSettlementsDeterministic(t *testing.T) {
	width, height := 48, 48
	cells := buildFlatIslandCells(width, height, 0.6)
	islandIDs, islandAreas, maxArea := LabelIslands(cells, width, height, CoastThreshold)
	cfg := DefaultSettlementConfig()

	a := SampleSettlements(cells, width, height, islandIDs, islandAreas, maxArea, cfg, NewMulberry32(42))
	b := SampleSettlements(cells, width, height, islandIDs, islandAreas, maxArea, cfg, NewMulberry32(42))

	if len(a) != len(b) {
		t.Fatalf("settlement counts diverged: %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("settlement %d diverged: %+v != %+v", i, a[i], b[i])
		}
	}
}
