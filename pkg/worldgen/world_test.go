package worldgen

import "testing"

func TestBuildRejectsInvalidDimensions(t *testing.T) {
	if _, err := Build(Config{Seed: 1, Width: 0, Height: 10}); err != ErrInvalidDimensions {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := Build(Config{Seed: 1, Width: 10, Height: -1}); err != ErrInvalidDimensions {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestBuildRejectsInvalidClassifierThresholds(t *testing.T) {
	cfg := Config{Seed: 1, Width: 32, Height: 32, Classifier: ClassifierConfig{
		CityShare: 0.05, MinCities: 10, MaxCities: 5, MinScoreForCity: 0.35, MinCityHops: 4,
	}}
	if _, err := Build(cfg); err != ErrInvalidThreshold {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	cfg := Config{Seed: 1234, Width: 64, Height: 64, EnableErosion: true}

	a, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(a.Heightmap) != len(b.Heightmap) {
		t.Fatal("heightmap length mismatch between identical builds")
	}
	for i := range a.Heightmap {
		if a.Heightmap[i] != b.Heightmap[i] {
			t.Fatalf("heightmap cell %d diverged: %v != %v", i, a.Heightmap[i], b.Heightmap[i])
		}
	}
	if len(a.Settlements) != len(b.Settlements) {
		t.Fatalf("settlement count diverged: %d != %d", len(a.Settlements), len(b.Settlements))
	}
	for i := range a.Settlements {
		if a.Settlements[i] != b.Settlements[i] {
			t.Fatalf("settlement %d diverged: %+v != %+v", i, a.Settlements[i], b.Settlements[i])
		}
	}
	if len(a.Roads) != len(b.Roads) {
		t.Fatalf("road count diverged: %d != %d", len(a.Roads), len(b.Roads))
	}
}

func TestBuildDifferentSeedsDiverge(t *testing.T) {
	a, err := Build(Config{Seed: 1, Width: 48, Height: 48})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(Config{Seed: 2, Width: 48, Height: 48})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	same := true
	for i := range a.Heightmap {
		if a.Heightmap[i] != b.Heightmap[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to produce different heightmaps")
	}
}

func TestBuildAppliesDefaultsForZeroSubConfigs(t *testing.T) {
	w, err := Build(Config{Seed: 5, Width: 48, Height: 48})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if w.Graph == nil {
		t.Fatal("expected a non-nil road graph")
	}
	if w.Time == nil || w.Time.Speed != 1 {
		t.Fatal("expected a fresh time service at speed 1")
	}
}

func TestShortestPathSelfIsZeroDistance(t *testing.T) {
	w, err := Build(Config{Seed: 8, Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(w.Settlements) == 0 {
		t.Skip("no settlements sampled for this seed/size")
	}

	result := w.ShortestPath(0, 0)
	if result == nil || result.Distance != 0 {
		t.Fatalf("expected zero-distance self path, got %+v", result)
	}
}

func TestDebugReportsCounts(t *testing.T) {
	w, err := Build(Config{Seed: 3, Width: 48, Height: 48})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	report := w.Debug()
	if report == "" {
		t.Fatal("expected a non-empty debug report")
	}
}

func TestSetTimeSpeedDelegates(t *testing.T) {
	w, err := Build(Config{Seed: 6, Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := w.SetTimeSpeed(2); err != nil {
		t.Fatalf("SetTimeSpeed: %v", err)
	}
	if w.Time.Speed != 2 {
		t.Fatalf("expected speed 2, got %d", w.Time.Speed)
	}
	if err := w.SetTimeSpeed(3); err != ErrInvalidSpeed {
		t.Fatalf("expected ErrInvalidSpeed, got %v", err)
	}
}
