package worldgen

import (
	"fmt"
)

// Config is the full set of knobs accepted by Build. Only Seed, Width,
// and Height are required; every other field falls back to the
// pipeline default for its component when zero.
type Config struct {
	Seed   uint32
	Width  int
	Height int

	UseShading bool // renderer hint, carried through but never read by the core

	EnableErosion       bool
	ErosionIterations   int
	Strength            float64
	FlowExponent        float64
	MinSlope            float64
	SmoothingIterations int
	SmoothingBlend      float64
	Rainfall            float64

	Settlement SettlementConfig
	Road       RoadConfig
	Classifier ClassifierConfig
}

// World is the exclusively-owned result of Build: a heightmap, its
// island labelling, a settlement list, a road list, and the derived
// road graph, plus the time service the runtime drives. Everything
// here is logically immutable after construction except the time
// service's internal counters.
type World struct {
	Seed   uint32
	Width  int
	Height int

	UseShading    bool
	EnableErosion bool

	Heightmap    []float64
	IslandIDs    []int
	IslandAreas  []int
	MaxIsland    int
	Settlements  []Settlement
	Roads        []RoadSegment
	Graph        *RoadGraph
	Time         *TimeService
}

// Build runs the full pipeline: noise -> contrast -> erosion (if
// enabled) -> contrast -> islands -> settlements -> roads ->
// classification, in that strict order. Every stage observes the
// finalised output of the stage before it.
func Build(cfg Config) (*World, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)

	nf := NewNoiseField(cfg.Seed)
	heightmap := BuildHeightmap(cfg.Width, cfg.Height, nf, DefaultDomainWarpConfig())

	if cfg.EnableErosion {
		Erode(heightmap, cfg.Width, cfg.Height, ErosionConfig{
			Iterations:          cfg.ErosionIterations,
			Rainfall:            cfg.Rainfall,
			Strength:            cfg.Strength,
			FlowExponent:        cfg.FlowExponent,
			MinSlope:            cfg.MinSlope,
			SmoothingIterations: cfg.SmoothingIterations,
			SmoothingBlend:      cfg.SmoothingBlend,
		})
	}

	islandIDs, islandAreas, maxArea := LabelIslands(heightmap, cfg.Width, cfg.Height, CoastThreshold)

	rng := NewMulberry32(cfg.Seed)
	settlements := SampleSettlements(heightmap, cfg.Width, cfg.Height, islandIDs, islandAreas, maxArea, cfg.Settlement, rng)

	roads := PlanRoads(settlements, heightmap, cfg.Width, cfg.Height, cfg.Road)

	graph := BuildRoadGraph(settlementPositions(settlements), roads)
	Classify(settlements, graph, cfg.Classifier)

	return &World{
		Seed:          cfg.Seed,
		Width:         cfg.Width,
		Height:        cfg.Height,
		UseShading:    cfg.UseShading,
		EnableErosion: cfg.EnableErosion,
		Heightmap:     heightmap,
		IslandIDs:     islandIDs,
		IslandAreas:   islandAreas,
		MaxIsland:     maxArea,
		Settlements:   settlements,
		Roads:         roads,
		Graph:         graph,
		Time:          NewTimeService(),
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidDimensions
	}
	if err := validateClassifierThresholds(cfg.Classifier); err != nil {
		return err
	}
	return nil
}

// validateClassifierThresholds fails fast on classifier knobs that are
// nonsensical before they ever reach Classify, the way spec.md §7 asks
// for configuration errors to surface at Build. A zero-value
// ClassifierConfig is allowed through: applyConfigDefaults replaces it
// wholesale before the pipeline runs.
func validateClassifierThresholds(cfg ClassifierConfig) error {
	if cfg == (ClassifierConfig{}) {
		return nil
	}
	if cfg.CityShare < 0 || cfg.CityShare > 1 {
		return ErrInvalidThreshold
	}
	if cfg.MinCities < 0 || cfg.MaxCities < cfg.MinCities {
		return ErrInvalidThreshold
	}
	if cfg.MinScoreForCity < 0 || cfg.MinScoreForCity > 1 {
		return ErrInvalidThreshold
	}
	if cfg.MinCityHops < 0 {
		return ErrInvalidThreshold
	}
	return nil
}

// settlementPositions extracts the world coordinates the road graph
// needs to resolve a node's position independent of its road degree.
func settlementPositions(settlements []Settlement) [][2]float64 {
	positions := make([][2]float64, len(settlements))
	for i, s := range settlements {
		positions[i] = [2]float64{s.X, s.Y}
	}
	return positions
}

func applyConfigDefaults(cfg *Config) {
	if cfg.ErosionIterations <= 0 {
		cfg.ErosionIterations = 1
	}
	if cfg.Strength <= 0 {
		cfg.Strength = 0.02
	}
	if cfg.FlowExponent <= 0 {
		cfg.FlowExponent = 0.5
	}
	if cfg.MinSlope <= 0 {
		cfg.MinSlope = 1e-4
	}
	if cfg.SmoothingIterations <= 0 {
		cfg.SmoothingIterations = 1
	}
	if cfg.SmoothingBlend <= 0 {
		cfg.SmoothingBlend = 0.5
	}
	if cfg.Rainfall <= 0 {
		cfg.Rainfall = 1.0
	}

	if cfg.Settlement == (SettlementConfig{}) {
		cfg.Settlement = DefaultSettlementConfig()
	}
	if cfg.Road == (RoadConfig{}) {
		cfg.Road = DefaultRoadConfig()
	}
	if cfg.Classifier == (ClassifierConfig{}) {
		cfg.Classifier = DefaultClassifierConfig()
	}
}

// ShortestPath resolves a travel request between two settlements.
func (w *World) ShortestPath(from, to int) *PathResult {
	return w.Graph.ShortestPath(from, to)
}

// Tick advances the world's time service.
func (w *World) Tick(nowMs int64) {
	w.Time.Tick(nowMs)
}

// SetTimeSpeed changes the time service's speed multiplier.
func (w *World) SetTimeSpeed(speed int) error {
	return w.Time.SetSpeed(speed)
}

// CurrentDate derives the current calendar date.
func (w *World) CurrentDate() Date {
	return w.Time.CurrentDate()
}

// Debug returns a plain-text summary of the world, the way the
// teacher's map generator reports a text dump of its grid and
// territories for operator visibility.
func (w *World) Debug() string {
	landCells := 0
	for _, v := range w.Heightmap {
		if v >= CoastThreshold {
			landCells++
		}
	}

	cities, towns, villages := 0, 0, 0
	for _, s := range w.Settlements {
		switch s.Category {
		case CategoryCity:
			cities++
		case CategoryTown:
			towns++
		default:
			villages++
		}
	}

	return fmt.Sprintf(
		"World seed=%d size=%dx%d\nLand cells: %d/%d\nIslands: %d (max area %d)\nSettlements: %d (villages=%d towns=%d cities=%d)\nRoads: %d\n",
		w.Seed, w.Width, w.Height,
		landCells, len(w.Heightmap),
		len(w.IslandAreas), w.MaxIsland,
		len(w.Settlements), villages, towns, cities,
		len(w.Roads),
	)
}
