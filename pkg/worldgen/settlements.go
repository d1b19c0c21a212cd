package worldgen

import "math"

// Category classifies a settlement's tier. Every settlement starts as a
// village; classification may promote it to town or city.
type Category int

const (
	CategoryVillage Category = iota
	CategoryTown
	CategoryCity
)

// String renders a category name.
func (c Category) String() string {
	switch c {
	case CategoryTown:
		return "town"
	case CategoryCity:
		return "city"
	default:
		return "village"
	}
}

// Settlement is a sampled settlement site. Its identity is its
// positional index in World.Settlements; that index doubles as its
// road-graph node id. Annotation fields (RoadDegree, SecondHopReach,
// CityScore, Category) are zero until the classifier runs.
type Settlement struct {
	X, Y           float64
	Elevation      float64
	Suitability    float64
	IslandID       int
	IslandArea     int
	RoadDegree     int
	SecondHopReach int
	CityScore      float64
	Category       Category
}

// SettlementConfig controls sampling.
type SettlementConfig struct {
	Stride         int
	CoastThreshold float64
	FadeOutHeight  float64
	BaseChance     float64
	IslandBase     float64
	IslandExponent float64
	MinDistance    float64
	MaxSettlements int
}

// DefaultSettlementConfig returns the pipeline's default sampler settings.
func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		Stride:         4,
		CoastThreshold: CoastThreshold,
		FadeOutHeight:  0.92,
		BaseChance:     0.35,
		IslandBase:     0.35,
		IslandExponent: 0.75,
		MinDistance:    12,
		MaxSettlements: 400,
	}
}

// settlementIndex is a uniform-grid spatial index over already-placed
// settlements, bucketed by floor(pos/cellSize), used to reject
// candidates that fall within MinDistance of an existing settlement.
type settlementIndex struct {
	cellSize float64
	buckets  map[[2]int][]int
}

func newSettlementIndex(cellSize float64) *settlementIndex {
	return &settlementIndex{cellSize: cellSize, buckets: make(map[[2]int][]int)}
}

func (idx *settlementIndex) bucketOf(x, y float64) [2]int {
	return [2]int{int(math.Floor(x / idx.cellSize)), int(math.Floor(y / idx.cellSize))}
}

func (idx *settlementIndex) insert(i int, x, y float64) {
	b := idx.bucketOf(x, y)
	idx.buckets[b] = append(idx.buckets[b], i)
}

func (idx *settlementIndex) tooClose(x, y, minDist float64, settlements []Settlement) bool {
	b := idx.bucketOf(x, y)
	bx, by := b[0], b[1]
	minDistSq := minDist * minDist

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, i := range idx.buckets[[2]int{bx + dx, by + dy}] {
				sx, sy := settlements[i].X, settlements[i].Y
				ddx, ddy := x-sx, y-sy
				if ddx*ddx+ddy*ddy < minDistSq {
					return true
				}
			}
		}
	}
	return false
}

// SampleSettlements strides across the grid and draws a Bernoulli trial
// at each sampled cell, weighted by elevation suitability and the
// sampled cell's island area, rejecting candidates too close to an
// already-placed settlement. All randomness flows from rng, in scan
// order, so the output is fully determined by cfg and the rng's seed.
func SampleSettlements(cells []float64, width, height int, islandIDs []int, islandAreas []int, maxArea int, cfg SettlementConfig, rng *Mulberry32) []Settlement {
	settlements := make([]Settlement, 0, cfg.MaxSettlements)
	idx := newSettlementIndex(cfg.MinDistance)

	stride := cfg.Stride
	if stride < 1 {
		stride = 1
	}

	for y := 0; y < height && len(settlements) < cfg.MaxSettlements; y += stride {
		for x := 0; x < width && len(settlements) < cfg.MaxSettlements; x += stride {
			i := y*width + x
			elevation := cells[i]

			suitability := suitabilityOf(elevation, cfg.CoastThreshold, cfg.FadeOutHeight)
			if suitability <= 0 {
				continue
			}

			islandID := islandIDs[i]
			islandArea := 0
			if islandID >= 0 && islandID < len(islandAreas) {
				islandArea = islandAreas[islandID]
			}
			islandFactor := islandFactorOf(islandArea, maxArea, cfg.IslandBase, cfg.IslandExponent)

			prob := cfg.BaseChance * suitability * suitability * islandFactor
			if rng.Float64() >= prob {
				continue
			}

			cx, cy := float64(x)+0.5, float64(y)+0.5
			if idx.tooClose(cx, cy, cfg.MinDistance, settlements) {
				continue
			}

			settlements = append(settlements, Settlement{
				X: cx, Y: cy,
				Elevation:   elevation,
				Suitability: suitability,
				IslandID:    islandID,
				IslandArea:  islandArea,
			})
			idx.insert(len(settlements)-1, cx, cy)
		}
	}

	return settlements
}

func suitabilityOf(elevation, coastThreshold, fadeOutHeight float64) float64 {
	if elevation < coastThreshold || elevation >= fadeOutHeight {
		return 0
	}
	return 1 - (elevation-coastThreshold)/(fadeOutHeight-coastThreshold)
}

func islandFactorOf(area, maxArea int, base, exponent float64) float64 {
	if maxArea <= 0 {
		return base
	}
	ratio := float64(area) / float64(maxArea)
	return base + (1-base)*math.Pow(ratio, exponent)
}
