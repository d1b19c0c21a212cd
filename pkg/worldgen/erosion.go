package worldgen

import (
	"math"
	"sort"
)

// ErosionConfig controls the hydraulic erosion post-process.
type ErosionConfig struct {
	Iterations          int
	Rainfall            float64
	Strength            float64
	FlowExponent        float64
	MinSlope            float64
	SmoothingIterations int
	SmoothingBlend      float64
}

// DefaultErosionConfig returns the pipeline's default erosion settings.
func DefaultErosionConfig() ErosionConfig {
	return ErosionConfig{
		Iterations:          1,
		Rainfall:            1.0,
		Strength:            0.02,
		FlowExponent:        0.5,
		MinSlope:            1e-4,
		SmoothingIterations: 1,
		SmoothingBlend:      0.5,
	}
}

var d8Offsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

var d8Dist = [8]float64{
	math.Sqrt2, 1, math.Sqrt2,
	1, 1,
	math.Sqrt2, 1, math.Sqrt2,
}

// Erode runs cfg.Iterations passes of D8 flow-direction computation,
// flow accumulation, slope-weighted erosion, and neighbourhood smoothing
// over the heightmap in place. The flow accumulation order is a stable
// elevation-descending sort keyed secondarily on cell index, which is
// what makes repeated runs byte-identical.
func Erode(cells []float64, width, height int, cfg ErosionConfig) {
	n := width * height
	downstream := make([]int, n)
	slope := make([]float64, n)
	flow := make([]float64, n)
	order := make([]int, n)

	for iter := 0; iter < cfg.Iterations; iter++ {
		computeD8(cells, width, height, downstream, slope)
		accumulateFlow(cells, downstream, flow, order, cfg.Rainfall)
		applyErosion(cells, slope, flow, cfg)
		smooth(cells, width, height, cfg.SmoothingIterations, cfg.SmoothingBlend)
	}

	ContrastStretch(cells, PlainsThreshold)
}

// computeD8 fills downstream (index of steepest-drop neighbour, or -1
// for sinks) and slope (drop / distance, 0 for sinks) for every cell.
func computeD8(cells []float64, width, height int, downstream []int, slope []float64) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			h := cells[i]

			best := -1
			bestSlope := 0.0

			for d, off := range d8Offsets {
				nx, ny := x+off[0], y+off[1]
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				nh := cells[ny*width+nx]
				drop := h - nh
				if drop <= 0 {
					continue
				}
				s := drop / d8Dist[d]
				if s > bestSlope {
					bestSlope = s
					best = ny*width + nx
				}
			}

			downstream[i] = best
			slope[i] = bestSlope
		}
	}
}

// accumulateFlow walks cells in elevation-descending order (ties broken
// by ascending index) so every upstream contribution is posted before
// its downstream cell is processed.
func accumulateFlow(cells []float64, downstream []int, flow []float64, order []int, rainfall float64) {
	for i := range flow {
		flow[i] = rainfall
		order[i] = i
	}

	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if cells[ia] != cells[ib] {
			return cells[ia] > cells[ib]
		}
		return ia < ib
	})

	for _, i := range order {
		if downstream[i] >= 0 {
			flow[downstream[i]] += flow[i]
		}
	}
}

func applyErosion(cells []float64, slope, flow []float64, cfg ErosionConfig) {
	for i := range cells {
		if slope[i] <= cfg.MinSlope {
			continue
		}
		delta := cfg.Strength * math.Pow(flow[i], cfg.FlowExponent) * slope[i]
		cells[i] = clamp01(cells[i] - delta)
	}
}

// smooth runs `iterations` passes of a 9-cell mean blend, boundary cells
// averaging only over their valid neighbours.
func smooth(cells []float64, width, height, iterations int, blend float64) {
	if iterations <= 0 {
		return
	}
	buf := make([]float64, len(cells))

	for p := 0; p < iterations; p++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				sum := 0.0
				count := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := x+dx, y+dy
						if nx < 0 || nx >= width || ny < 0 || ny >= height {
							continue
						}
						sum += cells[ny*width+nx]
						count++
					}
				}
				mean := sum / float64(count)
				i := y*width + x
				buf[i] = cells[i] + (mean-cells[i])*blend
			}
		}
		copy(cells, buf)
	}
}
