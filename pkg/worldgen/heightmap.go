package worldgen

import "math"

// PlainsThreshold is the elevation above which the contrast stretch
// operates; cells at or below it are left untouched.
const PlainsThreshold = 0.48

// BuildHeightmap samples the domain-warped noise field over a width x
// height grid, applies a radial island mask, clamps to [0,1], and then
// runs one contrast stretch pass. Cells are row-major: index y*width+x.
func BuildHeightmap(width, height int, nf *NoiseField, cfg DomainWarpConfig) []float64 {
	cells := make([]float64, width*height)

	for y := 0; y < height; y++ {
		ny := (float64(y) + 0.5) / float64(height)
		for x := 0; x < width; x++ {
			nx := (float64(x) + 0.5) / float64(width)

			v := nf.Warped(nx, ny, cfg)
			mask := islandMask(nx, ny)
			v = clamp01(v * mask)

			cells[y*width+x] = v
		}
	}

	ContrastStretch(cells, PlainsThreshold)
	return cells
}

// islandMask computes the radial falloff mask used to push elevation
// toward water at the map edges.
func islandMask(nx, ny float64) float64 {
	dx := nx - 0.5
	dy := ny - 0.5
	d := math.Sqrt(dx*dx + dy*dy)
	m := 1 - d
	if m < 0 {
		m = 0
	}
	return math.Pow(m, 1.2)
}

// ContrastStretch remaps elevations above threshold onto [threshold, 1.0]
// via a smoothstep curve, using the observed min/max above threshold as
// the source range. Cells at or below threshold are untouched. If the
// observed range is degenerate (no spread), the stretch is a no-op.
func ContrastStretch(cells []float64, threshold float64) {
	min, max := math.Inf(1), math.Inf(-1)
	found := false

	for _, v := range cells {
		if v <= threshold {
			continue
		}
		found = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if !found || max-min < 1e-12 {
		return
	}

	for i, v := range cells {
		if v <= threshold {
			continue
		}
		t := (v - min) / (max - min)
		smooth := t * t * (3 - 2*t)
		cells[i] = threshold + smooth*(1-threshold)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
