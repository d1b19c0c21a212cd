package worldgen

// CoastThreshold is the default elevation separating water from land.
const CoastThreshold = 0.35

// LabelIslands assigns a non-negative island id to every land cell
// (elevation >= coastThreshold) that is 4-connected to other land
// cells, and -1 to every water cell. It returns the id array, the
// per-island area (cell count) indexed by id, and the largest area
// observed. Flood fill uses an explicit stack rather than recursion,
// the way the teacher's pkg/maps flood fills walk a queue by hand.
func LabelIslands(cells []float64, width, height int, coastThreshold float64) (ids []int, areas []int, maxArea int) {
	ids = make([]int, len(cells))
	for i := range ids {
		ids[i] = -1
	}

	nextID := 0
	stack := make([][2]int, 0, 64)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if cells[i] < coastThreshold || ids[i] != -1 {
				continue
			}

			area := 0
			stack = stack[:0]
			stack = append(stack, [2]int{x, y})
			ids[i] = nextID

			for len(stack) > 0 {
				cell := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				area++

				cx, cy := cell[0], cell[1]
				for _, off := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
					nx, ny := cx+off[0], cy+off[1]
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					ni := ny*width + nx
					if ids[ni] != -1 || cells[ni] < coastThreshold {
						continue
					}
					ids[ni] = nextID
					stack = append(stack, [2]int{nx, ny})
				}
			}

			areas = append(areas, area)
			if area > maxArea {
				maxArea = area
			}
			nextID++
		}
	}

	return ids, areas, maxArea
}
