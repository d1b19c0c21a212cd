package worldgen

import "container/heap"

type astarNode struct {
	cell  int
	f     float64
	index int
}

type astarHeap []*astarNode

func (h astarHeap) Len() int           { return len(h) }
func (h astarHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *astarHeap) Push(x interface{}) {
	n := *h
	item := x.(*astarNode)
	item.index = len(n)
	*h = append(n, item)
}
func (h *astarHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// refinePath runs weighted A* over a coarse grid (cfg.Step cells per
// side) between the coarse cells containing sa and sb, using slope and
// water penalties sampled from the fine heightmap. The returned
// polyline always starts at sa's exact coordinates and ends at sb's.
func refinePath(heightmap []float64, width, height int, sa, sb Settlement, cfg RoadConfig, step float64) [][2]float64 {
	cols := int((float64(width) + step - 1) / step)
	rows := int((float64(height) + step - 1) / step)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cellElev := func(gx, gy int) float64 {
		wx := (float64(gx) + 0.5) * step
		wy := (float64(gy) + 0.5) * step
		hx := int(wx)
		hy := int(wy)
		if hx < 0 {
			hx = 0
		}
		if hx >= width {
			hx = width - 1
		}
		if hy < 0 {
			hy = 0
		}
		if hy >= height {
			hy = height - 1
		}
		return heightmap[hy*width+hx]
	}

	toCell := func(x, y float64) (int, int) {
		gx := int(x / step)
		gy := int(y / step)
		if gx < 0 {
			gx = 0
		}
		if gx >= cols {
			gx = cols - 1
		}
		if gy < 0 {
			gy = 0
		}
		if gy >= rows {
			gy = rows - 1
		}
		return gx, gy
	}

	worldOf := func(gx, gy int) (float64, float64) {
		return (float64(gx) + 0.5) * step, (float64(gy) + 0.5) * step
	}

	startX, startY := toCell(sa.X, sa.Y)
	goalX, goalY := toCell(sb.X, sb.Y)
	start := startY*cols + startX
	goal := goalY*cols + goalX

	fallback := [][2]float64{{sa.X, sa.Y}, {sb.X, sb.Y}}
	if start == goal {
		return fallback
	}

	heuristic := func(gx, gy int) float64 {
		wx, wy := worldOf(gx, gy)
		return dist(wx, wy, sb.X, sb.Y)
	}

	gScore := map[int]float64{start: 0}
	parent := map[int]int{}
	closed := make(map[int]bool)

	open := &astarHeap{}
	heap.Push(open, &astarNode{cell: start, f: heuristic(startX, startY)})

	found := false

	for open.Len() > 0 {
		cur := heap.Pop(open).(*astarNode)
		if closed[cur.cell] {
			continue
		}
		closed[cur.cell] = true

		if cur.cell == goal {
			found = true
			break
		}

		cx, cy := cur.cell%cols, cur.cell/cols
		ch := cellElev(cx, cy)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := cx+dx, cy+dy
				if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
					continue
				}
				ncell := ny*cols + nx
				if closed[ncell] {
					continue
				}

				nh := cellElev(nx, ny)
				base := step
				if dx != 0 && dy != 0 {
					base *= 1.4142135623730951
				}

				waterPenalty := 0.0
				if ch < cfg.WaterThreshold || nh < cfg.WaterThreshold {
					waterPenalty = cfg.WaterPenalty
				}

				elevDiff := nh - ch
				if elevDiff < 0 {
					elevDiff = -elevDiff
				}
				cost := base * (1 + elevDiff*cfg.SlopeCost + waterPenalty)

				tentative := gScore[cur.cell] + cost
				if existing, ok := gScore[ncell]; !ok || tentative < existing {
					gScore[ncell] = tentative
					parent[ncell] = cur.cell
					heap.Push(open, &astarNode{cell: ncell, f: tentative + heuristic(nx, ny)})
				}
			}
		}
	}

	if !found {
		return fallback
	}

	var cellsPath []int
	for c := goal; ; {
		cellsPath = append(cellsPath, c)
		if c == start {
			break
		}
		p, ok := parent[c]
		if !ok {
			return fallback
		}
		c = p
	}

	points := make([][2]float64, 0, len(cellsPath))
	for i := len(cellsPath) - 1; i >= 0; i-- {
		gx, gy := cellsPath[i]%cols, cellsPath[i]/cols
		wx, wy := worldOf(gx, gy)
		points = append(points, [2]float64{wx, wy})
	}

	points[0] = [2]float64{sa.X, sa.Y}
	points[len(points)-1] = [2]float64{sb.X, sb.Y}

	return points
}
