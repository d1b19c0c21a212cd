package worldgen

import (
	"container/heap"
	"math"
	"sort"
)

// RoadSegment is a single road between two settlements, identified by
// their indices into the settlement list. Coordinates are redundant
// with the settlements they reference, kept inline so a road can be
// inspected without a settlement-list lookup.
type RoadSegment struct {
	A, B           int
	AX, AY, BX, BY float64
	Length         float64
	Points         [][2]float64
}

// RoadConfig controls candidate generation, MST connectivity, the
// redundancy filter, and A* path refinement.
type RoadConfig struct {
	K              int
	MaxDistance    float64
	ForceMST       bool
	PathFactor     float64
	Step           float64
	SlopeCost      float64
	WaterThreshold float64
	WaterPenalty   float64
}

// DefaultRoadConfig returns the pipeline's default road-planning settings.
func DefaultRoadConfig() RoadConfig {
	return RoadConfig{
		K:              6,
		MaxDistance:    360,
		ForceMST:       true,
		PathFactor:     1.15,
		Step:           1,
		SlopeCost:      15,
		WaterThreshold: 0.35,
		WaterPenalty:   8,
	}
}

type candidateEdge struct {
	a, b   int
	length float64
}

// PlanRoads builds candidate edges, connects them with a Kruskal MST,
// admits a bounded number of redundant edges via a shortest-path
// detour test, and finally refines every admitted edge into a
// terrain-aware polyline via A* on the heightmap grid.
func PlanRoads(settlements []Settlement, heightmap []float64, width, height int, cfg RoadConfig) []RoadSegment {
	candidates := buildCandidateEdges(settlements, cfg)

	uf := newUnionFind(len(settlements))
	sorted := append([]candidateEdge(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].length != sorted[j].length {
			return sorted[i].length < sorted[j].length
		}
		if sorted[i].a != sorted[j].a {
			return sorted[i].a < sorted[j].a
		}
		return sorted[i].b < sorted[j].b
	})

	adjacency := make([]map[int]float64, len(settlements))
	for i := range adjacency {
		adjacency[i] = make(map[int]float64)
	}

	var admitted []candidateEdge
	admittedSet := make(map[[2]int]bool)

	admit := func(e candidateEdge) {
		admitted = append(admitted, e)
		admittedSet[pairKey(e.a, e.b)] = true
		adjacency[e.a][e.b] = e.length
		adjacency[e.b][e.a] = e.length
	}

	if cfg.ForceMST {
		for _, e := range sorted {
			if uf.find(e.a) != uf.find(e.b) {
				uf.union(e.a, e.b)
				admit(e)
			}
		}
	}

	pathFactor := cfg.PathFactor
	if pathFactor <= 0 {
		pathFactor = 1.15
	}

	for _, e := range sorted {
		if admittedSet[pairKey(e.a, e.b)] {
			continue
		}
		current := dijkstraDistance(adjacency, e.a, e.b)
		if math.IsInf(current, 1) || current > e.length*pathFactor {
			admit(e)
		}
	}

	step := cfg.Step
	if step <= 0 {
		step = 1
	}

	segments := make([]RoadSegment, 0, len(admitted))
	for _, e := range admitted {
		sa, sb := settlements[e.a], settlements[e.b]
		points := refinePath(heightmap, width, height, sa, sb, cfg, step)
		segments = append(segments, RoadSegment{
			A: e.a, B: e.b,
			AX: sa.X, AY: sa.Y, BX: sb.X, BY: sb.Y,
			Length: polylineLength(points),
			Points: points,
		})
	}

	return segments
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func buildCandidateEdges(settlements []Settlement, cfg RoadConfig) []candidateEdge {
	k := cfg.K
	if k < 1 {
		k = 1
	}

	type neighbourDist struct {
		idx  int
		dist float64
	}

	seen := make(map[[2]int]bool)
	var candidates []candidateEdge

	for i := range settlements {
		var neighbours []neighbourDist
		for j := range settlements {
			if i == j {
				continue
			}
			d := dist(settlements[i].X, settlements[i].Y, settlements[j].X, settlements[j].Y)
			if d > cfg.MaxDistance {
				continue
			}
			neighbours = append(neighbours, neighbourDist{j, d})
		}

		sort.Slice(neighbours, func(a, b int) bool {
			if neighbours[a].dist != neighbours[b].dist {
				return neighbours[a].dist < neighbours[b].dist
			}
			return neighbours[a].idx < neighbours[b].idx
		})

		if len(neighbours) > k {
			neighbours = neighbours[:k]
		}

		for _, nb := range neighbours {
			key := pairKey(i, nb.idx)
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, candidateEdge{a: key[0], b: key[1], length: nb.dist})
		}
	}

	return candidates
}

func dist(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return math.Sqrt(dx*dx + dy*dy)
}

// --- union-find with path compression and union-by-rank ---

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x])
	}
	return uf.parent[x]
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// --- Dijkstra over the incremental straight-line adjacency, used only
// to test whether a candidate edge is redundant ---

type dijkstraItem struct {
	node int
	dist float64
}

type dijkstraHeap []dijkstraItem

func (h dijkstraHeap) Len() int            { return len(h) }
func (h dijkstraHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h dijkstraHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *dijkstraHeap) Push(x interface{}) { *h = append(*h, x.(dijkstraItem)) }
func (h *dijkstraHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func dijkstraDistance(adjacency []map[int]float64, from, to int) float64 {
	dist := make([]float64, len(adjacency))
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[from] = 0

	h := &dijkstraHeap{{node: from, dist: 0}}
	visited := make([]bool, len(adjacency))

	for h.Len() > 0 {
		cur := heap.Pop(h).(dijkstraItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == to {
			return cur.dist
		}

		for nb, w := range adjacency[cur.node] {
			nd := cur.dist + w
			if nd < dist[nb] {
				dist[nb] = nd
				heap.Push(h, dijkstraItem{node: nb, dist: nd})
			}
		}
	}

	return math.Inf(1)
}

func polylineLength(points [][2]float64) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += dist(points[i-1][0], points[i-1][1], points[i][0], points[i][1])
	}
	return total
}
