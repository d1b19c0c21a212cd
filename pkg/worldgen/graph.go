package worldgen

import (
	"container/heap"
	"math"
)

// GraphEdge is one adjacency entry: the neighbour settlement index, the
// edge's measured length, and the index of the road that carries it.
type GraphEdge struct {
	Neighbour int
	Length    float64
	RoadIndex int
}

// RoadGraph is the immutable, queryable view of the final road network:
// an adjacency list plus a map from unordered endpoint pair to road
// index, built once from the finished road list.
type RoadGraph struct {
	adjacency [][]GraphEdge
	pairIndex map[[2]int]int
	roads     []RoadSegment
	positions [][2]float64
}

// BuildRoadGraph constructs the adjacency list and pair index from the
// final road list. positions holds each node's world coordinates
// directly, so a settlement with no incident roads still resolves a
// valid position. The graph holds a reference to roads for polyline
// reconstruction; callers must not mutate roads afterward.
func BuildRoadGraph(positions [][2]float64, roads []RoadSegment) *RoadGraph {
	g := &RoadGraph{
		adjacency: make([][]GraphEdge, len(positions)),
		pairIndex: make(map[[2]int]int, len(roads)),
		roads:     roads,
		positions: positions,
	}

	for i, r := range roads {
		g.adjacency[r.A] = append(g.adjacency[r.A], GraphEdge{Neighbour: r.B, Length: r.Length, RoadIndex: i})
		g.adjacency[r.B] = append(g.adjacency[r.B], GraphEdge{Neighbour: r.A, Length: r.Length, RoadIndex: i})
		g.pairIndex[pairKey(r.A, r.B)] = i
	}

	return g
}

// Degree returns the number of direct neighbours of node v.
func (g *RoadGraph) Degree(v int) int {
	if v < 0 || v >= len(g.adjacency) {
		return 0
	}
	return len(g.adjacency[v])
}

// Neighbours returns the adjacency list for node v.
func (g *RoadGraph) Neighbours(v int) []GraphEdge {
	if v < 0 || v >= len(g.adjacency) {
		return nil
	}
	return g.adjacency[v]
}

// RoadBetween returns the road index connecting a and b, or -1 if none.
func (g *RoadGraph) RoadBetween(a, b int) int {
	if idx, ok := g.pairIndex[pairKey(a, b)]; ok {
		return idx
	}
	return -1
}

// PathResult is the outcome of a successful shortest-path query.
type PathResult struct {
	Nodes    []int
	Polyline [][2]float64
	Distance float64
}

type pathHeapItem struct {
	node int
	dist float64
}

type pathHeap []pathHeapItem

func (h pathHeap) Len() int            { return len(h) }
func (h pathHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h pathHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pathHeap) Push(x interface{}) { *h = append(*h, x.(pathHeapItem)) }
func (h *pathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra with a binary min-heap and a visited
// bitmap, terminating as soon as `to` is popped. It returns nil when
// either endpoint is out of range or `to` is unreachable from `from`.
func (g *RoadGraph) ShortestPath(from, to int) *PathResult {
	n := len(g.adjacency)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil
	}

	if from == to {
		return &PathResult{Nodes: []int{from}, Polyline: g.nodePoint(from), Distance: 0}
	}

	dist := make([]float64, n)
	prevNode := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prevNode[i] = -1
	}
	dist[from] = 0

	h := &pathHeap{{node: from, dist: 0}}

	for h.Len() > 0 {
		cur := heap.Pop(h).(pathHeapItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if cur.node == to {
			break
		}

		for _, e := range g.adjacency[cur.node] {
			if visited[e.Neighbour] {
				continue
			}
			nd := cur.dist + e.Length
			if nd < dist[e.Neighbour] {
				dist[e.Neighbour] = nd
				prevNode[e.Neighbour] = cur.node
				heap.Push(h, pathHeapItem{node: e.Neighbour, dist: nd})
			}
		}
	}

	if math.IsInf(dist[to], 1) {
		return nil
	}

	var nodes []int
	for v := to; v != -1; v = prevNode[v] {
		nodes = append(nodes, v)
		if v == from {
			break
		}
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	return &PathResult{
		Nodes:    nodes,
		Polyline: g.reconstructPolyline(nodes, from),
		Distance: dist[to],
	}
}

// nodePoint returns a single-point polyline at a settlement's world
// position, read directly from the graph's position table so it
// resolves correctly even for a settlement with zero incident roads.
func (g *RoadGraph) nodePoint(node int) [][2]float64 {
	if node < 0 || node >= len(g.positions) {
		return [][2]float64{{0, 0}}
	}
	return [][2]float64{g.positions[node]}
}

// reconstructPolyline stitches the polylines of each road along a node
// sequence, orienting each one so its start matches the current node
// (reversing if the road was stored with the opposite endpoint order)
// and dropping the first point of every segment after the first, to
// avoid duplicating the join point.
func (g *RoadGraph) reconstructPolyline(nodes []int, from int) [][2]float64 {
	if len(nodes) == 0 {
		return nil
	}
	if len(nodes) == 1 {
		return g.nodePoint(nodes[0])
	}

	var poly [][2]float64
	for i := 0; i < len(nodes)-1; i++ {
		a, b := nodes[i], nodes[i+1]
		roadIdx := g.RoadBetween(a, b)
		if roadIdx < 0 {
			continue
		}
		r := g.roads[roadIdx]

		segment := r.Points
		if r.A != a {
			segment = reversePoints(segment)
		}

		if i == 0 {
			poly = append(poly, segment...)
		} else {
			poly = append(poly, segment[1:]...)
		}
	}

	return poly
}

func reversePoints(points [][2]float64) [][2]float64 {
	rev := make([][2]float64, len(points))
	for i, p := range points {
		rev[len(points)-1-i] = p
	}
	return rev
}
