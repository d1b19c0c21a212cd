package worldgen

import (
	"math"
	"sort"
)

// ClassifierConfig controls city/town/village classification.
type ClassifierConfig struct {
	CityShare       float64
	MinCities       int
	MaxCities       int
	MinScoreForCity float64
	MinCityHops     int
}

// DefaultClassifierConfig returns the pipeline's default classifier settings.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		CityShare:       0.05,
		MinCities:       5,
		MaxCities:       75,
		MinScoreForCity: 0.35,
		MinCityHops:     4,
	}
}

// Classify annotates every settlement's RoadDegree, SecondHopReach,
// CityScore, and Category in place, using the adjacency in graph.
func Classify(settlements []Settlement, graph *RoadGraph, cfg ClassifierConfig) {
	n := len(settlements)
	if n == 0 {
		return
	}

	reach := make([]int, n)
	meanNeighbourSuitability := make([]float64, n)

	maxSuitability, maxDegree, maxReach := 0.0, 0, 0
	for i := range settlements {
		if settlements[i].Suitability > maxSuitability {
			maxSuitability = settlements[i].Suitability
		}
	}
	if maxSuitability <= 0 {
		maxSuitability = 1
	}

	for i := range settlements {
		degree := graph.Degree(i)
		settlements[i].RoadDegree = degree
		if degree > maxDegree {
			maxDegree = degree
		}

		neighbourSet := make(map[int]bool)
		suitSum := 0.0
		for _, e := range graph.Neighbours(i) {
			neighbourSet[e.Neighbour] = true
			suitSum += settlements[e.Neighbour].Suitability
		}
		if degree > 0 {
			meanNeighbourSuitability[i] = suitSum / float64(degree)
		}

		reachSet := make(map[int]bool, len(neighbourSet))
		for v := range neighbourSet {
			reachSet[v] = true
		}
		for u := range neighbourSet {
			for _, e2 := range graph.Neighbours(u) {
				if e2.Neighbour != i {
					reachSet[e2.Neighbour] = true
				}
			}
		}
		reach[i] = len(reachSet)
		if reach[i] > maxReach {
			maxReach = reach[i]
		}
	}
	if maxDegree == 0 {
		maxDegree = 1
	}
	if maxReach == 0 {
		maxReach = 1
	}

	maxCityScore := 0.0
	for i := range settlements {
		degree := settlements[i].RoadDegree
		settlements[i].SecondHopReach = reach[i]

		bonus := 0.0
		switch {
		case degree >= 4:
			bonus = 0.05
		case degree >= 2:
			bonus = 0.02
		}

		raw := 0.55*settlements[i].Suitability/maxSuitability +
			0.20*float64(degree)/float64(maxDegree) +
			0.15*meanNeighbourSuitability[i] +
			0.25*float64(reach[i])/float64(maxReach) +
			bonus

		raw = clampRange(raw, 0, 1.4)
		settlements[i].CityScore = raw / 1.4
		if settlements[i].CityScore > maxCityScore {
			maxCityScore = settlements[i].CityScore
		}
	}

	cities := selectCities(settlements, graph, cfg)
	isCity := make([]bool, n)
	for _, c := range cities {
		isCity[c] = true
	}

	townThreshold := math.Max(0.55*cfg.MinScoreForCity, 0.4*maxCityScore)
	for i := range settlements {
		switch {
		case isCity[i]:
			settlements[i].Category = CategoryCity
		case settlements[i].RoadDegree >= 2 || settlements[i].CityScore >= townThreshold:
			settlements[i].Category = CategoryTown
		default:
			settlements[i].Category = CategoryVillage
		}
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// selectCities sorts candidates by score descending and admits them
// top-down subject to a minimum score and a minimum road-graph hop
// distance from every already-admitted city.
func selectCities(settlements []Settlement, graph *RoadGraph, cfg ClassifierConfig) []int {
	n := len(settlements)
	target := int(math.Round(float64(n) * cfg.CityShare))
	if target < cfg.MinCities {
		target = cfg.MinCities
	}
	if target > cfg.MaxCities {
		target = cfg.MaxCities
	}
	if target > n {
		target = n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if settlements[ia].CityScore != settlements[ib].CityScore {
			return settlements[ia].CityScore > settlements[ib].CityScore
		}
		return ia < ib
	})

	var cities []int
	for _, i := range order {
		if len(cities) >= target {
			break
		}
		if settlements[i].CityScore < cfg.MinScoreForCity {
			continue
		}
		if farEnoughFromAll(graph, i, cities, cfg.MinCityHops) {
			cities = append(cities, i)
		}
	}

	return cities
}

// farEnoughFromAll reports whether candidate is at hop distance >=
// minHops from every settlement already in cities, using a bounded BFS
// that stops as soon as the bound is exceeded.
func farEnoughFromAll(graph *RoadGraph, candidate int, cities []int, minHops int) bool {
	for _, c := range cities {
		if !hopDistanceAtLeast(graph, c, candidate, minHops) {
			return false
		}
	}
	return true
}

func hopDistanceAtLeast(graph *RoadGraph, start, target, bound int) bool {
	if start == target {
		return bound <= 0
	}

	visited := map[int]bool{start: true}
	frontier := []int{start}

	for hop := 1; hop < bound; hop++ {
		var next []int
		for _, u := range frontier {
			for _, e := range graph.Neighbours(u) {
				if visited[e.Neighbour] {
					continue
				}
				if e.Neighbour == target {
					return false
				}
				visited[e.Neighbour] = true
				next = append(next, e.Neighbour)
			}
		}
		if len(next) == 0 {
			return true
		}
		frontier = next
	}

	return true
}
