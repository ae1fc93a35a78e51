package calibration

import "senseye/weight"

// DistanceObservation is one measured distance between two nodes, from
// either RF distance-from-RSSI or acoustic time-of-flight ranging.
type DistanceObservation struct {
	A, B       string
	DistanceM  float64
	Confidence float64
}

// Matrix is a symmetric node-to-node distance matrix, indexed by node id.
type Matrix struct {
	Nodes []string
	index map[string]int
	D     [][]float64 // D[i][j]: -1 means unknown
}

// NewMatrix allocates an all-unknown distance matrix over the given nodes.
func NewMatrix(nodes []string) *Matrix {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n] = i
	}
	d := make([][]float64, len(nodes))
	for i := range d {
		d[i] = make([]float64, len(nodes))
		for j := range d[i] {
			if i != j {
				d[i][j] = -1
			}
		}
	}
	return &Matrix{Nodes: nodes, index: idx, D: d}
}

// FuseObservations combines RF and acoustic distance observations for the
// same node pair by precision-weighted mean, and writes the result
// symmetrically into the matrix.
func FuseObservations(nodes []string, obs []DistanceObservation) *Matrix {
	m := NewMatrix(nodes)
	byPair := map[[2]string][]DistanceObservation{}
	for _, o := range obs {
		a, b := o.A, o.B
		if _, ok := m.index[a]; !ok {
			continue
		}
		if _, ok := m.index[b]; !ok {
			continue
		}
		key := pairKey(a, b)
		byPair[key] = append(byPair[key], o)
	}
	for key, contribs := range byPair {
		cs := make([]weight.Contribution, len(contribs))
		for i, o := range contribs {
			cs[i] = weight.Contribution{Value: o.DistanceM, Confidence: o.Confidence}
		}
		mean, _, ok := weight.WeightedMean(cs)
		if !ok {
			continue
		}
		m.Set(key[0], key[1], mean)
	}
	return m
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Set writes a symmetric distance entry.
func (m *Matrix) Set(a, b string, d float64) {
	i, j := m.index[a], m.index[b]
	m.D[i][j] = d
	m.D[j][i] = d
}

// Get returns the distance between a and b, or (-1, false) if unknown.
func (m *Matrix) Get(a, b string) (float64, bool) {
	i, okA := m.index[a]
	j, okB := m.index[b]
	if !okA || !okB || m.D[i][j] < 0 {
		return -1, false
	}
	return m.D[i][j], true
}

// FillShortestPaths recovers missing entries by summing known distances
// along the shortest bounded-hop path between the pair, via a
// straightforward Floyd-Warshall relaxation capped at maxHops edges, for
// indirect distance estimation when a direct link is unavailable.
func (m *Matrix) FillShortestPaths(maxHops int) {
	n := len(m.Nodes)
	dist := make([][]float64, n)
	hops := make([][]int, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		hops[i] = make([]int, n)
		for j := range dist[i] {
			switch {
			case i == j:
				dist[i][j] = 0
			case m.D[i][j] >= 0:
				dist[i][j] = m.D[i][j]
				hops[i][j] = 1
			default:
				dist[i][j] = -1
				hops[i][j] = 0
			}
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if dist[i][k] < 0 {
				continue
			}
			for j := 0; j < n; j++ {
				if dist[k][j] < 0 {
					continue
				}
				h := hops[i][k] + hops[k][j]
				if h > maxHops {
					continue
				}
				cand := dist[i][k] + dist[k][j]
				if dist[i][j] < 0 || cand < dist[i][j] {
					dist[i][j] = cand
					hops[i][j] = h
				}
			}
		}
	}
	m.D = dist
}

// Connected reports whether every node pair has a finite distance entry.
func (m *Matrix) Connected() bool {
	for i := range m.D {
		for j := range m.D[i] {
			if i != j && m.D[i][j] < 0 {
				return false
			}
		}
	}
	return true
}
