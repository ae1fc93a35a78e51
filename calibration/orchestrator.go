package calibration

import "senseye/geo"

// Result bundles everything the calibration orchestrator produces from one
// pass over the mesh's distance observations.
type Result struct {
	Positions     map[string]geo.Point
	AcousticBands map[string]int
	Walls         []WallCandidate
}

// Run executes the full calibration sequence: fuse RF/acoustic distance
// observations into a matrix, recover missing pairwise distances via
// bounded-hop shortest paths, recover a relative layout with classical
// MDS, canonicalize it against any known anchors, assign acoustic chirp
// bands, and flag wall candidates from excess attenuation.
func Run(cfg Config, nodes []string, obs []DistanceObservation, anchors map[string]geo.Point, atten map[[2]string]float64, pathLossExponent, refAttenuationA float64) (Result, error) {
	if len(nodes) < 3 {
		return Result{}, ErrTooFewNodes
	}

	matrix := FuseObservations(nodes, obs)
	matrix.FillShortestPaths(cfg.MaxHops)
	if !matrix.Connected() {
		return Result{}, ErrDisconnectedGraph
	}

	layout, err := ClassicalMDS(matrix)
	if err != nil {
		return Result{}, err
	}

	positions := layout
	if len(anchors) >= 2 {
		aligned, err := Anchorize(layout, anchors)
		if err == nil {
			positions = aligned
		}
	} else {
		for id, p := range anchors {
			positions[id] = p
		}
	}

	bands := AssignAcousticBands(nodes, cfg.AcousticBands)
	walls := DetectWalls(cfg, positions, atten, pathLossExponent, refAttenuationA)

	return Result{Positions: positions, AcousticBands: bands, Walls: walls}, nil
}
