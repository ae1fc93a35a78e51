package calibration

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// AssignAcousticBands deterministically assigns each node a chirp
// frequency band index in [0, bands) so that nodes probing at the same
// time do not collide on the same band. The assignment is derived from a
// SHA-256 hash of the node id, then perturbed on collision by re-hashing
// with an incrementing salt, so the outcome is stable across restarts
// without any coordination between nodes.
func AssignAcousticBands(nodeIDs []string, bands int) map[string]int {
	if bands < 1 {
		bands = 1
	}
	sorted := append([]string(nil), nodeIDs...)
	sort.Strings(sorted)

	out := make(map[string]int, len(sorted))
	used := make(map[int]bool, bands)
	for _, id := range sorted {
		salt := 0
		for {
			band := hashBand(id, salt, bands)
			if !used[band] || len(used) >= bands {
				out[id] = band
				used[band] = true
				break
			}
			salt++
		}
	}
	return out
}

func hashBand(id string, salt, bands int) int {
	h := sha256.New()
	h.Write([]byte(id))
	var saltBytes [4]byte
	binary.BigEndian.PutUint32(saltBytes[:], uint32(salt))
	h.Write(saltBytes[:])
	sum := h.Sum(nil)
	v := binary.BigEndian.Uint32(sum[:4])
	return int(v % uint32(bands))
}
