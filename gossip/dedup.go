package gossip

import lru "github.com/hashicorp/golang-lru/v2"

// dedupTable is a bounded recently-seen table keyed by (origin, sequence
// number), used to prevent the same Belief from being re-delivered to
// local consumers or re-forwarded across a cycle in the mesh topology.
type dedupTable struct {
	cache *lru.Cache[dedupKey, struct{}]
}

func newDedupTable(size int) *dedupTable {
	if size < 1 {
		size = 1
	}
	c, _ := lru.New[dedupKey, struct{}](size)
	return &dedupTable{cache: c}
}

// SeenOrMark reports whether key was already seen, and marks it seen
// either way.
func (d *dedupTable) SeenOrMark(key dedupKey) bool {
	if d.cache.Contains(key) {
		return true
	}
	d.cache.Add(key, struct{}{})
	return false
}
