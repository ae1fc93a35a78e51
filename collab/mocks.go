package collab

import (
	"context"
	"sync"

	"senseye/geo"
	"senseye/measurement"
)

// MockScanner replays a fixed, caller-supplied sequence of measurement
// batches, one batch per ScanOnce call, for use in pipeline tests that
// don't have real radio hardware.
type MockScanner struct {
	mu      sync.Mutex
	batches [][]measurement.Measurement
	idx     int
}

// NewMockScanner builds a scanner that replays batches in order, then
// returns an empty slice once exhausted.
func NewMockScanner(batches [][]measurement.Measurement) *MockScanner {
	return &MockScanner{batches: batches}
}

func (m *MockScanner) ScanOnce(ctx context.Context) ([]measurement.Measurement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idx >= len(m.batches) {
		return nil, nil
	}
	b := m.batches[m.idx]
	m.idx++
	return b, nil
}

// MockAcousticDevice records emitted chirps and replays a fixed sequence
// of received events.
type MockAcousticDevice struct {
	mu       sync.Mutex
	Emitted  []int
	events   [][]AcousticEvent
	idx      int
}

func NewMockAcousticDevice(events [][]AcousticEvent) *MockAcousticDevice {
	return &MockAcousticDevice{events: events}
}

func (m *MockAcousticDevice) EmitChirp(ctx context.Context, band int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emitted = append(m.Emitted, band)
	return nil
}

func (m *MockAcousticDevice) ListenOnce(ctx context.Context) ([]AcousticEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idx >= len(m.events) {
		return nil, nil
	}
	e := m.events[m.idx]
	m.idx++
	return e, nil
}

// MockRegistry is an in-memory ServiceRegistry backed by a shared map, so
// multiple MockRegistry instances in the same test can discover each
// other by pointing at the same backing store.
type MockRegistry struct {
	mu    *sync.Mutex
	peers map[string]string // nodeID -> addr
}

// NewMockRegistryGroup returns n MockRegistry handles sharing one backing
// store, simulating n nodes registering with the same discovery service.
func NewMockRegistryGroup(n int) []*MockRegistry {
	mu := &sync.Mutex{}
	peers := map[string]string{}
	out := make([]*MockRegistry, n)
	for i := range out {
		out[i] = &MockRegistry{mu: mu, peers: peers}
	}
	return out
}

func (r *MockRegistry) Register(ctx context.Context, nodeID, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[nodeID] = addr
	return nil
}

func (r *MockRegistry) Peers(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.peers))
	for _, addr := range r.peers {
		out = append(out, addr)
	}
	return out, nil
}

// MockFloorPlanStore is an in-memory FloorPlanStore for tests.
type MockFloorPlanStore struct {
	mu       sync.Mutex
	saved    map[string]geo.Point
}

func NewMockFloorPlanStore() *MockFloorPlanStore {
	return &MockFloorPlanStore{}
}

func (s *MockFloorPlanStore) Save(ctx context.Context, nodePositions map[string]geo.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]geo.Point, len(nodePositions))
	for k, v := range nodePositions {
		cp[k] = v
	}
	s.saved = cp
	return nil
}

func (s *MockFloorPlanStore) Load(ctx context.Context) (map[string]geo.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved, nil
}
