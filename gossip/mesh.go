package gossip

import (
	"context"
	"net"
	"sync"
	"time"
)

// Config holds mesh-wide tunables.
type Config struct {
	Peer PeerConfig
	// DedupSize bounds the LRU loop-prevention table.
	DedupSize int
	// StalenessHorizonMS: StalePeers reports a peer with no traffic in
	// this long as stale.
	StalenessHorizonMS int64
	// ListenAddr, if non-empty, accepts inbound peer connections.
	ListenAddr string
}

// DefaultConfig returns mesh tunables.
func DefaultConfig() Config {
	return Config{
		Peer:               DefaultPeerConfig(),
		DedupSize:          4096,
		StalenessHorizonMS: 15_000,
	}
}

// Mesh manages this node's gossip connections to its peers: outbound
// connections it dials, inbound connections it accepts, loop-prevention
// dedup, and hop-count-bounded relay.
type Mesh struct {
	selfID string
	cfg    Config

	mu      sync.Mutex
	peers   map[string]*Peer
	inbound map[net.Conn]chan Message

	inbox chan Message
	dedup *dedupTable

	listener net.Listener

	// OnBelief is invoked for every freshly-seen (non-duplicate) belief
	// message, typically to feed consensus fusion.
	OnBelief func(Message)
}

// NewMesh constructs a mesh node. selfID identifies this node's own
// messages so it never relays its own retransmissions back to itself as if
// they were a peer's.
func NewMesh(selfID string, cfg Config) *Mesh {
	return &Mesh{
		selfID:  selfID,
		cfg:     cfg,
		peers:   map[string]*Peer{},
		inbound: map[net.Conn]chan Message{},
		inbox:   make(chan Message, 1024),
		dedup:   newDedupTable(cfg.DedupSize),
	}
}

// AddPeer registers an outbound connection to addr and starts it.
func (m *Mesh) AddPeer(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.peers[addr]; ok {
		return
	}
	p := NewPeer(addr, m.cfg.Peer, m.inbox)
	m.peers[addr] = p
	p.Start()
}

// Start begins accepting inbound connections, if ListenAddr is set, and
// runs the dispatch loop until ctx is canceled.
func (m *Mesh) Start(ctx context.Context) error {
	if m.cfg.ListenAddr != "" {
		ln, err := net.Listen("tcp", m.cfg.ListenAddr)
		if err != nil {
			return err
		}
		m.listener = ln
		go m.acceptLoop()
	}
	go m.dispatchLoop(ctx)
	return nil
}

// Stop tears down every peer connection and the listener.
func (m *Mesh) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.peers {
		p.Stop()
	}
	if m.listener != nil {
		m.listener.Close()
	}
}

func (m *Mesh) acceptLoop() {
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			return
		}
		go m.serveInbound(conn)
	}
}

func (m *Mesh) serveInbound(conn net.Conn) {
	p := NewPeer(conn.RemoteAddr().String(), m.cfg.Peer, m.inbox)
	p.runConnection(conn)
}

// Broadcast queues msg on every peer added with AddPeer. Used both for this
// node's own fresh Beliefs and for relaying a peer's Belief onward.
// Connections accepted by the listener are only read from; Broadcast does
// not send to them.
func (m *Mesh) Broadcast(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.peers {
		p.Send(msg)
	}
}

func (m *Mesh) dispatchLoop(ctx context.Context) {
	heartbeat := time.NewTicker(m.cfg.Peer.HeartbeatPeriod)
	defer heartbeat.Stop()
	seq := uint64(0)
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			seq++
			m.Broadcast(Message{Kind: KindAnnounce, OriginNodeID: m.selfID, SequenceNumber: seq, SentAtMS: nowMS()})
		case msg := <-m.inbox:
			m.handle(msg)
		}
	}
}

func (m *Mesh) handle(msg Message) {
	if msg.OriginNodeID == m.selfID {
		return
	}
	key := dedupKey{Origin: msg.OriginNodeID, Kind: msg.Kind, Seq: msg.SequenceNumber}
	if m.dedup.SeenOrMark(key) {
		return
	}
	if msg.Kind == KindBelief && m.OnBelief != nil {
		m.OnBelief(msg)
	}
	if msg.HopCount > 0 {
		relay := msg
		relay.HopCount--
		m.Broadcast(relay)
	}
}

// ActivePeers returns the addresses of peers currently connected.
func (m *Mesh) ActivePeers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.peers))
	for addr, p := range m.peers {
		if p.Connected() {
			out = append(out, addr)
		}
	}
	return out
}

// StalePeers returns peer addresses that haven't been heard from within
// the configured staleness horizon. Nothing in the mesh or the fusion path
// calls it.
func (m *Mesh) StalePeers(nowMS int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for addr, p := range m.peers {
		last := p.LastSeenMS()
		if last == 0 || nowMS-last > m.cfg.StalenessHorizonMS {
			out = append(out, addr)
		}
	}
	return out
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}
