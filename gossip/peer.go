package gossip

import (
	"bufio"
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"
)

// PeerConfig tunes a single outbound peer connection's reconnect behavior.
type PeerConfig struct {
	DialTimeout      time.Duration
	WriteTimeout     time.Duration
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	QueueSize        int
	HeartbeatPeriod  time.Duration
}

// DefaultPeerConfig returns reconnect tunables in the same range as the
// teacher's fixed 2s dial timeout / 500ms retry sleep
// (ApiStack-engine-go/rbc/sender.go), generalized into an exponential
// backoff bounded by MaxBackoff instead of a fixed sleep.
func DefaultPeerConfig() PeerConfig {
	return PeerConfig{
		DialTimeout:     2 * time.Second,
		WriteTimeout:    5 * time.Second,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      30 * time.Second,
		QueueSize:       1000,
		HeartbeatPeriod: 5 * time.Second,
	}
}

// Peer manages one outbound TCP connection to another mesh node,
// reconnecting with exponential backoff on failure. Inbound messages
// decoded off the connection are delivered to inbox; this mirrors the
// teacher's TcpClient.loop goroutine-per-connection shape
// (ApiStack-engine-go/rbc/sender.go) but adds a reader half and backoff
// growth instead of a fixed retry sleep.
type Peer struct {
	addr  string
	cfg   PeerConfig
	inbox chan<- Message

	queue   chan Message
	stop    chan struct{}
	wg      sync.WaitGroup

	mu        sync.Mutex
	connected bool
	lastSeenMS int64
}

// NewPeer constructs a peer connection manager for addr. Messages decoded
// from the connection are pushed onto inbox; callers must keep draining
// inbox or the peer will block.
func NewPeer(addr string, cfg PeerConfig, inbox chan<- Message) *Peer {
	return &Peer{
		addr:  addr,
		cfg:   cfg,
		inbox: inbox,
		queue: make(chan Message, cfg.QueueSize),
		stop:  make(chan struct{}),
	}
}

// Start launches the peer's connection-management goroutine.
func (p *Peer) Start() {
	p.wg.Add(1)
	go p.loop()
}

// Stop halts the peer and waits for its goroutine to exit.
func (p *Peer) Stop() {
	close(p.stop)
	p.wg.Wait()
}

// Send enqueues a message for transmission, dropping it if the outbound
// queue is full — the mesh degrades by dropping under backpressure rather
// than blocking the caller.
func (p *Peer) Send(m Message) {
	select {
	case p.queue <- m:
	default:
		log.Printf("gossip: dropping message to %s, queue full", p.addr)
	}
}

// Connected reports whether the peer currently has a live connection.
func (p *Peer) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// LastSeenMS returns the wall-clock time (ms) of the last message received
// from this peer, used for staleness-based exclusion from fusion.
func (p *Peer) LastSeenMS() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeenMS
}

func (p *Peer) loop() {
	defer p.wg.Done()
	backoff := p.cfg.InitialBackoff

	for {
		select {
		case <-p.stop:
			return
		default:
		}

		conn, err := net.DialTimeout("tcp", p.addr, p.cfg.DialTimeout)
		if err != nil {
			log.Printf("gossip: dial %s failed: %v", p.addr, err)
			if !p.sleepOrStop(backoff) {
				return
			}
			backoff = nextBackoff(backoff, p.cfg.MaxBackoff)
			continue
		}

		p.setConnected(true)
		backoff = p.cfg.InitialBackoff
		p.runConnection(conn)
		p.setConnected(false)

		if !p.sleepOrStop(backoff) {
			return
		}
	}
}

func (p *Peer) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

func (p *Peer) sleepOrStop(d time.Duration) bool {
	select {
	case <-p.stop:
		return false
	case <-time.After(d):
		return true
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

// runConnection reads and writes until the connection fails or Stop is
// called, then returns so loop can reconnect.
func (p *Peer) runConnection(conn net.Conn) {
	defer conn.Close()

	readErr := make(chan struct{})
	go func() {
		defer close(readErr)
		dec := json.NewDecoder(bufio.NewReader(conn))
		for {
			var m Message
			if err := dec.Decode(&m); err != nil {
				return
			}
			p.mu.Lock()
			p.lastSeenMS = nowMS()
			p.mu.Unlock()
			select {
			case p.inbox <- m:
			case <-p.stop:
				return
			}
		}
	}()

	enc := json.NewEncoder(conn)
	for {
		select {
		case <-p.stop:
			return
		case <-readErr:
			return
		case m := <-p.queue:
			conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
			if err := enc.Encode(m); err != nil {
				log.Printf("gossip: write to %s failed: %v", p.addr, err)
				return
			}
		}
	}
}
