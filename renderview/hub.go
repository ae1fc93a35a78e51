// Package renderview serves the fused WorldState to browser clients over a
// websocket. ApiStack-engine-go/web/server.go references
// NewHub/serveWs/Hub.Run with no definition anywhere in that tree; this
// package supplies that missing piece: a broadcast Hub plus an HTTP server
// wiring /ws to it, generalized from XML config/Map file serving to
// pushing WorldSnapshot JSON.
package renderview

import "sync"

// Hub tracks connected clients and fans a broadcast out to all of them.
// Grounded on the call shape of ApiStack-engine-go/web/server.go's
// s.Hub.Run() / serveWs(s.Hub, ...).
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub constructs an idle hub; call Run to start its dispatch loop.
func NewHub() *Hub {
	return &Hub{
		clients:    map[*client]struct{}{},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run drives the hub's registration/broadcast loop until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		case <-h.done:
			return
		}
	}
}

// Stop halts the hub's dispatch loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast pushes a message to every connected client.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// ClientCount reports the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

type client struct {
	hub  *Hub
	send chan []byte
}
