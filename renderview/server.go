package renderview

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// serveWs upgrades an HTTP request to a websocket connection and registers
// it with hub, mirroring ApiStack-engine-go/web/server.go's call site
// serveWs(hub, w, r).
func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("renderview: upgrade failed: %v", err)
		return
	}
	c := &client{hub: hub, send: make(chan []byte, 16)}
	hub.register <- c
	go c.writeLoop(conn)
	go c.readLoop(conn, hub)
}

func (c *client) writeLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop only exists to detect client disconnects; the renderer is
// push-only and never expects client -> server messages.
func (c *client) readLoop(conn *websocket.Conn, hub *Hub) {
	defer func() {
		hub.unregister <- c
		conn.Close()
	}()
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Server serves the render view: a websocket endpoint pushing
// WorldSnapshot JSON, plus the static frontend bundle.
type Server struct {
	Hub *Hub
}

// NewServer constructs a render-view server with a fresh, unstarted Hub.
func NewServer() *Server {
	return &Server{Hub: NewHub()}
}

// Start runs the hub and serves HTTP on port until the process exits or
// ListenAndServe fails.
func (s *Server) Start(port int, distDir string) error {
	go s.Hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.Hub, w, r)
	})
	if distDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(distDir)))
	}

	addr := fmt.Sprintf(":%d", port)
	log.Printf("renderview: listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
