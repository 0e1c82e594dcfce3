package control

import (
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"

	"github.com/peragwin/spectromesh/audio/analyzer"
)

// FrameStream broadcasts analyzed frames to websocket clients as binary messages, one
// byte per bin.
type FrameStream struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan analyzer.Frame
	done      chan struct{}
	closeOnce sync.Once
}

// NewFrameStream starts the broadcast loop.
func NewFrameStream() *FrameStream {
	s := &FrameStream{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan analyzer.Frame, 16),
		done:      make(chan struct{}),
	}
	go s.handleBroadcasts()
	return s
}

// Clients is the number of connected clients.
func (s *FrameStream) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// ServeHTTP upgrades the request and registers the client.
func (s *FrameStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("control: websocket upgrade: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	n := len(s.clients)
	s.clientsMu.Unlock()
	glog.Infof("control: stream client connected, total: %d", n)

	go func() {
		// clients never send; a read error means they went away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.remove(conn)
				return
			}
		}
	}()
}

func (s *FrameStream) remove(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if s.clients[conn] {
		delete(s.clients, conn)
		conn.Close()
	}
	n := len(s.clients)
	s.clientsMu.Unlock()
	glog.Infof("control: stream client disconnected, total: %d", n)
}

func (s *FrameStream) handleBroadcasts() {
	for {
		select {
		case <-s.done:
			return
		case f := <-s.broadcast:
			s.clientsMu.Lock()
			for client := range s.clients {
				if err := client.WriteMessage(websocket.BinaryMessage, f); err != nil {
					glog.Warningf("control: error sending to client: %v", err)
					client.Close()
					delete(s.clients, client)
				}
			}
			s.clientsMu.Unlock()
		}
	}
}

// Publish queues a frame for broadcast, dropping it if the queue is full.
func (s *FrameStream) Publish(f analyzer.Frame) {
	select {
	case s.broadcast <- f:
	default:
		glog.V(2).Info("control: stream queue full, frame dropped")
	}
}

// Close disconnects all clients and stops broadcasting.
func (s *FrameStream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.clientsMu.Lock()
		for client := range s.clients {
			client.Close()
		}
		s.clients = make(map[*websocket.Conn]bool)
		s.clientsMu.Unlock()
	})
}
