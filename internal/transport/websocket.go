// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"wvrender/internal/log"

	"github.com/gorilla/websocket"
)

const (
	broadcastQueue = 256
	writeWait      = time.Second
)

// WebSocketTransport broadcasts every event as JSON to all clients
// connected on /ws. Events are queued and written by a single goroutine;
// when the queue is full the event is dropped.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	done      chan struct{}

	closeMu sync.RWMutex
	closed  bool

	listener net.Listener
	server   *http.Server
	dropped  atomic.Int64
}

// NewWebSocketTransport starts a server on addr (":8080", "127.0.0.1:0").
// An empty addr creates the transport without a listener; serve Handler()
// yourself.
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local preview pages are served from anywhere
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, broadcastQueue),
		done:      make(chan struct{}),
	}

	if addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("preview listen on %s: %w", addr, err)
		}
		wst.listener = ln
		wst.server = &http.Server{Handler: wst.Handler(), ReadHeaderTimeout: 5 * time.Second}

		go func() {
			log.Infof("WebSocketTransport: Serving preview on ws://%s/ws", ln.Addr())
			if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("WebSocketTransport: Server error: %v", err)
			}
		}()
	}

	go wst.handleBroadcasts()
	return wst, nil
}

// Handler returns the HTTP handler serving the /ws endpoint.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	return mux
}

// Addr is the listening address, or nil without a listener.
func (wst *WebSocketTransport) Addr() net.Addr {
	if wst.listener == nil {
		return nil
	}
	return wst.listener.Addr()
}

// ClientCount returns the number of connected clients.
func (wst *WebSocketTransport) ClientCount() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	log.Debugf("WebSocketTransport: Client connected, total: %d", total)

	// Clients never send; the first read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.removeClient(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) removeClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	wst.clientsMu.Unlock()

	if ok {
		conn.Close()
		log.Debugf("WebSocketTransport: Client disconnected")
	}
}

// handleBroadcasts sends messages to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	defer close(wst.done)

	for data := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.WriteJSON(data); err != nil {
				log.Debugf("WebSocketTransport: Error sending to client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues data for broadcast. It never blocks; a full queue drops the
// event.
func (wst *WebSocketTransport) Send(data any) error {
	wst.closeMu.RLock()
	defer wst.closeMu.RUnlock()

	if wst.closed {
		return ErrClosed
	}

	select {
	case wst.broadcast <- data:
	default:
		wst.dropped.Add(1)
	}
	return nil
}

// Close drains the queue, disconnects every client and stops the server.
// Safe to call more than once.
func (wst *WebSocketTransport) Close() error {
	wst.closeMu.Lock()
	if wst.closed {
		wst.closeMu.Unlock()
		return nil
	}
	wst.closed = true
	close(wst.broadcast)
	wst.closeMu.Unlock()

	<-wst.done

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if n := wst.dropped.Load(); n > 0 {
		log.Debugf("WebSocketTransport: Dropped %d events", n)
	}

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
