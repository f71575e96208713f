package events

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 2 * time.Second

// subscriber is one delivery target; implementations exist for raw TCP
// connections and WebSocket clients.
type subscriber interface {
	send(line []byte) error
	close()
}

type tcpSubscriber struct{ conn net.Conn }

func (s tcpSubscriber) send(line []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := s.conn.Write(line)
	return err
}

func (s tcpSubscriber) close() { _ = s.conn.Close() }

type wsSubscriber struct{ conn *websocket.Conn }

func (s wsSubscriber) send(line []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, line)
}

func (s wsSubscriber) close() { _ = s.conn.Close() }

// Hub fans catalog events out to every subscriber as JSON lines. A failed
// write evicts the subscriber.
type Hub struct {
	mu  sync.Mutex
	tcp map[net.Conn]subscriber
	ws  map[*websocket.Conn]subscriber
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{
		tcp: make(map[net.Conn]subscriber),
		ws:  make(map[*websocket.Conn]subscriber),
	}
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.tcp[conn] = tcpSubscriber{conn: conn}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.tcp, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	h.ws[ws] = wsSubscriber{conn: ws}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.ws, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// BroadcastJSON delivers v to every subscriber. A marshal failure drops
// the event.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	line := append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, sub := range h.tcp {
		if err := sub.send(line); err != nil {
			sub.close()
			delete(h.tcp, conn)
		}
	}
	for conn, sub := range h.ws {
		if err := sub.send(line); err != nil {
			sub.close()
			delete(h.ws, conn)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.tcp),
		WSClients:  len(h.ws),
	}
}

// Welcome greets a new TCP subscriber with a hello line.
func (h *Hub) Welcome(conn net.Conn) {
	stats := h.Stats()
	hello, _ := json.Marshal(map[string]any{
		"type":        "welcome",
		"message":     "connected",
		"tcp_clients": stats.TCPClients,
	})
	_, _ = conn.Write(append(hello, '\n'))
}
