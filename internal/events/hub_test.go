package events

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"
)

func TestBroadcastJSON_TCP(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	defer client.Close()
	hub.Add(server)

	lines := make(chan string, 1)
	go func() {
		sc := bufio.NewScanner(client)
		if sc.Scan() {
			lines <- sc.Text()
		}
	}()

	hub.BroadcastJSON(EntryEvent{
		Type:    TypeCreated,
		AnimeID: 7,
		Title:   "Cowboy Bebop",
		Status:  "finished",
		At:      time.Now().UTC(),
	})

	select {
	case line := <-lines:
		var ev EntryEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if ev.Type != TypeCreated || ev.AnimeID != 7 {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestBroadcastJSON_EvictsDeadSubscriber(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	hub.Add(server)
	client.Close()

	if got := hub.Stats().TCPClients; got != 1 {
		t.Fatalf("expected 1 subscriber before broadcast, got %d", got)
	}

	hub.BroadcastJSON(EntryEvent{Type: TypeDeleted, AnimeID: 1})

	if got := hub.Stats().TCPClients; got != 0 {
		t.Errorf("expected dead subscriber evicted, got %d", got)
	}
}

func TestStats(t *testing.T) {
	hub := NewHub()
	if s := hub.Stats(); s.TCPClients != 0 || s.WSClients != 0 {
		t.Errorf("expected empty hub, got %+v", s)
	}

	server, client := net.Pipe()
	defer client.Close()
	hub.Add(server)

	if got := hub.Stats().TCPClients; got != 1 {
		t.Errorf("expected 1 tcp subscriber, got %d", got)
	}

	hub.Remove(server)
	if got := hub.Stats().TCPClients; got != 0 {
		t.Errorf("expected 0 after remove, got %d", got)
	}
}
