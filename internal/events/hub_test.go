package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub(nil)
	a, b := h.Subscribe(), h.Subscribe()
	if h.Subscribers() != 2 {
		t.Fatalf("subscribers=%d", h.Subscribers())
	}

	h.Emit("req-1", TypeDatasetReloaded, Reloaded{Rows: 3, LoadedAt: time.Unix(0, 0).UTC()})

	for _, ch := range []chan string{a, b} {
		select {
		case msg := <-ch:
			var e Event
			if err := json.Unmarshal([]byte(msg), &e); err != nil {
				t.Fatalf("bad envelope %q: %v", msg, err)
			}
			if e.Type != TypeDatasetReloaded || e.RequestID != "req-1" || e.Version != Version {
				t.Fatalf("unexpected event %+v", e)
			}
			if string(e.Data) != `{"rows":3,"loaded_at":"1970-01-01T00:00:00Z"}` {
				t.Fatalf("data=%s", e.Data)
			}
		case <-time.After(time.Second):
			t.Fatalf("event not delivered")
		}
	}

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	if _, ok := <-a; ok {
		t.Fatalf("unsubscribed channel should be closed")
	}
	if h.Subscribers() != 1 {
		t.Fatalf("subscribers=%d", h.Subscribers())
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub(nil)
	ch := h.Subscribe()
	for i := 0; i < 50; i++ {
		h.Publish("x")
	}
	if len(ch) != cap(ch) {
		t.Fatalf("buffer should be full, len=%d cap=%d", len(ch), cap(ch))
	}
}

func TestFrame(t *testing.T) {
	if got := Frame(`{"type":"ping"}`); got != "event: message\ndata: {\"type\":\"ping\"}\n\n" {
		t.Fatalf("frame=%q", got)
	}
	if got := Frame("a\nb"); got != "event: message\ndata: a\ndata: b\n\n" {
		t.Fatalf("multi-line frame=%q", got)
	}
}
