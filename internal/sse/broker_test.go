package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nosyt/nosytos/internal/config"
	"github.com/nosyt/nosytos/internal/desktop"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestRenderTaskbarDelivery(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.RenderTaskbar([]desktop.TaskbarEntry{{WindowID: "welcome", Label: "Welcome", Active: true}})

	msg := receive(t, ch)
	if !strings.HasPrefix(msg, "event: taskbar\n") {
		t.Errorf("missing event type in %q", msg)
	}
	if !strings.Contains(msg, `"window_id":"welcome"`) || !strings.HasSuffix(msg, "\n\n") {
		t.Errorf("unexpected frame %q", msg)
	}
}

func TestEmptyTaskbarIsAnArray(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.RenderTaskbar(nil)
	if msg := receive(t, ch); !strings.Contains(msg, "data: []") {
		t.Fatalf("expected empty array payload, got %q", msg)
	}
}

func TestLateSubscriberGetsLastTaskbar(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	first := b.Subscribe()
	b.RenderTaskbar([]desktop.TaskbarEntry{{WindowID: "a"}})
	b.RenderTaskbar([]desktop.TaskbarEntry{{WindowID: "b"}})
	receive(t, first)
	receive(t, first)

	late := b.Subscribe()
	msg := receive(t, late)
	if !strings.Contains(msg, `"window_id":"b"`) {
		t.Fatalf("expected replay of the latest taskbar, got %q", msg)
	}
}

func TestBrokerAsDesktopRenderer(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	m := desktop.New(config.DefaultConfig(), desktop.WithRenderer(b), desktop.WithObserver(b))
	if msg := receive(t, ch); !strings.Contains(msg, "event: taskbar") {
		t.Fatalf("expected initial taskbar frame, got %q", msg)
	}

	m.Minimize("welcome")
	window := receive(t, ch)
	if !strings.Contains(window, "event: window") || !strings.Contains(window, `"action":"minimize"`) {
		t.Fatalf("expected window event, got %q", window)
	}
	taskbar := receive(t, ch)
	if !strings.Contains(taskbar, "data: []") {
		t.Fatalf("expected empty taskbar after minimize, got %q", taskbar)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 client from handler")
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.WindowChanged(desktop.ActionFocus, desktop.WindowView{ID: "about"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: window") || !strings.Contains(body, `"id":"about"`) {
		t.Errorf("handler output missing event: %q", body)
	}
	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}

	deadline = time.Now().Add(time.Second)
	for b.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client not cleaned up after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 500; i++ {
		b.Publish(Event{Type: "test", Data: i})
	}
	deadline := time.Now().Add(time.Second)
	for b.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected some messages to be dropped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	b.RenderTaskbar(nil)
	b.Close()
}
