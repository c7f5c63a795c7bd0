// Package sse streams desktop state changes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/nosyt/nosytos/internal/desktop"
)

// Event types published by the broker.
const (
	TypeTaskbar = "taskbar"
	TypeWindow  = "window"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WindowEvent is the payload of a window event.
type WindowEvent struct {
	Action desktop.Action     `json:"action"`
	Window desktop.WindowView `json:"window"`
}

// Broker manages SSE client connections and broadcasts events.
//
// A single loop goroutine owns the client set and the last taskbar frame;
// public methods talk to it over channels. New clients receive the last
// taskbar frame immediately so they never render a stale list.
type Broker struct {
	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	dropped atomic.Int64
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastTaskbar []byte

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// Slow client; skip rather than stall the loop.
			b.dropped.Add(1)
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if lastTaskbar != nil {
				send(ch, lastTaskbar)
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			raw, err := encode(event)
			if err != nil {
				continue
			}
			if event.Type == TypeTaskbar {
				lastTaskbar = raw
			}
			for ch := range clients {
				send(ch, raw)
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Dropped reports how many messages were skipped because a client or the
// publish queue was full.
func (b *Broker) Dropped() int64 {
	return b.dropped.Load()
}

// Publish queues an event for all connected clients without blocking. It is
// called from inside desktop transitions, so a full queue drops the event.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	default:
		b.dropped.Add(1)
	}
}

// RenderTaskbar makes the broker a desktop taskbar render target.
func (b *Broker) RenderTaskbar(entries []desktop.TaskbarEntry) {
	if entries == nil {
		entries = []desktop.TaskbarEntry{}
	}
	b.Publish(Event{Type: TypeTaskbar, Data: entries})
}

// WindowChanged makes the broker a desktop observer.
func (b *Broker) WindowChanged(action desktop.Action, w desktop.WindowView) {
	b.Publish(Event{Type: TypeWindow, Data: WindowEvent{Action: action, Window: w}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/stream).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
