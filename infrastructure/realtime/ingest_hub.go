package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"video-fetcher/domain/model"

	"github.com/gin-gonic/gin"
)

// Hub fans ingest events out to connected SSE clients.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan model.IngestEvent]struct{}
}

func NewIngestHub() *Hub {
	return &Hub{subscribers: make(map[chan model.IngestEvent]struct{})}
}

// Serve streams ingest events to the client until it disconnects.
func (h *Hub) Serve(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering
	c.Status(http.StatusOK)

	ch := make(chan model.IngestEvent, 8)
	h.addSubscriber(ch)
	defer h.removeSubscriber(ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt := <-ch:
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			_, _ = c.Writer.Write([]byte("event: " + model.IngestEventType + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// Publish delivers the event to every subscriber without blocking; slow clients miss events.
func (h *Hub) Publish(_ context.Context, event model.IngestEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) addSubscriber(ch chan model.IngestEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[ch] = struct{}{}
}

func (h *Hub) removeSubscriber(ch chan model.IngestEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, ch)
	close(ch)
}
