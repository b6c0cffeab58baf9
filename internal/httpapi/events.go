package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/1broseidon/canvaslist/internal/window"
)

const (
	eventBuffer    = 64
	keepAliveEvery = 15 * time.Second
)

// handleEvents streams registry events as server-sent events until the client
// disconnects. Slow clients drop events rather than stall the registry.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := make(chan window.Event, eventBuffer)
	unsubscribe := s.svc.Subscribe(func(ev window.Event) {
		select {
		case events <- ev:
		default:
			s.logger.Warn("dropping event for slow client", "type", ev.Type, "window", ev.Record.ID)
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev := <-events:
			data, err := json.Marshal(ev.Record)
			if err != nil {
				s.logger.Error("failed to encode event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
