package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/PY0226H/aicomm/auth"
	"github.com/PY0226H/aicomm/domain/event"
	"github.com/PY0226H/aicomm/errors"
	"github.com/PY0226H/aicomm/runtime"
)

// handleEvents drives one client's long-lived push stream. It subscribes
// the verified user in the registry and then loops over three wake
// sources: the next event on the subscription, the keep-alive ticker, and
// cancellation. Every exit path releases the subscription; there are no
// retries here, reconnecting is the client's job and it resumes from "now".
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// The gate runs first; reaching here without an identity is a wiring bug.
		http.Error(w, "missing identity", http.StatusInternalServerError)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, errors.ErrStreamUnsupported.Error(), http.StatusInternalServerError)
		return
	}

	connID := uuid.NewString()
	sub := s.registry.Subscribe(user.ID)
	defer s.release(connID, user.ID, sub)

	s.metrics.ActiveSubscribers.Inc()
	defer s.metrics.ActiveSubscribers.Dec()

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.log.Info("Event stream opened", "conn_id", connID, "user_id", user.ID)

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			// Client disconnect or process shutdown; both end the stream.
			s.log.Info("Event stream closed", "conn_id", connID, "user_id", user.ID)
			return

		case evt, open := <-sub.Events():
			if !open {
				return
			}
			if err := writeEvent(w, flusher, evt); err != nil {
				s.log.Warn("Push frame write failed",
					"conn_id", connID, "user_id", user.ID, "error", err)
				return
			}

		case <-ticker.C:
			// Comment frame so intermediary proxies don't idle-timeout us.
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				s.log.Warn("Keep-alive write failed",
					"conn_id", connID, "user_id", user.ID, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent encodes one domain event as an SSE frame and flushes it.
func writeEvent(w io.Writer, flusher http.Flusher, evt event.AppEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Kind(), err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Kind(), data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func (s *Server) release(connID string, userID uint64, sub *runtime.Subscription) {
	sub.Close()
	if lost := sub.Lost(); lost > 0 {
		s.metrics.EventsLagged.Add(float64(lost))
		s.log.Warn("Subscriber lagged, events skipped",
			"conn_id", connID, "user_id", userID, "lost", lost)
	}
}
