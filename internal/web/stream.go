// ABOUTME: SSE handler streaming full student snapshots to the browser
// ABOUTME: Emits the current snapshot on connect and again after every mutation

package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rosterhq/roster/internal/auth"
)

// handleStream handles GET /api/students/stream.
//
// Every event is the complete current state of the caller's partition:
// an initial snapshot on connect, then one snapshot per mutation. The
// client replaces its whole list on each event — there is no incremental
// patching, so the last server-seen state always wins. The subscription
// is torn down when the request context ends (tab closed, navigation),
// which unhooks the broadcaster registration for this partition.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	// Check streaming support before subscribing (fail fast)
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("streaming not supported")
		s.sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	initial, events, err := s.service.Subscribe(r.Context(), identity.OwnerID)
	if err != nil {
		s.logger.Error("failed to open snapshot stream", "owner_id", identity.OwnerID, "error", err)
		s.sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s.writeSSEEvent(w, "snapshot", initial)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return

		case snapshot, ok := <-events:
			if !ok {
				// Broadcaster shut down (server stopping); tell the page
				// its data is frozen at the last-known state
				s.writeSSEEvent(w, "error", map[string]string{"error": "Live updates stopped. Reload to reconnect."})
				flusher.Flush()
				return
			}

			s.writeSSEEvent(w, "snapshot", snapshot)
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a single SSE event with a JSON payload.
func (s *Server) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE payload", "event", event, "error", err)
		return
	}
	fmt.Fprint(w, formatSSEEvent(event, string(payload)))
}

// formatSSEEvent formats an event name and data line per the SSE wire format.
func formatSSEEvent(event, data string) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
}
