package v1

import (
	"net/http"
	"time"

	"github.com/vmunix/pseudotv/internal/events"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", err.Error())
		return
	}
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	const maxLimit = 1000
	if limit > maxLimit {
		limit = maxLimit
	}

	if s.deps.EventLog == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
		return
	}

	var raw []events.RawEvent
	typ, key := r.URL.Query().Get("entity_type"), r.URL.Query().Get("entity_key")
	since := r.URL.Query().Get("since")
	switch {
	case typ != "" && key != "":
		raw, err = s.deps.EventLog.ForEntity(typ, key)
	case since != "":
		t, perr := time.Parse(time.RFC3339, since)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be an RFC 3339 time")
			return
		}
		// Oldest first, capped at limit.
		raw, err = s.deps.EventLog.Since(t)
		if len(raw) > limit {
			raw = raw[:limit]
		}
	default:
		raw, err = s.deps.EventLog.Recent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	resp := listEventsResponse{Items: make([]EventResponse, len(raw)), Total: len(raw)}
	for i, e := range raw {
		resp.Items[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityKey:  e.EntityKey,
			Payload:    e.Payload,
			OccurredAt: formatTime(e.OccurredAt),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
