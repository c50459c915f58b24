package handler

import (
	"net/http"
	"time"
)

var startTime = time.Now()

type healthData struct {
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// Health handles GET /api/health. It reports unhealthy when the record store
// is unreachable, since intake cannot accept submissions without it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		fail(w, http.StatusServiceUnavailable, "Database unreachable")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Server is running",
		Data: healthData{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).Seconds(),
		},
	})
}
