package handlers

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

// Health reports liveness plus process uptime.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(startedAt).Seconds()),
	})
}
