package handler

import (
	"encoding/json"
	"net/http"
)

// Health returns a health check handler that reports whether a registration
// endpoint is configured.
func Health(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK

		if endpoint == "" {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
