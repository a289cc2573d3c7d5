package http

import (
	stdhttp "net/http"
)

// HealthHandler reports liveness. Readiness needs no separate probe: main
// refuses to serve until the database ping and migrations succeed.
func HealthHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
