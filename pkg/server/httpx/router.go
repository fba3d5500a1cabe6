package httpx

import (
	"net/http"

	"github.com/opencve/cvesync/pkg/server/api"
	v1 "github.com/opencve/cvesync/pkg/server/api/v1"
)

// NewRouter creates and configures the main HTTP router.
//
// The router uses Go 1.22+ enhanced pattern matching. Health endpoints
// are always mounted for liveness/readiness checks.
func NewRouter(deps *api.Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", HealthzHandler)
	mux.HandleFunc("GET /readyz", v1.ReadyzHandler(deps))

	mux.HandleFunc("POST /api/v1/sync", v1.TriggerSyncHandler(deps))
	mux.HandleFunc("GET /api/v1/sync/runs/{id}", v1.GetRunHandler(deps))
	mux.HandleFunc("GET /api/v1/version", v1.VersionHandler())

	return mux
}

// HealthzHandler responds with 200 OK if the server process is alive.
// It does not check dependencies; use /readyz for readiness.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
