package v1

import (
	"net/http"

	"github.com/opencve/cvesync/pkg/server/api"
	"github.com/opencve/cvesync/pkg/version"
)

// ReadyzHandler handles GET /readyz
//
// Reports 200 once startup completed and Airflow is reachable, 503
// otherwise. Load balancers should route traffic only when ready.
func ReadyzHandler(deps *api.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready == nil || !deps.Ready.Load() {
			http.Error(w, "Not Ready", http.StatusServiceUnavailable)
			return
		}

		health, err := deps.Airflow.Health(r.Context())
		if err != nil || !health.Healthy() {
			http.Error(w, "Airflow Not Ready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	}
}

// VersionHandler handles GET /api/v1/version and reports build metadata.
func VersionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, version.Get())
	}
}
