package airflow

import "time"

// TriggerRequest is the payload for creating a new DAG run.
// LogicalDate is the instant the run logically represents; Note is free
// text kept by Airflow for audit purposes ("triggered by user X").
type TriggerRequest struct {
	LogicalDate time.Time `json:"logical_date"`
	Note        string    `json:"note,omitempty"`
}

// triggerPayload is the wire form actually sent to Airflow. The API
// expects logical_date as an ISO-8601 UTC string.
type triggerPayload struct {
	LogicalDate string `json:"logical_date"`
	Note        string `json:"note,omitempty"`
}

// DAGRun is the subset of Airflow's DAG run resource this client reads.
type DAGRun struct {
	DAGRunID string `json:"dag_run_id"`
	State    string `json:"state"`
}

// DAG is the subset of Airflow's DAG resource used for connectivity
// checks. IsPaused matters: a paused DAG accepts triggers but never runs.
type DAG struct {
	DAGID    string `json:"dag_id"`
	IsPaused bool   `json:"is_paused"`
}

// HealthStatus is the response of Airflow's unauthenticated /health endpoint.
type HealthStatus struct {
	Metadatabase ComponentHealth `json:"metadatabase"`
	Scheduler    ComponentHealth `json:"scheduler"`
}

// ComponentHealth reports one Airflow component's health.
type ComponentHealth struct {
	Status string `json:"status"`
}

// Healthy reports whether every component Airflow exposes is healthy.
func (h HealthStatus) Healthy() bool {
	return h.Metadatabase.Status == "healthy" && h.Scheduler.Status == "healthy"
}

// VersionInfo is the response of GET /api/v1/version.
type VersionInfo struct {
	Version    string `json:"version"`
	GitVersion string `json:"git_version,omitempty"`
}
