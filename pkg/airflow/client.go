// Package airflow is a minimal client for the Airflow 2.x stable REST API,
// covering the DAG run endpoints the sync trigger needs.
package airflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// requestTimeout bounds a single HTTP round trip. It is deliberately
// shorter than any realistic poll deadline so one slow call cannot
// starve the wait loop.
const requestTimeout = 10 * time.Second

// Client performs authenticated requests against one Airflow deployment.
// The zero value is not usable; construct with NewClient.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient returns a client for the Airflow instance at baseURL,
// authenticating every API call with HTTP Basic credentials.
// baseURL must be non-empty; beyond that it is not validated, malformed
// URLs surface as connection failures on first use.
func NewClient(baseURL, username, password string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("airflow base URL is empty")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// BaseURL returns the configured Airflow root URL.
func (c *Client) BaseURL() string { return c.baseURL }

// RunURL returns the Airflow UI grid link for a DAG run, for presentation.
func (c *Client) RunURL(dagID, runID string) string {
	return fmt.Sprintf("%s/dags/%s/grid?dag_run_id=%s", c.baseURL, url.PathEscape(dagID), url.QueryEscape(runID))
}

// TriggerDAGRun creates a new run of the named DAG.
// A 2xx response missing dag_run_id is reported as a decode failure:
// the API contract guarantees the field, so its absence indicates an
// incompatible server.
func (c *Client) TriggerDAGRun(ctx context.Context, dagID string, req TriggerRequest) (*DAGRun, error) {
	payload := triggerPayload{
		LogicalDate: req.LogicalDate.UTC().Format(time.RFC3339),
		Note:        req.Note,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, decodeFailed("encode trigger payload", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/dags/%s/dagRuns", c.baseURL, url.PathEscape(dagID))
	var run DAGRun
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, &run); err != nil {
		return nil, err
	}
	if run.DAGRunID == "" {
		return nil, decodeFailed("trigger response missing dag_run_id", nil)
	}
	return &run, nil
}

// GetDAGRun fetches the current state of an existing DAG run.
func (c *Client) GetDAGRun(ctx context.Context, dagID, runID string) (*DAGRun, error) {
	endpoint := fmt.Sprintf("%s/api/v1/dags/%s/dagRuns/%s",
		c.baseURL, url.PathEscape(dagID), url.PathEscape(runID))
	var run DAGRun
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetDAG fetches DAG metadata. Because the endpoint requires
// authentication, a 401 here cleanly separates bad credentials from an
// unreachable server, which the health endpoint cannot do.
func (c *Client) GetDAG(ctx context.Context, dagID string) (*DAG, error) {
	endpoint := fmt.Sprintf("%s/api/v1/dags/%s", c.baseURL, url.PathEscape(dagID))
	var dag DAG
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &dag); err != nil {
		return nil, err
	}
	return &dag, nil
}

// Health queries Airflow's unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Version queries the Airflow server version.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var info VersionInfo
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/api/v1/version", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// doJSON performs one request and decodes a 2xx JSON response into out.
// All failure modes collapse into *APIError. No retries: retry policy
// belongs to callers, and a retried trigger could double-start a run.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return connectionFailed(err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return connectionFailed(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return connectionFailed(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return httpError(resp.StatusCode, extractErrorDetail(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return decodeFailed("unexpected response body", err)
		}
	}
	return nil
}

// extractErrorDetail pulls a human-readable message out of an Airflow
// error body. The API uses RFC 7807 problem documents, so "detail" and
// "title" are tried first; anything else falls back to the raw text.
func extractErrorDetail(raw []byte) string {
	var problem struct {
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(raw, &problem); err == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	return strings.TrimSpace(string(raw))
}
