// Copyright 2025 OpenCVE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTest = errors.New("boom")

func newTestFormatter(mode OutputMode, quiet bool) (Formatter, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return New(stdout, stderr, mode, quiet, false), stdout, stderr
}

func TestPrintJSON(t *testing.T) {
	f, stdout, _ := newTestFormatter(ModeJSON, false)

	require.NoError(t, f.PrintJSON(map[string]string{"state": "success"}))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	require.Equal(t, "success", decoded["state"])
}

func TestPrintTable_TextMode(t *testing.T) {
	f, stdout, _ := newTestFormatter(ModeText, false)

	err := f.PrintTable([]string{"check", "result"}, [][]string{
		{"health", "ok"},
		{"version", "2.7.3"},
	})
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "health")
	require.Contains(t, stdout.String(), "2.7.3")
}

func TestPrintTable_JSONMode(t *testing.T) {
	f, stdout, _ := newTestFormatter(ModeJSON, false)

	err := f.PrintTable([]string{"check"}, [][]string{{"health"}})
	require.NoError(t, err)

	var items []map[string]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, "health", items[0]["check"])
}

func TestPrintLine_JSONModeGoesToStderr(t *testing.T) {
	f, stdout, stderr := newTestFormatter(ModeJSON, false)

	require.NoError(t, f.PrintLine("State: %s", "running"))
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "State: running")
}

func TestPrintLine_QuietSuppresses(t *testing.T) {
	f, stdout, stderr := newTestFormatter(ModeText, true)

	require.NoError(t, f.PrintLine("progress"))
	require.Empty(t, stdout.String())
	require.Empty(t, stderr.String())
}

func TestPrintError_JSONMode(t *testing.T) {
	f, stdout, _ := newTestFormatter(ModeJSON, false)

	require.NoError(t, f.PrintError(errTest))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	require.Equal(t, false, decoded["success"])
	require.Equal(t, "boom", decoded["error"])
}

func TestPrintRunSummary_Text(t *testing.T) {
	f, stdout, _ := newTestFormatter(ModeText, false)

	err := f.PrintRunSummary(RunSummary{
		DAGRunID:   "manual__2025-01-01T00:00:00+00:00",
		State:      "success",
		Elapsed:    42 * time.Second,
		AirflowURL: "http://localhost:8080/dags/opencve/grid?dag_run_id=x",
		Waited:     true,
	})
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "manual__2025-01-01T00:00:00+00:00")
	require.Contains(t, stdout.String(), "success")
	require.Contains(t, stdout.String(), "42s")
}

func TestPrintRunSummary_JSON(t *testing.T) {
	f, stdout, _ := newTestFormatter(ModeJSON, false)

	err := f.PrintRunSummary(RunSummary{
		DAGRunID:   "run-1",
		State:      "failed",
		Elapsed:    10 * time.Second,
		AirflowURL: "http://localhost:8080/dags/opencve/grid?dag_run_id=run-1",
		Waited:     true,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	require.Equal(t, false, decoded["success"])
	require.Equal(t, "failed", decoded["state"])
	require.Equal(t, "run-1", decoded["dag_run_id"])
}

func TestPrintRunSummary_QuietPrintsOnlyRunID(t *testing.T) {
	f, stdout, _ := newTestFormatter(ModeText, true)

	err := f.PrintRunSummary(RunSummary{DAGRunID: "run-1", State: "success"})
	require.NoError(t, err)
	require.Equal(t, "run-1\n", stdout.String())
}

func TestRow(t *testing.T) {
	require.Equal(t, []string{"health", "200", "true"}, Row("health", 200, true))
}

func TestParseMode(t *testing.T) {
	require.Equal(t, ModeJSON, ParseMode("json"))
	require.Equal(t, ModeText, ParseMode("text"))
	require.Equal(t, ModeText, ParseMode("anything"))
}

func TestValidateMode(t *testing.T) {
	require.NoError(t, ValidateMode("json"))
	require.NoError(t, ValidateMode("text"))
	require.Error(t, ValidateMode("yaml"))
}
