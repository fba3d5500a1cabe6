// Copyright 2025 OpenCVE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RunSummary captures the result of a sync run for display.
type RunSummary struct {
	DAGRunID   string        `json:"dag_run_id"`
	State      string        `json:"state"`
	Elapsed    time.Duration `json:"-"`
	AirflowURL string        `json:"airflow_url"`
	Waited     bool          `json:"waited"`
}

var (
	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	summaryLabelStyle = lipgloss.NewStyle().Bold(true).Width(10)

	stateStyles = map[string]lipgloss.Style{
		"success":   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"failed":    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		"timed_out": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"queued":    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		"running":   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

// PrintRunSummary renders the run outcome. JSON mode emits the summary
// as a structured document; text mode draws a bordered box.
func (f *formatter) PrintRunSummary(s RunSummary) error {
	if f.mode == ModeJSON {
		return f.PrintJSON(map[string]any{
			"success":         s.State == "success" || (!s.Waited && s.State != "failed"),
			"dag_run_id":      s.DAGRunID,
			"state":           s.State,
			"elapsed_seconds": s.Elapsed.Round(time.Second).Seconds(),
			"airflow_url":     s.AirflowURL,
		})
	}

	if f.quiet {
		_, err := fmt.Fprintln(f.stdout, s.DAGRunID)
		return err
	}

	state := s.State
	if f.color {
		if style, ok := stateStyles[state]; ok {
			state = style.Render(state)
		}
	}

	var sb strings.Builder
	sb.WriteString(summaryLabelStyle.Render("Run ID:") + " " + s.DAGRunID + "\n")
	sb.WriteString(summaryLabelStyle.Render("State:") + " " + state + "\n")
	if s.Waited {
		sb.WriteString(summaryLabelStyle.Render("Elapsed:") + " " + s.Elapsed.Round(time.Second).String() + "\n")
	}
	sb.WriteString(summaryLabelStyle.Render("Airflow:") + " " + s.AirflowURL)

	_, err := fmt.Fprintln(f.stdout, summaryBoxStyle.Render(sb.String()))
	return err
}
