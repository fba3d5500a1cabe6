// pkg/version/version.go
// Package version provides version metadata for the application and the
// Airflow compatibility check.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of cvesync.
	Version = "dev"
	// Commit holds the current version commit of cvesync.
	Commit = "none"
	// BuildDate holds the build date of cvesync.
	BuildDate = "unknown"
)

// MinAirflowVersion is the oldest Airflow release whose stable REST API
// this client supports (the /api/v1 surface appeared in 2.0).
const MinAirflowVersion = "2.0.0"

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("cvesync %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}
}

// CheckAirflowCompatibility reports whether the given Airflow server
// version is supported. An unparsable version string is an error, not a
// compatibility verdict.
func CheckAirflowCompatibility(airflowVersion string) (bool, error) {
	v, err := semver.NewVersion(airflowVersion)
	if err != nil {
		return false, fmt.Errorf("parse airflow version %q: %w", airflowVersion, err)
	}
	minimum := semver.MustParse(MinAirflowVersion)
	return !v.LessThan(minimum), nil
}
