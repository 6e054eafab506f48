// Package config defines the run configuration for cmd/augment: where the
// OnCourt export lives, which divisions to process, and the optional
// storage and metrics backends. Config comes from a JSON file, with flags
// overriding individual fields; Validate reports problems with severities
// so the CLI can warn without dying.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity string
	Path     string
	Message  string
}

// Run is the top-level configuration for one invocation.
type Run struct {
	// Job is the logical job name used for metrics tagging.
	Job string `json:"job"`

	// SourceDir holds the export CSVs; OutDir receives the augmented
	// files (one per division).
	SourceDir string `json:"source_dir"`
	OutDir    string `json:"out_dir"`

	// Divisions to process, each fully independent ("atp", "wta").
	Divisions []string `json:"divisions"`

	// Encoding is "" (UTF-8) or "cp1252" for Windows exports.
	Encoding string `json:"encoding"`

	Storage Storage `json:"storage"`
	Metrics Metrics `json:"metrics"`
}

// Storage configures the optional database sink. Kind empty = CSV only.
type Storage struct {
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`
	// Table is the destination base name; the division is appended,
	// e.g. "augmented_games" -> augmented_games_atp.
	Table string `json:"table"`
}

// Metrics configures the metrics backend ("none" or "datadog").
type Metrics struct {
	Backend string   `json:"backend"`
	Tags    []string `json:"tags"`
}

// Load decodes a Run from a JSON file.
func Load(path string) (Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return Run{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	var r Run
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Run{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return r, nil
}

// ApplyDefaults fills unset fields.
func (r *Run) ApplyDefaults() {
	if r.Job == "" {
		r.Job = "augment"
	}
	if r.OutDir == "" {
		r.OutDir = "."
	}
	if len(r.Divisions) == 0 {
		r.Divisions = []string{"atp", "wta"}
	}
	if r.Storage.Kind != "" && r.Storage.Table == "" {
		r.Storage.Table = "augmented_games"
	}
	if r.Metrics.Backend == "" {
		r.Metrics.Backend = "none"
	}
}

// Validate reports configuration problems. Callers abort on any
// SeverityError issue and print the rest.
func Validate(r Run) []Issue {
	var issues []Issue
	errf := func(path, format string, v ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, v...)})
	}
	warnf := func(path, format string, v ...any) {
		issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf(format, v...)})
	}

	if r.SourceDir == "" {
		errf("source_dir", "is required")
	} else if fi, err := os.Stat(r.SourceDir); err != nil || !fi.IsDir() {
		errf("source_dir", "%q is not a readable directory", r.SourceDir)
	}

	if len(r.Divisions) == 0 {
		errf("divisions", "at least one division is required")
	}
	for i, d := range r.Divisions {
		if d == "" {
			errf(fmt.Sprintf("divisions[%d]", i), "must not be empty")
		}
	}

	switch r.Encoding {
	case "", "cp1252":
	default:
		errf("encoding", "unsupported encoding %q (use \"\" or \"cp1252\")", r.Encoding)
	}

	if r.Storage.Kind != "" && r.Storage.DSN == "" {
		errf("storage.dsn", "is required when storage.kind is set")
	}
	if r.Storage.Kind == "" && r.Storage.DSN != "" {
		warnf("storage.kind", "dsn set but kind empty; no sink will run")
	}

	switch r.Metrics.Backend {
	case "", "none", "datadog":
	default:
		errf("metrics.backend", "unsupported backend %q", r.Metrics.Backend)
	}

	return issues
}
