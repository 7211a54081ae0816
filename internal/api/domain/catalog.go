package domain

import (
	"encoding/json"
	"strings"
)

// Subject is one specimen known to the backend.
type Subject struct {
	SubjectID string `json:"subject_id"`
}

// DataFile is one registered file listed by the backend.
type DataFile struct {
	Path       string      `json:"path"`
	SubjectID  string      `json:"subject_id"`
	SessionID  string      `json:"session_id"`
	Hemisphere string      `json:"hemisphere"`
	Run        json.Number `json:"run,omitempty"`
}

// Label renders "subject • session • hemisphere • run-N", skipping empty parts.
func (f DataFile) Label() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{f.SubjectID, f.SessionID, f.Hemisphere} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if f.Run != "" && f.Run != "0" {
		parts = append(parts, "run-"+f.Run.String())
	}
	if len(parts) == 0 {
		return f.Path
	}
	return strings.Join(parts, " • ")
}

// MarshalJSON adds the display label to the listed fields.
func (f DataFile) MarshalJSON() ([]byte, error) {
	type fields DataFile
	return json.Marshal(struct {
		fields
		Label string `json:"label"`
	}{fields(f), f.Label()})
}

// Sample is one scRNA sample.
type Sample struct {
	SampleID string `json:"sample_id"`
}

// Cluster is one scRNA cluster of a sample.
type Cluster struct {
	ClusterID string `json:"cluster_id"`
	NCells    int    `json:"n_cells"`
}

// Marker is one marker gene of a cluster.
type Marker struct {
	Gene      string  `json:"gene"`
	ClusterID string  `json:"cluster_id"`
	LogFC     float64 `json:"logfc"`
}

// FluorSummaryRow is one aggregated region row of the fluorescence summary.
type FluorSummaryRow struct {
	RegionName      string   `json:"region_name"`
	LoadAvg         *float64 `json:"load_avg"`
	RegionPixelsAvg *float64 `json:"region_pixels_avg"`
}

// FluorQuery filters the fluorescence summary. Empty fields are not sent.
type FluorQuery struct {
	ExperimentType string
	Hemisphere     string
	SubjectID      string
	RegionID       string
	Limit          int
}

// Overview is the initial catalog load of the dashboard.
// A section that failed to load is empty and its error is listed in Errors.
type Overview struct {
	Subjects []Subject         `json:"subjects"`
	Files    []DataFile        `json:"files"`
	Samples  []Sample          `json:"samples"`
	Errors   map[string]string `json:"errors,omitempty"`
}
