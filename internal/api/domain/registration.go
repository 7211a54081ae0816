package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	SubjectPrefix = "sub-"
	SessionPrefix = "ses-"

	HemisphereLeft      = "left"
	HemisphereRight     = "right"
	HemisphereBilateral = "bilateral"

	ExperimentRabies          = "rabies"
	ExperimentDoubleInjection = "double_injection"

	DefaultPixelSizeUm = 0.5
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// FormFields are the raw registration form inputs.
type FormFields struct {
	Modality   string `json:"modality"`
	SubjectID  string `json:"subject_id"`
	SessionID  string `json:"session_id"`
	Hemisphere string `json:"hemisphere"`
}

// NormalizeSubjectID trims the mouse ID and adds the subject prefix when missing.
func NormalizeSubjectID(raw string) string {
	id := strings.TrimSpace(raw)
	if strings.HasPrefix(id, SubjectPrefix) {
		return id
	}
	return SubjectPrefix + id
}

// NormalizeHemisphere maps any input outside left/right/bilateral to bilateral.
func NormalizeHemisphere(raw string) string {
	switch h := strings.ToLower(strings.TrimSpace(raw)); h {
	case HemisphereLeft, HemisphereRight, HemisphereBilateral:
		return h
	default:
		return HemisphereBilateral
	}
}

// HemisphereFilter maps a chart laterality filter to a query value.
// "all", empty and unknown values mean no filter.
func HemisphereFilter(raw string) string {
	switch h := strings.ToLower(strings.TrimSpace(raw)); h {
	case HemisphereLeft, HemisphereRight, HemisphereBilateral:
		return h
	default:
		return ""
	}
}

// DeriveSessionID returns the session identifier for a submission.
// A provided value has whitespace runs replaced by hyphens and is lower-cased;
// an empty one falls back to ses-<modality>.
func DeriveSessionID(raw, modality string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return SessionPrefix + modality
	}
	return strings.ToLower(whitespaceRun.ReplaceAllString(s, "-"))
}

// ExperimentTypeFor maps a modality to the backend experiment type.
// Only "rabies" is kept; every other modality is a double injection.
func ExperimentTypeFor(modality string) string {
	if modality == ExperimentRabies {
		return ExperimentRabies
	}
	return ExperimentDoubleInjection
}

// RegistrationRequest is built fresh for each submission and discarded afterwards.
type RegistrationRequest struct {
	Modality       string
	ExperimentType string
	SubjectID      string
	SessionID      string
	Hemisphere     string
	Files          Partition
}

// NewRegistrationRequest normalises validated form fields.
func NewRegistrationRequest(form FormFields, files Partition) RegistrationRequest {
	modality := strings.TrimSpace(form.Modality)
	return RegistrationRequest{
		Modality:       modality,
		ExperimentType: ExperimentTypeFor(modality),
		SubjectID:      NormalizeSubjectID(form.SubjectID),
		SessionID:      DeriveSessionID(form.SessionID, modality),
		Hemisphere:     NormalizeHemisphere(form.Hemisphere),
		Files:          files,
	}
}

// MicroscopyBatch is one call to the microscopy upload endpoint.
type MicroscopyBatch struct {
	SubjectID      string
	SessionID      string
	Hemisphere     string
	PixelSizeUm    float64
	ExperimentType string
	Files          []QueuedFile
}

// RegionCountBatch is one call to the region-count upload endpoint.
type RegionCountBatch struct {
	ExperimentType string
	SubjectID      string
	SessionID      string
	Hemisphere     string
	Files          []QueuedFile
}

// RegionCountResult is the backend answer to a region-count upload.
type RegionCountResult struct {
	RowsIngested int `json:"rows_ingested"`
}

// Summary is returned to the caller after a fully successful registration.
type Summary struct {
	Images         int    `json:"images"`
	Tabular        int    `json:"tabular"`
	SubjectID      string `json:"subject_id"`
	SessionID      string `json:"session_id"`
	Hemisphere     string `json:"hemisphere"`
	ExperimentType string `json:"experiment_type"`
	RowsIngested   int    `json:"rows_ingested"`
}

// Message is the status line shown after registration.
func (s Summary) Message() string {
	return fmt.Sprintf("Uploaded %d image(s) and %d CSV(s) for %s -> %s", s.Images, s.Tabular, s.SubjectID, s.SessionID)
}
