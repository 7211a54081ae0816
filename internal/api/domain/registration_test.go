package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSubjectID(t *testing.T) {
	assert.Equal(t, "sub-mouse01", NormalizeSubjectID("mouse01"))
	assert.Equal(t, "sub-mouse01", NormalizeSubjectID("  mouse01 "))
	assert.Equal(t, "sub-mouse01", NormalizeSubjectID("sub-mouse01"))
}

func TestNormalizeHemisphere(t *testing.T) {
	tests := map[string]string{
		"all":       HemisphereBilateral,
		"":          HemisphereBilateral,
		"xyz":       HemisphereBilateral,
		"left":      HemisphereLeft,
		"right":     HemisphereRight,
		"bilateral": HemisphereBilateral,
		" Left ":    HemisphereLeft,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHemisphere(in), "input %q", in)
	}
}

func TestHemisphereFilter(t *testing.T) {
	assert.Equal(t, "", HemisphereFilter("all"))
	assert.Equal(t, "", HemisphereFilter(""))
	assert.Equal(t, "", HemisphereFilter("xyz"))
	assert.Equal(t, "right", HemisphereFilter("right"))
}

func TestDeriveSessionID(t *testing.T) {
	assert.Equal(t, "ses-rabies", DeriveSessionID("", "rabies"))
	assert.Equal(t, "ses-double_injection", DeriveSessionID("   ", "double_injection"))
	assert.Equal(t, "day-1-protocol", DeriveSessionID("  Day 1\tProtocol ", "rabies"))
	assert.Equal(t, "ses-01", DeriveSessionID("SES-01", "rabies"))
}

func TestExperimentTypeFor(t *testing.T) {
	assert.Equal(t, ExperimentRabies, ExperimentTypeFor("rabies"))
	for _, m := range []string{"double_injection", "Rabies", "scrna", ""} {
		assert.Equal(t, ExperimentDoubleInjection, ExperimentTypeFor(m), "modality %q", m)
	}
}

func TestNewRegistrationRequest(t *testing.T) {
	files := Partition{
		Image:   []QueuedFile{{Name: "scan.tif", Size: 1000, Category: CategoryImage}},
		Tabular: []QueuedFile{{Name: "counts.csv", Size: 200, Category: CategoryTabular}},
	}
	req := NewRegistrationRequest(FormFields{Modality: "rabies", SubjectID: "mouse01", Hemisphere: "all"}, files)

	assert.Equal(t, "rabies", req.ExperimentType)
	assert.Equal(t, "sub-mouse01", req.SubjectID)
	assert.Equal(t, "ses-rabies", req.SessionID)
	assert.Equal(t, HemisphereBilateral, req.Hemisphere)
	assert.Len(t, req.Files.Image, 1)
	assert.Len(t, req.Files.Tabular, 1)
}

func TestSummaryMessage(t *testing.T) {
	s := Summary{Images: 1, Tabular: 2, SubjectID: "sub-m1", SessionID: "ses-rabies"}
	assert.Equal(t, "Uploaded 1 image(s) and 2 CSV(s) for sub-m1 -> ses-rabies", s.Message())
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Op: "upload microscopy", Message: "connection refused", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "upload microscopy: connection refused", err.Error())
}
