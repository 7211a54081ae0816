package domain

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		want   Category
		wantOK bool
	}{
		{"scan.tif", CategoryImage, true},
		{"SCAN.TIFF", CategoryImage, true},
		{"stack.ome.tif", CategoryImage, true},
		{"volume.ome.zarr", CategoryImage, true},
		{"photo.JPeG", CategoryImage, true},
		{"counts.csv", CategoryTabular, true},
		{"COUNTS.CSV", CategoryTabular, true},
		{"notes.txt", "", false},
		{"archive.csv.gz", "", false},
		{"tif", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "0 B", HumanSize(0))
	assert.Equal(t, "1023 B", HumanSize(1023))
	assert.Equal(t, "1.0 KB", HumanSize(1024))
	assert.Equal(t, "1.5 KB", HumanSize(1536))
	assert.Equal(t, "2.0 MB", HumanSize(2*1024*1024))
	assert.Equal(t, "1.0 GB", HumanSize(1<<30))
	assert.Equal(t, "2048.0 TB", HumanSize(1<<51))
}

func TestBytesPayloadOpen(t *testing.T) {
	rc, err := BytesPayload("pixels").Open()
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
}

func TestAddResultWarning(t *testing.T) {
	assert.Empty(t, AddResult{}.Warning())
	assert.Equal(t,
		"Rejected unsupported file types: a.txt, b.doc",
		AddResult{Rejected: []string{"a.txt", "b.doc"}}.Warning(),
	)
}

func TestDataFileLabel(t *testing.T) {
	assert.Equal(t, "sub-1 • ses-rabies • left • run-2",
		DataFile{Path: "/x", SubjectID: "sub-1", SessionID: "ses-rabies", Hemisphere: "left", Run: "2"}.Label())
	assert.Equal(t, "/data/raw.tif", DataFile{Path: "/data/raw.tif"}.Label())
}

func TestDataFileMarshalIncludesLabel(t *testing.T) {
	data, err := json.Marshal([]DataFile{{Path: "/raw/a.tif", SubjectID: "sub-1", SessionID: "ses-rabies", Run: "3"}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"path":"/raw/a.tif","subject_id":"sub-1","session_id":"ses-rabies","hemisphere":"","run":3,"label":"sub-1 • ses-rabies • run-3"}]`,
		string(data))

	var back []DataFile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "sub-1", back[0].SubjectID)
}
