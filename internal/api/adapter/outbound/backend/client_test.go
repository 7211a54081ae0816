package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/anthanhphan/olfactory-dashboard/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedUpload struct {
	fields map[string]string
	files  map[string]string
}

func readUpload(t *testing.T, r *http.Request) receivedUpload {
	t.Helper()
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		t.Errorf("parse multipart: %v", err)
		return receivedUpload{}
	}
	got := receivedUpload{fields: map[string]string{}, files: map[string]string{}}
	for k, v := range r.MultipartForm.Value {
		got.fields[k] = v[0]
	}
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			t.Errorf("open part: %v", err)
			continue
		}
		data, _ := io.ReadAll(f)
		_ = f.Close()
		got.files[fh.Filename] = string(data)
	}
	return got
}

func queued(name, content string, category domain.Category) domain.QueuedFile {
	return domain.QueuedFile{Name: name, Size: int64(len(content)), Category: category, Payload: domain.BytesPayload(content)}
}

func TestClient_UploadMicroscopy(t *testing.T) {
	uploads := make(chan receivedUpload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/upload/microscopy" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		uploads <- readUpload(t, r)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	err := client.UploadMicroscopy(context.Background(), domain.MicroscopyBatch{
		SubjectID:      "sub-mouse01",
		SessionID:      "ses-rabies",
		Hemisphere:     "bilateral",
		PixelSizeUm:    0.5,
		ExperimentType: "rabies",
		Files: []domain.QueuedFile{
			queued("scan.tif", "tiff-bytes", domain.CategoryImage),
			queued("scan2.png", "png-bytes", domain.CategoryImage),
		},
	})
	require.NoError(t, err)

	got := <-uploads
	assert.Equal(t, map[string]string{
		"subject_id":      "sub-mouse01",
		"session_id":      "ses-rabies",
		"hemisphere":      "bilateral",
		"pixel_size_um":   "0.5",
		"experiment_type": "rabies",
	}, got.fields)
	assert.Equal(t, map[string]string{"scan.tif": "tiff-bytes", "scan2.png": "png-bytes"}, got.files)
}

func TestClient_UploadRegionCounts(t *testing.T) {
	uploads := make(chan receivedUpload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads <- readUpload(t, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows_ingested": 128}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	res, err := client.UploadRegionCounts(context.Background(), domain.RegionCountBatch{
		ExperimentType: "double_injection",
		SubjectID:      "sub-m2",
		SessionID:      "ses-double_injection",
		Hemisphere:     "left",
		Files:          []domain.QueuedFile{queued("counts.csv", "region,load\nA,1\n", domain.CategoryTabular)},
	})
	require.NoError(t, err)
	assert.Equal(t, 128, res.RowsIngested)

	got := <-uploads
	assert.Equal(t, "double_injection", got.fields["experiment_type"])
	assert.Equal(t, "left", got.fields["hemisphere"])
	assert.NotContains(t, got.fields, "pixel_size_um")
	assert.Equal(t, "region,load\nA,1\n", got.files["counts.csv"])
}

func TestClient_UploadErrorCarriesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("  unknown subject sub-x \n"))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	err := client.UploadMicroscopy(context.Background(), domain.MicroscopyBatch{
		Files: []domain.QueuedFile{queued("a.tif", "x", domain.CategoryImage)},
	})

	var te *domain.TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, "unknown subject sub-x", te.Message)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
}

func TestClient_UploadErrorWithEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	_, err := client.UploadRegionCounts(context.Background(), domain.RegionCountBatch{
		Files: []domain.QueuedFile{queued("a.csv", "x", domain.CategoryTabular)},
	})

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "Upload failed", te.Message)
}

func TestClient_LongErrorBodyKeepsValidUTF8(t *testing.T) {
	message := strings.Repeat("é", maxErrorBodyBytes)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("x" + message))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	_, err := client.ListSubjects(context.Background())

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.LessOrEqual(t, len(se.Body), maxErrorBodyBytes)
	assert.True(t, utf8.ValidString(se.Body))
	assert.True(t, strings.HasPrefix(se.Body, "xé"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{in: "short", limit: 10, want: "short"},
		{in: "abcdef", limit: 3, want: "abc"},
		{in: "aé", limit: 2, want: "a"},
		{in: "aé", limit: 3, want: "aé"},
		{in: "日本", limit: 4, want: "日"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.limit), tt.in)
	}
}

// readerPayload is content not held in memory by the queue.
type readerPayload string

func (p readerPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(p))), nil
}

func TestClient_UploadStreamsNonMemoryPayload(t *testing.T) {
	uploads := make(chan receivedUpload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads <- readUpload(t, r)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	err := client.UploadMicroscopy(context.Background(), domain.MicroscopyBatch{
		Files: []domain.QueuedFile{{Name: "disk.tif", Size: 4, Category: domain.CategoryImage, Payload: readerPayload("tiff")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "tiff", (<-uploads).files["disk.tif"])
}

func TestClient_MissingPayload(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	err := client.UploadMicroscopy(context.Background(), domain.MicroscopyBatch{
		Files: []domain.QueuedFile{{Name: "ghost.tif", Category: domain.CategoryImage}},
	})

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Message, "ghost.tif")
}

func TestClient_Listings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/subjects", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"subject_id":"sub-m1"},{"subject_id":"sub-m2"}]`))
	})
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"path":"/raw/a.tif","subject_id":"sub-m1","session_id":"ses-rabies","hemisphere":"left","run":2}]`))
	})
	mux.HandleFunc("/scrna/samples", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"sample_id":"s1"}]`))
	})
	mux.HandleFunc("/scrna/clusters", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sample_id") != "s 1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[{"cluster_id":"c0","n_cells":31}]`))
	})
	mux.HandleFunc("/scrna/markers", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sample_id") != "s1" || q.Get("cluster_id") != "c0" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[{"gene":"Olfr1","cluster_id":"c0","logfc":1.5}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	ctx := context.Background()

	subjects, err := client.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Subject{{SubjectID: "sub-m1"}, {SubjectID: "sub-m2"}}, subjects)

	files, err := client.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "sub-m1 • ses-rabies • left • run-2", files[0].Label())

	samples, err := client.ListSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s1", samples[0].SampleID)

	clusters, err := client.ListClusters(ctx, "s 1")
	require.NoError(t, err)
	assert.Equal(t, 31, clusters[0].NCells)

	markers, err := client.ListMarkers(ctx, "s1", "c0")
	require.NoError(t, err)
	assert.Equal(t, 1.5, markers[0].LogFC)
}

func TestClient_FluorSummaryQuery(t *testing.T) {
	queries := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := map[string]string{}
		for k, v := range r.URL.Query() {
			got[k] = v[0]
		}
		queries <- got
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"region_name": "AON", "load_avg": 0.25, "region_pixels_avg": 1200},
			{"region_name": "Pir", "load_avg": nil},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	rows, err := client.FluorSummary(context.Background(), domain.FluorQuery{
		ExperimentType: "rabies",
		Hemisphere:     "left",
		Limit:          200,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"experiment_type": "rabies", "hemisphere": "left", "limit": "200"}, <-queries)
	require.Len(t, rows, 2)
	assert.Equal(t, 0.25, *rows[0].LoadAvg)
	assert.Nil(t, rows[1].LoadAvg)
}

func TestClient_BreakerOpensOnServerErrorsOnly(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusBadRequest)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	client := NewClient(Options{
		BaseURL: srv.URL,
		Breaker: resilience.CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.ListSubjects(ctx)
		require.Error(t, err)
	}
	assert.Equal(t, resilience.CircuitClosed, client.BreakerState())

	status.Store(http.StatusInternalServerError)
	_, _ = client.ListSubjects(ctx)
	_, _ = client.ListSubjects(ctx)
	assert.Equal(t, resilience.CircuitOpen, client.BreakerState())

	before := hits.Load()
	_, err := client.ListSubjects(ctx)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, hits.Load())
}

func TestClient_CanceledContext(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListSamples(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, resilience.CircuitClosed, client.BreakerState())
}
