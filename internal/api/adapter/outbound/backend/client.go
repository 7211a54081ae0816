package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/port"
	"github.com/anthanhphan/olfactory-dashboard/pkg/resilience"
	"github.com/gofiber/fiber/v2"
)

const (
	pathUploadMicroscopy   = "/upload/microscopy"
	pathUploadRegionCounts = "/upload/region-counts"
	pathSubjects           = "/subjects"
	pathFiles              = "/files"
	pathSamples            = "/scrna/samples"
	pathClusters           = "/scrna/clusters"
	pathMarkers            = "/scrna/markers"
	pathFluorSummary       = "/fluor/summary"

	filesField        = "files"
	uploadFailedMsg   = "Upload failed"
	defaultTimeout    = 60 * time.Second
	maxErrorBodyBytes = 4096
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return e.Body
}

// Options configures the backend client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Breaker resilience.CircuitBreakerConfig
}

// Client talks to the analysis backend over HTTP: multipart uploads and JSON listings.
type Client struct {
	baseURL string
	timeout time.Duration
	breaker *resilience.CircuitBreaker
}

// Ensure Client implements the outbound ports.
var (
	_ port.Uploader = (*Client)(nil)
	_ port.Catalog  = (*Client)(nil)
)

// NewClient creates a backend client. Only transport failures and 5xx answers
// count against the circuit breaker.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	breakerCfg := opts.Breaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = "backend"
	}
	breakerCfg.IsFailure = isBreakerFailure

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: timeout,
		breaker: resilience.NewCircuitBreaker(breakerCfg),
	}
}

// BreakerState exposes the circuit state for health reporting.
func (c *Client) BreakerState() resilience.CircuitBreakerState {
	return c.breaker.State()
}

// UploadMicroscopy posts image files with their acquisition metadata.
func (c *Client) UploadMicroscopy(ctx context.Context, batch domain.MicroscopyBatch) error {
	fields := [][2]string{
		{"subject_id", batch.SubjectID},
		{"session_id", batch.SessionID},
		{"hemisphere", batch.Hemisphere},
		{"pixel_size_um", strconv.FormatFloat(batch.PixelSizeUm, 'f', -1, 64)},
		{"experiment_type", batch.ExperimentType},
	}

	if _, err := c.postMultipart(ctx, pathUploadMicroscopy, fields, batch.Files); err != nil {
		return uploadError("upload microscopy", err)
	}

	logger.Infow("Microscopy batch uploaded", "subject_id", batch.SubjectID, "session_id", batch.SessionID, "files", len(batch.Files))
	return nil
}

// UploadRegionCounts posts region-count CSVs and returns the number of ingested rows.
func (c *Client) UploadRegionCounts(ctx context.Context, batch domain.RegionCountBatch) (*domain.RegionCountResult, error) {
	fields := [][2]string{
		{"subject_id", batch.SubjectID},
		{"session_id", batch.SessionID},
		{"hemisphere", batch.Hemisphere},
		{"experiment_type", batch.ExperimentType},
	}

	body, err := c.postMultipart(ctx, pathUploadRegionCounts, fields, batch.Files)
	if err != nil {
		return nil, uploadError("upload region counts", err)
	}

	var result domain.RegionCountResult
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, uploadError("upload region counts", fmt.Errorf("invalid response: %w", err))
		}
	}

	logger.Infow("Region counts uploaded", "subject_id", batch.SubjectID, "files", len(batch.Files), "rows_ingested", result.RowsIngested)
	return &result, nil
}

func (c *Client) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	out := []domain.Subject{}
	if err := c.getJSON(ctx, pathSubjects, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListFiles(ctx context.Context) ([]domain.DataFile, error) {
	out := []domain.DataFile{}
	if err := c.getJSON(ctx, pathFiles, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSamples(ctx context.Context) ([]domain.Sample, error) {
	out := []domain.Sample{}
	if err := c.getJSON(ctx, pathSamples, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListClusters(ctx context.Context, sampleID string) ([]domain.Cluster, error) {
	out := []domain.Cluster{}
	if err := c.getJSON(ctx, pathClusters, url.Values{"sample_id": {sampleID}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMarkers(ctx context.Context, sampleID, clusterID string) ([]domain.Marker, error) {
	out := []domain.Marker{}
	q := url.Values{"sample_id": {sampleID}, "cluster_id": {clusterID}}
	if err := c.getJSON(ctx, pathMarkers, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FluorSummary reads the per-region fluorescence aggregates. Empty filters are omitted.
func (c *Client) FluorSummary(ctx context.Context, query domain.FluorQuery) ([]domain.FluorSummaryRow, error) {
	q := url.Values{}
	setIfPresent(q, "experiment_type", query.ExperimentType)
	setIfPresent(q, "hemisphere", query.Hemisphere)
	setIfPresent(q, "subject_id", query.SubjectID)
	setIfPresent(q, "region_id", query.RegionID)
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}

	out := []domain.FluorSummaryRow{}
	if err := c.getJSON(ctx, pathFluorSummary, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// postMultipart sends fields and files as multipart/form-data and returns the response body.
func (c *Client) postMultipart(ctx context.Context, path string, fields [][2]string, files []domain.QueuedFile) ([]byte, error) {
	formFiles := make([]*fiber.FormFile, 0, len(files))
	for _, f := range files {
		content, err := readPayload(f)
		if err != nil {
			return nil, err
		}
		formFiles = append(formFiles, &fiber.FormFile{
			Fieldname: filesField,
			Name:      f.Name,
			Content:   content,
		})
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	for _, kv := range fields {
		args.Add(kv[0], kv[1])
	}

	var body []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		timeout, err := c.requestTimeout(ctx)
		if err != nil {
			return err
		}

		agent := fiber.Post(c.baseURL + path).Timeout(timeout)
		// Files must be attached before the form is encoded.
		agent.FileData(formFiles...)
		agent.MultipartForm(args)

		body, err = c.do(agent)
		return err
	})
	return body, err
}

// getJSON fetches path and decodes the JSON answer into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	var body []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		timeout, err := c.requestTimeout(ctx)
		if err != nil {
			return err
		}

		agent := fiber.Get(c.baseURL + path).Timeout(timeout)
		if len(query) > 0 {
			agent.QueryString(query.Encode())
		}

		body, err = c.do(agent)
		return err
	})
	if err != nil {
		logger.Warnw("Backend request failed", "path", path, "error", err.Error())
		return fmt.Errorf("GET %s: %w", path, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: invalid response: %w", path, err)
	}
	return nil
}

func (c *Client) do(agent *fiber.Agent) ([]byte, error) {
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, &StatusError{Code: code, Body: truncate(strings.TrimSpace(string(body)), maxErrorBodyBytes)}
	}
	return body, nil
}

// requestTimeout bounds one request by the client timeout and the context deadline.
func (c *Client) requestTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	return timeout, nil
}

// truncate cuts text to at most limit bytes without splitting a UTF-8 sequence.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// readPayload returns the file content. In-memory payloads are used as is.
func readPayload(f domain.QueuedFile) ([]byte, error) {
	if f.Payload == nil {
		return nil, fmt.Errorf("file %s has no content", f.Name)
	}
	if data, ok := f.Payload.(domain.BytesPayload); ok {
		return []byte(data), nil
	}
	rc, err := f.Payload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return data, nil
}

// uploadError wraps a failed upload with the collaborator's message, or a generic one.
func uploadError(op string, err error) error {
	msg := err.Error()
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Body == "" {
		msg = uploadFailedMsg
	}
	return &domain.TransportError{Op: op, Message: msg, Err: err}
}

func isBreakerFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= fiber.StatusInternalServerError
	}
	return true
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
