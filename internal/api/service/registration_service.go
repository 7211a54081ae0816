package service

import (
	"context"
	"errors"
	"strings"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/port"
)

const (
	opUploadMicroscopy   = "upload microscopy"
	opUploadRegionCounts = "upload region counts"
)

// RegistrationOptions configures the registration workflow.
type RegistrationOptions struct {
	// Modalities is the set of selectable modalities.
	Modalities []string
	// PixelSizeUm is sent with every microscopy batch.
	PixelSizeUm float64
}

// RegistrationWorkflow validates a submission and registers the queued files
// with the backend, images first and region counts second.
type RegistrationWorkflow struct {
	uploader    port.Uploader
	modalities  map[string]struct{}
	ordered     []string
	pixelSizeUm float64
}

// Ensure RegistrationWorkflow implements port.RegistrationService.
var _ port.RegistrationService = (*RegistrationWorkflow)(nil)

// NewRegistrationWorkflow builds the workflow around an uploader.
func NewRegistrationWorkflow(uploader port.Uploader, opts RegistrationOptions) *RegistrationWorkflow {
	modalities := make(map[string]struct{}, len(opts.Modalities))
	ordered := make([]string, 0, len(opts.Modalities))
	for _, m := range opts.Modalities {
		m = strings.TrimSpace(m)
		if _, seen := modalities[m]; m == "" || seen {
			continue
		}
		modalities[m] = struct{}{}
		ordered = append(ordered, m)
	}

	pixelSize := opts.PixelSizeUm
	if pixelSize <= 0 {
		pixelSize = domain.DefaultPixelSizeUm
	}

	return &RegistrationWorkflow{
		uploader:    uploader,
		modalities:  modalities,
		ordered:     ordered,
		pixelSizeUm: pixelSize,
	}
}

// Submit validates the form, uploads the queue and clears it on full success.
// Validation failures return a *domain.ValidationError before any backend call;
// backend failures return a *domain.TransportError and leave the queue as is.
func (w *RegistrationWorkflow) Submit(ctx context.Context, form domain.FormFields, queue port.FileQueue) (*domain.Summary, error) {
	if err := w.validate(form, queue); err != nil {
		return nil, err
	}

	req := domain.NewRegistrationRequest(form, queue.PartitionByCategory())
	logger.Infow("Registration started",
		"subject_id", req.SubjectID,
		"session_id", req.SessionID,
		"experiment_type", req.ExperimentType,
		"images", len(req.Files.Image),
		"tabular", len(req.Files.Tabular),
	)

	summary := &domain.Summary{
		Images:         len(req.Files.Image),
		Tabular:        len(req.Files.Tabular),
		SubjectID:      req.SubjectID,
		SessionID:      req.SessionID,
		Hemisphere:     req.Hemisphere,
		ExperimentType: req.ExperimentType,
	}

	if len(req.Files.Image) > 0 {
		err := w.uploader.UploadMicroscopy(ctx, domain.MicroscopyBatch{
			SubjectID:      req.SubjectID,
			SessionID:      req.SessionID,
			Hemisphere:     req.Hemisphere,
			PixelSizeUm:    w.pixelSizeUm,
			ExperimentType: req.ExperimentType,
			Files:          req.Files.Image,
		})
		if err != nil {
			return nil, w.transportError(opUploadMicroscopy, req, err)
		}
	}

	if len(req.Files.Tabular) > 0 {
		res, err := w.uploader.UploadRegionCounts(ctx, domain.RegionCountBatch{
			ExperimentType: req.ExperimentType,
			SubjectID:      req.SubjectID,
			SessionID:      req.SessionID,
			Hemisphere:     req.Hemisphere,
			Files:          req.Files.Tabular,
		})
		if err != nil {
			return nil, w.transportError(opUploadRegionCounts, req, err)
		}
		if res != nil {
			summary.RowsIngested = res.RowsIngested
		}
	}

	queue.Clear()
	logger.Infow("Registration completed",
		"subject_id", summary.SubjectID,
		"session_id", summary.SessionID,
		"rows_ingested", summary.RowsIngested,
	)
	return summary, nil
}

// Modalities returns the accepted modality values in configured order.
func (w *RegistrationWorkflow) Modalities() []string {
	out := make([]string, len(w.ordered))
	copy(out, w.ordered)
	return out
}

// validate applies the form checks in order; the first violation wins.
func (w *RegistrationWorkflow) validate(form domain.FormFields, queue port.FileQueue) error {
	if _, ok := w.modalities[strings.TrimSpace(form.Modality)]; !ok {
		return domain.ErrMissingModality
	}
	if strings.TrimSpace(form.SubjectID) == "" {
		return domain.ErrMissingSubject
	}
	if len(queue.Snapshot()) == 0 {
		return domain.ErrEmptyQueue
	}
	return nil
}

func (w *RegistrationWorkflow) transportError(op string, req domain.RegistrationRequest, err error) error {
	logger.Errorw("Registration failed",
		"op", op,
		"subject_id", req.SubjectID,
		"session_id", req.SessionID,
		"error", err.Error(),
	)

	var te *domain.TransportError
	if errors.As(err, &te) {
		return te
	}
	return &domain.TransportError{Op: op, Message: err.Error(), Err: err}
}
