package port

import (
	"context"
	"errors"

	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
)

var (
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrSubmissionInFlight = errors.New("a registration is already in progress")
)

// FileQueue is the view of the upload queue the registration workflow needs.
type FileQueue interface {
	Snapshot() []domain.QueuedFile
	PartitionByCategory() domain.Partition
	Clear()
}

// RegistrationService validates a form and registers the queued files.
type RegistrationService interface {
	Submit(ctx context.Context, form domain.FormFields, queue FileQueue) (*domain.Summary, error)
}

// CatalogService serves the read side of the dashboard.
type CatalogService interface {
	Catalog

	// Overview loads subjects, files and samples together.
	Overview(ctx context.Context) *domain.Overview
}

// ChartService builds chart specifications for the dashboard panels.
type ChartService interface {
	RabiesLoad(ctx context.Context, filter domain.ChartFilter) domain.ChartSpec
	DoubleInjection(ctx context.Context, filter domain.ChartFilter) domain.ChartSpec
	ClusterSizes(ctx context.Context, sampleID string) domain.ChartSpec
	MarkerHeatmap(ctx context.Context, sampleID, clusterID string) domain.ChartSpec
}
