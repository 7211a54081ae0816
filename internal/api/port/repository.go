package port

import (
	"context"

	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
)

//go:generate mockgen -destination=../service/mocks/backend_mock.go -package=mocks -source=repository.go

// Uploader registers file batches with the analysis backend.
type Uploader interface {
	// UploadMicroscopy sends image files as one multipart batch.
	UploadMicroscopy(ctx context.Context, batch domain.MicroscopyBatch) error

	// UploadRegionCounts sends region-count CSVs as one multipart batch.
	UploadRegionCounts(ctx context.Context, batch domain.RegionCountBatch) (*domain.RegionCountResult, error)
}

// Catalog reads the listings and aggregates exposed by the analysis backend.
type Catalog interface {
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	ListFiles(ctx context.Context) ([]domain.DataFile, error)
	ListSamples(ctx context.Context) ([]domain.Sample, error)
	ListClusters(ctx context.Context, sampleID string) ([]domain.Cluster, error)
	ListMarkers(ctx context.Context, sampleID, clusterID string) ([]domain.Marker, error)
	FluorSummary(ctx context.Context, query domain.FluorQuery) ([]domain.FluorSummaryRow, error)
}
