package service

import (
	"context"
	"sync"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/port"
	"github.com/anthanhphan/olfactory-dashboard/pkg/resilience"
)

const (
	sectionSubjects = "subjects"
	sectionFiles    = "files"
	sectionSamples  = "samples"
)

// CatalogServiceImpl serves backend listings and the combined dashboard overview.
type CatalogServiceImpl struct {
	port.Catalog
	workers int
}

// Ensure CatalogServiceImpl implements port.CatalogService.
var _ port.CatalogService = (*CatalogServiceImpl)(nil)

// NewCatalogService wraps a backend catalog. workers bounds the overview fan-out.
func NewCatalogService(catalog port.Catalog, workers int) *CatalogServiceImpl {
	if workers <= 0 {
		workers = 3
	}
	return &CatalogServiceImpl{Catalog: catalog, workers: workers}
}

// Overview loads subjects, files and samples in parallel. A failing section is
// left empty and reported in Errors; it never fails the other sections.
func (s *CatalogServiceImpl) Overview(ctx context.Context) *domain.Overview {
	out := &domain.Overview{
		Subjects: []domain.Subject{},
		Files:    []domain.DataFile{},
		Samples:  []domain.Sample{},
	}

	var mu sync.Mutex
	fail := func(section string, err error) {
		logger.Warnw("Failed to load catalog section", "section", section, "error", err.Error())
		mu.Lock()
		defer mu.Unlock()
		if out.Errors == nil {
			out.Errors = make(map[string]string)
		}
		out.Errors[section] = err.Error()
	}

	jobs := []func(){
		func() {
			subjects, err := s.ListSubjects(ctx)
			if err != nil {
				fail(sectionSubjects, err)
				return
			}
			if subjects == nil {
				return
			}
			mu.Lock()
			out.Subjects = subjects
			mu.Unlock()
		},
		func() {
			files, err := s.ListFiles(ctx)
			if err != nil {
				fail(sectionFiles, err)
				return
			}
			if files == nil {
				return
			}
			mu.Lock()
			out.Files = files
			mu.Unlock()
		},
		func() {
			samples, err := s.ListSamples(ctx)
			if err != nil {
				fail(sectionSamples, err)
				return
			}
			if samples == nil {
				return
			}
			mu.Lock()
			out.Samples = samples
			mu.Unlock()
		},
	}

	pool := resilience.NewWorkerPool(s.workers, len(jobs))
	names := []string{sectionSubjects, sectionFiles, sectionSamples}
	for i, job := range jobs {
		if err := pool.Submit(ctx, job); err != nil {
			fail(names[i], err)
		}
	}
	pool.Close()
	pool.Wait()

	return out
}
