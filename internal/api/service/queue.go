package service

import (
	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/port"
)

// UploadQueue holds the files a user intends to register, in selection order.
// It performs no I/O and is not safe for concurrent use; callers serialise access.
type UploadQueue struct {
	files []domain.QueuedFile
}

// Ensure UploadQueue satisfies the workflow's queue view.
var _ port.FileQueue = (*UploadQueue)(nil)

// NewUploadQueue returns an empty queue.
func NewUploadQueue() *UploadQueue {
	return &UploadQueue{}
}

// Add classifies each candidate, rejects unsupported types and appends the rest
// unless an entry with the same name and size is already queued.
// Duplicates are dropped without being reported.
func (q *UploadQueue) Add(candidates []domain.RawFile) domain.AddResult {
	result := domain.AddResult{
		Accepted: make([]domain.QueuedFile, 0, len(candidates)),
		Rejected: make([]string, 0),
	}

	for _, c := range candidates {
		category, ok := domain.Classify(c.Name)
		if !ok {
			name := c.Name
			if name == "" {
				name = "unknown"
			}
			result.Rejected = append(result.Rejected, name)
			continue
		}
		if q.contains(c.Name, c.Size) {
			continue
		}

		entry := domain.QueuedFile{
			Name:     c.Name,
			Size:     c.Size,
			Category: category,
			Payload:  c.Payload,
		}
		q.files = append(q.files, entry)
		result.Accepted = append(result.Accepted, entry)
	}

	return result
}

// RemoveAt deletes the entry at index. Out-of-range indexes are ignored.
func (q *UploadQueue) RemoveAt(index int) {
	if index < 0 || index >= len(q.files) {
		return
	}
	q.files = append(q.files[:index], q.files[index+1:]...)
}

// Snapshot returns a copy of the queue in render order.
func (q *UploadQueue) Snapshot() []domain.QueuedFile {
	out := make([]domain.QueuedFile, len(q.files))
	copy(out, q.files)
	return out
}

// Len returns the number of queued files.
func (q *UploadQueue) Len() int {
	return len(q.files)
}

// Clear empties the queue.
func (q *UploadQueue) Clear() {
	q.files = nil
}

// Discard removes every entry matching one of files by name and size.
func (q *UploadQueue) Discard(files []domain.QueuedFile) {
	kept := q.files[:0]
	for _, f := range q.files {
		drop := false
		for _, d := range files {
			if f.SameIdentity(d.Name, d.Size) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, f)
		}
	}
	clear(q.files[len(kept):])
	q.files = kept
}

// PartitionByCategory splits the queue into image and tabular files.
func (q *UploadQueue) PartitionByCategory() domain.Partition {
	var p domain.Partition
	for _, f := range q.files {
		switch f.Category {
		case domain.CategoryTabular:
			p.Tabular = append(p.Tabular, f)
		default:
			p.Image = append(p.Image, f)
		}
	}
	return p
}

func (q *UploadQueue) contains(name string, size int64) bool {
	for _, f := range q.files {
		if f.SameIdentity(name, size) {
			return true
		}
	}
	return false
}
