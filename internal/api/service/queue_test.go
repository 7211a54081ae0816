package service

import (
	"testing"

	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(name string, size int64) domain.RawFile {
	return domain.RawFile{Name: name, Size: size, Payload: domain.BytesPayload(make([]byte, 0))}
}

func names(files []domain.QueuedFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func TestUploadQueue_Add(t *testing.T) {
	q := NewUploadQueue()

	res := q.Add([]domain.RawFile{
		raw("scan.tif", 1000),
		raw("notes.txt", 10),
		raw("counts.CSV", 200),
		raw("", 5),
	})

	assert.Equal(t, []string{"scan.tif", "counts.CSV"}, names(res.Accepted))
	assert.Equal(t, []string{"notes.txt", "unknown"}, res.Rejected)
	require.Equal(t, 2, q.Len())

	snap := q.Snapshot()
	assert.Equal(t, domain.CategoryImage, snap[0].Category)
	assert.Equal(t, domain.CategoryTabular, snap[1].Category)
}

func TestUploadQueue_AddDropsDuplicatesSilently(t *testing.T) {
	q := NewUploadQueue()
	q.Add([]domain.RawFile{raw("scan.tif", 1000)})

	res := q.Add([]domain.RawFile{raw("scan.tif", 1000)})
	assert.Empty(t, res.Accepted)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, 1, q.Len())

	// Same name with a different size is a different file.
	res = q.Add([]domain.RawFile{raw("scan.tif", 1001)})
	assert.Len(t, res.Accepted, 1)
	assert.Equal(t, 2, q.Len())
}

func TestUploadQueue_AddDeduplicatesWithinBatch(t *testing.T) {
	q := NewUploadQueue()
	res := q.Add([]domain.RawFile{raw("a.png", 1), raw("a.png", 1), raw("b.png", 1)})

	assert.Equal(t, []string{"a.png", "b.png"}, names(res.Accepted))
	assert.Equal(t, []string{"a.png", "b.png"}, names(q.Snapshot()))
}

func TestUploadQueue_RejectedNeverQueued(t *testing.T) {
	q := NewUploadQueue()
	for _, name := range []string{"a.txt", "b.docx", "c.csv.bak", "d"} {
		res := q.Add([]domain.RawFile{raw(name, 1)})
		assert.Equal(t, []string{name}, res.Rejected)
	}
	q.Add([]domain.RawFile{raw("ok.zarr", 1)})

	assert.Equal(t, []string{"ok.zarr"}, names(q.Snapshot()))
}

func TestUploadQueue_RemoveAt(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{name: "first", index: 0, want: []string{"b.tif", "c.csv", "d.png"}},
		{name: "middle", index: 1, want: []string{"a.tif", "c.csv", "d.png"}},
		{name: "last", index: 3, want: []string{"a.tif", "b.tif", "c.csv"}},
		{name: "negative is no-op", index: -1, want: []string{"a.tif", "b.tif", "c.csv", "d.png"}},
		{name: "past end is no-op", index: 4, want: []string{"a.tif", "b.tif", "c.csv", "d.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewUploadQueue()
			q.Add([]domain.RawFile{raw("a.tif", 1), raw("b.tif", 2), raw("c.csv", 3), raw("d.png", 4)})

			q.RemoveAt(tt.index)
			assert.Equal(t, tt.want, names(q.Snapshot()))
		})
	}
}

func TestUploadQueue_SnapshotIsCopy(t *testing.T) {
	q := NewUploadQueue()
	q.Add([]domain.RawFile{raw("a.tif", 1)})

	snap := q.Snapshot()
	snap[0].Name = "changed.tif"

	assert.Equal(t, "a.tif", q.Snapshot()[0].Name)
}

func TestUploadQueue_ClearAndPartition(t *testing.T) {
	q := NewUploadQueue()
	q.Add([]domain.RawFile{raw("a.tif", 1), raw("x.csv", 2), raw("b.ome.zarr", 3), raw("y.csv", 4)})

	p := q.PartitionByCategory()
	assert.Equal(t, []string{"a.tif", "b.ome.zarr"}, names(p.Image))
	assert.Equal(t, []string{"x.csv", "y.csv"}, names(p.Tabular))

	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.True(t, q.PartitionByCategory().Empty())

	// The queue stays usable after a clear.
	q.Add([]domain.RawFile{raw("a.tif", 1)})
	assert.Equal(t, 1, q.Len())
}

func TestUploadQueue_Discard(t *testing.T) {
	q := NewUploadQueue()
	q.Add([]domain.RawFile{raw("a.tif", 1), raw("b.csv", 2), raw("c.png", 3)})
	submitted := q.Snapshot()[:2]

	q.Add([]domain.RawFile{raw("d.csv", 4)})
	q.Discard(submitted)

	assert.Equal(t, []string{"c.png", "d.csv"}, names(q.Snapshot()))

	q.Discard(nil)
	assert.Equal(t, 2, q.Len())
}
