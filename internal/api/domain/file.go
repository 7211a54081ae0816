package domain

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Category groups accepted files by the backend endpoint that ingests them.
type Category string

const (
	CategoryImage   Category = "image"
	CategoryTabular Category = "tabular"
)

var (
	// ImageExtensions are routed to the microscopy upload.
	ImageExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".ome.tif", ".ome.tiff", ".zarr", ".ome.zarr"}
	// TabularExtensions are routed to the region-count upload.
	TabularExtensions = []string{".csv"}
)

// Classify resolves the category of a file from its name suffix (case-insensitive).
// ok is false when the name matches neither extension set.
func Classify(name string) (Category, bool) {
	lower := strings.ToLower(name)
	if hasAnySuffix(lower, TabularExtensions) {
		return CategoryTabular, true
	}
	if hasAnySuffix(lower, ImageExtensions) {
		return CategoryImage, true
	}
	return "", false
}

func hasAnySuffix(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Payload is an opaque handle on file content. The queue never reads it.
type Payload interface {
	Open() (io.ReadCloser, error)
}

// BytesPayload keeps file content in memory.
type BytesPayload []byte

func (b BytesPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// RawFile is a file candidate as selected or dropped by the user.
type RawFile struct {
	Name    string
	Size    int64
	Payload Payload
}

// QueuedFile is a file staged for registration.
type QueuedFile struct {
	Name     string   `json:"name"`
	Size     int64    `json:"size"`
	Category Category `json:"category"`
	Payload  Payload  `json:"-"`
}

// SameIdentity reports whether two entries collide under the (name, size) key.
func (f QueuedFile) SameIdentity(name string, size int64) bool {
	return f.Name == name && f.Size == size
}

// AddResult reports the outcome of one batch of candidates.
type AddResult struct {
	Accepted []QueuedFile `json:"accepted"`
	Rejected []string     `json:"rejected"`
}

// Warning is the batch warning shown for rejected files, empty when nothing was rejected.
func (r AddResult) Warning() string {
	if len(r.Rejected) == 0 {
		return ""
	}
	return (&UnsupportedFileTypeError{Names: r.Rejected}).Error()
}

// Partition splits a queue snapshot by category, keeping queue order.
type Partition struct {
	Image   []QueuedFile
	Tabular []QueuedFile
}

// Empty reports whether neither category holds a file.
func (p Partition) Empty() bool {
	return len(p.Image) == 0 && len(p.Tabular) == 0
}

// HumanSize renders a byte count the way the file list displays it.
func HumanSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	units := []string{"KB", "MB", "GB", "TB"}
	value := float64(size)
	u := -1
	for {
		value /= 1024
		u++
		if value < 1024 || u == len(units)-1 {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", value, units[u])
}
