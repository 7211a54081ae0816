package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/port"
	"github.com/anthanhphan/olfactory-dashboard/pkg/shard"
)

const workspaceIDPrefix = "ws-"

// IDGenerator defines workspace ID generation capability.
type IDGenerator interface {
	NextID(prefix string) (string, error)
}

// Workspace is the upload state of one dashboard page: its queue and the
// guards that serialise access to it.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	queue      *UploadQueue
	lastUsed   atomic.Int64
	submitting atomic.Bool
}

func newWorkspace(id string, now time.Time) *Workspace {
	ws := &Workspace{
		ID:        id,
		CreatedAt: now,
		queue:     NewUploadQueue(),
	}
	ws.lastUsed.Store(now.UnixNano())
	return ws
}

// With runs fn with exclusive access to the workspace queue.
func (w *Workspace) With(fn func(q *UploadQueue)) {
	w.touch()
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.queue)
}

// Submit runs a registration against the files queued when it starts. A second
// submission while one is outstanding fails with port.ErrSubmissionInFlight.
// The queue stays usable during the uploads; on success only the submitted
// entries are removed.
func (w *Workspace) Submit(ctx context.Context, svc port.RegistrationService, form domain.FormFields) (*domain.Summary, error) {
	if !w.submitting.CompareAndSwap(false, true) {
		return nil, port.ErrSubmissionInFlight
	}
	defer w.submitting.Store(false)

	w.touch()
	w.mu.Lock()
	pending := &submission{ws: w, files: w.queue.Snapshot()}
	w.mu.Unlock()

	return svc.Submit(ctx, form, pending)
}

// IdleSince returns the last time the workspace was used.
func (w *Workspace) IdleSince() time.Time {
	return time.Unix(0, w.lastUsed.Load())
}

func (w *Workspace) touch() {
	w.lastUsed.Store(time.Now().UnixNano())
}

// submission is the queue as it stood when a registration started.
type submission struct {
	ws    *Workspace
	files []domain.QueuedFile
}

func (s *submission) Snapshot() []domain.QueuedFile {
	out := make([]domain.QueuedFile, len(s.files))
	copy(out, s.files)
	return out
}

func (s *submission) PartitionByCategory() domain.Partition {
	return (&UploadQueue{files: s.files}).PartitionByCategory()
}

var _ port.FileQueue = (*submission)(nil)

// Clear drops the submitted files from the workspace queue.
func (s *submission) Clear() {
	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()
	s.ws.queue.Discard(s.files)
}

// WorkspaceRegistry owns the workspaces of all open dashboard pages and evicts
// the ones left idle longer than the TTL.
type WorkspaceRegistry struct {
	idGen         IDGenerator
	items         *shard.Map[*Workspace]
	ttl           time.Duration
	sweepInterval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewWorkspaceRegistry creates an empty registry.
func NewWorkspaceRegistry(idGen IDGenerator, ttl, sweepInterval time.Duration) *WorkspaceRegistry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &WorkspaceRegistry{
		idGen:         idGen,
		items:         shard.NewMap[*Workspace](shard.DefaultStripes),
		ttl:           ttl,
		sweepInterval: sweepInterval,
		stop:          make(chan struct{}),
	}
}

// Create allocates a workspace with an empty queue.
func (r *WorkspaceRegistry) Create() (*Workspace, error) {
	id, err := r.idGen.NextID(workspaceIDPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to generate workspace id: %w", err)
	}

	ws, inserted := r.items.PutIfAbsent(id, newWorkspace(id, time.Now()))
	if !inserted {
		return nil, fmt.Errorf("workspace id collision: %s", id)
	}

	logger.Infow("Workspace created", "workspace_id", id)
	return ws, nil
}

// Get returns the workspace with the given ID.
func (r *WorkspaceRegistry) Get(id string) (*Workspace, error) {
	ws, ok := r.items.Get(id)
	if !ok {
		return nil, port.ErrWorkspaceNotFound
	}
	return ws, nil
}

// Drop discards a workspace and its queue.
func (r *WorkspaceRegistry) Drop(id string) error {
	if !r.items.Delete(id) {
		return port.ErrWorkspaceNotFound
	}
	logger.Infow("Workspace dropped", "workspace_id", id)
	return nil
}

// Len returns the number of live workspaces.
func (r *WorkspaceRegistry) Len() int {
	return r.items.Len()
}

// Sweep evicts workspaces idle for longer than the TTL and returns their IDs.
// Workspaces with a registration in flight are kept.
func (r *WorkspaceRegistry) Sweep(now time.Time) []string {
	cutoff := now.Add(-r.ttl)
	evicted := r.items.DeleteIf(func(_ string, ws *Workspace) bool {
		return !ws.submitting.Load() && ws.IdleSince().Before(cutoff)
	})
	if len(evicted) > 0 {
		logger.Infow("Idle workspaces evicted", "count", len(evicted), "remaining", r.items.Len())
	}
	return evicted
}

// Start runs the eviction loop until ctx is done or Stop is called.
func (r *WorkspaceRegistry) Start(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Stop ends the eviction loop.
func (r *WorkspaceRegistry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}
