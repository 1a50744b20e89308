package inspector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mapsync/core/content"
	"mapsync/core/coordinator"
	"mapsync/core/journal"
	"mapsync/core/logger"
	"mapsync/core/snapshot"
	"mapsync/core/surface"
	"mapsync/core/viewport"
)

// maxDiagnostics caps the in-memory diagnostic ring.
const maxDiagnostics = 256

// SurfaceState is the inspectable state of the owned surface after the
// latest render pass.
type SurfaceState struct {
	Entities  map[string]map[string]content.Annotation `json:"entities"`
	Camera    viewport.State                           `json:"camera"`
	Indicator *content.LocationIndicator               `json:"indicator,omitempty"`
	Tracked   int                                      `json:"tracked"`
	Attached  int                                      `json:"attached"`
}

// Service owns the rendering surface and the coordinator bound to it.
// Render passes are serialized on passMu; the viewport state lives
// behind its own lock because the binding getter runs mid-pass.
type Service struct {
	logger    *zap.Logger
	surf      *surface.Memory
	host      *surface.MemoryHost
	coord     *coordinator.Coordinator
	snapshots *snapshot.Store
	recorder  *journal.Recorder

	passMu sync.Mutex
	last   *content.Description

	viewMu sync.RWMutex
	view   viewport.State

	diagMu sync.Mutex
	diags  []coordinator.Diagnostic
}

// NewService builds the service with a fresh surface of the given size.
func NewService(log *zap.Logger, width, height float64, snapshots *snapshot.Store, recorder *journal.Recorder) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		logger:    log,
		surf:      surface.NewMemory(width, height),
		host:      surface.NewMemoryHost(),
		snapshots: snapshots,
		recorder:  recorder,
	}

	source := viewport.Bound(
		func() viewport.State {
			s.viewMu.RLock()
			defer s.viewMu.RUnlock()
			return s.view
		},
		func(state viewport.State) {
			s.viewMu.Lock()
			defer s.viewMu.Unlock()
			s.view = state
		},
	)

	s.coord = coordinator.New(s.surf, s.host, source,
		coordinator.WithLogger(log),
		coordinator.WithDiagnosticSink(s.recordDiagnostic),
	)
	return s
}

// ApplyDescription runs one render pass over the given description and
// journals the outcome when a recorder is configured.
func (s *Service) ApplyDescription(ctx context.Context, desc *content.Description) (*coordinator.PassSummary, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	summary, err := s.coord.Render(func() *content.Description { return desc })
	if err != nil {
		return nil, err
	}
	s.last = desc

	l := logger.WithPass(s.logger, summary.PassID)
	l.Info("Description applied",
		zap.Int("adds", summary.Adds),
		zap.Int("updates", summary.Updates),
		zap.Int("removes", summary.Removes),
		zap.Int("failures", summary.Failures),
	)

	if s.recorder != nil {
		if err := s.recorder.RecordPass(ctx, summary); err != nil {
			l.Warn("Failed to journal render pass", zap.Error(err))
		}
	}
	return summary, nil
}

// PlanDescription computes the mutations a render pass over desc would
// issue, without touching the surface or the tracked state.
func (s *Service) PlanDescription(desc *content.Description) coordinator.Plan {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	return coordinator.BuildPlan(s.last, desc)
}

// State returns a snapshot of the surface after the latest pass.
func (s *Service) State() SurfaceState {
	return SurfaceState{
		Entities:  s.surf.Entities(),
		Camera:    s.surf.Camera(),
		Indicator: s.surf.Indicator(),
		Tracked:   s.coord.TrackedCount(),
		Attached:  s.host.AttachedCount(),
	}
}

// Viewport returns the latest known viewport state.
func (s *Service) Viewport() viewport.State {
	return s.coord.Viewport()
}

// ProposeViewport requests a camera move through the two-way binding.
func (s *Service) ProposeViewport(state viewport.State, anim *viewport.Animation) error {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	return s.coord.ProposeViewport(state, anim)
}

// Diagnostics returns the most recent warning-class diagnostics,
// newest last.
func (s *Service) Diagnostics() []coordinator.Diagnostic {
	s.diagMu.Lock()
	defer s.diagMu.Unlock()
	out := make([]coordinator.Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}

// SaveSnapshot captures the last applied description and the current
// viewport under the given name.
func (s *Service) SaveSnapshot(ctx context.Context, name string) error {
	if s.snapshots == nil {
		return fmt.Errorf("snapshot store is not configured")
	}

	s.passMu.Lock()
	desc := s.last
	s.passMu.Unlock()

	if desc == nil {
		return fmt.Errorf("no description has been applied yet")
	}

	return s.snapshots.Save(ctx, snapshot.Snapshot{
		Name:        name,
		SavedAt:     time.Now().UTC(),
		Viewport:    s.coord.Viewport(),
		Description: desc,
	})
}

// RestoreSnapshot loads the named snapshot, moves the camera to its
// viewport and renders its description.
func (s *Service) RestoreSnapshot(ctx context.Context, name string) (*coordinator.PassSummary, error) {
	if s.snapshots == nil {
		return nil, fmt.Errorf("snapshot store is not configured")
	}

	snap, err := s.snapshots.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.ProposeViewport(snap.Viewport, nil); err != nil {
		s.logger.Warn("Failed to restore viewport", zap.String("snapshot", name), zap.Error(err))
	}
	return s.ApplyDescription(ctx, snap.Description)
}

// ListSnapshots returns the stored snapshot names, sorted.
func (s *Service) ListSnapshots(ctx context.Context) ([]string, error) {
	if s.snapshots == nil {
		return nil, fmt.Errorf("snapshot store is not configured")
	}
	return s.snapshots.List(ctx)
}

// DeleteSnapshot removes the named snapshot.
func (s *Service) DeleteSnapshot(ctx context.Context, name string) error {
	if s.snapshots == nil {
		return fmt.Errorf("snapshot store is not configured")
	}
	return s.snapshots.Delete(ctx, name)
}

// RecentPasses returns the newest journal entries.
func (s *Service) RecentPasses(ctx context.Context, limit int) ([]journal.Entry, error) {
	if s.recorder == nil {
		return nil, fmt.Errorf("journal is not configured")
	}
	return s.recorder.RecentEntries(ctx, limit)
}

// PassEntries returns all journal entries of one render pass.
func (s *Service) PassEntries(ctx context.Context, passID string) ([]journal.Entry, error) {
	if s.recorder == nil {
		return nil, fmt.Errorf("journal is not configured")
	}
	return s.recorder.PassEntries(ctx, passID)
}

// Close tears down the coordinator and releases the surface.
func (s *Service) Close() error {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	return s.coord.Close()
}

func (s *Service) recordDiagnostic(d coordinator.Diagnostic) {
	s.diagMu.Lock()
	defer s.diagMu.Unlock()
	s.diags = append(s.diags, d)
	if len(s.diags) > maxDiagnostics {
		s.diags = s.diags[len(s.diags)-maxDiagnostics:]
	}
}
