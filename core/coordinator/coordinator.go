package coordinator

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mapsync/core/content"
	"mapsync/core/surface"
	"mapsync/core/viewport"
)

// ErrClosed is returned when a pass is requested after teardown.
var ErrClosed = errors.New("coordinator is closed")

// Coordinator owns the long-lived imperative surface handle and keeps it
// converged onto successive content descriptions. It is the exclusive
// owner of the tracking state and of the surface for its lifetime;
// sub-coordinators only ever receive scoped facades.
//
// All methods must run on the goroutine that owns the rendering surface.
// Render passes are strictly serialized by the driving framework; the
// coordinator does not lock.
type Coordinator struct {
	surf    surface.Surface
	binding *viewport.Binding
	layers  *layerCoordinator
	views   *viewCoordinator
	log     *zap.Logger
	sink    DiagnosticSink
	closed  bool
}

// Option customizes a Coordinator at construction time.
type Option func(*Coordinator)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithDiagnosticSink registers a sink for warning-class diagnostics.
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return func(c *Coordinator) { c.sink = sink }
}

// New builds a coordinator over the given surface, host hierarchy and
// viewport source. All collaborators are injected here by value; there
// is no ambient lookup.
func New(surf surface.Surface, host surface.HostHierarchy, source viewport.Source, opts ...Option) *Coordinator {
	c := &Coordinator{
		surf:    surf,
		binding: viewport.NewBinding(source, surf),
		layers:  newLayerCoordinator(surf),
		views:   newViewCoordinator(surf, host),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render performs one render pass: it invokes the builder exactly once,
// buckets the fresh description, diffs it against the tracked state and
// issues the minimal set of surface mutations. Identical consecutive
// descriptions produce zero add/update/remove calls.
//
// Render never aborts mid-pass. Individual surface failures degrade to
// diagnostics and leave only the affected identity untracked; viewport
// and location-indicator failures are retried implicitly because both
// are overwritten wholesale every pass.
func (c *Coordinator) Render(build content.Builder) (*PassSummary, error) {
	if c.closed {
		return nil, ErrClosed
	}

	summary := &PassSummary{PassID: uuid.NewString()}
	buckets := content.Visit(build)

	for _, dup := range buckets.Duplicates {
		summary.Duplicates++
		c.emit(Diagnostic{
			Kind:        DiagDuplicateIdentity,
			ContentKind: dup.Kind,
			Identity:    dup.Identity,
		})
	}

	// Upstream always wins: re-read the source rather than reusing any
	// earlier proposal, then drive the surface with it.
	camera := c.binding.CurrentValue()
	if err := c.binding.Propose(camera, nil); err != nil {
		c.log.Warn("camera apply failed, retrying next pass", zap.Error(err))
	}

	layerPlan := c.layers.plan(buckets)
	viewPlan := c.views.plan(buckets.Views)

	report := c.reporter(summary)

	// Removals for the whole pass precede any addition, across all
	// groups, so the surface never holds two entities with the same
	// handle. Views tear down before layers and build up after them.
	c.views.apply(viewPlan.Removes, report)
	c.layers.apply(layerPlan.Removes, report)
	c.layers.apply(layerPlan.Adds, report)
	c.views.apply(viewPlan.Adds, report)
	c.layers.apply(layerPlan.Updates, report)
	c.views.apply(viewPlan.Updates, report)

	c.views.repositionAll(camera, c.surf.Size())

	// Singleton state: full overwrite, no diffing.
	if err := c.surf.SetLocationIndicator(buckets.Location); err != nil {
		c.log.Warn("location indicator apply failed, retrying next pass", zap.Error(err))
	}

	c.log.Debug("render pass complete",
		zap.String("pass_id", summary.PassID),
		zap.Int("adds", summary.Adds),
		zap.Int("updates", summary.Updates),
		zap.Int("removes", summary.Removes),
		zap.Int("failures", summary.Failures),
	)

	return summary, nil
}

// NotifyCameraChanged forwards a surface-originated camera change (a
// gesture or an inertia settle) to the viewport source. Constant sources
// ignore it.
func (c *Coordinator) NotifyCameraChanged(state viewport.State) {
	c.binding.NotifyExternal(state)
}

// Viewport returns the latest known viewport state.
func (c *Coordinator) Viewport() viewport.State {
	return c.binding.CurrentValue()
}

// ProposeViewport requests a programmatic camera move. Non-blocking;
// completion is observed through the next Viewport read.
func (c *Coordinator) ProposeViewport(state viewport.State, anim *viewport.Animation) error {
	if c.closed {
		return ErrClosed
	}
	return c.binding.Propose(state, anim)
}

// TrackedCount returns the number of identities currently tracked across
// all kinds, which by invariant equals the number of entities the
// coordinator holds on the surface.
func (c *Coordinator) TrackedCount() int {
	return c.layers.trackedCount() + c.views.trackedCount()
}

// Close performs structural teardown: every tracked entity is explicitly
// removed (view resources detached first) and the indicator cleared
// before the surface handle is released. A tracked identity surviving
// without a corresponding surface removal is an internal-consistency
// violation and makes Close return an error.
func (c *Coordinator) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	summary := &PassSummary{PassID: uuid.NewString()}
	report := c.reporter(summary)

	c.views.teardown(report)
	c.layers.teardown(report)

	if err := c.surf.SetLocationIndicator(nil); err != nil {
		c.log.Warn("failed to clear location indicator during teardown", zap.Error(err))
	}

	if survivors := c.layers.trackedCount() + c.views.trackedCount(); survivors > 0 {
		return fmt.Errorf("structural teardown left %d tracked entities on the surface", survivors)
	}
	return nil
}

// reporter builds the per-action callback that commits counters, records
// the action and raises failure diagnostics.
func (c *Coordinator) reporter(summary *PassSummary) func(Action, error) {
	return func(a Action, err error) {
		rec := ActionRecord{
			Type:     a.Type,
			Kind:     a.Kind,
			Group:    a.Group,
			Identity: a.Identity,
		}
		if err != nil {
			rec.Failed = true
			rec.Reason = err.Error()
			summary.Failures++
			c.emit(Diagnostic{
				Kind:        DiagSurfaceOperationFailure,
				ContentKind: a.Kind,
				Group:       a.Group,
				Identity:    a.Identity,
				Op:          a.Type,
				Err:         err,
			})
		} else {
			switch a.Type {
			case ActionAdd:
				summary.Adds++
			case ActionUpdate:
				summary.Updates++
			case ActionRemove:
				summary.Removes++
			}
		}
		summary.Actions = append(summary.Actions, rec)
	}
}

func (c *Coordinator) emit(d Diagnostic) {
	c.log.Warn(d.String(),
		zap.String("diagnostic", string(d.Kind)),
		zap.String("content_kind", string(d.ContentKind)),
		zap.String("identity", d.Identity),
	)
	if c.sink != nil {
		c.sink(d)
	}
}
