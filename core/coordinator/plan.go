package coordinator

import (
	"sort"

	"mapsync/core/content"
)

// ActionType represents the type of surface mutation.
type ActionType string

const (
	// ActionAdd creates a surface entity for a newly-declared identity.
	ActionAdd ActionType = "add"
	// ActionUpdate rewrites the attributes of a tracked identity in place.
	ActionUpdate ActionType = "update"
	// ActionRemove destroys the surface entity of a no-longer-declared identity.
	ActionRemove ActionType = "remove"
)

// Action represents one planned surface mutation.
type Action struct {
	// Type specifies the mutation to perform.
	Type ActionType `json:"type"`

	// Kind is the content kind of the affected node.
	Kind content.Kind `json:"kind"`

	// Group is the draw-layer group key.
	Group string `json:"group"`

	// Identity is the stable node key.
	Identity string `json:"identity"`

	// Node is the desired node for add/update actions; nil for removals.
	Node content.Annotation `json:"-"`
}

// Plan contains the mutations needed to converge the surface onto a new
// set of content buckets. Within one pass every removal, across all
// groups, is applied before any addition, and every addition before any
// update; each phase walks groups in lexical order so layer stacking is
// reproducible for identical input.
type Plan struct {
	Removes []Action `json:"removes"`
	Adds    []Action `json:"adds"`
	Updates []Action `json:"updates"`
}

// Empty reports whether the plan contains no mutations at all.
func (p Plan) Empty() bool {
	return len(p.Removes) == 0 && len(p.Adds) == 0 && len(p.Updates) == 0
}

// Len returns the total number of planned mutations.
func (p Plan) Len() int {
	return len(p.Removes) + len(p.Adds) + len(p.Updates)
}

// merge appends another plan's actions phase by phase.
func (p Plan) merge(other Plan) Plan {
	p.Removes = append(p.Removes, other.Removes...)
	p.Adds = append(p.Adds, other.Adds...)
	p.Updates = append(p.Updates, other.Updates...)
	return p
}

// ActionRecord is the journalled outcome of one applied action.
type ActionRecord struct {
	Type     ActionType   `json:"type"`
	Kind     content.Kind `json:"kind"`
	Group    string       `json:"group"`
	Identity string       `json:"identity"`
	Failed   bool         `json:"failed,omitempty"`
	Reason   string       `json:"reason,omitempty"`
}

// PassSummary provides aggregate statistics for one render pass.
type PassSummary struct {
	// PassID uniquely identifies the render pass in logs and journals.
	PassID string `json:"pass_id"`

	// Adds counts successfully applied additions.
	Adds int `json:"adds"`

	// Updates counts successfully applied updates.
	Updates int `json:"updates"`

	// Removes counts successfully applied removals.
	Removes int `json:"removes"`

	// Failures counts surface operations that failed and were skipped.
	Failures int `json:"failures"`

	// Duplicates counts identity collisions reported by the visitor.
	Duplicates int `json:"duplicates"`

	// Actions records every attempted mutation in application order.
	Actions []ActionRecord `json:"actions,omitempty"`
}

// BuildPlan computes the mutations that would converge a surface last
// reconciled against prev onto next, without touching any surface. It
// backs dry-run tooling; the live coordinator plans against its own
// tracked state instead.
func BuildPlan(prev, next *content.Description) Plan {
	before := content.VisitDescription(prev)
	after := content.VisitDescription(next)

	layers := newLayerCoordinator(nil)
	layers.seed(before)
	views := newViewCoordinator(nil, nil)
	views.seed(before.Views)

	return layers.plan(after).merge(views.plan(after.Views))
}

// sortActions orders actions lexically by group then identity, the
// deterministic order each phase is applied in.
func sortActions(actions []Action) {
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].Group != actions[j].Group {
			return actions[i].Group < actions[j].Group
		}
		return actions[i].Identity < actions[j].Identity
	})
}
