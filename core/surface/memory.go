package surface

import (
	"fmt"
	"sync"

	"mapsync/core/content"
	"mapsync/core/viewport"
)

// Memory is an in-process Surface implementation backed by plain maps.
// It is the reference surface for tests and for the inspector feature,
// which exposes its state over HTTP. All methods are safe for concurrent
// reads; mutation runs on the reconciler's goroutine as usual.
type Memory struct {
	mu        sync.RWMutex
	size      Size
	camera    viewport.State
	anim      *viewport.Animation
	indicator *content.LocationIndicator
	entities  map[string]map[string]content.Annotation
}

// NewMemory creates an empty in-memory surface with the given pixel size.
func NewMemory(width, height float64) *Memory {
	return &Memory{
		size:     Size{Width: width, Height: height},
		entities: make(map[string]map[string]content.Annotation),
	}
}

func (m *Memory) AddAnnotation(groupKey string, node content.Annotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	group := m.entities[groupKey]
	if group == nil {
		group = make(map[string]content.Annotation)
		m.entities[groupKey] = group
	}
	id := node.Identity()
	if _, exists := group[id]; exists {
		return fmt.Errorf("surface entity %s/%s already exists", groupKey, id)
	}
	group[id] = node
	return nil
}

func (m *Memory) UpdateAnnotation(groupKey, identity string, attrs content.Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	group := m.entities[groupKey]
	node, ok := group[identity]
	if !ok {
		return fmt.Errorf("surface entity %s/%s not found", groupKey, identity)
	}
	group[identity] = withAttrs(node, attrs)
	return nil
}

func (m *Memory) RemoveAnnotation(groupKey, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	group := m.entities[groupKey]
	if _, ok := group[identity]; !ok {
		return fmt.Errorf("surface entity %s/%s not found", groupKey, identity)
	}
	delete(group, identity)
	if len(group) == 0 {
		delete(m.entities, groupKey)
	}
	return nil
}

func (m *Memory) SetLocationIndicator(cfg *content.LocationIndicator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indicator = cfg
	return nil
}

func (m *Memory) ApplyCameraState(state viewport.State, anim *viewport.Animation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.camera = state
	m.anim = anim
	return nil
}

func (m *Memory) Size() Size {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Camera returns the last applied camera state.
func (m *Memory) Camera() viewport.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.camera
}

// Indicator returns the current location indicator config, nil if clear.
func (m *Memory) Indicator() *content.LocationIndicator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indicator
}

// Entities returns a snapshot of all surface entities keyed by group.
func (m *Memory) Entities() map[string]map[string]content.Annotation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]map[string]content.Annotation, len(m.entities))
	for g, nodes := range m.entities {
		copied := make(map[string]content.Annotation, len(nodes))
		for id, n := range nodes {
			copied[id] = n
		}
		out[g] = copied
	}
	return out
}

// EntityCount returns the total number of entities on the surface.
func (m *Memory) EntityCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, nodes := range m.entities {
		total += len(nodes)
	}
	return total
}

func withAttrs(node content.Annotation, attrs content.Attributes) content.Annotation {
	switch n := node.(type) {
	case content.PointAnnotation:
		n.Attrs = attrs
		return n
	case content.PolylineAnnotation:
		n.Attrs = attrs
		return n
	case content.PolygonAnnotation:
		n.Attrs = attrs
		return n
	case content.ViewAnnotation:
		n.Attrs = attrs
		return n
	default:
		return node
	}
}

// MemoryHost is an in-process HostHierarchy that tracks attached view
// resources, for tests and the inspector feature.
type MemoryHost struct {
	mu       sync.RWMutex
	attached map[content.ViewResource]struct{}
}

// NewMemoryHost creates an empty in-memory host hierarchy.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{attached: make(map[content.ViewResource]struct{})}
}

func (h *MemoryHost) AttachChildSurface(resource content.ViewResource) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.attached[resource]; ok {
		return fmt.Errorf("resource already attached")
	}
	h.attached[resource] = struct{}{}
	return nil
}

func (h *MemoryHost) DetachChildSurface(resource content.ViewResource) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.attached[resource]; !ok {
		return fmt.Errorf("resource not attached")
	}
	delete(h.attached, resource)
	return nil
}

// AttachedCount returns how many resources are currently attached.
func (h *MemoryHost) AttachedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.attached)
}
