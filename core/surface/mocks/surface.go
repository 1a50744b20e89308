package mocks

import (
	"github.com/stretchr/testify/mock"

	"mapsync/core/content"
	"mapsync/core/surface"
	"mapsync/core/viewport"
)

// Surface is a mock implementation of surface.Surface
type Surface struct {
	mock.Mock
}

func (m *Surface) AddAnnotation(groupKey string, node content.Annotation) error {
	args := m.Called(groupKey, node)
	return args.Error(0)
}

func (m *Surface) UpdateAnnotation(groupKey, identity string, attrs content.Attributes) error {
	args := m.Called(groupKey, identity, attrs)
	return args.Error(0)
}

func (m *Surface) RemoveAnnotation(groupKey, identity string) error {
	args := m.Called(groupKey, identity)
	return args.Error(0)
}

func (m *Surface) SetLocationIndicator(cfg *content.LocationIndicator) error {
	args := m.Called(cfg)
	return args.Error(0)
}

func (m *Surface) ApplyCameraState(state viewport.State, anim *viewport.Animation) error {
	args := m.Called(state, anim)
	return args.Error(0)
}

func (m *Surface) Size() surface.Size {
	args := m.Called()
	if s, ok := args.Get(0).(surface.Size); ok {
		return s
	}
	return surface.Size{}
}

// Host is a mock implementation of surface.HostHierarchy
type Host struct {
	mock.Mock
}

func (m *Host) AttachChildSurface(resource content.ViewResource) error {
	args := m.Called(resource)
	return args.Error(0)
}

func (m *Host) DetachChildSurface(resource content.ViewResource) error {
	args := m.Called(resource)
	return args.Error(0)
}
