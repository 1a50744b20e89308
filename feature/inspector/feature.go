package inspector

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mapsync/core/journal"
	"mapsync/core/snapshot"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the inspector feature. Snapshots and journal are
// optional; pass nil to disable the respective endpoints.
func NewFeature(logger *zap.Logger, width, height float64, snapshots *snapshot.Store, recorder *journal.Recorder) *Feature {
	svc := NewService(logger, width, height, snapshots, recorder)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "inspector"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the underlying service, used during shutdown.
func (f *Feature) Service() *Service {
	return f.service
}
