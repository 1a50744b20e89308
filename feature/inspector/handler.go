package inspector

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mapsync/core/content"
	"mapsync/core/logger"
	"mapsync/core/viewport"
)

// Handler handles HTTP requests for the inspector.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the inspector routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	m := app.Group("/map")
	m.Post("/description", h.HandleApplyDescription)
	m.Post("/plan", h.HandlePlanDescription)
	m.Get("/state", h.HandleGetState)
	m.Get("/viewport", h.HandleGetViewport)
	m.Post("/viewport", h.HandleProposeViewport)
	m.Get("/diagnostics", h.HandleGetDiagnostics)
	m.Get("/passes", h.HandleRecentPasses)
	m.Get("/passes/:id", h.HandleGetPass)

	sn := app.Group("/snapshots")
	sn.Get("/", h.HandleListSnapshots)
	sn.Post("/:name", h.HandleSaveSnapshot)
	sn.Post("/:name/restore", h.HandleRestoreSnapshot)
	sn.Delete("/:name", h.HandleDeleteSnapshot)
}

// HandleApplyDescription renders the submitted content description and
// returns the pass summary.
func (h *Handler) HandleApplyDescription(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var desc content.Description
	if err := c.BodyParser(&desc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid description: " + err.Error(),
		})
	}

	summary, err := h.service.ApplyDescription(c.Context(), &desc)
	if err != nil {
		l.Error("Render pass failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(summary)
}

// HandlePlanDescription returns the dry-run plan for the submitted
// description without applying it.
func (h *Handler) HandlePlanDescription(c *fiber.Ctx) error {
	var desc content.Description
	if err := c.BodyParser(&desc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid description: " + err.Error(),
		})
	}
	return c.JSON(h.service.PlanDescription(&desc))
}

// HandleGetState returns the current surface state.
func (h *Handler) HandleGetState(c *fiber.Ctx) error {
	return c.JSON(h.service.State())
}

// HandleGetViewport returns the latest known viewport state.
func (h *Handler) HandleGetViewport(c *fiber.Ctx) error {
	return c.JSON(h.service.Viewport())
}

// HandleProposeViewport requests a camera move. The response reflects
// acceptance, not completion; clients observe the result through a
// subsequent read.
func (h *Handler) HandleProposeViewport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var state viewport.State
	if err := c.BodyParser(&state); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid viewport state: " + err.Error(),
		})
	}

	if err := h.service.ProposeViewport(state, state.Transition); err != nil {
		l.Error("Viewport proposal failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"accepted": true})
}

// HandleGetDiagnostics returns recent warning-class diagnostics.
func (h *Handler) HandleGetDiagnostics(c *fiber.Ctx) error {
	diags := h.service.Diagnostics()
	out := make([]fiber.Map, 0, len(diags))
	for _, d := range diags {
		entry := fiber.Map{
			"kind":         d.Kind,
			"content_kind": d.ContentKind,
			"group":        d.Group,
			"identity":     d.Identity,
			"op":           d.Op,
		}
		if d.Err != nil {
			entry["error"] = d.Err.Error()
		}
		out = append(out, entry)
	}
	return c.JSON(out)
}

// HandleRecentPasses returns the newest journal entries.
func (h *Handler) HandleRecentPasses(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	entries, err := h.service.RecentPasses(c.Context(), c.QueryInt("limit"))
	if err != nil {
		l.Error("Journal read failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(entries)
}

// HandleGetPass returns all journal entries of one render pass.
func (h *Handler) HandleGetPass(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	entries, err := h.service.PassEntries(c.Context(), c.Params("id"))
	if err != nil {
		l.Error("Journal read failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if len(entries) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "pass not found",
		})
	}
	return c.JSON(entries)
}

// HandleListSnapshots returns the stored snapshot names.
func (h *Handler) HandleListSnapshots(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	names, err := h.service.ListSnapshots(c.Context())
	if err != nil {
		l.Error("Snapshot list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

// HandleSaveSnapshot captures the last applied description under the
// given name.
func (h *Handler) HandleSaveSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := c.Params("name")

	if err := h.service.SaveSnapshot(c.Context(), name); err != nil {
		l.Error("Snapshot save failed", zap.String("snapshot", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"saved": name})
}

// HandleRestoreSnapshot renders the named snapshot onto the surface.
func (h *Handler) HandleRestoreSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := c.Params("name")

	summary, err := h.service.RestoreSnapshot(c.Context(), name)
	if err != nil {
		l.Error("Snapshot restore failed", zap.String("snapshot", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(summary)
}

// HandleDeleteSnapshot removes the named snapshot.
func (h *Handler) HandleDeleteSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := c.Params("name")

	if err := h.service.DeleteSnapshot(c.Context(), name); err != nil {
		l.Error("Snapshot delete failed", zap.String("snapshot", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
