// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"samplepedia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SaveDraft handles PUT /api/drafts/task.
// The body is a flat field→value map; unknown and empty fields are dropped.
func (s *Server) SaveDraft(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var fields map[string]string
	if err := c.BodyParser(&fields); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.draftService.Save(ctx, userID, fields); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Draft saved"})
}

// GetDraft handles GET /api/drafts/task
func (s *Server) GetDraft(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	fields, err := s.draftService.Get(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fields)
}

// ClearDraft handles DELETE /api/drafts/task
func (s *Server) ClearDraft(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	if err := s.draftService.Clear(ctx, userID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Draft cleared"})
}
