// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"samplepedia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}

// PromoteToStaff handles POST /api/admin/users/:id/promote-staff.
// Staff check is enforced by StaffRequired middleware on the route.
func (s *Server) PromoteToStaff(c *fiber.Ctx) error {
	ctx := c.UserContext()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	target, err := s.userService.SetStaff(ctx, targetID, true)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "User promoted to staff", "user": target})
}

// DemoteFromStaff handles POST /api/admin/users/:id/demote-staff
func (s *Server) DemoteFromStaff(c *fiber.Ctx) error {
	ctx := c.UserContext()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if targetID == c.Locals("userID").(uint) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot demote yourself"))
	}

	target, err := s.userService.SetStaff(ctx, targetID, false)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "User demoted from staff", "user": target})
}

// GrantContributor handles POST /api/admin/users/:id/grant-contributor
func (s *Server) GrantContributor(c *fiber.Ctx) error {
	ctx := c.UserContext()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	target, err := s.userService.SetContributor(ctx, targetID, true)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Contributor access granted", "user": target})
}

// RevokeContributor handles POST /api/admin/users/:id/revoke-contributor
func (s *Server) RevokeContributor(c *fiber.Ctx) error {
	ctx := c.UserContext()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	target, err := s.userService.SetContributor(ctx, targetID, false)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Contributor access revoked", "user": target})
}
