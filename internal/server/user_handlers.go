// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"samplepedia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	profile, err := s.userService.ProfileByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profile)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Public profile with authored tasks, solutions and score
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} service.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	username := c.Params("username")
	currentUserID, _ := s.optionalUserID(c)

	profile, err := s.userService.Profile(ctx, username, currentUserID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profile)
}
