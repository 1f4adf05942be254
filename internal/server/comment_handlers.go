// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"samplepedia/internal/models"
	"samplepedia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/tasks/:sha256/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	taskID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		TaskID:  taskID,
		Content: req.Content,
		User:    user,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments handles GET /api/tasks/:sha256/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()
	taskID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(ctx, taskID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(comments)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		CommentID: commentID,
		Content:   req.Content,
		User:      user,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(comment)
}

// DeleteComment handles POST /api/comments/:id/delete and DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if err := s.commentService.DeleteComment(ctx, commentID, user); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
