// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"samplepedia/internal/models"
	"samplepedia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateSolution handles POST /api/tasks/:sha256/:id/solutions
// @Summary Attach a solution write-up to a task
// @Tags solutions
// @Accept json
// @Produce json
// @Success 201 {object} models.Solution
// @Failure 400 {object} models.ErrorResponse
// @Router /tasks/{sha256}/{id}/solutions [post]
func (s *Server) CreateSolution(c *fiber.Ctx) error {
	ctx := c.UserContext()
	taskID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	author, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	var req struct {
		Title        string `json:"title"`
		SolutionType string `json:"solution_type"`
		URL          string `json:"url"`
		Content      string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	solution, err := s.solutionService.CreateSolution(ctx, service.CreateSolutionInput{
		TaskID:       taskID,
		Title:        req.Title,
		SolutionType: req.SolutionType,
		URL:          req.URL,
		Content:      req.Content,
		Author:       author,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(solution)
}

// GetTaskSolutions handles GET /api/tasks/:sha256/:id/solutions
func (s *Server) GetTaskSolutions(c *fiber.Ctx) error {
	ctx := c.UserContext()
	taskID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := s.optionalCurrentUser(c)

	solutions, err := s.solutionService.ListByTask(ctx, taskID, viewer)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(solutions)
}

// GetSolutions handles GET /api/solutions
// @Summary List solutions with type filter and title/sha256 search
// @Tags solutions
// @Produce json
// @Param type query string false "Solution type filter"
// @Param q query string false "Title or SHA256 search"
// @Success 200 {array} models.Solution
// @Router /solutions [get]
func (s *Server) GetSolutions(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 25)
	userID, _ := s.optionalUserID(c)

	solutions, err := s.solutionService.ListSolutions(ctx, service.ListSolutionsInput{
		Type:          c.Query("type"),
		Query:         c.Query("q"),
		Limit:         page.Limit,
		Offset:        page.Offset,
		CurrentUserID: userID,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(solutions)
}

// GetSolution handles GET /api/solutions/:id
func (s *Server) GetSolution(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := s.optionalCurrentUser(c)

	solution, err := s.solutionService.GetSolution(ctx, id, viewer)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(solution)
}

// DeleteSolution handles DELETE /api/solutions/:id
func (s *Server) DeleteSolution(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if err := s.solutionService.DeleteSolution(ctx, id, user); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Solution deleted"})
}

// ToggleSolutionLike handles POST /api/solutions/:id/like with the same
// login-redirect contract as the task favorite toggle.
func (s *Server) ToggleSolutionLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user := s.optionalCurrentUser(c)
	if user == nil {
		return models.RespondLoginRequired(c)
	}

	liked, count, err := s.solutionService.ToggleLike(ctx, id, user)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"liked":      liked,
		"like_count": count,
	})
}
