// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"samplepedia/internal/middleware"
	"samplepedia/internal/models"
	"samplepedia/internal/service"
	"samplepedia/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SubmitTask handles POST /api/tasks
// @Summary Submit a training sample
// @Description Create a new analysis task with an optional reference solution
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body validation.TaskSubmission true "Task submission"
// @Success 201 {object} models.AnalysisTask
// @Failure 400 {object} models.ErrorResponse
// @Router /tasks [post]
func (s *Server) SubmitTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	submitter, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	var req validation.TaskSubmission
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	task, err := s.taskService.SubmitTask(ctx, req, submitter)
	if err != nil {
		middleware.TaskSubmissions.WithLabelValues("rejected").Inc()
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	middleware.TaskSubmissions.WithLabelValues("accepted").Inc()
	return c.Status(fiber.StatusCreated).JSON(task)
}

// GetTasks handles GET /api/tasks
// @Summary Browse the sample catalogue
// @Tags tasks
// @Produce json
// @Param q query string false "SHA256 substring filter"
// @Param tag query string false "Tag filter"
// @Param difficulty query string false "Difficulty filter"
// @Param favorites query bool false "Only the requester's favorites"
// @Param sort query string false "Sort key (sha256, difficulty, likes, created, video)"
// @Success 200 {array} models.AnalysisTask
// @Router /tasks [get]
func (s *Server) GetTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 25)
	userID, _ := s.optionalUserID(c)

	tasks, err := s.taskService.ListTasks(ctx, service.ListTasksInput{
		Query:         c.Query("q"),
		Tag:           c.Query("tag"),
		Difficulty:    c.Query("difficulty"),
		FavoritesOnly: c.QueryBool("favorites"),
		Sort:          c.Query("sort"),
		Limit:         page.Limit,
		Offset:        page.Offset,
		CurrentUserID: userID,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(tasks)
}

// GetTask handles GET /api/tasks/:sha256/:id
func (s *Server) GetTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := s.optionalCurrentUser(c)

	task, err := s.taskService.GetTask(ctx, id, c.Params("sha256"), viewer)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"task":     task,
		"can_edit": viewer.CanEditTask(task),
	})
}

// UpdateTask handles PUT /api/tasks/:sha256/:id
func (s *Server) UpdateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	editor, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	var req validation.TaskSubmission
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	task, err := s.taskService.UpdateTask(ctx, id, c.Params("sha256"), req, editor)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(task)
}

// DeleteTask handles DELETE /api/tasks/:sha256/:id
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if err := s.taskService.DeleteTask(ctx, id, c.Params("sha256"), user); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Task deleted"})
}

// ToggleTaskFavorite handles POST /api/tasks/:sha256/:id/like.
// Anonymous clicks get the structured login-redirect payload instead of a
// bare 401 so the frontend can route to the login page.
func (s *Server) ToggleTaskFavorite(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user := s.optionalCurrentUser(c)
	if user == nil {
		return models.RespondLoginRequired(c)
	}

	liked, count, err := s.taskService.ToggleFavorite(ctx, user.ID, id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"liked":      liked,
		"like_count": count,
	})
}

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.taskService.ListTags(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(tags)
}

// GetImages handles GET /api/images
func (s *Server) GetImages(c *fiber.Ctx) error {
	images, err := s.taskService.ListImages(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(images)
}
