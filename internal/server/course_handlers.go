package server

import (
	"samplepedia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCourses handles GET /api/courses
// @Summary List training courses
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses [get]
func (s *Server) GetCourses(c *fiber.Ctx) error {
	courses, err := s.courseService.ListCourses(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(courses)
}

// GetCourseSamples handles GET /api/courses/:id
func (s *Server) GetCourseSamples(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	course, samples, err := s.courseService.CourseSamples(ctx, id, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"course":  course,
		"samples": samples,
	})
}
