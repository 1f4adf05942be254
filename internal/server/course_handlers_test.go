package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"samplepedia/internal/config"
	"samplepedia/internal/models"
	"samplepedia/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCourseRepository is a mock of the CourseRepository interface
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) List(ctx context.Context) ([]*models.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) ListReferences(ctx context.Context, courseID uint, currentUserID uint) ([]*models.CourseReference, error) {
	args := m.Called(ctx, courseID, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CourseReference), args.Error(1)
}

func newCourseTestApp(mockRepo *MockCourseRepository) *fiber.App {
	s := &Server{config: &config.Config{JWTSecret: "test_secret"}}
	s.courseService = service.NewCourseService(mockRepo)

	app := fiber.New()
	app.Get("/api/courses", s.GetCourses)
	app.Get("/api/courses/:id", s.GetCourseSamples)
	return app
}

func TestGetCourses(t *testing.T) {
	mockCourses := new(MockCourseRepository)
	app := newCourseTestApp(mockCourses)

	mockCourses.On("List", mock.Anything).
		Return([]*models.Course{
			{ID: 1, Name: "Practical Malware Analysis", SampleCount: 12},
			{ID: 2, Name: "Reversing Bootcamp", SampleCount: 4},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	resp, _ := app.Test(req)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var courses []models.Course
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&courses))
	require.Len(t, courses, 2)
	assert.Equal(t, "Practical Malware Analysis", courses[0].Name)
	assert.Equal(t, 12, courses[0].SampleCount)
	mockCourses.AssertExpectations(t)
}

func TestGetCourseSamples(t *testing.T) {
	mockCourses := new(MockCourseRepository)
	app := newCourseTestApp(mockCourses)

	t.Run("Syllabus order with favorite state", func(t *testing.T) {
		mockCourses.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Course{ID: 1, Name: "Practical Malware Analysis", SampleCount: 3}, nil).Once()
		mockCourses.On("ListReferences", mock.Anything, uint(1), uint(42)).
			Return([]*models.CourseReference{
				{
					ID: 10, CourseID: 1, Section: 1, LectureNumber: 2,
					LectureTitle: "Static triage",
					Tasks: []models.AnalysisTask{
						{ID: 5, SHA256: testSHA256, Liked: true},
						{ID: 6},
					},
				},
				{
					ID: 11, CourseID: 1, Section: 2, LectureNumber: 1,
					LectureTitle: "Dynamic analysis",
					Tasks:        []models.AnalysisTask{{ID: 7}},
				},
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/courses/1", nil)
		req.Header.Set("Authorization", bearerFor(t, "test_secret", 42))
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Course  models.Course          `json:"course"`
			Samples []service.CourseSample `json:"samples"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Practical Malware Analysis", body.Course.Name)

		require.Len(t, body.Samples, 3)
		assert.Equal(t, 1, body.Samples[0].Section)
		assert.Equal(t, 2, body.Samples[0].LectureNumber)
		assert.Equal(t, "Static triage", body.Samples[0].LectureTitle)
		assert.Equal(t, uint(5), body.Samples[0].Task.ID)
		assert.True(t, body.Samples[0].Task.Liked)
		assert.Equal(t, uint(6), body.Samples[1].Task.ID)
		assert.Equal(t, "Dynamic analysis", body.Samples[2].LectureTitle)
		mockCourses.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		mockCourses.On("GetByID", mock.Anything, uint(99)).
			Return(nil, models.NewNotFoundError("Course", uint(99))).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/courses/99", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/courses/abc", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
