package service

import (
	"context"

	"samplepedia/internal/models"
	"samplepedia/internal/repository"
)

// CourseService serves the course catalogue and per-course syllabus views.
type CourseService struct {
	courseRepo repository.CourseRepository
}

func NewCourseService(courseRepo repository.CourseRepository) *CourseService {
	return &CourseService{courseRepo: courseRepo}
}

// CourseSample is one syllabus row: a sample under its lecture slot. The same
// sample appears once per lecture that uses it.
type CourseSample struct {
	Section       int                 `json:"section"`
	LectureNumber int                 `json:"lecture_number"`
	LectureTitle  string              `json:"lecture_title"`
	Task          models.AnalysisTask `json:"task"`
}

func (s *CourseService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.List(ctx)
}

// CourseSamples returns the course and its samples flattened into syllabus
// order (section, then lecture number).
func (s *CourseService) CourseSamples(ctx context.Context, courseID uint, currentUserID uint) (*models.Course, []CourseSample, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}

	refs, err := s.courseRepo.ListReferences(ctx, courseID, currentUserID)
	if err != nil {
		return nil, nil, err
	}

	samples := make([]CourseSample, 0, len(refs))
	for _, ref := range refs {
		for _, task := range ref.Tasks {
			samples = append(samples, CourseSample{
				Section:       ref.Section,
				LectureNumber: ref.LectureNumber,
				LectureTitle:  ref.LectureTitle,
				Task:          task,
			})
		}
	}
	return course, samples, nil
}
