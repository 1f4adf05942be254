package repository

import (
	"context"
	"errors"

	"samplepedia/internal/models"

	"gorm.io/gorm"
)

// CourseRepository defines the interface for course data operations
type CourseRepository interface {
	List(ctx context.Context) ([]*models.Course, error)
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	ListReferences(ctx context.Context, courseID uint, currentUserID uint) ([]*models.CourseReference, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// courseSampleCountExpr counts distinct samples pinned to any of the course's
// lecture references.
const courseSampleCountExpr = "(SELECT COUNT(DISTINCT tcr.analysis_task_id) " +
	"FROM task_course_references tcr " +
	"JOIN course_references ON course_references.id = tcr.course_reference_id " +
	"WHERE course_references.course_id = courses.id)"

func (r *courseRepository) List(ctx context.Context) ([]*models.Course, error) {
	var courses []*models.Course
	err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Select("courses.*, " + courseSampleCountExpr + " as sample_count").
		Order("courses.name ASC").
		Find(&courses).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Select("courses.*, " + courseSampleCountExpr + " as sample_count").
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Course", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &course, nil
}

// ListReferences returns the course's lecture slots in syllabus order with
// their samples, carrying the viewer's favorite state on each sample.
func (r *courseRepository) ListReferences(ctx context.Context, courseID uint, currentUserID uint) ([]*models.CourseReference, error) {
	var refs []*models.CourseReference
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("section ASC, lecture_number ASC").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return withTaskDetails(db, currentUserID)
		}).
		Preload("Tasks.Author").
		Preload("Tasks.Tags").
		Find(&refs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return refs, nil
}
