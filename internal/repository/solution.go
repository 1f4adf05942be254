package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"samplepedia/internal/cache"
	"samplepedia/internal/models"

	"gorm.io/gorm"
)

// SolutionFilter narrows the global solution listing.
type SolutionFilter struct {
	Type     string
	Query    string // matches title or the task's sha256
	AuthorID uint   // non-zero: only solutions authored by this user
	Limit    int
	Offset   int
}

// SolutionRepository defines the interface for solution data operations
type SolutionRepository interface {
	Create(ctx context.Context, solution *models.Solution) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Solution, error)
	ListByTask(ctx context.Context, taskID uint, currentUserID uint) ([]*models.Solution, error)
	List(ctx context.Context, f SolutionFilter, currentUserID uint) ([]*models.Solution, error)
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, solutionID uint) (bool, int, error)
}

type solutionRepository struct {
	db *gorm.DB
}

// NewSolutionRepository creates a new solution repository
func NewSolutionRepository(db *gorm.DB) SolutionRepository {
	return &solutionRepository{db: db}
}

func (r *solutionRepository) Create(ctx context.Context, solution *models.Solution) error {
	if err := r.db.WithContext(ctx).Create(solution).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A solution with this title already exists for this task")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateTask(ctx, solution.TaskID)
	return nil
}

func (r *solutionRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Solution, error) {
	var solution models.Solution

	fetch := func() error {
		return r.applySolutionDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Author").
			Preload("Task").
			First(&solution, id).Error
	}

	var err error
	if currentUserID == 0 {
		// Anonymous detail views share a cache entry; per-user liked state
		// forces a DB read.
		err = cache.Aside(ctx, cache.SolutionKey(id), &solution, cache.SolutionTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Solution", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &solution, nil
}

func (r *solutionRepository) ListByTask(ctx context.Context, taskID uint, currentUserID uint) ([]*models.Solution, error) {
	var solutions []*models.Solution
	err := r.applySolutionDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Task").
		Where("task_id = ?", taskID).
		Order("solutions.created_at ASC").
		Find(&solutions).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return solutions, nil
}

func (r *solutionRepository) List(ctx context.Context, f SolutionFilter, currentUserID uint) ([]*models.Solution, error) {
	var solutions []*models.Solution

	db := r.applySolutionDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Task")

	if f.Type != "" {
		db = db.Where("solution_type = ?", f.Type)
	}
	if f.AuthorID != 0 {
		db = db.Where("author_id = ?", f.AuthorID)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		db = db.Where(
			"LOWER(title) LIKE ? OR solutions.task_id IN (?)",
			like,
			r.db.Table("analysis_tasks").
				Select("analysis_tasks.id").
				Where("analysis_tasks.sha256 LIKE ?", like),
		)
	}

	err := db.Order("solutions.created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&solutions).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return solutions, nil
}

// applySolutionDetails adds subqueries to fetch the like count and liked
// status in a single query.
func (r *solutionRepository) applySolutionDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "solutions.*, " +
		"(SELECT COUNT(*) FROM solution_likes WHERE solution_likes.solution_id = solutions.id) as like_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM solution_likes WHERE solution_likes.solution_id = solutions.id AND solution_likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *solutionRepository) Delete(ctx context.Context, id uint) error {
	var solution models.Solution
	if err := r.db.WithContext(ctx).First(&solution, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Solution", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Solution{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateSolution(ctx, id)
	cache.InvalidateTask(ctx, solution.TaskID)
	return nil
}

func (r *solutionRepository) IncrementViewCount(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Solution{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the (user, solution) like and returns the new liked state
// with the updated count.
func (r *solutionRepository) ToggleLike(ctx context.Context, userID, solutionID uint) (bool, int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SolutionLike{}).
		Where("user_id = ? AND solution_id = ?", userID, solutionID).
		Count(&count).Error; err != nil {
		return false, 0, models.NewInternalError(err)
	}
	liked := count > 0

	if liked {
		if err := r.db.WithContext(ctx).Unscoped().
			Where("user_id = ? AND solution_id = ?", userID, solutionID).
			Delete(&models.SolutionLike{}).Error; err != nil {
			return false, 0, models.NewInternalError(err)
		}
	} else {
		if err := r.db.WithContext(ctx).Exec(
			`INSERT INTO solution_likes (user_id, solution_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (user_id, solution_id) DO NOTHING`,
			userID, solutionID, time.Now(),
		).Error; err != nil {
			return false, 0, models.NewInternalError(err)
		}
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.SolutionLike{}).
		Where("solution_id = ?", solutionID).
		Count(&total).Error; err != nil {
		return false, 0, models.NewInternalError(err)
	}

	cache.InvalidateSolution(ctx, solutionID)
	return !liked, int(total), nil
}
