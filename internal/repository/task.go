// Package repository provides data access layer implementations for the application.
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

// difficultyRankExpr orders difficulties easy < medium < advanced < expert.
const difficultyRankExpr = "CASE difficulty WHEN 'easy' THEN 1 WHEN 'medium' THEN 2 WHEN 'advanced' THEN 3 WHEN 'expert' THEN 4 ELSE 0 END"

// hasVideoExpr sorts tasks with a walkthrough video ahead of those without.
const hasVideoExpr = "CASE WHEN youtube_id = '' THEN 0 ELSE 1 END"

// TaskFilter narrows and orders the task catalogue listing.
type TaskFilter struct {
	Query       string // sha256 substring match
	Tag         string
	Difficulty  string
	FavoritesOf uint // non-zero: only tasks favorited by this user
	AuthorID    uint // non-zero: only tasks authored by this user
	Sort        string
	Limit       int
	Offset      int
}

// TaskRepository defines the interface for analysis task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *models.AnalysisTask, tags, tools []string, ref *models.Solution) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.AnalysisTask, error)
	ExistsBySHA256(ctx context.Context, sha256 string) (bool, error)
	List(ctx context.Context, f TaskFilter, currentUserID uint) ([]*models.AnalysisTask, error)
	Update(ctx context.Context, task *models.AnalysisTask, tags, tools []string) error
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	IsFavorited(ctx context.Context, userID, taskID uint) (bool, error)
	ToggleFavorite(ctx context.Context, userID, taskID uint) (bool, int, error)
	TagsInUse(ctx context.Context) ([]models.Label, error)
}

// taskRepository implements TaskRepository
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// ensureLabels looks up or creates the label rows for the given names.
// Names must already be normalized (trimmed, lowercase).
func ensureLabels(tx *gorm.DB, names []string) ([]models.Label, error) {
	labels := make([]models.Label, 0, len(names))
	for _, n := range names {
		var l models.Label
		if err := tx.Where(models.Label{Name: n}).FirstOrCreate(&l).Error; err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.AnalysisTask, tags, tools []string, ref *models.Solution) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		tagLabels, err := ensureLabels(tx, tags)
		if err != nil {
			return err
		}
		if err := tx.Model(task).Association("Tags").Replace(tagLabels); err != nil {
			return err
		}

		toolLabels, err := ensureLabels(tx, tools)
		if err != nil {
			return err
		}
		if err := tx.Model(task).Association("Tools").Replace(toolLabels); err != nil {
			return err
		}

		if ref != nil {
			ref.TaskID = task.ID
			if err := tx.Create(ref).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A task with this SHA256 already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.AnalysisTask, error) {
	var task models.AnalysisTask
	key := cache.TaskKey(id)

	fetch := func() error {
		return withTaskDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Author").
			Preload("Tags").
			Preload("Tools").
			Preload("Solutions").
			Preload("Solutions.Author").
			First(&task, id).Error
	}

	var err error
	if currentUserID == 0 {
		// Anonymous detail views share a cache entry; per-user liked state
		// forces a DB read.
		err = cache.Aside(ctx, key, &task, cache.TaskTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Task", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &task, nil
}

func (r *taskRepository) ExistsBySHA256(ctx context.Context, sha256 string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AnalysisTask{}).
		Where("sha256 = ?", strings.ToLower(sha256)).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *taskRepository) List(ctx context.Context, f TaskFilter, currentUserID uint) ([]*models.AnalysisTask, error) {
	var tasks []*models.AnalysisTask

	db := withTaskDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Tags").
		Preload("Tools")

	// Course samples only show on their course page, never in the catalogue.
	db = db.Where("analysis_tasks.id NOT IN (?)",
		r.db.Table("task_course_references").
			Select("task_course_references.analysis_task_id"))

	if f.Query != "" {
		db = db.Where("sha256 LIKE ?", "%"+strings.ToLower(f.Query)+"%")
	}
	if f.Tag != "" {
		db = db.Where("analysis_tasks.id IN (?)",
			r.db.Table("task_tags").
				Select("task_tags.analysis_task_id").
				Joins("JOIN labels ON labels.id = task_tags.label_id").
				Where("labels.name = ?", f.Tag))
	}
	if f.Difficulty != "" {
		db = db.Where("difficulty = ?", f.Difficulty)
	}
	if f.FavoritesOf != 0 {
		db = db.Where("analysis_tasks.id IN (?)",
			r.db.Table("favorites").
				Select("favorites.task_id").
				Where("favorites.user_id = ?", f.FavoritesOf))
	}
	if f.AuthorID != 0 {
		db = db.Where("author_id = ?", f.AuthorID)
	}

	err := r.applySort(db, f.Sort).
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&tasks).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tasks, nil
}

// applySort appends the ORDER BY clause for the requested sort type, always
// followed by id DESC for a stable order. favorite_count is a SELECT alias
// from withTaskDetails.
func (r *taskRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "sha256":
		return db.Order("sha256 ASC, analysis_tasks.id DESC")
	case "-sha256":
		return db.Order("sha256 DESC, analysis_tasks.id DESC")
	case "difficulty":
		return db.Order(difficultyRankExpr + " ASC, analysis_tasks.id DESC")
	case "-difficulty":
		return db.Order(difficultyRankExpr + " DESC, analysis_tasks.id DESC")
	case "goal":
		return db.Order("goal ASC, analysis_tasks.id DESC")
	case "-goal":
		return db.Order("goal DESC, analysis_tasks.id DESC")
	case "video":
		return db.Order(hasVideoExpr + " ASC, analysis_tasks.id DESC")
	case "-video":
		return db.Order(hasVideoExpr + " DESC, analysis_tasks.id DESC")
	case "likes":
		return db.Order("favorite_count ASC, analysis_tasks.id DESC")
	case "-likes":
		return db.Order("favorite_count DESC, analysis_tasks.id DESC")
	case "created":
		return db.Order("analysis_tasks.created_at ASC, analysis_tasks.id DESC")
	case "-created":
		return db.Order("analysis_tasks.created_at DESC, analysis_tasks.id DESC")
	default: // "-id" and anything unrecognized
		return db.Order("analysis_tasks.id DESC")
	}
}

// withTaskDetails adds subqueries to fetch counts and favorite status in a single query.
func withTaskDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "analysis_tasks.*, " +
		"(SELECT COUNT(*) FROM favorites WHERE favorites.task_id = analysis_tasks.id) as favorite_count, " +
		"(SELECT COUNT(*) FROM solutions WHERE solutions.task_id = analysis_tasks.id) as solution_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM favorites WHERE favorites.task_id = analysis_tasks.id AND favorites.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *taskRepository) Update(ctx context.Context, task *models.AnalysisTask, tags, tools []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		tagLabels, err := ensureLabels(tx, tags)
		if err != nil {
			return err
		}
		if err := tx.Model(task).Association("Tags").Replace(tagLabels); err != nil {
			return err
		}

		toolLabels, err := ensureLabels(tx, tools)
		if err != nil {
			return err
		}
		return tx.Model(task).Association("Tools").Replace(toolLabels)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTask(ctx, task.ID)
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.AnalysisTask{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTask(ctx, id)
	return nil
}

func (r *taskRepository) IncrementViewCount(ctx context.Context, id uint) error {
	// Atomic SQL increment, no read-modify-write.
	err := r.db.WithContext(ctx).
		Model(&models.AnalysisTask{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *taskRepository) IsFavorited(ctx context.Context, userID, taskID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// ToggleFavorite flips the (user, task) favorite and returns the new liked
// state with the updated count.
func (r *taskRepository) ToggleFavorite(ctx context.Context, userID, taskID uint) (bool, int, error) {
	favorited, err := r.IsFavorited(ctx, userID, taskID)
	if err != nil {
		return false, 0, err
	}

	if favorited {
		// Hard delete the favorite record (not soft delete)
		if err := r.db.WithContext(ctx).Unscoped().
			Where("user_id = ? AND task_id = ?", userID, taskID).
			Delete(&models.Favorite{}).Error; err != nil {
			return false, 0, models.NewInternalError(err)
		}
	} else {
		// INSERT ... ON CONFLICT DO NOTHING is atomic and tolerates races
		if err := r.db.WithContext(ctx).Exec(
			`INSERT INTO favorites (user_id, task_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (user_id, task_id) DO NOTHING`,
			userID, taskID, time.Now(),
		).Error; err != nil {
			return false, 0, models.NewInternalError(err)
		}
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("task_id = ?", taskID).
		Count(&count).Error; err != nil {
		return false, 0, models.NewInternalError(err)
	}

	cache.InvalidateTask(ctx, taskID)
	return !favorited, int(count), nil
}

func (r *taskRepository) TagsInUse(ctx context.Context) ([]models.Label, error) {
	var labels []models.Label
	err := r.db.WithContext(ctx).
		Model(&models.Label{}).
		Where("labels.id IN (?)", r.db.Table("task_tags").Select("task_tags.label_id")).
		Order("labels.name ASC").
		Find(&labels).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return labels, nil
}
