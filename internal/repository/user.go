// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"samplepedia/internal/cache"
	"samplepedia/internal/models"

	"gorm.io/gorm"
)

// difficultyPointsExpr converts a task's difficulty into its score multiplier.
const difficultyPointsExpr = "CASE analysis_tasks.difficulty WHEN 'easy' THEN 10 WHEN 'medium' THEN 20 WHEN 'advanced' THEN 40 WHEN 'expert' THEN 80 ELSE 1 END"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Score(ctx context.Context, userID uint) (int, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Score sums each favorite on the user's tasks and each like on the user's
// solutions, weighted by the task's difficulty points.
func (r *userRepository) Score(ctx context.Context, userID uint) (int, error) {
	var score int

	err := cache.Aside(ctx, cache.UserScoreKey(userID), &score, cache.UserScoreTTL, func() error {
		var taskPoints, solutionPoints int64

		err := r.db.WithContext(ctx).Raw(
			`SELECT COALESCE(SUM(`+difficultyPointsExpr+`), 0)
			 FROM favorites
			 JOIN analysis_tasks ON analysis_tasks.id = favorites.task_id
			 WHERE analysis_tasks.author_id = ? AND analysis_tasks.deleted_at IS NULL`,
			userID,
		).Scan(&taskPoints).Error
		if err != nil {
			return models.NewInternalError(err)
		}

		err = r.db.WithContext(ctx).Raw(
			`SELECT COALESCE(SUM(`+difficultyPointsExpr+`), 0)
			 FROM solution_likes
			 JOIN solutions ON solutions.id = solution_likes.solution_id
			 JOIN analysis_tasks ON analysis_tasks.id = solutions.task_id
			 WHERE solutions.author_id = ? AND analysis_tasks.deleted_at IS NULL`,
			userID,
		).Scan(&solutionPoints).Error
		if err != nil {
			return models.NewInternalError(err)
		}

		score = int(taskPoints + solutionPoints)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}
