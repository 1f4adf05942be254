package repository

import (
	"context"
	"errors"

	"samplepedia/internal/models"

	"gorm.io/gorm"
)

// ImageRepository defines storage operations for the sample image gallery.
type ImageRepository interface {
	Create(ctx context.Context, image *models.SampleImage) error
	GetByID(ctx context.Context, id uint) (*models.SampleImage, error)
	List(ctx context.Context) ([]models.SampleImage, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository returns a repository implementation for gallery images.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.SampleImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (*models.SampleImage, error) {
	var image models.SampleImage
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Image", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &image, nil
}

func (r *imageRepository) List(ctx context.Context) ([]models.SampleImage, error) {
	var images []models.SampleImage
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}
