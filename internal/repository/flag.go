package repository

import (
	"context"
	"errors"

	"breakroom/internal/models"

	"gorm.io/gorm"
)

// FlagRepository defines persistence operations for moderation flags.
type FlagRepository interface {
	List(ctx context.Context) ([]models.Flag, error)
	GetByID(ctx context.Context, id uint) (*models.Flag, error)
	Create(ctx context.Context, flag *models.Flag) error
	UpdateStatus(ctx context.Context, id uint, status models.FlagStatus) error
}

type flagRepository struct {
	db *gorm.DB
}

// NewFlagRepository returns a new FlagRepository implementation.
func NewFlagRepository(db *gorm.DB) FlagRepository {
	return &flagRepository{db: db}
}

func (r *flagRepository) List(ctx context.Context) ([]models.Flag, error) {
	var flags []models.Flag
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&flags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return flags, nil
}

func (r *flagRepository) GetByID(ctx context.Context, id uint) (*models.Flag, error) {
	var flag models.Flag
	if err := r.db.WithContext(ctx).First(&flag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Flag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &flag, nil
}

func (r *flagRepository) Create(ctx context.Context, flag *models.Flag) error {
	if flag.Status == "" {
		flag.Status = models.FlagStatusPending
	}
	if err := r.db.WithContext(ctx).Create(flag).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *flagRepository) UpdateStatus(ctx context.Context, id uint, status models.FlagStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Flag{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Flag", id)
	}
	return nil
}
