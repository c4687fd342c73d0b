package repository

import (
	"context"

	"breakroom/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for post likes.
type LikeRepository interface {
	List(ctx context.Context) ([]models.Like, error)
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, userID, postID uint) error
}

// BookmarkRepository defines persistence operations for post bookmarks.
type BookmarkRepository interface {
	List(ctx context.Context) ([]models.Bookmark, error)
	Create(ctx context.Context, bookmark *models.Bookmark) error
	Delete(ctx context.Context, userID, postID uint) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) List(ctx context.Context) ([]models.Like, error) {
	var likes []models.Like
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Post already liked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository returns a new BookmarkRepository implementation.
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) List(ctx context.Context) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&bookmarks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bookmarks, nil
}

func (r *bookmarkRepository) Create(ctx context.Context, bookmark *models.Bookmark) error {
	if err := r.db.WithContext(ctx).Create(bookmark).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Post already bookmarked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Bookmark{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
