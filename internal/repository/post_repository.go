package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
)

type PostRepository interface {
	FindByID(ctx context.Context, id string) (*model.Post, error)
	ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]model.Post, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Post, error)
	Delete(ctx context.Context, authorID, postID string) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]model.Post, error) {
	var ps []model.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&ps).Error
	return ps, err
}

func (r *postRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ps []model.Post
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ps).Error
	return ps, err
}

func (r *postRepository) Delete(ctx context.Context, authorID, postID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("author_id = ? AND id = ?", authorID, postID).
		Delete(&model.Post{})
	return res.RowsAffected, res.Error
}
