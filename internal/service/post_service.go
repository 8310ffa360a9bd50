package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

// FeedItem 时间线条目
type FeedItem struct {
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PostService 帖子服务
// 发布走 outbox：post + outbox 同一事务落地，扇出由 FanoutWorker 异步完成
type PostService struct {
	db           *gorm.DB
	postRepo     repository.PostRepository
	feedRepo     repository.FeedRepository
	memberRepo   repository.MemberRepository
	accessPolicy *AccessPolicy
}

func NewPostService(
	db *gorm.DB,
	postRepo repository.PostRepository,
	feedRepo repository.FeedRepository,
	memberRepo repository.MemberRepository,
	accessPolicy *AccessPolicy,
) *PostService {
	return &PostService{db: db, postRepo: postRepo, feedRepo: feedRepo, memberRepo: memberRepo, accessPolicy: accessPolicy}
}

// Publish 在一个事务内落地 Post 与 Outbox 事件
func (s *PostService) Publish(ctx context.Context, authorID, title, content string) (string, error) {
	postID := uuid.New().String()
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := &model.Post{ID: postID, AuthorID: authorID, Title: title, Content: content,
			BaseTime: model.BaseTime{CreatedAt: now, UpdatedAt: now}}
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		out := &model.Outbox{ID: uuid.New().String(), PostID: postID, AuthorID: authorID, CreatedAt: now, Status: "pending"}
		if err := tx.Create(out).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return postID, nil
}

// Delete 删除帖子，同时从所有时间线里移除
func (s *PostService) Delete(ctx context.Context, authorID, postID string) error {
	rows, err := s.postRepo.Delete(ctx, authorID, postID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFoundPost
	}
	return s.feedRepo.RemovePost(ctx, postID)
}

// GetMemberPosts 会员帖子列表，自查放行，否则走权限裁决
func (s *PostService) GetMemberPosts(ctx context.Context, loginID, memberID string, page, pageSize int) ([]model.Post, error) {
	m, err := s.memberRepo.FindActiveByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundMember
		}
		return nil, err
	}
	if loginID != memberID {
		if err := s.accessPolicy.Check(ctx, loginID, memberID, m.Visibility); err != nil {
			return nil, err
		}
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.postRepo.ListByAuthor(ctx, memberID, (page-1)*pageSize, pageSize)
}

// GetFeed 自己的时间线，inbox 项回表取帖子内容
func (s *PostService) GetFeed(ctx context.Context, loginID string, limit int) ([]FeedItem, error) {
	if limit < 1 {
		limit = 20
	}
	items, err := s.feedRepo.GetTimeline(ctx, loginID, limit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []FeedItem{}, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.PostID
	}
	posts, err := s.postRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	feed := make([]FeedItem, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.PostID]
		if !ok {
			// 帖子已删除但时间线残留，跳过
			continue
		}
		feed = append(feed, FeedItem{
			PostID:    p.ID,
			AuthorID:  p.AuthorID,
			Title:     p.Title,
			Content:   p.Content,
			CreatedAt: p.CreatedAt,
		})
	}
	return feed, nil
}
