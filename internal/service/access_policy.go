package service

import (
	"context"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

// Decision 访问裁决结果
type Decision int

const (
	Allow Decision = iota
	DenyBlocked
	DenyPrivate
	DenyFollowerOnly
)

// Err 把拒绝原因映射为对应哨兵错误，Allow 返回 nil
func (d Decision) Err() error {
	switch d {
	case DenyBlocked:
		return ErrBlockedMember
	case DenyPrivate:
		return ErrVisibilityPrivate
	case DenyFollowerOnly:
		return ErrVisibilityFollowerOnly
	default:
		return nil
	}
}

// AccessPolicy 可见范围 + 拉黑的统一裁决
//
// 判定顺序（短路）：
//  1. 任一方向存在拉黑 -> DenyBlocked（优先于可见范围，PUBLIC 也拒）
//  2. PRIVATE -> DenyPrivate（粉丝也不放行）
//  3. FOLLOWER_ONLY -> viewer 已关注 target 才 Allow
//  4. PUBLIC -> Allow
//
// viewerID 为空串表示匿名。viewer == target 的自查由调用方在进入本函数
// 之前自行放行，这里不做判断。
type AccessPolicy struct {
	followRepo repository.FollowRepository
	relation   *BlockFollowRelation
}

func NewAccessPolicy(followRepo repository.FollowRepository, relation *BlockFollowRelation) *AccessPolicy {
	return &AccessPolicy{followRepo: followRepo, relation: relation}
}

func (p *AccessPolicy) CheckAccess(ctx context.Context, viewerID, targetID string, visibility model.Visibility) (Decision, error) {
	if viewerID != "" {
		blocked, err := p.relation.IsBlockedEitherWay(ctx, viewerID, targetID)
		if err != nil {
			return Allow, err
		}
		if blocked {
			return DenyBlocked, nil
		}
	}

	if visibility == model.VisibilityPrivate {
		return DenyPrivate, nil
	}

	if visibility == model.VisibilityFollowerOnly {
		if viewerID == "" {
			return DenyFollowerOnly, nil
		}
		following, err := p.followRepo.Exists(ctx, viewerID, targetID)
		if err != nil {
			return Allow, err
		}
		if !following {
			return DenyFollowerOnly, nil
		}
	}

	return Allow, nil
}

// Check 裁决后直接返回哨兵错误，Allow 返回 nil
func (p *AccessPolicy) Check(ctx context.Context, viewerID, targetID string, visibility model.Visibility) error {
	d, err := p.CheckAccess(ctx, viewerID, targetID, visibility)
	if err != nil {
		return err
	}
	return d.Err()
}
