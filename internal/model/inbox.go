package model

import "time"

// Inbox 时间线项（按 member_id 切分）
type Inbox struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	MemberID string `gorm:"type:varchar(36);index:idx_inbox_member;uniqueIndex:ux_inbox_member_post"`
	PostID   string `gorm:"type:varchar(36);index:idx_inbox_post;uniqueIndex:ux_inbox_member_post"`
	AuthorID string `gorm:"type:varchar(36);not null"`
	// 复合唯一键，避免重复 (member, post)
	// ux_inbox_member_post = (member_id, post_id)
	Score     int64     `gorm:"index:idx_inbox_member_score"`
	CreatedAt time.Time `gorm:"index:idx_inbox_member_score"`
}

func (Inbox) TableName() string { return "inbox" }
