package model

// Block 拉黑关系（blocker 拉黑 blocked）
// 只能被显式解除，follow/unfollow 绝不级联到这里
type Block struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	BlockerID string `gorm:"type:varchar(36);index:idx_block_blocker;index:idx_block_pair,unique;not null"`
	BlockedID string `gorm:"type:varchar(36);not null;index:idx_block_blocked;index:idx_block_pair,unique"`
	// idx_block_pair = (blocker_id, blocked_id)
	BaseTime
}

func (Block) TableName() string { return "blocks" }
