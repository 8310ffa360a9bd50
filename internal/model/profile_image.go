package model

// ProfileImage 头像
// 不变式：每个会员同一时刻最多一张 represent=true（部分唯一索引兜底）
type ProfileImage struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	MemberID   string `gorm:"type:varchar(36);not null;index:idx_profile_image_member;uniqueIndex:ux_profile_image_represent,where:represent"`
	ImageURL   string `gorm:"type:varchar(300);not null"`
	OriginName string `gorm:"type:varchar(100);not null"`
	FileName   string `gorm:"type:varchar(100);not null"`
	Represent  bool   `gorm:"not null;default:false"`
	BaseTime
}

func (ProfileImage) TableName() string { return "profile_images" }
