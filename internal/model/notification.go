package model

// NotificationType 通知类型
type NotificationType string

const (
	NotificationFollow NotificationType = "FOLLOW"
)

// Notification 站内通知（member 为接收方）
type Notification struct {
	ID       string           `gorm:"primaryKey;type:varchar(36)"`
	MemberID string           `gorm:"type:varchar(36);not null;index:idx_notification_member"`
	ActorID  string           `gorm:"type:varchar(36);not null"`
	Type     NotificationType `gorm:"type:varchar(20);not null"`
	Read     bool             `gorm:"not null;default:false"`
	BaseTime
}

func (Notification) TableName() string { return "notifications" }
