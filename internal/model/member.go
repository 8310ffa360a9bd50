package model

import "time"

// Visibility 资料公开范围
type Visibility string

const (
	VisibilityPublic       Visibility = "PUBLIC"
	VisibilityFollowerOnly Visibility = "FOLLOWER_ONLY"
	VisibilityPrivate      Visibility = "PRIVATE"
)

// Activation 会员生命周期状态
type Activation string

const (
	ActivationActive         Activation = "ACTIVE"
	ActivationSuspended      Activation = "SUSPENDED"
	ActivationWaitingDeleted Activation = "WAITING_DELETED"
	ActivationDeleted        Activation = "DELETED"
)

// Role 会员权限（注册后 GUEST，邮箱验证通过后 MEMBER）
type Role string

const (
	RoleGuest  Role = "GUEST"
	RoleMember Role = "MEMBER"
)

// Member 会员
// 正常流程不做物理删除：注销 = WAITING_DELETED + deleted_at
type Member struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	Name          string `gorm:"type:varchar(50);not null"`
	Password      string `gorm:"not null"`
	Nickname      string `gorm:"type:varchar(30);not null;uniqueIndex:ux_member_nickname"`
	Email         string `gorm:"type:varchar(50);not null;uniqueIndex:ux_member_email"`
	Birth         time.Time
	Gender        string     `gorm:"type:varchar(20)"`
	Role          Role       `gorm:"type:varchar(20);not null;default:GUEST"`
	Activation    Activation `gorm:"type:varchar(20);not null;default:ACTIVE;index:idx_member_activation"`
	Visibility    Visibility `gorm:"type:varchar(20);not null;default:PUBLIC"`
	LastStoppedAt *time.Time
	StoppedCount  int `gorm:"not null;default:0"`
	DeletedAt     *time.Time
	BaseTime
}

func (Member) TableName() string { return "members" }

// MarkDeleted 进入注销等待状态
func (m *Member) MarkDeleted(now time.Time) {
	m.Activation = ActivationWaitingDeleted
	m.DeletedAt = &now
}

// CancelDelete 取消注销，恢复活跃
func (m *Member) CancelDelete() {
	m.Activation = ActivationActive
	m.DeletedAt = nil
}

// Suspend 停权，记录时间与次数
func (m *Member) Suspend(now time.Time) {
	m.Activation = ActivationSuspended
	m.LastStoppedAt = &now
	m.StoppedCount++
}
