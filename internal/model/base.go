package model

import "time"

// BaseTime 所有持久化实体共用的时间字段（组合嵌入，不做继承）
type BaseTime struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}
