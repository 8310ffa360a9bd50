package model

// Post 帖子
type Post struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	AuthorID string `gorm:"type:varchar(36);not null;index:idx_post_author"`
	Title    string `gorm:"type:varchar(100);not null"`
	Content  string `gorm:"type:text"`
	BaseTime
}

func (Post) TableName() string { return "posts" }
