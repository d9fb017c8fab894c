package models

import "time"

// UserSession giữ đúng một phiên đăng nhập cho mỗi user: login mới sẽ upsert
// theo user_id nên token cũ tự mất hiệu lực.
type UserSession struct {
	SessionID    uint      `gorm:"primaryKey;autoIncrement;column:session_id" json:"session_id"`
	UserID       uint      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	SessionToken string    `gorm:"size:512;not null;index" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserSession) TableName() string { return "user_sessions" }
