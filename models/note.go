package models

import "time"

// Note là nhật ký trong ngày của user. Mỗi user chỉ có một note active cho
// mỗi ngày (theo múi giờ WIB), kiểm tra khi tạo. Xoá là soft delete.
type Note struct {
	NoteID            uint      `gorm:"primaryKey;autoIncrement;column:note_id" json:"note_id"`
	UserID            uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	User              *User     `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title             string    `gorm:"size:255" json:"title"`
	Content           string    `gorm:"type:text" json:"content"`
	ContentNormalized string    `gorm:"type:text;column:content_normalized" json:"content_normalized"`
	Emotion           string    `gorm:"size:50" json:"emotion"`
	IsActive          bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Analysis *Analysis `gorm:"foreignKey:NoteID;references:NoteID" json:"analysis,omitempty"`
}

func (Note) TableName() string { return "notes" }
