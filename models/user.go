package models

import "time"

type User struct {
	UserID          uint        `gorm:"primaryKey;autoIncrement;column:user_id" json:"user_id"`
	CredentialsID   uint        `gorm:"column:credentials_id;not null" json:"-"`
	Credentials     *Credential `gorm:"foreignKey:CredentialsID;references:CredentialsID;constraint:OnDelete:CASCADE" json:"-"`
	Email           string      `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Name            string      `gorm:"size:150;not null" json:"name"`
	Birthday        *time.Time  `gorm:"type:date" json:"birthday"`
	ProfilePhotoURL string      `gorm:"column:profile_photo_url" json:"profile_photo_url"`
	IsActive        bool        `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Quan hệ
	Notes        []Note        `gorm:"foreignKey:UserID;references:UserID" json:"-"`
	Psychologist *Psychologist `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

func (User) TableName() string { return "users" }
