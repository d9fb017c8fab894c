package models

import "time"

type CredentialRole string

const (
	RoleUser         CredentialRole = "user"         // Người dùng viết nhật ký
	RolePsychologist CredentialRole = "psychologist" // Chuyên gia tâm lý
)

type Credential struct {
	CredentialsID            uint           `gorm:"primaryKey;autoIncrement;column:credentials_id" json:"credentials_id"`
	Email                    string         `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password                 string         `gorm:"type:text" json:"-"`
	FirebaseUID              *string        `gorm:"column:firebase_uid;size:150;uniqueIndex" json:"-"`
	EmailVerificationToken   string         `gorm:"size:64" json:"-"`
	EmailVerificationExpires *time.Time     `json:"-"`
	IsEmailVerified          bool           `gorm:"not null;default:false" json:"is_email_verified"`
	Role                     CredentialRole `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt                time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Credential) TableName() string { return "credentials" }
