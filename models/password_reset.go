package models

import "time"

// PasswordReset lưu OTP 6 chữ số cho luồng quên mật khẩu
type PasswordReset struct {
	ResetTokenID uint      `gorm:"primaryKey;autoIncrement;column:reset_token_id" json:"reset_token_id"`
	UserID       uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Token        string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	Used         bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PasswordReset) TableName() string { return "password_reset_tokens" }
