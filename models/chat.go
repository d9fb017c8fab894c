package models

import "time"

type Chat struct {
	ChatID        uint      `gorm:"primaryKey;autoIncrement;column:chat_id" json:"chat_id"`
	SenderID      uint      `gorm:"column:sender_id;not null;index" json:"sender_id"`
	Sender        *User     `gorm:"foreignKey:SenderID;references:UserID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	ReceiverID    uint      `gorm:"column:receiver_id;not null;index" json:"receiver_id"`
	Receiver      *User     `gorm:"foreignKey:ReceiverID;references:UserID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
	Message       string    `gorm:"type:text" json:"message"`
	AttachmentURL string    `gorm:"column:attachment_url" json:"attachment_url"`
	IsRead        bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Chat) TableName() string { return "chats" }
