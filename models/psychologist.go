package models

import "time"

type Psychologist struct {
	PsychologistID uint      `gorm:"primaryKey;autoIncrement;column:psychologist_id" json:"psychologist_id"`
	UserID         uint      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	PrefixTitle    string    `gorm:"size:50" json:"prefix_title"`
	SuffixTitle    string    `gorm:"size:50" json:"suffix_title"`
	Certificate    string    `gorm:"type:text" json:"certificate"`
	Price          string    `gorm:"size:50" json:"price"`
	IsVerified     bool      `gorm:"not null;default:false" json:"isVerified"`
	IsOnline       bool      `gorm:"not null;default:false" json:"isOnline"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Psychologist) TableName() string { return "psychologist" }
