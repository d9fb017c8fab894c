package models

import "time"

// Transaction ghi lại các giao dịch Midtrans Snap (dịch vụ tư vấn tâm lý)
type Transaction struct {
	TransactionID uint      `gorm:"primaryKey;autoIncrement;column:transaction_id" json:"transaction_id"`
	UserID        uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	OrderID       string    `gorm:"column:order_id;size:100;uniqueIndex;not null" json:"order_id"`
	ItemID        string    `gorm:"column:item_id;size:100;not null" json:"item_id"`
	GrossAmount   int64     `gorm:"column:gross_amount;not null" json:"gross_amount"`
	Status        string    `gorm:"size:50;not null;default:'pending'" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }
