package models

import "time"

// Analysis là kết quả phân loại trạng thái cho một note. uniqueIndex trên
// note_id để upsert ON CONFLICT không bao giờ tạo bản ghi trùng.
type Analysis struct {
	AnalysisID      uint      `gorm:"primaryKey;autoIncrement;column:analysis_id" json:"analysis_id"`
	NoteID          uint      `gorm:"column:note_id;not null;uniqueIndex" json:"note_id"`
	PredictedStatus string    `gorm:"size:50" json:"predicted_status"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Analysis) TableName() string { return "analysis" }
