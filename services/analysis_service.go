package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentalq/mentalq-backend/models"
)

// Ranh giới ngày của nhật ký cố định theo WIB (UTC+7), không theo TZ server
var WIB = time.FixedZone("WIB", 7*60*60)

// TodayWindow trả về [00:00, +24h) của ngày hiện tại theo WIB
func TodayWindow() (time.Time, time.Time) {
	now := time.Now().In(WIB)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, WIB)
	return start, start.Add(24 * time.Hour)
}

// AnalyzeTodayNote chạy sau khi transaction cập nhật note đã commit, trên
// goroutine riêng: lấy note mới nhất trong ngày, gọi model phân loại và
// upsert kết quả. Mọi lỗi chỉ được log, không bao giờ chạm tới response
// của request đã kích hoạt nó.
func AnalyzeTodayNote(db *gorm.DB, userID uint) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("analysis: panic khi phân tích note của user %d: %v", userID, r)
		}
	}()

	start, end := TodayWindow()

	var note models.Note
	err := db.Where("user_id = ? AND is_active = ? AND updated_at >= ? AND updated_at < ?",
		userID, true, start, end).
		Order("updated_at DESC").
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("analysis: user %d không có note nào trong ngày, bỏ qua", userID)
		} else {
			log.Printf("analysis: lỗi truy vấn note của user %d: %v", userID, err)
		}
		return
	}

	text := note.ContentNormalized
	if text == "" {
		text = note.Content
	}

	results, err := ClassifyStatements([]string{text})
	if err != nil {
		log.Printf("analysis: lỗi phân loại note %d: %v", note.NoteID, err)
		return
	}

	result := results[0]
	confidence := 0.0
	for _, score := range result.ConfidenceScores {
		if score > confidence {
			confidence = score
		}
	}

	// Upsert nguyên tử theo note_id: lần đầu insert, các lần sau update tại
	// chỗ, không bao giờ sinh hai bản ghi cho một note.
	analysis := models.Analysis{
		NoteID:          note.NoteID,
		PredictedStatus: result.PredictedStatus,
		ConfidenceScore: confidence,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "note_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"predicted_status", "confidence_score", "updated_at"}),
	}).Create(&analysis).Error
	if err != nil {
		log.Printf("analysis: lỗi lưu kết quả cho note %d: %v", note.NoteID, err)
		return
	}

	log.Printf("analysis: note %d -> %s (%.2f)", note.NoteID, result.PredictedStatus, confidence)
}
