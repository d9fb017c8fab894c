package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/services"
)

type CreateNoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Emotion string `json:"emotion" binding:"required"`
}

// Update là partial: field rỗng coi như không gửi, giữ giá trị cũ
type UpdateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Emotion string `json:"emotion"`
}

var (
	errUserNotFound   = errors.New("user not found")
	errNoteNotFound   = errors.New("note not found")
	errDailyNoteTaken = errors.New("note already exists for today")
)

// noteView là note kèm kết quả phân tích phẳng (null khi chưa phân tích)
type noteView struct {
	models.Note
	PredictedStatus *string  `json:"predicted_status"`
	ConfidenceScore *float64 `json:"confidence_score"`
}

func newNoteView(note models.Note) noteView {
	view := noteView{Note: note}
	if note.Analysis != nil {
		view.PredictedStatus = &note.Analysis.PredictedStatus
		view.ConfidenceScore = &note.Analysis.ConfidenceScore
	}
	view.Note.Analysis = nil
	return view
}

// Tạo nhật ký: mỗi user một note active mỗi ngày (theo WIB), kiểm tra và
// insert trong cùng một transaction.
func CreateNote(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetUint("user_id")

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "All fields are required"})
		return
	}

	var note models.Note
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("user_id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUserNotFound
			}
			return err
		}

		start, end := services.TodayWindow()
		var count int64
		if err := tx.Model(&models.Note{}).
			Where("user_id = ? AND is_active = ? AND created_at >= ? AND created_at < ?",
				userID, true, start, end).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDailyNoteTaken
		}

		note = models.Note{
			UserID:            userID,
			Title:             req.Title,
			Content:           req.Content,
			ContentNormalized: services.NormalizeContent(req.Content),
			Emotion:           req.Emotion,
			IsActive:          true,
		}
		return tx.Create(&note).Error
	})

	switch {
	case errors.Is(err, errUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	case errors.Is(err, errDailyNoteTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "You have already written a note for today"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"error":   false,
		"message": "Note created successfully",
		"note":    note,
	})
}

func GetAllNotes(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetUint("user_id")

	var user models.User
	if err := db.Where("user_id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	}

	var notes []models.Note
	if err := db.
		Preload("Analysis").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	listNote := make([]noteView, 0, len(notes))
	for _, note := range notes {
		listNote = append(listNote, newNoteView(note))
	}

	c.JSON(http.StatusOK, gin.H{
		"error":    false,
		"message":  "Notes retrieved successfully",
		"listNote": listNote,
	})
}

func GetNoteById(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")
	userID := c.GetUint("user_id")

	var note models.Note
	if err := db.
		Preload("Analysis").
		Where("note_id = ? AND user_id = ? AND is_active = ?", id, userID, true).
		First(&note).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Note not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Note retrieved successfully",
		"note":    newNoteView(note),
	})
}

// Cập nhật nhật ký. Chỉ sau khi transaction commit, và chỉ khi content đổi
// giá trị, mới kích hoạt phân tích trên goroutine riêng — response không
// chờ và không phụ thuộc kết quả phân tích.
func UpdateNote(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")
	userID := c.GetUint("user_id")

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	var note models.Note
	var prevContent string

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ? AND user_id = ? AND is_active = ?", id, userID, true).
			First(&note).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNoteNotFound
			}
			return err
		}

		prevContent = note.Content

		updates := map[string]interface{}{}
		if req.Title != "" {
			updates["title"] = req.Title
		}
		if req.Content != "" {
			updates["content"] = req.Content
			updates["content_normalized"] = services.NormalizeContent(req.Content)
		}
		if req.Emotion != "" {
			updates["emotion"] = req.Emotion
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&note).Updates(updates).Error
	})

	switch {
	case errors.Is(err, errNoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Note not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	if note.Content != prevContent {
		go services.AnalyzeTodayNote(db, userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Note updated successfully",
		"note":    note,
	})
}

// Soft delete: chỉ hạ cờ is_active, bản ghi và analysis của nó vẫn còn
func DeleteNote(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")
	userID := c.GetUint("user_id")

	err := db.Transaction(func(tx *gorm.DB) error {
		var note models.Note
		if err := tx.Where("note_id = ? AND user_id = ? AND is_active = ?", id, userID, true).
			First(&note).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNoteNotFound
			}
			return err
		}
		return tx.Model(&note).Update("is_active", false).Error
	})

	switch {
	case errors.Is(err, errNoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Note not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Note deleted successfully",
	})
}
