package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentalq/mentalq-backend/models"
)

// GetAnalysis trả về mọi kết quả phân tích của các note đang active
func GetAnalysis(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetUint("user_id")

	var notes []models.Note
	if err := db.
		Preload("Analysis").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	listAnalysis := make([]models.Analysis, 0, len(notes))
	for _, note := range notes {
		if note.Analysis != nil {
			listAnalysis = append(listAnalysis, *note.Analysis)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"error":        false,
		"message":      "Analyses retrieved successfully",
		"listAnalysis": listAnalysis,
	})
}
