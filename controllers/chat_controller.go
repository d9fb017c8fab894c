package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/ws"
)

type SendMessageInput struct {
	ReceiverID    uint   `json:"receiver_id" binding:"required"`
	Message       string `json:"message"`
	AttachmentURL string `json:"attachment_url"`
}

var errEmptyMessage = errors.New("message or attachment is required")

// SendMessage lưu tin nhắn rồi đẩy realtime tới phòng của người nhận
func SendMessage(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	senderID := c.GetUint("user_id")

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "receiver_id is required"})
		return
	}

	var chat models.Chat
	err := db.Transaction(func(tx *gorm.DB) error {
		var receiver models.User
		if err := tx.Where("user_id = ? AND is_active = ?", input.ReceiverID, true).
			First(&receiver).Error; err != nil {
			return errUserNotFound
		}

		if input.Message == "" && input.AttachmentURL == "" {
			return errEmptyMessage
		}

		chat = models.Chat{
			SenderID:      senderID,
			ReceiverID:    input.ReceiverID,
			Message:       input.Message,
			AttachmentURL: input.AttachmentURL,
		}
		return tx.Create(&chat).Error
	})

	switch {
	case errors.Is(err, errUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Receiver not found"})
		return
	case errors.Is(err, errEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Message or attachment is required"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	ws.NotifyNewMessage(input.ReceiverID, chat)

	c.JSON(http.StatusCreated, gin.H{
		"error":   false,
		"message": "Message sent successfully",
		"chat":    chat,
	})
}

// GetChatsHistory trả về hội thoại hai chiều với một user khác (tối đa 100
// tin, cũ trước) và đánh dấu tin đến là đã đọc.
func GetChatsHistory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	currentUserID := c.GetUint("user_id")
	otherUserID := c.Param("other_user_id")

	var otherUser models.User
	if err := db.Where("user_id = ?", otherUserID).First(&otherUser).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	}

	var messages []models.Chat
	if err := db.
		Preload("Sender", func(db *gorm.DB) *gorm.DB {
			return db.Select("user_id", "name", "profile_photo_url", "email", "credentials_id")
		}).
		Preload("Receiver", func(db *gorm.DB) *gorm.DB {
			return db.Select("user_id", "name", "profile_photo_url", "email", "credentials_id")
		}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			currentUserID, otherUserID, otherUserID, currentUserID).
		Order("created_at ASC").
		Limit(100).
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	if err := db.Model(&models.Chat{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherUserID, currentUserID, false).
		Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":    false,
		"messages": messages,
	})
}

type recentChat struct {
	Partner         gin.H       `json:"partner"`
	LastMessage     models.Chat `json:"last_message"`
	LastMessageTime interface{} `json:"last_message_time"`
	UnreadCount     int64       `json:"unread_count"`
}

// GetRecentChats gom tin nhắn mới nhất theo từng người đã trò chuyện
func GetRecentChats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	currentUserID := c.GetUint("user_id")

	var chats []models.Chat
	if err := db.
		Preload("Sender", func(db *gorm.DB) *gorm.DB {
			return db.Select("user_id", "name", "profile_photo_url", "email", "credentials_id")
		}).
		Preload("Receiver", func(db *gorm.DB) *gorm.DB {
			return db.Select("user_id", "name", "profile_photo_url", "email", "credentials_id")
		}).
		Where("sender_id = ? OR receiver_id = ?", currentUserID, currentUserID).
		Order("created_at DESC").
		Find(&chats).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	// Tin đã sắp theo created_at DESC: lần gặp đầu của mỗi partner chính là
	// tin mới nhất của hội thoại đó.
	seen := map[uint]bool{}
	recentChats := make([]recentChat, 0)
	for _, chat := range chats {
		partnerID := chat.ReceiverID
		partner := chat.Receiver
		if chat.ReceiverID == currentUserID {
			partnerID = chat.SenderID
			partner = chat.Sender
		}
		if seen[partnerID] {
			continue
		}
		seen[partnerID] = true

		var unread int64
		db.Model(&models.Chat{}).
			Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, currentUserID, false).
			Count(&unread)

		partnerInfo := gin.H{"user_id": partnerID}
		if partner != nil {
			partnerInfo = gin.H{
				"user_id":           partner.UserID,
				"name":              partner.Name,
				"profile_photo_url": partner.ProfilePhotoURL,
			}
		}

		recentChats = append(recentChats, recentChat{
			Partner:         partnerInfo,
			LastMessage:     chat,
			LastMessageTime: chat.CreatedAt,
			UnreadCount:     unread,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"error":        false,
		"recent_chats": recentChats,
	})
}
