package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mentalq/mentalq-backend/config"
	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // chỉ để phát triển, nên giới hạn ở production
	},
}

// gửi message dạng JSON qua WebSocket
func sendJSON(conn *websocket.Conn, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("Lỗi JSON marshal:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("Lỗi gửi message:", err)
	}
}

// Event client gửi lên qua websocket chat
type chatEvent struct {
	Type       string `json:"type"` // chat_message | typing
	ReceiverID uint   `json:"receiver_id"`
	Message    string `json:"message"`
}

// WebSocket chat giữa user và chuyên gia tâm lý
func HandleChatWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Token missing"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Invalid or expired token"})
		return
	}

	userID := claims.UserID
	log.Printf("Chat WS connected: userID=%d\n", userID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}
	H.RegisterUser(userID, conn)
	defer H.UnregisterUser(userID, conn)

	sendJSON(conn, gin.H{"type": "connected", "message": "Connected to chat"})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var event chatEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Println("Lỗi đọc event chat:", err)
			continue
		}

		switch event.Type {
		case "chat_message":
			if event.ReceiverID == 0 || event.Message == "" {
				continue
			}
			chat := models.Chat{
				SenderID:   userID,
				ReceiverID: event.ReceiverID,
				Message:    event.Message,
			}
			if err := config.DB.Create(&chat).Error; err != nil {
				log.Println("Lỗi lưu tin nhắn ws:", err)
				continue
			}
			NotifyNewMessage(event.ReceiverID, chat)

		case "typing":
			if event.ReceiverID != 0 {
				NotifyTyping(event.ReceiverID, userID)
			}
		}
	}

	log.Printf("Chat WS disconnected: userID=%d\n", userID)
	conn.Close()
}
