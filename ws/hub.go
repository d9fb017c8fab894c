package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mentalq/mentalq-backend/models"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub giữ các kết nối chat theo từng user_id (một user có thể mở nhiều
// thiết bị cùng lúc trong một phiên).
type Hub struct {
	Users map[uint]map[*websocket.Conn]*Client
	Mutex sync.RWMutex
}

var H = Hub{
	Users: make(map[uint]map[*websocket.Conn]*Client),
}

// Register kết nối mới cho một user
func (h *Hub) RegisterUser(userID uint, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Users[userID]; !ok {
		h.Users[userID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Users[userID][conn] = client

	go client.writePump()
}

// Unregister kết nối của user
func (h *Hub) UnregisterUser(userID uint, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Users[userID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Users, userID)
		}
	}
}

// SendToUser đẩy data tới mọi kết nối của một user
func (h *Hub) SendToUser(userID uint, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Users[userID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Write pump của một kết nối. Nhận thẳng *Client thay vì tra lại trong hub:
// unregister có thể thắng cuộc đua trước khi pump kịp chạy.
func (client *Client) writePump() {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// NotifyNewMessage gửi event new_message tới người nhận
func NotifyNewMessage(receiverID uint, chat models.Chat) {
	payload := map[string]interface{}{
		"type": "new_message",
		"chat": chat,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.SendToUser(receiverID, data)
}

// NotifyTyping gửi event user_typing tới người nhận
func NotifyTyping(receiverID, senderID uint) {
	payload := map[string]interface{}{
		"type":      "user_typing",
		"sender_id": senderID,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.SendToUser(receiverID, data)
}
