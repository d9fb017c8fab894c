package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/mentalq/mentalq-backend/controllers"
	"github.com/mentalq/mentalq-backend/models"
)

func TestSendMessage(t *testing.T) {
	r := setupTestEnv(t)
	_, senderToken := createTestUser(t, "chat-sender@test.com")
	receiver, _ := createTestUser(t, "chat-receiver@test.com")

	w := doJSON(t, r, http.MethodPost, "/api/chats", senderToken,
		controllers.SendMessageInput{ReceiverID: receiver.UserID, Message: "chào bạn"})
	if w.Code != http.StatusCreated {
		t.Fatalf("gửi tin: muốn 201, nhận %d body=%s", w.Code, w.Body.String())
	}

	var chat models.Chat
	if err := testDB.Where("receiver_id = ?", receiver.UserID).First(&chat).Error; err != nil {
		t.Fatalf("tin nhắn không được lưu: %v", err)
	}
	if chat.Message != "chào bạn" || chat.IsRead {
		t.Errorf("tin nhắn sai: %+v", chat)
	}
}

func TestSendMessageValidation(t *testing.T) {
	r := setupTestEnv(t)
	_, token := createTestUser(t, "chat-val@test.com")
	receiver, _ := createTestUser(t, "chat-val2@test.com")

	// Thiếu cả message lẫn attachment
	w := doJSON(t, r, http.MethodPost, "/api/chats", token,
		controllers.SendMessageInput{ReceiverID: receiver.UserID})
	if w.Code != http.StatusBadRequest {
		t.Errorf("tin rỗng: muốn 400, nhận %d", w.Code)
	}

	// Người nhận không tồn tại
	w = doJSON(t, r, http.MethodPost, "/api/chats", token,
		controllers.SendMessageInput{ReceiverID: 9999, Message: "hello"})
	if w.Code != http.StatusNotFound {
		t.Errorf("người nhận không tồn tại: muốn 404, nhận %d", w.Code)
	}
}

func TestGetChatsHistoryMarksRead(t *testing.T) {
	r := setupTestEnv(t)
	alice, aliceToken := createTestUser(t, "chat-alice@test.com")
	bob, bobToken := createTestUser(t, "chat-bob@test.com")

	doJSON(t, r, http.MethodPost, "/api/chats", aliceToken,
		controllers.SendMessageInput{ReceiverID: bob.UserID, Message: "tin 1"})
	doJSON(t, r, http.MethodPost, "/api/chats", bobToken,
		controllers.SendMessageInput{ReceiverID: alice.UserID, Message: "tin 2"})
	doJSON(t, r, http.MethodPost, "/api/chats", aliceToken,
		controllers.SendMessageInput{ReceiverID: bob.UserID, Message: "tin 3"})

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/chats/%d", bob.UserID), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: muốn 200, nhận %d", w.Code)
	}

	var resp struct {
		Messages []models.Chat `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 3 {
		t.Fatalf("muốn 3 tin, nhận %d", len(resp.Messages))
	}
	// Cũ trước, mới sau
	if resp.Messages[0].Message != "tin 1" || resp.Messages[2].Message != "tin 3" {
		t.Errorf("thứ tự sai: %+v", resp.Messages)
	}

	// Xem hội thoại xong tin đến được đánh dấu đã đọc
	var unread int64
	testDB.Model(&models.Chat{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", bob.UserID, alice.UserID, false).
		Count(&unread)
	if unread != 0 {
		t.Errorf("tin từ bob phải được đánh dấu đã đọc, còn %d chưa đọc", unread)
	}
}

func TestGetRecentChats(t *testing.T) {
	r := setupTestEnv(t)
	alice, aliceToken := createTestUser(t, "recent-alice@test.com")
	bob, bobToken := createTestUser(t, "recent-bob@test.com")
	carol, carolToken := createTestUser(t, "recent-carol@test.com")

	doJSON(t, r, http.MethodPost, "/api/chats", bobToken,
		controllers.SendMessageInput{ReceiverID: alice.UserID, Message: "từ bob 1"})
	doJSON(t, r, http.MethodPost, "/api/chats", bobToken,
		controllers.SendMessageInput{ReceiverID: alice.UserID, Message: "từ bob 2"})
	doJSON(t, r, http.MethodPost, "/api/chats", carolToken,
		controllers.SendMessageInput{ReceiverID: alice.UserID, Message: "từ carol"})

	w := doJSON(t, r, http.MethodGet, "/api/chats", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("recent: muốn 200, nhận %d", w.Code)
	}

	var resp struct {
		RecentChats []struct {
			Partner struct {
				UserID uint `json:"user_id"`
			} `json:"partner"`
			LastMessage models.Chat `json:"last_message"`
			UnreadCount int64       `json:"unread_count"`
		} `json:"recent_chats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.RecentChats) != 2 {
		t.Fatalf("muốn 2 hội thoại, nhận %d", len(resp.RecentChats))
	}

	for _, rc := range resp.RecentChats {
		switch rc.Partner.UserID {
		case bob.UserID:
			if rc.LastMessage.Message != "từ bob 2" {
				t.Errorf("last_message của bob sai: %q", rc.LastMessage.Message)
			}
			if rc.UnreadCount != 2 {
				t.Errorf("unread của bob = %d, muốn 2", rc.UnreadCount)
			}
		case carol.UserID:
			if rc.UnreadCount != 1 {
				t.Errorf("unread của carol = %d, muốn 1", rc.UnreadCount)
			}
		default:
			t.Errorf("partner lạ: %d", rc.Partner.UserID)
		}
	}
}
