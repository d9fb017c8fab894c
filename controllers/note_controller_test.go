package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mentalq/mentalq-backend/controllers"
	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/services"
)

func TestCreateNoteDailyLimit(t *testing.T) {
	r := setupTestEnv(t)
	_, token := createTestUser(t, "note-daily@test.com")

	body := controllers.CreateNoteRequest{Title: "Hôm nay", Content: "Tôi thấy ổn", Emotion: "calm"}
	w := doJSON(t, r, http.MethodPost, "/api/notes", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("tạo note lần đầu: muốn 201, nhận %d body=%s", w.Code, w.Body.String())
	}

	resp := decodeBody(t, w)
	if resp["error"] != false {
		t.Errorf("body error phải là false: %v", resp)
	}

	// Lần hai trong cùng ngày phải bị chặn
	w = doJSON(t, r, http.MethodPost, "/api/notes", token, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("note thứ hai trong ngày: muốn 400, nhận %d", w.Code)
	}
	resp = decodeBody(t, w)
	if resp["message"] != "You have already written a note for today" {
		t.Errorf("message sai: %v", resp["message"])
	}

	var count int64
	testDB.Model(&models.Note{}).Count(&count)
	if count != 1 {
		t.Errorf("DB phải chỉ có 1 note, có %d", count)
	}
}

func TestCreateNoteMissingFields(t *testing.T) {
	r := setupTestEnv(t)
	_, token := createTestUser(t, "note-missing@test.com")

	w := doJSON(t, r, http.MethodPost, "/api/notes", token, map[string]string{"title": "chỉ có title"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("thiếu content/emotion: muốn 400, nhận %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["message"] != "All fields are required" {
		t.Errorf("message sai: %v", resp["message"])
	}
}

func TestCreateNoteRequiresAuth(t *testing.T) {
	r := setupTestEnv(t)

	w := doJSON(t, r, http.MethodPost, "/api/notes",
		"", controllers.CreateNoteRequest{Title: "a", Content: "b", Emotion: "c"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("không token: muốn 401, nhận %d", w.Code)
	}
}

func TestCreateNoteStoresNormalizedContent(t *testing.T) {
	r := setupTestEnv(t)
	user, token := createTestUser(t, "note-norm@test.com")

	content := "Hôm nay MỆT quá!!! xem https://example.com/abc ### rồi ngủ"
	w := doJSON(t, r, http.MethodPost, "/api/notes", token,
		controllers.CreateNoteRequest{Title: "t", Content: content, Emotion: "tired"})
	if w.Code != http.StatusCreated {
		t.Fatalf("muốn 201, nhận %d", w.Code)
	}

	var note models.Note
	if err := testDB.Where("user_id = ?", user.UserID).First(&note).Error; err != nil {
		t.Fatalf("không đọc được note: %v", err)
	}
	want := services.NormalizeContent(content)
	if note.ContentNormalized != want {
		t.Errorf("content_normalized = %q, muốn %q", note.ContentNormalized, want)
	}
	if note.Content != content {
		t.Errorf("content gốc phải giữ nguyên, nhận %q", note.Content)
	}
}

func TestGetAllNotesOrderingAndAnalysis(t *testing.T) {
	r := setupTestEnv(t)
	user, token := createTestUser(t, "note-list@test.com")

	now := time.Now().In(services.WIB)
	older := models.Note{
		UserID: user.UserID, Title: "hôm qua", Content: "buồn", Emotion: "sad",
		IsActive: true, CreatedAt: now.Add(-24 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour),
	}
	newer := models.Note{
		UserID: user.UserID, Title: "hôm nay", Content: "vui", Emotion: "happy",
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := testDB.Create(&older).Error; err != nil {
		t.Fatalf("seed note: %v", err)
	}
	if err := testDB.Create(&newer).Error; err != nil {
		t.Fatalf("seed note: %v", err)
	}
	analysis := models.Analysis{NoteID: older.NoteID, PredictedStatus: "Depression", ConfidenceScore: 0.91}
	if err := testDB.Create(&analysis).Error; err != nil {
		t.Fatalf("seed analysis: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/notes", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("muốn 200, nhận %d", w.Code)
	}

	var resp struct {
		ListNote []struct {
			NoteID          uint     `json:"note_id"`
			Title           string   `json:"title"`
			PredictedStatus *string  `json:"predicted_status"`
			ConfidenceScore *float64 `json:"confidence_score"`
		} `json:"listNote"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.ListNote) != 2 {
		t.Fatalf("muốn 2 note, nhận %d", len(resp.ListNote))
	}
	// Sắp xếp created_at tăng dần: note cũ đứng trước
	if resp.ListNote[0].NoteID != older.NoteID || resp.ListNote[1].NoteID != newer.NoteID {
		t.Errorf("thứ tự sai: %+v", resp.ListNote)
	}
	if resp.ListNote[0].PredictedStatus == nil || *resp.ListNote[0].PredictedStatus != "Depression" {
		t.Errorf("note đã phân tích phải có predicted_status, nhận %+v", resp.ListNote[0])
	}
	if resp.ListNote[0].ConfidenceScore == nil || *resp.ListNote[0].ConfidenceScore != 0.91 {
		t.Errorf("confidence_score sai: %+v", resp.ListNote[0])
	}
	// Note chưa phân tích: hai field null
	if resp.ListNote[1].PredictedStatus != nil || resp.ListNote[1].ConfidenceScore != nil {
		t.Errorf("note chưa phân tích phải null: %+v", resp.ListNote[1])
	}
}

func TestGetNoteByIdScopedToOwner(t *testing.T) {
	r := setupTestEnv(t)
	owner, ownerToken := createTestUser(t, "note-owner@test.com")
	_, otherToken := createTestUser(t, "note-other@test.com")

	note := models.Note{UserID: owner.UserID, Title: "riêng tư", Content: "x", Emotion: "calm", IsActive: true}
	if err := testDB.Create(&note).Error; err != nil {
		t.Fatalf("seed note: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, notePath(note.NoteID), ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chủ note đọc: muốn 200, nhận %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, notePath(note.NoteID), otherToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("user khác đọc note: muốn 404, nhận %d", w.Code)
	}
}

func TestUpdateNotePartialKeepsOtherFields(t *testing.T) {
	r := setupTestEnv(t)
	user, token := createTestUser(t, "note-partial@test.com")

	hits := make(chan struct{}, 8)
	fakeClassifier(t, hits, services.ClassifierResult{
		PredictedStatus:  "Normal",
		ConfidenceScores: map[string]float64{"Normal": 0.8},
	})

	w := doJSON(t, r, http.MethodPost, "/api/notes", token,
		controllers.CreateNoteRequest{Title: "gốc", Content: "nội dung gốc", Emotion: "calm"})
	if w.Code != http.StatusCreated {
		t.Fatalf("tạo note: %d", w.Code)
	}
	var note models.Note
	testDB.Where("user_id = ?", user.UserID).First(&note)

	// Chỉ gửi emotion, các field khác rỗng = không đổi
	w = doJSON(t, r, http.MethodPut, notePath(note.NoteID), token,
		controllers.UpdateNoteRequest{Emotion: "anxious"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: muốn 200, nhận %d body=%s", w.Code, w.Body.String())
	}

	var updated models.Note
	testDB.First(&updated, note.NoteID)
	if updated.Title != "gốc" || updated.Content != "nội dung gốc" {
		t.Errorf("field không gửi phải giữ nguyên: %+v", updated)
	}
	if updated.Emotion != "anxious" {
		t.Errorf("emotion = %q, muốn anxious", updated.Emotion)
	}

	// Content không đổi nên không được gọi model phân loại
	select {
	case <-hits:
		t.Error("update không đổi content nhưng vẫn gọi classifier")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUpdateNoteContentTriggersAnalysis(t *testing.T) {
	r := setupTestEnv(t)
	user, token := createTestUser(t, "note-trigger@test.com")

	hits := make(chan struct{}, 8)
	fakeClassifier(t, hits,
		services.ClassifierResult{
			PredictedStatus:  "Anxiety",
			ConfidenceScores: map[string]float64{"Anxiety": 0.77, "Normal": 0.15},
		},
		services.ClassifierResult{
			PredictedStatus:  "Normal",
			ConfidenceScores: map[string]float64{"Normal": 0.95},
		},
	)

	w := doJSON(t, r, http.MethodPost, "/api/notes", token,
		controllers.CreateNoteRequest{Title: "t", Content: "ban đầu", Emotion: "calm"})
	if w.Code != http.StatusCreated {
		t.Fatalf("tạo note: %d", w.Code)
	}
	var note models.Note
	testDB.Where("user_id = ?", user.UserID).First(&note)

	w = doJSON(t, r, http.MethodPut, notePath(note.NoteID), token,
		controllers.UpdateNoteRequest{Content: "hôm nay tôi rất lo lắng"})
	if w.Code != http.StatusOK {
		t.Fatalf("update content: muốn 200, nhận %d", w.Code)
	}

	select {
	case <-hits:
	case <-time.After(3 * time.Second):
		t.Fatal("đổi content nhưng classifier không được gọi")
	}

	first := waitForAnalysis(t, note.NoteID)
	if first.PredictedStatus != "Anxiety" {
		t.Errorf("predicted_status = %q, muốn Anxiety", first.PredictedStatus)
	}
	// Confidence là score cao nhất trong map
	if first.ConfidenceScore != 0.77 {
		t.Errorf("confidence_score = %v, muốn 0.77", first.ConfidenceScore)
	}

	// Chỉ đúng một lần gọi cho một lần đổi content
	select {
	case <-hits:
		t.Error("classifier bị gọi quá một lần")
	case <-time.After(200 * time.Millisecond):
	}

	// Đổi content lần nữa: update tại chỗ, vẫn một bản ghi analysis
	w = doJSON(t, r, http.MethodPut, notePath(note.NoteID), token,
		controllers.UpdateNoteRequest{Content: "giờ thì ổn hơn rồi"})
	if w.Code != http.StatusOK {
		t.Fatalf("update lần hai: %d", w.Code)
	}
	select {
	case <-hits:
	case <-time.After(3 * time.Second):
		t.Fatal("lần đổi content thứ hai không gọi classifier")
	}

	deadline := time.Now().Add(3 * time.Second)
	var second models.Analysis
	for time.Now().Before(deadline) {
		testDB.Where("note_id = ?", note.NoteID).First(&second)
		if second.PredictedStatus == "Normal" {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if second.PredictedStatus != "Normal" || second.ConfidenceScore != 0.95 {
		t.Errorf("analysis không được cập nhật: %+v", second)
	}
	if second.AnalysisID != first.AnalysisID {
		t.Errorf("phân tích lại phải ghi đè cùng bản ghi, id %d -> %d", first.AnalysisID, second.AnalysisID)
	}

	var count int64
	testDB.Model(&models.Analysis{}).Where("note_id = ?", note.NoteID).Count(&count)
	if count != 1 {
		t.Errorf("phải có đúng 1 bản ghi analysis, có %d", count)
	}
}

func TestUpdateNoteSameContentNoAnalysis(t *testing.T) {
	r := setupTestEnv(t)
	user, token := createTestUser(t, "note-same@test.com")

	hits := make(chan struct{}, 8)
	fakeClassifier(t, hits, services.ClassifierResult{
		PredictedStatus:  "Normal",
		ConfidenceScores: map[string]float64{"Normal": 0.8},
	})

	content := "nội dung không đổi"
	w := doJSON(t, r, http.MethodPost, "/api/notes", token,
		controllers.CreateNoteRequest{Title: "t", Content: content, Emotion: "calm"})
	if w.Code != http.StatusCreated {
		t.Fatalf("tạo note: %d", w.Code)
	}
	var note models.Note
	testDB.Where("user_id = ?", user.UserID).First(&note)

	// Gửi lại đúng content cũ: có update nhưng giá trị không đổi
	w = doJSON(t, r, http.MethodPut, notePath(note.NoteID), token,
		controllers.UpdateNoteRequest{Content: content, Title: "title mới"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d", w.Code)
	}

	select {
	case <-hits:
		t.Error("content không đổi giá trị nhưng classifier vẫn bị gọi")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUpdateNoteClassifierFailureDoesNotAffectResponse(t *testing.T) {
	r := setupTestEnv(t)
	user, token := createTestUser(t, "note-fail@test.com")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "model down", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	t.Setenv("ML_SERVICE_URL", server.URL)

	w := doJSON(t, r, http.MethodPost, "/api/notes", token,
		controllers.CreateNoteRequest{Title: "t", Content: "ban đầu", Emotion: "calm"})
	if w.Code != http.StatusCreated {
		t.Fatalf("tạo note: %d", w.Code)
	}
	var note models.Note
	testDB.Where("user_id = ?", user.UserID).First(&note)

	w = doJSON(t, r, http.MethodPut, notePath(note.NoteID), token,
		controllers.UpdateNoteRequest{Content: "content mới"})
	if w.Code != http.StatusOK {
		t.Fatalf("classifier lỗi nhưng update vẫn phải 200, nhận %d", w.Code)
	}

	// Lỗi phân loại chỉ được log, không ghi kết quả
	time.Sleep(300 * time.Millisecond)
	var count int64
	testDB.Model(&models.Analysis{}).Where("note_id = ?", note.NoteID).Count(&count)
	if count != 0 {
		t.Errorf("classifier lỗi nhưng vẫn có %d bản ghi analysis", count)
	}

	var updated models.Note
	testDB.First(&updated, note.NoteID)
	if updated.Content != "content mới" {
		t.Errorf("update content phải thành công dù phân tích lỗi: %q", updated.Content)
	}
}

func TestDeleteNoteSoftDelete(t *testing.T) {
	r := setupTestEnv(t)
	user, token := createTestUser(t, "note-delete@test.com")

	w := doJSON(t, r, http.MethodPost, "/api/notes", token,
		controllers.CreateNoteRequest{Title: "t", Content: "c", Emotion: "calm"})
	if w.Code != http.StatusCreated {
		t.Fatalf("tạo note: %d", w.Code)
	}
	var note models.Note
	testDB.Where("user_id = ?", user.UserID).First(&note)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/notes/delete/%d", note.NoteID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: muốn 200, nhận %d", w.Code)
	}

	// Đã xoá thì đọc và xoá lại đều 404
	w = doJSON(t, r, http.MethodGet, notePath(note.NoteID), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("đọc note đã xoá: muốn 404, nhận %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/notes/delete/%d", note.NoteID), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("xoá lại note đã xoá: muốn 404, nhận %d", w.Code)
	}

	// Soft delete: bản ghi vẫn còn, chỉ hạ cờ
	var raw models.Note
	if err := testDB.First(&raw, note.NoteID).Error; err != nil {
		t.Fatalf("bản ghi phải còn trong DB: %v", err)
	}
	if raw.IsActive {
		t.Error("is_active phải là false sau khi xoá")
	}

	w = doJSON(t, r, http.MethodGet, "/api/notes", token, nil)
	resp := decodeBody(t, w)
	if list, ok := resp["listNote"].([]interface{}); !ok || len(list) != 0 {
		t.Errorf("danh sách không được chứa note đã xoá: %v", resp["listNote"])
	}
}
