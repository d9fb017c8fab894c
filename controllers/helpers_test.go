package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/routes"
	"github.com/mentalq/mentalq-backend/services"
	"github.com/mentalq/mentalq-backend/utils"
)

// testDB là handle cho assertion trực tiếp trong test; handler không dùng nó
// mà nhận DB qua context từ DBMiddleware.
var testDB *gorm.DB

// setupTestEnv dựng DB sqlite tạm + router đầy đủ cho test controller.
// NowFunc cố định theo WIB để timestamp lưu và tham số truy vấn cùng offset.
func setupTestEnv(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("TOKEN_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mentalq_test.sqlite")), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().In(services.WIB) },
	})
	if err != nil {
		t.Fatalf("không mở được sqlite test: %v", err)
	}

	err = db.AutoMigrate(
		&models.Credential{},
		&models.User{},
		&models.UserSession{},
		&models.PasswordReset{},
		&models.Note{},
		&models.Analysis{},
		&models.Psychologist{},
		&models.Chat{},
		&models.Transaction{},
	)
	if err != nil {
		t.Fatalf("autoMigrate lỗi: %v", err)
	}

	testDB = db

	r := gin.New()
	return routes.SetupRouter(r, db)
}

func createTestUser(t *testing.T, email string) (models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt lỗi: %v", err)
	}

	credential := models.Credential{Email: email, Password: string(hashed), Role: models.RoleUser}
	if err := testDB.Create(&credential).Error; err != nil {
		t.Fatalf("tạo credential lỗi: %v", err)
	}

	user := models.User{
		CredentialsID: credential.CredentialsID,
		Email:         email,
		Name:          "Tester",
		IsActive:      true,
	}
	if err := testDB.Create(&user).Error; err != nil {
		t.Fatalf("tạo user lỗi: %v", err)
	}

	token, err := utils.GenerateToken(user.UserID, string(models.RoleUser))
	if err != nil {
		t.Fatalf("tạo token lỗi: %v", err)
	}
	session := models.UserSession{UserID: user.UserID, SessionToken: token}
	if err := testDB.Create(&session).Error; err != nil {
		t.Fatalf("tạo session lỗi: %v", err)
	}

	return user, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body lỗi: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("không decode được body %q: %v", w.Body.String(), err)
	}
	return body
}

// fakeClassifier dựng ML service giả trả kết quả theo từng lần gọi, báo mỗi
// lần được gọi qua channel hits.
func fakeClassifier(t *testing.T, hits chan struct{}, responses ...services.ClassifierResult) *httptest.Server {
	t.Helper()

	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		result := responses[len(responses)-1]
		if call < len(responses) {
			result = responses[call]
		}
		call++

		json.NewEncoder(w).Encode([]services.ClassifierResult{result})
		select {
		case hits <- struct{}{}:
		default:
		}
	}))
	t.Cleanup(server.Close)
	t.Setenv("ML_SERVICE_URL", server.URL)
	return server
}

// waitForAnalysis chờ goroutine phân tích ghi xong kết quả
func waitForAnalysis(t *testing.T, noteID uint) models.Analysis {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	var analysis models.Analysis
	for time.Now().Before(deadline) {
		if err := testDB.Where("note_id = ?", noteID).First(&analysis).Error; err == nil {
			return analysis
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("không thấy analysis cho note %d", noteID)
	return analysis
}

func notePath(noteID uint) string {
	return fmt.Sprintf("/api/notes/%d", noteID)
}
