package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ClassifierResult là một phần tử trong mảng trả về của model, tương ứng
// 1-1 theo vị trí với statements gửi lên.
type ClassifierResult struct {
	PredictedStatus  string             `json:"predicted_status"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
}

type classifyRequest struct {
	Statements []string `json:"statements"`
}

// Timeout cứng để một lần gọi model treo không giữ goroutine phân tích mãi
var classifierClient = &http.Client{Timeout: 15 * time.Second}

// ClassifyStatements gọi ML service phân loại trạng thái tâm lý
func ClassifyStatements(statements []string) ([]ClassifierResult, error) {
	baseURL := os.Getenv("ML_SERVICE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("ML_SERVICE_URL chưa cấu hình")
	}

	payload, err := json.Marshal(classifyRequest{Statements: statements})
	if err != nil {
		return nil, err
	}

	resp, err := classifierClient.Post(baseURL+"/predict", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("lỗi gọi ML service: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ML service lỗi %d: %s", resp.StatusCode, string(body))
	}

	var results []ClassifierResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("lỗi đọc JSON từ ML service: %v", err)
	}

	if len(results) != len(statements) {
		return nil, fmt.Errorf("ML service trả %d kết quả cho %d statements", len(results), len(statements))
	}

	return results, nil
}
