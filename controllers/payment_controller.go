package controllers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentalq/mentalq-backend/models"
)

type CreateTransactionInput struct {
	Price  int64  `json:"price" binding:"required"`
	ItemID string `json:"item_id" binding:"required"`
}

var midtransHTTP = &http.Client{Timeout: 30 * time.Second}

func midtransSnapURL() string {
	if base := os.Getenv("MIDTRANS_SNAP_URL"); base != "" {
		return base
	}
	return "https://app.sandbox.midtrans.com/snap/v1"
}

func midtransAPIURL() string {
	if base := os.Getenv("MIDTRANS_API_URL"); base != "" {
		return base
	}
	return "https://api.sandbox.midtrans.com/v2"
}

func midtransAuthHeader() string {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(serverKey+":"))
}

func midtransDo(method, url string, payload interface{}) (map[string]interface{}, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", midtransAuthHeader())

	resp, err := midtransHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lỗi gọi Midtrans: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("midtrans lỗi %d: %s", resp.StatusCode, string(raw))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateTransaction tạo giao dịch Snap cho dịch vụ tư vấn và lưu lại bản ghi
func CreateTransaction(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetUint("user_id")

	var input CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "price and item_id are required"})
		return
	}

	orderID := fmt.Sprintf("MentalQ-%d", time.Now().UnixMilli())

	requestBody := gin.H{
		"transaction_details": gin.H{
			"order_id":     orderID,
			"gross_amount": input.Price,
		},
		"credit_card": gin.H{
			"secure": true,
		},
		"item_details": []gin.H{
			{
				"id":       input.ItemID,
				"price":    input.Price,
				"quantity": 1,
				"name":     "MentalQ - Psychologist Service",
			},
		},
	}

	result, err := midtransDo(http.MethodPost, midtransSnapURL()+"/transactions", requestBody)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	transaction := models.Transaction{
		UserID:      userID,
		OrderID:     orderID,
		ItemID:      input.ItemID,
		GrossAmount: input.Price,
		Status:      "pending",
	}
	if err := db.Create(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Transaction created successfully",
		"data": gin.H{
			"item_id":      input.ItemID,
			"order_id":     orderID,
			"token":        result["token"],
			"redirect_url": result["redirect_url"],
		},
	})
}

// GetStatusTransaction tra trạng thái từ Midtrans và đồng bộ bản ghi local
func GetStatusTransaction(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	orderID := c.Param("id")

	result, err := midtransDo(http.MethodGet, midtransAPIURL()+"/"+orderID+"/status", nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	if status, ok := result["transaction_status"].(string); ok && status != "" {
		db.Model(&models.Transaction{}).
			Where("order_id = ?", orderID).
			Update("status", status)
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Transaction status retrieved successfully",
		"data": gin.H{
			"transaction_status": result["transaction_status"],
			"status_message":     result["status_message"],
		},
	})
}

func CancelTransaction(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	orderID := c.Param("id")

	result, err := midtransDo(http.MethodPost, midtransAPIURL()+"/"+orderID+"/cancel", nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	if status, ok := result["transaction_status"].(string); ok && status != "" {
		db.Model(&models.Transaction{}).
			Where("order_id = ?", orderID).
			Update("status", status)
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Transaction canceled successfully",
		"data": gin.H{
			"transaction_status": result["transaction_status"],
			"status_message":     result["status_message"],
		},
	})
}
