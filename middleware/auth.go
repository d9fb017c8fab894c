package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/utils"
)

func AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Authorization header missing"})
			c.Abort()
			return
		}

		// Tách token khỏi chuỗi "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Invalid authorization header"})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.VerifyToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Mỗi user chỉ có một phiên: token phải trùng với session đang lưu,
		// login ở thiết bị khác sẽ làm token cũ bị loại ở đây.
		db := c.MustGet("db").(*gorm.DB)
		var session models.UserSession
		if err := db.Where("user_id = ? AND session_token = ?", claims.UserID, tokenString).
			First(&session).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Session expired or logged in elsewhere"})
			c.Abort()
			return
		}

		// Lưu thông tin vào context để controller dùng
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
