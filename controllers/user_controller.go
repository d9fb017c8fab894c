package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/utils"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// UpdateUser cập nhật hồ sơ (multipart): name, birthday, email và ảnh đại
// diện. Đổi email sẽ phải xác minh lại qua link gửi về địa chỉ mới.
func UpdateUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetUint("user_id")

	email := c.PostForm("email")
	name := c.PostForm("name")
	birthday := c.PostForm("birthday")

	var user models.User
	var verificationEmail, verificationToken string

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Credentials").
			Where("user_id = ? AND is_active = ?", userID, true).
			First(&user).Error; err != nil {
			return errUserNotFound
		}

		updates := map[string]interface{}{}

		if email != "" && email != user.Email {
			var existing models.User
			if err := tx.Where("email = ?", email).First(&existing).Error; err == nil {
				return errEmailTaken
			}

			verificationEmail = email
			verificationToken = newVerificationToken()
			expires := time.Now().Add(time.Hour)

			credUpdates := map[string]interface{}{
				"email":                      email,
				"email_verification_token":   verificationToken,
				"email_verification_expires": &expires,
				"is_email_verified":          false,
			}
			if err := tx.Model(user.Credentials).Updates(credUpdates).Error; err != nil {
				return err
			}
			updates["email"] = email
		}

		if file, err := c.FormFile("profileImage"); err == nil {
			if file.Size > 5*1024*1024 {
				return errors.New("profile image exceeds 5MB")
			}
			if !allowedImageTypes[file.Header.Get("Content-Type")] {
				return errors.New("invalid file type. Only JPEG, PNG, and GIF are allowed")
			}

			publicURL, err := utils.UploadProfileImageToSupabase(file, uuid.New().String())
			if err != nil {
				return err
			}
			updates["profile_photo_url"] = publicURL
		}

		if name != "" && name != user.Name {
			updates["name"] = name
		}
		if birthday != "" {
			parsed, err := parseBirthday(birthday)
			if err != nil {
				return errors.New("invalid birthday format")
			}
			updates["birthday"] = parsed
		}

		if len(updates) == 0 {
			return errNoChanges
		}
		return tx.Model(&user).Updates(updates).Error
	})

	switch {
	case errors.Is(err, errUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	case errors.Is(err, errEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Email already exists"})
		return
	case errors.Is(err, errNoChanges):
		c.JSON(http.StatusOK, gin.H{"error": false, "message": "No changes to update", "user": safeUser(user)})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	if verificationEmail != "" {
		go func(addr, token string) {
			if err := utils.SendVerificationEmail(addr, token); err != nil {
				log.Printf("Lỗi gửi email xác minh cho %s: %v", addr, err)
			}
		}(verificationEmail, verificationToken)
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "User updated successfully",
		"user":    safeUser(user),
	})
}

var errNoChanges = errors.New("no changes to update")

// GetUser trả về hồ sơ của user đang đăng nhập
func GetUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetUint("user_id")

	var user models.User
	if err := db.Where("user_id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "User retrieved successfully",
		"user":    safeUser(user),
	})
}

// GetUserById trả về thông tin công khai của một user theo id
func GetUserById(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	var user models.User
	if err := db.
		Select("user_id", "email", "name", "birthday").
		Where("user_id = ? AND is_active = ?", id, true).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "User retrieved successfully",
		"user":    user,
	})
}

// GetAllUsers: danh sách user cho chuyên gia tâm lý (chọn người để chat)
func GetAllUsers(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var users []models.User
	if err := db.
		Select("user_id", "email", "name", "birthday", "profile_photo_url").
		Where("is_active = ?", true).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Users retrieved successfully",
		"users":   users,
	})
}

// DeleteUser soft delete tài khoản của chính mình và xoá phiên đăng nhập
func DeleteUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetUint("user_id")

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("user_id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
			return errUserNotFound
		}
		if err := tx.Model(&user).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.UserSession{}).Error
	})

	switch {
	case errors.Is(err, errUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "User deleted successfully",
	})
}

// GetAllPsychologists liệt kê chuyên gia đã được duyệt
func GetAllPsychologists(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var psychologists []models.Psychologist
	if err := db.
		Preload("User").
		Where("is_verified = ?", true).
		Find(&psychologists).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":         false,
		"message":       "Psychologists retrieved successfully",
		"psychologists": psychologists,
	})
}

func GetPsychologistById(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	var psychologist models.Psychologist
	if err := db.
		Preload("User").
		Where("psychologist_id = ?", id).
		First(&psychologist).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Psychologist not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":        false,
		"message":      "Psychologist retrieved successfully",
		"psychologist": psychologist,
	})
}
