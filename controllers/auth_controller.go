package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentalq/mentalq-backend/models"
	"github.com/mentalq/mentalq-backend/utils"
)

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Birthday string `json:"birthday" binding:"required"` // dd/mm/yyyy
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginInput struct {
	IDToken string `json:"id_token" binding:"required"`
}

type RequestResetInput struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPInput struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// safeUser là phần thông tin user trả về sau đăng ký/đăng nhập
func safeUser(user models.User) gin.H {
	return gin.H{
		"user_id":           user.UserID,
		"email":             user.Email,
		"name":              user.Name,
		"birthday":          user.Birthday,
		"profile_photo_url": user.ProfilePhotoURL,
	}
}

func parseBirthday(s string) (*time.Time, error) {
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func newVerificationToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Mỗi user một phiên duy nhất: login mới thay token cũ bằng upsert theo user_id
func upsertSession(tx *gorm.DB, userID uint, token string) error {
	session := models.UserSession{UserID: userID, SessionToken: token}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"session_token", "updated_at"}),
	}).Create(&session).Error
}

// ====== HANDLERS ======
func RegisterUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "All fields are required"})
		return
	}

	birthday, err := parseBirthday(input.Birthday)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid birthday format"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Failed to hash password"})
		return
	}

	verificationToken := newVerificationToken()
	verificationExpires := time.Now().Add(time.Hour)

	var user models.User
	var token string

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing models.Credential
		if err := tx.Where("email = ?", input.Email).First(&existing).Error; err == nil {
			return errEmailTaken
		}

		credential := models.Credential{
			Email:                    input.Email,
			Password:                 string(hashed),
			EmailVerificationToken:   verificationToken,
			EmailVerificationExpires: &verificationExpires,
			Role:                     models.RoleUser,
		}
		if err := tx.Create(&credential).Error; err != nil {
			return err
		}

		user = models.User{
			CredentialsID: credential.CredentialsID,
			Email:         input.Email,
			Name:          input.Name,
			Birthday:      birthday,
			IsActive:      true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		var tokenErr error
		token, tokenErr = utils.GenerateToken(user.UserID, string(models.RoleUser))
		if tokenErr != nil {
			return tokenErr
		}

		return upsertSession(tx, user.UserID, token)
	})

	switch {
	case errors.Is(err, errEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Email already exists"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	// Gửi email xác minh (không chặn luồng)
	go func(email, verifyToken string) {
		if err := utils.SendVerificationEmail(email, verifyToken); err != nil {
			log.Printf("Lỗi gửi email xác minh cho %s: %v", email, err)
		}
	}(input.Email, verificationToken)

	c.JSON(http.StatusCreated, gin.H{
		"error":   false,
		"message": "User registered successfully!",
		"user":    safeUser(user),
		"token":   token,
	})
}

var errEmailTaken = errors.New("email already exists")

func LoginUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Email and password are required"})
		return
	}

	var user models.User
	if err := db.Preload("Credentials").Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	}

	if user.Credentials == nil ||
		bcrypt.CompareHashAndPassword([]byte(user.Credentials.Password), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Invalid password"})
		return
	}

	token, err := utils.GenerateToken(user.UserID, string(user.Credentials.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Failed to generate token"})
		return
	}

	if err := upsertSession(db, user.UserID, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "User logged in successfully",
		"user":    safeUser(user),
		"token":   token,
	})
}

func LogoutUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Authorization header missing"})
		return
	}

	token := authHeader
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	}

	result := db.Where("session_token = ?", token).Delete(&models.UserSession{})
	if result.Error != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "User logged out successfully",
	})
}

// VerifyEmail xác minh email qua link gửi kèm token
func VerifyEmail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	token := c.Param("token")

	var credential models.Credential
	if err := db.Where("email_verification_token = ?", token).First(&credential).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Verification token not found"})
		return
	}

	if credential.EmailVerificationExpires == nil || credential.EmailVerificationExpires.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Verification token has expired"})
		return
	}

	updates := map[string]interface{}{
		"is_email_verified":          true,
		"email_verification_token":   "",
		"email_verification_expires": nil,
	}
	if err := db.Model(&credential).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Email verified successfully",
	})
}

// GoogleLogin xác minh ID token của Google rồi tìm-hoặc-tạo tài khoản
func GoogleLogin(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input GoogleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "id_token is required"})
		return
	}

	payload, err := idtoken.Validate(c, input.IDToken, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Invalid Google token"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	googleUID, _ := payload.Claims["sub"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Google token has no email"})
		return
	}

	var user models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Credentials").Where("email = ?", email).First(&user).Error; err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Chưa có tài khoản -> tạo mới, email Google coi như đã xác minh
		credential := models.Credential{
			Email:           email,
			FirebaseUID:     &googleUID,
			IsEmailVerified: true,
			Role:            models.RoleUser,
		}
		if err := tx.Create(&credential).Error; err != nil {
			return err
		}

		user = models.User{
			CredentialsID: credential.CredentialsID,
			Email:         email,
			Name:          name,
			IsActive:      true,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	token, err := utils.GenerateToken(user.UserID, string(models.RoleUser))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Failed to generate token"})
		return
	}

	if err := upsertSession(db, user.UserID, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "User logged in successfully",
		"user":    safeUser(user),
		"token":   token,
	})
}

// RegisterPsikologi đăng ký tài khoản chuyên gia tâm lý: multipart form kèm
// file chứng chỉ PDF, chờ admin duyệt (isVerified = false).
func RegisterPsikologi(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	email := c.PostForm("email")
	password := c.PostForm("password")
	name := c.PostForm("name")
	prefixTitle := c.PostForm("prefix_title")
	suffixTitle := c.PostForm("suffix_title")
	price := c.PostForm("price")

	if email == "" || password == "" || name == "" || prefixTitle == "" || suffixTitle == "" || price == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "All fields are required"})
		return
	}

	certificate, err := c.FormFile("certificate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Certificate file is required"})
		return
	}
	if err := utils.ValidateCertificatePDF(certificate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	objectName := fmt.Sprintf("%s-%s", slug.Make(name), uuid.New().String())
	certificateURL, err := utils.UploadCertificateToSupabase(certificate, objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Failed to upload certificate"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Failed to hash password"})
		return
	}

	verificationToken := newVerificationToken()
	verificationExpires := time.Now().Add(time.Hour)

	var user models.User
	var psychologist models.Psychologist

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing models.Credential
		if err := tx.Where("email = ?", email).First(&existing).Error; err == nil {
			return errEmailTaken
		}

		credential := models.Credential{
			Email:                    email,
			Password:                 string(hashed),
			EmailVerificationToken:   verificationToken,
			EmailVerificationExpires: &verificationExpires,
			Role:                     models.RolePsychologist,
		}
		if err := tx.Create(&credential).Error; err != nil {
			return err
		}

		user = models.User{
			CredentialsID: credential.CredentialsID,
			Email:         email,
			Name:          name,
			IsActive:      true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		psychologist = models.Psychologist{
			UserID:      user.UserID,
			PrefixTitle: prefixTitle,
			SuffixTitle: suffixTitle,
			Certificate: certificateURL,
			Price:       price,
		}
		return tx.Create(&psychologist).Error
	})

	switch {
	case errors.Is(err, errEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Email already exists"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	go func(addr, verifyToken string) {
		if err := utils.SendVerificationEmail(addr, verifyToken); err != nil {
			log.Printf("Lỗi gửi email xác minh cho %s: %v", addr, err)
		}
	}(email, verificationToken)

	c.JSON(http.StatusCreated, gin.H{
		"error":        false,
		"message":      "Psychologist registered successfully!",
		"user":         safeUser(user),
		"psychologist": psychologist,
	})
}

func newOTP() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(1000000))
	return fmt.Sprintf("%06d", n.Int64())
}

// RequestPasswordReset tạo OTP 6 số, hạn 1 giờ, gửi qua email
func RequestPasswordReset(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input RequestResetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Email is required"})
		return
	}

	var user models.User
	if err := db.Where("email = ? AND is_active = ?", input.Email, true).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	}

	otp := newOTP()
	reset := models.PasswordReset{
		UserID:    user.UserID,
		Token:     otp,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// OTP cũ chưa dùng của user bị vô hiệu khi cấp OTP mới
		if err := tx.Model(&models.PasswordReset{}).
			Where("user_id = ? AND used = ?", user.UserID, false).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Create(&reset).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": err.Error()})
		return
	}

	go func(addr, code string) {
		if err := utils.SendOTPEmail(addr, code); err != nil {
			log.Printf("Lỗi gửi OTP cho %s: %v", addr, err)
		}
	}(user.Email, otp)

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "OTP sent to your email",
	})
}

func findValidOTP(db *gorm.DB, email, otp string) (*models.User, *models.PasswordReset, error) {
	var user models.User
	if err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		return nil, nil, errUserNotFound
	}

	var reset models.PasswordReset
	err := db.Where("user_id = ? AND token = ? AND used = ? AND expires_at > ?",
		user.UserID, otp, false, time.Now()).
		Order("created_at DESC").
		First(&reset).Error
	if err != nil {
		return &user, nil, errors.New("invalid or expired OTP")
	}
	return &user, &reset, nil
}

func VerifyOTP(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Email and OTP are required"})
		return
	}

	_, _, err := findValidOTP(db, input.Email, input.OTP)
	if errors.Is(err, errUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid or expired OTP"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "OTP verified successfully",
	})
}

// ResetPassword đổi mật khẩu bằng OTP hợp lệ, đánh dấu OTP đã dùng và xoá
// phiên đăng nhập hiện tại để buộc login lại.
func ResetPassword(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Email, OTP and new password are required"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Failed to hash password"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		user, reset, err := findValidOTP(tx, input.Email, input.OTP)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Credential{}).
			Where("credentials_id = ?", user.CredentialsID).
			Update("password", string(hashed)).Error; err != nil {
			return err
		}

		if err := tx.Model(reset).Update("used", true).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", user.UserID).Delete(&models.UserSession{}).Error
	})

	switch {
	case errors.Is(err, errUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid or expired OTP"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   false,
		"message": "Password reset successfully",
	})
}
