package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_EMAIL")
	pass := os.Getenv("SMTP_PASSWORD")
	if from == "" || pass == "" {
		return fmt.Errorf("SMTP_EMAIL hoặc SMTP_PASSWORD chưa cấu hình")
	}

	// Headers: hỗ trợ UTF-8 & HTML
	msg := ""
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n" + body

	// Gửi mail
	err := smtp.SendMail(
		"smtp.gmail.com:587",
		smtp.PlainAuth("", from, pass, "smtp.gmail.com"),
		from,
		[]string{to},
		[]byte(msg),
	)

	if err != nil {
		return fmt.Errorf("gửi email thất bại: %v", err)
	}
	return nil
}

// SendVerificationEmail gửi link xác minh email (đăng ký hoặc đổi email)
func SendVerificationEmail(to, token string) error {
	verificationLink := fmt.Sprintf("%s/verify-email/%s", os.Getenv("FRONTEND_URL"), token)

	body := `
	<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="text-align: center; background-color: #f4f4f4; padding: 20px;">
			<h2 style="color: #555;">Email Verification</h2>
		</div>
		<div style="padding: 20px; background-color: #fff; border: 1px solid #ddd;">
			<p>Hello,</p>
			<p>Please verify your email by clicking the button below:</p>
			<div style="text-align: center; margin: 20px 0;">
				<a href="` + verificationLink + `" style="display: inline-block; padding: 10px 20px; background-color: #4CAF50; color: white; text-decoration: none; border-radius: 5px; font-weight: bold;">Verify Email</a>
			</div>
			<p>This link will expire in 1 hour. If you did not create or update a MentalQ account, you can ignore this email.</p>
			<p>Thank you,</p>
			<p>The Support Team</p>
		</div>
		<div style="text-align: center; background-color: #f4f4f4; padding: 10px; color: #777; font-size: 12px;">
			<p>&copy; MentalQ. All rights reserved.</p>
		</div>
	</div>`

	return SendEmail(to, "Verify Your Email", body)
}

// SendOTPEmail gửi OTP 6 số cho luồng quên mật khẩu
func SendOTPEmail(to, otp string) error {
	body := `
	<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="text-align: center; background-color: #f4f4f4; padding: 20px;">
			<h2 style="color: #555;">Password Reset</h2>
		</div>
		<div style="padding: 20px; background-color: #fff; border: 1px solid #ddd;">
			<p>Hello,</p>
			<p>Use the following code to reset your MentalQ password:</p>
			<div style="text-align: center; margin: 20px 0;">
				<span style="display: inline-block; padding: 10px 20px; background-color: #f4f4f4; font-size: 24px; letter-spacing: 6px; font-weight: bold;">` + otp + `</span>
			</div>
			<p>This code will expire in 1 hour. If you did not request a password reset, you can ignore this email.</p>
			<p>Thank you,</p>
			<p>The Support Team</p>
		</div>
		<div style="text-align: center; background-color: #f4f4f4; padding: 10px; color: #777; font-size: 12px;">
			<p>&copy; MentalQ. All rights reserved.</p>
		</div>
	</div>`

	return SendEmail(to, "Your MentalQ Password Reset Code", body)
}
