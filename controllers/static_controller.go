package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const termsOfServicePage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>MentalQ - Terms of Service</title></head>
<body style="font-family: Arial, sans-serif; max-width: 720px; margin: 40px auto; line-height: 1.6; color: #333;">
<h1>Terms of Service</h1>
<p>By using MentalQ you agree to use the service for personal journaling and
mental wellness purposes only. Your daily notes belong to you; we process them
solely to provide the analysis features of the app.</p>
<p>MentalQ is not a substitute for professional medical advice, diagnosis or
treatment. If you are in crisis, contact local emergency services.</p>
<p>Accounts that abuse the chat feature or harass psychologists may be
suspended without notice.</p>
</body>
</html>`

const privacyPolicyPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>MentalQ - Privacy Policy</title></head>
<body style="font-family: Arial, sans-serif; max-width: 720px; margin: 40px auto; line-height: 1.6; color: #333;">
<h1>Privacy Policy</h1>
<p>MentalQ stores your account details, daily notes and their analysis results
to provide the service. Note content is sent to our classification service for
analysis and is never shared with third parties.</p>
<p>Chat messages are visible only to you and the psychologist you are talking
to. Payment processing is handled by Midtrans; we never store card details.</p>
<p>You can delete your account at any time, which deactivates all of your data.</p>
</body>
</html>`

// Trang tĩnh cho điều khoản và chính sách bảo mật
func TermsOfService(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(termsOfServicePage))
}

func PrivacyPolicy(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(privacyPolicyPage))
}
