package services

import (
	"regexp"
	"strings"
)

var (
	reURL        = regexp.MustCompile(`https?://\S+`)
	reSymbol     = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?']`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// NormalizeContent chuẩn hoá nội dung nhật ký trước khi đưa vào model phân
// loại: bỏ URL, bỏ ký tự lạ, gom khoảng trắng, đưa về chữ thường. Kết quả
// được cache trong cột content_normalized.
func NormalizeContent(text string) string {
	cleaned := strings.ToLower(text)
	cleaned = reURL.ReplaceAllString(cleaned, " ")
	cleaned = reSymbol.ReplaceAllString(cleaned, " ")
	cleaned = reWhitespace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
