package utils

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"

	"github.com/ledongthuc/pdf"
)

// ValidateCertificatePDF kiểm tra file chứng chỉ upload là PDF đọc được
// và có ít nhất một trang.
func ValidateCertificatePDF(fileHeader *multipart.FileHeader) error {
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return errors.New("certificate is not a readable PDF")
	}
	if reader.NumPage() < 1 {
		return errors.New("certificate PDF has no pages")
	}
	return nil
}
