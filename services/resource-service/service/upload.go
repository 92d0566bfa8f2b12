package service

import (
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/RigelNana/edumarket/services/resource-service/models"
)

// AllowedExtensions are the file types the upload form accepts.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".zip"}

type UploadInput struct {
	Title       string
	Description string
	Category    models.Category
	Subject     string
	FileName    string
	Size        int64
	Content     io.Reader
}

func (in *UploadInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if in.Category == "" {
		return &ValidationError{Field: "category", Message: "Category is required"}
	}
	if !in.Category.Valid() {
		return &ValidationError{Field: "category", Message: "Unknown category " + strconv.Quote(string(in.Category))}
	}
	if strings.TrimSpace(in.Subject) == "" {
		return &ValidationError{Field: "subject", Message: "Subject is required"}
	}
	if in.FileName == "" || in.Content == nil {
		return &ValidationError{Field: "file", Message: "Please select a file to upload"}
	}
	if !allowedExtension(in.FileName) {
		return &ValidationError{Field: "file", Message: "Supported formats: PDF, DOC, DOCX, PPT, PPTX, ZIP"}
	}
	return nil
}

func allowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// FileType is the upper-cased extension without its dot, e.g. "PDF".
func FileType(name string) string {
	ext := filepath.Ext(name)
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes in base-1024 units with at most two decimals,
// dropping trailing zeros: 0 -> "0 Bytes", 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
