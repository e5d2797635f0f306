package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities for the intake API

// allowedUploadTypes are the content types the extraction engines accept.
var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// ValidateContentType checks the uploaded file's declared type
func ValidateContentType(ct string) error {
	base := strings.ToLower(strings.TrimSpace(ct))
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if !allowedUploadTypes[base] {
		return fmt.Errorf("unsupported content type: %s (allowed: jpeg, png, webp, pdf, plain text)", ct)
	}
	return nil
}

// ValidateFileSize rejects empty or oversized uploads
func ValidateFileSize(size, max int64) error {
	if size <= 0 {
		return fmt.Errorf("empty file")
	}
	if size > max {
		return fmt.Errorf("file too large: %d bytes (max %d)", size, max)
	}
	return nil
}

// ValidateConceptoID validates the owning expense-concept id (UUID)
func ValidateConceptoID(id string) error {
	if id == "" {
		return fmt.Errorf("concepto id cannot be empty")
	}
	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, strings.ToLower(id))
	if !matched {
		return fmt.Errorf("invalid concepto id format")
	}
	return nil
}

// ValidateDocumentID validates a document id (UUID)
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document id cannot be empty")
	}
	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, strings.ToLower(id))
	if !matched {
		return fmt.Errorf("invalid document id format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 50 // default
	}
	if limit > 200 {
		return 200 // max limit
	}
	return limit
}
