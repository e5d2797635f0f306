package middleware

import "testing"

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		name    string
		ct      string
		wantErr bool
	}{
		{"jpeg", "image/jpeg", false},
		{"png", "image/png", false},
		{"pdf", "application/pdf", false},
		{"plain text with charset", "text/plain; charset=utf-8", false},
		{"uppercase", "IMAGE/PNG", false},
		{"executable", "application/x-msdownload", true},
		{"html", "text/html", true},
		{"empty", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateContentType(tc.ct)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateContentType(%q) error = %v, wantErr %v", tc.ct, err, tc.wantErr)
			}
		})
	}
}

func TestValidateFileSize(t *testing.T) {
	const max = 10 << 20
	if err := ValidateFileSize(0, max); err == nil {
		t.Error("empty file should be rejected")
	}
	if err := ValidateFileSize(max+1, max); err == nil {
		t.Error("oversized file should be rejected")
	}
	if err := ValidateFileSize(max, max); err != nil {
		t.Errorf("file at the limit should pass, got %v", err)
	}
}

func TestValidateDocumentID(t *testing.T) {
	if err := ValidateDocumentID("11111111-2222-3333-4444-555555555555"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	if err := ValidateDocumentID("../../etc/passwd"); err == nil {
		t.Error("path traversal must be rejected")
	}
	if err := ValidateDocumentID(""); err == nil {
		t.Error("empty id must be rejected")
	}
}

func TestValidateLimit(t *testing.T) {
	if got := ValidateLimit(0); got != 50 {
		t.Errorf("ValidateLimit(0) = %d, want default 50", got)
	}
	if got := ValidateLimit(1000); got != 200 {
		t.Errorf("ValidateLimit(1000) = %d, want cap 200", got)
	}
	if got := ValidateLimit(25); got != 25 {
		t.Errorf("ValidateLimit(25) = %d, want 25", got)
	}
}
