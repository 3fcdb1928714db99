package httputil

import (
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://example.com/path", false},
		{"valid HTTP", "http://example.com/path", false},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"data scheme rejected", "data:text/html,<h1>Hi</h1>", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"empty string", "", true},
		{"no host", "https://", true},
		{"protocol-relative rejected", "//cdn.example.com/video.mp4", true},
		{"valid with port", "http://127.0.0.1:8080/path", false},
		{"valid with query", "https://example.com/path?q=test&a=b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal filename", "video.mp4", "video.mp4"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"directory components", "/home/user/secret.txt", "secret.txt"},
		{"null bytes", "video\x00.mp4", "video.mp4"},
		{"Windows special chars", "video<>:\"|?*.mp4", "video_______.mp4"},
		{"double dots", "video..mp4", "video_mp4"},
		{"empty string", "", "untitled"},
		{"just dots", "..", "_"}, // filepath.Base("..") = "..", replacer makes "_"
		{"just dot", ".", "untitled"},
		{"slugified title", "tatort-das-team.mp4", "tatort-das-team.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSafeDownloadPath(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		filename string
		wantErr  bool
	}{
		{"normal", "/tmp/downloads", "video.mp4", false},
		{"path traversal attempt", "/tmp/downloads", "../../etc/passwd", false}, // sanitized to "passwd"
		{"shell metacharacters", "/tmp/downloads", "$(whoami).mp4", false},      // sanitized
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := SafeDownloadPath(tt.dir, tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("SafeDownloadPath(%q, %q) error = %v, wantErr %v", tt.dir, tt.filename, err, tt.wantErr)
			}
			if err == nil && path == "" {
				t.Error("SafeDownloadPath returned empty path without error")
			}
		})
	}
}
