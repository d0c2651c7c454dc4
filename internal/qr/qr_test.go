package qr

import (
	"bytes"
	"testing"
)

func TestItemURL(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{"http://localhost:8000", "http://localhost:8000/i/abc123def456"},
		{"http://localhost:8000/", "http://localhost:8000/i/abc123def456"},
		{"https://food.example.com", "https://food.example.com/i/abc123def456"},
	}

	for _, tt := range tests {
		if got := ItemURL(tt.baseURL, "abc123def456"); got != tt.want {
			t.Errorf("ItemURL(%q) = %q, want %q", tt.baseURL, got, tt.want)
		}
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG("http://localhost:8000/i/abc123def456")
	if err != nil {
		t.Fatalf("encoding QR code: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}
}
