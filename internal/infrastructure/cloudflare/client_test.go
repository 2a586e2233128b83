package cloudflare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientGetImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/acct-1/images/v1/cf-abc" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer token-1" {
			t.Errorf("Unexpected Authorization header: %s", auth)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"errors":  []interface{}{},
			"result": map[string]interface{}{
				"id":       "cf-abc",
				"filename": "front.jpg",
				"uploaded": "2024-05-01T10:00:00Z",
				"variants": []string{"https://cdn.test/cf-abc/public", "https://cdn.test/cf-abc/thumb"},
			},
		})
	}))
	defer server.Close()

	client := NewClient("acct-1", "token-1", server.URL)

	record, err := client.GetImage(context.Background(), "cf-abc")
	if err != nil {
		t.Fatalf("GetImage failed: %v", err)
	}

	if record.ID != "cf-abc" {
		t.Errorf("Expected ID cf-abc, got %s", record.ID)
	}
	if record.Filename != "front.jpg" {
		t.Errorf("Expected filename front.jpg, got %s", record.Filename)
	}
	if record.Uploaded == nil || record.Uploaded.Hour() != 10 {
		t.Errorf("Uploaded timestamp not parsed: %v", record.Uploaded)
	}
	if len(record.Variants) != 2 {
		t.Errorf("Expected 2 variants, got %d", len(record.Variants))
	}
	if !strings.Contains(record.Raw, "front.jpg") {
		t.Errorf("Raw payload should carry the provider response, got %s", record.Raw)
	}
}

func TestClientGetImageRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("acct-1", "token-1", server.URL)

	_, err := client.GetImage(context.Background(), "cf-abc")
	if err != ErrRateLimited {
		t.Fatalf("Expected ErrRateLimited, got %v", err)
	}
}

func TestClientGetImageAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"errors": []map[string]interface{}{
				{"code": 5404, "message": "image not found"},
			},
		})
	}))
	defer server.Close()

	client := NewClient("acct-1", "token-1", server.URL)

	_, err := client.GetImage(context.Background(), "missing")
	if err == nil {
		t.Fatal("Expected error for failed API response")
	}
	if !strings.Contains(err.Error(), "image not found") {
		t.Errorf("Expected provider message in error, got: %v", err)
	}
}

func TestConfigured(t *testing.T) {
	if NewClient("", "", "").Configured() {
		t.Error("Empty credentials should not report configured")
	}
	if NewClient("acct", "", "").Configured() {
		t.Error("Missing token should not report configured")
	}
	if !NewClient("acct", "token", "").Configured() {
		t.Error("Full credentials should report configured")
	}
}

func TestExtractImageID(t *testing.T) {
	tests := []struct {
		url string
		id  string
		ok  bool
	}{
		{"https://archive.test/cdn-cgi/imagedelivery/acct-1/cf-abc/public", "cf-abc", true},
		{"https://archive.test/cdn-cgi/imagedelivery/acct-1/cf-abc/thumbnail", "cf-abc", true},
		{"/uploads/2024/front.jpg", "", false},
		{"https://archive.test/too/short", "", false},
		{"://not a url", "", false},
	}

	for _, tt := range tests {
		id, ok := ExtractImageID(tt.url)
		if ok != tt.ok || id != tt.id {
			t.Errorf("ExtractImageID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.id, tt.ok)
		}
	}
}
