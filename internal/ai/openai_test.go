package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProviderGenerateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header: %s", auth)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("Unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "Write a tagline" {
			t.Errorf("Unexpected messages: %v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Built to be driven."}},
			},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(server.URL, "test-key", "test-model")

	text, err := provider.GenerateText(context.Background(), "Write a tagline")
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if text != "Built to be driven." {
		t.Errorf("Expected tagline, got '%s'", text)
	}
}

func TestOpenAIProviderAnalyzeImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}

		// Vision requests carry a content array with an inline data URL
		messages := raw["messages"].([]interface{})
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		if len(content) != 2 {
			t.Fatalf("Expected 2 content parts, got %d", len(content))
		}
		imagePart := content[1].(map[string]interface{})
		url := imagePart["image_url"].(map[string]interface{})["url"].(string)
		if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
			t.Errorf("Expected data URL, got %s", url)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": `{"angle":"front 3/4"}`}},
			},
		})
	}))
	defer server.Close()

	provider := NewOpenAIProvider(server.URL, "test-key", "test-model")

	answer, err := provider.AnalyzeImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg", "Describe the angle")
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if !strings.Contains(answer, "front 3/4") {
		t.Errorf("Unexpected answer: %s", answer)
	}
}

func TestOpenAIProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(server.URL, "test-key", "")

	_, err := provider.GenerateText(context.Background(), "anything")
	if err == nil {
		t.Fatal("Expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status code in error, got: %v", err)
	}
}
