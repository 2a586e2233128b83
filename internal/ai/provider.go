// Package ai abstracts the text and vision model providers behind a single
// interface so services never care which vendor is configured. Provider
// selection happens once at startup from environment variables; a fully
// unconfigured deployment runs with no provider and the dependent features
// degrade instead of failing.
package ai

import (
	"context"
	"log"
	"os"
)

// Provider is a configured text/vision model backend.
type Provider interface {
	// Name identifies the backend for logs.
	Name() string
	// GenerateText runs a plain text prompt and returns the model's reply.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// AnalyzeImage sends image bytes plus an instruction prompt and returns
	// the model's textual answer.
	AnalyzeImage(ctx context.Context, data []byte, mimeType string, prompt string) (string, error)
}

// FromEnv builds the provider named by AI_PROVIDER ("gemini" or "openai",
// default gemini). Returns nil with no error when the relevant API key is
// absent: callers treat a nil provider as "AI features off".
func FromEnv() (Provider, error) {
	providerName := os.Getenv("AI_PROVIDER")
	if providerName == "" {
		providerName = "gemini"
	}

	switch providerName {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Printf("⚠️  OPENAI_API_KEY not set, AI features disabled")
			return nil, nil
		}
		return NewOpenAIProvider(os.Getenv("OPENAI_BASE_URL"), apiKey, os.Getenv("OPENAI_MODEL")), nil
	default:
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Printf("⚠️  GEMINI_API_KEY not set, AI features disabled")
			return nil, nil
		}
		return NewGeminiProvider(apiKey, os.Getenv("GEMINI_MODEL"))
	}
}
