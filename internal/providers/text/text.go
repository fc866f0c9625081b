// Package text holds the chat-style text generation providers.
package text

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/NeousAxis/globalworkflow/internal/domain"
)

const (
	openAIProviderName = "openai"
	geminiProviderName = "gemini"

	// maxErrorBody bounds how much of a failed response body is kept.
	maxErrorBody = 4 << 10
)

// Prompt is a single system + user exchange.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Generator produces text for a prompt. Failures are *domain.ProviderError.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
	Name() string
	Configured() bool
}

func providerError(provider string, kind domain.ProviderErrorKind, err error) error {
	return &domain.ProviderError{Provider: provider, Kind: kind, Err: err}
}

// statusError reads a bounded slice of a non-2xx response and extracts the
// provider's error message when the body is the usual {"error":{"message"}}.
func statusError(provider string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &domain.ProviderError{
		Provider: provider,
		Kind:     domain.ProviderErrorStatus,
		Status:   resp.StatusCode,
		Body:     errorMessage(raw),
	}
}

func errorMessage(raw []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func errEmpty(what string) error {
	return fmt.Errorf("no %s in response", what)
}
