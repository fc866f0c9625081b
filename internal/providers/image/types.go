// Package image renders visuals through an image generation API.
package image

import (
	"context"
	"strings"
)

// VisualType names a prompt template. Any other value uses the generic
// template.
type VisualType string

const (
	VisualPortrait VisualType = "portrait"
	VisualLogo     VisualType = "logo"
	VisualBanner   VisualType = "banner"
	VisualQuote    VisualType = "quote"
	VisualBranding VisualType = "branding"
)

// GenerateRequest describes a single image render.
type GenerateRequest struct {
	Prompt  string
	Size    string
	Quality string
}

// Asset is a rendered image after download.
type Asset struct {
	URL  string
	Data []byte
}

// Generator is the contract implemented by image providers. Failures are
// *domain.ProviderError.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
	Model() string
	Configured() bool
}

// normalizeVisualType lowercases and trims free-form input.
func normalizeVisualType(t string) VisualType {
	return VisualType(strings.ToLower(strings.TrimSpace(t)))
}
