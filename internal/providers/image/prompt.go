package image

import (
	"fmt"
	"strings"
)

const defaultSize = "1024x1024"

var visualTemplates = map[VisualType]string{
	VisualPortrait: "Professional AI-generated portrait, %s style, %s, high quality, detailed, studio lighting",
	VisualLogo:     "Modern logo design, %s aesthetic, %s, clean, vector-style, professional branding",
	VisualBanner:   "Social media banner, %s design, %s, engaging, high-resolution, marketing-ready",
	VisualQuote:    "Inspirational quote visual, %s typography, %s, elegant design, social media ready",
	VisualBranding: "Brand identity visual, %s concept, %s, cohesive design, professional quality",
}

// sizeMap converts requested social dimensions to the nearest supported render size.
var sizeMap = map[string]string{
	"1080x1080": "1024x1024",
	"1920x1080": "1792x1024",
	"1080x1920": "1024x1792",
}

// BuildVisualPrompt fills the template for the visual type with style and
// description.
func BuildVisualPrompt(visualType, style, description string) string {
	style = strings.TrimSpace(style)
	description = strings.TrimSpace(description)
	if tmpl, ok := visualTemplates[normalizeVisualType(visualType)]; ok {
		return fmt.Sprintf(tmpl, style, description)
	}
	return fmt.Sprintf("%s style visual: %s", style, description)
}

// SizeFor maps "WxH" dimensions to a render size, defaulting to a square.
func SizeFor(dimensions string) string {
	if size, ok := sizeMap[strings.TrimSpace(dimensions)]; ok {
		return size
	}
	return defaultSize
}
