package domain

import (
	"errors"
	"sync"
	"time"
)

// StatusSuccess is the only status the service reports; failures are HTTP
// errors, not envelopes.
const StatusSuccess = "success"

// Service tags carried by the envelope.
const (
	ServiceVideo   = "video_creation"
	ServiceSocial  = "social_content"
	ServiceVisual  = "visual_identity"
	ServicePodcast = "podcast_production"
	ServiceReport  = "report_generation"
	ServiceWeekly  = "weekly_content"
)

// MetadataCreatedAt is the metadata key holding the envelope timestamp.
const MetadataCreatedAt = "created_at"

// Envelope is the uniform response returned by every generation endpoint.
type Envelope struct {
	Status                  string         `json:"status"`
	Service                 string         `json:"service"`
	Content                 map[string]any `json:"content"`
	Metadata                map[string]any `json:"metadata"`
	OptimizationSuggestions []string       `json:"optimization_suggestions"`
}

// Clock returns timestamps that never go backwards within one process, even if
// the wall clock is stepped back.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock wraps now; a nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Now returns max(previous, now()).
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Round(0) drops the monotonic reading so the comparison uses the wall
	// time that gets formatted.
	t := c.now().Round(0)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}

// EnvelopeBuilder assembles envelopes stamped by its clock.
type EnvelopeBuilder struct {
	clock *Clock
}

// NewEnvelopeBuilder returns a builder; a nil clock uses the wall clock.
func NewEnvelopeBuilder(clock *Clock) *EnvelopeBuilder {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &EnvelopeBuilder{clock: clock}
}

// Build assembles an envelope. The metadata map is copied and always receives
// a created_at timestamp generated now, overriding any caller value. The
// suggestions keep the caller's order.
func (b *EnvelopeBuilder) Build(status, service string, content, metadata map[string]any, suggestions []string) (*Envelope, error) {
	if status == "" {
		return nil, errors.New("envelope: status is required")
	}
	if service == "" {
		return nil, errors.New("envelope: service is required")
	}
	if content == nil {
		content = map[string]any{}
	}
	meta := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[MetadataCreatedAt] = b.clock.Now().Format(time.RFC3339Nano)
	ordered := make([]string, len(suggestions))
	copy(ordered, suggestions)
	return &Envelope{
		Status:                  status,
		Service:                 service,
		Content:                 content,
		Metadata:                meta,
		OptimizationSuggestions: ordered,
	}, nil
}
