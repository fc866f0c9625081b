package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

// Request defaults.
const (
	DefaultVideoDuration       = 60
	DefaultVideoStyle          = "educational"
	DefaultVideoTargetAudience = "professionals"
	DefaultSocialTone          = "professional"
	DefaultVisualDimensions    = "1080x1080"
	DefaultPodcastDuration     = 30
	DefaultPodcastVoiceStyle   = "conversational"
	DefaultReportFormat        = "pdf"
)

// filenameToken restricts fields that end up inside stored filenames.
var filenameToken = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// VideoRequest asks for a narrated video script.
type VideoRequest struct {
	Topic          string `json:"topic"`
	Duration       int    `json:"duration"`
	Style          string `json:"style"`
	TargetAudience string `json:"target_audience"`
}

// NewVideoRequest returns a request pre-filled with defaults; decoding a JSON
// body into it keeps the defaults for absent fields.
func NewVideoRequest() VideoRequest {
	return VideoRequest{
		Duration:       DefaultVideoDuration,
		Style:          DefaultVideoStyle,
		TargetAudience: DefaultVideoTargetAudience,
	}
}

// UnmarshalJSON accepts integral floats such as 60.0 for duration.
func (r *VideoRequest) UnmarshalJSON(data []byte) error {
	type plain VideoRequest
	aux := struct {
		*plain
		Duration *json.Number `json:"duration"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Duration != nil {
		n, err := wholeNumber("duration", *aux.Duration)
		if err != nil {
			return err
		}
		r.Duration = n
	}
	return nil
}

func (r *VideoRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Reason: "is required"}
	}
	if r.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be positive"}
	}
	r.Style = coalesce(r.Style, DefaultVideoStyle)
	r.TargetAudience = coalesce(r.TargetAudience, DefaultVideoTargetAudience)
	return nil
}

// SocialPostRequest asks for a single post on one platform.
type SocialPostRequest struct {
	Platform        string `json:"platform"`
	Topic           string `json:"topic"`
	Tone            string `json:"tone"`
	IncludeHashtags bool   `json:"include_hashtags"`
}

func NewSocialPostRequest() SocialPostRequest {
	return SocialPostRequest{Tone: DefaultSocialTone, IncludeHashtags: true}
}

func (r *SocialPostRequest) Validate() error {
	r.Platform = strings.TrimSpace(r.Platform)
	if err := requireToken("platform", r.Platform); err != nil {
		return err
	}
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Reason: "is required"}
	}
	r.Tone = coalesce(r.Tone, DefaultSocialTone)
	return nil
}

// VisualRequest asks for one generated image.
type VisualRequest struct {
	Type        string `json:"type"`
	Style       string `json:"style"`
	Description string `json:"description"`
	Dimensions  string `json:"dimensions"`
}

func NewVisualRequest() VisualRequest {
	return VisualRequest{Dimensions: DefaultVisualDimensions}
}

func (r *VisualRequest) Validate() error {
	r.Type = strings.TrimSpace(r.Type)
	if err := requireToken("type", r.Type); err != nil {
		return err
	}
	r.Style = strings.TrimSpace(r.Style)
	if r.Style == "" {
		return &ValidationError{Field: "style", Reason: "is required"}
	}
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	r.Dimensions = coalesce(r.Dimensions, DefaultVisualDimensions)
	return nil
}

// PodcastRequest asks for a podcast script and its narration. Duration is in
// minutes.
type PodcastRequest struct {
	Topic        string `json:"topic"`
	Duration     int    `json:"duration"`
	VoiceStyle   string `json:"voice_style"`
	IncludeIntro bool   `json:"include_intro"`
}

func NewPodcastRequest() PodcastRequest {
	return PodcastRequest{
		Duration:     DefaultPodcastDuration,
		VoiceStyle:   DefaultPodcastVoiceStyle,
		IncludeIntro: true,
	}
}

func (r *PodcastRequest) UnmarshalJSON(data []byte) error {
	type plain PodcastRequest
	aux := struct {
		*plain
		Duration *json.Number `json:"duration"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Duration != nil {
		n, err := wholeNumber("duration", *aux.Duration)
		if err != nil {
			return err
		}
		r.Duration = n
	}
	return nil
}

func (r *PodcastRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Reason: "is required"}
	}
	if r.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be positive"}
	}
	r.VoiceStyle = coalesce(r.VoiceStyle, DefaultPodcastVoiceStyle)
	return nil
}

// ReportRequest asks for a written report.
type ReportRequest struct {
	Topic         string   `json:"topic"`
	DataSources   []string `json:"data_sources"`
	Format        string   `json:"format"`
	IncludeCharts bool     `json:"include_charts"`
}

func NewReportRequest() ReportRequest {
	return ReportRequest{DataSources: []string{}, Format: DefaultReportFormat, IncludeCharts: true}
}

func (r *ReportRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Reason: "is required"}
	}
	if r.DataSources == nil {
		r.DataSources = []string{}
	}
	r.Format = coalesce(r.Format, DefaultReportFormat)
	return nil
}

// WeeklyContentRequest asks for a week of posts across platforms.
type WeeklyContentRequest struct {
	Theme        string   `json:"theme"`
	Platforms    []string `json:"platforms"`
	ContentTypes []string `json:"content_types"`
	ScheduleDate string   `json:"schedule_date"`
}

func (r *WeeklyContentRequest) Validate() error {
	r.Theme = strings.TrimSpace(r.Theme)
	if r.Theme == "" {
		return &ValidationError{Field: "theme", Reason: "is required"}
	}
	if r.Platforms == nil {
		return &ValidationError{Field: "platforms", Reason: "is required"}
	}
	if r.ContentTypes == nil {
		return &ValidationError{Field: "content_types", Reason: "is required"}
	}
	r.ScheduleDate = strings.TrimSpace(r.ScheduleDate)
	if err := requireToken("schedule_date", r.ScheduleDate); err != nil {
		return err
	}
	return nil
}

// wholeNumber converts a JSON number with no fractional part to an int.
func wholeNumber(field string, n json.Number) (int, error) {
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, &ValidationError{Field: field, Reason: "must be an integer"}
	}
	return int(f), nil
}

func requireToken(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if !filenameToken.MatchString(value) {
		return &ValidationError{Field: field, Reason: "may only contain letters, digits, '-' and '_'"}
	}
	return nil
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
