package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/internal/metrics"
	"github.com/NeousAxis/globalworkflow/internal/providers/image"
)

const (
	weeklyPostsType  = "posts"
	weeklyItemType   = "post"
	weeklyTone       = "professional"
	weeklyPreviewLen = 2
	reportStampFmt   = "20060102_150405"
)

// WeeklyItem is one generated post of a weekly plan.
type WeeklyItem struct {
	Platform string `json:"platform"`
	Type     string `json:"type"`
	Content  string `json:"content"`
}

// CreateVideo writes a script, narrates it and stores both.
func (s *Service) CreateVideo(ctx context.Context, locale string, req domain.VideoRequest) (*domain.Envelope, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	script, ok := s.generateText(ctx, actionScript, scriptPrompt(req.Topic, req.Duration, req.Style, req.TargetAudience, locale))
	audioURL, err := s.narrateIf(ctx, ok, script, domain.DefaultPodcastVoiceStyle)
	if err != nil {
		return nil, err
	}
	scriptArtifact, err := s.persistText(ctx, script, domain.ContentKindVideo, fmt.Sprintf("script_%s.txt", s.suffix()))
	if err != nil {
		return nil, err
	}
	cp := s.copy.For(locale)
	return s.envelope(domain.ServiceVideo,
		map[string]any{
			"script":     script,
			"script_url": scriptArtifact.URL,
			"audio_url":  audioURL,
			"storyboard": cp.Storyboard,
		},
		map[string]any{
			"duration":        req.Duration,
			"style":           req.Style,
			"topic":           req.Topic,
			"target_audience": req.TargetAudience,
		},
		s.copy.Suggestions(locale, domain.ServiceVideo, nil),
	)
}

// GenerateSocial writes one post for a platform.
func (s *Service) GenerateSocial(ctx context.Context, locale string, req domain.SocialPostRequest) (*domain.Envelope, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	post, _ := s.generateText(ctx, actionPost, socialPrompt(req.Platform, req.Topic, req.Tone, req.IncludeHashtags, locale))
	artifact, err := s.persistText(ctx, post, domain.ContentKindSocial, fmt.Sprintf("%s_post_%s.txt", req.Platform, s.suffix()))
	if err != nil {
		return nil, err
	}
	return s.envelope(domain.ServiceSocial,
		map[string]any{
			"post":            post,
			"post_url":        artifact.URL,
			"platform":        req.Platform,
			"character_count": utf8.RuneCountInString(post),
		},
		map[string]any{
			"platform": req.Platform,
			"tone":     req.Tone,
			"topic":    req.Topic,
		},
		s.copy.Suggestions(locale, domain.ServiceSocial, map[string]string{"platform": req.Platform}),
	)
}

// CreateVisual renders and stores an image. Unlike the text services a
// provider failure is returned to the caller.
func (s *Service) CreateVisual(ctx context.Context, locale string, req domain.VisualRequest) (*domain.Envelope, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	prompt := image.BuildVisualPrompt(req.Type, req.Style, req.Description)
	asset, err := s.images.Generate(ctx, image.GenerateRequest{Prompt: prompt, Size: image.SizeFor(req.Dimensions)})
	if err != nil {
		s.metrics.IncProviderCall(s.images.Model(), metrics.OutcomeFailed)
		s.log(ctx).Error().Err(err).Str("provider", s.images.Model()).Msg("visual generation failed")
		return nil, fmt.Errorf("visual generation: %w", err)
	}
	s.metrics.IncProviderCall(s.images.Model(), metrics.OutcomeOK)
	filename := fmt.Sprintf("%s_%s.png", req.Type, s.suffix())
	artifact, err := s.persist(ctx, asset.Data, domain.ContentKindImage, filename)
	if err != nil {
		return nil, err
	}
	return s.envelope(domain.ServiceVisual,
		map[string]any{
			"type":         req.Type,
			"style":        req.Style,
			"description":  req.Description,
			"image_url":    artifact.URL,
			"original_url": asset.URL,
			"filename":     filename,
			"prompt_used":  prompt,
			"dimensions":   req.Dimensions,
		},
		map[string]any{
			"type":       req.Type,
			"style":      req.Style,
			"model_used": s.images.Model(),
			"dimensions": req.Dimensions,
		},
		s.copy.Suggestions(locale, domain.ServiceVisual, nil),
	)
}

// CreatePodcast writes a podcast script, narrates it with the requested voice
// style and stores both.
func (s *Service) CreatePodcast(ctx context.Context, locale string, req domain.PodcastRequest) (*domain.Envelope, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	script, ok := s.generateText(ctx, actionScript, podcastPrompt(req.Topic, req.Duration, req.IncludeIntro, locale))
	audioURL, err := s.narrateIf(ctx, ok, script, req.VoiceStyle)
	if err != nil {
		return nil, err
	}
	scriptArtifact, err := s.persistText(ctx, script, domain.ContentKindAudio, fmt.Sprintf("podcast_script_%s.txt", s.suffix()))
	if err != nil {
		return nil, err
	}
	return s.envelope(domain.ServicePodcast,
		map[string]any{
			"script":           script,
			"script_url":       scriptArtifact.URL,
			"audio_url":        audioURL,
			"duration_minutes": req.Duration,
		},
		map[string]any{
			"topic":         req.Topic,
			"duration":      req.Duration,
			"voice_style":   req.VoiceStyle,
			"include_intro": req.IncludeIntro,
		},
		s.copy.Suggestions(locale, domain.ServicePodcast, nil),
	)
}

// GenerateReport writes a report. When the provider fails nothing is stored
// and report_url carries the error text.
func (s *Service) GenerateReport(ctx context.Context, locale string, req domain.ReportRequest) (*domain.Envelope, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	report, ok := s.generateText(ctx, actionReport, reportPrompt(req.Topic, req.DataSources, req.Format, req.IncludeCharts, locale))
	reportURL := report
	if ok {
		filename := fmt.Sprintf("rapport_%s.txt", s.clock.Now().Format(reportStampFmt))
		artifact, err := s.persistText(ctx, report, domain.ContentKindDocument, filename)
		if err != nil {
			return nil, err
		}
		reportURL = artifact.URL
	}
	cp := s.copy.For(locale)
	return s.envelope(domain.ServiceReport,
		map[string]any{
			"report_url": reportURL,
			"format":     req.Format,
			"sections":   cp.ReportSections,
		},
		map[string]any{
			"topic":          req.Topic,
			"format":         req.Format,
			"data_sources":   req.DataSources,
			"include_charts": req.IncludeCharts,
		},
		s.copy.Suggestions(locale, domain.ServiceReport, nil),
	)
}

// GenerateWeekly writes one post per platform for every "posts" content type
// and stores the plan as JSON.
func (s *Service) GenerateWeekly(ctx context.Context, locale string, req domain.WeeklyContentRequest) (*domain.Envelope, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	topic := strings.NewReplacer("{theme}", req.Theme, "{date}", req.ScheduleDate).Replace(s.copy.For(locale).WeeklyTopic)
	items := []WeeklyItem{}
	for _, platform := range req.Platforms {
		for _, contentType := range req.ContentTypes {
			if contentType != weeklyPostsType {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			post, _ := s.generateText(ctx, actionPost, socialPrompt(platform, topic, weeklyTone, true, locale))
			items = append(items, WeeklyItem{Platform: platform, Type: weeklyItemType, Content: post})
		}
	}
	plan, err := encodePlan(items)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("planning_hebdo_%s.json", strings.ReplaceAll(req.ScheduleDate, "-", ""))
	artifact, err := s.persist(ctx, plan, domain.ContentKindSocial, filename)
	if err != nil {
		return nil, err
	}
	preview := items
	if len(preview) > weeklyPreviewLen {
		preview = preview[:weeklyPreviewLen]
	}
	return s.envelope(domain.ServiceWeekly,
		map[string]any{
			"planning_url":  artifact.URL,
			"content_items": len(items),
			"preview":       preview,
		},
		map[string]any{
			"theme":         req.Theme,
			"platforms":     req.Platforms,
			"content_types": req.ContentTypes,
			"schedule_date": req.ScheduleDate,
		},
		s.copy.Suggestions(locale, domain.ServiceWeekly, nil),
	)
}

// narrateIf narrates the script only when it was generated.
func (s *Service) narrateIf(ctx context.Context, generated bool, script, voiceStyle string) (string, error) {
	if !generated {
		return domain.DegradedText(actionAudio, errNoScript), nil
	}
	return s.narrate(ctx, script, voiceStyle)
}

// encodePlan renders the plan with two-space indentation and unescaped UTF-8.
func encodePlan(items []WeeklyItem) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("encode weekly plan: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
