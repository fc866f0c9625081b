package generation

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/internal/providers/image"
	"github.com/NeousAxis/globalworkflow/internal/providers/text"
	"github.com/NeousAxis/globalworkflow/internal/storage"
)

type stubText struct {
	mu      sync.Mutex
	reply   func(p text.Prompt) (string, error)
	prompts []text.Prompt
}

func (s *stubText) Generate(_ context.Context, p text.Prompt) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, p)
	s.mu.Unlock()
	if s.reply == nil {
		return "generated text", nil
	}
	return s.reply(p)
}

func (s *stubText) Name() string     { return "stub-text" }
func (s *stubText) Configured() bool { return true }

type stubSpeech struct {
	err    error
	calls  int
	styles []string
}

func (s *stubSpeech) Synthesize(_ context.Context, script, style string) ([]byte, error) {
	s.calls++
	s.styles = append(s.styles, style)
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3:" + script), nil
}

func (s *stubSpeech) Configured() bool { return true }

type stubImages struct {
	err     error
	lastReq image.GenerateRequest
}

func (s *stubImages) Generate(_ context.Context, req image.GenerateRequest) (*image.Asset, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &image.Asset{URL: "https://cdn.example/img.png", Data: []byte("png-bytes")}, nil
}

func (s *stubImages) Model() string    { return "dall-e-3" }
func (s *stubImages) Configured() bool { return true }

type fixture struct {
	svc    *Service
	store  *storage.FileStore
	text   *stubText
	speech *stubSpeech
	images *stubImages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), "http://x/")
	require.NoError(t, err)
	require.NoError(t, store.EnsureLayout())
	f := &fixture{store: store, text: &stubText{}, speech: &stubSpeech{}, images: &stubImages{}}
	clockTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	f.svc, err = NewService(Options{
		Text:   f.text,
		Speech: f.speech,
		Images: f.images,
		Store:  store,
		Clock:  domain.NewClock(func() time.Time { return clockTime }),
		Logger: zerolog.Nop(),
		Suffix: func() string { return "deadbeef" },
	})
	require.NoError(t, err)
	return f
}

func providerFailure() error {
	return &domain.ProviderError{Provider: "openai", Kind: domain.ProviderErrorStatus, Status: 401, Body: "Incorrect API key"}
}

func readStored(t *testing.T, store *storage.FileStore, folder, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(store.BasePath(), folder, name))
	require.NoError(t, err)
	return string(data)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(Options{})
	require.Error(t, err)
	_, err = NewService(Options{Text: &stubText{}, Speech: &stubSpeech{}, Images: &stubImages{}})
	require.Error(t, err)
}

func TestCreateVideo(t *testing.T) {
	f := newFixture(t)
	f.text.reply = func(text.Prompt) (string, error) { return "Scene 1: hello", nil }

	env, err := f.svc.CreateVideo(context.Background(), "en", domain.VideoRequest{Topic: "Go", Duration: 45})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSuccess, env.Status)
	assert.Equal(t, domain.ServiceVideo, env.Service)
	assert.Equal(t, "Scene 1: hello", env.Content["script"])
	assert.Equal(t, "http://x/files/videos/script_deadbeef.txt", env.Content["script_url"])
	assert.Equal(t, "http://x/files/podcasts/audio_deadbeef.mp3", env.Content["audio_url"])
	assert.Len(t, env.Content["storyboard"], 3)
	assert.Equal(t, 45, env.Metadata["duration"])
	assert.Equal(t, "educational", env.Metadata["style"])
	assert.Equal(t, "professionals", env.Metadata["target_audience"])
	assert.Contains(t, env.Metadata, domain.MetadataCreatedAt)
	assert.Equal(t, "Scene 1: hello", readStored(t, f.store, "videos", "script_deadbeef.txt"))
	assert.Equal(t, "mp3:Scene 1: hello", readStored(t, f.store, "podcasts", "audio_deadbeef.mp3"))

	require.Len(t, f.text.prompts, 1)
	assert.Contains(t, f.text.prompts[0].User, "45-second")
	assert.Equal(t, 1000, f.text.prompts[0].MaxTokens)
}

func TestCreateVideoDegradesWhenScriptFails(t *testing.T) {
	f := newFixture(t)
	f.text.reply = func(text.Prompt) (string, error) { return "", providerFailure() }

	env, err := f.svc.CreateVideo(context.Background(), "en", domain.VideoRequest{Topic: "Go", Duration: 60})
	require.NoError(t, err)

	script := env.Content["script"].(string)
	assert.True(t, strings.HasPrefix(script, "Error during script generation: openai: status 401"), script)
	assert.Equal(t, "Error during audio generation: no script to narrate", env.Content["audio_url"])
	assert.Zero(t, f.speech.calls)
	assert.Equal(t, script, readStored(t, f.store, "videos", "script_deadbeef.txt"))
}

func TestCreateVideoDegradesWhenAudioFails(t *testing.T) {
	f := newFixture(t)
	f.speech.err = &domain.ProviderError{Provider: "elevenlabs", Kind: domain.ProviderErrorStatus, Status: 429, Body: "quota"}

	env, err := f.svc.CreateVideo(context.Background(), "en", domain.VideoRequest{Topic: "Go", Duration: 60})
	require.NoError(t, err)
	assert.Equal(t, "Error during audio generation: elevenlabs: status 429 - quota", env.Content["audio_url"])
	assert.Equal(t, "generated text", env.Content["script"])
}

func TestCreateVideoRejectsInvalidRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateVideo(context.Background(), "en", domain.VideoRequest{Topic: " ", Duration: 60})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, f.text.prompts)
}

func TestGenerateSocial(t *testing.T) {
	f := newFixture(t)
	f.text.reply = func(text.Prompt) (string, error) { return "Ça marche #go", nil }

	env, err := f.svc.GenerateSocial(context.Background(), "fr", domain.SocialPostRequest{Platform: "linkedin", Topic: "Go", Tone: "casual", IncludeHashtags: false})
	require.NoError(t, err)

	assert.Equal(t, "http://x/files/social/linkedin_post_deadbeef.txt", env.Content["post_url"])
	assert.Equal(t, 13, env.Content["character_count"])
	assert.Equal(t, "casual", env.Metadata["tone"])
	assert.Equal(t, "Optimal pour linkedin", env.OptimizationSuggestions[0])
	assert.Contains(t, f.text.prompts[0].User, "Do not include hashtags.")
	assert.Contains(t, f.text.prompts[0].System, "Answer in French.")
}

func TestSocialProviderFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.text.reply = func(text.Prompt) (string, error) { return "", providerFailure() }

	env, err := f.svc.GenerateSocial(context.Background(), "en", domain.SocialPostRequest{Platform: "x", Topic: "Go", Tone: "professional"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, env.Status)
	assert.Contains(t, env.Content["post"], "Error during post generation")
}

func TestCreateVisual(t *testing.T) {
	f := newFixture(t)

	env, err := f.svc.CreateVisual(context.Background(), "en", domain.VisualRequest{Type: "logo", Style: "flat", Description: "a gopher", Dimensions: "1920x1080"})
	require.NoError(t, err)

	assert.Equal(t, "1792x1024", f.images.lastReq.Size)
	assert.Equal(t, "Modern logo design, flat aesthetic, a gopher, clean, vector-style, professional branding", env.Content["prompt_used"])
	assert.Equal(t, "http://x/files/images/logo_deadbeef.png", env.Content["image_url"])
	assert.Equal(t, "https://cdn.example/img.png", env.Content["original_url"])
	assert.Equal(t, "logo_deadbeef.png", env.Content["filename"])
	assert.Equal(t, "dall-e-3", env.Metadata["model_used"])
	assert.Equal(t, "png-bytes", readStored(t, f.store, "images", "logo_deadbeef.png"))
}

func TestVisualProviderFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	f.images.err = &domain.ProviderError{Provider: "openai-images", Kind: domain.ProviderErrorDownload, Err: errors.New("failed to download image")}

	env, err := f.svc.CreateVisual(context.Background(), "en", domain.VisualRequest{Type: "logo", Style: "flat", Description: "a gopher"})
	require.Error(t, err)
	assert.Nil(t, env)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)

	entries, err := os.ReadDir(filepath.Join(f.store.BasePath(), "images"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreatePodcast(t *testing.T) {
	f := newFixture(t)

	env, err := f.svc.CreatePodcast(context.Background(), "en", domain.PodcastRequest{Topic: "Go", Duration: 30, VoiceStyle: "calm", IncludeIntro: true})
	require.NoError(t, err)

	assert.Equal(t, "http://x/files/podcasts/podcast_script_deadbeef.txt", env.Content["script_url"])
	assert.Equal(t, "http://x/files/podcasts/audio_deadbeef.mp3", env.Content["audio_url"])
	assert.Equal(t, 30, env.Content["duration_minutes"])
	assert.Equal(t, true, env.Metadata["include_intro"])
	assert.Equal(t, []string{"calm"}, f.speech.styles)
	assert.Contains(t, f.text.prompts[0].User, "1800-second")
	assert.Contains(t, f.text.prompts[0].User, "conversational podcast")
	assert.Contains(t, f.text.prompts[0].User, "introduction of the show")
}

func TestGenerateReport(t *testing.T) {
	f := newFixture(t)

	env, err := f.svc.GenerateReport(context.Background(), "en", domain.ReportRequest{Topic: "Go", DataSources: []string{"a", "b"}, Format: "pdf"})
	require.NoError(t, err)

	assert.Equal(t, "http://x/files/reports/rapport_20240115_103000.txt", env.Content["report_url"])
	assert.Equal(t, []string{"Introduction", "Analysis", "Conclusions", "Recommendations"}, env.Content["sections"])
	assert.Equal(t, []string{"a", "b"}, env.Metadata["data_sources"])
	assert.Contains(t, f.text.prompts[0].User, "Data sources: a, b.")
	assert.Equal(t, 2000, f.text.prompts[0].MaxTokens)
	assert.InDelta(t, 0.3, f.text.prompts[0].Temperature, 1e-9)
}

func TestGenerateReportFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	f.text.reply = func(text.Prompt) (string, error) { return "", providerFailure() }

	env, err := f.svc.GenerateReport(context.Background(), "en", domain.ReportRequest{Topic: "Go"})
	require.NoError(t, err)
	assert.Contains(t, env.Content["report_url"], "Error during report generation")
	assert.Contains(t, f.text.prompts[0].User, "Data sources: General analysis.")

	entries, err := os.ReadDir(filepath.Join(f.store.BasePath(), "reports"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateWeekly(t *testing.T) {
	f := newFixture(t)
	f.text.reply = func(p text.Prompt) (string, error) { return "post " + p.User[:12], nil }

	env, err := f.svc.GenerateWeekly(context.Background(), "en", domain.WeeklyContentRequest{
		Theme:        "Launch",
		Platforms:    []string{"linkedin", "x", "instagram"},
		ContentTypes: []string{"posts", "stories"},
		ScheduleDate: "2024-01-15",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://x/files/social/planning_hebdo_20240115.json", env.Content["planning_url"])
	assert.Equal(t, 3, env.Content["content_items"])
	preview := env.Content["preview"].([]WeeklyItem)
	require.Len(t, preview, 2)
	assert.Equal(t, "linkedin", preview[0].Platform)
	assert.Equal(t, "post", preview[0].Type)
	require.Len(t, f.text.prompts, 3)
	assert.Contains(t, f.text.prompts[0].User, "'Launch - week of 2024-01-15'")
	assert.Contains(t, f.text.prompts[0].User, "Include relevant hashtags.")

	raw := readStored(t, f.store, "social", "planning_hebdo_20240115.json")
	assert.True(t, strings.HasPrefix(raw, "[\n  {\n    \"platform\": \"linkedin\""), raw)
	var plan []WeeklyItem
	require.NoError(t, json.Unmarshal([]byte(raw), &plan))
	assert.Len(t, plan, 3)
}

func TestGenerateWeeklyWithoutPosts(t *testing.T) {
	f := newFixture(t)

	env, err := f.svc.GenerateWeekly(context.Background(), "fr", domain.WeeklyContentRequest{
		Theme:        "Lancement",
		Platforms:    []string{"x"},
		ContentTypes: []string{"stories"},
		ScheduleDate: "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.Content["content_items"])
	assert.Empty(t, env.Content["preview"])
	assert.Equal(t, "[]", readStored(t, f.store, "social", "planning_hebdo_20240115.json"))
}

func TestWeeklyTopicIsLocalized(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GenerateWeekly(context.Background(), "fr", domain.WeeklyContentRequest{
		Theme:        "Lancement",
		Platforms:    []string{"x"},
		ContentTypes: []string{"posts"},
		ScheduleDate: "2024-01-15",
	})
	require.NoError(t, err)
	assert.Contains(t, f.text.prompts[0].User, "'Lancement - Semaine du 2024-01-15'")
}

func TestCreatedAtIsNonDecreasing(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "http://x")
	require.NoError(t, err)
	require.NoError(t, store.EnsureLayout())
	svc, err := NewService(Options{Text: &stubText{}, Speech: &stubSpeech{}, Images: &stubImages{}, Store: store})
	require.NoError(t, err)

	var last time.Time
	for i := 0; i < 5; i++ {
		env, err := svc.GenerateSocial(context.Background(), "en", domain.SocialPostRequest{Platform: "x", Topic: "Go", Tone: "professional"})
		require.NoError(t, err)
		stamp, err := time.Parse(time.RFC3339Nano, env.Metadata[domain.MetadataCreatedAt].(string))
		require.NoError(t, err)
		assert.False(t, stamp.Before(last))
		last = stamp
	}
}

func TestRandomSuffix(t *testing.T) {
	s := randomSuffix()
	assert.Len(t, s, 8)
	assert.Regexp(t, `^[0-9a-f]{8}$`, s)
}

func TestWithLanguage(t *testing.T) {
	assert.Equal(t, "sys", withLanguage("sys", "en"))
	assert.Equal(t, "sys", withLanguage("sys", ""))
	assert.Equal(t, "sys Answer in French.", withLanguage("sys", "fr"))
	assert.Equal(t, "sys", withLanguage("sys", "not a tag!"))
}
