// Package speech synthesizes narration audio through ElevenLabs.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NeousAxis/globalworkflow/internal/domain"
)

const (
	providerName = "elevenlabs"

	defaultBaseURL = "https://api.elevenlabs.io"
	defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	defaultModel   = "eleven_monolingual_v1"
	defaultTimeout = 60 * time.Second

	maxErrorBody = 4 << 10
)

// Synthesizer turns text into audio bytes. Failures are *domain.ProviderError.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceStyle string) ([]byte, error)
	Configured() bool
}

type Options struct {
	APIKey     string
	BaseURL    string
	VoiceID    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// VoiceSettings is the ElevenLabs voice_settings object.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

var defaultSettings = VoiceSettings{Stability: 0.5, SimilarityBoost: 0.5}

// styleSettings tunes delivery per requested voice style; unknown styles use
// defaultSettings.
var styleSettings = map[string]VoiceSettings{
	"conversational": defaultSettings,
	"narrative":      {Stability: 0.65, SimilarityBoost: 0.5},
	"energetic":      {Stability: 0.3, SimilarityBoost: 0.6},
	"calm":           {Stability: 0.8, SimilarityBoost: 0.5},
}

// SettingsFor returns the voice settings used for a style.
func SettingsFor(style string) VoiceSettings {
	if s, ok := styleSettings[strings.ToLower(strings.TrimSpace(style))]; ok {
		return s
	}
	return defaultSettings
}

type ElevenLabs struct {
	apiKey  string
	baseURL string
	voiceID string
	model   string
	client  *http.Client
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

func NewElevenLabs(opts Options) *ElevenLabs {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ElevenLabs{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		voiceID: orDefault(opts.VoiceID, defaultVoiceID),
		model:   orDefault(opts.Model, defaultModel),
		client:  client,
	}
}

func (e *ElevenLabs) Configured() bool { return e.apiKey != "" }

func (e *ElevenLabs) Synthesize(ctx context.Context, text, voiceStyle string) ([]byte, error) {
	if e.apiKey == "" {
		return nil, fail(domain.ProviderErrorConfig, errors.New("ELEVENLABS_API_KEY is not set"))
	}
	payload := ttsRequest{
		Text:          text,
		ModelID:       e.model,
		VoiceSettings: SettingsFor(voiceStyle),
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fail(domain.ProviderErrorTransport, err)
	}
	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, url.PathEscape(e.voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fail(domain.ProviderErrorTransport, err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fail(domain.ProviderErrorTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ProviderError{
			Provider: providerName,
			Kind:     domain.ProviderErrorStatus,
			Status:   resp.StatusCode,
			Body:     string(raw),
		}
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(domain.ProviderErrorDecode, err)
	}
	if len(audio) == 0 {
		return nil, fail(domain.ProviderErrorEmpty, errors.New("empty audio body"))
	}
	return audio, nil
}

var _ Synthesizer = (*ElevenLabs)(nil)

func fail(kind domain.ProviderErrorKind, err error) error {
	return &domain.ProviderError{Provider: providerName, Kind: kind, Err: err}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
