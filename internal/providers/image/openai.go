package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NeousAxis/globalworkflow/internal/domain"
)

const (
	providerName       = "openai-images"
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "dall-e-3"
	defaultQuality     = "hd"
	defaultTimeout     = 60 * time.Second
	maxErrorBody       = 4 << 10
	maxDownloadedBytes = 32 << 20
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// OpenAIImages renders through the images/generations endpoint and then
// downloads the hosted result.
type OpenAIImages struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
}

type generationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
	N       int    `json:"n"`
}

type generationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func NewOpenAIImages(opts OpenAIOptions) *OpenAIImages {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &OpenAIImages{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}
}

func (o *OpenAIImages) Model() string { return o.model }

func (o *OpenAIImages) Configured() bool { return o.apiKey != "" }

func (o *OpenAIImages) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if o.apiKey == "" {
		return nil, fail(domain.ProviderErrorConfig, errors.New("OPENAI_API_KEY is not set"))
	}
	size := req.Size
	if size == "" {
		size = defaultSize
	}
	quality := req.Quality
	if quality == "" {
		quality = defaultQuality
	}
	remoteURL, err := o.render(ctx, generationRequest{
		Model:   o.model,
		Prompt:  req.Prompt,
		Size:    size,
		Quality: quality,
		N:       1,
	})
	if err != nil {
		return nil, err
	}
	data, err := o.download(ctx, remoteURL)
	if err != nil {
		return nil, err
	}
	return &Asset{URL: remoteURL, Data: data}, nil
}

func (o *OpenAIImages) render(ctx context.Context, payload generationRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fail(domain.ProviderErrorTransport, err)
	}
	endpoint := fmt.Sprintf("%s/images/generations", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fail(domain.ProviderErrorTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fail(domain.ProviderErrorTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &domain.ProviderError{
			Provider: providerName,
			Kind:     domain.ProviderErrorStatus,
			Status:   resp.StatusCode,
			Body:     errorMessage(raw),
		}
	}
	var out generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fail(domain.ProviderErrorDecode, err)
	}
	if len(out.Data) == 0 || strings.TrimSpace(out.Data[0].URL) == "" {
		return "", fail(domain.ProviderErrorEmpty, errors.New("no image url in response"))
	}
	return out.Data[0].URL, nil
}

func (o *OpenAIImages) download(ctx context.Context, remoteURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, fail(domain.ProviderErrorDownload, err)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fail(domain.ProviderErrorDownload, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ProviderError{
			Provider: providerName,
			Kind:     domain.ProviderErrorDownload,
			Status:   resp.StatusCode,
			Err:      errors.New("failed to download image"),
		}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadedBytes))
	if err != nil {
		return nil, fail(domain.ProviderErrorDownload, err)
	}
	if len(data) == 0 {
		return nil, fail(domain.ProviderErrorDownload, errors.New("empty image body"))
	}
	return data, nil
}

var _ Generator = (*OpenAIImages)(nil)

func fail(kind domain.ProviderErrorKind, err error) error {
	return &domain.ProviderError{Provider: providerName, Kind: kind, Err: err}
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
