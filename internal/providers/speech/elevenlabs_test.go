package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeousAxis/globalworkflow/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func respond(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(body))}
}

func TestSynthesizeRequestShape(t *testing.T) {
	var captured ttsRequest
	client := NewElevenLabs(Options{
		APIKey:  "xi",
		BaseURL: "https://tts.example/",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, "/v1/text-to-speech/21m00Tcm4TlvDq8ikWAM", r.URL.Path)
			assert.Equal(t, "tts.example", r.URL.Host)
			assert.Equal(t, "xi", r.Header.Get("xi-api-key"))
			assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			return respond(200, "ID3audio"), nil
		})},
	})

	audio, err := client.Synthesize(context.Background(), "hello there", "conversational")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), audio)
	assert.Equal(t, "hello there", captured.Text)
	assert.Equal(t, "eleven_monolingual_v1", captured.ModelID)
	assert.Equal(t, VoiceSettings{Stability: 0.5, SimilarityBoost: 0.5}, captured.VoiceSettings)
}

func TestSynthesizeFailures(t *testing.T) {
	cases := []struct {
		name string
		key  string
		resp *http.Response
		err  error
		kind domain.ProviderErrorKind
	}{
		{name: "missing key", kind: domain.ProviderErrorConfig},
		{name: "transport", key: "k", err: errors.New("timeout"), kind: domain.ProviderErrorTransport},
		{name: "status", key: "k", resp: respond(401, `{"detail":"invalid key"}`), kind: domain.ProviderErrorStatus},
		{name: "empty", key: "k", resp: respond(200, ""), kind: domain.ProviderErrorEmpty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewElevenLabs(Options{
				APIKey: tc.key,
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					return tc.resp, tc.err
				})},
			})
			_, err := client.Synthesize(context.Background(), "x", "")
			var perr *domain.ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.kind, perr.Kind)
			assert.Equal(t, "elevenlabs", perr.Provider)
		})
	}
}

func TestSynthesizeStatusKeepsBody(t *testing.T) {
	client := NewElevenLabs(Options{
		APIKey: "k",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return respond(429, "quota exceeded"), nil
		})},
	})
	_, err := client.Synthesize(context.Background(), "x", "")
	require.Error(t, err)
	assert.Equal(t, "Error during audio generation: elevenlabs: status 429 - quota exceeded", domain.DegradedText("audio generation", err))
}

func TestSettingsFor(t *testing.T) {
	assert.Equal(t, defaultSettings, SettingsFor("unknown"))
	assert.Equal(t, defaultSettings, SettingsFor(""))
	assert.Equal(t, styleSettings["calm"], SettingsFor(" Calm "))
}
