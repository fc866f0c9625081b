// Package generation runs each content request through its providers, stores
// the results and wraps them in a response envelope.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/internal/metrics"
	"github.com/NeousAxis/globalworkflow/internal/providers/image"
	"github.com/NeousAxis/globalworkflow/internal/providers/speech"
	"github.com/NeousAxis/globalworkflow/internal/providers/text"
)

// ArtifactStore persists generated bytes under the storage root.
type ArtifactStore interface {
	Store(ctx context.Context, data []byte, kind domain.ContentKind, filename string) (*domain.StoredArtifact, error)
}

// Options wires a Service. Suffix overrides the random part of generated
// filenames.
type Options struct {
	Text    text.Generator
	Speech  speech.Synthesizer
	Images  image.Generator
	Store   ArtifactStore
	Copy    *domain.CopyCatalog
	Clock   *domain.Clock
	Metrics metrics.Recorder
	Logger  zerolog.Logger
	Suffix  func() string
}

type Service struct {
	text      text.Generator
	speech    speech.Synthesizer
	images    image.Generator
	store     ArtifactStore
	copy      *domain.CopyCatalog
	clock     *domain.Clock
	envelopes *domain.EnvelopeBuilder
	metrics   metrics.Recorder
	logger    zerolog.Logger
	suffix    func() string
}

func NewService(opts Options) (*Service, error) {
	if opts.Text == nil || opts.Speech == nil || opts.Images == nil {
		return nil, errors.New("generation: text, speech and image providers are required")
	}
	if opts.Store == nil {
		return nil, errors.New("generation: store is required")
	}
	catalog := opts.Copy
	if catalog == nil {
		var err error
		if catalog, err = domain.LoadCopyCatalog(); err != nil {
			return nil, err
		}
	}
	clock := opts.Clock
	if clock == nil {
		clock = domain.NewClock(nil)
	}
	recorder := opts.Metrics
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	suffix := opts.Suffix
	if suffix == nil {
		suffix = randomSuffix
	}
	return &Service{
		text:      opts.Text,
		speech:    opts.Speech,
		images:    opts.Images,
		store:     opts.Store,
		copy:      catalog,
		clock:     clock,
		envelopes: domain.NewEnvelopeBuilder(clock),
		metrics:   recorder,
		logger:    opts.Logger,
		suffix:    suffix,
	}, nil
}

// Copy exposes the static copy catalog for the descriptor endpoint.
func (s *Service) Copy() *domain.CopyCatalog { return s.copy }

// randomSuffix is the first 8 hex digits of a random UUID.
func randomSuffix() string {
	return uuid.NewString()[:8]
}

func (s *Service) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

// generateText returns the provider's text, or the degraded error text when
// the provider fails. The bool reports success.
func (s *Service) generateText(ctx context.Context, action string, p text.Prompt) (string, bool) {
	out, err := s.text.Generate(ctx, p)
	if err != nil {
		s.metrics.IncProviderCall(s.text.Name(), metrics.OutcomeDegraded)
		s.log(ctx).Warn().Err(err).Str("provider", s.text.Name()).Str("action", action).Msg("text generation degraded")
		return domain.DegradedText(action, err), false
	}
	s.metrics.IncProviderCall(s.text.Name(), metrics.OutcomeOK)
	return out, true
}

// narrate synthesizes and stores audio, returning its URL or the degraded
// error text.
func (s *Service) narrate(ctx context.Context, script, voiceStyle string) (string, error) {
	audio, err := s.speech.Synthesize(ctx, script, voiceStyle)
	if err != nil {
		s.metrics.IncProviderCall(speechProvider, metrics.OutcomeDegraded)
		s.log(ctx).Warn().Err(err).Str("provider", speechProvider).Msg("audio generation degraded")
		return domain.DegradedText(actionAudio, err), nil
	}
	s.metrics.IncProviderCall(speechProvider, metrics.OutcomeOK)
	artifact, err := s.persist(ctx, audio, domain.ContentKindAudio, fmt.Sprintf("audio_%s.mp3", s.suffix()))
	if err != nil {
		return "", err
	}
	return artifact.URL, nil
}

func (s *Service) persist(ctx context.Context, data []byte, kind domain.ContentKind, filename string) (*domain.StoredArtifact, error) {
	artifact, err := s.store.Store(ctx, data, kind, filename)
	if err != nil {
		s.log(ctx).Error().Err(err).Str("filename", filename).Str("folder", kind.Folder()).Msg("store artifact")
		return nil, err
	}
	s.metrics.ObserveArtifact(artifact.Folder, artifact.Size)
	s.log(ctx).Debug().Str("path", artifact.Path).Int64("bytes", artifact.Size).Msg("artifact stored")
	return artifact, nil
}

func (s *Service) persistText(ctx context.Context, content string, kind domain.ContentKind, filename string) (*domain.StoredArtifact, error) {
	return s.persist(ctx, []byte(content), kind, filename)
}

func (s *Service) envelope(service string, content, metadata map[string]any, suggestions []string) (*domain.Envelope, error) {
	return s.envelopes.Build(domain.StatusSuccess, service, content, metadata, suggestions)
}

const (
	speechProvider = "elevenlabs"

	actionScript = "script generation"
	actionPost   = "post generation"
	actionAudio  = "audio generation"
	actionReport = "report generation"
)

// errNoScript is the audio failure reported when there was no script to narrate.
var errNoScript = errors.New("no script to narrate")
