package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/internal/storage"
)

// Version is reported by the service descriptor.
const Version = "1.0.0"

const maxBodyBytes = 1 << 20

// ContentService runs the generation requests.
type ContentService interface {
	CreateVideo(ctx context.Context, locale string, req domain.VideoRequest) (*domain.Envelope, error)
	GenerateSocial(ctx context.Context, locale string, req domain.SocialPostRequest) (*domain.Envelope, error)
	CreateVisual(ctx context.Context, locale string, req domain.VisualRequest) (*domain.Envelope, error)
	CreatePodcast(ctx context.Context, locale string, req domain.PodcastRequest) (*domain.Envelope, error)
	GenerateReport(ctx context.Context, locale string, req domain.ReportRequest) (*domain.Envelope, error)
	GenerateWeekly(ctx context.Context, locale string, req domain.WeeklyContentRequest) (*domain.Envelope, error)
	Copy() *domain.CopyCatalog
}

// FileCatalog is the read side of the storage tree.
type FileCatalog interface {
	BasePath() string
	ListAll() (storage.Catalog, error)
	ResolveOne(kind domain.ContentKind, filename string) (string, error)
	Inspect() storage.Info
	Archive(ctx context.Context, kind domain.ContentKind) ([]byte, error)
}

// BodyValidator checks raw request bodies against a named schema.
type BodyValidator interface {
	Validate(name string, body []byte) error
}

// APIStatus reports which provider keys are configured.
type APIStatus struct {
	OpenAI     bool `json:"openai"`
	ElevenLabs bool `json:"elevenlabs"`
	Gemini     bool `json:"gemini"`
}

type App struct {
	Content   ContentService
	Files     FileCatalog
	Validator BodyValidator
	APIs      APIStatus
	Logger    zerolog.Logger
}

func NewApp(content ContentService, files FileCatalog, validator BodyValidator, apis APIStatus, logger zerolog.Logger) *App {
	return &App{Content: content, Files: files, Validator: validator, APIs: apis, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]string{"error": errCode, "message": msg})
}

// fail maps a service error to its HTTP response.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := a.log(r)
	var notFound *storage.NotFoundError
	switch {
	case errors.As(err, &notFound):
		a.json(w, http.StatusNotFound, map[string]any{
			"error":           "not_found",
			"message":         notFound.Error(),
			"requested_path":  notFound.RequestedPath,
			"available_files": notFound.Available,
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		log.Error().Err(err).Msg("visual generation failed")
		a.error(w, http.StatusInternalServerError, "visual_generation_failed", domain.DegradedText("visual generation", err))
	case errors.Is(err, domain.ErrStorage):
		log.Error().Err(err).Msg("storage failure")
		a.error(w, http.StatusInternalServerError, "storage_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Msg("request aborted")
		a.error(w, http.StatusServiceUnavailable, "request_aborted", err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Server error: %v", err))
	}
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}
