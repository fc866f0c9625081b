package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/internal/middleware"
	"github.com/NeousAxis/globalworkflow/internal/schema"
)

func (a *App) CreateVideo(w http.ResponseWriter, r *http.Request) {
	serve(a, w, r, schema.Video, domain.NewVideoRequest, a.Content.CreateVideo)
}

func (a *App) GenerateSocial(w http.ResponseWriter, r *http.Request) {
	serve(a, w, r, schema.Social, domain.NewSocialPostRequest, a.Content.GenerateSocial)
}

func (a *App) CreateVisual(w http.ResponseWriter, r *http.Request) {
	serve(a, w, r, schema.Visual, domain.NewVisualRequest, a.Content.CreateVisual)
}

func (a *App) CreatePodcast(w http.ResponseWriter, r *http.Request) {
	serve(a, w, r, schema.Podcast, domain.NewPodcastRequest, a.Content.CreatePodcast)
}

func (a *App) GenerateReport(w http.ResponseWriter, r *http.Request) {
	serve(a, w, r, schema.Report, domain.NewReportRequest, a.Content.GenerateReport)
}

func (a *App) GenerateWeekly(w http.ResponseWriter, r *http.Request) {
	serve(a, w, r, schema.Weekly, func() domain.WeeklyContentRequest { return domain.WeeklyContentRequest{} }, a.Content.GenerateWeekly)
}

// serve reads and validates the body, decodes it over the request defaults
// and runs the service call.
func serve[T any](
	a *App,
	w http.ResponseWriter,
	r *http.Request,
	schemaName string,
	defaults func() T,
	run func(ctx context.Context, locale string, req T) (*domain.Envelope, error),
) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if !json.Valid(body) {
		a.error(w, http.StatusBadRequest, "bad_request", "request body is not valid JSON")
		return
	}
	if a.Validator != nil {
		if err := a.Validator.Validate(schemaName, body); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	req := defaults()
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) || errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	env, err := run(r.Context(), middleware.LocaleFromContext(r.Context()), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, env)
}
