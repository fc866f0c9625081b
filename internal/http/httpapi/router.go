package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/NeousAxis/globalworkflow/internal/http/handlers"
	"github.com/NeousAxis/globalworkflow/internal/metrics"
	"github.com/NeousAxis/globalworkflow/internal/middleware"
)

type Options struct {
	Logger             zerolog.Logger
	Metrics            metrics.Recorder
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerMin    int
	DefaultLocale      string
	Locales            []language.Tag
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(opts.Logger, opts.Metrics),
		chimw.Recoverer,
		middleware.CORS(opts.CORSAllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.Locales),
	)

	r.Get("/", app.Root)
	r.Get("/health", app.Health)
	r.Get(handlers.OpenAPIPath, app.OpenAPIJSON)
	r.Get("/docs", app.OpenAPIDocs)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/video/create", app.CreateVideo)
		r.Post("/social/generate", app.GenerateSocial)
		r.Post("/visual/create", app.CreateVisual)
		r.Post("/podcast/create", app.CreatePodcast)
		r.Post("/report/generate", app.GenerateReport)
		r.Post("/weekly/generate", app.GenerateWeekly)
	})

	r.Get("/files", app.ListFiles)
	r.Get("/files/{kind}/{filename}", app.ServeFile)
	r.Get("/archive/{kind}", app.Archive)
	r.Get("/debug/storage", app.DebugStorage)

	return r
}
