package handlers

import (
	"net/http"
	"time"

	"github.com/NeousAxis/globalworkflow/internal/middleware"
)

// Root describes the service in the request locale.
func (a *App) Root(w http.ResponseWriter, r *http.Request) {
	cp := a.Content.Copy().For(middleware.LocaleFromContext(r.Context()))
	a.json(w, http.StatusOK, map[string]any{
		"message":  cp.Message,
		"version":  Version,
		"services": cp.Services,
	})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"timestamp":       time.Now().Format(time.RFC3339Nano),
		"storage_path":    a.Files.BasePath(),
		"apis_configured": a.APIs,
	})
}
