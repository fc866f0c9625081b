package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/NeousAxis/globalworkflow/internal/domain"
)

// ServeFile streams a stored artifact. Missing files answer 404 with a sample
// of what is available.
func (a *App) ServeFile(w http.ResponseWriter, r *http.Request) {
	kind := domain.ParseContentKind(chi.URLParam(r, "kind"))
	filename := chi.URLParam(r, "filename")
	path, err := a.Files.ResolveOne(kind, filename)
	if err != nil {
		a.log(r).Debug().Str("kind", string(kind)).Str("filename", filename).Msg("file not found")
		a.fail(w, r, err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// ListFiles returns every stored file grouped by folder.
func (a *App) ListFiles(w http.ResponseWriter, r *http.Request) {
	catalog, err := a.Files.ListAll()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.json(w, http.StatusOK, map[string]string{
				"message": "Storage folder not found",
				"path":    a.Files.BasePath(),
			})
			return
		}
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"storage_path":  a.Files.BasePath(),
		"total_folders": len(catalog),
		"files_by_type": catalog,
	})
}

// Archive downloads one content folder as a zip file.
func (a *App) Archive(w http.ResponseWriter, r *http.Request) {
	kind := domain.ParseContentKind(chi.URLParam(r, "kind"))
	data, err := a.Files.Archive(r.Context(), kind)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.Folder()+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *App) DebugStorage(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Files.Inspect())
}
