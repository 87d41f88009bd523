// Package site serves the embedded scoreboard page.
package site

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static/index.html
var staticFS embed.FS

// Register attaches GET / to r.
func Register(r chi.Router) {
	r.Get("/", HandleRoot)
}

// HandleRoot serves the scoreboard page.
func HandleRoot(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
