package api

import (
	"net/http"
	"strings"

	"github.com/Goofygiraffe06/otprelay/internal/i18n"
	"github.com/go-chi/chi/v5"
)

// LocalesHandler serves /locales/{lang}/{ns}.json from the bundle.
func LocalesHandler(bundle *i18n.Bundle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := chi.URLParam(r, "lang")
		file := chi.URLParam(r, "file")
		ns, ok := strings.CutSuffix(file, ".json")
		if !ok || ns == "" {
			http.NotFound(w, r)
			return
		}

		raw, found := bundle.Raw(lang, ns)
		if !found {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}
