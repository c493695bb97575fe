// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manifest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ContentType is the DASH manifest media type.
const ContentType = "application/dash+xml"

// Handler serves GET /manifests/{file} where file is "<id>.mpd".
func Handler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		id, ok := strings.CutSuffix(file, ".mpd")
		if !ok {
			http.NotFound(w, r)
			return
		}
		doc, ok := store.Get(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", ContentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(doc))
	}
}
