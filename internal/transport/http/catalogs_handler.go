package http

import (
	"encoding/json"
	"log"
	"net/http"

	"live-quiz-engine/internal/app"
	"live-quiz-engine/internal/catalog"
)

type catalogsResponse struct {
	Catalogs []catalog.Summary `json:"catalogs"`
}

// CatalogsHandler lists the built-in catalogs.
func CatalogsHandler(engine *app.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		summaries, err := engine.ListCatalogs(r.Context())
		if err != nil {
			log.Printf("list catalogs: %v", err)
			http.Error(w, "catalogs unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(catalogsResponse{Catalogs: summaries}); err != nil {
			log.Printf("encode catalogs: %v", err)
		}
	}
}
