package catalog

import (
	"net/http"

	dErrors "peakform/pkg/domain-errors"
	"peakform/pkg/platform/httputil"
)

// SportsResponse is the HTTP response for GET /sports.
type SportsResponse struct {
	Sports     []Sport  `json:"sports"`
	Categories []string `json:"categories"`
}

// Handler serves the static sport catalog the wizard's sport step renders.
// An optional ?category= query narrows the list to one category.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sports := All()

		if category := r.URL.Query().Get("category"); category != "" {
			grouped, ok := ByCategory()[category]
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown category"))
				return
			}
			sports = grouped
		}

		httputil.WriteJSON(w, http.StatusOK, SportsResponse{
			Sports:     sports,
			Categories: Categories(),
		})
	}
}
