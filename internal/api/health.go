package api

import (
	"context"
	"net/http"
	"time"

	"github.com/example/storefront/internal/catalog"
)

// Pinger is satisfied by storage backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CatalogStatus reports the state of the catalog fetch.
type CatalogStatus interface {
	Status() catalog.Status
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Catalog string `json:"catalog"`
}

// Health answers 503 when storage is unreachable. A catalog that failed to load
// degrades the report but keeps the service up, since cart and wishlist reads
// still work from snapshots.
func Health(storage Pinger, cat CatalogStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Storage: "ok", Catalog: "pending"}
		status := http.StatusOK

		if err := storage.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Storage = err.Error()
			status = http.StatusServiceUnavailable
		}

		switch st := cat.Status(); {
		case st.Loaded:
			resp.Catalog = "loaded"
		case st.Err != nil:
			resp.Catalog = st.Err.Error()
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}

		respondJSON(w, status, resp)
	}
}
