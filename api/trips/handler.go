// Package trips exposes the completed-trip archive over HTTP.
package trips

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pugetops/ferrytrack/core/store"
)

const maxPageSize = 200

// NewHandler returns an HTTP handler serving GET /api/trips with offset and
// limit query parameters.
func NewHandler(completed store.CompletedTripStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		offset := queryInt(r, "offset", 0)
		limit := queryInt(r, "limit", 50)
		if offset < 0 || limit <= 0 {
			http.Error(w, "offset must be >= 0 and limit > 0", http.StatusBadRequest)
			return
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}

		trips, err := completed.ListCompletedTrips(r.Context(), offset, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(trips); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}
