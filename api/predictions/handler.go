// Package predictions exposes live duration predictions over HTTP.
package predictions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/core/predict"
	"github.com/pugetops/ferrytrack/core/store"
)

// Response bundles the vessel's live trip with its departure and arrival
// predictions.
type Response struct {
	Trip    *model.ActiveVesselTrip `json:"trip"`
	Depart  predict.Prediction      `json:"depart"`
	Arrive  predict.Prediction      `json:"arrive"`
}

// NewHandler returns an HTTP handler serving
// GET /api/predictions?vessel_id=N. Vessels without an active trip return
// 404; routes without a trained model return predictions with
// has_model=false.
func NewHandler(active store.ActiveTripStore, pred *predict.Predictor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		vesselID, err := strconv.Atoi(r.URL.Query().Get("vessel_id"))
		if err != nil {
			http.Error(w, "vessel_id is required and must be an integer", http.StatusBadRequest)
			return
		}

		trip, err := active.ActiveTrip(r.Context(), vesselID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if trip == nil {
			http.Error(w, "no active trip for vessel", http.StatusNotFound)
			return
		}

		resp := Response{Trip: trip}
		if resp.Depart, err = pred.Predict(r.Context(), trip, model.ModelDepart); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if resp.Arrive, err = pred.Predict(r.Context(), trip, model.ModelArrive); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
