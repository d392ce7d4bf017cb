// Package predict computes point predictions for live trips from stored
// regression models.
package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/core/store"
	"github.com/pugetops/ferrytrack/core/training"
)

// ErrFeatureMismatch indicates the live feature vector and the stored
// coefficient vector disagree in length. That is schema drift between
// training and prediction code and must fail loudly.
var ErrFeatureMismatch = errors.New("feature/coefficient count mismatch")

// Prediction is the outcome of one lookup. HasModel false means no model
// exists for the route yet; an expected, recoverable condition.
type Prediction struct {
	Pair     model.TerminalPair `json:"pair"`
	Type     model.ModelType    `json:"type"`
	HasModel bool               `json:"has_model"`
	Minutes  float64            `json:"minutes"`

	// Lower/Upper bound a 95% band derived from the residual standard
	// deviation, when one was recorded.
	HasBand bool    `json:"has_band"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
}

// Predictor evaluates stored models against live trips using the same
// feature extractor the trainer used.
type Predictor struct {
	models store.ModelStore
	ex     *training.Extractor
}

// New builds a Predictor.
func New(models store.ModelStore, ex *training.Extractor) *Predictor {
	return &Predictor{models: models, ex: ex}
}

// Predict looks up the model for the trip's terminal pair and computes
// intercept + Σ coefficient·feature. A missing or null model yields an
// empty prediction, not an error.
func (p *Predictor) Predict(ctx context.Context, trip *model.ActiveVesselTrip, typ model.ModelType) (Prediction, error) {
	pair := model.TerminalPair{
		Departing: trip.DepartingTerminalAbbrev,
		Arriving:  trip.ArrivingTerminalAbbrev,
	}
	pred := Prediction{Pair: pair, Type: typ}

	params, err := p.models.Model(ctx, pair, typ)
	if err != nil {
		return pred, fmt.Errorf("load model %s %s: %w", pair, typ, err)
	}
	if params == nil || params.IsNull() {
		return pred, nil
	}

	features := p.ex.Extract(training.InputFromTrip(trip), typ)
	if len(features) != len(params.Coefficients) {
		return pred, fmt.Errorf("%w: %d features vs %d coefficients for %s %s",
			ErrFeatureMismatch, len(features), len(params.Coefficients), pair, typ)
	}

	v := params.Intercept
	for i, f := range features {
		v += params.Coefficients[i] * f
	}
	pred.HasModel = true
	pred.Minutes = v

	if sd := params.Metrics.StdDev; sd > 0 {
		pred.HasBand = true
		pred.Lower = v - 1.96*sd
		pred.Upper = v + 1.96*sd
	}
	return pred, nil
}
