package training

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/pugetops/ferrytrack/core/logger"
	"github.com/pugetops/ferrytrack/core/model"
)

// TrainerConfig tunes the fit and the holdout evaluation.
type TrainerConfig struct {
	// MinSamples is the minimum bucket size; below it a null model is
	// produced instead of a fit.
	MinSamples int `json:"min_samples"`
	// HoldoutFraction of the most recent records is reserved for
	// evaluation.
	HoldoutFraction float64 `json:"holdout_fraction"`
	// MinTrainSplit is the smallest training split allowed before the
	// trainer falls back to in-sample metrics.
	MinTrainSplit int `json:"min_train_split"`
	// CoefEpsilon zeroes near-zero coefficients to suppress numerical
	// noise.
	CoefEpsilon float64 `json:"coef_epsilon"`
}

// SetDefaults applies the production parameters.
func (c *TrainerConfig) SetDefaults() {
	if c.MinSamples == 0 {
		c.MinSamples = 25
	}
	if c.HoldoutFraction == 0 {
		c.HoldoutFraction = 0.2
	}
	if c.MinTrainSplit == 0 {
		c.MinTrainSplit = 10
	}
	if c.CoefEpsilon == 0 {
		c.CoefEpsilon = 1e-8
	}
}

// Trainer fits one ordinary least squares model per (terminal pair, model
// type) with a chronological holdout evaluation.
type Trainer struct {
	ex  *Extractor
	cfg TrainerConfig
	log logger.Logger
}

// NewTrainer builds a Trainer sharing the pipeline's extractor, so training
// and prediction use the same feature code path.
func NewTrainer(ex *Extractor, cfg TrainerConfig, log logger.Logger) *Trainer {
	cfg.SetDefaults()
	return &Trainer{ex: ex, cfg: cfg, log: log}
}

// Train fits the model for one bucket and target. A bucket below the sample
// threshold yields an explicit null model rather than being omitted, so
// consumers can tell "no model trained" from "model absent". A singular
// design matrix is a recoverable per-bucket error.
func (t *Trainer) Train(bucket model.TerminalPairBucket, typ model.ModelType) (*model.ModelParameters, error) {
	params := &model.ModelParameters{
		Pair:         bucket.Pair,
		Type:         typ,
		FeatureNames: FeatureNames(typ),
		Stats:        bucket.Stats,
		CreatedAt:    time.Now().UTC(),
	}

	if len(bucket.Records) < t.cfg.MinSamples {
		t.log.Debugf("pair %s %s: %d records below threshold %d, null model",
			bucket.Pair, typ, len(bucket.Records), t.cfg.MinSamples)
		return params, nil
	}

	// Chronological split: train on the earliest 80%, test on the most
	// recent 20%. Random shuffling would leak future data into the fit.
	recs := append([]model.TrainingDataRecord(nil), bucket.Records...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].SchedEpoch < recs[j].SchedEpoch })

	n := len(recs)
	testN := int(math.Ceil(float64(n) * t.cfg.HoldoutFraction))
	trainN := n - testN

	strategy := model.EvalHoldout
	trainRecs, testRecs := recs[:trainN], recs[trainN:]
	if trainN < t.cfg.MinTrainSplit {
		strategy = model.EvalInSample
		trainRecs, testRecs = recs, recs
		trainN, testN = n, n
	}

	X, y := t.design(trainRecs, typ)
	beta, err := fitOLS(X, y)
	if err != nil {
		return nil, fmt.Errorf("fit %s %s: %w", bucket.Pair, typ, err)
	}

	params.Intercept = beta[0]
	params.Coefficients = make([]float64, len(beta)-1)
	for i, b := range beta[1:] {
		if math.Abs(b) < t.cfg.CoefEpsilon {
			b = 0
		}
		params.Coefficients[i] = b
	}

	params.Metrics = t.evaluate(params, testRecs, typ)
	params.Metrics.Strategy = strategy
	params.Metrics.TrainN = trainN
	params.Metrics.TestN = testN

	t.log.Infof("trained %s %s: n=%d mae=%.2f rmse=%.2f r2=%.3f (%s)",
		bucket.Pair, typ, n, params.Metrics.MAE, params.Metrics.RMSE, params.Metrics.R2, strategy)
	return params, nil
}

// design builds the feature matrix with a leading intercept column.
func (t *Trainer) design(recs []model.TrainingDataRecord, typ model.ModelType) (*mat.Dense, *mat.VecDense) {
	p := len(FeatureNames(typ))
	X := mat.NewDense(len(recs), p+1, nil)
	y := mat.NewVecDense(len(recs), nil)
	for i, r := range recs {
		X.Set(i, 0, 1)
		for j, v := range t.ex.Extract(InputFromRecord(r), typ) {
			X.Set(i, j+1, v)
		}
		y.SetVec(i, Target(r, typ))
	}
	return X, y
}

// fitOLS solves the normal equations XᵀX β = Xᵀy.
func fitOLS(X *mat.Dense, y *mat.VecDense) ([]float64, error) {
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		// A Condition error flags a near-singular system whose solution was
		// still computed; the overlapping time-of-day basis makes that
		// common and harmless.
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("normal equations: %w", err)
		}
	}
	out := make([]float64, beta.Len())
	for i := range out {
		out[i] = beta.AtVec(i)
	}
	return out, nil
}

// evaluate computes MAE, RMSE, R² and the residual standard deviation on the
// given slice, reusing the prediction-side dot product.
func (t *Trainer) evaluate(params *model.ModelParameters, recs []model.TrainingDataRecord, typ model.ModelType) model.ModelMetrics {
	var m model.ModelMetrics
	if len(recs) == 0 {
		return m
	}

	var sumAbs, sumSq, sumY float64
	resids := make([]float64, len(recs))
	for i, r := range recs {
		pred := params.Intercept
		for j, v := range t.ex.Extract(InputFromRecord(r), typ) {
			pred += params.Coefficients[j] * v
		}
		actual := Target(r, typ)
		resid := actual - pred
		resids[i] = resid
		sumAbs += math.Abs(resid)
		sumSq += resid * resid
		sumY += actual
	}
	n := float64(len(recs))
	meanY := sumY / n

	var ssTot float64
	for _, r := range recs {
		d := Target(r, typ) - meanY
		ssTot += d * d
	}

	m.MAE = sumAbs / n
	m.RMSE = math.Sqrt(sumSq / n)
	if ssTot == 0 {
		m.R2 = 0
	} else {
		m.R2 = 1 - sumSq/ssTot
	}

	var meanResid float64
	for _, r := range resids {
		meanResid += r
	}
	meanResid /= n
	var varResid float64
	for _, r := range resids {
		d := r - meanResid
		varResid += d * d
	}
	m.StdDev = math.Sqrt(varResid / n)
	return m
}
