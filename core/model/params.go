package model

import "time"

// ModelType selects the prediction target of a trained model.
type ModelType string

const (
	// ModelDepart predicts the at-dock dwell in minutes before departure.
	ModelDepart ModelType = "depart"
	// ModelArrive predicts the at-sea transit in minutes until arrival.
	ModelArrive ModelType = "arrive"
)

// ModelTypes lists every trainable target.
var ModelTypes = []ModelType{ModelDepart, ModelArrive}

func (t ModelType) String() string { return string(t) }

// EvalStrategy records how a model's metrics were obtained.
type EvalStrategy string

const (
	// EvalHoldout means metrics come from a chronologically later slice
	// never used for fitting.
	EvalHoldout EvalStrategy = "holdout"
	// EvalInSample means the training split was too small for a holdout
	// and metrics were computed on the fitted data itself.
	EvalInSample EvalStrategy = "in_sample_insufficient_data"
)

// ModelMetrics carries the evaluation results of one fitted model.
type ModelMetrics struct {
	MAE      float64      `json:"mae"`
	RMSE     float64      `json:"rmse"`
	R2       float64      `json:"r2"`
	StdDev   float64      `json:"std_dev"`
	Strategy EvalStrategy `json:"strategy"`
	TrainN   int          `json:"train_n"`
	TestN    int          `json:"test_n"`
}

// ModelParameters is the persisted regression model for one
// (terminal pair, model type). Coefficients align 1:1 with FeatureNames;
// a record with nil Coefficients is an explicit null model, meaning the
// bucket lacked enough data to train.
type ModelParameters struct {
	Pair TerminalPair `json:"pair"`
	Type ModelType    `json:"type"`

	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`

	Metrics ModelMetrics `json:"metrics"`
	Stats   BucketStats  `json:"stats"`

	CreatedAt time.Time `json:"created_at"`
}

// IsNull reports whether this is a placeholder written for a bucket that
// could not be trained.
func (m *ModelParameters) IsNull() bool { return len(m.Coefficients) == 0 }
