package training

import (
	"math"
	"testing"
	"time"

	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/infra/logger"
)

// syntheticBucket builds n records on one route whose at-dock dwell is an
// exact linear function of the schedule delta: dwell = 10 + 0.8*delta.
func syntheticBucket(n int) model.TerminalPairBucket {
	recs := make([]model.TrainingDataRecord, 0, n)
	for i := 0; i < n; i++ {
		day := time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC)
		sched := day.Add(time.Duration(6+(i*5)%14) * time.Hour).Add(time.Duration((i*13)%60) * time.Minute)
		delta := float64(5 + (i*3)%11)
		start := sched.Add(-time.Duration(delta) * time.Minute)
		dwell := 10 + 0.8*delta
		left := start.Add(time.Duration(dwell) * time.Minute)

		recs = append(recs, model.TrainingDataRecord{
			VesselName:              "Wenatchee",
			DepartingTerminalAbbrev: "P52",
			ArrivingTerminalAbbrev:  "BBI",
			TripStart:               start,
			ScheduledDeparture:      sched,
			LeftDock:                left,
			TripEnd:                 left.Add(35 * time.Minute),
			AtDockMin:               dwell,
			AtSeaMin:                35,
			DelayMin:                model.DurationMin(sched, left),
			SchedEpoch:              sched.UnixMilli(),
		})
	}
	return model.TerminalPairBucket{
		Pair:    model.TerminalPair{Departing: "P52", Arriving: "BBI"},
		Records: recs,
		Stats:   bucketStats(recs),
	}
}

func TestTrainNullModelBelowThreshold(t *testing.T) {
	tr := NewTrainer(utcExtractor(), TrainerConfig{}, logger.NopLogger{})
	bucket := syntheticBucket(10)

	params, err := tr.Train(bucket, model.ModelDepart)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !params.IsNull() {
		t.Fatal("expected a null model below the sample threshold")
	}
	if len(params.FeatureNames) == 0 {
		t.Fatal("null model must still carry the feature schema")
	}
	if params.Stats.TotalRecords != 10 {
		t.Fatalf("stats: expected 10 records got %d", params.Stats.TotalRecords)
	}
}

func TestTrainRecoversLinearTarget(t *testing.T) {
	tr := NewTrainer(utcExtractor(), TrainerConfig{}, logger.NopLogger{})
	bucket := syntheticBucket(30)

	params, err := tr.Train(bucket, model.ModelDepart)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if params.IsNull() {
		t.Fatal("expected a fitted model")
	}
	if params.Metrics.Strategy != model.EvalHoldout {
		t.Fatalf("expected holdout evaluation got %s", params.Metrics.Strategy)
	}
	// ceil(30*0.2) = 6 held out.
	if params.Metrics.TrainN != 24 || params.Metrics.TestN != 6 {
		t.Fatalf("split: expected 24/6 got %d/%d", params.Metrics.TrainN, params.Metrics.TestN)
	}
	if params.Metrics.MAE > 0.1 {
		t.Fatalf("mae on an exact linear target: %v", params.Metrics.MAE)
	}
	if params.Metrics.R2 < 0.95 {
		t.Fatalf("r2 on an exact linear target: %v", params.Metrics.R2)
	}
	if len(params.Coefficients) != len(params.FeatureNames) {
		t.Fatalf("%d coefficients vs %d features", len(params.Coefficients), len(params.FeatureNames))
	}
}

func TestTrainHoldoutSplitArithmetic(t *testing.T) {
	cfg := TrainerConfig{MinSamples: 5, MinTrainSplit: 2}
	tr := NewTrainer(utcExtractor(), cfg, logger.NopLogger{})

	cases := []struct {
		n, trainN, testN int
	}{
		{25, 20, 5},
		{26, 20, 6},
		{30, 24, 6},
	}
	for _, tc := range cases {
		params, err := tr.Train(syntheticBucket(tc.n), model.ModelDepart)
		if err != nil {
			t.Fatalf("n=%d: %v", tc.n, err)
		}
		if params.Metrics.TrainN != tc.trainN || params.Metrics.TestN != tc.testN {
			t.Fatalf("n=%d: expected %d/%d got %d/%d",
				tc.n, tc.trainN, tc.testN, params.Metrics.TrainN, params.Metrics.TestN)
		}
	}
}

func TestTrainFallsBackToInSample(t *testing.T) {
	cfg := TrainerConfig{MinSamples: 5}
	tr := NewTrainer(utcExtractor(), cfg, logger.NopLogger{})

	params, err := tr.Train(syntheticBucket(8), model.ModelDepart)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if params.Metrics.Strategy != model.EvalInSample {
		t.Fatalf("expected in-sample fallback got %s", params.Metrics.Strategy)
	}
	if params.Metrics.TrainN != 8 || params.Metrics.TestN != 8 {
		t.Fatalf("expected 8/8 got %d/%d", params.Metrics.TrainN, params.Metrics.TestN)
	}
}

func TestBucketizeKeepsSmallPairs(t *testing.T) {
	big := syntheticBucket(6).Records
	small := model.TrainingDataRecord{
		DepartingTerminalAbbrev: "EDM",
		ArrivingTerminalAbbrev:  "KIN",
		AtDockMin:               12,
		AtSeaMin:                30,
	}
	buckets := Bucketize(append(big, small))
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets got %d", len(buckets))
	}
	// Deterministic pair order: EDM-KIN before P52-BBI.
	if buckets[0].Pair.Departing != "EDM" || len(buckets[0].Records) != 1 {
		t.Fatalf("unexpected first bucket %+v", buckets[0].Pair)
	}
	if math.Abs(buckets[1].Stats.MeanAtSeaMin-35) > 1e-9 {
		t.Fatalf("mean at sea: expected 35 got %v", buckets[1].Stats.MeanAtSeaMin)
	}
}

func TestSchedulePressure(t *testing.T) {
	s := model.BucketStats{MeanAtDockMin: 12}
	if got := s.SchedulePressureMin(); math.Abs(got-18) > 1e-9 {
		t.Fatalf("expected 18 got %v", got)
	}
}
