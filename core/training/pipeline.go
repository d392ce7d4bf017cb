package training

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pugetops/ferrytrack/core/logger"
	coremetrics "github.com/pugetops/ferrytrack/core/metrics"
	"github.com/pugetops/ferrytrack/core/model"
	"github.com/pugetops/ferrytrack/core/store"
	"github.com/pugetops/ferrytrack/internal/retry"
)

// PipelineConfig collects the tunables of a full training run.
type PipelineConfig struct {
	Loader  LoaderConfig  `json:"loader"`
	Filter  FilterConfig  `json:"filter"`
	Trainer TrainerConfig `json:"trainer"`

	// Model writes retry with exponential backoff; transient storage
	// errors are expected.
	WriteAttempts  int `json:"write_attempts"`
	WriteBackoffMS int `json:"write_backoff_ms"`
}

// SetDefaults applies defaults to every section.
func (c *PipelineConfig) SetDefaults() {
	c.Loader.SetDefaults()
	c.Filter.SetDefaults()
	c.Trainer.SetDefaults()
	if c.WriteAttempts == 0 {
		c.WriteAttempts = 3
	}
	if c.WriteBackoffMS == 0 {
		c.WriteBackoffMS = 200
	}
}

// PairReport is the per-route breakdown in the run result.
type PairReport struct {
	Pair    model.TerminalPair `json:"pair"`
	Records int                `json:"records"`
	Trained []model.ModelType  `json:"trained"`
	Null    []model.ModelType  `json:"null"`
	Errors  []string           `json:"errors"`
}

// Result is the structured response of one pipeline run. Callers can tell
// partial success with N errors apart from total failure: Run only returns
// an error when nothing could be produced at all.
type Result struct {
	RunID    string                   `json:"run_id"`
	Models   []*model.ModelParameters `json:"models"`
	Pairs    []PairReport             `json:"pairs"`
	Quality  QualitySummary           `json:"quality"`
	Errors   []string                 `json:"errors"`
	Started  time.Time                `json:"started"`
	Duration time.Duration            `json:"duration"`
}

// Trained counts non-null models in the result.
func (r *Result) Trained() int {
	n := 0
	for _, m := range r.Models {
		if !m.IsNull() {
			n++
		}
	}
	return n
}

// Pipeline orchestrates one full training run: load, filter, bucketize,
// train per pair and type, persist. Bucket failures are isolated exactly
// like per-vessel failures in the tracker.
type Pipeline struct {
	loader  *Loader
	conv    *Converter
	trainer *Trainer
	models  store.ModelStore
	sink    coremetrics.Sink
	cfg     PipelineConfig
	log     logger.Logger
}

// NewPipeline wires a Pipeline. sink may be nil.
func NewPipeline(loader *Loader, conv *Converter, trainer *Trainer, models store.ModelStore, sink coremetrics.Sink, cfg PipelineConfig, log logger.Logger) *Pipeline {
	cfg.SetDefaults()
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Pipeline{loader: loader, conv: conv, trainer: trainer, models: models, sink: sink, cfg: cfg, log: log}
}

// Run executes the full pipeline against the completed-trip store.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	trips, err := p.loader.FromStore(ctx)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, trips)
}

// RunFromFeed executes the pipeline against raw feed history instead of the
// store.
func (p *Pipeline) RunFromFeed(ctx context.Context, vesselNames []string, from, to time.Time) (*Result, error) {
	trips, err := p.loader.FromFeed(ctx, vesselNames, from, to)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, trips)
}

func (p *Pipeline) run(ctx context.Context, trips []model.CompletedVesselTrip) (*Result, error) {
	res := &Result{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}

	records, quality := p.conv.FromCompleted(trips)
	res.Quality = quality

	buckets := Bucketize(records)
	p.log.Infof("run %s: %d records in %d buckets", res.RunID, len(records), len(buckets))

	nullModels, failed := 0, 0
	backoff := time.Duration(p.cfg.WriteBackoffMS) * time.Millisecond
	for _, bucket := range buckets {
		report := PairReport{Pair: bucket.Pair, Records: len(bucket.Records)}
		for _, typ := range model.ModelTypes {
			params, err := p.trainer.Train(bucket, typ)
			if err != nil {
				failed++
				msg := fmt.Sprintf("train %s %s: %v", bucket.Pair, typ, err)
				report.Errors = append(report.Errors, msg)
				res.Errors = append(res.Errors, msg)
				p.log.Errorf("%s", msg)
				continue
			}
			if err := retry.Do(ctx, p.cfg.WriteAttempts, backoff, func(ctx context.Context) error {
				return p.models.PutModel(ctx, params)
			}); err != nil {
				failed++
				msg := fmt.Sprintf("persist %s %s: %v", bucket.Pair, typ, err)
				report.Errors = append(report.Errors, msg)
				res.Errors = append(res.Errors, msg)
				p.log.Errorf("%s", msg)
				continue
			}
			res.Models = append(res.Models, params)
			if params.IsNull() {
				nullModels++
				report.Null = append(report.Null, typ)
			} else {
				report.Trained = append(report.Trained, typ)
			}
		}
		res.Pairs = append(res.Pairs, report)
	}

	res.Duration = time.Since(res.Started)
	if err := p.sink.RecordTrainingRun(coremetrics.TrainingRunEvent{
		RunID:       res.RunID,
		Trained:     res.Trained(),
		NullModels:  nullModels,
		Failed:      failed,
		RecordsIn:   quality.Total,
		RecordsKept: quality.Retained,
		Duration:    res.Duration,
		Time:        res.Started,
	}); err != nil {
		p.log.Errorf("training metrics: %v", err)
	}

	p.log.Infof("run %s finished: %d models (%d null), %d errors in %s",
		res.RunID, len(res.Models), nullModels, len(res.Errors), res.Duration.Round(time.Millisecond))
	return res, nil
}
