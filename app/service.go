// Package app wires the configuration into a running service: feed client,
// stores, trip tracker, training pipeline, predictor, event publishers and
// metric sinks.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/pugetops/ferrytrack/config"
	"github.com/pugetops/ferrytrack/core/events"
	coremetrics "github.com/pugetops/ferrytrack/core/metrics"
	"github.com/pugetops/ferrytrack/core/predict"
	"github.com/pugetops/ferrytrack/core/store"
	"github.com/pugetops/ferrytrack/core/terminals"
	"github.com/pugetops/ferrytrack/core/training"
	"github.com/pugetops/ferrytrack/core/trip"
	infraevents "github.com/pugetops/ferrytrack/infra/events"
	"github.com/pugetops/ferrytrack/infra/feed"
	"github.com/pugetops/ferrytrack/infra/logger"
	"github.com/pugetops/ferrytrack/infra/metrics"
	infrastore "github.com/pugetops/ferrytrack/infra/store"
	"github.com/pugetops/ferrytrack/internal/eventbus"
	"github.com/pugetops/ferrytrack/jobs/backfill"
)

// Store groups the four persistence contracts the service needs. Both
// backends satisfy all of them.
type Store interface {
	store.ActiveTripStore
	store.CompletedTripStore
	store.SnapshotStore
	store.ModelStore
}

// Service owns the wired components and the polling loop.
type Service struct {
	Tracker   *trip.Tracker
	Pipeline  *training.Pipeline
	Predictor *predict.Predictor

	cfg        *config.Config
	store      Store
	loader     *training.Loader
	bus        eventbus.EventBus
	publishers []events.Publisher
	closers    []func() error
	log        logger.Logger
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	source, err := feed.NewWSDOTClient(cfg.Feed, logger.New("wsdot"))
	if err != nil {
		return nil, fmt.Errorf("feed client: %w", err)
	}

	svc := &Service{cfg: cfg, bus: eventbus.New(), log: logg}

	switch cfg.Storage.Backend {
	case "postgres":
		pg, err := infrastore.OpenPostgres(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		svc.store = pg
		svc.closers = append(svc.closers, pg.Close)
	default:
		svc.store = infrastore.NewMemoryStore()
	}

	sink, err := buildSink(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	if cfg.Events.MQTT.Enabled {
		pub, err := infraevents.NewMQTTPublisher(cfg.Events.MQTT, logger.New("mqtt-events"))
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publishers = append(svc.publishers, pub)
	}
	if cfg.Events.NATS.Enabled {
		pub, err := infraevents.NewNATSPublisher(cfg.Events.NATS, logger.New("nats-events"))
		if err != nil {
			return nil, fmt.Errorf("nats publisher: %w", err)
		}
		svc.publishers = append(svc.publishers, pub)
	}

	updater := trip.NewUpdater(svc.store, svc.store, logger.New("updater"))
	svc.Tracker = trip.NewTracker(source, updater, svc.store, svc.bus, sink, logger.New("tracker"))

	ex, err := training.NewPacificExtractor()
	if err != nil {
		return nil, fmt.Errorf("feature extractor: %w", err)
	}
	terms := terminals.NewTable()
	conv := training.NewConverter(terms, ex, cfg.Training.Filter, logger.New("filter"))
	trainer := training.NewTrainer(ex, cfg.Training.Trainer, logger.New("trainer"))
	svc.loader = training.NewLoader(svc.store, source, terms, cfg.Training.Loader, logger.New("loader"))
	svc.Pipeline = training.NewPipeline(svc.loader, conv, trainer, svc.store, sink, cfg.Training, logger.New("pipeline"))

	svc.Predictor = predict.New(svc.store, ex)
	return svc, nil
}

func buildSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return metrics.NewMultiSink(sinks...), nil
	}
}

// Run polls the feed on the configured interval and blocks until the context
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if len(s.publishers) > 0 {
		go s.forwardEvents(ctx)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.ServeProm(ctx, ":"+s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.Enabled {
		go func() {
			if err := s.serveAPI(ctx, ":"+s.cfg.API.Port); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}

	interval := s.cfg.Tracker.Interval()
	s.log.Infof("polling every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := s.Tracker.Tick(ctx); err != nil {
		s.log.Errorf("tick: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Tracker.Tick(ctx); err != nil {
				s.log.Errorf("tick: %v", err)
			}
		}
	}
}

// forwardEvents relays bus events to the configured broker publishers.
func (s *Service) forwardEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			s.publish(ctx, ev)
		}
	}
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	for _, pub := range s.publishers {
		var err error
		switch e := ev.(type) {
		case events.TripStarted:
			err = pub.PublishTripStarted(ctx, e)
		case events.TripCompleted:
			err = pub.PublishTripCompleted(ctx, e)
		}
		if err != nil {
			s.log.Errorf("publish event: %v", err)
		}
	}
}

// Tick runs a single poll cycle.
func (s *Service) Tick(ctx context.Context) (trip.TickResult, error) {
	return s.Tracker.Tick(ctx)
}

// Train runs the training pipeline against stored completed trips.
func (s *Service) Train(ctx context.Context) (*training.Result, error) {
	return s.Pipeline.Run(ctx)
}

// TrainFromFeed runs the pipeline against raw feed history for the named
// vessels over the date range.
func (s *Service) TrainFromFeed(ctx context.Context, vessels []string, from, to time.Time) (*training.Result, error) {
	return s.Pipeline.RunFromFeed(ctx, vessels, from, to)
}

// Backfill seeds the completed-trip archive from feed history.
func (s *Service) Backfill(ctx context.Context, vessels []string, from, to time.Time) (int, error) {
	return backfill.Run(ctx, s.loader, s.store, vessels, from, to, s.log)
}

// ResetModels drops every persisted model.
func (s *Service) ResetModels(ctx context.Context) error {
	return s.store.DeleteAllModels(ctx)
}

// Close releases brokers and storage.
func (s *Service) Close() error {
	s.bus.Close()
	var first error
	for _, pub := range s.publishers {
		if err := pub.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
