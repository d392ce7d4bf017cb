package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/pugetops/ferrytrack/core/metrics"
	"github.com/pugetops/ferrytrack/infra/logger"
)

// InfluxSink writes tick, trip and training events to an InfluxDB instance
// using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTick writes one orchestrator tick summary.
func (s *InfluxSink) RecordTick(ev coremetrics.TickEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("tracker_tick").
		AddTag("component", "tracker").
		AddField("processed", ev.Processed).
		AddField("failed", ev.Failed).
		AddField("completed", ev.Completed).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTripCompleted writes one finalized trip.
func (s *InfluxSink) RecordTripCompleted(ev coremetrics.TripCompletedEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	t := ev.Trip
	p := write.NewPointWithMeasurement("trip_completed").
		AddTag("vessel", t.VesselAbbrev).
		AddTag("departing", t.DepartingTerminalAbbrev).
		AddTag("arriving", t.ArrivingTerminalAbbrev).
		AddTag("component", "tracker").
		AddField("at_dock_min", t.AtDockDurationMin).
		AddField("at_sea_min", t.AtSeaDurationMin).
		AddField("total_min", t.TotalDurationMin).
		AddField("delay_min", t.LeftDockDelayMin).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrainingRun writes one pipeline run summary.
func (s *InfluxSink) RecordTrainingRun(ev coremetrics.TrainingRunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("training_run").
		AddTag("run_id", ev.RunID).
		AddTag("component", "pipeline").
		AddField("trained", ev.Trained).
		AddField("null_models", ev.NullModels).
		AddField("failed", ev.Failed).
		AddField("records_in", ev.RecordsIn).
		AddField("records_kept", ev.RecordsKept).
		AddField("retained_pct", retainedPct(ev.RecordsIn, ev.RecordsKept)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func retainedPct(in, kept int) float64 {
	if in == 0 {
		return 0
	}
	return math.Round(float64(kept)/float64(in)*1000) / 10
}
