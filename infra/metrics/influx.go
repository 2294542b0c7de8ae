package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/courtflow/courtsched/core/metrics"
	"github.com/courtflow/courtsched/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the
// official client.
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
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
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

// RecordConflicts writes each conflict as a line protocol event.
func (s *InfluxSink) RecordConflicts(recs []coremetrics.ConflictRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("conflict_detected").
			AddTag("type", r.Type).
			AddTag("severity", r.Severity).
			AddTag("detector", r.Detector).
			AddTag("component", "detector").
			AddField("events", r.Events).
			AddField("deficit_minutes", round3(r.DeficitMinutes)).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordOptimization persists a summary of an optimizer run.
func (s *InfluxSink) RecordOptimization(rec coremetrics.OptimizationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_optimized").
		AddTag("algorithm", rec.Algorithm).
		AddTag("component", "optimizer").
		AddField("events", rec.Events).
		AddField("assigned", rec.Assigned).
		AddField("unassigned", rec.Unassigned).
		AddField("score", round3(rec.Score)).
		AddField("elapsed_ms", round3(rec.Elapsed.Seconds()*1000)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordResolution records one resolution attempt.
func (s *InfluxSink) RecordResolution(rec coremetrics.ResolutionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("conflict_resolved").
		AddTag("conflict_type", rec.ConflictType).
		AddTag("strategy", rec.Strategy).
		AddTag("status", rec.Status).
		AddTag("superseded", strconv.FormatBool(rec.Superseded)).
		AddTag("component", "resolver").
		AddField("signature", rec.Signature).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTravel records one travel estimate.
func (s *InfluxSink) RecordTravel(rec coremetrics.TravelRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("travel_estimated").
		AddTag("provider", rec.Provider).
		AddTag("mode", rec.Mode).
		AddTag("fallback", strconv.FormatBool(rec.Fallback)).
		AddTag("component", "travel").
		AddField("minutes", round3(rec.Minutes)).
		AddField("confidence", round3(rec.Confidence)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
