package app

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/courtflow/courtsched/config"
	"github.com/courtflow/courtsched/core/detect"
	coremetrics "github.com/courtflow/courtsched/core/metrics"
	"github.com/courtflow/courtsched/core/optimize"
	"github.com/courtflow/courtsched/core/resolve"
	"github.com/courtflow/courtsched/core/travel"
	"github.com/courtflow/courtsched/infra/logger"
	inframetrics "github.com/courtflow/courtsched/infra/metrics"
	"github.com/courtflow/courtsched/infra/notify"
	"github.com/courtflow/courtsched/internal/eventbus"
)

// Service wires the scheduling engine together: travel estimator, conflict
// detector, optimizer and resolver sharing one event bus and metrics sink.
type Service struct {
	Estimator *travel.Estimator
	Detector  *detect.Detector
	Optimizer *optimize.Optimizer
	Resolver  *resolve.Resolver

	bus      eventbus.EventBus
	sink     coremetrics.MetricsSink
	notifier resolve.Notifier
	log      logger.Logger
	promPort int
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	bus := eventbus.New()

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	notifier, err := notify.New(cfg.Notifier)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	store, err := resolve.NewAuditStore(cfg.Resolve.Audit)
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}

	est := travel.NewEstimator(cfg.Travel, nil, logger.New("travel"), bus)
	det := detect.NewDetector(cfg.Detect, est, logger.New("detect"), bus)
	opt := optimize.NewOptimizer(cfg.Optimize, det, est, logger.New("optimize"), bus)
	res, err := resolve.NewResolver(cfg.Resolve, store, notifier, logger.New("resolve"), bus)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}

	return &Service{
		Estimator: est,
		Detector:  det,
		Optimizer: opt,
		Resolver:  res,
		bus:       bus,
		sink:      sink,
		notifier:  notifier,
		log:       logg,
		promPort:  cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the background collectors and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	inframetrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.promPort != 0 {
		go func() {
			addr := ":" + strconv.Itoa(s.promPort)
			if err := inframetrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Start runs the collectors without blocking; used by one-shot commands.
func (s *Service) Start(ctx context.Context) {
	inframetrics.StartEventCollector(ctx, s.bus, s.sink)
}

// Close releases the audit store, the notifier and the event bus.
func (s *Service) Close() error {
	err := s.Resolver.Close()
	if c, ok := s.notifier.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	s.bus.Close()
	return err
}
