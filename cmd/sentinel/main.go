package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Flowneee/sentinel/internal/check"
	"github.com/Flowneee/sentinel/internal/config"
	"github.com/Flowneee/sentinel/internal/healthcheck"
	"github.com/Flowneee/sentinel/internal/logging"
	"github.com/Flowneee/sentinel/internal/metrics"
	"github.com/Flowneee/sentinel/internal/monitor"
	"github.com/Flowneee/sentinel/internal/notify"
	"github.com/Flowneee/sentinel/internal/server"
	"github.com/Flowneee/sentinel/internal/supervisor"
)

func main() {
	logger := logging.New()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("sentinel failed to start")
	}
}

func run(logger zerolog.Logger) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if settings.LogLevel != "" {
		logger = logging.NewWithLevel(settings.LogLevel)
	}

	file, err := config.LoadFile(settings.ConfigPath)
	if err != nil {
		return err
	}

	logger.Info().
		Str("config", settings.ConfigPath).
		Int("resources", len(file.Resources)).
		Int("notifiers", len(file.Notifiers)).
		Bool("dry_run", settings.DryRun).
		Msg("sentinel starting")

	collector := metrics.New()
	tracker := healthcheck.NewTracker(len(file.Resources))

	notifiers, err := notify.BuildNotifiers(logger, notify.DefaultRegistry(), file.Notifiers, settings.DryRun)
	if err != nil {
		return err
	}
	router := notify.NewRouter(logger, notifiers, notify.WithMetrics(collector))

	sup, err := supervisor.New(logger, file.Resources, check.DefaultRegistry(), router,
		supervisor.WithMonitorOptions(
			monitor.WithMetrics(collector),
			monitor.WithTracker(tracker),
		),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Start(ctx, logger, maxInterval(file.Resources), tracker, collector, settings.HealthPort, settings.MetricsPort)

	if err := sup.Run(ctx); err != nil {
		return err
	}

	router.Close(settings.ShutdownGrace)
	logger.Info().Msg("sentinel stopped")
	return nil
}

func maxInterval(resources []config.Resource) time.Duration {
	var max time.Duration
	for _, resource := range resources {
		if interval := resource.Interval(); interval > max {
			max = interval
		}
	}
	return max
}
