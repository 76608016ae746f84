package main

import (
	"context"
	"errors"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"attendance/internal/app"
	"attendance/internal/enrich"
	"attendance/internal/env"
	"attendance/internal/events"
	"attendance/internal/logging"
	"attendance/internal/models"
	"attendance/internal/server"
	"attendance/internal/service"
	"attendance/internal/storage"
	"attendance/pkg/datasource"
	"attendance/pkg/graceful"
	"attendance/pkg/kafkaclient"
	"attendance/pkg/location"
)

func main() {
	env.LoadEnv()
	cfg := env.Load()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("attendance stopped", zap.Error(err))
	}
	logger.Info("application exiting")
}

func run(cfg env.Config, logger *zap.Logger) error {
	ctx, cancel := graceful.Context(context.Background(), logger)
	defer cancel()

	reporter := logging.NewReporter(logger)
	g, gctx := errgroup.WithContext(ctx)

	var opts []app.Option
	opts = append(opts, app.WithLogger(logger))

	var s3 *storage.S3Service
	if cfg.Minio.Enabled() {
		s, err := storage.NewS3Service(cfg.Minio, logger)
		if err != nil {
			return err
		}
		s3 = s
	}

	visitLog, err := openVisitLog(ctx, cfg)
	if err != nil {
		return err
	}
	if visitLog != nil {
		defer visitLog.Close()
		surface := events.NewLogSurface(visitLog, logger, events.WithReporter(reporter))
		opts = append(opts, app.WithSharedSurface(surface))
		g.Go(func() error { return surface.Run(gctx) })
	}

	if cfg.Kafka.Enabled() {
		publisher := kafkaclient.NewPublisher(cfg.Kafka.Broker, cfg.Kafka.EventTopic)
		defer publisher.Close()
		surface := events.NewEventSurface(publisher, logger, events.WithReporter(reporter))
		opts = append(opts, app.WithSharedSurface(surface))
		g.Go(func() error { return surface.Run(gctx) })
	}

	m := app.New(reporter, cfg.MapZoom, opts...)

	var getter datasource.ObjectGetter
	if s3 != nil {
		getter = s3
	}
	src, err := datasource.Parse(cfg.DataSource, getter)
	if err != nil {
		return err
	}

	bootOpts := []datasource.BootstrapOption{datasource.WithBootstrapLogger(logger)}
	if cfg.EnrichAddresses {
		geocoder := location.NewClient(cfg.NominatimURL)
		bootOpts = append(bootOpts, datasource.WithEnrichment(
			enrich.NewPipeline(logger, enrich.NewStage(geocoder.AddressStep())),
		))
	}
	load := func(ctx context.Context) error {
		_, err := datasource.Bootstrap(ctx, src, m, reporter, bootOpts...)
		return err
	}
	if err := load(ctx); err != nil {
		// already reported; the map stays empty until POST /api/reload succeeds
		logger.Info("starting with empty map", zap.String("source", src.String()))
	}

	if cfg.Kafka.Enabled() {
		logger.Info("consuming commands",
			zap.String("broker", cfg.Kafka.Broker),
			zap.String("topic", cfg.Kafka.CommandTopic),
			zap.String("group", cfg.Kafka.GroupID))
		consumer := kafkaclient.NewKafkaConsumer(cfg.Kafka.CommandTopic, cfg.Kafka.GroupID, cfg.Kafka.Broker, logger)
		consumer.StartConsuming(gctx)
		defer consumer.Stop()

		commands := service.NewIterator(consumer, logger).Commands(gctx)
		dispatcher := service.NewDispatcher(m.Controller, logger)
		g.Go(func() error {
			if err := dispatcher.Run(gctx, commands); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	srv := server.New(m.Controller, m.Store, m.Board,
		server.WithTitle(cfg.MapName),
		server.WithReload(load),
		server.WithLogger(logger))
	g.Go(func() error { return srv.Run(gctx, cfg.HTTPAddr) })

	err = g.Wait()

	if s3 != nil && cfg.SnapshotBucket != "" {
		exportSnapshots(s3, cfg, m.Snapshots(), logger)
	}
	return err
}

func openVisitLog(ctx context.Context, cfg env.Config) (storage.VisitLog, error) {
	switch {
	case cfg.DatabaseURL != "":
		return storage.NewPostgresLog(ctx, cfg.DatabaseURL)
	case cfg.SQLitePath != "":
		return storage.NewSQLiteLog(cfg.SQLitePath)
	default:
		return nil, nil
	}
}

func exportSnapshots(s3 *storage.S3Service, cfg env.Config, snapshots []models.Snapshot, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s3.CreateBucket(ctx, cfg.SnapshotBucket, ""); err != nil {
		logger.Error("failed to prepare snapshot bucket", zap.Error(err))
		return
	}
	key, err := s3.StoreSnapshots(ctx, cfg.SnapshotBucket, cfg.MapName, snapshots, time.Now())
	if err != nil {
		logger.Error("failed to export snapshots", zap.Error(err))
		return
	}
	logger.Info("snapshots exported", zap.String("bucket", cfg.SnapshotBucket), zap.String("key", key))
}
