package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"inventorysync.com/pkg/api"
	"inventorysync.com/pkg/config"
	"inventorysync.com/pkg/inventory"
	"inventorysync.com/pkg/lock"
	"inventorysync.com/pkg/logging"
	"inventorysync.com/pkg/schedule"
	"inventorysync.com/pkg/shopify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	s := shopify.NewService(shopify.Config{
		Shop:        cfg.ShopifyStore,
		AccessToken: cfg.ShopifyAccessToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		Timeout:     cfg.ShopifyTimeout,
		Workers:     cfg.ShopifyWorkers,
		Logger:      logger.Named("shopify"),
	})
	syncer := inventory.NewSyncer(s, logger.Named("inventory"))

	locker, closeLocker := buildLocker(cfg, logger)
	defer closeLocker()

	job := schedule.NewJob(syncer, schedule.Options{
		Vendor:  cfg.ScheduleVendor,
		Timeout: cfg.ScheduleTimeout,
		LockTTL: cfg.ScheduleLockTTL,
		Locker:  locker,
		Logger:  logger.Named("schedule"),
	})
	scheduler, err := schedule.New(cfg.ScheduleSpec, job, logger.Named("cron"))
	if err != nil {
		logger.Fatal("failed to create scheduler", zap.Error(err))
	}
	scheduler.Start()

	srv := api.NewServer(api.ServerOptions{
		Port:              cfg.Port,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}, logger.Named("http"))
	api.Register(srv.Mux(), logger.Named("http"), syncer)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := scheduler.Stop(ctx); err != nil {
		logger.Error("scheduler shutdown failed", zap.Error(err))
	}
} // ./main

// buildLocker uses Redis when REDIS_URL is set so that only one replica runs
// the hourly job. Without it every process runs its own schedule.
func buildLocker(cfg config.Config, logger *zap.Logger) (lock.Locker, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	locker, closeFn, err := lock.Open(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	if cfg.RedisURL == "" {
		logger.Info("no REDIS_URL, scheduled runs are not coordinated across processes")
	} else {
		logger.Info("using redis run lock")
	}
	return locker, func() {
		if err := closeFn(); err != nil {
			logger.Error("error closing redis", zap.Error(err))
		}
	}
} // ./buildLocker
