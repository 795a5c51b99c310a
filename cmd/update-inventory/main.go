package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"inventorysync.com/pkg/config"
	"inventorysync.com/pkg/inventory"
	"inventorysync.com/pkg/lock"
	"inventorysync.com/pkg/logging"
	"inventorysync.com/pkg/schedule"
	"inventorysync.com/pkg/shopify"
)

// Runs the scheduled vendor adjustment once and exits non-zero on failure.
func main() {
	vendor := flag.String("vendor", "", "vendor to adjust (defaults to SCHEDULE_VENDOR)")
	flag.Parse()

	conf, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *vendor != "" {
		conf.ScheduleVendor = *vendor
	}

	logger, err := logging.New(conf.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	s := shopify.NewService(shopify.Config{
		Shop:        conf.ShopifyStore,
		AccessToken: conf.ShopifyAccessToken,
		APIVersion:  conf.ShopifyAPIVersion,
		Timeout:     conf.ShopifyTimeout,
		Workers:     conf.ShopifyWorkers,
		Logger:      logger.Named("shopify"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	locker, closeLocker, err := lock.Open(ctx, conf.RedisURL)
	cancel()
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer closeLocker() //nolint:errcheck

	job := schedule.NewJob(inventory.NewSyncer(s, logger), schedule.Options{
		Vendor:  conf.ScheduleVendor,
		Timeout: conf.ScheduleTimeout,
		LockTTL: conf.ScheduleLockTTL,
		Locker:  locker,
		Logger:  logger,
	})

	report := job.Run(context.Background())
	if report.Skipped {
		logger.Warn("update skipped, another run holds the lock", zap.String("run_id", report.RunID))
	}
	if report.Err != nil {
		logger.Error("update failed", zap.String("run_id", report.RunID), zap.Error(report.Err))
		closeLocker() //nolint:errcheck
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
} // ./main
