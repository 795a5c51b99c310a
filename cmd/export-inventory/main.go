package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"inventorysync.com/pkg/config"
	"inventorysync.com/pkg/inventory"
	"inventorysync.com/pkg/logging"
	"inventorysync.com/pkg/shopify"
)

var (
	vendor string
	out    string
)

func init() {
	flag.StringVar(&vendor, "vendor", "", "vendor whose levels are exported (defaults to SCHEDULE_VENDOR)")
	flag.StringVar(&out, "out", "inventory.csv", "output file, - for stdout")
	flag.Parse()
} // ./init

func main() {
	conf, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if vendor == "" {
		vendor = conf.ScheduleVendor
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
	syncer := inventory.NewSyncer(s, logger)

	levels, err := syncer.VendorLevels(context.Background(), vendor)
	if err != nil {
		logger.Fatal("fetch levels", zap.String("vendor", vendor), zap.Error(err))
	}

	f := os.Stdout
	if out != "-" {
		f, err = os.OpenFile(out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logger.Fatal("open output", zap.Error(err))
		}
		defer f.Close()
	}
	if err := inventory.WriteCSV(f, levels); err != nil {
		logger.Fatal("write csv", zap.Error(err))
	}
	logger.Info("exported inventory levels", zap.String("vendor", vendor), zap.Int("levels", len(levels)), zap.String("out", out))
} // ./main
