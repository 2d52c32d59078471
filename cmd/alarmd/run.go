package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/redelk-project/alarmd/internal/config"
	"github.com/redelk-project/alarmd/internal/logging"
	"github.com/redelk-project/alarmd/internal/module"
	"github.com/redelk-project/alarmd/internal/pipeline"
	"github.com/redelk-project/alarmd/internal/runlog"
	"github.com/redelk-project/alarmd/internal/schedule"
	"github.com/redelk-project/alarmd/internal/search"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one pass of the alarm pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
		logging.SetDefault(logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		searchClient, err := search.New(search.Config{
			URL:      cfg.OpenSearch.URL,
			Username: cfg.OpenSearch.Username,
			Password: cfg.OpenSearch.Password,
			Insecure: cfg.OpenSearch.Insecure,
		})
		if err != nil {
			return fmt.Errorf("create search client: %w", err)
		}
		if err := searchClient.Ping(ctx); err != nil {
			return fmt.Errorf("search backend unreachable: %w", err)
		}

		var redisClient *redis.Client
		if cfg.Redis.Enabled {
			opts, err := redis.ParseURL(cfg.Redis.URL)
			if err != nil {
				return fmt.Errorf("parse redis url: %w", err)
			}
			redisClient = redis.NewClient(opts)
			defer redisClient.Close()
		}

		sched := schedule.New(redisClient, cfg.Redis.Enabled,
			cfg.Schedule.DefaultInterval, cfg.Intervals(), logger)
		recorder := runlog.NewOpenSearch(searchClient, cfg.RunLog.Index, logger)

		registry := module.NewRegistry(logger)
		registry.Load(module.Registered())

		deps := &module.Deps{Search: searchClient, Config: cfg, Logger: logger}
		enablement := pipeline.Enablement{
			Alarms:        enabledNames(cfg.Alarms),
			Notifications: enabledNames(cfg.Notifications),
		}

		p := pipeline.New(registry, sched, recorder, searchClient, enablement, deps, logger)
		return p.Run(ctx)
	},
}

func enabledNames(modules map[string]config.ModuleConfig) map[string]bool {
	out := make(map[string]bool, len(modules))
	for name, m := range modules {
		out[name] = m.Enabled
	}
	return out
}
