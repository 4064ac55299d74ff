package main

import (
	"context"
	"fmt"

	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/service/pipeline"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

func (a *app) newRunCmd() *cobra.Command {
	var (
		skipFetch bool
		schedule  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run fetch, clean, load, charts, map and dashboard in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if schedule == "" {
				schedule = a.cfg.Schedule
			}
			if schedule == "" {
				return pipeline.Run(cmd.Context(), a.stages(skipFetch))
			}
			return a.runScheduled(cmd.Context(), schedule, skipFetch)
		},
	}
	cmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "Use raw files already on disk")
	cmd.Flags().StringVar(&schedule, "schedule", "", `Cron spec to repeat the run, e.g. "@every 24h"`)
	return cmd
}

// runScheduled сразу делает один прогон, затем повторяет по расписанию до отмены ctx.
func (a *app) runScheduled(ctx context.Context, spec string, skipFetch bool) error {
	runs := make(chan struct{}, 1)

	c := cron.New()
	err := c.AddFunc(spec, func() {
		select {
		case runs <- struct{}{}:
		default:
			logger.Warnf(ctx, "previous run still in progress, tick skipped")
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", spec, err)
	}
	c.Start()
	defer c.Stop()

	logger.Infof(ctx, "scheduled with %q", spec)
	runs <- struct{}{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-runs:
			if err = pipeline.Run(ctx, a.stages(skipFetch)); err != nil {
				logger.Errorf(ctx, "scheduled run: %s", err.Error())
			}
		}
	}
}
