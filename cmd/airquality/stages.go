package main

import (
	"context"
	"fmt"

	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/service/acquirer"
	"github.com/ougirez/airquality/internal/service/charts"
	"github.com/ougirez/airquality/internal/service/dashboard"
	"github.com/ougirez/airquality/internal/service/harmonizer"
	"github.com/ougirez/airquality/internal/service/loader"
	"github.com/ougirez/airquality/internal/service/pipeline"
	"github.com/spf13/cobra"
)

func (a *app) fetch(ctx context.Context) error {
	_, err := acquirer.NewAcquirerService(a.cfg.Fetch).Fetch(ctx)
	return err
}

func (a *app) clean(ctx context.Context) error {
	svc, err := harmonizer.NewHarmonizerService(a.cfg.Clean)
	if err != nil {
		return err
	}
	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if report.Duplicates > 0 {
		logger.Warnf(ctx, "%d duplicate rows, %d dropped", report.Duplicates, report.DuplicatesDropped)
	}
	return nil
}

func (a *app) load(ctx context.Context) error {
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = loader.NewLoaderService(s).Load(ctx, a.cfg.Clean.OutputPath)
	return err
}

func (a *app) charts(ctx context.Context) error {
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	svc, err := charts.NewChartsService(s, a.cfg)
	if err != nil {
		return err
	}
	report, err := svc.GenerateAll(ctx)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		logger.Warnf(ctx, "%d charts failed", len(report.Failed))
	}
	return nil
}

func (a *app) generateMap(ctx context.Context) error {
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	svc, err := charts.NewChartsService(s, a.cfg)
	if err != nil {
		return err
	}
	_, err = svc.GenerateMap(ctx)
	return err
}

func (a *app) dashboard(ctx context.Context) error {
	return dashboard.NewDashboardService(a.cfg).BuildAll(ctx)
}

func (a *app) stages(skipFetch bool) []pipeline.Stage {
	var stages []pipeline.Stage
	if !skipFetch {
		stages = append(stages, pipeline.Stage{Name: "fetch", Run: a.fetch})
	}
	return append(stages,
		pipeline.Stage{Name: "clean", Run: a.clean},
		pipeline.Stage{Name: "load", Run: a.load},
		pipeline.Stage{Name: "charts", Run: a.charts},
		pipeline.Stage{Name: "map", Run: a.generateMap},
		pipeline.Stage{Name: "dashboard", Run: a.dashboard},
	)
}

// stageCmd одна команда на один этап.
func (a *app) stageCmd(use, short string, run func(ctx context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logger.WithKV(cmd.Context(), "stage", use)
			if err := run(ctx); err != nil {
				logger.Errorf(ctx, "%s: %s", use, err.Error())
				return fmt.Errorf("%s: %w", use, err)
			}
			return nil
		},
	}
}

func (a *app) newFetchCmd() *cobra.Command {
	return a.stageCmd("fetch", "Download and extract the raw INERIS archive", a.fetch)
}

func (a *app) newCleanCmd() *cobra.Command {
	return a.stageCmd("clean", "Harmonize raw yearly CSVs into one cleaned CSV", a.clean)
}

func (a *app) newLoadCmd() *cobra.Command {
	return a.stageCmd("load", "Replace the air_quality table with the cleaned CSV", a.load)
}

func (a *app) newChartsCmd() *cobra.Command {
	return a.stageCmd("charts", "Generate histograms and scatter plots per year and pollutant", a.charts)
}

func (a *app) newMapCmd() *cobra.Command {
	return a.stageCmd("map", "Generate the interactive pollution map", a.generateMap)
}

func (a *app) newDashboardCmd() *cobra.Command {
	var watch bool

	cmd := a.stageCmd("dashboard", "Assemble viewer pages and the dashboard", a.dashboard)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := logger.WithKV(cmd.Context(), "stage", "dashboard")
		svc := dashboard.NewDashboardService(a.cfg)
		if watch {
			return svc.Watch(ctx)
		}
		return svc.BuildAll(ctx)
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild when chart directories change")
	return cmd
}
