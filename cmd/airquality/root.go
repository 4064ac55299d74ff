package main

import (
	"context"
	"fmt"

	"github.com/ougirez/airquality/internal/pkg/config"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/pkg/store"
	"github.com/ougirez/airquality/internal/pkg/store/xdb"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := new(app)

	cmd := &cobra.Command{
		Use:           "airquality",
		Short:         "INERIS air quality pipeline: fetch, clean, load, charts, dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if err = logger.Init(cfg.Log.Level, cfg.Log.Mode); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to yaml config")

	cmd.AddCommand(
		a.newFetchCmd(),
		a.newCleanCmd(),
		a.newLoadCmd(),
		a.newChartsCmd(),
		a.newMapCmd(),
		a.newDashboardCmd(),
		a.newServeCmd(),
		a.newRunCmd(),
	)
	return cmd
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	db := a.cfg.Database
	pool, err := xdb.Open(ctx, xdb.Config{
		Driver:   xdb.Driver(db.Driver),
		Host:     db.Host,
		Port:     db.Port,
		Name:     db.Name,
		User:     db.User,
		Password: db.Password,
		SSLMode:  db.SSLMode,
		Path:     db.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("xdb.Open: %w", err)
	}
	return store.NewStore(pool), nil
}
