package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ougirez/airquality/internal/api"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/pkg/store"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and the visitor form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	// база может подняться позже сервера, поэтому открываем ее при первом запросе
	stores := store.NewLazy(func(ctx context.Context) (store.Store, error) {
		s, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		if err = s.EnsureSchema(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("store.EnsureSchema: %w", err)
		}
		return s, nil
	})
	defer stores.Close()

	if _, err := stores.Get(ctx); err != nil {
		logger.Warnf(ctx, "store not ready, will retry on demand: %s", err.Error())
	}

	svc, err := api.NewAPIService(a.cfg.Server, a.cfg.Dashboard.StaticDir, stores)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(a.cfg.Server.Addr) }()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infof(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = svc.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
