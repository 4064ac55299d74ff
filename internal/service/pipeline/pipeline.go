package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/airquality/internal/pkg/logger"
)

type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Run выполняет этапы по порядку и останавливается на первой ошибке.
func Run(ctx context.Context, stages []Stage) error {
	runID := uuid.NewString()
	ctx = logger.WithKV(ctx, "run_id", runID)

	started := time.Now()
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		stageCtx := logger.WithKV(ctx, "stage", st.Name)
		t := time.Now()
		logger.Infof(stageCtx, "stage %s started", st.Name)

		if err := st.Run(stageCtx); err != nil {
			logger.Errorf(stageCtx, "stage %s failed: %s", st.Name, err.Error())
			return fmt.Errorf("stage %s: %w", st.Name, err)
		}
		logger.Infof(stageCtx, "stage %s done in %s", st.Name, time.Since(t).Round(time.Millisecond))
	}

	logger.Infof(ctx, "pipeline done in %s", time.Since(started).Round(time.Millisecond))
	return nil
}
