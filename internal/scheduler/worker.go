package scheduler

import (
	"context"
	"fmt"

	ingestion "bidlens_backend/internal/ingestion/service"
	"bidlens_backend/platform/config"
	"bidlens_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	orchestrator *ingestion.Orchestrator
	ingestCfg    config.IngestionConfig
	log          *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, ingestCfg config.IngestionConfig, orchestrator *ingestion.Orchestrator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		orchestrator: orchestrator,
		ingestCfg:    ingestCfg,
		log:          log,
	}

	mux.HandleFunc(TaskIngestionRun, w.handleIngestionRun)

	return w, nil
}

func (w *Worker) handleIngestionRun(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseIngestionRunPayload(task)
	if err != nil {
		return err
	}

	codes := payload.CategoryCodes
	if len(codes) == 0 {
		codes = w.ingestCfg.GetDefaultCategoryCodes()
	}
	lookback := payload.LookbackDays
	if lookback <= 0 {
		lookback = w.ingestCfg.GetDefaultLookbackDays()
	}

	summary, err := w.orchestrator.Run(ctx, codes, lookback)
	if err != nil {
		return err
	}

	w.log.Info("scheduled ingestion run finished",
		"runId", summary.RunID,
		"inserted", summary.Totals.Inserted,
		"updated", summary.Totals.Updated,
		"errors", summary.Totals.Errors,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
