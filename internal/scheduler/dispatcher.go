package scheduler

import (
	"context"
	"time"

	"bidlens_backend/platform/config"
	"bidlens_backend/platform/logger"
)

// IngestionDispatcher enqueues an ingestion run on a fixed interval. The
// worker side executes the runs, so a missed tick only delays the next pull.
type IngestionDispatcher struct {
	client    *Client
	interval  time.Duration
	ingestCfg config.IngestionConfig
	log       *logger.Logger
}

func NewIngestionDispatcher(cfg config.SchedulerConfig, ingestCfg config.IngestionConfig, log *logger.Logger) (*IngestionDispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.GetIngestInterval()
	if interval <= 0 {
		interval = 12 * time.Hour
	}

	return &IngestionDispatcher{
		client:    client,
		interval:  interval,
		ingestCfg: ingestCfg,
		log:       log,
	}, nil
}

func (d *IngestionDispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}

// Run enqueues one run immediately, then one per interval until ctx ends.
func (d *IngestionDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.enqueue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.enqueue(ctx)
		}
	}
}

func (d *IngestionDispatcher) enqueue(ctx context.Context) {
	payload := IngestionRunPayload{
		CategoryCodes: d.ingestCfg.GetDefaultCategoryCodes(),
		LookbackDays:  d.ingestCfg.GetDefaultLookbackDays(),
	}

	if err := d.client.EnqueueIngestionRun(ctx, payload); err != nil {
		d.log.Warn("failed to enqueue ingestion run", "error", err)
		return
	}
	d.log.Info("ingestion run enqueued", "categories", payload.CategoryCodes, "lookbackDays", payload.LookbackDays)
}
