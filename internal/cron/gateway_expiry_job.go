package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
	"go.uber.org/multierr"
)

const defaultPurgeRetention = 30 * 24 * time.Hour

// pendingReaper covers the pending gateway order maintenance the job needs.
type pendingReaper interface {
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// GatewayExpiryJobParams configure the gateway order reaper.
type GatewayExpiryJobParams struct {
	Logger  *logger.Logger
	Pending pendingReaper
	// Retention controls how long terminal rows are kept before purge.
	Retention time.Duration
}

// NewGatewayExpiryJob builds the cron job that expires stale gateway
// orders and purges terminal rows past their retention.
func NewGatewayExpiryJob(params GatewayExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pending == nil {
		return nil, fmt.Errorf("pending gateway repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultPurgeRetention
	}
	return &gatewayExpiryJob{
		logg:      params.Logger,
		pending:   params.Pending,
		retention: retention,
		now:       time.Now,
	}, nil
}

type gatewayExpiryJob struct {
	logg      *logger.Logger
	pending   pendingReaper
	retention time.Duration
	now       func() time.Time
}

func (j *gatewayExpiryJob) Name() string { return "gateway-expiry" }

func (j *gatewayExpiryJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.expireStale(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.purgeTerminal(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *gatewayExpiryJob) expireStale(ctx context.Context) error {
	count, err := j.pending.ExpireBefore(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expire pending gateway orders: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "gateway order expiry loop complete")
	return nil
}

func (j *gatewayExpiryJob) purgeTerminal(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	count, err := j.pending.PurgeBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge gateway orders: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "gateway order purge loop complete")
	return nil
}
