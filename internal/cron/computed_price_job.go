package cron

import (
	"context"
	"fmt"

	"github.com/quotewise/quotewise-backend/pkg/logger"
)

// ComputedPriceJobName identifies the computed price refresh in logs and metrics.
const ComputedPriceJobName = "computed-price-refresh"

type computedPriceRefresher interface {
	RefreshComputedPrices(ctx context.Context, supplierCode string, upcs []string) (int, error)
}

type cacheInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// ComputedPriceJobParams configure the computed price refresh job.
// Invalidator is optional; when set, cached reconcile inputs are retired after
// any row changes.
type ComputedPriceJobParams struct {
	Logger      *logger.Logger
	Refresher   computedPriceRefresher
	Invalidator cacheInvalidator
}

type computedPriceJob struct {
	logg        *logger.Logger
	refresher   computedPriceRefresher
	invalidator cacheInvalidator
}

// NewComputedPriceJob builds the job that recomputes every quotation's
// computed supply price from the ratio table.
func NewComputedPriceJob(params ComputedPriceJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Refresher == nil {
		return nil, fmt.Errorf("computed price refresher required")
	}
	return &computedPriceJob{logg: params.Logger, refresher: params.Refresher, invalidator: params.Invalidator}, nil
}

func (j *computedPriceJob) Name() string { return ComputedPriceJobName }

func (j *computedPriceJob) Run(ctx context.Context) error {
	updated, err := j.refresher.RefreshComputedPrices(ctx, "", nil)
	if err != nil {
		return fmt.Errorf("refresh computed prices: %w", err)
	}
	if updated > 0 && j.invalidator != nil {
		j.invalidator.InvalidateAll(ctx)
	}
	ctx = j.logg.WithField(ctx, "updated", updated)
	j.logg.Info(ctx, "computed prices refreshed")
	return nil
}
