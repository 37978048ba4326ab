package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotewise/quotewise-backend/pkg/logger"
)

type stubRefresher struct {
	codes   []string
	upcs    [][]string
	updated int
	err     error
}

func (s *stubRefresher) RefreshComputedPrices(_ context.Context, code string, upcs []string) (int, error) {
	s.codes = append(s.codes, code)
	s.upcs = append(s.upcs, upcs)
	return s.updated, s.err
}

type countingInvalidator struct {
	all int
}

func (c *countingInvalidator) InvalidateAll(context.Context) { c.all++ }

func TestComputedPriceJobRefreshesEverySupplier(t *testing.T) {
	refresher := &stubRefresher{updated: 3}
	job, err := NewComputedPriceJob(ComputedPriceJobParams{Logger: logger.Nop(), Refresher: refresher})
	require.NoError(t, err)

	assert.Equal(t, ComputedPriceJobName, job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{""}, refresher.codes)
	assert.Nil(t, refresher.upcs[0])
}

func TestComputedPriceJobInvalidatesCachesWhenRowsChange(t *testing.T) {
	inv := &countingInvalidator{}
	refresher := &stubRefresher{updated: 2}
	job, err := NewComputedPriceJob(ComputedPriceJobParams{Logger: logger.Nop(), Refresher: refresher, Invalidator: inv})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, inv.all)

	refresher.updated = 0
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, inv.all, "no changed rows, nothing to retire")

	refresher.err = errors.New("db down")
	require.Error(t, job.Run(context.Background()))
	assert.Equal(t, 1, inv.all)
}

func TestComputedPriceJobPropagatesErrors(t *testing.T) {
	job, err := NewComputedPriceJob(ComputedPriceJobParams{Logger: logger.Nop(), Refresher: &stubRefresher{err: errors.New("db down")}})
	require.NoError(t, err)
	assert.ErrorContains(t, job.Run(context.Background()), "db down")
}

func TestNewComputedPriceJobRequiresDeps(t *testing.T) {
	_, err := NewComputedPriceJob(ComputedPriceJobParams{Refresher: &stubRefresher{}})
	assert.Error(t, err)
	_, err = NewComputedPriceJob(ComputedPriceJobParams{Logger: logger.Nop()})
	assert.Error(t, err)
}
