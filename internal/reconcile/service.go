// Package reconcile loads quotations and inventory, aligns them and
// classifies every pair, one committed view per session.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quotewise/quotewise-backend/internal/bindings"
	"github.com/quotewise/quotewise-backend/internal/compare"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/internal/matching"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
	"github.com/quotewise/quotewise-backend/pkg/metrics"
)

const (
	outcomeOK    = "ok"
	outcomeStale = "stale"
	outcomeError = "error"
)

// Service runs reconciliations and holds each session's committed view.
type Service interface {
	Run(ctx context.Context, sessionID string, req Request) (*Result, error)
	View(sessionID string) (*Result, error)
	Refresh(ctx context.Context)
	Reset(sessionID string) error
}

// ServiceParams wires the reconcile service.
type ServiceParams struct {
	Quotations quotations.Service
	Inventory  inventory.Service
	Bindings   bindings.Service
	Caches     Caches
	Tracker    *Tracker
	Metrics    *metrics.ReconcileMetrics
	Logger     *logger.Logger
	Clock      func() time.Time
}

type service struct {
	quotations quotations.Service
	inventory  inventory.Service
	bindings   bindings.Service
	caches     Caches
	tracker    *Tracker
	metrics    *metrics.ReconcileMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds a reconcile service.
func NewService(params ServiceParams) (Service, error) {
	if params.Quotations == nil {
		return nil, fmt.Errorf("quotation service required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if params.Bindings == nil {
		return nil, fmt.Errorf("binding service required")
	}
	if params.Caches.Quotations == nil || params.Caches.Inventory == nil || params.Caches.UPCMap == nil {
		return nil, fmt.Errorf("reconcile caches required")
	}
	tracker := params.Tracker
	if tracker == nil {
		tracker = NewTracker()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		quotations: params.Quotations,
		inventory:  params.Inventory,
		bindings:   params.Bindings,
		caches:     params.Caches,
		tracker:    tracker,
		metrics:    params.Metrics,
		logg:       logg,
		now:        now,
	}, nil
}

func (s *service) Run(ctx context.Context, sessionID string, req Request) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := s.now()
	runCtx, tok := s.tracker.Begin(ctx, sessionID)
	defer s.tracker.Finish(tok)

	result, err := s.run(runCtx, tok, req)
	if err == nil {
		err = s.tracker.Commit(tok, result)
	}

	outcome := outcomeOK
	switch {
	case errors.Is(err, ErrStaleRequest):
		outcome = outcomeStale
		s.metrics.IncStale()
	case err != nil:
		outcome = outcomeError
	}
	elapsed := s.now().Sub(started)
	s.metrics.ObserveRun(req.Dimension.String(), outcome, elapsed)

	logCtx := s.logg.WithSessionID(ctx, sessionID)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"generation":  tok.Generation,
		"suppliers":   len(req.SupplierCodes),
		"dimension":   req.Dimension.String(),
		"outcome":     outcome,
		"duration_ms": elapsed.Milliseconds(),
	})
	switch outcome {
	case outcomeStale:
		s.logg.Info(logCtx, "reconcile.stale_discarded")
		return nil, ErrStaleRequest
	case outcomeError:
		s.logg.Error(logCtx, "reconcile.failed", err)
		return nil, err
	}

	s.metrics.AddResults(result.Summary.ByLabel())
	logCtx = s.logg.WithField(logCtx, "rows", result.Summary.Total)
	s.logg.Info(logCtx, "reconcile.completed")
	return result, nil
}

func (s *service) run(ctx context.Context, tok Token, req Request) (*Result, error) {
	codes := req.SupplierCodes
	qFilter := req.QuotationFilter()
	invFilter := req.InventoryFilter()

	quotes, err := s.caches.Quotations.GetOrLoad(ctx, codes, qFilter, func(ctx context.Context) ([]models.SupplierQuotation, error) {
		return s.quotations.ListAll(ctx, qFilter)
	})
	if err := s.resume(tok, err, "load quotations"); err != nil {
		return nil, err
	}

	rows, err := s.caches.Inventory.GetOrLoad(ctx, codes, invFilter, func(ctx context.Context) ([]models.InventorySummary, error) {
		return s.inventory.ListSummaries(ctx, invFilter)
	})
	if err := s.resume(tok, err, "load inventory"); err != nil {
		return nil, err
	}

	upcs := matching.UPCs(quotes)
	sort.Strings(upcs)
	upcParams := map[string]any{"upcs": upcs}
	upcToSku, err := s.caches.UPCMap.GetOrLoad(ctx, codes, upcParams, func(ctx context.Context) (map[string][]string, error) {
		return s.inventory.UPCSkuMap(ctx, upcs)
	})
	if err := s.resume(tok, err, "load upc sku map"); err != nil {
		return nil, err
	}

	bindingRows, err := s.bindings.Lookup(ctx, bindings.KeysFor(quotes))
	if err := s.resume(tok, err, "load sku bindings"); err != nil {
		return nil, err
	}

	pairs := matching.Reconcile(quotes, rows, upcToSku, matching.NewBindings(bindingRows), invFilter.Scope())
	return s.assemble(req, pairs), nil
}

// resume is called after every load. A superseded run reports ErrStaleRequest
// even when the load itself failed, since the failure is usually the
// cancellation triggered by the newer run.
func (s *service) resume(tok Token, loadErr error, step string) error {
	if err := s.tracker.Check(tok); err != nil {
		return err
	}
	if loadErr != nil {
		return pkgerrors.Ensure(pkgerrors.CodeDependency, loadErr, step)
	}
	return nil
}

func (s *service) assemble(req Request, pairs []matching.AlignedPair) *Result {
	classifications := make([]compare.Classification, len(pairs))
	for i, pair := range pairs {
		classifications[i] = compare.Classify(pair.Quotation, pair.Inventory, req.Dimension, req.PriceField)
	}

	keep := resultFilter(req.Results)
	out := make([]Row, 0, len(pairs))
	for i, pair := range pairs {
		c := classifications[i]
		if keep != nil {
			if _, ok := keep[c.Result]; !ok {
				continue
			}
		}
		row := Row{
			Quotation:   pair.Quotation,
			Inventory:   pair.Inventory,
			SKU:         pair.SKU,
			MatchSource: pair.Source,
			Comparison:  c,
		}
		if price := pair.Quotation.EffectivePrice(); price.Valid {
			p := price.Decimal
			row.SupplierPrice = &p
		}
		out = append(out, row)
	}

	return &Result{
		Request:     req,
		Rows:        out,
		Summary:     compare.Summarize(classifications),
		GeneratedAt: s.now().UTC(),
	}
}

func resultFilter(results []enums.ComparisonResult) map[enums.ComparisonResult]struct{} {
	if len(results) == 0 {
		return nil
	}
	keep := make(map[enums.ComparisonResult]struct{}, len(results))
	for _, r := range results {
		keep[r] = struct{}{}
	}
	return keep
}

func (s *service) View(sessionID string) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	result, ok := s.tracker.View(sessionID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no reconciliation committed for this session")
	}
	return result, nil
}

// Refresh clears every cache so the next run reloads from the source.
func (s *service) Refresh(ctx context.Context) {
	s.caches.InvalidateAll(ctx)
	s.logg.Info(ctx, "reconcile.caches_cleared")
}

func (s *service) Reset(sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	s.tracker.Reset(sessionID)
	return nil
}
