package controllers

import (
	"net/http"
	"strings"

	"github.com/quotewise/quotewise-backend/api/middleware"
	"github.com/quotewise/quotewise-backend/api/responses"
	"github.com/quotewise/quotewise-backend/api/validators"
	"github.com/quotewise/quotewise-backend/internal/reconcile"
	"github.com/quotewise/quotewise-backend/pkg/enums"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
)

type reconcilePayload struct {
	SupplierCodes []string `json:"supplier_codes" validate:"required,min=1,max=200,dive,required,max=64"`
	SupplierName  string   `json:"supplier_name" validate:"max=255"`
	ProductName   string   `json:"product_name" validate:"max=255"`
	UPC           string   `json:"upc" validate:"max=64"`
	Dimension     string   `json:"dimension"`
	StoreName     string   `json:"store_name" validate:"max=255"`
	City          string   `json:"city" validate:"max=255"`
	PriceField    string   `json:"price_field"`
	Results       []string `json:"results" validate:"max=16"`
}

// request accepts enum values by code or by their display label.
func (p reconcilePayload) request() (reconcile.Request, error) {
	req := reconcile.Request{
		SupplierCodes: p.SupplierCodes,
		SupplierName:  p.SupplierName,
		ProductName:   p.ProductName,
		UPC:           p.UPC,
		StoreName:     p.StoreName,
		City:          p.City,
	}
	if strings.TrimSpace(p.Dimension) != "" {
		dim, err := enums.ParseDimension(p.Dimension)
		if err != nil {
			return req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dimension")
		}
		req.Dimension = dim
	}
	if strings.TrimSpace(p.PriceField) != "" {
		field, err := enums.ParsePriceField(p.PriceField)
		if err != nil {
			return req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_field")
		}
		req.PriceField = &field
	}
	for _, raw := range p.Results {
		result, err := enums.ParseComparisonResult(raw)
		if err != nil {
			return req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid results filter")
		}
		req.Results = append(req.Results, result)
	}
	return req, nil
}

func sessionFromRequest(r *http.Request) (string, error) {
	if id := middleware.SessionIDFromContext(r.Context()); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(r.Header.Get(middleware.SessionIDHeader)); id != "" {
		return id, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, middleware.SessionIDHeader+" header is required")
}

// ReconcileRun runs a reconciliation for the caller's session and returns the committed result.
func ReconcileRun(svc reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload reconcilePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		req, err := payload.request()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Run(ctx, sessionID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ReconcileView returns the last committed result for the session.
func ReconcileView(svc reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.View(sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ReconcileReset drops the session's view and supersedes any run in flight.
func ReconcileReset(svc reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}
		sessionID, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Reset(sessionID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"reset": true})
	}
}

// ReconcileRefresh clears the loader caches.
func ReconcileRefresh(svc reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}
		svc.Refresh(ctx)
		responses.WriteSuccess(w, map[string]bool{"refreshed": true})
	}
}
