package controllers

import (
	"net/http"

	"github.com/quotewise/quotewise-backend/api/responses"
	"github.com/quotewise/quotewise-backend/api/validators"
	"github.com/quotewise/quotewise-backend/internal/ratios"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
)

// RatiosGet lists a supplier's price ratios, optionally narrowed to UPCs.
func RatiosGet(svc ratios.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ratio service unavailable"))
			return
		}
		code := validators.SanitizeString(r.URL.Query().Get("supplier_code"), 64)
		rows, err := svc.Get(ctx, code, validators.ParseQueryList(r, "upc"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// RatioSet creates or replaces a price ratio and refreshes the computed prices it affects.
func RatioSet(svc ratios.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ratio service unavailable"))
			return
		}

		var input ratios.SetInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		saved, err := svc.Set(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

// RatioClear removes a price ratio and reports whether one existed.
func RatioClear(svc ratios.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ratio service unavailable"))
			return
		}
		q := r.URL.Query()
		removed, err := svc.Clear(ctx,
			validators.SanitizeString(q.Get("supplier_code"), 64),
			validators.SanitizeString(q.Get("upc"), 64),
		)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": removed})
	}
}
