package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quotewise/quotewise-backend/api/responses"
	"github.com/quotewise/quotewise-backend/api/validators"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
	"github.com/quotewise/quotewise-backend/pkg/pagination"
)

type remarkPayload struct {
	Remark string `json:"remark" validate:"max=500"`
}

type importPayload struct {
	Rows []quotations.ImportRow `json:"rows" validate:"required,min=1,max=5000,dive"`
}

type refreshComputedPayload struct {
	SupplierCode string   `json:"supplier_code" validate:"max=64"`
	UPCs         []string `json:"upcs" validate:"max=5000"`
}

// QuotationsList returns one page of quotations matching the query filters.
func QuotationsList(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		q := r.URL.Query()
		filter := quotations.Filter{
			SupplierCodes: validators.ParseQueryList(r, "supplier_codes"),
			SupplierName:  validators.SanitizeString(q.Get("supplier_name"), 255),
			ProductName:   validators.SanitizeString(q.Get("product_name"), 255),
			UPC:           validators.SanitizeString(q.Get("upc"), 64),
		}
		out, err := svc.List(ctx, filter, pagination.Params{Page: page, PageSize: pageSize})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// QuotationRemark replaces the remark on a quotation.
func QuotationRemark(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "quotationId")))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quotation id"))
			return
		}

		var payload remarkPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.UpdateRemark(ctx, id, payload.Remark)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// QuotationsImport upserts a batch of quotation rows and recomputes their prices.
func QuotationsImport(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		var payload importPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Import(ctx, quotations.ImportModels(payload.Rows))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// QuotationsRefreshComputed recomputes computed supply prices. An empty
// supplier code recomputes every supplier.
func QuotationsRefreshComputed(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		var payload refreshComputedPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.RefreshComputedPrices(ctx, payload.SupplierCode, payload.UPCs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"updated": updated})
	}
}
