package controllers

import (
	"net/http"
	"strings"

	"github.com/quotewise/quotewise-backend/api/responses"
	"github.com/quotewise/quotewise-backend/api/validators"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/pkg/enums"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
)

type upcSkuPayload struct {
	UPCs []string `json:"upcs" validate:"required,min=1,max=5000"`
}

// InventoryList returns inventory summaries for one dimension.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		q := r.URL.Query()
		dimension := enums.DimensionAll
		if raw := strings.TrimSpace(q.Get("dimension")); raw != "" {
			parsed, err := enums.ParseDimension(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dimension"))
				return
			}
			dimension = parsed
		}

		rows, err := svc.ListSummaries(ctx, inventory.Filter{
			Dimension: dimension,
			StoreName: validators.SanitizeString(q.Get("store_name"), 255),
			City:      validators.SanitizeString(q.Get("city"), 255),
			SKU:       validators.SanitizeString(q.Get("sku"), 64),
			Keyword:   validators.SanitizeString(q.Get("keyword"), 255),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// InventoryUPCSku maps UPCs to the SKUs they identify.
func InventoryUPCSku(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload upcSkuPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out, err := svc.UPCSkuMap(ctx, payload.UPCs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
