package controllers

import (
	"net/http"

	"github.com/quotewise/quotewise-backend/api/responses"
	"github.com/quotewise/quotewise-backend/api/validators"
	"github.com/quotewise/quotewise-backend/internal/bindings"
	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
	"github.com/quotewise/quotewise-backend/pkg/logger"
)

type bindingLookupPayload struct {
	Keys []bindings.Key `json:"keys" validate:"required,min=1,max=1000,dive"`
}

type bindingSetPayload struct {
	SupplierCode        string `json:"supplier_code" validate:"required,max=64"`
	SupplierProductCode string `json:"supplier_product_code" validate:"required,max=64"`
	SKU                 string `json:"sku" validate:"required,max=64"`
}

func bindingKeyFromQuery(r *http.Request) bindings.Key {
	q := r.URL.Query()
	return bindings.Key{
		SupplierCode:        validators.SanitizeString(q.Get("supplier_code"), 64),
		SupplierProductCode: validators.SanitizeString(q.Get("product_code"), 64),
	}
}

// BindingGet returns the binding for one supplier product.
func BindingGet(svc bindings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "binding service unavailable"))
			return
		}
		binding, err := svc.Get(ctx, bindingKeyFromQuery(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, binding)
	}
}

// BindingsLookup returns the bindings that exist for the given keys.
func BindingsLookup(svc bindings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "binding service unavailable"))
			return
		}

		var payload bindingLookupPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.Lookup(ctx, payload.Keys)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// BindingSet creates or replaces a binding.
func BindingSet(svc bindings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "binding service unavailable"))
			return
		}

		var payload bindingSetPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		key := bindings.Key{SupplierCode: payload.SupplierCode, SupplierProductCode: payload.SupplierProductCode}
		saved, err := svc.Set(ctx, key, payload.SKU)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

// BindingClear removes a binding. Removing a missing binding succeeds with removed=false.
func BindingClear(svc bindings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "binding service unavailable"))
			return
		}
		removed, err := svc.Clear(ctx, bindingKeyFromQuery(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": removed})
	}
}
