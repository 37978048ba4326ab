// Package matching pairs supplier quotations with inventory summaries.
package matching

import (
	"strings"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
)

// AlignedPair is one quotation and the inventory row it resolved to.
// Inventory is nil when nothing matched.
type AlignedPair struct {
	Quotation models.SupplierQuotation
	Inventory *models.InventorySummary
	// SKU is the identity of the pair. A manual binding wins over the
	// matched row's SKU.
	SKU    string
	Source enums.MatchSource
}

// Matched reports whether the pair has an inventory row.
func (p AlignedPair) Matched() bool {
	return p.Inventory != nil
}

// Bindings maps BindingKey(supplier code, supplier product code) to a SKU.
type Bindings map[string]string

// BindingKey is the lookup key for a supplier product's manual binding.
func BindingKey(supplierCode, supplierProductCode string) string {
	return strings.TrimSpace(supplierCode) + "\x1f" + strings.TrimSpace(supplierProductCode)
}

// NewBindings indexes binding rows. Rows with an empty SKU are skipped.
func NewBindings(rows []models.SkuBinding) Bindings {
	out := make(Bindings, len(rows))
	for _, row := range rows {
		sku := strings.TrimSpace(row.SKU)
		if sku == "" {
			continue
		}
		out[BindingKey(row.SupplierCode, row.SupplierProductCode)] = sku
	}
	return out
}

// For returns the bound SKU of q, or "".
func (b Bindings) For(q models.SupplierQuotation) string {
	if b == nil {
		return ""
	}
	return strings.TrimSpace(b[BindingKey(q.SupplierCode, q.SupplierProductCode)])
}

// Reconcile resolves every quotation against rows and returns one pair per
// quotation in input order.
//
// Resolution order: UPC→SKU map, then the manual binding when the map has no
// SKUs for the UPC, then a direct match on the inventory UPC tokens, then the
// manual binding again when nothing above found a row. When a
// binding names a different SKU than the matched row, the bound SKU's row in
// the same scope replaces it. When several rows qualify the first one in
// rows order wins.
func Reconcile(quotations []models.SupplierQuotation, rows []models.InventorySummary, upcToSku map[string][]string, bindings Bindings, scope Scope) []AlignedPair {
	ix := NewIndex(rows)
	pairs := make([]AlignedPair, 0, len(quotations))
	for _, q := range quotations {
		pairs = append(pairs, resolve(ix, q, upcToSku, bindings, scope))
	}
	return pairs
}

func resolve(ix *Index, q models.SupplierQuotation, upcToSku map[string][]string, bindings Bindings, scope Scope) AlignedPair {
	pair := AlignedPair{Quotation: q, Source: enums.MatchSourceNone}
	bound := bindings.For(q)
	upc := strings.TrimSpace(q.UPC)

	if upc == "" {
		pair.SKU = bound
		if bound == "" {
			return pair
		}
		if i, ok := ix.FirstInScope(bound, scope, nil); ok {
			pair.Inventory = ix.Row(i)
			pair.Source = enums.MatchSourceBinding
		}
		return pair
	}

	candidates := nonEmpty(upcToSku[upc])
	source := enums.MatchSourceUPCMap
	if len(candidates) == 0 && bound != "" {
		candidates = []string{bound}
		source = enums.MatchSourceBinding
	}

	i, ok := ix.FirstBySKU(candidates)
	if !ok {
		i, ok = ix.FirstByUPC(upc)
		source = enums.MatchSourceUPCField
	}
	if !ok {
		pair.SKU = bound
		if bound == "" {
			return pair
		}
		// Mapped SKUs with no inventory row: the binding still resolves.
		if j, found := ix.FirstInScope(bound, scope, nil); found {
			pair.Inventory = ix.Row(j)
			pair.Source = enums.MatchSourceBinding
		}
		return pair
	}

	matched := ix.Row(i)
	if bound != "" && strings.TrimSpace(matched.SKU) != bound {
		if j, found := ix.FirstInScope(bound, scope, matched); found {
			matched = ix.Row(j)
			source = enums.MatchSourceBinding
		}
	}

	pair.Inventory = matched
	pair.Source = source
	pair.SKU = strings.TrimSpace(matched.SKU)
	if bound != "" {
		pair.SKU = bound
	}
	return pair
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// UPCs returns the distinct non-empty UPCs of quotations in first-seen order.
func UPCs(quotations []models.SupplierQuotation) []string {
	seen := make(map[string]struct{}, len(quotations))
	out := make([]string, 0, len(quotations))
	for _, q := range quotations {
		upc := strings.TrimSpace(q.UPC)
		if upc == "" {
			continue
		}
		if _, ok := seen[upc]; ok {
			continue
		}
		seen[upc] = struct{}{}
		out = append(out, upc)
	}
	return out
}
