package quotations

import (
	"github.com/shopspring/decimal"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
)

// ImportRow is the wire shape of one imported quotation. Computed prices,
// remarks and timestamps are owned by the store and never imported.
type ImportRow struct {
	Seq                 int                 `json:"seq"`
	SupplierCode        string              `json:"supplier_code" validate:"required,max=64"`
	SupplierName        string              `json:"supplier_name" validate:"max=255"`
	ProductName         string              `json:"product_name" validate:"max=255"`
	Spec                string              `json:"spec" validate:"max=255"`
	UPC                 string              `json:"upc" validate:"max=64"`
	SupplierProductCode string              `json:"supplier_product_code" validate:"required,max=64"`
	SupplyPrice         decimal.NullDecimal `json:"supply_price"`
}

// Model converts the row for the store.
func (r ImportRow) Model() models.SupplierQuotation {
	return models.SupplierQuotation{
		Seq:                 r.Seq,
		SupplierCode:        r.SupplierCode,
		SupplierName:        r.SupplierName,
		ProductName:         r.ProductName,
		Spec:                r.Spec,
		UPC:                 r.UPC,
		SupplierProductCode: r.SupplierProductCode,
		SupplyPrice:         r.SupplyPrice,
	}
}

// ImportRowsFrom strips store-owned fields from rows.
func ImportRowsFrom(rows []models.SupplierQuotation) []ImportRow {
	out := make([]ImportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ImportRow{
			Seq:                 row.Seq,
			SupplierCode:        row.SupplierCode,
			SupplierName:        row.SupplierName,
			ProductName:         row.ProductName,
			Spec:                row.Spec,
			UPC:                 row.UPC,
			SupplierProductCode: row.SupplierProductCode,
			SupplyPrice:         row.SupplyPrice,
		})
	}
	return out
}

// ImportModels converts a decoded import payload.
func ImportModels(rows []ImportRow) []models.SupplierQuotation {
	out := make([]models.SupplierQuotation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Model())
	}
	return out
}
