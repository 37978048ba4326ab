package matching

import (
	"strings"

	"github.com/quotewise/quotewise-backend/pkg/db/models"
	"github.com/quotewise/quotewise-backend/pkg/enums"
)

// SplitUPCs splits a comma-joined UPC field into trimmed, non-empty tokens.
func SplitUPCs(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Scope is the active inventory dimension and its filter value.
type Scope struct {
	Dimension enums.Dimension
	StoreName string
	City      string
}

// Index looks up inventory rows by SKU and by UPC token. Each lookup returns
// positions in the original row order.
type Index struct {
	rows  []models.InventorySummary
	bySKU map[string][]int
	byUPC map[string][]int
}

// NewIndex builds an index over rows. Rows with an empty SKU are reachable
// only through their UPC tokens.
func NewIndex(rows []models.InventorySummary) *Index {
	ix := &Index{
		rows:  rows,
		bySKU: make(map[string][]int, len(rows)),
		byUPC: make(map[string][]int, len(rows)),
	}
	for i, row := range rows {
		if sku := strings.TrimSpace(row.SKU); sku != "" {
			ix.bySKU[sku] = append(ix.bySKU[sku], i)
		}
		for _, upc := range SplitUPCs(row.UPC) {
			positions := ix.byUPC[upc]
			if len(positions) > 0 && positions[len(positions)-1] == i {
				continue
			}
			ix.byUPC[upc] = append(positions, i)
		}
	}
	return ix
}

// Row returns the row at position i.
func (ix *Index) Row(i int) *models.InventorySummary {
	return &ix.rows[i]
}

// FirstBySKU returns the earliest row whose SKU is one of candidates.
func (ix *Index) FirstBySKU(candidates []string) (int, bool) {
	best := -1
	for _, sku := range candidates {
		positions := ix.bySKU[strings.TrimSpace(sku)]
		if len(positions) == 0 {
			continue
		}
		if best < 0 || positions[0] < best {
			best = positions[0]
		}
	}
	return best, best >= 0
}

// FirstByUPC returns the earliest row whose UPC field contains upc.
func (ix *Index) FirstByUPC(upc string) (int, bool) {
	positions := ix.byUPC[strings.TrimSpace(upc)]
	if len(positions) == 0 {
		return -1, false
	}
	return positions[0], true
}

// FirstInScope returns the earliest row for sku that belongs to the same
// store or city as ref under the active dimension.
func (ix *Index) FirstInScope(sku string, scope Scope, ref *models.InventorySummary) (int, bool) {
	for _, i := range ix.bySKU[strings.TrimSpace(sku)] {
		if inScope(ix.rows[i], scope, ref) {
			return i, true
		}
	}
	return -1, false
}

func inScope(row models.InventorySummary, scope Scope, ref *models.InventorySummary) bool {
	switch scope.Dimension {
	case enums.DimensionStore:
		want := scope.StoreName
		if want == "" && ref != nil {
			want = ref.StoreName
		}
		return want == "" || row.StoreName == want
	case enums.DimensionCity:
		want := scope.City
		if want == "" && ref != nil {
			want = ref.City
		}
		return want == "" || row.City == want
	default:
		return true
	}
}
