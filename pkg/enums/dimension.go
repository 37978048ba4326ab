package enums

import (
	"fmt"
	"strings"
)

// Dimension selects how inventory summaries are aggregated.
type Dimension string

const (
	DimensionAll   Dimension = "all"
	DimensionStore Dimension = "store"
	DimensionCity  Dimension = "city"
)

var validDimensions = []Dimension{
	DimensionAll,
	DimensionStore,
	DimensionCity,
}

var dimensionLabels = map[Dimension]string{
	DimensionAll:   "全部",
	DimensionStore: "仓店",
	DimensionCity:  "城市",
}

// String implements fmt.Stringer.
func (d Dimension) String() string {
	return string(d)
}

// Label returns the operator-facing name used by the admin tables.
func (d Dimension) Label() string {
	return dimensionLabels[d]
}

// IsValid reports whether the value is known.
func (d Dimension) IsValid() bool {
	for _, candidate := range validDimensions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDimension accepts either the token ("store") or the label ("仓店").
func ParseDimension(value string) (Dimension, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validDimensions {
		if strings.EqualFold(string(candidate), trimmed) || dimensionLabels[candidate] == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dimension %q", value)
}
