// Package catalog lists the cylinder weight classes each tenant kind may
// order and their unit prices.
package catalog

import (
	"slices"
	"strings"

	"github.com/wolfeidau/gasdesk/internal/apperr"
	"github.com/wolfeidau/gasdesk/internal/models"
)

const unitSuffix = " kg"

var (
	individualTypes   = []string{"3.2", "5", "12.5"}
	organizationTypes = []string{"3.2", "5", "12.5", "37.5"}

	unitPrices = map[string]float64{
		"3.2":  803.37,
		"5":    1629.57,
		"12.5": 3940.37,
		"37.5": 12425.18,
	}
)

// Types returns the weight classes offered to kind, smallest first.
func Types(kind models.TenantKind) []string {
	if kind == models.KindOrganization {
		return slices.Clone(organizationTypes)
	}
	return slices.Clone(individualTypes)
}

// Normalize validates a cylinder type for kind and returns the bare weight.
// The input may carry the " kg" suffix.
func Normalize(kind models.TenantKind, input string) (string, error) {
	weight := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), unitSuffix))
	weight = strings.TrimSuffix(weight, "kg")
	weight = strings.TrimSpace(weight)

	if !slices.Contains(Types(kind), weight) {
		return "", apperr.Field(apperr.ErrInvalidCylinderType, "cylinderType",
			"cylinder type "+strings.TrimSpace(input)+" is not offered")
	}
	return weight, nil
}

// Label renders a bare weight the way it is stored: "<weight> kg".
func Label(weight string) string {
	return weight + unitSuffix
}

// UnitPrice returns the price of one cylinder. The type may be a bare weight
// or a stored label.
func UnitPrice(cylinderType string) (float64, bool) {
	weight := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cylinderType), "kg"))
	price, ok := unitPrices[weight]
	return price, ok
}

// Quote estimates the cost of count cylinders of cylinderType. ok is false
// for unknown types and non-positive counts.
func Quote(cylinderType string, count int) (float64, bool) {
	price, ok := UnitPrice(cylinderType)
	if !ok || count <= 0 {
		return 0, false
	}
	// round to cents
	total := price * float64(count)
	return float64(int64(total*100+0.5)) / 100, true
}
