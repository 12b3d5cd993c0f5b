package domain

import "strings"

// ParseWarranty maps the free-form warranty labels used by billing forms
// ("1 Year", "No Warranty", ...) onto the canonical enum. Unknown values
// fall back to WarrantyNone.
func ParseWarranty(raw string) WarrantyType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "1Y", "1 YEAR":
		return WarrantyOneYear
	case "2Y", "2 YEARS":
		return WarrantyTwoYears
	case "3Y", "3 YEARS":
		return WarrantyThreeYears
	default:
		return WarrantyNone
	}
}
