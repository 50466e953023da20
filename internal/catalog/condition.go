package catalog

import (
	"strings"

	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// conditionAliases maps common free-text condition descriptions onto the
// Sell API's condition enum. Keys are normalized: lowercase, single spaces.
var conditionAliases = map[string]domain.Condition{
	"new":                domain.ConditionNew,
	"brand new":          domain.ConditionNew,
	"new in box":         domain.ConditionNew,
	"nib":                domain.ConditionNew,
	"like new":           domain.ConditionLikeNew,
	"open box":           domain.ConditionNewOther,
	"new other":          domain.ConditionNewOther,
	"new without tags":   domain.ConditionNewOther,
	"used excellent":     domain.ConditionUsedExcellent,
	"excellent":          domain.ConditionUsedExcellent,
	"used very good":     domain.ConditionUsedVeryGood,
	"very good":          domain.ConditionUsedVeryGood,
	"used good":          domain.ConditionUsedGood,
	"good":               domain.ConditionUsedGood,
	"used":               domain.ConditionUsedGood,
	"used acceptable":    domain.ConditionUsedAcceptable,
	"acceptable":         domain.ConditionUsedAcceptable,
	"fair":               domain.ConditionUsedAcceptable,
	"seller refurbished": domain.ConditionSellerRefurbished,
	"refurbished":        domain.ConditionSellerRefurbished,
	"for parts":          domain.ConditionForPartsOrNotWorking,
	"parts only":         domain.ConditionForPartsOrNotWorking,
	"broken":             domain.ConditionForPartsOrNotWorking,
	"not working":        domain.ConditionForPartsOrNotWorking,
}

// MapCondition normalizes a raw condition value to the eBay condition enum.
// Exact enum values pass through; otherwise common free-text descriptions
// are resolved through the alias table. Returns false when the value cannot
// be mapped.
func MapCondition(raw string) (domain.Condition, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	// Exact enum value, case-insensitive.
	c := domain.Condition(strings.ToUpper(trimmed))
	if c.Valid() {
		return c, true
	}

	normalized := strings.Join(
		strings.Fields(strings.ToLower(strings.ReplaceAll(trimmed, "_", " "))),
		" ",
	)
	if c, ok := conditionAliases[normalized]; ok {
		return c, true
	}

	return "", false
}
