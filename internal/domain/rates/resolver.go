package rates

import (
	"fmt"

	"github.com/shopspring/decimal"

	"milkbill/internal/core/types"
)

// Resolution is the outcome of resolving a category against a measured value.
type Resolution struct {
	Rate    decimal.Decimal
	Basis   BasisMethod
	Matched bool
}

// Resolve picks the applicable rate for one category.
//
// Selection is first-match-wins over the slab list in declared order: the
// first slab whose value range and shift-aware validity window both contain
// the input wins. Slab lists are expected to be authored without overlaps;
// the resolver does not validate this, ambiguous overlapping slabs silently
// take the earlier-declared one. When no slab matches, the flat fallback
// applies if configured; otherwise the category contributes zero.
func Resolve(cfg CategoryConfig, value decimal.Decimal, at types.DateShift) Resolution {
	for _, slab := range cfg.Slabs {
		if slab.contains(value, at) {
			return Resolution{Rate: slab.Rate.Decimal, Basis: slab.Basis, Matched: true}
		}
	}

	if cfg.Flat != nil && value.GreaterThanOrEqual(cfg.Flat.Threshold.Decimal) {
		return Resolution{Rate: cfg.Flat.Rate.Decimal, Basis: cfg.Flat.Basis, Matched: true}
	}

	return Resolution{}
}

// ResolveLayered resolves a category through the precedence chain: the
// farmer's slabs, then the farmer's flat override, then the common/default
// configuration. The order is significant and must not be rearranged.
func ResolveLayered(farmer, common CategoryConfig, value decimal.Decimal, at types.DateShift) Resolution {
	if res := Resolve(farmer, value, at); res.Matched {
		return res
	}
	return Resolve(common, value, at)
}

// OverlapWarnings reports slab pairs in one category whose value ranges and
// validity windows both overlap. These are data-quality findings only: the
// resolver still takes the earlier-declared slab.
func OverlapWarnings(category string, slabs []Slab) []string {
	var warnings []string
	for i := 0; i < len(slabs); i++ {
		for j := i + 1; j < len(slabs); j++ {
			if rangesOverlap(slabs[i], slabs[j]) && windowsOverlap(slabs[i], slabs[j]) {
				warnings = append(warnings, fmt.Sprintf(
					"%s: slab %d [%s..%s] overlaps slab %d [%s..%s]; first declared wins",
					category,
					i, slabs[i].MinBound.Decimal, slabs[i].MaxBound.Decimal,
					j, slabs[j].MinBound.Decimal, slabs[j].MaxBound.Decimal,
				))
			}
		}
	}
	return warnings
}

func rangesOverlap(a, b Slab) bool {
	return !a.MaxBound.Decimal.LessThan(b.MinBound.Decimal) &&
		!b.MaxBound.Decimal.LessThan(a.MinBound.Decimal)
}

func windowsOverlap(a, b Slab) bool {
	// Open-ended sides overlap everything.
	if !a.ValidTo.IsZero() && !b.ValidFrom.IsZero() && a.ValidTo.Compare(b.ValidFrom) < 0 {
		return false
	}
	if !b.ValidTo.IsZero() && !a.ValidFrom.IsZero() && b.ValidTo.Compare(a.ValidFrom) < 0 {
		return false
	}
	return true
}
