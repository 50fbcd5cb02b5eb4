// Package rates models farmer rate configuration: slab lists per incentive
// and deduction category, flat-rule fallbacks, and the resolver that picks
// the applicable rate for a measured value on a given date and shift.
package rates

import (
	"github.com/shopspring/decimal"

	"milkbill/internal/core/types"
)

// BasisMethod selects the quantity a resolved rate is multiplied by.
type BasisMethod string

const (
	// BasisKgFat multiplies the rate by kilograms of fat content.
	BasisKgFat BasisMethod = "KG_FAT"
	// BasisKgSNF multiplies the rate by kilograms of SNF content.
	BasisKgSNF BasisMethod = "KG_SNF"
	// BasisLiter multiplies the rate by the liter quantity.
	BasisLiter BasisMethod = "LITER"
)

// Slab is one value-range-bound, date/shift-bound rate rule.
// A zero ValidFrom/ValidTo leaves that side of the window open.
type Slab struct {
	MinBound  types.Decimal   `json:"minBound"`
	MaxBound  types.Decimal   `json:"maxBound"`
	Rate      types.Decimal   `json:"rate"`
	Basis     BasisMethod     `json:"basisMethod"`
	ValidFrom types.DateShift `json:"validFrom"`
	ValidTo   types.DateShift `json:"validTo"`
}

// contains reports whether the measured value and the shift-aware date both
// fall inside this slab, bounds inclusive.
func (s Slab) contains(value decimal.Decimal, at types.DateShift) bool {
	if value.LessThan(s.MinBound.Decimal) || value.GreaterThan(s.MaxBound.Decimal) {
		return false
	}
	if !s.ValidFrom.IsZero() && at.Compare(s.ValidFrom) < 0 {
		return false
	}
	if !s.ValidTo.IsZero() && at.Compare(s.ValidTo) > 0 {
		return false
	}
	return true
}

// FlatRule is the legacy non-slab fallback for a category: a single threshold
// and rate, applied when no slab matches.
type FlatRule struct {
	Threshold types.Decimal `json:"threshold"`
	Rate      types.Decimal `json:"rate"`
	Basis     BasisMethod   `json:"basisMethod"`
}

// CategoryConfig holds the rate rules for one incentive or deduction
// category: an ordered slab list plus an optional flat fallback.
type CategoryConfig struct {
	Slabs []Slab    `json:"slabs"`
	Flat  *FlatRule `json:"flat,omitempty"`
}

// SingleRule is a non-slabbed per-farmer rate (extra rate, cartage) with its
// own validity window.
type SingleRule struct {
	Rate      types.Decimal   `json:"rate"`
	Basis     BasisMethod     `json:"basisMethod"`
	ValidFrom types.DateShift `json:"validFrom"`
	ValidTo   types.DateShift `json:"validTo"`
}

// Active reports whether the rule's window covers the given point.
func (r SingleRule) Active(at types.DateShift) bool {
	if !r.ValidFrom.IsZero() && at.Compare(r.ValidFrom) < 0 {
		return false
	}
	if !r.ValidTo.IsZero() && at.Compare(r.ValidTo) > 0 {
		return false
	}
	return true
}

// RateMethod selects the base milk-value pricing basis for a farmer.
type RateMethod string

const (
	RateMethodKgFat RateMethod = "KG_FAT"
	RateMethodLiter RateMethod = "LITER"
)

// FarmerRateConfig is the per-farmer override of rate rules.
type FarmerRateConfig struct {
	FarmerID string `json:"farmerId"`

	RateMethod RateMethod `json:"rateMethod"`

	FatIncentive CategoryConfig `json:"fatIncentive"`
	FatDeduction CategoryConfig `json:"fatDeduction"`
	SNFIncentive CategoryConfig `json:"snfIncentive"`
	SNFDeduction CategoryConfig `json:"snfDeduction"`
	QtyIncentive CategoryConfig `json:"qtyIncentive"`
	Bonus        CategoryConfig `json:"bonus"`

	ExtraRate *SingleRule `json:"extraRate,omitempty"`
	Cartage   *SingleRule `json:"cartage,omitempty"`
}

// CommonRateConfig is the society-wide default configuration applied when a
// farmer has no override for a category. Shape mirrors FarmerRateConfig.
type CommonRateConfig struct {
	FatIncentive CategoryConfig `json:"fatIncentive"`
	FatDeduction CategoryConfig `json:"fatDeduction"`
	SNFIncentive CategoryConfig `json:"snfIncentive"`
	SNFDeduction CategoryConfig `json:"snfDeduction"`
	QtyIncentive CategoryConfig `json:"qtyIncentive"`
	Bonus        CategoryConfig `json:"bonus"`

	ExtraRate *SingleRule `json:"extraRate,omitempty"`
	Cartage   *SingleRule `json:"cartage,omitempty"`
}
