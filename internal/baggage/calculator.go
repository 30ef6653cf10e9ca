package baggage

import (
	"github.com/airpass/airpass/internal/domain"
	"github.com/shopspring/decimal"
)

// Tolerance multipliers above the allowance before a side becomes NOT_ALLOWED.
var (
	cabinTolerance   = decimal.RequireFromString("1.5")
	checkedTolerance = decimal.RequireFromString("2.0")
)

// BagSummary describes the bags submitted on one side.
type BagSummary struct {
	Count       int               `json:"count"`
	TotalWeight float64           `json:"totalWeight"`
	Bags        []domain.BagEntry `json:"bags"`
}

// ExcessResult is the outcome of comparing submitted bags to a rule.
type ExcessResult struct {
	Cabin   BagSummary
	Checked BagSummary

	CabinExcess   float64
	CheckedExcess float64
	TotalExcess   float64
	ExcessFee     float64
	Currency      string

	CabinStatus   domain.BaggageStatus
	CheckedStatus domain.BaggageStatus
	Overall       domain.BaggageStatus
}

// ComputeExcess applies rule to the submitted bags. It has no side effects.
// Negative bag weights are counted as zero.
func ComputeExcess(rule *domain.BaggageRule, cabinBags, checkedBags []domain.BagEntry) ExcessResult {
	cabinTotal := sumWeights(cabinBags)
	checkedTotal := sumWeights(checkedBags)

	cabinAllowance := decimal.NewFromFloat(rule.CabinBaggageWeight)
	checkedAllowance := decimal.NewFromFloat(rule.CheckedBaggageWeight)

	cabinExcess := decimal.Max(decimal.Zero, cabinTotal.Sub(cabinAllowance))
	checkedExcess := decimal.Max(decimal.Zero, checkedTotal.Sub(checkedAllowance))
	totalExcess := cabinExcess.Add(checkedExcess)

	fee := decimal.Zero
	if rule.ExcessFeePerKg != nil {
		fee = totalExcess.Mul(decimal.NewFromFloat(*rule.ExcessFeePerKg))
	}
	if rule.ExcessFeeFlat != nil && totalExcess.IsPositive() {
		fee = fee.Add(decimal.NewFromFloat(*rule.ExcessFeeFlat))
	}

	cabinStatus := classify(cabinTotal, cabinAllowance, cabinTolerance)
	checkedStatus := classify(checkedTotal, checkedAllowance, checkedTolerance)

	return ExcessResult{
		Cabin:         summarize(cabinBags, cabinTotal),
		Checked:       summarize(checkedBags, checkedTotal),
		CabinExcess:   cabinExcess.InexactFloat64(),
		CheckedExcess: checkedExcess.InexactFloat64(),
		TotalExcess:   totalExcess.InexactFloat64(),
		ExcessFee:     fee.InexactFloat64(),
		Currency:      rule.Currency,
		CabinStatus:   cabinStatus,
		CheckedStatus: checkedStatus,
		Overall:       Overall(cabinStatus, checkedStatus),
	}
}

// Overall folds per-side statuses with priority NOT_ALLOWED > EXTRA_FEE > ALLOWED.
func Overall(statuses ...domain.BaggageStatus) domain.BaggageStatus {
	overall := domain.StatusAllowed
	for _, s := range statuses {
		if severity(s) > severity(overall) {
			overall = s
		}
	}
	return overall
}

func severity(s domain.BaggageStatus) int {
	switch s {
	case domain.StatusNotAllowed:
		return 2
	case domain.StatusExtraFee:
		return 1
	default:
		return 0
	}
}

func classify(total, allowance, tolerance decimal.Decimal) domain.BaggageStatus {
	switch {
	case total.LessThanOrEqual(allowance):
		return domain.StatusAllowed
	case total.LessThanOrEqual(allowance.Mul(tolerance)):
		return domain.StatusExtraFee
	default:
		return domain.StatusNotAllowed
	}
}

func sumWeights(bags []domain.BagEntry) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bags {
		if b.Weight > 0 {
			total = total.Add(decimal.NewFromFloat(b.Weight))
		}
	}
	return total
}

func summarize(bags []domain.BagEntry, total decimal.Decimal) BagSummary {
	if bags == nil {
		bags = []domain.BagEntry{}
	}
	return BagSummary{
		Count:       len(bags),
		TotalWeight: total.InexactFloat64(),
		Bags:        bags,
	}
}
