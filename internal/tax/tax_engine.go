package tax

import (
	taxerrors "go-payroll/internal/tax/errors"

	"github.com/shopspring/decimal"
)

// Input is everything one employee's annual tax computation depends on.
// Gross income must already be annualized by the caller.
type Input struct {
	GrossIncome    decimal.Decimal
	AnnualRentPaid decimal.Decimal // NTA 2025 rent relief; zero when unknown
	TaxExempt      bool            // employee-level exemption flag
}

// ReliefApplied is one relief line in the result.
type ReliefApplied struct {
	Name   string          `json:"name"`
	Type   ReliefType      `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// BandTax is one band line in the breakdown. Tax is kept unrounded; only the
// result's TotalTax is rounded, once.
type BandTax struct {
	BandOrder     int              `json:"band_order"`
	Min           decimal.Decimal  `json:"min"`
	Max           *decimal.Decimal `json:"max,omitempty"`
	Rate          decimal.Decimal  `json:"rate"`
	TaxableAmount decimal.Decimal  `json:"taxable_amount"`
	Tax           decimal.Decimal  `json:"tax"`
}

type Result struct {
	Law               TaxLaw          `json:"law"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	TaxableIncome     decimal.Decimal `json:"taxable_income"`
	Breakdown         []BandTax       `json:"breakdown"`
	ReliefsApplied    []ReliefApplied `json:"reliefs_applied"`
	IsLowIncomeExempt bool            `json:"is_low_income_exempt"`
}

// Engine computes annual income tax from a validated tax table. Calculate is
// pure: same table and input always produce the same result, so per-employee
// computations can run in parallel.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Calculate(table *TaxTable, in Input) (Result, error) {
	if err := ValidateTable(table); err != nil {
		return Result{}, err
	}

	res := Result{
		Law:            table.Law,
		TotalTax:       decimal.Zero,
		ReliefsApplied: []ReliefApplied{},
		Breakdown:      []BandTax{},
	}

	if in.TaxExempt {
		res.TaxableIncome = decimal.Zero
		return res, nil
	}

	gross := in.GrossIncome
	if gross.IsNegative() {
		gross = decimal.Zero
	}

	// NTA 2025 low-income exemption skips bands entirely.
	if table.Law == LawNTA2025 && gross.LessThanOrEqual(LowIncomeThreshold) {
		res.IsLowIncomeExempt = true
		res.TaxableIncome = decimal.Zero
		res.ReliefsApplied = append(res.ReliefsApplied, ReliefApplied{
			Name:   "Low income exemption",
			Type:   ReliefLowIncomeExemption,
			Amount: gross,
		})
		return res, nil
	}

	reliefs := applyReliefs(table, gross, in.AnnualRentPaid)
	res.ReliefsApplied = reliefs

	totalRelief := decimal.Zero
	for _, r := range reliefs {
		totalRelief = totalRelief.Add(r.Amount)
	}

	taxable := gross.Sub(totalRelief)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	res.TaxableIncome = taxable

	total := decimal.Zero
	for _, band := range table.Bands {
		line := bandTax(band, taxable)
		res.Breakdown = append(res.Breakdown, line)
		total = total.Add(line.Tax)
	}

	// Round once, at the final sum. Per-band rounding compounds error.
	res.TotalTax = total.Round(2)
	return res, nil
}

// bandTax computes max(0, min(taxable, band.max ?? +inf) - band.min) * rate/100.
// Bands fully below taxable contribute their whole span, the band containing
// taxable a partial span, bands above zero.
func bandTax(band TaxBand, taxable decimal.Decimal) BandTax {
	upper := taxable
	if band.Max != nil && band.Max.LessThan(taxable) {
		upper = *band.Max
	}

	span := upper.Sub(band.Min)
	if span.IsNegative() {
		span = decimal.Zero
	}

	return BandTax{
		BandOrder:     band.BandOrder,
		Min:           band.Min,
		Max:           band.Max,
		Rate:          band.Rate,
		TaxableAmount: span,
		Tax:           span.Mul(band.Rate).Div(decimal.NewFromInt(100)),
	}
}

func applyReliefs(table *TaxTable, gross, annualRent decimal.Decimal) []ReliefApplied {
	applied := []ReliefApplied{}

	for _, relief := range table.Reliefs {
		if !relief.AppliesUnder(table.Law) {
			continue
		}

		var amount decimal.Decimal
		switch relief.Type {
		case ReliefCRA:
			if table.Law != LawPITA2011 {
				continue
			}
			amount = craRelief(gross)
		case ReliefRent:
			if table.Law != LawNTA2025 {
				continue
			}
			amount = rentRelief(annualRent)
		case ReliefFixed:
			amount = relief.Amount
		case ReliefPercentage:
			amount = gross.Mul(relief.Rate).Div(decimal.NewFromInt(100))
		case ReliefCappedPercentage:
			amount = gross.Mul(relief.Rate).Div(decimal.NewFromInt(100))
			if relief.Cap != nil && amount.GreaterThan(*relief.Cap) {
				amount = *relief.Cap
			}
		case ReliefLowIncomeExemption:
			// Handled before the band walk, never as a relief line here.
			continue
		default:
			continue
		}

		if relief.Cap != nil && relief.Type != ReliefCappedPercentage && amount.GreaterThan(*relief.Cap) {
			amount = *relief.Cap
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		applied = append(applied, ReliefApplied{
			Name:   relief.Name,
			Type:   relief.Type,
			Amount: amount,
		})
	}

	return applied
}

// craRelief is the PITA 2011 Consolidated Relief Allowance:
// max(1% of gross + 200,000, 20% of gross).
func craRelief(gross decimal.Decimal) decimal.Decimal {
	floor := gross.Mul(craMinPercent).Add(craFixedPortion)
	alt := gross.Mul(craAltPercent)
	if alt.GreaterThan(floor) {
		return alt
	}
	return floor
}

// rentRelief is the NTA 2025 rent relief: min(500,000, 20% of annual rent).
func rentRelief(annualRent decimal.Decimal) decimal.Decimal {
	if annualRent.IsNegative() || annualRent.IsZero() {
		return decimal.Zero
	}
	relief := annualRent.Mul(rentReliefPercent)
	if relief.GreaterThan(rentReliefCap) {
		return rentReliefCap
	}
	return relief
}

// ValidateTable checks the band schedule invariants: bands ordered by
// band_order, contiguous, first band starting at zero, open max only on the
// final band.
func ValidateTable(table *TaxTable) error {
	if table == nil || len(table.Bands) == 0 {
		return taxerrors.ErrInvalidTaxTable
	}

	prevMax := decimal.Zero
	for i, band := range table.Bands {
		if band.BandOrder != i+1 {
			return taxerrors.ErrInvalidTaxTable
		}
		if !band.Min.Equal(prevMax) {
			return taxerrors.ErrInvalidTaxTable
		}
		if band.Max == nil {
			if i != len(table.Bands)-1 {
				return taxerrors.ErrInvalidTaxTable
			}
			continue
		}
		if band.Max.LessThanOrEqual(band.Min) {
			return taxerrors.ErrInvalidTaxTable
		}
		prevMax = *band.Max
	}

	return nil
}
