package deduction

import (
	"sort"

	"github.com/shopspring/decimal"

	"go-payroll/internal/employee"
)

// Bases carries the amounts deductions can be computed against. Net is
// derived inside the aggregator and must not be supplied.
type Bases struct {
	Gross       decimal.Decimal
	Basic       decimal.Decimal
	Taxable     decimal.Decimal
	Pensionable decimal.Decimal
	IncomeTax   decimal.Decimal
}

// Line is one applied deduction in the breakdown.
type Line struct {
	DeductionID     string          `json:"deduction_id,omitempty"` // empty for statutory profile lines
	DeductionTypeID string          `json:"deduction_type_id,omitempty"`
	Name            string          `json:"name"`
	Category        Category        `json:"category"`
	CalcType        CalculationType `json:"calc_type"`
	CalcBase        CalculationBase `json:"calc_base"`
	Amount          decimal.Decimal `json:"amount"`
	Unevaluated     bool            `json:"unevaluated,omitempty"`
}

// TargetAdvance records how far an amortizing deduction moved this period.
// It rides on the item's stored breakdown; total_deducted is only advanced
// when the run completes, so replayed or cancelled runs never touch a balance.
type TargetAdvance struct {
	DeductionID string          `json:"deduction_id"`
	Applied     decimal.Decimal `json:"applied"`
	Deactivate  bool            `json:"deactivate,omitempty"`
}

type Breakdown struct {
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	Lines           []Line          `json:"lines"`
	TargetAdvances  []TargetAdvance `json:"target_advances,omitempty"`
}

// Aggregator resolves an employee's deductions for one period. Pure given its
// inputs; persistence of target advances is the caller's job.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate applies statutory profile deductions first, then configured
// deductions in ascending priority. NET-based deductions run in a second pass
// so they see the pay already reduced by everything ahead of them.
func (a *Aggregator) Aggregate(
	profile employee.PayProfile,
	deductions []EmployeeDeduction,
	bases Bases,
) Breakdown {
	bd := Breakdown{Lines: []Line{}}
	total := decimal.Zero

	for _, line := range statutoryLines(profile, bases) {
		bd.Lines = append(bd.Lines, line)
		total = total.Add(line.Amount)
	}

	ordered := make([]EmployeeDeduction, len(deductions))
	copy(ordered, deductions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	var netBased []EmployeeDeduction
	for _, d := range ordered {
		if d.DeductionType == nil || !d.DeductionType.IsActive {
			continue
		}
		if d.DeductionType.CalcBase == BaseNet {
			netBased = append(netBased, d)
			continue
		}
		total = a.applyOne(&bd, d, bases, total)
	}

	// Second pass: net-dependent deductions see the partially reduced pay.
	for _, d := range netBased {
		total = a.applyOne(&bd, d, bases, total)
	}

	bd.TotalDeductions = total
	return bd
}

func (a *Aggregator) applyOne(bd *Breakdown, d EmployeeDeduction, bases Bases, runningTotal decimal.Decimal) decimal.Decimal {
	t := d.DeductionType
	line := Line{
		DeductionID:     d.ID.String(),
		DeductionTypeID: d.DeductionTypeID.String(),
		Name:            t.Name,
		Category:        t.Category,
		CalcType:        t.CalcType,
		CalcBase:        t.CalcBase,
	}

	var amount decimal.Decimal
	switch t.CalcType {
	case CalcFixed:
		amount = d.EffectiveAmount()
	case CalcPercentage:
		amount = baseAmount(t.CalcBase, bases, runningTotal).
			Mul(d.EffectiveRate()).
			Div(decimal.NewFromInt(100))
	case CalcTiered, CalcFormula:
		// Tier boundaries and formula semantics are unspecified; emit a
		// flagged zero line instead of guessing.
		line.Amount = decimal.Zero
		line.Unevaluated = true
		bd.Lines = append(bd.Lines, line)
		return runningTotal
	default:
		line.Amount = decimal.Zero
		line.Unevaluated = true
		bd.Lines = append(bd.Lines, line)
		return runningTotal
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}

	// Per-period cap first, then the remaining amortization target.
	if t.MaxAmount != nil && amount.GreaterThan(*t.MaxAmount) {
		amount = *t.MaxAmount
	}

	deactivate := false
	if remaining := d.RemainingTarget(); remaining != nil {
		if amount.GreaterThan(*remaining) {
			amount = *remaining
		}
		if d.TotalDeducted.Add(amount).GreaterThanOrEqual(*d.TotalTarget) {
			deactivate = true
		}
		bd.TargetAdvances = append(bd.TargetAdvances, TargetAdvance{
			DeductionID: d.ID.String(),
			Applied:     amount,
			Deactivate:  deactivate,
		})
	}

	line.Amount = amount
	bd.Lines = append(bd.Lines, line)
	return runningTotal.Add(amount)
}

func baseAmount(base CalculationBase, bases Bases, deductionsSoFar decimal.Decimal) decimal.Decimal {
	switch base {
	case BaseBasic:
		return bases.Basic
	case BaseTaxable:
		return bases.Taxable
	case BasePensionable:
		return bases.Pensionable
	case BaseNet:
		net := bases.Gross.Sub(bases.IncomeTax).Sub(deductionsSoFar)
		if net.IsNegative() {
			net = decimal.Zero
		}
		return net
	default:
		return bases.Gross
	}
}

// statutoryLines derives pension/NHF/NHIS from the employee profile flags.
// Pension is computed on the pensionable base, NHF and NHIS on basic pay.
func statutoryLines(profile employee.PayProfile, bases Bases) []Line {
	hundred := decimal.NewFromInt(100)
	var lines []Line

	if profile.PensionEnabled && profile.PensionRate.IsPositive() {
		lines = append(lines, Line{
			Name:     "Pension",
			Category: CategoryStatutory,
			CalcType: CalcPercentage,
			CalcBase: BasePensionable,
			Amount:   bases.Pensionable.Mul(profile.PensionRate).Div(hundred),
		})
	}
	if profile.NHFEnabled && profile.NHFRate.IsPositive() {
		lines = append(lines, Line{
			Name:     "NHF",
			Category: CategoryStatutory,
			CalcType: CalcPercentage,
			CalcBase: BaseBasic,
			Amount:   bases.Basic.Mul(profile.NHFRate).Div(hundred),
		})
	}
	if profile.NHISEnabled && profile.NHISRate.IsPositive() {
		lines = append(lines, Line{
			Name:     "NHIS",
			Category: CategoryStatutory,
			CalcType: CalcPercentage,
			CalcBase: BaseBasic,
			Amount:   bases.Basic.Mul(profile.NHISRate).Div(hundred),
		})
	}

	return lines
}
