package earning

import (
	"github.com/shopspring/decimal"

	"go-payroll/internal/employee"
	"go-payroll/internal/timesheet"
)

// Line is one resolved earning in the breakdown. Unevaluated marks FORMULA
// types, which have no calculation semantics yet and contribute zero.
type Line struct {
	EarningTypeID string          `json:"earning_type_id"`
	Name          string          `json:"name"`
	Category      Category        `json:"category"`
	CalcType      CalculationType `json:"calc_type"`
	Amount        decimal.Decimal `json:"amount"`
	IsTaxable     bool            `json:"is_taxable"`
	IsPensionable bool            `json:"is_pensionable"`
	Unevaluated   bool            `json:"unevaluated,omitempty"`
}

// Breakdown is the per-employee gross pay decomposition for one period.
type Breakdown struct {
	BasicPay        decimal.Decimal `json:"basic_pay"`
	GrossEarnings   decimal.Decimal `json:"gross_earnings"`
	TaxableBase     decimal.Decimal `json:"taxable_base"`
	PensionableBase decimal.Decimal `json:"pensionable_base"`
	Lines           []Line          `json:"lines"`
}

// Aggregator resolves an employee's active earning assignments into a gross
// pay breakdown. Pure given its inputs; safe to call concurrently.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate computes basic pay from the profile, then adds each active
// earning. When overlapping assignments exist for the same type, the one with
// the latest effective_from wins; the rest are dropped.
func (a *Aggregator) Aggregate(
	profile employee.PayProfile,
	earnings []EmployeeEarning,
	hours timesheet.Hours,
) Breakdown {
	basic := basicPay(profile, hours)

	bd := Breakdown{
		BasicPay:        basic,
		GrossEarnings:   basic,
		TaxableBase:     basic,
		PensionableBase: basic,
		Lines: []Line{{
			Name:          "Basic pay",
			Category:      CategoryBasic,
			CalcType:      CalcFixed,
			Amount:        basic,
			IsTaxable:     true,
			IsPensionable: true,
		}},
	}

	for _, e := range dedupeByType(earnings) {
		if e.EarningType == nil || !e.EarningType.IsActive {
			continue
		}
		line := resolveLine(e, basic, hours)
		bd.Lines = append(bd.Lines, line)

		bd.GrossEarnings = bd.GrossEarnings.Add(line.Amount)
		if line.IsTaxable {
			bd.TaxableBase = bd.TaxableBase.Add(line.Amount)
		}
		if line.IsPensionable {
			bd.PensionableBase = bd.PensionableBase.Add(line.Amount)
		}
	}

	return bd
}

func resolveLine(e EmployeeEarning, basic decimal.Decimal, hours timesheet.Hours) Line {
	t := e.EarningType
	line := Line{
		EarningTypeID: e.EarningTypeID.String(),
		Name:          t.Name,
		Category:      t.Category,
		CalcType:      t.CalcType,
		IsTaxable:     t.IsTaxable,
		IsPensionable: t.IsPensionable,
	}

	switch t.CalcType {
	case CalcFixed:
		line.Amount = e.EffectiveAmount()
	case CalcPercentage:
		line.Amount = basic.Mul(e.EffectiveRate()).Div(decimal.NewFromInt(100))
	case CalcHourly:
		h := hours.Regular
		if t.Category == CategoryOvertime {
			h = hours.Overtime
		}
		line.Amount = e.EffectiveRate().Mul(h)
	case CalcFormula:
		// No formula semantics exist yet; surface the line as unevaluated
		// rather than guessing.
		line.Amount = decimal.Zero
		line.Unevaluated = true
	default:
		line.Amount = decimal.Zero
		line.Unevaluated = true
	}

	if line.Amount.IsNegative() {
		line.Amount = decimal.Zero
	}
	return line
}

// basicPay is the period base: the configured amount for salaried employees,
// worked hours at the profile rate (with multipliers) for hourly ones.
func basicPay(profile employee.PayProfile, hours timesheet.Hours) decimal.Decimal {
	if profile.PayType != employee.PayTypeHourly {
		return profile.PayAmount
	}

	rate := profile.PayAmount
	pay := rate.Mul(hours.Regular)
	pay = pay.Add(rate.Mul(profile.OvertimeMultiplier).Mul(hours.Overtime))
	pay = pay.Add(rate.Mul(profile.WeekendMultiplier).Mul(hours.Weekend))
	pay = pay.Add(rate.Mul(profile.HolidayMultiplier).Mul(hours.Holiday))
	return pay
}

// dedupeByType keeps one assignment per earning type. Input is ordered by
// effective_from DESC, so the first hit per type is the newest.
func dedupeByType(earnings []EmployeeEarning) []EmployeeEarning {
	seen := map[string]bool{}
	out := make([]EmployeeEarning, 0, len(earnings))
	for _, e := range earnings {
		key := e.EarningTypeID.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
