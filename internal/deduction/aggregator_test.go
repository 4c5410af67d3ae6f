package deduction_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"go-payroll/internal/deduction"
	"go-payroll/internal/employee"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func noStatutory() employee.PayProfile {
	return employee.PayProfile{PensionEnabled: false}
}

func fixedDeduction(name string, amount int64, priority int) deduction.EmployeeDeduction {
	t := &deduction.DeductionType{
		ID: uuid.New(), Name: name,
		Category: deduction.CategoryVoluntary,
		CalcType: deduction.CalcFixed,
		CalcBase: deduction.BaseGross,
		IsActive: true,
	}
	return deduction.EmployeeDeduction{
		ID: uuid.New(), DeductionTypeID: t.ID, DeductionType: t,
		Amount: decPtr(amount), Priority: priority, IsActive: true,
	}
}

func TestAggregator_TargetClamp(t *testing.T) {
	agg := deduction.NewAggregator()

	// total_target=50,000, total_deducted=48,000, period amount 10,000
	// => applied 2,000 and the deduction deactivates.
	loan := fixedDeduction("Staff loan", 10_000, 1)
	loan.DeductionType.Category = deduction.CategoryLoan
	loan.TotalTarget = decPtr(50_000)
	loan.TotalDeducted = dec(48_000)

	bd := agg.Aggregate(noStatutory(), []deduction.EmployeeDeduction{loan}, deduction.Bases{Gross: dec(500_000)})

	assert.True(t, bd.TotalDeductions.Equal(dec(2_000)), "got %s", bd.TotalDeductions)
	if assert.Len(t, bd.TargetAdvances, 1) {
		assert.True(t, bd.TargetAdvances[0].Applied.Equal(dec(2_000)))
		assert.True(t, bd.TargetAdvances[0].Deactivate)
		assert.Equal(t, loan.ID.String(), bd.TargetAdvances[0].DeductionID)
	}
}

func TestAggregator_TargetNotYetReached(t *testing.T) {
	agg := deduction.NewAggregator()

	loan := fixedDeduction("Staff loan", 10_000, 1)
	loan.TotalTarget = decPtr(50_000)
	loan.TotalDeducted = dec(20_000)

	bd := agg.Aggregate(noStatutory(), []deduction.EmployeeDeduction{loan}, deduction.Bases{Gross: dec(500_000)})

	assert.True(t, bd.TotalDeductions.Equal(dec(10_000)))
	if assert.Len(t, bd.TargetAdvances, 1) {
		assert.False(t, bd.TargetAdvances[0].Deactivate)
	}
}

func TestAggregator_MaxAmountCap(t *testing.T) {
	agg := deduction.NewAggregator()

	// computed 7,000 with max_amount 5,000 => 5,000
	union := fixedDeduction("Union dues", 7_000, 1)
	union.DeductionType.MaxAmount = decPtr(5_000)

	bd := agg.Aggregate(noStatutory(), []deduction.EmployeeDeduction{union}, deduction.Bases{Gross: dec(300_000)})

	assert.True(t, bd.TotalDeductions.Equal(dec(5_000)), "got %s", bd.TotalDeductions)
}

func TestAggregator_PercentageBases(t *testing.T) {
	agg := deduction.NewAggregator()

	mk := func(name string, base deduction.CalculationBase, rate int64, priority int) deduction.EmployeeDeduction {
		typ := &deduction.DeductionType{
			ID: uuid.New(), Name: name,
			Category: deduction.CategoryVoluntary,
			CalcType: deduction.CalcPercentage,
			CalcBase: base,
			IsActive: true,
		}
		return deduction.EmployeeDeduction{
			ID: uuid.New(), DeductionTypeID: typ.ID, DeductionType: typ,
			Rate: decPtr(rate), Priority: priority, IsActive: true,
		}
	}

	bases := deduction.Bases{
		Gross:       dec(600_000),
		Basic:       dec(400_000),
		Taxable:     dec(550_000),
		Pensionable: dec(450_000),
	}

	bd := agg.Aggregate(noStatutory(), []deduction.EmployeeDeduction{
		mk("On gross", deduction.BaseGross, 10, 1),       // 60,000
		mk("On basic", deduction.BaseBasic, 5, 2),        // 20,000
		mk("On taxable", deduction.BaseTaxable, 2, 3),    // 11,000
		mk("On pension", deduction.BasePensionable, 4, 4), // 18,000
	}, bases)

	assert.True(t, bd.TotalDeductions.Equal(dec(109_000)), "got %s", bd.TotalDeductions)
}

func TestAggregator_NetBaseResolvedLast(t *testing.T) {
	agg := deduction.NewAggregator()

	netType := &deduction.DeductionType{
		ID: uuid.New(), Name: "Savings plan",
		Category: deduction.CategoryVoluntary,
		CalcType: deduction.CalcPercentage,
		CalcBase: deduction.BaseNet,
		IsActive: true,
	}
	savings := deduction.EmployeeDeduction{
		ID: uuid.New(), DeductionTypeID: netType.ID, DeductionType: netType,
		Rate: decPtr(10), Priority: 1, IsActive: true, // priority 1, but NET still runs last
	}
	fixed := fixedDeduction("Welfare", 50_000, 5)

	bases := deduction.Bases{Gross: dec(500_000), IncomeTax: dec(50_000)}

	bd := agg.Aggregate(noStatutory(), []deduction.EmployeeDeduction{savings, fixed}, bases)

	// net seen by savings = 500,000 - 50,000 tax - 50,000 welfare = 400,000
	// savings = 10% of 400,000 = 40,000; total = 90,000
	assert.True(t, bd.TotalDeductions.Equal(dec(90_000)), "got %s", bd.TotalDeductions)
}

func TestAggregator_PriorityOrderingWithinPass(t *testing.T) {
	agg := deduction.NewAggregator()

	first := fixedDeduction("First", 1_000, 1)
	second := fixedDeduction("Second", 2_000, 2)

	bd := agg.Aggregate(noStatutory(), []deduction.EmployeeDeduction{second, first}, deduction.Bases{Gross: dec(100_000)})

	// statutory lines excluded here, so configured lines lead the breakdown
	if assert.Len(t, bd.Lines, 2) {
		assert.Equal(t, "First", bd.Lines[0].Name)
		assert.Equal(t, "Second", bd.Lines[1].Name)
	}
}

func TestAggregator_StatutoryFromProfile(t *testing.T) {
	agg := deduction.NewAggregator()

	profile := employee.PayProfile{
		PensionEnabled: true,
		PensionRate:    dec(8),
		NHFEnabled:     true,
		NHFRate:        decimal.NewFromFloat(2.5),
		NHISEnabled:    true,
		NHISRate:       dec(5),
	}
	bases := deduction.Bases{
		Gross:       dec(600_000),
		Basic:       dec(400_000),
		Pensionable: dec(500_000),
	}

	bd := agg.Aggregate(profile, nil, bases)

	// pension 8% of 500,000 = 40,000; NHF 2.5% of 400,000 = 10,000;
	// NHIS 5% of 400,000 = 20,000
	assert.True(t, bd.TotalDeductions.Equal(dec(70_000)), "got %s", bd.TotalDeductions)
	assert.Len(t, bd.Lines, 3)
}

func TestAggregator_TieredIsUnevaluatedZero(t *testing.T) {
	agg := deduction.NewAggregator()

	tiered := &deduction.DeductionType{
		ID: uuid.New(), Name: "Tiered levy",
		Category: deduction.CategoryVoluntary,
		CalcType: deduction.CalcTiered,
		CalcBase: deduction.BaseGross,
		IsActive: true,
	}
	d := deduction.EmployeeDeduction{
		ID: uuid.New(), DeductionTypeID: tiered.ID, DeductionType: tiered,
		Priority: 1, IsActive: true,
	}

	bd := agg.Aggregate(noStatutory(), []deduction.EmployeeDeduction{d}, deduction.Bases{Gross: dec(100_000)})

	assert.True(t, bd.TotalDeductions.IsZero())
	if assert.Len(t, bd.Lines, 1) {
		assert.True(t, bd.Lines[0].Unevaluated)
	}
}
