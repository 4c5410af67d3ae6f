package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"go-payroll/internal/tax"
	taxerrors "go-payroll/internal/tax/errors"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// PITA 2011 annual schedule: 7/11/15/19/21/24.
func pitaTable() *tax.TaxTable {
	law := tax.LawPITA2011
	return &tax.TaxTable{
		Law:          tax.LawPITA2011,
		Year:         2024,
		Jurisdiction: "lagos",
		Bands: []tax.TaxBand{
			{BandOrder: 1, Min: dec(0), Max: decPtr(300_000), Rate: dec(7)},
			{BandOrder: 2, Min: dec(300_000), Max: decPtr(600_000), Rate: dec(11)},
			{BandOrder: 3, Min: dec(600_000), Max: decPtr(1_100_000), Rate: dec(15)},
			{BandOrder: 4, Min: dec(1_100_000), Max: decPtr(1_600_000), Rate: dec(19)},
			{BandOrder: 5, Min: dec(1_600_000), Max: decPtr(3_200_000), Rate: dec(21)},
			{BandOrder: 6, Min: dec(3_200_000), Max: nil, Rate: dec(24)},
		},
		Reliefs: []tax.TaxRelief{
			{Name: "Consolidated Relief Allowance", Type: tax.ReliefCRA, Law: &law},
		},
	}
}

// NTA 2025 annual schedule: 0/15/18/21/23/25.
func ntaTable() *tax.TaxTable {
	law := tax.LawNTA2025
	return &tax.TaxTable{
		Law:          tax.LawNTA2025,
		Year:         2026,
		Jurisdiction: "lagos",
		Bands: []tax.TaxBand{
			{BandOrder: 1, Min: dec(0), Max: decPtr(800_000), Rate: dec(0)},
			{BandOrder: 2, Min: dec(800_000), Max: decPtr(3_000_000), Rate: dec(15)},
			{BandOrder: 3, Min: dec(3_000_000), Max: decPtr(12_000_000), Rate: dec(18)},
			{BandOrder: 4, Min: dec(12_000_000), Max: decPtr(25_000_000), Rate: dec(21)},
			{BandOrder: 5, Min: dec(25_000_000), Max: decPtr(50_000_000), Rate: dec(23)},
			{BandOrder: 6, Min: dec(50_000_000), Max: nil, Rate: dec(25)},
		},
		Reliefs: []tax.TaxRelief{
			{Name: "Rent relief", Type: tax.ReliefRent, Law: &law},
		},
	}
}

func TestEngine_CRAWorkedExample(t *testing.T) {
	engine := tax.NewEngine()

	res, err := engine.Calculate(pitaTable(), tax.Input{GrossIncome: dec(1_000_000)})

	assert.NoError(t, err)
	// CRA = max(1%*1,000,000 + 200,000, 20%*1,000,000) = 210,000
	if assert.Len(t, res.ReliefsApplied, 1) {
		assert.Equal(t, tax.ReliefCRA, res.ReliefsApplied[0].Type)
		assert.True(t, res.ReliefsApplied[0].Amount.Equal(dec(210_000)), "got %s", res.ReliefsApplied[0].Amount)
	}
	assert.True(t, res.TaxableIncome.Equal(dec(790_000)), "got %s", res.TaxableIncome)

	// 300k@7% + 300k@11% + 190k@15% = 21,000 + 33,000 + 28,500
	assert.True(t, res.TotalTax.Equal(dec(82_500)), "got %s", res.TotalTax)
	assert.False(t, res.IsLowIncomeExempt)
}

func TestEngine_BandDecompositionSumsToTotal(t *testing.T) {
	engine := tax.NewEngine()

	for _, gross := range []int64{250_000, 1_000_000, 2_500_000, 4_800_000, 20_000_000} {
		res, err := engine.Calculate(pitaTable(), tax.Input{GrossIncome: dec(gross)})
		assert.NoError(t, err)

		sum := decimal.Zero
		for _, band := range res.Breakdown {
			sum = sum.Add(band.Tax)
		}
		assert.True(t, res.TotalTax.Equal(sum.Round(2)),
			"gross %d: breakdown sum %s != total %s", gross, sum, res.TotalTax)
	}
}

func TestEngine_MonotonicInGrossIncome(t *testing.T) {
	engine := tax.NewEngine()

	prev := decimal.Zero
	for gross := int64(100_000); gross <= 10_000_000; gross += 137_000 {
		res, err := engine.Calculate(ntaTable(), tax.Input{GrossIncome: dec(gross)})
		assert.NoError(t, err)
		assert.True(t, res.TotalTax.GreaterThanOrEqual(prev),
			"tax decreased at gross %d: %s < %s", gross, res.TotalTax, prev)
		prev = res.TotalTax
	}
}

func TestEngine_NTALowIncomeExemption(t *testing.T) {
	engine := tax.NewEngine()

	for _, gross := range []int64{0, 400_000, 800_000} {
		res, err := engine.Calculate(ntaTable(), tax.Input{GrossIncome: dec(gross)})
		assert.NoError(t, err)
		assert.True(t, res.TotalTax.IsZero(), "gross %d should be exempt", gross)
		assert.True(t, res.IsLowIncomeExempt)
		assert.Empty(t, res.Breakdown)
	}

	// Just above the threshold the band walk runs.
	res, err := engine.Calculate(ntaTable(), tax.Input{GrossIncome: dec(800_001)})
	assert.NoError(t, err)
	assert.False(t, res.IsLowIncomeExempt)
	assert.NotEmpty(t, res.Breakdown)
}

func TestEngine_RentRelief(t *testing.T) {
	engine := tax.NewEngine()

	t.Run("20 percent of rent below cap", func(t *testing.T) {
		res, err := engine.Calculate(ntaTable(), tax.Input{
			GrossIncome:    dec(5_000_000),
			AnnualRentPaid: dec(1_200_000),
		})
		assert.NoError(t, err)
		if assert.Len(t, res.ReliefsApplied, 1) {
			assert.True(t, res.ReliefsApplied[0].Amount.Equal(dec(240_000)))
		}
	})

	t.Run("capped at 500k", func(t *testing.T) {
		res, err := engine.Calculate(ntaTable(), tax.Input{
			GrossIncome:    dec(5_000_000),
			AnnualRentPaid: dec(4_000_000),
		})
		assert.NoError(t, err)
		if assert.Len(t, res.ReliefsApplied, 1) {
			assert.True(t, res.ReliefsApplied[0].Amount.Equal(dec(500_000)))
		}
	})

	t.Run("no rent means no relief", func(t *testing.T) {
		res, err := engine.Calculate(ntaTable(), tax.Input{GrossIncome: dec(5_000_000)})
		assert.NoError(t, err)
		assert.Empty(t, res.ReliefsApplied)
	})
}

func TestEngine_LawBoundReliefSkippedUnderOtherLaw(t *testing.T) {
	engine := tax.NewEngine()

	// A CRA row bound to PITA 2011 must never fire under NTA 2025.
	table := ntaTable()
	pita := tax.LawPITA2011
	table.Reliefs = append(table.Reliefs, tax.TaxRelief{
		Name: "Consolidated Relief Allowance", Type: tax.ReliefCRA, Law: &pita,
	})

	res, err := engine.Calculate(table, tax.Input{GrossIncome: dec(5_000_000)})
	assert.NoError(t, err)
	for _, r := range res.ReliefsApplied {
		assert.NotEqual(t, tax.ReliefCRA, r.Type)
	}
}

func TestEngine_TaxExemptEmployee(t *testing.T) {
	engine := tax.NewEngine()

	res, err := engine.Calculate(pitaTable(), tax.Input{GrossIncome: dec(9_000_000), TaxExempt: true})

	assert.NoError(t, err)
	assert.True(t, res.TotalTax.IsZero())
	assert.Empty(t, res.Breakdown)
}

func TestEngine_GenericReliefs(t *testing.T) {
	engine := tax.NewEngine()

	table := pitaTable()
	cap := dec(150_000)
	table.Reliefs = append(table.Reliefs,
		tax.TaxRelief{Name: "Fixed allowance", Type: tax.ReliefFixed, Amount: dec(50_000)},
		tax.TaxRelief{Name: "Pension relief", Type: tax.ReliefCappedPercentage, Rate: dec(8), Cap: &cap},
	)

	res, err := engine.Calculate(table, tax.Input{GrossIncome: dec(4_000_000)})
	assert.NoError(t, err)
	assert.Len(t, res.ReliefsApplied, 3)

	// 8% of 4,000,000 = 320,000, capped to 150,000.
	var capped decimal.Decimal
	for _, r := range res.ReliefsApplied {
		if r.Name == "Pension relief" {
			capped = r.Amount
		}
	}
	assert.True(t, capped.Equal(dec(150_000)), "got %s", capped)
}

func TestValidateTable(t *testing.T) {
	t.Run("gap between bands", func(t *testing.T) {
		table := pitaTable()
		table.Bands[1].Min = dec(350_000)
		err := tax.ValidateTable(table)
		assert.ErrorIs(t, err, taxerrors.ErrInvalidTaxTable)
	})

	t.Run("open max not on last band", func(t *testing.T) {
		table := pitaTable()
		table.Bands[2].Max = nil
		err := tax.ValidateTable(table)
		assert.ErrorIs(t, err, taxerrors.ErrInvalidTaxTable)
	})

	t.Run("no bands", func(t *testing.T) {
		err := tax.ValidateTable(&tax.TaxTable{})
		assert.ErrorIs(t, err, taxerrors.ErrInvalidTaxTable)
	})
}
