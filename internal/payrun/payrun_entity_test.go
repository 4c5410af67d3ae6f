package payrun_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"go-payroll/internal/payrun"
)

func TestPayRun_TransitionGuards(t *testing.T) {
	tests := []struct {
		status     payrun.Status
		calculate  bool
		submit     bool
		approve    bool
		complete   bool
		cancelable bool
	}{
		{payrun.StatusDraft, true, false, false, false, true},
		{payrun.StatusCalculating, false, false, false, false, true},
		{payrun.StatusPendingReview, true, true, false, false, true},
		{payrun.StatusPendingApproval, false, false, true, false, true},
		{payrun.StatusApproved, false, false, false, true, false},
		{payrun.StatusProcessing, false, false, false, false, false},
		{payrun.StatusCompleted, false, false, false, false, false},
		{payrun.StatusCancelled, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			run := payrun.PayRun{Status: tt.status}
			assert.Equal(t, tt.calculate, run.CanCalculate())
			assert.Equal(t, tt.submit, run.CanSubmitForApproval())
			assert.Equal(t, tt.approve, run.CanApprove())
			assert.Equal(t, tt.complete, run.CanComplete())
			assert.Equal(t, tt.cancelable, run.CanBeCancelled())
		})
	}
}

func TestPayRun_UpdateTotals_CountsCalculatedItemsOnly(t *testing.T) {
	items := []payrun.PayRunItem{
		{
			Status:          payrun.ItemCalculated,
			GrossEarnings:   decimal.NewFromInt(500_000),
			TotalDeductions: decimal.NewFromInt(40_000),
			IncomeTax:       decimal.NewFromInt(60_000),
			NetPay:          decimal.NewFromInt(400_000),
		},
		{
			Status:          payrun.ItemCalculated,
			GrossEarnings:   decimal.NewFromInt(300_000),
			TotalDeductions: decimal.NewFromInt(24_000),
			IncomeTax:       decimal.NewFromInt(26_000),
			NetPay:          decimal.NewFromInt(250_000),
		},
		{
			Status:        payrun.ItemError,
			GrossEarnings: decimal.NewFromInt(999_999),
			NetPay:        decimal.NewFromInt(999_999),
		},
		{
			Status:        payrun.ItemExcluded,
			GrossEarnings: decimal.NewFromInt(888_888),
			NetPay:        decimal.NewFromInt(888_888),
		},
		{
			Status: payrun.ItemPending,
		},
	}

	var run payrun.PayRun
	run.UpdateTotals(items)

	assert.True(t, run.TotalGross.Equal(decimal.NewFromInt(800_000)), "got %s", run.TotalGross)
	assert.True(t, run.TotalDeductions.Equal(decimal.NewFromInt(64_000)))
	assert.True(t, run.TotalTax.Equal(decimal.NewFromInt(86_000)))
	assert.True(t, run.TotalNet.Equal(decimal.NewFromInt(650_000)))
	assert.Equal(t, 2, run.EmployeeCount)
}

func TestPayRunItem_Reset(t *testing.T) {
	msg := "tax table missing"
	item := payrun.PayRunItem{
		Status:          payrun.ItemError,
		BasicPay:        decimal.NewFromInt(100),
		GrossEarnings:   decimal.NewFromInt(120),
		TaxableIncome:   decimal.NewFromInt(110),
		IncomeTax:       decimal.NewFromInt(10),
		TotalDeductions: decimal.NewFromInt(5),
		NetPay:          decimal.NewFromInt(105),
		ErrorMessage:    &msg,
		TaxCalculation:  []byte(`{}`),
	}

	item.Reset()

	assert.Equal(t, payrun.ItemPending, item.Status)
	assert.True(t, item.GrossEarnings.IsZero())
	assert.True(t, item.NetPay.IsZero())
	assert.Nil(t, item.ErrorMessage)
	assert.Nil(t, item.TaxCalculation)
	assert.True(t, item.Processable())
}

func TestPayRunItem_Processable(t *testing.T) {
	assert.True(t, payrun.PayRunItem{Status: payrun.ItemPending}.Processable())
	assert.True(t, payrun.PayRunItem{Status: payrun.ItemError}.Processable())
	assert.False(t, payrun.PayRunItem{Status: payrun.ItemCalculated}.Processable())
	assert.False(t, payrun.PayRunItem{Status: payrun.ItemExcluded}.Processable())
}
