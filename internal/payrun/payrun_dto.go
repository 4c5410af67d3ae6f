package payrun

import (
	"encoding/json"
	"time"
)

type CreatePayRunRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	PayDate     string `json:"pay_date" binding:"required"`
}

type ExcludeItemRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type GetPayRunsFilterRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=DRAFT CALCULATING PENDING_REVIEW PENDING_APPROVAL APPROVED PROCESSING COMPLETED CANCELLED"`
}

// CalculationSummary is the batch-level outcome of one calculation pass.
// Item errors are reported here, never as a failed request.
type CalculationSummary struct {
	Calculated int `json:"calculated"`
	Errored    int `json:"errored"`
	Excluded   int `json:"excluded"`
}

type PayRunResponse struct {
	ID              string              `json:"id"`
	Reference       string              `json:"reference"`
	PeriodStart     string              `json:"period_start"`
	PeriodEnd       string              `json:"period_end"`
	PayDate         string              `json:"pay_date"`
	Status          string              `json:"status"`
	TotalGross      string              `json:"total_gross"`
	TotalDeductions string              `json:"total_deductions"`
	TotalTax        string              `json:"total_tax"`
	TotalNet        string              `json:"total_net"`
	EmployerCost    string              `json:"employer_cost"`
	EmployeeCount   int                 `json:"employee_count"`
	CreatedBy       string              `json:"created_by"`
	ApprovedBy      *string             `json:"approved_by,omitempty"`
	ApprovedAt      *string             `json:"approved_at,omitempty"`
	Summary         *CalculationSummary `json:"summary,omitempty"`
}

type PayRunItemResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	EmployeeName        string          `json:"employee_name"`
	Status              string          `json:"status"`
	BasicPay            string          `json:"basic_pay"`
	GrossEarnings       string          `json:"gross_earnings"`
	TaxableIncome       string          `json:"taxable_income"`
	IncomeTax           string          `json:"income_tax"`
	TotalDeductions     string          `json:"total_deductions"`
	NetPay              string          `json:"net_pay"`
	EarningsBreakdown   json.RawMessage `json:"earnings_breakdown,omitempty"`
	DeductionsBreakdown json.RawMessage `json:"deductions_breakdown,omitempty"`
	TaxCalculation      json.RawMessage `json:"tax_calculation,omitempty"`
	ErrorMessage        *string         `json:"error_message,omitempty"`
	ExcludedReason      *string         `json:"excluded_reason,omitempty"`
}

func mapToResponse(run PayRun) PayRunResponse {
	resp := PayRunResponse{
		ID:              run.ID.String(),
		Reference:       run.Reference,
		PeriodStart:     run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       run.PeriodEnd.Format("2006-01-02"),
		PayDate:         run.PayDate.Format("2006-01-02"),
		Status:          string(run.Status),
		TotalGross:      run.TotalGross.StringFixed(2),
		TotalDeductions: run.TotalDeductions.StringFixed(2),
		TotalTax:        run.TotalTax.StringFixed(2),
		TotalNet:        run.TotalNet.StringFixed(2),
		EmployerCost:    run.EmployerCost.StringFixed(2),
		EmployeeCount:   run.EmployeeCount,
		CreatedBy:       run.CreatedBy.String(),
	}

	if run.ApprovedBy != nil {
		v := run.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if run.ApprovedAt != nil {
		v := run.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}

	return resp
}

func mapToListResponse(runs []PayRun) []PayRunResponse {
	resp := make([]PayRunResponse, len(runs))
	for i, run := range runs {
		resp[i] = mapToResponse(run)
	}
	return resp
}

func mapItemToResponse(item PayRunItem) PayRunItemResponse {
	return PayRunItemResponse{
		ID:                  item.ID.String(),
		EmployeeID:          item.EmployeeID.String(),
		EmployeeName:        item.EmployeeName,
		Status:              string(item.Status),
		BasicPay:            item.BasicPay.StringFixed(2),
		GrossEarnings:       item.GrossEarnings.StringFixed(2),
		TaxableIncome:       item.TaxableIncome.StringFixed(2),
		IncomeTax:           item.IncomeTax.StringFixed(2),
		TotalDeductions:     item.TotalDeductions.StringFixed(2),
		NetPay:              item.NetPay.StringFixed(2),
		EarningsBreakdown:   item.EarningsBreakdown,
		DeductionsBreakdown: item.DeductionsBreakdown,
		TaxCalculation:      item.TaxCalculation,
		ErrorMessage:        item.ErrorMessage,
		ExcludedReason:      item.ExcludedReason,
	}
}

func mapItemsToResponse(items []PayRunItem) []PayRunItemResponse {
	resp := make([]PayRunItemResponse, len(items))
	for i, item := range items {
		resp[i] = mapItemToResponse(item)
	}
	return resp
}
