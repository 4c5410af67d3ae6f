package events

import "time"

const PayslipRequestedTopic = "payroll.payslip.requested.v1"

// PayslipRequestedEvent asks the consumer to materialize payslips for every
// CALCULATED item of a completed pay run.
type PayslipRequestedEvent struct {
	EventType   string    `json:"event_type"`
	PayRunID    string    `json:"pay_run_id"`
	CompanyID   string    `json:"company_id"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
