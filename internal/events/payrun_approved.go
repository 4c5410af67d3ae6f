package events

import "time"

const PayRunApprovedTopic = "payroll.payrun.approved.v1"

type PayRunApprovedEvent struct {
	EventType  string    `json:"event_type"`
	PayRunID   string    `json:"pay_run_id"`
	CompanyID  string    `json:"company_id"`
	Reference  string    `json:"reference"`
	ApprovedBy string    `json:"approved_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
