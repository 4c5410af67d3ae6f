package events

import "time"

const PayRunCompletedTopic = "payroll.payrun.completed.v1"

type PayRunCompletedEvent struct {
	EventType  string    `json:"event_type"`
	PayRunID   string    `json:"pay_run_id"`
	CompanyID  string    `json:"company_id"`
	Reference  string    `json:"reference"`
	TotalNet   string    `json:"total_net"`
	OccurredAt time.Time `json:"occurred_at"`
}
