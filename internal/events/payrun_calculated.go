package events

import "time"

const PayRunCalculatedTopic = "payroll.payrun.calculated.v1"

type PayRunCalculatedEvent struct {
	EventType       string    `json:"event_type"`
	PayRunID        string    `json:"pay_run_id"`
	CompanyID       string    `json:"company_id"`
	Reference       string    `json:"reference"`
	CalculatedCount int       `json:"calculated_count"`
	ErroredCount    int       `json:"errored_count"`
	ExcludedCount   int       `json:"excluded_count"`
	OccurredAt      time.Time `json:"occurred_at"`
}
