package events

import "time"

const PayRunItemExcludedTopic = "payroll.payrun.item.excluded.v1"

type PayRunItemExcludedEvent struct {
	EventType  string    `json:"event_type"`
	PayRunID   string    `json:"pay_run_id"`
	ItemID     string    `json:"item_id"`
	EmployeeID string    `json:"employee_id"`
	CompanyID  string    `json:"company_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
