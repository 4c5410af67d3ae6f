package payrun

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusCalculating     Status = "CALCULATING"
	StatusPendingReview   Status = "PENDING_REVIEW"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusProcessing      Status = "PROCESSING"
	StatusCompleted       Status = "COMPLETED"
	StatusCancelled       Status = "CANCELLED"
)

type ItemStatus string

const (
	ItemPending    ItemStatus = "PENDING"
	ItemCalculated ItemStatus = "CALCULATED"
	ItemError      ItemStatus = "ERROR"
	ItemExcluded   ItemStatus = "EXCLUDED"
)

// PayRun is one payroll batch for one period. Totals are only ever written by
// UpdateTotals after a full calculation pass; cancellation soft-deletes the
// run but keeps every item row for the audit trail.
type PayRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_payrun_company_status"`
	Reference string    `gorm:"type:varchar(30);not null;uniqueIndex"`

	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`
	PayDate     time.Time `gorm:"type:date;not null"`

	Status Status `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_payrun_company_status"`

	TotalGross      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalDeductions decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTax        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalNet        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	EmployerCost    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	EmployeeCount   int             `gorm:"not null;default:0"`

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time

	Items []PayRunItem `gorm:"foreignKey:PayRunID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// PayRunItem is one employee's computed row within a run. Breakdown columns
// hold the JSON produced by the aggregators and the tax engine so a payslip
// can be reconstructed without recomputing.
type PayRunItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayRunID     uuid.UUID `gorm:"type:uuid;not null;index:idx_item_run_employee,unique"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_item_run_employee,unique"`
	EmployeeName string    `gorm:"type:varchar(160);not null"`

	Status ItemStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	BasicPay        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrossEarnings   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxableIncome   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IncomeTax       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalDeductions decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetPay          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	EarningsBreakdown   []byte `gorm:"type:jsonb"`
	DeductionsBreakdown []byte `gorm:"type:jsonb"`
	TaxCalculation      []byte `gorm:"type:jsonb"`

	ErrorMessage   *string `gorm:"type:text"`
	ExcludedReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// calculableFrom lists run states a calculation pass may start from.
func (r PayRun) CanCalculate() bool {
	return r.Status == StatusDraft || r.Status == StatusPendingReview
}

func (r PayRun) CanSubmitForApproval() bool {
	return r.Status == StatusPendingReview
}

func (r PayRun) CanApprove() bool {
	return r.Status == StatusPendingApproval
}

func (r PayRun) CanComplete() bool {
	return r.Status == StatusApproved
}

// CanBeCancelled: not once the money side is committed. APPROVED, PROCESSING
// and COMPLETED runs stay; so do already-cancelled ones.
func (r PayRun) CanBeCancelled() bool {
	switch r.Status {
	case StatusDraft, StatusCalculating, StatusPendingReview, StatusPendingApproval:
		return true
	default:
		return false
	}
}

// Processable reports whether a calculation pass should (re)compute the item.
// ERROR items are retriable; EXCLUDED and already-CALCULATED ones are not.
func (i PayRunItem) Processable() bool {
	return i.Status == ItemPending || i.Status == ItemError
}

// Reset zeroes all computed fields and returns the item to PENDING. Used when
// replaying calculation after a configuration fix.
func (i *PayRunItem) Reset() {
	i.Status = ItemPending
	i.BasicPay = decimal.Zero
	i.GrossEarnings = decimal.Zero
	i.TaxableIncome = decimal.Zero
	i.IncomeTax = decimal.Zero
	i.TotalDeductions = decimal.Zero
	i.NetPay = decimal.Zero
	i.EarningsBreakdown = nil
	i.DeductionsBreakdown = nil
	i.TaxCalculation = nil
	i.ErrorMessage = nil
	i.ExcludedReason = nil
}

// UpdateTotals recomputes the run's aggregate fields from its items. Only
// CALCULATED items contribute; ERROR and EXCLUDED rows count zero. This is
// the sole writer of the aggregate fields.
func (r *PayRun) UpdateTotals(items []PayRunItem) {
	gross := decimal.Zero
	deductions := decimal.Zero
	tax := decimal.Zero
	net := decimal.Zero
	count := 0

	for _, item := range items {
		if item.Status != ItemCalculated {
			continue
		}
		gross = gross.Add(item.GrossEarnings)
		deductions = deductions.Add(item.TotalDeductions)
		tax = tax.Add(item.IncomeTax)
		net = net.Add(item.NetPay)
		count++
	}

	r.TotalGross = gross
	r.TotalDeductions = deductions
	r.TotalTax = tax
	r.TotalNet = net
	r.EmployerCost = gross
	r.EmployeeCount = count
}
