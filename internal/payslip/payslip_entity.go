package payslip

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payslip is one employee's finalized pay statement, materialized from a
// CALCULATED pay run item once the run completes. Year-to-date figures are
// rolled up at generation time and frozen.
type Payslip struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PayRunID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PayRunItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeName string    `gorm:"type:varchar(160);not null"`
	Reference    string    `gorm:"type:varchar(30);not null;uniqueIndex"`

	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`
	PayDate     time.Time `gorm:"type:date;not null;index"`

	GrossEarnings   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IncomeTax       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalDeductions decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetPay          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	YTDGross decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	YTDTax   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	YTDNet   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	FilePath string `gorm:"type:varchar(255)"`
	FileURL  string `gorm:"type:varchar(255)"`

	GeneratedAt time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// YTDTotals is the prior-payslip rollup for one employee within a tax year.
type YTDTotals struct {
	Gross decimal.Decimal
	Tax   decimal.Decimal
	Net   decimal.Decimal
}
