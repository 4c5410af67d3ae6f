package deduction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryStatutory Category = "STATUTORY"
	CategoryVoluntary Category = "VOLUNTARY"
	CategoryLoan      Category = "LOAN"
	CategoryAdvance   Category = "ADVANCE"
)

type CalculationType string

const (
	CalcFixed      CalculationType = "FIXED"
	CalcPercentage CalculationType = "PERCENTAGE"
	CalcTiered     CalculationType = "TIERED"
	CalcFormula    CalculationType = "FORMULA"
)

// CalculationBase selects the amount a percentage deduction is computed on.
// BaseNet depends on all other deductions and is resolved in a second pass.
type CalculationBase string

const (
	BaseGross       CalculationBase = "GROSS"
	BaseBasic       CalculationBase = "BASIC"
	BaseTaxable     CalculationBase = "TAXABLE"
	BasePensionable CalculationBase = "PENSIONABLE"
	BaseNet         CalculationBase = "NET"
)

// DeductionType is a tenant-scoped catalog entry.
type DeductionType struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name          string           `gorm:"type:varchar(120);not null"`
	Category      Category         `gorm:"type:varchar(20);not null"`
	CalcType      CalculationType  `gorm:"type:varchar(20);not null"`
	CalcBase      CalculationBase  `gorm:"type:varchar(20);not null;default:'GROSS'"`
	DefaultAmount decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	DefaultRate   decimal.Decimal  `gorm:"type:decimal(7,4);not null;default:0"`
	MaxAmount     *decimal.Decimal `gorm:"type:decimal(18,2)"` // per-period cap
	IsActive      bool             `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// EmployeeDeduction assigns a deduction to one employee. TotalTarget bounds
// amortizing deductions (loans, advances): once TotalDeducted reaches it the
// assignment deactivates.
type EmployeeDeduction struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	EmployeeID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	DeductionTypeID uuid.UUID        `gorm:"type:uuid;not null;index"`
	DeductionType   *DeductionType   `gorm:"foreignKey:DeductionTypeID"`
	Amount          *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Rate            *decimal.Decimal `gorm:"type:decimal(7,4)"`
	Priority        int              `gorm:"not null;default:100"`
	TotalTarget     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	TotalDeducted   decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	EffectiveFrom   time.Time        `gorm:"type:date;not null"`
	EffectiveTo     *time.Time       `gorm:"type:date"`
	IsActive        bool             `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// RemainingTarget is how much may still be deducted before the target is hit.
// Nil target means unbounded.
func (d EmployeeDeduction) RemainingTarget() *decimal.Decimal {
	if d.TotalTarget == nil {
		return nil
	}
	remaining := d.TotalTarget.Sub(d.TotalDeducted)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return &remaining
}

func (d EmployeeDeduction) EffectiveAmount() decimal.Decimal {
	if d.Amount != nil {
		return *d.Amount
	}
	if d.DeductionType != nil {
		return d.DeductionType.DefaultAmount
	}
	return decimal.Zero
}

func (d EmployeeDeduction) EffectiveRate() decimal.Decimal {
	if d.Rate != nil {
		return *d.Rate
	}
	if d.DeductionType != nil {
		return d.DeductionType.DefaultRate
	}
	return decimal.Zero
}
