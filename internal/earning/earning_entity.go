package earning

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryBasic     Category = "BASIC"
	CategoryAllowance Category = "ALLOWANCE"
	CategoryBonus     Category = "BONUS"
	CategoryOvertime  Category = "OVERTIME"
)

type CalculationType string

const (
	CalcFixed      CalculationType = "FIXED"
	CalcPercentage CalculationType = "PERCENTAGE"
	CalcHourly     CalculationType = "HOURLY"
	CalcFormula    CalculationType = "FORMULA"
)

// EarningType is a tenant-scoped catalog entry. Defaults apply when the
// employee assignment does not override them.
type EarningType struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"type:varchar(120);not null"`
	Category      Category        `gorm:"type:varchar(20);not null"`
	CalcType      CalculationType `gorm:"type:varchar(20);not null"`
	DefaultAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DefaultRate   decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	IsTaxable     bool            `gorm:"not null;default:true"`
	IsPensionable bool            `gorm:"not null;default:false"`
	IsActive      bool            `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// EmployeeEarning assigns an earning type to one employee over an effective
// date range. Non-overlap of ranges for the same employee+type is enforced by
// the aggregator, not by a DB constraint.
type EmployeeEarning struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	EmployeeID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	EarningTypeID uuid.UUID        `gorm:"type:uuid;not null;index"`
	EarningType   *EarningType     `gorm:"foreignKey:EarningTypeID"`
	Amount        *decimal.Decimal `gorm:"type:decimal(18,2)"` // nil = type default
	Rate          *decimal.Decimal `gorm:"type:decimal(7,4)"`  // nil = type default
	EffectiveFrom time.Time        `gorm:"type:date;not null"`
	EffectiveTo   *time.Time       `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// EffectiveAmount resolves the override-or-default amount.
func (e EmployeeEarning) EffectiveAmount() decimal.Decimal {
	if e.Amount != nil {
		return *e.Amount
	}
	if e.EarningType != nil {
		return e.EarningType.DefaultAmount
	}
	return decimal.Zero
}

// EffectiveRate resolves the override-or-default rate.
func (e EmployeeEarning) EffectiveRate() decimal.Decimal {
	if e.Rate != nil {
		return *e.Rate
	}
	if e.EarningType != nil {
		return e.EarningType.DefaultRate
	}
	return decimal.Zero
}
