package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayType string

const (
	PayTypeSalaried PayType = "SALARIED"
	PayTypeHourly   PayType = "HOURLY"
)

type PayFrequency string

const (
	FrequencyMonthly  PayFrequency = "MONTHLY"
	FrequencyBiweekly PayFrequency = "BIWEEKLY"
	FrequencyWeekly   PayFrequency = "WEEKLY"
	FrequencyAnnual   PayFrequency = "ANNUAL"
)

// PeriodsPerYear is the annualization factor for tax computation.
func (f PayFrequency) PeriodsPerYear() int64 {
	switch f {
	case FrequencyWeekly:
		return 52
	case FrequencyBiweekly:
		return 26
	case FrequencyAnnual:
		return 1
	default:
		return 12
	}
}

type TaxHandling string

const (
	TaxHandlingStandard TaxHandling = "STANDARD"
	TaxHandlingExempt   TaxHandling = "EXEMPT"
)

// PayProfile is the read-side payroll view of an employee. Employee records
// are owned by the HR system; this service only consumes the fields payroll
// calculation depends on.
type PayProfile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_pay_profile_employee,unique"`
	FullName   string    `gorm:"type:varchar(160);not null"`

	PayType              PayType         `gorm:"type:varchar(20);not null;default:'SALARIED'"`
	PayAmount            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // per period for SALARIED, per hour for HOURLY
	PayFrequency         PayFrequency    `gorm:"type:varchar(20);not null;default:'MONTHLY'"`
	StandardHoursPerWeek decimal.Decimal `gorm:"type:decimal(7,2);not null;default:40"`

	OvertimeMultiplier decimal.Decimal `gorm:"type:decimal(5,2);not null;default:1.5"`
	WeekendMultiplier  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:2"`
	HolidayMultiplier  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:2.5"`

	TaxHandling    TaxHandling     `gorm:"type:varchar(20);not null;default:'STANDARD'"`
	AnnualRentPaid decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	PensionEnabled bool            `gorm:"not null;default:true"`
	PensionRate    decimal.Decimal `gorm:"type:decimal(7,4);not null;default:8"`
	NHFEnabled     bool            `gorm:"not null;default:false"`
	NHFRate        decimal.Decimal `gorm:"type:decimal(7,4);not null;default:2.5"`
	NHISEnabled    bool            `gorm:"not null;default:false"`
	NHISRate       decimal.Decimal `gorm:"type:decimal(7,4);not null;default:5"`

	IsActive bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (p PayProfile) TaxExempt() bool {
	return p.TaxHandling == TaxHandlingExempt
}
