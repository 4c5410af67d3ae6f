package tax

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxLaw is the statute a tax table belongs to. Reliefs bound to a law are
// only ever evaluated under that law.
type TaxLaw string

const (
	LawPITA2011 TaxLaw = "PITA_2011"
	LawNTA2025  TaxLaw = "NTA_2025"
)

// ReliefType enumerates the relief formulas the engine understands.
type ReliefType string

const (
	ReliefFixed              ReliefType = "FIXED"
	ReliefPercentage         ReliefType = "PERCENTAGE"
	ReliefCappedPercentage   ReliefType = "CAPPED_PERCENTAGE"
	ReliefCRA                ReliefType = "CRA"
	ReliefRent               ReliefType = "RENT_RELIEF"
	ReliefLowIncomeExemption ReliefType = "LOW_INCOME_EXEMPTION"
)

// Statutory constants. Amounts are annual naira.
var (
	// NTA 2025: gross at or below this threshold pays no income tax.
	LowIncomeThreshold = decimal.NewFromInt(800_000)

	// PITA 2011 CRA = max(1% of gross + 200,000, 20% of gross).
	craFixedPortion = decimal.NewFromInt(200_000)
	craMinPercent   = decimal.NewFromFloat(0.01)
	craAltPercent   = decimal.NewFromFloat(0.20)

	// NTA 2025 rent relief = min(500,000, 20% of annual rent paid).
	rentReliefCap     = decimal.NewFromInt(500_000)
	rentReliefPercent = decimal.NewFromFloat(0.20)
)

// TaxTable is one progressive band schedule for a year+jurisdiction. A nil
// CompanyID marks a system-wide table used as fallback for every tenant.
type TaxTable struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    *uuid.UUID `gorm:"type:uuid;index:idx_tax_table_scope"`
	Year         int        `gorm:"not null;index:idx_tax_table_scope"`
	Jurisdiction string     `gorm:"type:varchar(60);not null;index:idx_tax_table_scope"`
	Law          TaxLaw     `gorm:"type:varchar(20);not null"`
	IsActive     bool       `gorm:"not null;default:true"`

	Bands   []TaxBand   `gorm:"foreignKey:TaxTableID"`
	Reliefs []TaxRelief `gorm:"foreignKey:TaxTableID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TaxBand is one progressive band {min, max|∞, rate%}. Max is nil only on the
// final, open-ended band.
type TaxBand struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TaxTableID uuid.UUID        `gorm:"type:uuid;not null;index"`
	BandOrder  int              `gorm:"not null"`
	Min        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Max        *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Rate       decimal.Decimal  `gorm:"type:decimal(7,4);not null"` // percent, e.g. 7 = 7%

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaxRelief is a configured relief row attached to a table. The statutory
// CRA / rent-relief / low-income rows carry no amounts; their formulas live
// in the engine.
type TaxRelief struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TaxTableID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name       string           `gorm:"type:varchar(120);not null"`
	Type       ReliefType       `gorm:"type:varchar(30);not null"`
	Law        *TaxLaw          `gorm:"type:varchar(20)"` // nil = applies under any law
	Amount     decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Rate       decimal.Decimal  `gorm:"type:decimal(7,4);not null;default:0"` // percent of gross
	Cap        *decimal.Decimal `gorm:"type:decimal(18,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppliesUnder reports whether a relief may be evaluated under the given law.
func (r TaxRelief) AppliesUnder(law TaxLaw) bool {
	return r.Law == nil || *r.Law == law
}
