package timesheet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-payroll/internal/tenant"
)

// Hours is the per-employee result for one pay period. Attendance capture is
// owned by the time-tracking system; only the aggregated figures cross into
// payroll.
type Hours struct {
	Regular  decimal.Decimal
	Overtime decimal.Decimal
	Weekend  decimal.Decimal
	Holiday  decimal.Decimal
}

//go:generate mockgen -source=timesheet.go -destination=mock/timesheet_mock.go -package=mock
type HoursProvider interface {
	HoursForPeriod(ctx context.Context, companyID string, employeeID string, periodStart, periodEnd time.Time) (Hours, error)
}

type provider struct {
	db *gorm.DB
}

func NewProvider(db *gorm.DB) HoursProvider {
	return &provider{db: db}
}

func (p *provider) HoursForPeriod(ctx context.Context, companyID string, employeeID string, periodStart, periodEnd time.Time) (Hours, error) {
	var row struct {
		Regular  decimal.Decimal
		Overtime decimal.Decimal
		Weekend  decimal.Decimal
		Holiday  decimal.Decimal
	}

	err := p.db.WithContext(ctx).
		Table("timesheet_entries").
		Select(`
			COALESCE(SUM(regular_hours), 0)  AS regular,
			COALESCE(SUM(overtime_hours), 0) AS overtime,
			COALESCE(SUM(weekend_hours), 0)  AS weekend,
			COALESCE(SUM(holiday_hours), 0)  AS holiday`).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("work_date BETWEEN ? AND ?", periodStart, periodEnd).
		Scan(&row).Error
	if err != nil {
		return Hours{}, err
	}

	return Hours{
		Regular:  row.Regular,
		Overtime: row.Overtime,
		Weekend:  row.Weekend,
		Holiday:  row.Holiday,
	}, nil
}
