package payslip

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-payroll/internal/tenant"
)

//go:generate mockgen -source=payslip_repo.go -destination=mock/payslip_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Payslip) error
	ExistsForItem(ctx context.Context, companyID, itemID string) (bool, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Payslip, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Payslip, error)
	FindAllByPayRun(ctx context.Context, companyID, payRunID string) ([]Payslip, error)
	SumYearToDate(ctx context.Context, companyID, employeeID string, year int, before time.Time) (YTDTotals, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, p *Payslip) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) ExistsForItem(ctx context.Context, companyID, itemID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Payslip{}).
		Scopes(tenant.Scope(companyID)).
		Where("pay_run_item_id = ?", itemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Payslip, error) {
	var p Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Payslip, error) {
	var slips []Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("pay_date DESC").
		Find(&slips).Error
	if err != nil {
		return nil, err
	}
	return slips, nil
}

func (r *repository) FindAllByPayRun(ctx context.Context, companyID, payRunID string) ([]Payslip, error) {
	var slips []Payslip
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("pay_run_id = ?", payRunID).
		Order("employee_name ASC").
		Find(&slips).Error
	if err != nil {
		return nil, err
	}
	return slips, nil
}

// SumYearToDate totals prior payslips for the employee within the pay date's
// tax year, strictly before the given pay date so reruns stay idempotent.
func (r *repository) SumYearToDate(ctx context.Context, companyID, employeeID string, year int, before time.Time) (YTDTotals, error) {
	var totals struct {
		Gross sql.NullString
		Tax   sql.NullString
		Net   sql.NullString
	}

	err := r.db.WithContext(ctx).
		Model(&Payslip{}).
		Select("COALESCE(SUM(gross_earnings), 0) AS gross, COALESCE(SUM(income_tax), 0) AS tax, COALESCE(SUM(net_pay), 0) AS net").
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("EXTRACT(YEAR FROM pay_date) = ?", year).
		Where("pay_date < ?", before).
		Scan(&totals).Error
	if err != nil {
		return YTDTotals{}, err
	}

	return scanYTD(totals.Gross.String, totals.Tax.String, totals.Net.String)
}

func scanYTD(gross, tax, net string) (YTDTotals, error) {
	out := YTDTotals{Gross: decimal.Zero, Tax: decimal.Zero, Net: decimal.Zero}

	for _, field := range []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{gross, &out.Gross},
		{tax, &out.Tax},
		{net, &out.Net},
	} {
		if field.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(field.raw)
		if err != nil {
			return YTDTotals{}, err
		}
		*field.dest = v
	}

	return out, nil
}
