package payrun

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"go-payroll/internal/tenant"
)

//go:generate mockgen -source=payrun_repo.go -destination=mock/payrun_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, run *PayRun) error
	CreateItems(ctx context.Context, items []PayRunItem) error
	FindAllByCompany(ctx context.Context, companyID string, status *Status) ([]PayRun, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayRun, error)
	FindItems(ctx context.Context, companyID, runID string) ([]PayRunItem, error)
	FindItem(ctx context.Context, companyID, runID, itemID string) (*PayRunItem, error)
	UpdateStatus(ctx context.Context, run *PayRun) error
	UpdateTotals(ctx context.Context, run *PayRun) error
	UpdateItem(ctx context.Context, item *PayRunItem) error
	HasOverlappingPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (bool, error)
	SoftDelete(ctx context.Context, companyID, id string) error
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

func (r *repository) Create(ctx context.Context, run *PayRun) error {
	return r.db.WithContext(ctx).Omit("Items").Create(run).Error
}

func (r *repository) CreateItems(ctx context.Context, items []PayRunItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 200).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, status *Status) ([]PayRun, error) {
	var runs []PayRun
	q := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("period_start DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayRun, error) {
	var run PayRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) FindItems(ctx context.Context, companyID, runID string) ([]PayRunItem, error) {
	var items []PayRunItem
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("pay_run_id = ?", runID).
		Order("employee_name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItem(ctx context.Context, companyID, runID, itemID string) (*PayRunItem, error) {
	var item PayRunItem
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("pay_run_id = ?", runID).
		First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStatus writes the workflow fields only. Totals go through
// UpdateTotals so nothing else can touch the aggregate columns.
func (r *repository) UpdateStatus(ctx context.Context, run *PayRun) error {
	return r.db.WithContext(ctx).
		Model(&PayRun{}).
		Where("id = ? AND company_id = ?", run.ID, run.CompanyID).
		Updates(map[string]any{
			"status":      run.Status,
			"approved_by": run.ApprovedBy,
			"approved_at": run.ApprovedAt,
		}).Error
}

func (r *repository) UpdateTotals(ctx context.Context, run *PayRun) error {
	return r.db.WithContext(ctx).
		Model(&PayRun{}).
		Where("id = ? AND company_id = ?", run.ID, run.CompanyID).
		Updates(map[string]any{
			"total_gross":      run.TotalGross,
			"total_deductions": run.TotalDeductions,
			"total_tax":        run.TotalTax,
			"total_net":        run.TotalNet,
			"employer_cost":    run.EmployerCost,
			"employee_count":   run.EmployeeCount,
		}).Error
}

func (r *repository) UpdateItem(ctx context.Context, item *PayRunItem) error {
	return r.db.WithContext(ctx).
		Model(&PayRunItem{}).
		Where("id = ? AND company_id = ?", item.ID, item.CompanyID).
		Updates(map[string]any{
			"status":               item.Status,
			"basic_pay":            item.BasicPay,
			"gross_earnings":       item.GrossEarnings,
			"taxable_income":       item.TaxableIncome,
			"income_tax":           item.IncomeTax,
			"total_deductions":     item.TotalDeductions,
			"net_pay":              item.NetPay,
			"earnings_breakdown":   item.EarningsBreakdown,
			"deductions_breakdown": item.DeductionsBreakdown,
			"tax_calculation":      item.TaxCalculation,
			"error_message":        item.ErrorMessage,
			"excluded_reason":      item.ExcludedReason,
		}).Error
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("status <> ?", StatusCancelled).
		Where("period_start <= ? AND period_end >= ?", periodEnd, periodStart).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) SoftDelete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&PayRun{}, "id = ?", id).Error
}
