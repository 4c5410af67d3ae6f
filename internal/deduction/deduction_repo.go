package deduction

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-payroll/internal/tenant"
)

//go:generate mockgen -source=deduction_repo.go -destination=mock/deduction_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindForEmployee(ctx context.Context, companyID string, employeeID string, asOf time.Time) ([]EmployeeDeduction, error)
	AdvanceTarget(ctx context.Context, companyID string, deductionID string, applied decimal.Decimal, deactivate bool) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) FindForEmployee(ctx context.Context, companyID string, employeeID string, asOf time.Time) ([]EmployeeDeduction, error) {
	var deductions []EmployeeDeduction
	err := r.db.WithContext(ctx).
		Preload("DeductionType").
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("is_active = true").
		Where("effective_from <= ?", asOf).
		Where("effective_to IS NULL OR effective_to >= ?", asOf).
		Order("priority ASC, effective_from DESC").
		Find(&deductions).Error
	return deductions, err
}

// AdvanceTarget moves total_deducted forward when a pay run completes and
// deactivates the assignment when the target is reached. The guard repeats
// the target check in SQL so a concurrent run cannot push past the target.
// Raw SQL so the write lands on the completing run's transaction.
func (r *repository) AdvanceTarget(ctx context.Context, companyID string, deductionID string, applied decimal.Decimal, deactivate bool) error {
	query := `
UPDATE employee_deductions
SET total_deducted = LEAST(total_deducted + $1, COALESCE(total_target, total_deducted + $1)),
	is_active = CASE WHEN $2 THEN false ELSE is_active END,
	updated_at = now()
WHERE company_id = $3 AND id = $4 AND deleted_at IS NULL`

	exec, err := r.execer()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, applied, deactivate, companyID, deductionID)
	return err
}

func (r *repository) execer() (interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, error) {
	if r.tx != nil {
		return r.tx, nil
	}
	return r.db.DB()
}
