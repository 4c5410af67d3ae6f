package earning

import (
	"context"
	"time"

	"gorm.io/gorm"

	"go-payroll/internal/tenant"
)

//go:generate mockgen -source=earning_repo.go -destination=mock/earning_repo_mock.go -package=mock
type Repository interface {
	FindForEmployee(ctx context.Context, companyID string, employeeID string, asOf time.Time) ([]EmployeeEarning, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindForEmployee returns assignments whose effective range covers asOf, with
// the catalog type preloaded. The aggregator still deduplicates per type in
// case of overlapping ranges.
func (r *repository) FindForEmployee(ctx context.Context, companyID string, employeeID string, asOf time.Time) ([]EmployeeEarning, error) {
	var earnings []EmployeeEarning
	err := r.db.WithContext(ctx).
		Preload("EarningType").
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("effective_from <= ?", asOf).
		Where("effective_to IS NULL OR effective_to >= ?", asOf).
		Order("effective_from DESC").
		Find(&earnings).Error
	return earnings, err
}
