package employee

import (
	"context"

	"gorm.io/gorm"

	"go-payroll/internal/tenant"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindActiveProfiles(ctx context.Context, companyID string) ([]PayProfile, error)
	FindByEmployee(ctx context.Context, companyID string, employeeID string) (*PayProfile, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveProfiles(ctx context.Context, companyID string) ([]PayProfile, error) {
	var profiles []PayProfile
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("is_active = true").
		Order("full_name ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *repository) FindByEmployee(ctx context.Context, companyID string, employeeID string) (*PayProfile, error) {
	var profile PayProfile
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&profile, "employee_id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
