package tax

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	taxerrors "go-payroll/internal/tax/errors"
)

//go:generate mockgen -source=tax_repo.go -destination=mock/tax_repo_mock.go -package=mock
type Repository interface {
	FindActiveTable(ctx context.Context, companyID string, year int, jurisdiction string) (*TaxTable, error)
}

type repository struct {
	db    *gorm.DB
	group singleflight.Group
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindActiveTable resolves the tax table for a tenant, falling back to the
// system-wide table for the same year+jurisdiction. During a batch run every
// employee asks for the same table, so concurrent lookups are collapsed with
// singleflight.
func (r *repository) FindActiveTable(ctx context.Context, companyID string, year int, jurisdiction string) (*TaxTable, error) {
	key := fmt.Sprintf("%s|%d|%s", companyID, year, jurisdiction)

	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.findActiveTable(ctx, companyID, year, jurisdiction)
	})
	if err != nil {
		return nil, err
	}
	return v.(*TaxTable), nil
}

func (r *repository) findActiveTable(ctx context.Context, companyID string, year int, jurisdiction string) (*TaxTable, error) {
	var table TaxTable

	err := r.db.WithContext(ctx).
		Preload("Bands", func(db *gorm.DB) *gorm.DB { return db.Order("band_order ASC") }).
		Preload("Reliefs").
		Where("company_id = ?", companyID).
		Where("year = ? AND jurisdiction = ? AND is_active = true", year, jurisdiction).
		First(&table).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// System-wide fallback.
		err = r.db.WithContext(ctx).
			Preload("Bands", func(db *gorm.DB) *gorm.DB { return db.Order("band_order ASC") }).
			Preload("Reliefs").
			Where("company_id IS NULL").
			Where("year = ? AND jurisdiction = ? AND is_active = true", year, jurisdiction).
			First(&table).Error
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, taxerrors.ErrTaxTableNotFound
	}
	if err != nil {
		return nil, err
	}

	return &table, nil
}
