package sequence

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/sequence_repo_mock.go -package=mock . Repository
type Repository interface {
	NextValue(ctx context.Context, companyID string, prefix string, date time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// NextValue increments and returns the counter for one company+prefix+date.
// The UPSERT is a single atomic statement, so concurrent allocations for the
// same key serialize on the row and never hand out duplicates. This is the
// only cross-process lock the reference scheme needs; a process-local cache
// would break as soon as a second instance runs.
func (r *repository) NextValue(ctx context.Context, companyID string, prefix string, date time.Time) (int64, error) {
	var nextValue int64

	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO reference_counters (company_id, prefix, counter_date, last_value, updated_at)
		VALUES (?, ?, ?, 1, now())
		ON CONFLICT (company_id, prefix, counter_date) DO UPDATE
		SET last_value = reference_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, companyID, prefix, date.Format("2006-01-02")).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
