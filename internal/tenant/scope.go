package tenant

import "gorm.io/gorm"

// Scope restricts a query to one tenant. Tenancy is always passed explicitly;
// there is no ambient tenant state anywhere in the codebase.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
