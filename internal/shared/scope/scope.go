package scope

import "gorm.io/gorm"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps page to >= 1 and pageSize into (0, MaxPageSize].
func Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	page, pageSize = Normalize(page, pageSize)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

func Active(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", true)
	}
}

// OwnedBy limits rows to employeeID, or to employeeID and their direct
// reports when includeReports is set. column names the employee FK.
func OwnedBy(column, employeeID string, includeReports bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if includeReports {
			return db.Where(
				column+" = ? OR "+column+" IN (SELECT id FROM employees WHERE manager_id = ? AND deleted_at IS NULL)",
				employeeID, employeeID,
			)
		}
		return db.Where(column+" = ?", employeeID)
	}
}
