package models

import (
	"time"

	"gorm.io/gorm"
)

// Departments a staff member can belong to
const (
	DepartmentSuperAdmin      = "SuperAdmin"
	DepartmentAdmin           = "Admin"
	DepartmentSales           = "Sales"
	DepartmentDesigner        = "Designer"
	DepartmentProductionStaff = "Production Staff"
)

// User represents a staff member authenticated through Auth0
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Auth0ID        string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name           string         `gorm:"not null" json:"name"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	Department     string         `gorm:"not null;default:'Sales'" json:"department"`
	ProductionRole *string        `gorm:"size:32" json:"production_role"` // Designer, Printer, Press, Cutter, Sewer, QC, Packer
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsSuperAdmin reports whether the user bypasses every permission check
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Department == DepartmentSuperAdmin
}

// HasProductionRole reports whether the user holds the given production role
func (u *User) HasProductionRole(role string) bool {
	return u != nil && u.ProductionRole != nil && *u.ProductionRole == role
}

// ValidDepartment reports whether d is a known department name
func ValidDepartment(d string) bool {
	switch d {
	case DepartmentSuperAdmin, DepartmentAdmin, DepartmentSales, DepartmentDesigner, DepartmentProductionStaff:
		return true
	}
	return false
}
