package testutil

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/FaizGusion00/fazztrack-backend/models"
)

// Fixtures are the staff, client and product rows most tests need
type Fixtures struct {
	SuperAdmin *models.User
	Admin      *models.User
	Sales      *models.User
	OtherSales *models.User
	Designer   *models.User
	// Workers holds one Production Staff member per production role other than Designer
	Workers map[string]*models.User
	Client  *models.Client
	Product *models.Product
}

// Worker returns the staff member holding the role required by phase
func (f *Fixtures) Worker(phase models.Phase) *models.User {
	role := phase.RequiredRole()
	if role == models.RoleDesigner {
		return f.Designer
	}
	return f.Workers[role]
}

// Seed inserts the standard fixtures
func Seed(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{
		SuperAdmin: CreateUser(t, db, "super", models.DepartmentSuperAdmin, ""),
		Admin:      CreateUser(t, db, "admin", models.DepartmentAdmin, ""),
		Sales:      CreateUser(t, db, "sales", models.DepartmentSales, ""),
		OtherSales: CreateUser(t, db, "sales2", models.DepartmentSales, ""),
		Designer:   CreateUser(t, db, "designer", models.DepartmentDesigner, models.RoleDesigner),
		Workers:    make(map[string]*models.User),
	}
	for _, phase := range models.Phases() {
		role := phase.RequiredRole()
		if role == models.RoleDesigner {
			continue
		}
		f.Workers[role] = CreateUser(t, db, strings.ToLower(role), models.DepartmentProductionStaff, role)
	}

	f.Client = &models.Client{Name: "Acme Sdn Bhd", Phone: "0123456789"}
	if err := db.Create(f.Client).Error; err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	size := "M"
	f.Product = &models.Product{Name: "Jersey", Size: &size, Price: decimal.RequireFromString("45.00")}
	if err := db.Create(f.Product).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return f
}

// CreateUser inserts a staff member; role may be empty
func CreateUser(t *testing.T, db *gorm.DB, handle, department, role string) *models.User {
	t.Helper()

	user := &models.User{
		Auth0ID:    "auth0|" + handle,
		Name:       handle,
		Email:      handle + "@fazztrack.test",
		Department: department,
	}
	if role != "" {
		user.ProductionRole = &role
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", handle, err)
	}
	return user
}
