package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
	RoleStaff   = "staff"
)

// User representa un usuario del sistema, asociado opcionalmente a una sucursal.
type User struct {
	ID           string
	BranchID     string // vacío = sin sucursal fija (admin global)
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Phone        string
	Role         string // admin, manager, cashier, staff
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si el rol es uno de los definidos.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleStaff:
		return true
	}
	return false
}
