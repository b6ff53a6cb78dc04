package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User persona que opera el sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Department   string
	Role         string // admin, staff
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si r es un rol conocido.
func IsValidRole(r string) bool {
	return r == RoleAdmin || r == RoleStaff
}
