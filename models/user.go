package models

import (
	"time"
)

type Role string

const (
	RolePatient Role = "Patient"
	RoleDoctor  Role = "Doctor"
)

// ValidRole reports whether r is one of the two roles users can register with.
// Roles are fixed at registration; there is no role-change path.
func ValidRole(r Role) bool {
	return r == RolePatient || r == RoleDoctor
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"unique"`
	Password  string    `json:"password,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
