package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
