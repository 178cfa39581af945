package model

import "time"

// Role values mirror the seeded user_role rows.
type Role int64

const (
	RoleAdministrator Role = 1
	RoleEditor        Role = 2
	RoleUser          Role = 3
)

func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleEditor || r == RoleUser
}

func (r Role) String() string {
	switch r {
	case RoleAdministrator:
		return "administrator"
	case RoleEditor:
		return "editor"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
