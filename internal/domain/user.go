package domain

import "time"

// Role enumerates the two account kinds in the scheduling system.
type Role string

const (
	RoleWorker   Role = "worker"
	RoleDirector Role = "director"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleDirector
}

// HomePath returns the landing page path for the role.
func (r Role) HomePath() string {
	if r == RoleDirector {
		return "/director"
	}
	return "/worker"
}

// LoginPath returns the login entry point for the role.
func (r Role) LoginPath() string {
	if r == RoleDirector {
		return "/login/director"
	}
	return "/login/worker"
}

// User models a registered account, either a shift worker or a site director.
type User struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	DirectorCode *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
