package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Role is the authorization claim carried by a principal.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when signing up with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
)

// User is a registered account.
type User struct {
	ID             string
	Email          string
	HashedPassword string
	FullName       string
	Role           Role
	CreatedAt      time.Time
}

// Principal is the authenticated caller identity attached to a request.
type Principal struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// IsAdmin reports whether the principal holds the elevated role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Principal derives the request identity from a stored user.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Name: u.FullName, Role: u.Role}
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
