package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a marketplace account. Email doubles as the bidder identity on the
// auction side.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

func NewUser(email, name string) *User {
	return &User{
		ID:    uuid.New(),
		Email: email,
		Name:  name,
		Role:  RoleUser,
	}
}

// IsAdmin reports whether the user may perform administrative writes.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UserRepository interface {
	List(ctx context.Context) ([]*User, error)
	// GetByEmail returns nil, nil when no such user exists.
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	PromoteToAdmin(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
