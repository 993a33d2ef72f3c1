// Package store persists users, item reports and auth state. Store is
// implemented by SQLite in this package and by MongoDB in mongostore.
//
// Lookups return (nil, nil) when the record does not exist.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// ErrDuplicateEmail is returned when creating a user whose email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// Store is the persistence layer used by the API.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserRole(ctx context.Context, id, role string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error

	CreateItem(ctx context.Context, item *model.Item) (*model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, int, error)
	UpdateItem(ctx context.Context, id string, update model.ItemUpdate) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error

	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	GetJWTSecret(ctx context.Context) (string, error)

	Close() error
}
