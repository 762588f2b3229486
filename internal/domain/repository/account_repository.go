package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/account-service/internal/domain/entity"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert hits the unique email
// constraint; the constraint is the enforcement point for concurrent
// registrations, the caller's pre-check only improves the error message.
var ErrDuplicateEmail = errors.New("email already registered")

// AccountRepository defines the keyed store for account records.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
	DeleteByID(ctx context.Context, id string) error
}

// VerificationTokenRepository stores email-verification tokens, at most one
// live row per account.
type VerificationTokenRepository interface {
	Insert(ctx context.Context, t *entity.VerificationToken) error
	GetByAccountID(ctx context.Context, accountID string) (*entity.VerificationToken, error)
	// DeleteByAccountID removes the account's token row and reports whether a
	// row was actually deleted. The rows-affected result is the serialization
	// point for single-use consumption.
	DeleteByAccountID(ctx context.Context, accountID string) (bool, error)
}
