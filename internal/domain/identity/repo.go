package identity

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the persistence interface for accounts.
//
// Deleting an account must remove every assignment, health record and alert
// that references it in the same atomic step.
type AccountRepository interface {
	// Create inserts the account. Returns ErrDuplicateIdentity when the email
	// is already taken, compared case-insensitively.
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Account, int, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	// TransitionStatus sets status to `to` only on the row matching
	// (id, role, from). It reports whether a row was changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, role Role, from, to Status) (bool, error)
	// DeleteMatching deletes the row matching (id, role, status) with cascade.
	DeleteMatching(ctx context.Context, id uuid.UUID, role Role, status Status) (bool, error)
	// Delete removes the account with cascade.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
